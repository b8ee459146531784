package growatt

import (
	"fmt"
	"strings"
	"time"
)

// Timespan selects the point granularity of chart-style endpoints.
// Units of the returned values (W or kWh) are decided by the server.
type Timespan int

const (
	// TimespanHour returns intraday points for one day
	TimespanHour Timespan = iota
	// TimespanDay returns one point per day
	TimespanDay
	// TimespanMonth returns one point per month
	TimespanMonth
)

// String returns the name used in configuration and on the command line
func (t Timespan) String() string {
	switch t {
	case TimespanHour:
		return "hour"
	case TimespanDay:
		return "day"
	case TimespanMonth:
		return "month"
	default:
		return fmt.Sprintf("timespan(%d)", int(t))
	}
}

// Valid reports whether t is one of the known timespans
func (t Timespan) Valid() bool {
	return t >= TimespanHour && t <= TimespanMonth
}

// FormatDate renders date the way the server expects it for this timespan.
func (t Timespan) FormatDate(date time.Time) string {
	if t == TimespanMonth {
		return date.Format("2006-01")
	}
	return date.Format("2006-01-02")
}

// ParseTimespan converts "hour", "day" or "month" into a Timespan.
func ParseTimespan(s string) (Timespan, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hour", "":
		return TimespanHour, nil
	case "day":
		return TimespanDay, nil
	case "month":
		return TimespanMonth, nil
	}
	return 0, fmt.Errorf("%w: unknown timespan %q (must be hour, day or month)", ErrInvalidArgument, s)
}

// State is the authentication state of a Client.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticated
)

func (s State) String() string {
	if s == StateAuthenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Session is the authenticated context created by Login. The cookies themselves
// live in the owning client's cookie jar.
type Session struct {
	Username  string
	UserID    string
	UserLevel string
	CreatedAt time.Time

	// Login is the unwrapped login response
	Login Value

	expired bool
}

// Expired reports whether the server has rejected this session.
func (s *Session) Expired() bool {
	return s == nil || s.expired
}

// Plant is one installation belonging to the account.
type Plant struct {
	ID   string
	Name string
	// Record is the upstream plant record, untouched
	Record Value
}

// Params carries the identifiers and date arguments of an endpoint call.
// Endpoints read only the members they declare.
type Params struct {
	PlantID  string
	MixSN    string
	DeviceSN string
	Timespan Timespan
	// Date defaults to today when zero
	Date time.Time
}
