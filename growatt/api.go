package growatt

import (
	"context"
	"time"
)

// API defines the Growatt operations used by the exporter and the CLI
type API interface {
	// State reports whether the client holds a usable session
	State() State

	// Session returns the current session, or nil
	Session() *Session

	// Login authenticates and replaces any previous session
	Login(ctx context.Context, username, password string) (*Session, error)

	// LoginHashed authenticates with a pre-hashed password
	LoginHashed(ctx context.Context, username, passwordHash string) (*Session, error)

	// ResolvePlant returns the first plant, or the one matching plantID
	ResolvePlant(ctx context.Context, sess *Session, plantID string) (Plant, error)

	FetchMixDetail(ctx context.Context, sess *Session, mixSN, plantID string) (Value, error)
	FetchMixStatus(ctx context.Context, sess *Session, mixSN, plantID string) (Value, error)
	FetchMixTotals(ctx context.Context, sess *Session, mixSN, plantID string) (Value, error)
	FetchDashboard(ctx context.Context, sess *Session, plantID string, timespan Timespan, date time.Time) (Value, error)
	FetchChart(ctx context.Context, sess *Session, mixSN, plantID string, timespan Timespan, date time.Time) (Value, error)
}

var _ API = (*Client)(nil)
