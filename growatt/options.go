package growatt

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the international ShineServer host
	DefaultBaseURL = "https://server-api.growatt.com/"
	// DefaultUserAgent mimics the Android app, which the server expects
	DefaultUserAgent = "Dalvik/2.1.0 (Linux; U; Android 12; https://github.com/indykoning/PyPi_GrowattServer)"
	// DefaultTimeout bounds every request
	DefaultTimeout = 30 * time.Second
)

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	baseURL          string
	timeout          time.Duration
	userAgent        string
	randomUserSuffix bool
	httpClient       *http.Client
	limit            rate.Limit
	burst            int
}

func defaultOptions() clientOptions {
	return clientOptions{
		baseURL:   DefaultBaseURL,
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
		limit:     rate.Inf,
		burst:     1,
	}
}

// WithBaseURL points the client at another server, e.g. a regional host or a test stub.
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) {
		if baseURL != "" {
			o.baseURL = baseURL
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		if userAgent != "" {
			o.userAgent = userAgent
		}
	}
}

// WithRandomUserSuffix appends " - NNNNN" to the user agent. The server throttles
// per user agent, so this spreads several installations apart.
func WithRandomUserSuffix() Option {
	return func(o *clientOptions) {
		o.randomUserSuffix = true
	}
}

// WithHTTPClient uses the given client as a template. Its Jar and CheckRedirect are
// replaced and a zero Timeout is filled from WithTimeout or DefaultTimeout; the client
// is copied, not modified.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithRateLimit paces outgoing requests. Calls wait for a token; nothing is retried.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(o *clientOptions) {
		if limit > 0 {
			o.limit = limit
		}
		if burst > 0 {
			o.burst = burst
		}
	}
}
