package growatt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

const (
	loginPath = "newTwoLoginAPI.do"
	// maxErrorBody caps how much of a failed response ends up in an error message
	maxErrorBody = 256
)

// Client talks to the Growatt mobile API. A Client holds at most one Session and is
// not safe for concurrent use.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
	session    *Session
	now        func() time.Time
}

// NewClient creates a new, unauthenticated Growatt client
func NewClient(logger zerolog.Logger, opts ...Option) (*Client, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	base, err := url.Parse(options.baseURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("%w: growatt server URL %q must be an absolute http(s) URL", ErrInvalidArgument, options.baseURL)
	}
	baseURL := base.String()
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	httpClient := &http.Client{Timeout: options.timeout}
	if options.httpClient != nil {
		copied := *options.httpClient
		httpClient = &copied
		if httpClient.Timeout == 0 {
			httpClient.Timeout = options.timeout
		}
	}
	httpClient.Jar = jar
	// A redirect means the server bounced us to its login page
	httpClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	userAgent := options.userAgent
	if options.randomUserSuffix {
		userAgent += fmt.Sprintf(" - %05d", rand.IntN(100000))
	}

	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(options.limit, options.burst),
		logger:     logger,
		now:        time.Now,
	}, nil
}

// UserAgent returns the user agent sent with every request
func (c *Client) UserAgent() string {
	return c.userAgent
}

// State reports whether the client currently holds a usable session
func (c *Client) State() State {
	if c.session == nil || c.session.expired {
		return StateUnauthenticated
	}
	return StateAuthenticated
}

// Session returns the current session, or nil when unauthenticated
func (c *Client) Session() *Session {
	if c.State() != StateAuthenticated {
		return nil
	}
	return c.session
}

// Login hashes password and authenticates username.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	if username == "" || password == "" {
		return nil, newError(ErrInvalidArgument, "login", "username and password are required")
	}
	return c.LoginHashed(ctx, username, HashPassword(password))
}

// LoginHashed authenticates with a password that has already been through HashPassword.
func (c *Client) LoginHashed(ctx context.Context, username, passwordHash string) (*Session, error) {
	const op = "login"
	if username == "" || passwordHash == "" {
		return nil, newError(ErrInvalidArgument, op, "username and password are required")
	}

	// Whatever happens next, the previous session is gone
	if c.session != nil {
		c.expire(c.session)
	}

	form := url.Values{
		"userName": {username},
		"password": {passwordHash},
		"NewLogin": {"1"},
	}
	body, err := c.do(ctx, op, http.MethodPost, loginPath, nil, form)
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Kind == ErrSessionExpired {
			return nil, &Error{Kind: ErrAuthentication, Op: op, StatusCode: apiErr.StatusCode, Message: "login rejected"}
		}
		return nil, err
	}

	doc, err := ParseValue(body)
	if err != nil {
		return nil, wrapError(ErrAuthentication, op, fmt.Errorf("login response is not JSON: %w", err))
	}
	data := unwrap(doc, envelopeBack)

	if ok, _ := data.Get("success").Bool(); !ok {
		return nil, newError(ErrAuthentication, op, firstNonEmpty(data.Get("msg").Str(), data.Get("error").Str(), "server reported failure"))
	}

	userID := firstNonEmpty(
		data.Get("userId").Str(),
		data.Path("user", "parentUserId").Str(),
		data.Path("user", "id").Str(),
	)
	if userID == "" {
		return nil, newError(ErrAuthentication, op, "login response has no user id")
	}

	sess := &Session{
		Username:  username,
		UserID:    userID,
		UserLevel: firstNonEmpty(data.Get("userLevel").Str(), data.Path("user", "rightlevel").Str()),
		CreatedAt: c.now(),
		Login:     data,
	}
	c.session = sess

	c.logger.Debug().
		Str("user_id", sess.UserID).
		Str("user_level", sess.UserLevel).
		Msg("Logged in to Growatt")

	return sess, nil
}

// Invoke calls the catalogue endpoint registered under name and returns its document.
// Every named fetch operation is a thin wrapper around Invoke.
func (c *Client) Invoke(ctx context.Context, sess *Session, name string, params Params) (Value, error) {
	ep, ok := LookupEndpoint(name)
	if !ok {
		return Value{}, newError(ErrInvalidArgument, name, "unknown endpoint")
	}
	return c.InvokeEndpoint(ctx, sess, ep, params)
}

// InvokeEndpoint calls an arbitrary endpoint description.
func (c *Client) InvokeEndpoint(ctx context.Context, sess *Session, ep Endpoint, params Params) (Value, error) {
	op := ep.Name
	if op == "" {
		op = ep.Path
	}

	if sess.Expired() || sess != c.session {
		return Value{}, newError(ErrSessionExpired, op, "not logged in")
	}

	query, err := ep.query(sess, params, c.now())
	if err != nil {
		return Value{}, wrapError(ErrInvalidArgument, op, err)
	}

	body, err := c.do(ctx, op, ep.Method, ep.Path, query, nil)
	if err != nil {
		if errors.Is(err, ErrSessionExpired) {
			c.expire(sess)
		}
		return Value{}, err
	}

	doc, err := ParseValue(body)
	if err != nil {
		return Value{}, wrapError(ErrMalformedResponse, op, err)
	}
	return unwrap(doc, ep.Envelope), nil
}

// do performs one HTTP exchange and classifies transport-level failures.
func (c *Client) do(ctx context.Context, op, method, path string, query, form url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, wrapError(ErrTransport, op, err)
	}

	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, wrapError(ErrTransport, op, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	c.logger.Debug().
		Str("op", op).
		Str("method", method).
		Str("path", path).
		Msg("Making Growatt API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, wrapError(ErrTransport, op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapError(ErrTransport, op, fmt.Errorf("failed to read response body: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &Error{Kind: ErrSessionExpired, Op: op, StatusCode: resp.StatusCode}
	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		return nil, &Error{
			Kind:       ErrSessionExpired,
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    "redirected to " + resp.Header.Get("Location"),
		}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &Error{
			Kind:       ErrTransport,
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    truncate(strings.TrimSpace(string(data)), maxErrorBody),
		}
	}

	return data, nil
}

func (c *Client) expire(sess *Session) {
	sess.expired = true
	if c.session == sess {
		c.session = nil
		c.logger.Debug().Str("user_id", sess.UserID).Msg("Growatt session expired")
	}
}

func unwrap(doc Value, envelope string) Value {
	if envelope != "" && doc.Has(envelope) {
		return doc.Get(envelope)
	}
	return doc
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
