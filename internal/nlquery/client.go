package nlquery

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/carlmjohnson/requests"
	"hermannm.dev/wrap"
)

const (
	queriesPath = "/api/nl-queries"

	// DefaultToken is the placeholder bearer token accepted by development
	// backends.
	DefaultToken = "mock-token"

	DefaultMaxAttempts = 10
	DefaultInterval    = 500 * time.Millisecond
)

// Sleeper suspends between poll attempts. It returns early with ctx's error
// if ctx is done first.
type Sleeper func(ctx context.Context, d time.Duration) error

// Client talks to the NL query backend. Each method call issues exactly one
// HTTP request, except Poll which issues one per attempt.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	sleep      Sleeper
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for all requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSleeper replaces the delay used between poll attempts.
func WithSleeper(s Sleeper) Option {
	return func(c *Client) {
		c.sleep = s
	}
}

// WithLogger sets the logger used for per-request debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a Client for the backend at baseURL. An empty token falls
// back to DefaultToken.
func NewClient(baseURL, token string, opts ...Option) *Client {
	if token == "" {
		token = DefaultToken
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		sleep:      sleepContext,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized backend URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Submit sends q to the backend and returns the created session.
func (c *Client) Submit(ctx context.Context, q Query) (Session, error) {
	endpoint := c.baseURL + queriesPath

	var session Session
	var errBody errorBody
	err := requests.URL(endpoint).
		Client(c.httpClient).
		Post().
		Bearer(c.token).
		ContentType("application/json").
		BodyJSON(q).
		AddValidator(requests.ErrorJSON(&errBody)).
		ToJSON(&session).
		Fetch(ctx)
	if err != nil {
		return Session{}, newNetworkError("submit query", endpoint, errBody, err)
	}

	c.logger.Debug("Query submitted", "session", session.SessionID, "status", session.Status)
	return session, nil
}

// Fetch retrieves the current state of a session once.
func (c *Client) Fetch(ctx context.Context, sessionID string) (Result, error) {
	endpoint := c.baseURL + queriesPath + "/" + url.PathEscape(sessionID)

	var result Result
	var errBody errorBody
	err := requests.URL(endpoint).
		Client(c.httpClient).
		Bearer(c.token).
		AddValidator(requests.ErrorJSON(&errBody)).
		ToJSON(&result).
		Fetch(ctx)
	if err != nil {
		return Result{}, newNetworkError("fetch session", endpoint, errBody, err)
	}

	return result, nil
}

// ListSessions returns the caller's recent sessions, newest first.
func (c *Client) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	endpoint := c.baseURL + queriesPath

	var listing struct {
		Sessions []SessionSummary `json:"sessions"`
	}
	var errBody errorBody
	err := requests.URL(endpoint).
		Client(c.httpClient).
		Bearer(c.token).
		AddValidator(requests.ErrorJSON(&errBody)).
		ToJSON(&listing).
		Fetch(ctx)
	if err != nil {
		return nil, newNetworkError("list sessions", endpoint, errBody, err)
	}

	return listing.Sessions, nil
}

// PollOptions bounds a Poll call. Zero values select the defaults.
type PollOptions struct {
	MaxAttempts int
	Interval    time.Duration

	// OnAttempt, if set, is called after every successful fetch.
	OnAttempt func(attempt int, status Status)
}

func (o PollOptions) withDefaults() PollOptions {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.Interval < 0 {
		o.Interval = 0
	} else if o.Interval == 0 {
		o.Interval = DefaultInterval
	}
	return o
}

// Poll fetches the session until it reaches a terminal status, sleeping
// opts.Interval between attempts but not after the last one.
//
// Rejected and failed sessions are returned as results, not errors. If no
// attempt is terminal, Poll returns a *PollingTimeoutError. A network failure
// on any attempt ends polling with that *NetworkError.
func (c *Client) Poll(ctx context.Context, sessionID string, opts PollOptions) (Result, error) {
	opts = opts.withDefaults()

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		result, err := c.Fetch(ctx, sessionID)
		if err != nil {
			return Result{}, err
		}

		c.logger.Debug(
			"Polled session",
			"session", sessionID,
			"attempt", attempt,
			"status", result.Status,
		)
		if opts.OnAttempt != nil {
			opts.OnAttempt(attempt, result.Status)
		}

		if result.Status.IsTerminal() {
			return result, nil
		}

		if attempt < opts.MaxAttempts {
			if err := c.sleep(ctx, opts.Interval); err != nil {
				return Result{}, wrap.Errorf(err, "polling session %s interrupted", sessionID)
			}
		}
	}

	return Result{}, &PollingTimeoutError{SessionID: sessionID, Attempts: opts.MaxAttempts}
}

func newNetworkError(op, endpoint string, body errorBody, err error) *NetworkError {
	return &NetworkError{
		Op:            op,
		URL:           endpoint,
		ServerMessage: body.Detail.Message,
		Err:           err,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
