package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	stlog "github.com/berth-dev/stocklens/internal/log"
	"github.com/berth-dev/stocklens/internal/nlquery"
	"github.com/berth-dev/stocklens/internal/table"
)

// Lifecycle is the part of the query client the dashboard drives.
type Lifecycle interface {
	Submit(ctx context.Context, q nlquery.Query) (nlquery.Session, error)
	Poll(ctx context.Context, sessionID string, opts nlquery.PollOptions) (nlquery.Result, error)
}

// EventSink receives lifecycle events.
type EventSink interface {
	Append(event stlog.LogEvent) error
}

// Controller owns the dashboard state. It is not safe for concurrent use;
// callers serialise access the way a UI event loop does.
type Controller struct {
	client   Lifecycle
	poll     nlquery.PollOptions
	events   EventSink
	logger   *slog.Logger
	onChange func(State)

	runID   string
	started time.Time
	state   State
}

// Option configures a Controller.
type Option func(*Controller)

// WithPollOptions sets the attempt budget and interval used by Run.
func WithPollOptions(opts nlquery.PollOptions) Option {
	return func(c *Controller) {
		c.poll = opts
	}
}

// WithEventLog appends lifecycle events to sink.
func WithEventLog(sink EventSink) Option {
	return func(c *Controller) {
		c.events = sink
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithOnChange registers a callback invoked after every state change.
func WithOnChange(fn func(State)) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}

// New creates an idle Controller.
func New(client Lifecycle, opts ...Option) *Controller {
	c := &Controller{
		client: client,
		logger: slog.Default(),
		state:  idle(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// RunID returns the correlation id of the current or last query.
func (c *Controller) RunID() string {
	return c.runID
}

// PollOptions returns the poll options used by Run.
func (c *Controller) PollOptions() nlquery.PollOptions {
	return c.poll
}

func (c *Controller) set(next State) {
	c.state = next
	if c.onChange != nil {
		c.onChange(next)
	}
}

// Begin starts a new query. The previous result or error is cleared.
func (c *Controller) Begin(query string) error {
	next, err := c.state.begin(query)
	if err != nil {
		return err
	}

	c.runID = uuid.NewString()
	c.started = time.Now()
	c.set(next)
	c.emit(stlog.LogEvent{Event: stlog.EventQuerySubmitted, Query: query})
	return nil
}

// SessionCreated records the backend session and starts polling.
func (c *Controller) SessionCreated(session nlquery.Session) error {
	next, err := c.state.sessionCreated(session)
	if err != nil {
		return err
	}

	c.set(next)
	c.emit(stlog.LogEvent{
		Event:     stlog.EventSessionCreated,
		SessionID: session.SessionID,
		Status:    string(session.Status),
	})
	return nil
}

// Attempt records one poll attempt. It does not change the phase.
func (c *Controller) Attempt(attempt int, status nlquery.Status) {
	c.emit(stlog.LogEvent{
		Event:     stlog.EventPollAttempt,
		SessionID: c.state.SessionID,
		Attempt:   attempt,
		Status:    string(status),
	})
}

// Complete displays a terminal result, including rejected and failed ones.
func (c *Controller) Complete(result nlquery.Result) error {
	next, err := c.state.complete(result)
	if err != nil {
		return err
	}

	c.set(next)
	c.emit(stlog.LogEvent{
		Event:      stlog.EventQueryCompleted,
		SessionID:  next.SessionID,
		Status:     string(result.Status),
		Rows:       len(result.Table.Rows),
		Charts:     len(result.Charts),
		DurationMs: time.Since(c.started).Milliseconds(),
	})
	return nil
}

// Fail ends the in-flight query with err.
func (c *Controller) Fail(err error) error {
	next, terr := c.state.fail(err)
	if terr != nil {
		return terr
	}

	c.set(next)

	event := stlog.EventQueryFailed
	if errors.Is(err, nlquery.ErrPollingTimeout) {
		event = stlog.EventPollTimeout
	}
	c.emit(stlog.LogEvent{
		Event:      event,
		SessionID:  next.SessionID,
		Error:      UserMessage(err),
		DurationMs: time.Since(c.started).Milliseconds(),
	})
	return nil
}

// Reset returns to idle.
func (c *Controller) Reset() error {
	next, err := c.state.reset()
	if err != nil {
		return err
	}
	c.set(next)
	return nil
}

// Run submits query and polls it to completion. Blank input is ignored.
// Network and timeout failures end in PhaseErrored and are not returned;
// the returned error is only ever ErrInvalidTransition.
func (c *Controller) Run(ctx context.Context, query string) (State, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.state, nil
	}

	if err := c.Begin(query); err != nil {
		return c.state, err
	}

	session, err := c.client.Submit(ctx, nlquery.Query{Text: query})
	if err != nil {
		c.logger.Debug("Submit failed", "error", err)
		return c.state, c.Fail(err)
	}
	if err := c.SessionCreated(session); err != nil {
		return c.state, err
	}

	opts := c.poll
	hook := opts.OnAttempt
	opts.OnAttempt = func(attempt int, status nlquery.Status) {
		c.Attempt(attempt, status)
		if hook != nil {
			hook(attempt, status)
		}
	}

	result, err := c.client.Poll(ctx, session.SessionID, opts)
	if err != nil {
		c.logger.Debug("Poll failed", "session", session.SessionID, "error", err)
		return c.state, c.Fail(err)
	}
	return c.state, c.Complete(result)
}

// Sort replaces the displayed result with one whose rows are sorted by
// columnID. The previous result value is left untouched.
func (c *Controller) Sort(columnID string, dir table.SortDirection) error {
	if c.state.Phase != PhaseDisplaying || c.state.Result == nil {
		return transitionError(c.state.Phase, "sort")
	}

	sorted := c.state.Result.WithRows(table.SortRows(c.state.Result.Table.Rows, columnID, dir))
	next := c.state
	next.Result = &sorted
	c.set(next)
	return nil
}

func (c *Controller) emit(event stlog.LogEvent) {
	if c.events == nil {
		return
	}
	event.RunID = c.runID
	if err := c.events.Append(event); err != nil {
		c.logger.Warn("Failed to write event log", "event", event.Event, "error", err)
	}
}
