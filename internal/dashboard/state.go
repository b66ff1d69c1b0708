// Package dashboard drives one natural-language query at a time from input
// to a displayed result or an error.
package dashboard

import (
	"errors"
	"fmt"

	"hermannm.dev/enumnames"

	"github.com/berth-dev/stocklens/internal/nlquery"
)

// Phase is the dashboard's lifecycle position.
type Phase uint8

const (
	PhaseIdle Phase = iota + 1
	PhaseSubmitting
	PhasePolling
	PhaseDisplaying
	PhaseErrored
)

var phaseNames = enumnames.NewMap(map[Phase]string{
	PhaseIdle:       "idle",
	PhaseSubmitting: "submitting",
	PhasePolling:    "polling",
	PhaseDisplaying: "displaying",
	PhaseErrored:    "errored",
})

func (p Phase) String() string {
	return phaseNames.GetNameOrFallback(p, "INVALID_PHASE")
}

func (p Phase) MarshalJSON() ([]byte, error) {
	return phaseNames.MarshalToNameJSON(p)
}

// Busy reports whether a query is in flight.
func (p Phase) Busy() bool {
	return p == PhaseSubmitting || p == PhasePolling
}

// ErrInvalidTransition is returned when a transition is not allowed from the
// current phase.
var ErrInvalidTransition = errors.New("invalid dashboard transition")

// State is the dashboard's single source of truth. Result is set only in
// PhaseDisplaying and Err only in PhaseErrored.
type State struct {
	Phase     Phase
	Query     string
	SessionID string
	Result    *nlquery.Result
	Err       error
}

// Loading reports whether the input should be disabled.
func (s State) Loading() bool {
	return s.Phase.Busy()
}

func idle() State {
	return State{Phase: PhaseIdle}
}

func transitionError(from Phase, action string) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, action, from)
}

// begin moves to submitting. Allowed from any phase that is not busy.
func (s State) begin(query string) (State, error) {
	if s.Phase.Busy() {
		return s, transitionError(s.Phase, "submit")
	}
	return State{Phase: PhaseSubmitting, Query: query}, nil
}

func (s State) sessionCreated(session nlquery.Session) (State, error) {
	if s.Phase != PhaseSubmitting {
		return s, transitionError(s.Phase, "start polling")
	}
	return State{Phase: PhasePolling, Query: s.Query, SessionID: session.SessionID}, nil
}

func (s State) complete(result nlquery.Result) (State, error) {
	if s.Phase != PhasePolling {
		return s, transitionError(s.Phase, "display a result")
	}
	return State{
		Phase:     PhaseDisplaying,
		Query:     s.Query,
		SessionID: s.SessionID,
		Result:    &result,
	}, nil
}

func (s State) fail(err error) (State, error) {
	if !s.Phase.Busy() {
		return s, transitionError(s.Phase, "fail")
	}
	return State{
		Phase:     PhaseErrored,
		Query:     s.Query,
		SessionID: s.SessionID,
		Err:       err,
	}, nil
}

func (s State) reset() (State, error) {
	if s.Phase.Busy() {
		return s, transitionError(s.Phase, "reset")
	}
	return idle(), nil
}
