package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/berth-dev/stocklens/internal/nlquery"
)

// Backend is a scripted fake of the NL query API. Each session answers its
// scripted results in order and keeps repeating the last one.
type Backend struct {
	*httptest.Server

	mu        sync.Mutex
	pending   []string
	scripts   map[string][]nlquery.Result
	fetches   map[string]int
	submits   int
	lastQuery nlquery.Query
	lastAuth  string
	sessions  []nlquery.SessionSummary

	failStatus  int
	failMessage string
}

// NewBackend starts a fake backend that is closed when the test finishes.
func NewBackend(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{
		scripts: make(map[string][]nlquery.Result),
		fetches: make(map[string]int),
	}

	r := chi.NewRouter()
	r.Use(b.recordAuth)
	r.Use(b.injectFailure)
	r.Post("/api/nl-queries", b.handleSubmit)
	r.Get("/api/nl-queries", b.handleList)
	r.Get("/api/nl-queries/{sessionID}", b.handleFetch)

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Server.Close)
	return b
}

// Enqueue makes the next submit create sessionID, answering fetches with
// results in order.
func (b *Backend) Enqueue(sessionID string, results ...nlquery.Result) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pending = append(b.pending, sessionID)
	b.scripts[sessionID] = results
}

// Script sets the fetch answers for sessionID without queueing a submit.
func (b *Backend) Script(sessionID string, results ...nlquery.Result) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.scripts[sessionID] = results
}

// SetSessions sets the history listing.
func (b *Backend) SetSessions(sessions ...nlquery.SessionSummary) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sessions = sessions
}

// FailWith makes every subsequent request answer status with the backend's
// JSON error envelope.
func (b *Backend) FailWith(status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failStatus = status
	b.failMessage = message
}

// Submits returns the number of submit requests received.
func (b *Backend) Submits() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.submits
}

// Fetches returns the number of fetch requests received for sessionID.
func (b *Backend) Fetches(sessionID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fetches[sessionID]
}

// LastQuery returns the body of the most recent submit.
func (b *Backend) LastQuery() nlquery.Query {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastQuery
}

// LastAuth returns the Authorization header of the most recent request.
func (b *Backend) LastAuth() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastAuth
}

func (b *Backend) recordAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.lastAuth = r.Header.Get("Authorization")
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) injectFailure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		status, message := b.failStatus, b.failMessage
		b.mu.Unlock()

		if status == 0 {
			next.ServeHTTP(w, r)
			return
		}

		body := map[string]any{
			"detail": map[string]string{
				"error":   http.StatusText(status),
				"message": message,
			},
		}
		writeJSON(w, status, body)
	})
}

func (b *Backend) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var q nlquery.Query
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	b.submits++
	b.lastQuery = q
	var sessionID string
	if len(b.pending) > 0 {
		sessionID = b.pending[0]
		b.pending = b.pending[1:]
	}
	b.mu.Unlock()

	if sessionID == "" {
		http.Error(w, "no session scripted", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, nlquery.Session{
		SessionID: sessionID,
		Status:    nlquery.StatusSubmitted,
		Message:   "Query submitted for processing",
	})
}

func (b *Backend) handleFetch(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	b.mu.Lock()
	script, ok := b.scripts[sessionID]
	n := b.fetches[sessionID]
	b.fetches[sessionID] = n + 1
	b.mu.Unlock()

	if !ok || len(script) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"detail": map[string]string{"error": "Not Found", "message": "Session not found"},
		})
		return
	}

	if n >= len(script) {
		n = len(script) - 1
	}
	writeJSON(w, http.StatusOK, script[n])
}

func (b *Backend) handleList(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	sessions := b.sessions
	b.mu.Unlock()

	if sessions == nil {
		sessions = []nlquery.SessionSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
