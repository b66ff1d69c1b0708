package nlquery_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berth-dev/stocklens/internal/nlquery"
	"github.com/berth-dev/stocklens/internal/testutil"
)

// recordingSleeper records requested delays instead of sleeping.
type recordingSleeper struct {
	delays []time.Duration
}

func (s *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func newTestClient(b *testutil.Backend, s *recordingSleeper) *nlquery.Client {
	return nlquery.NewClient(b.URL, "", nlquery.WithSleeper(s.sleep))
}

func TestSubmitThenPollUntilExecuted(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Enqueue("s1",
		testutil.StatusResult("s1", nlquery.StatusExecuting),
		testutil.ExecutedResult("s1"),
	)
	sleeper := &recordingSleeper{}
	client := newTestClient(backend, sleeper)
	ctx := context.Background()

	session, err := client.Submit(ctx, nlquery.Query{Text: "Show top products"})
	require.NoError(t, err)
	assert.Equal(t, "s1", session.SessionID)
	assert.Equal(t, nlquery.StatusSubmitted, session.Status)
	assert.Equal(t, "Show top products", backend.LastQuery().Text)

	result, err := client.Poll(ctx, session.SessionID, nlquery.PollOptions{})
	require.NoError(t, err)

	assert.Equal(t, nlquery.StatusExecuted, result.Status)
	assert.Len(t, result.Table.Rows, 3)
	assert.Len(t, result.Charts, 1)
	assert.Equal(t, 2, backend.Fetches("s1"))
	assert.Equal(t, []time.Duration{nlquery.DefaultInterval}, sleeper.delays)
}

func TestPollStopsAtFirstTerminalStatus(t *testing.T) {
	tests := []struct {
		name   string
		status nlquery.Status
	}{
		{"executed", nlquery.StatusExecuted},
		{"rejected", nlquery.StatusRejected},
		{"failed", nlquery.StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := testutil.NewBackend(t)
			backend.Script("s1", testutil.StatusResult("s1", tt.status))
			sleeper := &recordingSleeper{}
			client := newTestClient(backend, sleeper)

			result, err := client.Poll(context.Background(), "s1", nlquery.PollOptions{MaxAttempts: 5})
			require.NoError(t, err)

			assert.Equal(t, tt.status, result.Status)
			assert.Equal(t, 1, backend.Fetches("s1"))
			assert.Empty(t, sleeper.delays)
		})
	}
}

func TestPollTimesOut(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Script("s1", testutil.StatusResult("s1", nlquery.StatusExecuting))
	sleeper := &recordingSleeper{}
	client := newTestClient(backend, sleeper)

	_, err := client.Poll(context.Background(), "s1", nlquery.PollOptions{
		MaxAttempts: 3,
		Interval:    20 * time.Millisecond,
	})

	require.ErrorIs(t, err, nlquery.ErrPollingTimeout)
	var timeoutErr *nlquery.PollingTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 3, timeoutErr.Attempts)
	assert.Equal(t, 3, backend.Fetches("s1"))
	assert.Len(t, sleeper.delays, 2, "no delay after the last attempt")
}

func TestPollKeepsWaitingOnUnknownStatus(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Script("s1",
		testutil.StatusResult("s1", "queued_for_review"),
		testutil.StatusResult("s1", nlquery.StatusReviewing),
		testutil.ExecutedResult("s1"),
	)
	sleeper := &recordingSleeper{}
	client := newTestClient(backend, sleeper)

	var seen []nlquery.Status
	result, err := client.Poll(context.Background(), "s1", nlquery.PollOptions{
		OnAttempt: func(attempt int, status nlquery.Status) {
			assert.Equal(t, len(seen)+1, attempt)
			seen = append(seen, status)
		},
	})
	require.NoError(t, err)

	assert.Equal(t, nlquery.StatusExecuted, result.Status)
	assert.Equal(t, []nlquery.Status{"queued_for_review", nlquery.StatusReviewing, nlquery.StatusExecuted}, seen)
	assert.Len(t, sleeper.delays, 2)
}

func TestSubmitNetworkError(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.FailWith(http.StatusServiceUnavailable, "Backend is warming up")
	client := newTestClient(backend, &recordingSleeper{})

	_, err := client.Submit(context.Background(), nlquery.Query{Text: "low stock"})

	var netErr *nlquery.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "submit query", netErr.Op)
	assert.Equal(t, "Backend is warming up", netErr.ServerMessage)
	assert.Zero(t, backend.Submits())
}

func TestPollEndsOnNetworkError(t *testing.T) {
	backend := testutil.NewBackend(t)
	client := newTestClient(backend, &recordingSleeper{})

	_, err := client.Poll(context.Background(), "missing", nlquery.PollOptions{MaxAttempts: 4})

	var netErr *nlquery.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "Session not found", netErr.ServerMessage)
	assert.False(t, errors.Is(err, nlquery.ErrPollingTimeout))
	assert.Equal(t, 1, backend.Fetches("missing"))
}

func TestUnreachableBackend(t *testing.T) {
	client := nlquery.NewClient("http://127.0.0.1:1", "")

	_, err := client.Fetch(context.Background(), "s1")

	var netErr *nlquery.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Empty(t, netErr.ServerMessage)
	assert.Contains(t, netErr.Error(), "fetch session")
}

func TestBearerToken(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Script("s1", testutil.ExecutedResult("s1"))

	_, err := nlquery.NewClient(backend.URL, "").Fetch(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer mock-token", backend.LastAuth())

	_, err = nlquery.NewClient(backend.URL+"/", "secret").Fetch(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", backend.LastAuth())
}

func TestPollCancelledDuringDelay(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Script("s1", testutil.StatusResult("s1", nlquery.StatusExecuting))
	client := nlquery.NewClient(backend.URL, "")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Poll(ctx, "s1", nlquery.PollOptions{MaxAttempts: 10, Interval: time.Minute})

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, backend.Fetches("s1"))
}

func TestListSessions(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.SetSessions(
		nlquery.SessionSummary{
			SessionID:            "s2",
			CreatedAt:            "2024-03-05T10:00:00.123456",
			Status:               nlquery.StatusExecuted,
			NaturalLanguageQuery: "Show low stock items",
		},
		nlquery.SessionSummary{SessionID: "s1", Status: nlquery.StatusRejected},
	)
	client := newTestClient(backend, &recordingSleeper{})

	sessions, err := client.ListSessions(context.Background())
	require.NoError(t, err)

	require.Len(t, sessions, 2)
	assert.Equal(t, "s2", sessions[0].SessionID)
	assert.Equal(t, "Show low stock items", sessions[0].NaturalLanguageQuery)
	assert.Equal(t, nlquery.StatusRejected, sessions[1].Status)
}

func TestStatusTerminal(t *testing.T) {
	for _, s := range []nlquery.Status{"submitted", "drafted", "executing", "reviewing", "something-new", ""} {
		assert.False(t, s.IsTerminal(), s)
	}
	for _, s := range []nlquery.Status{"executed", "rejected", "failed"} {
		assert.True(t, s.IsTerminal(), s)
	}
	assert.False(t, nlquery.StatusExecuted.IsFailure())
	assert.True(t, nlquery.StatusRejected.IsFailure())
}

func TestResultWithRowsLeavesOriginal(t *testing.T) {
	original := testutil.ExecutedResult("s1")
	reversed := []nlquery.Row{original.Table.Rows[2], original.Table.Rows[1], original.Table.Rows[0]}

	next := original.WithRows(reversed)

	assert.Equal(t, "Widget", original.Table.Rows[0]["productName"])
	assert.Equal(t, "Bolt", next.Table.Rows[0]["productName"])
	assert.Equal(t, original.Table.Columns, next.Table.Columns)
}

func TestChartDefaults(t *testing.T) {
	c := nlquery.Chart{}
	assert.Equal(t, "name", c.CategoryKey())
	assert.Equal(t, []nlquery.DataKey{{Key: "value", Name: "Value", Color: "#6366f1"}}, c.ResolvedDataKeys())

	c.XAxisKey = "month"
	assert.Equal(t, "month", c.CategoryKey())
}
