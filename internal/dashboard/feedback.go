package dashboard

import (
	"encoding/json"
	"errors"

	"hermannm.dev/enumnames"

	"github.com/berth-dev/stocklens/internal/nlquery"
)

// Level is the severity of result feedback.
type Level uint8

const (
	LevelInfo Level = iota + 1
	LevelWarning
	LevelError
)

var levelNames = enumnames.NewMap(map[Level]string{
	LevelInfo:    "info",
	LevelWarning: "warning",
	LevelError:   "error",
})

func (l Level) String() string {
	return levelNames.GetNameOrFallback(l, "info")
}

// Feedback is the message block shown above a result.
type Feedback struct {
	Level   Level
	Message string

	// ReviewSummary is the backend's review summary as indented JSON, or "".
	ReviewSummary string
}

// ReviewSummaryTitle heads the review summary block.
const ReviewSummaryTitle = "Query Review Summary"

// FeedbackFor derives the feedback for r. ok is false when r has neither a
// message nor a review summary.
func FeedbackFor(r nlquery.Result) (fb Feedback, ok bool) {
	hasSummary := len(r.ReviewSummary) > 0
	if r.Message == "" && !hasSummary {
		return Feedback{}, false
	}

	fb.Message = r.Message
	switch {
	case r.Status.IsFailure():
		fb.Level = LevelError
	case r.Status == nlquery.StatusReviewing || hasSummary:
		fb.Level = LevelWarning
	default:
		fb.Level = LevelInfo
	}

	if hasSummary {
		if data, err := json.MarshalIndent(r.ReviewSummary, "", "  "); err == nil {
			fb.ReviewSummary = string(data)
		}
	}
	return fb, true
}

// FallbackErrorMessage is shown for errors that carry no message.
const FallbackErrorMessage = "Failed to process query"

// TimeoutMessage is shown when polling gives up.
const TimeoutMessage = "Polling timeout: query did not complete in time"

// UserMessage returns the single message shown for a failed query.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, nlquery.ErrPollingTimeout) {
		return TimeoutMessage
	}

	var netErr *nlquery.NetworkError
	if errors.As(err, &netErr) && netErr.ServerMessage != "" {
		return netErr.ServerMessage
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return FallbackErrorMessage
}
