// Package confidence records how students answer the inline
// confidence-check blocks the pipeline injects into tutor messages.
package confidence

import (
	"log/slog"
	"time"
)

// Response is one answered confidence check.
type Response struct {
	ID          string    `json:"id"`
	MessageID   string    `json:"message_id,omitempty"`
	Topic       string    `json:"topic"`
	Understood  bool      `json:"understood"`
	RespondedAt time.Time `json:"responded_at"`
}

// CompletionFunc is invoked after a response is recorded — the hook the
// surrounding app uses to unflag a struggling student or advance the
// onboarding flow. It receives the stored response.
type CompletionFunc func(Response)

// LogCompletion returns a CompletionFunc that logs each recorded
// response. The server uses it when no richer hook is wired.
func LogCompletion(logger *slog.Logger) CompletionFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(r Response) {
		logger.Info("confidence response recorded",
			"id", r.ID,
			"message_id", r.MessageID,
			"topic", r.Topic,
			"understood", r.Understood)
	}
}
