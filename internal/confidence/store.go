package confidence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ubc/tlef-engeai-sub007/internal/db"
)

// Store persists confidence-check responses.
type Store struct {
	db         *db.DB
	onComplete CompletionFunc
}

// NewStore creates a response store. onComplete may be nil.
func NewStore(database *db.DB, onComplete CompletionFunc) *Store {
	return &Store{db: database, onComplete: onComplete}
}

// Record stores a response and fires the completion hook. If ID is
// empty, a new UUID is generated.
func (s *Store) Record(ctx context.Context, r Response) (Response, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.RespondedAt.IsZero() {
		r.RespondedAt = time.Now().UTC()
	}

	understood := 0
	if r.Understood {
		understood = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO confidence_responses (id, message_id, topic, understood, responded_at)
		VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.MessageID, r.Topic, understood, r.RespondedAt.Format(time.DateTime),
	)
	if err != nil {
		return Response{}, fmt.Errorf("recording confidence response: %w", err)
	}

	if s.onComplete != nil {
		s.onComplete(r)
	}
	return r, nil
}

// ByTopic returns all responses for a topic, newest first.
func (s *Store) ByTopic(ctx context.Context, topic string) ([]Response, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, message_id, topic, understood, responded_at
		FROM confidence_responses
		WHERE topic = ?
		ORDER BY responded_at DESC`, topic)
	if err != nil {
		return nil, fmt.Errorf("querying responses for %q: %w", topic, err)
	}
	defer rows.Close()

	var out []Response
	for rows.Next() {
		var r Response
		var understood int
		var respondedAt string
		if err := rows.Scan(&r.ID, &r.MessageID, &r.Topic, &understood, &respondedAt); err != nil {
			return nil, err
		}
		r.Understood = understood != 0
		if t, err := time.Parse(time.DateTime, respondedAt); err == nil {
			r.RespondedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
