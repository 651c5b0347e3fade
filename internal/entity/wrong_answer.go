package entity

import (
	"time"

	"github.com/google/uuid"
)

// WrongAnswerRecord is one entry in the user's wrong-answer book. Records
// come from failed session answers or from quizzes outside any session
// (SessionID nil). Marking a record reviewed is how the learner clears it.
type WrongAnswerRecord struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`
	CardID int64 `json:"card_id"`

	SessionID *uuid.UUID `json:"session_id,omitempty"`

	QuizType      QuizType `json:"quiz_type"`
	UserAnswer    string   `json:"user_answer"`
	CorrectAnswer string   `json:"correct_answer"`

	Reviewed   bool       `json:"reviewed"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// MarkReviewed flags the record as cleared. Idempotent: marking twice
// keeps the first timestamp.
func (w *WrongAnswerRecord) MarkReviewed(now time.Time) {
	if w.Reviewed {
		return
	}
	w.Reviewed = true
	w.ReviewedAt = &now
}

// Normalize ensures defaults & constraints before persistence.
func (w *WrongAnswerRecord) Normalize(now time.Time) {
	if w.QuizType == "" {
		w.QuizType = QuizTypeChoice
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = now
	}
}
