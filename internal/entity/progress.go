package entity

import (
	"time"

	"github.com/eslsoft/revise/pkg/srs"
)

// CardProgress is the per-learner learning record of one card: the
// scheduler's memory state plus lifetime tallies.
type CardProgress struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`
	CardID int64 `json:"card_id"`

	Memory srs.Memory `json:"memory"`

	TotalReviews int32 `json:"total_reviews"`
	CorrectCount int32 `json:"correct_count"`

	// QualityHistory is append-only, most recent answer last.
	QualityHistory []srs.Grade `json:"quality_history,omitempty"`

	FirstSeenAt time.Time `json:"first_seen_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCardProgress starts a learning record for a card the user has never
// reviewed.
func NewCardProgress(userID, cardID int64, now time.Time) *CardProgress {
	return &CardProgress{
		UserID:      userID,
		CardID:      cardID,
		Memory:      srs.NewMemory(now),
		FirstSeenAt: now,
		UpdatedAt:   now,
	}
}

// RecordAnswer applies one engine result to the record: the new memory
// state, the tallies, and the quality history.
func (p *CardProgress) RecordAnswer(m srs.Memory, grade srs.Grade, correct bool, now time.Time) {
	p.Memory = m
	p.TotalReviews++
	if correct {
		p.CorrectCount++
	}
	p.QualityHistory = append(p.QualityHistory, grade)
	p.UpdatedAt = now
}

// Accuracy returns the lifetime share of correct answers, 0 for a card
// that was never reviewed.
func (p *CardProgress) Accuracy() float64 {
	if p.TotalReviews == 0 {
		return 0
	}
	return float64(p.CorrectCount) / float64(p.TotalReviews)
}
