package entity

import (
	"strings"
	"time"
)

// Card is a reviewable flashcard. Full card and deck management lives in
// an external system; the review service reads cards to schedule them and
// writes them only when seeding demo data.
type Card struct {
	ID        int64      `json:"id"`
	DeckID    int64      `json:"deck_id"`
	Front     string     `json:"front"`
	Back      string     `json:"back"`
	QuizTypes []QuizType `json:"quiz_types,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Validate validates the card entity.
func (c *Card) Validate() error {
	if strings.TrimSpace(c.Front) == "" {
		return ErrInvalidArgument
	}
	if c.DeckID <= 0 {
		return ErrInvalidArgument
	}
	return nil
}

// Normalize ensures defaults & constraints before persistence.
func (c *Card) Normalize(now time.Time) {
	c.Front = strings.TrimSpace(c.Front)
	c.Back = strings.TrimSpace(c.Back)
	if len(c.QuizTypes) == 0 {
		c.QuizTypes = []QuizType{QuizTypeChoice}
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}
