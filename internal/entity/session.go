package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of a study session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionAbandoned SessionStatus = "abandoned"
)

// IsTerminal reports whether the session can no longer accept answers.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionCompleted || s == SessionAbandoned
}

// SessionCard is one slot in a session's ordered card list.
type SessionCard struct {
	CardID int64 `json:"card_id"`
	New    bool  `json:"new"` // drawn from the new pool, not the due pool
}

// StudySession is an ordered run of cards a learner answers strictly
// front to back. Answers move the cursor; completion and abandonment are
// terminal.
type StudySession struct {
	ID     uuid.UUID     `json:"id"`
	UserID int64         `json:"user_id"`
	Status SessionStatus `json:"status"`

	Cards        []SessionCard `json:"cards"`
	CurrentIndex int32         `json:"current_index"`

	NewCount    int32 `json:"new_count"`    // cards drawn from the new pool
	ReviewCount int32 `json:"review_count"` // cards drawn from the due pool

	CorrectCount int32 `json:"correct_count"`
	WrongCount   int32 `json:"wrong_count"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewStudySession creates an active session over the composed card list.
// An empty list is valid: the session starts exhausted and can only be
// completed or abandoned.
func NewStudySession(userID int64, cards []SessionCard, now time.Time) *StudySession {
	s := &StudySession{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    SessionActive,
		Cards:     cards,
		StartedAt: now,
	}
	for _, c := range cards {
		if c.New {
			s.NewCount++
		} else {
			s.ReviewCount++
		}
	}
	return s
}

// CurrentCard returns the card at the cursor, or false when every card
// has been answered.
func (s *StudySession) CurrentCard() (SessionCard, bool) {
	if int(s.CurrentIndex) >= len(s.Cards) {
		return SessionCard{}, false
	}
	return s.Cards[s.CurrentIndex], true
}

// Exhausted reports whether the cursor has moved past the last card.
func (s *StudySession) Exhausted() bool {
	return int(s.CurrentIndex) >= len(s.Cards)
}

// Progress returns how many cards have been answered out of the total.
func (s *StudySession) Progress() (answered, total int32) {
	return s.CurrentIndex, int32(len(s.Cards))
}

// Advance records an answer for the card at the cursor and moves on.
// Answers for any other card fail with ErrOutOfOrderAnswer, answers on a
// terminal session with ErrInvalidSessionState.
func (s *StudySession) Advance(cardID int64, correct bool, now time.Time) error {
	if s.Status != SessionActive {
		return fmt.Errorf("%w: session %s is %s", ErrInvalidSessionState, s.ID, s.Status)
	}
	current, ok := s.CurrentCard()
	if !ok {
		return fmt.Errorf("%w: session %s has no cards left", ErrOutOfOrderAnswer, s.ID)
	}
	if current.CardID != cardID {
		return fmt.Errorf("%w: expected card %d, got %d", ErrOutOfOrderAnswer, current.CardID, cardID)
	}
	if correct {
		s.CorrectCount++
	} else {
		s.WrongCount++
	}
	s.CurrentIndex++
	return nil
}

// Complete terminates an active session. Completing early, with cards
// still unanswered, is allowed and keeps the tallies as they stand.
func (s *StudySession) Complete(now time.Time) error {
	return s.terminate(SessionCompleted, now)
}

// Abandon terminates an active session without crediting it as finished.
func (s *StudySession) Abandon(now time.Time) error {
	return s.terminate(SessionAbandoned, now)
}

func (s *StudySession) terminate(status SessionStatus, now time.Time) error {
	if s.Status != SessionActive {
		return fmt.Errorf("%w: session %s is %s", ErrInvalidSessionState, s.ID, s.Status)
	}
	s.Status = status
	s.CompletedAt = &now
	return nil
}

// Answered returns the total number of answered cards.
func (s *StudySession) Answered() int32 {
	return s.CorrectCount + s.WrongCount
}
