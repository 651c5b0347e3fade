package entity

import (
	"fmt"
	"time"
)

// RatioMode selects how a session balances new cards against due reviews.
type RatioMode string

const (
	// RatioModeNormal fills the session with due reviews first and tops
	// up new cards so their share never drops below MinNewRatio.
	RatioModeNormal RatioMode = "normal"
	// RatioModeCustom targets a fixed review share (CustomReviewRatio).
	RatioModeCustom RatioMode = "custom"
)

// ReviewScope restricts which cards a session may draw from.
type ReviewScope string

const (
	// ScopeSelectedDecks draws from the decks the user selected
	// (or every deck when SelectAllDecks is set).
	ScopeSelectedDecks ReviewScope = "selected_decks_only"
	// ScopeAllLearned draws only from cards the user has already
	// studied, regardless of deck. No new cards enter the session.
	ScopeAllLearned ReviewScope = "all_learned"
)

// ReviewSettings is the per-user scheduling policy.
type ReviewSettings struct {
	UserID int64 `json:"user_id"`

	RatioMode         RatioMode `json:"ratio_mode"`
	CustomReviewRatio float64   `json:"custom_review_ratio"` // review share in custom mode
	MinNewRatio       float64   `json:"min_new_ratio"`       // new-card share floor in normal mode

	Scope           ReviewScope `json:"scope"`
	SelectedDeckIDs []int64     `json:"selected_deck_ids,omitempty"`
	SelectAllDecks  bool        `json:"select_all_decks"`

	DailyGoal int32 `json:"daily_goal"` // cards per day, anchors session size

	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultReviewSettings returns the policy applied before a user ever
// saves settings.
func DefaultReviewSettings(userID int64) *ReviewSettings {
	return &ReviewSettings{
		UserID:            userID,
		RatioMode:         RatioModeNormal,
		CustomReviewRatio: 0.7,
		MinNewRatio:       0.2,
		Scope:             ScopeSelectedDecks,
		SelectAllDecks:    true,
		DailyGoal:         20,
	}
}

// Validate validates the settings; failures wrap ErrInvalidReviewSettings.
func (s *ReviewSettings) Validate() error {
	switch s.RatioMode {
	case RatioModeNormal, RatioModeCustom:
	default:
		return fmt.Errorf("%w: ratio mode %q", ErrInvalidReviewSettings, s.RatioMode)
	}
	switch s.Scope {
	case ScopeSelectedDecks, ScopeAllLearned:
	default:
		return fmt.Errorf("%w: scope %q", ErrInvalidReviewSettings, s.Scope)
	}
	if s.CustomReviewRatio < 0 || s.CustomReviewRatio > 1 {
		return fmt.Errorf("%w: custom review ratio %.2f outside [0, 1]", ErrInvalidReviewSettings, s.CustomReviewRatio)
	}
	if s.MinNewRatio < 0 || s.MinNewRatio > 1 {
		return fmt.Errorf("%w: min new ratio %.2f outside [0, 1]", ErrInvalidReviewSettings, s.MinNewRatio)
	}
	if s.DailyGoal < 1 {
		return fmt.Errorf("%w: daily goal %d must be positive", ErrInvalidReviewSettings, s.DailyGoal)
	}
	return nil
}

// Normalize ensures defaults & constraints before persistence.
func (s *ReviewSettings) Normalize(now time.Time) {
	if s.RatioMode == "" {
		s.RatioMode = RatioModeNormal
	}
	if s.Scope == "" {
		s.Scope = ScopeSelectedDecks
	}
	if s.DailyGoal == 0 {
		s.DailyGoal = 20
	}
	s.UpdatedAt = now
}

// DecksRestricted reports whether pool queries must filter by the
// selected deck list.
func (s *ReviewSettings) DecksRestricted() bool {
	return s.Scope == ScopeSelectedDecks && !s.SelectAllDecks
}
