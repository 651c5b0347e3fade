package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/eslsoft/revise/internal/entity"
)

func TestGetReviewSettingsDefaults(t *testing.T) {
	fx := newFixture(t)
	user := fx.addUser(t, "alice", "")

	settings, err := fx.settingsUC.GetReviewSettings(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetReviewSettings: %v", err)
	}
	if settings.UserID != user.ID {
		t.Fatalf("user id = %d, want %d", settings.UserID, user.ID)
	}
	if settings.RatioMode != entity.RatioModeNormal || settings.MinNewRatio != 0.2 {
		t.Fatalf("defaults = %+v", settings)
	}
	if !settings.SelectAllDecks || settings.Scope != entity.ScopeSelectedDecks {
		t.Fatalf("default scope = %+v", settings)
	}
	if settings.DailyGoal != 20 {
		t.Fatalf("daily goal = %d, want 20", settings.DailyGoal)
	}
}

func TestUpdateReviewSettingsRoundTrip(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	user := fx.addUser(t, "alice", "")

	saved, err := fx.settingsUC.UpdateReviewSettings(ctx, user.ID, &entity.ReviewSettings{
		UserID:            999, // ignored, the authenticated user wins
		RatioMode:         entity.RatioModeCustom,
		CustomReviewRatio: 0.6,
		MinNewRatio:       0.1,
		Scope:             entity.ScopeSelectedDecks,
		SelectedDeckIDs:   []int64{1, 2},
		DailyGoal:         30,
	})
	if err != nil {
		t.Fatalf("UpdateReviewSettings: %v", err)
	}
	if saved.UserID != user.ID {
		t.Fatalf("user id = %d, want %d", saved.UserID, user.ID)
	}
	if !saved.UpdatedAt.Equal(baseNow) {
		t.Fatalf("updated at = %v, want %v", saved.UpdatedAt, baseNow)
	}

	stored, err := fx.settingsUC.GetReviewSettings(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetReviewSettings: %v", err)
	}
	if stored.RatioMode != entity.RatioModeCustom || stored.CustomReviewRatio != 0.6 {
		t.Fatalf("stored = %+v", stored)
	}
	if len(stored.SelectedDeckIDs) != 2 || stored.DailyGoal != 30 {
		t.Fatalf("stored = %+v", stored)
	}
}

func TestUpdateReviewSettingsValidation(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	user := fx.addUser(t, "alice", "")

	cases := []struct {
		name     string
		settings entity.ReviewSettings
	}{
		{"ratio above one", entity.ReviewSettings{RatioMode: entity.RatioModeCustom, CustomReviewRatio: 1.5}},
		{"negative new ratio", entity.ReviewSettings{MinNewRatio: -0.1}},
		{"negative goal", entity.ReviewSettings{DailyGoal: -5}},
		{"unknown scope", entity.ReviewSettings{Scope: "sideways"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fx.settingsUC.UpdateReviewSettings(ctx, user.ID, &tc.settings)
			if !errors.Is(err, entity.ErrInvalidReviewSettings) {
				t.Fatalf("err = %v, want ErrInvalidReviewSettings", err)
			}
		})
	}
}

func TestUpdateReviewSettingsUnknownUser(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.settingsUC.UpdateReviewSettings(context.Background(), 42, entity.DefaultReviewSettings(42))
	if !errors.Is(err, entity.ErrUnknownUser) {
		t.Fatalf("err = %v, want ErrUnknownUser", err)
	}
}

func TestUpdateReviewSettingsNil(t *testing.T) {
	fx := newFixture(t)
	user := fx.addUser(t, "alice", "")
	_, err := fx.settingsUC.UpdateReviewSettings(context.Background(), user.ID, nil)
	if !errors.Is(err, entity.ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}
