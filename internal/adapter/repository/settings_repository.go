package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/eslsoft/revise/internal/entity"
	"github.com/eslsoft/revise/internal/repository"
)

type settingsRow struct {
	UserID            int64     `db:"user_id"`
	RatioMode         string    `db:"ratio_mode"`
	CustomReviewRatio float64   `db:"custom_review_ratio"`
	MinNewRatio       float64   `db:"min_new_ratio"`
	Scope             string    `db:"scope"`
	SelectedDeckIDs   string    `db:"selected_deck_ids"`
	SelectAllDecks    bool      `db:"select_all_decks"`
	DailyGoal         int32     `db:"daily_goal"`
	UpdatedAt         time.Time `db:"updated_at"`
}

func (r settingsRow) toEntity() *entity.ReviewSettings {
	return &entity.ReviewSettings{
		UserID:            r.UserID,
		RatioMode:         entity.RatioMode(r.RatioMode),
		CustomReviewRatio: r.CustomReviewRatio,
		MinNewRatio:       r.MinNewRatio,
		Scope:             entity.ReviewScope(r.Scope),
		SelectedDeckIDs:   splitIDs(r.SelectedDeckIDs),
		SelectAllDecks:    r.SelectAllDecks,
		DailyGoal:         r.DailyGoal,
		UpdatedAt:         r.UpdatedAt,
	}
}

type settingsRepository struct {
	db *sqlx.DB
}

// NewReviewSettingsRepository constructs a sqlx-backed settings
// repository.
func NewReviewSettingsRepository(db *sqlx.DB) repository.ReviewSettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context, userID int64) (*entity.ReviewSettings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var row settingsRow
	query := r.db.Rebind(`
		SELECT user_id, ratio_mode, custom_review_ratio, min_new_ratio,
			scope, selected_deck_ids, select_all_decks, daily_goal, updated_at
		FROM review_settings WHERE user_id = ?`)
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get review settings: %w", err)
	}
	return row.toEntity(), nil
}

func (r *settingsRepository) Save(ctx context.Context, settings *entity.ReviewSettings) (*entity.ReviewSettings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query := r.db.Rebind(`
		INSERT INTO review_settings (
			user_id, ratio_mode, custom_review_ratio, min_new_ratio,
			scope, selected_deck_ids, select_all_decks, daily_goal, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			ratio_mode = excluded.ratio_mode,
			custom_review_ratio = excluded.custom_review_ratio,
			min_new_ratio = excluded.min_new_ratio,
			scope = excluded.scope,
			selected_deck_ids = excluded.selected_deck_ids,
			select_all_decks = excluded.select_all_decks,
			daily_goal = excluded.daily_goal,
			updated_at = excluded.updated_at`)

	_, err := r.db.ExecContext(ctx, query,
		settings.UserID, string(settings.RatioMode), settings.CustomReviewRatio, settings.MinNewRatio,
		string(settings.Scope), joinIDs(settings.SelectedDeckIDs), settings.SelectAllDecks,
		settings.DailyGoal, settings.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("save review settings: %w", err)
	}

	saved := *settings
	saved.SelectedDeckIDs = append([]int64(nil), settings.SelectedDeckIDs...)
	return &saved, nil
}
