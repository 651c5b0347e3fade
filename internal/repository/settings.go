package repository

import (
	"context"

	"github.com/eslsoft/revise/internal/entity"
)

// ReviewSettingsRepository abstracts persistence for per-user review
// settings. Get returns (nil, nil) when the user never saved settings.
type ReviewSettingsRepository interface {
	Get(ctx context.Context, userID int64) (*entity.ReviewSettings, error)
	Save(ctx context.Context, settings *entity.ReviewSettings) (*entity.ReviewSettings, error)
}
