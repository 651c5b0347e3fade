package usecase

import (
	"context"
	"time"

	"github.com/eslsoft/revise/internal/entity"
	"github.com/eslsoft/revise/internal/repository"
)

// SettingsUsecase manages per-user review settings.
type SettingsUsecase interface {
	// GetReviewSettings returns the stored settings, or the defaults
	// when the user never saved any. Never nil on success.
	GetReviewSettings(ctx context.Context, userID int64) (*entity.ReviewSettings, error)
	UpdateReviewSettings(ctx context.Context, userID int64, settings *entity.ReviewSettings) (*entity.ReviewSettings, error)
}

// NewSettingsUsecase wires the repositories with default behaviour.
func NewSettingsUsecase(users repository.UserRepository, settings repository.ReviewSettingsRepository) SettingsUsecase {
	return &settingsUsecase{
		users:    users,
		settings: settings,
		clock:    time.Now,
	}
}

type settingsUsecase struct {
	users    repository.UserRepository
	settings repository.ReviewSettingsRepository
	clock    func() time.Time
}

func (u *settingsUsecase) GetReviewSettings(ctx context.Context, userID int64) (*entity.ReviewSettings, error) {
	stored, err := u.settings.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return entity.DefaultReviewSettings(userID), nil
	}
	return stored, nil
}

func (u *settingsUsecase) UpdateReviewSettings(ctx context.Context, userID int64, settings *entity.ReviewSettings) (*entity.ReviewSettings, error) {
	if settings == nil {
		return nil, entity.ErrInvalidArgument
	}
	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, entity.ErrUnknownUser
	}

	copy := *settings
	copy.UserID = userID
	copy.Normalize(u.clock())
	if err := copy.Validate(); err != nil {
		return nil, err
	}
	return u.settings.Save(ctx, &copy)
}
