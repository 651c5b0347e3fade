package app

import (
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/revise/internal/infrastructure/config"
	"github.com/eslsoft/revise/internal/repository"
	"github.com/eslsoft/revise/internal/usecase"
	"github.com/eslsoft/revise/pkg/srs"
)

// Container aggregates the application dependencies produced by Wire.
type Container struct {
	Config   *config.Config
	Logger   *logrus.Logger
	DB       *sqlx.DB
	Users    repository.UserRepository
	Cards    repository.CardRepository
	Review   usecase.ReviewUsecase
	Settings usecase.SettingsUsecase
}

func provideEngine(cfg *config.Config) (*srs.Engine, error) {
	return srs.NewEngine(cfg.EngineConfig())
}

func provideSessionDefaults(cfg *config.Config) usecase.SessionDefaults {
	return usecase.SessionDefaults{
		NewCardsLimit:    cfg.Session.DefaultNewLimit,
		ReviewCardsLimit: cfg.Session.DefaultReviewLimit,
	}
}
