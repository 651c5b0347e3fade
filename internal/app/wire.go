//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"github.com/eslsoft/revise/internal/adapter/repository"
	"github.com/eslsoft/revise/internal/infrastructure/config"
	"github.com/eslsoft/revise/internal/infrastructure/database"
	"github.com/eslsoft/revise/internal/infrastructure/logging"
	"github.com/eslsoft/revise/internal/usecase"
)

var configSet = wire.NewSet(
	config.Load,
)

var databaseSet = wire.NewSet(
	database.New,
)

var repositorySet = wire.NewSet(
	repository.NewUserRepository,
	repository.NewCardRepository,
	repository.NewCardProgressRepository,
	repository.NewStudySessionRepository,
	repository.NewWrongAnswerRepository,
	repository.NewReviewSettingsRepository,
)

var usecaseSet = wire.NewSet(
	provideEngine,
	provideSessionDefaults,
	usecase.NewReviewUsecase,
	usecase.NewSettingsUsecase,
)

var loggingSet = wire.NewSet(
	logging.New,
)

var containerSet = wire.NewSet(
	databaseSet,
	repositorySet,
	usecaseSet,
	loggingSet,
	wire.Struct(new(Container), "Config", "Logger", "DB", "Users", "Cards", "Review", "Settings"),
)

// Initialize builds the application container using Wire.
func Initialize(configPath string) (*Container, func(), error) {
	wire.Build(
		configSet,
		containerSet,
	)
	return nil, nil, nil
}

// InitializeWithConfig builds the container from an in-memory config,
// bypassing file and environment loading.
func InitializeWithConfig(cfg *config.Config) (*Container, func(), error) {
	wire.Build(
		containerSet,
	)
	return nil, nil, nil
}
