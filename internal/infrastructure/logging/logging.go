package logging

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/revise/internal/infrastructure/config"
)

// New builds the process logger from application config. Unknown
// formats fall back to JSON so deployments keep machine-readable
// output unless text is asked for explicitly.
func New(cfg *config.Config) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(formatter(cfg.Log.Format))
	return logger, nil
}

func formatter(format string) logrus.Formatter {
	if format == "text" {
		return &logrus.TextFormatter{FullTimestamp: true}
	}
	return &logrus.JSONFormatter{}
}
