package config

import (
	"github.com/mwantia/tenantvfs/data/errors"
	"github.com/mwantia/tenantvfs/log"
)

// NewLoggerFromConfig creates the root logger described by cfg.
func NewLoggerFromConfig(name string, cfg LoggingConfig) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, errors.InvalidArgument("logging.level: %v", err)
	}

	var logger *log.Logger
	switch cfg.Output {
	case OutputStdout:
		logger = log.NewLogger(name, level, "", false)
	case OutputNone:
		return log.NewDiscardLogger(), nil
	default:
		logger = log.NewLogger(name, level, cfg.Output, true)
		logger.SetRotation(&log.LoggerRotation{
			MaxSize:    cfg.Rotation.MaxSize,
			MaxBackups: cfg.Rotation.MaxBackups,
			MaxAge:     cfg.Rotation.MaxAge,
			Compress:   cfg.Rotation.Compress,
		})
	}

	logger.JSON = cfg.Format == "json"
	return logger, nil
}
