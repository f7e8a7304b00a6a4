// Package logging builds the process-wide zap logger.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pageza/cravewise/backend/config"
)

// New returns a JSON production logger in production and a human readable
// development logger everywhere else.
func New(env config.Environment) (*zap.Logger, error) {
	var cfg zap.Config
	switch env {
	case config.Production:
		cfg = zap.NewProductionConfig()
	case config.Test, config.CI:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("env", string(env))), nil
}
