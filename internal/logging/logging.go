// Package logging builds the zap loggers used by the pipeline binaries.
package logging

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a production logger at the given level ("debug", "info",
// "warn", "error"). An empty level means "info".
func New(level string) (*zap.Logger, error) {
	if level == "" {
		level = "info"
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	return logger, nil
}

// ForJob returns a child logger tagged with the job name and a fresh
// run ID, so every invocation's lines can be grouped afterwards.
func ForJob(logger *zap.Logger, job string) *zap.Logger {
	return logger.With(
		zap.String("job", job),
		zap.String("run_id", uuid.NewString()),
	)
}
