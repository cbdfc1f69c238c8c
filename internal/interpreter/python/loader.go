package python

import (
	"context"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/PyLearn/backend/internal/execution"
)

// Loader fetches the distribution on first use and compiles a Runtime
// per session
type Loader struct {
	fetcher *Fetcher
	config  Config
	logger  *zap.Logger
}

// NewLoader creates a loader
func NewLoader(fetcher *Fetcher, config Config, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{fetcher: fetcher, config: config, logger: logger}
}

// Load implements execution.Loader
func (l *Loader) Load(ctx context.Context, cancel *execution.CancelBuffer) (execution.Interpreter, error) {
	dist, err := l.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	rt, err := New(ctx, dist, l.config, cancel)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("Python runtime compiled", zap.String("version", dist.Version))
	return rt, nil
}
