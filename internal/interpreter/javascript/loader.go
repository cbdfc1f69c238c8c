package javascript

import (
	"context"

	"github.com/GriffinCanCode/PyLearn/backend/internal/execution"
)

// Loader creates goja runtimes for the execution bridge
type Loader struct {
	config Config
}

// NewLoader returns a loader using config
func NewLoader(config Config) *Loader {
	return &Loader{config: config}
}

// Load implements execution.Loader
func (l *Loader) Load(_ context.Context, cancel *execution.CancelBuffer) (execution.Interpreter, error) {
	return New(l.config, cancel)
}
