package instance

import (
	"go.uber.org/zap"

	"github.com/wippyai/fmu-runtime/fmi"
)

type options struct {
	diagnostics  *zap.Logger
	component    fmi.Component
	debugLogging bool
}

// Option configures Instantiate.
type Option func(*options)

// WithComponent sets the identity passed to the host logger.
func WithComponent(c fmi.Component) Option {
	return func(o *options) {
		o.component = c
	}
}

// WithDebugLogging sets the initial state of the debug flag.
func WithDebugLogging(on bool) Option {
	return func(o *options) {
		o.debugLogging = on
	}
}

// WithDiagnostics routes lifecycle diagnostics to l instead of discarding them.
func WithDiagnostics(l *zap.Logger) Option {
	return func(o *options) {
		o.diagnostics = l
	}
}
