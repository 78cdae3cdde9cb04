package instance

import (
	"go.uber.org/zap"

	"github.com/wippyai/fmu-runtime/errors"
	"github.com/wippyai/fmu-runtime/fmi"
	"github.com/wippyai/fmu-runtime/logging"
	"github.com/wippyai/fmu-runtime/memory"
)

// Instance holds the per-instance adapters model code works through: one
// Memory handle, one debug flag and one log forwarder.
type Instance struct {
	callbacks fmi.CallbackFunctions
	memory    memory.Memory
	debug     *logging.DebugFlag
	log       *logging.Forwarder
	diag      *zap.Logger
	component fmi.Component
	closed    bool
}

// Instantiate wires the host callbacks of one model instance. The instance
// name is copied into host memory.
func Instantiate(name string, callbacks fmi.CallbackFunctions, opts ...Option) (*Instance, error) {
	o := options{diagnostics: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	if name == "" {
		return nil, errors.InvalidInput(errors.PhaseInstantiate, "instance name is empty")
	}
	if callbacks.Logger == nil {
		return nil, errors.NotInitialized(errors.PhaseHost, "logger callback")
	}

	mem, err := memory.NewMemory(callbacks)
	if err != nil {
		return nil, err
	}

	instanceName, err := memory.CopyString(mem, name)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseInstantiate, errors.KindAllocation, err, "copy instance name")
	}

	debug := logging.NewDebugFlag(o.debugLogging)
	inst := &Instance{
		callbacks: callbacks,
		memory:    mem,
		debug:     debug,
		log:       logging.NewForwarder(o.component, &instanceName, callbacks, debug),
		diag:      o.diagnostics,
		component: o.component,
	}

	inst.diag.Debug("instance created",
		zap.String("instance", name),
		zap.Bool("debug_logging", o.debugLogging))
	return inst, nil
}

// Memory returns the host memory handle of the instance.
func (i *Instance) Memory() memory.Memory {
	return i.memory
}

// Logger returns the log forwarder of the instance.
func (i *Instance) Logger() *logging.Forwarder {
	return i.log
}

// DebugFlag returns the shared debug flag.
func (i *Instance) DebugFlag() *logging.DebugFlag {
	return i.debug
}

// Component returns the identity passed to the host.
func (i *Instance) Component() fmi.Component {
	return i.component
}

// SetDebugLogging turns debug logging on or off for every forwarder of the
// instance.
func (i *Instance) SetDebugLogging(on bool) {
	i.debug.Set(on)
	i.diag.Debug("debug logging changed",
		zap.String("instance", i.log.InstanceName()),
		zap.Bool("enabled", on))
}

// StepFinished notifies the host that an asynchronous step completed. It is a
// no-op when the host did not provide the callback.
func (i *Instance) StepFinished(status fmi.Status) {
	if i.callbacks.StepFinished != nil {
		i.callbacks.StepFinished(i.component, status)
	}
}

// Status converts the result of a model operation to the status returned to
// the host, logging failures. Fatal errors map to fmi.Fatal and are never
// downgraded.
func (i *Instance) Status(err error) fmi.Status {
	switch {
	case err == nil:
		return fmi.OK
	case errors.IsFatal(err):
		i.log.Log(fmi.Fatal, "", "%s", err.Error())
		return fmi.Fatal
	case errors.IsAllocationFailure(err):
		i.log.Log(fmi.Error, "", "out of memory: %s", err.Error())
		return fmi.Error
	default:
		i.log.Log(fmi.Error, "", "%s", err.Error())
		return fmi.Error
	}
}

// Close releases the adapters. It is safe to call more than once.
func (i *Instance) Close() {
	if i.closed {
		return
	}
	i.closed = true
	i.diag.Debug("instance closed", zap.String("instance", i.log.InstanceName()))
	i.log.Close()
}

// NewState creates model state of type T in host memory, owned by the
// returned pointer.
func NewState[T any](i *Instance, construct func(*T) error) (*memory.UniquePtr[T], error) {
	return memory.AllocateUnique(i.memory, construct)
}
