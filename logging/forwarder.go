package logging

import (
	"go.uber.org/zap"

	"github.com/wippyai/fmu-runtime/fmi"
	"github.com/wippyai/fmu-runtime/memory"
)

// DebugFlag is the debug-logging switch of one model instance. The
// instantiating code owns it and flips it when the host calls
// SetDebugLogging; every forwarder of the instance holds the same cell.
//
// It is not synchronized: read and write it from the goroutine that drives
// the instance.
type DebugFlag struct {
	enabled bool
}

// NewDebugFlag returns a flag with the given initial state.
func NewDebugFlag(enabled bool) *DebugFlag {
	return &DebugFlag{enabled: enabled}
}

// Set turns debug logging on or off.
func (f *DebugFlag) Set(enabled bool) {
	f.enabled = enabled
}

// Enabled reports the current state. A nil flag is off.
func (f *DebugFlag) Enabled() bool {
	return f != nil && f.enabled
}

// Forwarder logs messages from model code through the host logger callback.
type Forwarder struct {
	logger       fmi.Logger
	debug        *DebugFlag
	instanceName memory.String
	component    fmi.Component
}

// NewForwarder creates a forwarder for one component. It takes ownership of
// instanceName, leaving the caller's String empty; Close releases it.
func NewForwarder(component fmi.Component, instanceName *memory.String, callbacks fmi.CallbackFunctions, debug *DebugFlag) *Forwarder {
	return &Forwarder{
		component:    component,
		instanceName: instanceName.Move(),
		logger:       callbacks.Logger,
		debug:        debug,
	}
}

// InstanceName returns the instance name passed to the host.
func (f *Forwarder) InstanceName() string {
	return f.instanceName.String()
}

// Log forwards a message to the host unconditionally. message may contain
// printf verbs for args; the host formats it. Log never fails: a host logger
// that panics is reported on the diagnostic logger and otherwise ignored.
func (f *Forwarder) Log(status fmi.Status, category, message string, args ...any) {
	if f.logger == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			Logger().Error("host logger panicked",
				zap.String("instance", f.instanceName.String()),
				zap.String("category", category),
				zap.Any("panic", r))
		}
	}()
	f.logger.Log(f.component, f.instanceName.String(), status, category, message, args...)
}

// DebugLog forwards a message only while the shared debug flag is on.
func (f *Forwarder) DebugLog(status fmi.Status, category, message string, args ...any) {
	if f.debug.Enabled() {
		f.Log(status, category, message, args...)
	}
}

// Close releases the instance name.
func (f *Forwarder) Close() {
	f.instanceName.Free()
}
