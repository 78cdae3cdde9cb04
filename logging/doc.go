// Package logging forwards log messages from model code to the simulation
// host.
//
// # Forwarder
//
// A Forwarder wraps the host logger callback together with the component
// identity, the instance name and the instance's shared DebugFlag:
//
//	debug := logging.NewDebugFlag(loggingOn)
//	name, _ := memory.CopyString(mem, instanceName)
//	fwd := logging.NewForwarder(component, &name, callbacks, debug)
//	defer fwd.Close()
//
//	fwd.Log(fmi.Warning, "solver", "step size reduced to %g", h)
//	fwd.DebugLog(fmi.OK, "state", "x=%g", x) // only while debug is on
//
// The flag is referenced, not copied: flipping it affects every forwarder
// built with it immediately.
//
// # Host Side
//
// ZapLogger turns a *zap.Logger into a host logger callback, for hosts and
// tests written in Go.
package logging
