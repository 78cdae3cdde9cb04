// Package fmuruntime bridges model code written in Go to the memory and
// logging callbacks an FMI simulation host provides.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	fmuruntime/
//	├── fmi/        Host-facing types: Status, Component, CallbackFunctions
//	├── memory/     Memory handle, Allocator[T], New/Delete, UniquePtr, String
//	├── logging/    Log forwarder, shared debug flag, zap host logger
//	├── errors/     Structured errors: allocation failure and fatal kinds
//	├── instance/   Per-instance wiring of the adapters
//	├── host/       Reference hosts: Go heap, mmap, wasm linear memory
//	└── cmd/fmusim  Demo simulator with an interactive TUI
//
// # Quick Start
//
// Wire an instance and put model state in host memory:
//
//	inst, err := instance.Instantiate("pendulum", callbacks)
//	if err != nil {
//	    return err
//	}
//	defer inst.Close()
//
//	state, err := instance.NewState(inst, func(s *State) error {
//	    s.Length = 1.0
//	    return nil
//	})
//	if err != nil {
//	    return inst.Status(err)
//	}
//	defer state.Close()
//
//	inst.Logger().DebugLog(fmi.OK, "", "length %g", state.Get().Length)
//
// # Memory Model
//
// Everything allocated through a Memory handle lives in storage owned by the
// host and is invisible to the Go garbage collector. Types stored there must
// not contain Go pointers; the allocators reject them.
//
// Allocation failure and fatal errors are distinct kinds. An allocation
// failure invalidates the current call; a fatal error invalidates every
// instance of the model and is reported to the host as fmi.Fatal.
//
// # Thread Safety
//
// The reference hosts are safe for concurrent use. Instance, Forwarder and
// UniquePtr are not, and should be used by a single goroutine.
package fmuruntime
