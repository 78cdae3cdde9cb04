package fmi

import (
	"fmt"
	"unsafe"
)

// Status is the result of a model or host operation.
type Status int

const (
	OK Status = iota
	Warning
	Discard
	Error
	Fatal
	Pending
)

var statusNames = [...]string{
	OK:      "fmiOK",
	Warning: "fmiWarning",
	Discard: "fmiDiscard",
	Error:   "fmiError",
	Fatal:   "fmiFatal",
	Pending: "fmiPending",
}

func (s Status) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("fmiStatus(%d)", int(s))
}

// Component is the opaque identity of a model instance as seen by the host.
type Component uintptr

// Logger is the host logging callback. message may contain printf verbs
// which the host expands with args.
type Logger interface {
	Log(c Component, instanceName string, status Status, category, message string, args ...any)
}

// LoggerFunc adapts a plain function to Logger.
type LoggerFunc func(c Component, instanceName string, status Status, category, message string, args ...any)

func (f LoggerFunc) Log(c Component, instanceName string, status Status, category, message string, args ...any) {
	f(c, instanceName, status, category, message, args...)
}

// MemoryAllocator is the host allocateMemory callback: storage for nobj
// objects of size bytes each, or nil on failure.
type MemoryAllocator interface {
	AllocateMemory(nobj, size uintptr) unsafe.Pointer
}

// MemoryFreer is the host freeMemory callback. It never fails.
type MemoryFreer interface {
	FreeMemory(obj unsafe.Pointer)
}

type allocateFunc struct {
	fn func(nobj, size uintptr) unsafe.Pointer
}

func (a *allocateFunc) AllocateMemory(nobj, size uintptr) unsafe.Pointer {
	return a.fn(nobj, size)
}

type freeFunc struct {
	fn func(obj unsafe.Pointer)
}

func (f *freeFunc) FreeMemory(obj unsafe.Pointer) {
	f.fn(obj)
}

// AllocateFunc wraps fn as a MemoryAllocator with its own identity.
func AllocateFunc(fn func(nobj, size uintptr) unsafe.Pointer) MemoryAllocator {
	if fn == nil {
		return nil
	}
	return &allocateFunc{fn: fn}
}

// FreeFunc wraps fn as a MemoryFreer with its own identity.
func FreeFunc(fn func(obj unsafe.Pointer)) MemoryFreer {
	if fn == nil {
		return nil
	}
	return &freeFunc{fn: fn}
}

// CallbackFunctions is the set of functions the host provides to every
// model instance.
type CallbackFunctions struct {
	Logger         Logger
	AllocateMemory MemoryAllocator
	FreeMemory     MemoryFreer
	StepFinished   func(c Component, status Status)
}
