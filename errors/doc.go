// Package errors provides structured error types for the fmu-runtime library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the Go type involved, a detail message and a cause chain.
//
// Two kinds matter most to model code:
//
//	KindAllocation  the host allocate callback returned nil (out of memory)
//	KindFatal       every instance of the model is invalid, not only this one
//
// They are never conflated; use IsAllocationFailure and IsFatal, which look
// through the whole wrap chain:
//
//	if errors.IsFatal(err) {
//		return fmi.Fatal
//	}
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseConstruct, errors.KindInvalidInput).
//		GoType("model.State").
//		Detail("negative step size %g", h).
//		Build()
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
