// Package fmi defines the boundary between a model implementation and the
// simulation host that drives it, following the FMI 1.0 callback contract.
//
// The host hands each model instance a CallbackFunctions value:
//
//	callbacks := fmi.CallbackFunctions{
//		Logger:         fmi.LoggerFunc(hostLog),
//		AllocateMemory: fmi.AllocateFunc(hostCalloc),
//		FreeMemory:     fmi.FreeFunc(hostFree),
//	}
//
// Model code never calls these directly; it goes through the memory and
// logging packages, which adapt them into allocators, owners and loggers.
//
// # Callback Identity
//
// Two memory handles are interchangeable when their allocate and free
// callbacks are the same values. Callbacks are interfaces so identity is
// plain interface equality. AllocateFunc and FreeFunc return pointer
// adapters: every wrap has its own identity, and every copy of the
// CallbackFunctions value holding it compares equal.
package fmi
