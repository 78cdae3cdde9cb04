// Package memory adapts the host's allocate and free callbacks into typed
// allocation for model code.
//
// # Handle
//
// Memory wraps the two callbacks. It is a small value, equal to another
// Memory exactly when both callbacks are the same:
//
//	mem, err := memory.NewMemory(callbacks)
//
// # Allocator
//
// Allocator[T] draws storage for T from a Memory. Rebind converts it to
// another element type without changing the handle, so allocators for
// different types built from one Memory stay interchangeable:
//
//	floats := memory.NewAllocator[float64](mem)
//	p, err := floats.Allocate(16) // 16 contiguous float64
//	defer floats.Deallocate(p, 16)
//
//	bytes := memory.Rebind[byte](floats)
//	memory.SameMemory(floats, bytes) // true
//
// Zero-length requests never reach the host. A nil result from the host is an
// allocation failure (errors.KindAllocation).
//
// Host storage is invisible to the garbage collector, so element types must
// not contain Go pointers. Such types are rejected with errors.KindUnsupported.
//
// # Object Lifetime
//
// New and Delete construct and destroy single objects:
//
//	w, err := memory.New(mem, func(w *Widget) error {
//		w.Value = 42
//		return nil
//	})
//	...
//	memory.Delete(mem, w)
//
// If construction fails or panics, the storage is released before the
// failure propagates. Delete calls Destroy on types implementing Destroyer,
// then frees.
//
// AllocateUnique returns a UniquePtr that runs Delete exactly once:
//
//	owner, err := memory.AllocateUnique(mem, newWidget)
//	if err != nil {
//		return err
//	}
//	defer owner.Close()
//
// # Strings
//
// String keeps its bytes in host memory. CopyString builds one from a Go
// string.
package memory
