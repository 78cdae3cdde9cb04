// Package host provides simulation-host implementations of the FMI memory
// callbacks.
//
// Heap is backed by the Go heap and instruments every call: counters,
// observers and failure injection. It is the default for tests and the
// fmusim tool.
//
// MappedHeap (unix only) gives each block its own anonymous mapping so model
// state lives outside the Go heap entirely.
//
// LinearHeap carves blocks out of a WebAssembly linear memory hosted by
// wazero, so model state can be shared with guest code by offset:
//
//	lm, err := host.NewLinearMemory(ctx, 4)
//	if err != nil {
//		return err
//	}
//	defer lm.Close(ctx)
//
//	callbacks := lm.Heap.Callbacks(logger)
//
// All three implement fmi.MemoryAllocator and fmi.MemoryFreer, return nil
// when a request cannot be served, and log frees of unknown pointers instead
// of crashing.
package host
