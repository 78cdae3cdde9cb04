package memory

import (
	"reflect"
	"unsafe"

	"github.com/wippyai/fmu-runtime/errors"
	"github.com/wippyai/fmu-runtime/fmi"
)

// Memory wraps the host allocateMemory and freeMemory callbacks.
// Alloc and Free forward to them without validation.
//
// The zero Memory has no callbacks and must not be used to allocate.
type Memory struct {
	alloc fmi.MemoryAllocator
	free  fmi.MemoryFreer
}

// NewMemory captures the memory callbacks of a host.
func NewMemory(callbacks fmi.CallbackFunctions) (Memory, error) {
	if callbacks.AllocateMemory == nil {
		return Memory{}, errors.NotInitialized(errors.PhaseHost, "allocateMemory callback")
	}
	if callbacks.FreeMemory == nil {
		return Memory{}, errors.NotInitialized(errors.PhaseHost, "freeMemory callback")
	}
	return Memory{alloc: callbacks.AllocateMemory, free: callbacks.FreeMemory}, nil
}

// Alloc allocates memory for nobj objects of size bytes each.
// A nil result means the host could not satisfy the request.
func (m Memory) Alloc(nobj, size uintptr) unsafe.Pointer {
	return m.alloc.AllocateMemory(nobj, size)
}

// Free releases memory obtained from Alloc of an equal Memory.
func (m Memory) Free(ptr unsafe.Pointer) {
	m.free.FreeMemory(ptr)
}

// Equal reports whether both handles wrap the same allocate and free callbacks.
func (m Memory) Equal(other Memory) bool {
	return sameCallback(m.alloc, other.alloc) && sameCallback(m.free, other.free)
}

// sameCallback compares two callbacks by interface identity. Callbacks that
// cannot be compared, including comparable structs holding a func, map or
// slice in an interface field, are never equal.
func sameCallback(a, b any) (eq bool) {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	t := reflect.TypeOf(a)
	if t != reflect.TypeOf(b) || !t.Comparable() {
		return false
	}
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}
