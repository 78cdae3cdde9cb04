package memory

import (
	"math"
	"reflect"
	"sync"
	"unsafe"

	"github.com/wippyai/fmu-runtime/errors"
)

// Allocator hands out storage for T from host memory. Its only state is the
// Memory handle, so it is cheap to copy and two allocators are equal exactly
// when their handles are.
//
// Host storage is not scanned by the garbage collector: T must not contain Go
// pointers (pointers, slices, maps, strings, interfaces, channels, funcs).
type Allocator[T any] struct {
	mem Memory
}

// NewAllocator returns an allocator for T backed by mem.
func NewAllocator[T any](mem Memory) Allocator[T] {
	return Allocator[T]{mem: mem}
}

// Rebind converts an allocator to another element type, keeping the handle.
func Rebind[U, T any](a Allocator[T]) Allocator[U] {
	return Allocator[U]{mem: a.mem}
}

// Memory returns the handle the allocator draws from.
func (a Allocator[T]) Memory() Memory {
	return a.mem
}

// Equal reports whether storage from one allocator may be released through
// the other.
func (a Allocator[T]) Equal(other Allocator[T]) bool {
	return a.mem.Equal(other.mem)
}

// SameMemory is Equal across element types: allocators compare equal by
// handle whatever they allocate.
func SameMemory[T, U any](a Allocator[T], b Allocator[U]) bool {
	return a.mem.Equal(b.mem)
}

// Allocate returns storage for n contiguous values of T. Zero-length requests
// return nil without reaching the host. A nil result from the host is
// reported as an allocation failure.
func (a Allocator[T]) Allocate(n int) (*T, error) {
	if n == 0 {
		return nil, nil
	}
	if n < 0 {
		return nil, errors.New(errors.PhaseAllocate, errors.KindInvalidInput).
			GoType(typeName[T]()).
			Value(n).
			Detail("negative element count %d", n).
			Build()
	}
	if err := checkElem[T](); err != nil {
		return nil, err
	}

	size := unsafe.Sizeof(*new(T))
	if size > 0 && uintptr(n) > math.MaxInt/size {
		return nil, errors.New(errors.PhaseAllocate, errors.KindInvalidInput).
			GoType(typeName[T]()).
			Value(n).
			Detail("%d elements of %d bytes overflow the address space", n, size).
			Build()
	}

	p := a.mem.Alloc(uintptr(n), size)
	if p == nil {
		return nil, errors.AllocationFailed(typeName[T](), uintptr(n), size)
	}
	return (*T)(p), nil
}

// Deallocate releases storage for n values obtained from Allocate. A zero
// count is a no-op, mirroring Allocate.
func (a Allocator[T]) Deallocate(p *T, n int) {
	if n > 0 {
		a.mem.Free(unsafe.Pointer(p))
	}
}

// AllocateSlice is Allocate returning the storage as a slice of length n.
func (a Allocator[T]) AllocateSlice(n int) ([]T, error) {
	p, err := a.Allocate(n)
	if err != nil || p == nil {
		return nil, err
	}
	return unsafe.Slice(p, n), nil
}

// DeallocateSlice releases a slice obtained from AllocateSlice.
func (a Allocator[T]) DeallocateSlice(s []T) {
	if cap(s) == 0 {
		return
	}
	a.Deallocate(unsafe.SliceData(s), cap(s))
}

var pointerFree sync.Map // reflect.Type -> bool

func checkElem[T any]() error {
	t := reflect.TypeFor[T]()
	ok, cached := pointerFree.Load(t)
	if !cached {
		ok = !hasPointers(t)
		pointerFree.Store(t, ok)
	}
	if !ok.(bool) {
		return errors.Unsupported(errors.PhaseAllocate, t.String(), "element type holds Go pointers and cannot live in host memory")
	}
	return nil
}

func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Chan,
		reflect.Func, reflect.Interface, reflect.Slice, reflect.String:
		return true
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
	}
	return false
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
