package memory

import "unsafe"

// Destroyer is implemented by types that hold resources of their own.
// Delete calls Destroy before the object's storage goes back to the host.
type Destroyer interface {
	Destroy()
}

// New allocates storage for one T, zeroes it and runs construct on it, in
// the style of the built-in new operator. If construct fails or panics the
// storage is released before the failure propagates.
func New[T any](mem Memory, construct func(*T) error) (*T, error) {
	alloc := NewAllocator[T](mem)
	p, err := alloc.Allocate(1)
	if err != nil {
		return nil, err
	}

	constructed := false
	defer func() {
		if !constructed {
			alloc.Deallocate(p, 1)
		}
	}()

	var zero T
	*p = zero
	if construct != nil {
		if err := construct(p); err != nil {
			return nil, err
		}
	}
	constructed = true
	return p, nil
}

// Delete destroys obj and returns its storage to the host, in the style of
// the built-in delete operator. A nil obj is ignored.
func Delete[T any](mem Memory, obj *T) {
	if obj == nil {
		return
	}
	alloc := NewAllocator[T](mem)
	defer alloc.Deallocate(obj, 1)

	if d, ok := any(obj).(Destroyer); ok {
		d.Destroy()
	}
}

// noCopy lets go vet flag accidental copies of an owner.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// UniquePtr exclusively owns one object created by AllocateUnique. The
// release function travels with the pointer, so the owner needs no knowledge
// of the Memory it came from.
//
// An owner is either empty or holds both a pointer and its release function.
// Owners must not be copied; use Move to transfer ownership.
type UniquePtr[T any] struct {
	noCopy  noCopy
	ptr     *T
	release func(unsafe.Pointer)
}

// AllocateUnique creates an object with New and returns an owner that runs
// Delete on it exactly once: on Close, or when Assign displaces it.
func AllocateUnique[T any](mem Memory, construct func(*T) error) (*UniquePtr[T], error) {
	p, err := New(mem, construct)
	if err != nil {
		return nil, err
	}
	return &UniquePtr[T]{
		ptr: p,
		release: func(obj unsafe.Pointer) {
			Delete(mem, (*T)(obj))
		},
	}, nil
}

// Get returns the owned object, or nil if the owner is empty.
func (u *UniquePtr[T]) Get() *T {
	return u.ptr
}

// Valid reports whether the owner holds an object.
func (u *UniquePtr[T]) Valid() bool {
	return u.ptr != nil
}

// Close destroys and frees the owned object and leaves the owner empty.
// Closing an empty owner does nothing.
func (u *UniquePtr[T]) Close() {
	p, release := u.take()
	if p != nil {
		release(unsafe.Pointer(p))
	}
}

// Assign destroys the currently owned object, if any, and takes over the
// object owned by src, leaving src empty.
func (u *UniquePtr[T]) Assign(src *UniquePtr[T]) {
	if src == u {
		return
	}
	u.Close()
	if src != nil {
		u.ptr, u.release = src.take()
	}
}

// Move transfers ownership to a new owner and leaves u empty.
func (u *UniquePtr[T]) Move() *UniquePtr[T] {
	p, release := u.take()
	return &UniquePtr[T]{ptr: p, release: release}
}

// Detach gives up ownership without destroying the object. The caller
// becomes responsible for passing the pointer to release exactly once.
func (u *UniquePtr[T]) Detach() (*T, func(unsafe.Pointer)) {
	return u.take()
}

func (u *UniquePtr[T]) take() (*T, func(unsafe.Pointer)) {
	p, release := u.ptr, u.release
	u.ptr, u.release = nil, nil
	return p, release
}
