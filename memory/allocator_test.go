package memory

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/fmu-runtime/errors"
	"github.com/wippyai/fmu-runtime/host"
)

type vec3 struct {
	X, Y, Z float64
}

func TestAllocator_Allocate(t *testing.T) {
	mem, heap := newTestMemory(t)
	alloc := NewAllocator[vec3](mem)

	var events []host.Event
	heap.Observe(func(e host.Event) { events = append(events, e) })

	p, err := alloc.Allocate(4)
	require.NoError(t, err)
	require.NotNil(t, p)

	require.Len(t, events, 1)
	assert.Equal(t, host.EventAllocate, events[0].Kind)
	assert.Equal(t, uintptr(4), events[0].Count)
	assert.Equal(t, unsafe.Sizeof(vec3{}), events[0].Size)

	s := unsafe.Slice(p, 4)
	for i := range s {
		s[i] = vec3{X: float64(i), Y: 1, Z: 2}
	}
	assert.Equal(t, 3.0, s[3].X)

	alloc.Deallocate(p, 4)
	assert.Equal(t, 1, heap.Stats().Frees)
	assert.Equal(t, 0, heap.Stats().Live)
}

func TestAllocator_ZeroCount(t *testing.T) {
	mem, heap := newTestMemory(t)
	alloc := NewAllocator[int64](mem)

	p, err := alloc.Allocate(0)
	require.NoError(t, err)
	assert.Nil(t, p)

	var x int64
	alloc.Deallocate(&x, 0)
	alloc.Deallocate(nil, 0)

	stats := heap.Stats()
	assert.Equal(t, 0, stats.Allocs)
	assert.Equal(t, 0, stats.Frees)
	assert.Equal(t, 0, stats.BadFrees)
}

func TestAllocator_NegativeCount(t *testing.T) {
	mem, heap := newTestMemory(t)

	_, err := NewAllocator[int32](mem).Allocate(-1)
	require.Error(t, err)
	assert.False(t, errors.IsAllocationFailure(err))
	assert.Equal(t, 0, heap.Stats().Allocs)
}

func TestAllocator_Failure(t *testing.T) {
	mem, heap := newTestMemory(t)
	alloc := NewAllocator[uint16](mem)

	heap.FailNext(1)
	p, err := alloc.Allocate(10)
	require.Error(t, err)
	assert.Nil(t, p)
	assert.True(t, errors.IsAllocationFailure(err))
	assert.False(t, errors.IsFatal(err))
	assert.Contains(t, err.Error(), "uint16")

	p, err = alloc.Allocate(10)
	require.NoError(t, err)
	alloc.Deallocate(p, 10)
}

func TestAllocator_FailsExactlyWhenHostFails(t *testing.T) {
	mem, heap := newTestMemory(t)
	alloc := NewAllocator[float32](mem)

	heap.FailAfter(3)
	var ptrs []*float32
	for i := 1; i <= 5; i++ {
		p, err := alloc.Allocate(i)
		if i <= 3 {
			require.NoError(t, err, "allocation %d", i)
			ptrs = append(ptrs, p)
		} else {
			require.Error(t, err, "allocation %d", i)
			assert.True(t, errors.IsAllocationFailure(err))
		}
	}
	assert.Equal(t, 2, heap.Stats().Failed)

	for i, p := range ptrs {
		alloc.Deallocate(p, i+1)
	}
	assert.Equal(t, 0, heap.Stats().Live)
}

func TestAllocator_RejectsPointerTypes(t *testing.T) {
	mem, heap := newTestMemory(t)

	type withString struct {
		Name string
	}
	type withArray struct {
		Refs [2]*int
	}

	tests := []struct {
		name string
		fn   func() error
	}{
		{"pointer", func() error { _, err := NewAllocator[*int](mem).Allocate(1); return err }},
		{"string field", func() error { _, err := NewAllocator[withString](mem).Allocate(1); return err }},
		{"array of pointers", func() error { _, err := NewAllocator[withArray](mem).Allocate(1); return err }},
		{"slice", func() error { _, err := NewAllocator[[]byte](mem).Allocate(1); return err }},
		{"interface", func() error { _, err := NewAllocator[any](mem).Allocate(1); return err }},
		{"map", func() error { _, err := NewAllocator[map[int]int](mem).Allocate(1); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn()
			require.Error(t, err)
			var e *errors.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, errors.KindUnsupported, e.Kind)
		})
	}
	assert.Equal(t, 0, heap.Stats().Allocs)
}

func TestHasPointers(t *testing.T) {
	type flat struct {
		A int
		B [4]float64
		C struct{ D uint8 }
	}
	type empty struct{}

	assert.False(t, hasPointersOf[flat]())
	assert.False(t, hasPointersOf[empty]())
	assert.False(t, hasPointersOf[[0]*int]())
	assert.False(t, hasPointersOf[uintptr]())
	assert.True(t, hasPointersOf[unsafe.Pointer]())
	assert.True(t, hasPointersOf[chan int]())
	assert.True(t, hasPointersOf[func()]())
}

func hasPointersOf[T any]() bool {
	return checkElem[T]() != nil
}

func TestRebind_PreservesHandle(t *testing.T) {
	mem, _ := newTestMemory(t)
	ints := NewAllocator[int](mem)

	floats := Rebind[float64](ints)
	back := Rebind[int](floats)

	assert.True(t, floats.Memory().Equal(ints.Memory()))
	assert.True(t, back.Equal(ints))
}

func TestAllocator_Equal(t *testing.T) {
	mem, _ := newTestMemory(t)
	other, _ := newTestMemory(t)

	a := NewAllocator[int](mem)
	b := NewAllocator[int](mem)
	c := NewAllocator[int](other)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestSameMemory(t *testing.T) {
	mem, _ := newTestMemory(t)
	other, _ := newTestMemory(t)

	ints := NewAllocator[int](mem)
	bytes := Rebind[byte](ints)

	assert.True(t, SameMemory(ints, bytes))
	assert.True(t, SameMemory(bytes, ints))
	assert.False(t, SameMemory(bytes, NewAllocator[float64](other)))
}

func TestAllocator_InterchangeableRelease(t *testing.T) {
	mem, heap := newTestMemory(t)
	a := NewAllocator[int64](mem)
	b := Rebind[int64](Rebind[byte](a))
	require.True(t, a.Equal(b))

	p, err := a.Allocate(8)
	require.NoError(t, err)
	b.Deallocate(p, 8)

	stats := heap.Stats()
	assert.Equal(t, 1, stats.Frees)
	assert.Equal(t, 0, stats.BadFrees)
	assert.Equal(t, 0, stats.Live)
}

func TestAllocator_Slice(t *testing.T) {
	mem, heap := newTestMemory(t)
	alloc := NewAllocator[int32](mem)

	s, err := alloc.AllocateSlice(5)
	require.NoError(t, err)
	assert.Len(t, s, 5)
	assert.Equal(t, []int32{0, 0, 0, 0, 0}, s)

	alloc.DeallocateSlice(s)
	assert.Equal(t, 0, heap.Stats().Live)

	empty, err := alloc.AllocateSlice(0)
	require.NoError(t, err)
	assert.Nil(t, empty)
	alloc.DeallocateSlice(empty)
	assert.Equal(t, 1, heap.Stats().Allocs)
}
