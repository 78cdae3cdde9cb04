package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseAllocate,
				Kind:   KindAllocation,
				GoType: "model.Widget",
				Detail: "host refused",
			},
			contains: []string{"allocate allocation (model.Widget): host refused"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDestroy,
				Kind:  KindNilPointer,
			},
			contains: []string{"destroy nil_pointer"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseInstantiate,
				Kind:   KindFatal,
				Detail: "shared table corrupted",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"instantiate fatal: shared table corrupted: underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				assert.Contains(t, msg, s)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(PhaseHost, KindInvalidInput, cause, "bad callbacks")

	assert.Same(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
}

func TestError_Is(t *testing.T) {
	err := AllocationFailed("int", 4, 8)

	assert.True(t, errors.Is(err, &Error{Phase: PhaseAllocate, Kind: KindAllocation}))
	assert.False(t, errors.Is(err, &Error{Phase: PhaseAllocate, Kind: KindFatal}))
	assert.False(t, errors.Is(err, &Error{Phase: PhaseConstruct, Kind: KindAllocation}))
	assert.False(t, errors.Is(err, errors.New("allocation")))
}

func TestError_IsWildcard(t *testing.T) {
	err := fmt.Errorf("step: %w", Fatal("solver diverged", nil))

	assert.True(t, errors.Is(err, &Error{Kind: KindFatal}))
	assert.True(t, errors.Is(err, &Error{Phase: PhaseInstantiate}))
	assert.True(t, errors.Is(err, &Error{}))
	assert.False(t, errors.Is(err, &Error{Kind: KindAllocation}))
}

func TestBuilder(t *testing.T) {
	err := New(PhaseConstruct, KindInvalidInput).
		GoType("model.State").
		Value(-1).
		Detail("negative step size %d", -1).
		Cause(errors.New("inner")).
		Build()

	assert.Equal(t, PhaseConstruct, err.Phase)
	assert.Equal(t, KindInvalidInput, err.Kind)
	assert.Equal(t, "model.State", err.GoType)
	assert.Equal(t, -1, err.Value)
	assert.Equal(t, "negative step size -1", err.Detail)
	require.NotNil(t, err.Cause)
}

func TestBuilder_DetailWithoutArgs(t *testing.T) {
	err := New(PhaseLog, KindUnsupported).Detail("buffer 100%% full").Build()
	assert.Equal(t, "buffer 100% full", err.Detail)
}

func TestAllocationFailed(t *testing.T) {
	err := AllocationFailed("float64", 3, 8)

	assert.Equal(t, KindAllocation, err.Kind)
	assert.Equal(t, uintptr(3), err.Value)
	assert.True(t, strings.Contains(err.Error(), "3 object(s) of 8 bytes"))
}

func TestKindPredicates(t *testing.T) {
	alloc := AllocationFailed("byte", 1, 1)
	fatal := Fatal("model table corrupted", nil)

	assert.True(t, IsAllocationFailure(alloc))
	assert.False(t, IsFatal(alloc))
	assert.True(t, IsFatal(fatal))
	assert.False(t, IsAllocationFailure(fatal))

	assert.False(t, IsFatal(nil))
	assert.False(t, IsFatal(errors.New("plain")))
}

func TestKindPredicates_DeepChain(t *testing.T) {
	fatal := Fatal("lost host", nil)
	wrapped := Wrap(PhaseConstruct, KindInvalidInput, fmt.Errorf("step: %w", fatal), "construct state")

	assert.True(t, IsFatal(wrapped))
	assert.False(t, IsAllocationFailure(wrapped))

	outer := fmt.Errorf("instantiate: %w", wrapped)
	assert.True(t, IsFatal(outer))
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		err   *Error
		phase Phase
		kind  Kind
	}{
		{Unsupported(PhaseAllocate, "*int", "pointer element"), PhaseAllocate, KindUnsupported},
		{NilPointer(PhaseDestroy, "model.Widget"), PhaseDestroy, KindNilPointer},
		{InvalidInput(PhaseHost, "missing logger"), PhaseHost, KindInvalidInput},
		{NotInitialized(PhaseHost, "allocateMemory"), PhaseHost, KindNotInitialized},
		{Fatal("boom", nil), PhaseInstantiate, KindFatal},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.phase, tt.err.Phase)
			assert.Equal(t, tt.kind, tt.err.Kind)
			assert.NotEmpty(t, tt.err.Error())
		})
	}

	assert.Contains(t, NotInitialized(PhaseHost, "allocateMemory").Error(), "allocateMemory not initialized")
}
