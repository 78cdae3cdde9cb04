package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase is the step of the model lifecycle that failed.
type Phase string

const (
	PhaseAllocate    Phase = "allocate"    // host allocate callback
	PhaseConstruct   Phase = "construct"   // object construction in host storage
	PhaseDestroy     Phase = "destroy"     // object destruction
	PhaseInstantiate Phase = "instantiate" // model instantiation
	PhaseHost        Phase = "host"        // host callback wiring
	PhaseLog         Phase = "log"         // log forwarding
)

// Kind classifies a failure. Callers branch on Kind, not on messages.
type Kind string

const (
	KindAllocation     Kind = "allocation"
	KindFatal          Kind = "fatal"
	KindUnsupported    Kind = "unsupported"
	KindInvalidInput   Kind = "invalid_input"
	KindNilPointer     Kind = "nil_pointer"
	KindNotInitialized Kind = "not_initialized"
)

// Error is returned by every package in the module. Value holds the offending
// input when there is one, for example the element count of a failed
// allocation.
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	GoType string
	Detail string
}

// Error renders "phase kind (GoType): detail: cause", omitting empty parts.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Phase))
	b.WriteByte(' ')
	b.WriteString(string(e.Kind))
	if e.GoType != "" {
		fmt.Fprintf(&b, " (%s)", e.GoType)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches a target *Error by Phase and Kind. An empty field in the target
// matches anything, so errors.Is(err, &Error{Kind: KindFatal}) finds a fatal
// error raised in any phase.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return (t.Phase == "" || t.Phase == e.Phase) && (t.Kind == "" || t.Kind == e.Kind)
}

// Builder assembles an Error field by field.
type Builder struct {
	err Error
}

// New starts an Error in phase with kind.
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail formats msg with args like fmt.Sprintf.
func (b *Builder) Detail(msg string, args ...any) *Builder {
	b.err.Detail = fmt.Sprintf(msg, args...)
	return b
}

func (b *Builder) Build() *Error {
	return &b.err
}

// AllocationFailed creates the error reported when the host allocate callback
// returns nil for a non-empty request.
func AllocationFailed(goType string, count, size uintptr) *Error {
	return &Error{
		Phase:  PhaseAllocate,
		Kind:   KindAllocation,
		GoType: goType,
		Detail: fmt.Sprintf("host failed to allocate %d object(s) of %d bytes", count, size),
		Value:  count,
	}
}

// Fatal creates an error meaning every instance of the model is now invalid,
// not just the current one.
func Fatal(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseInstantiate,
		Kind:   KindFatal,
		Detail: detail,
		Cause:  cause,
	}
}

// Unsupported reports a Go type or operation the host memory bridge cannot
// serve, such as element types holding Go pointers.
func Unsupported(phase Phase, goType, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		GoType: goType,
		Detail: what,
	}
}

func NilPointer(phase Phase, goType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		GoType: goType,
		Detail: "nil pointer",
	}
}

func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotInitialized creates a not-initialized error for a missing host callback
func NotInitialized(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", what),
	}
}

// Wrap attaches phase, kind and detail to cause. Fatal causes stay visible to
// IsFatal whatever kind the wrapper carries.
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// IsAllocationFailure reports whether any error in err's chain is an
// allocation failure.
func IsAllocationFailure(err error) bool {
	return hasKind(err, KindAllocation)
}

// IsFatal reports whether any error in err's chain is fatal. A fatal cause
// wrapped by a non-fatal error is still fatal.
func IsFatal(err error) bool {
	return hasKind(err, KindFatal)
}

func hasKind(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Cause
	}
	return false
}
