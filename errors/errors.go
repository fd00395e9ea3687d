package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the bridge lifecycle the error occurred
type Phase string

const (
	PhaseLoad     Phase = "load"     // module entry
	PhaseRegister Phase = "register" // symbol and hook registration
	PhaseExports  Phase = "exports"  // export construction
	PhaseRuntime  Phase = "runtime"  // steady-state engine operations
	PhaseReclaim  Phase = "reclaim"  // shared-buffer reclamation
	PhaseScript   Phase = "script"   // script compilation and execution
	PhaseTeardown Phase = "teardown" // isolate shutdown
)

// Kind categorizes the error
type Kind string

const (
	KindDuplicateExport   Kind = "duplicate_export"
	KindAlreadyLoaded     Kind = "already_loaded"
	KindClosed            Kind = "closed"
	KindSealed            Kind = "sealed"
	KindInvalidHandle     Kind = "invalid_handle"
	KindRefcountUnderflow Kind = "refcount_underflow"
	KindHookRejected      Kind = "hook_rejected"
	KindNotFound          Kind = "not_found"
	KindInvalidInput      Kind = "invalid_input"
	KindCompile           Kind = "compile"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Name   string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Name != "" {
		b.WriteString(" ")
		b.WriteString(fmt.Sprintf("%q", e.Name))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Name sets the export, symbol or script name the error refers to
func (b *Builder) Name(name string) *Builder {
	b.err.Name = name
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// DuplicateExport reports a name installed twice during export construction.
// Fatal to module load.
func DuplicateExport(name string) *Error {
	return &Error{
		Phase: PhaseExports,
		Kind:  KindDuplicateExport,
		Name:  name,
	}
}

// AlreadyLoaded reports a second module entry invocation on one isolate
func AlreadyLoaded(isolateID uint64) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindAlreadyLoaded,
		Detail: fmt.Sprintf("bridge already loaded into isolate %d", isolateID),
	}
}

// Closed reports an operation on a torn-down component
func Closed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: fmt.Sprintf("%s is closed", what),
	}
}

// Sealed reports a mutation of the exports object after construction
func Sealed() *Error {
	return &Error{
		Phase:  PhaseExports,
		Kind:   KindSealed,
		Detail: "exports are sealed after module construction",
	}
}

// InvalidHandle reports a buffer handle with no live entry
func InvalidHandle(phase Phase, handle uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidHandle,
		Detail: fmt.Sprintf("no buffer for handle %d", handle),
	}
}

// HookRejected reports a host that refused the prologue registration.
// Fatal to module load.
func HookRejected(cause error) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindHookRejected,
		Detail: "host rejected GC prologue registration",
		Cause:  cause,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// CompileFailed reports a script that could not be compiled
func CompileFailed(name string, cause error) *Error {
	return &Error{
		Phase: PhaseScript,
		Kind:  KindCompile,
		Name:  name,
		Cause: cause,
	}
}
