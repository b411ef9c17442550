// Package errors defines the error-kind taxonomy used across the
// bytecode-to-IR transformer, the RTA driver, and the abstract-domain
// solver, and renders them with source/method location context the way a
// compiler diagnostic would.
package errors

import (
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Kind partitions errors by locality, mirroring the three buckets a caller
// must treat differently: abort-the-run, abort-the-method, or log-and-skip.
type Kind string

const (
	// Input-invalid: fatal, reported to the caller.
	KindSubroutine                Kind = "Subroutine"
	KindBadMultiarrayDimension    Kind = "BadMultiarrayDimension"
	KindBadStack                  Kind = "BadStack"
	KindNonemptyStackBackwardJump Kind = "NonemptyStackBackwardJump"

	// IR-synthesis constraints: fatal per-method.
	KindUninitIsNotExpr         Kind = "UninitIsNotExpr"
	KindTypeConstraintOnUninit  Kind = "TypeConstraintOnUninit"
	KindContentConstraintOnUninit Kind = "ContentConstraintOnUninit"

	// Dispatch/resolution: recoverable, JVM-mandated.
	KindIncompatibleClassChange Kind = "IncompatibleClassChangeError"
	KindNoSuchMethod            Kind = "NoSuchMethodError"
	KindNoSuchField             Kind = "NoSuchFieldError"
	KindNoClassDefFound         Kind = "NoClassDefFoundError"
	KindAbstractMethod          Kind = "AbstractMethodError"
	KindIllegalAccess           Kind = "IllegalAccessError"
	KindInvokeNotFound          Kind = "InvokeNotFound"

	// Domain-level: debug-only precondition violations inside the
	// abstract-interpretation framework.
	KindDomainPrecondition Kind = "DomainPrecondition"
)

// Fatal reports whether an error of this kind must abort the method (or,
// for the Input-invalid bucket, the whole run) rather than being recorded
// and skipped.
func (k Kind) Fatal() bool {
	switch k {
	case KindIncompatibleClassChange, KindNoSuchMethod, KindNoSuchField,
		KindNoClassDefFound, KindAbstractMethod, KindIllegalAccess,
		KindInvokeNotFound:
		return false
	default:
		return true
	}
}

// Location pins an error to a class/method/bytecode-pc triple — the
// coordinates every component in this module threads through its
// constructors instead of ambient globals.
type Location struct {
	Class  string
	Method string
	PC     int // bytecode pc, or -1 if not applicable
}

func (l Location) String() string {
	if l.Class == "" {
		return ""
	}
	if l.PC < 0 {
		return fmt.Sprintf("%s.%s", l.Class, l.Method)
	}
	return fmt.Sprintf("%s.%s@%d", l.Class, l.Method, l.PC)
}

// AnalysisError is the single error type every component in this module
// returns. It carries enough context to be rendered as a standalone
// diagnostic, and it composes with github.com/pkg/errors so wrap points
// keep a cause chain without each caller hand-building a call stack.
type AnalysisError struct {
	Kind     Kind
	Location Location
	Message  string
	cause    error
}

// New builds an AnalysisError with no wrapped cause.
func New(kind Kind, loc Location, format string, args ...interface{}) *AnalysisError {
	return &AnalysisError{Kind: kind, Location: loc, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind/location context to an existing error, preserving it
// as the cause via pkg/errors so Cause(...) and %+v stack rendering work.
func Wrap(err error, kind Kind, loc Location, format string, args ...interface{}) *AnalysisError {
	return &AnalysisError{
		Kind:     kind,
		Location: loc,
		Message:  fmt.Sprintf(format, args...),
		cause:    pkgerrors.WithStack(err),
	}
}

func (e *AnalysisError) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	if loc := e.Location.String(); loc != "" {
		sb.WriteString(" at ")
		sb.WriteString(loc)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.cause.Error())
	}
	return sb.String()
}

func (e *AnalysisError) Unwrap() error { return e.cause }

// Cause returns the deepest non-AnalysisError cause, for callers that want
// to inspect the original error (e.g. an os.PathError from class loading).
func (e *AnalysisError) Cause() error {
	if e.cause == nil {
		return e
	}
	return pkgerrors.Cause(e.cause)
}

// Is lets errors.Is(err, SomeKind) style matching work against Kind values
// by comparing the dynamic *AnalysisError's Kind field.
func Is(err error, kind Kind) bool {
	ae, ok := err.(*AnalysisError)
	if !ok {
		return false
	}
	return ae.Kind == kind
}
