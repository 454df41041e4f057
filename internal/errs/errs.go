// Package errs holds the error helpers shared by the engine, its
// repositories and the command layer.
package errs

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Wrap prefixes err with msg; nil stays nil so call sites can wrap
// unconditionally.
func Wrap(err error, msg string) error {
	return Wrapf(err, "%s", msg)
}

func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// IsAny is errors.Is over a set of sentinels, e.g. every readiness
// validation error.
func IsAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

type stackError struct {
	cause error
	trace []byte
}

func (e *stackError) Error() string { return e.cause.Error() }
func (e *stackError) Unwrap() error { return e.cause }

// WithStack records the current goroutine stack on err. Used where a failure
// has no caller to blame, such as a recovered metrics sink panic. An error
// that already carries a stack is returned as is.
func WithStack(err error) error {
	if err == nil || StackOf(err) != nil {
		return err
	}
	return &stackError{cause: err, trace: debug.Stack()}
}

// StackOf returns the stack recorded anywhere in err's chain, or nil.
func StackOf(err error) []byte {
	var se *stackError
	if errors.As(err, &se) {
		return se.trace
	}
	return nil
}

// Loggable renders err as a slog group: message, unwrap chain and, when
// recorded, the stack. Log it as slog.Any("err", errs.Loggable(err)).
func Loggable(err error) slog.LogValuer { return loggable{err: err} }

type loggable struct{ err error }

func (l loggable) LogValue() slog.Value {
	if l.err == nil {
		return slog.GroupValue()
	}

	attrs := []slog.Attr{
		slog.String("message", l.err.Error()),
		slog.Any("chain", ErrorChainStrings(l.err)),
	}
	if trace := StackOf(l.err); trace != nil {
		attrs = append(attrs, slog.String("stack", string(trace)))
	}
	return slog.GroupValue(attrs...)
}

// ErrorChainStrings lists err and each error it wraps, outermost first.
func ErrorChainStrings(err error) []string {
	var chain []string
	for ; err != nil; err = errors.Unwrap(err) {
		chain = append(chain, err.Error())
	}
	return chain
}
