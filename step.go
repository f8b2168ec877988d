package bridge

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInTask is returned when Await or an adapter built on it
	// is invoked outside a task created by this package.
	ErrNotInTask = errors.New("bridge: not called from inside a bridged task")

	// ErrNotAwaitable is returned when a nil awaitable is passed to
	// Await.
	ErrNotAwaitable = errors.New("bridge: argument is not awaitable")

	// ErrDone is returned when a completed coroutine or awaitable is
	// advanced again.
	ErrDone = errors.New("bridge: coroutine already completed")

	// ErrExhausted signals that a synchronous iterator has no more
	// values.
	ErrExhausted = errors.New("bridge: iterator exhausted")

	// ErrAsyncExhausted signals that an asynchronous iterator has no
	// more values. A bridged task that terminates with ErrExhausted
	// is remapped to this signal so that iterator exhaustion inside a
	// task is never mistaken for exhaustion of the coroutine itself.
	ErrAsyncExhausted = errors.New("bridge: async iterator exhausted")

	// ErrNoSend is returned when a value is sent to an iterator that
	// does not support receiving values.
	ErrNoSend = errors.New("bridge: iterator does not support send")

	// ErrGeneratorValue is returned by the reverse iterator adapter
	// when the wrapped iterator finishes with a non-nil final value.
	ErrGeneratorValue = errors.New("bridge: generator returned a value other than nil")
)

// Step is the outcome of advancing an Awaitable by one step: either
// an intermediate yielded value or a terminal result. A failed step
// is reported through the error return of Send and Throw instead.
type Step struct {
	v    any
	done bool
}

// Yield returns an intermediate step carrying v. The awaitable is
// still running and must be advanced again.
func Yield(v any) Step { return Step{v: v} }

// Result returns a terminal step carrying the final value v.
func Result(v any) Step { return Step{v: v, done: true} }

// Done reports whether the step is terminal.
func (s Step) Done() bool { return s.done }

// Value returns the step's payload: the yielded value for an
// intermediate step, the final result for a terminal one.
func (s Step) Value() any { return s.v }

// Awaitable is a single-step coroutine: an external driver advances
// it by delivering a value or an error and receives either an
// intermediate step to wait on or a terminal result. Close abandons
// the awaitable; closing an already completed awaitable is a no-op.
type Awaitable interface {
	Send(v any) (Step, error)
	Throw(err error) (Step, error)
	Close() error
}

// Ready returns an Awaitable that completes immediately with v.
func Ready(v any) Awaitable { return &ready{v: v} }

// Fail returns an Awaitable that fails immediately with err.
func Fail(err error) Awaitable { return &ready{err: err} }

type ready struct {
	v    any
	err  error
	done bool
}

func (r *ready) Send(any) (Step, error) {
	if r.done {
		return Step{}, ErrDone
	}
	r.done = true
	if r.err != nil {
		return Step{}, r.err
	}
	return Result(r.v), nil
}

func (r *ready) Throw(err error) (Step, error) {
	r.done = true
	return Step{}, err
}

func (r *ready) Close() error {
	r.done = true
	return nil
}

// ExhaustedError reports iterator exhaustion together with an
// optional final value. It matches ErrExhausted under errors.Is.
type ExhaustedError struct {
	Value any
}

func (e *ExhaustedError) Error() string {
	if e.Value == nil {
		return ErrExhausted.Error()
	}
	return fmt.Sprintf("%s (value %v)", ErrExhausted.Error(), e.Value)
}

func (e *ExhaustedError) Is(target error) bool { return target == ErrExhausted }

// asyncExhaustedError is the remapped form of an ErrExhausted task
// termination. The cause is deliberately not exposed through Unwrap:
// the remapped signal must not match ErrExhausted, only
// ErrAsyncExhausted.
type asyncExhaustedError struct {
	cause error
}

func (e *asyncExhaustedError) Error() string { return ErrAsyncExhausted.Error() }

func (e *asyncExhaustedError) Is(target error) bool { return target == ErrAsyncExhausted }
