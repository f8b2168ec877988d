package bridge

import (
	"context"
	"errors"
)

// Iterator is a blocking-style iterator meant to run inside a task.
// The context passed to Next belongs to the task the step runs on and
// may be used with Await. Exhaustion is signaled by returning
// ErrExhausted, or an *ExhaustedError carrying a final value.
type Iterator interface {
	Next(ctx context.Context) (any, error)
}

// SendIterator is an Iterator that also accepts values from its
// consumer.
type SendIterator interface {
	Iterator
	Send(ctx context.Context, v any) (any, error)
}

// ThrowIterator is an Iterator that accepts errors from its consumer,
// giving it a chance to recover and keep iterating.
type ThrowIterator interface {
	Throw(ctx context.Context, err error) (any, error)
}

// CloseIterator is an Iterator that needs cleanup when iteration is
// abandoned.
type CloseIterator interface {
	Close(ctx context.Context) error
}

// AsyncIter exposes a blocking-style Iterator as an AsyncGenerator.
// Each outward step runs the corresponding iterator method on a fresh
// bridged task, so an iterator that itself awaits (through the step's
// context) suspends transparently to the outer driver.
type AsyncIter struct {
	ctx  context.Context
	it   Iterator
	send SendIterator
}

// NewAsyncIter returns an AsyncIter over it. Send support, Throw
// support and closure are picked up from the iterator's optional
// SendIterator, ThrowIterator and CloseIterator implementations.
func NewAsyncIter(ctx context.Context, it Iterator) *AsyncIter {
	a := &AsyncIter{ctx: ctx, it: it}
	a.send, _ = it.(SendIterator)
	return a
}

// Next advances the iterator by one step.
func (a *AsyncIter) Next() Awaitable {
	return a.step(a.it.Next)
}

// Send delivers a value to the iterator and advances it. A non-nil
// value requires SendIterator support; a nil value degrades to Next,
// matching the protocol's nil-primed first step.
func (a *AsyncIter) Send(v any) Awaitable {
	if a.send != nil {
		return a.step(func(ctx context.Context) (any, error) { return a.send.Send(ctx, v) })
	}
	if v != nil {
		return Fail(ErrNoSend)
	}
	return a.Next()
}

// Throw delivers an error to the iterator. Without ThrowIterator
// support the error comes straight back to the driver.
func (a *AsyncIter) Throw(err error) Awaitable {
	if th, ok := a.it.(ThrowIterator); ok {
		return a.step(func(ctx context.Context) (any, error) { return th.Throw(ctx, err) })
	}
	return Fail(err)
}

// Close closes the iterator, if it supports closure.
func (a *AsyncIter) Close() Awaitable {
	if cl, ok := a.it.(CloseIterator); ok {
		return a.step(func(ctx context.Context) (any, error) { return nil, cl.Close(ctx) })
	}
	return Ready(nil)
}

// step bridges one iterator method call onto a fresh task, handing
// the method that task's context so Await works from inside it.
func (a *AsyncIter) step(fn func(ctx context.Context) (any, error)) Awaitable {
	return &genStep{inner: New(a.ctx, Func(fn))}
}

// genStep filters one bridged iterator step: a remapped exhaustion
// carrying a final value violates the adapter contract, while an
// async exhaustion raised by the iterator itself passes through
// untouched.
type genStep struct {
	inner *Coroutine
}

func (g *genStep) Send(v any) (Step, error) {
	s, err := g.inner.Send(v)
	return s, g.filter(err)
}

func (g *genStep) Throw(err error) (Step, error) {
	s, e := g.inner.Throw(err)
	return s, g.filter(e)
}

func (g *genStep) Close() error { return g.inner.Close() }

func (g *genStep) filter(err error) error {
	var ae *asyncExhaustedError
	if err == nil || !errors.As(err, &ae) {
		return err
	}
	if ae.cause == nil || !errors.Is(ae.cause, ErrExhausted) {
		return err
	}
	var ex *ExhaustedError
	if errors.As(ae.cause, &ex) && ex.Value != nil {
		return ErrGeneratorValue
	}
	return err
}
