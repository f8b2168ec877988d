package bridge

import (
	"context"
	"errors"
	"iter"
)

// AsyncIterator is an externally driven iterator: each step is an
// Awaitable the outer driver resolves. Exhaustion is signaled by a
// step failing with ErrAsyncExhausted.
type AsyncIterator interface {
	Next() Awaitable
}

// AsyncGenerator extends AsyncIterator with the full generator
// protocol: receiving values, receiving errors, and closure.
type AsyncGenerator interface {
	AsyncIterator
	Send(v any) Awaitable
	Throw(err error) Awaitable
	Close() Awaitable
}

// Iter consumes an AsyncIterator from inside a bridged task as if it
// were an ordinary synchronous iterator. Every advance suspends the
// task until the outer driver has resolved the iterator's step.
type Iter struct {
	noCopy noCopy
	ctx    context.Context
	it     AsyncIterator
	err    error
}

// NewIter returns an Iter over it. The context must belong to a
// bridged task; the methods fail with ErrNotInTask otherwise.
func NewIter(ctx context.Context, it AsyncIterator) *Iter {
	return &Iter{ctx: ctx, it: it}
}

// Next advances the iterator. It returns the next value and true, or
// false once the iterator is exhausted.
func (g *Iter) Next() (any, bool, error) {
	return g.await(g.it.Next())
}

// Send delivers a value to the iterator and advances it. The
// underlying iterator must implement AsyncGenerator.
func (g *Iter) Send(v any) (any, bool, error) {
	ag, ok := g.it.(AsyncGenerator)
	if !ok {
		return nil, false, ErrNoSend
	}
	return g.await(ag.Send(v))
}

// Throw delivers an error to the iterator and advances it. The
// underlying iterator must implement AsyncGenerator.
func (g *Iter) Throw(err error) (any, bool, error) {
	ag, ok := g.it.(AsyncGenerator)
	if !ok {
		return nil, false, err
	}
	return g.await(ag.Throw(err))
}

// Close closes the underlying iterator, if it supports closure.
// Exhaustion surfacing from the close step is treated as success.
func (g *Iter) Close() error {
	ag, ok := g.it.(AsyncGenerator)
	if !ok {
		return nil
	}
	_, err := Await(g.ctx, ag.Close())
	if errors.Is(err, ErrAsyncExhausted) || errors.Is(err, ErrDone) {
		return nil
	}
	return err
}

// All returns a range-over-func iterator over the remaining values.
// Iteration ends cleanly on exhaustion; a failure stops it and is
// reported by Err. Breaking out early closes the underlying iterator.
func (g *Iter) All() iter.Seq[any] {
	return func(yield func(any) bool) {
		for {
			v, ok, err := g.Next()
			if err != nil {
				g.err = err
				return
			}
			if !ok {
				return
			}
			if !yield(v) {
				g.err = g.Close()
				return
			}
		}
	}
}

// Err returns the first failure observed by All.
func (g *Iter) Err() error { return g.err }

func (g *Iter) await(aw Awaitable) (any, bool, error) {
	v, err := Await(g.ctx, aw)
	if err != nil {
		if errors.Is(err, ErrAsyncExhausted) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return v, true, nil
}
