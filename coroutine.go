package bridge

import (
	"context"
	"errors"
)

// Func is a blocking-style callable runnable under the bridge.
// Arguments are closure-captured; the context carries the task the
// callable runs on and must be passed to Await and the adapters.
type Func func(ctx context.Context) (any, error)

// Coroutine exposes a stackful task as a single-step coroutine. An
// external driver advances it with Send and Throw; whenever the task
// awaits an inner awaitable, the coroutine drives that awaitable and
// forwards its intermediate steps outward unchanged, so await chains
// compose transparently.
//
// A Coroutine owns its task exclusively and must not be copied or
// shared between drivers.
type Coroutine struct {
	noCopy  noCopy
	sched   scheduler
	task    *tasklet
	waitFor Awaitable
	value   any
	err     error
	done    bool
}

// New spawns a fresh task bound to fn and returns the Coroutine
// driving it. The callable does not start running until the first
// Send.
func New(ctx context.Context, fn Func) *Coroutine {
	return &Coroutine{task: newTasklet(ctx, fn)}
}

// AsCoroutine wraps a callable into a coroutine factory: each call of
// the returned function spawns a new task bound to fn.
func AsCoroutine(fn Func) func(context.Context) *Coroutine {
	return func(ctx context.Context) *Coroutine {
		return New(ctx, fn)
	}
}

// Run bridges fn and drives it to completion, delivering nil for any
// awaitable step that surfaces. It suffices for callables whose
// awaits all resolve within the bridge machinery itself; anything
// yielded outward has no external driver here to resolve it.
func Run(ctx context.Context, fn Func) (any, error) {
	c := New(ctx, fn)
	defer c.Close()

	for {
		s, err := c.Send(nil)
		if err != nil {
			return nil, err
		}
		if s.Done() {
			return s.Value(), nil
		}
	}
}

// Call bridges fn onto a fresh task and awaits it from inside the
// calling task.
func Call(ctx context.Context, fn Func) (any, error) {
	return Await(ctx, New(ctx, fn))
}

// Await suspends the calling task until aw completes, returning its
// result or error. It must be called from inside a bridged task, with
// the context that task was started with; anywhere else it fails with
// ErrNotInTask.
func Await(ctx context.Context, aw Awaitable) (any, error) {
	t, ok := taskFromContext(ctx)
	if !ok || !t.running {
		return nil, ErrNotInTask
	}
	if aw == nil {
		return nil, ErrNotAwaitable
	}
	return t.await(aw)
}

// Send advances the coroutine with a value. It returns an
// intermediate step when the task is waiting on something the outer
// driver must resolve, or a terminal step carrying the task's result.
func (c *Coroutine) Send(v any) (Step, error) {
	if c.done {
		return Step{}, ErrDone
	}
	c.value, c.err = v, nil
	return c.step()
}

// Throw advances the coroutine by injecting an error. The error is
// delivered to the inner awaitable currently being driven, or to the
// task at its suspension point. Throwing into a completed coroutine
// returns the error back to the caller.
func (c *Coroutine) Throw(err error) (Step, error) {
	if err == nil {
		panic("bridge: Throw with nil error")
	}
	if c.done {
		return Step{}, err
	}
	c.value, c.err = nil, err
	return c.step()
}

// step is the bridge state machine: drive the pending inner awaitable
// if there is one, otherwise deliver the pending value or error into
// the task and run it to its next suspension or completion.
func (c *Coroutine) step() (Step, error) {
	for {
		if c.waitFor != nil {
			var s Step
			var err error
			if c.err != nil {
				e := c.err
				c.err = nil
				s, err = c.waitFor.Throw(e)
			} else {
				v := c.value
				c.value = nil
				s, err = c.waitFor.Send(v)
			}
			switch {
			case err != nil:
				c.waitFor = nil
				c.err = err
			case s.Done():
				c.waitFor = nil
				c.value = s.Value()
			default:
				// Forward the inner step outward unchanged and
				// stay driving the same awaitable.
				return Yield(s.Value()), nil
			}
		}

		c.task.setInput(c.value, c.err)
		c.value, c.err = nil, nil
		if !c.sched.scheduled(c.task) {
			c.sched.insert(c.task)
		}
		c.sched.runOnce()

		if !c.task.alive {
			c.done = true
			v, err := c.task.takeResult()
			if err != nil {
				if errors.Is(err, ErrExhausted) && !errors.Is(err, ErrAsyncExhausted) {
					// A task driven as a coroutine must not
					// terminate with the plain exhaustion signal.
					err = &asyncExhaustedError{cause: err}
				}
				return Step{}, err
			}
			return Result(v), nil
		}

		aw := c.task.takeOutput()
		if aw == nil {
			panic("bridge: task suspended without an awaitable")
		}
		c.waitFor = aw
		// Prime the freshly captured awaitable with a nil send on
		// the next pass.
	}
}

// Close abandons the coroutine: the inner awaitable being driven is
// closed first, then the task is forcibly terminated if still alive.
// Closing a completed coroutine is a no-op.
func (c *Coroutine) Close() error {
	if c.done {
		return nil
	}
	c.done = true
	c.value, c.err = nil, nil

	var err error
	if c.waitFor != nil {
		inner := c.waitFor
		c.waitFor = nil
		if cerr := inner.Close(); cerr != nil && !errors.Is(cerr, ErrDone) {
			err = cerr
		}
	}
	c.task.kill()
	return err
}
