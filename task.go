package bridge

import (
	"context"
	"errors"
	"fmt"
	"runtime/trace"

	"github.com/gammazero/deque"
	"github.com/webriots/coro"
)

const (
	taskTraceTaskType   = "bridge-task"
	taskTraceRegionType = "bridge-region"
	taskTraceCategory   = "bridge"
)

// input is the resume slot of a tasklet: the value or error delivered
// into the task at its next suspension point. At most one of v and
// err is meaningful.
type input struct {
	v   any
	err error
}

// tasklet is a stackful execution unit bound to a single callable. It
// suspends only by publishing an Awaitable through its typed yield
// channel; the marker never travels anywhere else and is consumed by
// the owning coroutine with takeOutput.
type tasklet struct {
	ctx     context.Context
	tracer  *trace.Task
	resume  func(input) (Awaitable, bool)
	cancel  func()
	yield   func(Awaitable) input
	in      input
	out     Awaitable
	result  any
	err     error
	alive   bool
	started bool
	running bool
	queued  bool
}

func newTasklet(ctx context.Context, fn Func) *tasklet {
	t := &tasklet{alive: true}
	t.ctx, t.tracer = trace.NewTask(withTask(ctx, t), taskTraceTaskType)

	t.resume, t.cancel = coro.New(
		func(yield func(Awaitable) input, _ func() input) (z Awaitable) {
			region := trace.StartRegion(t.ctx, taskTraceRegionType)
			defer region.End()

			defer func() {
				p := recover()
				if p == nil {
					return
				}
				if err, ok := p.(error); ok {
					// A cancel panic recovered here lets coro
					// complete the kill cleanly.
					t.err = err
					return
				}
				t.err = fmt.Errorf("bridge: task panic: %v", p)
			}()

			t.yield = yield
			t.result, t.err = fn(t.ctx)
			return
		},
	)

	return t
}

// await publishes aw as this task's awaitable marker and suspends
// until the driving coroutine delivers a value or an error.
func (t *tasklet) await(aw Awaitable) (any, error) {
	in := t.yield(aw)
	return in.v, in.err
}

// setInput loads the resume slot. Any previously loaded input is
// replaced; a task never holds more than one pending delivery.
func (t *tasklet) setInput(v any, err error) {
	t.in = input{v: v, err: err}
}

// takeOutput returns the awaitable marker published by the task's
// last suspension and clears the slot.
func (t *tasklet) takeOutput() Awaitable {
	out := t.out
	t.out = nil
	return out
}

// takeResult returns the task's terminal value or error. Valid only
// once the task is no longer alive.
func (t *tasklet) takeResult() (any, error) {
	v, err := t.result, t.err
	t.result, t.err = nil, nil
	return v, err
}

// advance resumes the task with its pending input and runs it to its
// next suspension or completion. The running flag is set strictly for
// the dynamic extent of the resume.
func (t *tasklet) advance() {
	in := t.in
	t.in = input{}

	if !t.started && in.err != nil {
		// An error delivered before the callable ever ran
		// terminates the task without starting it.
		t.log("THROW BEFORE START")
		t.kill()
		t.err = in.err
		return
	}

	t.started = true
	t.running = true
	out, ok := t.resume(in)
	t.running = false

	if !ok {
		t.alive = false
		t.tracer.End()
		t.log("FINISH")
		return
	}

	t.out = out
	t.log("SUSPEND")
}

// kill forcibly terminates the task. Deferred functions in the
// callable still run. Killing a finished task is a no-op.
func (t *tasklet) kill() {
	if !t.alive {
		return
	}
	t.log("KILL")
	t.cancel()
	t.alive = false
	t.tracer.End()
}

// Killed reports whether err is the cancellation signal observed
// inside a callable whose task was forcibly terminated.
func Killed(err error) bool {
	return errors.Is(err, coro.ErrCanceled)
}

func (t *tasklet) log(msg string) {
	if trace.IsEnabled() {
		trace.Log(t.ctx, taskTraceCategory, msg)
	}
}

// scheduler is a cooperative run queue of tasklets. A coroutine
// inserts the task it owns and pops exactly one runnable task per
// step, mirroring a run-until-yield-or-finish scheduling call.
type scheduler struct {
	runq deque.Deque[*tasklet]
}

// insert places a suspended task back into the run queue. Inserting
// an already scheduled task is a no-op.
func (s *scheduler) insert(t *tasklet) {
	if t.queued {
		return
	}
	t.queued = true
	s.runq.PushBack(t)
}

// scheduled reports whether the task is in the run queue.
func (s *scheduler) scheduled(t *tasklet) bool { return t.queued }

// runOnce advances the task at the front of the run queue to its
// next suspension or completion.
func (s *scheduler) runOnce() {
	if s.runq.Len() == 0 {
		return
	}
	t := s.runq.PopFront()
	t.queued = false
	t.advance()
}
