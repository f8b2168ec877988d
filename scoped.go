package bridge

import "context"

// Scoped is a synchronous scoped resource: Enter acquires it, Exit
// releases it. Exit receives the error the scope is unwinding with,
// nil on a clean exit, and its return value is what the scope
// propagates: returning the error unchanged passes it on, returning
// nil suppresses it, returning a different error replaces it.
type Scoped interface {
	Enter(ctx context.Context) (any, error)
	Exit(ctx context.Context, err error) error
}

// AsyncScoped is the asynchronous counterpart: acquisition and
// release are awaitable steps resolved by an outer driver.
type AsyncScoped interface {
	Enter(ctx context.Context) Awaitable
	Exit(ctx context.Context, err error) Awaitable
}

// ScopedFromAsync converts an asynchronous scoped resource into a
// synchronous one by awaiting its enter and exit steps from inside a
// bridged task.
func ScopedFromAsync(ac AsyncScoped) Scoped {
	return &syncScope{ac: ac}
}

type syncScope struct {
	ac AsyncScoped
}

func (s *syncScope) Enter(ctx context.Context) (any, error) {
	return Await(ctx, s.ac.Enter(ctx))
}

func (s *syncScope) Exit(ctx context.Context, err error) error {
	_, eerr := Await(ctx, s.ac.Exit(ctx, err))
	return eerr
}

// AsyncFromScoped converts a synchronous scoped resource into an
// asynchronous one by running its enter and exit on bridged tasks.
func AsyncFromScoped(sc Scoped) AsyncScoped {
	return &asyncScope{sc: sc}
}

type asyncScope struct {
	sc Scoped
}

func (a *asyncScope) Enter(ctx context.Context) Awaitable {
	return New(ctx, func(ctx context.Context) (any, error) {
		return a.sc.Enter(ctx)
	})
}

func (a *asyncScope) Exit(ctx context.Context, err error) Awaitable {
	return New(ctx, func(ctx context.Context) (any, error) {
		return nil, a.sc.Exit(ctx, err)
	})
}

// With acquires sc, runs fn with the acquired value and releases sc
// on every path out, including an error from fn. Exit decides the
// final outcome: it receives fn's error and its return value is
// With's.
func With(ctx context.Context, sc Scoped, fn func(ctx context.Context, v any) error) error {
	v, err := sc.Enter(ctx)
	if err != nil {
		return err
	}
	return sc.Exit(ctx, fn(ctx, v))
}
