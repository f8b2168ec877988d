package bridge

import (
	"context"
)

// taskContextKey is a unique type used as a key for storing the
// owning tasklet in a context.
type taskContextKey struct{}

// withTask returns a context carrying the task. Every bridged
// callable receives such a context; it is the only way a task is ever
// reachable from user code.
func withTask(ctx context.Context, t *tasklet) context.Context {
	return context.WithValue(ctx, taskContextKey{}, t)
}

// taskFromContext retrieves the tasklet stored in ctx, if any.
func taskFromContext(ctx context.Context) (*tasklet, bool) {
	t, ok := ctx.Value(taskContextKey{}).(*tasklet)
	return t, ok
}

// InTask reports whether ctx belongs to a bridged task that is
// currently executing under its scheduler. Await and the adapters
// built on it refuse to operate when this is false.
func InTask(ctx context.Context) bool {
	t, ok := taskFromContext(ctx)
	return ok && t.running
}
