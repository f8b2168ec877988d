// Package bridge lets plain blocking-style callables run as
// single-step coroutines. A callable runs on a stackful task that can
// suspend anywhere in its call stack; a Coroutine drives that task
// step by step on behalf of an external driver, translating values,
// errors and cancellation across the boundary in both directions.
//
// Key components:
//
//   - Awaitable/Step: the single-step protocol. A driver advances an
//     Awaitable with Send or Throw and receives an intermediate step
//     to resolve or a terminal result.
//
//   - Coroutine: exposes a task as an Awaitable. When the callable
//     awaits something, the coroutine drives it and forwards its
//     intermediate steps outward unchanged, so awaits nest
//     transparently.
//
//   - Await: the in-task counterpart. Called from inside a bridged
//     callable it suspends the task until the driver has resolved the
//     given awaitable.
//
//   - Iter: consumes an externally driven AsyncIterator from inside a
//     task as ordinary synchronous iteration.
//
//   - AsyncIter: the reverse, exposing a blocking-style Iterator as
//     an AsyncGenerator to an external driver.
//
//   - Scoped/AsyncScoped: paired acquire/release contracts bridged in
//     either direction.
//
// Everything is single-threaded and cooperative: at most one task or
// its driver executes at any instant, and a coroutine owns its task
// exclusively. Closing a coroutine closes the awaitable it is driving
// first and then forcibly terminates the task, so no task is ever
// left running without a driver.
package bridge
