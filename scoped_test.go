package bridge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// fileRes is a synchronous scoped resource recording its lifecycle.
type fileRes struct {
	entered  bool
	exited   bool
	exitErr  error
	enterErr error
}

func (f *fileRes) Enter(context.Context) (any, error) {
	if f.enterErr != nil {
		return nil, f.enterErr
	}
	f.entered = true
	return "handle", nil
}

func (f *fileRes) Exit(_ context.Context, err error) error {
	f.exited = true
	f.exitErr = err
	return err
}

// connRes is an asynchronous scoped resource whose steps resolve
// immediately.
type connRes struct {
	entered bool
	exited  bool
	exitErr error
}

func (c *connRes) Enter(context.Context) Awaitable {
	c.entered = true
	return Ready("conn")
}

func (c *connRes) Exit(_ context.Context, err error) Awaitable {
	c.exited = true
	c.exitErr = err
	if err != nil {
		return Fail(err)
	}
	return Ready(nil)
}

func TestWith(t *testing.T) {
	r := require.New(t)

	res := new(fileRes)
	err := With(context.Background(), res, func(_ context.Context, v any) error {
		r.Equal("handle", v)
		return nil
	})
	r.NoError(err)
	r.True(res.entered)
	r.True(res.exited)
	r.NoError(res.exitErr)
}

func TestWithError(t *testing.T) {
	r := require.New(t)

	boom := errors.New("boom")
	res := new(fileRes)
	err := With(context.Background(), res, func(context.Context, any) error {
		return boom
	})
	r.ErrorIs(err, boom)
	r.True(res.exited)
	r.ErrorIs(res.exitErr, boom)
}

func TestWithEnterError(t *testing.T) {
	r := require.New(t)

	boom := errors.New("boom")
	res := &fileRes{enterErr: boom}
	err := With(context.Background(), res, func(context.Context, any) error {
		r.Fail("body must not run")
		return nil
	})
	r.ErrorIs(err, boom)
	r.False(res.exited)
}

func TestAsyncFromScoped(t *testing.T) {
	r := require.New(t)

	res := new(fileRes)
	ac := AsyncFromScoped(res)

	v, err := resolve(ac.Enter(context.Background()))
	r.NoError(err)
	r.Equal("handle", v)
	r.True(res.entered)

	boom := errors.New("boom")
	_, err = resolve(ac.Exit(context.Background(), boom))
	r.ErrorIs(err, boom)
	r.True(res.exited)
	r.ErrorIs(res.exitErr, boom)
}

// muffledRes suppresses a designated error on exit.
type muffledRes struct {
	fileRes
	muffle error
}

func (m *muffledRes) Exit(ctx context.Context, err error) error {
	m.fileRes.Exit(ctx, err)
	if errors.Is(err, m.muffle) {
		return nil
	}
	return err
}

func TestWithSuppression(t *testing.T) {
	r := require.New(t)

	boom := errors.New("boom")
	res := &muffledRes{muffle: boom}
	err := With(context.Background(), res, func(context.Context, any) error {
		return boom
	})
	r.NoError(err)
	r.True(res.exited)
	r.ErrorIs(res.exitErr, boom)

	other := errors.New("other")
	res = &muffledRes{muffle: boom}
	err = With(context.Background(), res, func(context.Context, any) error {
		return other
	})
	r.ErrorIs(err, other)
}

func TestScopedFromAsync(t *testing.T) {
	r := require.New(t)

	res := new(connRes)
	v, err := Run(context.Background(), func(ctx context.Context) (any, error) {
		var got any
		err := With(ctx, ScopedFromAsync(res), func(_ context.Context, v any) error {
			got = v
			return nil
		})
		return got, err
	})
	r.NoError(err)
	r.Equal("conn", v)
	r.True(res.entered)
	r.True(res.exited)
	r.NoError(res.exitErr)
}

func TestScopedFromAsyncError(t *testing.T) {
	r := require.New(t)

	boom := errors.New("boom")
	res := new(connRes)
	_, err := Run(context.Background(), func(ctx context.Context) (any, error) {
		return nil, With(ctx, ScopedFromAsync(res), func(context.Context, any) error {
			return boom
		})
	})
	r.ErrorIs(err, boom)
	r.True(res.exited)
	r.ErrorIs(res.exitErr, boom)
}
