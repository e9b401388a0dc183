package dataaccess

import (
	"context"

	"agency-service/internal/querycache"
)

// Mutation wraps one write call. Run performs the call once and never
// retries. On success the affected keys are invalidated before OnSuccess
// fires; on failure the cache is left alone and OnError fires.
type Mutation[In, Out any] struct {
	OnSuccess func(out Out)
	OnError   func(err error)

	call    func(ctx context.Context, in In) (Out, error)
	keys    func(in In, out Out) []string
	success string
	cache   *querycache.Cache
	toasts  *ToastReporter
}

func newMutation[In, Out any](s *Store, success string, call func(context.Context, In) (Out, error), keys func(In, Out) []string) *Mutation[In, Out] {
	return &Mutation[In, Out]{
		call:    call,
		keys:    keys,
		success: success,
		cache:   s.cache,
		toasts:  s.toasts,
	}
}

func (m *Mutation[In, Out]) Run(ctx context.Context, in In) Result[Out] {
	out, err := m.call(ctx, in)
	if err != nil {
		m.toasts.Failure(err)
		if m.OnError != nil {
			m.OnError(err)
		}
		return Err[Out](err)
	}

	if m.keys != nil {
		m.cache.Invalidate(ctx, m.keys(in, out)...)
	}
	m.toasts.Success(m.success, "")
	if m.OnSuccess != nil {
		m.OnSuccess(out)
	}
	return Ok(out)
}
