package querycache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"agency-service/internal/querycache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counter returns a fetch that yields 1, 2, 3... and counts its calls.
func counter() (querycache.FetchFunc, *atomic.Int32) {
	var calls atomic.Int32
	return func(context.Context) (any, error) {
		return int(calls.Add(1)), nil
	}, &calls
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "/api/students", querycache.ListKey("students"))
	assert.Equal(t, "/api/students/42", querycache.ItemKey("students", 42))
}

func TestQuery(t *testing.T) {
	t.Run("FreshEntryIsReused", func(t *testing.T) {
		cache := querycache.New()
		fetch, calls := counter()

		first := cache.Query(t.Context(), "/api/students", fetch)
		second := cache.Query(t.Context(), "/api/students", fetch)

		assert.Equal(t, 1, first.Data)
		assert.Equal(t, 1, second.Data)
		assert.False(t, second.IsLoading)
		assert.EqualValues(t, 1, calls.Load())
	})

	t.Run("StaleTimeExpires", func(t *testing.T) {
		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		cache := querycache.New(
			querycache.WithStaleTime(time.Minute),
			querycache.WithClock(func() time.Time { return now }),
		)
		fetch, calls := counter()

		cache.Query(t.Context(), "/api/agents", fetch)
		now = now.Add(30 * time.Second)
		cache.Query(t.Context(), "/api/agents", fetch)
		assert.EqualValues(t, 1, calls.Load())

		now = now.Add(time.Minute)
		assert.Equal(t, 2, cache.Query(t.Context(), "/api/agents", fetch).Data)
	})

	t.Run("ConcurrentCallersShareOneFetch", func(t *testing.T) {
		cache := querycache.New()
		release := make(chan struct{})
		var calls atomic.Int32
		fetch := func(context.Context) (any, error) {
			calls.Add(1)
			<-release
			return "students", nil
		}

		var wg sync.WaitGroup
		results := make([]querycache.QueryResult, 8)
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i] = cache.Query(context.Background(), "/api/students", fetch)
			}()
		}

		assert.Eventually(t, func() bool {
			r, ok := cache.Get("/api/students")
			return ok && r.IsLoading
		}, time.Second, time.Millisecond)
		close(release)
		wg.Wait()

		assert.EqualValues(t, 1, calls.Load())
		for _, r := range results {
			assert.Equal(t, "students", r.Data)
		}
	})

	t.Run("RetriesOnce", func(t *testing.T) {
		cache := querycache.New()
		var calls atomic.Int32
		fetch := func(context.Context) (any, error) {
			if calls.Add(1) == 1 {
				return nil, errors.New("connection reset")
			}
			return "ok", nil
		}

		result := cache.Query(t.Context(), "/api/events", fetch)
		require.NoError(t, result.Err)
		assert.Equal(t, "ok", result.Data)
		assert.EqualValues(t, 2, calls.Load())
	})

	t.Run("GivesUpAfterRetry", func(t *testing.T) {
		cache := querycache.New()
		var calls atomic.Int32
		fetch := func(context.Context) (any, error) {
			calls.Add(1)
			return nil, errors.New("server down")
		}

		result := cache.Query(t.Context(), "/api/events", fetch)
		assert.EqualError(t, result.Err, "server down")
		assert.EqualValues(t, 2, calls.Load())
	})

	t.Run("ErrorKeepsPreviousData", func(t *testing.T) {
		cache := querycache.New(querycache.WithRetries(0))
		fail := false
		fetch := func(context.Context) (any, error) {
			if fail {
				return nil, errors.New("offline")
			}
			return "v1", nil
		}

		cache.Query(t.Context(), "/api/cards", fetch)
		fail = true
		cache.Invalidate(t.Context(), "/api/cards")
		result := cache.Query(t.Context(), "/api/cards", fetch)

		assert.Error(t, result.Err)
		assert.Equal(t, "v1", result.Data)
	})
}

func TestInvalidate(t *testing.T) {
	t.Run("SubscribedKeyRefetchesExactlyOnce", func(t *testing.T) {
		cache := querycache.New()
		fetch, calls := counter()

		var seen []any
		unsubscribe := cache.Subscribe("/api/students", func(r querycache.QueryResult) {
			seen = append(seen, r.Data)
		})
		defer unsubscribe()

		cache.Query(t.Context(), "/api/students", fetch)
		cache.Invalidate(t.Context(), "/api/students")

		assert.EqualValues(t, 2, calls.Load())
		assert.Equal(t, []any{1, 2}, seen)

		// the refetch made the entry fresh again
		assert.Equal(t, 2, cache.Query(t.Context(), "/api/students", fetch).Data)
		assert.EqualValues(t, 2, calls.Load())
	})

	t.Run("UnsubscribedKeyRefetchesLazily", func(t *testing.T) {
		cache := querycache.New()
		fetch, calls := counter()

		cache.Query(t.Context(), "/api/universities", fetch)
		cache.Invalidate(t.Context(), "/api/universities")
		assert.EqualValues(t, 1, calls.Load())

		assert.Equal(t, 2, cache.Query(t.Context(), "/api/universities", fetch).Data)
	})

	t.Run("UnsubscribeStopsRefetch", func(t *testing.T) {
		cache := querycache.New()
		fetch, calls := counter()

		unsubscribe := cache.Subscribe("/api/agents", func(querycache.QueryResult) {})
		cache.Query(t.Context(), "/api/agents", fetch)
		unsubscribe()
		unsubscribe()
		cache.Invalidate(t.Context(), "/api/agents")

		assert.EqualValues(t, 1, calls.Load())
	})

	t.Run("CollectionCoversQueryVariants", func(t *testing.T) {
		cache := querycache.New()
		all, allCalls := counter()
		mine, mineCalls := counter()
		other, otherCalls := counter()

		cache.Subscribe("/api/cards", func(querycache.QueryResult) {})
		cache.Subscribe("/api/cards?studentId=7", func(querycache.QueryResult) {})
		cache.Subscribe("/api/cardsets", func(querycache.QueryResult) {})
		cache.Query(t.Context(), "/api/cards", all)
		cache.Query(t.Context(), "/api/cards?studentId=7", mine)
		cache.Query(t.Context(), "/api/cardsets", other)

		cache.Invalidate(t.Context(), "/api/cards")

		assert.EqualValues(t, 2, allCalls.Load())
		assert.EqualValues(t, 2, mineCalls.Load())
		assert.EqualValues(t, 1, otherCalls.Load())
	})

	t.Run("InvalidationDuringFetchKeepsEntryStale", func(t *testing.T) {
		cache := querycache.New()
		release := make(chan struct{})
		var calls atomic.Int32
		fetch := func(context.Context) (any, error) {
			n := calls.Add(1)
			if n == 1 {
				<-release
			}
			return int(n), nil
		}

		done := make(chan struct{})
		go func() {
			cache.Query(context.Background(), "/api/applications", fetch)
			close(done)
		}()
		require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

		cache.Invalidate(t.Context(), "/api/applications")
		close(release)
		<-done

		// the first response predates the invalidation, so it is not trusted
		assert.Equal(t, 2, cache.Query(t.Context(), "/api/applications", fetch).Data)
	})
}
