// Package dataaccess holds the per-entity queries and mutations the
// dashboard is built on. Queries read through the shared cache; mutations
// call the API and invalidate the keys they touched.
package dataaccess

import (
	"context"
	"net/http"
	"net/url"

	"agency-service/internal/apiclient"
	"agency-service/internal/querycache"
)

const StageCountsKey = "/api/stats/students/stage-counts"

type Store struct {
	api    *apiclient.Client
	cache  *querycache.Cache
	toasts *ToastReporter
}

func NewStore(api *apiclient.Client, cache *querycache.Cache, notifier Notifier) *Store {
	return &Store{
		api:    api,
		cache:  cache,
		toasts: NewToastReporter(notifier),
	}
}

func (s *Store) API() *apiclient.Client     { return s.api }
func (s *Store) Cache() *querycache.Cache   { return s.cache }
func (s *Store) Toasts() *ToastReporter     { return s.toasts }
func (s *Store) Students() Students         { return Students{s} }
func (s *Store) Universities() Universities { return Universities{s} }
func (s *Store) Programs() Programs         { return Programs{s} }
func (s *Store) Agents() Agents             { return Agents{s} }
func (s *Store) Applications() Applications { return Applications{s} }
func (s *Store) Cards() Cards               { return Cards{s} }
func (s *Store) Events() Events             { return Events{s} }
func (s *Store) Messages() Messages         { return Messages{s} }
func (s *Store) Activity() Activity         { return Activity{s} }

// query GETs key, which doubles as the request path.
func query[T any](ctx context.Context, s *Store, key string) Result[T] {
	r := s.cache.Query(ctx, key, func(ctx context.Context) (any, error) {
		var out T
		if err := s.api.Get(ctx, key, &out); err != nil {
			return nil, err
		}
		return out, nil
	})
	res := fromQuery[T](r)
	if !res.IsOk() {
		s.toasts.Failure(res.Cause())
	}
	return res
}

func send[Out any](s *Store, method string) func(ctx context.Context, path string, body any) (Out, error) {
	return func(ctx context.Context, path string, body any) (Out, error) {
		var out Out
		err := s.api.Do(ctx, method, path, body, &out)
		return out, err
	}
}

func withQuery(key string, params url.Values) string {
	if len(params) == 0 {
		return key
	}
	return key + "?" + params.Encode()
}

func idPath(resource string, id int) string {
	return querycache.ItemKey(resource, id)
}

func remove(ctx context.Context, s *Store, resource string, id int) (struct{}, error) {
	return struct{}{}, s.api.Do(ctx, http.MethodDelete, idPath(resource, id), nil, nil)
}
