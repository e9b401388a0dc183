package dataaccess

import (
	"fmt"

	"agency-service/internal/apiclient"
	"agency-service/internal/querycache"
)

// Result is the outcome of a query or mutation: Ok(data) or Err(reason).
type Result[T any] struct {
	data T
	err  error
}

func Ok[T any](data T) Result[T] {
	return Result[T]{data: data}
}

func Err[T any](err error) Result[T] {
	if err == nil {
		err = fmt.Errorf("%s", apiclient.FallbackMessage)
	}
	return Result[T]{err: err}
}

func (r Result[T]) IsOk() bool {
	return r.err == nil
}

func (r Result[T]) Unwrap() (T, error) {
	return r.data, r.err
}

// Data is the zero value for a failed result.
func (r Result[T]) Data() T {
	return r.data
}

func (r Result[T]) Cause() error {
	return r.err
}

// Reason is the user-facing failure text, empty when ok.
func (r Result[T]) Reason() string {
	if r.err == nil {
		return ""
	}
	return apiclient.Message(r.err)
}

func fromQuery[T any](r querycache.QueryResult) Result[T] {
	if r.Err != nil {
		return Err[T](r.Err)
	}
	data, ok := r.Data.(T)
	if !ok {
		return Err[T](fmt.Errorf("cached value has type %T", r.Data))
	}
	return Ok(data)
}
