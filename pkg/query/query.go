package query

import (
	"context"
	"fmt"
)

// Query is a typed handle on one key of a Client.
type Query[T any] struct {
	client *Client
	key    string
}

// New registers fetch under key and returns a typed handle to it.
func New[T any](client *Client, key string, fetch func(ctx context.Context) (T, error)) *Query[T] {
	client.Register(key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	return &Query[T]{client: client, key: key}
}

func (q *Query[T]) Key() string {
	return q.key
}

func (q *Query[T]) Get(ctx context.Context) (T, error) {
	v, err := q.client.Fetch(ctx, q.key)
	if err != nil {
		var zero T
		return zero, err
	}
	return cast[T](q.key, v)
}

func (q *Query[T]) Subscribe(fn func(T)) func() {
	return q.client.Subscribe(q.key, func(v any) {
		if t, err := cast[T](q.key, v); err == nil {
			fn(t)
		}
	})
}

func (q *Query[T]) Invalidate(ctx context.Context) error {
	return q.client.Invalidate(ctx, q.key)
}

func cast[T any](key string, v any) (T, error) {
	if v == nil {
		var zero T
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("query %q holds %T", key, v)
	}
	return t, nil
}
