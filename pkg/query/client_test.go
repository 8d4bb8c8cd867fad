package query_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"jobby-backend/pkg/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryCachesUntilInvalidated(t *testing.T) {
	var calls atomic.Int32
	c := query.NewClient(nil)
	q := query.New(c, "profile", func(ctx context.Context) (int32, error) {
		return calls.Add(1), nil
	})

	v, err := q.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), v)

	v, err = q.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), v, "second read is served from cache")

	require.NoError(t, q.Invalidate(context.Background()))

	v, err = q.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), v)
}

func TestInvalidateReseedsEverySubscriberOnce(t *testing.T) {
	var calls atomic.Int32
	c := query.NewClient(nil)
	q := query.New(c, "profile", func(ctx context.Context) (int32, error) {
		return calls.Add(1), nil
	})
	_, err := q.Get(context.Background())
	require.NoError(t, err)

	var a, b []int32
	unsubA := q.Subscribe(func(v int32) { a = append(a, v) })
	q.Subscribe(func(v int32) { b = append(b, v) })

	require.NoError(t, q.Invalidate(context.Background()))
	assert.Equal(t, []int32{2}, a)
	assert.Equal(t, []int32{2}, b)
	assert.Equal(t, int32(2), calls.Load(), "one refetch serves all subscribers")

	unsubA()
	require.NoError(t, q.Invalidate(context.Background()))
	assert.Equal(t, []int32{2}, a)
	assert.Equal(t, []int32{2, 3}, b)

	fetches, invalidations := c.Stats("profile")
	assert.Equal(t, 3, fetches)
	assert.Equal(t, 2, invalidations)
}

func TestConcurrentFetchesAreDeduplicated(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	c := query.NewClient(nil)
	q := query.New(c, "profile", func(ctx context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "ok", nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := q.Get(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "ok", v)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestResultFromBeforeInvalidationIsDiscarded(t *testing.T) {
	var calls atomic.Int32
	slowStarted := make(chan struct{})
	releaseSlow := make(chan struct{})

	c := query.NewClient(nil)
	q := query.New(c, "profile", func(ctx context.Context) (string, error) {
		if calls.Add(1) == 1 {
			close(slowStarted)
			<-releaseSlow
			return "stale", nil
		}
		return "fresh", nil
	})

	var got []string
	q.Subscribe(func(v string) { got = append(got, v) })

	slowDone := make(chan string)
	go func() {
		v, _ := q.Get(context.Background())
		slowDone <- v
	}()
	<-slowStarted

	require.NoError(t, q.Invalidate(context.Background()))
	close(releaseSlow)
	<-slowDone

	v, err := q.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", v, "the slow initial fetch must not overwrite the refetch")
	assert.Equal(t, []string{"fresh"}, got)
}

func TestFetchErrorLeavesCacheEmpty(t *testing.T) {
	fail := true
	c := query.NewClient(nil)
	q := query.New(c, "profile", func(ctx context.Context) (string, error) {
		if fail {
			return "", errors.New("network down")
		}
		return "ok", nil
	})

	_, err := q.Get(context.Background())
	require.Error(t, err)

	fail = false
	v, err := q.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestUnregisteredKey(t *testing.T) {
	c := query.NewClient(nil)
	_, err := c.Fetch(context.Background(), "missing")
	assert.Error(t, err)
	assert.NoError(t, c.Invalidate(context.Background(), "missing"))
}
