package hourbot

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func sliceSeries[T any](values []T) *Series[T] {
	i := 0
	return NewSeries(func(ctx context.Context) (T, bool) {
		if len(values) <= i {
			var empty T
			return empty, false
		}
		value := values[i]
		i += 1
		return value, true
	})
}

func TestSeriesFilter(t *testing.T) {
	ctx := context.Background()

	values := sliceSeries([]int{1, 2, 3, 4, 5, 6}).Filter(func(v int) bool {
		return v%2 == 0
	}).Collect(ctx)
	assert.Equal(t, []int{2, 4, 6}, values)
}

func TestSeriesMap(t *testing.T) {
	ctx := context.Background()

	values := Map(sliceSeries([]int{1, 2, 3}), func(v int) string {
		return fmt.Sprintf("%d!", v)
	}).Collect(ctx)
	assert.Equal(t, []string{"1!", "2!", "3!"}, values)
}

func TestSeriesFilterMap(t *testing.T) {
	ctx := context.Background()

	values := FilterMap(sliceSeries([]string{"1", "x", "3"}), func(v string) (int, bool) {
		switch v {
		case "1":
			return 1, true
		case "3":
			return 3, true
		default:
			return 0, false
		}
	}).Collect(ctx)
	assert.Equal(t, []int{1, 3}, values)
}

func TestSeriesEnumerate(t *testing.T) {
	ctx := context.Background()

	values := Enumerate(sliceSeries([]string{"a", "b"}), 1).Collect(ctx)
	assert.Equal(t, []Enumerated[string]{{1, "a"}, {2, "b"}}, values)
}

func TestSeriesLimit(t *testing.T) {
	ctx := context.Background()

	values := sliceSeries([]int{1, 2, 3, 4}).Limit(2).Collect(ctx)
	assert.Equal(t, []int{1, 2}, values)

	values = sliceSeries([]int{1, 2, 3}).Limit(-1).Collect(ctx)
	assert.Equal(t, []int{}, values)
}

func TestSeriesLocalUnique(t *testing.T) {
	ctx := context.Background()

	values := sliceSeries([]string{"a", "a", "b", "b", "a"}).LocalUnique(func(v string) string {
		return v
	}).Collect(ctx)
	assert.Equal(t, []string{"a", "b", "a"}, values)
}

func TestSeriesGlobalUnique(t *testing.T) {
	ctx := context.Background()

	values := sliceSeries([]string{"a", "a", "b", "a", "c", "b"}).GlobalUnique(func(v string) string {
		return v
	}, 100, 0.01).Collect(ctx)
	assert.Equal(t, []string{"a", "b", "c"}, values)
}

func TestSeriesAnyAllCount(t *testing.T) {
	ctx := context.Background()

	positive := func(v int) bool {
		return 0 < v
	}

	assert.Equal(t, true, sliceSeries([]int{-1, 2}).Any(ctx, positive))
	assert.Equal(t, false, sliceSeries([]int{-1, -2}).Any(ctx, positive))
	assert.Equal(t, true, sliceSeries([]int{1, 2}).All(ctx, positive))
	assert.Equal(t, false, sliceSeries([]int{1, -2}).All(ctx, positive))
	assert.Equal(t, 3, sliceSeries([]int{7, 8, 9}).Count(ctx))
}

func TestSeriesReduce(t *testing.T) {
	ctx := context.Background()

	sum := Reduce(ctx, sliceSeries([]int{1, 2, 3}), 0, func(acc int, v int) int {
		return acc + v
	})
	assert.Equal(t, 6, sum.Value)
	assert.Equal(t, false, sum.Initial)

	empty := Reduce(ctx, sliceSeries([]int{}), 10, func(acc int, v int) int {
		return acc + v
	})
	assert.Equal(t, 10, empty.Value)
	assert.Equal(t, true, empty.Initial)
}

func TestSeriesTimeoutEndsIdleSequence(t *testing.T) {
	ctx := context.Background()

	pipe := NewPipe[int]()
	pipe.Send(1)
	pipe.Send(2)

	startTime := time.Now()
	values := pipe.Series().Timeout(50*time.Millisecond, true).Collect(ctx)
	assert.Equal(t, []int{1, 2}, values)

	elapsed := time.Since(startTime)
	assert.Equal(t, true, 50*time.Millisecond <= elapsed)
	assert.Equal(t, true, elapsed < 500*time.Millisecond)
}

func TestSeriesTimeoutFirstUnbounded(t *testing.T) {
	ctx := context.Background()

	pipe := NewPipe[int]()
	go func() {
		time.Sleep(100 * time.Millisecond)
		pipe.Send(1)
		pipe.Close()
	}()

	// the first pull waits past the timeout; later pulls do not
	values := pipe.Series().Timeout(30*time.Millisecond, true).Collect(ctx)
	assert.Equal(t, []int{1}, values)
}

func TestSeriesTimeoutFirstBounded(t *testing.T) {
	ctx := context.Background()

	pipe := NewPipe[int]()

	_, ok := pipe.Series().Timeout(30*time.Millisecond, false).Next(ctx)
	assert.Equal(t, false, ok)
}

func TestSeriesPace(t *testing.T) {
	ctx := context.Background()

	startTime := time.Now()
	values := sliceSeries([]int{1, 2, 3}).Pace(30*time.Millisecond, true).Collect(ctx)
	assert.Equal(t, []int{1, 2, 3}, values)

	elapsed := time.Since(startTime)
	assert.Equal(t, true, 60*time.Millisecond <= elapsed)
}

func TestSeriesMerge(t *testing.T) {
	ctx := context.Background()

	fast := sliceSeries([]int{1, 2, 3})

	slowPipe := NewPipe[int]()
	go func() {
		time.Sleep(50 * time.Millisecond)
		slowPipe.Send(4)
		slowPipe.Close()
	}()

	values := fast.Merge(slowPipe.Series()).Collect(ctx)
	assert.Equal(t, 4, len(values))
	// the slow source's value completes last
	assert.Equal(t, 4, values[3])
}
