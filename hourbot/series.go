package hourbot

import (
	"context"
	"sync"
	"time"
)

// Series is a lazy, pull-based sequence. Nothing executes until a consumer
// calls Next; operators return new Series values describing the transformed
// sequence and buffer nothing beyond what the operator intrinsically needs.
//
// A series ends by returning ok=false. Upstream closure, a timeout operator
// expiring, and the pull context ending all surface the same way - ordinary
// termination, never an error. A series is restartable only if its source is
// restartable; sources are typically live pipe subscriptions, which are not.
//
// A series must be consumed from one goroutine at a time.
type Series[T any] struct {
	next func(ctx context.Context) (T, bool)
}

// NewSeries wraps a pull function as a Series.
func NewSeries[T any](next func(ctx context.Context) (T, bool)) *Series[T] {
	return &Series[T]{
		next: next,
	}
}

// Next pulls the next value. ok=false means the sequence has ended; the
// sequence must not be pulled again after that.
func (self *Series[T]) Next(ctx context.Context) (T, bool) {
	return self.next(ctx)
}

// Filter yields the values for which predicate is true.
func (self *Series[T]) Filter(predicate func(T) bool) *Series[T] {
	return NewSeries(func(ctx context.Context) (T, bool) {
		for {
			value, ok := self.Next(ctx)
			if !ok {
				var empty T
				return empty, false
			}
			if predicate(value) {
				return value, true
			}
		}
	})
}

// Timeout bounds every pull to d; a pull that does not complete in time ends
// the sequence. When firstUnbounded is true the first pull waits without
// bound, which lets a consumer idle until a batch begins and then demand
// promptness within the batch.
//
// An expired timeout and an upstream that closed are indistinguishable to
// the consumer. That is deliberate; see Reduction for how callers tell an
// empty sequence apart from one that produced values.
func (self *Series[T]) Timeout(d time.Duration, firstUnbounded bool) *Series[T] {
	first := true
	return NewSeries(func(ctx context.Context) (T, bool) {
		if first {
			first = false
			if firstUnbounded {
				return self.Next(ctx)
			}
		}
		timeoutCtx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		value, ok := self.Next(timeoutCtx)
		if !ok {
			var empty T
			return empty, false
		}
		return value, true
	})
}

// Pace re-emits the values with at least d between successive yields. When
// immediateFirst is true the first value passes through without delay.
func (self *Series[T]) Pace(d time.Duration, immediateFirst bool) *Series[T] {
	first := true
	return NewSeries(func(ctx context.Context) (T, bool) {
		if first {
			first = false
			if immediateFirst {
				return self.Next(ctx)
			}
		}
		select {
		case <-time.After(d):
		case <-ctx.Done():
			var empty T
			return empty, false
		}
		return self.Next(ctx)
	})
}

// GlobalUnique yields a value only the first time its key is seen across
// the whole sequence, using a bloom filter sized for maxSize keys at the
// given false-positive rate. A genuinely novel value may be silently
// dropped at that rate; do not use this where a false positive is
// unacceptable. Once the filter reports itself full, further novel keys
// pass through with the filter degrading past its designed rate.
func (self *Series[T]) GlobalUnique(key func(T) string, maxSize int, errorRate float64) *Series[T] {
	seen := NewBloomFilter(maxSize, errorRate)
	return NewSeries(func(ctx context.Context) (T, bool) {
		for {
			value, ok := self.Next(ctx)
			if !ok {
				var empty T
				return empty, false
			}
			if seen.Add(key(value)) != BloomSeen {
				return value, true
			}
		}
	})
}

// LocalUnique yields a value only when its key differs from the previously
// yielded value's key.
func (self *Series[T]) LocalUnique(key func(T) string) *Series[T] {
	started := false
	seen := ""
	return NewSeries(func(ctx context.Context) (T, bool) {
		for {
			value, ok := self.Next(ctx)
			if !ok {
				var empty T
				return empty, false
			}
			k := key(value)
			if !started || k != seen {
				started = true
				seen = k
				return value, true
			}
		}
	})
}

// Limit truncates the sequence to the first bound values. Non-positive
// bounds are treated as zero.
func (self *Series[T]) Limit(bound int) *Series[T] {
	count := 0
	return NewSeries(func(ctx context.Context) (T, bool) {
		if bound <= count {
			var empty T
			return empty, false
		}
		value, ok := self.Next(ctx)
		if !ok {
			var empty T
			return empty, false
		}
		count += 1
		return value, true
	})
}

// Merge races this series against others. Whichever source produces a value
// first is forwarded immediately, then that source alone is re-awaited; the
// merged sequence ends only when every source has ended. Relative order
// across sources is by completion time, not registration order.
//
// The sources are pulled by background goroutines that run until their
// source ends; a merged series over sources that never end must therefore
// be consumed to exhaustion of the sources.
func (self *Series[T]) Merge(others ...*Series[T]) *Series[T] {
	sources := append([]*Series[T]{self}, others...)
	values := make(chan T)
	var start sync.Once
	return NewSeries(func(ctx context.Context) (T, bool) {
		start.Do(func() {
			var pulls sync.WaitGroup
			for _, source := range sources {
				pulls.Add(1)
				go func(source *Series[T]) {
					defer pulls.Done()
					for {
						value, ok := source.Next(context.Background())
						if !ok {
							return
						}
						values <- value
					}
				}(source)
			}
			go func() {
				pulls.Wait()
				close(values)
			}()
		})
		select {
		case value, ok := <-values:
			if !ok {
				var empty T
				return empty, false
			}
			return value, true
		case <-ctx.Done():
			var empty T
			return empty, false
		}
	})
}

// Collect pulls to exhaustion and returns the values in order.
func (self *Series[T]) Collect(ctx context.Context) []T {
	values := []T{}
	for {
		value, ok := self.Next(ctx)
		if !ok {
			return values
		}
		values = append(values, value)
	}
}

// Any pulls until a value satisfies predicate, reporting whether one did.
func (self *Series[T]) Any(ctx context.Context, predicate func(T) bool) bool {
	for {
		value, ok := self.Next(ctx)
		if !ok {
			return false
		}
		if predicate(value) {
			return true
		}
	}
}

// All pulls to exhaustion, reporting whether every value satisfied
// predicate.
func (self *Series[T]) All(ctx context.Context, predicate func(T) bool) bool {
	for {
		value, ok := self.Next(ctx)
		if !ok {
			return true
		}
		if !predicate(value) {
			return false
		}
	}
}

// Count pulls to exhaustion and returns the number of values.
func (self *Series[T]) Count(ctx context.Context) int {
	count := 0
	for {
		_, ok := self.Next(ctx)
		if !ok {
			return count
		}
		count += 1
	}
}

// Operators that change the element type cannot be methods; Go methods
// cannot introduce type parameters.

// Map yields mapper applied to each value.
func Map[T any, S any](series *Series[T], mapper func(T) S) *Series[S] {
	return NewSeries(func(ctx context.Context) (S, bool) {
		value, ok := series.Next(ctx)
		if !ok {
			var empty S
			return empty, false
		}
		return mapper(value), true
	})
}

// FilterMap yields the mapped values for which mapper reports ok. It is the
// shape summarizer mappers take: project and filter in one step.
func FilterMap[T any, S any](series *Series[T], mapper func(T) (S, bool)) *Series[S] {
	return NewSeries(func(ctx context.Context) (S, bool) {
		for {
			value, ok := series.Next(ctx)
			if !ok {
				var empty S
				return empty, false
			}
			if mapped, ok := mapper(value); ok {
				return mapped, true
			}
		}
	})
}

// Enumerated pairs a value with its position in the sequence.
type Enumerated[T any] struct {
	Index int
	Value T
}

// Enumerate yields each value paired with its index, counting from start.
func Enumerate[T any](series *Series[T], start int) *Series[Enumerated[T]] {
	index := start
	return NewSeries(func(ctx context.Context) (Enumerated[T], bool) {
		value, ok := series.Next(ctx)
		if !ok {
			return Enumerated[T]{}, false
		}
		enumerated := Enumerated[T]{
			Index: index,
			Value: value,
		}
		index += 1
		return enumerated, true
	})
}

// Reduction is the result of Reduce. Initial is true when the sequence
// ended before producing a single value, which is how a consumer tells an
// empty window apart from a degenerate one.
type Reduction[T any] struct {
	Value   T
	Initial bool
}

// Reduce pulls to exhaustion, left-folding with reducer from initial.
func Reduce[T any, S any](ctx context.Context, series *Series[T], initial S, reducer func(S, T) S) Reduction[S] {
	result := initial
	advanced := false
	for {
		value, ok := series.Next(ctx)
		if !ok {
			return Reduction[S]{
				Value:   result,
				Initial: !advanced,
			}
		}
		result = reducer(result, value)
		advanced = true
	}
}
