package hourbot

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
)

// Summarizer is a windowed batch map-reduce over a pipe subscription.
//
// A window begins with the first value the mapper accepts and ends when no
// further value is accepted within Decay of the previous one. The window's
// accumulator then goes to the finalize check: if Predicate accepts it the
// Finalizer is dispatched fire-and-forget, and either way the summarizer
// immediately resumes waiting, without bound, for the first value of the
// next window. Values the mapper rejects neither reset nor extend the
// current window.
//
// The loop is perpetual; it returns only when the subscription itself ends.
type Summarizer[T any, R any, S any] struct {
	// identity-like zero state each window starts from
	Initial S
	// maximum gap between successive accepted values within a window
	Decay time.Duration
	// projects a raw value to a summand, or reports false to reject it
	Mapper func(T) (R, bool)
	// folds a summand into the accumulator; commutative and associative
	Reducer func(S, R) S
	// finalize threshold; nil accepts every window
	Predicate func(S) bool
	// receives the finalized accumulator; must tolerate concurrent calls
	// since it does not block the next window
	Finalizer func(ctx context.Context, summation S)
}

// Run drives the summarizer over pipe until the pipe closes or ctx ends.
// Dispatched finalizers are waited for before returning.
func (self *Summarizer[T, R, S]) Run(ctx context.Context, pipe *Pipe[T]) {
	var finalizers sync.WaitGroup
	defer finalizers.Wait()

	for {
		window := FilterMap(pipe.Series(), self.Mapper).Timeout(self.Decay, true)
		reduction := Reduce(ctx, window, self.Initial, self.Reducer)
		if reduction.Initial {
			// the wait for a first value is unbounded, so an empty
			// reduction means the subscription ended
			return
		}
		if self.Predicate != nil && !self.Predicate(reduction.Value) {
			glog.V(1).Infof("[z]window below threshold\n")
			continue
		}
		glog.V(1).Infof("[z]window finalize\n")
		metricWindowsFinalized.Inc()
		finalizers.Add(1)
		go func(summation S) {
			defer finalizers.Done()
			self.Finalizer(ctx, summation)
		}(reduction.Value)
	}
}
