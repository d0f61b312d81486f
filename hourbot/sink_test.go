package hourbot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

type recordingSender[T any] struct {
	stateLock sync.Mutex
	values    []T
	sendTimes []time.Time
}

func (self *recordingSender[T]) Send(ctx context.Context, value T) error {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	self.values = append(self.values, value)
	self.sendTimes = append(self.sendTimes, time.Now())
	return nil
}

func TestSinkImportantSendsDelay(t *testing.T) {
	ctx := context.Background()

	sender := &recordingSender[string]{}
	sink := NewRateLimitedSink[string](sender, 100*time.Millisecond)

	err := sink.Send(ctx, "message", "first", true)
	assert.Equal(t, err, nil)
	err = sink.Send(ctx, "message", "second", true)
	assert.Equal(t, err, nil)

	assert.Equal(t, []string{"first", "second"}, sender.values)
	gap := sender.sendTimes[1].Sub(sender.sendTimes[0])
	assert.Equal(t, true, 100*time.Millisecond <= gap)
}

func TestSinkUnimportantDropped(t *testing.T) {
	ctx := context.Background()

	sender := &recordingSender[string]{}
	sink := NewRateLimitedSink[string](sender, 100*time.Millisecond)

	sink.Send(ctx, "message", "first", false)
	err := sink.Send(ctx, "message", "dropped", false)
	assert.Equal(t, err, nil)

	assert.Equal(t, []string{"first"}, sender.values)

	time.Sleep(120 * time.Millisecond)
	sink.Send(ctx, "message", "second", false)
	assert.Equal(t, []string{"first", "second"}, sender.values)
}

func TestSinkCategoriesIndependent(t *testing.T) {
	ctx := context.Background()

	sender := &recordingSender[string]{}
	sink := NewRateLimitedSink[string](sender, 100*time.Millisecond)

	sink.Send(ctx, "message", "a", false)
	sink.Send(ctx, "join", "b", false)
	assert.Equal(t, []string{"a", "b"}, sender.values)
}

func TestSinkImportantBurstOrder(t *testing.T) {
	ctx := context.Background()

	sender := &recordingSender[int]{}
	sink := NewRateLimitedSink[int](sender, 30*time.Millisecond)

	var sends sync.WaitGroup
	for i := 0; i < 3; i += 1 {
		sends.Add(1)
		go func(i int) {
			defer sends.Done()
			sink.Send(ctx, "message", i, true)
		}(i)
		// stagger the issue order
		time.Sleep(10 * time.Millisecond)
	}
	sends.Wait()

	assert.Equal(t, []int{0, 1, 2}, sender.values)
}

func TestSinkContextCancel(t *testing.T) {
	sender := &recordingSender[string]{}
	sink := NewRateLimitedSink[string](sender, time.Minute)

	ctx := context.Background()
	sink.Send(ctx, "message", "first", true)

	cancelCtx, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
	defer cancel()

	err := sink.Send(cancelCtx, "message", "second", true)
	assert.Equal(t, context.DeadlineExceeded, err)
	assert.Equal(t, []string{"first"}, sender.values)
}
