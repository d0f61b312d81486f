package hourbot

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
)

// Sender is the outbound half of a stream. Several components only need one
// side, so the two halves are separate interfaces.
type Sender[T any] interface {
	Send(ctx context.Context, value T) error
}

// Receiver is the inbound half of a stream. *Pipe[T] implements it.
type Receiver[T any] interface {
	Recv(ctx context.Context) (T, error)
}

// RateLimitedSink paces sends to an underlying sender, keeping a
// last-send timestamp per category and enforcing a minimum cooldown
// between sends within a category.
//
// Important sends are never dropped: the send reserves its slot
// immediately, so a burst of important sends queues up in issue order, then
// sleeps out its delay before writing. Unimportant sends are dropped
// outright when they land inside a cooldown. The asymmetry is the point -
// status traffic may vanish under load, replies may only be delayed.
type RateLimitedSink[T any] struct {
	sender   Sender[T]
	cooldown time.Duration

	stateLock     sync.Mutex
	lastSendTimes map[string]time.Time
}

func NewRateLimitedSink[T any](sender Sender[T], cooldown time.Duration) *RateLimitedSink[T] {
	return &RateLimitedSink[T]{
		sender:        sender,
		cooldown:      cooldown,
		lastSendTimes: map[string]time.Time{},
	}
}

// Send writes value via the underlying sender, subject to the category's
// cooldown. A dropped unimportant send returns nil; not writing is the
// documented behavior, not a failure.
func (self *RateLimitedSink[T]) Send(ctx context.Context, category string, value T, important bool) error {
	now := time.Now()

	self.stateLock.Lock()
	var delay time.Duration
	if lastSendTime, ok := self.lastSendTimes[category]; ok {
		delay = max(0, self.cooldown-now.Sub(lastSendTime))
	}
	if !important && 0 < delay {
		self.stateLock.Unlock()
		glog.V(2).Infof("[cs]drop %s\n", category)
		metricRateLimitDrops.WithLabelValues(category).Inc()
		return nil
	}
	// reserving the slot before sleeping is what keeps a burst of
	// important sends in issue order
	self.lastSendTimes[category] = now.Add(delay)
	self.stateLock.Unlock()

	if 0 < delay {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return self.sender.Send(ctx, value)
}
