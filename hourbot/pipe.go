package hourbot

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Pipe.Recv and Pipe.Send after the pipe has been
// closed. It is a normal end-of-stream signal, not a failure; consumers end
// their loop on it.
var ErrClosed = errors.New("pipe closed")

// Pipe is a single-consumer, multi-producer mailbox.
//
// Any number of goroutines may Send. Exactly one goroutine may Recv at a
// time; a second concurrent Recv is a programming error and panics. Closing
// a pipe is terminal: further sends fail with ErrClosed and an outstanding
// Recv wakes with ErrClosed.
type Pipe[T any] struct {
	maxSize int

	stateLock sync.Mutex
	buffer    []T
	receiver  chan struct{}
	closed    bool
}

// NewPipe creates an unbounded pipe.
func NewPipe[T any]() *Pipe[T] {
	return NewPipeWithMaxSize[T](0)
}

// NewPipeWithMaxSize creates a pipe holding at most maxSize pending values.
// When full, a send discards the oldest pending value to make room for the
// incoming one. maxSize <= 0 means unbounded.
func NewPipeWithMaxSize[T any](maxSize int) *Pipe[T] {
	return &Pipe[T]{
		maxSize: maxSize,
		buffer:  []T{},
	}
}

// Send enqueues value and wakes the waiting receiver, if any.
func (self *Pipe[T]) Send(value T) error {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	if self.closed {
		return ErrClosed
	}
	if 0 < self.maxSize && self.maxSize <= len(self.buffer) {
		self.buffer = self.buffer[1:]
	}
	self.buffer = append(self.buffer, value)
	if self.receiver != nil {
		close(self.receiver)
		self.receiver = nil
	}
	return nil
}

// Recv returns the oldest pending value, blocking until one arrives, the
// pipe closes (ErrClosed), or ctx ends (ctx.Err()). Pending sends are FIFO.
func (self *Pipe[T]) Recv(ctx context.Context) (T, error) {
	var empty T
	for {
		self.stateLock.Lock()
		if self.closed {
			self.stateLock.Unlock()
			return empty, ErrClosed
		}
		if 0 < len(self.buffer) {
			value := self.buffer[0]
			self.buffer = self.buffer[1:]
			self.stateLock.Unlock()
			return value, nil
		}
		if self.receiver != nil {
			self.stateLock.Unlock()
			panic("Pipe is already receiving.")
		}
		receiver := make(chan struct{})
		self.receiver = receiver
		self.stateLock.Unlock()

		select {
		case <-receiver:
		case <-ctx.Done():
			self.stateLock.Lock()
			if self.receiver == receiver {
				self.receiver = nil
			}
			self.stateLock.Unlock()
			return empty, ctx.Err()
		}
	}
}

// Close closes the pipe. Idempotent. An outstanding Recv wakes with
// ErrClosed; pending values are discarded on the next Recv.
func (self *Pipe[T]) Close() {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	if self.closed {
		return
	}
	self.closed = true
	if self.receiver != nil {
		close(self.receiver)
		self.receiver = nil
	}
}

// Clear discards all pending values.
func (self *Pipe[T]) Clear() {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	self.buffer = self.buffer[:0:0]
}

func (self *Pipe[T]) IsClosed() bool {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	return self.closed
}

// Series returns a pull sequence over the pipe's values, ending when the
// pipe closes or the pull context ends.
func (self *Pipe[T]) Series() *Series[T] {
	return NewSeries(func(ctx context.Context) (T, bool) {
		value, err := self.Recv(ctx)
		if err != nil {
			var empty T
			return empty, false
		}
		return value, true
	})
}
