package hourbot

import (
	"sync"

	"github.com/golang/glog"

	"golang.org/x/exp/maps"
)

// Diverter fans one inbound stream out to a dynamically changing set of
// attached pipes. Each pipe is its own mailbox; subscribers progress at
// their own pace and one slow subscriber never blocks another.
type Diverter[T any] struct {
	stateLock sync.Mutex
	pipes     map[Id]*Pipe[T]
}

func NewDiverter[T any]() *Diverter[T] {
	return &Diverter[T]{
		pipes: map[Id]*Pipe[T]{},
	}
}

// Pipes returns a snapshot of the currently-attached pipes.
func (self *Diverter[T]) Pipes() []*Pipe[T] {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	return maps.Values(self.pipes)
}

// Attach registers pipe under a freshly generated token and returns the
// token. Tokens are unique for the diverter's lifetime.
func (self *Diverter[T]) Attach(pipe *Pipe[T]) Id {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	token := NewId()
	self.pipes[token] = pipe
	glog.V(1).Infof("[d]attach %s\n", token)
	return token
}

// Detach removes the registration for token, reporting whether one existed.
// Detaching an unknown token is a no-op; callers may race a shutdown.
func (self *Diverter[T]) Detach(token Id) bool {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	if _, ok := self.pipes[token]; !ok {
		return false
	}
	delete(self.pipes, token)
	glog.V(1).Infof("[d]detach %s\n", token)
	return true
}

// Send delivers value to every attached pipe, in no particular order across
// pipes. A pipe that reports itself closed is detached. The registry is
// never mutated while it is being iterated.
func (self *Diverter[T]) Send(value T) {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	var closedTokens []Id
	for token, pipe := range self.pipes {
		if err := pipe.Send(value); err != nil {
			closedTokens = append(closedTokens, token)
			continue
		}
		metricFanoutDeliveries.Inc()
	}
	for _, token := range closedTokens {
		delete(self.pipes, token)
		glog.V(1).Infof("[d]detach closed %s\n", token)
	}
}

// Close closes and detaches every attached pipe, waking their receivers.
func (self *Diverter[T]) Close() {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	for token, pipe := range self.pipes {
		pipe.Close()
		delete(self.pipes, token)
	}
}

// Attachment attaches a new unbounded pipe and returns a scoped handle for
// it. The caller must close the handle on every exit path:
//
//	attachment := diverter.Attachment()
//	defer attachment.Close()
//	for {
//	    value, err := attachment.Pipe().Recv(ctx)
//	    ...
//	}
func (self *Diverter[T]) Attachment() *Attachment[T] {
	return self.AttachmentWithPipe(NewPipe[T]())
}

// AttachmentWithPipe is Attachment with a caller-supplied pipe, for bounded
// mailboxes.
func (self *Diverter[T]) AttachmentWithPipe(pipe *Pipe[T]) *Attachment[T] {
	token := self.Attach(pipe)
	return &Attachment[T]{
		diverter: self,
		pipe:     pipe,
		token:    token,
	}
}

// Attachment is a scoped pipe registration. Closing it detaches the pipe
// from the diverter; Close is idempotent.
type Attachment[T any] struct {
	diverter *Diverter[T]
	pipe     *Pipe[T]
	token    Id

	closeOnce sync.Once
}

func (self *Attachment[T]) Pipe() *Pipe[T] {
	return self.pipe
}

func (self *Attachment[T]) Token() Id {
	return self.token
}

func (self *Attachment[T]) Close() {
	self.closeOnce.Do(func() {
		self.diverter.Detach(self.token)
	})
}
