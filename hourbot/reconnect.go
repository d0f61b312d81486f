package hourbot

import (
	"time"
)

// Reconnect marks the earliest time the next connection attempt may start.
// Created before an attempt so that the backoff covers time spent failing.
type Reconnect struct {
	endTime time.Time
}

func NewReconnect(timeout time.Duration) *Reconnect {
	return &Reconnect{
		endTime: time.Now().Add(timeout),
	}
}

func (self *Reconnect) After() <-chan time.Time {
	return time.After(time.Until(self.endTime))
}
