// Package hourbot is a long-running chat protocol client. It reads a
// line-oriented command stream over a websocket, fans commands out to any
// number of independently-paced subscriber pipes, and provides the lazy
// stream operators and windowed map-reduce machinery that subscriber
// pipelines are built from.
package hourbot

import (
	"github.com/oklog/ulid/v2"
)

// comparable
type Id [16]byte

func NewId() Id {
	return Id(ulid.Make())
}

func (self Id) String() string {
	return ulid.ULID(self).String()
}
