package ircv3

import (
	"strings"
)

// Refinements over Command for the verbs the Twitch dialect is built from.
// A refinement is a view over the same underlying fields, not a different
// representation; constructing one never copies or rewrites the command.

// The origin of a server command, derived from the source prefix and tags.
type Sender struct {
	// login name, from the nick segment of the source prefix
	Name        string
	DisplayName string
	Moderator   bool
	Broadcaster bool
}

func senderOf(command Command) Sender {
	name, _, _ := strings.Cut(command.Source, "!")
	badges := command.Tags["badges"]
	return Sender{
		Name:        name,
		DisplayName: command.Tags["display-name"],
		Moderator:   command.Tags["mod"] == "1" || strings.Contains(badges, "moderator/"),
		Broadcaster: strings.Contains(badges, "broadcaster/"),
	}
}

// A PRIVMSG sent by the server on behalf of another chatter.
type PrivateMessage struct {
	Command
}

// AsPrivateMessage refines command into a PrivateMessage. The second return
// is false when the command is not a well-formed room message.
func AsPrivateMessage(command Command) (PrivateMessage, bool) {
	if command.Verb != "PRIVMSG" || len(command.Params) < 1 || !command.HasTrailing {
		return PrivateMessage{}, false
	}
	return PrivateMessage{command}, true
}

func (self PrivateMessage) Room() string {
	return self.Params[0]
}

func (self PrivateMessage) Comment() string {
	return self.Trailing
}

func (self PrivateMessage) Sender() Sender {
	return senderOf(self.Command)
}

// Id returns the message's unique id tag, or "" when untagged.
func (self PrivateMessage) Id() string {
	return self.Tags["id"]
}

// Reply composes a client PRIVMSG to the message's room, threaded to the
// message when it carries an id tag.
func (self PrivateMessage) Reply(comment string) Command {
	reply := ClientPrivateMessage(self.Room(), comment)
	if id := self.Id(); id != "" {
		reply.Tags = map[string]string{"reply-parent-msg-id": id}
	}
	return reply
}

// A server keepalive. Replies are exempt from outbound pacing.
type Ping struct {
	Command
}

func AsPing(command Command) (Ping, bool) {
	if command.Verb != "PING" {
		return Ping{}, false
	}
	return Ping{command}, true
}

// Reply composes the PONG echoing the ping's trailing payload.
func (self Ping) Reply() Command {
	return Command{
		Verb:        "PONG",
		Trailing:    self.Trailing,
		HasTrailing: self.HasTrailing,
	}
}

// Room configuration notice sent after joining a room and on changes.
type RoomState struct {
	Command
}

func AsRoomState(command Command) (RoomState, bool) {
	if command.Verb != "ROOMSTATE" || len(command.Params) < 1 {
		return RoomState{}, false
	}
	return RoomState{command}, true
}

func (self RoomState) Room() string {
	return self.Params[0]
}

// Server acknowledgement of a chatter entering a room.
type Join struct {
	Command
}

func AsJoin(command Command) (Join, bool) {
	if command.Verb != "JOIN" || len(command.Arguments()) < 1 {
		return Join{}, false
	}
	return Join{command}, true
}

func (self Join) Room() string {
	return self.Arguments()[0]
}

func (self Join) Sender() Sender {
	return senderOf(self.Command)
}

// Server acknowledgement of a chatter leaving a room.
type Part struct {
	Command
}

func AsPart(command Command) (Part, bool) {
	if command.Verb != "PART" || len(command.Arguments()) < 1 {
		return Part{}, false
	}
	return Part{command}, true
}

func (self Part) Room() string {
	return self.Arguments()[0]
}

func (self Part) Sender() Sender {
	return senderOf(self.Command)
}

// ClientPrivateMessage composes a PRIVMSG to room.
func ClientPrivateMessage(room string, comment string) Command {
	return Command{
		Verb:        "PRIVMSG",
		Params:      []string{room},
		Trailing:    comment,
		HasTrailing: true,
	}
}

// ClientJoin composes a JOIN for one or more rooms.
func ClientJoin(rooms ...string) Command {
	return Command{
		Verb:   "JOIN",
		Params: []string{strings.Join(rooms, ",")},
	}
}

// ClientPart composes a PART for one or more rooms.
func ClientPart(rooms ...string) Command {
	return Command{
		Verb:   "PART",
		Params: []string{strings.Join(rooms, ",")},
	}
}
