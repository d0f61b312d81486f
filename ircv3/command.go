package ircv3

import (
	"slices"
	"strings"

	"golang.org/x/exp/maps"
)

const CRLF = "\r\n"

// A single protocol line in structured form.
//
// Commands are constructed once per parsed line and treated as immutable
// values thereafter. The trailing parameter is kept separate from Params so
// that serialization can reproduce the original framing: a trailing parameter
// is introduced by " :" and may contain spaces, while ordinary parameters
// cannot.
type Command struct {
	Verb     string
	Params   []string
	Trailing string
	// distinguishes an empty trailing parameter from an absent one
	HasTrailing bool
	Tags        map[string]string
	Source      string
}

// Parse parses one line into a Command. Parsing is lenient and never fails:
// malformed tag or source segments are split best-effort, and a line with an
// unrecognized verb simply produces a Command with that verb.
func Parse(line string) Command {
	var command Command

	rest := strings.TrimSuffix(line, CRLF)

	if strings.HasPrefix(rest, "@") {
		block, next, _ := strings.Cut(rest[1:], " ")
		tags := map[string]string{}
		for _, tag := range strings.Split(block, ";") {
			label, value, _ := strings.Cut(tag, "=")
			tags[strings.TrimPrefix(label, "+")] = value
		}
		command.Tags = tags
		rest = next
	}

	if strings.HasPrefix(rest, ":") {
		source, next, _ := strings.Cut(rest[1:], " ")
		command.Source = source
		rest = next
	}

	head, trailing, hasTrailing := strings.Cut(rest, " :")
	if !hasTrailing && strings.HasPrefix(head, ":") {
		// no verb at all, just a trailing parameter
		head, trailing, hasTrailing = "", head[1:], true
	}
	fields := strings.Fields(head)
	if 0 < len(fields) {
		command.Verb = fields[0]
		if 1 < len(fields) {
			command.Params = fields[1:]
		}
	}
	command.Trailing = trailing
	command.HasTrailing = hasTrailing

	return command
}

// ParseAll parses one CRLF-framed chunk into commands, one per line, in line
// order. Empty lines are skipped. A chunk that straddles a line across two
// reads is the transport's problem, not the parser's; each call is stateless.
func ParseAll(data string) []Command {
	commands := []Command{}
	for _, line := range strings.Split(strings.TrimSuffix(data, CRLF), CRLF) {
		if line == "" {
			continue
		}
		commands = append(commands, Parse(line))
	}
	return commands
}

// String serializes the command back to its wire form, without the CRLF
// terminator. Tags are emitted in sorted label order so output is
// deterministic; tag order is not significant on the wire.
func (self Command) String() string {
	parts := []string{}
	if 0 < len(self.Tags) {
		labels := maps.Keys(self.Tags)
		slices.Sort(labels)
		tags := make([]string, 0, len(labels))
		for _, label := range labels {
			tags = append(tags, label+"="+self.Tags[label])
		}
		parts = append(parts, "@"+strings.Join(tags, ";"))
	}
	if self.Source != "" {
		parts = append(parts, ":"+self.Source)
	}
	parts = append(parts, self.Verb)
	parts = append(parts, self.Params...)
	if self.HasTrailing {
		parts = append(parts, ":"+self.Trailing)
	}
	return strings.Join(parts, " ")
}

// Arguments returns the ordinary parameters with the trailing parameter, if
// present, appended.
func (self Command) Arguments() []string {
	arguments := slices.Clone(self.Params)
	if self.HasTrailing {
		arguments = append(arguments, self.Trailing)
	}
	return arguments
}
