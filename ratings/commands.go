package ratings

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang/glog"

	"github.com/hourbot/hourbot/hourbot"
	"github.com/hourbot/hourbot/ircv3"
	"github.com/hourbot/hourbot/store"
)

// OperatorCommands answers a small set of call-and-response commands,
// restricted to moderators, the broadcaster, and an explicit allowlist.
type OperatorCommands struct {
	room      string
	operators map[string]bool
	totals    *store.Store
}

func NewOperatorCommands(room string, operators []string, totals *store.Store) *OperatorCommands {
	operatorSet := map[string]bool{}
	for _, operator := range operators {
		operatorSet[strings.ToLower(operator)] = true
	}
	return &OperatorCommands{
		room:      room,
		operators: operatorSet,
		totals:    totals,
	}
}

func (self *OperatorCommands) allowed(sender ircv3.Sender) bool {
	return sender.Moderator || sender.Broadcaster || self.operators[strings.ToLower(sender.Name)]
}

// Run is a client routine; it returns when the connection's fan-out ends.
func (self *OperatorCommands) Run(ctx context.Context, client *hourbot.Client) {
	attachment := client.Attachment()
	defer attachment.Close()

	messages := hourbot.FilterMap(
		attachment.Pipe().Series(),
		func(command ircv3.Command) (ircv3.PrivateMessage, bool) {
			message, ok := ircv3.AsPrivateMessage(command)
			if !ok || message.Room() != self.room || !self.allowed(message.Sender()) {
				return ircv3.PrivateMessage{}, false
			}
			return message, true
		},
	)

	for {
		message, ok := messages.Next(ctx)
		if !ok {
			return
		}
		fields := strings.Fields(message.Comment())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "$ping":
			client.Reply(ctx, message, "pong", true)
		case "$copy", "$shadow":
			client.Reply(ctx, message, strings.Join(fields[1:], " "), true)
		case "$total":
			total, err := self.totals.Total(RoleplayTotalName)
			if err != nil {
				glog.Errorf("[op]total read error = %s\n", err)
				continue
			}
			client.Reply(ctx, message, fmt.Sprintf("%d roleplay points accrued so far", total), true)
		}
	}
}
