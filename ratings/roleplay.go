package ratings

import (
	"context"
	"fmt"
	mathrand "math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/hourbot/hourbot/hourbot"
	"github.com/hourbot/hourbot/ircv3"
	"github.com/hourbot/hourbot/store"
)

// a bare +1 or -1 standing alone
var roleplayScorePattern = regexp.MustCompile(
	`(?:^|\s)([-+]1)(?:$|[\s,.!?])`,
)

// the store key the running total lives under
const RoleplayTotalName = "roleplay_rating_total"

type RoleplaySettings struct {
	Decay    time.Duration
	MinCount int64
}

func DefaultRoleplaySettings() *RoleplaySettings {
	return &RoleplaySettings{
		Decay:    8 * time.Second,
		MinCount: 20,
	}
}

// RoleplayTally watches a room for "+1"/"-1" scores, sums each batch, folds
// the batch delta into a running total persisted across restarts, and
// announces both.
type RoleplayTally struct {
	room     string
	totals   *store.Store
	settings *RoleplaySettings
}

func NewRoleplayTallyWithDefaults(room string, totals *store.Store) *RoleplayTally {
	return NewRoleplayTally(room, totals, DefaultRoleplaySettings())
}

func NewRoleplayTally(room string, totals *store.Store, settings *RoleplaySettings) *RoleplayTally {
	return &RoleplayTally{
		room:     room,
		totals:   totals,
		settings: settings,
	}
}

// Run is a client routine; it returns when the connection's fan-out ends.
func (self *RoleplayTally) Run(ctx context.Context, client *hourbot.Client) {
	attachment := client.Attachment()
	defer attachment.Close()

	summarizer := &hourbot.Summarizer[ircv3.Command, Counter, Counter]{
		Initial: Counter{},
		Decay:   self.settings.Decay,
		Mapper:  self.mapper(client.Nick()),
		Reducer: Counter.Add,
		Predicate: func(counter Counter) bool {
			return self.settings.MinCount <= counter.Count
		},
		Finalizer: func(ctx context.Context, counter Counter) {
			self.announce(ctx, client, counter)
		},
	}
	summarizer.Run(ctx, attachment.Pipe())
}

func (self *RoleplayTally) mapper(nick string) func(ircv3.Command) (Counter, bool) {
	return func(command ircv3.Command) (Counter, bool) {
		message, ok := ircv3.AsPrivateMessage(command)
		if !ok || message.Room() != self.room {
			return Counter{}, false
		}
		if strings.EqualFold(message.Sender().Name, nick) {
			return Counter{}, false
		}
		match := roleplayScorePattern.FindStringSubmatch(message.Comment())
		if match == nil {
			return Counter{}, false
		}
		score := int64(1)
		if match[1] == "-1" {
			score = -1
		}
		return Counter{
			Value: score,
			Count: 1,
		}, true
	}
}

func (self *RoleplayTally) announce(ctx context.Context, client *hourbot.Client, counter Counter) {
	delta := counter.Value
	total, err := self.totals.Add(RoleplayTotalName, delta)
	if err != nil {
		glog.Errorf("[rp]total update error = %s\n", err)
		return
	}

	var verdict string
	var reactions []string
	if 0 <= delta {
		verdict = "gained"
		reactions = []string{"FeelsSnowyMan", ":D", "Gladge", "veryCat"}
	} else {
		verdict = "lost"
		reactions = []string{"FeelsSnowMan", ":(", "Sadge", "Awkward"}
	}

	client.Message(
		ctx,
		self.room,
		fmt.Sprintf(
			"donScoot 🔔 chat says %s %+d points for this roleplay moment - %d points in total %s",
			verdict,
			delta,
			total,
			reactions[mathrand.Intn(len(reactions))],
		),
		true,
	)
}
