package ratings

import (
	"context"
	"fmt"
	"math"
	mathrand "math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hourbot/hourbot/hourbot"
	"github.com/hourbot/hourbot/ircv3"
)

// any integer 0-10 or decimal below 10, over a denominator of 10, standing
// alone between start/whitespace and end/whitespace/punctuation
var segueRatingPattern = regexp.MustCompile(
	`(?:^|\s)((?:\d|10)\.?|\d?\.\d+)\s?/\s?10(?:$|[\s,.!?])`,
)

type SegueSettings struct {
	// maximum gap between successive ratings within one batch
	Decay time.Duration
	// minimum ratings in a batch before an average is announced
	MinCount int64
}

func DefaultSegueSettings() *SegueSettings {
	return &SegueSettings{
		Decay:    8500 * time.Millisecond,
		MinCount: 40,
	}
}

// SegueAverager watches a room for "X/10" ratings and announces the batch
// average once a batch of at least MinCount ratings goes quiet.
type SegueAverager struct {
	room     string
	settings *SegueSettings
}

func NewSegueAveragerWithDefaults(room string) *SegueAverager {
	return NewSegueAverager(room, DefaultSegueSettings())
}

func NewSegueAverager(room string, settings *SegueSettings) *SegueAverager {
	return &SegueAverager{
		room:     room,
		settings: settings,
	}
}

// Run is a client routine; it returns when the connection's fan-out ends.
func (self *SegueAverager) Run(ctx context.Context, client *hourbot.Client) {
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

func (self *SegueAverager) mapper(nick string) func(ircv3.Command) (Counter, bool) {
	return func(command ircv3.Command) (Counter, bool) {
		message, ok := ircv3.AsPrivateMessage(command)
		if !ok || message.Room() != self.room {
			return Counter{}, false
		}
		if strings.EqualFold(message.Sender().Name, nick) {
			return Counter{}, false
		}
		match := segueRatingPattern.FindStringSubmatch(message.Comment())
		if match == nil {
			return Counter{}, false
		}
		rating, err := strconv.ParseFloat(strings.TrimSuffix(match[1], "."), 64)
		if err != nil {
			return Counter{}, false
		}
		return Counter{
			// thousandths, so the average formats exactly
			Value: int64(math.Round(rating * 1000)),
			Count: 1,
		}, true
	}
}

func (self *SegueAverager) announce(ctx context.Context, client *hourbot.Client, counter Counter) {
	rating := float64(counter.Value) / 1000 / float64(counter.Count)

	var reactions []string
	if rating <= 5 {
		if rating <= 2.5 {
			reactions = []string{
				"yikes .. unPOGGERS",
				"awful one :(",
				"that wasn't very, uhm .. good Concerned",
			}
		} else {
			reactions = []string{
				"sorry .. :/",
				"uhm .. good try PoroSad",
				"not .. great .. Okayyy Clap",
			}
		}
	} else {
		if rating <= 7.5 {
			reactions = []string{
				"not bad ! :D",
				"nice ! peepoPog Clap",
				"good one ! hasScoot",
			}
		} else {
			reactions = []string{
				"incredible !! pepoDance",
				"holy smokes !! :O",
				"wowieee !! peepoExcite",
			}
		}
	}

	client.Message(
		ctx,
		self.room,
		fmt.Sprintf(
			"DANKIES 🔔 %d chatters rated this ad segue an average of %.2f/10 - %s",
			counter.Count,
			rating,
			reactions[mathrand.Intn(len(reactions))],
		),
		true,
	)
}
