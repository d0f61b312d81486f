package hourbot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/golang/glog"

	"github.com/hourbot/hourbot/ircv3"
)

const sendCategoryMessage = "message"
const sendCategoryJoin = "join"

type ClientSettings struct {
	WsHandshakeTimeout time.Duration
	ReconnectTimeout   time.Duration
	WriteTimeout       time.Duration
	// must exceed the server's keepalive interval; the read deadline is
	// re-armed on every frame including pings
	ReadTimeout     time.Duration
	MessageCooldown time.Duration
	JoinCooldown    time.Duration
}

func DefaultClientSettings() *ClientSettings {
	return &ClientSettings{
		WsHandshakeTimeout: 2 * time.Second,
		ReconnectTimeout:   5 * time.Second,
		WriteTimeout:       5 * time.Second,
		ReadTimeout:        8 * time.Minute,
		MessageCooldown:    1500 * time.Millisecond,
		JoinCooldown:       1500 * time.Millisecond,
	}
}

type ClientAuth struct {
	Nick       string
	OAuthToken string
}

// Routine is one subscriber task. Routines run for the lifetime of a single
// connection: each one typically takes an attachment, consumes its pipe
// until closure, and returns. A routine never outlives its connection.
type Routine func(ctx context.Context, client *Client)

// Client owns one chat connection at a time and the diverter that fans its
// inbound commands out to subscribers.
//
// Run dials, authenticates, and reads until the peer closes, then closes
// the diverter (ending every subscriber's loop deterministically), waits
// for the subscribers, and reconnects. Keepalive pings are answered in the
// read path directly and withheld from distribution.
type Client struct {
	ctx    context.Context
	cancel context.CancelFunc

	url      string
	auth     *ClientAuth
	settings *ClientSettings

	routines []Routine

	messageSink *RateLimitedSink[ircv3.Command]
	joinSink    *RateLimitedSink[ircv3.Command]

	stateLock sync.Mutex
	diverter  *Diverter[ircv3.Command]
	ws        *websocket.Conn
	writeLock sync.Mutex
}

func NewClientWithDefaults(ctx context.Context, url string, auth *ClientAuth) *Client {
	return NewClient(ctx, url, auth, DefaultClientSettings())
}

func NewClient(ctx context.Context, url string, auth *ClientAuth, settings *ClientSettings) *Client {
	cancelCtx, cancel := context.WithCancel(ctx)
	client := &Client{
		ctx:      cancelCtx,
		cancel:   cancel,
		url:      url,
		auth:     auth,
		settings: settings,
		diverter: NewDiverter[ircv3.Command](),
	}
	client.messageSink = NewRateLimitedSink[ircv3.Command](rawSender{client}, settings.MessageCooldown)
	client.joinSink = NewRateLimitedSink[ircv3.Command](rawSender{client}, settings.JoinCooldown)
	return client
}

// AddRoutine registers a subscriber task to run on every connection. Must
// be called before Run.
func (self *Client) AddRoutine(routine Routine) {
	self.routines = append(self.routines, routine)
}

// Nick returns the client's own login name. Pipelines use it to exclude
// the client's own messages.
func (self *Client) Nick() string {
	return self.auth.Nick
}

// Attachment attaches a new pipe to the current connection's diverter.
func (self *Client) Attachment() *Attachment[ircv3.Command] {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	return self.diverter.Attachment()
}

// Run connects and serves until ctx ends, reconnecting with backoff after
// each disconnect. Reconnection is the single recovery mechanism for
// transport failure; the loop simply retries from scratch.
func (self *Client) Run() {
	defer self.cancel()

	first := true
	for {
		reconnect := NewReconnect(self.settings.ReconnectTimeout)
		if !first {
			metricReconnects.Inc()
		}
		first = false
		if err := self.runOnce(); err != nil {
			glog.Infof("[c]%s disconnect = %s\n", self.auth.Nick, err)
		}
		select {
		case <-self.ctx.Done():
			return
		case <-reconnect.After():
		}
	}
}

func (self *Client) runOnce() error {
	dialer := &websocket.Dialer{
		HandshakeTimeout: self.settings.WsHandshakeTimeout,
	}
	ws, _, err := dialer.DialContext(self.ctx, self.url, nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	handleCtx, handleCancel := context.WithCancel(self.ctx)
	defer handleCancel()

	// unblock the read loop when the scope ends for any reason
	go func() {
		<-handleCtx.Done()
		ws.Close()
	}()

	diverter := NewDiverter[ircv3.Command]()
	self.stateLock.Lock()
	self.diverter = diverter
	self.ws = ws
	self.stateLock.Unlock()

	defer func() {
		diverter.Close()
		self.stateLock.Lock()
		self.ws = nil
		self.stateLock.Unlock()
	}()

	// auth prelude: capabilities, credentials, identity
	prelude := []string{
		"CAP REQ :twitch.tv/commands twitch.tv/membership twitch.tv/tags",
		fmt.Sprintf("PASS oauth:%s", self.auth.OAuthToken),
		fmt.Sprintf("NICK %s", self.auth.Nick),
	}
	for _, line := range prelude {
		if err := self.writeLine(line); err != nil {
			return err
		}
	}
	glog.V(1).Infof("[c]%s connect %s\n", self.auth.Nick, self.url)

	var tasks sync.WaitGroup
	for _, routine := range self.routines {
		tasks.Add(1)
		go func(routine Routine) {
			defer tasks.Done()
			// a failure in one subscriber's pipeline must not take
			// down the connection's fan-out
			defer func() {
				if r := recover(); r != nil {
					glog.Errorf("[c]%s subscriber panic = %s\n", self.auth.Nick, r)
				}
			}()
			routine(handleCtx, self)
		}(routine)
	}

	readErr := func() error {
		for {
			ws.SetReadDeadline(time.Now().Add(self.settings.ReadTimeout))
			_, data, err := ws.ReadMessage()
			if err != nil {
				return err
			}
			for _, command := range ircv3.ParseAll(string(data)) {
				metricCommandsParsed.WithLabelValues(command.Verb).Inc()
				if ping, ok := ircv3.AsPing(command); ok {
					// keepalives bypass the diverter and the sinks
					if err := self.Send(handleCtx, ping.Reply()); err != nil {
						return err
					}
					continue
				}
				glog.V(2).Infof("[cr]%s<- %s\n", self.auth.Nick, command.Verb)
				diverter.Send(command)
			}
		}
	}()

	diverter.Close()
	handleCancel()
	tasks.Wait()
	return readErr
}

// Send writes one command immediately, bypassing the cooldown sinks.
// Returns ErrClosed when no connection is up.
func (self *Client) Send(ctx context.Context, command ircv3.Command) error {
	return self.writeLine(command.String())
}

func (self *Client) writeLine(line string) error {
	self.stateLock.Lock()
	ws := self.ws
	self.stateLock.Unlock()
	if ws == nil {
		return ErrClosed
	}

	self.writeLock.Lock()
	defer self.writeLock.Unlock()

	ws.SetWriteDeadline(time.Now().Add(self.settings.WriteTimeout))
	if err := ws.WriteMessage(websocket.TextMessage, []byte(line+ircv3.CRLF)); err != nil {
		// a deadline timeout on a websocket write cannot be recovered
		glog.Infof("[cs]%s-> error = %s\n", self.auth.Nick, err)
		return err
	}
	glog.V(2).Infof("[cs]%s->\n", self.auth.Nick)
	return nil
}

// Message sends a PRIVMSG to room through the message cooldown. Important
// messages are delayed into their slot; unimportant ones are dropped when
// a cooldown is in effect.
func (self *Client) Message(ctx context.Context, room string, comment string, important bool) error {
	return self.messageSink.Send(ctx, sendCategoryMessage, ircv3.ClientPrivateMessage(room, comment), important)
}

// Reply is Message threaded to a specific message.
func (self *Client) Reply(ctx context.Context, target ircv3.PrivateMessage, comment string, important bool) error {
	return self.messageSink.Send(ctx, sendCategoryMessage, target.Reply(comment), important)
}

// Join enters rooms, paced by the join cooldown.
func (self *Client) Join(ctx context.Context, rooms ...string) error {
	return self.joinSink.Send(ctx, sendCategoryJoin, ircv3.ClientJoin(rooms...), true)
}

// Part leaves rooms.
func (self *Client) Part(ctx context.Context, rooms ...string) error {
	return self.Send(ctx, ircv3.ClientPart(rooms...))
}

// Close tears down the current connection and stops the reconnect loop.
func (self *Client) Close() {
	self.cancel()
	self.stateLock.Lock()
	ws := self.ws
	self.stateLock.Unlock()
	if ws != nil {
		ws.Close()
	}
}

// rawSender adapts the client's immediate write path to Sender for the
// cooldown sinks.
type rawSender struct {
	client *Client
}

func (self rawSender) Send(ctx context.Context, command ircv3.Command) error {
	return self.client.Send(ctx, command)
}
