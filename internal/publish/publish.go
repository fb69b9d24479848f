package publish

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper/internal/mines"
)

// Publisher is satisfied by *nats.Conn.
type Publisher interface {
	Publish(subject string, data []byte) error
}

func Subject(sessionId int64) string {
	return fmt.Sprintf("mines.session.%d", sessionId)
}

type Client struct {
	conn *nats.Conn
	log  *logrus.Logger
}

func Connect(url string, log *logrus.Logger) (*Client, error) {
	conn, err := nats.Connect(url,
		nats.Name("minesweeper"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.WithError(err).Warn("nats disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.WithField("url", nc.ConnectedUrl()).Info("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to nats at %s: %w", url, err)
	}
	return &Client{conn: conn, log: log}, nil
}

// Listener publishes the notifications of one session.
func (c *Client) Listener(sessionId int64) *Listener {
	return NewListener(c.conn, sessionId, c.log)
}

// Close flushes pending messages and closes the connection.
func (c *Client) Close() {
	if err := c.conn.Drain(); err != nil {
		c.log.WithError(err).Warn("unable to drain nats connection")
		c.conn.Close()
	}
}

// Listener is a [mines.Listener] that publishes every notification as a
// JSON [Message] on the session subject. Publishing is best effort: errors
// are logged and the game goes on.
type Listener struct {
	pub       Publisher
	sessionId int64
	subject   string
	log       *logrus.Logger
}

func NewListener(pub Publisher, sessionId int64, log *logrus.Logger) *Listener {
	return &Listener{
		pub:       pub,
		sessionId: sessionId,
		subject:   Subject(sessionId),
		log:       log,
	}
}

func (l *Listener) publish(e mines.Event) {
	data, err := json.Marshal(NewMessage(l.sessionId, e))
	if err != nil {
		l.log.WithError(err).Error("unable to marshal notification")
		return
	}
	if err := l.pub.Publish(l.subject, data); err != nil {
		l.log.WithFields(logrus.Fields{
			"subject": l.subject,
			"kind":    e.Kind.String(),
		}).WithError(err).Warn("unable to publish notification")
	}
}

func (l *Listener) GameStarted() {
	l.publish(mines.Event{Kind: mines.EventGameStarted})
}

func (l *Listener) TileRevealed(t mines.Tile, userInitiated bool) {
	l.publish(mines.Event{
		Kind: mines.EventTileRevealed, Tile: t, UserInitiated: userInitiated,
	})
}

func (l *Listener) TileMarked(t mines.Tile) {
	l.publish(mines.Event{Kind: mines.EventTileMarked, Tile: t})
}

func (l *Listener) FlaggedCountChanged(count int) {
	l.publish(mines.Event{Kind: mines.EventFlaggedCountChanged, Count: count})
}

func (l *Listener) GameEnded(won bool) {
	l.publish(mines.Event{Kind: mines.EventGameEnded, Won: won})
}

func (l *Listener) GameWon() {
	l.publish(mines.Event{Kind: mines.EventGameWon})
}

func (l *Listener) GameLost(tippingPoint mines.Tile) {
	l.publish(mines.Event{Kind: mines.EventGameLost, Tile: tippingPoint})
}

func (l *Listener) DetonationSequence(seq []mines.Detonation) {
	l.publish(mines.Event{Kind: mines.EventDetonationSequence, Detonations: seq})
}
