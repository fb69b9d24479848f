package publish

import (
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper/internal/mines"
)

type published struct {
	subject string
	data    []byte
}

type fakePublisher struct {
	msgs []published
	err  error
}

func (p *fakePublisher) Publish(subject string, data []byte) error {
	p.msgs = append(p.msgs, published{subject, data})
	return p.err
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestListenerPublishesGame(t *testing.T) {
	pub := &fakePublisher{}
	game, err := mines.NewGame(mines.Beginner,
		mines.WithListener(NewListener(pub, 42, quietLogger())),
	)
	require.NoError(t, err)

	game.Mark(0, 0)
	game.Reveal(4, 4, true)

	require.NotEmpty(t, pub.msgs)
	kinds := make([]string, 0, len(pub.msgs))
	for _, m := range pub.msgs {
		assert.Equal(t, "mines.session.42", m.subject)
		var msg Message
		require.NoError(t, json.Unmarshal(m.data, &msg))
		assert.Equal(t, "42", msg.SessionId)
		kinds = append(kinds, msg.Kind)
	}
	assert.Equal(t, []string{
		"game_started", "tile_marked", "flagged_count_changed", "tile_revealed",
	}, kinds[:4])
}

func TestListenerIgnoresPublishErrors(t *testing.T) {
	pub := &fakePublisher{err: errors.New("nats: connection closed")}
	game, err := mines.NewGame(mines.Beginner,
		mines.WithListener(NewListener(pub, 1, quietLogger())),
	)
	require.NoError(t, err)

	game.Reveal(0, 0, true)
	assert.NotEqual(t, mines.NotStarted, game.State())
	assert.NotEmpty(t, pub.msgs)
}

func TestNewMessageHidesMines(t *testing.T) {
	hidden := mines.Tile{Pos: mines.Pos{Row: 1, Col: 2}, IsMine: true, Mark: mines.Flagged}
	m := NewMessage(3, mines.Event{Kind: mines.EventTileMarked, Tile: hidden})
	require.NotNil(t, m.Tile)
	assert.Equal(t, mines.CellFlagged, m.Tile.State)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "mine")
}

func TestNewMessageDetonations(t *testing.T) {
	m := NewMessage(3, mines.Event{
		Kind: mines.EventDetonationSequence,
		Detonations: []mines.Detonation{
			{Pos: mines.Pos{Row: 2, Col: 3}},
			{Pos: mines.Pos{Row: 0, Col: 0}, Offset: 3 * mines.LayerDelay},
		},
	})
	assert.Equal(t, []Detonation{
		{Row: 2, Col: 3, OffsetMs: 0},
		{Row: 0, Col: 0, OffsetMs: 300},
	}, m.Detonations)

	ended := NewMessage(3, mines.Event{Kind: mines.EventGameEnded})
	require.NotNil(t, ended.Won)
	assert.False(t, *ended.Won)
}
