package publish

import (
	"strconv"

	"github.com/vancomm/minesweeper/internal/mines"
)

// Tile is the part of a tile a player may see.
type Tile struct {
	Row   int             `json:"row"`
	Col   int             `json:"col"`
	State mines.CellState `json:"state"`
}

type Detonation struct {
	Row      int   `json:"row"`
	Col      int   `json:"col"`
	OffsetMs int64 `json:"offset_ms"`
}

// Message is a game notification as it goes over the wire.
type Message struct {
	SessionId     string       `json:"session_id"`
	Kind          string       `json:"kind"`
	Tile          *Tile        `json:"tile,omitempty"`
	UserInitiated bool         `json:"user_initiated,omitempty"`
	Count         *int         `json:"count,omitempty"`
	Won           *bool        `json:"won,omitempty"`
	Detonations   []Detonation `json:"detonations,omitempty"`
}

func newTile(t mines.Tile) *Tile {
	// notifications are raised while the game is still running
	return &Tile{Row: t.Row, Col: t.Col, State: t.View(mines.Playing)}
}

func NewMessage(sessionId int64, e mines.Event) Message {
	m := Message{
		SessionId: strconv.FormatInt(sessionId, 10),
		Kind:      e.Kind.String(),
	}
	switch e.Kind {
	case mines.EventTileRevealed:
		m.Tile = newTile(e.Tile)
		m.UserInitiated = e.UserInitiated
	case mines.EventTileMarked, mines.EventGameLost:
		m.Tile = newTile(e.Tile)
	case mines.EventFlaggedCountChanged:
		count := e.Count
		m.Count = &count
	case mines.EventGameEnded:
		won := e.Won
		m.Won = &won
	case mines.EventDetonationSequence:
		m.Detonations = make([]Detonation, len(e.Detonations))
		for i, d := range e.Detonations {
			m.Detonations[i] = Detonation{
				Row: d.Row, Col: d.Col, OffsetMs: d.Offset.Milliseconds(),
			}
		}
	}
	return m
}

func NewMessages(sessionId int64, events []mines.Event) []Message {
	ms := make([]Message, len(events))
	for i, e := range events {
		ms[i] = NewMessage(sessionId, e)
	}
	return ms
}
