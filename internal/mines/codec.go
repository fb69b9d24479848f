package mines

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"time"
)

type snapshot struct {
	Grid         Grid
	State        State
	RevealedSafe int
	TippingPoint int
	Detonations  []Detonation
	StartedAt    time.Time
	EndedAt      time.Time
}

// Bytes encodes the board and its progress. Listeners, the random source
// and the clock are not part of the encoding.
func (g *Game) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(snapshot{
		Grid:         *g.grid,
		State:        g.state,
		RevealedSafe: g.revealedSafe,
		TippingPoint: g.tippingPoint,
		Detonations:  g.detonations,
		StartedAt:    g.startedAt,
		EndedAt:      g.endedAt,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeGame restores a game encoded with [Game.Bytes]. opts re-attach what
// the encoding leaves out.
func DecodeGame(buf []byte, opts ...Option) (*Game, error) {
	var s snapshot
	if err := gob.NewDecoder(bytes.NewReader(buf)).Decode(&s); err != nil {
		return nil, err
	}
	if err := s.Grid.Validate(); err != nil {
		return nil, err
	}
	if len(s.Grid.Tiles) != s.Grid.Cols*s.Grid.Rows {
		return nil, fmt.Errorf(
			"corrupt game: %d tiles on a %dx%d board",
			len(s.Grid.Tiles), s.Grid.Cols, s.Grid.Rows,
		)
	}
	g := &Game{
		grid:         &s.Grid,
		marks:        newMarkings(&s.Grid),
		state:        s.State,
		revealedSafe: s.RevealedSafe,
		tippingPoint: s.TippingPoint,
		detonations:  s.Detonations,
		startedAt:    s.StartedAt,
		endedAt:      s.EndedAt,
	}
	g.apply(opts)
	return g, nil
}
