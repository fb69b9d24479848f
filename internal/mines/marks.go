package mines

import "github.com/bits-and-blooms/bitset"

// markings keeps the flagged and unknown tile sets in step with the Mark of
// every tile. Both sets are indexed by row-major tile index.
type markings struct {
	flagged *bitset.BitSet
	unknown *bitset.BitSet
}

func newMarkings(g *Grid) markings {
	m := markings{
		flagged: bitset.New(uint(len(g.Tiles))),
		unknown: bitset.New(uint(len(g.Tiles))),
	}
	for i, t := range g.Tiles {
		switch t.Mark {
		case Flagged:
			m.flagged.Set(uint(i))
		case Unknown:
			m.unknown.Set(uint(i))
		}
	}
	return m
}

// cycle advances the mark of tile i: none, flagged, unknown, none. Revealed
// tiles are left alone and false is returned.
func (m *markings) cycle(g *Grid, i int) bool {
	t := &g.Tiles[i]
	if t.Revealed() {
		return false
	}
	m.set(uint(i), t.Mark, false)
	t.Mark = t.Mark.next()
	m.set(uint(i), t.Mark, true)
	return true
}

func (m *markings) set(i uint, mark Mark, value bool) {
	var s *bitset.BitSet
	switch mark {
	case Flagged:
		s = m.flagged
	case Unknown:
		s = m.unknown
	default:
		return
	}
	s.SetTo(i, value)
}

func (m *markings) flaggedCount() int {
	return int(m.flagged.Count())
}

func (m *markings) isFlagged(i int) bool {
	return m.flagged.Test(uint(i))
}

func members(s *bitset.BitSet, g *Grid) []Pos {
	ps := make([]Pos, 0, s.Count())
	for i, ok := s.NextSet(0); ok; i, ok = s.NextSet(i + 1) {
		ps = append(ps, g.pos(int(i)))
	}
	return ps
}
