package mines

import (
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/gammazero/deque"
)

// LayerDelay separates two consecutive rings of the detonation ripple.
const LayerDelay = 100 * time.Millisecond

// Detonation is one mine going off, Offset after the tipping point.
type Detonation struct {
	Pos
	Offset time.Duration
}

// detonate exposes every unflagged mine, then walks the board breadth first
// from the tipping point and schedules each unflagged mine it meets by its
// ripple distance. Exploded is applied at once; Offset only stages the
// presentation. Flags do not stop the ripple, they only shield the mine
// underneath.
func detonate(g *Grid, tippingPoint int) []Detonation {
	for i := range g.Tiles {
		t := &g.Tiles[i]
		if t.IsMine && i != tippingPoint && t.Mark != Flagged {
			t.Exposed = true
		}
	}

	var (
		seq      []Detonation
		queue    deque.Deque[int]
		impacted = bitset.New(uint(len(g.Tiles)))
		depth    = make([]int, len(g.Tiles))
	)
	impacted.Set(uint(tippingPoint))
	queue.PushBack(tippingPoint)

	for queue.Len() > 0 {
		i := queue.PopFront()
		t := &g.Tiles[i]
		if t.IsMine && t.Mark != Flagged && !t.Exploded {
			t.Exploded = true
			seq = append(seq, Detonation{
				Pos:    t.Pos,
				Offset: time.Duration(depth[i]) * LayerDelay,
			})
		}
		for n := range g.neighbors(i) {
			if impacted.Test(uint(n)) {
				continue
			}
			impacted.Set(uint(n))
			depth[n] = depth[i] + 1
			queue.PushBack(n)
		}
	}

	Log.WithField("count", len(seq)).Debug("detonation sequence computed")

	return seq
}
