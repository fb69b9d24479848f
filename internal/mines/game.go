package mines

import (
	"math/rand/v2"
	"slices"
	"time"

	"github.com/gammazero/deque"
	"github.com/sirupsen/logrus"
)

type Option func(*Game)

// WithRand sets the source used for mine placement. A Game is not safe for
// concurrent use, and neither is r.
func WithRand(r *rand.Rand) Option {
	return func(g *Game) { g.rand = r }
}

// WithListener subscribes l to the game notifications. It may be given more
// than once; listeners are called in the order they were added.
func WithListener(l Listener) Option {
	return func(g *Game) { g.listeners = append(g.listeners, l) }
}

func WithClock(now func() time.Time) Option {
	return func(g *Game) { g.now = now }
}

// Game is one minesweeper session: a board together with its marks, state,
// timer and subscribers.
type Game struct {
	grid         *Grid
	marks        markings
	state        State
	revealedSafe int
	tippingPoint int
	detonations  []Detonation
	startedAt    time.Time
	endedAt      time.Time

	rand      *rand.Rand
	listeners Listeners
	now       func() time.Time

	busy        bool
	dispatching bool
	pending     []Event
}

// NewGame creates a session with every tile hidden. Mines are placed on the
// first reveal.
func NewGame(params GameParams, opts ...Option) (*Game, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	grid := newGrid(params)
	g := &Game{
		grid:         grid,
		marks:        newMarkings(grid),
		tippingPoint: -1,
	}
	g.apply(opts)
	return g, nil
}

func (g *Game) apply(opts []Option) {
	for _, opt := range opts {
		opt(g)
	}
	if g.rand == nil {
		g.rand = newRand()
	}
	if g.now == nil {
		g.now = time.Now
	}
}

// Reveal opens the tile at row:col and, when it has no mines around it,
// the whole empty region it belongs to. Revealed or marked tiles are left
// alone.
func (g *Game) Reveal(row, col int, userInitiated bool) {
	if !g.begin(row, col) {
		return
	}
	defer g.commit()
	g.reveal(g.grid.index(row, col), userInitiated)
}

// Mark cycles the mark of a hidden tile: none, flagged, unknown, none.
func (g *Game) Mark(row, col int) {
	if !g.begin(row, col) {
		return
	}
	defer g.commit()

	i := g.grid.index(row, col)
	t := &g.grid.Tiles[i]
	if t.Revealed() {
		return
	}
	g.start()
	before := g.marks.flaggedCount()
	g.marks.cycle(g.grid, i)
	g.emit(Event{Kind: EventTileMarked, Tile: *t})
	if after := g.marks.flaggedCount(); after != before {
		g.emit(Event{Kind: EventFlaggedCountChanged, Count: after})
	}
}

// RequestChordedReveal works on a revealed numbered tile. It returns the
// hidden unmarked tiles around it, which a client highlights. Unless
// highlightOnly is set, those tiles are revealed as well, but only when the
// number of flags around the tile equals its number.
func (g *Game) RequestChordedReveal(row, col int, highlightOnly bool) []Pos {
	if !g.begin(row, col) {
		return nil
	}
	defer g.commit()

	i := g.grid.index(row, col)
	t := g.grid.Tiles[i]
	if !t.Numbered() {
		return nil
	}

	var (
		candidates []int
		flagged    int
	)
	for n := range g.grid.neighbors(i) {
		nt := &g.grid.Tiles[n]
		switch {
		case nt.Revealed():
		case g.marks.isFlagged(n):
			flagged++
		case nt.Mark == Unmarked:
			candidates = append(candidates, n)
		}
	}

	highlight := make([]Pos, len(candidates))
	for k, n := range candidates {
		highlight[k] = g.grid.pos(n)
	}
	if highlightOnly || flagged != t.AdjacentMineCount {
		return highlight
	}

	for _, n := range candidates {
		if g.state.Over() {
			break
		}
		g.reveal(n, true)
	}
	return highlight
}

func (g *Game) begin(row, col int) bool {
	if g.busy || g.state.Over() || !g.grid.PointInBounds(row, col) {
		return false
	}
	g.busy = true
	return true
}

// commit ends the running operation and delivers what it produced. A
// listener calling back into the game only queues more notifications; the
// outermost commit delivers them in order.
func (g *Game) commit() {
	g.busy = false
	if g.dispatching {
		return
	}
	g.dispatching = true
	defer func() { g.dispatching = false }()

	for len(g.pending) > 0 {
		e := g.pending[0]
		g.pending = g.pending[1:]
		e.Dispatch(g.listeners)
	}
	g.pending = nil
}

func (g *Game) emit(e Event) {
	g.pending = append(g.pending, e)
}

func (g *Game) start() {
	if g.state != NotStarted {
		return
	}
	g.state = Playing
	g.startedAt = g.now()
	g.emit(Event{Kind: EventGameStarted})
}

func (g *Game) reveal(i int, userInitiated bool) {
	t := &g.grid.Tiles[i]
	if t.Revealed() || t.Mark != Unmarked {
		return
	}
	g.start()

	if !g.grid.MinesPlaced {
		exclude := append([]int{i}, slices.Collect(g.grid.neighbors(i))...)
		if err := placeMines(g.grid, exclude, g.rand); err != nil {
			Log.WithError(err).Error("could not place mines")
			return
		}
	}

	var queue deque.Deque[int]
	queue.PushBack(i)
	for queue.Len() > 0 {
		j := queue.PopFront()
		t := &g.grid.Tiles[j]
		if t.Revealed() || t.Mark != Unmarked {
			continue
		}
		t.Visibility = Revealed
		g.emit(Event{
			Kind:          EventTileRevealed,
			Tile:          *t,
			UserInitiated: userInitiated && j == i,
		})

		if t.IsMine {
			t.IsTippingPoint = true
			g.lose(j)
			return
		}
		g.revealedSafe++

		if t.AdjacentMineCount > 0 {
			continue
		}
		for n := range g.grid.neighbors(j) {
			nt := &g.grid.Tiles[n]
			if !nt.Revealed() && nt.Mark == Unmarked {
				queue.PushBack(n)
			}
		}
	}

	if g.revealedSafe == g.totalSafe() {
		g.win()
	}
}

func (g *Game) totalSafe() int {
	return g.grid.Cols*g.grid.Rows - g.grid.MineCount
}

func (g *Game) win() {
	g.state = Won
	g.endedAt = g.now()
	for i := range g.grid.Tiles {
		if t := &g.grid.Tiles[i]; t.IsMine {
			t.Exposed = true
		}
	}
	g.emit(Event{Kind: EventGameEnded, Won: true})
	g.emit(Event{Kind: EventGameWon, Won: true})

	Log.WithFields(logrus.Fields{
		"level":   g.grid.LevelKey(),
		"elapsed": g.Elapsed(),
	}).Debug("game won")
}

func (g *Game) lose(tippingPoint int) {
	g.state = Lost
	g.endedAt = g.now()
	g.tippingPoint = tippingPoint
	g.detonations = detonate(g.grid, tippingPoint)
	g.emit(Event{Kind: EventGameEnded})
	g.emit(Event{Kind: EventGameLost, Tile: g.grid.Tiles[tippingPoint]})
	g.emit(Event{
		Kind:        EventDetonationSequence,
		Detonations: slices.Clone(g.detonations),
	})

	Log.WithFields(logrus.Fields{
		"level": g.grid.LevelKey(),
		"pos":   g.grid.pos(tippingPoint),
	}).Debug("game lost")
}

func (g *Game) State() State {
	return g.state
}

func (g *Game) Params() GameParams {
	return g.grid.GameParams
}

func (g *Game) LevelKey() string {
	return g.grid.LevelKey()
}

// Grid returns a copy of the board.
func (g *Game) Grid() Grid {
	c := *g.grid
	c.Tiles = slices.Clone(g.grid.Tiles)
	return c
}

func (g *Game) Tile(row, col int) (Tile, bool) {
	return g.grid.Tile(row, col)
}

func (g *Game) FlaggedCount() int {
	return g.marks.flaggedCount()
}

// RemainingMines is what the mine counter shows. It goes negative when the
// player places more flags than there are mines.
func (g *Game) RemainingMines() int {
	return g.grid.MineCount - g.marks.flaggedCount()
}

func (g *Game) RevealedSafeCount() int {
	return g.revealedSafe
}

func (g *Game) Flagged() []Pos {
	return members(g.marks.flagged, g.grid)
}

func (g *Game) Detonations() []Detonation {
	return slices.Clone(g.detonations)
}

func (g *Game) TippingPoint() (Tile, bool) {
	if g.tippingPoint < 0 {
		return Tile{}, false
	}
	return g.grid.Tiles[g.tippingPoint], true
}

// Elapsed is the time spent playing: zero before the first move, frozen
// once the game is over.
func (g *Game) Elapsed() time.Duration {
	switch g.state {
	case NotStarted:
		return 0
	case Playing:
		return g.now().Sub(g.startedAt)
	default:
		return g.endedAt.Sub(g.startedAt)
	}
}

func (g *Game) StartedAt() time.Time {
	return g.startedAt
}

// EndedAt is zero until the game is over.
func (g *Game) EndedAt() time.Time {
	return g.endedAt
}

// View is the board as the player may see it.
func (g *Game) View() PlayerGrid {
	view := make(PlayerGrid, len(g.grid.Tiles))
	for i, t := range g.grid.Tiles {
		view[i] = t.View(g.state)
	}
	return view
}

func (g *Game) String() string {
	return g.View().ToString(g.grid.Cols)
}
