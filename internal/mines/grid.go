package mines

import (
	"fmt"
	"iter"
	"strconv"
	"strings"
)

type Pos struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type Visibility uint8

const (
	Hidden Visibility = iota
	Revealed
)

type Mark uint8

const (
	Unmarked Mark = iota
	Flagged
	Unknown
)

func (m Mark) next() Mark {
	return (m + 1) % 3
}

func (m Mark) String() string {
	switch m {
	case Flagged:
		return "flagged"
	case Unknown:
		return "unknown"
	default:
		return "none"
	}
}

// Tile is one cell of the board. Tiles hold no reference to their grid and
// are addressed by (row, col).
type Tile struct {
	Pos
	IsMine            bool
	AdjacentMineCount int
	Visibility        Visibility
	Mark              Mark
	Exposed           bool /* mine shown after the game ended */
	Exploded          bool
	IsTippingPoint    bool
}

func (t Tile) Revealed() bool {
	return t.Visibility == Revealed
}

// Numbered reports whether t is a revealed safe tile with mines around it.
func (t Tile) Numbered() bool {
	return t.Revealed() && !t.IsMine &&
		1 <= t.AdjacentMineCount && t.AdjacentMineCount <= 8
}

// Grid is a dense row-major matrix of tiles.
type Grid struct {
	GameParams
	Tiles       []Tile
	MinesPlaced bool
}

func newGrid(p GameParams) *Grid {
	tiles := make([]Tile, p.Cols*p.Rows)
	for i := range tiles {
		tiles[i].Pos = Pos{Row: i / p.Cols, Col: i % p.Cols}
	}
	return &Grid{GameParams: p, Tiles: tiles}
}

func (g *Grid) index(row, col int) int {
	return row*g.Cols + col
}

func (g *Grid) pos(i int) Pos {
	return g.Tiles[i].Pos
}

// Tile returns a copy of the tile at row:col. The second result is false if
// the coordinates are out of bounds.
func (g *Grid) Tile(row, col int) (Tile, bool) {
	if !g.PointInBounds(row, col) {
		return Tile{}, false
	}
	return g.Tiles[g.index(row, col)], true
}

// neighbors yields the indices of the up to 8 in-bounds tiles around i.
func (g *Grid) neighbors(i int) iter.Seq[int] {
	row, col := i/g.Cols, i%g.Cols
	return func(yield func(int) bool) {
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				if dr == 0 && dc == 0 {
					continue
				}
				r, c := row+dr, col+dc
				if !g.PointInBounds(r, c) {
					continue
				}
				if !yield(g.index(r, c)) {
					return
				}
			}
		}
	}
}

// Neighbors lists the in-bounds positions around row:col.
func (g *Grid) Neighbors(row, col int) []Pos {
	if !g.PointInBounds(row, col) {
		return nil
	}
	var ps []Pos
	for n := range g.neighbors(g.index(row, col)) {
		ps = append(ps, g.pos(n))
	}
	return ps
}

func (g *Grid) MineCountAround(row, col int) (c int) {
	for _, p := range g.Neighbors(row, col) {
		if g.Tiles[g.index(p.Row, p.Col)].IsMine {
			c++
		}
	}
	return
}

type CellState int8

const (
	CellQuestion     CellState = -3
	CellHidden       CellState = -2
	CellFlagged      CellState = -1
	CellCorrectFlag  CellState = 64
	CellTippingPoint CellState = 65
	CellWrongFlag    CellState = 66
	CellMine         CellState = 67
	CellExploded     CellState = 68
	/*
	 * 0 to 8 mean the tile is open and carry its adjacent mine count.
	 *
	 * 64 and above only appear once the game has ended: 64 is a flag that
	 * sat on a mine, 65 is the mine the player revealed, 66 is a flag on a
	 * safe tile, 67 is a mine that was shown and 68 one that went off in
	 * the detonation ripple.
	 */
)

func (s CellState) String() string {
	switch {
	case s == CellQuestion:
		return "?"
	case s == CellHidden:
		return "."
	case s == CellFlagged, s == CellCorrectFlag:
		return "F"
	case s == CellWrongFlag:
		return "X"
	case s == CellMine:
		return "*"
	case s == CellExploded, s == CellTippingPoint:
		return "#"
	case 0 <= s && s <= 8:
		return strconv.Itoa(int(s))
	default:
		return "!"
	}
}

// View is what a player is allowed to see of t while the game is in state.
func (t Tile) View(state State) CellState {
	if t.Revealed() {
		if t.IsMine {
			return CellTippingPoint
		}
		return CellState(t.AdjacentMineCount)
	}
	switch {
	case t.Exploded:
		return CellExploded
	case t.Mark == Flagged && state.Over() && t.IsMine:
		return CellCorrectFlag
	case t.Mark == Flagged && state == Lost:
		return CellWrongFlag
	case t.Exposed:
		return CellMine
	case t.Mark == Flagged:
		return CellFlagged
	case t.Mark == Unknown:
		return CellQuestion
	default:
		return CellHidden
	}
}

// PlayerGrid is the row-major player view of a board.
type PlayerGrid []CellState

func (g PlayerGrid) ToString(width int) string {
	var b strings.Builder
	for y := range len(g) / width {
		for x := range width {
			fmt.Fprint(&b, g[y*width+x].String()+" ")
		}
		fmt.Fprint(&b, "\n")
	}
	return b.String()
}
