package mines

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNeighbors(t *testing.T) {
	g := newGrid(GameParams{Cols: 4, Rows: 3, MineCount: 1})

	tests := []struct {
		name     string
		row, col int
		want     []Pos
	}{
		{"corner", 0, 0, []Pos{{0, 1}, {1, 0}, {1, 1}}},
		{"edge", 0, 2, []Pos{{0, 1}, {0, 3}, {1, 1}, {1, 2}, {1, 3}}},
		{"inner", 1, 1, []Pos{
			{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 2}, {2, 0}, {2, 1}, {2, 2},
		}},
		{"far corner", 2, 3, []Pos{{1, 2}, {1, 3}, {2, 2}}},
		{"out of bounds", 3, 0, nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, g.Neighbors(test.row, test.col))
		})
	}
}

func TestTileCoordinates(t *testing.T) {
	g := newGrid(GameParams{Cols: 4, Rows: 3, MineCount: 1})
	for row := range 3 {
		for col := range 4 {
			tile, ok := g.Tile(row, col)
			assert.True(t, ok)
			assert.Equal(t, Pos{Row: row, Col: col}, tile.Pos)
			assert.Equal(t, Hidden, tile.Visibility)
			assert.Equal(t, Unmarked, tile.Mark)
		}
	}
	_, ok := g.Tile(0, 4)
	assert.False(t, ok)
}

func TestCellState(t *testing.T) {
	tests := []struct {
		name  string
		tile  Tile
		state State
		want  CellState
	}{
		{"hidden", Tile{}, Playing, CellHidden},
		{"flagged", Tile{Mark: Flagged}, Playing, CellFlagged},
		{"unknown", Tile{Mark: Unknown}, Playing, CellQuestion},
		{"hidden mine", Tile{IsMine: true}, Playing, CellHidden},
		{"open", Tile{Visibility: Revealed, AdjacentMineCount: 3}, Playing, CellState(3)},
		{"tipping point", Tile{Visibility: Revealed, IsMine: true, IsTippingPoint: true}, Lost, CellTippingPoint},
		{"exploded", Tile{IsMine: true, Exploded: true}, Lost, CellExploded},
		{"correct flag", Tile{IsMine: true, Mark: Flagged}, Lost, CellCorrectFlag},
		{"wrong flag", Tile{Mark: Flagged}, Lost, CellWrongFlag},
		{"wrong flag while playing", Tile{Mark: Flagged}, Playing, CellFlagged},
		{"shown", Tile{IsMine: true, Exposed: true}, Won, CellMine},
		{"unknown mine after win", Tile{IsMine: true, Exposed: true, Mark: Unknown}, Won, CellMine},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, test.tile.View(test.state))
		})
	}
}

func TestPlayerGridToString(t *testing.T) {
	g := PlayerGrid{
		CellHidden, CellFlagged, CellQuestion,
		CellState(0), CellState(8), CellMine,
	}
	assert.Equal(t, ". F ? \n0 8 * \n", g.ToString(3))
}
