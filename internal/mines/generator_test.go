package mines

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		params  GameParams
		wantErr bool
	}{
		{"beginner", Beginner, false},
		{"intermediate", Intermediate, false},
		{"expert", Expert, false},
		{"single mine", GameParams{Cols: 10, Rows: 1, MineCount: 1}, false},
		{"densest", GameParams{Cols: 9, Rows: 9, MineCount: 72}, false},
		{"too dense", GameParams{Cols: 9, Rows: 9, MineCount: 73}, true},
		{"no mines", GameParams{Cols: 9, Rows: 9, MineCount: 0}, true},
		{"negative mines", GameParams{Cols: 9, Rows: 9, MineCount: -1}, true},
		{"no cols", GameParams{Cols: 0, Rows: 9, MineCount: 1}, true},
		{"no rows", GameParams{Cols: 9, Rows: 0, MineCount: 1}, true},
		{"smaller than safe zone", GameParams{Cols: 3, Rows: 3, MineCount: 1}, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.params.Validate()
			if !test.wantErr {
				assert.NoError(t, err)
				return
			}
			var ce ConfigurationError
			assert.ErrorAs(t, err, &ce)

			_, err = NewGame(test.params)
			assert.ErrorAs(t, err, &ce)
		})
	}
}

func TestLevelKey(t *testing.T) {
	assert.Equal(t, "9_9_10", Beginner.LevelKey())
	assert.Equal(t, "30_16_99", Expert.LevelKey())

	p, err := ParseLevelKey("16_16_40")
	require.NoError(t, err)
	assert.Equal(t, Intermediate, *p)

	for _, key := range []string{"", "9_9", "a_b_c", "9x9x10"} {
		_, err := ParseLevelKey(key)
		assert.Error(t, err, key)
	}
}

func TestLevelByName(t *testing.T) {
	p, ok := LevelByName("Expert")
	assert.True(t, ok)
	assert.Equal(t, Expert, p)

	_, ok = LevelByName("nightmare")
	assert.False(t, ok)
}

func TestFirstRevealIsSafe(t *testing.T) {
	tests := []GameParams{
		Beginner,
		Intermediate,
		Expert,
		{Cols: 9, Rows: 9, MineCount: 72},
		{Cols: 4, Rows: 4, MineCount: 7},
	}

	for _, params := range tests {
		t.Run(params.LevelKey(), func(t *testing.T) {
			r := rand.New(rand.NewPCG(1, 2))
			for row := range params.Rows {
				for col := range params.Cols {
					g, err := NewGame(params, WithRand(r))
					require.NoError(t, err)

					g.Reveal(row, col, true)

					tile, _ := g.Tile(row, col)
					require.False(t, tile.IsMine, "mine under first reveal at %d:%d", row, col)
					assert.NotEqual(t, Lost, g.State())
					for _, p := range g.grid.Neighbors(row, col) {
						n, _ := g.Tile(p.Row, p.Col)
						assert.False(t, n.IsMine, "mine next to first reveal at %v", p)
					}
				}
			}
		})
	}
}

func TestMinesPlacedOnFirstReveal(t *testing.T) {
	g, err := NewGame(Beginner, WithRand(rand.New(rand.NewPCG(1, 2))))
	require.NoError(t, err)

	g.Mark(0, 0)
	assert.False(t, g.grid.MinesPlaced, "marking must not place mines")
	g.Mark(0, 0)
	g.Mark(0, 0)

	g.Reveal(4, 4, true)
	require.True(t, g.grid.MinesPlaced)

	mines := 0
	for _, tile := range g.grid.Tiles {
		if tile.IsMine {
			mines++
		}
	}
	assert.Equal(t, Beginner.MineCount, mines)
	for row := 3; row <= 5; row++ {
		for col := 3; col <= 5; col++ {
			tile, _ := g.Tile(row, col)
			assert.False(t, tile.IsMine, "%d:%d", row, col)
		}
	}
}

func TestAdjacentMineCount(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for _, params := range []GameParams{Beginner, Intermediate, Expert} {
		for k := range 20 {
			t.Run(fmt.Sprintf("%s/%d", params.LevelKey(), k), func(t *testing.T) {
				g := newGrid(params)
				row, col := r.IntN(params.Rows), r.IntN(params.Cols)
				i := g.index(row, col)
				exclude := []int{i}
				for n := range g.neighbors(i) {
					exclude = append(exclude, n)
				}
				require.NoError(t, placeMines(g, exclude, r))

				for _, tile := range g.Tiles {
					if tile.IsMine {
						assert.Zero(t, tile.AdjacentMineCount)
						continue
					}
					want := 0
					for dr := -1; dr <= 1; dr++ {
						for dc := -1; dc <= 1; dc++ {
							rr, cc := tile.Row+dr, tile.Col+dc
							if (dr != 0 || dc != 0) && g.PointInBounds(rr, cc) &&
								g.Tiles[rr*g.Cols+cc].IsMine {
								want++
							}
						}
					}
					assert.Equal(t, want, tile.AdjacentMineCount, "%v", tile.Pos)
				}
			})
		}
	}
}

func TestPlaceMinesTwice(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	g := newGrid(Beginner)
	require.NoError(t, placeMines(g, nil, r))
	before := append([]Tile(nil), g.Tiles...)
	require.NoError(t, placeMines(g, nil, r))
	assert.Equal(t, before, g.Tiles)
}

func TestPlaceMinesDoesNotFit(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	g := newGrid(GameParams{Cols: 3, Rows: 3, MineCount: 5})
	exclude := []int{0, 1, 2, 3, 4}

	err := placeMines(g, exclude, r)
	var ce ConfigurationError
	assert.ErrorAs(t, err, &ce)
	assert.False(t, g.MinesPlaced)
}

func TestUniformPlacement(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}

	const rounds = 20000
	params := GameParams{Cols: 5, Rows: 5, MineCount: 4}
	r := rand.New(rand.NewPCG(1, 2))
	hits := make([]int, params.Cols*params.Rows)
	for range rounds {
		g := newGrid(params)
		require.NoError(t, placeMines(g, []int{0}, r))
		for i, tile := range g.Tiles {
			if tile.IsMine {
				hits[i]++
			}
		}
	}

	assert.Zero(t, hits[0])
	want := float64(rounds*params.MineCount) / float64(len(hits)-1)
	for i, h := range hits[1:] {
		assert.InEpsilon(t, want, float64(h), 0.1, "tile %d", i+1)
	}
}
