package mines

import (
	"fmt"
	"hash/maphash"
	"math/rand/v2"
	"strings"

	"github.com/bits-and-blooms/bitset"
	"github.com/sirupsen/logrus"
)

// SafeZone is the largest number of tiles kept free of mines around the
// first revealed tile.
const SafeZone = 9

type GameParams struct {
	Cols, Rows, MineCount int
}

var (
	Beginner     = GameParams{Cols: 9, Rows: 9, MineCount: 10}
	Intermediate = GameParams{Cols: 16, Rows: 16, MineCount: 40}
	Expert       = GameParams{Cols: 30, Rows: 16, MineCount: 99}
)

var levels = map[string]GameParams{
	"beginner":     Beginner,
	"intermediate": Intermediate,
	"expert":       Expert,
}

// LevelByName looks up one of the preset difficulties.
func LevelByName(name string) (GameParams, bool) {
	p, ok := levels[strings.ToLower(name)]
	return p, ok
}

func (p GameParams) Unpack() (cols, rows, mineCount int) {
	return p.Cols, p.Rows, p.MineCount
}

// LevelKey identifies the difficulty, e.g. for best time records.
func (p GameParams) LevelKey() string {
	return fmt.Sprintf("%d_%d_%d", p.Cols, p.Rows, p.MineCount)
}

func ParseLevelKey(key string) (*GameParams, error) {
	p := &GameParams{}
	n, err := fmt.Sscanf(
		strings.ReplaceAll(key, "_", " "), "%d %d %d",
		&p.Cols, &p.Rows, &p.MineCount,
	)
	if n != 3 || err != nil {
		return nil, fmt.Errorf(
			`invalid level key (key = "%s", n = %d, err = %w)`, key, n, err,
		)
	}
	return p, nil
}

func (p GameParams) Validate() error {
	switch {
	case p.Cols < 1 || p.Rows < 1:
		return ConfigurationError{fmt.Sprintf(
			"board must be at least 1x1, got %dx%d", p.Cols, p.Rows,
		)}
	case p.MineCount < 1:
		return ConfigurationError{fmt.Sprintf(
			"mine count must be positive, got %d", p.MineCount,
		)}
	case p.MineCount > p.Cols*p.Rows-SafeZone:
		return ConfigurationError{fmt.Sprintf(
			"%d mines do not fit a %dx%d board with a %d tile safe zone",
			p.MineCount, p.Cols, p.Rows, SafeZone,
		)}
	}
	return nil
}

func (p GameParams) PointInBounds(row, col int) bool {
	return 0 <= row && row < p.Rows && 0 <= col && col < p.Cols
}

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

// placeMines picks g.MineCount distinct tiles outside of exclude, uniformly
// at random, and fills in the adjacency counts of their neighbours.
func placeMines(g *Grid, exclude []int, r *rand.Rand) error {
	if g.MinesPlaced {
		return nil
	}

	excluded := bitset.New(uint(len(g.Tiles)))
	for _, i := range exclude {
		excluded.Set(uint(i))
	}
	candidates := make([]int, 0, len(g.Tiles)-int(excluded.Count()))
	for i := range g.Tiles {
		if !excluded.Test(uint(i)) {
			candidates = append(candidates, i)
		}
	}
	if g.MineCount > len(candidates) {
		return ConfigurationError{fmt.Sprintf(
			"%d mines do not fit into %d free tiles", g.MineCount, len(candidates),
		)}
	}

	/* partial Fisher-Yates: candidates[:MineCount] is the sample */
	for k := range g.MineCount {
		j := k + r.IntN(len(candidates)-k)
		candidates[k], candidates[j] = candidates[j], candidates[k]
	}
	g.layMines(candidates[:g.MineCount])

	Log.WithFields(logrus.Fields{
		"level":    g.LevelKey(),
		"excluded": len(exclude),
	}).Debug("mines placed")

	return nil
}

// layMines turns the tiles at mines into mines and counts them into their
// neighbours. Mine tiles themselves keep a zero count.
func (g *Grid) layMines(mines []int) {
	for _, m := range mines {
		g.Tiles[m].IsMine = true
	}
	for _, m := range mines {
		for n := range g.neighbors(m) {
			if !g.Tiles[n].IsMine {
				g.Tiles[n].AdjacentMineCount++
			}
		}
	}
	g.MinesPlaced = true
}
