package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vancomm/minesweeper/internal/mines"
)

type Move int

const (
	Open Move = iota
	Flag
	Chord
	Highlight
)

var ErrBadMove = errors.New("move must be one of open, flag, chord, highlight")

var moveNames = map[string]Move{
	"open":      Open,
	"flag":      Flag,
	"chord":     Chord,
	"highlight": Highlight,
}

// moveLetters are the batch command names.
var moveLetters = map[string]Move{
	"o": Open,
	"f": Flag,
	"c": Chord,
	"h": Highlight,
}

func ParseMove(s string) (Move, error) {
	m, ok := moveNames[strings.ToLower(s)]
	if !ok {
		return 0, ErrBadMove
	}
	return m, nil
}

type Command struct {
	Move     Move
	Row, Col int
}

// Apply plays c on game and returns the tiles to highlight, if any.
func (c Command) Apply(game *mines.Game) []mines.Pos {
	switch c.Move {
	case Open:
		game.Reveal(c.Row, c.Col, true)
	case Flag:
		game.Mark(c.Row, c.Col)
	case Chord:
		return game.RequestChordedReveal(c.Row, c.Col, false)
	case Highlight:
		return game.RequestChordedReveal(c.Row, c.Col, true)
	}
	return nil
}

// ParseCommand reads one batch line: a move letter followed by row and
// column, e.g. "o 3 4".
func ParseCommand(line string) (Command, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return Command{}, errors.New("empty command")
	}
	move, ok := moveLetters[parts[0]]
	if !ok {
		return Command{}, fmt.Errorf("unknown command %q", parts[0])
	}
	if len(parts) != 3 {
		return Command{}, fmt.Errorf(
			"command %q takes 2 arguments, got %d", parts[0], len(parts)-1,
		)
	}
	row, err := strconv.Atoi(parts[1])
	if err != nil {
		return Command{}, errors.New("row must be an int")
	}
	col, err := strconv.Atoi(parts[2])
	if err != nil {
		return Command{}, errors.New("col must be an int")
	}
	return Command{Move: move, Row: row, Col: col}, nil
}

// CommandError points at the offending line of a batch, counting from 1.
type CommandError struct {
	Line int
	Err  error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ParseBatch parses newline separated commands. Blank lines are skipped.
func ParseBatch(body string) ([]Command, error) {
	var cmds []Command
	for i, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		c, err := ParseCommand(line)
		if err != nil {
			return nil, &CommandError{Line: i + 1, Err: err}
		}
		cmds = append(cmds, c)
	}
	return cmds, nil
}

// RunBatch applies cmds in order and stops once the game is over. It
// returns the highlight of the last command that produced one.
func RunBatch(game *mines.Game, cmds []Command) (highlight []mines.Pos) {
	for _, c := range cmds {
		if game.State().Over() {
			break
		}
		if h := c.Apply(game); h != nil {
			highlight = h
		}
	}
	return
}
