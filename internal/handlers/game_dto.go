package handlers

import (
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vancomm/minesweeper/internal/mines"
	"github.com/vancomm/minesweeper/internal/publish"
	"github.com/vancomm/minesweeper/internal/repository"
)

type NewGameDTO struct {
	Level     string `schema:"level"`
	Cols      int    `schema:"cols"`
	Rows      int    `schema:"rows"`
	MineCount int    `schema:"mine_count"`
}

var ErrUnknownLevel = errors.New("level must be one of beginner, intermediate, expert")

func (dto NewGameDTO) GameParams() (mines.GameParams, error) {
	if dto.Level == "" {
		return mines.GameParams{Cols: dto.Cols, Rows: dto.Rows, MineCount: dto.MineCount}, nil
	}
	p, ok := mines.LevelByName(dto.Level)
	if !ok {
		return mines.GameParams{}, ErrUnknownLevel
	}
	return p, nil
}

type PositionDTO struct {
	Row int `schema:"row,required"`
	Col int `schema:"col,required"`
}

type GameSessionDTO struct {
	GameSessionId     string               `json:"game_session_id"`
	Grid              mines.PlayerGrid     `json:"grid"`
	Cols              int                  `json:"cols"`
	Rows              int                  `json:"rows"`
	MineCount         int                  `json:"mine_count"`
	LevelKey          string               `json:"level_key"`
	State             string               `json:"state"`
	FlaggedCount      int                  `json:"flagged_count"`
	RemainingMines    int                  `json:"remaining_mines"`
	RevealedSafeCount int                  `json:"revealed_safe_count"`
	Elapsed           string               `json:"elapsed"`
	ElapsedMs         int64                `json:"elapsed_ms"`
	StartedAt         *int64               `json:"started_at,omitempty"`
	EndedAt           *int64               `json:"ended_at,omitempty"`
	TippingPoint      *mines.Pos           `json:"tipping_point,omitempty"`
	Detonations       []publish.Detonation `json:"detonations,omitempty"`
}

func unixMilli(t pgtype.Timestamptz) *int64 {
	if !t.Valid {
		return nil
	}
	ms := t.Time.UnixMilli()
	return &ms
}

func NewGameSessionDTO(session *repository.GameSession, game *mines.Game) *GameSessionDTO {
	p := game.Params()
	elapsed := game.Elapsed()
	dto := &GameSessionDTO{
		GameSessionId:     strconv.FormatInt(session.GameSessionId, 10),
		Grid:              game.View(),
		Cols:              p.Cols,
		Rows:              p.Rows,
		MineCount:         p.MineCount,
		LevelKey:          game.LevelKey(),
		State:             game.State().String(),
		FlaggedCount:      game.FlaggedCount(),
		RemainingMines:    game.RemainingMines(),
		RevealedSafeCount: game.RevealedSafeCount(),
		Elapsed:           mines.FormatElapsed(elapsed),
		ElapsedMs:         elapsed.Milliseconds(),
		StartedAt:         unixMilli(session.StartedAt),
		EndedAt:           unixMilli(session.EndedAt),
	}
	if tp, ok := game.TippingPoint(); ok {
		dto.TippingPoint = &tp.Pos
	}
	for _, d := range game.Detonations() {
		dto.Detonations = append(dto.Detonations, publish.Detonation{
			Row: d.Row, Col: d.Col, OffsetMs: d.Offset.Milliseconds(),
		})
	}
	return dto
}

// MoveResultDTO answers a move: the session after it, the notifications
// the move raised and the tiles to highlight.
type MoveResultDTO struct {
	Session   *GameSessionDTO   `json:"session"`
	Events    []publish.Message `json:"events"`
	Highlight []mines.Pos       `json:"highlight,omitempty"`
}
