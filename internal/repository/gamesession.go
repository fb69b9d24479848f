package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vancomm/minesweeper/internal/mines"
)

type GameSession struct {
	GameSessionId int64
	PlayerId      *int64
	Cols          int
	Rows          int
	MineCount     int
	LevelKey      string
	State         string
	Snapshot      []byte
	StartedAt     pgtype.Timestamptz
	EndedAt       pgtype.Timestamptz
	ElapsedMs     *int64
	CreatedAt     pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz
}

// Game decodes the stored board. opts re-attach listeners and the clock.
func (s *GameSession) Game(opts ...mines.Option) (*mines.Game, error) {
	game, err := mines.DecodeGame(s.Snapshot, opts...)
	if err != nil {
		return nil, fmt.Errorf(
			"invalid snapshot in game session %d: %w", s.GameSessionId, err,
		)
	}
	return game, nil
}

func timestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: !t.IsZero()}
}

// gameArgs are the columns derived from the game itself.
func gameArgs(game *mines.Game) (pgx.NamedArgs, error) {
	snapshot, err := game.Bytes()
	if err != nil {
		return nil, fmt.Errorf("unable to encode game: %w", err)
	}
	args := pgx.NamedArgs{
		"state":      game.State().String(),
		"snapshot":   snapshot,
		"started_at": timestamptz(game.StartedAt()),
		"ended_at":   timestamptz(game.EndedAt()),
		"elapsed_ms": nil,
	}
	if game.State().Over() {
		args["elapsed_ms"] = game.Elapsed().Milliseconds()
	}
	return args, nil
}

type CreateGameSessionParams struct {
	PlayerId *int64
	Game     *mines.Game
}

func (q *Queries) CreateGameSession(
	ctx context.Context, params CreateGameSessionParams,
) (*GameSession, error) {
	args, err := gameArgs(params.Game)
	if err != nil {
		return nil, err
	}
	p := params.Game.Params()
	args["player_id"] = params.PlayerId
	args["cols"] = p.Cols
	args["rows"] = p.Rows
	args["mine_count"] = p.MineCount
	args["level_key"] = p.LevelKey()

	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO game_session (
			player_id, cols, rows, mine_count, level_key,
			state, snapshot, started_at, ended_at, elapsed_ms
		)
		VALUES (
			@player_id, @cols, @rows, @mine_count, @level_key,
			@state, @snapshot, @started_at, @ended_at, @elapsed_ms
		)
		RETURNING *`,
		args,
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
}

func (q *Queries) FetchGameSession(ctx context.Context, gameSessionId int64) (*GameSession, error) {
	rows, _ := q.db.Query(
		ctx,
		"SELECT * FROM game_session WHERE game_session_id = $1",
		gameSessionId,
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
}

// LockGameSession fetches a session and holds its row lock until the
// surrounding transaction ends, so moves on one session apply one at a time.
func (q *Queries) LockGameSession(ctx context.Context, gameSessionId int64) (*GameSession, error) {
	rows, _ := q.db.Query(
		ctx,
		"SELECT * FROM game_session WHERE game_session_id = $1 FOR UPDATE",
		gameSessionId,
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
}

func (q *Queries) UpdateGameSession(
	ctx context.Context, gameSessionId int64, game *mines.Game,
) (*GameSession, error) {
	args, err := gameArgs(game)
	if err != nil {
		return nil, err
	}
	args["game_session_id"] = gameSessionId

	rows, _ := q.db.Query(
		ctx,
		`UPDATE game_session
		SET state = @state
			, snapshot = @snapshot
			, started_at = @started_at
			, ended_at = @ended_at
			, elapsed_ms = @elapsed_ms
			, updated_at = now()
		WHERE game_session_id = @game_session_id
		RETURNING *`,
		args,
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
}
