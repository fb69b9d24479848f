package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type Highscore struct {
	GameSessionId int64   `json:"game_session_id"`
	Username      *string `json:"username"`
	Cols          int     `json:"cols"`
	Rows          int     `json:"rows"`
	MineCount     int     `json:"mine_count"`
	LevelKey      string  `json:"level_key"`
	ElapsedMs     int64   `json:"elapsed_ms"`
}

type HighscoreFilter struct {
	Username *string
	LevelKey *string
	Limit    int
}

func (f HighscoreFilter) WhereClause() (string, pgx.NamedArgs) {
	clauses := make([]string, 0)
	args := pgx.NamedArgs{}
	if f.Username != nil {
		clauses = append(clauses, "username = @username")
		args["username"] = *f.Username
	}
	if f.LevelKey != nil {
		clauses = append(clauses, "level_key = @level_key")
		args["level_key"] = *f.LevelKey
	}
	return strings.Join(clauses, " AND "), args
}

func (q *Queries) GetHighscores(
	ctx context.Context, filter HighscoreFilter,
) ([]Highscore, error) {
	query := `
	SELECT
		game_session_id,
		username,
		cols,
		rows,
		mine_count,
		level_key,
		elapsed_ms
	FROM game_session
		LEFT OUTER JOIN player USING (player_id)
	WHERE
		state = 'won'
		AND elapsed_ms IS NOT NULL
	`

	whereClause, args := filter.WhereClause()
	if whereClause != "" {
		query += " AND " + whereClause
	}

	query += " ORDER BY elapsed_ms, game_session_id"
	if filter.Limit > 0 {
		query += " LIMIT @limit"
		args["limit"] = filter.Limit
	}

	rows, err := q.db.Query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Highscore])
}

type BestTime struct {
	LevelKey      string             `json:"level_key"`
	GameSessionId int64              `json:"game_session_id"`
	ElapsedMs     int64              `json:"elapsed_ms"`
	AchievedAt    pgtype.Timestamptz `json:"achieved_at"`
}

type RecordBestTimeParams struct {
	PlayerId      int64
	LevelKey      string
	GameSessionId int64
	ElapsedMs     int64
}

// RecordBestTime keeps the fastest win per player and level. It reports
// whether the given time became the new best.
func (q *Queries) RecordBestTime(
	ctx context.Context, params RecordBestTimeParams,
) (bool, error) {
	tag, err := q.db.Exec(
		ctx,
		`INSERT INTO best_time (player_id, level_key, game_session_id, elapsed_ms)
		VALUES (@player_id, @level_key, @game_session_id, @elapsed_ms)
		ON CONFLICT (player_id, level_key) DO UPDATE
		SET game_session_id = excluded.game_session_id
			, elapsed_ms = excluded.elapsed_ms
			, achieved_at = now()
		WHERE best_time.elapsed_ms > excluded.elapsed_ms`,
		pgx.NamedArgs{
			"player_id":       params.PlayerId,
			"level_key":       params.LevelKey,
			"game_session_id": params.GameSessionId,
			"elapsed_ms":      params.ElapsedMs,
		},
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (q *Queries) GetBestTimes(ctx context.Context, playerId int64) ([]BestTime, error) {
	rows, err := q.db.Query(
		ctx,
		`SELECT level_key, game_session_id, elapsed_ms, achieved_at
		FROM best_time
		WHERE player_id = $1
		ORDER BY level_key`,
		playerId,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[BestTime])
}
