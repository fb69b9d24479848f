package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper/internal/mines"
)

// SessionStore keeps game sessions in postgres.
type SessionStore struct {
	pool *pgxpool.Pool
	log  *logrus.Logger
}

func NewSessionStore(pool *pgxpool.Pool, log *logrus.Logger) *SessionStore {
	return &SessionStore{pool: pool, log: log}
}

func (s *SessionStore) Create(
	ctx context.Context, playerId *int64, game *mines.Game,
) (*GameSession, error) {
	return New(s.pool).CreateGameSession(ctx, CreateGameSessionParams{
		PlayerId: playerId,
		Game:     game,
	})
}

func (s *SessionStore) Fetch(ctx context.Context, id int64) (*GameSession, error) {
	return New(s.pool).FetchGameSession(ctx, id)
}

// Play locks session id, hands its game to fn and saves the result in the
// same transaction. Nothing is saved when fn fails. A win of a player's
// session also updates their best time for the level.
func (s *SessionStore) Play(
	ctx context.Context,
	id int64,
	fn func(*GameSession, *mines.Game) error,
	opts ...mines.Option,
) (session *GameSession, game *mines.Game, err error) {
	err = InTx(ctx, s.pool, func(q *Queries) error {
		locked, err := q.LockGameSession(ctx, id)
		if err != nil {
			return err
		}
		game, err = locked.Game(opts...)
		if err != nil {
			return err
		}
		wasOver := game.State().Over()

		if err := fn(locked, game); err != nil {
			return err
		}

		session, err = q.UpdateGameSession(ctx, id, game)
		if err != nil {
			return err
		}

		if wasOver || game.State() != mines.Won || session.PlayerId == nil {
			return nil
		}
		improved, err := q.RecordBestTime(ctx, RecordBestTimeParams{
			PlayerId:      *session.PlayerId,
			LevelKey:      session.LevelKey,
			GameSessionId: session.GameSessionId,
			ElapsedMs:     game.Elapsed().Milliseconds(),
		})
		if err != nil {
			return err
		}
		if improved {
			s.log.WithFields(logrus.Fields{
				"player_id": *session.PlayerId,
				"level":     session.LevelKey,
				"elapsed":   mines.FormatElapsed(game.Elapsed()),
			}).Info("new best time")
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return session, game, nil
}
