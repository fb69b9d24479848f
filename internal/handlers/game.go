package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/middleware"
	"github.com/vancomm/minesweeper/internal/mines"
	"github.com/vancomm/minesweeper/internal/publish"
	"github.com/vancomm/minesweeper/internal/repository"
)

const maxBatchSize = 64 << 10

// Sessions is satisfied by *repository.SessionStore.
type Sessions interface {
	Create(ctx context.Context, playerId *int64, game *mines.Game) (*repository.GameSession, error)
	Fetch(ctx context.Context, id int64) (*repository.GameSession, error)
	Play(
		ctx context.Context,
		id int64,
		fn func(*repository.GameSession, *mines.Game) error,
		opts ...mines.Option,
	) (*repository.GameSession, *mines.Game, error)
}

type GameHandler struct {
	log      *logrus.Logger
	sessions Sessions
	cookies  *config.Cookies
	ws       *config.WebSocket
	pub      *publish.Client
}

// NewGameHandler builds the game routes. pub may be nil, in which case
// notifications only go back to the caller.
func NewGameHandler(
	log *logrus.Logger,
	sessions Sessions,
	cookies *config.Cookies,
	ws *config.WebSocket,
	pub *publish.Client,
) *GameHandler {
	return &GameHandler{
		log:      log,
		sessions: sessions,
		cookies:  cookies,
		ws:       ws,
		pub:      pub,
	}
}

func (h *GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	log := middleware.Logger(r, h.log)

	var dto NewGameDTO
	if err := decoder.Decode(&dto, r.URL.Query()); err != nil {
		sendError(w, log, http.StatusBadRequest, err)
		return
	}
	params, err := dto.GameParams()
	if err != nil {
		sendError(w, log, http.StatusBadRequest, err)
		return
	}

	game, err := mines.NewGame(params)
	var ce mines.ConfigurationError
	if errors.As(err, &ce) {
		sendError(w, log, http.StatusBadRequest, ce)
		return
	} else if err != nil {
		internalError(w, log, "unable to create game", err)
		return
	}

	var playerId *int64
	if claims, ok := middleware.PlayerClaims(r); ok {
		playerId = &claims.PlayerId
		if err := h.cookies.Refresh(w, claims); err != nil {
			log.WithError(err).Warn("unable to refresh player cookies")
		}
	}

	session, err := h.sessions.Create(r.Context(), playerId, game)
	if err != nil {
		internalError(w, log, "unable to create game session", err)
		return
	}
	log.WithFields(logrus.Fields{
		"game_session_id": session.GameSessionId,
		"level":           game.LevelKey(),
		"anonymous":       playerId == nil,
	}).Debug("game session created")

	sendJSONOrLog(w, log, NewGameSessionDTO(session, game))
}

func (h *GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	log := middleware.Logger(r, h.log)

	id, err := sessionId(r)
	if err != nil {
		sendError(w, log, http.StatusBadRequest, err)
		return
	}
	session, err := h.sessions.Fetch(r.Context(), id)
	if err != nil {
		h.sessionError(w, log, err)
		return
	}
	game, err := session.Game()
	if err != nil {
		internalError(w, log, "unable to restore game", err)
		return
	}
	sendJSONOrLog(w, log, NewGameSessionDTO(session, game))
}

// MakeAMove plays one move given by the {move} path segment on the tile
// at ?row=&col=.
func (h *GameHandler) MakeAMove(w http.ResponseWriter, r *http.Request) {
	log := middleware.Logger(r, h.log)

	id, err := sessionId(r)
	if err != nil {
		sendError(w, log, http.StatusBadRequest, err)
		return
	}
	move, err := ParseMove(r.PathValue("move"))
	if err != nil {
		sendError(w, log, http.StatusBadRequest, err)
		return
	}
	var pos PositionDTO
	if err := decoder.Decode(&pos, r.URL.Query()); err != nil {
		sendError(w, log, http.StatusBadRequest, err)
		return
	}

	cmds := []Command{{Move: move, Row: pos.Row, Col: pos.Col}}
	result, err := h.play(r, id, cmds)
	if err != nil {
		h.sessionError(w, log, err)
		return
	}
	sendJSONOrLog(w, log, result)
}

// Batch plays newline separated commands from the request body:
//
//	o row col // open
//	f row col // cycle the mark
//	c row col // chord
//	h row col // highlight
//
// Commands run in order and stop at the end of the game. A malformed line
// rejects the whole batch with its line number.
func (h *GameHandler) Batch(w http.ResponseWriter, r *http.Request) {
	log := middleware.Logger(r, h.log)

	id, err := sessionId(r)
	if err != nil {
		sendError(w, log, http.StatusBadRequest, err)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBatchSize))
	if err != nil {
		sendError(w, log, http.StatusRequestEntityTooLarge, err)
		return
	}
	cmds, err := ParseBatch(string(body))
	if err != nil {
		sendCommandError(w, log, err)
		return
	}

	result, err := h.play(r, id, cmds)
	if err != nil {
		h.sessionError(w, log, err)
		return
	}
	sendJSONOrLog(w, log, result)
}

// play runs cmds on session id in one transaction and publishes what they
// raised once it is committed.
func (h *GameHandler) play(
	r *http.Request, id int64, cmds []Command,
) (*MoveResultDTO, error) {
	claims, _ := middleware.PlayerClaims(r)
	rec := &mines.Recorder{}
	var highlight []mines.Pos

	session, game, err := h.sessions.Play(r.Context(), id,
		func(s *repository.GameSession, game *mines.Game) error {
			if !canPlay(s, claims) {
				return ErrForbidden
			}
			highlight = RunBatch(game, cmds)
			return nil
		},
		mines.WithListener(rec),
	)
	if err != nil {
		return nil, err
	}

	h.publish(id, rec.Events)
	return &MoveResultDTO{
		Session:   NewGameSessionDTO(session, game),
		Events:    publish.NewMessages(id, rec.Events),
		Highlight: highlight,
	}, nil
}

func (h *GameHandler) publish(id int64, events []mines.Event) {
	if h.pub == nil || len(events) == 0 {
		return
	}
	l := h.pub.Listener(id)
	for _, e := range events {
		e.Dispatch(l)
	}
}

// canPlay reports whether the requester may move in s. Anonymous sessions
// are open to anyone.
func canPlay(s *repository.GameSession, claims *config.PlayerClaims) bool {
	if s.PlayerId == nil {
		return true
	}
	return claims != nil && claims.PlayerId == *s.PlayerId
}

func (h *GameHandler) sessionError(w http.ResponseWriter, log *logrus.Entry, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		sendError(w, log, http.StatusNotFound, ErrSessionNotFound)
	case errors.Is(err, ErrForbidden):
		sendError(w, log, http.StatusForbidden, ErrForbidden)
	default:
		internalError(w, log, "unable to play game session", err)
	}
}

func sendCommandError(w http.ResponseWriter, log *logrus.Entry, err error) {
	dto := errorDTO{Error: err.Error()}
	var ce *CommandError
	if errors.As(err, &ce) {
		dto.Error = ce.Err.Error()
		dto.Line = &ce.Line
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	sendJSONOrLog(w, log, dto)
}
