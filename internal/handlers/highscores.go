package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper/internal/middleware"
	"github.com/vancomm/minesweeper/internal/mines"
	"github.com/vancomm/minesweeper/internal/repository"
)

const (
	defaultHighscoreLimit = 20
	maxHighscoreLimit     = 100
)

var ErrLoginRequired = errors.New("log in to see your best times")

// Records is satisfied by *repository.Queries.
type Records interface {
	GetHighscores(ctx context.Context, filter repository.HighscoreFilter) ([]repository.Highscore, error)
	GetBestTimes(ctx context.Context, playerId int64) ([]repository.BestTime, error)
}

type HighscoreHandler struct {
	log     *logrus.Logger
	records Records
}

func NewHighscoreHandler(log *logrus.Logger, records Records) *HighscoreHandler {
	return &HighscoreHandler{log: log, records: records}
}

type HighscoreQuery struct {
	Level    string `schema:"level"`
	Username string `schema:"username"`
	Limit    int    `schema:"limit"`
}

// Filter accepts a preset name as well as a level key for the level.
func (q HighscoreQuery) Filter() (repository.HighscoreFilter, error) {
	f := repository.HighscoreFilter{Limit: q.Limit}
	if f.Limit <= 0 {
		f.Limit = defaultHighscoreLimit
	}
	f.Limit = min(f.Limit, maxHighscoreLimit)

	if q.Username != "" {
		f.Username = &q.Username
	}
	if q.Level != "" {
		key := q.Level
		if p, ok := mines.LevelByName(q.Level); ok {
			key = p.LevelKey()
		} else if _, err := mines.ParseLevelKey(q.Level); err != nil {
			return f, err
		}
		f.LevelKey = &key
	}
	return f, nil
}

func (h *HighscoreHandler) Highscores(w http.ResponseWriter, r *http.Request) {
	log := middleware.Logger(r, h.log)

	var q HighscoreQuery
	if err := decoder.Decode(&q, r.URL.Query()); err != nil {
		sendError(w, log, http.StatusBadRequest, err)
		return
	}
	filter, err := q.Filter()
	if err != nil {
		sendError(w, log, http.StatusBadRequest, err)
		return
	}

	scores, err := h.records.GetHighscores(r.Context(), filter)
	if err != nil {
		internalError(w, log, "unable to fetch highscores", err)
		return
	}
	if scores == nil {
		scores = []repository.Highscore{}
	}
	sendJSONOrLog(w, log, scores)
}

func (h *HighscoreHandler) BestTimes(w http.ResponseWriter, r *http.Request) {
	log := middleware.Logger(r, h.log)

	claims, ok := middleware.PlayerClaims(r)
	if !ok {
		sendError(w, log, http.StatusUnauthorized, ErrLoginRequired)
		return
	}
	best, err := h.records.GetBestTimes(r.Context(), claims.PlayerId)
	if err != nil {
		internalError(w, log, "unable to fetch best times", err)
		return
	}
	if best == nil {
		best = []repository.BestTime{}
	}
	sendJSONOrLog(w, log, best)
}
