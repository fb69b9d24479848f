package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/middleware"
	"github.com/vancomm/minesweeper/internal/repository"
)

// Players is satisfied by *repository.Queries.
type Players interface {
	CreatePlayer(ctx context.Context, params repository.CreatePlayerParams) (*repository.Player, error)
	FetchPlayer(ctx context.Context, username string) (*repository.Player, error)
}

type AuthHandler struct {
	log     *logrus.Logger
	players Players
	cookies *config.Cookies
}

func NewAuthHandler(
	log *logrus.Logger, players Players, cookies *config.Cookies,
) *AuthHandler {
	return &AuthHandler{log: log, players: players, cookies: cookies}
}

type PlayerInfo struct {
	PlayerId int64  `json:"player_id"`
	Username string `json:"username"`
}

type Status struct {
	LoggedIn bool        `json:"logged_in"`
	Player   *PlayerInfo `json:"player,omitempty"`
}

var (
	ErrBadAuthBody        = errors.New("request body must contain url-encoded username and password")
	ErrBadPasswordTooLong = errors.New("password too long")
	ErrUsernameTaken      = errors.New("username taken")
	ErrBadCredentials     = errors.New("wrong username or password")
)

// bcrypt ignores everything past 72 bytes.
const maxPasswordLength = 72

func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	log := middleware.Logger(r, h.log)

	claims, ok := middleware.PlayerClaims(r)
	if !ok {
		h.cookies.Clear(w)
		sendJSONOrLog(w, log, Status{LoggedIn: false})
		return
	}
	if err := h.cookies.Refresh(w, claims); err != nil {
		internalError(w, log, "unable to refresh player cookies", err)
		return
	}
	sendJSONOrLog(w, log, Status{
		LoggedIn: true,
		Player:   &PlayerInfo{claims.PlayerId, claims.Username},
	})
}

func credentials(r *http.Request) (username, password string, err error) {
	if err := r.ParseForm(); err != nil {
		return "", "", ErrBadAuthBody
	}
	username = r.FormValue("username")
	password = r.FormValue("password")
	if username == "" || password == "" {
		return "", "", ErrBadAuthBody
	}
	return username, password, nil
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := middleware.Logger(r, h.log)

	username, password, err := credentials(r)
	if err != nil {
		sendError(w, log, http.StatusBadRequest, err)
		return
	}
	if len(password) > maxPasswordLength {
		sendError(w, log, http.StatusBadRequest, ErrBadPasswordTooLong)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		internalError(w, log, "unable to hash password", err)
		return
	}

	player, err := h.players.CreatePlayer(r.Context(), repository.CreatePlayerParams{
		Username:     username,
		PasswordHash: hash,
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) &&
		pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
		sendError(w, log, http.StatusConflict, ErrUsernameTaken)
		return
	}
	if err != nil {
		internalError(w, log, "unable to insert player", err)
		return
	}
	log.WithField("username", username).Info("player registered")

	h.login(w, log, player)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := middleware.Logger(r, h.log)

	username, password, err := credentials(r)
	if err != nil {
		sendError(w, log, http.StatusBadRequest, err)
		return
	}

	player, err := h.players.FetchPlayer(r.Context(), username)
	if errors.Is(err, pgx.ErrNoRows) {
		sendError(w, log, http.StatusUnauthorized, ErrBadCredentials)
		return
	} else if err != nil {
		internalError(w, log, "unable to fetch player", err)
		return
	}
	if err := bcrypt.CompareHashAndPassword(
		player.PasswordHash, []byte(password),
	); err != nil {
		sendError(w, log, http.StatusUnauthorized, ErrBadCredentials)
		return
	}

	h.login(w, log, player)
}

func (h *AuthHandler) login(w http.ResponseWriter, log *logrus.Entry, player *repository.Player) {
	claims := config.NewPlayerClaims(player.PlayerId, player.Username)
	if err := h.cookies.Refresh(w, claims); err != nil {
		internalError(w, log, "unable to set player cookies", err)
		return
	}
	sendJSONOrLog(w, log, Status{
		LoggedIn: true,
		Player:   &PlayerInfo{player.PlayerId, player.Username},
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}
