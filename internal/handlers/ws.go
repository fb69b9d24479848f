package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper/internal/middleware"
	"github.com/vancomm/minesweeper/internal/mines"
)

// sessionFrame closes the answer to one websocket frame. It follows the
// notification frames the commands raised.
type sessionFrame struct {
	Kind      string          `json:"kind"`
	Session   *GameSessionDTO `json:"session"`
	Highlight []mines.Pos     `json:"highlight,omitempty"`
}

type errorFrame struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
	Line  *int   `json:"line,omitempty"`
}

func newErrorFrame(err error) errorFrame {
	frame := errorFrame{Kind: "error", Error: err.Error()}
	var ce *CommandError
	if errors.As(err, &ce) {
		frame.Error = ce.Err.Error()
		frame.Line = &ce.Line
	}
	return frame
}

// ConnectWS upgrades to a websocket on which every text frame is a batch of
// commands, as accepted by [GameHandler.Batch].
func (h *GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
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
	claims, _ := middleware.PlayerClaims(r)
	if !canPlay(session, claims) {
		sendError(w, log, http.StatusForbidden, ErrForbidden)
		return
	}

	conn, err := h.ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()
	log = log.WithField("game_session_id", id)
	log.Debug("websocket connected")

	conn.SetReadLimit(h.ws.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(h.ws.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.ws.PongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go h.ping(conn, done, log)

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway,
			) {
				log.WithError(err).Warn("websocket read failed")
			}
			return
		}
		if mt != websocket.TextMessage {
			log.Debug("closing websocket on a non-text frame")
			return
		}

		if err := h.serveFrame(conn, r, id, strings.TrimSpace(string(message))); err != nil {
			log.WithError(err).Warn("websocket write failed")
			return
		}
	}
}

func (h *GameHandler) serveFrame(
	conn *websocket.Conn, r *http.Request, id int64, text string,
) error {
	log := middleware.Logger(r, h.log).WithField("game_session_id", id)
	conn.SetWriteDeadline(time.Now().Add(h.ws.WriteWait))

	cmds, err := ParseBatch(text)
	if err != nil {
		return conn.WriteJSON(newErrorFrame(err))
	}

	result, err := h.play(r, id, cmds)
	if err != nil {
		if !errors.Is(err, ErrForbidden) {
			log.WithError(err).Error("unable to play game session")
			err = errors.New("unable to play game session")
		}
		return conn.WriteJSON(newErrorFrame(err))
	}

	for _, m := range result.Events {
		if err := conn.WriteJSON(m); err != nil {
			return err
		}
	}
	return conn.WriteJSON(sessionFrame{
		Kind:      "session",
		Session:   result.Session,
		Highlight: result.Highlight,
	})
}

// ping keeps the connection alive until done is closed. WriteControl may
// run alongside the writes of the read loop.
func (h *GameHandler) ping(conn *websocket.Conn, done <-chan struct{}, log *logrus.Entry) {
	ticker := time.NewTicker(h.ws.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(h.ws.WriteWait)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				log.WithError(err).Debug("websocket ping failed")
				return
			}
		}
	}
}
