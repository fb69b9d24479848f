package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frame struct {
	Kind    string          `json:"kind"`
	Error   string          `json:"error"`
	Line    *int            `json:"line"`
	Session *GameSessionDTO `json:"session"`
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrames(t *testing.T, conn *websocket.Conn) []frame {
	t.Helper()
	var frames []frame
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var f frame
		require.NoError(t, json.Unmarshal(data, &f))
		frames = append(frames, f)
		if f.Kind == "session" || f.Kind == "error" {
			return frames
		}
	}
}

func TestConnectWS(t *testing.T) {
	h, _ := newTestGameHandler(t)
	mux := gameMux(h)
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/game?level=beginner", nil))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	conn := dial(t, srv, "/game/1/connect")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("f 0 0\nf 1 1")))
	frames := readFrames(t, conn)
	kinds := make([]string, len(frames))
	for i, f := range frames {
		kinds[i] = f.Kind
	}
	assert.Equal(t, []string{
		"game_started",
		"tile_marked", "flagged_count_changed",
		"tile_marked", "flagged_count_changed",
		"session",
	}, kinds)
	last := frames[len(frames)-1]
	require.NotNil(t, last.Session)
	assert.Equal(t, 2, last.Session.FlaggedCount)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("f 2 2\nboom")))
	frames = readFrames(t, conn)
	require.Len(t, frames, 1)
	assert.Equal(t, "error", frames[0].Kind)
	require.NotNil(t, frames[0].Line)
	assert.Equal(t, 2, *frames[0].Line)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("f 1 1")))
	frames = readFrames(t, conn)
	last = frames[len(frames)-1]
	assert.Equal(t, 1, last.Session.FlaggedCount, "the rejected frame changed nothing")
}

func TestConnectWSRejects(t *testing.T) {
	h, _ := newTestGameHandler(t)
	mux := gameMux(h)
	mux.ServeHTTP(httptest.NewRecorder(), asPlayer(
		httptest.NewRequest(http.MethodPost, "/game?level=beginner", nil), 1, "ann",
	))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"missing", "/game/5/connect", http.StatusNotFound},
		{"not the owner", "/game/1/connect", http.StatusForbidden},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			url := "ws" + strings.TrimPrefix(srv.URL, "http") + test.path
			_, resp, err := websocket.DefaultDialer.Dial(url, nil)
			require.ErrorIs(t, err, websocket.ErrBadHandshake)
			defer resp.Body.Close()
			assert.Equal(t, test.status, resp.StatusCode)
		})
	}
}
