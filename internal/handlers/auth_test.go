package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper/internal/repository"
)

func form(path string, values url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func credentialsOf(username, password string) url.Values {
	return url.Values{"username": {username}, "password": {password}}
}

func TestRegisterAndLogin(t *testing.T) {
	cfg := testConfig(t)
	players := &memPlayers{players: map[string]*repository.Player{}}
	h := NewAuthHandler(quietLogger(), players, cfg.Cookies)

	rec := httptest.NewRecorder()
	h.Register(rec, form("/register", credentialsOf("ann", "hunter2")))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	status := decode[Status](t, rec)
	assert.True(t, status.LoggedIn)
	assert.Equal(t, "ann", status.Player.Username)
	assert.Len(t, rec.Result().Cookies(), 2)
	assert.NotEqual(t, []byte("hunter2"), players.players["ann"].PasswordHash)

	tests := []struct {
		name    string
		handler http.HandlerFunc
		values  url.Values
		status  int
	}{
		{"taken", h.Register, credentialsOf("ann", "other"), http.StatusConflict},
		{"too long", h.Register, credentialsOf("bob", strings.Repeat("x", 73)), http.StatusBadRequest},
		{"no password", h.Register, url.Values{"username": {"bob"}}, http.StatusBadRequest},
		{"login", h.Login, credentialsOf("ann", "hunter2"), http.StatusOK},
		{"wrong password", h.Login, credentialsOf("ann", "hunter3"), http.StatusUnauthorized},
		{"unknown player", h.Login, credentialsOf("bob", "hunter2"), http.StatusUnauthorized},
		{"no username", h.Login, url.Values{"password": {"hunter2"}}, http.StatusBadRequest},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			test.handler(rec, form("/", test.values))
			assert.Equal(t, test.status, rec.Code, rec.Body.String())
		})
	}
}

func TestStatusAndLogout(t *testing.T) {
	cfg := testConfig(t)
	h := NewAuthHandler(quietLogger(), &memPlayers{}, cfg.Cookies)

	rec := httptest.NewRecorder()
	h.Status(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.False(t, decode[Status](t, rec).LoggedIn)

	rec = httptest.NewRecorder()
	h.Status(rec, asPlayer(httptest.NewRequest(http.MethodGet, "/status", nil), 3, "ann"))
	status := decode[Status](t, rec)
	assert.True(t, status.LoggedIn)
	assert.Equal(t, &PlayerInfo{PlayerId: 3, Username: "ann"}, status.Player)

	rec = httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest(http.MethodPost, "/logout", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	for _, c := range rec.Result().Cookies() {
		assert.Negative(t, c.MaxAge, c.Name)
	}
}
