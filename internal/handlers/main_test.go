package handlers

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/middleware"
	"github.com/vancomm/minesweeper/internal/mines"
	"github.com/vancomm/minesweeper/internal/repository"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	t.Setenv("JWT_PRIVATE_KEY", string(pem.EncodeToMemory(&pem.Block{
		Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key),
	})))
	t.Setenv("JWT_PUBLIC_KEY", string(pem.EncodeToMemory(&pem.Block{
		Type: "PUBLIC KEY", Bytes: der,
	})))
	t.Setenv("COOKIES_DOMAIN", "localhost")
	t.Setenv("DATABASE_URL", "postgresql://localhost/mines")
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

// memSessions keeps sessions the way the database does: as snapshots that
// are decoded for every move and saved only when the move succeeds.
type memSessions struct {
	mu       sync.Mutex
	next     int64
	sessions map[int64]repository.GameSession
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: map[int64]repository.GameSession{}}
}

func (m *memSessions) save(s repository.GameSession, game *mines.Game) (*repository.GameSession, error) {
	buf, err := game.Bytes()
	if err != nil {
		return nil, err
	}
	p := game.Params()
	s.Cols, s.Rows, s.MineCount = p.Unpack()
	s.LevelKey = game.LevelKey()
	s.State = game.State().String()
	s.Snapshot = buf
	m.sessions[s.GameSessionId] = s
	return &s, nil
}

func (m *memSessions) Create(
	ctx context.Context, playerId *int64, game *mines.Game,
) (*repository.GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return m.save(repository.GameSession{
		GameSessionId: m.next,
		PlayerId:      playerId,
	}, game)
}

func (m *memSessions) Fetch(ctx context.Context, id int64) (*repository.GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &s, nil
}

func (m *memSessions) Play(
	ctx context.Context,
	id int64,
	fn func(*repository.GameSession, *mines.Game) error,
	opts ...mines.Option,
) (*repository.GameSession, *mines.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil, pgx.ErrNoRows
	}
	game, err := s.Game(opts...)
	if err != nil {
		return nil, nil, err
	}
	if err := fn(&s, game); err != nil {
		return nil, nil, err
	}
	saved, err := m.save(s, game)
	if err != nil {
		return nil, nil, err
	}
	return saved, game, nil
}

type memPlayers struct {
	players map[string]*repository.Player
}

func (m *memPlayers) CreatePlayer(
	ctx context.Context, params repository.CreatePlayerParams,
) (*repository.Player, error) {
	if _, ok := m.players[params.Username]; ok {
		return nil, &pgconn.PgError{Code: pgerrcode.UniqueViolation}
	}
	p := &repository.Player{
		PlayerId:     int64(len(m.players) + 1),
		Username:     params.Username,
		PasswordHash: params.PasswordHash,
	}
	m.players[p.Username] = p
	return p, nil
}

func (m *memPlayers) FetchPlayer(ctx context.Context, username string) (*repository.Player, error) {
	p, ok := m.players[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

type fakeRecords struct {
	filter repository.HighscoreFilter
	best   map[int64][]repository.BestTime
}

func (f *fakeRecords) GetHighscores(
	ctx context.Context, filter repository.HighscoreFilter,
) ([]repository.Highscore, error) {
	f.filter = filter
	return nil, nil
}

func (f *fakeRecords) GetBestTimes(ctx context.Context, playerId int64) ([]repository.BestTime, error) {
	return f.best[playerId], nil
}

func gameMux(h *GameHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /game", h.NewGame)
	mux.HandleFunc("GET /game/{id}", h.Fetch)
	mux.HandleFunc("POST /game/{id}/batch", h.Batch)
	mux.HandleFunc("POST /game/{id}/{move}", h.MakeAMove)
	mux.HandleFunc("GET /game/{id}/connect", h.ConnectWS)
	return mux
}

func newTestGameHandler(t *testing.T) (*GameHandler, *memSessions) {
	t.Helper()
	cfg := testConfig(t)
	sessions := newMemSessions()
	return NewGameHandler(quietLogger(), sessions, cfg.Cookies, cfg.WebSocket, nil), sessions
}

func asPlayer(r *http.Request, playerId int64, username string) *http.Request {
	claims := config.NewPlayerClaims(playerId, username)
	ctx := context.WithValue(r.Context(), middleware.CtxPlayerClaims, claims)
	return r.WithContext(ctx)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func eventKinds(result MoveResultDTO) []string {
	kinds := make([]string, len(result.Events))
	for i, e := range result.Events {
		kinds[i] = e.Kind
	}
	return kinds
}
