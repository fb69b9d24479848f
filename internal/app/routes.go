package app

import (
	"net/http"

	"github.com/vancomm/minesweeper/internal/handlers"
	"github.com/vancomm/minesweeper/internal/repository"
)

func (a *App) loadRoutes() {
	base := a.cfg.BasePath
	queries := repository.New(a.db)

	auth := handlers.NewAuthHandler(a.log, queries, a.cfg.Cookies)
	a.router.HandleFunc("POST "+base+"/register", auth.Register)
	a.router.HandleFunc("POST "+base+"/login", auth.Login)
	a.router.HandleFunc("POST "+base+"/logout", auth.Logout)
	a.router.HandleFunc("GET "+base+"/status", auth.Status)

	scores := handlers.NewHighscoreHandler(a.log, queries)
	a.router.HandleFunc("GET "+base+"/highscores", scores.Highscores)
	a.router.HandleFunc("GET "+base+"/besttimes", scores.BestTimes)

	game := handlers.NewGameHandler(
		a.log,
		repository.NewSessionStore(a.db, a.log),
		a.cfg.Cookies,
		a.cfg.WebSocket,
		a.pub,
	)
	a.router.HandleFunc("POST "+base+"/game", game.NewGame)
	a.router.HandleFunc("GET "+base+"/game/{id}", game.Fetch)
	a.router.HandleFunc("POST "+base+"/game/{id}/batch", game.Batch)
	a.router.HandleFunc("POST "+base+"/game/{id}/{move}", game.MakeAMove)
	a.router.HandleFunc("GET "+base+"/game/{id}/connect", game.ConnectWS)

	a.router.HandleFunc("GET "+base+"/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}
