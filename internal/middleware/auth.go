package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper/internal/config"
)

type CtxKey int

const (
	CtxPlayerClaims CtxKey = iota
	CtxLogger
)

// Auth puts the claims of a logged in player into the request context.
// Requests with stale or forged cookies go on anonymously and get their
// cookies cleared.
func Auth(log *logrus.Logger, cookies *config.Cookies) Middleware {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := cookies.ParsePlayerClaims(r)
			if err != nil {
				if !errors.Is(err, http.ErrNoCookie) {
					Logger(r, log).WithError(err).Debug("dropping player cookies")
					cookies.Clear(w)
				}
				h.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), CtxPlayerClaims, claims)
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func PlayerClaims(r *http.Request) (*config.PlayerClaims, bool) {
	claims, ok := r.Context().Value(CtxPlayerClaims).(*config.PlayerClaims)
	return claims, ok
}
