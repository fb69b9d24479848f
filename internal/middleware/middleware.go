package middleware

import "net/http"

type Middleware func(http.Handler) http.Handler

// Wrap applies mws so that the first one listed sees the request first.
func Wrap(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
