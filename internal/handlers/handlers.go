package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/schema"
	"github.com/sirupsen/logrus"
)

var (
	ErrSessionNotFound = errors.New("game session not found")
	ErrForbidden       = errors.New("game session belongs to another player")
	ErrBadSessionId    = errors.New("invalid game session id")
)

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}

func sendJSON(w http.ResponseWriter, v any) (int, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	w.Header().Set("Content-Type", "application/json")
	return w.Write(payload)
}

func sendJSONOrLog(w http.ResponseWriter, log *logrus.Entry, v any) {
	if _, err := sendJSON(w, v); err != nil {
		log.WithError(err).Error("unable to send response")
	}
}

type errorDTO struct {
	Error string `json:"error"`
	Line  *int   `json:"line,omitempty"`
}

func sendError(w http.ResponseWriter, log *logrus.Entry, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	sendJSONOrLog(w, log, errorDTO{Error: err.Error()})
}

func internalError(w http.ResponseWriter, log *logrus.Entry, msg string, err error) {
	log.WithError(err).Error(msg)
	w.WriteHeader(http.StatusInternalServerError)
}

func sessionId(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, ErrBadSessionId
	}
	return id, nil
}
