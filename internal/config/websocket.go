package config

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

type WebSocket struct {
	Upgrader   websocket.Upgrader
	WriteWait  time.Duration
	PongWait   time.Duration
	PingPeriod time.Duration
	// MaxMessageSize bounds one batch of commands.
	MaxMessageSize int64
}

func NewWebSocket() *WebSocket {
	pongWait := 60 * time.Second
	return &WebSocket{
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		WriteWait:      10 * time.Second,
		PongWait:       pongWait,
		PingPeriod:     pongWait * 9 / 10,
		MaxMessageSize: 16 << 10,
	}
}
