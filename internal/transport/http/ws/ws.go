// Package ws streams notification events to websocket clients.
package ws

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/corray333/backend-labs/bookstore/internal/notify"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/event"
	"github.com/corray333/backend-labs/bookstore/internal/transport/http/response"
	"github.com/gorilla/websocket"
)

const (
	maxMessageSize      = 512
	defaultPingInterval = 30 * time.Second
	defaultWriteTimeout = 10 * time.Second
)

type subscriber interface {
	Subscribe(kinds ...event.Kind) *notify.Subscription
}

// Handler upgrades the connection and writes one JSON event per text frame.
type Handler struct {
	hub          subscriber
	upgrader     websocket.Upgrader
	pingInterval time.Duration
	writeTimeout time.Duration
}

// NewHandler creates a new websocket Handler.
// Non-positive intervals fall back to the defaults.
func NewHandler(hub subscriber, pingInterval, writeTimeout time.Duration) *Handler {
	if pingInterval <= 0 {
		pingInterval = defaultPingInterval
	}
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}

	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		pingInterval: pingInterval,
		writeTimeout: writeTimeout,
	}
}

// ParseKinds reads a comma separated kinds filter. Empty means every kind.
func ParseKinds(raw string) ([]event.Kind, error) {
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	kinds := make([]event.Kind, 0, len(parts))
	for _, p := range parts {
		k, err := event.ParseKind(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}

	return kinds, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	kinds, err := ParseKinds(r.URL.Query().Get("kinds"))
	if err != nil {
		response.BadRequest(w, err.Error())

		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Websocket upgrade failed", "error", err)

		return
	}
	defer conn.Close()

	sub := h.hub.Subscribe(kinds...)
	defer sub.Close()

	log := slog.With("subscription_id", sub.ID(), "remote_addr", r.RemoteAddr)
	log.Info("Websocket subscriber connected", "kinds", kinds)

	closed := h.readPump(conn)
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			log.Info("Websocket subscriber disconnected")

			return
		case e, ok := <-sub.Events():
			if !ok {
				_ = conn.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
					time.Now().Add(h.writeTimeout),
				)

				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := conn.WriteJSON(e); err != nil {
				log.Warn("Websocket write failed, unsubscribing", "error", err)

				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Warn("Websocket ping failed, unsubscribing", "error", err)

				return
			}
		}
	}
}

// readPump discards client frames and processes pongs. The returned channel
// is closed once the peer goes away.
func (h *Handler) readPump(conn *websocket.Conn) <-chan struct{} {
	closed := make(chan struct{})
	readWindow := 2 * h.pingInterval

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(readWindow))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readWindow))
	})

	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	return closed
}
