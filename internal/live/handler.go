package live

import (
	"net/http"

	"golang.org/x/net/websocket"

	"github.com/medconnect/clinic-platform/internal/events"
	"github.com/medconnect/clinic-platform/pkg/logging"
)

// Handler serves the websocket update feed.
type Handler struct {
	hub    *Hub
	logger *logging.Logger
}

// InboundFrame is what subscribers send.
type InboundFrame struct {
	Type string `json:"type"` // "ping"
}

// OutboundFrame is what we send to subscribers.
type OutboundFrame struct {
	Type  string              `json:"type"` // "event", "pong", "error"
	Event *events.ChangeEvent `json:"event,omitempty"`
	Text  string              `json:"text,omitempty"`
}

func NewHandler(hub *Hub, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{hub: hub, logger: logger}
}

// HandleWebSocket upgrades to WebSocket and streams change events filtered by
// the optional collection query parameter.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	collection := r.URL.Query().Get("collection")
	switch collection {
	case "", events.CollectionAppointments, events.CollectionPatients, events.CollectionMessages, events.CollectionSettings:
	default:
		_ = websocket.JSON.Send(conn, OutboundFrame{Type: "error", Text: "unknown collection"})
		return
	}

	sub, cancel := h.hub.Subscribe(collection)
	defer cancel()

	h.logger.Info("live: subscription opened", "collection", collection)

	// Reader goroutine: pings keep the connection alive, any receive error
	// ends the subscription.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var frame InboundFrame
			if err := websocket.JSON.Receive(conn, &frame); err != nil {
				return
			}
			if frame.Type == "ping" {
				_ = websocket.JSON.Send(conn, OutboundFrame{Type: "pong"})
			}
		}
	}()

	for {
		select {
		case <-done:
			h.logger.Debug("live: subscription closed", "collection", collection)
			return
		case event, ok := <-sub.C:
			if !ok {
				return
			}
			if err := websocket.JSON.Send(conn, OutboundFrame{Type: "event", Event: &event}); err != nil {
				h.logger.Debug("live: send failed, closing", "error", err)
				return
			}
		}
	}
}
