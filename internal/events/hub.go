// Package events fans out the control-plane event stream (spec §6's
// "Emitted events" table) to local UI consumers over a loopback WebSocket.
//
// Grounded on the teacher's use of github.com/coder/websocket as a client
// (pkg/provider/stt/deepgram, pkg/provider/tts/elevenlabs, pkg/provider/s2s)
// — no teacher package runs a WebSocket *server*, so the Accept/broadcast
// side is new, built against the same library and the same
// Write(ctx, MessageType, []byte)/Close(code, reason) call shape the
// teacher's client code already demonstrates.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// Envelope is the wire shape of every published event: a type tag (the
// spec's event name, e.g. "stt.partial") and its payload.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// clientSendBuffer bounds how many unread events a slow consumer may lag
// behind before new events start being dropped for it.
const clientSendBuffer = 64

type client struct {
	send chan []byte
}

// Hub is the event fan-out broadcaster. One Hub serves every connected
// control-plane consumer. Publish is safe to call from any goroutine.
type Hub struct {
	log *slog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHub returns an empty Hub. If log is nil, slog.Default is used.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{log: log, clients: make(map[*client]struct{})}
}

// Publish encodes eventType and payload as an Envelope and fans it out to
// every connected client. A client whose send buffer is full has the event
// dropped for it rather than blocking the publisher — matching the
// non-blocking "emit" idiom used by the transcriber and action router.
func (h *Hub) Publish(eventType string, payload any) {
	data, err := json.Marshal(Envelope{Type: eventType, Payload: payload})
	if err != nil {
		h.log.Error("events: marshal envelope", "type", eventType, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.log.Warn("events: dropping event for slow consumer", "type", eventType)
		}
	}
}

// ServeHTTP upgrades the request to a WebSocket and streams published
// events to it until the client disconnects or the request's context is
// cancelled. Suitable for mounting at a loopback-only control-plane path.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.log.Error("events: accept websocket", "error", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "closing")

	c := &client{send: make(chan []byte, clientSendBuffer)}
	h.addClient(c)
	defer h.removeClient(c)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				h.log.Debug("events: write failed, closing client", "error", err)
				return
			}
		}
	}
}

func (h *Hub) addClient(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) removeClient(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}
