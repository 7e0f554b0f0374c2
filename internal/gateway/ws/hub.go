// Package ws bridges the event bus to connected canvas clients over
// WebSocket. Canvas request events flow out as event frames; the client
// answers with canvas_response request frames, which are published back to
// the bus for the bridge to pick up.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"

	"github.com/SweetRetry/seedkit-ai/internal/events"
)

// Client represents a connected WebSocket client.
type Client struct {
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
}

// Hub manages WebSocket clients and bridges them to the event bus.
type Hub struct {
	mu          sync.RWMutex
	clients     map[*Client]struct{}
	bus         *events.Bus
	unsubscribe func()
}

// NewHub creates a new WebSocket hub connected to an event bus.
func NewHub(bus *events.Bus) *Hub {
	h := &Hub{
		clients: make(map[*Client]struct{}),
		bus:     bus,
	}

	// Bridge bus events to WS clients. canvas_response is excluded: it is
	// client-originated traffic and echoing it back would loop.
	h.unsubscribe = bus.Subscribe(func(e events.Event) {
		frame, err := NewEventFrame(string(e.Type), e)
		if err != nil {
			slog.Error("ws: marshal event frame", "error", err)
			return
		}
		data, err := MarshalFrame(frame)
		if err != nil {
			slog.Error("ws: marshal frame", "error", err)
			return
		}
		h.broadcast(data)
	},
		events.EventTaskSubmitted,
		events.EventTaskComplete,
		events.EventCanvasRead,
		events.EventCanvasBatch,
	)

	return h
}

// broadcast sends data to all connected clients.
func (h *Hub) broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Client too slow, skip
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	slog.Info("ws: client connected", "clients", len(h.clients))
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		slog.Info("ws: client disconnected", "clients", len(h.clients))
	}
}

// Close disconnects all clients and stops bridging events.
func (h *Hub) Close() {
	if h.unsubscribe != nil {
		h.unsubscribe()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		c.conn.Close(websocket.StatusGoingAway, "server shutting down")
	}
}

// ServeWS handles a WebSocket upgrade and manages the client lifecycle.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // local desktop client, any origin
	})
	if err != nil {
		slog.Error("ws: accept", "error", err)
		return
	}

	client := &Client{
		conn: conn,
		send: make(chan []byte, 256),
		hub:  h,
	}

	h.register(client)

	ctx := r.Context()
	go client.writePump(ctx)
	client.readPump(ctx)
}

// readPump reads frames from the WS connection and dispatches them.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("ws: read closed", "status", websocket.CloseStatus(err))
			} else {
				slog.Debug("ws: read error", "error", err)
			}
			return
		}

		frame, err := UnmarshalFrame(data)
		if err != nil {
			slog.Error("ws: unmarshal frame", "error", err)
			continue
		}

		if frame.Type == FrameTypeRequest {
			c.handleRequest(frame)
		} else {
			slog.Debug("ws: unknown frame type", "type", frame.Type)
		}
	}
}

// handleRequest processes a request frame from the canvas client.
func (c *Client) handleRequest(frame Frame) {
	switch frame.Method {
	case MethodCanvasResponse:
		var params events.CanvasResponsePayload
		if err := json.Unmarshal(frame.Params, &params); err != nil {
			c.respond(frame.ID, false, nil, "invalid canvas_response params: "+err.Error())
			return
		}
		if params.RequestID == "" {
			c.respond(frame.ID, false, nil, "canvas_response requires requestId")
			return
		}
		c.hub.bus.Publish(events.NewTypedEvent(events.SourceWS, params))
		c.respond(frame.ID, true, nil, "")
	default:
		c.respond(frame.ID, false, nil, "unknown method: "+frame.Method)
	}
}

func (c *Client) respond(id string, ok bool, payload any, errMsg string) {
	frame, err := NewResponseFrame(id, ok, payload, errMsg)
	if err != nil {
		slog.Error("ws: marshal response frame", "error", err)
		return
	}
	data, err := MarshalFrame(frame)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// writePump drains the send channel onto the connection.
func (c *Client) writePump(ctx context.Context) {
	for data := range c.send {
		if err := c.conn.Write(ctx, websocket.MessageText, data); err != nil {
			return
		}
	}
}
