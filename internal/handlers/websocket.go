package handlers

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pursuit/internal/common"
	"github.com/ternarybob/pursuit/internal/interfaces"
)

// WebSocketHandler streams bus events (ingestion progress, autofill
// progress, sweeper flags) to connected clients
type WebSocketHandler struct {
	upgrader    websocket.Upgrader
	events      interfaces.EventService
	unsubscribe func()

	mu      sync.Mutex
	clients map[*websocket.Conn]chan interfaces.Event
	logger  arbor.ILogger
}

func NewWebSocketHandler(events interfaces.EventService) *WebSocketHandler {
	h := &WebSocketHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Local single-user tool; cross-origin access is expected from
			// the dev UI
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		events:  events,
		clients: make(map[*websocket.Conn]chan interfaces.Event),
		logger:  common.GetLogger(),
	}
	h.unsubscribe = events.SubscribeAll(h.broadcast)
	return h
}

// HandleWebSocket upgrades the connection and streams events until the
// client disconnects
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	ch := make(chan interfaces.Event, 64)
	h.mu.Lock()
	h.clients[conn] = ch
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.Info().Int("clients", count).Msg("WebSocket client connected")

	go h.writeLoop(conn, ch)
	h.readLoop(conn)
}

// broadcast fans one event out to every client buffer. Slow clients drop
// events rather than stall the publisher.
func (h *WebSocketHandler) broadcast(event interfaces.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, ch := range h.clients {
		select {
		case ch <- event:
		default:
			h.logger.Debug().Str("remote", conn.RemoteAddr().String()).Msg("Client buffer full, event dropped")
		}
	}
}

func (h *WebSocketHandler) writeLoop(conn *websocket.Conn, ch chan interfaces.Event) {
	for event := range ch {
		if err := conn.WriteJSON(event); err != nil {
			h.remove(conn)
			return
		}
	}
}

func (h *WebSocketHandler) readLoop(conn *websocket.Conn) {
	defer h.remove(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *WebSocketHandler) remove(conn *websocket.Conn) {
	h.mu.Lock()
	ch, ok := h.clients[conn]
	if ok {
		delete(h.clients, conn)
		close(ch)
	}
	h.mu.Unlock()
	if ok {
		conn.Close()
		h.logger.Info().Msg("WebSocket client disconnected")
	}
}

// Close detaches from the event bus and drops every client
func (h *WebSocketHandler) Close() {
	if h.unsubscribe != nil {
		h.unsubscribe()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, ch := range h.clients {
		close(ch)
		conn.Close()
		delete(h.clients, conn)
	}
}
