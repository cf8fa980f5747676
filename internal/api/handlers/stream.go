package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	clientSendSize = 256
)

// StreamEvent is one message on the score stream
type StreamEvent struct {
	Type   string               `json:"type"` // "score" | "complete"
	RunID  string               `json:"run_id"`
	Card   *contracts.ScoreCard `json:"card,omitempty"`
	Ranked int                  `json:"ranked,omitempty"`
	Top    []string             `json:"top,omitempty"`
}

type streamClient struct {
	conn *websocket.Conn
	send chan []byte
}

// StreamHub fans out score events to websocket clients.
// It is registered as a pipeline observer.
// ⭐ SSOT: 웹소켓 스트림은 이 허브에서만
type StreamHub struct {
	upgrader websocket.Upgrader
	topN     int

	mu      sync.Mutex
	clients map[*streamClient]struct{}

	logger *logger.Logger
}

// NewStreamHub creates a new hub
func NewStreamHub(topN int, log *logger.Logger) *StreamHub {
	return &StreamHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		topN:    topN,
		clients: make(map[*streamClient]struct{}),
		logger:  log.WithField("module", "stream"),
	}
}

// ServeWS upgrades the connection and subscribes the client
// GET /ws/screen
func (h *StreamHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := &streamClient{conn: conn, send: make(chan []byte, clientSendSize)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.WithField("clients", count).Debug("Stream client connected")

	go h.writePump(c)
	go h.readPump(c)
}

// ClientCount returns the number of connected clients
func (h *StreamHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// OnScore broadcasts one scored company
func (h *StreamHub) OnScore(runID string, card *contracts.ScoreCard) {
	h.broadcast(StreamEvent{Type: "score", RunID: runID, Card: card})
}

// OnComplete broadcasts the end of a run with its top tickers
func (h *StreamHub) OnComplete(run *contracts.ScreenRun) {
	top := run.Top(h.topN)
	tickers := make([]string, len(top))
	for i, rc := range top {
		tickers[i] = rc.Card.Ticker
	}
	h.broadcast(StreamEvent{Type: "complete", RunID: run.RunID, Ranked: len(run.Ranked), Top: tickers})
}

// Close disconnects all clients
func (h *StreamHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// broadcast never blocks; a client whose buffer is full is dropped
func (h *StreamHub) broadcast(event StreamEvent) {
	msg, err := json.Marshal(event)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal stream event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			delete(h.clients, c)
			close(c.send)
			h.logger.Warn("Dropped slow stream client")
		}
	}
}

func (h *StreamHub) remove(c *streamClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// readPump discards client messages and detects disconnects
func (h *StreamHub) readPump(c *streamClient) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump sends queued events and periodic pings
func (h *StreamHub) writePump(c *streamClient) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
