// Package ws pushes round updates to scoreboard clients over WebSocket.
package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/scorecard/internal/domain/types"
	"github.com/okian/scorecard/pkg/logger"
	"github.com/okian/scorecard/pkg/metrics"
)

// Event names sent to clients.
const (
	EventRound          = "round"
	EventRoundDiscarded = "round_discarded"
)

const (
	defaultSendBuffer   = 16
	defaultPingInterval = 30 * time.Second
	writeWait           = 10 * time.Second
	maxMessageSize      = 512
)

// Message is the envelope of every frame sent to a client.
type Message struct {
	Event   string           `json:"event"`
	RoundID string           `json:"round_id"`
	Round   *types.RoundView `json:"round,omitempty"`
}

// InitialFunc returns the view a new subscriber starts from.
type InitialFunc func(ctx context.Context) (types.RoundView, error)

type client struct {
	roundID     string
	send        chan Message
	lastVersion int64 // guarded by Hub.mu
}

// Hub fans round views out to the subscribers of each round.
type Hub struct {
	mu           sync.Mutex
	rounds       map[string]map[*client]struct{}
	count        int
	sendBuffer   int
	pingInterval time.Duration
	upgrader     websocket.Upgrader
	logger       logger.Logger
}

// NewHub creates a hub with configuration options.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		rounds:       make(map[string]map[*client]struct{}),
		sendBuffer:   defaultSendBuffer,
		pingInterval: defaultPingInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger.Get().Named("ws"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeRound upgrades the request and streams the round to the client until
// either side goes away. An error is returned only when initial fails, before
// the connection is upgraded, so the caller can still answer over HTTP.
func (h *Hub) ServeRound(w http.ResponseWriter, r *http.Request, roundID string, initial InitialFunc) error {
	// Register before reading the initial view so no update is missed in between.
	c := &client{roundID: roundID, send: make(chan Message, h.sendBuffer)}
	h.register(c)

	view, err := initial(r.Context())
	if err != nil {
		h.unregister(c)
		return err
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.unregister(c)
		h.logger.Warn(r.Context(), "websocket upgrade failed", logger.String("round_id", roundID), logger.Error(err))
		return nil
	}

	h.Publish(r.Context(), roundID, view)
	go h.writePump(conn, c)
	go h.readPump(conn, c)
	return nil
}

// Publish sends view to every subscriber of the round. Subscribers that
// already received the same or a newer version are skipped. A subscriber
// whose buffer is full is dropped.
func (h *Hub) Publish(_ context.Context, roundID string, view types.RoundView) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.rounds[roundID]
	if len(subs) == 0 {
		return
	}
	metrics.RecordWebsocketBroadcast()
	for c := range subs {
		if view.Version <= c.lastVersion {
			continue
		}
		v := view
		select {
		case c.send <- Message{Event: EventRound, RoundID: roundID, Round: &v}:
			c.lastVersion = view.Version
		default:
			metrics.RecordWebsocketDropped()
			h.removeLocked(c)
		}
	}
}

// Discard tells every subscriber the round is gone and closes their feeds.
func (h *Hub) Discard(_ context.Context, roundID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.rounds[roundID] {
		select {
		case c.send <- Message{Event: EventRoundDiscarded, RoundID: roundID}:
		default:
		}
		h.removeLocked(c)
	}
}

// Subscribers returns the number of connected subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, subs := range h.rounds {
		for c := range subs {
			h.removeLocked(c)
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.rounds[c.roundID]
	if !ok {
		subs = make(map[*client]struct{})
		h.rounds[c.roundID] = subs
	}
	subs[c] = struct{}{}
	h.count++
	metrics.UpdateWebsocketSubscribers(h.count)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// removeLocked closes the client's feed once. Must be called with h.mu held.
func (h *Hub) removeLocked(c *client) {
	subs := h.rounds[c.roundID]
	if _, ok := subs[c]; !ok {
		return
	}
	delete(subs, c)
	if len(subs) == 0 {
		delete(h.rounds, c.roundID)
	}
	close(c.send)
	h.count--
	metrics.UpdateWebsocketSubscribers(h.count)
}

func (h *Hub) writePump(conn *websocket.Conn, c *client) {
	ticker := time.NewTicker(h.pingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				h.unregister(c)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.unregister(c)
				return
			}
		}
	}
}

// readPump discards client frames and unregisters the client when the
// connection fails or is closed by the peer.
func (h *Hub) readPump(conn *websocket.Conn, c *client) {
	defer h.unregister(c)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(2 * h.pingInterval))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(2 * h.pingInterval))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
