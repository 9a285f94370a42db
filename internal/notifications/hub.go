// Package notifications pushes backend notifications to connected founders
// over websocket, polling on their behalf so the browser holds a single
// connection instead of polling the backend itself.
package notifications

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"capitalflow/founder-portal/founder-portal-backend/internal/auth"
	"capitalflow/founder-portal/founder-portal-backend/pkg/marketplace"
)

// Fetcher pulls a founder's notifications from the backend
type Fetcher interface {
	ListNotifications(ctx context.Context, sess auth.Session) ([]marketplace.Notification, error)
}

// Connection represents one websocket client
type Connection struct {
	ID      string
	Session auth.Session
	conn    *websocket.Conn
	send    chan []marketplace.Notification
	seen    map[string]bool
	// done is closed when the connection leaves the registry; all pumps
	// select on it so a disconnect stops the polling too.
	done chan struct{}
}

// Hub manages websocket connections and the per-founder polling
type Hub struct {
	fetcher  Fetcher
	logger   *zap.Logger
	interval time.Duration
	upgrader websocket.Upgrader

	mu          sync.RWMutex
	connections map[string]*Connection
	stop        chan struct{}
	stopOnce    sync.Once
}

// NewHub creates a notification hub polling at the given interval
func NewHub(fetcher Fetcher, interval time.Duration, logger *zap.Logger) *Hub {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Hub{
		fetcher:  fetcher,
		logger:   logger,
		interval: interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Origin checking is the edge proxy's job
				return true
			},
		},
		connections: make(map[string]*Connection),
		stop:        make(chan struct{}),
	}
}

// HandleConnection upgrades an HTTP request and starts pumping
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request, sess auth.Session) (*Connection, error) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}

	connection := &Connection{
		ID:      uuid.NewString(),
		Session: sess,
		conn:    ws,
		send:    make(chan []marketplace.Notification, 16),
		seen:    make(map[string]bool),
		done:    make(chan struct{}),
	}

	h.mu.Lock()
	h.connections[connection.ID] = connection
	h.mu.Unlock()

	go h.pollPump(connection)
	go h.writePump(connection)
	go h.readPump(connection)

	h.logger.Info("Notification stream opened",
		zap.String("founder_id", sess.FounderID),
		zap.String("connection_id", connection.ID))
	return connection, nil
}

// Close shuts down the hub and all connections
func (h *Hub) Close() {
	h.stopOnce.Do(func() { close(h.stop) })

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, connection := range h.connections {
		close(connection.done)
		connection.conn.Close()
		delete(h.connections, id)
	}
}

func (h *Hub) drop(connection *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[connection.ID]; ok {
		delete(h.connections, connection.ID)
		close(connection.done)
		connection.conn.Close()
	}
}

// pollPump fetches notifications on an interval and queues unseen ones
func (h *Hub) pollPump(connection *Connection) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		h.pollOnce(connection)
		select {
		case <-h.stop:
			return
		case <-connection.done:
			return
		case <-ticker.C:
		}
	}
}

func (h *Hub) pollOnce(connection *Connection) {
	ctx, cancel := context.WithTimeout(context.Background(), h.interval)
	defer cancel()

	notes, err := h.fetcher.ListNotifications(ctx, connection.Session)
	if err != nil {
		h.logger.Debug("Notification poll failed",
			zap.String("founder_id", connection.Session.FounderID),
			zap.Error(err))
		return
	}

	fresh := notes[:0:0]
	for _, n := range notes {
		if !connection.seen[n.ID] {
			connection.seen[n.ID] = true
			fresh = append(fresh, n)
		}
	}
	if len(fresh) == 0 {
		return
	}
	select {
	case connection.send <- fresh:
	default:
		// Slow consumer; it will catch up on the next poll
	}
}

func (h *Hub) writePump(connection *Connection) {
	defer h.drop(connection)
	for {
		select {
		case <-h.stop:
			return
		case <-connection.done:
			return
		case notes, ok := <-connection.send:
			if !ok {
				return
			}
			connection.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := connection.conn.WriteJSON(notes); err != nil {
				return
			}
		}
	}
}

func (h *Hub) readPump(connection *Connection) {
	defer h.drop(connection)
	connection.conn.SetReadLimit(512)
	for {
		if _, _, err := connection.conn.ReadMessage(); err != nil {
			return
		}
	}
}
