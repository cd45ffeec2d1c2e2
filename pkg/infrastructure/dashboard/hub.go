package dashboard

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/felixgeelhaar/goalgenie/pkg/application"
	"github.com/felixgeelhaar/goalgenie/pkg/domain/planning"
)

// Message types pushed to websocket clients.
const (
	MessageProgress         = "progress"
	MessageWorkspaceChanged = "workspace_changed"
)

const writeWait = 10 * time.Second

// Message is one live update.
type Message struct {
	Type     string             `json:"type"`
	GoalID   string             `json:"goal_id,omitempty"`
	Key      string             `json:"key,omitempty"`
	Checked  bool               `json:"checked,omitempty"`
	Reset    bool               `json:"reset,omitempty"`
	Progress *planning.Progress `json:"progress,omitempty"`
	Path     string             `json:"path,omitempty"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans live updates out to connected websocket clients.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

// NewHub accepts connections whose Origin is in allowedOrigins. Requests
// without an Origin header, such as non-browser clients, are accepted.
func NewHub(allowedOrigins []string, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || originAllowed(allowedOrigins, origin) || sameHost(r, origin)
			},
		},
		logger:  logger,
		clients: make(map[*wsClient]struct{}),
	}
}

func sameHost(r *http.Request, origin string) bool {
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}

// ServeHTTP upgrades the connection and streams messages until the client
// goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, 64)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)

	// Clients only listen; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(c)
}

func (h *Hub) writePump(c *wsClient) {
	defer c.conn.Close() //nolint:errcheck // connection is done either way
	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Broadcast sends msg to every client. Slow clients miss messages rather
// than block the sender.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("encode websocket message", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

// BroadcastProgress is an application.ProgressListener.
func (h *Hub) BroadcastProgress(u application.ProgressUpdate) {
	progress := u.Progress
	h.Broadcast(Message{
		Type:     MessageProgress,
		GoalID:   u.GoalID,
		Key:      u.Key,
		Checked:  u.Checked,
		Reset:    u.Reset,
		Progress: &progress,
	})
}

// BroadcastWorkspaceChange announces a change to a workspace file.
func (h *Hub) BroadcastWorkspaceChange(path, goalID string) {
	h.Broadcast(Message{Type: MessageWorkspaceChanged, Path: path, GoalID: goalID})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
