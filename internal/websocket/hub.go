package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one WebSocket subscriber to an optimization run
type Client struct {
	RunID string
	Conn  *websocket.Conn
	Send  chan []byte
	Hub   *Hub
}

// Hub tracks subscribers per run id and fans optimizer progress out to them
type Hub struct {
	clients    map[*Client]bool
	runClients map[string][]*Client
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	closeOnce  sync.Once
	logger     *logrus.Logger
	mutex      sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		runClients: make(map[string][]*Client),
		broadcast:  make(chan []byte, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run handles registration and global broadcasts until Close is called
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.runClients[client.RunID] = append(h.runClients[client.RunID], client)
			total := len(h.clients)
			h.mutex.Unlock()

			h.logger.WithFields(logrus.Fields{
				"run_id":        client.RunID,
				"total_clients": total,
			}).Info("WebSocket client connected")

		case client := <-h.unregister:
			h.mutex.Lock()
			h.removeLocked(client)
			total := len(h.clients)
			h.mutex.Unlock()

			h.logger.WithFields(logrus.Fields{
				"run_id":        client.RunID,
				"total_clients": total,
			}).Info("WebSocket client disconnected")

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				h.sendLocked(client, message)
			}
			h.mutex.Unlock()

		case <-h.done:
			h.mutex.Lock()
			for client := range h.clients {
				h.removeLocked(client)
			}
			h.mutex.Unlock()
			return
		}
	}
}

// Close disconnects every client and stops Run
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// HandleWebSocket subscribes the connection to the run named in the path
func (h *Hub) HandleWebSocket(c *gin.Context) {
	runID := c.Param("run_id")
	if runID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "run_id is required", "code": "INVALID_REQUEST"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}

	client := &Client{
		RunID: runID,
		Conn:  conn,
		Send:  make(chan []byte, sendBuffer),
		Hub:   h,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// BroadcastToRun sends a message to every subscriber of a run
func (h *Hub) BroadcastToRun(runID string, message interface{}) {
	h.mutex.RLock()
	subscribed := len(h.runClients[runID]) > 0
	h.mutex.RUnlock()
	if !subscribed {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal WebSocket message")
		return
	}

	h.mutex.Lock()
	for _, client := range append([]*Client(nil), h.runClients[runID]...) {
		h.sendLocked(client, data)
	}
	h.mutex.Unlock()
}

// BroadcastToAll sends a message to all connected clients
func (h *Hub) BroadcastToAll(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal WebSocket message")
		return
	}

	select {
	case h.broadcast <- data:
	case <-h.done:
	}
}

// GetSubscribedRuns returns the run ids that have at least one subscriber
func (h *Hub) GetSubscribedRuns() []string {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	runs := make([]string, 0, len(h.runClients))
	for runID := range h.runClients {
		runs = append(runs, runID)
	}
	return runs
}

// GetConnectionCount returns the total number of active connections
func (h *Hub) GetConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// sendLocked queues a message, dropping clients that cannot keep up.
// Callers hold the write lock.
func (h *Hub) sendLocked(client *Client, message []byte) {
	select {
	case client.Send <- message:
	default:
		h.logger.WithField("run_id", client.RunID).Warn("Dropping slow WebSocket client")
		h.removeLocked(client)
	}
}

func (h *Hub) removeLocked(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)

	subscribers := h.runClients[client.RunID]
	for i, c := range subscribers {
		if c == client {
			h.runClients[client.RunID] = append(subscribers[:i], subscribers[i+1:]...)
			break
		}
	}
	if len(h.runClients[client.RunID]) == 0 {
		delete(h.runClients, client.RunID)
	}
}

// readPump drains the connection so close frames are seen
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.WithError(err).Error("WebSocket error")
			}
			return
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			c.Hub.logger.WithError(err).Error("Failed to write WebSocket message")
			return
		}
	}
	c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
