package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512

	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// inboundEvent is the only message shape clients send: an explicit register
// signal. The bound user id always comes from the authenticated request, so
// the payload's user_id is ignored.
type inboundEvent struct {
	Event  string `json:"event"`
	UserID int64  `json:"user_id"`
}

// outboundEvent wraps every payload pushed to a connection.
type outboundEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Client is one live WebSocket connection with a buffered outbound queue.
type Client struct {
	id     string
	userID int64
	conn   *websocket.Conn
	send   chan []byte
}

// Hub owns the set of live connections and wires register/disconnect events
// into the Registry.
type Hub struct {
	registry *Registry

	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub(registry *Registry) *Hub {
	return &Hub{
		registry: registry,
		clients:  make(map[string]*Client),
	}
}

// HandleWS upgrades the request and runs the connection until disconnect.
// The route sits behind the auth middleware, so the connection is owned by
// the authenticated user from the start.
func (h *Hub) HandleWS(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[ws][upgrade][err] %v", err)
		return
	}

	client := &Client{
		id:     uuid.NewString(),
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}

	h.mu.Lock()
	h.clients[client.id] = client
	h.mu.Unlock()
	log.Printf("[ws][connect] conn=%s", client.id)

	go h.writePump(client)
	go h.readPump(client)
}

// Push queues payload for a single connection. It never blocks: when the
// client's buffer is full the payload is dropped. Returns false when the
// connection is gone or the payload was dropped.
func (h *Hub) Push(connID string, payload any) bool {
	data, err := json.Marshal(outboundEvent{Event: "notification", Data: payload})
	if err != nil {
		log.Printf("[ws][push][err] marshal: %v", err)
		return false
	}

	// The send happens under the read lock so it cannot interleave with
	// drop, which closes the channel under the write lock.
	h.mu.RLock()
	defer h.mu.RUnlock()
	client, ok := h.clients[connID]
	if !ok {
		return false
	}

	select {
	case client.send <- data:
		return true
	default:
		log.Printf("[ws][push][drop] conn=%s buffer full", connID)
		return false
	}
}

// Broadcast queues payload for every live connection, bound or not.
func (h *Hub) Broadcast(payload any) {
	data, err := json.Marshal(outboundEvent{Event: "notification", Data: payload})
	if err != nil {
		log.Printf("[ws][broadcast][err] marshal: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, client := range h.clients {
		select {
		case client.send <- data:
		default:
			log.Printf("[ws][broadcast][drop] conn=%s buffer full", id)
		}
	}
}

func (h *Hub) readPump(client *Client) {
	defer h.drop(client)

	client.conn.SetReadLimit(maxMessageSize)
	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws][read][err] conn=%s: %v", client.id, err)
			}
			return
		}

		var evt inboundEvent
		if err := json.Unmarshal(message, &evt); err != nil {
			log.Printf("[ws][read][warn] conn=%s bad message: %v", client.id, err)
			continue
		}
		if evt.Event == "register" {
			if evt.UserID != 0 && evt.UserID != client.userID {
				log.Printf("[ws][register][warn] conn=%s payload user=%d ignored", client.id, evt.UserID)
			}
			h.registry.Bind(client.userID, client.id)
			log.Printf("[ws][register] user=%d conn=%s", client.userID, client.id)
		}
	}
}

func (h *Hub) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// drop removes the client and its registry binding after a transport-detected
// disconnect.
func (h *Hub) drop(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.id]; ok {
		delete(h.clients, client.id)
		close(client.send)
	}
	h.mu.Unlock()

	h.registry.Unbind(client.id)
	client.conn.Close()
	log.Printf("[ws][disconnect] conn=%s", client.id)
}
