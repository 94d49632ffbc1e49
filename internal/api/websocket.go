package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/zyedidia/generic/mapset"
)

// WebSocket message types for the event protocol
const (
	// Client -> Server messages
	MsgTypePing      = "ping"
	MsgTypeSubscribe = "subscribe"

	// Server -> Client messages
	MsgTypeConnected  = "connected"
	MsgTypePong       = "pong"
	MsgTypeSubscribed = "subscribed"
	MsgTypeError      = "error"
)

const (
	// clientBuffer is how many messages may queue for a slow client before
	// events to it are dropped
	clientBuffer = 64
	writeTimeout = 10 * time.Second
)

// WebSocket message structure
type WSMessage struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// SubscribePayload selects the tags a client receives events for. An empty
// list subscribes to every tag.
type SubscribePayload struct {
	Tags []string `json:"tags"`
}

// WebSocket error response
type WSErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// wsClient is one connection. Only its write loop writes to conn.
type wsClient struct {
	conn *websocket.Conn
	send chan WSMessage

	mu   sync.Mutex
	tags mapset.Set[string] // empty means all tags
}

func (cl *wsClient) wants(tag string) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return tag == "" || cl.tags.Size() == 0 || cl.tags.Has(tag)
}

func (cl *wsClient) subscribe(tags []string) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.tags = mapset.New[string]()
	for _, tag := range tags {
		cl.tags.Put(tag)
	}
}

// enqueue queues msg without blocking. It reports false when the buffer is full.
func (cl *wsClient) enqueue(msg WSMessage) bool {
	select {
	case cl.send <- msg:
		return true
	default:
		return false
	}
}

func (cl *wsClient) writeLoop(done chan<- struct{}) {
	defer close(done)
	for msg := range cl.send {
		cl.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := cl.conn.WriteJSON(msg); err != nil {
			logger.Warnf("failed to send %s message: %v", msg.Type, err)
		}
	}
}

// Hub manages WebSocket connections and pushes layout events to them.
// It implements session.Publisher.
type Hub struct {
	upgrader  websocket.Upgrader
	clients   map[*wsClient]struct{}
	clientsMu sync.RWMutex
}

// NewHub creates a new event hub
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Allow connections from any origin
				return true
			},
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
		},
		clients: make(map[*wsClient]struct{}),
	}
}

// Publish pushes event to every client subscribed to its tag. Slow clients
// miss events rather than blocking the publisher.
func (h *Hub) Publish(event models.Event) {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}
	msg := WSMessage{
		Type:      string(event.Type),
		ID:        event.Tag,
		Payload:   mustJSON(event),
		Timestamp: event.Timestamp,
	}

	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	for cl := range h.clients {
		if !cl.wants(event.Tag) {
			continue
		}
		if !cl.enqueue(msg) {
			logger.Warnf("dropped %s event for a slow client", event.Type)
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades HTTP connection to WebSocket and serves the event protocol
func (h *Hub) HandleWebSocket(c echo.Context) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	cl := &wsClient{
		conn: ws,
		send: make(chan WSMessage, clientBuffer),
		tags: mapset.New[string](),
	}
	done := make(chan struct{})
	go cl.writeLoop(done)

	h.clientsMu.Lock()
	h.clients[cl] = struct{}{}
	h.clientsMu.Unlock()
	logger.Debugf("client connected (%d total)", h.ClientCount())

	cl.enqueue(WSMessage{Type: MsgTypeConnected, Timestamp: time.Now().UnixMilli()})

	// Main message loop
	for {
		var msg WSMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warnf("connection error: %v", err)
			}
			break
		}

		switch msg.Type {
		case MsgTypePing:
			cl.enqueue(WSMessage{Type: MsgTypePong, ID: msg.ID, Timestamp: time.Now().UnixMilli()})
		case MsgTypeSubscribe:
			var payload SubscribePayload
			if len(msg.Payload) > 0 {
				if err := json.Unmarshal(msg.Payload, &payload); err != nil {
					cl.enqueue(errorMessage("Invalid subscribe payload: "+err.Error(), "INVALID_PAYLOAD"))
					continue
				}
			}
			cl.subscribe(payload.Tags)
			cl.enqueue(WSMessage{
				Type:      MsgTypeSubscribed,
				ID:        msg.ID,
				Payload:   mustJSON(payload),
				Timestamp: time.Now().UnixMilli(),
			})
		default:
			cl.enqueue(errorMessage("Unknown message type: "+msg.Type, "INVALID_TYPE"))
		}
	}

	// No Publish can reach cl.send once it is unregistered
	h.clientsMu.Lock()
	delete(h.clients, cl)
	h.clientsMu.Unlock()
	close(cl.send)
	<-done

	logger.Debugf("client disconnected")
	return nil
}

// Helper methods

func errorMessage(message, code string) WSMessage {
	return WSMessage{
		Type:      MsgTypeError,
		Timestamp: time.Now().UnixMilli(),
		Payload: mustJSON(WSErrorResponse{
			Type:    MsgTypeError,
			Message: message,
			Code:    code,
		}),
	}
}

func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}
