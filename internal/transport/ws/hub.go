package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"formsapi/internal/model"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgResultSubmitted MessageType = "result_submitted"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans out form events to live subscribers. A single goroutine owns
// registration and delivery.
type Hub struct {
	// formID -> subscribers
	subscribers map[string]map[*Connection]struct{}

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	done       chan struct{}
	closeOnce  sync.Once
}

// Connection is one subscriber of a form
type Connection struct {
	FormID string
	Send   chan []byte
}

// NewConnection creates a subscriber with a buffered send queue
func NewConnection(formID string) *Connection {
	return &Connection{
		FormID: formID,
		Send:   make(chan []byte, 256),
	}
}

// BroadcastMessage is a message to deliver to every subscriber of a form
type BroadcastMessage struct {
	FormID  string
	Message *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		subscribers: make(map[string]map[*Connection]struct{}),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan *BroadcastMessage, 256),
		done:        make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.subscribers[conn.FormID] == nil {
				h.subscribers[conn.FormID] = make(map[*Connection]struct{})
			}
			h.subscribers[conn.FormID][conn] = struct{}{}
			h.mu.Unlock()
			slog.Debug("live subscriber connected", "form", conn.FormID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if subs, ok := h.subscribers[conn.FormID]; ok {
				if _, ok := subs[conn]; ok {
					delete(subs, conn)
					close(conn.Send)
					if len(subs) == 0 {
						delete(h.subscribers, conn.FormID)
					}
					slog.Debug("live subscriber disconnected", "form", conn.FormID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Message)
			if err != nil {
				slog.Error("marshal live message", "error", err)
				continue
			}
			h.mu.RLock()
			for conn := range h.subscribers[msg.FormID] {
				select {
				case conn.Send <- data:
				default:
					// slow subscriber; drop
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			h.mu.Lock()
			for formID, subs := range h.subscribers {
				for conn := range subs {
					close(conn.Send)
				}
				delete(h.subscribers, formID)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		close(conn.Send)
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Close stops the hub and closes every subscriber's send queue
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Subscribers reports how many connections follow a form
func (h *Hub) Subscribers(formID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[formID])
}

// BroadcastResult sends a newly submitted result to the form's subscribers
// (implements service.Broadcaster)
func (h *Hub) BroadcastResult(formID string, result *model.ExpandedResult) {
	data, err := json.Marshal(result)
	if err != nil {
		slog.Error("marshal live result", "form", formID, "error", err)
		return
	}
	msg := &BroadcastMessage{
		FormID: formID,
		Message: &Message{
			Type:    MsgResultSubmitted,
			Payload: data,
		},
	}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}
