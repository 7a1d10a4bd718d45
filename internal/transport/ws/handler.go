package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"formsapi/internal/model"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // results are public
	},
}

// FormGetter checks that a form exists before subscribing to it
type FormGetter interface {
	Get(ctx context.Context, id string) (*model.Form, error)
}

// Handler handles WebSocket connections
type Handler struct {
	hub   *Hub
	forms FormGetter
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, forms FormGetter) *Handler {
	return &Handler{
		hub:   hub,
		forms: forms,
	}
}

// ResultsWS handles GET /forms/{id}/results/live
// @Summary Live stream of submitted results
// @Tags results
// @Param id path string true "Form ID"
// @Success 101 {object} Message
// @Failure 400 {object} map[string]string "Malformed id"
// @Failure 404 {object} map[string]string
// @Router /forms/{id}/results/live [get]
func (h *Handler) ResultsWS(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	form, err := h.forms.Get(r.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if e, ok := model.AsError(err); ok {
			switch e.Kind {
			case model.KindValidation:
				status = http.StatusBadRequest
			case model.KindNotFound:
				status = http.StatusNotFound
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": http.StatusText(status)})
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	conn := NewConnection(form.ID.Hex())
	h.hub.Register(conn)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := wsConn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("websocket read failed", "form", conn.FormID, "error", err)
			}
			return
		}
		// subscribers have nothing to say
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case data, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := wsConn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
