package hub

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/bvision/go-bvision/alert"
	"github.com/bvision/go-bvision/render"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	writeWait  = 5 * time.Second
	readWait   = 60 * time.Second
	maxInbound = 512
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SpeedFunc receives speed samples in meters per second sent by viewers
type SpeedFunc func(mps float64)

// Hub fans frame summaries and alerts out to websocket viewers.  It is both
// a render sink and an alert sink.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mutex      sync.RWMutex
	onSpeed    SpeedFunc
	log        logrus.FieldLogger
}

// New returns a hub.  onSpeed may be nil.
func New(onSpeed SpeedFunc, log logrus.FieldLogger) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		onSpeed:    onSpeed,
		log:        log,
	}
}

// Run delivers messages until the context is cancelled, then closes all
// connections
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				client.Close()
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mutex.Unlock()
			h.log.WithField("clients", count).Info("Viewer connected")

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			count := len(h.clients)
			h.mutex.Unlock()
			h.log.WithField("clients", count).Info("Viewer disconnected")

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				client.SetWriteDeadline(time.Now().Add(writeWait))

				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					h.log.WithError(err).Warn("Error sending message")
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mutex.Unlock()
		}
	}
}

// ClientCount returns the number of connected viewers
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request to a websocket and reads speed samples
// from the viewer until it disconnects
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {

	conn, err := upgrader.Upgrade(w, r, nil)

	if err != nil {
		h.log.WithError(err).Warn("WebSocket upgrade error")
		return
	}

	conn.SetReadLimit(maxInbound)
	conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readWait))
		return nil
	})

	select {
	case h.register <- conn:
	case <-r.Context().Done():
		conn.Close()
		return
	}

	defer func() {
		select {
		case h.unregister <- conn:
		case <-r.Context().Done():
			conn.Close()
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()

		if err != nil {
			return
		}

		conn.SetReadDeadline(time.Now().Add(readWait))

		var in Inbound

		if err := json.Unmarshal(msg, &in); err != nil {
			h.log.WithError(err).Debug("Ignoring malformed viewer message")
			continue
		}

		if in.Speed != nil && h.onSpeed != nil {
			h.onSpeed(*in.Speed)
		}
	}
}

// send queues a message without blocking, dropping it when viewers can't
// keep up
func (h *Hub) send(msg Message) error {

	data, err := json.Marshal(msg)

	if err != nil {
		return err
	}

	select {
	case h.broadcast <- data:
	default:
		h.log.Debug("Broadcast queue full, dropping message")
	}

	return nil
}

// Draw publishes a summary of the render batch
func (h *Hub) Draw(b *render.Batch) error {
	return h.send(Message{Type: TypeFrame, Frame: NewFrameMessage(b)})
}

// Fire publishes the alert
func (h *Hub) Fire(ev alert.Event) error {
	return h.send(Message{Type: TypeAlert, Alert: NewAlertMessage(ev)})
}

// Name identifies the sink in logs and metrics
func (h *Hub) Name() string {
	return "hub"
}
