package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/majhol08/rtspscout/internal/cameras"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all for dev; restrict in prod
	},
}

const writeWait = 5 * time.Second

// Hub fans discovery results out to connected websocket clients. Wire its
// Broadcast into scan.Manager.OnResult.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]bool)}
}

// ServeWS upgrades the connection and holds it open until the client goes
// away. Authentication has already happened in middleware (via the token
// query parameter for browsers).
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WS Upgrade Failed: %v", err)
		return
	}

	h.mu.Lock()
	h.conns[conn] = true
	n := len(h.conns)
	h.mu.Unlock()
	log.Printf("WS Connected (%d clients)", n)

	defer h.drop(conn)
	for {
		// Clients only listen; a read returning an error is the
		// disconnect signal.
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast sends the record to every client. A client that cannot keep up
// within the write deadline is dropped.
func (h *Hub) Broadcast(rec cameras.Record) {
	data, err := json.Marshal(rec)
	if err != nil {
		log.Printf("WS Marshal Error: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("WS Write Error, dropping client: %v", err)
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

// Close drops every client, for shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		conn.Close()
		delete(h.conns, conn)
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	conn.Close()
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
}
