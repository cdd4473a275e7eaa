package opsserver

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local ops dashboard only, no cross-origin concern
	},
}

// Hub maintains the set of connected progress-feed clients and broadcasts
// ProgressEvents to all of them.
type Hub struct {
	clients   map[*websocket.Conn]bool
	broadcast chan ProgressEvent
	mu        sync.Mutex
}

// NewHub creates an idle Hub. Call Run in its own goroutine to start
// broadcasting.
func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan ProgressEvent, 256),
	}
}

// Run drains the broadcast channel, writing each event to every connected
// client, until the channel is closed.
func (h *Hub) Run() {
	for event := range h.broadcast {
		payload, err := json.Marshal(event)
		if err != nil {
			log.Printf("opsserver: marshal progress event: %v", err)
			continue
		}
		h.mu.Lock()
		for client := range h.clients {
			_ = client.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := client.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Printf("opsserver: websocket write error: %v", err)
				client.Close()
				delete(h.clients, client)
			}
		}
		h.mu.Unlock()
	}
}

// Publish queues event for broadcast. Safe to call from the customization
// pipeline's own goroutine; never blocks on a slow or absent client.
func (h *Hub) Publish(event ProgressEvent) {
	select {
	case h.broadcast <- event:
	default:
		log.Printf("opsserver: progress feed full, dropping event %q", event.Phase)
	}
}

// Subscribe upgrades an incoming HTTP request to a websocket connection and
// registers it as a broadcast recipient.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("opsserver: upgrade failed: %v", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	n := len(h.clients)
	h.mu.Unlock()
	log.Printf("opsserver: progress client connected, %d total", n)

	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients, conn)
			n := len(h.clients)
			h.mu.Unlock()
			conn.Close()
			log.Printf("opsserver: progress client disconnected, %d total", n)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
