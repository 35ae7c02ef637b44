// Package relay is a small stand-in for the room relay: it forwards every
// chat envelope a peer sends to the other members of the same room and keeps
// the room's history.
package relay

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/segmentio/ksuid"
)

const peerBuffer = 256

// Peer is one connected client.
type Peer struct {
	ID   string
	conn *websocket.Conn
	send chan []byte
	room string
}

func newPeer(conn *websocket.Conn) *Peer {
	return &Peer{
		ID:   ksuid.New().String(),
		conn: conn,
		send: make(chan []byte, peerBuffer),
	}
}

// Hub tracks which peers are in which room.
type Hub struct {
	rooms map[string]map[*Peer]bool
	mu    sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Peer]bool)}
}

// Join moves a peer into a room, leaving any previous one.
func (h *Hub) Join(p *Peer, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(p)
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Peer]bool)
	}
	h.rooms[room][p] = true
	p.room = room
	log.Printf("[RELAY] Peer %s joined room %s (%d members)", p.ID, room, len(h.rooms[room]))
}

// Leave removes a peer from its room.
func (h *Hub) Leave(p *Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(p)
}

func (h *Hub) leaveLocked(p *Peer) {
	if p.room == "" {
		return
	}
	members := h.rooms[p.room]
	delete(members, p)
	log.Printf("[RELAY] Peer %s left room %s (%d members)", p.ID, p.room, len(members))
	if len(members) == 0 {
		delete(h.rooms, p.room)
	}
	p.room = ""
}

// Room returns the room a peer has joined.
func (h *Hub) Room(p *Peer) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return p.room
}

// Members returns the number of peers in a room.
func (h *Hub) Members(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Broadcast queues data for every member of room except the sender. A peer
// whose queue is full misses the message.
func (h *Hub) Broadcast(room string, data []byte, exclude *Peer) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for p := range h.rooms[room] {
		if p == exclude {
			continue
		}
		select {
		case p.send <- data:
		default:
			log.Printf("[RELAY] Dropping message for slow peer %s", p.ID)
		}
	}
}
