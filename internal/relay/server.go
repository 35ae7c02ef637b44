package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	sknet "SketchRoom/internal/net"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server serves the relay websocket and the history endpoint.
type Server struct {
	hub     *Hub
	history HistoryStore
	router  *mux.Router
}

func NewServer(history HistoryStore) *Server {
	if history == nil {
		history = NewMemoryHistory()
	}
	s := &Server{
		hub:     NewHub(),
		history: history,
		router:  mux.NewRouter(),
	}
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/chats/{roomId}", s.handleHistory).Methods(http.MethodGet)
	s.router.HandleFunc("/ws", s.handleWebsocket)
	return s
}

func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe runs the relay on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("relay listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts relay connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: s}
	errc := make(chan error, 1)
	go func() {
		log.Printf("[RELAY] Listening on %s", ln.Addr())
		errc <- srv.Serve(ln)
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("relay serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "Healthy\n")
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]
	msgs, err := s.history.List(r.Context(), roomID)
	if err != nil {
		log.Printf("[RELAY] History for %s failed: %v", roomID, err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	body := sknet.HistoryResponse{Messages: make([]sknet.HistoryMessage, 0, len(msgs))}
	for _, m := range msgs {
		body.Messages = append(body.Messages, sknet.HistoryMessage{Message: m})
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[RELAY] Writing history for %s failed: %v", roomID, err)
	}
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[RELAY] Upgrade failed: %v", err)
		return
	}
	p := newPeer(conn)
	log.Printf("[RELAY] Peer %s connected from %s", p.ID, conn.RemoteAddr())

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go s.writeLoop(ctx, p)

	defer func() {
		s.hub.Leave(p)
		conn.Close()
		log.Printf("[RELAY] Peer %s disconnected", p.ID)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		s.handleMessage(ctx, p, data)
	}
}

func (s *Server) handleMessage(ctx context.Context, p *Peer, data []byte) {
	env, err := sknet.DecodeEnvelope(data)
	if err != nil {
		log.Printf("[RELAY] Dropping message from %s: %v", p.ID, err)
		return
	}
	switch env.Type {
	case sknet.TypeJoinRoom:
		if env.RoomID == "" {
			log.Printf("[RELAY] Peer %s sent join without a room", p.ID)
			return
		}
		s.hub.Join(p, env.RoomID)
	case sknet.TypeChat:
		room := s.hub.Room(p)
		if room == "" {
			log.Printf("[RELAY] Peer %s sent chat before joining", p.ID)
			return
		}
		if env.RoomID != room {
			log.Printf("[RELAY] Peer %s sent chat for %q while in %q", p.ID, env.RoomID, room)
			return
		}
		if err := s.history.Append(ctx, room, env.Message); err != nil {
			log.Printf("[RELAY] %v", err)
		}
		s.hub.Broadcast(room, data, p)
	default:
		log.Printf("[RELAY] Ignoring %q from %s", env.Type, p.ID)
	}
}

func (s *Server) writeLoop(ctx context.Context, p *Peer) {
	for {
		select {
		case m := <-p.send:
			if err := p.conn.WriteMessage(websocket.TextMessage, m); err != nil {
				log.Printf("[RELAY] Write to %s failed: %v", p.ID, err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
