package net

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var ErrClosed = errors.New("channel closed")

const (
	sendBuffer = 64
	writeWait  = 10 * time.Second
)

// Transport is a websocket channel to the relay. Sends are queued and
// written by a single writer; received frames are handed to every
// subscriber in arrival order.
type Transport struct {
	conn *websocket.Conn
	out  chan []byte
	done chan struct{}

	handlers map[int]func([]byte)
	nextID   int
	mu       sync.RWMutex

	closeOnce sync.Once
}

// Dial opens a channel to a relay websocket URL. token, when set, is passed
// as the token query parameter the relay uses to validate the identity.
func Dial(ctx context.Context, wsURL, token string) (*Transport, error) {
	target := wsURL
	if token != "" {
		target = fmt.Sprintf("%s?token=%s", wsURL, url.QueryEscape(token))
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, http.Header{})
	if err != nil {
		return nil, fmt.Errorf("dial relay %s: %w", wsURL, err)
	}
	log.Printf("[SYNC] Connected to relay %s", wsURL)
	return NewTransport(conn), nil
}

// NewTransport starts the read and write loops on an open connection.
func NewTransport(conn *websocket.Conn) *Transport {
	t := &Transport{
		conn:     conn,
		out:      make(chan []byte, sendBuffer),
		done:     make(chan struct{}),
		handlers: make(map[int]func([]byte)),
	}
	go t.readLoop()
	go t.writeLoop()
	return t
}

// Send queues one message. It never blocks on the network.
func (t *Transport) Send(data []byte) error {
	select {
	case <-t.done:
		return ErrClosed
	default:
	}
	select {
	case t.out <- data:
		return nil
	case <-t.done:
		return ErrClosed
	default:
		return fmt.Errorf("send queue full (%d messages)", sendBuffer)
	}
}

// Subscribe registers fn for every received message and returns a function
// that removes it.
func (t *Transport) Subscribe(fn func([]byte)) func() {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.handlers[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.handlers, id)
		t.mu.Unlock()
	}
}

// Done is closed once the channel has shut down.
func (t *Transport) Done() <-chan struct{} { return t.done }

func (t *Transport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.done)
		_ = t.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		err = t.conn.Close()
	})
	return err
}

func (t *Transport) readLoop() {
	defer t.Close()
	for {
		_, data, err := t.conn.ReadMessage()
		if err != nil {
			select {
			case <-t.done:
			default:
				log.Printf("[SYNC] Relay read error: %v", err)
			}
			return
		}
		t.mu.RLock()
		handlers := make([]func([]byte), 0, len(t.handlers))
		for _, h := range t.handlers {
			handlers = append(handlers, h)
		}
		t.mu.RUnlock()
		for _, h := range handlers {
			h(data)
		}
	}
}

func (t *Transport) writeLoop() {
	for {
		select {
		case m := <-t.out:
			_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := t.conn.WriteMessage(websocket.TextMessage, m); err != nil {
				log.Printf("[SYNC] Relay write error: %v", err)
				t.Close()
				return
			}
		case <-t.done:
			return
		}
	}
}
