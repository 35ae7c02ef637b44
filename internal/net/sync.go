package net

import (
	"context"
	"errors"
	"fmt"
	"log"

	"SketchRoom/internal/state"
)

// Channel is a bidirectional message channel already bound to a room.
type Channel interface {
	Send(data []byte) error
	Subscribe(fn func([]byte)) (unsubscribe func())
}

// Client reconciles the local shape log with the room: it sends locally
// committed shapes, turns received envelopes into shapes and loads history.
type Client struct {
	roomID  string
	clock   *state.Clock
	channel Channel
	history *HistoryClient
}

func NewClient(roomID string, clock *state.Clock, channel Channel, history *HistoryClient) *Client {
	if clock == nil {
		clock = state.NewClock()
	}
	return &Client{
		roomID:  roomID,
		clock:   clock,
		channel: channel,
		history: history,
	}
}

// ConnectOptions locates the relay for Connect.
type ConnectOptions struct {
	RelayURL    string // websocket URL
	HistoryURL  string // HTTP base serving /chats/{roomId}
	Token       string
	NewestFirst bool
	Clock       *state.Clock
}

// EndpointOptions returns the options for the relay at ep.
func EndpointOptions(ep Endpoint) ConnectOptions {
	return ConnectOptions{RelayURL: ep.WebsocketURL(), HistoryURL: ep.HistoryURL()}
}

// Connect dials the relay, joins the room and returns a ready client.
func Connect(ctx context.Context, roomID string, opts ConnectOptions) (*Client, *Transport, error) {
	t, err := Dial(ctx, opts.RelayURL, opts.Token)
	if err != nil {
		return nil, nil, err
	}
	c := NewClient(roomID, opts.Clock, t, NewHistoryClient(opts.HistoryURL, opts.NewestFirst))
	if err := c.Join(); err != nil {
		t.Close()
		return nil, nil, err
	}
	return c, t, nil
}

func (c *Client) RoomID() string { return c.roomID }

// Join announces this client in its room.
func (c *Client) Join() error {
	data, err := JoinEnvelope(c.roomID)
	if err != nil {
		return fmt.Errorf("encode join: %w", err)
	}
	if err := c.channel.Send(data); err != nil {
		return fmt.Errorf("join room %s: %w", c.roomID, err)
	}
	log.Printf("[SYNC] Joined room %s as %s", c.roomID, c.clock.SiteID())
	return nil
}

// Publish sends a locally committed shape once, under the entry's message
// id. Failures are logged and not retried.
func (c *Client) Publish(e state.Entry) {
	data, err := EncodeChat(c.roomID, e, c.clock.Tick())
	if err != nil {
		log.Printf("[SYNC] Failed to encode %s: %v", e.Shape.Kind(), err)
		return
	}
	if err := c.channel.Send(data); err != nil {
		log.Printf("[SYNC] Failed to send %s: %v", e.Shape.Kind(), err)
	}
}

// Subscribe delivers every shape received from other participants, in
// channel order. Malformed messages, other rooms and our own echoes are
// dropped.
func (c *Client) Subscribe(fn func(state.Entry)) func() {
	return c.channel.Subscribe(func(data []byte) {
		e, err := c.Decode(data)
		if err != nil {
			if !errors.Is(err, errSkip) {
				log.Printf("[SYNC] Dropping inbound message: %v", err)
			}
			return
		}
		fn(e)
	})
}

var errSkip = errors.New("skip")

// Decode turns one inbound frame into an entry.
func (c *Client) Decode(data []byte) (state.Entry, error) {
	env, err := DecodeEnvelope(data)
	if err != nil {
		return state.Entry{}, err
	}
	if env.Type != TypeChat {
		return state.Entry{}, fmt.Errorf("%w: %s", errSkip, env.Type)
	}
	if env.RoomID != "" && env.RoomID != c.roomID {
		return state.Entry{}, fmt.Errorf("message for room %q in room %q", env.RoomID, c.roomID)
	}
	e, p, err := DecodePayload(env.Message)
	if err != nil {
		return state.Entry{}, err
	}
	if c.clock.IsLocal(p.Origin) {
		return state.Entry{}, fmt.Errorf("%w: own echo %d", errSkip, p.Seq)
	}
	return e, nil
}

// History fetches the room history, oldest first.
func (c *Client) History(ctx context.Context) ([]state.Entry, error) {
	if c.history == nil {
		return nil, errors.New("no history endpoint configured")
	}
	return c.history.Fetch(ctx, c.roomID)
}
