package net

import (
	"encoding/json"
	"errors"
	"fmt"

	"SketchRoom/internal/state"

	"github.com/segmentio/ksuid"
)

const (
	TypeJoinRoom = "join_room"
	TypeChat     = "chat"
)

var ErrMalformedEnvelope = errors.New("malformed envelope")

// Envelope is the wire wrapper for every channel message. For chat messages
// Message holds a JSON-encoded Payload.
type Envelope struct {
	Type    string `json:"type"`
	RoomID  string `json:"roomId"`
	Message string `json:"message,omitempty"`
}

// Payload carries one shape plus the sender's origin tag.
type Payload struct {
	Shape  json.RawMessage `json:"shape"`
	Origin string          `json:"origin,omitempty"`
	Seq    uint64          `json:"seq,omitempty"`
	ID     string          `json:"id,omitempty"`
}

// JoinEnvelope is the first message sent on a new channel.
func JoinEnvelope(roomID string) ([]byte, error) {
	return json.Marshal(Envelope{Type: TypeJoinRoom, RoomID: roomID})
}

// EncodePayload wraps a shape with its origin stamp and message id. An entry
// without an id gets a fresh one.
func EncodePayload(e state.Entry, stamp state.Stamp) (string, error) {
	raw, err := state.MarshalShape(e.Shape)
	if err != nil {
		return "", err
	}
	id := e.ID
	if id == "" {
		id = ksuid.New().String()
	}
	data, err := json.Marshal(Payload{
		Shape:  raw,
		Origin: stamp.Site,
		Seq:    stamp.Seq,
		ID:     id,
	})
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	return string(data), nil
}

// EncodeChat builds a complete chat envelope for an entry.
func EncodeChat(roomID string, e state.Entry, stamp state.Stamp) ([]byte, error) {
	msg, err := EncodePayload(e, stamp)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: TypeChat, RoomID: roomID, Message: msg})
}

// DecodeEnvelope parses the outer wrapper.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("%w: missing type", ErrMalformedEnvelope)
	}
	return env, nil
}

// DecodePayload parses a chat message body into the entry it carries.
func DecodePayload(message string) (state.Entry, Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(message), &p); err != nil {
		return state.Entry{}, Payload{}, fmt.Errorf("%w: payload: %v", ErrMalformedEnvelope, err)
	}
	if len(p.Shape) == 0 {
		return state.Entry{}, Payload{}, fmt.Errorf("%w: payload has no shape", ErrMalformedEnvelope)
	}
	shape, err := state.UnmarshalShape(p.Shape)
	if err != nil {
		return state.Entry{}, Payload{}, err
	}
	return state.Entry{ID: p.ID, Shape: shape}, p, nil
}
