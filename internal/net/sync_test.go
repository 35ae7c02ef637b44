package net

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"SketchRoom/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memChannel struct {
	mu       sync.Mutex
	sent     [][]byte
	handlers []func([]byte)
	failWith error
}

func (m *memChannel) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.sent = append(m.sent, data)
	return nil
}

func (m *memChannel) Subscribe(fn func([]byte)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, fn)
	idx := len(m.handlers) - 1
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.handlers[idx] = nil
	}
}

func (m *memChannel) deliver(data []byte) {
	m.mu.Lock()
	hs := append([]func([]byte){}, m.handlers...)
	m.mu.Unlock()
	for _, h := range hs {
		if h != nil {
			h(data)
		}
	}
}

func chatFrom(t *testing.T, room string, shape state.Shape, clock *state.Clock) []byte {
	t.Helper()
	data, err := EncodeChat(room, state.Entry{Shape: shape}, clock.Tick())
	require.NoError(t, err)
	return data
}

func TestEnvelopeRoundTrip(t *testing.T) {
	clock := state.NewClock()
	shapes := []state.Shape{
		state.Rect{Frame: state.Frame{X: 1, Y: 2, Width: -3, Height: 4}},
		state.Circle{Frame: state.Frame{X: 1, Y: 2, Width: 3, Height: 4}},
		state.Diamond{Frame: state.Frame{X: 0.5, Y: 2, Width: 3, Height: -4}},
		state.Line{Segment: state.Segment{StartX: 1, StartY: 2, EndX: 3, EndY: 4}},
		state.Arrow{Segment: state.Segment{StartX: 9, StartY: 8, EndX: 7, EndY: 6}},
		state.Pencil{Points: []state.Point{{X: 1, Y: 1}, {X: 2, Y: 2}}},
	}
	for _, shape := range shapes {
		t.Run(string(shape.Kind()), func(t *testing.T) {
			data := chatFrom(t, "r1", shape, clock)

			env, err := DecodeEnvelope(data)
			require.NoError(t, err)
			assert.Equal(t, TypeChat, env.Type)
			assert.Equal(t, "r1", env.RoomID)

			got, p, err := DecodePayload(env.Message)
			require.NoError(t, err)
			assert.Equal(t, shape, got.Shape)
			assert.Equal(t, clock.SiteID(), p.Origin)
			assert.NotEmpty(t, p.ID)
			assert.Equal(t, p.ID, got.ID)
		})
	}
}

func TestEnvelopeWireShape(t *testing.T) {
	data := chatFrom(t, "r1", state.Rect{Frame: state.Frame{X: 10, Y: 10, Width: 40, Height: 20}}, state.NewClock())

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "chat", raw["type"])
	assert.Equal(t, "r1", raw["roomId"])

	var inner map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(raw["message"].(string)), &inner))
	assert.JSONEq(t, `{"type":"rect","x":10,"y":10,"width":40,"height":20}`, string(inner["shape"]))

	join, err := JoinEnvelope("r1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"join_room","roomId":"r1"}`, string(join))
}

func TestClientJoinAndPublish(t *testing.T) {
	ch := &memChannel{}
	c := NewClient("r1", nil, ch, nil)

	require.NoError(t, c.Join())
	c.Publish(state.Entry{ID: "2NxcDvJ1nXNzTzVb7kSxu5z1Dqb", Shape: state.Line{}})
	c.Publish(state.Entry{Shape: state.Line{}})

	require.Len(t, ch.sent, 3)
	assert.JSONEq(t, `{"type":"join_room","roomId":"r1"}`, string(ch.sent[0]))
	env, err := DecodeEnvelope(ch.sent[1])
	require.NoError(t, err)
	assert.Equal(t, TypeChat, env.Type)

	got, _, err := DecodePayload(env.Message)
	require.NoError(t, err)
	assert.Equal(t, "2NxcDvJ1nXNzTzVb7kSxu5z1Dqb", got.ID)

	env, err = DecodeEnvelope(ch.sent[2])
	require.NoError(t, err)
	got, _, err = DecodePayload(env.Message)
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID, "entries without an id get a fresh one")
}

func TestClientSubscribeCarriesMessageID(t *testing.T) {
	ch := &memChannel{}
	c := NewClient("r1", nil, ch, nil)

	var got []state.Entry
	c.Subscribe(func(e state.Entry) { got = append(got, e) })

	data, err := EncodeChat("r1", state.Entry{ID: "m-1", Shape: state.Line{}}, state.NewClock().Tick())
	require.NoError(t, err)
	ch.deliver(data)

	assert.Equal(t, []state.Entry{{ID: "m-1", Shape: state.Line{}}}, got)
}

func TestClientPublishFailureIsSwallowed(t *testing.T) {
	ch := &memChannel{failWith: ErrClosed}
	c := NewClient("r1", nil, ch, nil)
	assert.NotPanics(t, func() { c.Publish(state.Entry{Shape: state.Line{}}) })
	assert.ErrorIs(t, c.Join(), ErrClosed)
}

func TestClientSubscribeFiltersAndKeepsOrder(t *testing.T) {
	ch := &memChannel{}
	local := state.NewClock()
	c := NewClient("r1", local, ch, nil)

	var got []state.Shape
	stop := c.Subscribe(func(e state.Entry) { got = append(got, e.Shape) })

	alice, bob := state.NewClock(), state.NewClock()
	a := state.Line{Segment: state.Segment{EndX: 1}}
	b := state.Line{Segment: state.Segment{EndX: 2}}

	ch.deliver(chatFrom(t, "r1", a, alice))
	ch.deliver([]byte(`{not json`))
	ch.deliver([]byte(`{"type":"chat","roomId":"r1","message":"{\"shape\":{\"type\":\"blob\"}}"}`))
	ch.deliver([]byte(`{"type":"join_room","roomId":"r1"}`))
	ch.deliver(chatFrom(t, "other", b, bob))
	ch.deliver(chatFrom(t, "r1", b, local))
	ch.deliver(chatFrom(t, "r1", b, bob))

	assert.Equal(t, []state.Shape{a, b}, got)

	stop()
	ch.deliver(chatFrom(t, "r1", a, alice))
	assert.Len(t, got, 2)
}

func TestDecodeAcceptsLegacyPayload(t *testing.T) {
	c := NewClient("r1", nil, &memChannel{}, nil)
	e, err := c.Decode([]byte(`{"type":"chat","roomId":"r1","message":"{\"shape\":{\"type\":\"pencil\",\"points\":[{\"x\":1,\"y\":2}]}}"}`))
	require.NoError(t, err)
	assert.Equal(t, state.Entry{Shape: state.Pencil{Points: []state.Point{{X: 1, Y: 2}}}}, e)
}

func TestDecodeErrors(t *testing.T) {
	c := NewClient("r1", nil, &memChannel{}, nil)
	tests := []struct {
		name string
		data string
		want error
	}{
		{"no type", `{"roomId":"r1"}`, ErrMalformedEnvelope},
		{"bad payload", `{"type":"chat","roomId":"r1","message":"nope"}`, ErrMalformedEnvelope},
		{"empty payload", `{"type":"chat","roomId":"r1","message":"{}"}`, ErrMalformedEnvelope},
		{"bad shape", `{"type":"chat","roomId":"r1","message":"{\"shape\":{\"type\":\"rect\",\"x\":\"1\"}}"}`, state.ErrMalformedShape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decode([]byte(tt.data))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func historyServer(t *testing.T, messages []string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chats/r1" {
			http.NotFound(w, r)
			return
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		var body HistoryResponse
		for _, m := range messages {
			body.Messages = append(body.Messages, HistoryMessage{Message: m})
		}
		_ = json.NewEncoder(w).Encode(body)
	}))
}

func TestHistoryFetch(t *testing.T) {
	clock := state.NewClock()
	first, err := EncodePayload(state.Entry{ID: "h1", Shape: state.Line{Segment: state.Segment{EndX: 1}}}, clock.Tick())
	require.NoError(t, err)
	second, err := EncodePayload(state.Entry{ID: "h2", Shape: state.Line{Segment: state.Segment{EndX: 2}}}, clock.Tick())
	require.NoError(t, err)

	srv := historyServer(t, []string{first, "garbage", second}, http.StatusOK)
	defer srv.Close()

	entries, err := NewHistoryClient(srv.URL+"/", false).Fetch(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, []state.Entry{
		{ID: "h1", Shape: state.Line{Segment: state.Segment{EndX: 1}}},
		{ID: "h2", Shape: state.Line{Segment: state.Segment{EndX: 2}}},
	}, entries)

	entries, err = NewHistoryClient(srv.URL, true).Fetch(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, []state.Shape{
		state.Line{Segment: state.Segment{EndX: 2}},
		state.Line{Segment: state.Segment{EndX: 1}},
	}, state.ShapesOf(entries))

	c := NewClient("r1", clock, &memChannel{}, NewHistoryClient(srv.URL, false))
	entries, err = c.History(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestHistoryFetchErrors(t *testing.T) {
	srv := historyServer(t, nil, http.StatusInternalServerError)
	defer srv.Close()

	_, err := NewHistoryClient(srv.URL, false).Fetch(context.Background(), "r1")
	assert.Error(t, err)

	_, err = NewClient("r1", nil, &memChannel{}, nil).History(context.Background())
	assert.Error(t, err)

	_, err = NewHistoryClient("http://127.0.0.1:1", false).Fetch(context.Background(), "r1")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrMalformedEnvelope))
}

func TestParseLink(t *testing.T) {
	tests := []struct {
		link    string
		want    Endpoint
		wantErr bool
	}{
		{link: "sketchroom://10.0.0.5:8888/design", want: Endpoint{Host: "10.0.0.5", Port: 8888, Room: "design"}},
		{link: "sketchroom://localhost:9000/", want: Endpoint{Host: "localhost", Port: 9000, Room: DefaultRoom}},
		{link: "sketchroom://localhost:9000", want: Endpoint{Host: "localhost", Port: 9000, Room: DefaultRoom}},
		{link: "http://localhost:9000/x", wantErr: true},
		{link: "sketchroom://localhost/x", wantErr: true},
		{link: "sketchroom://localhost:0/x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			got, err := ParseLink(tt.link)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	ep := Endpoint{Host: "10.0.0.5", Port: 8888, Room: "design"}
	assert.Equal(t, "sketchroom://10.0.0.5:8888/design", ep.Link())
	assert.Equal(t, "ws://10.0.0.5:8888/ws", ep.WebsocketURL())
	assert.Equal(t, "http://10.0.0.5:8888", ep.HistoryURL())
}
