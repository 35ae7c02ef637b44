// Package engine drives a room's drawing surface. Input, network and zoom
// events are fed through Step one at a time; the Engine owns the shape log
// and carries out the effects Step asks for.
package engine

import (
	"context"
	"errors"
	"log"
	"sync"

	"SketchRoom/internal/render"
	"SketchRoom/internal/state"

	"github.com/segmentio/ksuid"
)

var (
	ErrAttached  = errors.New("engine already attached")
	ErrDestroyed = errors.New("engine destroyed")
)

// Canvas is the surface an engine draws frames onto.
type Canvas interface {
	Draw(f render.Frame)
}

// Sender takes locally committed shapes for outbound transmission. The
// entry's ID is the message id peers and the history will report back.
type Sender interface {
	Publish(e state.Entry)
}

// Input is a source of pointer, wheel and keyboard events.
type Input interface {
	Subscribe(func(Event)) (unsubscribe func())
}

// Inbound is a source of shapes committed by other participants.
type Inbound interface {
	Subscribe(func(state.Entry)) (unsubscribe func())
}

// History fetches the room's previously committed shapes, oldest first.
type History interface {
	History(ctx context.Context) ([]state.Entry, error)
}

type Engine struct {
	mu     sync.Mutex
	st     State
	store  *state.Store
	canvas Canvas
	sender Sender
	onZoom func(scale float64)
	newID  func() string

	attached bool
	closed   bool
	detach   func()
}

// New returns an idle engine. sender may be nil for an offline board.
func New(store *state.Store, canvas Canvas, sender Sender, width, height float64) *Engine {
	if store == nil {
		store = state.NewStore()
	}
	return &Engine{
		st:     NewState(width, height),
		store:  store,
		canvas: canvas,
		sender: sender,
		newID:  func() string { return ksuid.New().String() },
	}
}

// Attach subscribes the engine to its input and inbound sources and returns
// a handle that removes every subscription. The handle is safe to call more
// than once. Either source may be nil.
func (e *Engine) Attach(input Input, inbound Inbound) (func(), error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrDestroyed
	}
	if e.attached {
		return nil, ErrAttached
	}
	e.attached = true

	var stops []func()
	if input != nil {
		stops = append(stops, input.Subscribe(e.Dispatch))
	}
	if inbound != nil {
		stops = append(stops, inbound.Subscribe(func(in state.Entry) {
			e.Dispatch(ShapeReceived{Shape: in.Shape, ID: in.ID})
		}))
	}

	var once sync.Once
	detach := func() {
		once.Do(func() {
			e.mu.Lock()
			e.closed = true
			e.mu.Unlock()
			for _, stop := range stops {
				stop()
			}
			log.Printf("[ENGINE] Detached %d listeners", len(stops))
		})
	}
	e.detach = detach
	log.Printf("[ENGINE] Attached %d listeners", len(stops))
	return detach, nil
}

// Destroy releases every listener registered by Attach. After Destroy the
// engine ignores all events.
func (e *Engine) Destroy() {
	e.mu.Lock()
	detach := e.detach
	e.closed = true
	e.mu.Unlock()
	if detach != nil {
		detach()
	}
}

// Bootstrap fetches room history in the background and merges it into the
// log. A failed fetch leaves the board empty; a cancelled one changes
// nothing.
func (e *Engine) Bootstrap(ctx context.Context, h History) {
	go func() {
		entries, err := h.History(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[ENGINE] History unavailable, starting empty: %v", err)
			entries = nil
		}
		e.Dispatch(HistoryLoaded{entries})
	}()
}

// OnZoomChange registers the zoom-level observer. fn runs inside Dispatch and
// must not call back into the engine.
func (e *Engine) OnZoomChange(fn func(scale float64)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onZoom = fn
}

func (e *Engine) SetTool(t Tool) { e.Dispatch(SelectTool{t}) }
func (e *Engine) ZoomIn()        { e.Dispatch(ZoomIn{}) }
func (e *Engine) ZoomOut()       { e.Dispatch(ZoomOut{}) }
func (e *Engine) ResetZoom()     { e.Dispatch(ResetZoom{}) }

// Tool returns the active tool.
func (e *Engine) Tool() Tool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.Tool
}

// View returns the current transform.
func (e *Engine) View() state.Transform {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.View
}

func (e *Engine) Store() *state.Store { return e.store }

// Dispatch runs one event to completion. Events are serialised, so Step and
// its effects never interleave.
func (e *Engine) Dispatch(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	next, effects := Step(e.st, ev)
	e.st = next
	var commitID string
	for _, eff := range effects {
		e.apply(eff, &commitID)
	}
}

// stamp returns the message id for an effect, minting one per local commit.
func (e *Engine) stamp(id string, commitID *string) string {
	if id != "" {
		return id
	}
	if *commitID == "" {
		*commitID = e.newID()
	}
	return *commitID
}

func (e *Engine) apply(eff Effect, commitID *string) {
	switch v := eff.(type) {
	case AppendShape:
		if _, ok := e.store.Add(state.Entry{ID: e.stamp(v.ID, commitID), Shape: v.Shape}); !ok {
			log.Printf("[ENGINE] Ignoring duplicate %s %s", v.Shape.Kind(), v.ID)
		}
	case SendShape:
		if e.sender != nil {
			e.sender.Publish(state.Entry{ID: e.stamp(v.ID, commitID), Shape: v.Shape})
		}
	case MergeHistory:
		if e.store.Bootstrap(v.Entries) {
			log.Printf("[ENGINE] Loaded %d shapes from history", len(v.Entries))
		}
	case Redraw:
		e.redraw()
	case NotifyZoom:
		if e.onZoom != nil {
			e.onZoom(v.Scale)
		}
	}
}

// Frame returns what a redraw would paint right now.
func (e *Engine) Frame() render.Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frame()
}

func (e *Engine) frame() render.Frame {
	return render.Frame{
		View:   e.st.View,
		Width:  e.st.Width,
		Height: e.st.Height,
		Shapes: e.store.Shapes(),
		Draft:  e.st.Draft.Shape(),
	}
}

func (e *Engine) redraw() {
	if e.canvas == nil {
		return
	}
	e.canvas.Draw(e.frame())
}
