package engine

import (
	"SketchRoom/internal/state"
)

// Event is an input to Step. Pointer and wheel coordinates are in screen
// space.
type Event interface{ event() }

type (
	PointerDown struct{ X, Y float64 }
	PointerMove struct{ X, Y float64 }
	PointerUp   struct{ X, Y float64 }

	// Wheel zooms in for positive DeltaY and out for negative, anchored at
	// the pointer.
	Wheel struct{ X, Y, DeltaY float64 }

	SelectTool struct{ Tool Tool }
	ZoomIn     struct{}
	ZoomOut    struct{}
	ResetZoom  struct{}
	Resize     struct{ Width, Height float64 }

	// ShapeReceived carries a peer's shape and the message id it came under.
	ShapeReceived struct {
		Shape state.Shape
		ID    string
	}
	HistoryLoaded struct{ Entries []state.Entry }
)

func (PointerDown) event()   {}
func (PointerMove) event()   {}
func (PointerUp) event()     {}
func (Wheel) event()         {}
func (SelectTool) event()    {}
func (ZoomIn) event()        {}
func (ZoomOut) event()       {}
func (ResetZoom) event()     {}
func (Resize) event()        {}
func (ShapeReceived) event() {}
func (HistoryLoaded) event() {}

// Effect is an output of Step, carried out by the Engine in order.
type Effect interface{ effect() }

type (
	// AppendShape and SendShape with an empty ID are a local commit; the
	// Engine stamps both with the same fresh message id.
	AppendShape struct {
		Shape state.Shape
		ID    string
	}
	SendShape struct {
		Shape state.Shape
		ID    string
	}
	MergeHistory struct{ Entries []state.Entry }
	Redraw       struct{}
	NotifyZoom   struct{ Scale float64 }
)

func (AppendShape) effect()  {}
func (SendShape) effect()    {}
func (MergeHistory) effect() {}
func (Redraw) effect()       {}
func (NotifyZoom) effect()   {}

// Draft is the transient gesture state between pointer-down and pointer-up.
type Draft struct {
	Active bool
	// Tool is captured at pointer-down and governs the whole gesture.
	Tool Tool

	StartX, StartY     float64 // world
	CurrentX, CurrentY float64 // world, latest pointer position
	Path               []state.Point

	LastPanX, LastPanY float64 // screen, hand tool only
}

// State is the engine's whole mutable state apart from the shape log.
type State struct {
	Tool   Tool
	View   state.Transform
	Width  float64
	Height float64
	Draft  Draft
}

// NewState returns the idle state for a viewport of the given size.
func NewState(width, height float64) State {
	return State{
		Tool:   ToolPencil,
		View:   state.Identity(),
		Width:  width,
		Height: height,
	}
}

// Step applies one event and returns the next state and the effects to run.
// It never mutates its argument.
func Step(s State, ev Event) (State, []Effect) {
	switch e := ev.(type) {
	case PointerDown:
		return pointerDown(s, e)
	case PointerMove:
		return pointerMove(s, e)
	case PointerUp:
		return pointerUp(s, e)
	case Wheel:
		switch {
		case e.DeltaY > 0:
			return zoom(s, state.ZoomStep, e.X, e.Y)
		case e.DeltaY < 0:
			return zoom(s, 1/state.ZoomStep, e.X, e.Y)
		}
		return s, nil
	case ZoomIn:
		return zoom(s, state.ZoomStep, s.Width/2, s.Height/2)
	case ZoomOut:
		return zoom(s, 1/state.ZoomStep, s.Width/2, s.Height/2)
	case ResetZoom:
		s.View = s.View.Reset(s.Width, s.Height)
		return s, viewChanged(s)
	case SelectTool:
		s.Tool = e.Tool
		return s, nil
	case Resize:
		s.Width, s.Height = e.Width, e.Height
		return s, []Effect{Redraw{}}
	case ShapeReceived:
		if e.Shape == nil {
			return s, nil
		}
		return s, []Effect{AppendShape{Shape: e.Shape, ID: e.ID}, Redraw{}}
	case HistoryLoaded:
		return s, []Effect{MergeHistory{e.Entries}, Redraw{}}
	}
	return s, nil
}

func zoom(s State, factor, ax, ay float64) (State, []Effect) {
	s.View = s.View.ZoomBy(factor, ax, ay)
	return s, viewChanged(s)
}

func viewChanged(s State) []Effect {
	return []Effect{Redraw{}, NotifyZoom{s.View.Scale}}
}

func pointerDown(s State, e PointerDown) (State, []Effect) {
	if s.Draft.Active {
		return s, nil
	}
	d := Draft{Active: true, Tool: s.Tool}
	if s.Tool == ToolHand {
		d.LastPanX, d.LastPanY = e.X, e.Y
		s.Draft = d
		return s, nil
	}
	w := s.View.ToWorld(e.X, e.Y)
	d.StartX, d.StartY = w.X, w.Y
	d.CurrentX, d.CurrentY = w.X, w.Y
	if s.Tool == ToolPencil {
		d.Path = []state.Point{w}
	}
	s.Draft = d
	return s, nil
}

func pointerMove(s State, e PointerMove) (State, []Effect) {
	if !s.Draft.Active {
		return s, nil
	}
	d := s.Draft
	if d.Tool == ToolHand {
		s.View = s.View.Pan(e.X-d.LastPanX, e.Y-d.LastPanY)
		d.LastPanX, d.LastPanY = e.X, e.Y
		s.Draft = d
		return s, viewChanged(s)
	}
	w := s.View.ToWorld(e.X, e.Y)
	d.CurrentX, d.CurrentY = w.X, w.Y
	if d.Tool == ToolPencil {
		path := make([]state.Point, len(d.Path), len(d.Path)+1)
		copy(path, d.Path)
		d.Path = append(path, w)
	}
	s.Draft = d
	return s, []Effect{Redraw{}}
}

func pointerUp(s State, e PointerUp) (State, []Effect) {
	if !s.Draft.Active {
		return s, nil
	}
	d := s.Draft
	s.Draft = Draft{}
	if d.Tool == ToolHand {
		return s, nil
	}
	w := s.View.ToWorld(e.X, e.Y)
	d.CurrentX, d.CurrentY = w.X, w.Y
	shape := d.Shape()
	if shape == nil {
		return s, nil
	}
	return s, []Effect{AppendShape{Shape: shape}, SendShape{Shape: shape}, Redraw{}}
}

// Shape builds the shape the draft currently describes, using the same
// geometry for the live preview and the commit. It returns nil for an
// inactive draft or the hand tool.
func (d Draft) Shape() state.Shape {
	if !d.Active {
		return nil
	}
	kind, ok := d.Tool.Kind()
	if !ok {
		return nil
	}
	switch kind {
	case state.KindRect, state.KindCircle, state.KindDiamond:
		shape, err := state.NewFrameShape(kind, d.StartX, d.StartY, d.CurrentX, d.CurrentY)
		if err != nil {
			return nil
		}
		return shape
	case state.KindLine, state.KindArrow:
		shape, err := state.NewSegmentShape(kind, d.StartX, d.StartY, d.CurrentX, d.CurrentY)
		if err != nil {
			return nil
		}
		return shape
	case state.KindPencil:
		return state.Pencil{Points: append([]state.Point(nil), d.Path...)}
	}
	return nil
}
