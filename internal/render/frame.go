// Package render paints the shape log onto a drawing surface. Every frame is
// a full redraw: the visible world rectangle is cleared and each shape is
// drawn in log order, followed by the in-progress draft if there is one.
package render

import (
	"SketchRoom/internal/state"
)

// StrokeWidth is the uniform stroke width, in screen units.
const StrokeWidth = 2.0

// Surface is a drawing target. Coordinates passed to the drawing calls are
// in world space; the surface applies the transform set by SetTransform.
type Surface interface {
	SetTransform(view state.Transform)
	Clear(visible state.Box)
	StrokeRect(box state.Box)
	StrokeEllipse(center state.Point, rx, ry float64)
	StrokePolyline(points []state.Point, closed bool)
	FillPolygon(points []state.Point)
}

// Frame is everything needed to redraw a viewport.
type Frame struct {
	View   state.Transform
	Width  float64
	Height float64
	Shapes []state.Shape
	Draft  state.Shape
}

// Visible is the world rectangle covered by the frame's viewport.
func (f Frame) Visible() state.Box {
	return f.View.Visible(f.Width, f.Height)
}

// Paint redraws the whole frame onto s.
func (f Frame) Paint(s Surface) {
	s.SetTransform(f.View)
	s.Clear(f.Visible())
	for _, shape := range f.Shapes {
		Draw(s, shape)
	}
	if f.Draft != nil {
		Draw(s, f.Draft)
	}
}

// Draw paints a single shape.
func Draw(s Surface, shape state.Shape) {
	switch v := shape.(type) {
	case state.Rect:
		s.StrokeRect(v.Box())
	case state.Diamond:
		d := DiamondVertices(v.Box())
		s.StrokePolyline(d[:], true)
	case state.Circle:
		b := v.Box()
		s.StrokeEllipse(b.Center(), b.Width()/2, b.Height()/2)
	case state.Line:
		s.StrokePolyline(endpoints(v.Segment), false)
	case state.Arrow:
		s.StrokePolyline(endpoints(v.Segment), false)
		head := ArrowHead(v.Segment)
		s.FillPolygon(head[:])
	case state.Pencil:
		if len(v.Points) < 2 {
			return
		}
		s.StrokePolyline(v.Points, false)
	}
}

func endpoints(seg state.Segment) []state.Point {
	return []state.Point{{X: seg.StartX, Y: seg.StartY}, {X: seg.EndX, Y: seg.EndY}}
}
