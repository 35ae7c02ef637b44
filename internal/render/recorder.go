package render

import (
	"fmt"
	"strings"

	"SketchRoom/internal/state"
)

type OpKind string

const (
	OpTransform OpKind = "transform"
	OpClear     OpKind = "clear"
	OpRect      OpKind = "rect"
	OpEllipse   OpKind = "ellipse"
	OpPolyline  OpKind = "polyline"
	OpPolygon   OpKind = "polygon"
)

// Op is one recorded surface call.
type Op struct {
	Kind   OpKind
	View   state.Transform
	Box    state.Box
	Center state.Point
	RX, RY float64
	Points []state.Point
	Closed bool
}

// Recorder is a Surface that keeps the calls made on it.
type Recorder struct {
	Ops []Op
}

var _ Surface = (*Recorder)(nil)

func (r *Recorder) SetTransform(view state.Transform) {
	r.Ops = append(r.Ops, Op{Kind: OpTransform, View: view})
}

func (r *Recorder) Clear(visible state.Box) {
	r.Ops = append(r.Ops, Op{Kind: OpClear, Box: visible})
}

func (r *Recorder) StrokeRect(box state.Box) {
	r.Ops = append(r.Ops, Op{Kind: OpRect, Box: box})
}

func (r *Recorder) StrokeEllipse(center state.Point, rx, ry float64) {
	r.Ops = append(r.Ops, Op{Kind: OpEllipse, Center: center, RX: rx, RY: ry})
}

func (r *Recorder) StrokePolyline(points []state.Point, closed bool) {
	r.Ops = append(r.Ops, Op{Kind: OpPolyline, Points: append([]state.Point(nil), points...), Closed: closed})
}

func (r *Recorder) FillPolygon(points []state.Point) {
	r.Ops = append(r.Ops, Op{Kind: OpPolygon, Points: append([]state.Point(nil), points...)})
}

// Drawn returns the recorded ops other than transform and clear.
func (r *Recorder) Drawn() []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind != OpTransform && op.Kind != OpClear {
			out = append(out, op)
		}
	}
	return out
}

func (r *Recorder) Reset() { r.Ops = r.Ops[:0] }

// String renders the op log one call per line, for debugging.
func (r *Recorder) String() string {
	var b strings.Builder
	for _, op := range r.Ops {
		switch op.Kind {
		case OpTransform:
			fmt.Fprintf(&b, "%s scale=%g offset=(%g,%g)\n", op.Kind, op.View.Scale, op.View.OffsetX, op.View.OffsetY)
		case OpClear, OpRect:
			fmt.Fprintf(&b, "%s (%g,%g %gx%g)\n", op.Kind, op.Box.X(), op.Box.Y(), op.Box.Width(), op.Box.Height())
		case OpEllipse:
			fmt.Fprintf(&b, "%s c=(%g,%g) r=(%g,%g)\n", op.Kind, op.Center.X, op.Center.Y, op.RX, op.RY)
		default:
			fmt.Fprintf(&b, "%s n=%d closed=%v\n", op.Kind, len(op.Points), op.Closed)
		}
	}
	return b.String()
}
