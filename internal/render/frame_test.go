package render

import (
	"math"
	"testing"

	"SketchRoom/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaintClearsVisibleThenDrawsInOrder(t *testing.T) {
	view := state.Transform{Scale: 2, OffsetX: -100, OffsetY: 0}
	f := Frame{
		View:   view,
		Width:  800,
		Height: 600,
		Shapes: []state.Shape{
			state.Rect{Frame: state.Frame{X: 0, Y: 0, Width: 10, Height: 10}},
			state.Line{Segment: state.Segment{EndX: 5, EndY: 5}},
		},
		Draft: state.Circle{Frame: state.Frame{Width: 4, Height: 2}},
	}

	var r Recorder
	f.Paint(&r)

	require.Len(t, r.Ops, 5)
	assert.Equal(t, OpTransform, r.Ops[0].Kind)
	assert.Equal(t, view, r.Ops[0].View)
	assert.Equal(t, OpClear, r.Ops[1].Kind)
	assert.Equal(t, view.Visible(800, 600), r.Ops[1].Box)
	assert.Equal(t, OpRect, r.Ops[2].Kind)
	assert.Equal(t, OpPolyline, r.Ops[3].Kind)
	assert.Equal(t, OpEllipse, r.Ops[4].Kind)
	assert.NotEmpty(t, r.String())
}

func TestRectRendersSameBoxInEitherDragDirection(t *testing.T) {
	tests := []struct {
		name  string
		frame state.Frame
	}{
		{"down right", state.Frame{X: 10, Y: 10, Width: 40, Height: 20}},
		{"up left", state.Frame{X: 50, Y: 30, Width: -40, Height: -20}},
		{"down left", state.Frame{X: 50, Y: 10, Width: -40, Height: 20}},
		{"up right", state.Frame{X: 10, Y: 30, Width: 40, Height: -20}},
	}
	want := state.NewBox(10, 10, 50, 30)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Recorder
			Draw(&r, state.Rect{Frame: tt.frame})
			require.Len(t, r.Ops, 1)
			assert.Equal(t, want, r.Ops[0].Box)
			assert.Equal(t, 10.0, r.Ops[0].Box.X())
			assert.Equal(t, 40.0, r.Ops[0].Box.Width())
		})
	}
}

func TestDiamondIsClosedEdgeMidpoints(t *testing.T) {
	var r Recorder
	Draw(&r, state.Diamond{Frame: state.Frame{X: 40, Y: 20, Width: -40, Height: -20}})

	require.Len(t, r.Ops, 1)
	op := r.Ops[0]
	assert.Equal(t, OpPolyline, op.Kind)
	assert.True(t, op.Closed)
	assert.Equal(t, []state.Point{{X: 20, Y: 0}, {X: 40, Y: 10}, {X: 20, Y: 20}, {X: 0, Y: 10}}, op.Points)
}

func TestCircleIsInscribedEllipse(t *testing.T) {
	var r Recorder
	Draw(&r, state.Circle{Frame: state.Frame{X: 10, Y: 10, Width: -8, Height: 4}})

	require.Len(t, r.Ops, 1)
	assert.Equal(t, state.Point{X: 6, Y: 12}, r.Ops[0].Center)
	assert.Equal(t, 4.0, r.Ops[0].RX)
	assert.Equal(t, 2.0, r.Ops[0].RY)
}

func TestArrowDrawsShaftAndHead(t *testing.T) {
	var r Recorder
	Draw(&r, state.Arrow{Segment: state.Segment{StartX: 0, StartY: 0, EndX: 100, EndY: 0}})

	require.Len(t, r.Ops, 2)
	assert.Equal(t, OpPolyline, r.Ops[0].Kind)
	assert.False(t, r.Ops[0].Closed)
	assert.Equal(t, OpPolygon, r.Ops[1].Kind)

	head := r.Ops[1].Points
	require.Len(t, head, 3)
	assert.Equal(t, state.Point{X: 100, Y: 0}, head[0])
	dx := ArrowHeadLength * math.Cos(math.Pi/6)
	dy := ArrowHeadLength * math.Sin(math.Pi/6)
	assert.InDelta(t, 100-dx, head[1].X, 1e-9)
	assert.InDelta(t, dy, head[1].Y, 1e-9)
	assert.InDelta(t, 100-dx, head[2].X, 1e-9)
	assert.InDelta(t, -dy, head[2].Y, 1e-9)
}

func TestArrowHeadFollowsDirection(t *testing.T) {
	head := ArrowHead(state.Segment{StartX: 0, StartY: 0, EndX: 0, EndY: 50})
	// pointing down: both barbs sit above the tip
	assert.Less(t, head[1].Y, 50.0)
	assert.Less(t, head[2].Y, 50.0)
	assert.InDelta(t, head[1].Y, head[2].Y, 1e-9)
}

func TestPencilNeedsTwoPoints(t *testing.T) {
	tests := []struct {
		name   string
		points []state.Point
		ops    int
	}{
		{"empty", nil, 0},
		{"one point", []state.Point{{X: 1, Y: 1}}, 0},
		{"two points", []state.Point{{X: 1, Y: 1}, {X: 2, Y: 2}}, 1},
		{"many", []state.Point{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 1}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Recorder
			assert.NotPanics(t, func() { Draw(&r, state.Pencil{Points: tt.points}) })
			assert.Len(t, r.Ops, tt.ops)
		})
	}
}

func TestEllipsePoints(t *testing.T) {
	pts := EllipsePoints(state.Point{X: 5, Y: 5}, 2, 1, 4)
	require.Len(t, pts, 4)
	assert.InDelta(t, 7, pts[0].X, 1e-9)
	assert.InDelta(t, 6, pts[1].Y, 1e-9)
	assert.Len(t, EllipsePoints(state.Point{}, 1, 1, 1), 3)
}
