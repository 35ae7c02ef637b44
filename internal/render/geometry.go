package render

import (
	"math"

	"SketchRoom/internal/state"
)

const (
	ArrowHeadLength = 10.0
	ArrowHeadSpread = math.Pi / 6
)

// DiamondVertices returns the edge midpoints of b in top, right, bottom,
// left order.
func DiamondVertices(b state.Box) [4]state.Point {
	c := b.Center()
	return [4]state.Point{
		{X: c.X, Y: b.Min.Y},
		{X: b.Max.X, Y: c.Y},
		{X: c.X, Y: b.Max.Y},
		{X: b.Min.X, Y: c.Y},
	}
}

// ArrowHead returns the triangle at the end of seg: the tip followed by the
// two barbs.
func ArrowHead(seg state.Segment) [3]state.Point {
	angle := math.Atan2(seg.EndY-seg.StartY, seg.EndX-seg.StartX)
	tip := state.Point{X: seg.EndX, Y: seg.EndY}
	barb := func(a float64) state.Point {
		return state.Point{
			X: tip.X - ArrowHeadLength*math.Cos(a),
			Y: tip.Y - ArrowHeadLength*math.Sin(a),
		}
	}
	return [3]state.Point{tip, barb(angle - ArrowHeadSpread), barb(angle + ArrowHeadSpread)}
}

// EllipsePoints approximates an ellipse with n vertices, for surfaces that
// have no ellipse primitive.
func EllipsePoints(center state.Point, rx, ry float64, n int) []state.Point {
	if n < 3 {
		n = 3
	}
	pts := make([]state.Point, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = state.Point{X: center.X + rx*math.Cos(a), Y: center.Y + ry*math.Sin(a)}
	}
	return pts
}
