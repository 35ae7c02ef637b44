package state

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	MinScale = 0.2
	MaxScale = 10.0
	ZoomStep = 1.1
)

// Transform maps world coordinates to screen coordinates:
// screen = world*Scale + Offset.
type Transform struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// Identity is the unscaled, unpanned view.
func Identity() Transform {
	return Transform{Scale: 1}
}

func (t Transform) offset() r2.Vec { return r2.Vec{X: t.OffsetX, Y: t.OffsetY} }

// ToWorld converts a screen point to world space.
func (t Transform) ToWorld(sx, sy float64) Point {
	w := r2.Scale(1/t.Scale, r2.Sub(r2.Vec{X: sx, Y: sy}, t.offset()))
	return Point{X: w.X, Y: w.Y}
}

// ToScreen converts a world point to screen space.
func (t Transform) ToScreen(wx, wy float64) Point {
	s := r2.Add(r2.Scale(t.Scale, r2.Vec{X: wx, Y: wy}), t.offset())
	return Point{X: s.X, Y: s.Y}
}

// Visible returns the world-space rectangle shown by a viewport of the given
// screen size.
func (t Transform) Visible(width, height float64) Box {
	tl := t.ToWorld(0, 0)
	br := t.ToWorld(width, height)
	return NewBox(tl.X, tl.Y, br.X, br.Y)
}

// ClampScale limits s to [MinScale, MaxScale].
func ClampScale(s float64) float64 {
	return math.Max(MinScale, math.Min(MaxScale, s))
}

// ZoomBy multiplies the scale by factor, clamped, keeping the world point
// under the screen anchor fixed.
func (t Transform) ZoomBy(factor, anchorX, anchorY float64) Transform {
	return t.zoomTo(t.Scale*factor, anchorX, anchorY)
}

func (t Transform) zoomTo(scale, anchorX, anchorY float64) Transform {
	world := t.ToWorld(anchorX, anchorY)
	next := Transform{Scale: ClampScale(scale)}
	next.OffsetX = anchorX - world.X*next.Scale
	next.OffsetY = anchorY - world.Y*next.Scale
	return next
}

// Pan shifts the view by a screen-space delta.
func (t Transform) Pan(dx, dy float64) Transform {
	t.OffsetX += dx
	t.OffsetY += dy
	return t
}

// Reset restores scale 1 while keeping the world point at the centre of a
// viewport of the given size where it is.
func (t Transform) Reset(viewWidth, viewHeight float64) Transform {
	return t.zoomTo(1, viewWidth/2, viewHeight/2)
}
