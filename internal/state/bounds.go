package state

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Box is an axis-aligned rectangle in world space with Min <= Max.
type Box struct {
	r2.Box
}

// NewBox returns the box spanned by two corners given in any order.
func NewBox(x0, y0, x1, y1 float64) Box {
	return Box{r2.Box{
		Min: r2.Vec{X: math.Min(x0, x1), Y: math.Min(y0, y1)},
		Max: r2.Vec{X: math.Max(x0, x1), Y: math.Max(y0, y1)},
	}}
}

func (b Box) X() float64      { return b.Min.X }
func (b Box) Y() float64      { return b.Min.Y }
func (b Box) Width() float64  { return b.Max.X - b.Min.X }
func (b Box) Height() float64 { return b.Max.Y - b.Min.Y }

func (b Box) Center() Point {
	c := r2.Scale(0.5, r2.Add(b.Min, b.Max))
	return Point{X: c.X, Y: c.Y}
}

// Extend grows the box to cover p.
func (b Box) Extend(p Point) Box {
	return NewBox(
		math.Min(b.Min.X, p.X), math.Min(b.Min.Y, p.Y),
		math.Max(b.Max.X, p.X), math.Max(b.Max.Y, p.Y),
	)
}

// Union returns the smallest box covering both.
func (b Box) Union(o Box) Box {
	return NewBox(
		math.Min(b.Min.X, o.Min.X), math.Min(b.Min.Y, o.Min.Y),
		math.Max(b.Max.X, o.Max.X), math.Max(b.Max.Y, o.Max.Y),
	)
}

// Pad grows the box by d on every side.
func (b Box) Pad(d float64) Box {
	return NewBox(b.Min.X-d, b.Min.Y-d, b.Max.X+d, b.Max.Y+d)
}

// BoundsOf returns the union of the bounds of every shape, and false when
// there is nothing to cover.
func BoundsOf(shapes []Shape) (Box, bool) {
	var (
		out Box
		ok  bool
	)
	for _, s := range shapes {
		if p, isPencil := s.(Pencil); isPencil && len(p.Points) == 0 {
			continue
		}
		if !ok {
			out, ok = s.Bounds(), true
			continue
		}
		out = out.Union(s.Bounds())
	}
	return out, ok
}
