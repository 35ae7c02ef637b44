// Package export renders the whole shape log to files: PDF through gofpdf
// and PNG through gg.
package export

import (
	"math"

	"SketchRoom/internal/render"
	"SketchRoom/internal/state"
)

// Margin is the world-space padding kept around the drawing.
const Margin = 20.0

// Fit returns the transform that centers the padded bounds of shapes in a
// width x height page. The scale never exceeds maxScale. An empty log maps to
// the identity.
func Fit(shapes []state.Shape, width, height, maxScale float64) state.Transform {
	b, ok := state.BoundsOf(shapes)
	if !ok || width <= 0 || height <= 0 {
		return state.Identity()
	}
	b = b.Pad(Margin)

	scale := math.Min(width/b.Width(), height/b.Height())
	if maxScale > 0 && scale > maxScale {
		scale = maxScale
	}
	return state.Transform{
		Scale:   scale,
		OffsetX: (width-b.Width()*scale)/2 - b.Min.X*scale,
		OffsetY: (height-b.Height()*scale)/2 - b.Min.Y*scale,
	}
}

func frameFor(shapes []state.Shape, width, height, maxScale float64) render.Frame {
	return render.Frame{
		View:   Fit(shapes, width, height, maxScale),
		Width:  width,
		Height: height,
		Shapes: shapes,
	}
}
