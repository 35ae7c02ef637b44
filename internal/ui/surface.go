package ui

import (
	"image/color"

	"SketchRoom/internal/render"
	"SketchRoom/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
)

const ellipseSegments = 64

var (
	inkColor   color.Color = color.Black
	paperColor color.Color = color.White
)

// canvasSurface turns a frame into fyne canvas objects positioned in widget
// coordinates.
type canvasSurface struct {
	view    state.Transform
	objects []fyne.CanvasObject
}

func (s *canvasSurface) screen(p state.Point) fyne.Position {
	sp := s.view.ToScreen(p.X, p.Y)
	return fyne.NewPos(float32(sp.X), float32(sp.Y))
}

func (s *canvasSurface) SetTransform(view state.Transform) { s.view = view }

func (s *canvasSurface) Clear(visible state.Box) {
	bg := canvas.NewRectangle(paperColor)
	bg.Move(s.screen(state.Point{X: visible.Min.X, Y: visible.Min.Y}))
	bg.Resize(fyne.NewSize(
		float32(visible.Width()*s.view.Scale),
		float32(visible.Height()*s.view.Scale),
	))
	s.objects = append(s.objects[:0], bg)
}

func (s *canvasSurface) StrokeRect(b state.Box) {
	r := canvas.NewRectangle(color.Transparent)
	r.StrokeColor = inkColor
	r.StrokeWidth = render.StrokeWidth
	r.Move(s.screen(state.Point{X: b.Min.X, Y: b.Min.Y}))
	r.Resize(fyne.NewSize(float32(b.Width()*s.view.Scale), float32(b.Height()*s.view.Scale)))
	s.objects = append(s.objects, r)
}

func (s *canvasSurface) StrokeEllipse(c state.Point, rx, ry float64) {
	s.StrokePolyline(render.EllipsePoints(c, rx, ry, ellipseSegments), true)
}

func (s *canvasSurface) line(a, b state.Point) {
	l := canvas.NewLine(inkColor)
	l.StrokeWidth = render.StrokeWidth
	l.Position1 = s.screen(a)
	l.Position2 = s.screen(b)
	s.objects = append(s.objects, l)
}

func (s *canvasSurface) StrokePolyline(points []state.Point, closed bool) {
	for i := 1; i < len(points); i++ {
		s.line(points[i-1], points[i])
	}
	if closed && len(points) > 2 {
		s.line(points[len(points)-1], points[0])
	}
}

// FillPolygon rasterises the polygon over its screen bounding box and
// strokes the outline so thin heads keep their edges. fyne has no polygon
// primitive.
func (s *canvasSurface) FillPolygon(points []state.Point) {
	if len(points) < 3 {
		return
	}
	poly := make([]fyne.Position, len(points))
	for i, p := range points {
		poly[i] = s.screen(p)
	}
	min, max := poly[0], poly[0]
	for _, p := range poly[1:] {
		min = fyne.NewPos(fmin(min.X, p.X), fmin(min.Y, p.Y))
		max = fyne.NewPos(fmax(max.X, p.X), fmax(max.Y, p.Y))
	}
	size := fyne.NewSize(max.X-min.X, max.Y-min.Y)
	if size.Width > 0 && size.Height > 0 {
		fill := canvas.NewRasterWithPixels(func(x, y, w, h int) color.Color {
			at := fyne.NewPos(
				min.X+(float32(x)+0.5)*size.Width/float32(w),
				min.Y+(float32(y)+0.5)*size.Height/float32(h),
			)
			if insidePolygon(poly, at) {
				return inkColor
			}
			return color.Transparent
		})
		fill.Move(min)
		fill.Resize(size)
		s.objects = append(s.objects, fill)
	}
	s.StrokePolyline(points, true)
}

// insidePolygon is the even-odd rule.
func insidePolygon(poly []fyne.Position, p fyne.Position) bool {
	in := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) && p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}

func fmin(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func fmax(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// paintObjects renders a frame into a fresh object list.
func paintObjects(f render.Frame) []fyne.CanvasObject {
	s := &canvasSurface{}
	f.Paint(s)
	return s.objects
}
