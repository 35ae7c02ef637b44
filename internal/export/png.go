package export

import (
	"errors"
	"fmt"
	"io"
	"log"

	"SketchRoom/internal/render"
	"SketchRoom/internal/state"

	"github.com/gogpu/gg"
)

// PNGSurface rasterizes onto a gg context. Drawing errors are kept and
// reported by Err.
type PNGSurface struct {
	dc   *gg.Context
	view state.Transform
	err  error
}

func NewPNGSurface(dc *gg.Context) *PNGSurface {
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(render.StrokeWidth)
	return &PNGSurface{dc: dc, view: state.Identity()}
}

func (s *PNGSurface) Err() error { return s.err }

func (s *PNGSurface) keep(err error) {
	if err != nil && s.err == nil {
		s.err = err
	}
}

func (s *PNGSurface) screen(p state.Point) state.Point {
	return s.view.ToScreen(p.X, p.Y)
}

func (s *PNGSurface) SetTransform(view state.Transform) { s.view = view }

func (s *PNGSurface) Clear(state.Box) {
	s.dc.ClearWithColor(gg.White)
	s.dc.SetRGB(0, 0, 0)
}

func (s *PNGSurface) StrokeRect(b state.Box) {
	p := s.screen(state.Point{X: b.Min.X, Y: b.Min.Y})
	s.dc.DrawRectangle(p.X, p.Y, b.Width()*s.view.Scale, b.Height()*s.view.Scale)
	s.keep(s.dc.Stroke())
}

func (s *PNGSurface) StrokeEllipse(c state.Point, rx, ry float64) {
	p := s.screen(c)
	s.dc.DrawEllipse(p.X, p.Y, rx*s.view.Scale, ry*s.view.Scale)
	s.keep(s.dc.Stroke())
}

func (s *PNGSurface) trace(points []state.Point, closed bool) {
	for i, pt := range points {
		p := s.screen(pt)
		if i == 0 {
			s.dc.MoveTo(p.X, p.Y)
			continue
		}
		s.dc.LineTo(p.X, p.Y)
	}
	if closed {
		s.dc.ClosePath()
	}
}

func (s *PNGSurface) StrokePolyline(points []state.Point, closed bool) {
	if len(points) < 2 {
		return
	}
	s.trace(points, closed)
	s.keep(s.dc.Stroke())
}

func (s *PNGSurface) FillPolygon(points []state.Point) {
	if len(points) < 3 {
		return
	}
	s.trace(points, true)
	s.keep(s.dc.Fill())
}

// RenderPNG rasterizes shapes into a width x height context. The caller
// closes it.
func RenderPNG(shapes []state.Shape, width, height int) (*gg.Context, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New("png size must be positive")
	}
	dc := gg.NewContext(width, height)
	s := NewPNGSurface(dc)
	frameFor(shapes, float64(width), float64(height), 1).Paint(s)
	if err := s.Err(); err != nil {
		dc.Close()
		return nil, fmt.Errorf("render png: %w", err)
	}
	return dc, nil
}

// WritePNG encodes shapes as a PNG image to w.
func WritePNG(w io.Writer, shapes []state.Shape, width, height int) error {
	dc, err := RenderPNG(shapes, width, height)
	if err != nil {
		return err
	}
	defer dc.Close()
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// SavePNG writes shapes to a PNG file.
func SavePNG(path string, shapes []state.Shape, width, height int) error {
	dc, err := RenderPNG(shapes, width, height)
	if err != nil {
		return err
	}
	defer dc.Close()
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("save png %s: %w", path, err)
	}
	log.Printf("[EXPORT] Wrote %d shapes to %s", len(shapes), path)
	return nil
}
