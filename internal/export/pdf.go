package export

import (
	"fmt"
	"io"
	"log"

	"SketchRoom/internal/render"
	"SketchRoom/internal/state"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageMargin = 10.0 // mm
	mmPerUnit  = 0.25
)

// PDFSurface draws onto the current page of a gofpdf document. Page
// coordinates are millimetres from the top-left of the page margin.
type PDFSurface struct {
	pdf  *gofpdf.Fpdf
	view state.Transform
}

func NewPDFSurface(pdf *gofpdf.Fpdf) *PDFSurface {
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetFillColor(0, 0, 0)
	pdf.SetLineWidth(render.StrokeWidth * mmPerUnit)
	return &PDFSurface{pdf: pdf, view: state.Identity()}
}

func (s *PDFSurface) page(p state.Point) (float64, float64) {
	sp := s.view.ToScreen(p.X, p.Y)
	return pageMargin + sp.X, pageMargin + sp.Y
}

func (s *PDFSurface) SetTransform(view state.Transform) { s.view = view }

// Clear is a no-op: every export starts on a fresh page.
func (s *PDFSurface) Clear(state.Box) {}

func (s *PDFSurface) StrokeRect(b state.Box) {
	x, y := s.page(state.Point{X: b.Min.X, Y: b.Min.Y})
	s.pdf.Rect(x, y, b.Width()*s.view.Scale, b.Height()*s.view.Scale, "D")
}

func (s *PDFSurface) StrokeEllipse(c state.Point, rx, ry float64) {
	x, y := s.page(c)
	s.pdf.Ellipse(x, y, rx*s.view.Scale, ry*s.view.Scale, 0, "D")
}

func (s *PDFSurface) StrokePolyline(points []state.Point, closed bool) {
	for i := 1; i < len(points); i++ {
		x0, y0 := s.page(points[i-1])
		x1, y1 := s.page(points[i])
		s.pdf.Line(x0, y0, x1, y1)
	}
	if closed && len(points) > 2 {
		x0, y0 := s.page(points[len(points)-1])
		x1, y1 := s.page(points[0])
		s.pdf.Line(x0, y0, x1, y1)
	}
}

func (s *PDFSurface) FillPolygon(points []state.Point) {
	pts := make([]gofpdf.PointType, len(points))
	for i, p := range points {
		pts[i].X, pts[i].Y = s.page(p)
	}
	s.pdf.Polygon(pts, "F")
}

// newPDF lays the shapes out on one A4 page.
func newPDF(shapes []state.Shape) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	w, h := pdf.GetPageSize()
	frame := frameFor(shapes, w-2*pageMargin, h-2*pageMargin, 1/mmPerUnit)
	frame.Paint(NewPDFSurface(pdf))
	return pdf
}

// WritePDF renders shapes as a single-page PDF to w.
func WritePDF(w io.Writer, shapes []state.Shape) error {
	if err := newPDF(shapes).Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// SavePDF renders shapes as a single-page PDF file.
func SavePDF(path string, shapes []state.Shape) error {
	if err := newPDF(shapes).OutputFileAndClose(path); err != nil {
		return fmt.Errorf("save pdf %s: %w", path, err)
	}
	log.Printf("[EXPORT] Wrote %d shapes to %s", len(shapes), path)
	return nil
}
