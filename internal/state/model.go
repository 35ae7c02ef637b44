package state

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind is the wire tag of a shape variant.
type Kind string

const (
	KindRect    Kind = "rect"
	KindCircle  Kind = "circle"
	KindDiamond Kind = "diamond"
	KindLine    Kind = "line"
	KindArrow   Kind = "arrow"
	KindPencil  Kind = "pencil"
)

var (
	ErrUnknownShape   = errors.New("unknown shape type")
	ErrMalformedShape = errors.New("malformed shape")
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Shape is one committed geometric record. The set of implementations is
// closed: Rect, Circle, Diamond, Line, Arrow and Pencil.
type Shape interface {
	Kind() Kind
	Bounds() Box
	shape()
}

// Frame is the anchor plus signed extent shared by the box shapes. The sign
// of Width and Height records the drag direction.
type Frame struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Segment is the start and end point shared by line and arrow.
type Segment struct {
	StartX float64 `json:"startX"`
	StartY float64 `json:"startY"`
	EndX   float64 `json:"endX"`
	EndY   float64 `json:"endY"`
}

type Rect struct{ Frame }
type Circle struct{ Frame }
type Diamond struct{ Frame }
type Line struct{ Segment }
type Arrow struct{ Segment }

// Pencil is a freehand path. Fewer than two points draws nothing.
type Pencil struct {
	Points []Point `json:"points"`
}

func (Rect) Kind() Kind    { return KindRect }
func (Circle) Kind() Kind  { return KindCircle }
func (Diamond) Kind() Kind { return KindDiamond }
func (Line) Kind() Kind    { return KindLine }
func (Arrow) Kind() Kind   { return KindArrow }
func (Pencil) Kind() Kind  { return KindPencil }

func (Rect) shape()    {}
func (Circle) shape()  {}
func (Diamond) shape() {}
func (Line) shape()    {}
func (Arrow) shape()   {}
func (Pencil) shape()  {}

// Box returns the positive-extent box covered by the frame.
func (f Frame) Box() Box {
	return NewBox(f.X, f.Y, f.X+f.Width, f.Y+f.Height)
}

func (f Frame) Bounds() Box   { return f.Box() }
func (s Segment) Bounds() Box { return NewBox(s.StartX, s.StartY, s.EndX, s.EndY) }

func (p Pencil) Bounds() Box {
	if len(p.Points) == 0 {
		return Box{}
	}
	b := NewBox(p.Points[0].X, p.Points[0].Y, p.Points[0].X, p.Points[0].Y)
	for _, pt := range p.Points[1:] {
		b = b.Extend(pt)
	}
	return b
}

// NewFrameShape builds a box shape of the given kind from a drag gesture.
func NewFrameShape(kind Kind, startX, startY, endX, endY float64) (Shape, error) {
	f := Frame{X: startX, Y: startY, Width: endX - startX, Height: endY - startY}
	switch kind {
	case KindRect:
		return Rect{f}, nil
	case KindCircle:
		return Circle{f}, nil
	case KindDiamond:
		return Diamond{f}, nil
	}
	return nil, fmt.Errorf("%w: %q is not a box shape", ErrUnknownShape, kind)
}

// NewSegmentShape builds a line or arrow.
func NewSegmentShape(kind Kind, startX, startY, endX, endY float64) (Shape, error) {
	s := Segment{StartX: startX, StartY: startY, EndX: endX, EndY: endY}
	switch kind {
	case KindLine:
		return Line{s}, nil
	case KindArrow:
		return Arrow{s}, nil
	}
	return nil, fmt.Errorf("%w: %q is not a segment shape", ErrUnknownShape, kind)
}

type wireShape struct {
	Type Kind `json:"type"`
}

type wireFrame struct {
	Type Kind `json:"type"`
	Frame
}

type wireSegment struct {
	Type Kind `json:"type"`
	Segment
}

type wirePencil struct {
	Type   Kind    `json:"type"`
	Points []Point `json:"points"`
}

// MarshalShape encodes a shape with its "type" tag.
func MarshalShape(s Shape) ([]byte, error) {
	switch v := s.(type) {
	case Rect:
		return json.Marshal(wireFrame{KindRect, v.Frame})
	case Circle:
		return json.Marshal(wireFrame{KindCircle, v.Frame})
	case Diamond:
		return json.Marshal(wireFrame{KindDiamond, v.Frame})
	case Line:
		return json.Marshal(wireSegment{KindLine, v.Segment})
	case Arrow:
		return json.Marshal(wireSegment{KindArrow, v.Segment})
	case Pencil:
		points := v.Points
		if points == nil {
			points = []Point{}
		}
		return json.Marshal(wirePencil{KindPencil, points})
	case nil:
		return nil, fmt.Errorf("%w: nil shape", ErrMalformedShape)
	}
	return nil, fmt.Errorf("%w: %T", ErrUnknownShape, s)
}

// UnmarshalShape decodes a tagged shape.
func UnmarshalShape(data []byte) (Shape, error) {
	var tag wireShape
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedShape, err)
	}
	switch tag.Type {
	case KindRect, KindCircle, KindDiamond:
		var w wireFrame
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedShape, err)
		}
		switch tag.Type {
		case KindCircle:
			return Circle{w.Frame}, nil
		case KindDiamond:
			return Diamond{w.Frame}, nil
		}
		return Rect{w.Frame}, nil
	case KindLine, KindArrow:
		var w wireSegment
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedShape, err)
		}
		if tag.Type == KindArrow {
			return Arrow{w.Segment}, nil
		}
		return Line{w.Segment}, nil
	case KindPencil:
		var w wirePencil
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedShape, err)
		}
		// An empty path is the zero pencil whichever way it was spelled.
		if len(w.Points) == 0 {
			w.Points = nil
		}
		return Pencil{Points: w.Points}, nil
	case "":
		return nil, fmt.Errorf("%w: missing type", ErrMalformedShape)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownShape, tag.Type)
}
