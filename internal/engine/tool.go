package engine

import (
	"fmt"

	"SketchRoom/internal/state"
)

// Tool is the active drawing tool.
type Tool string

const (
	ToolPencil  Tool = "pencil"
	ToolRect    Tool = "rect"
	ToolCircle  Tool = "circle"
	ToolLine    Tool = "line"
	ToolArrow   Tool = "arrow"
	ToolDiamond Tool = "diamond"
	ToolHand    Tool = "hand"
)

// Tools lists every tool in toolbar order.
var Tools = []Tool{ToolPencil, ToolRect, ToolCircle, ToolLine, ToolArrow, ToolDiamond, ToolHand}

func ParseTool(s string) (Tool, error) {
	for _, t := range Tools {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tool %q", s)
}

// Kind is the shape kind a tool produces. The hand tool produces none.
func (t Tool) Kind() (state.Kind, bool) {
	switch t {
	case ToolPencil:
		return state.KindPencil, true
	case ToolRect:
		return state.KindRect, true
	case ToolCircle:
		return state.KindCircle, true
	case ToolLine:
		return state.KindLine, true
	case ToolArrow:
		return state.KindArrow, true
	case ToolDiamond:
		return state.KindDiamond, true
	}
	return "", false
}

func (t Tool) String() string { return string(t) }
