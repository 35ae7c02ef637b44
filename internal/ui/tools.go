package ui

import (
	"fmt"
	"math"

	"SketchRoom/internal/engine"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// ToolPicker selects the active engine tool.
type ToolPicker struct {
	*widget.RadioGroup
}

func NewToolPicker(eng *engine.Engine) *ToolPicker {
	names := make([]string, len(engine.Tools))
	for i, t := range engine.Tools {
		names[i] = t.String()
	}
	radio := widget.NewRadioGroup(names, func(s string) {
		if t, err := engine.ParseTool(s); err == nil {
			eng.SetTool(t)
		}
	})
	radio.Horizontal = true
	radio.Required = true
	radio.SetSelected(eng.Tool().String())
	return &ToolPicker{RadioGroup: radio}
}

// Select marks t as the active tool, which also switches the engine.
func (p *ToolPicker) Select(t engine.Tool) {
	p.SetSelected(t.String())
}

// FormatZoom renders a view scale as a whole percentage.
func FormatZoom(scale float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(scale*100)))
}

// ZoomPanel shows the current zoom with buttons to change it.
type ZoomPanel struct {
	Label   *widget.Label
	In      *widget.Button
	Out     *widget.Button
	Reset   *widget.Button
	content fyne.CanvasObject
}

func NewZoomPanel(eng *engine.Engine) *ZoomPanel {
	z := &ZoomPanel{
		Label: widget.NewLabel(FormatZoom(eng.View().Scale)),
		Out:   widget.NewButtonWithIcon("", theme.ZoomOutIcon(), eng.ZoomOut),
		In:    widget.NewButtonWithIcon("", theme.ZoomInIcon(), eng.ZoomIn),
		Reset: widget.NewButtonWithIcon("", theme.ViewRestoreIcon(), eng.ResetZoom),
	}
	z.content = container.NewHBox(z.Out, z.Label, z.In, z.Reset)
	return z
}

// SetScale is the engine's zoom observer. It may be called off the UI
// goroutine.
func (z *ZoomPanel) SetScale(scale float64) {
	text := FormatZoom(scale)
	fyne.Do(func() { z.Label.SetText(text) })
}

func (z *ZoomPanel) Content() fyne.CanvasObject { return z.content }

// NewToolbar lays out the tool picker, zoom panel and export actions.
func NewToolbar(picker *ToolPicker, zoom *ZoomPanel, onExport func()) fyne.CanvasObject {
	actions := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentSaveIcon(), onExport),
	)
	return container.NewHBox(
		widget.NewLabel("Tool:"),
		picker.RadioGroup,
		widget.NewSeparator(),
		zoom.Content(),
		layout.NewSpacer(),
		actions,
	)
}
