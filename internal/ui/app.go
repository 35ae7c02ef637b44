package ui

import (
	"context"
	"log"

	"SketchRoom/internal/engine"
	"SketchRoom/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Session is everything a board window needs from the room connection.
// Any field may be nil for an offline board.
type Session struct {
	Title   string
	Link    string
	Sender  engine.Sender
	Inbound engine.Inbound
	History engine.History
}

// Shortcut maps a typed rune to the engine event it triggers.
func Shortcut(r rune) (engine.Event, bool) {
	switch {
	case r == '+' || r == '=':
		return engine.ZoomIn{}, true
	case r == '-':
		return engine.ZoomOut{}, true
	case r == '0':
		return engine.ResetZoom{}, true
	case r == 'h' || r == 'H':
		return engine.SelectTool{Tool: engine.ToolHand}, true
	case r >= '1' && int(r-'1') < len(engine.Tools):
		return engine.SelectTool{Tool: engine.Tools[r-'1']}, true
	}
	return nil, false
}

// Window is a board window wired to its engine.
type Window struct {
	fyne.Window
	Board  *BoardWidget
	Engine *engine.Engine
	Picker *ToolPicker
	Zoom   *ZoomPanel
	Status *widget.Label

	detach func()
}

// NewWindow builds a board window in a and attaches a fresh engine to it.
func NewWindow(a fyne.App, s Session) (*Window, error) {
	title := s.Title
	if title == "" {
		title = "SketchRoom"
	}
	w := a.NewWindow(title)
	w.Resize(fyne.NewSize(1024, 768))

	board := NewBoardWidget()
	store := state.NewStore()
	eng := engine.New(store, board, s.Sender, 1024, 768)

	detach, err := eng.Attach(board, s.Inbound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())

	win := &Window{
		Window: w,
		Board:  board,
		Engine: eng,
		Picker: NewToolPicker(eng),
		Zoom:   NewZoomPanel(eng),
		Status: widget.NewLabel("Ready"),
		detach: func() {
			cancel()
			detach()
		},
	}
	eng.OnZoomChange(win.Zoom.SetScale)

	w.Canvas().SetOnTypedRune(win.TypedRune)

	toolbar := NewToolbar(win.Picker, win.Zoom, func() {
		showExportDialog(w, store, win.Status)
	})
	bottom := container.NewHBox(win.Status)
	if s.Link != "" {
		bottom.Add(widget.NewSeparator())
		bottom.Add(widget.NewLabel(s.Link))
		bottom.Add(widget.NewButton("Copy link", func() {
			w.Clipboard().SetContent(s.Link)
			win.Status.SetText("Link copied")
		}))
	}
	w.SetContent(container.NewBorder(opaque(toolbar), opaque(bottom), nil, nil, board))
	w.SetOnClosed(win.Detach)

	if s.History != nil {
		eng.Bootstrap(ctx, s.History)
	}
	return win, nil
}

// opaque backs obj with the theme background. The board does not clip, so
// the bars must hide shapes panned under them.
func opaque(obj fyne.CanvasObject) fyne.CanvasObject {
	return container.NewStack(canvas.NewRectangle(theme.Color(theme.ColorNameBackground)), obj)
}

// TypedRune handles keyboard shortcuts. Tool shortcuts go through the picker
// so the toolbar stays in step with the engine.
func (w *Window) TypedRune(r rune) {
	ev, ok := Shortcut(r)
	if !ok {
		return
	}
	if sel, isTool := ev.(engine.SelectTool); isTool {
		w.Picker.Select(sel.Tool)
		return
	}
	w.Engine.Dispatch(ev)
}

// Detach detaches the engine from the board and the room and abandons a
// history fetch still in flight.
func (w *Window) Detach() {
	w.detach()
}

// RunApp opens a board window for the session and blocks until it closes.
func RunApp(s Session) error {
	myApp := app.NewWithID("io.sketchroom.board")
	win, err := NewWindow(myApp, s)
	if err != nil {
		return err
	}
	log.Printf("[UI] Opening board %q", s.Title)
	win.ShowAndRun()
	return nil
}
