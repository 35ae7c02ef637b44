package ui

import (
	"sync"

	"SketchRoom/internal/engine"
	"SketchRoom/internal/render"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// BoardWidget is the drawing area. It turns fyne pointer, drag and scroll
// callbacks into engine events and shows the frames the engine draws.
type BoardWidget struct {
	widget.BaseWidget

	mu    sync.RWMutex
	frame render.Frame

	handlers map[int]func(engine.Event)
	nextID   int
	hmu      sync.RWMutex

	pressed bool
	last    fyne.Position
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ fyne.Scrollable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)

func NewBoardWidget() *BoardWidget {
	b := &BoardWidget{handlers: make(map[int]func(engine.Event))}
	b.ExtendBaseWidget(b)
	return b
}

// Subscribe registers fn for every input event and returns a function that
// removes it.
func (b *BoardWidget) Subscribe(fn func(engine.Event)) func() {
	b.hmu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = fn
	b.hmu.Unlock()

	return func() {
		b.hmu.Lock()
		delete(b.handlers, id)
		b.hmu.Unlock()
	}
}

func (b *BoardWidget) emit(ev engine.Event) {
	b.hmu.RLock()
	hs := make([]func(engine.Event), 0, len(b.handlers))
	for _, h := range b.handlers {
		hs = append(hs, h)
	}
	b.hmu.RUnlock()
	for _, h := range hs {
		h(ev)
	}
}

// Draw stores the frame and schedules a repaint on the UI goroutine.
func (b *BoardWidget) Draw(f render.Frame) {
	b.mu.Lock()
	b.frame = f
	b.mu.Unlock()
	fyne.Do(b.Refresh)
}

// Frame returns the last frame drawn.
func (b *BoardWidget) Frame() render.Frame {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.frame
}

func (b *BoardWidget) Resize(size fyne.Size) {
	b.BaseWidget.Resize(size)
	b.emit(engine.Resize{Width: float64(size.Width), Height: float64(size.Height)})
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.pressed = true
	b.last = e.Position
	b.emit(engine.PointerDown{X: float64(e.Position.X), Y: float64(e.Position.Y)})
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.release(e.Position)
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	b.move(e.Position)
}

// DragEnd can arrive without a matching MouseUp when the pointer leaves the
// window mid-gesture.
func (b *BoardWidget) DragEnd() {
	b.release(b.last)
}

func (b *BoardWidget) MouseMoved(e *desktop.MouseEvent) {
	b.move(e.Position)
}

func (b *BoardWidget) MouseIn(*desktop.MouseEvent) {}
func (b *BoardWidget) MouseOut()                   {}

func (b *BoardWidget) move(pos fyne.Position) {
	if !b.pressed || pos == b.last {
		return
	}
	b.last = pos
	b.emit(engine.PointerMove{X: float64(pos.X), Y: float64(pos.Y)})
}

func (b *BoardWidget) release(pos fyne.Position) {
	if !b.pressed {
		return
	}
	b.pressed = false
	b.emit(engine.PointerUp{X: float64(pos.X), Y: float64(pos.Y)})
}

func (b *BoardWidget) Scrolled(e *fyne.ScrollEvent) {
	b.emit(engine.Wheel{
		X:      float64(e.Position.X),
		Y:      float64(e.Position.Y),
		DeltaY: float64(e.Scrolled.DY),
	})
}

func (b *BoardWidget) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &boardWidgetRenderer{board: b}
	r.rebuild()
	return r
}

type boardWidgetRenderer struct {
	board   *BoardWidget
	objects []fyne.CanvasObject
}

func (r *boardWidgetRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *boardWidgetRenderer) Refresh() {
	r.rebuild()
	canvas.Refresh(r.board)
}

func (r *boardWidgetRenderer) rebuild() {
	f := r.board.Frame()
	if f.Width == 0 || f.Height == 0 {
		size := r.board.Size()
		f.Width, f.Height = float64(size.Width), float64(size.Height)
	}
	if f.View.Scale == 0 {
		f.View.Scale = 1
	}
	r.objects = paintObjects(f)
}

func (r *boardWidgetRenderer) Layout(fyne.Size) {}

func (r *boardWidgetRenderer) MinSize() fyne.Size {
	return r.board.MinSize()
}

func (r *boardWidgetRenderer) Destroy() {}
