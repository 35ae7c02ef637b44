package ui

import (
	"fmt"
	"log"
	"strings"

	"SketchRoom/internal/export"
	"SketchRoom/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

const (
	pngWidth  = 1600
	pngHeight = 1200
)

// SaveTo writes shapes to writer as PNG when the target ends in .png and
// as PDF otherwise, and closes it.
func SaveTo(writer fyne.URIWriteCloser, shapes []state.Shape) error {
	defer func() {
		if err := writer.Close(); err != nil {
			log.Printf("[UI] Error closing writer: %v", err)
		}
	}()

	if strings.EqualFold(writer.URI().Extension(), ".png") {
		return export.WritePNG(writer, shapes, pngWidth, pngHeight)
	}
	return export.WritePDF(writer, shapes)
}

// showExportDialog asks for a target file and exports the board to it.
func showExportDialog(w fyne.Window, store *state.Store, status *widget.Label) {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		if writer == nil {
			return
		}
		shapes := store.Shapes()
		if err := SaveTo(writer, shapes); err != nil {
			log.Printf("[UI] Export failed: %v", err)
			dialog.ShowError(err, w)
			status.SetText("Export failed")
			return
		}
		log.Printf("[UI] Exported %d shapes to %s", len(shapes), writer.URI().Path())
		status.SetText(fmt.Sprintf("Exported %d shapes", len(shapes)))
	}, w)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".pdf", ".png"}))
	d.SetFileName("board.pdf")
	d.Show()
}
