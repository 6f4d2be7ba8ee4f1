package widget

import (
	"github.com/gdamore/tcell"
	"github.com/rivo/tview"
)

// Debug is a widget to display log output. Writes are appended and the newest line kept in view.
type Debug struct {
	*tview.TextView

	app *tview.Application
}

// NewDebug creates a new debug widget.
func NewDebug(app *tview.Application) *Debug {
	d := &Debug{
		TextView: tview.NewTextView(),
		app:      app,
	}

	d.SetTextAlign(tview.AlignLeft).
		SetTextColor(tcell.ColorBlue).
		SetScrollable(true).
		SetBorder(true).
		SetTitle("Log")

	// the text view is written to from outside the application goroutine
	d.SetChangedFunc(func() {
		d.app.Draw()
	})
	d.ScrollToEnd()

	return d
}
