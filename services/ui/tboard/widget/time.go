package widget

import (
	"context"
	"time"

	"github.com/gdamore/tcell"
	"github.com/rivo/tview"
)

// Clock is a widget to display the current time, which the board's minute counts are relative to.
type Clock struct {
	*tview.TextView

	app *tview.Application

	location *time.Location
	now      func() time.Time
}

// NewClock creates a new clock widget using the supplied timezone.
func NewClock(app *tview.Application, location *time.Location) *Clock {
	c := &Clock{
		TextView: tview.NewTextView(),
		app:      app,
		location: location,
		now:      time.Now,
	}

	c.SetTextAlign(tview.AlignCenter).
		SetTextColor(tcell.ColorLime).
		SetBorder(true).
		SetTitle(location.String())

	return c
}

func (c *Clock) text() string {
	now := c.now().In(c.location)
	return now.Format("Mon, 02 Jan 2006") + "\n" + now.Format("15:04:05 MST")
}

// Run updates the clock every second until the context is cancelled.
func (c *Clock) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		c.app.QueueUpdateDraw(func() {
			c.SetText(c.text())
		})

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
