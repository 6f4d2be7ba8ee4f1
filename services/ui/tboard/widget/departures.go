package widget

import (
	"fmt"

	"github.com/gdamore/tcell"
	"github.com/rivo/tview"
	"github.com/rmrobinson/gtfsboard/lib/stream"
	"github.com/rmrobinson/gtfsboard/services/departures"
)

// SoonThreshold is the number of minutes at or below which a departure is highlighted.
const SoonThreshold = 5

const (
	routeColumn    = 0
	terminusColumn = 1
	firstDepColumn = 2
)

// departureText formats the minutes until a departure.
func departureText(minutes int) string {
	if minutes < 1 {
		return "Due"
	}
	return fmt.Sprintf("%d mins", minutes)
}

// departureStyle returns how the departure at position idx within its route row is drawn.
// The first departure of each row is bright and the rest dimmed; imminent departures are red.
func departureStyle(idx, minutes int) (tcell.Color, tcell.AttrMask) {
	color := tcell.ColorWhite
	if minutes <= SoonThreshold {
		color = tcell.ColorRed
	}
	if idx == 0 {
		return color, tcell.AttrBold
	}
	return color, tcell.AttrDim
}

// Departures is a widget that displays a departure board, one section per stop.
type Departures struct {
	*tview.Table

	app *tview.Application
}

// NewDepartures creates a new departures widget.
// It will not show any data until Refresh() is called or boards arrive via Run().
func NewDepartures(app *tview.Application) *Departures {
	d := &Departures{
		Table: tview.NewTable(),
		app:   app,
	}

	d.SetBorders(false).
		SetBorder(true).
		SetTitle("Departures").
		SetTitleAlign(tview.AlignLeft)

	d.populate(nil)
	return d
}

// Run displays every board received on the sink until the sink is closed.
func (d *Departures) Run(sink *stream.Sink) {
	for msg := range sink.Messages() {
		groups, ok := msg.([]departures.DisplayGroup)
		if !ok {
			continue
		}
		d.Refresh(groups)
	}
}

// Refresh causes the board to be redrawn with the supplied groups.
func (d *Departures) Refresh(groups []departures.DisplayGroup) {
	d.app.QueueUpdateDraw(func() {
		d.populate(groups)
	})
}

// populate replaces the table contents. It must run on the application goroutine once the app is running.
func (d *Departures) populate(groups []departures.DisplayGroup) {
	d.Clear()

	if len(groups) < 1 {
		d.SetCell(0, routeColumn, tview.NewTableCell("No upcoming departures").
			SetTextColor(tcell.ColorGray).
			SetSelectable(false))
		return
	}

	row := 0
	for _, group := range groups {
		d.SetCell(row, routeColumn, tview.NewTableCell(group.StopName).
			SetTextColor(tcell.ColorYellow).
			SetAttributes(tcell.AttrBold|tcell.AttrUnderline).
			SetSelectable(false))
		row++

		for _, route := range group.Routes {
			d.SetCell(row, routeColumn, tview.NewTableCell(route.RouteName).
				SetTextColor(tcell.ColorLime).
				SetSelectable(false))
			d.SetCell(row, terminusColumn, tview.NewTableCell(route.Terminus).
				SetExpansion(1).
				SetSelectable(false))

			for idx, dep := range route.Departures {
				color, attr := departureStyle(idx, dep.Minutes)
				d.SetCell(row, firstDepColumn+idx, tview.NewTableCell(departureText(dep.Minutes)).
					SetAlign(tview.AlignRight).
					SetTextColor(color).
					SetAttributes(attr).
					SetSelectable(false))
			}
			row++
		}
	}
}
