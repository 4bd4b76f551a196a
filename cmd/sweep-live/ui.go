package main

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

type userInterface struct {
	app   *tview.Application
	table *tview.Table
	rows  []*row
}

func buildTUI(rows []*row) *userInterface {
	ui := &userInterface{
		app:   tview.NewApplication(),
		table: tview.NewTable().SetBorders(false).SetFixed(2, 0),
		rows:  rows,
	}

	ui.table.SetTitle(" sweep-live (press [q] to exit) ")

	ui.table.SetCell(0, 0, tview.NewTableCell("address").SetAlign(tview.AlignLeft))
	ui.table.SetCell(0, 1, tview.NewTableCell("done").SetAlign(tview.AlignRight))
	ui.table.SetCell(0, 2, tview.NewTableCell("loss").SetAlign(tview.AlignRight))
	ui.table.SetCell(0, 3, tview.NewTableCell("last").SetAlign(tview.AlignRight))
	ui.table.SetCell(0, 4, tview.NewTableCell("best").SetAlign(tview.AlignRight))
	ui.table.SetCell(0, 5, tview.NewTableCell("worst").SetAlign(tview.AlignRight))
	ui.table.SetCell(0, 6, tview.NewTableCell("mean").SetAlign(tview.AlignRight))
	ui.table.SetCell(0, 7, tview.NewTableCell("stddev").SetAlign(tview.AlignRight))

	ui.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			ui.app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'q' {
				ui.app.Stop()
				return nil
			}
		}
		return event
	})

	cols := 8
	for r, u := range rows {
		for c := 0; c < cols; c++ {
			var cell *tview.TableCell
			switch c {
			case 0:
				cell = tview.NewTableCell(u.target.Addr.IP.String()).SetAlign(tview.AlignLeft)
			default:
				cell = tview.NewTableCell("n/a").SetAlign(tview.AlignRight)
			}
			ui.table.SetCell(r+2, c, cell)
		}
	}

	return ui
}

func (ui *userInterface) Run() error {
	ui.app.SetRoot(ui.table, true).SetFocus(ui.table)
	return ui.app.Run()
}

func (ui *userInterface) update() {
	for {
		time.Sleep(250 * time.Millisecond)
		for i, u := range ui.rows {
			finished, last, lastLost := u.snapshot()
			r := i + 2

			ui.table.GetCell(r, 1).SetText(fmt.Sprintf("%d/%d", finished, u.target.Count))

			metrics := u.history.Compute()
			if metrics == nil {
				continue
			}

			loss := float64(metrics.PacketsLost) / float64(metrics.PacketsSent) * 100
			ui.table.GetCell(r, 2).SetText(fmt.Sprintf("%0.2f%%", loss))
			if lastLost {
				ui.table.GetCell(r, 3).SetText("lost")
			} else {
				ui.table.GetCell(r, 3).SetText(ts(last))
			}
			ui.table.GetCell(r, 4).SetText(ts(metrics.Best))
			ui.table.GetCell(r, 5).SetText(ts(metrics.Worst))
			ui.table.GetCell(r, 6).SetText(ts(metrics.Mean))
			ui.table.GetCell(r, 7).SetText(metrics.StdDev.String())
		}
		ui.app.Draw()
	}
}

const tsDividend = float64(time.Millisecond) / float64(time.Nanosecond)

func ts(dur time.Duration) string {
	if 10*time.Microsecond < dur && dur < time.Second {
		return fmt.Sprintf("%0.2fms", float64(dur.Nanoseconds())/tsDividend)
	}
	return dur.String()
}
