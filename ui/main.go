// Package ui draws the world on a terminal braille canvas and turns mouse input into
// path drawing and train spawning.
package ui

import (
	"fmt"
	"image"
	"strings"

	"github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
	"nyiyui.ca/hato/rosen/tal"
	"nyiyui.ca/hato/rosen/tal/grid"
	"nyiyui.ca/hato/rosen/tal/track"
)

const statusRows = 3

const (
	colourTrack = termui.ColorWhite
	colourPath  = termui.ColorYellow
	colourTrace = termui.Color(240)
	colourMark  = termui.ColorCyan
)

func canvasRows(height int) int {
	if height <= statusRows {
		return 1
	}
	return height - statusRows
}

// Main runs the terminal UI until the user quits.
func Main(w *tal.World, c *Controller) error {
	if err := termui.Init(); err != nil {
		return fmt.Errorf("init termui: %w", err)
	}
	defer termui.Close()

	width, height := termui.TerminalDimensions()
	c.View.Rows = canvasRows(height)
	ch := make(chan tal.Snapshot, 1)
	w.SnapshotMux.Subscribe("ui", ch)
	defer w.SnapshotMux.Unsubscribe(ch)

	gs := w.Snapshot()
	render(c, gs, width)
	events := termui.PollEvents()
	for {
		select {
		case e := <-events:
			if c.Handle(e) {
				return nil
			}
			if r, ok := e.Payload.(termui.Resize); ok {
				width = r.Width
				termui.Clear()
			}
			gs = w.Snapshot()
		case gs = <-ch:
		}
		render(c, gs, width)
	}
}

func render(c *Controller, gs tal.Snapshot, width int) {
	cv := Draw(gs, c.View, c.Cursor)
	cv.SetRect(0, 0, width, c.View.Rows)
	status := widgets.NewParagraph()
	status.Text = statusLine(gs, c)
	status.SetRect(0, c.View.Rows, width, c.View.Rows+statusRows)
	termui.Render(cv, status)
}

// Draw draws gs onto a new borderless canvas.
func Draw(gs tal.Snapshot, v View, cursor grid.Pos) *termui.Canvas {
	cv := termui.NewCanvas()
	cv.Border = false
	for _, t := range gs.Tracks {
		drawTrack(cv, v, t, colourTrack)
	}
	for _, j := range gs.Junctions {
		cv.SetPoint(v.ToDot(j.Pos.Point()), colourMark)
	}
	if p := gs.Path; p != nil {
		for _, t := range p.Trace {
			drawTrack(cv, v, t, colourTrace)
		}
		for _, t := range p.Pieces {
			drawTrack(cv, v, t, colourPath)
		}
		cv.SetPoint(v.ToDot(p.Start.Pos.Point()), colourPath)
	}
	for _, t := range gs.Trains {
		colour := xterm(t.Colour)
		for _, car := range t.Cars() {
			cv.SetLine(v.ToDot(car[0]), v.ToDot(car[1]), colour)
		}
	}
	cv.SetPoint(v.ToDot(cursor.Point()), colourMark)
	return cv
}

func drawTrack(cv *termui.Canvas, v View, t tal.Track, colour termui.Color) {
	var prev image.Point
	for i, p := range t.Points {
		dot := v.ToDot(p)
		if i > 0 {
			cv.SetLine(prev, dot, colour)
		}
		prev = dot
	}
}

// xterm maps a "#rrggbb" colour onto the 6×6×6 cube of the 256-colour palette.
func xterm(hex string) termui.Color {
	var r, g, b uint8
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return termui.ColorWhite
	}
	cube := func(v uint8) int { return int(v) * 6 / 256 }
	return termui.Color(16 + 36*cube(r) + 6*cube(g) + cube(b))
}

func statusLine(gs tal.Snapshot, c *Controller) string {
	b := new(strings.Builder)
	fmt.Fprintf(b, "%d tracks, %d junctions, %d trains | cursor %s", len(gs.Tracks), len(gs.Junctions), len(gs.Trains), c.Cursor)
	if p := gs.Path; p != nil {
		if p.Found {
			var turns int
			for _, t := range p.Pieces {
				if t.Kind == track.Turn {
					turns++
				}
			}
			fmt.Fprintf(b, " | path: %d pieces (%d turns), cost %d", len(p.Pieces), turns, p.Cost)
		} else {
			b.WriteString(" | path: none")
		}
	}
	fmt.Fprintf(b, "\n%s", c.Status)
	return b.String()
}
