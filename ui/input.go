package ui

import (
	"fmt"
	"image"
	"math"

	"github.com/gizak/termui/v3"
	"github.com/google/uuid"
	"nyiyui.ca/hato/rosen/tal"
	"nyiyui.ca/hato/rosen/tal/grid"
	"nyiyui.ca/hato/rosen/tal/train"
)

// Snap moves p to the nearest cell edge midpoint: the cell is split along both diagonals,
// and p goes to the middle of the edge of the quarter it is in.
func Snap(cellSize int, p grid.Point) grid.Pos {
	gs := float64(cellSize)
	rx, ry := math.Floor(p.X/gs)*gs, math.Floor(p.Y/gs)*gs
	x, y := (p.X-rx)/gs, (p.Y-ry)/gs
	var res grid.Point
	switch {
	case x > y && x+y < 1:
		res = grid.Point{X: rx + gs/2, Y: ry}
	case x > y:
		res = grid.Point{X: rx + gs, Y: ry + gs/2}
	case x+y < 1:
		res = grid.Point{X: rx, Y: ry + gs/2}
	default:
		res = grid.Point{X: rx + gs/2, Y: ry + gs}
	}
	return grid.Pos{X: int(res.X), Y: int(res.Y)}
}

// Facing is the direction a path started at snapped should leave in, given where the
// cursor actually is: across the edge snapped lies on, towards the cursor's side.
func Facing(cellSize int, snapped grid.Pos, cursor grid.Point) grid.Dir {
	if snapped.X%cellSize == 0 {
		if cursor.X > float64(snapped.X) {
			return grid.E
		}
		return grid.W
	}
	if cursor.Y > float64(snapped.Y) {
		return grid.N
	}
	return grid.S
}

// View maps between terminal cells, braille dots and world space.
// World y points up; terminal rows count down.
type View struct {
	// Scale is world units per braille dot.
	Scale float64
	// Cam is the world position of the canvas's bottom-left corner.
	Cam grid.Point
	// Rows is the canvas height in terminal rows.
	Rows int
}

// ToWorld returns the world position at the centre of terminal cell (col, row).
func (v View) ToWorld(col, row int) grid.Point {
	return grid.Point{
		X: v.Cam.X + float64(2*col+1)*v.Scale,
		Y: v.Cam.Y + float64(4*v.Rows-(4*row+2))*v.Scale,
	}
}

// ToDot returns the braille dot p falls in.
func (v View) ToDot(p grid.Point) image.Point {
	return image.Point{
		X: int(math.Floor((p.X - v.Cam.X) / v.Scale)),
		Y: 4*v.Rows - int(math.Floor((p.Y-v.Cam.Y)/v.Scale)),
	}
}

// Pan moves the view by (dx, dy) terminal cells.
func (v *View) Pan(dx, dy int) {
	v.Cam.X += float64(2*dx) * v.Scale
	v.Cam.Y += float64(4*dy) * v.Scale
}

// World is what the UI drives.
type World interface {
	BeginPath(start grid.Connection) bool
	ExtendPath(goal grid.Pos) bool
	CommitPath() []int
	CancelPath()
	Drawing() bool
	SpawnTrain(speed float64, trackID int, dist float64, form train.Form) (uuid.UUID, error)
	Snapshot() tal.Snapshot
}

// Spawn is what a right click places.
type Spawn struct {
	Speed float64
	Track int
	Dist  float64
	Form  train.Form
}

// Controller turns terminal events into world calls.
type Controller struct {
	w        World
	cellSize int
	spawn    Spawn
	View     View
	// Cursor is the last snapped cursor position.
	Cursor grid.Pos
	// Status is a one-line description of the last action.
	Status string
}

func NewController(w World, cellSize int, spawn Spawn, view View) *Controller {
	return &Controller{
		w:        w,
		cellSize: cellSize,
		spawn:    spawn,
		View:     view,
		Status:   "left click to draw, right click to spawn",
	}
}

// Handle applies e. It returns true when the user asked to quit.
func (c *Controller) Handle(e termui.Event) (quit bool) {
	switch e.Type {
	case termui.KeyboardEvent:
		return c.key(e.ID)
	case termui.MouseEvent:
		m, ok := e.Payload.(termui.Mouse)
		if !ok {
			return false
		}
		c.mouse(e.ID, m)
	case termui.ResizeEvent:
		if r, ok := e.Payload.(termui.Resize); ok {
			c.View.Rows = canvasRows(r.Height)
		}
	}
	return false
}

func (c *Controller) key(id string) bool {
	switch id {
	case "q", "<C-c>":
		return true
	case "<Escape>":
		if c.w.Drawing() {
			c.w.CancelPath()
			c.Status = "path cancelled"
		}
	case "<Left>":
		c.View.Pan(-4, 0)
	case "<Right>":
		c.View.Pan(4, 0)
	case "<Up>":
		c.View.Pan(0, 2)
	case "<Down>":
		c.View.Pan(0, -2)
	}
	return false
}

func (c *Controller) mouse(id string, m termui.Mouse) {
	cursor := c.View.ToWorld(m.X, m.Y)
	snapped := Snap(c.cellSize, cursor)
	moved := snapped != c.Cursor
	c.Cursor = snapped
	switch {
	case id == "<MouseLeft>" && m.Drag:
		if moved && c.w.Drawing() {
			c.extend()
		}
	case id == "<MouseLeft>":
		if !c.w.Drawing() {
			start := grid.Connection{Pos: snapped, Dir: Facing(c.cellSize, snapped, cursor)}
			c.w.BeginPath(start)
			c.Status = fmt.Sprintf("drawing from %s", start)
			return
		}
		c.extend()
		ids := c.w.CommitPath()
		if len(ids) == 0 {
			c.Status = "nothing committed"
		} else {
			c.Status = fmt.Sprintf("committed %d tracks", len(ids))
		}
	case id == "<MouseRight>":
		tid, err := c.w.SpawnTrain(c.spawn.Speed, c.spawn.Track, c.spawn.Dist, c.spawn.Form)
		if err != nil {
			c.Status = err.Error()
			return
		}
		c.Status = fmt.Sprintf("spawned %s", tid)
	}
}

func (c *Controller) extend() {
	if c.w.ExtendPath(c.Cursor) {
		c.Status = fmt.Sprintf("route to %s", c.Cursor)
	} else {
		c.Status = fmt.Sprintf("no route to %s", c.Cursor)
	}
}
