// Package grid is the lattice model tracks are laid on: positions, compass
// directions and connections (a position plus a facing).
package grid

import (
	"fmt"
	"math"
)

// Pos is a position in grid space (world units, not cells).
// Diagonal moves land on a staggered sub-lattice, so a Pos is not necessarily a multiple of the cell size.
type Pos struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Pos) Add(q Pos) Pos {
	return Pos{p.X + q.X, p.Y + q.Y}
}

func (p Pos) Sub(q Pos) Pos {
	return Pos{p.X - q.X, p.Y - q.Y}
}

func (p Pos) Point() Point {
	return Point{float64(p.X), float64(p.Y)}
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Point is a continuous world coordinate, used for interpolated positions.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

func (p Point) Scale(k float64) Point {
	return Point{p.X * k, p.Y * k}
}

func (p Point) Len() float64 {
	return math.Hypot(p.X, p.Y)
}

// Dist is the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return p.Sub(q).Len()
}

func (p Point) String() string {
	return fmt.Sprintf("(%.2f,%.2f)", p.X, p.Y)
}
