package grid

import (
	"fmt"
	"math"
)

// Connection is an attachment point: a position plus the direction a track leaves it in.
// Two Connections are the same graph node iff both fields match.
type Connection struct {
	Pos Pos `json:"pos"`
	Dir Dir `json:"dir"`
}

func (c Connection) String() string {
	return fmt.Sprintf("%s%s", c.Pos, c.Dir)
}

// Reverse returns the same position facing the other way.
func (c Connection) Reverse() Connection {
	return Connection{c.Pos, c.Dir.Opposite()}
}

// Conf holds the lattice size and the per-move costs.
// Costs are piece lengths truncated to whole world units.
type Conf struct {
	CellSize     int
	StraightCost int
	DiagonalCost int
	TurnCost     int
}

// NewConf derives the move costs from the cell size.
func NewConf(cellSize int) Conf {
	c := float64(cellSize)
	return Conf{
		CellSize:     cellSize,
		StraightCost: cellSize,
		DiagonalCost: int(c / 2 * math.Sqrt2),
		TurnCost:     int(TurnLength(c)),
	}
}

// TurnLength is the length of a turn piece for the given cell size.
// A turn is a straight lead-in on its axis-aligned end followed by a 45° arc onto the diagonal;
// it spans 1.5 cells along the axis and 0.5 cells across it.
func TurnLength(cellSize float64) float64 {
	// tangent length on the diagonal side: the 0.5-cell offset across the axis
	t := cellSize / 2 * math.Sqrt2
	lead := cellSize - t
	r := t / math.Tan(math.Pi/8)
	return lead + r*math.Pi/4
}

// Displacement is the fixed move vector for d: one cell edge for axis-aligned directions,
// cell edge × √2 on both axes for diagonals.
func (cf Conf) Displacement(d Dir) Pos {
	strt := cf.CellSize
	diag := int(math.Sqrt2 * float64(cf.CellSize))
	switch d {
	case N:
		return Pos{0, strt}
	case NE:
		return Pos{diag, diag}
	case E:
		return Pos{strt, 0}
	case SE:
		return Pos{diag, -diag}
	case S:
		return Pos{0, -strt}
	case SW:
		return Pos{-diag, -diag}
	case W:
		return Pos{-strt, 0}
	case NW:
		return Pos{-diag, diag}
	default:
		panic(fmt.Sprintf("invalid Dir %d", uint8(d)))
	}
}

// OnLattice reports whether x falls on the lattice-aligned sub-grid.
func (cf Conf) OnLattice(x int) bool {
	return x%cf.CellSize == 0
}

// Candidate is a neighbouring Connection reachable with a single track piece.
type Candidate struct {
	Conn Connection
	Cost int
}

// Candidates returns the Connections reachable from c with one piece, in a fixed order.
// Axis-aligned facings yield {turn, straight, turn}; diagonal facings yield {diagonal, turn}.
// A diagonal only turns back onto an axis on alternating lattice offsets, decided by whether
// c's x coordinate is on the lattice.
func (cf Conf) Candidates(c Connection) []Candidate {
	gs := float64(cf.CellSize)
	x, y := float64(c.Pos.X), float64(c.Pos.Y)
	isX := cf.OnLattice(c.Pos.X)
	at := func(dx, dy float64, d Dir, cost int) Candidate {
		return Candidate{
			Conn: Connection{Pos{int(x + dx*gs), int(y + dy*gs)}, d},
			Cost: cost,
		}
	}
	turn, strt, diag := cf.TurnCost, cf.StraightCost, cf.DiagonalCost
	switch c.Dir {
	case E:
		return []Candidate{
			at(1.5, -0.5, SE, turn),
			at(1, 0, E, strt),
			at(1.5, 0.5, NE, turn),
		}
	case NE:
		if isX {
			return []Candidate{at(0.5, 0.5, NE, diag), at(0.5, 1.5, N, turn)}
		}
		return []Candidate{at(0.5, 0.5, NE, diag), at(1.5, 0.5, E, turn)}
	case SE:
		if isX {
			return []Candidate{at(0.5, -0.5, SE, diag), at(0.5, -1.5, S, turn)}
		}
		return []Candidate{at(0.5, -0.5, SE, diag), at(1.5, -0.5, E, turn)}
	case N:
		return []Candidate{
			at(0.5, 1.5, NE, turn),
			at(0, 1, N, strt),
			at(-0.5, 1.5, NW, turn),
		}
	case S:
		return []Candidate{
			at(-0.5, -1.5, SW, turn),
			at(0, -1, S, strt),
			at(0.5, -1.5, SE, turn),
		}
	case W:
		return []Candidate{
			at(-1.5, 0.5, NW, turn),
			at(-1, 0, W, strt),
			at(-1.5, -0.5, SW, turn),
		}
	case NW:
		if isX {
			return []Candidate{at(-0.5, 0.5, NW, diag), at(-0.5, 1.5, N, turn)}
		}
		return []Candidate{at(-0.5, 0.5, NW, diag), at(-1.5, 0.5, W, turn)}
	case SW:
		if isX {
			return []Candidate{at(-0.5, -0.5, SW, diag), at(-0.5, -1.5, S, turn)}
		}
		return []Candidate{at(-0.5, -0.5, SW, diag), at(-1.5, -0.5, W, turn)}
	default:
		panic(fmt.Sprintf("invalid Dir %d", uint8(c.Dir)))
	}
}
