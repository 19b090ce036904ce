// Package path finds track routes between user-drawn grid points.
package path

import (
	"fmt"
	"math"

	"golang.org/x/exp/slices"
	"nyiyui.ca/hato/rosen/tal/grid"
	"nyiyui.ca/hato/rosen/tal/track"
)

// costScale is what move costs are multiplied by when folded into a path cost.
const costScale = 10

type Conf struct {
	Grid  grid.Conf
	Track track.Conf
	// DistanceWeight scales the straight-line distance to the goal in the estimate.
	DistanceWeight float64
	// AlignmentWeight scales how far the facing is from pointing at the goal.
	// It is 0 by default, which leaves the term inert.
	AlignmentWeight float64
	// SearchLimit caps the number of nodes in one search; 0 means no cap.
	SearchLimit int
	// Trace records every newly discovered move as a throwaway piece, for display.
	Trace bool
}

func NewConf(cellSize int) Conf {
	return Conf{
		Grid:            grid.NewConf(cellSize),
		Track:           track.NewConf(cellSize),
		DistanceWeight:  11,
		AlignmentWeight: 0,
		SearchLimit:     20000,
	}
}

// Result is a successful search.
type Result struct {
	Conns []grid.Connection
	// Cost is the path cost (sum of move costs × 10).
	Cost int
	// Explored is the number of nodes the search created.
	Explored int
}

// Pieces builds a piece from every consecutive pair of Conns.
func (r Result) Pieces(cf track.Conf) []track.Piece {
	if len(r.Conns) < 2 {
		return nil
	}
	res := make([]track.Piece, 0, len(r.Conns)-1)
	for i := 1; i < len(r.Conns); i++ {
		res = append(res, cf.NewPiece(r.Conns[i-1], r.Conns[i]))
	}
	return res
}

type node struct {
	conn grid.Connection
	g    int
	f    int
}

// Estimate is the heuristic remaining cost from c to goal.
func (cf Conf) Estimate(c grid.Connection, goal grid.Pos) int {
	dx := float64(c.Pos.X - goal.X)
	dy := float64(c.Pos.Y - goal.Y)
	if dy == 0 {
		dy = 0.00001
	}
	toward := grid.FromAngle(180 * math.Atan(dx/-dy) / math.Pi)
	dist := math.Sqrt(dx*dx+dy*dy) * cf.DistanceWeight
	align := c.Dir.Difference(toward) * cf.AlignmentWeight
	return int(dist + align)
}

// Find runs A* from start to any Connection positioned at goal.
// The facing at goal is not considered. ok is false if no path exists, if the only
// match is start itself, or if the search outgrows SearchLimit.
// trace is only filled in when Trace is set, and is returned even if no path was found.
func (cf Conf) Find(start grid.Connection, goal grid.Pos) (res Result, trace []track.Piece, ok bool) {
	nodes := []node{{conn: start, g: 0, f: cf.Estimate(start, goal)}}
	parents := []int{0}
	closed := []bool{false}
	lookup := map[grid.Connection]int{start: 0}
	open := []int{0}

	for len(open) > 0 {
		target := open[0]
		for _, i := range open[1:] {
			if nodes[i].f < nodes[target].f {
				target = i
			}
		}
		cur := nodes[target]

		if cur.conn.Pos == goal {
			if target == 0 {
				// zero-length path; nothing to build
				return Result{Explored: len(nodes)}, trace, false
			}
			return cf.backtrack(nodes, parents, target), trace, true
		}

		j := slices.Index(open, target)
		open = slices.Delete(open, j, j+1)
		closed[target] = true

		for _, cand := range cf.Grid.Candidates(cur.conn) {
			g := cur.g + cand.Cost*costScale
			if i, seen := lookup[cand.Conn]; seen {
				if closed[i] || nodes[i].g <= g {
					continue
				}
				parents[i] = target
				nodes[i].g = g
				nodes[i].f = g + cf.Estimate(nodes[i].conn, goal)
				continue
			}
			if cf.SearchLimit > 0 && len(nodes) >= cf.SearchLimit {
				return Result{Explored: len(nodes)}, trace, false
			}
			if cf.Trace {
				trace = append(trace, cf.Track.NewPiece(cur.conn, cand.Conn))
			}
			lookup[cand.Conn] = len(nodes)
			open = append(open, len(nodes))
			nodes = append(nodes, node{conn: cand.Conn, g: g, f: g + cf.Estimate(cand.Conn, goal)})
			parents = append(parents, target)
			closed = append(closed, false)
		}
	}
	return Result{Explored: len(nodes)}, trace, false
}

func (cf Conf) backtrack(nodes []node, parents []int, target int) Result {
	res := Result{Cost: nodes[target].g, Explored: len(nodes)}
	for i := target; ; i = parents[i] {
		if i < 0 || i >= len(nodes) {
			panic(fmt.Sprintf("node %d missing while backtracking (%d nodes)", i, len(nodes)))
		}
		res.Conns = append(res.Conns, nodes[i].conn)
		if i == 0 {
			break
		}
	}
	reverse(res.Conns)
	return res
}

func reverse[S ~[]E, E any](s S) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
