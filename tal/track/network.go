package track

import (
	"fmt"
	"sort"

	"nyiyui.ca/hato/rosen/tal/grid"
)

// Ref is one entry of a ConnectionMap: the track reached and which way it is traversed.
type Ref struct {
	Track int
	// Sign is +1 if the Connection is the track's start (traverse forward),
	// or -1 if it is the track's end approached from outside (traverse backward).
	Sign int8
}

// ConnectionMap maps a Connection to the tracks that can be entered through it, in commit order.
type ConnectionMap map[grid.Connection][]Ref

// Network is an append-only collection of committed pieces; a piece's index is its id.
type Network struct {
	tracks []Piece
	conns  ConnectionMap
}

func NewNetwork() *Network {
	return &Network{conns: ConnectionMap{}}
}

// Commit appends p and registers both of its ends. It returns p's id.
func (n *Network) Commit(p Piece) int {
	i := len(n.tracks)
	n.tracks = append(n.tracks, p)
	n.conns[p.Start] = append(n.conns[p.Start], Ref{Track: i, Sign: 1})
	end := p.End.Reverse()
	n.conns[end] = append(n.conns[end], Ref{Track: i, Sign: -1})
	return i
}

// Track returns the piece with id i. It panics if there is no such piece.
func (n *Network) Track(i int) Piece {
	if i < 0 || i >= len(n.tracks) {
		panic(fmt.Sprintf("track %d doesn't exist (%d committed)", i, len(n.tracks)))
	}
	return n.tracks[i]
}

// Has reports whether a track with id i exists.
func (n *Network) Has(i int) bool {
	return i >= 0 && i < len(n.tracks)
}

// Next returns the tracks that can be entered through c.
// The returned slice must not be modified.
func (n *Network) Next(c grid.Connection) []Ref {
	return n.conns[c]
}

// Len is the number of committed tracks.
func (n *Network) Len() int {
	return len(n.tracks)
}

// Tracks returns every committed piece, indexed by id.
// The returned slice must not be modified.
func (n *Network) Tracks() []Piece {
	return n.tracks
}

// Junctions returns the Connections with more than one outgoing track.
func (n *Network) Junctions() []grid.Connection {
	res := make([]grid.Connection, 0)
	for c, refs := range n.conns {
		if len(refs) > 1 {
			res = append(res, c)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		a, b := res[i], res[j]
		if a.Pos.X != b.Pos.X {
			return a.Pos.X < b.Pos.X
		}
		if a.Pos.Y != b.Pos.Y {
			return a.Pos.Y < b.Pos.Y
		}
		return a.Dir < b.Dir
	})
	return res
}
