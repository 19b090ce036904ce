// Package train moves multi-segment trains along a track network.
package train

import (
	"fmt"

	"nyiyui.ca/hato/rosen/tal/grid"
	"nyiyui.ca/hato/rosen/tal/track"
)

// Graph is the part of the track network trains read.
type Graph interface {
	Track(i int) track.Piece
	Next(c grid.Connection) []track.Ref
}

// Rand picks junction branches. *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// Segment is one point of a train moving along the network.
type Segment struct {
	Speed float64
	// Track is the id of the track the segment is on.
	Track int
	// Dist is measured from the track's start, whichever way the segment is moving.
	Dist float64
	// Dir is +1 when moving from the track's start to its end, -1 otherwise.
	Dir int8
	// Pos is the world position as of the last update.
	Pos grid.Point
	// turns are choices recorded by the head and not yet replayed.
	turns []int
}

func NewSegment(speed float64, track int, dist float64) Segment {
	return Segment{
		Speed: speed,
		Track: track,
		Dist:  dist,
		Dir:   1,
	}
}

// Bounce is queued in place of a branch index when the head turned back at a dead end.
// A segment replaying it turns back too, even if track has since been laid beyond.
const Bounce = -1

// Push queues a branch choice (or Bounce) to replay at the next track end reached.
func (s *Segment) Push(choice int) {
	s.turns = append(s.turns, choice)
}

// Pending is the number of queued choices.
func (s *Segment) Pending() int {
	return len(s.turns)
}

// Update moves the segment by Speed×dt, crossing onto adjacent tracks as needed.
// It returns the choices it had to make itself (rather than replay), in order: one per track
// end reached, a branch index or Bounce.
func (s *Segment) Update(g Graph, rnd Rand, dt float64) []int {
	var made []int
	s.Dist += s.Speed * dt * float64(s.Dir)
	p := g.Track(s.Track)
	for s.Dist > p.Len() || s.Dist < 0 {
		p = s.cross(g, rnd, p, &made)
	}
	s.Pos = p.Lerp(s.Dist / p.Len())
	return made
}

// cross handles Dist being past either end of p, and returns the track the segment ends up on.
func (s *Segment) cross(g Graph, rnd Rand, p track.Piece, made *[]int) track.Piece {
	l := p.Len()
	if s.Dist > l {
		s.Dist -= l
		if next, ok := s.enter(g, rnd, p.End, made); ok {
			return next
		}
		// bounce off the dead end
		s.Dist = l - s.Dist
		s.Dir = -s.Dir
		return p
	}
	s.Dist = -s.Dist
	if next, ok := s.enter(g, rnd, p.Start.Reverse(), made); ok {
		return next
	}
	s.Dir = -s.Dir
	return p
}

// enter moves the segment onto a track leaving through c, with Dist holding the overshoot.
// It returns false if the segment has to turn back instead.
func (s *Segment) enter(g Graph, rnd Rand, c grid.Connection, made *[]int) (track.Piece, bool) {
	refs := g.Next(c)
	var choice int
	if len(s.turns) > 0 {
		choice, s.turns = s.turns[0], s.turns[1:]
		if choice == Bounce {
			return track.Piece{}, false
		}
		if choice < 0 || choice >= len(refs) {
			panic(fmt.Sprintf("replayed choice %d at %s but only %d branches exist", choice, c, len(refs)))
		}
	} else {
		switch {
		case len(refs) == 0:
			choice = Bounce
		case len(refs) > 1:
			choice = rnd.Intn(len(refs))
		}
		*made = append(*made, choice)
		if choice == Bounce {
			return track.Piece{}, false
		}
	}
	ref := refs[choice]
	next := g.Track(ref.Track)
	s.Dir = ref.Sign
	if s.Dir == -1 {
		s.Dist = next.Len() - s.Dist
	}
	s.Track = ref.Track
	return next, true
}
