package path

import (
	"nyiyui.ca/hato/rosen/tal/grid"
	"nyiyui.ca/hato/rosen/tal/track"
)

// Session is one path-drawing interaction: a fixed start and a tentative route to the
// latest cursor position.
type Session struct {
	cf     Conf
	start  grid.Connection
	goal   grid.Pos
	moved  bool
	result Result
	found  bool
	pieces []track.Piece
	trace  []track.Piece
}

func NewSession(cf Conf, start grid.Connection) *Session {
	return &Session{cf: cf, start: start}
}

func (s *Session) Start() grid.Connection {
	return s.start
}

// Goal returns the latest goal, if Extend was called.
func (s *Session) Goal() (grid.Pos, bool) {
	return s.goal, s.moved
}

// Extend re-runs the search toward goal and replaces the tentative route.
// It returns false without searching if goal is the same as the previous one.
func (s *Session) Extend(goal grid.Pos) bool {
	if s.moved && goal == s.goal {
		return false
	}
	s.goal = goal
	s.moved = true
	s.result, s.trace, s.found = s.cf.Find(s.start, goal)
	s.pieces = nil
	if s.found {
		s.pieces = s.result.Pieces(s.cf.Track)
	}
	return true
}

// Result returns the latest search result; ok is false if there is no tentative route.
func (s *Session) Result() (res Result, ok bool) {
	return s.result, s.found
}

// Pieces is the tentative route as track pieces, or nil if there is none.
func (s *Session) Pieces() []track.Piece {
	return s.pieces
}

// Trace is the diagnostic trace of the latest search (empty unless Conf.Trace is set).
func (s *Session) Trace() []track.Piece {
	return s.trace
}
