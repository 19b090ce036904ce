package tal

import (
	"fmt"
	"image/color"

	"github.com/google/uuid"
	"nyiyui.ca/hato/rosen/tal/grid"
	"nyiyui.ca/hato/rosen/tal/track"
	"nyiyui.ca/hato/rosen/tal/train"
)

// turnSamples is how many lines a turn is drawn with.
const turnSamples = 12

// Snapshot is everything a renderer needs to draw one frame.
type Snapshot struct {
	Tracks    []Track           `json:"tracks"`
	Trains    []Train           `json:"trains"`
	Junctions []grid.Connection `json:"junctions"`
	// Path is nil when no path is being drawn.
	Path *Path `json:"path,omitempty"`
}

type Track struct {
	ID    int             `json:"id"`
	Kind  track.Kind      `json:"kind"`
	Start grid.Connection `json:"start"`
	End   grid.Connection `json:"end"`
	Len   float64         `json:"len"`
	// Points is the start and end for straight pieces, and a sampled polyline for turns.
	Points []grid.Point `json:"points"`
}

type Train struct {
	ID     uuid.UUID `json:"id"`
	Colour string    `json:"colour"`
	// Segments are world positions, head first. Segments 2k and 2k+1 are the ends of car k.
	Segments []grid.Point `json:"segments"`
}

// Cars returns the coupled segment pairs (front, back) of each car.
func (t Train) Cars() [][2]grid.Point {
	res := make([][2]grid.Point, 0, len(t.Segments)/2)
	for i := 0; i+1 < len(t.Segments); i += 2 {
		res = append(res, [2]grid.Point{t.Segments[i], t.Segments[i+1]})
	}
	return res
}

type Path struct {
	Start grid.Connection `json:"start"`
	// Goal is nil until the path is first extended.
	Goal   *grid.Pos `json:"goal,omitempty"`
	Found  bool      `json:"found"`
	Cost   int       `json:"cost"`
	Pieces []Track   `json:"pieces"`
	// Trace is only filled in when tracing is enabled.
	Trace []Track `json:"trace"`
}

func hexColour(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func trackView(id int, p track.Piece) Track {
	return Track{
		ID:     id,
		Kind:   p.Kind,
		Start:  p.Start,
		End:    p.End,
		Len:    p.Len(),
		Points: p.Points(turnSamples),
	}
}

// uncommitted pieces get id -1.
func trackViews(ps []track.Piece) []Track {
	res := make([]Track, len(ps))
	for i, p := range ps {
		res[i] = trackView(-1, p)
	}
	return res
}

func trainView(t *train.Train) Train {
	return Train{
		ID:       t.ID,
		Colour:   hexColour(t.Colour),
		Segments: t.Positions(),
	}
}

// Snapshot copies out the current state.
func (w *World) Snapshot() Snapshot {
	w.lock.RLock()
	defer w.lock.RUnlock()
	tracks := w.network.Tracks()
	s := Snapshot{
		Tracks:    make([]Track, len(tracks)),
		Trains:    make([]Train, len(w.trains)),
		Junctions: w.network.Junctions(),
	}
	for i, p := range tracks {
		s.Tracks[i] = trackView(i, p)
	}
	for i, t := range w.trains {
		s.Trains[i] = trainView(t)
	}
	if w.session != nil {
		p := &Path{
			Start:  w.session.Start(),
			Pieces: trackViews(w.session.Pieces()),
			Trace:  trackViews(w.session.Trace()),
		}
		if goal, ok := w.session.Goal(); ok {
			p.Goal = &goal
		}
		if res, ok := w.session.Result(); ok {
			p.Found = true
			p.Cost = res.Cost
		}
		s.Path = p
	}
	return s
}
