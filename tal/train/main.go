package train

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"github.com/google/uuid"
	"nyiyui.ca/hato/rosen/tal/grid"
)

// Form describes how a train's segments are laid out.
// Each car has two segments (its front and back), Length apart; cars are Gap apart.
type Form struct {
	Cars   int     `json:"cars"`
	Gap    float64 `json:"gap"`
	Length float64 `json:"length"`
}

func (f Form) Validate() error {
	if f.Cars < 1 {
		return errors.New("a train needs at least one car")
	}
	if f.Gap < 0 || f.Length <= 0 {
		return fmt.Errorf("invalid gap %v / length %v", f.Gap, f.Length)
	}
	return nil
}

// Span is the distance from the first segment to the last.
func (f Form) Span() float64 {
	return float64(f.Cars)*f.Length + float64(f.Cars-1)*f.Gap
}

// offsets returns how far behind the head each segment sits.
func (f Form) offsets() []float64 {
	res := make([]float64, 0, f.Cars*2)
	var off float64
	for i := 0; i < f.Cars*2; i++ {
		res = append(res, off)
		if i%2 == 0 {
			off += f.Length
		} else {
			off += f.Gap
		}
	}
	return res
}

// Source is a random source for branch choices, colours and ids.
// *math/rand.Rand satisfies it.
type Source interface {
	Rand
	io.Reader
	Float64() float64
}

type Train struct {
	ID       uuid.UUID
	Colour   color.RGBA
	Segments []Segment
}

// New places a train with its last segment at dist along track, head first.
// The head is run ahead through the network first, and every branch choice it makes is
// replayed by the segments behind it, so the whole train starts out along one path.
func New(g Graph, src Source, speed float64, track int, dist float64, form Form) (*Train, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	if speed <= 0 {
		return nil, fmt.Errorf("invalid speed %v", speed)
	}
	id, err := uuid.NewRandomFromReader(src)
	if err != nil {
		return nil, fmt.Errorf("generate id: %w", err)
	}
	t := &Train{
		ID: id,
		Colour: color.RGBA{
			R: uint8(src.Float64() * 255),
			G: uint8(src.Float64() * 255),
			B: uint8(src.Float64() * 255),
			A: 255,
		},
	}
	span := form.Span()
	offsets := form.offsets()
	t.Segments = make([]Segment, 0, len(offsets))

	head := NewSegment(speed, track, dist)
	queue := head.Update(g, src, span/speed)
	t.Segments = append(t.Segments, head)
	for _, off := range offsets[1:] {
		seg := NewSegment(speed, track, dist)
		for _, c := range queue {
			seg.Push(c)
		}
		seg.Update(g, src, (span-off)/speed)
		t.Segments = append(t.Segments, seg)
	}
	return t, nil
}

// Update advances the head, then every trailing segment after feeding it the head's choices.
func (t *Train) Update(g Graph, rnd Rand, dt float64) {
	queue := t.Segments[0].Update(g, rnd, dt)
	for i := 1; i < len(t.Segments); i++ {
		for _, c := range queue {
			t.Segments[i].Push(c)
		}
		t.Segments[i].Update(g, rnd, dt)
	}
}

// Head is the lead segment.
func (t *Train) Head() *Segment {
	return &t.Segments[0]
}

// Positions returns every segment's world position, head first.
func (t *Train) Positions() []grid.Point {
	res := make([]grid.Point, len(t.Segments))
	for i, s := range t.Segments {
		res[i] = s.Pos
	}
	return res
}
