// Package track holds track piece geometry and the committed track network.
package track

import (
	"fmt"
	"math"

	"nyiyui.ca/hato/rosen/tal/grid"
)

// Kind is the geometric class of a Piece.
type Kind uint8

const (
	Straight Kind = iota
	Diagonal
	Turn
)

func (k Kind) String() string {
	switch k {
	case Straight:
		return "straight"
	case Diagonal:
		return "diagonal"
	case Turn:
		return "turn"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	for c := Straight; c <= Turn; c++ {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown kind %q", text)
}

// Classify decides the Kind of a piece between two positions.
func Classify(start, end grid.Pos) Kind {
	d := end.Sub(start)
	switch {
	case d.X == 0 || d.Y == 0:
		return Straight
	case abs(d.X) == abs(d.Y):
		return Diagonal
	default:
		return Turn
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Conf holds the geometry constants pieces are built with.
type Conf struct {
	// TurnLength is the travel length reported by every turn piece.
	// Lerp follows the curve's own geometry regardless, so a TurnLength other than the
	// default only stretches the time spent in a turn.
	TurnLength float64
}

func NewConf(cellSize int) Conf {
	return Conf{TurnLength: grid.TurnLength(float64(cellSize))}
}

// Piece is an immutable piece of track between two Connections.
// Start faces the way the piece is left from; End faces the way travel continues after it.
type Piece struct {
	Kind   Kind
	Start  grid.Connection
	End    grid.Connection
	length float64
	curve  *curve
}

// NewPiece classifies and builds the piece from start to end.
func (cf Conf) NewPiece(start, end grid.Connection) Piece {
	p := Piece{
		Kind:  Classify(start.Pos, end.Pos),
		Start: start,
		End:   end,
	}
	switch p.Kind {
	case Straight, Diagonal:
		p.length = start.Pos.Point().Dist(end.Pos.Point())
	case Turn:
		p.length = cf.TurnLength
		p.curve = newCurve(start, end)
	default:
		panic("unreachable")
	}
	return p
}

func (p Piece) String() string {
	return fmt.Sprintf("%s %s→%s", p.Kind, p.Start, p.End)
}

// Len is the distance travelled along the piece.
func (p Piece) Len() float64 {
	return p.length
}

// Lerp maps t ∈ [0, 1] to a world position along the piece.
func (p Piece) Lerp(t float64) grid.Point {
	a, b := p.Start.Pos.Point(), p.End.Pos.Point()
	switch p.Kind {
	case Straight, Diagonal:
		return a.Add(b.Sub(a).Scale(t))
	case Turn:
		return p.curve.at(t)
	default:
		panic("unreachable")
	}
}

// Points samples n+1 evenly spaced positions along the piece (for drawing curves).
func (p Piece) Points(n int) []grid.Point {
	if p.Kind != Turn || n < 1 {
		return []grid.Point{p.Start.Pos.Point(), p.End.Pos.Point()}
	}
	res := make([]grid.Point, n+1)
	for i := range res {
		res[i] = p.Lerp(float64(i) / float64(n))
	}
	return res
}

// curve is a straight run joined to a circular arc, tangent to both connections.
// The straight run sits on whichever side is further from the tangents' intersection.
type curve struct {
	a, b grid.Point // piece endpoints
	u0   grid.Point // unit tangent at a
	u1   grid.Point // unit tangent at b
	lead float64    // straight run before the arc
	arc  float64    // arc length
	tail float64    // straight run after the arc
	c    grid.Point // arc centre
	r    float64
	n0   grid.Point // unit normal at arc start, pointing away from the centre
	sign float64    // +1 counter-clockwise, -1 clockwise
}

func newCurve(start, end grid.Connection) *curve {
	a, b := start.Pos.Point(), end.Pos.Point()
	u0, u1 := start.Dir.Unit(), end.Dir.Unit()
	d := b.Sub(a)
	det := u0.X*u1.Y - u0.Y*u1.X
	if math.Abs(det) < 1e-9 {
		panic(fmt.Sprintf("turn between parallel connections %s and %s", start, end))
	}
	// a + s*u0 == b - q*u1 is where the two tangent lines meet
	s := (d.X*u1.Y - d.Y*u1.X) / det
	q := (u0.X*d.Y - u0.Y*d.X) / det
	theta := math.Acos(math.Max(-1, math.Min(1, u0.X*u1.X+u0.Y*u1.Y)))
	t := math.Min(s, q)
	cv := &curve{a: a, b: b, u0: u0, u1: u1}
	cv.lead = s - t
	cv.tail = q - t
	cv.r = t / math.Tan(theta/2)
	cv.arc = cv.r * theta
	cv.sign = 1
	if det < 0 {
		cv.sign = -1
	}
	arcStart := a.Add(u0.Scale(cv.lead))
	// left normal for counter-clockwise turns, right normal for clockwise ones
	toCentre := grid.Point{X: -u0.Y * cv.sign, Y: u0.X * cv.sign}
	cv.c = arcStart.Add(toCentre.Scale(cv.r))
	cv.n0 = toCentre.Scale(-1)
	return cv
}

func (cv *curve) length() float64 {
	return cv.lead + cv.arc + cv.tail
}

func (cv *curve) at(t float64) grid.Point {
	if t <= 0 {
		return cv.a
	}
	if t >= 1 {
		return cv.b
	}
	s := t * cv.length()
	if s <= cv.lead {
		return cv.a.Add(cv.u0.Scale(s))
	}
	s -= cv.lead
	if s <= cv.arc {
		phi := s / cv.r
		return cv.c.Add(cv.n0.Scale(cv.r * math.Cos(phi))).Add(cv.u0.Scale(cv.r * math.Sin(phi)))
	}
	s -= cv.arc
	return cv.b.Sub(cv.u1.Scale(cv.tail - s))
}
