package grid

import (
	"fmt"
	"math"
)

// Dir is one of the 8 compass directions. North is +Y.
type Dir uint8

const (
	N Dir = iota
	NE
	E
	SE
	S
	SW
	W
	NW
)

var dirNames = [...]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

func (d Dir) String() string {
	if int(d) >= len(dirNames) {
		return fmt.Sprintf("Dir(%d)", uint8(d))
	}
	return dirNames[d]
}

func (d Dir) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Dir) UnmarshalText(text []byte) error {
	for i, name := range dirNames {
		if name == string(text) {
			*d = Dir(i)
			return nil
		}
	}
	return fmt.Errorf("unknown direction %q", text)
}

// Diagonal reports whether d is one of NE, SE, SW, NW.
func (d Dir) Diagonal() bool {
	return d%2 == 1
}

// Opposite returns d rotated by 180°.
func (d Dir) Opposite() Dir {
	return (d + 4) % 8
}

// Unit returns the unit vector d points along.
func (d Dir) Unit() Point {
	const s = math.Sqrt2 / 2
	switch d {
	case N:
		return Point{0, 1}
	case NE:
		return Point{s, s}
	case E:
		return Point{1, 0}
	case SE:
		return Point{s, -s}
	case S:
		return Point{0, -1}
	case SW:
		return Point{-s, -s}
	case W:
		return Point{-1, 0}
	case NW:
		return Point{-s, s}
	default:
		panic(fmt.Sprintf("invalid Dir %d", uint8(d)))
	}
}

// FromAngle classifies a compass angle (degrees, clockwise from north) into the nearest Dir.
// Buckets are 45° wide and centred on the canonical angles.
func FromAngle(angle float64) Dir {
	angle = math.Abs(math.Mod(angle, 360))
	switch {
	case angle < 22.5:
		return N
	case angle < 67.5:
		return NE
	case angle < 112.5:
		return E
	case angle < 157.5:
		return SE
	case angle < 202.5:
		return S
	case angle < 247.5:
		return SW
	case angle < 292.5:
		return W
	case angle < 337.5:
		return NW
	default:
		return N
	}
}

// Angle is meant as the inverse of FromAngle.
// NOTE: SW maps to 235° rather than 225°. Difference (and so the heuristic's
// alignment term) depends on this table; keep it until the intent is confirmed.
func (d Dir) Angle() float64 {
	switch d {
	case N:
		return 0
	case NE:
		return 45
	case E:
		return 90
	case SE:
		return 135
	case S:
		return 180
	case SW:
		return 235
	case W:
		return 270
	case NW:
		return 315
	default:
		panic(fmt.Sprintf("invalid Dir %d", uint8(d)))
	}
}

// Difference returns the minimal angular distance between d and o, normalised to [0, 1]
// (0 = same direction, 1 = opposite).
func (d Dir) Difference(o Dir) float64 {
	a, b := d.Angle(), o.Angle()
	t1 := math.Abs(a - b)
	t2 := math.Abs(a + 360 - b)
	t3 := math.Abs(a - (b + 360))
	return math.Min(t1, math.Min(t2, t3)) / 180
}
