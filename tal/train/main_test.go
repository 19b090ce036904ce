package train

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"nyiyui.ca/hato/rosen/tal/grid"
	"nyiyui.ca/hato/rosen/tal/track"
)

const dt = 1.0 / 60

var tcf = track.NewConf(32)

func conn(x, y int, d grid.Dir) grid.Connection {
	return grid.Connection{Pos: grid.Pos{X: x, Y: y}, Dir: d}
}

// line commits n straight pieces heading east from the origin.
func line(n int) *track.Network {
	y := track.NewNetwork()
	for i := 0; i < n; i++ {
		y.Commit(tcf.NewPiece(conn(32*i, 0, grid.E), conn(32*(i+1), 0, grid.E)))
	}
	return y
}

// junction is a lead-in track 0, then a 2-way junction at (32,0): a straight branch
// heading east and a turn heading north-east, each continued for a while.
func junction() *track.Network {
	y := track.NewNetwork()
	y.Commit(tcf.NewPiece(conn(0, 0, grid.E), conn(32, 0, grid.E)))
	prev := conn(32, 0, grid.E)
	for i := 0; i < 8; i++ {
		next := conn(prev.Pos.X+32, 0, grid.E)
		y.Commit(tcf.NewPiece(prev, next))
		prev = next
	}
	prev = conn(80, 16, grid.NE)
	y.Commit(tcf.NewPiece(conn(32, 0, grid.E), prev))
	for i := 0; i < 12; i++ {
		next := conn(prev.Pos.X+16, prev.Pos.Y+16, grid.NE)
		y.Commit(tcf.NewPiece(prev, next))
		prev = next
	}
	return y
}

func checkInRange(t *testing.T, y *track.Network, s *Segment) {
	t.Helper()
	if l := y.Track(s.Track).Len(); s.Dist < 0 || s.Dist > l {
		t.Fatalf("segment on track %d at %v, outside [0, %v]", s.Track, s.Dist, l)
	}
}

func TestSegmentMultiCrossing(t *testing.T) {
	y := line(3)
	rnd := rand.New(rand.NewSource(1))
	for _, speed := range []float64{10, 100, 1000, 5000} {
		s := NewSegment(speed, 0, 0)
		for i := 0; i < 200; i++ {
			s.Update(y, rnd, 0.1)
			checkInRange(t, y, &s)
		}
	}
}

func TestSegmentBounce(t *testing.T) {
	y := line(1)
	s := NewSegment(10, 0, 30)
	s.Update(y, rand.New(rand.NewSource(1)), 1)
	if s.Dist != 24 || s.Dir != -1 || s.Track != 0 {
		t.Fatalf("after bounce: %#v", s)
	}
	s = NewSegment(10, 0, 5)
	s.Dir = -1
	s.Update(y, rand.New(rand.NewSource(1)), 1)
	if s.Dist != 5 || s.Dir != 1 || s.Track != 0 {
		t.Fatalf("after bounce at start: %#v", s)
	}
}

func TestSegmentReverseEntry(t *testing.T) {
	y := track.NewNetwork()
	y.Commit(tcf.NewPiece(conn(0, 0, grid.E), conn(32, 0, grid.E)))
	// laid the other way: its end meets track 0's end
	y.Commit(tcf.NewPiece(conn(64, 0, grid.W), conn(32, 0, grid.W)))
	s := NewSegment(10, 0, 30)
	s.Update(y, rand.New(rand.NewSource(1)), 0.5)
	if s.Track != 1 || s.Dir != -1 || s.Dist != 29 {
		t.Fatalf("after crossing: %#v", s)
	}
	if !cmp.Equal(s.Pos, grid.Point{X: 35, Y: 0}, cmpopts.EquateApprox(0, 1e-9)) {
		t.Fatalf("position %s", s.Pos)
	}
	// turned around, it runs back onto track 0 backwards
	s.Dir = -s.Dir
	s.Update(y, rand.New(rand.NewSource(1)), 0.5)
	if s.Track != 0 || s.Dir != -1 || s.Dist != 30 {
		t.Fatalf("after crossing back: %#v", s)
	}
}

func TestCoupling(t *testing.T) {
	y := line(30)
	form := Form{Cars: 4, Gap: 5, Length: 20}
	tr, err := New(y, rand.New(rand.NewSource(1)), 60, 0, 0, form)
	if err != nil {
		t.Fatal(err)
	}
	if len(tr.Segments) != 8 {
		t.Fatalf("%d segments", len(tr.Segments))
	}
	check := func() {
		t.Helper()
		ps := tr.Positions()
		for i := 1; i < len(ps); i++ {
			want := form.Length
			if i%2 == 0 {
				want = form.Gap
			}
			if d := ps[i-1].Dist(ps[i]); math.Abs(d-want) > 1e-6 {
				t.Fatalf("segments %d and %d are %v apart, expected %v", i-1, i, d, want)
			}
		}
	}
	check()
	if got := tr.Head().Pos.X; math.Abs(got-form.Span()) > 1e-9 {
		t.Fatalf("head at %v, expected %v", got, form.Span())
	}
	for i := 0; i < 600; i++ {
		tr.Update(y, rand.New(rand.NewSource(1)), dt)
		if i%60 == 0 {
			check()
		}
	}
	check()
}

func visited(s *Segment, seen []int) []int {
	if len(seen) == 0 || seen[len(seen)-1] != s.Track {
		seen = append(seen, s.Track)
	}
	return seen
}

func TestJunctionReplay(t *testing.T) {
	y := junction()
	branches := map[int]bool{}
	for seed := int64(0); seed < 16; seed++ {
		rnd := rand.New(rand.NewSource(seed))
		tr, err := New(y, rnd, 90, 0, 0, Form{Cars: 2, Gap: 5, Length: 10})
		if err != nil {
			t.Fatal(err)
		}
		seen := make([][]int, len(tr.Segments))
		for tick := 0; tick < 60*30; tick++ {
			tr.Update(y, rnd, dt)
			for i := range tr.Segments {
				seen[i] = visited(&tr.Segments[i], seen[i])
			}
		}
		head := seen[0]
		for i := 1; i < len(seen); i++ {
			n := len(seen[i])
			if n > len(head) {
				t.Fatalf("seed %d: segment %d visited more tracks than the head: %v / %v", seed, i, seen[i], head)
			}
			if !cmp.Equal(seen[i], head[:n]) {
				t.Fatalf("seed %d: segment %d diverged: %s", seed, i, cmp.Diff(head[:n], seen[i]))
			}
		}
		if len(head) < 2 {
			t.Fatalf("seed %d: head never left track 0: %v", seed, head)
		}
		branches[head[1]] = true
	}
	// track 1 starts the straight branch, track 9 the turn
	if !branches[1] || !branches[9] {
		t.Fatalf("seeds only exercised branches %v", branches)
	}
}

func TestJunctionReplaySeeded(t *testing.T) {
	y := junction()
	run := func() []int {
		rnd := rand.New(rand.NewSource(42))
		tr, err := New(y, rnd, 90, 0, 0, Form{Cars: 1, Gap: 0, Length: 10})
		if err != nil {
			t.Fatal(err)
		}
		var seen []int
		for tick := 0; tick < 60*10; tick++ {
			tr.Update(y, rnd, dt)
			seen = visited(&tr.Segments[1], seen)
		}
		return seen
	}
	a, b := run(), run()
	if !cmp.Equal(a, b) {
		t.Fatalf("same seed, different paths: %s", cmp.Diff(a, b))
	}
}

func TestNewInvalid(t *testing.T) {
	y := line(1)
	rnd := rand.New(rand.NewSource(1))
	if _, err := New(y, rnd, 60, 0, 0, Form{Cars: 0, Gap: 5, Length: 20}); err == nil {
		t.Fatal("expected error for no cars")
	}
	if _, err := New(y, rnd, 60, 0, 0, Form{Cars: 1, Gap: 5, Length: 0}); err == nil {
		t.Fatal("expected error for zero length")
	}
	if _, err := New(y, rnd, 0, 0, 0, Form{Cars: 1, Gap: 5, Length: 20}); err == nil {
		t.Fatal("expected error for zero speed")
	}
}

func TestReplayOutOfRange(t *testing.T) {
	y := line(2)
	s := NewSegment(10, 0, 30)
	s.Push(3)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for an out-of-range replayed choice")
		}
	}()
	s.Update(y, rand.New(rand.NewSource(1)), 1)
}

// Track laid beyond a dead end after the head turned back there must not pull the rest of
// the train onward.
func TestBounceReplayedAfterExtension(t *testing.T) {
	y := line(2)
	rnd := rand.New(rand.NewSource(1))
	tr, err := New(y, rnd, 60, 0, 0, Form{Cars: 1, Gap: 0, Length: 20})
	if err != nil {
		t.Fatal(err)
	}
	tail := &tr.Segments[1]
	for i := 0; tr.Head().Dir == 1; i++ {
		if i > 600 {
			t.Fatal("head never turned back")
		}
		tr.Update(y, rnd, dt)
	}
	if tail.Dir != 1 || tail.Pending() != 1 {
		t.Fatalf("tail %#v, %d pending", tail, tail.Pending())
	}
	y.Commit(tcf.NewPiece(conn(64, 0, grid.E), conn(96, 0, grid.E)))
	y.Commit(tcf.NewPiece(conn(96, 0, grid.E), conn(128, 0, grid.E)))

	head := visited(tr.Head(), nil)
	seen := visited(tail, nil)
	for tail.Dir == 1 {
		tr.Update(y, rnd, dt)
		head = visited(tr.Head(), head)
		seen = visited(tail, seen)
	}
	if tail.Track != 1 || tail.Pending() != 0 {
		t.Fatalf("tail turned back on track %d with %d pending", tail.Track, tail.Pending())
	}
	for i := 0; i < 120; i++ {
		tr.Update(y, rnd, dt)
		head = visited(tr.Head(), head)
		seen = visited(tail, seen)
	}
	if n := len(seen); n > len(head) || !cmp.Equal(seen, head[:n]) {
		t.Fatalf("tail diverged: head %v, tail %v", head, seen)
	}
}
