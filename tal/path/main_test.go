package path

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"nyiyui.ca/hato/rosen/tal/grid"
	"nyiyui.ca/hato/rosen/tal/track"
)

func conn(x, y int, d grid.Dir) grid.Connection {
	return grid.Connection{Pos: grid.Pos{X: x, Y: y}, Dir: d}
}

func TestStraightPath(t *testing.T) {
	cf := NewConf(32)
	res, _, ok := cf.Find(conn(0, 0, grid.E), grid.Pos{X: 320, Y: 0})
	if !ok {
		t.Fatal("no path")
	}
	expected := make([]grid.Connection, 0, 11)
	for i := 0; i <= 10; i++ {
		expected = append(expected, conn(32*i, 0, grid.E))
	}
	if !cmp.Equal(res.Conns, expected) {
		t.Fatalf("diff: %s", cmp.Diff(expected, res.Conns))
	}
	if want := 10 * cf.Grid.StraightCost * 10; res.Cost != want {
		t.Fatalf("cost %d, expected %d", res.Cost, want)
	}
	pieces := res.Pieces(cf.Track)
	if len(pieces) != 10 {
		t.Fatalf("%d pieces, expected 10", len(pieces))
	}
	for i, p := range pieces {
		if p.Kind != track.Straight {
			t.Fatalf("piece %d is %s", i, p.Kind)
		}
	}
}

func TestSingleTurn(t *testing.T) {
	cf := NewConf(32)
	res, _, ok := cf.Find(conn(0, 0, grid.E), grid.Pos{X: 48, Y: 16})
	if !ok {
		t.Fatal("no path")
	}
	expected := []grid.Connection{conn(0, 0, grid.E), conn(48, 16, grid.NE)}
	if !cmp.Equal(res.Conns, expected) {
		t.Fatalf("diff: %s", cmp.Diff(expected, res.Conns))
	}
	if res.Cost != cf.Grid.TurnCost*10 {
		t.Fatalf("cost %d", res.Cost)
	}
	if p := res.Pieces(cf.Track)[0]; p.Kind != track.Turn {
		t.Fatalf("piece is %s", p.Kind)
	}
}

func TestConnectedPath(t *testing.T) {
	cf := NewConf(32)
	goal := grid.Pos{X: 80, Y: 80}
	res, _, ok := cf.Find(conn(0, 0, grid.E), goal)
	if !ok {
		t.Fatal("no path")
	}
	pieces := res.Pieces(cf.Track)
	if len(pieces) != len(res.Conns)-1 {
		t.Fatalf("%d pieces from %d connections", len(pieces), len(res.Conns))
	}
	for i := 1; i < len(pieces); i++ {
		if pieces[i-1].End != pieces[i].Start {
			t.Fatalf("pieces %d and %d are not joined: %s / %s", i-1, i, pieces[i-1], pieces[i])
		}
	}
	if last := pieces[len(pieces)-1].End.Pos; last != goal {
		t.Fatalf("path ends at %s", last)
	}
	var sum int
	for i := 1; i < len(res.Conns); i++ {
		for _, c := range cf.Grid.Candidates(res.Conns[i-1]) {
			if c.Conn == res.Conns[i] {
				sum += c.Cost * 10
			}
		}
	}
	if sum != res.Cost {
		t.Fatalf("cost %d, moves add up to %d", res.Cost, sum)
	}
}

func TestDeterministic(t *testing.T) {
	cf := NewConf(32)
	for _, goal := range []grid.Pos{{X: 320, Y: 0}, {X: 80, Y: 80}, {X: 48, Y: -16}} {
		a, _, okA := cf.Find(conn(0, 0, grid.E), goal)
		b, _, okB := cf.Find(conn(0, 0, grid.E), goal)
		if okA != okB || !cmp.Equal(a, b) {
			t.Fatalf("goal %s: results differ: %s", goal, cmp.Diff(a, b))
		}
	}
}

func TestNoPathAtStart(t *testing.T) {
	cf := NewConf(32)
	res, _, ok := cf.Find(conn(0, 0, grid.E), grid.Pos{X: 0, Y: 0})
	if ok {
		t.Fatalf("expected no path, got %v", res.Conns)
	}
	if len(res.Pieces(cf.Track)) != 0 {
		t.Fatal("pieces from a failed search")
	}
}

func TestNoPathUnreachable(t *testing.T) {
	cf := NewConf(32)
	cf.SearchLimit = 2000
	// off every sub-lattice a move can land on
	res, _, ok := cf.Find(conn(0, 0, grid.E), grid.Pos{X: 1, Y: 1})
	if ok {
		t.Fatalf("expected no path, got %v", res.Conns)
	}
	if res.Explored < cf.SearchLimit {
		t.Fatalf("explored %d nodes, expected the limit %d", res.Explored, cf.SearchLimit)
	}
}

func TestTrace(t *testing.T) {
	cf := NewConf(32)
	_, trace, _ := cf.Find(conn(0, 0, grid.E), grid.Pos{X: 96, Y: 0})
	if len(trace) != 0 {
		t.Fatalf("trace recorded while disabled: %d pieces", len(trace))
	}
	cf.Trace = true
	res, trace, ok := cf.Find(conn(0, 0, grid.E), grid.Pos{X: 96, Y: 0})
	if !ok {
		t.Fatal("no path")
	}
	// every expanded node adds its unseen candidates; the start alone adds 3
	if len(trace) < 3 || len(trace) != res.Explored-1 {
		t.Fatalf("trace has %d pieces, %d nodes explored", len(trace), res.Explored)
	}
	cf.Trace = false
	res2, _, _ := cf.Find(conn(0, 0, grid.E), grid.Pos{X: 96, Y: 0})
	if !cmp.Equal(res.Conns, res2.Conns) {
		t.Fatal("trace changed the result")
	}
}

// The alignment term is inert by default, and when enabled its "toward the goal" facing is
// derived from atan, which folds western goals onto East.
func TestEstimate(t *testing.T) {
	cf := NewConf(32)
	for _, d := range []grid.Dir{grid.N, grid.E, grid.S, grid.W} {
		if got := cf.Estimate(conn(0, 0, d), grid.Pos{X: 320, Y: 0}); got != 3520 {
			t.Fatalf("%s: estimate %d, expected 3520", d, got)
		}
	}
	cf.AlignmentWeight = 100
	if got := cf.Estimate(conn(0, 0, grid.E), grid.Pos{X: 320, Y: 0}); got != 3520 {
		t.Fatalf("east facing east goal: %d", got)
	}
	if got := cf.Estimate(conn(0, 0, grid.N), grid.Pos{X: 320, Y: 0}); got != 3570 {
		t.Fatalf("north facing east goal: %d", got)
	}
	if got := cf.Estimate(conn(0, 0, grid.E), grid.Pos{X: -320, Y: 0}); got != 3520 {
		t.Fatalf("east facing west goal: %d", got)
	}
	if got := cf.Estimate(conn(0, 0, grid.W), grid.Pos{X: -320, Y: 0}); got != 3620 {
		t.Fatalf("west facing west goal: %d", got)
	}
}

func TestSession(t *testing.T) {
	cf := NewConf(32)
	s := NewSession(cf, conn(0, 0, grid.E))
	if _, ok := s.Goal(); ok {
		t.Fatal("goal before Extend")
	}
	if !s.Extend(grid.Pos{X: 64, Y: 0}) {
		t.Fatal("first Extend didn't search")
	}
	if len(s.Pieces()) != 2 {
		t.Fatalf("%d pieces", len(s.Pieces()))
	}
	if s.Extend(grid.Pos{X: 64, Y: 0}) {
		t.Fatal("Extend to the same goal searched again")
	}
	s.Extend(grid.Pos{X: 0, Y: 0})
	if _, ok := s.Result(); ok || s.Pieces() != nil {
		t.Fatal("tentative route kept after a failed search")
	}
	s.Extend(grid.Pos{X: 128, Y: 0})
	if len(s.Pieces()) != 4 {
		t.Fatalf("%d pieces", len(s.Pieces()))
	}
}
