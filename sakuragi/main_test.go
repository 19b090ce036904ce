package sakuragi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"nyiyui.ca/hato/rosen/tal"
	"nyiyui.ca/hato/rosen/tal/grid"
	"nyiyui.ca/hato/rosen/tal/train"
)

func get(t *testing.T, s *Server, target string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest("GET", target, nil))
	return rec.Code, rec.Body.String()
}

func TestIndex(t *testing.T) {
	w := tal.New(tal.NewConf(32))
	s := NewServer(w)
	code, body := get(t, s, "/")
	if code != http.StatusOK || !strings.Contains(body, "not drawing") || !strings.Contains(body, "Trains (0)") {
		t.Fatalf("%d: %s", code, body)
	}

	w.BeginPath(grid.Connection{Pos: grid.Pos{X: 0, Y: 0}, Dir: grid.E})
	w.ExtendPath(grid.Pos{X: 96, Y: 0})
	_, body = get(t, s, "/")
	if !strings.Contains(body, "3 pieces") {
		t.Fatalf("tentative path missing: %s", body)
	}
	w.CommitPath()
	if _, err := w.SpawnTrain(60, 0, 0, train.Form{Cars: 1, Gap: 0, Length: 10}); err != nil {
		t.Fatal(err)
	}
	_, body = get(t, s, "/")
	for _, want := range []string{"Trains (1)", "Tracks (3, 0 junctions)", "straight"} {
		if !strings.Contains(body, want) {
			t.Fatalf("%q missing: %s", want, body)
		}
	}
}

func TestNotFound(t *testing.T) {
	s := NewServer(tal.New(tal.NewConf(32)))
	if code, _ := get(t, s, "/missing"); code != http.StatusNotFound {
		t.Fatalf("status %d", code)
	}
}
