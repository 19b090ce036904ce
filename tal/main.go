// Package tal runs the world: the track network, the trains on it, and the path being drawn.
package tal

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nyiyui.ca/hato/rosen/notify"
	"nyiyui.ca/hato/rosen/tal/grid"
	"nyiyui.ca/hato/rosen/tal/path"
	"nyiyui.ca/hato/rosen/tal/track"
	"nyiyui.ca/hato/rosen/tal/train"
)

// ErrNoTrack is returned when spawning on a track id that was never committed.
var ErrNoTrack = errors.New("no such track")

type Conf struct {
	Path path.Conf
	// Tick is the fixed time step of Run.
	Tick time.Duration
	// Seed seeds junction choices, train ids and colours.
	Seed int64
}

func NewConf(cellSize int) Conf {
	return Conf{
		Path: path.NewConf(cellSize),
		Tick: time.Second / 60,
		Seed: 1,
	}
}

type World struct {
	conf Conf
	// lock guards everything below. Ticks hold it for writing, so trains never see
	// the network grow mid-update.
	lock    sync.RWMutex
	network *track.Network
	trains  []*train.Train
	session *path.Session
	rnd     *rand.Rand

	SnapshotMux *notify.Multiplexer[Snapshot]
	snapshotS   *notify.MultiplexerSender[Snapshot]
}

func New(conf Conf) *World {
	w := &World{
		conf:    conf,
		network: track.NewNetwork(),
		rnd:     rand.New(rand.NewSource(conf.Seed)),
	}
	w.snapshotS, w.SnapshotMux = notify.NewMultiplexerSender[Snapshot]("world")
	return w
}

func (w *World) Conf() Conf {
	return w.conf
}

// BeginPath starts drawing a path from start.
// It returns false (and does nothing) if a path is already being drawn.
func (w *World) BeginPath(start grid.Connection) bool {
	w.lock.Lock()
	defer w.lock.Unlock()
	if w.session != nil {
		return false
	}
	w.session = path.NewSession(w.conf.Path, start)
	zap.S().Debugf("begin path at %s", start)
	return true
}

// ExtendPath re-routes the path being drawn to goal.
// It reports whether a route to goal exists; without an active path it does nothing.
func (w *World) ExtendPath(goal grid.Pos) bool {
	w.lock.Lock()
	defer w.lock.Unlock()
	if w.session == nil {
		return false
	}
	if w.session.Extend(goal) {
		res, ok := w.session.Result()
		if ok {
			zap.S().Debugf("path %s → %s: %d pieces, cost %d, %d nodes", w.session.Start(), goal, len(res.Conns)-1, res.Cost, res.Explored)
		} else {
			zap.S().Debugf("path %s → %s: no path (%d nodes)", w.session.Start(), goal, res.Explored)
		}
	}
	_, ok := w.session.Result()
	return ok
}

// CommitPath commits the tentative route, if any, and ends the drawing session.
// It returns the ids of the new tracks.
func (w *World) CommitPath() []int {
	w.lock.Lock()
	defer w.lock.Unlock()
	if w.session == nil {
		return nil
	}
	pieces := w.session.Pieces()
	w.session = nil
	if len(pieces) == 0 {
		zap.S().Debugf("path dropped: no route")
		return nil
	}
	ids := make([]int, 0, len(pieces))
	for _, p := range pieces {
		ids = append(ids, w.network.Commit(p))
	}
	zap.S().Infof("committed %d tracks (%d–%d)", len(ids), ids[0], ids[len(ids)-1])
	return ids
}

// CancelPath ends the drawing session without committing.
func (w *World) CancelPath() {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.session = nil
}

// Drawing reports whether a path is being drawn.
func (w *World) Drawing() bool {
	w.lock.RLock()
	defer w.lock.RUnlock()
	return w.session != nil
}

// SpawnTrain places a new train with its last segment dist along track.
func (w *World) SpawnTrain(speed float64, trackID int, dist float64, form train.Form) (uuid.UUID, error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	if !w.network.Has(trackID) {
		return uuid.Nil, fmt.Errorf("spawn on track %d: %w", trackID, ErrNoTrack)
	}
	if l := w.network.Track(trackID).Len(); dist < 0 || dist > l {
		return uuid.Nil, fmt.Errorf("spawn at %v: outside track %d (length %v)", dist, trackID, l)
	}
	t, err := train.New(w.network, w.rnd, speed, trackID, dist, form)
	if err != nil {
		return uuid.Nil, fmt.Errorf("spawn: %w", err)
	}
	w.trains = append(w.trains, t)
	zap.S().Infof("spawned train %s on track %d (%d cars, speed %v)", t.ID, trackID, form.Cars, speed)
	return t.ID, nil
}

// Tick advances every train by dt seconds, one train at a time.
func (w *World) Tick(dt float64) {
	w.lock.Lock()
	defer w.lock.Unlock()
	for _, t := range w.trains {
		t.Update(w.network, w.rnd, dt)
	}
}

// Run ticks the world every Conf.Tick and publishes a snapshot after each tick, until ctx is done.
func (w *World) Run(ctx context.Context) {
	ticker := time.NewTicker(w.conf.Tick)
	defer ticker.Stop()
	dt := w.conf.Tick.Seconds()
	zap.S().Infof("world running (tick %s)", w.conf.Tick)
	for {
		select {
		case <-ctx.Done():
			zap.S().Infof("world stopped: %s", ctx.Err())
			return
		case <-ticker.C:
			w.Tick(dt)
			w.snapshotS.Send(w.Snapshot())
		}
	}
}
