// Package kujo streams world snapshots over Server-Sent Events.
package kujo

import (
	"encoding/json"
	"net/http"

	"github.com/r3labs/sse/v2"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"nyiyui.ca/hato/rosen/tal"
)

const streamSnapshot = "snapshot"

type Server struct {
	w    *tal.World
	s    *sse.Server
	mux  *http.ServeMux
	cors *cors.Cors
	ch   chan tal.Snapshot
	done chan struct{}
}

// NewServer starts forwarding w's snapshots. Browsers on origins may read the stream.
func NewServer(w *tal.World, origins []string) *Server {
	s := &Server{
		w:    w,
		s:    sse.New(),
		mux:  http.NewServeMux(),
		ch:   make(chan tal.Snapshot, 1),
		done: make(chan struct{}),
		cors: cors.New(cors.Options{
			AllowedOrigins: origins,
		}),
	}
	// a new subscriber only wants the latest frame
	s.s.AutoReplay = false
	s.s.CreateStream(streamSnapshot)
	s.mux.Handle("/events", s.s)
	s.mux.HandleFunc("/snapshot", s.handleSnapshot)
	w.SnapshotMux.Subscribe("kujo", s.ch)
	go s.forward()
	return s
}

func (s *Server) forward() {
	for {
		select {
		case <-s.done:
			return
		case gs := <-s.ch:
			data, err := json.Marshal(gs)
			if err != nil {
				zap.S().Errorf("kujo: marshal json: %s", err)
				continue
			}
			s.s.TryPublish(streamSnapshot, &sse.Event{
				Data: data,
			})
		}
	}
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	gs, ok := s.w.SnapshotMux.Current()
	if !ok {
		http.Error(w, "no snapshot yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(gs); err != nil {
		zap.S().Errorf("kujo: write snapshot: %s", err)
	}
}

// Close stops forwarding and disconnects every client.
func (s *Server) Close() {
	s.w.SnapshotMux.Unsubscribe(s.ch)
	close(s.done)
	s.s.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Handler is the server wrapped with CORS handling.
func (s *Server) Handler() http.Handler {
	return s.cors.Handler(s)
}
