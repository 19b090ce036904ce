// Package sakuragi serves a status page for the world.
package sakuragi

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/Masterminds/sprig/v3"
	"go.uber.org/zap"
	"nyiyui.ca/hato/rosen/tal"
	"nyiyui.ca/hato/rosen/tal/grid"
)

//go:embed index.html
var templates embed.FS

type Server struct {
	w  *tal.World
	sm *http.ServeMux
	t  *template.Template
}

func NewServer(w *tal.World) *Server {
	s := &Server{
		w:  w,
		sm: http.NewServeMux(),
	}
	s.t = template.Must(template.New("index").Funcs(sprig.FuncMap()).Funcs(template.FuncMap{
		"point": func(p grid.Point) string {
			return p.String()
		},
		"head": func(t tal.Train) grid.Point {
			return t.Segments[0]
		},
	}).ParseFS(templates, "*.html"))
	s.sm.HandleFunc("/", s.handleIndex)
	return s
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	conf := s.w.Conf()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := s.t.ExecuteTemplate(w, "index", map[string]interface{}{
		"gs":   s.w.Snapshot(),
		"conf": conf,
		"now":  time.Now().Format("15:04:05"),
	})
	if err != nil {
		zap.S().Errorf("sakuragi: render index: %s", err)
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.sm.ServeHTTP(w, r)
}
