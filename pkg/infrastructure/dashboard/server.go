// Package dashboard serves the goal dashboard: HTML pages, a JSON API and a
// websocket stream of live progress updates.
package dashboard

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/felixgeelhaar/goalgenie/pkg/application"
)

//go:embed templates/*.html
var templateFS embed.FS

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Options configures a Server.
type Options struct {
	AllowedOrigins []string
	Logger         *slog.Logger
}

// Server is the dashboard HTTP server.
type Server struct {
	goals    *application.GoalService
	progress *application.ProgressService
	hub      *Hub
	origins  []string
	pages    *template.Template
	logger   *slog.Logger
}

// New builds a dashboard and subscribes its websocket hub to progress
// changes.
func New(goals *application.GoalService, progress *application.ProgressService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		goals:    goals,
		progress: progress,
		hub:      NewHub(opts.AllowedOrigins, logger),
		origins:  opts.AllowedOrigins,
		pages:    template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")),
		logger:   logger,
	}
	progress.OnChange(s.hub.BroadcastProgress)
	return s
}

// Hub returns the websocket hub, e.g. to forward workspace file changes.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors(s.origins))

	r.Get("/healthz", s.handleHealthz)
	r.Get("/ws", s.hub.ServeHTTP)

	r.Route("/api/goals", func(r chi.Router) {
		r.Get("/", s.listGoals)
		r.Post("/", s.createGoal)
		r.Route("/{goal_id}", func(r chi.Router) {
			r.Get("/", s.getGoal)
			r.Delete("/", s.deleteGoal)
			r.Get("/progress", s.getProgress)
			r.Delete("/progress", s.resetProgress)
			r.Post("/items/{key}/toggle", s.toggleItem)
			r.Put("/items/{key}", s.setItem)
		})
	})

	r.Get("/", s.indexPage)
	r.Post("/goals", s.createGoalForm)
	r.Get("/goals/{goal_id}", s.goalPage)
	r.Post("/goals/{goal_id}/toggle", s.toggleForm)

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
