// Package server exposes the dashboard over HTTP: rendered pages, a JSON
// API for panels and exports, and a WebSocket stream of panel events.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/energyconsortium/energydash-go/internal/config"
	"github.com/energyconsortium/energydash-go/pkg/energydash"
	"github.com/energyconsortium/energydash-go/pkg/energydash/panel"
)

// Server is the HTTP dashboard server.
type Server struct {
	router chi.Router
	cfg    *config.Config
	dash   *energydash.Dashboard
	hub    *Hub
	pages  *template.Template
	logger *log.Logger

	unsubscribe func()
}

// New creates a server over dash with all routes and middleware. Panel
// events of dash are forwarded to WebSocket clients once Run starts.
func New(cfg *config.Config, dash *energydash.Dashboard, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	pages, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	s := &Server{
		cfg:    cfg,
		dash:   dash,
		hub:    NewHub(logger),
		pages:  pages,
		logger: logger,
	}
	s.unsubscribe = dash.Subscribe(func(e panel.Event) {
		s.hub.Broadcast(Message{Type: "panel", Data: e})
	})
	s.router = s.buildRouter()
	return s, nil
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.hub.Run(hubCtx)

	errc := make(chan error, 1)
	go func() {
		s.logger.Printf("listening on http://%s", httpSrv.Addr)
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	s.logger.Println("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	defer s.unsubscribe()
	return httpSrv.Shutdown(shutdownCtx)
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: s.logger, NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	origins := []string{"*"}
	if len(s.cfg.Server.CORSOrigins) > 0 {
		origins = s.cfg.Server.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Content-Disposition", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleHome)
	r.Get("/pages/{page}", s.handlePage)
	r.Get("/ws", s.handleWebSocket)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/pages", s.handleListPages)
		r.Route("/pages/{page}", func(r chi.Router) {
			r.Get("/", s.handleGetPage)
			r.Get("/report.pdf", s.handlePageReport)
			r.Get("/export.zip", s.handlePageArchive)
		})

		r.Route("/panels/{panel}", func(r chi.Router) {
			r.Get("/", s.handleGetPanel)
			r.Get("/image.png", s.handlePanelImage)
			r.Get("/table.xlsx", s.handlePanelTable)
			r.Post("/fullscreen", s.handleToggleFullscreen)
			r.Post("/variant/{key}", s.handleSelectVariant)
			r.Post("/theme/{name}", s.handleSetTheme)
		})
	})

	return r
}
