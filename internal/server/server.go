// Package server exposes the quiz over HTTP: the evaluate and remediate
// endpoints used by browser clients, and a session API that drives a
// quiz.Controller per learner.
package server

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/abhisek/lectura/internal/content"
	"github.com/abhisek/lectura/internal/grading"
	"github.com/abhisek/lectura/internal/quiz"
	"github.com/abhisek/lectura/internal/remediation"
	"github.com/abhisek/lectura/internal/report"
)

// Deps are the collaborators shared by every session.
type Deps struct {
	Bank       *content.Bank
	Grader     grading.Gateway
	Remediator remediation.Gateway

	// Recorder is optional.
	Recorder quiz.Recorder

	// Exporter defaults to a compressed PDF exporter.
	Exporter report.Exporter

	// Now defaults to time.Now.
	Now func() time.Time
}

// Server is the HTTP front end.
type Server struct {
	cfg      Config
	deps     Deps
	tokens   *TokenIssuer
	sessions *Registry
	router   chi.Router
}

// New builds a server. An empty session secret is replaced by a random one,
// which invalidates tokens on restart.
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Bank == nil {
		return nil, errors.New("server: content bank is required")
	}
	if deps.Grader == nil || deps.Remediator == nil {
		return nil, errors.New("server: grading and remediation gateways are required")
	}
	if deps.Exporter == nil {
		deps.Exporter = report.NewPDFExporter()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		slog.Warn("no session secret configured, using an ephemeral one", "env", EnvSessionSecret)
	}

	s := &Server{
		cfg:      cfg,
		deps:     deps,
		tokens:   NewTokenIssuer(secret, cfg.SessionTTL, deps.Now),
		sessions: NewRegistry(cfg.SessionTTL, deps.Now),
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Sessions exposes the live session registry.
func (s *Server) Sessions() *Registry { return s.sessions }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition", HeaderRenewedToken},
		MaxAge:         300,
	}))
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Route("/api", func(api chi.Router) {
		api.Post("/evaluate", evaluateHandler(s.deps.Grader, s.cfg.GradingTimeout))
		api.Post("/remediate", remediateHandler(s.deps.Remediator, s.cfg.RemediationTimeout))
		api.Get("/content", s.getContent)

		api.Post("/sessions", s.createSession)
		api.Route("/sessions/{sessionID}", func(sr chi.Router) {
			sr.Use(requireToken(s.tokens), s.withSession)
			sr.Get("/", s.getSession)
			sr.Delete("/", s.deleteSession)
			sr.Post("/start", s.startQuiz)
			sr.Post("/text", s.jumpToText)
			sr.Post("/answers", s.submitAnswer)
			sr.Post("/advance", s.advance)
			sr.Get("/results", s.results)
			sr.Get("/report.pdf", s.reportPDF)
		})
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
// and abandons the remaining sessions.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go s.sessions.RunJanitor(janitorCtx, time.Minute)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.sessions.AbandonAll()
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// requestLogger logs one line per request with slog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
