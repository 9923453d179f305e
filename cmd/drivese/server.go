package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/drivese/drivese/internal/config"
	"github.com/drivese/drivese/internal/metrics"
	"github.com/drivese/drivese/internal/storage"
	"github.com/drivese/drivese/internal/worker"
	"github.com/drivese/drivese/pkg/core"
	"github.com/drivese/drivese/pkg/drivetrain"
	"github.com/drivese/drivese/pkg/hub"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const maxRequestBody = 1 << 20

func shutdownContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// api serves sizing requests and stored runs over HTTP.
type api struct {
	worker  *worker.Manager
	backend storage.Backend
	metrics *metrics.Collector
	logger  *slog.Logger
}

func (a *app) newAPI() *api {
	return &api{worker: a.Worker, backend: a.Backend, metrics: a.Metrics, logger: a.Logger}
}

func (s *api) router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/presets", s.listPresets)
		r.Post("/drivetrain/{layout}", s.sizeDrivetrain)
		r.Post("/hub", s.sizeHub)
		r.Get("/runs", s.listRuns)
		r.Get("/runs/{id}", s.getRun)
	})

	r.Handle("/metrics", s.metrics.Handler())
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			s.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}

func (s *api) listPresets(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string][]string{
		"drivetrain": drivetrain.PresetNames(),
		"hub":        hub.PresetNames(),
	})
}

func (s *api) sizeDrivetrain(w http.ResponseWriter, r *http.Request) {
	var req worker.DrivetrainRequest
	if !s.decode(w, r, &req) {
		return
	}
	run, err := s.worker.SizeDrivetrain(drivetrain.Layout(chi.URLParam(r, "layout")), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusCreated, run)
}

func (s *api) sizeHub(w http.ResponseWriter, r *http.Request) {
	var req worker.HubRequest
	if !s.decode(w, r, &req) {
		return
	}
	run, err := s.worker.SizeHub(req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusCreated, run)
}

func (s *api) listRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := storage.Filter{Assembly: core.Assembly(q.Get("assembly")), Preset: q.Get("preset")}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			s.fail(w, r, core.InvalidInput("limit", "must be a non-negative integer, got %q", v))
			return
		}
		f.Limit = limit
	}
	runs, err := s.backend.ListRuns(f)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if runs == nil {
		runs = []core.Run{}
	}
	s.respond(w, http.StatusOK, runs)
}

func (s *api) getRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.backend.GetRun(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, run)
}

func (s *api) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.ContentLength == 0 {
		return true
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.fail(w, r, fmt.Errorf("%w: decoding request: %v", core.ErrInvalidInput, err))
		return false
	}
	return true
}

// statusFor maps sizing and storage errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotConverged), errors.Is(err, core.ErrNonFinite):
		return http.StatusUnprocessableEntity
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *api) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "requestId", middleware.GetReqID(r.Context()), "error", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "status", code, "error", err)
	}
	s.respond(w, code, map[string]string{"error": err.Error()})
}

func (s *api) respond(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to write response", "error", err)
	}
}

// serve runs the HTTP API until SIGINT or SIGTERM.
func (a *app) serve() error {
	cfg := config.GetServerConfig()
	server := &http.Server{
		Addr:         cfg.Address,
		Handler:      a.newAPI().router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("Starting HTTP server", "address", cfg.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case sig := <-shutdownCh:
		a.Logger.Info("Shutting down HTTP server", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
