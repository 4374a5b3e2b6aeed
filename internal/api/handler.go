// Package api exposes the operator HTTP surface of the job scheduler.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"listing_jobs/internal/domain"
	"listing_jobs/internal/metrics"
	"listing_jobs/internal/service"
)

// Jobs is the part of the job scheduler the API drives.
type Jobs interface {
	Status() map[string]bool
	RunNow(name string) error
}

// Ledger is the read side of the outcome recorder.
type Ledger interface {
	Summary() metrics.Summary
	LatestHealth() (domain.HealthSnapshot, bool)
}

type Handler struct {
	jobs   Jobs
	ledger Ledger
	logger *slog.Logger
	router *mux.Router
}

// New registers all routes. gatherer may be nil, in which case /metrics is
// not served.
func New(jobs Jobs, ledger Ledger, gatherer prometheus.Gatherer, logger *slog.Logger) http.Handler {
	h := &Handler{
		jobs:   jobs,
		ledger: ledger,
		logger: logger.With("component", "api"),
		router: mux.NewRouter(),
	}

	v1 := h.router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/jobs/status", h.status).Methods(http.MethodGet)
	v1.HandleFunc("/jobs/{trigger}/run", h.runNow).Methods(http.MethodPost)
	v1.HandleFunc("/metrics/summary", h.summary).Methods(http.MethodGet)
	v1.HandleFunc("/health", h.health).Methods(http.MethodGet)

	if gatherer != nil {
		h.router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	h.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	h.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		jsonErr(w, http.StatusNotFound, "not found")
	})

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// status returns GET /api/v1/jobs/status.
func (h *Handler) status(w http.ResponseWriter, _ *http.Request) {
	jsonResp(w, http.StatusOK, StatusResponse{Triggers: h.jobs.Status()})
}

// runNow handles POST /api/v1/jobs/{trigger}/run.
func (h *Handler) runNow(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["trigger"]

	err := h.jobs.RunNow(name)
	switch {
	case err == nil:
		h.logger.Info("manual run accepted", "trigger", name)
		jsonResp(w, http.StatusAccepted, RunResponse{Trigger: name, Status: "accepted"})
	case errors.Is(err, service.ErrUnknownTrigger):
		jsonErr(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrTickSkipped):
		jsonResp(w, http.StatusConflict, RunResponse{Trigger: name, Status: "skipped"})
	case errors.Is(err, service.ErrStopped):
		jsonErr(w, http.StatusServiceUnavailable, err.Error())
	default:
		jsonErr(w, http.StatusInternalServerError, err.Error())
	}
}

// summary returns GET /api/v1/metrics/summary.
func (h *Handler) summary(w http.ResponseWriter, _ *http.Request) {
	jsonResp(w, http.StatusOK, h.ledger.Summary())
}

// health returns GET /api/v1/health, the most recent health snapshot.
func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	snap, ok := h.ledger.LatestHealth()
	if !ok {
		jsonErr(w, http.StatusNotFound, "no health check has run yet")
		return
	}

	code := http.StatusOK
	if snap.Status == domain.HealthUnhealthy {
		code = http.StatusServiceUnavailable
	}
	jsonResp(w, code, snap)
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
