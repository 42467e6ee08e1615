package reportshandler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/reports"
	"hrms/internal/platform/jobs"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
)

type Handler struct {
	Service   *reports.Service
	Dashboard *reports.Dashboard
	Jobs      *jobs.Service

	// Sweep is the absent-sweep job body, shared with the cron schedule.
	Sweep func(ctx context.Context) (any, error)
}

func NewHandler(service *reports.Service, dashboard *reports.Dashboard, jobsSvc *jobs.Service, sweep func(ctx context.Context) (any, error)) *Handler {
	return &Handler{Service: service, Dashboard: dashboard, Jobs: jobsSvc, Sweep: sweep}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Get("/attendance/daily", h.handleDaily)
		r.Get("/attendance/monthly", h.handleMonthly)
		r.Get("/attendance/monthly/export", h.handleMonthlyExport)
		r.Post("/jobs/absent-sweep", h.handleRunAbsentSweep)
	})
	r.Route("/dashboard", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Get("/stats", h.handleDashboardStats)
	})
}

func (h *Handler) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	stats, err := h.Dashboard.Stats(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "stats_failed", "failed to build dashboard stats", reqID)
		return
	}
	api.Success(w, stats, reqID)
}

func monthParams(r *http.Request) (int, time.Month, error) {
	now := time.Now().UTC()
	year, month := now.Year(), now.Month()

	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, err
		}
		year = parsed
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 12 {
			return 0, 0, errors.New("month out of range")
		}
		month = time.Month(parsed)
	}
	return year, month, nil
}

func (h *Handler) handleDaily(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	rows, err := h.Service.Daily(r.Context(), actor.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build daily report", reqID)
		return
	}
	api.Success(w, rows, reqID)
}

func (h *Handler) handleMonthly(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	year, month, err := monthParams(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_month", "invalid year or month", reqID)
		return
	}

	rows, err := h.Service.Monthly(r.Context(), actor.UserID, year, month)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build monthly report", reqID)
		return
	}
	api.Success(w, rows, reqID)
}

func (h *Handler) handleMonthlyExport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	year, month, err := monthParams(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_month", "invalid year or month", reqID)
		return
	}

	data, err := h.Service.ExportMonthlyXLSX(r.Context(), actor.UserID, year, month)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to export report", reqID)
		return
	}

	filename := fmt.Sprintf("attendance-%d-%02d.xlsx", year, int(month))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleRunAbsentSweep enqueues the end-of-day sweep on demand instead of
// waiting for the scheduled run.
func (h *Handler) handleRunAbsentSweep(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	if h.Jobs == nil || h.Sweep == nil {
		api.Fail(w, http.StatusServiceUnavailable, "jobs_disabled", "background jobs are not running", reqID)
		return
	}
	h.Jobs.Enqueue(jobs.JobAbsentSweep, h.Sweep)
	api.Success(w, map[string]string{"status": "queued"}, reqID)
}
