package attendancehandler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/attendance"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
)

type Handler struct {
	Service *attendance.Service
}

func NewHandler(service *attendance.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Post("/login", h.handleLogin)
		r.Post("/logout", h.handleLogout)
		r.Get("/today", h.handleToday)
		r.Get("/mine", h.handleMine)
		r.Get("/leave-history", h.handleLeaveHistory)
		r.Get("/pending", h.handlePending)
		r.Get("/daily", h.handleDaily)
		r.Get("/monthly", h.handleMonthly)
	})
}

type geoPayload struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	var payload geoPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	record, err := h.Service.PresentLogin(r.Context(), actor.UserID, payload.Lat, payload.Lon)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "login_mark_failed", "failed to mark attendance", reqID)
		return
	}
	api.Success(w, record, reqID)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	var payload geoPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	record, err := h.Service.PresentLogout(r.Context(), actor.UserID, payload.Lat, payload.Lon)
	if errors.Is(err, attendance.ErrNotLoggedIn) {
		api.Fail(w, http.StatusConflict, "not_logged_in", err.Error(), reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "logout_mark_failed", "failed to mark logout", reqID)
		return
	}
	api.Success(w, record, reqID)
}

func (h *Handler) handleToday(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	status, err := h.Service.CheckToday(r.Context(), actor.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "today_failed", "failed to load today's status", reqID)
		return
	}
	api.Success(w, status, reqID)
}

func (h *Handler) handleMine(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	records, err := h.Service.MyAttendance(r.Context(), actor.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_failed", "failed to list attendance", reqID)
		return
	}
	api.Success(w, records, reqID)
}

func (h *Handler) handleLeaveHistory(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	records, err := h.Service.LeaveHistory(r.Context(), actor.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_history_failed", "failed to list leave history", reqID)
		return
	}
	api.Success(w, records, reqID)
}

func (h *Handler) handlePending(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	records, err := h.Service.PendingApprovals(r.Context(), actor.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "pending_failed", "failed to list pending approvals", reqID)
		return
	}
	api.Success(w, records, reqID)
}

func (h *Handler) handleDaily(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	records, err := h.Service.DailyReport(r.Context(), actor.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "daily_failed", "failed to build daily view", reqID)
		return
	}
	api.Success(w, records, reqID)
}

// monthParams reads year/month query values, defaulting to the current
// month.
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

func (h *Handler) handleMonthly(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	year, month, err := monthParams(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_month", "invalid year or month", reqID)
		return
	}

	records, err := h.Service.MonthlyReport(r.Context(), actor.UserID, year, month)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "monthly_failed", "failed to build monthly view", reqID)
		return
	}
	api.Success(w, records, reqID)
}
