package holidayshandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/holiday"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	Service *holiday.Service
}

func NewHandler(service *holiday.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/holidays", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/check", h.handleCheck)
		r.Get("/month", h.handleMonth)
		r.Post("/import", h.handleImport)
		r.Delete("/{ruleID}", h.handleDelete)
		r.Patch("/{ruleID}/enabled", h.handleSetEnabled)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	rules, err := h.Service.Store.List(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "holiday_list_failed", "failed to list holiday rules", reqID)
		return
	}
	api.Success(w, rules, reqID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var rule holiday.Rule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if rule.Name == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "name is required", reqID)
		return
	}

	id, err := h.Service.Store.Create(r.Context(), rule)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "holiday_create_failed", "failed to create holiday rule", reqID)
		return
	}
	api.Created(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	date, err := shared.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "invalid date", reqID)
		return
	}
	if date.IsZero() {
		date = time.Now().UTC()
	}

	info, err := h.Service.Check(r.Context(), date)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "holiday_check_failed", "failed to check holiday", reqID)
		return
	}
	api.Success(w, info, reqID)
}

func (h *Handler) handleMonth(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	now := time.Now().UTC()
	year, month := now.Year(), int(now.Month())
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_month", "invalid year", reqID)
			return
		}
		year = parsed
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 12 {
			api.Fail(w, http.StatusBadRequest, "invalid_month", "invalid month", reqID)
			return
		}
		month = parsed
	}

	occ, err := h.Service.Month(r.Context(), year, time.Month(month))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "holiday_month_failed", "failed to list month holidays", reqID)
		return
	}
	api.Success(w, occ, reqID)
}

type importPayload struct {
	Holidays []holiday.Rule `json:"holidays"`
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload importPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	count, err := h.Service.ImportGovernment(r.Context(), payload.Holidays)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "holiday_import_failed", "failed to import holidays", reqID)
		return
	}
	api.Created(w, map[string]int{"imported": count}, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	err := h.Service.Store.Delete(r.Context(), chi.URLParam(r, "ruleID"))
	if errors.Is(err, holiday.ErrRuleNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "holiday rule not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "holiday_delete_failed", "failed to delete holiday rule", reqID)
		return
	}
	api.Success(w, map[string]bool{"deleted": true}, reqID)
}

type enabledPayload struct {
	Enabled bool `json:"enabled"`
}

func (h *Handler) handleSetEnabled(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload enabledPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	err := h.Service.Store.SetEnabled(r.Context(), chi.URLParam(r, "ruleID"), payload.Enabled)
	if errors.Is(err, holiday.ErrRuleNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "holiday rule not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "holiday_update_failed", "failed to update holiday rule", reqID)
		return
	}
	api.Success(w, map[string]bool{"updated": true}, reqID)
}
