package leavehandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/core"
	"hrms/internal/domain/leave"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	Service *leave.Service
	Users   *core.Service
}

func NewHandler(service *leave.Service, users *core.Service) *Handler {
	return &Handler{Service: service, Users: users}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Get("/types", h.handleListTypes)
		r.Get("/balances", h.handleBalances)
		r.Post("/apply", h.handleApply)
		r.Post("/records/{recordID}/approve", h.handleApprove)
		r.Post("/records/{recordID}/reject", h.handleReject)
	})
}

func (h *Handler) handleListTypes(w http.ResponseWriter, r *http.Request) {
	api.Success(w, leave.Labels(), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleBalances(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		userID = actor.UserID
	}
	if userID != actor.UserID {
		visible, err := h.Users.ListVisible(r.Context(), actor.UserID)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "visibility_failed", "failed to resolve visibility", reqID)
			return
		}
		found := false
		for _, u := range visible {
			if u.ID == userID {
				found = true
				break
			}
		}
		if !found {
			api.Fail(w, http.StatusForbidden, "forbidden", "user not visible", reqID)
			return
		}
	}

	ledgers, err := h.Service.Balances(r.Context(), userID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "balances_failed", "failed to load balances", reqID)
		return
	}
	api.Success(w, ledgers, reqID)
}

type applyPayload struct {
	LeaveType string `json:"leaveType"`
	FromDate  string `json:"fromDate"`
	ToDate    string `json:"toDate"`
	Reason    string `json:"reason"`
}

func (h *Handler) handleApply(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	var payload applyPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	label, ok := leave.NormalizeLabel(payload.LeaveType)
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_leave_type", "unknown leave type", reqID)
		return
	}
	from, err := shared.ParseDate(payload.FromDate)
	if err != nil || from.IsZero() {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "invalid fromDate", reqID)
		return
	}
	to, err := shared.ParseDate(payload.ToDate)
	if err != nil || to.IsZero() {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "invalid toDate", reqID)
		return
	}

	result, err := h.Service.ApplyLeave(r.Context(), actor.UserID, label, from, to, payload.Reason)
	switch {
	case errors.Is(err, leave.ErrInvalidRange):
		api.Fail(w, http.StatusBadRequest, "invalid_range", err.Error(), reqID)
		return
	case errors.Is(err, leave.ErrLeaveTypeNotConfigured), errors.Is(err, leave.ErrNoBucketForYear):
		api.Fail(w, http.StatusBadRequest, "not_configured", err.Error(), reqID)
		return
	case errors.Is(err, leave.ErrInsufficientBalance):
		api.Fail(w, http.StatusUnprocessableEntity, "insufficient_balance", err.Error(), reqID)
		return
	case errors.Is(err, leave.ErrServerBusy):
		api.Fail(w, http.StatusServiceUnavailable, "busy", err.Error(), reqID)
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "apply_failed", "failed to apply leave", reqID)
		return
	}
	api.Created(w, result, reqID)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, true)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, false)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, approved bool) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())
	recordID := chi.URLParam(r, "recordID")

	approver, err := h.Users.Profile(r.Context(), actor.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "decision_failed", "failed to load approver", reqID)
		return
	}

	record, err := h.Service.SetApproval(r.Context(), recordID, approved, approver.Name)
	switch {
	case errors.Is(err, leave.ErrRecordNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "record not found", reqID)
		return
	case errors.Is(err, leave.ErrAlreadyDecided):
		api.Fail(w, http.StatusConflict, "already_decided", "record already decided", reqID)
		return
	case errors.Is(err, leave.ErrServerBusy):
		api.Fail(w, http.StatusServiceUnavailable, "busy", err.Error(), reqID)
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "decision_failed", "failed to record decision", reqID)
		return
	}
	api.Success(w, record, reqID)
}
