package expensehandler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/core"
	"hrms/internal/domain/expense"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	Service *expense.Service
	Users   *core.Service
}

func NewHandler(service *expense.Service, users *core.Service) *Handler {
	return &Handler{Service: service, Users: users}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/petrol-credits", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Post("/", h.handleSubmit)
		r.Get("/", h.handleListForApproval)
		r.Get("/mine", h.handleMine)
		r.Get("/month-total", h.handleMonthTotal)
		r.Post("/approve-all", h.handleApproveAll)
		r.Post("/{creditID}/approve", h.handleApprove)
		r.Post("/{creditID}/reject", h.handleReject)
	})
}

type submitPayload struct {
	TravelDate string  `json:"travelDate"`
	FromPlace  string  `json:"from"`
	ToPlace    string  `json:"to"`
	Purpose    string  `json:"purposeOfVisit"`
	Mode       string  `json:"modeOfTransport"`
	Kms        float64 `json:"kms"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	var payload submitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	travelDate, err := shared.ParseDate(payload.TravelDate)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "invalid travel date", reqID)
		return
	}

	credit, err := h.Service.Submit(r.Context(), expense.Credit{
		UserID:     actor.UserID,
		TravelDate: travelDate,
		FromPlace:  payload.FromPlace,
		ToPlace:    payload.ToPlace,
		Purpose:    payload.Purpose,
		Mode:       payload.Mode,
		Kms:        payload.Kms,
	})
	switch {
	case errors.Is(err, expense.ErrBadTransportMode):
		api.Fail(w, http.StatusBadRequest, "invalid_mode", err.Error(), reqID)
		return
	case errors.Is(err, expense.ErrUserNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", reqID)
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "submit_failed", "failed to submit petrol credit", reqID)
		return
	}
	api.Created(w, credit, reqID)
}

func (h *Handler) handleListForApproval(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	q := r.URL.Query()
	from, err := shared.ParseDate(q.Get("from"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "invalid from date", reqID)
		return
	}
	to, err := shared.ParseDate(q.Get("to"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "invalid to date", reqID)
		return
	}

	credits, err := h.Service.ListForApproval(r.Context(), actor.UserID, expense.ListFilter{
		From:    from,
		To:      to,
		Pending: q.Get("pending") == "true",
		Search:  q.Get("search"),
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "credit_list_failed", "failed to list petrol credits", reqID)
		return
	}
	api.Success(w, credits, reqID)
}

func (h *Handler) handleMine(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	credits, err := h.Service.MyCredits(r.Context(), actor.UserID, actor.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "credit_list_failed", "failed to list petrol credits", reqID)
		return
	}
	api.Success(w, credits, reqID)
}

func (h *Handler) handleMonthTotal(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		userID = actor.UserID
	}

	total, err := h.Service.ApprovedThisMonth(r.Context(), actor.UserID, userID)
	if errors.Is(err, expense.ErrNotVisible) {
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "month_total_failed", "failed to total petrol credits", reqID)
		return
	}
	api.Success(w, total, reqID)
}

type decisionPayload struct {
	Remarks string `json:"remarks"`
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

	// Remarks are optional; an empty body is fine.
	var payload decisionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	approver, err := h.Users.Profile(r.Context(), actor.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "decision_failed", "failed to load approver", reqID)
		return
	}

	credit, err := h.Service.Approve(r.Context(), actor.UserID, chi.URLParam(r, "creditID"), approved, approver.Name, payload.Remarks)
	switch {
	case errors.Is(err, expense.ErrCreditNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "petrol credit not found", reqID)
		return
	case errors.Is(err, expense.ErrNotVisible):
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), reqID)
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "decision_failed", "failed to record decision", reqID)
		return
	}
	api.Success(w, credit, reqID)
}

type approveAllPayload struct {
	UserID  string `json:"userId"`
	Remarks string `json:"remarks"`
}

func (h *Handler) handleApproveAll(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	var payload approveAllPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if payload.UserID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "userId is required", reqID)
		return
	}

	approver, err := h.Users.Profile(r.Context(), actor.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "decision_failed", "failed to load approver", reqID)
		return
	}

	count, err := h.Service.ApproveAll(r.Context(), actor.UserID, payload.UserID, approver.Name, payload.Remarks)
	if errors.Is(err, expense.ErrNotVisible) {
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "approve_all_failed", "failed to approve petrol credits", reqID)
		return
	}
	api.Success(w, map[string]int{"approved": count}, reqID)
}
