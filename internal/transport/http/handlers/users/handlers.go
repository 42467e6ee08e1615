package usershandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/auth"
	"hrms/internal/domain/core"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	Users *core.Service
}

func NewHandler(users *core.Service) *Handler {
	return &Handler{Users: users}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Post("/by-designation", h.handleCreateByDesignation)
		r.Get("/me", h.handleMe)
		r.Put("/{userID}", h.handleUpdate)
		r.Patch("/{userID}/status", h.handleSetStatus)
	})
}

type createPayload struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	MobileNo     string  `json:"mobileNo"`
	Password     string  `json:"password"`
	Position     string  `json:"position"`
	Designation  string  `json:"designation"`
	Department   string  `json:"department"`
	DOJ          string  `json:"doj"`
	KmsCharge    float64 `json:"kmsCharge"`
	AssignRoleID string  `json:"assignRoleId"`

	// Role selects the by-designation flow: Admin, Employee or Intern.
	Role string `json:"role"`
}

func (p createPayload) toNewUser() (core.NewUser, error) {
	doj, err := shared.ParseDate(p.DOJ)
	if err != nil {
		return core.NewUser{}, err
	}
	return core.NewUser{
		Name:         p.Name,
		Email:        p.Email,
		MobileNo:     p.MobileNo,
		Password:     p.Password,
		Position:     p.Position,
		Designation:  p.Designation,
		Department:   p.Department,
		DOJ:          doj,
		KmsCharge:    p.KmsCharge,
		AssignRoleID: p.AssignRoleID,
	}, nil
}

func writeCreateError(w http.ResponseWriter, err error, reqID string) {
	switch {
	case errors.Is(err, core.ErrMobileTaken), errors.Is(err, core.ErrEmailTaken):
		api.Fail(w, http.StatusConflict, "duplicate", err.Error(), reqID)
	case errors.Is(err, auth.ErrWeakPassword):
		api.Fail(w, http.StatusBadRequest, "invalid_password", err.Error(), reqID)
	case errors.Is(err, core.ErrRoleRequired), errors.Is(err, core.ErrBadRole),
		errors.Is(err, core.ErrDesignationRequired):
		api.Fail(w, http.StatusBadRequest, "invalid_role", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "user_create_failed", "failed to create user", reqID)
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	var payload createPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	in, err := payload.toNewUser()
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "invalid date of joining", reqID)
		return
	}

	user, err := h.Users.CreateUser(r.Context(), actor, in)
	if err != nil {
		writeCreateError(w, err, reqID)
		return
	}
	api.Created(w, user, reqID)
}

func (h *Handler) handleCreateByDesignation(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	var payload createPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	in, err := payload.toNewUser()
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "invalid date of joining", reqID)
		return
	}

	user, err := h.Users.CreateByDesignation(r.Context(), actor, payload.Role, in)
	if err != nil {
		writeCreateError(w, err, reqID)
		return
	}
	api.Created(w, user, reqID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	users, err := h.Users.ListVisible(r.Context(), actor.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_list_failed", "failed to list users", reqID)
		return
	}
	api.Success(w, users, reqID)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	user, err := h.Users.Profile(r.Context(), actor.UserID)
	if errors.Is(err, core.ErrUserNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "profile_failed", "failed to load profile", reqID)
		return
	}
	api.Success(w, user, reqID)
}

type updatePayload struct {
	Name        string  `json:"name"`
	Position    string  `json:"position"`
	Designation string  `json:"designation"`
	Department  string  `json:"department"`
	KmsCharge   float64 `json:"kmsCharge"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())
	userID := chi.URLParam(r, "userID")

	var payload updatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	err := h.Users.UpdateProfile(r.Context(), actor.UserID, core.User{
		ID:          userID,
		Name:        payload.Name,
		Position:    payload.Position,
		Designation: payload.Designation,
		Department:  payload.Department,
		KmsCharge:   payload.KmsCharge,
	})
	if errors.Is(err, core.ErrUserNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_update_failed", "failed to update user", reqID)
		return
	}
	api.Success(w, map[string]bool{"updated": true}, reqID)
}

type statusPayload struct {
	Active bool `json:"active"`
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())
	userID := chi.URLParam(r, "userID")

	var payload statusPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	err := h.Users.SetStatus(r.Context(), actor.UserID, userID, payload.Active)
	if errors.Is(err, core.ErrUserNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_status_failed", "failed to update status", reqID)
		return
	}
	api.Success(w, map[string]bool{"updated": true}, reqID)
}
