package authhandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/auth"
	"hrms/internal/domain/core"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
)

type Handler struct {
	Users *core.Service
}

func NewHandler(users *core.Service) *Handler {
	return &Handler{Users: users}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
	r.With(middleware.RequireUser).Post("/auth/change-password", h.handleChangePassword)
	r.With(middleware.RequireUser).Post("/auth/reset-password", h.handleResetPassword)
}

type loginPayload struct {
	// Identifier is a mobile number or an OAID badge number.
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type loginResponse struct {
	Token string    `json:"token"`
	User  core.User `json:"user"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload loginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if payload.Identifier == "" || payload.Password == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "identifier and password are required", reqID)
		return
	}

	user, token, err := h.Users.Login(r.Context(), payload.Identifier, payload.Password)
	switch {
	case errors.Is(err, core.ErrBadCredentials):
		api.Fail(w, http.StatusUnauthorized, "bad_credentials", err.Error(), reqID)
		return
	case errors.Is(err, core.ErrUserInactive):
		api.Fail(w, http.StatusForbidden, "inactive", err.Error(), reqID)
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "login_failed", "login failed", reqID)
		return
	}
	api.Success(w, loginResponse{Token: token, User: user}, reqID)
}

type changePasswordPayload struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload changePasswordPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	err := h.Users.ChangePassword(r.Context(), user.UserID, payload.CurrentPassword, payload.NewPassword)
	switch {
	case errors.Is(err, core.ErrBadCredentials):
		api.Fail(w, http.StatusUnauthorized, "bad_credentials", "current password does not match", reqID)
		return
	case errors.Is(err, core.ErrPasswordReuse), errors.Is(err, auth.ErrWeakPassword):
		api.Fail(w, http.StatusBadRequest, "invalid_password", err.Error(), reqID)
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "change_failed", "password change failed", reqID)
		return
	}
	api.Success(w, map[string]bool{"changed": true}, reqID)
}

type resetPasswordPayload struct {
	UserID      string `json:"userId"`
	NewPassword string `json:"newPassword"`
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	var payload resetPasswordPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if payload.UserID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "userId is required", reqID)
		return
	}

	err := h.Users.ResetPassword(r.Context(), actor.UserID, payload.UserID, payload.NewPassword)
	switch {
	case errors.Is(err, core.ErrUserNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", reqID)
		return
	case errors.Is(err, core.ErrPasswordReuse), errors.Is(err, auth.ErrWeakPassword):
		api.Fail(w, http.StatusBadRequest, "invalid_password", err.Error(), reqID)
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "reset_failed", "password reset failed", reqID)
		return
	}
	api.Success(w, map[string]bool{"reset": true}, reqID)
}
