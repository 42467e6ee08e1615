package roleshandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/access"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
)

type Handler struct {
	Access *access.Service
}

func NewHandler(svc *access.Service) *Handler {
	return &Handler{Access: svc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/roles", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/visible-users", h.handleVisibleUsers)
		r.Get("/me/menu", h.handleMyMenu)
		r.Get("/{roleID}", h.handleGet)
		r.Get("/{roleID}/children", h.handleChildren)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	roles, err := h.Access.Roles(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "role_list_failed", "failed to list roles", reqID)
		return
	}
	api.Success(w, roles, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	role, err := h.Access.Role(r.Context(), chi.URLParam(r, "roleID"))
	if errors.Is(err, access.ErrRoleNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "role not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "role_get_failed", "failed to load role", reqID)
		return
	}
	api.Success(w, role, reqID)
}

// handleChildren lists the roles one level below the given role, for
// hierarchy browsing in the admin console.
func (h *Handler) handleChildren(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	roles, err := h.Access.ChildRoles(r.Context(), chi.URLParam(r, "roleID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "role_list_failed", "failed to list child roles", reqID)
		return
	}
	api.Success(w, roles, reqID)
}

type createRolePayload struct {
	Name    string          `json:"name"`
	Menu    json.RawMessage `json:"menu"`
	Parents []string        `json:"parents"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload createRolePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if payload.Name == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "name is required", reqID)
		return
	}

	id, err := h.Access.CreateRole(r.Context(), payload.Name, payload.Menu, payload.Parents)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "role_create_failed", "failed to create role", reqID)
		return
	}
	api.Created(w, map[string]string{"id": id}, reqID)
}

// handleVisibleUsers exposes the resolved visibility cone of the caller:
// every user ID reachable downward from the caller's role.
func (h *Handler) handleVisibleUsers(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	ids, err := h.Access.Resolver.VisibleList(r.Context(), actor.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "visibility_failed", "failed to resolve visibility", reqID)
		return
	}
	api.Success(w, ids, reqID)
}

func (h *Handler) handleMyMenu(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	role, err := h.Access.Role(r.Context(), actor.RoleID)
	if errors.Is(err, access.ErrRoleNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "role not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "menu_failed", "failed to load menu", reqID)
		return
	}
	api.Success(w, map[string]any{"roleName": role.Name, "menu": role.Menu}, reqID)
}
