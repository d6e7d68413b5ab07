package users

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/staffdesk/staffdesk/internal/platform/httpx"
	"github.com/staffdesk/staffdesk/internal/rbac"
	"github.com/staffdesk/staffdesk/internal/shared"
)

// RoleSource lists selectable roles for the form schema.
type RoleSource interface {
	ListRoles(ctx context.Context) ([]rbac.Role, error)
}

// Handler manages user administration endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	access  Access
	roles   RoleSource
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, access Access, roles RoleSource, mw rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, access: access, roles: roles, rbac: mw}
}

// MountRoutes registers the user resource routes. Each operation carries its
// own permission gate; the listing gate doubles as the navigation gate.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermViewUsers))
		r.Get("/", h.list)
		r.Get("/schema", h.schema)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermCreateUsers))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermEditUsers))
		r.Put("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermDeleteUsers))
		r.Delete("/{id}", h.delete)
		r.Post("/bulk-delete", h.bulkDelete)
	})
	// The single-record view page never shipped; h.show stays unmounted
	// until it does.
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := parseListFilter(r)
	result, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	resp := ListResponse{Users: make([]UserResponse, 0, len(result)), Total: total, Page: filter.Page, Limit: filter.Limit}
	for _, u := range result {
		resp.Users = append(resp.Users, toResponse(u))
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get user", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(user))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var form UserForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed payload")
		return
	}
	created, err := h.service.Create(r.Context(), form, h.access.CanManageRoles(r.Context()))
	if err != nil {
		h.respondError(w, "create user", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(created))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return
	}
	var form UserForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed payload")
		return
	}
	updated, err := h.service.Update(r.Context(), id, form, h.access.CanManageRoles(r.Context()))
	if err != nil {
		h.respondError(w, "update user", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(updated))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return
	}
	actorID, ok := shared.ActorID(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
		return
	}
	if err := h.service.Delete(r.Context(), actorID, id); err != nil {
		h.respondError(w, "delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) bulkDelete(w http.ResponseWriter, r *http.Request) {
	var req BulkDeleteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed payload")
		return
	}
	actorID, ok := shared.ActorID(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
		return
	}
	resp, err := h.service.BulkDelete(r.Context(), actorID, req.IDs)
	if err != nil {
		h.respondError(w, "bulk delete users", err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// ResourceSchema is the declarative description the presentation layer
// consumes, already filtered by the actor's permissions.
type ResourceSchema struct {
	Fields      []Field           `json:"fields"`
	Columns     []Column          `json:"columns"`
	Filters     []Filter          `json:"filters"`
	RowActions  []Action          `json:"row_actions"`
	BulkActions []Action          `json:"bulk_actions"`
	RoleOptions []string          `json:"role_options,omitempty"`
	Routes      map[string]string `json:"routes"`
}

func (h *Handler) schema(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	schema := ResourceSchema{
		Columns: Columns(),
		Filters: Filters(),
		// The view-by-id route exists in the design but is not mounted.
		Routes: map[string]string{
			"list":   "/admin/users",
			"create": "/admin/users",
			"edit":   "/admin/users/{id}",
		},
	}

	manageRoles := h.access.CanManageRoles(ctx)
	for _, f := range FormFields() {
		if f.VisibleWith != "" && !manageRoles {
			continue
		}
		schema.Fields = append(schema.Fields, f)
	}
	for _, a := range RowActions() {
		if h.allowed(ctx, a) {
			schema.RowActions = append(schema.RowActions, a)
		}
	}
	for _, a := range BulkActions() {
		if h.allowed(ctx, a) {
			schema.BulkActions = append(schema.BulkActions, a)
		}
	}
	if manageRoles && h.roles != nil {
		roles, err := h.roles.ListRoles(ctx)
		if err != nil {
			h.logger.Warn("list role options", slog.Any("error", err))
		} else {
			for _, role := range roles {
				schema.RoleOptions = append(schema.RoleOptions, role.Name)
			}
		}
	}
	httpx.JSON(w, http.StatusOK, schema)
}

func (h *Handler) allowed(ctx context.Context, a Action) bool {
	switch a.Permission {
	case shared.PermViewUsers:
		return h.access.CanView(ctx)
	case shared.PermCreateUsers:
		return h.access.CanCreate(ctx)
	case shared.PermEditUsers:
		return h.access.CanEdit(ctx)
	case shared.PermDeleteUsers:
		// Row-level self protection is re-applied per record; DeniesSelf
		// tells the presenter to hide the action on the actor's own row.
		return h.access.Can(ctx, shared.PermDeleteUsers)
	default:
		return false
	}
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "user not found")
	case errors.Is(err, ErrSelfDelete):
		// Same shape as any other denial.
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
	default:
		var vErr *httpx.ValidationError
		if errors.As(err, &vErr) {
			httpx.RespondError(w, err)
			return
		}
		h.logger.Error(op+" failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func parseListFilter(r *http.Request) ListFilter {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	filter := ListFilter{
		Search:  q.Get("search"),
		SortBy:  q.Get("sort"),
		SortDir: q.Get("dir"),
		Page:    page,
		Limit:   limit,
	}
	// Tri-state: absent means both sides.
	switch q.Get("active") {
	case "true":
		active := true
		filter.Active = &active
	case "false":
		active := false
		filter.Active = &active
	}
	if roles, ok := q["role"]; ok {
		filter.Roles = roles
	}
	return filter
}
