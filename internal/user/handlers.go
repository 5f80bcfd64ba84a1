package user

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/saasbase/saasbase/internal/api"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CreateRequest is the payload for creating a user.
type CreateRequest struct {
	Name     string   `json:"name" validate:"required,min=2,max=100"`
	Email    string   `json:"email" validate:"required,email,max=255"`
	Age      *int     `json:"age" validate:"omitempty,gte=0,lte=150"`
	Password string   `json:"password" validate:"required,min=8,max=72"`
	Roles    []string `json:"roles" validate:"omitempty,dive,oneof=user admin"`
}

// UpdateRequest is the payload for updating a user. Password and roles are
// optional; omitting them keeps the stored values.
type UpdateRequest struct {
	Name     string   `json:"name" validate:"required,min=2,max=100"`
	Email    string   `json:"email" validate:"required,email,max=255"`
	Age      *int     `json:"age" validate:"omitempty,gte=0,lte=150"`
	Password string   `json:"password" validate:"omitempty,min=8,max=72"`
	Roles    []string `json:"roles" validate:"omitempty,dive,oneof=user admin"`
	Enabled  *bool    `json:"enabled"`
}

// Response is the public view of a user. The password hash never leaves the
// service.
type Response struct {
	ID        uuid.UUID `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       *int      `json:"age,omitempty"`
	Roles     []string  `json:"roles"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListResponse wraps a page of users.
type ListResponse struct {
	Users  []Response `json:"users"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

// NewResponse converts a user to its public view.
func NewResponse(u *User) Response {
	return Response{
		ID:        u.ID,
		TenantID:  u.TenantID,
		Name:      u.Name,
		Email:     u.Email,
		Age:       u.Age,
		Roles:     RoleNames(u.Roles),
		Enabled:   u.Enabled,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Handler serves the user CRUD endpoints.
type Handler struct {
	repo Repository
	log  *slog.Logger
}

// NewHandler creates the CRUD handler. A nil logger selects slog.Default().
func NewHandler(repo Repository, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{repo: repo, log: log}
}

// Routes mounts the CRUD endpoints on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultPageSize)
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	users, err := h.repo.List(r.Context(), limit, offset)
	if err != nil {
		h.serverError(w, r, "list users", err)
		return
	}

	resp := ListResponse{Users: make([]Response, 0, len(users)), Limit: limit, Offset: offset}
	for i := range users {
		resp.Users = append(resp.Users, NewResponse(&users[i]))
	}
	api.JSON(w, r, http.StatusOK, resp)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	u, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.Error(w, r, http.StatusNotFound, "user not found")
			return
		}
		h.serverError(w, r, "get user", err)
		return
	}
	api.JSON(w, r, http.StatusOK, NewResponse(u))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if !api.Bind(w, r, &req) {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.serverError(w, r, "hash password", err)
		return
	}

	roles := ParseRoles(req.Roles)
	if len(roles) == 0 {
		roles = []Role{RoleUser}
	}
	u := &User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		Age:          req.Age,
		PasswordHash: string(hash),
		Roles:        roles,
		Enabled:      true,
	}
	if err := h.repo.Create(r.Context(), u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			api.Error(w, r, http.StatusConflict, "email already registered")
			return
		}
		h.serverError(w, r, "create user", err)
		return
	}
	api.JSON(w, r, http.StatusCreated, NewResponse(u))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdateRequest
	if !api.Bind(w, r, &req) {
		return
	}

	u, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.Error(w, r, http.StatusNotFound, "user not found")
			return
		}
		h.serverError(w, r, "get user", err)
		return
	}

	u.Name = req.Name
	u.Email = req.Email
	u.Age = req.Age
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			h.serverError(w, r, "hash password", err)
			return
		}
		u.PasswordHash = string(hash)
	}
	if len(req.Roles) > 0 {
		u.Roles = ParseRoles(req.Roles)
	}
	if req.Enabled != nil {
		u.Enabled = *req.Enabled
	}

	if err := h.repo.Update(r.Context(), u); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			api.Error(w, r, http.StatusNotFound, "user not found")
		case errors.Is(err, ErrEmailTaken):
			api.Error(w, r, http.StatusConflict, "email already registered")
		default:
			h.serverError(w, r, "update user", err)
		}
		return
	}
	api.JSON(w, r, http.StatusOK, NewResponse(u))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			api.Error(w, r, http.StatusNotFound, "user not found")
			return
		}
		h.serverError(w, r, "delete user", err)
		return
	}
	api.JSON(w, r, http.StatusNoContent, nil)
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.log.ErrorContext(r.Context(), "user handler failure",
		slog.String("op", op), slog.Any("error", err))
	api.Error(w, r, http.StatusInternalServerError, "internal server error")
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.Error(w, r, http.StatusBadRequest, "invalid user id")
		return uuid.Nil, false
	}
	return id, true
}
