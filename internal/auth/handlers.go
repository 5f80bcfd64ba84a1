package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/saasbase/saasbase/internal/api"
	"github.com/saasbase/saasbase/internal/user"
)

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Age      *int   `json:"age" validate:"omitempty,gte=0,lte=150"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest is the payload for password login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest is the payload for exchanging a refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse carries the issued tokens and the account's public view.
type AuthResponse struct {
	TokenPair
	User user.Response `json:"user"`
}

// Handler serves the authentication endpoints.
type Handler struct {
	svc *Service
	log *slog.Logger
}

// NewHandler creates the auth handler. A nil logger selects slog.Default().
func NewHandler(svc *Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

// Routes mounts the auth endpoints on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !api.Bind(w, r, &req) {
		return
	}

	u, pair, err := h.svc.Register(r.Context(), req.Name, req.Email, req.Age, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			api.Error(w, r, http.StatusConflict, "email already registered")
			return
		}
		h.serverError(w, r, "register", err)
		return
	}

	api.JSON(w, r, http.StatusCreated, AuthResponse{TokenPair: *pair, User: user.NewResponse(u)})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !api.Bind(w, r, &req) {
		return
	}

	u, pair, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			api.Error(w, r, http.StatusUnauthorized, "invalid email or password")
		case errors.Is(err, ErrAccountDisabled):
			api.Error(w, r, http.StatusForbidden, "account is disabled")
		default:
			h.serverError(w, r, "login", err)
		}
		return
	}

	api.JSON(w, r, http.StatusOK, AuthResponse{TokenPair: *pair, User: user.NewResponse(u)})
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !api.Bind(w, r, &req) {
		return
	}

	u, pair, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRefreshToken):
			api.Error(w, r, http.StatusUnauthorized, "invalid refresh token")
		case errors.Is(err, ErrAccountDisabled):
			api.Error(w, r, http.StatusForbidden, "account is disabled")
		default:
			h.serverError(w, r, "refresh", err)
		}
		return
	}

	api.JSON(w, r, http.StatusOK, AuthResponse{TokenPair: *pair, User: user.NewResponse(u)})
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.log.ErrorContext(r.Context(), "auth handler failure",
		slog.String("op", op), slog.Any("error", err))
	api.Error(w, r, http.StatusInternalServerError, "internal server error")
}
