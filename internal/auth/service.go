// Package auth implements registration, login and token refresh on top of
// the tenant-scoped user store, plus the HTTP middleware that authenticates
// bearer tokens against both their signature and the active tenant.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/saasbase/saasbase/internal/user"
	"github.com/saasbase/saasbase/pkg/jwt"
	"github.com/saasbase/saasbase/pkg/tenant"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password, so
	// responses never reveal which one failed.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountDisabled indicates the account exists but is disabled.
	ErrAccountDisabled = errors.New("account is disabled")
	// ErrInvalidRefreshToken indicates the refresh token failed verification
	// or does not belong to the active tenant.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// TokenPair is the issued credential set.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Service implements the authentication flows. All user lookups run on the
// tenant-bound session, so an email registered under another tenant is
// invisible here.
type Service struct {
	repo   user.Repository
	tokens *jwt.Service
	log    *slog.Logger
}

// NewService creates the auth service. A nil logger selects slog.Default().
func NewService(repo user.Repository, tokens *jwt.Service, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, tokens: tokens, log: log}
}

// Register creates an account under the active tenant with the default user
// role and returns it with a fresh token pair.
func (s *Service) Register(ctx context.Context, name, email string, age *int, password string) (*user.User, *TokenPair, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	u := &user.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		Age:          age,
		PasswordHash: string(hash),
		Roles:        []user.Role{user.RoleUser},
		Enabled:      true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, nil, err
	}

	pair, err := s.issueTokens(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

// Login verifies the credentials within the active tenant and issues a token
// pair. Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*user.User, *TokenPair, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// Burn comparable time so response timing does not reveal
			// whether the email exists.
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if !u.Enabled {
		return nil, nil, ErrAccountDisabled
	}

	pair, err := s.issueTokens(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

// Refresh exchanges a valid refresh token for a new token pair. The token
// must verify, be of the refresh kind, and carry the active tenant; roles
// are re-read from the store, not from the old token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*user.User, *TokenPair, error) {
	claims, err := s.tokens.Parse(refreshToken)
	if err != nil {
		return nil, nil, errors.Join(ErrInvalidRefreshToken, err)
	}
	if claims.TokenType != jwt.TokenTypeRefresh {
		return nil, nil, ErrInvalidRefreshToken
	}
	if current := tenant.CurrentID(ctx); claims.Tenant != current {
		s.log.WarnContext(ctx, "refresh token tenant mismatch",
			slog.String("token_tenant", claims.Tenant),
			slog.String("request_tenant", current))
		return nil, nil, ErrInvalidRefreshToken
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, nil, ErrInvalidRefreshToken
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, nil, ErrInvalidRefreshToken
		}
		return nil, nil, err
	}
	if !u.Enabled {
		return nil, nil, ErrAccountDisabled
	}

	pair, err := s.issueTokens(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

func (s *Service) issueTokens(ctx context.Context, u *user.User) (*TokenPair, error) {
	tenantID := tenant.CurrentID(ctx)

	access, err := s.tokens.NewAccessToken(u.ID.String(), tenantID, user.RoleNames(u.Roles))
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.NewRefreshToken(u.ID.String(), tenantID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.tokens.AccessTTL() / time.Second),
	}, nil
}

// dummyHash is a bcrypt hash of an unguessable value, used to equalize the
// login timing for unknown emails.
var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
}()
