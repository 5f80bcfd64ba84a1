package jwt

import (
	"errors"
	"net/http"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// TokenType distinguishes access tokens from refresh tokens. The kind is a
// signed claim, so a refresh token can never pass an access-token check.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims is the wire format of every issued token:
// {sub, tenant, roles, type, iat, exp}.
type Claims struct {
	Tenant    string    `json:"tenant"`
	Roles     string    `json:"roles,omitempty"`
	TokenType TokenType `json:"type"`
	jwtlib.RegisteredClaims
}

// RoleList splits the comma-joined roles claim into individual role names,
// trimming whitespace and dropping empty entries.
func (c *Claims) RoleList() []string {
	if c.Roles == "" {
		return nil
	}
	parts := strings.Split(c.Roles, ",")
	roles := make([]string, 0, len(parts))
	for _, p := range parts {
		if r := strings.TrimSpace(p); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}

// Config holds token issuance settings loaded from the environment.
type Config struct {
	SigningKey string        `env:"JWT_SIGNING_KEY,required"`         // SigningKey is the symmetric HMAC key; at least 32 bytes recommended.
	AccessTTL  time.Duration `env:"JWT_ACCESS_TTL" envDefault:"24h"`  // AccessTTL is the access token lifetime.
	RefreshTTL time.Duration `env:"JWT_REFRESH_TTL" envDefault:"168h"` // RefreshTTL is the refresh token lifetime.
	Issuer     string        `env:"JWT_ISSUER" envDefault:"saasbase"` // Issuer is the iss claim on every token.
}

// Service issues and verifies tokens with a symmetric signing key held in
// memory only.
type Service struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
}

// New creates a token service from config.
func New(cfg Config) (*Service, error) {
	if cfg.SigningKey == "" {
		return nil, ErrMissingSigningKey
	}
	s := &Service{
		key:        []byte(cfg.SigningKey),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		issuer:     cfg.Issuer,
	}
	if s.accessTTL == 0 {
		s.accessTTL = 24 * time.Hour
	}
	if s.refreshTTL == 0 {
		s.refreshTTL = 7 * 24 * time.Hour
	}
	return s, nil
}

// AccessTTL returns the configured access token lifetime.
func (s *Service) AccessTTL() time.Duration {
	return s.accessTTL
}

// NewAccessToken issues an access token for the subject under the given
// tenant, with roles joined into a single claim.
func (s *Service) NewAccessToken(subject, tenantID string, roles []string) (string, error) {
	return s.issue(subject, tenantID, strings.Join(roles, ","), TokenTypeAccess, s.accessTTL)
}

// NewRefreshToken issues a refresh token for the subject under the given
// tenant. Refresh tokens carry no roles.
func (s *Service) NewRefreshToken(subject, tenantID string) (string, error) {
	return s.issue(subject, tenantID, "", TokenTypeRefresh, s.refreshTTL)
}

func (s *Service) issue(subject, tenantID, roles string, kind TokenType, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Tenant:    tenantID,
		Roles:     roles,
		TokenType: kind,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", errors.Join(ErrInvalidToken, err)
	}
	return signed, nil
}

// Parse verifies the token signature, structure and expiry, and returns its
// claims. It fails with ErrExpiredToken for expired tokens and
// ErrInvalidToken for everything else (bad signature, malformed structure,
// wrong signing algorithm).
func (s *Service) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwtlib.ParseWithClaims(tokenString, claims,
		func(t *jwtlib.Token) (any, error) { return s.key, nil },
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, errors.Join(ErrExpiredToken, err)
		}
		return nil, errors.Join(ErrInvalidToken, err)
	}
	return claims, nil
}

// IsValidAccess reports whether the token verifies, is of kind access, is
// not expired, and matches both the expected subject and tenant.
func (s *Service) IsValidAccess(tokenString, subject, tenantID string) bool {
	return s.isValid(tokenString, subject, tenantID, TokenTypeAccess)
}

// IsValidRefresh is the refresh-token counterpart of IsValidAccess.
func (s *Service) IsValidRefresh(tokenString, subject, tenantID string) bool {
	return s.isValid(tokenString, subject, tenantID, TokenTypeRefresh)
}

func (s *Service) isValid(tokenString, subject, tenantID string, kind TokenType) bool {
	claims, err := s.Parse(tokenString)
	if err != nil {
		return false
	}
	return claims.Subject == subject &&
		claims.Tenant == tenantID &&
		claims.TokenType == kind
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. Returns "", false when the header is absent or not a bearer
// credential.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
