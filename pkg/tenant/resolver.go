package tenant

import (
	"log/slog"
	"net/http"
	"strings"
)

// DefaultHeader is the header carrying the explicit tenant signal.
const DefaultHeader = "X-Tenant-ID"

// DefaultPathMarker is the path segment preceding a tenant identifier,
// as in /api/v1/tenant/acme/users.
const DefaultPathMarker = "/tenant/"

// reservedSubdomains are common infrastructure subdomains that must never
// be interpreted as tenant identifiers.
var reservedSubdomains = map[string]struct{}{
	"www": {}, "api": {}, "admin": {}, "app": {}, "mail": {}, "ftp": {},
	"blog": {}, "shop": {}, "dev": {}, "staging": {}, "prod": {}, "test": {},
}

// Resolver extracts a candidate tenant identifier from an HTTP request.
// Implementations return the raw candidate; sanitization and fallback are
// the chain's responsibility. An empty string means "no candidate".
type Resolver interface {
	Resolve(r *http.Request) string
}

// ResolverFunc adapts an ordinary function to the Resolver interface.
type ResolverFunc func(r *http.Request) string

func (f ResolverFunc) Resolve(r *http.Request) string { return f(r) }

// HeaderResolver reads the tenant identifier from a request header.
// This is the primary, most explicit signal.
type HeaderResolver struct {
	Header string
}

// NewHeaderResolver creates a header resolver; an empty name selects
// DefaultHeader.
func NewHeaderResolver(header string) *HeaderResolver {
	if header == "" {
		header = DefaultHeader
	}
	return &HeaderResolver{Header: header}
}

func (h *HeaderResolver) Resolve(r *http.Request) string {
	return r.Header.Get(h.Header)
}

// SubdomainResolver extracts the tenant from the leading host label, e.g.
// "acme" from "acme.api.example.com". The host must have more than two
// dot-separated labels and the leading label must not be a reserved
// infrastructure subdomain.
type SubdomainResolver struct{}

func NewSubdomainResolver() *SubdomainResolver {
	return &SubdomainResolver{}
}

func (s *SubdomainResolver) Resolve(r *http.Request) string {
	host := r.Host
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}

	parts := strings.Split(host, ".")
	if len(parts) <= 2 {
		return ""
	}

	sub := strings.ToLower(parts[0])
	if _, reserved := reservedSubdomains[sub]; reserved {
		return ""
	}
	return sub
}

// PathResolver extracts the tenant from the path segment following a fixed
// marker, e.g. "acme" from /api/v1/tenant/acme/users.
type PathResolver struct {
	Marker string
}

// NewPathResolver creates a path resolver; an empty marker selects
// DefaultPathMarker.
func NewPathResolver(marker string) *PathResolver {
	if marker == "" {
		marker = DefaultPathMarker
	}
	return &PathResolver{Marker: marker}
}

func (p *PathResolver) Resolve(r *http.Request) string {
	path := r.URL.Path
	idx := strings.Index(path, p.Marker)
	if idx < 0 {
		return ""
	}

	rest := path[idx+len(p.Marker):]
	if end := strings.IndexByte(rest, '/'); end >= 0 {
		rest = rest[:end]
	}
	return rest
}

// ChainResolver tries resolvers in priority order and returns the first
// candidate that survives sanitization. Invalid candidates are logged and
// discarded, falling through to the next strategy; the chain itself never
// fails — an all-miss returns "" and the caller applies DefaultID.
type ChainResolver struct {
	resolvers []Resolver
	log       *slog.Logger
}

// NewChainResolver composes resolvers in the given priority order.
func NewChainResolver(resolvers ...Resolver) *ChainResolver {
	return &ChainResolver{resolvers: resolvers, log: slog.Default()}
}

// WithLogger sets the logger used to report discarded candidates.
func (c *ChainResolver) WithLogger(log *slog.Logger) *ChainResolver {
	if log != nil {
		c.log = log
	}
	return c
}

func (c *ChainResolver) Resolve(r *http.Request) string {
	for _, resolver := range c.resolvers {
		candidate := resolver.Resolve(r)
		if candidate == "" {
			continue
		}
		id, ok := Sanitize(candidate)
		if !ok {
			c.log.WarnContext(r.Context(), "discarding invalid tenant candidate",
				slog.String("candidate", candidate))
			continue
		}
		return id
	}
	return ""
}
