// Package tenant implements identity resolution: mapping a
// request's bearer credential to a tenant id, with no ambient/contextual
// tenant — every store and search call receives tenant_id explicitly.
package tenant

import (
	"strings"
	"sync"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/config"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/errs"
)

// Resolver maps bearer credentials to tenant ids.
type Resolver struct {
	mu          sync.RWMutex
	enabled     bool
	tokens      map[string]string // token -> principal
	implicit    string
	firstConfig string
	hasFirst    bool
}

// New builds a Resolver from configuration.
func New(cfg *config.Config) *Resolver {
	r := &Resolver{
		enabled:  cfg.Auth.EnableAuth,
		tokens:   make(map[string]string, len(cfg.Auth.Tokens)),
		implicit: config.ImplicitTenant,
	}
	for _, entry := range cfg.Auth.Tokens {
		principal, token, ok := strings.Cut(entry, ":")
		if !ok || principal == "" || token == "" {
			continue
		}
		r.tokens[token] = principal
	}
	r.firstConfig, r.hasFirst = cfg.FirstConfiguredTenant()
	return r
}

// Enabled reports whether bearer auth is required.
func (r *Resolver) Enabled() bool { return r.enabled }

// ImplicitTenant returns the tenant used when auth is disabled.
func (r *Resolver) ImplicitTenant() string { return r.implicit }

// FirstConfiguredTenant returns the tenant the first-enable migration
// should reassign implicit-default pads to.
func (r *Resolver) FirstConfiguredTenant() (string, bool) { return r.firstConfig, r.hasFirst }

// Resolve maps a bearer token to a tenant id. When auth is
// disabled it always returns the implicit default tenant. An empty or
// unrecognized token fails with UNAUTHORIZED when auth is enabled.
func (r *Resolver) Resolve(bearerToken string) (string, error) {
	if !r.enabled {
		return r.implicit, nil
	}
	if bearerToken == "" {
		return "", errs.NewUnauthorized("missing bearer credential")
	}
	r.mu.RLock()
	principal, ok := r.tokens[bearerToken]
	r.mu.RUnlock()
	if !ok {
		return "", errs.NewUnauthorized("invalid bearer credential")
	}
	return principal, nil
}
