package hri

import (
	"context"
	"fmt"

	"github.com/Alvearie/hri-mgmt-api-sub000/kit/platform/errors"
)

// Roles carried as token scopes.
const (
	RoleIntegrator = "hri_data_integrator"
	RoleConsumer   = "hri_consumer"
	RoleInternal   = "hri_internal"
)

// TenantScope returns the scope claim granting access to a tenant.
func TenantScope(tenantID string) string {
	return "tenant_" + tenantID
}

// Claims are the validated contents of a bearer token.
type Claims struct {
	Subject string
	Scopes  []string
}

// HasScope reports whether the token carries scope s.
func (c *Claims) HasScope(s string) bool {
	for _, have := range c.Scopes {
		if have == s {
			return true
		}
	}
	return false
}

// AuthorizedForTenant reports whether the token grants access to tenantID,
// either through the tenant's own scope or the internal superuser role.
func (c *Claims) AuthorizedForTenant(tenantID string) bool {
	return c.HasScope(TenantScope(tenantID)) || c.HasScope(RoleInternal)
}

// RequireTenant returns an unauthorized error naming the tenant and the
// missing claim when the token does not grant access to tenantID.
func (c *Claims) RequireTenant(tenantID string) error {
	if c.AuthorizedForTenant(tenantID) {
		return nil
	}
	return &errors.Error{
		Code: errors.EUnauthorized,
		Msg:  fmt.Sprintf("unauthorized tenant access. Tenant '%s' is not included in the authorized scopes: the token does not carry the '%s' claim", tenantID, TenantScope(tenantID)),
	}
}

// RequireRole returns an unauthorized error naming the missing role when the
// token carries none of the given roles.
func (c *Claims) RequireRole(roles ...string) error {
	for _, r := range roles {
		if c.HasScope(r) {
			return nil
		}
	}
	return &errors.Error{
		Code: errors.EUnauthorized,
		Msg:  fmt.Sprintf("the token is missing a required role; one of %v is needed", roles),
	}
}

// TokenValidator verifies a raw bearer token and extracts its claims.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (*Claims, error)
}

type claimsContextKey struct{}

// WithClaims stores validated claims on the request context.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, c)
}

// ClaimsFromContext retrieves the claims stored by the authentication
// middleware, or an unauthorized error if none are present.
func ClaimsFromContext(ctx context.Context) (*Claims, error) {
	c, ok := ctx.Value(claimsContextKey{}).(*Claims)
	if !ok || c == nil {
		return nil, &errors.Error{
			Code: errors.EUnauthorized,
			Msg:  "no authenticated principal on request",
		}
	}
	return c, nil
}
