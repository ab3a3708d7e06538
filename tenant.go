package hri

import (
	"context"
	"fmt"
	"regexp"

	"github.com/Alvearie/hri-mgmt-api-sub000/kit/platform/errors"
)

// tenant ids become part of index and topic names, so the character set is
// restricted to what both backends accept.
var tenantIDRegex = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Tenant is a logical namespace owning a batch index and a set of streams.
type Tenant struct {
	ID     string `json:"tenantId"`
	Index  string `json:"index"`
	Health string `json:"health,omitempty"`
	Status string `json:"status,omitempty"`
}

// IndexName returns the name of the batch index backing a tenant.
func IndexName(tenantID string) string {
	return tenantID + "-batches"
}

// ValidateTenantID checks the allowed tenant id pattern.
func ValidateTenantID(id string) error {
	if !tenantIDRegex.MatchString(id) {
		return &errors.Error{
			Code: errors.EInvalid,
			Msg:  fmt.Sprintf("tenantId may only contain lower-case alphanumeric characters, '-', and '_'. '%s' is not valid", id),
		}
	}
	return nil
}

// TenantService manages the lifecycle of tenants and their batch indices.
type TenantService interface {
	CreateTenant(ctx context.Context, tenantID string) (*Tenant, error)
	FindTenantByID(ctx context.Context, tenantID string) (*Tenant, error)
	ListTenants(ctx context.Context) ([]string, error)
	DeleteTenant(ctx context.Context, tenantID string) error
}
