package tenant

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	hri "github.com/Alvearie/hri-mgmt-api-sub000"
	"github.com/Alvearie/hri-mgmt-api-sub000/kit/platform/errors"
)

// Index projections reported for an existing tenant. The bolt store has no
// shard states, so a reachable index is always green/open.
const (
	indexHealthGreen = "green"
	indexStatusOpen  = "open"
)

// Service manages tenants on top of the batch store's index operations.
type Service struct {
	store hri.BatchStore
	log   *zap.Logger
}

var _ hri.TenantService = (*Service)(nil)

// NewService constructs a tenant service.
func NewService(store hri.BatchStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, log: log}
}

// CreateTenant validates the id and provisions the tenant's batch index.
// An existing tenant is a request error, not a conflict, at this surface.
func (s *Service) CreateTenant(ctx context.Context, tenantID string) (*hri.Tenant, error) {
	if err := hri.ValidateTenantID(tenantID); err != nil {
		return nil, err
	}

	if err := s.store.CreateIndex(ctx, tenantID); err != nil {
		if errors.ErrorCode(err) == errors.EConflict {
			return nil, TenantExistsError(tenantID)
		}
		return nil, err
	}

	s.log.Info("tenant created", zap.String("tenantId", tenantID))
	return &hri.Tenant{ID: tenantID, Index: hri.IndexName(tenantID)}, nil
}

// FindTenantByID returns the index projection of one tenant.
func (s *Service) FindTenantByID(ctx context.Context, tenantID string) (*hri.Tenant, error) {
	exists, err := s.store.IndexExists(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, TenantNotFoundError(tenantID)
	}
	return &hri.Tenant{
		ID:     tenantID,
		Index:  hri.IndexName(tenantID),
		Health: indexHealthGreen,
		Status: indexStatusOpen,
	}, nil
}

// ListTenants returns the ids of every tenant.
func (s *Service) ListTenants(ctx context.Context) ([]string, error) {
	return s.store.ListIndexes(ctx)
}

// DeleteTenant removes a tenant and its batch index.
func (s *Service) DeleteTenant(ctx context.Context, tenantID string) error {
	if err := s.store.DeleteIndex(ctx, tenantID); err != nil {
		if errors.ErrorCode(err) == errors.ENotFound {
			return TenantNotFoundError(tenantID)
		}
		return err
	}
	s.log.Info("tenant deleted", zap.String("tenantId", tenantID))
	return nil
}

// TenantNotFoundError is the not-found error surfaced for tenants; its text
// is distinct from the batch and stream variants.
func TenantNotFoundError(tenantID string) error {
	return &errors.Error{
		Code: errors.ENotFound,
		Msg:  fmt.Sprintf("Tenant: %s not found", tenantID),
	}
}

// TenantExistsError is returned when creating a tenant that already exists.
func TenantExistsError(tenantID string) error {
	return &errors.Error{
		Code: errors.EInvalid,
		Msg:  fmt.Sprintf("unable to create tenant: tenant '%s' already exists", tenantID),
	}
}
