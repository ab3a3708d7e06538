package bolt

import (
	"context"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/Alvearie/hri-mgmt-api-sub000/kit/platform/errors"
)

// TenantNotFoundError is returned when a tenant's batch index does not exist.
func TenantNotFoundError(tenantID string) error {
	return &errors.Error{
		Code: errors.ENotFound,
		Msg:  fmt.Sprintf("Tenant: %s not found", tenantID),
	}
}

// TenantExistsError is returned when creating an index that already exists.
func TenantExistsError(tenantID string) error {
	return &errors.Error{
		Code: errors.EConflict,
		Msg:  fmt.Sprintf("index for tenant '%s' already exists", tenantID),
	}
}

// CreateIndex creates the batch index bucket for a tenant.
func (c *Client) CreateIndex(ctx context.Context, tenantID string) error {
	op := "bolt.CreateIndex"
	err := c.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(indexesBucket)
		if root.Bucket([]byte(tenantID)) != nil {
			return TenantExistsError(tenantID)
		}
		_, err := root.CreateBucket([]byte(tenantID))
		return err
	})
	return errors.ErrInternalServiceError(err, op)
}

// DeleteIndex removes a tenant's batch index and every document in it.
func (c *Client) DeleteIndex(ctx context.Context, tenantID string) error {
	op := "bolt.DeleteIndex"
	err := c.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(indexesBucket)
		if root.Bucket([]byte(tenantID)) == nil {
			return TenantNotFoundError(tenantID)
		}
		return root.DeleteBucket([]byte(tenantID))
	})
	return errors.ErrInternalServiceError(err, op)
}

// IndexExists reports whether a tenant's batch index exists.
func (c *Client) IndexExists(ctx context.Context, tenantID string) (bool, error) {
	var exists bool
	err := c.db.View(func(tx *bolt.Tx) error {
		exists = tx.Bucket(indexesBucket).Bucket([]byte(tenantID)) != nil
		return nil
	})
	return exists, errors.ErrInternalServiceError(err, "bolt.IndexExists")
}

// ListIndexes returns the tenant ids of every batch index.
func (c *Client) ListIndexes(ctx context.Context) ([]string, error) {
	tenants := []string{}
	err := c.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(indexesBucket).ForEachBucket(func(k []byte) error {
			tenants = append(tenants, string(k))
			return nil
		})
	})
	return tenants, errors.ErrInternalServiceError(err, "bolt.ListIndexes")
}
