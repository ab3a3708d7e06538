package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	bolt "go.etcd.io/bbolt"

	hri "github.com/Alvearie/hri-mgmt-api-sub000"
	"github.com/Alvearie/hri-mgmt-api-sub000/kit/platform/errors"
)

// batchDoc is the stored shape of a batch: the document plus its optimistic
// concurrency version.
type batchDoc struct {
	Version uint64     `json:"version"`
	Batch   *hri.Batch `json:"batch"`
}

// BatchNotFoundError is returned when a batch document does not exist in an
// existing tenant index.
func BatchNotFoundError(tenantID, id string) error {
	return &errors.Error{
		Code: errors.ENotFound,
		Msg:  fmt.Sprintf("the document for tenantId: %s with document (batch) ID: %s was not found", tenantID, id),
	}
}

// BatchVersionConflictError is returned when a version-gated update observes a
// stale version.
func BatchVersionConflictError(id string) error {
	return &errors.Error{
		Code: errors.EConflict,
		Msg:  fmt.Sprintf("batch %s was modified concurrently", id),
	}
}

func marshalBatch(version uint64, b *hri.Batch) ([]byte, error) {
	return json.Marshal(batchDoc{Version: version, Batch: b})
}

func unmarshalBatch(v []byte) (*hri.Batch, error) {
	doc := batchDoc{}
	if err := json.Unmarshal(v, &doc); err != nil || doc.Batch == nil {
		return nil, &errors.Error{
			Code: errors.EInternal,
			Msg:  "corrupt batch document",
			Err:  err,
		}
	}
	doc.Batch.Version = doc.Version
	return doc.Batch, nil
}

func (c *Client) index(tx *bolt.Tx, tenantID string) (*bolt.Bucket, error) {
	b := tx.Bucket(indexesBucket).Bucket([]byte(tenantID))
	if b == nil {
		return nil, TenantNotFoundError(tenantID)
	}
	return b, nil
}

// CreateBatch persists a new batch document with version 1.
func (c *Client) CreateBatch(ctx context.Context, tenantID string, b *hri.Batch) error {
	op := "bolt.CreateBatch"
	err := c.db.Update(func(tx *bolt.Tx) error {
		idx, err := c.index(tx, tenantID)
		if err != nil {
			return err
		}
		if idx.Get([]byte(b.ID)) != nil {
			return &errors.Error{
				Code: errors.EConflict,
				Msg:  fmt.Sprintf("batch with id '%s' already exists", b.ID),
			}
		}
		b.Version = 1
		v, err := marshalBatch(b.Version, b)
		if err != nil {
			return err
		}
		return idx.Put([]byte(b.ID), v)
	})
	return errors.ErrInternalServiceError(err, op)
}

// GetBatch returns one batch document, distinguishing a missing tenant index
// from a missing document.
func (c *Client) GetBatch(ctx context.Context, tenantID, id string) (*hri.Batch, error) {
	var batch *hri.Batch
	err := c.db.View(func(tx *bolt.Tx) error {
		idx, err := c.index(tx, tenantID)
		if err != nil {
			return err
		}
		v := idx.Get([]byte(id))
		if v == nil {
			return BatchNotFoundError(tenantID, id)
		}
		batch, err = unmarshalBatch(v)
		return err
	})
	if err != nil {
		return nil, errors.ErrInternalServiceError(err, "bolt.GetBatch")
	}
	return batch, nil
}

// FindBatches returns the filtered page of a tenant's batches and the total
// number of matches before paging.
func (c *Client) FindBatches(ctx context.Context, tenantID string, filter hri.BatchFilter) ([]*hri.Batch, int, error) {
	batches := []*hri.Batch{}
	total := 0
	err := c.db.View(func(tx *bolt.Tx) error {
		idx, err := c.index(tx, tenantID)
		if err != nil {
			return err
		}
		skipped := 0
		return idx.ForEach(func(k, v []byte) error {
			b, err := unmarshalBatch(v)
			if err != nil {
				return err
			}
			if !matchBatch(b, filter) {
				return nil
			}
			total++
			if filter.From > 0 && skipped < filter.From {
				skipped++
				return nil
			}
			if filter.Size > 0 && len(batches) >= filter.Size {
				return nil
			}
			batches = append(batches, b)
			return nil
		})
	})
	if err != nil {
		return nil, 0, errors.ErrInternalServiceError(err, "bolt.FindBatches")
	}
	return batches, total, nil
}

func matchBatch(b *hri.Batch, f hri.BatchFilter) bool {
	if f.Status != nil && b.Status != *f.Status {
		return false
	}
	if f.Name != nil && !strings.Contains(b.Name, *f.Name) {
		return false
	}
	if f.GteDate != nil && (b.StartDate == nil || b.StartDate.Before(*f.GteDate)) {
		return false
	}
	if f.LteDate != nil && (b.StartDate == nil || b.StartDate.After(*f.LteDate)) {
		return false
	}
	return true
}

// UpdateBatch writes b only if the stored document still carries ifVersion.
// The read, check and write happen inside one write transaction, so of any
// set of concurrent updates against the same version exactly one succeeds.
func (c *Client) UpdateBatch(ctx context.Context, tenantID string, b *hri.Batch, ifVersion uint64) error {
	op := "bolt.UpdateBatch"
	err := c.db.Update(func(tx *bolt.Tx) error {
		idx, err := c.index(tx, tenantID)
		if err != nil {
			return err
		}
		v := idx.Get([]byte(b.ID))
		if v == nil {
			return BatchNotFoundError(tenantID, b.ID)
		}
		current, err := unmarshalBatch(v)
		if err != nil {
			return err
		}
		if current.Version != ifVersion {
			return BatchVersionConflictError(b.ID)
		}
		b.Version = ifVersion + 1
		nv, err := marshalBatch(b.Version, b)
		if err != nil {
			return err
		}
		return idx.Put([]byte(b.ID), nv)
	})
	return errors.ErrInternalServiceError(err, op)
}

// DeleteBatch removes a batch document. It exists for the create-rollback
// path and tests; batches are never deleted through the public API.
func (c *Client) DeleteBatch(ctx context.Context, tenantID, id string) error {
	op := "bolt.DeleteBatch"
	err := c.db.Update(func(tx *bolt.Tx) error {
		idx, err := c.index(tx, tenantID)
		if err != nil {
			return err
		}
		if idx.Get([]byte(id)) == nil {
			return BatchNotFoundError(tenantID, id)
		}
		return idx.Delete([]byte(id))
	})
	return errors.ErrInternalServiceError(err, op)
}
