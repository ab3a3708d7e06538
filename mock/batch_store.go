package mock

import (
	"context"

	hri "github.com/Alvearie/hri-mgmt-api-sub000"
)

var _ hri.BatchStore = (*BatchStore)(nil)

// BatchStore is a mock implementation of hri.BatchStore.
type BatchStore struct {
	CreateIndexFn func(ctx context.Context, tenantID string) error
	DeleteIndexFn func(ctx context.Context, tenantID string) error
	IndexExistsFn func(ctx context.Context, tenantID string) (bool, error)
	ListIndexesFn func(ctx context.Context) ([]string, error)

	CreateBatchFn func(ctx context.Context, tenantID string, b *hri.Batch) error
	GetBatchFn    func(ctx context.Context, tenantID, id string) (*hri.Batch, error)
	FindBatchesFn func(ctx context.Context, tenantID string, filter hri.BatchFilter) ([]*hri.Batch, int, error)
	UpdateBatchFn func(ctx context.Context, tenantID string, b *hri.Batch, ifVersion uint64) error
	DeleteBatchFn func(ctx context.Context, tenantID, id string) error

	PingFn func(ctx context.Context) error
}

// NewBatchStore returns a mock where every method answers successfully with
// zero values.
func NewBatchStore() *BatchStore {
	return &BatchStore{
		CreateIndexFn: func(context.Context, string) error { return nil },
		DeleteIndexFn: func(context.Context, string) error { return nil },
		IndexExistsFn: func(context.Context, string) (bool, error) { return true, nil },
		ListIndexesFn: func(context.Context) ([]string, error) { return nil, nil },
		CreateBatchFn: func(context.Context, string, *hri.Batch) error { return nil },
		GetBatchFn:    func(context.Context, string, string) (*hri.Batch, error) { return nil, nil },
		FindBatchesFn: func(context.Context, string, hri.BatchFilter) ([]*hri.Batch, int, error) { return nil, 0, nil },
		UpdateBatchFn: func(context.Context, string, *hri.Batch, uint64) error { return nil },
		DeleteBatchFn: func(context.Context, string, string) error { return nil },
		PingFn:        func(context.Context) error { return nil },
	}
}

func (s *BatchStore) CreateIndex(ctx context.Context, tenantID string) error {
	return s.CreateIndexFn(ctx, tenantID)
}

func (s *BatchStore) DeleteIndex(ctx context.Context, tenantID string) error {
	return s.DeleteIndexFn(ctx, tenantID)
}

func (s *BatchStore) IndexExists(ctx context.Context, tenantID string) (bool, error) {
	return s.IndexExistsFn(ctx, tenantID)
}

func (s *BatchStore) ListIndexes(ctx context.Context) ([]string, error) {
	return s.ListIndexesFn(ctx)
}

func (s *BatchStore) CreateBatch(ctx context.Context, tenantID string, b *hri.Batch) error {
	return s.CreateBatchFn(ctx, tenantID, b)
}

func (s *BatchStore) GetBatch(ctx context.Context, tenantID, id string) (*hri.Batch, error) {
	return s.GetBatchFn(ctx, tenantID, id)
}

func (s *BatchStore) FindBatches(ctx context.Context, tenantID string, filter hri.BatchFilter) ([]*hri.Batch, int, error) {
	return s.FindBatchesFn(ctx, tenantID, filter)
}

func (s *BatchStore) UpdateBatch(ctx context.Context, tenantID string, b *hri.Batch, ifVersion uint64) error {
	return s.UpdateBatchFn(ctx, tenantID, b, ifVersion)
}

func (s *BatchStore) DeleteBatch(ctx context.Context, tenantID, id string) error {
	return s.DeleteBatchFn(ctx, tenantID, id)
}

func (s *BatchStore) Ping(ctx context.Context) error {
	return s.PingFn(ctx)
}
