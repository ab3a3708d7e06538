package hri

import (
	"context"
	"time"
)

// BatchStatus enumerates the batch lifecycle states.
type BatchStatus string

const (
	BatchStarted       BatchStatus = "started"
	BatchSendCompleted BatchStatus = "sendCompleted"
	BatchCompleted     BatchStatus = "completed"
	BatchTerminated    BatchStatus = "terminated"
	BatchFailed        BatchStatus = "failed"
)

// Terminal reports whether no further transitions are permitted from s.
func (s BatchStatus) Terminal() bool {
	switch s {
	case BatchCompleted, BatchTerminated, BatchFailed:
		return true
	}
	return false
}

// BatchAction enumerates the defined batch status transitions.
type BatchAction string

const (
	ActionSendComplete       BatchAction = "sendComplete"
	ActionProcessingComplete BatchAction = "processingComplete"
	ActionTerminate          BatchAction = "terminate"
	ActionFail               BatchAction = "fail"
)

// batchTransitions is the explicit transition table: which statuses each
// action may be applied from. fail is permitted from any non-terminal status.
var batchTransitions = map[BatchAction][]BatchStatus{
	ActionSendComplete:       {BatchStarted},
	ActionProcessingComplete: {BatchSendCompleted},
	ActionTerminate:          {BatchStarted, BatchSendCompleted},
	ActionFail:               {BatchStarted, BatchSendCompleted},
}

// Known reports whether a is one of the defined actions.
func (a BatchAction) Known() bool {
	_, ok := batchTransitions[a]
	return ok
}

// ValidFrom reports whether action a may be applied to a batch currently in
// status s.
func (a BatchAction) ValidFrom(s BatchStatus) bool {
	for _, from := range batchTransitions[a] {
		if from == s {
			return true
		}
	}
	return false
}

// Batch is one unit of ingested data tracked through the status lifecycle.
// Metadata is stored verbatim and round-tripped without schema validation.
type Batch struct {
	ID                  string                 `json:"id"`
	Name                string                 `json:"name"`
	Topic               string                 `json:"topic"`
	DataType            string                 `json:"dataType"`
	Status              BatchStatus            `json:"status"`
	StartDate           *time.Time             `json:"startDate,omitempty"`
	EndDate             *time.Time             `json:"endDate,omitempty"`
	RecordCount         *int                   `json:"recordCount,omitempty"`
	ExpectedRecordCount *int                   `json:"expectedRecordCount,omitempty"`
	ActualRecordCount   *int                   `json:"actualRecordCount,omitempty"`
	InvalidRecordCount  *int                   `json:"invalidRecordCount,omitempty"`
	InvalidThreshold    int                    `json:"invalidThreshold"`
	FailureMessage      string                 `json:"failureMessage,omitempty"`
	Metadata            map[string]interface{} `json:"metadata,omitempty"`

	// Version is the store's optimistic concurrency token. It never appears
	// on the wire.
	Version uint64 `json:"-"`
}

// BatchFilter narrows a batch query. Nil members are unconstrained.
type BatchFilter struct {
	Status  *BatchStatus
	Name    *string
	GteDate *time.Time
	LteDate *time.Time
	Size    int
	From    int
}

// ActionRequest carries the caller-supplied inputs of a batch action.
type ActionRequest struct {
	RecordCount         *int   `json:"recordCount,omitempty"`
	ExpectedRecordCount *int   `json:"expectedRecordCount,omitempty"`
	ActualRecordCount   *int   `json:"actualRecordCount,omitempty"`
	InvalidRecordCount  *int   `json:"invalidRecordCount,omitempty"`
	FailureMessage      string `json:"failureMessage,omitempty"`
}

// BatchStore is the document index batches are persisted in. Implementations
// provide per-tenant isolation and a version-gated update primitive; no
// in-process locks are expected from callers.
type BatchStore interface {
	CreateIndex(ctx context.Context, tenantID string) error
	DeleteIndex(ctx context.Context, tenantID string) error
	IndexExists(ctx context.Context, tenantID string) (bool, error)
	ListIndexes(ctx context.Context) ([]string, error)

	CreateBatch(ctx context.Context, tenantID string, b *Batch) error
	GetBatch(ctx context.Context, tenantID, id string) (*Batch, error)
	FindBatches(ctx context.Context, tenantID string, filter BatchFilter) ([]*Batch, int, error)
	// UpdateBatch writes b only if the stored document still carries
	// ifVersion, returning a conflict error otherwise.
	UpdateBatch(ctx context.Context, tenantID string, b *Batch, ifVersion uint64) error
	DeleteBatch(ctx context.Context, tenantID, id string) error

	Ping(ctx context.Context) error
}

// BatchService implements the batch lifecycle on top of a BatchStore and an
// EventService.
type BatchService interface {
	CreateBatch(ctx context.Context, tenantID string, b *Batch) (*Batch, error)
	FindBatchByID(ctx context.Context, tenantID, id string) (*Batch, error)
	FindBatches(ctx context.Context, tenantID string, filter BatchFilter) ([]*Batch, int, error)
	ProcessAction(ctx context.Context, tenantID, id string, action BatchAction, req ActionRequest) (*Batch, error)
}
