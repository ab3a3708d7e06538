package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	hri "github.com/Alvearie/hri-mgmt-api-sub000"
	"github.com/Alvearie/hri-mgmt-api-sub000/kit/platform/errors"
)

// DefaultQuerySize bounds unpaged batch queries.
const DefaultQuerySize = 10

// disabledThreshold marks invalidThreshold as unset.
const disabledThreshold = -1

// Service drives the batch lifecycle: documents in the store, the status
// state machine, and lifecycle notifications on the event stream.
type Service struct {
	store  hri.BatchStore
	events hri.EventService
	log    *zap.Logger

	// Clock and IDGenerator are replaceable for tests.
	Clock       clock.Clock
	IDGenerator func() string
}

var _ hri.BatchService = (*Service)(nil)

// NewService constructs a batch service.
func NewService(store hri.BatchStore, events hri.EventService, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:       store,
		events:      events,
		log:         log,
		Clock:       clock.New(),
		IDGenerator: uuid.NewString,
	}
}

// notification is the wire shape of lifecycle events: the batch document plus
// its owning tenant.
type notification struct {
	TenantID string `json:"tenantId"`
	*hri.Batch
}

// CreateBatch persists a new started batch and publishes its creation
// notification. The write is rolled back when the publish fails, so a batch
// is never visible in the store without a notification on the stream.
func (s *Service) CreateBatch(ctx context.Context, tenantID string, b *hri.Batch) (*hri.Batch, error) {
	exists, err := s.store.IndexExists(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &errors.Error{
			Code: errors.ENotFound,
			Msg:  fmt.Sprintf("Tenant: %s not found", tenantID),
		}
	}

	if err := validateCreate(b); err != nil {
		return nil, err
	}

	// recordCount is the deprecated alias of expectedRecordCount.
	if b.ExpectedRecordCount == nil && b.RecordCount != nil {
		b.ExpectedRecordCount = b.RecordCount
	}
	if b.InvalidThreshold == 0 {
		b.InvalidThreshold = disabledThreshold
	}

	b.ID = s.IDGenerator()
	b.Status = hri.BatchStarted
	now := s.Clock.Now().UTC()
	b.StartDate = &now
	b.EndDate = nil

	if err := s.store.CreateBatch(ctx, tenantID, b); err != nil {
		return nil, err
	}

	if err := s.publish(ctx, tenantID, b); err != nil {
		if delErr := s.store.DeleteBatch(ctx, tenantID, b.ID); delErr != nil {
			s.log.Error("failed to roll back batch after publish failure",
				zap.String("tenantId", tenantID),
				zap.String("batchId", b.ID),
				zap.Error(delErr),
			)
		}
		return nil, &errors.Error{
			Code: errors.EInternal,
			Msg:  "unable to publish batch creation notification",
			Err:  err,
		}
	}

	s.log.Info("batch created",
		zap.String("tenantId", tenantID),
		zap.String("batchId", b.ID),
	)
	return b, nil
}

func validateCreate(b *hri.Batch) error {
	var missing []string
	if b.Name == "" {
		missing = append(missing, "name")
	}
	if b.Topic == "" {
		missing = append(missing, "topic")
	}
	if b.DataType == "" {
		missing = append(missing, "dataType")
	}
	if len(missing) > 0 {
		return &errors.Error{
			Code: errors.EInvalid,
			Msg:  fmt.Sprintf("invalid request arguments: missing required field(s): [%s]", strings.Join(missing, ", ")),
		}
	}
	return nil
}

// FindBatchByID returns one batch.
func (s *Service) FindBatchByID(ctx context.Context, tenantID, id string) (*hri.Batch, error) {
	return s.store.GetBatch(ctx, tenantID, id)
}

// FindBatches returns the filtered page of a tenant's batches and the total
// match count.
func (s *Service) FindBatches(ctx context.Context, tenantID string, filter hri.BatchFilter) ([]*hri.Batch, int, error) {
	if filter.Size <= 0 {
		filter.Size = DefaultQuerySize
	}
	return s.store.FindBatches(ctx, tenantID, filter)
}

// ProcessAction applies one state machine action to a batch. The status check
// and write are version-gated against the store, so two concurrent actions on
// the same prior state resolve with exactly one success and the rest see a
// conflict.
func (s *Service) ProcessAction(ctx context.Context, tenantID, id string, action hri.BatchAction, req hri.ActionRequest) (*hri.Batch, error) {
	if !action.Known() {
		return nil, &errors.Error{
			Code: errors.EInvalid,
			Msg:  fmt.Sprintf("invalid batch action '%s'", action),
		}
	}
	if err := validateActionRequest(action, req); err != nil {
		return nil, err
	}

	b, err := s.store.GetBatch(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if !action.ValidFrom(b.Status) {
		return nil, ConflictError(action, b.Status)
	}

	version := b.Version
	s.apply(action, req, b)

	if err := s.store.UpdateBatch(ctx, tenantID, b, version); err != nil {
		if errors.ErrorCode(err) == errors.EConflict {
			// Another action won the race; report the state it left behind.
			if current, getErr := s.store.GetBatch(ctx, tenantID, id); getErr == nil {
				return nil, ConflictError(action, current.Status)
			}
		}
		return nil, err
	}

	if err := s.publish(ctx, tenantID, b); err != nil {
		// The transition is durable; only the notification failed.
		return nil, &errors.Error{
			Code: errors.EInternal,
			Msg:  fmt.Sprintf("batch status changed to '%s' but the notification could not be published", b.Status),
			Err:  err,
		}
	}

	s.log.Info("batch action applied",
		zap.String("tenantId", tenantID),
		zap.String("batchId", id),
		zap.String("action", string(action)),
		zap.String("status", string(b.Status)),
	)
	return b, nil
}

func validateActionRequest(action hri.BatchAction, req hri.ActionRequest) error {
	var missing []string
	switch action {
	case hri.ActionSendComplete:
		if req.RecordCount == nil && req.ExpectedRecordCount == nil {
			return &errors.Error{
				Code: errors.EInvalid,
				Msg:  "invalid request arguments: one of recordCount or expectedRecordCount must be provided",
			}
		}
	case hri.ActionProcessingComplete:
		if req.ActualRecordCount == nil {
			missing = append(missing, "actualRecordCount")
		}
		if req.InvalidRecordCount == nil {
			missing = append(missing, "invalidRecordCount")
		}
	case hri.ActionFail:
		if req.ActualRecordCount == nil {
			missing = append(missing, "actualRecordCount")
		}
		if req.InvalidRecordCount == nil {
			missing = append(missing, "invalidRecordCount")
		}
		if req.FailureMessage == "" {
			missing = append(missing, "failureMessage")
		}
	}
	if len(missing) > 0 {
		return &errors.Error{
			Code: errors.EInvalid,
			Msg:  fmt.Sprintf("invalid request arguments: missing required field(s): [%s]", strings.Join(missing, ", ")),
		}
	}
	return nil
}

// apply mutates b per the transition table. The caller has already verified
// the action is valid from b.Status.
func (s *Service) apply(action hri.BatchAction, req hri.ActionRequest, b *hri.Batch) {
	now := s.Clock.Now().UTC()
	switch action {
	case hri.ActionSendComplete:
		if req.ExpectedRecordCount != nil {
			// Record counts are validated downstream; completion arrives
			// later through processingComplete.
			b.Status = hri.BatchSendCompleted
			b.ExpectedRecordCount = req.ExpectedRecordCount
		} else {
			b.Status = hri.BatchCompleted
			b.RecordCount = req.RecordCount
			b.ExpectedRecordCount = req.RecordCount
			b.EndDate = &now
		}
	case hri.ActionProcessingComplete:
		b.Status = hri.BatchCompleted
		b.ActualRecordCount = req.ActualRecordCount
		b.InvalidRecordCount = req.InvalidRecordCount
		b.EndDate = &now
	case hri.ActionTerminate:
		b.Status = hri.BatchTerminated
		b.EndDate = &now
	case hri.ActionFail:
		b.Status = hri.BatchFailed
		b.ActualRecordCount = req.ActualRecordCount
		b.InvalidRecordCount = req.InvalidRecordCount
		b.FailureMessage = req.FailureMessage
		b.EndDate = &now
	}
}

func (s *Service) publish(ctx context.Context, tenantID string, b *hri.Batch) error {
	payload, err := json.Marshal(notification{TenantID: tenantID, Batch: b})
	if err != nil {
		return err
	}
	topic := hri.NotificationTopicForInput(b.Topic)
	return s.events.Publish(ctx, topic, b.ID, payload)
}

// ConflictError is the 409 surfaced when an action is attempted from a state
// it is not valid from.
func ConflictError(action hri.BatchAction, status hri.BatchStatus) error {
	return &errors.Error{
		Code: errors.EConflict,
		Msg:  fmt.Sprintf("%s failed, batch is in '%s' state", action, status),
	}
}
