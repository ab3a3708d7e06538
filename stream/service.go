package stream

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	hri "github.com/Alvearie/hri-mgmt-api-sub000"
	"github.com/Alvearie/hri-mgmt-api-sub000/kit/platform/errors"
)

// Service provisions per-tenant, per-integrator topic sets on the broker.
type Service struct {
	events hri.EventService
	log    *zap.Logger
}

var _ hri.StreamService = (*Service)(nil)

// NewService constructs a stream service.
func NewService(events hri.EventService, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{events: events, log: log}
}

// CreateStream validates the stream and creates its topic set. The input
// topic acts as the existence marker: when it is present the stream counts as
// already created.
func (s *Service) CreateStream(ctx context.Context, stream *hri.Stream) error {
	if err := stream.Validate(); err != nil {
		return err
	}

	inTopic := hri.InTopic(stream.TenantID, stream.IntegratorID)
	existing, err := s.events.ListTopics(ctx, hri.TopicBase(stream.TenantID, stream.IntegratorID))
	if err != nil {
		return err
	}
	for _, t := range existing {
		if t == inTopic {
			return StreamExistsError(inTopic)
		}
	}

	topics := make([]hri.TopicConfig, 0, 4)
	for _, name := range hri.TopicNames(stream.TenantID, stream.IntegratorID) {
		topics = append(topics, hri.TopicConfig{
			Name:          name,
			NumPartitions: stream.NumPartitions,
			RetentionMs:   stream.RetentionMs,
			CleanupPolicy: stream.CleanupPolicy,
		})
	}
	if err := s.events.CreateTopics(ctx, topics...); err != nil {
		return err
	}

	s.log.Info("stream created",
		zap.String("tenantId", stream.TenantID),
		zap.String("streamId", stream.IntegratorID),
	)
	return nil
}

// DeleteStream removes every topic of the tenant+integrator pair. When none
// of them exist the error aggregates one unknown-topic line per topic.
func (s *Service) DeleteStream(ctx context.Context, tenantID, integratorID string) error {
	names := hri.TopicNames(tenantID, integratorID)

	existing, err := s.events.ListTopics(ctx, hri.TopicBase(tenantID, integratorID))
	if err != nil {
		return err
	}
	existingSet := map[string]bool{}
	for _, t := range existing {
		existingSet[t] = true
	}

	var present []string
	var unknown *multierror.Error
	for _, name := range names {
		if existingSet[name] {
			present = append(present, name)
		} else {
			unknown = multierror.Append(unknown, fmt.Errorf("unknown topic '%s'", name))
		}
	}

	if len(present) == 0 {
		return &errors.Error{
			Code: errors.ENotFound,
			Msg:  unknown.Error(),
		}
	}

	var failed *multierror.Error
	for _, name := range present {
		if err := s.events.DeleteTopics(ctx, name); err != nil {
			failed = multierror.Append(failed, fmt.Errorf("unable to delete topic '%s': %s", name, errors.ErrorMessage(err)))
		}
	}
	if failed != nil {
		return &errors.Error{
			Code: errors.EInternal,
			Msg:  failed.Error(),
		}
	}

	s.log.Info("stream deleted",
		zap.String("tenantId", tenantID),
		zap.String("streamId", integratorID),
	)
	return nil
}

// ListStreams derives the distinct integrator ids from the tenant's existing
// topic names.
func (s *Service) ListStreams(ctx context.Context, tenantID string) ([]string, error) {
	topics, err := s.events.ListTopics(ctx, hri.TopicPrefix+tenantID+".")
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	ids := []string{}
	for _, topic := range topics {
		id, ok := hri.IntegratorFromTopic(tenantID, topic)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// StreamExistsError is returned when the stream's input topic already exists.
func StreamExistsError(inTopic string) error {
	return &errors.Error{
		Code: errors.EConflict,
		Msg:  fmt.Sprintf("topic '%s' already exists", inTopic),
	}
}
