package mock

import (
	"context"

	hri "github.com/Alvearie/hri-mgmt-api-sub000"
)

var _ hri.EventService = (*EventService)(nil)

// EventService is a mock implementation of hri.EventService.
type EventService struct {
	CreateTopicsFn func(ctx context.Context, topics ...hri.TopicConfig) error
	DeleteTopicsFn func(ctx context.Context, names ...string) error
	ListTopicsFn   func(ctx context.Context, prefix string) ([]string, error)
	PublishFn      func(ctx context.Context, topic, key string, value []byte) error
	PingFn         func(ctx context.Context) error
}

// NewEventService returns a mock where every method answers successfully.
func NewEventService() *EventService {
	return &EventService{
		CreateTopicsFn: func(context.Context, ...hri.TopicConfig) error { return nil },
		DeleteTopicsFn: func(context.Context, ...string) error { return nil },
		ListTopicsFn:   func(context.Context, string) ([]string, error) { return nil, nil },
		PublishFn:      func(context.Context, string, string, []byte) error { return nil },
		PingFn:         func(context.Context) error { return nil },
	}
}

func (s *EventService) CreateTopics(ctx context.Context, topics ...hri.TopicConfig) error {
	return s.CreateTopicsFn(ctx, topics...)
}

func (s *EventService) DeleteTopics(ctx context.Context, names ...string) error {
	return s.DeleteTopicsFn(ctx, names...)
}

func (s *EventService) ListTopics(ctx context.Context, prefix string) ([]string, error) {
	return s.ListTopicsFn(ctx, prefix)
}

func (s *EventService) Publish(ctx context.Context, topic, key string, value []byte) error {
	return s.PublishFn(ctx, topic, key, value)
}

func (s *EventService) Ping(ctx context.Context) error {
	return s.PingFn(ctx)
}
