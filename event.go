package hri

import "context"

// TopicConfig describes one broker topic to create.
type TopicConfig struct {
	Name          string
	NumPartitions int
	RetentionMs   int
	CleanupPolicy string
}

// EventService is the message broker boundary: topic administration for the
// stream provisioner and event publication for the batch lifecycle.
type EventService interface {
	CreateTopics(ctx context.Context, topics ...TopicConfig) error
	DeleteTopics(ctx context.Context, names ...string) error
	ListTopics(ctx context.Context, prefix string) ([]string, error)
	Publish(ctx context.Context, topic, key string, value []byte) error
	Ping(ctx context.Context) error
}
