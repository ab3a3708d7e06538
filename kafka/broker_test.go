package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hri "github.com/Alvearie/hri-mgmt-api-sub000"
	"github.com/Alvearie/hri-mgmt-api-sub000/kit/platform/errors"
)

func TestTopicConfig(t *testing.T) {
	cfg := topicConfig(hri.TopicConfig{
		Name:          "ingest.t1.porter.in",
		NumPartitions: 3,
		RetentionMs:   86400000,
		CleanupPolicy: hri.CleanupPolicyCompact,
	})

	assert.Equal(t, "ingest.t1.porter.in", cfg.Topic)
	assert.Equal(t, 3, cfg.NumPartitions)
	assert.Equal(t, 1, cfg.ReplicationFactor)
	require.Len(t, cfg.ConfigEntries, 2)
	assert.Equal(t, "retention.ms", cfg.ConfigEntries[0].ConfigName)
	assert.Equal(t, "86400000", cfg.ConfigEntries[0].ConfigValue)
	assert.Equal(t, "cleanup.policy", cfg.ConfigEntries[1].ConfigName)
	assert.Equal(t, "compact", cfg.ConfigEntries[1].ConfigValue)
}

func TestTopicConfigDefaults(t *testing.T) {
	cfg := topicConfig(hri.TopicConfig{Name: "ingest.t1.porter.in", RetentionMs: 1000})

	assert.Equal(t, 1, cfg.NumPartitions)
	require.Len(t, cfg.ConfigEntries, 1)
	assert.Equal(t, "retention.ms", cfg.ConfigEntries[0].ConfigName)
}

func TestBrokerNoEndpoints(t *testing.T) {
	b := NewBroker(nil, time.Second, nil)

	err := b.Ping(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.EUnavailable, errors.ErrorCode(err))
	assert.Contains(t, errors.ErrorMessage(err), "message broker is unreachable")

	_, err = b.ListTopics(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, errors.EUnavailable, errors.ErrorCode(err))
}

func TestNewBrokerDefaults(t *testing.T) {
	b := NewBroker([]string{"localhost:9092"}, 0, nil)
	assert.Equal(t, defaultTimeout, b.Timeout)
	assert.NoError(t, b.Close())
}
