package kafka

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	hri "github.com/Alvearie/hri-mgmt-api-sub000"
	"github.com/Alvearie/hri-mgmt-api-sub000/kit/platform/errors"
)

const defaultTimeout = 10 * time.Second

// Broker is a kafka-backed implementation of hri.EventService. Topic
// administration goes through the cluster controller; publishes go through a
// single shared writer.
type Broker struct {
	Endpoints []string
	Timeout   time.Duration

	log *zap.Logger

	producerOnce sync.Once
	producer     *kafka.Writer
}

// NewBroker returns a broker client for the given bootstrap endpoints.
func NewBroker(endpoints []string, timeout time.Duration, log *zap.Logger) *Broker {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Broker{Endpoints: endpoints, Timeout: timeout, log: log}
}

// Close releases the shared writer, if one was created.
func (b *Broker) Close() error {
	if b.producer != nil {
		return b.producer.Close()
	}
	return nil
}

// CreateTopics creates every topic or fails; kafka applies the batch so
// callers observe all topics or none as created.
func (b *Broker) CreateTopics(ctx context.Context, topics ...hri.TopicConfig) error {
	configs := make([]kafka.TopicConfig, 0, len(topics))
	for _, t := range topics {
		configs = append(configs, topicConfig(t))
	}

	err := b.withController(ctx, func(conn *kafka.Conn) error {
		return conn.CreateTopics(configs...)
	})
	if err != nil {
		return &errors.Error{
			Code: errors.EInternal,
			Msg:  "unable to create topics",
			Op:   "kafka.CreateTopics",
			Err:  err,
		}
	}
	return nil
}

func topicConfig(t hri.TopicConfig) kafka.TopicConfig {
	entries := []kafka.ConfigEntry{
		{ConfigName: "retention.ms", ConfigValue: strconv.Itoa(t.RetentionMs)},
	}
	if t.CleanupPolicy != "" {
		entries = append(entries, kafka.ConfigEntry{
			ConfigName:  "cleanup.policy",
			ConfigValue: t.CleanupPolicy,
		})
	}
	numPartitions := t.NumPartitions
	if numPartitions == 0 {
		numPartitions = 1
	}
	return kafka.TopicConfig{
		Topic:             t.Name,
		NumPartitions:     numPartitions,
		ReplicationFactor: 1,
		ConfigEntries:     entries,
	}
}

// DeleteTopics removes the named topics.
func (b *Broker) DeleteTopics(ctx context.Context, names ...string) error {
	err := b.withController(ctx, func(conn *kafka.Conn) error {
		return conn.DeleteTopics(names...)
	})
	if err != nil {
		return &errors.Error{
			Code: errors.EInternal,
			Msg:  "unable to delete topics",
			Op:   "kafka.DeleteTopics",
			Err:  err,
		}
	}
	return nil
}

// ListTopics returns the distinct topic names with the given prefix, all
// topics when prefix is empty.
func (b *Broker) ListTopics(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	err := b.withConn(ctx, func(conn *kafka.Conn) error {
		partitions, err := conn.ReadPartitions()
		if err != nil {
			return err
		}
		seen := map[string]bool{}
		for _, p := range partitions {
			if seen[p.Topic] {
				continue
			}
			seen[p.Topic] = true
			if prefix == "" || len(p.Topic) >= len(prefix) && p.Topic[:len(prefix)] == prefix {
				names = append(names, p.Topic)
			}
		}
		return nil
	})
	if err != nil {
		return nil, &errors.Error{
			Code: errors.EUnavailable,
			Msg:  "unable to list topics",
			Op:   "kafka.ListTopics",
			Err:  err,
		}
	}
	return names, nil
}

// Publish writes one message with full-ISR acknowledgement.
func (b *Broker) Publish(ctx context.Context, topic, key string, value []byte) error {
	ctx, cancel := context.WithTimeout(ctx, b.Timeout)
	defer cancel()

	err := b.getProducer().WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	})
	if err != nil {
		return &errors.Error{
			Code: errors.EInternal,
			Msg:  fmt.Sprintf("unable to publish to topic '%s'", topic),
			Op:   "kafka.Publish",
			Err:  err,
		}
	}
	return nil
}

// Ping verifies the cluster controller is reachable.
func (b *Broker) Ping(ctx context.Context) error {
	err := b.withController(ctx, func(*kafka.Conn) error { return nil })
	if err != nil {
		return &errors.Error{
			Code: errors.EUnavailable,
			Msg:  "message broker is unreachable",
			Err:  err,
		}
	}
	return nil
}

func (b *Broker) getProducer() *kafka.Writer {
	b.producerOnce.Do(func() {
		b.producer = &kafka.Writer{
			Addr:         kafka.TCP(b.Endpoints...),
			Balancer:     &kafka.Hash{},
			MaxAttempts:  10,
			RequiredAcks: kafka.RequireAll,
			Async:        false,
		}
	})
	return b.producer
}

// withConn runs fn against the first reachable endpoint.
func (b *Broker) withConn(ctx context.Context, fn func(*kafka.Conn) error) error {
	if len(b.Endpoints) == 0 {
		return fmt.Errorf("no broker endpoints configured")
	}

	ctx, cancel := context.WithTimeout(ctx, b.Timeout)
	defer cancel()

	var err error
	for _, endpoint := range b.Endpoints {
		var conn *kafka.Conn
		conn, err = kafka.DialContext(ctx, "tcp", endpoint)
		if err != nil {
			continue
		}
		err = fn(conn)
		conn.Close()
		return err
	}
	return err
}

// withController runs fn against the cluster controller, trying each
// endpoint until one answers.
func (b *Broker) withController(ctx context.Context, fn func(*kafka.Conn) error) error {
	return b.withConn(ctx, func(conn *kafka.Conn) error {
		controller, err := conn.Controller()
		if err != nil {
			return err
		}
		controllerConn, err := kafka.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
		if err != nil {
			return err
		}
		defer controllerConn.Close()
		return fn(controllerConn)
	})
}
