package hri

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Alvearie/hri-mgmt-api-sub000/kit/platform/errors"
)

// Cleanup policies accepted for stream topics.
const (
	CleanupPolicyDelete  = "delete"
	CleanupPolicyCompact = "compact"
)

// Topic naming scheme: ingest.{tenantId}.{integratorId}.{suffix}
const (
	TopicPrefix        = "ingest."
	InSuffix           = ".in"
	NotificationSuffix = ".notification"
	OutSuffix          = ".out"
	InvalidSuffix      = ".invalid"
)

var integratorIDRegex = regexp.MustCompile(`^[a-z0-9_.-]+$`)

// Stream describes a tenant+integrator topic set to provision.
type Stream struct {
	TenantID      string `json:"-"`
	IntegratorID  string `json:"id"`
	NumPartitions int    `json:"numPartitions"`
	RetentionMs   int    `json:"retentionMs"`
	CleanupPolicy string `json:"cleanupPolicy,omitempty"`
}

// Validate checks field constraints that do not depend on broker state.
func (s *Stream) Validate() error {
	if err := ValidateTenantID(s.TenantID); err != nil {
		return err
	}
	if err := ValidateIntegratorID(s.IntegratorID); err != nil {
		return err
	}
	if s.NumPartitions <= 0 {
		return &errors.Error{
			Code: errors.EInvalid,
			Msg:  "invalid request arguments: numPartitions must be a positive integer",
		}
	}
	if s.RetentionMs <= 0 {
		return &errors.Error{
			Code: errors.EInvalid,
			Msg:  "invalid request arguments: retentionMs must be a positive integer",
		}
	}
	switch s.CleanupPolicy {
	case "", CleanupPolicyDelete, CleanupPolicyCompact:
	default:
		return &errors.Error{
			Code: errors.EInvalid,
			Msg:  fmt.Sprintf("invalid request arguments: cleanupPolicy must be '%s' or '%s'", CleanupPolicyDelete, CleanupPolicyCompact),
		}
	}
	return nil
}

// ValidateIntegratorID checks the allowed integrator id pattern. At most one
// '.' is permitted so integrator ids remain recoverable from topic names.
func ValidateIntegratorID(id string) error {
	if !integratorIDRegex.MatchString(id) || strings.Count(id, ".") > 1 {
		return &errors.Error{
			Code: errors.EInvalid,
			Msg:  fmt.Sprintf("streamId may only contain lower-case alphanumeric characters, '-', '_', and at most one '.'. '%s' is not valid", id),
		}
	}
	return nil
}

// TopicBase returns the shared name prefix of a stream's topics, without a
// trailing suffix.
func TopicBase(tenantID, integratorID string) string {
	return TopicPrefix + tenantID + "." + integratorID
}

// TopicNames returns every topic belonging to the tenant+integrator pair, the
// input topic first.
func TopicNames(tenantID, integratorID string) []string {
	base := TopicBase(tenantID, integratorID)
	return []string{
		base + InSuffix,
		base + NotificationSuffix,
		base + OutSuffix,
		base + InvalidSuffix,
	}
}

// InTopic returns the input topic name for a stream.
func InTopic(tenantID, integratorID string) string {
	return TopicBase(tenantID, integratorID) + InSuffix
}

// NotificationTopicForInput maps a batch's input topic to the notification
// topic batch lifecycle events are published to.
func NotificationTopicForInput(inTopic string) string {
	return strings.TrimSuffix(inTopic, InSuffix) + NotificationSuffix
}

// IntegratorFromTopic extracts the integrator id from one of a tenant's topic
// names. The second return is false when the topic does not belong to the
// tenant or does not follow the naming scheme.
func IntegratorFromTopic(tenantID, topic string) (string, bool) {
	prefix := TopicPrefix + tenantID + "."
	if !strings.HasPrefix(topic, prefix) {
		return "", false
	}
	rest := strings.TrimPrefix(topic, prefix)
	for _, suffix := range []string{InSuffix, NotificationSuffix, OutSuffix, InvalidSuffix} {
		if strings.HasSuffix(rest, suffix) {
			id := strings.TrimSuffix(rest, suffix)
			if id == "" {
				return "", false
			}
			return id, true
		}
	}
	return "", false
}

// StreamService provisions and tears down the topic sets batches flow through.
type StreamService interface {
	CreateStream(ctx context.Context, s *Stream) error
	DeleteStream(ctx context.Context, tenantID, integratorID string) error
	ListStreams(ctx context.Context, tenantID string) ([]string, error)
}
