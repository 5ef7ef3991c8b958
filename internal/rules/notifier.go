package rules

import (
	"context"
	"time"

	"github.com/google/uuid"

	"compass/internal/broker"
	"compass/pkg/models"
)

// RuleEventProducer publishes rule-change events for downstream consumers.
// A nil producer or empty topic turns publishing into a no-op, matching how
// the broker is optional in configuration.
type RuleEventProducer struct {
	producer broker.Producer
	topic    string
}

func NewRuleEventProducer(producer broker.Producer, topic string) *RuleEventProducer {
	return &RuleEventProducer{
		producer: producer,
		topic:    topic,
	}
}

func (p *RuleEventProducer) PublishRuleEvent(ctx context.Context, action string, ruleID int64, countryCode, changedBy string) error {
	return p.publish(ctx, models.RuleChangeEvent{
		ID:          uuid.New().String(),
		EventType:   models.EventTypeRuleChanged,
		RuleID:      ruleID,
		CountryCode: countryCode,
		Action:      action,
		Timestamp:   time.Now(),
		ChangedBy:   changedBy,
	})
}

func (p *RuleEventProducer) PublishImportEvent(ctx context.Context, changedBy string, metadata map[string]interface{}) error {
	return p.publish(ctx, models.RuleChangeEvent{
		ID:        uuid.New().String(),
		EventType: models.EventTypeRuleChanged,
		Action:    models.ActionImport,
		Timestamp: time.Now(),
		ChangedBy: changedBy,
		Metadata:  metadata,
	})
}

func (p *RuleEventProducer) PublishPromotionEvent(ctx context.Context, ruleID int64, countryCode, changedBy string, metadata map[string]interface{}) error {
	return p.publish(ctx, models.RuleChangeEvent{
		ID:          uuid.New().String(),
		EventType:   models.EventTypeSubmissionPromoted,
		RuleID:      ruleID,
		CountryCode: countryCode,
		Action:      models.ActionPromote,
		Timestamp:   time.Now(),
		ChangedBy:   changedBy,
		Metadata:    metadata,
	})
}

func (p *RuleEventProducer) PublishCountryEvent(ctx context.Context, countryCode, changedBy string) error {
	return p.publish(ctx, models.RuleChangeEvent{
		ID:          uuid.New().String(),
		EventType:   models.EventTypeCountryAdded,
		CountryCode: countryCode,
		Action:      models.ActionCreate,
		Timestamp:   time.Now(),
		ChangedBy:   changedBy,
	})
}

func (p *RuleEventProducer) publish(ctx context.Context, event models.RuleChangeEvent) error {
	if p == nil || p.producer == nil || p.topic == "" {
		return nil
	}
	return p.producer.Publish(ctx, p.topic, event)
}
