package broker

import (
	"context"

	"compass/pkg/models"
)

type Producer interface {
	Publish(ctx context.Context, topic string, event models.RuleChangeEvent) error
	Close() error
}
