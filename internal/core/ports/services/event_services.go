package services

import (
	"context"

	"github.com/gestionale-jos/jos_backend/internal/core/domain"
)

// EventPublisher delivers change events. Publishing never fails the write that caused it.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.ChangeEvent)
}

// EventStream lets clients follow change events.
type EventStream interface {
	EventPublisher
	// Subscribe returns a channel of events and a function that ends the subscription.
	Subscribe() (<-chan domain.ChangeEvent, func())
}
