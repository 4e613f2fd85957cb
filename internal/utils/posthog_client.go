package utils

import (
	"log/slog"

	"github.com/posthog/posthog-go"
)

// PosthogClientWrapper sends operator actions to PostHog. Without an API key it is
// a no-op, so callers never check for nil clients.
type PosthogClientWrapper struct {
	posthogClient posthog.Client
	shop          string
	logger        *slog.Logger
}

// InitializePosthogClient connects to the PostHog instance at endpoint. Every
// event is tagged with the shop name so several shops can share one project.
func InitializePosthogClient(apiKey, endpoint, shop string, logger *slog.Logger) *PosthogClientWrapper {
	if apiKey == "" {
		logger.Warn("Posthog API key is empty, analytics disabled")
		return &PosthogClientWrapper{}
	}
	client, err := posthog.NewWithConfig(apiKey, posthog.Config{Endpoint: endpoint})
	if err != nil {
		logger.Error("Failed to initialize posthog client", slog.String("endpoint", endpoint), slog.String("error", err.Error()))
		return &PosthogClientWrapper{}
	}
	logger.Info("Posthog analytics enabled", slog.String("endpoint", endpoint))
	return &PosthogClientWrapper{posthogClient: client, shop: shop, logger: logger}
}

func (w *PosthogClientWrapper) IsInitialized() bool {
	return w != nil && w.posthogClient != nil
}

// Enqueue queues one capture for operatorID. properties is not modified.
func (w *PosthogClientWrapper) Enqueue(operatorID string, event string, properties map[string]any) {
	if !w.IsInitialized() {
		return
	}
	props := posthog.NewProperties()
	for k, v := range properties {
		props.Set(k, v)
	}
	if w.shop != "" {
		props.Set("shop", w.shop)
	}
	w.logger.Debug("Enqueueing analytics event", slog.String("operator_id", operatorID), slog.String("event", event))
	if err := w.posthogClient.Enqueue(posthog.Capture{
		DistinctId: operatorID,
		Event:      event,
		Properties: props,
	}); err != nil {
		w.logger.Warn("Dropped analytics event", slog.String("event", event), slog.String("error", err.Error()))
	}
}

// Close flushes queued events.
func (w *PosthogClientWrapper) Close() {
	if !w.IsInitialized() {
		return
	}
	if err := w.posthogClient.Close(); err != nil {
		w.logger.Warn("Failed to flush analytics events", slog.String("error", err.Error()))
	}
}
