package eventbus

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Handler processes one published payload.
type Handler func(ctx context.Context, routingKey string, payload []byte) error

// InProcessBus delivers events synchronously to handlers registered in the
// same process. It stands in for RabbitMQ when no broker is configured.
type InProcessBus struct {
	handlers map[string][]Handler
	logger   *slog.Logger
	mu       sync.RWMutex
}

// NewInProcessBus creates a new in-process bus.
func NewInProcessBus(logger *slog.Logger) *InProcessBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessBus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for a routing key. "#" receives every event.
func (b *InProcessBus) Subscribe(routingKey string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[routingKey] = append(b.handlers[routingKey], handler)
}

// Publish dispatches the payload to every matching handler. Handler
// failures are logged and never fail the publish.
func (b *InProcessBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[routingKey])+len(b.handlers["#"]))
	handlers = append(handlers, b.handlers[routingKey]...)
	handlers = append(handlers, b.handlers["#"]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		start := time.Now()
		if err := h(ctx, routingKey, payload); err != nil {
			b.logger.ErrorContext(ctx, "event dispatch failed",
				"routing_key", routingKey,
				"duration_ms", time.Since(start).Milliseconds(),
				"error", err,
			)
		}
	}

	b.logger.DebugContext(ctx, "event dispatched",
		"routing_key", routingKey,
		"handlers", len(handlers),
	)
	return nil
}

// Close is a no-op for the in-process bus.
func (b *InProcessBus) Close() error {
	return nil
}
