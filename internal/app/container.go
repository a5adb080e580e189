package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/triage/internal/ranking/application/commands"
	"github.com/felixgeelhaar/triage/internal/ranking/application/queries"
	"github.com/felixgeelhaar/triage/internal/ranking/application/services"
	"github.com/felixgeelhaar/triage/internal/ranking/domain"
	"github.com/felixgeelhaar/triage/internal/ranking/infrastructure/persistence"
	"github.com/felixgeelhaar/triage/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/triage/pkg/config"
	"github.com/felixgeelhaar/triage/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics observability.Metrics

	// Storage
	WeightStore domain.WeightStore
	stores      *StoreFactory

	// Publishers
	EventPublisher eventbus.Publisher

	// Services
	WeightService *services.WeightService
	ScoringEngine *services.ScoringEngine

	// Query handlers
	AnalyzeTasksHandler *queries.AnalyzeTasksHandler
	SuggestTasksHandler *queries.SuggestTasksHandler
	GetWeightsHandler   *queries.GetWeightsHandler

	// Command handlers
	SubmitFeedbackHandler *commands.SubmitFeedbackHandler

	// Health
	Health *observability.HealthRegistry
}

// Option customizes a container before its handlers are built.
type Option func(*Container)

// WithMetrics replaces the no-op metrics collector.
func WithMetrics(metrics observability.Metrics) Option {
	return func(c *Container) { c.Metrics = metrics }
}

// WithClock fixes the scoring engine's notion of today.
func WithClock(clock func() time.Time) Option {
	return func(c *Container) {
		c.ScoringEngine = services.NewScoringEngine(services.ScoringEngineConfig{
			Clock:    clock,
			Calendar: domain.NewHolidayCalendar(c.Config.Holidays),
		})
	}
}

// WithPublisher replaces the publisher chosen from configuration.
func WithPublisher(publisher eventbus.Publisher) Option {
	return func(c *Container) { c.EventPublisher = publisher }
}

// NewContainer creates and wires all dependencies.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.stores = NewStoreFactory(cfg, logger, c.Metrics)
	store, err := c.stores.WeightStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open weight store: %w", err)
	}

	if c.EventPublisher == nil {
		publisher, err := newPublisher(cfg, logger)
		if err != nil {
			c.stores.Close()
			return nil, err
		}
		c.EventPublisher = publisher
	}

	c.wire(store)
	return c, nil
}

// NewContainerWithStore wires the handlers around an existing store. The
// caller owns the store.
func NewContainerWithStore(cfg *config.Config, store domain.WeightStore, logger *slog.Logger, opts ...Option) *Container {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.EventPublisher == nil {
		c.EventPublisher = eventbus.NewNoopPublisher(logger)
	}
	c.wire(store)
	return c
}

func (c *Container) wire(store domain.WeightStore) {
	c.WeightStore = store

	if c.ScoringEngine == nil {
		engineCfg := services.DefaultScoringEngineConfig()
		if c.Config.Holidays != nil {
			engineCfg.Calendar = domain.NewHolidayCalendar(c.Config.Holidays)
		}
		c.ScoringEngine = services.NewScoringEngine(engineCfg)
	}
	c.WeightService = services.NewWeightService(store, c.Logger, c.Metrics)

	c.AnalyzeTasksHandler = queries.NewAnalyzeTasksHandler(c.WeightService, c.ScoringEngine, c.Logger, c.Metrics)
	c.SuggestTasksHandler = queries.NewSuggestTasksHandler(c.AnalyzeTasksHandler, c.Config.SuggestLimit)
	c.GetWeightsHandler = queries.NewGetWeightsHandler(c.WeightService)
	c.SubmitFeedbackHandler = commands.NewSubmitFeedbackHandler(c.WeightService, c.EventPublisher, c.Logger, c.Metrics)

	c.Health = observability.NewHealthRegistry()
	if pinger, ok := store.(persistence.Pinger); ok {
		// Reads fall back to the default table, so an outage only degrades.
		c.Health.Register("weight_store", observability.PingHealthChecker(
			c.Config.WeightStore, observability.HealthStatusDegraded, pinger.Ping,
		))
	}
}

// DefaultStrategy returns the strategy used when a caller names none.
func (c *Container) DefaultStrategy() string {
	if c.Config != nil && c.Config.DefaultStrategy != "" {
		return c.Config.DefaultStrategy
	}
	return domain.DefaultStrategy
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}
	if c.stores != nil {
		c.stores.Close()
	}
}

// newPublisher connects to RabbitMQ when a URL is configured. Without one,
// events go to an in-process bus that writes them to the audit log.
func newPublisher(cfg *config.Config, logger *slog.Logger) (eventbus.Publisher, error) {
	if cfg.RabbitMQURL != "" {
		publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
		if err == nil {
			return publisher, nil
		}
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		logger.Warn("RabbitMQ not available, using in-process event bus", "error", err)
	}

	bus := eventbus.NewInProcessBus(logger)
	bus.Subscribe(domain.RoutingKeyWeightsUpdated, auditWeightsUpdated(logger))
	return bus, nil
}

func auditWeightsUpdated(logger *slog.Logger) eventbus.Handler {
	return func(ctx context.Context, routingKey string, payload []byte) error {
		logger.InfoContext(ctx, "weights updated",
			"routing_key", routingKey,
			"payload", string(payload),
		)
		return nil
	}
}
