package kafka

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Aztech-1729/sliptads/config"
	"github.com/Aztech-1729/sliptads/internal/domain/ads/deps"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/http/server"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/metrics"
)

// Module provides the events producer and the command consumer for fx DI.
// With Kafka disabled the producer is nil and no consumer runs.
var Module = fx.Module("kafka",
	fx.Provide(NewEventProducerFx),
	fx.Invoke(registerCommandConsumer),
	fx.Invoke(registerHealthCheck),
)

func registerHealthCheck(srv *server.Server, producer *EventProducer) {
	if producer == nil {
		return
	}
	srv.AddHealthCheck("kafka", func(context.Context) error {
		if !producer.IsHealthy() {
			return ErrProducerUnhealthy
		}
		return nil
	})
}

// NewEventProducerFx creates the events producer
func NewEventProducerFx(
	lc fx.Lifecycle,
	kafkaCfg *config.KafkaConfig,
	m *metrics.Metrics,
	logger zerolog.Logger,
) (*EventProducer, error) {
	if !kafkaCfg.Enabled {
		return nil, nil
	}

	producer, err := NewEventProducer(ProducerConfig{
		Brokers:      kafkaCfg.Brokers,
		Topic:        kafkaCfg.TopicEvents,
		Logger:       logger.With().Str("component", "events-producer").Logger(),
		Metrics:      m,
		CloseTimeout: kafkaCfg.CloseTimeout,
	})
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return producer.Close()
		},
	})

	return producer, nil
}

func registerCommandConsumer(
	lc fx.Lifecycle,
	kafkaCfg *config.KafkaConfig,
	handler deps.CommandHandler,
	m *metrics.Metrics,
	logger zerolog.Logger,
) error {
	if !kafkaCfg.Enabled || kafkaCfg.TopicCommands == "" {
		return nil
	}

	consumer, err := NewCommandConsumer(ConsumerConfig{
		Brokers:    kafkaCfg.Brokers,
		GroupID:    kafkaCfg.GroupID,
		Topic:      kafkaCfg.TopicCommands,
		Handler:    handler,
		Logger:     logger.With().Str("component", "kafka-consumer").Logger(),
		Metrics:    m,
		Attempts:   kafkaCfg.CommandAttempts,
		RetryDelay: kafkaCfg.CommandRetryDelay,
	})
	if err != nil {
		return err
	}

	var cancel context.CancelFunc

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())
			go consumer.Run(ctx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			err := consumer.Close()
			select {
			case <-consumer.Done():
			case <-ctx.Done():
				logger.Warn().Msg("Kafka command consumer did not stop in time")
			}
			return err
		},
	})

	return nil
}
