package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/Aztech-1729/sliptads/internal/domain/ads/entities"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/metrics"
)

const (
	// maxStoredErrors bounds the errors kept for Close
	maxStoredErrors = 100

	eventTypeHeader = "event_type"
)

// ErrProducerClosed is returned when publishing after Close
var ErrProducerClosed = errors.New("kafka producer is closed")

// ErrProducerUnhealthy is reported by the health check after repeated send failures
var ErrProducerUnhealthy = errors.New("kafka producer is unhealthy")

// EventProducer publishes delivery events asynchronously, keyed by user id
type EventProducer struct {
	producer     sarama.AsyncProducer
	topic        string
	closeTimeout time.Duration
	logger       zerolog.Logger
	metrics      *metrics.Metrics

	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
	closed    bool
	closeMu   sync.RWMutex
	errors    []error
	errorsMu  sync.Mutex
}

// ProducerConfig holds configuration for the events producer
type ProducerConfig struct {
	Brokers         []string
	Topic           string
	Logger          zerolog.Logger
	Metrics         *metrics.Metrics
	MaxMessageBytes int // default 1MB
	MaxRetries      int           // default 5
	CloseTimeout    time.Duration // default 10s
}

// ValidateBrokers checks that at least one broker answers a metadata request
func ValidateBrokers(brokers []string) error {
	if len(brokers) == 0 {
		return fmt.Errorf("no brokers specified")
	}

	config := sarama.NewConfig()
	config.Version = sarama.V2_6_0_0

	client, err := sarama.NewClient(brokers, config)
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka brokers: %w", err)
	}
	defer client.Close()

	if err := client.RefreshMetadata(); err != nil {
		return fmt.Errorf("failed to refresh metadata from Kafka: %w", err)
	}

	return nil
}

// NewEventProducer creates an idempotent async producer hashed by user id,
// so every user's events stay ordered within one partition
func NewEventProducer(cfg ProducerConfig) (*EventProducer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers specified")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}

	if cfg.MaxMessageBytes <= 0 {
		cfg.MaxMessageBytes = 1000000
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}

	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Net.MaxOpenRequests = 1
	config.Producer.MaxMessageBytes = cfg.MaxMessageBytes
	config.Producer.Retry.Max = cfg.MaxRetries
	config.Producer.Retry.Backoff = 500 * time.Millisecond
	config.Producer.Partitioner = sarama.NewHashPartitioner
	config.ClientID = "sliptads-events-producer"
	config.Version = sarama.V2_6_0_0

	producer, err := sarama.NewAsyncProducer(cfg.Brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	p := newEventProducer(producer, cfg.Topic, cfg.Logger, cfg.Metrics)
	if cfg.CloseTimeout > 0 {
		p.closeTimeout = cfg.CloseTimeout
	}

	cfg.Logger.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Int("max_message_bytes", cfg.MaxMessageBytes).
		Int("max_retries", cfg.MaxRetries).
		Msg("Kafka events producer initialized successfully")

	return p, nil
}

func newEventProducer(producer sarama.AsyncProducer, topic string, logger zerolog.Logger, m *metrics.Metrics) *EventProducer {
	p := &EventProducer{
		producer:     producer,
		topic:        topic,
		closeTimeout: 10 * time.Second,
		logger:       logger,
		metrics:      m,
		errors:       make([]error, 0),
	}

	p.wg.Add(2)
	go p.handleSuccesses()
	go p.handleErrors()

	return p
}

// Notify queues the event. Broker failures are reported asynchronously.
func (p *EventProducer) Notify(ctx context.Context, userID int64, event entities.Event) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("context cancelled before sending: %w", ctx.Err())
	default:
	}

	value, err := json.Marshal(EventMessage(event))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(userID, 10)),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte(eventTypeHeader), Value: []byte(event.Type)},
		},
		Timestamp: event.At,
		Metadata:  time.Now(),
	}

	// Sending on the input channel after Close panics
	p.closeMu.RLock()
	defer p.closeMu.RUnlock()
	if p.closed {
		return ErrProducerClosed
	}

	select {
	case p.producer.Input() <- msg:
		p.logger.Debug().
			Int64("user_id", userID).
			Str("event", string(event.Type)).
			Msg("Event queued for sending to Kafka")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context cancelled while sending message: %w", ctx.Err())
	}
}

func (p *EventProducer) handleSuccesses() {
	defer p.wg.Done()

	for msg := range p.producer.Successes() {
		if queued, ok := msg.Metadata.(time.Time); ok {
			p.metrics.RecordKafkaMessage(time.Since(queued).Seconds())
		}
		p.logger.Debug().
			Str("topic", msg.Topic).
			Int32("partition", msg.Partition).
			Int64("offset", msg.Offset).
			Msg("Message sent to Kafka successfully")
	}

	p.logger.Info().Msg("Success handler stopped")
}

func (p *EventProducer) handleErrors() {
	defer p.wg.Done()

	for producerErr := range p.producer.Errors() {
		p.metrics.RecordKafkaError("produce")
		p.logger.Error().
			Err(producerErr.Err).
			Str("topic", producerErr.Msg.Topic).
			Interface("key", producerErr.Msg.Key).
			Msg("Failed to send message to Kafka")

		p.errorsMu.Lock()
		if len(p.errors) < maxStoredErrors {
			p.errors = append(p.errors, producerErr.Err)
		} else if len(p.errors) == maxStoredErrors {
			p.logger.Warn().
				Int("max_errors", maxStoredErrors).
				Msg("Maximum stored errors limit reached, subsequent errors will be dropped")
			p.errors = append(p.errors, fmt.Errorf("max errors limit reached, subsequent errors dropped"))
		}
		p.errorsMu.Unlock()
	}

	p.logger.Info().Msg("Error handler stopped")
}

// IsHealthy reports whether the producer is open and not failing persistently
func (p *EventProducer) IsHealthy() bool {
	p.closeMu.RLock()
	closed := p.closed
	p.closeMu.RUnlock()
	if closed {
		return false
	}

	p.errorsMu.Lock()
	defer p.errorsMu.Unlock()
	return len(p.errors) < maxStoredErrors
}

// Close flushes pending messages and stops the handler goroutines within
// the close timeout. It is idempotent and reports the send errors
// collected while running.
func (p *EventProducer) Close() error {
	timeout := p.closeTimeout
	p.closeOnce.Do(func() {
		p.logger.Info().Dur("timeout", timeout).Msg("Closing Kafka events producer")

		p.closeMu.Lock()
		p.closed = true
		p.closeMu.Unlock()

		var errs []error

		if err := p.producer.Close(); err != nil {
			p.logger.Error().Err(err).Msg("Error closing Kafka producer")
			errs = append(errs, fmt.Errorf("producer close failed: %w", err))
		}

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			p.logger.Debug().Msg("All handler goroutines finished")
		case <-time.After(timeout):
			p.logger.Error().Dur("timeout", timeout).Msg("Timeout waiting for handlers to finish")
			errs = append(errs, fmt.Errorf("close timeout after %s: handlers did not finish in time", timeout))
		}

		p.errorsMu.Lock()
		errorCount := len(p.errors)
		p.errorsMu.Unlock()

		if errorCount > 0 {
			errs = append(errs, fmt.Errorf("producer had %d send errors during operation", errorCount))
		}

		p.closeErr = errors.Join(errs...)
		if p.closeErr != nil {
			p.logger.Error().Err(p.closeErr).Msg("Kafka events producer closed with errors")
		} else {
			p.logger.Info().Msg("Kafka events producer closed successfully")
		}
	})

	return p.closeErr
}
