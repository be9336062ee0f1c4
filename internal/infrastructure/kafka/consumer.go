package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/Aztech-1729/sliptads/internal/domain/ads/deps"
	"github.com/Aztech-1729/sliptads/internal/domain/ads/entities"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/metrics"
)

const (
	defaultCommandAttempts = 3
	maxRejoinDelay         = 30 * time.Second
)

// Command outcomes recorded in metrics
const (
	outcomeApplied   = "applied"
	outcomeInvalid   = "invalid"
	outcomeFailed    = "failed"
	outcomeAbandoned = "abandoned"
)

var errInvalidCommand = errors.New("invalid command")

// ConsumerConfig holds configuration for the command consumer
type ConsumerConfig struct {
	Brokers    []string
	GroupID    string
	Topic      string
	Handler    deps.CommandHandler
	Logger     zerolog.Logger
	Metrics    *metrics.Metrics
	Attempts   int           // default 3
	RetryDelay time.Duration // first backoff step, doubled per attempt
}

// CommandConsumer feeds start/stop commands from the commands topic to the
// worker manager. A command is acknowledged once it was applied, rejected
// as invalid, or failed every attempt. Commands interrupted by a rebalance
// or shutdown stay unacknowledged and are redelivered.
type CommandConsumer struct {
	group      sarama.ConsumerGroup
	topic      string
	handler    deps.CommandHandler
	attempts   int
	retryDelay time.Duration
	logger     zerolog.Logger
	metrics    *metrics.Metrics
	done       chan struct{}
}

// NewCommandConsumer joins the consumer group for the commands topic
func NewCommandConsumer(cfg ConsumerConfig) (*CommandConsumer, error) {
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka commands topic is required")
	}

	config := sarama.NewConfig()
	config.Version = sarama.V2_8_0_0
	config.ClientID = "sliptads-commands-consumer"
	config.Consumer.Return.Errors = true
	config.Consumer.Offsets.Initial = sarama.OffsetNewest
	config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategySticky()}

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer group: %w", err)
	}

	c := newCommandConsumer(group, cfg)

	cfg.Logger.Info().
		Str("group_id", cfg.GroupID).
		Str("topic", cfg.Topic).
		Int("attempts", c.attempts).
		Msg("Kafka command consumer initialized")

	return c, nil
}

func newCommandConsumer(group sarama.ConsumerGroup, cfg ConsumerConfig) *CommandConsumer {
	if cfg.Attempts <= 0 {
		cfg.Attempts = defaultCommandAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.GetDefaultMetrics()
	}
	return &CommandConsumer{
		group:      group,
		topic:      cfg.Topic,
		handler:    cfg.Handler,
		attempts:   cfg.Attempts,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		done:       make(chan struct{}),
	}
}

// Run consumes until ctx is cancelled. A failed join is retried with a
// doubling delay so an unreachable broker does not spin the loop.
func (c *CommandConsumer) Run(ctx context.Context) {
	defer close(c.done)
	go c.drainErrors()

	delay := c.retryDelay
	for ctx.Err() == nil {
		err := c.group.Consume(ctx, []string{c.topic}, c)
		if err == nil {
			delay = c.retryDelay
			continue
		}
		if errors.Is(err, sarama.ErrClosedConsumerGroup) {
			return
		}

		c.metrics.RecordKafkaError("consume")
		c.logger.Error().Err(err).Dur("retry_in", delay).Msg("Kafka consumer group session failed")
		if !sleep(ctx, delay) {
			return
		}
		delay = min(delay*2, maxRejoinDelay)
	}
}

// Close leaves the consumer group and waits for Run to return
func (c *CommandConsumer) Close() error {
	if err := c.group.Close(); err != nil {
		return fmt.Errorf("failed to close kafka consumer group: %w", err)
	}
	c.logger.Info().Msg("Kafka command consumer closed")
	return nil
}

// Done is closed once Run returned
func (c *CommandConsumer) Done() <-chan struct{} {
	return c.done
}

func (c *CommandConsumer) drainErrors() {
	for err := range c.group.Errors() {
		c.metrics.RecordKafkaError("consume")
		c.logger.Warn().Err(err).Msg("Kafka consumer error")
	}
}

// Setup implements sarama.ConsumerGroupHandler
func (c *CommandConsumer) Setup(session sarama.ConsumerGroupSession) error {
	c.logger.Info().
		Str("member_id", session.MemberID()).
		Int32("generation", session.GenerationID()).
		Msg("Joined command consumer group")
	return nil
}

// Cleanup implements sarama.ConsumerGroupHandler
func (c *CommandConsumer) Cleanup(session sarama.ConsumerGroupSession) error {
	c.logger.Info().
		Str("member_id", session.MemberID()).
		Msg("Left command consumer group session")
	return nil
}

// ConsumeClaim implements sarama.ConsumerGroupHandler
func (c *CommandConsumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := session.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if !c.consume(ctx, msg) {
				return nil
			}
			session.MarkMessage(msg, "")
		}
	}
}

// consume handles one message and reports whether its offset may be committed
func (c *CommandConsumer) consume(ctx context.Context, msg *sarama.ConsumerMessage) bool {
	log := c.logger.With().
		Int32("partition", msg.Partition).
		Int64("offset", msg.Offset).
		Logger()

	cmd, err := decodeCommand(msg.Value)
	if err != nil {
		c.metrics.RecordKafkaCommand(outcomeInvalid)
		log.Warn().Err(err).Msg("Skipping invalid command")
		return true
	}

	log = log.With().Str("command", string(cmd.Type)).Int64("user_id", cmd.UserID).Logger()

	err = c.dispatch(ctx, cmd)
	switch {
	case err == nil:
		c.metrics.RecordKafkaCommand(outcomeApplied)
		return true
	case ctx.Err() != nil:
		c.metrics.RecordKafkaCommand(outcomeAbandoned)
		log.Info().Msg("Command interrupted, leaving it for redelivery")
		return false
	default:
		c.metrics.RecordKafkaCommand(outcomeFailed)
		log.Error().Err(err).Int("attempts", c.attempts).Msg("Command failed on every attempt, skipping")
		return true
	}
}

func (c *CommandConsumer) dispatch(ctx context.Context, cmd entities.Command) error {
	delay := c.retryDelay
	var err error
	for attempt := 1; ; attempt++ {
		if err = c.handler.HandleCommand(ctx, cmd); err == nil {
			return nil
		}
		if attempt == c.attempts {
			return err
		}
		c.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Int64("user_id", cmd.UserID).
			Dur("retry_in", delay).
			Msg("Command handler failed, retrying")
		if !sleep(ctx, delay) {
			return ctx.Err()
		}
		delay *= 2
	}
}

func decodeCommand(raw []byte) (entities.Command, error) {
	var message CommandMessage
	if err := json.Unmarshal(raw, &message); err != nil {
		return entities.Command{}, fmt.Errorf("%w: %w", errInvalidCommand, err)
	}
	cmd, err := message.ToCommand()
	if err != nil {
		return entities.Command{}, fmt.Errorf("%w: %w", errInvalidCommand, err)
	}
	return cmd, nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
