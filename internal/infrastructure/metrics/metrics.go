package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the ads engine
type Metrics struct {
	// Auth metrics
	AuthTransitions *prometheus.CounterVec
	AuthErrors      *prometheus.CounterVec
	LoginsTotal     prometheus.Counter

	// Session store metrics
	SessionUpdates      prometheus.Counter
	SessionUpdateErrors *prometheus.CounterVec

	// Catalog metrics
	CatalogRefreshTotal    prometheus.Counter
	CatalogRefreshErrors   *prometheus.CounterVec
	CatalogRefreshDuration prometheus.Histogram
	CatalogEntries         prometheus.Histogram
	CatalogJoins           *prometheus.CounterVec

	// Delivery metrics
	MessagesSent    *prometheus.CounterVec
	SendFailures    *prometheus.CounterVec
	FallbacksTotal  prometheus.Counter
	RoundsTotal     prometheus.Counter
	RoundDuration   prometheus.Histogram
	ActiveCampaigns prometheus.Gauge

	// Remote client metrics
	RateLimits    prometheus.Counter
	RateLimitWait prometheus.Histogram

	// Notification metrics
	NotificationsSent  *prometheus.CounterVec
	NotificationErrors *prometheus.CounterVec

	// Kafka metrics
	KafkaMessagesProduced prometheus.Counter
	KafkaProduceErrors    *prometheus.CounterVec
	KafkaProduceDuration  prometheus.Histogram
	KafkaCommands         *prometheus.CounterVec
}

var (
	// DefaultMetrics is the default metrics instance
	DefaultMetrics *Metrics
	once           sync.Once
)

// GetDefaultMetrics returns the singleton metrics instance
func GetDefaultMetrics() *Metrics {
	once.Do(func() {
		DefaultMetrics = NewMetrics()
	})
	return DefaultMetrics
}

func init() {
	GetDefaultMetrics()
}

// NewMetrics creates a new Metrics instance with all counters and gauges
func NewMetrics() *Metrics {
	return &Metrics{
		AuthTransitions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sliptads_auth_transitions_total",
				Help: "Total number of login state machine transitions by target state",
			},
			[]string{"state"},
		),
		AuthErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sliptads_auth_errors_total",
				Help: "Total number of login errors",
			},
			[]string{"error_type"},
		),
		LoginsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sliptads_logins_total",
			Help: "Total number of completed logins",
		}),

		SessionUpdates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sliptads_session_updates_total",
			Help: "Total number of session record updates",
		}),
		SessionUpdateErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sliptads_session_update_errors_total",
				Help: "Total number of failed session updates",
			},
			[]string{"error_type"},
		),

		CatalogRefreshTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sliptads_catalog_refresh_total",
			Help: "Total number of catalog rebuilds",
		}),
		CatalogRefreshErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sliptads_catalog_refresh_errors_total",
				Help: "Total number of failed catalog rebuilds",
			},
			[]string{"error_type"},
		),
		CatalogJoins: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sliptads_catalog_joins_total",
				Help: "Total number of join attempts by result",
			},
			[]string{"status"},
		),
		CatalogRefreshDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "sliptads_catalog_refresh_duration_seconds",
			Help:    "Duration of catalog rebuilds in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		CatalogEntries: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "sliptads_catalog_entries",
			Help:    "Number of destinations found per catalog rebuild",
			Buckets: []float64{0, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),

		MessagesSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sliptads_messages_sent_total",
				Help: "Total number of delivered messages by delivery method",
			},
			[]string{"method"},
		),
		SendFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sliptads_send_failures_total",
				Help: "Total number of failed deliveries by reason",
			},
			[]string{"reason"},
		),
		FallbacksTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sliptads_fallbacks_total",
			Help: "Total number of deliveries degraded to the fallback message",
		}),
		RoundsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sliptads_rounds_total",
			Help: "Total number of completed delivery rounds",
		}),
		RoundDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "sliptads_round_duration_seconds",
			Help:    "Duration of delivery rounds in seconds, excluding the round delay",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
		ActiveCampaigns: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "sliptads_active_campaigns",
			Help: "Current number of running delivery workers",
		}),

		RateLimits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sliptads_rate_limits_total",
			Help: "Total number of rate limit responses from Telegram API",
		}),
		RateLimitWait: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "sliptads_rate_limit_wait_seconds",
			Help:    "Wait durations demanded by Telegram API",
			Buckets: []float64{1, 5, 10, 30, 60, 300, 900, 3600},
		}),

		NotificationsSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sliptads_notifications_sent_total",
				Help: "Total number of delivered notifications by sink",
			},
			[]string{"sink"},
		),
		NotificationErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sliptads_notification_errors_total",
				Help: "Total number of failed notifications by sink",
			},
			[]string{"sink"},
		),

		KafkaMessagesProduced: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sliptads_kafka_messages_produced_total",
			Help: "Total number of messages produced to Kafka",
		}),
		KafkaProduceErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sliptads_kafka_produce_errors_total",
				Help: "Total number of Kafka produce errors",
			},
			[]string{"error_type"},
		),
		KafkaProduceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "sliptads_kafka_produce_duration_seconds",
			Help:    "Duration of Kafka produce operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		KafkaCommands: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sliptads_kafka_commands_total",
				Help: "Total number of consumed commands by outcome",
			},
			[]string{"outcome"},
		),
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// RecordAuthTransition records a login state change
func (m *Metrics) RecordAuthTransition(state string) {
	m.AuthTransitions.WithLabelValues(orUnknown(state)).Inc()
}

// RecordAuthError records a login error with error type
func (m *Metrics) RecordAuthError(errorType string) {
	m.AuthErrors.WithLabelValues(orUnknown(errorType)).Inc()
}

// RecordLogin records a completed login
func (m *Metrics) RecordLogin() {
	m.LoginsTotal.Inc()
}

// RecordSessionUpdate records a stored session mutation
func (m *Metrics) RecordSessionUpdate() {
	m.SessionUpdates.Inc()
}

// RecordSessionUpdateError records a failed session mutation
func (m *Metrics) RecordSessionUpdateError(errorType string) {
	m.SessionUpdateErrors.WithLabelValues(orUnknown(errorType)).Inc()
}

// RecordCatalogRefresh records a catalog rebuild
func (m *Metrics) RecordCatalogRefresh(entries int, duration float64) {
	m.CatalogRefreshTotal.Inc()
	if entries >= 0 {
		m.CatalogEntries.Observe(float64(entries))
	}
	m.CatalogRefreshDuration.Observe(duration)
}

// RecordCatalogRefreshError records a failed catalog rebuild
func (m *Metrics) RecordCatalogRefreshError(errorType string) {
	m.CatalogRefreshErrors.WithLabelValues(orUnknown(errorType)).Inc()
}

// RecordCatalogJoin records one join attempt
func (m *Metrics) RecordCatalogJoin(status string) {
	m.CatalogJoins.WithLabelValues(orUnknown(status)).Inc()
}

// RecordMessageSent records a delivered message
func (m *Metrics) RecordMessageSent(method string, degraded bool) {
	m.MessagesSent.WithLabelValues(orUnknown(method)).Inc()
	if degraded {
		m.FallbacksTotal.Inc()
	}
}

// RecordSendFailure records a failed delivery
func (m *Metrics) RecordSendFailure(reason string) {
	m.SendFailures.WithLabelValues(orUnknown(reason)).Inc()
}

// RecordRound records a finished delivery round
func (m *Metrics) RecordRound(duration float64) {
	m.RoundsTotal.Inc()
	m.RoundDuration.Observe(duration)
}

// CampaignStarted increments the running worker gauge
func (m *Metrics) CampaignStarted() {
	m.ActiveCampaigns.Inc()
}

// CampaignStopped decrements the running worker gauge
func (m *Metrics) CampaignStopped() {
	m.ActiveCampaigns.Dec()
}

// RecordRateLimit records a rate limit event from Telegram API
func (m *Metrics) RecordRateLimit(waitSeconds float64) {
	m.RateLimits.Inc()
	if waitSeconds > 0 {
		m.RateLimitWait.Observe(waitSeconds)
	}
}

// RecordNotification records a delivered notification
func (m *Metrics) RecordNotification(sink string) {
	m.NotificationsSent.WithLabelValues(orUnknown(sink)).Inc()
}

// RecordNotificationError records a failed notification
func (m *Metrics) RecordNotificationError(sink string) {
	m.NotificationErrors.WithLabelValues(orUnknown(sink)).Inc()
}

// RecordKafkaMessage records a Kafka message production with duration
func (m *Metrics) RecordKafkaMessage(duration float64) {
	m.KafkaMessagesProduced.Inc()
	m.KafkaProduceDuration.Observe(duration)
}

// RecordKafkaCommand records a consumed command: applied, invalid, failed or abandoned
func (m *Metrics) RecordKafkaCommand(outcome string) {
	m.KafkaCommands.WithLabelValues(orUnknown(outcome)).Inc()
}

// RecordKafkaError records a Kafka production error with error type
func (m *Metrics) RecordKafkaError(errorType string) {
	m.KafkaProduceErrors.WithLabelValues(orUnknown(errorType)).Inc()
}
