package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Circuit breaker gauge values.
const (
	CircuitBreakerClosed   = 0
	CircuitBreakerOpen     = 1
	CircuitBreakerHalfOpen = 2
)

var (
	// Scheduled messages

	// ScheduledMessagesProcessed counts sweeper outcomes per message.
	ScheduledMessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "backoffice",
			Subsystem: "scheduled_messages",
			Name:      "processed_total",
			Help:      "Scheduled messages handled by the sweeper",
		},
		[]string{"result"}, // result: sent, failed, rescheduled
	)

	// ChannelAttempts counts every send attempt against a channel.
	ChannelAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "backoffice",
			Subsystem: "channels",
			Name:      "attempts_total",
			Help:      "Delivery attempts per channel result",
		},
		[]string{"result"}, // result: success, permanent, transient, skipped
	)

	// SweepDuration tracks how long a sweep takes.
	SweepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "backoffice",
			Subsystem: "sweeper",
			Name:      "duration_seconds",
			Help:      "Time to run one sweep",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"job"},
	)

	// TransportCircuitBreakerState tracks breaker state per instance.
	TransportCircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "backoffice",
			Subsystem: "transport",
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"instance"},
	)

	// Conversations

	ConversationsAutoClosed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "backoffice",
			Subsystem: "conversations",
			Name:      "auto_closed_total",
			Help:      "Conversations closed by the auto-close sweeper",
		},
	)

	SurveysSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "backoffice",
			Subsystem: "conversations",
			Name:      "surveys_sent_total",
			Help:      "Satisfaction surveys sent on auto-close",
		},
	)

	// RatingsExtracted counts ratings parsed from replies, split by detractor.
	RatingsExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "backoffice",
			Subsystem: "conversations",
			Name:      "ratings_extracted_total",
			Help:      "Satisfaction ratings extracted from inbound replies",
		},
		[]string{"detractor"},
	)

	// Sales

	CheckpointToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "backoffice",
			Subsystem: "sales",
			Name:      "checkpoint_toggles_total",
			Help:      "Checkpoint toggles by type and action",
		},
		[]string{"checkpoint_type", "action"},
	)

	ClosingTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "backoffice",
			Subsystem: "sales",
			Name:      "pickup_closing_transitions_total",
			Help:      "Pickup closing status transitions",
		},
		[]string{"status"},
	)
)
