package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	CacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_operations_total",
			Help: "Cache operations",
		},
		[]string{"op"}, // hit|miss|expired|evicted
	)
	CacheSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_cache_size",
			Help: "Number of entries currently in cache",
		},
	)
)

var (
	GovernorRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "governor_requests_total",
			Help: "Requests settled by the governor",
		},
		[]string{"result"}, // success|throttled|failed|reset
	)
	GovernorRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "governor_retries_total",
			Help: "Requeued attempts after a throttling signal",
		},
	)
	GovernorQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "governor_queue_depth",
			Help: "Requests currently waiting in the governor queue",
		},
	)
)

var (
	FeedEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_events_total",
			Help: "Feed change callbacks dispatched to the consumer",
		},
		[]string{"kind"}, // insert|update|delete
	)
	FeedPolls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_polls_total",
			Help: "Pull-mode snapshot polls",
		},
		[]string{"status"}, // ok|error|skipped
	)
	FeedConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "feed_transport_connected",
			Help: "Push-mode transport connection state (1 = connected)",
		},
	)
)

var (
	KafkaMessagesConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_consumed_total",
			Help: "Number of messages fetched from Kafka",
		},
		[]string{"topic"},
	)
	KafkaMessagesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_processed_total",
			Help: "Number of messages processed successfully",
		},
		[]string{"topic"},
	)
	KafkaMessagesFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_failed_total",
			Help: "Number of messages failed to process",
		},
		[]string{"topic"},
	)
)

func MustRegister() {
	prometheus.MustRegister(
		CacheOps, CacheSize,
		GovernorRequests, GovernorRetries, GovernorQueueDepth,
		FeedEvents, FeedPolls, FeedConnected,
		KafkaMessagesConsumed, KafkaMessagesProcessed, KafkaMessagesFailed,
	)
}
