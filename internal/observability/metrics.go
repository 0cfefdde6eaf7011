package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_http_requests_total",
			Help: "Total number of HTTP requests processed by the chat service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	wsActiveConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chat_ws_active_connections",
			Help: "Number of active websocket connections.",
		},
		[]string{"kind"},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_ws_events_total",
			Help: "Total number of websocket events.",
		},
		[]string{"kind", "event"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
	translationsScheduledTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_translations_scheduled_total",
			Help: "Total number of translation fan-out jobs scheduled.",
		},
	)
	translationsStoredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_translations_stored_total",
			Help: "Total number of translations persisted, by target language.",
		},
		[]string{"language"},
	)
	translationProviderErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_translation_provider_errors_total",
			Help: "Total number of translation provider failures, by target language.",
		},
		[]string{"language"},
	)
	translationDuplicatesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_translation_duplicates_total",
			Help: "Total number of translations discarded because a row already existed.",
		},
	)
	assistantRepliesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_assistant_replies_total",
			Help: "Total number of assistant replies posted.",
		},
	)
	assistantErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_assistant_errors_total",
			Help: "Total number of failed assistant reply generations.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		wsActiveConnections,
		wsEventsTotal,
		amqpPublishErrorsTotal,
		translationsScheduledTotal,
		translationsStoredTotal,
		translationProviderErrorsTotal,
		translationDuplicatesTotal,
		assistantRepliesTotal,
		assistantErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncWSActive(kind string) {
	wsActiveConnections.WithLabelValues(kind).Inc()
}

func DecWSActive(kind string) {
	wsActiveConnections.WithLabelValues(kind).Dec()
}

func IncWSEvent(kind, event string) {
	wsEventsTotal.WithLabelValues(kind, event).Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}

func IncTranslationScheduled() {
	translationsScheduledTotal.Inc()
}

func IncTranslationStored(language string) {
	translationsStoredTotal.WithLabelValues(language).Inc()
}

func IncTranslationProviderError(language string) {
	translationProviderErrorsTotal.WithLabelValues(language).Inc()
}

func IncTranslationDuplicate() {
	translationDuplicatesTotal.Inc()
}

func IncAssistantReply() {
	assistantRepliesTotal.Inc()
}

func IncAssistantError() {
	assistantErrorsTotal.Inc()
}
