package classify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	itemsClassified = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedbackbot_items_classified_total",
		Help: "Feedback items classified, by final theme",
	}, []string{"theme"})

	modelFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedbackbot_model_failures_total",
		Help: "Model calls that failed and fell back to keywords, by reason",
	}, []string{"provider", "reason"})

	extractionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedbackbot_extraction_failures_total",
		Help: "Model responses with no recoverable JSON object",
	})

	keywordOverrides = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedbackbot_keyword_overrides_total",
		Help: "Classifications where the keyword winner replaced the model theme",
	})

	modelTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedbackbot_model_tokens_total",
		Help: "Tokens consumed by model calls",
	}, []string{"provider", "direction"})

	classifyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "feedbackbot_classify_duration_seconds",
		Help:    "Time to classify a single feedback item",
		Buckets: []float64{0.001, 0.01, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	batchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "feedbackbot_batch_size",
		Help:    "Number of feedback items per batch",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
	})
)
