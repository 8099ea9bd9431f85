package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalyzeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "onboarding_analyze_total",
		Help: "Analyze calls by outcome.",
	}, []string{"outcome"})

	AnalyzeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "onboarding_analyze_duration_seconds",
		Help:    "End-to-end analyze duration.",
		Buckets: prometheus.DefBuckets,
	})

	ConfirmTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "onboarding_confirm_total",
		Help: "Confirm calls by terminal status.",
	}, []string{"status"})

	QualityScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "onboarding_quality_score",
		Help:    "Distribution of batch quality scores.",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})
)
