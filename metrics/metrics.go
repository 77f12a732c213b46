package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// ImagesAnalyzedTotal counts analyzed images by outcome
	// (hazard, no_hazard, error).
	ImagesAnalyzedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sitesafety",
		Subsystem: "inspection",
		Name:      "images_analyzed_total",
		Help:      "Total number of inspection images analyzed, labeled by result.",
	}, []string{"result"})

	// AnalysisDurationSeconds is end-to-end time per image, measured around
	// the full filter/classify/complete round trip.
	AnalysisDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sitesafety",
		Subsystem: "inspection",
		Name:      "analysis_duration_seconds",
		Help:      "End-to-end time to analyze one inspection image.",
		// Keep buckets fairly coarse to avoid high-cardinality time series.
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 60, 120},
	})

	// InspectionRunsTotal counts finished inspection runs by outcome.
	InspectionRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sitesafety",
		Subsystem: "inspection",
		Name:      "runs_total",
		Help:      "Total number of inspection runs, labeled by result.",
	}, []string{"result"})

	// SiteWeightedScore is the weighted risk score of the most recent run.
	SiteWeightedScore = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "sitesafety",
		Subsystem: "inspection",
		Name:      "site_weighted_score",
		Help:      "Severity-weighted site risk score from the most recent inspection run.",
	}, []string{"site_id"})

	// EmailsSentTotal counts notification e-mails by kind (alert, assessment)
	// and result.
	EmailsSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sitesafety",
		Subsystem: "inspection",
		Name:      "emails_sent_total",
		Help:      "Total number of notification emails attempted, labeled by kind and result.",
	}, []string{"kind", "result"})

	// PublishErrorTotal counts inspection-event publish errors.
	PublishErrorTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sitesafety",
		Subsystem: "inspection",
		Name:      "publish_error_total",
		Help:      "Total number of inspection event publish errors.",
	})
)

// Register registers inspection metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			ImagesAnalyzedTotal,
			AnalysisDurationSeconds,
			InspectionRunsTotal,
			SiteWeightedScore,
			EmailsSentTotal,
			PublishErrorTotal,
		)
	})
}
