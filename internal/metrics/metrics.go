package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "genesisqa"

// Upload outcomes recorded on the uploads counter.
const (
	OutcomeSuccess     = "success"
	OutcomeClientError = "client_error"
	OutcomeFailure     = "failure"
)

// Metrics owns a private registry so tests can build as many as they like.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	uploads      *prometheus.CounterVec
	requirements prometheus.Counter
	testCases    prometheus.Counter
	tagMentions  *prometheus.CounterVec
	score        prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Document uploads by outcome.",
		}, []string{"outcome"}),
		requirements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requirements_extracted_total",
			Help:      "Requirements extracted from uploaded documents.",
		}),
		testCases: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "test_cases_generated_total",
			Help:      "Test cases generated from requirements.",
		}),
		tagMentions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compliance_tag_mentions_total",
			Help:      "Compliance tag mentions by standard.",
		}, []string{"standard"}),
		score: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compliance_score",
			Help:      "Compliance score of each generated report.",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),
	}
	m.registry.MustRegister(m.uploads, m.requirements, m.testCases, m.tagMentions, m.score)
	return m
}

// Upload counts one upload attempt with the given outcome.
func (m *Metrics) Upload(outcome string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(outcome).Inc()
}

// Batch records the result of one successful derivation.
func (m *Metrics) Batch(requirements, testCases int, mentions map[string]int, score float64) {
	if m == nil {
		return
	}
	m.requirements.Add(float64(requirements))
	m.testCases.Add(float64(testCases))
	for standard, n := range mentions {
		m.tagMentions.WithLabelValues(standard).Add(float64(n))
	}
	m.score.Observe(score)
}

// Registry exposes the underlying registry for gathering in tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
