package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/elonfeng/kwradar/pkg/lifecycle"
)

var keywordsByCategoryDesc = prometheus.NewDesc(
	"kwradar_keywords_by_category",
	"Stored keywords per lifecycle category",
	[]string{"category"},
	nil,
)

// CategoryCounter reports how many stored keywords sit in each category.
type CategoryCounter interface {
	CountByCategory(ctx context.Context) (map[lifecycle.Category]int, error)
}

// CategoryCollector reads category counts from the store on each scrape.
type CategoryCollector struct {
	counter CategoryCounter
	logger  *zap.Logger
}

// Describe sends the metric descriptor to the channel.
func (c *CategoryCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- keywordsByCategoryDesc
}

// Collect emits one gauge per category, zero for empty ones.
func (c *CategoryCollector) Collect(ch chan<- prometheus.Metric) {
	counts, err := c.counter.CountByCategory(context.Background())
	if err != nil {
		c.logger.Error("failed to collect category metrics", zap.Error(err))
		return
	}
	for _, cat := range lifecycle.AllCategories() {
		ch <- prometheus.MustNewConstMetric(
			keywordsByCategoryDesc,
			prometheus.GaugeValue,
			float64(counts[cat]),
			string(cat),
		)
	}
}

// Metrics holds the process collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	AnalysisRuns     prometheus.Counter
	KeywordsImported prometheus.Counter
	AlertsSent       *prometheus.CounterVec
}

// New registers the collectors. counter may be nil when no store is attached.
func New(counter CategoryCounter, logger *zap.Logger) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		AnalysisRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kwradar_analysis_runs_total",
			Help: "Completed analysis runs",
		}),
		KeywordsImported: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kwradar_keywords_imported_total",
			Help: "Keyword rows written by imports",
		}),
		AlertsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kwradar_alerts_sent_total",
			Help: "Alert notifications delivered per notifier",
		}, []string{"notifier"}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		m.AnalysisRuns,
		m.KeywordsImported,
		m.AlertsSent,
	)
	if counter != nil {
		if logger == nil {
			logger = zap.NewNop()
		}
		m.Registry.MustRegister(&CategoryCollector{counter: counter, logger: logger})
	}
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
