package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"badui/internal/db"
)

var (
	articlesDesc = prometheus.NewDesc(
		"badui_articles_total",
		"Number of articles in the collection",
		nil, nil,
	)
	viewsDesc = prometheus.NewDesc(
		"badui_article_views_total",
		"Sum of view counters across all articles",
		nil, nil,
	)
	moderatorsDesc = prometheus.NewDesc(
		"badui_moderators_total",
		"Number of users with the moderator flag",
		nil, nil,
	)
)

// collectTimeout bounds the database reads made during a scrape.
const collectTimeout = 5 * time.Second

// StatsCollector is a custom Prometheus collector that reads article and
// moderator counts from the database on each scrape.
type StatsCollector struct {
	db *db.DB
}

// Describe sends the metric descriptors to the channel.
func (c *StatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- articlesDesc
	ch <- viewsDesc
	ch <- moderatorsDesc
}

// Collect queries the database and emits the current totals.
func (c *StatsCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), collectTimeout)
	defer cancel()

	stats, err := c.db.ArticleStats(ctx)
	if err != nil {
		slog.Error("failed to collect article metrics", "error", err)
	} else {
		ch <- prometheus.MustNewConstMetric(articlesDesc, prometheus.GaugeValue, float64(stats.Articles))
		ch <- prometheus.MustNewConstMetric(viewsDesc, prometheus.CounterValue, float64(stats.Views))
	}

	mods, err := c.db.CountModerators(ctx)
	if err != nil {
		slog.Error("failed to collect moderator metrics", "error", err)
		return
	}
	ch <- prometheus.MustNewConstMetric(moderatorsDesc, prometheus.GaugeValue, float64(mods))
}

// Metrics owns a registry with the application collectors.
type Metrics struct {
	Registry *prometheus.Registry

	reconcilerRuns *prometheus.CounterVec
	promotions     prometheus.Counter
}

// New creates a registry with the database collector, the reconciler
// counters and the Go runtime collectors.
func New(database *db.DB) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		reconcilerRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "badui_reconciler_runs_total",
			Help: "Moderator reconciler passes by outcome",
		}, []string{"outcome"}),
		promotions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "badui_moderator_promotions_total",
			Help: "Users promoted to moderator by the reconciler",
		}),
	}

	m.Registry.MustRegister(
		&StatsCollector{db: database},
		m.reconcilerRuns,
		m.promotions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveReconcile records one reconciler pass.
func (m *Metrics) ObserveReconcile(outcome string, promoted int) {
	m.reconcilerRuns.WithLabelValues(outcome).Inc()
	if promoted > 0 {
		m.promotions.Add(float64(promoted))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
