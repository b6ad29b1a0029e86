package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"CatalogSync/internal/domain"
	"CatalogSync/internal/ports"
)

const (
	namespace = "catalogsync"
	jobName   = "catalogsync"
)

// Reporter records run gauges and optionally pushes them to a Pushgateway.
type Reporter struct {
	registry *prometheus.Registry
	pushURL  string

	fetched      prometheus.Gauge
	stockRecords prometheus.Gauge
	valid        prometheus.Gauge
	skipped      prometheus.Gauge
	withImage    prometheus.Gauge
	withStock    prometheus.Gauge
	deleted      prometheus.Gauge
	duration     prometheus.Gauge
	lastSuccess  prometheus.Gauge
	rejections   *prometheus.GaugeVec
	runs         *prometheus.CounterVec
}

var _ ports.RunReporter = (*Reporter)(nil)

// NewReporter registers the run metrics on a private registry. An empty
// pushURL keeps the metrics local.
func NewReporter(pushURL string) *Reporter {
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
	}

	r := &Reporter{
		registry:     prometheus.NewRegistry(),
		pushURL:      pushURL,
		fetched:      gauge("products_fetched", "Products returned by the catalog API in the last run."),
		stockRecords: gauge("stock_records", "Stock records loaded in the last run."),
		valid:        gauge("products_valid", "Products written to the catalog document."),
		skipped:      gauge("products_skipped", "Products rejected by the eligibility filter."),
		withImage:    gauge("products_with_image", "Exported products with an image link."),
		withStock:    gauge("products_with_stock", "Exported products with positive stock."),
		deleted:      gauge("documents_deleted", "Knowledge-base documents deleted before upload."),
		duration:     gauge("run_duration_seconds", "Wall time of the last run."),
		lastSuccess:  gauge("last_success_timestamp_seconds", "Unix time of the last successful run."),
		rejections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rejections",
			Help:      "Rejected products per reason in the last run.",
		}, []string{"reason"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Runs by outcome.",
		}, []string{"outcome"}),
	}

	r.registry.MustRegister(
		r.fetched, r.stockRecords, r.valid, r.skipped, r.withImage, r.withStock,
		r.deleted, r.duration, r.lastSuccess, r.rejections, r.runs,
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Reporter) Registry() *prometheus.Registry {
	return r.registry
}

// Report updates the gauges and pushes them grouped by profile.
func (r *Reporter) Report(ctx context.Context, report domain.RunReport) error {
	r.fetched.Set(float64(report.Fetched))
	r.stockRecords.Set(float64(report.StockRecords))
	r.valid.Set(float64(report.Summary.Valid))
	r.skipped.Set(float64(report.Summary.Skipped))
	r.withImage.Set(float64(report.Summary.WithImage))
	r.withStock.Set(float64(report.Summary.WithStock))
	r.deleted.Set(float64(report.Cleanup.Count(domain.DeleteDeleted)))
	r.duration.Set(report.Duration().Seconds())

	r.rejections.Reset()
	for reason, count := range report.Summary.Rejections {
		r.rejections.WithLabelValues(reason).Set(float64(count))
	}

	r.runs.WithLabelValues(string(report.Outcome)).Inc()
	if report.Outcome == domain.RunSucceeded {
		r.lastSuccess.Set(float64(report.FinishedAt.Unix()))
	}

	if r.pushURL == "" {
		return nil
	}

	err := push.New(r.pushURL, jobName).
		Gatherer(r.registry).
		Grouping("profile", report.Profile).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
