// Package metrics exposes Prometheus collectors for the listing service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "iron_index"

// Resolution kinds.
const (
	KindFileProxy    = "file_proxy"
	KindFileRedirect = "file_redirect"
	KindDirectory    = "directory"
)

// Provider error kinds.
const (
	ErrorListing = "listing"
	ErrorSigning = "signing"
	ErrorFetch   = "fetch"
)

// Collector owns a private registry so tests can build as many as they need.
type Collector struct {
	registry *prometheus.Registry

	ListingDuration prometheus.Histogram
	Resolutions     *prometheus.CounterVec
	ProviderErrors  *prometheus.CounterVec
}

func New() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		registry: reg,
		ListingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "listing_duration_seconds",
			Help:      "Time spent fetching the full bucket listing",
			Buckets:   prometheus.DefBuckets,
		}),
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Requests by how their path was resolved",
		}, []string{"kind"}),
		ProviderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "Failed calls to the object store",
		}, []string{"kind"}),
	}

	reg.MustRegister(c.ListingDuration, c.Resolutions, c.ProviderErrors)
	reg.MustRegister(collectors.NewGoCollector())
	return c
}

// ObserveListing records how long a bucket listing took.
func (c *Collector) ObserveListing(d time.Duration) {
	c.ListingDuration.Observe(d.Seconds())
}

// Resolved counts one request resolved as kind.
func (c *Collector) Resolved(kind string) {
	c.Resolutions.WithLabelValues(kind).Inc()
}

// ProviderError counts one failed provider call of kind.
func (c *Collector) ProviderError(kind string) {
	c.ProviderErrors.WithLabelValues(kind).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
