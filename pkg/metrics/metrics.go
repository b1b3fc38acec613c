// Package metrics wires the OpenTelemetry meter used by the services and a
// Prometheus-backed provider for hosts that expose a scrape endpoint.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

// NewMeterProvider builds a meter provider whose metrics are exported through
// the default Prometheus registerer. The host process decides whether and
// where to serve the registry.
func NewMeterProvider() (*sdkmetric.MeterProvider, error) {
	exp, err := otelprom.New(otelprom.WithRegisterer(prometheus.DefaultRegisterer))
	if err != nil {
		return nil, fmt.Errorf("could not create otel exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp)), nil
}

// Shop groups the instruments recorded by the domain services.
type Shop struct {
	// Checkouts counts checkout attempts, labelled with the outcome.
	Checkouts metric.Int64Counter
	// Registrations counts successful user registrations.
	Registrations metric.Int64Counter
	// ReviewsSubmitted counts successfully submitted reviews.
	ReviewsSubmitted metric.Int64Counter
	// CheckoutDuration tracks checkout latency in seconds, labelled with the
	// outcome.
	CheckoutDuration metric.Float64Histogram
}

// NewShop registers the shop instruments on the given meter.
func NewShop(meter metric.Meter) (*Shop, error) {
	checkouts, err := meter.Int64Counter("shop_checkouts_total",
		metric.WithDescription("Number of checkout attempts by result"))
	if err != nil {
		return nil, fmt.Errorf("could not create checkouts counter: %w", err)
	}

	registrations, err := meter.Int64Counter("shop_registrations_total",
		metric.WithDescription("Number of successful user registrations"))
	if err != nil {
		return nil, fmt.Errorf("could not create registrations counter: %w", err)
	}

	reviews, err := meter.Int64Counter("shop_reviews_submitted_total",
		metric.WithDescription("Number of successfully submitted reviews"))
	if err != nil {
		return nil, fmt.Errorf("could not create reviews counter: %w", err)
	}

	checkoutDuration, err := meter.Float64Histogram("shop_checkout_duration_seconds",
		metric.WithDescription("Checkout latency in seconds by result"),
		metric.WithExplicitBucketBoundaries(DefaultBuckets...))
	if err != nil {
		return nil, fmt.Errorf("could not create checkout duration histogram: %w", err)
	}

	return &Shop{
		Checkouts:        checkouts,
		Registrations:    registrations,
		ReviewsSubmitted: reviews,
		CheckoutDuration: checkoutDuration,
	}, nil
}
