package metrics_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"shop/pkg/metrics"
)

func TestNewMeterProvider_ExportsThroughPrometheus(t *testing.T) {
	provider, err := metrics.NewMeterProvider()
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	shop, err := metrics.NewShop(provider.Meter("test"))
	require.NoError(t, err)
	require.NotNil(t, shop.Checkouts)
	require.NotNil(t, shop.Registrations)
	require.NotNil(t, shop.ReviewsSubmitted)
	require.NotNil(t, shop.CheckoutDuration)

	shop.Checkouts.Add(context.Background(), 1)
	shop.CheckoutDuration.Record(context.Background(), 0.02)
}
