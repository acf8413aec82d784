package gateway

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("github.com/openinv/invctl/internal/gateway")

var (
	refreshCounter metric.Int64Counter
	retryCounter   metric.Int64Counter
)

func initMeters() error {
	meter := otel.Meter("github.com/openinv/invctl/internal/gateway")

	var err error

	refreshCounter, err = meter.Int64Counter(
		"gateway.refresh_count",
		metric.WithDescription("Completed credential refreshes"),
		metric.WithUnit("{refresh}"),
	)
	if err != nil {
		return err
	}

	retryCounter, err = meter.Int64Counter(
		"gateway.retry_count",
		metric.WithDescription("Requests re-sent after a credential refresh"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return err
	}

	return nil
}
