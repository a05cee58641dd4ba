package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// unmatchedRoute labels requests that hit no registered route, keeping scanner paths out of the label set.
const unmatchedRoute = "unknown"

// Webhook bodies are capped at MAX_BODY_BYTES (1 MiB by default).
var bodySizeBuckets = []float64{256, 1024, 4096, 16384, 65536, 262144, 1048576}

type httpMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	bodySize metric.Int64Histogram
}

// HTTPMetricsMiddleware records request count, latency and declared body size per route and status code.
// When the instruments cannot be created the middleware only passes requests through.
func HTTPMetricsMiddleware(provider *Provider) gin.HandlerFunc {
	m, err := newHTTPMetrics(provider.MeterProvider(), provider.Namespace())
	if err != nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ctx := c.Request.Context()
		route := routeLabel(c.FullPath())
		attrs := metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("route", route),
			attribute.String("status_code", strconv.Itoa(c.Writer.Status())),
		)

		m.requests.Add(ctx, 1, attrs)
		m.duration.Record(ctx, time.Since(start).Seconds(), attrs)

		if c.Request.ContentLength > 0 {
			m.bodySize.Record(ctx, c.Request.ContentLength, metric.WithAttributes(
				attribute.String("route", route),
			))
		}
	}
}

func newHTTPMetrics(meterProvider metric.MeterProvider, namespace string) (*httpMetrics, error) {
	meter := meterProvider.Meter(instrumentationScope)

	requests, err := meter.Int64Counter(
		name(namespace, "http_requests_total"),
		metric.WithDescription("HTTP requests by route and status code"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		name(namespace, "http_request_duration_seconds"),
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	bodySize, err := meter.Int64Histogram(
		name(namespace, "http_request_body_bytes"),
		metric.WithDescription("Declared request body size"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(bodySizeBuckets...),
	)
	if err != nil {
		return nil, err
	}

	return &httpMetrics{requests: requests, duration: duration, bodySize: bodySize}, nil
}

// routeLabel returns the matched route pattern, or unmatchedRoute.
func routeLabel(fullPath string) string {
	if fullPath == "" {
		return unmatchedRoute
	}
	return fullPath
}
