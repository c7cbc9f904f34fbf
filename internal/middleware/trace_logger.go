package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"travel/pkg/logger"
	"travel/pkg/metrics"
)

// TraceLogger logs each request with its request id and, when otelgin has
// started a span, the trace and span ids. Route-level counters and latency
// go to the metrics registry when one is given.
func TraceLogger(log logger.Client, m *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		fields := []logger.Field{
			{Key: "request_id", Value: GetRequestID(c)},
			{Key: "method", Value: c.Request.Method},
			{Key: "path", Value: c.Request.URL.Path},
		}

		span := trace.SpanFromContext(c.Request.Context())
		if sc := span.SpanContext(); sc.IsValid() {
			traceID := sc.TraceID().String()
			spanID := sc.SpanID().String()
			c.Set("trace_id", traceID)
			c.Set("span_id", spanID)
			fields = append(fields,
				logger.Field{Key: "trace_id", Value: traceID},
				logger.Field{Key: "span_id", Value: spanID},
			)
		}

		log.Debug("incoming request", fields...)

		c.Next()

		elapsed := time.Since(start)
		status := c.Writer.Status()
		fields = append(fields,
			logger.Field{Key: "status", Value: status},
			logger.Field{Key: "latency", Value: elapsed},
		)
		if status >= 500 {
			log.Error("request completed", fields...)
		} else {
			log.Info("request completed", fields...)
		}

		if m != nil {
			route := c.FullPath()
			if route == "" {
				route = "unmatched"
			}
			m.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
			m.HTTPLatencySec.WithLabelValues(c.Request.Method, route).Observe(elapsed.Seconds())
		}
	}
}
