package tracing

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	"compass/pkg/logging"
)

func GinMiddleware(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

// TraceLogMiddleware copies the active span's trace id into the logging
// context so log lines can be correlated with traces. Must run after
// GinMiddleware.
func TraceLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			c.Request = c.Request.WithContext(
				logging.WithTraceID(c.Request.Context(), sc.TraceID().String()))
		}
		c.Next()
	}
}
