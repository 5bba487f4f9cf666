package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mateatletas/backend/internal/infrastructure/logger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxRequestIDLength bounds the request id copied into span attributes
const MaxRequestIDLength = 128

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// TracerProvider defaults to the global provider
	TracerProvider trace.TracerProvider
}

// Tracing starts an otelgin server span per request.
// Span names follow "METHOD /route/:param".
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	var opts []otelgin.Option
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgin.WithTracerProvider(cfg.TracerProvider))
	}
	return otelgin.Middleware(cfg.ServiceName, opts...)
}

// SpanEnricher adds request and principal attributes to the active span and
// marks 5xx responses as errors. It must run after JWTAuth.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if id := logger.GetRequestID(c.Request.Context()); id != "" {
				if len(id) > MaxRequestIDLength {
					id = id[:MaxRequestIDLength]
				}
				span.SetAttributes(attribute.String("request_id", id))
			}
			if userID := GetJWTUserID(c); userID != "" {
				span.SetAttributes(
					attribute.String("user_id", userID),
					attribute.String("user_role", GetJWTRole(c).String()),
				)
			}
		}

		c.Next()

		if span.IsRecording() && c.Writer.Status() >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(c.Writer.Status()))
		}
	}
}
