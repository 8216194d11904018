package middleware

import (
	"context"

	"github.com/dual-finance/governance-proposals/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	CorrelationIDHeader = "X-Correlation-ID"
	correlationIDKey    = "correlationID"
)

// CorrelationIDMiddleware ensures every request has a correlation ID
func CorrelationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(CorrelationIDHeader)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		c.Set(correlationIDKey, correlationID)
		c.Header(CorrelationIDHeader, correlationID)

		requestLogger := logger.L().With(zap.String("correlation_id", correlationID))
		ctx := WithCorrelationID(c.Request.Context(), correlationID)
		ctx = logger.NewContext(ctx, requestLogger)
		c.Request = c.Request.WithContext(ctx)

		requestLogger.Debug("Request received",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("client_ip", c.ClientIP()),
		)

		c.Next()
	}
}

// GetCorrelationID retrieves the correlation ID from the Gin context
func GetCorrelationID(c *gin.Context) string {
	if id, exists := c.Get(correlationIDKey); exists {
		if correlationID, ok := id.(string); ok {
			return correlationID
		}
	}
	return ""
}

type contextKey string

const correlationIDContextKey contextKey = "correlationID"

// WithCorrelationID adds correlation ID to context
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDContextKey, correlationID)
}

// CorrelationIDFromContext retrieves correlation ID from context
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDContextKey).(string); ok {
		return id
	}
	return ""
}

// LogWithCorrelationID returns the request's logger, or the global logger
// tagged with the correlation ID in ctx.
func LogWithCorrelationID(ctx context.Context) *zap.Logger {
	if logger.HasContextLogger(ctx) {
		return logger.FromContext(ctx)
	}
	if correlationID := CorrelationIDFromContext(ctx); correlationID != "" {
		return logger.L().With(zap.String("correlation_id", correlationID))
	}
	return logger.L()
}
