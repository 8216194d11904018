package middleware

import (
	"bytes"
	"io"
	"time"

	"github.com/dual-finance/governance-proposals/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxLoggedBody caps the request body echoed by the development logger.
const maxLoggedBody = 4096

// EnhancedLoggingMiddleware logs request bodies in development mode
func EnhancedLoggingMiddleware(isDevelopment bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isDevelopment {
			c.Next()
			return
		}

		log := logger.L().With(zap.String("correlation_id", GetCorrelationID(c)))

		var requestBody []byte
		if c.Request.Body != nil {
			requestBody, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(requestBody))
		}

		logged := requestBody
		if len(logged) > maxLoggedBody {
			logged = logged[:maxLoggedBody]
		}

		log.Debug("Detailed request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.String("wallet", c.GetHeader(WalletHeader)),
			zap.ByteString("body", logged),
			zap.Int("body_size", len(requestBody)),
		)

		c.Next()

		for _, err := range c.Errors {
			log.Error("Request error",
				zap.Error(err.Err),
				zap.Uint64("type", uint64(err.Type)),
			)
		}
	}
}

// RequestLoggingMiddleware logs one line per completed request
func RequestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		logger.L().Info("Request completed",
			zap.String("correlation_id", GetCorrelationID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(startTime)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		)
	}
}
