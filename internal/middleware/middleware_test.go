package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dual-finance/governance-proposals/internal/logger"
	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelationIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name                 string
		requestCorrelationID string
		expectNewID          bool
	}{
		{
			name:                 "New ID generated when header not present",
			requestCorrelationID: "",
			expectNewID:          true,
		},
		{
			name:                 "Existing ID preserved when header present",
			requestCorrelationID: "test-correlation-id-123",
			expectNewID:          false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(CorrelationIDMiddleware())

			var fromContext string
			router.GET("/test", func(c *gin.Context) {
				fromContext = CorrelationIDFromContext(c.Request.Context())
				c.JSON(http.StatusOK, gin.H{"correlation_id": GetCorrelationID(c)})
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.requestCorrelationID != "" {
				req.Header.Set(CorrelationIDHeader, tt.requestCorrelationID)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)

			responseCorrelationID := w.Header().Get(CorrelationIDHeader)
			assert.NotEmpty(t, responseCorrelationID)
			assert.Equal(t, responseCorrelationID, fromContext)

			if tt.expectNewID {
				assert.Len(t, responseCorrelationID, 36)
			} else {
				assert.Equal(t, tt.requestCorrelationID, responseCorrelationID)
			}
		})
	}
}

func TestLogWithCorrelationID(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "abc")
	assert.Equal(t, "abc", CorrelationIDFromContext(ctx))
	assert.NotNil(t, LogWithCorrelationID(ctx))
	assert.NotNil(t, LogWithCorrelationID(context.Background()))
	assert.Empty(t, CorrelationIDFromContext(context.Background()))
}

func TestCorrelationIDMiddleware_RequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CorrelationIDMiddleware())

	var hasLogger bool
	var correlationID string
	router.GET("/test", func(c *gin.Context) {
		hasLogger = logger.HasContextLogger(c.Request.Context())
		correlationID = CorrelationIDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(CorrelationIDHeader, "req-42")
	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, hasLogger)
	assert.Equal(t, "req-42", correlationID)
}

func TestWalletMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	wallet := solana.NewWallet().PublicKey()

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantWallet string
	}{
		{name: "no header", wantStatus: http.StatusOK},
		{name: "valid key", header: wallet.String(), wantStatus: http.StatusOK, wantWallet: wallet.String()},
		{name: "malformed key", header: "not-a-key", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(WalletMiddleware())

			var got *solana.PublicKey
			router.GET("/test", func(c *gin.Context) {
				got = GetWallet(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set(WalletHeader, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantWallet == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantWallet, got.String())
		})
	}
}

func newRateLimitedRouter(t *testing.T, rps, burst int) *gin.Engine {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	rl := NewRateLimiter(ctx, rps, burst)
	router := gin.New()
	router.Use(rl.Middleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/api/v1/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("allows requests within rate limit", func(t *testing.T) {
		router := newRateLimitedRouter(t, 10, 20)

		for i := 0; i < 10; i++ {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("X-Forwarded-For", "192.168.1.1")
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "10", w.Header().Get("X-RateLimit-Limit"))
			assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))
		}
	})

	t.Run("blocks requests exceeding rate limit", func(t *testing.T) {
		router := newRateLimitedRouter(t, 1, 2)

		var lastCode int
		var retryAfter string
		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("X-Forwarded-For", "192.168.1.2")
			router.ServeHTTP(w, req)
			lastCode = w.Code
			retryAfter = w.Header().Get("Retry-After")
		}

		assert.Equal(t, http.StatusTooManyRequests, lastCode)
		assert.Equal(t, "1", retryAfter)
	})

	t.Run("wallets are limited separately", func(t *testing.T) {
		router := newRateLimitedRouter(t, 1, 1)

		for _, wallet := range []string{"walletA", "walletB"} {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set(WalletHeader, wallet)
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code, wallet)
		}
	})

	t.Run("health checks are not limited", func(t *testing.T) {
		router := newRateLimitedRouter(t, 1, 1)

		for i := 0; i < 5; i++ {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})
}

func TestRateLimiter_SweepsIdleLimiters(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, 1, 1)
	rl.getLimiter("ip:1.2.3.4")

	rl.sweep(time.Now())
	_, ok := rl.limiters.Load("ip:1.2.3.4")
	assert.True(t, ok, "recently used limiter is kept")

	rl.sweep(time.Now().Add(rl.idleTTL + time.Second))
	_, ok = rl.limiters.Load("ip:1.2.3.4")
	assert.False(t, ok)
}

func TestGetClientIdentifier(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{name: "wallet wins", headers: map[string]string{WalletHeader: "abc", "X-Forwarded-For": "10.0.0.1"}, want: "wallet:abc"},
		{name: "first forwarded address", headers: map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, want: "ip:10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				c.Request.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIdentifier(c))
		})
	}
}
