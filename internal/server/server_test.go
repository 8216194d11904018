package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dual-finance/governance-proposals/internal/config"
	"github.com/dual-finance/governance-proposals/internal/constants"
	"github.com/dual-finance/governance-proposals/internal/logger"
	"github.com/dual-finance/governance-proposals/internal/middleware"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.InitLogger("test", "")
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Stage:                   constants.StageTest,
		Cluster:                 constants.ClusterDevnet,
		RPCURL:                  "http://127.0.0.1:1",
		Commitment:              rpc.CommitmentConfirmed,
		StakingOptionsProgramID: solana.MustPublicKeyFromBase58(constants.StakingOptionsProgramID),
		AirdropProgramID:        solana.MustPublicKeyFromBase58(constants.AirdropProgramID),
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
			AllowedMethods: []string{"GET", "POST"},
			AllowedHeaders: []string{"Content-Type", middleware.WalletHeader},
		},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 100, Burst: 100},
	}
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := testConfig()
	InitializeHandlers(ctx, cfg)
	router := gin.New()
	InitializeRoutes(ctx, router, cfg)
	return router
}

func TestRoutes(t *testing.T) {
	router := newRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.CorrelationIDHeader))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/instruction-types", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []struct {
			Kind string `json:"kind"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	kinds := make([]string, 0, len(resp.Data))
	for _, d := range resp.Data {
		kinds = append(kinds, d.Kind)
	}
	assert.Equal(t, []string{
		"dual_airdrop_close",
		"dual_delegate",
		"dual_staking_option",
		"dual_vote_deposit",
		"dual_withdraw",
	}, kinds)
}

func TestRoutes_RejectsMalformedWallet(t *testing.T) {
	router := newRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/proposals", nil)
	req.Header.Set(middleware.WalletHeader, "0OIl")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoutes_PublishWithoutQueue(t *testing.T) {
	router := newRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/proposals", nil))
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/proposals/"+created.ID+"/build?publish=true", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestConfigureCORS(t *testing.T) {
	router := gin.New()
	router.Use(configureCORS(testConfig().CORS))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
