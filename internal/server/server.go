package server

import (
	"context"
	"os"

	"github.com/dual-finance/governance-proposals/internal/assets"
	awsclient "github.com/dual-finance/governance-proposals/internal/client/aws"
	"github.com/dual-finance/governance-proposals/internal/client/solanarpc"
	"github.com/dual-finance/governance-proposals/internal/config"
	"github.com/dual-finance/governance-proposals/internal/constants"
	"github.com/dual-finance/governance-proposals/internal/governance"
	"github.com/dual-finance/governance-proposals/internal/handlers"
	"github.com/dual-finance/governance-proposals/internal/instructions"
	"github.com/dual-finance/governance-proposals/internal/logger"
	"github.com/dual-finance/governance-proposals/internal/middleware"
	"github.com/dual-finance/governance-proposals/internal/proposal"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler Definitions
var (
	healthHandler      *handlers.HealthHandler
	instructionHandler *handlers.InstructionHandler
	assetHandler       *handlers.AssetHandler
	proposalHandler    *handlers.ProposalHandler
)

// rpcSecretArnEnv names the secret holding a paid RPC endpoint.
const rpcSecretArnEnv = "SOLANA_RPC_SECRET_ARN"

// InitializeHandlers wires the Solana client, asset catalog, builders and
// proposal store into the HTTP handlers.
func InitializeHandlers(ctx context.Context, cfg *config.Config) {
	rpcURL := resolveRPCURL(ctx, cfg)
	rpcClient := solanarpc.NewClient(rpcURL, cfg.Commitment)

	catalog := assets.NewRegistry()
	if cfg.GovernedAccountsFile != "" {
		loaded, err := assets.LoadRegistry(cfg.GovernedAccountsFile)
		if err != nil {
			logger.Fatal("Unable to load governed accounts", zap.String("file", cfg.GovernedAccountsFile), zap.Error(err))
		}
		catalog = loaded
	}

	env := instructions.Env{
		Reader:   rpcClient,
		Assets:   catalog,
		Versions: governance.NewVersionResolver(rpcClient),
	}

	registry := instructions.NewRegistry(instructions.Programs{
		StakingOptions: cfg.StakingOptionsProgramID,
		Airdrop:        cfg.AirdropProgramID,
	})

	// Publishing is optional; without a queue the build endpoint refuses publish=true.
	var publisher awsclient.Publisher
	if cfg.ProposalQueueURL != "" {
		sqsPublisher, err := awsclient.NewSQSPublisher(ctx, cfg.ProposalQueueURL, cfg.AWSEndpointURL)
		if err != nil {
			logger.Fatal("Unable to create proposal publisher", zap.Error(err))
		}
		publisher = sqsPublisher
	}

	healthHandler = handlers.NewHealthHandler()
	instructionHandler = handlers.NewInstructionHandler(registry, env)
	assetHandler = handlers.NewAssetHandler(catalog)
	proposalHandler = handlers.NewProposalHandler(proposal.NewDrafts(), registry, env, publisher)

	logger.Info("Handlers initialized",
		zap.String("cluster", cfg.Cluster),
		zap.String("commitment", string(cfg.Commitment)),
		zap.Bool("publishing", publisher != nil),
	)
}

// resolveRPCURL prefers an endpoint stored in Secrets Manager on deployed
// stages, falling back to the configured URL.
func resolveRPCURL(ctx context.Context, cfg *config.Config) string {
	if cfg.Stage == constants.StageLocal || cfg.Stage == constants.StageTest || os.Getenv(rpcSecretArnEnv) == "" {
		return cfg.RPCURL
	}

	secrets, err := awsclient.NewSecretsManagerClient(ctx)
	if err != nil {
		logger.Warn("Unable to create Secrets Manager client, using configured RPC", zap.Error(err))
		return cfg.RPCURL
	}

	fallbackEnv := "MAINNET_RPC"
	if cfg.Cluster == constants.ClusterDevnet {
		fallbackEnv = "DEVNET_RPC"
	}
	url, err := secrets.GetSecretString(ctx, rpcSecretArnEnv, fallbackEnv)
	if err != nil {
		// neither the secret nor the override is set; use the cluster default
		return cfg.RPCURL
	}
	return url
}

// InitializeRoutes registers the middleware chain and every API route. The
// rate limiter's sweeper stops when ctx is done.
func InitializeRoutes(ctx context.Context, router *gin.Engine, cfg *config.Config) {
	router.Use(configureCORS(cfg.CORS))
	router.Use(middleware.CorrelationIDMiddleware())
	router.Use(middleware.RequestLoggingMiddleware())

	// if we are not in production, log the request body
	if cfg.Stage != constants.StageProd {
		router.Use(middleware.EnhancedLoggingMiddleware(true))
	}

	rateLimiter := middleware.NewRateLimiter(ctx, cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	router.Use(rateLimiter.Middleware())
	router.Use(middleware.WalletMiddleware())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Health)

		v1.GET("/instruction-types", instructionHandler.ListInstructionTypes)
		v1.POST("/instructions/:kind/build", instructionHandler.BuildInstruction)

		v1.GET("/governed-accounts", assetHandler.ListGovernedAccounts)

		proposals := v1.Group("/proposals")
		{
			proposals.POST("", proposalHandler.CreateProposal)
			proposals.GET("/:proposal_id", proposalHandler.GetProposal)
			proposals.DELETE("/:proposal_id", proposalHandler.DeleteProposal)
			proposals.POST("/:proposal_id/build", proposalHandler.BuildProposal)
			proposals.PUT("/:proposal_id/instructions/:index", proposalHandler.MountInstruction)
			proposals.PATCH("/:proposal_id/instructions/:index", proposalHandler.PatchInstruction)
			proposals.DELETE("/:proposal_id/instructions/:index", proposalHandler.RemoveInstruction)
		}
	}
}

// configureCORS returns a configured CORS middleware
func configureCORS(cfg config.CORSConfig) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	corsConfig.AllowMethods = cfg.AllowedMethods
	corsConfig.AllowHeaders = cfg.AllowedHeaders
	corsConfig.ExposeHeaders = append([]string{middleware.CorrelationIDHeader}, cfg.ExposedHeaders...)
	corsConfig.AllowCredentials = cfg.AllowCredentials

	return cors.New(corsConfig)
}
