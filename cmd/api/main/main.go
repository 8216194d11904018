//go:build lambda
// +build lambda

package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/davecgh/go-spew/spew"
	"github.com/dual-finance/governance-proposals/internal/config"
	"github.com/dual-finance/governance-proposals/internal/logger"
	"github.com/dual-finance/governance-proposals/internal/server"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var ginLambda *ginadapter.GinLambda

func init() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.InitLogger(cfg.Stage, cfg.Cluster)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	// The execution environment lives as long as the process.
	ctx := context.Background()
	server.InitializeHandlers(ctx, cfg)
	server.InitializeRoutes(ctx, r, cfg)

	ginLambda = ginadapter.New(r)
}

func Handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger.Debug("Received Lambda request",
		zap.String("path", req.Path),
		zap.String("request", spew.Sdump(req)),
	)

	return ginLambda.ProxyWithContext(ctx, req)
}

func main() {
	defer func() { _ = logger.Sync() }()
	lambda.Start(Handler)
}
