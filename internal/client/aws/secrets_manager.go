package aws

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/dual-finance/governance-proposals/internal/logger"
	"go.uber.org/zap"
)

type secretGetter interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsManagerClient wraps the AWS Secrets Manager client.
type SecretsManagerClient struct {
	svc secretGetter
}

// NewSecretsManagerClient creates a Secrets Manager client from the default
// AWS configuration chain.
func NewSecretsManagerClient(ctx context.Context) (*SecretsManagerClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	return &SecretsManagerClient{svc: secretsmanager.NewFromConfig(cfg)}, nil
}

// GetSecretString fetches the secret whose ARN is held by secretArnEnvVar.
// When that variable is unset or the fetch fails it falls back to the value
// of fallbackEnvVar. Paid RPC endpoints carry their API key in the URL, so
// deployed stages keep them here.
func (c *SecretsManagerClient) GetSecretString(ctx context.Context, secretArnEnvVar string, fallbackEnvVar string) (string, error) {
	secretArn := os.Getenv(secretArnEnvVar)

	if secretArn != "" {
		result, err := c.svc.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
			SecretId: aws.String(secretArn),
		})
		if err == nil && result.SecretString != nil && *result.SecretString != "" {
			logger.L().Info("Fetched secret from Secrets Manager", zap.String("arnEnvVar", secretArnEnvVar))
			return *result.SecretString, nil
		}
		logger.L().Warn("Failed to retrieve secret from Secrets Manager, falling back to env var",
			zap.String("arnEnvVar", secretArnEnvVar),
			zap.String("fallbackEnvVar", fallbackEnvVar),
			zap.Error(err),
		)
	}

	if value := os.Getenv(fallbackEnvVar); value != "" {
		return value, nil
	}

	return "", fmt.Errorf("secret not found using ARN env var '%s' or direct env var '%s'", secretArnEnvVar, fallbackEnvVar)
}
