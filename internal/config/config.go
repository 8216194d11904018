package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dual-finance/governance-proposals/internal/constants"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Config holds runtime settings read from the environment.
type Config struct {
	Stage string
	Port  string

	Cluster    string
	RPCURL     string
	Commitment rpc.CommitmentType

	StakingOptionsProgramID solana.PublicKey
	AirdropProgramID        solana.PublicKey

	GovernedAccountsFile string

	CORS      CORSConfig
	RateLimit RateLimitConfig

	ProposalQueueURL string
	AWSEndpointURL   string
}

// CORSConfig mirrors the CORS_* environment variables.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
}

// RateLimitConfig mirrors RATE_LIMIT_RPS / RATE_LIMIT_BURST.
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
}

// Load reads the configuration from the process environment. Callers that
// want .env support load it with godotenv before calling Load.
func Load() (*Config, error) {
	stage := getEnvWithDefault("STAGE", constants.StageLocal)
	if !constants.IsValidStage(stage) {
		return nil, fmt.Errorf("invalid STAGE %q", stage)
	}

	cluster := strings.ToLower(getEnvWithDefault("SOLANA_CLUSTER", constants.ClusterMainnet))
	rpcURL, err := rpcEndpoint(cluster)
	if err != nil {
		return nil, err
	}

	commitment, err := parseCommitment(getEnvWithDefault("SOLANA_COMMITMENT", constants.DefaultCommitment))
	if err != nil {
		return nil, err
	}

	soProgram, err := solana.PublicKeyFromBase58(getEnvWithDefault("STAKING_OPTIONS_PROGRAM_ID", constants.StakingOptionsProgramID))
	if err != nil {
		return nil, fmt.Errorf("invalid STAKING_OPTIONS_PROGRAM_ID: %w", err)
	}

	airdropProgram, err := solana.PublicKeyFromBase58(getEnvWithDefault("AIRDROP_PROGRAM_ID", constants.AirdropProgramID))
	if err != nil {
		return nil, fmt.Errorf("invalid AIRDROP_PROGRAM_ID: %w", err)
	}

	rps, err := getIntWithDefault("RATE_LIMIT_RPS", 100)
	if err != nil {
		return nil, err
	}
	burst, err := getIntWithDefault("RATE_LIMIT_BURST", 200)
	if err != nil {
		return nil, err
	}

	return &Config{
		Stage:                   stage,
		Port:                    getEnvWithDefault("PORT", constants.DefaultPort),
		Cluster:                 cluster,
		RPCURL:                  rpcURL,
		Commitment:              commitment,
		StakingOptionsProgramID: soProgram,
		AirdropProgramID:        airdropProgram,
		GovernedAccountsFile:    os.Getenv("GOVERNED_ACCOUNTS_FILE"),
		CORS: CORSConfig{
			AllowedOrigins:   splitList(os.Getenv("CORS_ALLOWED_ORIGINS"), []string{"http://localhost:3000"}),
			AllowedMethods:   splitList(os.Getenv("CORS_ALLOWED_METHODS"), []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders:   splitList(os.Getenv("CORS_ALLOWED_HEADERS"), []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Correlation-ID", "X-Wallet-Pubkey"}),
			ExposedHeaders:   splitList(os.Getenv("CORS_EXPOSED_HEADERS"), nil),
			AllowCredentials: os.Getenv("CORS_ALLOW_CREDENTIALS") == "true",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: rps,
			Burst:             burst,
		},
		ProposalQueueURL: os.Getenv("PROPOSAL_QUEUE_URL"),
		AWSEndpointURL:   os.Getenv("AWS_ENDPOINT_URL"),
	}, nil
}

// rpcEndpoint picks the RPC URL for a cluster, honoring the MAINNET_RPC and
// DEVNET_RPC overrides.
func rpcEndpoint(cluster string) (string, error) {
	switch cluster {
	case constants.ClusterMainnet:
		return getEnvWithDefault("MAINNET_RPC", constants.DefaultMainnetRPC), nil
	case constants.ClusterDevnet:
		return getEnvWithDefault("DEVNET_RPC", constants.DefaultDevnetRPC), nil
	default:
		return "", fmt.Errorf("unsupported SOLANA_CLUSTER %q", cluster)
	}
}

func parseCommitment(value string) (rpc.CommitmentType, error) {
	switch strings.ToLower(value) {
	case "processed":
		return rpc.CommitmentProcessed, nil
	case "confirmed":
		return rpc.CommitmentConfirmed, nil
	case "finalized":
		return rpc.CommitmentFinalized, nil
	default:
		return "", fmt.Errorf("unsupported SOLANA_COMMITMENT %q", value)
	}
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntWithDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

// splitList splits a comma separated variable and trims every item.
func splitList(value string, defaults []string) []string {
	if value == "" {
		return defaults
	}
	items := strings.Split(value, ",")
	for i, item := range items {
		items[i] = strings.TrimSpace(item)
	}
	return items
}
