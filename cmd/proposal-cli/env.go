package main

import (
	"fmt"
	"os"

	"github.com/dual-finance/governance-proposals/internal/assets"
	"github.com/dual-finance/governance-proposals/internal/client/solanarpc"
	"github.com/dual-finance/governance-proposals/internal/config"
	"github.com/dual-finance/governance-proposals/internal/governance"
	"github.com/dual-finance/governance-proposals/internal/instructions"
	"github.com/gagliardetto/solana-go"
)

// loadConfig reads the environment configuration and applies the global
// flag overrides.
func loadConfig() (*config.Config, error) {
	if cluster != "" {
		if err := os.Setenv("SOLANA_CLUSTER", cluster); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if rpcURL != "" {
		cfg.RPCURL = rpcURL
	}
	if accountsFile != "" {
		cfg.GovernedAccountsFile = accountsFile
	}
	return cfg, nil
}

func newRegistry(cfg *config.Config) *instructions.Registry {
	return instructions.NewRegistry(instructions.Programs{
		StakingOptions: cfg.StakingOptionsProgramID,
		Airdrop:        cfg.AirdropProgramID,
	})
}

// newEnv connects the builders to the RPC endpoint and governed accounts.
func newEnv(cfg *config.Config) (instructions.Env, error) {
	client := solanarpc.NewClient(cfg.RPCURL, cfg.Commitment)

	catalog := assets.NewRegistry()
	if cfg.GovernedAccountsFile != "" {
		loaded, err := assets.LoadRegistry(cfg.GovernedAccountsFile)
		if err != nil {
			return instructions.Env{}, err
		}
		catalog = loaded
	}

	env := instructions.Env{
		Reader:   client,
		Assets:   catalog,
		Versions: governance.NewVersionResolver(client),
	}

	if walletKey != "" {
		wallet, err := solana.PublicKeyFromBase58(walletKey)
		if err != nil {
			return instructions.Env{}, fmt.Errorf("invalid --wallet: %w", err)
		}
		env.Wallet = &wallet
	}

	return env, nil
}
