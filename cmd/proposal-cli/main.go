// Command proposal-cli builds governance proposal instructions from a YAML
// file, lists the supported instruction types and decodes serialized
// instructions.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dual-finance/governance-proposals/internal/constants"
	"github.com/dual-finance/governance-proposals/internal/logger"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose      bool
	rpcURL       string
	cluster      string
	accountsFile string
	walletKey    string
	timeout      time.Duration
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "proposal-cli",
	Short: "Build Dual Finance governance proposal instructions",
	Long: `proposal-cli builds the serialized instructions of an SPL Governance
proposal: staking options, governance token delegation, vote deposits and
withdrawals, and airdrop closes.

Settings not given as flags are read from the same environment variables as
the API server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if verbose {
			level = "debug"
		}
		logger.InitLoggerWithConfig(logger.LoggerConfig{
			Level:   level,
			Stage:   constants.StageLocal,
			Cluster: cluster,
			Color:   true,
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&rpcURL, "rpc", "", "Solana RPC URL (default: cluster endpoint)")
	rootCmd.PersistentFlags().StringVar(&cluster, "cluster", "", "Solana cluster: mainnet or devnet (or set SOLANA_CLUSTER)")
	rootCmd.PersistentFlags().StringVarP(&accountsFile, "accounts", "a", "", "Governed accounts YAML (or set GOVERNED_ACCOUNTS_FILE)")
	rootCmd.PersistentFlags().StringVar(&walletKey, "wallet", "", "Connected wallet public key, for wallet-sourced instructions")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "Operation timeout")

	buildCmd.Flags().StringVarP(&proposalFile, "file", "f", "", "Proposal YAML file")
	_ = buildCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(decodeCmd)
}

func main() {
	defer func() { _ = logger.Sync() }()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
