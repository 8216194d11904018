package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dual-finance/governance-proposals/internal/instructions"
	"github.com/dual-finance/governance-proposals/internal/proposal"
	"github.com/dual-finance/governance-proposals/internal/validation"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var proposalFile string

var buildCmd = &cobra.Command{
	Use:   "build -f proposal.yaml",
	Short: "Build every instruction of a proposal file",
	Long: `Builds the instructions listed in a proposal file and prints the
assembled proposal as JSON. Exits non-zero when any instruction is invalid.

Example file:

  name: Q3 staking options
  instructions:
    - kind: dual_staking_option
      values:
        soName: DUAL-Q3
        baseTreasury: <token account>
        quoteTreasury: <token account>
        userPk: <recipient>
        optionExpirationUnixSeconds: 1767225600
        numTokens: 1000
        lotSize: 1
        strike: 50000`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

// ProposalFile is the YAML shape of a proposal.
type ProposalFile struct {
	Name         string            `yaml:"name"`
	Instructions []InstructionFile `yaml:"instructions"`
}

// InstructionFile is one instruction of a proposal file.
type InstructionFile struct {
	Kind   string                 `yaml:"kind"`
	Values map[string]interface{} `yaml:"values"`
}

func readProposalFile(path string) (*ProposalFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read proposal file: %w", err)
	}
	var file ProposalFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse proposal file: %w", err)
	}
	if len(file.Instructions) == 0 {
		return nil, fmt.Errorf("proposal file %s has no instructions", path)
	}
	return &file, nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	file, err := readProposalFile(proposalFile)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	registry := newRegistry(cfg)
	env, err := newEnv(cfg)
	if err != nil {
		return err
	}

	assembler := proposal.NewAssembler()
	for i, ix := range file.Instructions {
		builder, err := registry.Get(instructions.Kind(ix.Kind))
		if err != nil {
			return fmt.Errorf("instruction %d: %w", i, err)
		}
		proposal.NewForm(i, builder, assembler, env, validation.Values(ix.Values))
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	assembled, err := assembler.Assemble(ctx)
	if err != nil {
		return err
	}

	out := json.NewEncoder(cmd.OutOrStdout())
	out.SetIndent("", "  ")
	if err := out.Encode(assembled); err != nil {
		return err
	}

	if !assembled.Valid {
		return fmt.Errorf("proposal %q is invalid: instructions %v", file.Name, assembled.InvalidIndices)
	}
	return nil
}
