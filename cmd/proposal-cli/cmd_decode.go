package main

import (
	"encoding/hex"
	"fmt"

	"github.com/dual-finance/governance-proposals/internal/constants"
	"github.com/dual-finance/governance-proposals/internal/governance"
	"github.com/dual-finance/governance-proposals/internal/stakingoptions"
	"github.com/spf13/cobra"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <base64>...",
	Short: "Decode serialized proposal instructions",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDecode,
}

var governanceInstructions = map[byte]string{
	governance.InstructionDepositGoverningTokens:  "DepositGoverningTokens",
	governance.InstructionWithdrawGoverningTokens: "WithdrawGoverningTokens",
	governance.InstructionSetGovernanceDelegate:   "SetGovernanceDelegate",
	governance.InstructionCreateTokenOwnerRecord:  "CreateTokenOwnerRecord",
	governance.InstructionUpdateProgramMetadata:   "UpdateProgramMetadata",
}

var anchorInstructions = map[[8]byte]string{}

func init() {
	for _, name := range []string{"config", "init_strike", "issue", "close"} {
		anchorInstructions[stakingoptions.Discriminator(name)] = name
	}
}

// instructionName names a decoded instruction when its program is known.
func instructionName(d *governance.InstructionData) string {
	if len(d.Data) == 0 {
		return "unknown"
	}
	if d.ProgramID.String() == constants.GovernanceProgramID {
		if name, ok := governanceInstructions[d.Data[0]]; ok {
			return name
		}
	}
	if len(d.Data) >= 8 {
		var disc [8]byte
		copy(disc[:], d.Data[:8])
		if name, ok := anchorInstructions[disc]; ok {
			return name
		}
	}
	return "unknown"
}

func runDecode(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for i, encoded := range args {
		d, err := governance.DecodeInstructionFromBase64(encoded)
		if err != nil {
			return fmt.Errorf("argument %d: %w", i, err)
		}

		fmt.Fprintf(out, "program:     %s\n", d.ProgramID)
		fmt.Fprintf(out, "instruction: %s\n", instructionName(d))
		for j, meta := range d.Accounts {
			flags := ""
			if meta.IsSigner {
				flags += "s"
			}
			if meta.IsWritable {
				flags += "w"
			}
			fmt.Fprintf(out, "  %2d %-2s %s\n", j, flags, meta.Pubkey)
		}
		fmt.Fprintf(out, "data:        %s\n", hex.EncodeToString(d.Data))
	}
	return nil
}
