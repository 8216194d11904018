package stakingoptions

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

const seedAirdropVault = "Vault"

// AirdropClient builds instructions for the airdrop program.
type AirdropClient struct {
	programID solana.PublicKey
}

// NewAirdropClient creates a client for the airdrop program at programID.
func NewAirdropClient(programID solana.PublicKey) *AirdropClient {
	return &AirdropClient{programID: programID}
}

// VaultAddress derives the token vault of an airdrop state.
func (c *AirdropClient) VaultAddress(state solana.PublicKey) (solana.PublicKey, error) {
	address, _, err := solana.FindProgramAddress([][]byte{
		[]byte(seedAirdropVault),
		state[:],
	}, c.programID)
	return address, err
}

// Close builds the instruction returning an airdrop's unclaimed tokens to
// recipient and closing its state.
func (c *AirdropClient) Close(authority, state, recipient solana.PublicKey) (solana.Instruction, error) {
	vault, err := c.VaultAddress(state)
	if err != nil {
		return nil, fmt.Errorf("failed to derive airdrop vault: %w", err)
	}

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(authority, true, true),
		solana.NewAccountMeta(state, true, false),
		solana.NewAccountMeta(vault, true, false),
		solana.NewAccountMeta(recipient, true, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
	}

	data, err := encode("close", func(*bin.Encoder) error { return nil })
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(c.programID, accounts, data), nil
}
