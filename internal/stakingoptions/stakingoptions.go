package stakingoptions

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/dual-finance/governance-proposals/internal/constants"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

const (
	seedConfig = "so-config"
	seedVault  = "so-vault"
	seedMint   = "so"
)

// Discriminator returns the 8 byte selector of an Anchor instruction.
func Discriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("global:" + name))
	var out [8]byte
	copy(out[:], sum[:8])
	return out
}

// Client builds instructions for one deployment of the staking options program.
type Client struct {
	programID solana.PublicKey
}

// NewClient creates a client for the program at programID.
func NewClient(programID solana.PublicKey) *Client {
	return &Client{programID: programID}
}

// ProgramID returns the program the client targets.
func (c *Client) ProgramID() solana.PublicKey {
	return c.programID
}

// StateAddress derives the config account of a staking option.
func (c *Client) StateAddress(soName string, baseMint solana.PublicKey) (solana.PublicKey, error) {
	if err := checkName(soName); err != nil {
		return solana.PublicKey{}, err
	}
	address, _, err := solana.FindProgramAddress([][]byte{
		[]byte(seedConfig),
		[]byte(soName),
		baseMint[:],
	}, c.programID)
	return address, err
}

// VaultAddress derives the account escrowing base tokens of a staking option.
func (c *Client) VaultAddress(soName string, baseMint solana.PublicKey) (solana.PublicKey, error) {
	if err := checkName(soName); err != nil {
		return solana.PublicKey{}, err
	}
	address, _, err := solana.FindProgramAddress([][]byte{
		[]byte(seedVault),
		[]byte(soName),
		baseMint[:],
	}, c.programID)
	return address, err
}

// OptionMintAddress derives the mint of option tokens at strike.
func (c *Client) OptionMintAddress(state solana.PublicKey, strike uint64) (solana.PublicKey, error) {
	address, _, err := solana.FindProgramAddress([][]byte{
		[]byte(seedMint),
		state[:],
		binary.LittleEndian.AppendUint64(nil, strike),
	}, c.programID)
	return address, err
}

// ConfigParams are the inputs of Config.
type ConfigParams struct {
	OptionExpiration   uint64
	SubscriptionPeriod uint64
	NumTokens          uint64
	LotSize            uint64
	SOName             string
	Authority          solana.PublicKey
	BaseMint           solana.PublicKey
	BaseAccount        solana.PublicKey
	QuoteMint          solana.PublicKey
	QuoteAccount       solana.PublicKey
}

// Config builds the instruction creating a staking option and moving
// NumTokens of base tokens into its vault.
func (c *Client) Config(p ConfigParams) (solana.Instruction, error) {
	state, err := c.StateAddress(p.SOName, p.BaseMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive state: %w", err)
	}
	vault, err := c.VaultAddress(p.SOName, p.BaseMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive vault: %w", err)
	}

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(p.Authority, true, true),
		solana.NewAccountMeta(state, true, false),
		solana.NewAccountMeta(vault, true, false),
		solana.NewAccountMeta(p.BaseAccount, true, false),
		solana.NewAccountMeta(p.QuoteAccount, false, false),
		solana.NewAccountMeta(p.BaseMint, false, false),
		solana.NewAccountMeta(p.QuoteMint, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(solana.SysVarRentPubkey, false, false),
	}

	data, err := encode("config", func(enc *bin.Encoder) error {
		for _, v := range []uint64{p.OptionExpiration, p.SubscriptionPeriod, p.NumTokens, p.LotSize} {
			if err := enc.WriteUint64(v, binary.LittleEndian); err != nil {
				return err
			}
		}
		return enc.WriteBytes([]byte(p.SOName), true)
	})
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(c.programID, accounts, data), nil
}

// InitStrike builds the instruction creating the option mint for strike.
func (c *Client) InitStrike(strike uint64, soName string, authority, baseMint solana.PublicKey) (solana.Instruction, error) {
	state, err := c.StateAddress(soName, baseMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive state: %w", err)
	}
	optionMint, err := c.OptionMintAddress(state, strike)
	if err != nil {
		return nil, fmt.Errorf("failed to derive option mint: %w", err)
	}

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(authority, true, true),
		solana.NewAccountMeta(state, true, false),
		solana.NewAccountMeta(optionMint, true, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(solana.SysVarRentPubkey, false, false),
	}

	data, err := encode("init_strike", func(enc *bin.Encoder) error {
		return enc.WriteUint64(strike, binary.LittleEndian)
	})
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(c.programID, accounts, data), nil
}

// IssueParams are the inputs of Issue.
type IssueParams struct {
	Amount        uint64
	Strike        uint64
	SOName        string
	Authority     solana.PublicKey
	BaseMint      solana.PublicKey
	UserSOAccount solana.PublicKey
}

// Issue builds the instruction minting Amount option tokens at Strike into
// UserSOAccount.
func (c *Client) Issue(p IssueParams) (solana.Instruction, error) {
	state, err := c.StateAddress(p.SOName, p.BaseMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive state: %w", err)
	}
	optionMint, err := c.OptionMintAddress(state, p.Strike)
	if err != nil {
		return nil, fmt.Errorf("failed to derive option mint: %w", err)
	}

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(p.Authority, false, true),
		solana.NewAccountMeta(state, true, false),
		solana.NewAccountMeta(optionMint, true, false),
		solana.NewAccountMeta(p.UserSOAccount, true, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
	}

	data, err := encode("issue", func(enc *bin.Encoder) error {
		if err := enc.WriteUint64(p.Amount, binary.LittleEndian); err != nil {
			return err
		}
		return enc.WriteUint64(p.Strike, binary.LittleEndian)
	})
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(c.programID, accounts, data), nil
}

func checkName(soName string) error {
	if soName == "" {
		return fmt.Errorf("staking option name is empty")
	}
	if len(soName) > constants.MaxSeedLength {
		return fmt.Errorf("staking option name is %d bytes, max %d", len(soName), constants.MaxSeedLength)
	}
	return nil
}

func encode(name string, write func(enc *bin.Encoder) error) ([]byte, error) {
	buf := new(bytes.Buffer)
	discriminator := Discriminator(name)
	buf.Write(discriminator[:])
	if err := write(bin.NewBorshEncoder(buf)); err != nil {
		return nil, fmt.Errorf("failed to encode %s instruction: %w", name, err)
	}
	return buf.Bytes(), nil
}
