package governance

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// ErrUnsupportedProgramVersion is returned when an instruction is not
// available in the target program version.
var ErrUnsupportedProgramVersion = errors.New("unsupported governance program version")

// Instruction variants of the governance program, by borsh enum index.
const (
	InstructionDepositGoverningTokens  uint8 = 1
	InstructionWithdrawGoverningTokens uint8 = 2
	InstructionSetGovernanceDelegate   uint8 = 3
	InstructionCreateTokenOwnerRecord  uint8 = 23
	InstructionUpdateProgramMetadata   uint8 = 24
)

// Program versions with distinct instruction layouts.
const (
	ProgramVersionV1 uint8 = 1
	ProgramVersionV2 uint8 = 2
	ProgramVersionV3 uint8 = 3
)

// CreateTokenOwnerRecordParams are the inputs of CreateTokenOwnerRecord.
type CreateTokenOwnerRecordParams struct {
	ProgramID           solana.PublicKey
	ProgramVersion      uint8
	Realm               solana.PublicKey
	GoverningTokenOwner solana.PublicKey
	GoverningTokenMint  solana.PublicKey
	Payer               solana.PublicKey
}

// CreateTokenOwnerRecord builds an instruction creating an empty voter record.
func CreateTokenOwnerRecord(p CreateTokenOwnerRecordParams) (solana.Instruction, error) {
	if p.ProgramVersion < ProgramVersionV2 {
		return nil, fmt.Errorf("create token owner record requires program version 2 or later, got %d: %w", p.ProgramVersion, ErrUnsupportedProgramVersion)
	}

	record, err := TokenOwnerRecordAddress(p.ProgramID, p.Realm, p.GoverningTokenMint, p.GoverningTokenOwner)
	if err != nil {
		return nil, fmt.Errorf("failed to derive token owner record: %w", err)
	}

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(p.Realm, false, false),
		solana.NewAccountMeta(p.GoverningTokenOwner, false, false),
		solana.NewAccountMeta(record, true, false),
		solana.NewAccountMeta(p.GoverningTokenMint, false, false),
		solana.NewAccountMeta(p.Payer, true, true),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}

	data, err := encode(func(enc *bin.Encoder) error {
		return enc.WriteUint8(InstructionCreateTokenOwnerRecord)
	})
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(p.ProgramID, accounts, data), nil
}

// DepositGoverningTokensParams are the inputs of DepositGoverningTokens.
type DepositGoverningTokensParams struct {
	ProgramID                     solana.PublicKey
	ProgramVersion                uint8
	Realm                         solana.PublicKey
	GoverningTokenSource          solana.PublicKey
	GoverningTokenMint            solana.PublicKey
	GoverningTokenOwner           solana.PublicKey
	GoverningTokenSourceAuthority solana.PublicKey
	Payer                         solana.PublicKey
	Amount                        uint64
}

// DepositGoverningTokens builds an instruction moving tokens from a source
// account into the realm's holding account. Version 1 deposits the whole
// source balance and takes no amount.
func DepositGoverningTokens(p DepositGoverningTokensParams) (solana.Instruction, error) {
	record, err := TokenOwnerRecordAddress(p.ProgramID, p.Realm, p.GoverningTokenMint, p.GoverningTokenOwner)
	if err != nil {
		return nil, fmt.Errorf("failed to derive token owner record: %w", err)
	}
	holding, err := GoverningTokenHoldingAddress(p.ProgramID, p.Realm, p.GoverningTokenMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive holding account: %w", err)
	}

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(p.Realm, false, false),
		solana.NewAccountMeta(holding, true, false),
		solana.NewAccountMeta(p.GoverningTokenSource, true, false),
		solana.NewAccountMeta(p.GoverningTokenOwner, false, true),
		solana.NewAccountMeta(p.GoverningTokenSourceAuthority, false, true),
		solana.NewAccountMeta(record, true, false),
		solana.NewAccountMeta(p.Payer, true, true),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
	}

	if p.ProgramVersion == ProgramVersionV1 {
		accounts = append(accounts, solana.NewAccountMeta(solana.SysVarRentPubkey, false, false))
	} else {
		realmConfig, err := RealmConfigAddress(p.ProgramID, p.Realm)
		if err != nil {
			return nil, fmt.Errorf("failed to derive realm config: %w", err)
		}
		accounts = append(accounts, solana.NewAccountMeta(realmConfig, false, false))
	}

	data, err := encode(func(enc *bin.Encoder) error {
		if err := enc.WriteUint8(InstructionDepositGoverningTokens); err != nil {
			return err
		}
		if p.ProgramVersion == ProgramVersionV1 {
			return nil
		}
		return enc.WriteUint64(p.Amount, binary.LittleEndian)
	})
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(p.ProgramID, accounts, data), nil
}

// WithdrawGoverningTokensParams are the inputs of WithdrawGoverningTokens.
type WithdrawGoverningTokensParams struct {
	ProgramID                 solana.PublicKey
	ProgramVersion            uint8
	Realm                     solana.PublicKey
	GoverningTokenDestination solana.PublicKey
	GoverningTokenMint        solana.PublicKey
	GoverningTokenOwner       solana.PublicKey
}

// WithdrawGoverningTokens builds an instruction returning every deposited token
// of the owner to a destination account.
func WithdrawGoverningTokens(p WithdrawGoverningTokensParams) (solana.Instruction, error) {
	record, err := TokenOwnerRecordAddress(p.ProgramID, p.Realm, p.GoverningTokenMint, p.GoverningTokenOwner)
	if err != nil {
		return nil, fmt.Errorf("failed to derive token owner record: %w", err)
	}
	holding, err := GoverningTokenHoldingAddress(p.ProgramID, p.Realm, p.GoverningTokenMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive holding account: %w", err)
	}

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(p.Realm, false, false),
		solana.NewAccountMeta(holding, true, false),
		solana.NewAccountMeta(p.GoverningTokenDestination, true, false),
		solana.NewAccountMeta(p.GoverningTokenOwner, false, true),
		solana.NewAccountMeta(record, true, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
	}

	if p.ProgramVersion >= ProgramVersionV2 {
		realmConfig, err := RealmConfigAddress(p.ProgramID, p.Realm)
		if err != nil {
			return nil, fmt.Errorf("failed to derive realm config: %w", err)
		}
		accounts = append(accounts, solana.NewAccountMeta(realmConfig, false, false))
	}

	data, err := encode(func(enc *bin.Encoder) error {
		return enc.WriteUint8(InstructionWithdrawGoverningTokens)
	})
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(p.ProgramID, accounts, data), nil
}

// SetGovernanceDelegateParams are the inputs of SetGovernanceDelegate.
type SetGovernanceDelegateParams struct {
	ProgramID           solana.PublicKey
	ProgramVersion      uint8
	Realm               solana.PublicKey
	GoverningTokenMint  solana.PublicKey
	GoverningTokenOwner solana.PublicKey
	GovernanceAuthority solana.PublicKey
	// NewDelegate clears the delegate when nil.
	NewDelegate *solana.PublicKey
}

// SetGovernanceDelegate builds an instruction assigning the voting delegate of
// a token owner record.
func SetGovernanceDelegate(p SetGovernanceDelegateParams) (solana.Instruction, error) {
	record, err := TokenOwnerRecordAddress(p.ProgramID, p.Realm, p.GoverningTokenMint, p.GoverningTokenOwner)
	if err != nil {
		return nil, fmt.Errorf("failed to derive token owner record: %w", err)
	}

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(p.GovernanceAuthority, false, true),
		solana.NewAccountMeta(record, true, false),
	}

	data, err := encode(func(enc *bin.Encoder) error {
		if err := enc.WriteUint8(InstructionSetGovernanceDelegate); err != nil {
			return err
		}
		if p.NewDelegate == nil {
			return enc.WriteUint8(0)
		}
		if err := enc.WriteUint8(1); err != nil {
			return err
		}
		return enc.WriteBytes(p.NewDelegate[:], false)
	})
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(p.ProgramID, accounts, data), nil
}

func encode(write func(enc *bin.Encoder) error) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := write(bin.NewBorshEncoder(buf)); err != nil {
		return nil, fmt.Errorf("failed to encode instruction data: %w", err)
	}
	return buf.Bytes(), nil
}
