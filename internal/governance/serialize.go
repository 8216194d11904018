package governance

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// ErrInvalidInstructionData is returned when a base64 payload does not decode
// to a governance InstructionData record.
var ErrInvalidInstructionData = errors.New("invalid instruction data")

// AccountMetaData is one account of a serialized instruction.
type AccountMetaData struct {
	Pubkey     solana.PublicKey `json:"pubkey"`
	IsSigner   bool             `json:"is_signer"`
	IsWritable bool             `json:"is_writable"`
}

// InstructionData is the instruction record a governance proposal stores and
// later executes.
type InstructionData struct {
	ProgramID solana.PublicKey  `json:"program_id"`
	Accounts  []AccountMetaData `json:"accounts"`
	Data      []byte            `json:"data"`
}

// NewInstructionData captures ix in the form a proposal stores.
func NewInstructionData(ix solana.Instruction) (*InstructionData, error) {
	data, err := ix.Data()
	if err != nil {
		return nil, fmt.Errorf("failed to read instruction data: %w", err)
	}

	metas := ix.Accounts()
	accounts := make([]AccountMetaData, 0, len(metas))
	for _, meta := range metas {
		accounts = append(accounts, AccountMetaData{
			Pubkey:     meta.PublicKey,
			IsSigner:   meta.IsSigner,
			IsWritable: meta.IsWritable,
		})
	}

	return &InstructionData{
		ProgramID: ix.ProgramID(),
		Accounts:  accounts,
		Data:      data,
	}, nil
}

// MarshalBorsh encodes the record with borsh layout.
func (d *InstructionData) MarshalBorsh() ([]byte, error) {
	return encode(func(enc *bin.Encoder) error {
		if err := enc.WriteBytes(d.ProgramID[:], false); err != nil {
			return err
		}
		if err := enc.WriteUint32(uint32(len(d.Accounts)), binary.LittleEndian); err != nil {
			return err
		}
		for _, account := range d.Accounts {
			if err := enc.WriteBytes(account.Pubkey[:], false); err != nil {
				return err
			}
			if err := enc.WriteBool(account.IsSigner); err != nil {
				return err
			}
			if err := enc.WriteBool(account.IsWritable); err != nil {
				return err
			}
		}
		return enc.WriteBytes(d.Data, true)
	})
}

// UnmarshalBorsh decodes a borsh encoded record. Trailing bytes are rejected.
func (d *InstructionData) UnmarshalBorsh(raw []byte) error {
	dec := bin.NewBorshDecoder(raw)

	programID, err := dec.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		return fmt.Errorf("%w: program id: %v", ErrInvalidInstructionData, err)
	}
	count, err := dec.ReadUint32(binary.LittleEndian)
	if err != nil {
		return fmt.Errorf("%w: account count: %v", ErrInvalidInstructionData, err)
	}
	if int(count) > dec.Remaining()/(solana.PublicKeyLength+2) {
		return fmt.Errorf("%w: account count %d exceeds payload", ErrInvalidInstructionData, count)
	}

	accounts := make([]AccountMetaData, 0, count)
	for i := uint32(0); i < count; i++ {
		pubkey, err := dec.ReadNBytes(solana.PublicKeyLength)
		if err != nil {
			return fmt.Errorf("%w: account %d: %v", ErrInvalidInstructionData, i, err)
		}
		isSigner, err := dec.ReadBool()
		if err != nil {
			return fmt.Errorf("%w: account %d signer flag: %v", ErrInvalidInstructionData, i, err)
		}
		isWritable, err := dec.ReadBool()
		if err != nil {
			return fmt.Errorf("%w: account %d writable flag: %v", ErrInvalidInstructionData, i, err)
		}
		accounts = append(accounts, AccountMetaData{
			Pubkey:     solana.PublicKeyFromBytes(pubkey),
			IsSigner:   isSigner,
			IsWritable: isWritable,
		})
	}

	length, err := dec.ReadUint32(binary.LittleEndian)
	if err != nil {
		return fmt.Errorf("%w: data length: %v", ErrInvalidInstructionData, err)
	}
	if int(length) > dec.Remaining() {
		return fmt.Errorf("%w: data length %d exceeds payload", ErrInvalidInstructionData, length)
	}
	data, err := dec.ReadNBytes(int(length))
	if err != nil {
		return fmt.Errorf("%w: data: %v", ErrInvalidInstructionData, err)
	}
	if dec.Remaining() != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrInvalidInstructionData, dec.Remaining())
	}

	d.ProgramID = solana.PublicKeyFromBytes(programID)
	d.Accounts = accounts
	d.Data = bytes.Clone(data)
	return nil
}

// Instruction converts the record back into a solana instruction.
func (d *InstructionData) Instruction() solana.Instruction {
	metas := make(solana.AccountMetaSlice, 0, len(d.Accounts))
	for _, account := range d.Accounts {
		metas = append(metas, solana.NewAccountMeta(account.Pubkey, account.IsWritable, account.IsSigner))
	}
	return solana.NewInstruction(d.ProgramID, metas, d.Data)
}

// SerializeInstructionToBase64 encodes ix the way governance proposal
// transactions carry it.
func SerializeInstructionToBase64(ix solana.Instruction) (string, error) {
	record, err := NewInstructionData(ix)
	if err != nil {
		return "", err
	}
	raw, err := record.MarshalBorsh()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeInstructionFromBase64 reverses SerializeInstructionToBase64.
func DecodeInstructionFromBase64(encoded string) (*InstructionData, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInstructionData, err)
	}
	var record InstructionData
	if err := record.UnmarshalBorsh(raw); err != nil {
		return nil, err
	}
	return &record, nil
}
