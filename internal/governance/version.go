package governance

import (
	"context"
	"encoding/binary"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/dual-finance/governance-proposals/internal/client/solanarpc"
	"github.com/dual-finance/governance-proposals/internal/logger"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// DefaultProgramVersion is assumed when a program has no metadata account.
const DefaultProgramVersion = ProgramVersionV3

const accountTypeProgramMetadata uint8 = 13

// AccountDataReader reads raw account data.
type AccountDataReader interface {
	GetAccountData(ctx context.Context, address solana.PublicKey) ([]byte, error)
}

// VersionResolver looks up and caches the deployed version of governance
// programs.
type VersionResolver struct {
	reader AccountDataReader
	logger *zap.Logger

	mu       sync.RWMutex
	versions map[solana.PublicKey]uint8
}

// NewVersionResolver creates a resolver reading metadata through reader.
func NewVersionResolver(reader AccountDataReader) *VersionResolver {
	return &VersionResolver{
		reader:   reader,
		logger:   logger.L(),
		versions: make(map[solana.PublicKey]uint8),
	}
}

// ProgramVersion returns the major version of the governance program. A
// missing or undecodable metadata account yields DefaultProgramVersion. RPC
// failures also fall back to the default but are not cached.
func (r *VersionResolver) ProgramVersion(ctx context.Context, programID solana.PublicKey) uint8 {
	r.mu.RLock()
	version, ok := r.versions[programID]
	r.mu.RUnlock()
	if ok {
		return version
	}

	address, err := ProgramMetadataAddress(programID)
	if err != nil {
		return DefaultProgramVersion
	}

	data, err := r.reader.GetAccountData(ctx, address)
	switch {
	case errors.Is(err, solanarpc.ErrAccountNotFound):
		version = DefaultProgramVersion
	case err != nil:
		r.logger.Warn("Failed to read governance program metadata, assuming default version",
			zap.String("program_id", programID.String()),
			zap.Error(err),
		)
		return DefaultProgramVersion
	default:
		version, err = ParseProgramMetadataVersion(data)
		if err != nil {
			r.logger.Warn("Undecodable governance program metadata, assuming default version",
				zap.String("program_id", programID.String()),
				zap.Error(err),
			)
			version = DefaultProgramVersion
		}
	}

	r.mu.Lock()
	r.versions[programID] = version
	r.mu.Unlock()

	return version
}

// ParseProgramMetadataVersion extracts the major version from a program
// metadata account.
func ParseProgramMetadataVersion(data []byte) (uint8, error) {
	dec := bin.NewBorshDecoder(data)

	accountType, err := dec.ReadUint8()
	if err != nil {
		return 0, err
	}
	if accountType != accountTypeProgramMetadata {
		return 0, errors.New("not a program metadata account")
	}
	if _, err := dec.ReadUint64(binary.LittleEndian); err != nil {
		return 0, err
	}
	length, err := dec.ReadUint32(binary.LittleEndian)
	if err != nil {
		return 0, err
	}
	if int(length) > dec.Remaining() {
		return 0, errors.New("version string exceeds account data")
	}
	raw, err := dec.ReadNBytes(int(length))
	if err != nil {
		return 0, err
	}

	major, _, _ := strings.Cut(string(raw), ".")
	version, err := strconv.ParseUint(major, 10, 8)
	if err != nil || version == 0 {
		return 0, errors.New("invalid program version " + strconv.Quote(string(raw)))
	}
	return uint8(version), nil
}
