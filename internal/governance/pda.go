package governance

import (
	"github.com/gagliardetto/solana-go"
)

const (
	seedGovernance     = "governance"
	seedRealmConfig    = "realm-config"
	seedNativeTreasury = "native-treasury"
	seedMetadata       = "metadata"
)

// TokenOwnerRecordAddress derives the voter record of owner for mint in realm.
func TokenOwnerRecordAddress(programID, realm, mint, owner solana.PublicKey) (solana.PublicKey, error) {
	address, _, err := solana.FindProgramAddress([][]byte{
		[]byte(seedGovernance),
		realm[:],
		mint[:],
		owner[:],
	}, programID)
	return address, err
}

// GoverningTokenHoldingAddress derives the realm's escrow for deposited tokens of mint.
func GoverningTokenHoldingAddress(programID, realm, mint solana.PublicKey) (solana.PublicKey, error) {
	address, _, err := solana.FindProgramAddress([][]byte{
		[]byte(seedGovernance),
		realm[:],
		mint[:],
	}, programID)
	return address, err
}

// RealmConfigAddress derives the realm's config account.
func RealmConfigAddress(programID, realm solana.PublicKey) (solana.PublicKey, error) {
	address, _, err := solana.FindProgramAddress([][]byte{
		[]byte(seedRealmConfig),
		realm[:],
	}, programID)
	return address, err
}

// NativeTreasuryAddress derives the SOL treasury owned by a governance.
func NativeTreasuryAddress(programID, governance solana.PublicKey) (solana.PublicKey, error) {
	address, _, err := solana.FindProgramAddress([][]byte{
		[]byte(seedNativeTreasury),
		governance[:],
	}, programID)
	return address, err
}

// ProgramMetadataAddress derives the account holding the deployed program version.
func ProgramMetadataAddress(programID solana.PublicKey) (solana.PublicKey, error) {
	address, _, err := solana.FindProgramAddress([][]byte{
		[]byte(seedMetadata),
	}, programID)
	return address, err
}
