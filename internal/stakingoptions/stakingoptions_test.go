package stakingoptions_test

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/dual-finance/governance-proposals/internal/constants"
	"github.com/dual-finance/governance-proposals/internal/stakingoptions"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var programID = solana.MustPublicKeyFromBase58(constants.StakingOptionsProgramID)

func TestDiscriminator(t *testing.T) {
	tests := []struct {
		name string
		want [8]byte
	}{
		{name: "config", want: [8]byte{173, 245, 21, 220, 175, 33, 9, 35}},
		{name: "init_strike", want: [8]byte{149, 39, 26, 170, 148, 187, 156, 218}},
		{name: "issue", want: [8]byte{190, 1, 98, 214, 81, 99, 222, 247}},
		{name: "close", want: [8]byte{98, 165, 201, 177, 108, 65, 206, 96}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stakingoptions.Discriminator(tt.name))
		})
	}
}

func TestClient_Config(t *testing.T) {
	client := stakingoptions.NewClient(programID)
	authority := solana.NewWallet().PublicKey()
	baseMint := solana.NewWallet().PublicKey()
	quoteMint := solana.NewWallet().PublicKey()
	baseAccount := solana.NewWallet().PublicKey()
	quoteAccount := solana.NewWallet().PublicKey()

	ix, err := client.Config(stakingoptions.ConfigParams{
		OptionExpiration:   1700000000,
		SubscriptionPeriod: 1690000000,
		NumTokens:          100,
		LotSize:            1,
		SOName:             "SO1",
		Authority:          authority,
		BaseMint:           baseMint,
		BaseAccount:        baseAccount,
		QuoteMint:          quoteMint,
		QuoteAccount:       quoteAccount,
	})
	require.NoError(t, err)
	assert.Equal(t, programID, ix.ProgramID())

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 8+4*8+4+3)

	discriminator := stakingoptions.Discriminator("config")
	assert.Equal(t, discriminator[:], data[:8])
	assert.Equal(t, uint64(1700000000), binary.LittleEndian.Uint64(data[8:16]))
	assert.Equal(t, uint64(1690000000), binary.LittleEndian.Uint64(data[16:24]))
	assert.Equal(t, uint64(100), binary.LittleEndian.Uint64(data[24:32]))
	assert.Equal(t, uint64(1), binary.LittleEndian.Uint64(data[32:40]))
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(data[40:44]))
	assert.Equal(t, "SO1", string(data[44:]))

	state, err := client.StateAddress("SO1", baseMint)
	require.NoError(t, err)
	accounts := ix.Accounts()
	require.Len(t, accounts, 10)
	assert.Equal(t, authority, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsSigner)
	assert.Equal(t, state, accounts[1].PublicKey)
	assert.Equal(t, baseAccount, accounts[3].PublicKey)
	assert.Equal(t, quoteAccount, accounts[4].PublicKey)
}

func TestClient_InitStrikeAndIssueShareOptionMint(t *testing.T) {
	client := stakingoptions.NewClient(programID)
	authority := solana.NewWallet().PublicKey()
	baseMint := solana.NewWallet().PublicKey()
	user := solana.NewWallet().PublicKey()

	initStrike, err := client.InitStrike(5, "SO1", authority, baseMint)
	require.NoError(t, err)
	issue, err := client.Issue(stakingoptions.IssueParams{
		Amount:        100,
		Strike:        5,
		SOName:        "SO1",
		Authority:     authority,
		BaseMint:      baseMint,
		UserSOAccount: user,
	})
	require.NoError(t, err)

	assert.Equal(t, initStrike.Accounts()[2].PublicKey, issue.Accounts()[2].PublicKey)
	assert.Equal(t, user, issue.Accounts()[3].PublicKey)

	data, err := issue.Data()
	require.NoError(t, err)
	require.Len(t, data, 24)
	assert.Equal(t, uint64(100), binary.LittleEndian.Uint64(data[8:16]))
	assert.Equal(t, uint64(5), binary.LittleEndian.Uint64(data[16:24]))

	other, err := client.InitStrike(6, "SO1", authority, baseMint)
	require.NoError(t, err)
	assert.NotEqual(t, initStrike.Accounts()[2].PublicKey, other.Accounts()[2].PublicKey)
}

func TestClient_NameLimits(t *testing.T) {
	client := stakingoptions.NewClient(programID)
	baseMint := solana.NewWallet().PublicKey()

	_, err := client.StateAddress(strings.Repeat("a", constants.MaxSeedLength), baseMint)
	assert.NoError(t, err)

	_, err = client.StateAddress(strings.Repeat("a", constants.MaxSeedLength+1), baseMint)
	assert.Error(t, err)

	_, err = client.InitStrike(1, "", solana.NewWallet().PublicKey(), baseMint)
	assert.Error(t, err)
}

func TestAirdropClient_Close(t *testing.T) {
	client := stakingoptions.NewAirdropClient(solana.MustPublicKeyFromBase58(constants.AirdropProgramID))
	authority := solana.NewWallet().PublicKey()
	state := solana.NewWallet().PublicKey()
	recipient := solana.NewWallet().PublicKey()

	ix, err := client.Close(authority, state, recipient)
	require.NoError(t, err)

	vault, err := client.VaultAddress(state)
	require.NoError(t, err)

	accounts := ix.Accounts()
	require.Len(t, accounts, 5)
	assert.Equal(t, vault, accounts[2].PublicKey)
	assert.Equal(t, recipient, accounts[3].PublicKey)

	data, err := ix.Data()
	require.NoError(t, err)
	discriminator := stakingoptions.Discriminator("close")
	assert.Equal(t, discriminator[:], data)
}
