package solanarpc_test

import (
	"context"
	"testing"
	"time"

	"github.com/dual-finance/governance-proposals/internal/client/solanarpc"
	"github.com/dual-finance/governance-proposals/internal/logger"
	"github.com/dual-finance/governance-proposals/internal/testutil"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.InitLogger("test", "")
}

func TestClient_GetTokenAccount(t *testing.T) {
	server := testutil.NewRPCServer(t)
	client := solanarpc.NewClient(server.URL, rpc.CommitmentConfirmed)
	ctx := context.Background()

	treasury := testutil.NewPubkey()
	mint := testutil.NewPubkey()
	owner := testutil.NewPubkey()
	server.SetAccount(treasury, testutil.FakeAccount{
		Owner: solana.TokenProgramID,
		Data:  testutil.TokenAccountData(mint, owner, 42),
	})

	account, err := client.GetTokenAccount(ctx, treasury)
	require.NoError(t, err)
	assert.Equal(t, treasury, account.Address)
	assert.Equal(t, mint, account.Mint)
	assert.Equal(t, owner, account.Owner)
	assert.Equal(t, uint64(42), account.Amount)
	assert.Equal(t, server.URL, client.Endpoint())
}

func TestClient_GetTokenAccount_Errors(t *testing.T) {
	server := testutil.NewRPCServer(t)
	client := solanarpc.NewClient(server.URL, rpc.CommitmentConfirmed)
	ctx := context.Background()

	missing := testutil.NewPubkey()
	_, err := client.GetTokenAccount(ctx, missing)
	assert.True(t, errors.Is(err, solanarpc.ErrAccountNotFound))

	wallet := testutil.NewPubkey()
	server.SetAccount(wallet, testutil.FakeAccount{Owner: solana.SystemProgramID})
	_, err = client.GetTokenAccount(ctx, wallet)
	assert.True(t, errors.Is(err, solanarpc.ErrNotTokenAccount))

	broken := testutil.NewPubkey()
	server.FailAccount(broken)
	_, err = client.GetTokenAccount(ctx, broken)
	require.Error(t, err)
	assert.False(t, errors.Is(err, solanarpc.ErrAccountNotFound))
}

func TestClient_GetMint(t *testing.T) {
	server := testutil.NewRPCServer(t)
	client := solanarpc.NewClient(server.URL, "")
	ctx := context.Background()

	mint := testutil.NewPubkey()
	server.SetAccount(mint, testutil.FakeAccount{
		Owner: solanarpc.Token2022ProgramID,
		Data:  testutil.MintData(testutil.NewPubkey(), 1_000_000, 6),
	})

	info, err := client.GetMint(ctx, mint)
	require.NoError(t, err)
	assert.Equal(t, uint8(6), info.Decimals)
	assert.Equal(t, uint64(1_000_000), info.Supply)
	assert.Equal(t, rpc.CommitmentConfirmed, client.Commitment())
}

func TestClient_AccountExists(t *testing.T) {
	server := testutil.NewRPCServer(t)
	client := solanarpc.NewClient(server.URL, rpc.CommitmentConfirmed)
	ctx := context.Background()

	present := testutil.NewPubkey()
	server.SetAccount(present, testutil.FakeAccount{Owner: solana.SystemProgramID, Data: []byte{1}})

	exists, err := client.AccountExists(ctx, present)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = client.AccountExists(ctx, testutil.NewPubkey())
	require.NoError(t, err)
	assert.False(t, exists)

	broken := testutil.NewPubkey()
	server.FailAccount(broken)
	_, err = client.AccountExists(ctx, broken)
	assert.Error(t, err)

	data, err := client.GetAccountData(ctx, present)
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, data)
}

func TestClient_RetriesFailedLookups(t *testing.T) {
	server := testutil.NewRPCServer(t)
	client := solanarpc.NewClient(server.URL, rpc.CommitmentConfirmed).WithRetry(solanarpc.RetryConfig{
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
	})
	ctx := context.Background()

	broken := testutil.NewPubkey()
	server.FailAccount(broken)
	_, err := client.GetAccountData(ctx, broken)
	require.Error(t, err)
	assert.Equal(t, 3, server.Calls(broken))

	missing := testutil.NewPubkey()
	_, err = client.GetAccountData(ctx, missing)
	assert.True(t, errors.Is(err, solanarpc.ErrAccountNotFound))
	assert.Equal(t, 1, server.Calls(missing), "missing accounts are not retried")
}
