package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/dual-finance/governance-proposals/internal/constants"
	"github.com/dual-finance/governance-proposals/internal/governance"
	"github.com/dual-finance/governance-proposals/internal/proposal"
	"github.com/dual-finance/governance-proposals/internal/testutil"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetContext(context.Background())
	return cmd, &buf
}

func TestRunDecode(t *testing.T) {
	programID := solana.MustPublicKeyFromBase58(constants.GovernanceProgramID)
	delegate := testutil.NewPubkey()
	ix, err := governance.SetGovernanceDelegate(governance.SetGovernanceDelegateParams{
		ProgramID:           programID,
		ProgramVersion:      governance.ProgramVersionV3,
		Realm:               testutil.NewPubkey(),
		GoverningTokenMint:  testutil.NewPubkey(),
		GoverningTokenOwner: testutil.NewPubkey(),
		GovernanceAuthority: testutil.NewPubkey(),
		NewDelegate:         &delegate,
	})
	require.NoError(t, err)
	encoded, err := governance.SerializeInstructionToBase64(ix)
	require.NoError(t, err)

	cmd, out := newTestCmd()
	require.NoError(t, runDecode(cmd, []string{encoded}))

	assert.Contains(t, out.String(), programID.String())
	assert.Contains(t, out.String(), "SetGovernanceDelegate")

	assert.Error(t, runDecode(cmd, []string{"not base64!"}))
}

func TestRunTypes(t *testing.T) {
	cmd, out := newTestCmd()
	require.NoError(t, runTypes(cmd, nil))

	for _, want := range []string{"dual_staking_option", "soName", "dual_delegate", "treasury|wallet"} {
		assert.Contains(t, out.String(), want)
	}
}

func TestRunBuild(t *testing.T) {
	rpc := testutil.NewRPCServer(t)
	dir := t.TempDir()

	treasury := testutil.NewPubkey()
	mint := testutil.NewPubkey()
	gov := testutil.NewPubkey()
	realm := testutil.NewPubkey()

	accounts := fmt.Sprintf(`accounts:
  - pubkey: %s
    name: DUAL treasury
    type: token
    mint: %s
    decimals: 6
    governance:
      pubkey: %s
      program_id: %s
      realm: %s
`, treasury, mint, gov, constants.GovernanceProgramID, realm)
	accountsPath := filepath.Join(dir, "accounts.yaml")
	require.NoError(t, os.WriteFile(accountsPath, []byte(accounts), 0o600))

	writeProposal := func(t *testing.T, delegate string) string {
		t.Helper()
		body := fmt.Sprintf(`name: Delegate treasury votes
instructions:
  - kind: dual_delegate
    values:
      realm: %s
      delegateToken: %s
      delegateAccount: %s
`, realm, treasury, delegate)
		path := filepath.Join(t.TempDir(), "proposal.yaml")
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
		return path
	}

	rpcURL, accountsFile = rpc.URL, accountsPath
	t.Cleanup(func() { rpcURL, accountsFile, proposalFile = "", "", "" })

	t.Run("valid proposal", func(t *testing.T) {
		proposalFile = writeProposal(t, testutil.NewPubkey().String())
		cmd, out := newTestCmd()
		require.NoError(t, runBuild(cmd, nil))

		var assembled proposal.Proposal
		require.NoError(t, json.Unmarshal(out.Bytes(), &assembled))
		assert.True(t, assembled.Valid)
		require.Len(t, assembled.Transactions, 1)
		require.Len(t, assembled.Transactions[0].Instructions, 1)

		decoded, err := governance.DecodeInstructionFromBase64(assembled.Transactions[0].Instructions[0])
		require.NoError(t, err)
		assert.Equal(t, governance.InstructionSetGovernanceDelegate, decoded.Data[0])
	})

	t.Run("invalid proposal exits with an error", func(t *testing.T) {
		proposalFile = writeProposal(t, "not-a-key")
		cmd, out := newTestCmd()
		err := runBuild(cmd, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid")

		var assembled proposal.Proposal
		require.NoError(t, json.Unmarshal(out.Bytes(), &assembled))
		assert.False(t, assembled.Valid)
		assert.Equal(t, []int{0}, assembled.InvalidIndices)
		assert.Contains(t, assembled.FormErrors[0], "delegateAccount")
	})

	t.Run("missing file", func(t *testing.T) {
		proposalFile = filepath.Join(dir, "missing.yaml")
		cmd, _ := newTestCmd()
		assert.Error(t, runBuild(cmd, nil))
	})
}
