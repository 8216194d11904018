package solanarpc

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dual-finance/governance-proposals/internal/logger"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	// ErrAccountNotFound is returned when an address holds no account.
	ErrAccountNotFound = errors.New("account not found")
	// ErrNotTokenAccount is returned when an account is not owned by a token program.
	ErrNotTokenAccount = errors.New("account is not owned by a token program")
)

// Token2022ProgramID is the token extensions program. Its base account layout
// matches the legacy token program.
var Token2022ProgramID = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")

// TokenAccount is the subset of an SPL token account the builders need.
type TokenAccount struct {
	Address solana.PublicKey
	Mint    solana.PublicKey
	Owner   solana.PublicKey
	Amount  uint64
}

// MintInfo is the subset of an SPL mint the builders need.
type MintInfo struct {
	Address  solana.PublicKey
	Decimals uint8
	Supply   uint64
}

// AccountReader performs the read-only account lookups instruction builders
// depend on.
type AccountReader interface {
	GetAccountData(ctx context.Context, address solana.PublicKey) ([]byte, error)
	AccountExists(ctx context.Context, address solana.PublicKey) (bool, error)
	GetTokenAccount(ctx context.Context, address solana.PublicKey) (*TokenAccount, error)
	GetMint(ctx context.Context, mint solana.PublicKey) (*MintInfo, error)
}

// RetryConfig configures retries of failed RPC reads. Missing accounts are
// never retried.
type RetryConfig struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryConfig rides out a lagging node without stalling a form build.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:      2,
	InitialInterval: 100 * time.Millisecond,
	MaxInterval:     time.Second,
}

// Client wraps a Solana JSON-RPC connection.
type Client struct {
	rpc        *rpc.Client
	endpoint   string
	commitment rpc.CommitmentType
	retry      RetryConfig
	logger     *zap.Logger
}

// NewClient dials endpoint lazily; no request is made until the first lookup.
func NewClient(endpoint string, commitment rpc.CommitmentType) *Client {
	c := NewClientWithRPC(rpc.New(endpoint), commitment)
	c.endpoint = endpoint
	return c
}

// NewClientWithRPC wraps an existing rpc.Client.
func NewClientWithRPC(rpcClient *rpc.Client, commitment rpc.CommitmentType) *Client {
	if commitment == "" {
		commitment = rpc.CommitmentConfirmed
	}
	return &Client{
		rpc:        rpcClient,
		commitment: commitment,
		retry:      DefaultRetryConfig,
		logger:     logger.L(),
	}
}

// WithRetry replaces the retry policy.
func (c *Client) WithRetry(cfg RetryConfig) *Client {
	c.retry = cfg
	return c
}

// Endpoint returns the RPC URL the client was created with.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Commitment returns the commitment used for reads.
func (c *Client) Commitment() rpc.CommitmentType {
	return c.commitment
}

func (c *Client) getAccount(ctx context.Context, address solana.PublicKey) (*rpc.Account, error) {
	var account *rpc.Account
	operation := func() error {
		res, err := c.rpc.GetAccountInfoWithOpts(ctx, address, &rpc.GetAccountInfoOpts{
			Commitment: c.commitment,
			Encoding:   solana.EncodingBase64,
		})
		if err != nil {
			if errors.Is(err, rpc.ErrNotFound) {
				return backoff.Permanent(ErrAccountNotFound)
			}
			return err
		}
		if res == nil || res.Value == nil {
			return backoff.Permanent(ErrAccountNotFound)
		}
		account = res.Value
		return nil
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = c.retry.InitialInterval
	expBackoff.MaxInterval = c.retry.MaxInterval

	notify := func(err error, wait time.Duration) {
		c.logger.Debug("Retrying account lookup",
			zap.String("address", address.String()),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(expBackoff, c.retry.MaxRetries), ctx)
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, errors.Wrapf(err, "failed to get account %s", address)
	}
	return account, nil
}

// GetAccountData returns the raw data of an account.
func (c *Client) GetAccountData(ctx context.Context, address solana.PublicKey) ([]byte, error) {
	account, err := c.getAccount(ctx, address)
	if err != nil {
		return nil, err
	}
	if account.Data == nil {
		return nil, nil
	}
	return account.Data.GetBinary(), nil
}

// AccountExists reports whether address holds an account. Transport failures
// are returned as errors, a missing account is not.
func (c *Client) AccountExists(ctx context.Context, address solana.PublicKey) (bool, error) {
	_, err := c.getAccount(ctx, address)
	if errors.Is(err, ErrAccountNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetTokenAccount fetches and decodes an SPL token account.
func (c *Client) GetTokenAccount(ctx context.Context, address solana.PublicKey) (*TokenAccount, error) {
	account, err := c.getAccount(ctx, address)
	if err != nil {
		return nil, err
	}
	if !isTokenProgram(account.Owner) {
		return nil, errors.Wrapf(ErrNotTokenAccount, "owner %s", account.Owner)
	}

	decoded, err := DecodeTokenAccount(account.Data.GetBinary())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode token account %s", address)
	}
	decoded.Address = address

	c.logger.Debug("Resolved token account",
		zap.String("address", address.String()),
		zap.String("mint", decoded.Mint.String()),
		zap.String("owner", decoded.Owner.String()),
	)

	return decoded, nil
}

// GetMint fetches and decodes an SPL mint.
func (c *Client) GetMint(ctx context.Context, mint solana.PublicKey) (*MintInfo, error) {
	account, err := c.getAccount(ctx, mint)
	if err != nil {
		return nil, err
	}
	if !isTokenProgram(account.Owner) {
		return nil, errors.Wrapf(ErrNotTokenAccount, "owner %s", account.Owner)
	}

	decoded, err := DecodeMint(account.Data.GetBinary())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode mint %s", mint)
	}
	decoded.Address = mint
	return decoded, nil
}

// DecodeTokenAccount decodes SPL token account data.
func DecodeTokenAccount(data []byte) (*TokenAccount, error) {
	var account token.Account
	if err := bin.NewBinDecoder(data).Decode(&account); err != nil {
		return nil, err
	}
	return &TokenAccount{
		Mint:   account.Mint,
		Owner:  account.Owner,
		Amount: account.Amount,
	}, nil
}

// DecodeMint decodes SPL mint data.
func DecodeMint(data []byte) (*MintInfo, error) {
	var mint token.Mint
	if err := bin.NewBinDecoder(data).Decode(&mint); err != nil {
		return nil, err
	}
	return &MintInfo{
		Decimals: mint.Decimals,
		Supply:   mint.Supply,
	}, nil
}

func isTokenProgram(owner solana.PublicKey) bool {
	return owner.Equals(solana.TokenProgramID) || owner.Equals(Token2022ProgramID)
}
