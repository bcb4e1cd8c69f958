// Package chain wraps the Solana JSON-RPC client with the calls the ecom client needs:
// funding the payer, checking program deployments, deriving PDAs and submitting instructions.
package chain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"

	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/metrics"
)

const lamportsPerSOL = 1_000_000_000

var (
	ErrProgramNotFound      = errors.New("chain: program not found")
	ErrProgramNotExecutable = errors.New("chain: program is not executable")
	ErrAccountNotFound      = errors.New("chain: account not found")
	ErrTransactionFailed    = errors.New("chain: transaction failed")
	ErrConfirmTimeout       = errors.New("chain: confirmation timed out")
)

// RPC is the subset of *rpc.Client used by Client.
type RPC interface {
	GetVersion(ctx context.Context) (*rpc.GetVersionResult, error)
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
	RequestAirdrop(ctx context.Context, account solana.PublicKey, lamports uint64, commitment rpc.CommitmentType) (solana.Signature, error)
	GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64, commitment rpc.CommitmentType) (uint64, error)
	GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error)
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransactionWithOpts(ctx context.Context, transaction *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
}

// Client talks to one cluster at a fixed commitment level.
type Client struct {
	RPC                  RPC
	Commit               rpc.CommitmentType
	log                  zerolog.Logger
	confirmer            Confirmer
	confirmTimeout       time.Duration
	lamportsPerSignature uint64
	maxAirdrop           uint64
}

// Option configures Client construction parameters.
type Option func(*Client)

// WithRPC swaps the RPC backend, mostly for tests.
func WithRPC(r RPC) Option {
	return func(c *Client) {
		if r != nil {
			c.RPC = r
		}
	}
}

// WithConfirmer replaces the default status-polling confirmer.
func WithConfirmer(confirmer Confirmer) Option {
	return func(c *Client) {
		if confirmer != nil {
			c.confirmer = confirmer
		}
	}
}

func WithConfirmTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.confirmTimeout = d
		}
	}
}

// WithLamportsPerSignature sets the per-signature fee used by EstimateFunding.
func WithLamportsPerSignature(lamports uint64) Option {
	return func(c *Client) {
		if lamports > 0 {
			c.lamportsPerSignature = lamports
		}
	}
}

// WithMaxAirdrop caps a single airdrop request; zero means uncapped.
func WithMaxAirdrop(lamports uint64) Option {
	return func(c *Client) { c.maxAirdrop = lamports }
}

// ParseCommitment maps processed|confirmed|finalized onto rpc commitment levels, defaulting to confirmed.
func ParseCommitment(commit string) rpc.CommitmentType {
	switch strings.ToLower(strings.TrimSpace(commit)) {
	case "processed":
		return rpc.CommitmentProcessed
	case "finalized":
		return rpc.CommitmentFinalized
	default:
		return rpc.CommitmentConfirmed
	}
}

func NewClient(rpcURL, commit string, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		Commit:               ParseCommitment(commit),
		log:                  log,
		confirmTimeout:       30 * time.Second,
		lamportsPerSignature: 5000,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.RPC == nil {
		c.RPC = rpc.New(rpcURL)
	}
	if c.confirmer == nil {
		c.confirmer = NewPollConfirmer(c.RPC, c.Commit)
	}
	return c
}

// Connect checks the endpoint answers and returns the node version.
func (c *Client) Connect(ctx context.Context) (string, error) {
	out, err := c.RPC.GetVersion(ctx)
	metrics.ObserveRPC("getVersion", err)
	if err != nil {
		return "", fmt.Errorf("get version: %w", err)
	}
	return out.SolanaCore, nil
}

// EstimateFunding returns the lamports a payer needs: rent exemption for accountSize
// plus fees for a hundred signatures.
func (c *Client) EstimateFunding(ctx context.Context, accountSize uint64) (uint64, error) {
	rent, err := c.RPC.GetMinimumBalanceForRentExemption(ctx, accountSize, c.Commit)
	metrics.ObserveRPC("getMinimumBalanceForRentExemption", err)
	if err != nil {
		return 0, fmt.Errorf("rent exemption: %w", err)
	}
	return rent + c.lamportsPerSignature*100, nil
}

// Balance returns the lamports held by account.
func (c *Client) Balance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	out, err := c.RPC.GetBalance(ctx, account, c.Commit)
	metrics.ObserveRPC("getBalance", err)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return out.Value, nil
}

// EnsureFunded airdrops the shortfall when payer holds less than required and returns the final balance.
func (c *Client) EnsureFunded(ctx context.Context, payer solana.PublicKey, required uint64) (uint64, error) {
	lamports, err := c.Balance(ctx, payer)
	if err != nil {
		return 0, err
	}
	if lamports < required {
		want := required - lamports
		if c.maxAirdrop > 0 && want > c.maxAirdrop {
			c.log.Warn().Uint64("wanted", want).Uint64("cap", c.maxAirdrop).Msg("airdrop capped")
			want = c.maxAirdrop
		}
		sig, err := c.RPC.RequestAirdrop(ctx, payer, want, c.Commit)
		metrics.ObserveRPC("requestAirdrop", err)
		if err != nil {
			return 0, fmt.Errorf("request airdrop: %w", err)
		}
		metrics.AirdropLamportsTotal.Add(float64(want))
		if err := c.confirm(ctx, sig); err != nil {
			return 0, fmt.Errorf("confirm airdrop: %w", err)
		}
		if lamports, err = c.Balance(ctx, payer); err != nil {
			return 0, err
		}
	}
	c.log.Info().
		Str("payer", payer.String()).
		Float64("sol", float64(lamports)/lamportsPerSOL).
		Msg("payer funded")
	return lamports, nil
}

// CheckProgram verifies programID is deployed and executable; name only labels errors and logs.
func (c *Client) CheckProgram(ctx context.Context, name string, programID solana.PublicKey) error {
	out, err := c.getAccount(ctx, programID)
	if errors.Is(err, ErrAccountNotFound) {
		return fmt.Errorf("%w: %s %s", ErrProgramNotFound, name, programID)
	}
	if err != nil {
		return err
	}
	if !out.Executable {
		return fmt.Errorf("%w: %s %s", ErrProgramNotExecutable, name, programID)
	}
	c.log.Info().Str("program", name).Str("id", programID.String()).Msg("program deployed")
	return nil
}

// AccountData returns the raw data of account.
func (c *Client) AccountData(ctx context.Context, account solana.PublicKey) ([]byte, error) {
	out, err := c.getAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	if out.Data == nil {
		return nil, nil
	}
	return out.Data.GetBinary(), nil
}

func (c *Client) getAccount(ctx context.Context, account solana.PublicKey) (*rpc.Account, error) {
	out, err := c.RPC.GetAccountInfoWithOpts(ctx, account, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: c.Commit,
	})
	metrics.ObserveRPC("getAccountInfo", err)
	if errors.Is(err, rpc.ErrNotFound) || (err == nil && (out == nil || out.Value == nil)) {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, account)
	}
	if err != nil {
		return nil, fmt.Errorf("get account info: %w", err)
	}
	return out.Value, nil
}

// FindPDA derives the program address for seeds [seed, owner] under programID.
func FindPDA(seed string, owner, programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{[]byte(seed), owner.Bytes()}, programID)
}

// SendAndConfirm signs instructions with payer, submits them in one transaction and waits for the commitment.
func (c *Client) SendAndConfirm(ctx context.Context, payer solana.PrivateKey, instructions ...solana.Instruction) (solana.Signature, error) {
	var sig solana.Signature
	bh, err := c.RPC.GetLatestBlockhash(ctx, c.Commit)
	metrics.ObserveRPC("getLatestBlockhash", err)
	if err != nil {
		return sig, fmt.Errorf("latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(instructions, bh.Value.Blockhash, solana.TransactionPayer(payer.PublicKey()))
	if err != nil {
		return sig, fmt.Errorf("build tx: %w", err)
	}
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payer.PublicKey()) {
			return &payer
		}
		return nil
	})
	if err != nil {
		return sig, fmt.Errorf("sign: %w", err)
	}

	sig, err = c.RPC.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: c.Commit,
	})
	metrics.ObserveRPC("sendTransaction", err)
	if err != nil {
		return sig, fmt.Errorf("send tx: %w", err)
	}
	c.log.Debug().Str("sig", sig.String()).Msg("transaction sent")

	if err := c.confirm(ctx, sig); err != nil {
		return sig, err
	}
	return sig, nil
}

func (c *Client) confirm(ctx context.Context, sig solana.Signature) error {
	ctx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()
	return c.confirmer.Confirm(ctx, sig)
}
