// Package chaintest provides an in-memory cluster satisfying chain.RPC for tests.
package chaintest

import (
	"context"
	"errors"
	"sync"

	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Cluster is a fake RPC endpoint. Transactions are "confirmed" as soon as they are sent.
type Cluster struct {
	mu       sync.Mutex
	Version  string
	Rent     uint64
	balances map[solana.PublicKey]uint64
	accounts map[solana.PublicKey]*rpc.Account
	statuses map[solana.Signature]*rpc.SignatureStatusesResult
	Sent     []*solana.Transaction
	Airdrops []uint64

	// OnSend runs for every submitted transaction; a non-nil error marks it failed on chain.
	OnSend func(c *Cluster, tx *solana.Transaction) error
	// SendErr makes SendTransactionWithOpts fail as a preflight rejection would.
	SendErr error
}

func New() *Cluster {
	return &Cluster{
		Version:  "1.18.26",
		Rent:     7_850_880,
		balances: make(map[solana.PublicKey]uint64),
		accounts: make(map[solana.PublicKey]*rpc.Account),
		statuses: make(map[solana.Signature]*rpc.SignatureStatusesResult),
	}
}

// SetBalance sets the lamports held by key.
func (c *Cluster) SetBalance(key solana.PublicKey, lamports uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[key] = lamports
}

// Deploy registers an account; executable marks it as a program.
func (c *Cluster) Deploy(key solana.PublicKey, executable bool) {
	c.SetAccount(key, nil, executable)
}

// SetAccount stores data under key.
func (c *Cluster) SetAccount(key solana.PublicKey, data []byte, executable bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setAccountLocked(key, data, executable)
}

func (c *Cluster) setAccountLocked(key solana.PublicKey, data []byte, executable bool) {
	c.accounts[key] = &rpc.Account{
		Lamports:   c.Rent,
		Executable: executable,
		Data:       rpc.DataBytesOrJSONFromBytes(append([]byte(nil), data...)),
	}
}

// WriteAccount overwrites account data from inside an OnSend hook.
func (c *Cluster) WriteAccount(key solana.PublicKey, data []byte) {
	c.setAccountLocked(key, data, false)
}

// AccountData reads stored data from inside an OnSend hook.
func (c *Cluster) AccountData(key solana.PublicKey) ([]byte, bool) {
	acct, ok := c.accounts[key]
	if !ok || acct.Data == nil {
		return nil, ok
	}
	return acct.Data.GetBinary(), true
}

func (c *Cluster) GetVersion(ctx context.Context) (*rpc.GetVersionResult, error) {
	return &rpc.GetVersionResult{SolanaCore: c.Version}, nil
}

func (c *Cluster) GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &rpc.GetBalanceResult{Value: c.balances[account]}, nil
}

func (c *Cluster) RequestAirdrop(ctx context.Context, account solana.PublicKey, lamports uint64, commitment rpc.CommitmentType) (solana.Signature, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[account] += lamports
	c.Airdrops = append(c.Airdrops, lamports)
	sig := solana.Signature{byte(len(c.Airdrops)), 0xa1}
	c.statuses[sig] = &rpc.SignatureStatusesResult{ConfirmationStatus: rpc.ConfirmationStatusFinalized}
	return sig, nil
}

func (c *Cluster) GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64, commitment rpc.CommitmentType) (uint64, error) {
	return c.Rent, nil
}

func (c *Cluster) GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	acct, ok := c.accounts[account]
	if !ok {
		return nil, rpc.ErrNotFound
	}
	cp := *acct
	return &rpc.GetAccountInfoResult{Value: &cp}, nil
}

func (c *Cluster) GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	return &rpc.GetLatestBlockhashResult{
		Value: &rpc.LatestBlockhashResult{Blockhash: solana.Hash{0xb1, 0x0c}, LastValidBlockHeight: 150},
	}, nil
}

func (c *Cluster) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error) {
	if c.SendErr != nil {
		return solana.Signature{}, c.SendErr
	}
	if len(tx.Signatures) == 0 {
		return solana.Signature{}, errors.New("transaction is not signed")
	}
	if err := tx.VerifySignatures(); err != nil {
		return solana.Signature{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	sig := tx.Signatures[0]
	c.Sent = append(c.Sent, tx)
	status := &rpc.SignatureStatusesResult{ConfirmationStatus: rpc.ConfirmationStatusConfirmed}
	if c.OnSend != nil {
		if err := c.OnSend(c, tx); err != nil {
			status.Err = map[string]any{"InstructionError": []any{0, err.Error()}}
		}
	}
	c.statuses[sig] = status
	return sig, nil
}

func (c *Cluster) GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, sigs ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := &rpc.GetSignatureStatusesResult{}
	for _, sig := range sigs {
		out.Value = append(out.Value, c.statuses[sig])
	}
	return out, nil
}

// SetStatus overrides the status reported for sig.
func (c *Cluster) SetStatus(sig solana.Signature, status *rpc.SignatureStatusesResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses[sig] = status
}
