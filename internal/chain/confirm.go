package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/metrics"
)

// Confirmer blocks until a signature reaches its commitment or ctx ends.
type Confirmer interface {
	Confirm(ctx context.Context, sig solana.Signature) error
}

// PollConfirmer asks getSignatureStatuses on a fixed interval.
type PollConfirmer struct {
	rpc      RPC
	commit   rpc.CommitmentType
	interval time.Duration
}

func NewPollConfirmer(r RPC, commit rpc.CommitmentType) *PollConfirmer {
	return &PollConfirmer{rpc: r, commit: commit, interval: 500 * time.Millisecond}
}

// WithInterval returns a copy polling every d.
func (p *PollConfirmer) WithInterval(d time.Duration) *PollConfirmer {
	cp := *p
	if d > 0 {
		cp.interval = d
	}
	return &cp
}

func (p *PollConfirmer) Confirm(ctx context.Context, sig solana.Signature) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		done, err := p.check(ctx, sig)
		if err != nil || done {
			return err
		}
		select {
		case <-ctx.Done():
			return timeoutErr(ctx, sig)
		case <-ticker.C:
		}
	}
}

func (p *PollConfirmer) check(ctx context.Context, sig solana.Signature) (bool, error) {
	out, err := p.rpc.GetSignatureStatuses(ctx, true, sig)
	metrics.ObserveRPC("getSignatureStatuses", err)
	if err != nil {
		if ctx.Err() != nil {
			return false, timeoutErr(ctx, sig)
		}
		// transient; keep polling until the deadline
		return false, nil
	}
	if out == nil || len(out.Value) == 0 || out.Value[0] == nil {
		return false, nil
	}
	status := out.Value[0]
	if status.Err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrTransactionFailed, sig, status.Err)
	}
	return reached(status.ConfirmationStatus, p.commit), nil
}

func timeoutErr(ctx context.Context, sig solana.Signature) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}
	return fmt.Errorf("%w: %s", ErrConfirmTimeout, sig)
}

func rank(status string) int {
	switch status {
	case string(rpc.ConfirmationStatusProcessed):
		return 1
	case string(rpc.ConfirmationStatusConfirmed):
		return 2
	case string(rpc.ConfirmationStatusFinalized):
		return 3
	}
	return 0
}

// reached reports whether status satisfies the wanted commitment.
func reached(status rpc.ConfirmationStatusType, want rpc.CommitmentType) bool {
	got := rank(string(status))
	return got > 0 && got >= rank(string(want))
}
