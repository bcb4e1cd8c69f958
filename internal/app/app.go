// Package app wires configuration into a ready chain client, ecom service and runner.
package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/chain"
	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/config"
	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/ecom"
	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/journal"
	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/runner"
)

// App bundles the components built from one configuration.
type App struct {
	Chain   *chain.Client
	Service *ecom.Service
	Runner  *runner.Runner
	Ledger  *journal.Ledger

	recorder *journal.JSONLRecorder
}

// Build validates cfg and constructs the client stack. Extra chain options are applied last.
func Build(cfg *config.Config, log zerolog.Logger, opts ...chain.Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	programs, err := ecom.ParsePrograms(cfg.Programs)
	if err != nil {
		return nil, err
	}
	payer, err := chain.LoadPayer(cfg.Wallet, log)
	if err != nil {
		return nil, fmt.Errorf("payer: %w", err)
	}

	commit := chain.ParseCommitment(cfg.Cluster.Commitment)
	chainOpts := []chain.Option{
		chain.WithConfirmTimeout(time.Duration(cfg.Cluster.ConfirmTimeoutMs) * time.Millisecond),
		chain.WithLamportsPerSignature(cfg.Cluster.LamportsPerSignature),
		chain.WithMaxAirdrop(cfg.Cluster.MaxAirdropLamports),
	}
	if strings.EqualFold(cfg.Cluster.ConfirmMode, "ws") {
		chainOpts = append(chainOpts, chain.WithConfirmer(chain.NewWSConfirmer(cfg.Cluster.WsURL, commit, log)))
	}
	client := chain.NewClient(cfg.Cluster.RpcURL, cfg.Cluster.Commitment, log, append(chainOpts, opts...)...)

	a := &App{Chain: client, Ledger: journal.NewLedger(8)}
	recorders := journal.Multi{a.Ledger}
	if cfg.Journal.Path != "" {
		rec, err := journal.NewJSONLRecorder(cfg.Journal.Path)
		if err != nil {
			return nil, fmt.Errorf("journal: %w", err)
		}
		a.recorder = rec
		recorders = append(recorders, rec)
	}

	a.Service = ecom.New(client, payer, programs, log, ecom.WithJournal(recorders))
	a.Runner = runner.New(client, a.Service, cfg, log)
	return a, nil
}

// Close releases the journal file.
func (a *App) Close() error {
	if a.recorder == nil {
		return nil
	}
	return a.recorder.Close()
}
