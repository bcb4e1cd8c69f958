// Package ecom drives the ecom program: it owns the payer, the program ids and the derived
// record accounts, and submits the initialize and update instructions for both record kinds.
package ecom

import (
	"context"
	"errors"
	"fmt"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/chain"
	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/config"
	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/instruction"
	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/journal"
	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/metrics"
)

const (
	AddressSeed = "address"
	ProfileSeed = "profile"
)

// ErrNotConfigured is returned when a record operation runs before its program was checked.
var ErrNotConfigured = errors.New("ecom: program not configured")

// Chain is the cluster surface the service needs; *chain.Client satisfies it.
type Chain interface {
	CheckProgram(ctx context.Context, name string, programID solana.PublicKey) error
	SendAndConfirm(ctx context.Context, payer solana.PrivateKey, instructions ...solana.Instruction) (solana.Signature, error)
	AccountData(ctx context.Context, account solana.PublicKey) ([]byte, error)
}

// Programs holds the deployed program ids.
type Programs struct {
	Ecom    solana.PublicKey
	Address solana.PublicKey
	Profile solana.PublicKey
}

// ParsePrograms decodes the base58 ids from config. Profile may be empty.
func ParsePrograms(cfg config.Programs) (Programs, error) {
	var p Programs
	var err error
	if p.Ecom, err = solana.PublicKeyFromBase58(cfg.Ecom); err != nil {
		return p, fmt.Errorf("ecom program id: %w", err)
	}
	if p.Address, err = solana.PublicKeyFromBase58(cfg.Address); err != nil {
		return p, fmt.Errorf("address program id: %w", err)
	}
	if cfg.Profile != "" {
		if p.Profile, err = solana.PublicKeyFromBase58(cfg.Profile); err != nil {
			return p, fmt.Errorf("profile program id: %w", err)
		}
	}
	return p, nil
}

type target struct {
	program solana.PublicKey
	pda     solana.PublicKey
	ready   bool
}

// Service is not safe for concurrent use; a run drives it step by step.
type Service struct {
	chain    Chain
	payer    solana.PrivateKey
	programs Programs
	log      zerolog.Logger
	journal  journal.Recorder
	now      func() time.Time

	ecomChecked bool
	address     target
	profile     target
}

type Option func(*Service)

// WithJournal records a receipt for every instruction the cluster accepted, whether it
// later confirmed or failed.
func WithJournal(r journal.Recorder) Option {
	return func(s *Service) { s.journal = r }
}

func New(c Chain, payer solana.PrivateKey, programs Programs, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		chain:    c,
		payer:    payer,
		programs: programs,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Payer returns the signing account's public key.
func (s *Service) Payer() solana.PublicKey { return s.payer.PublicKey() }

// AddressPDA returns the derived address account, zero until SetAddressProgram succeeds.
func (s *Service) AddressPDA() solana.PublicKey { return s.address.pda }

// ProfilePDA returns the derived profile account, zero until SetProfileProgram succeeds.
func (s *Service) ProfilePDA() solana.PublicKey { return s.profile.pda }

// CheckEcomProgram verifies the ecom program is deployed and executable.
func (s *Service) CheckEcomProgram(ctx context.Context) error {
	if err := s.chain.CheckProgram(ctx, "ecom", s.programs.Ecom); err != nil {
		return err
	}
	s.ecomChecked = true
	return nil
}

// SetAddressProgram checks the address program and derives the payer's address PDA under the ecom program.
func (s *Service) SetAddressProgram(ctx context.Context) error {
	t, err := s.setup(ctx, "address", AddressSeed, s.programs.Address)
	if err != nil {
		return err
	}
	s.address = t
	return nil
}

// SetProfileProgram checks the profile program and derives the payer's profile PDA.
func (s *Service) SetProfileProgram(ctx context.Context) error {
	t, err := s.setup(ctx, "profile", ProfileSeed, s.programs.Profile)
	if err != nil {
		return err
	}
	s.profile = t
	return nil
}

func (s *Service) setup(ctx context.Context, name, seed string, program solana.PublicKey) (target, error) {
	if program.IsZero() {
		return target{}, fmt.Errorf("%w: %s program id is empty", ErrNotConfigured, name)
	}
	// record accounts are owned by the ecom program, so it has to be live too
	if !s.ecomChecked {
		if err := s.CheckEcomProgram(ctx); err != nil {
			return target{}, err
		}
	}
	if err := s.chain.CheckProgram(ctx, name, program); err != nil {
		return target{}, err
	}
	pda, bump, err := chain.FindPDA(seed, s.payer.PublicKey(), s.programs.Ecom)
	if err != nil {
		return target{}, fmt.Errorf("derive %s pda: %w", name, err)
	}
	s.log.Info().Str("program", name).Str("pda", pda.String()).Uint8("bump", bump).Msg("account pda derived")
	return target{program: program, pda: pda, ready: true}, nil
}

func (s *Service) accounts(t target) instruction.Accounts {
	return instruction.Accounts{Payer: s.payer.PublicKey(), PDA: t.pda, RecordApp: t.program}
}

func (s *Service) submit(ctx context.Context, t target, name string, tag instruction.Tag, ix *solana.GenericInstruction) (solana.Signature, error) {
	if !t.ready {
		return solana.Signature{}, fmt.Errorf("%w: call Set%sProgram first", ErrNotConfigured, name)
	}

	sig, err := s.chain.SendAndConfirm(ctx, s.payer, ix)
	if err != nil {
		// a zero signature means the transaction never reached the cluster
		if !sig.IsZero() {
			s.record(t, tag, sig, err)
		}
		s.log.Warn().Err(err).Str("kind", tag.String()).Str("sig", sig.String()).Msg("instruction failed")
		return sig, fmt.Errorf("%s: %w", tag, err)
	}
	metrics.InstructionsTotal.WithLabelValues(tag.String()).Inc()
	s.log.Info().Str("kind", tag.String()).Str("pda", t.pda.String()).Str("sig", sig.String()).Msg("instruction confirmed")
	s.record(t, tag, sig, nil)
	return sig, nil
}

func (s *Service) record(t target, tag instruction.Tag, sig solana.Signature, err error) {
	if s.journal == nil {
		return
	}
	receipt := journal.Receipt{
		Kind:       tag.String(),
		Tag:        uint8(tag),
		Program:    s.programs.Ecom.String(),
		Account:    t.pda.String(),
		Signature:  sig.String(),
		PayloadLen: tag.PayloadSize(),
		Status:     journal.StatusConfirmed,
		Ts:         s.now().UTC(),
	}
	if err != nil {
		receipt.Status = journal.StatusFailed
		receipt.Error = err.Error()
	}
	s.journal.Record(receipt)
}
