package ecom

import (
	"context"
	"fmt"

	solana "github.com/gagliardetto/solana-go"

	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/instruction"
	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/record"
)

// InitializeAddressAccount creates the address PDA account. It only succeeds once per payer.
func (s *Service) InitializeAddressAccount(ctx context.Context) (solana.Signature, error) {
	ix := instruction.NewInitializeAddress(s.programs.Ecom, s.accounts(s.address))
	return s.submit(ctx, s.address, "Address", instruction.InitializeAddress, ix)
}

// UpdateAddress overwrites the stored address; text must fit in 512 bytes.
func (s *Service) UpdateAddress(ctx context.Context, address string) (solana.Signature, error) {
	ix, err := instruction.NewUpdateAddress(s.programs.Ecom, s.accounts(s.address), address)
	if err != nil {
		return solana.Signature{}, err
	}
	return s.submit(ctx, s.address, "Address", instruction.UpdateAddress, ix)
}

// GetAddress reads and decodes the address account.
func (s *Service) GetAddress(ctx context.Context) (record.AddressRecord, error) {
	if !s.address.ready {
		return record.AddressRecord{}, fmt.Errorf("%w: call SetAddressProgram first", ErrNotConfigured)
	}
	data, err := s.chain.AccountData(ctx, s.address.pda)
	if err != nil {
		return record.AddressRecord{}, err
	}
	rec, err := record.DecodeAddress(data)
	if err != nil {
		return record.AddressRecord{}, err
	}
	s.log.Info().Str("pda", s.address.pda.String()).Str("address", rec.String()).Msg("address read")
	return rec, nil
}
