package ecom

import (
	"context"
	"fmt"

	solana "github.com/gagliardetto/solana-go"

	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/instruction"
	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/record"
)

func (s *Service) InitializeProfileAccount(ctx context.Context) (solana.Signature, error) {
	ix := instruction.NewInitializeProfile(s.programs.Ecom, s.accounts(s.profile))
	return s.submit(ctx, s.profile, "Profile", instruction.InitializeProfile, ix)
}

// UpdateProfile overwrites the stored profile; name must fit in 64 bytes.
func (s *Service) UpdateProfile(ctx context.Context, name string, date, month, year uint32) (solana.Signature, error) {
	ix, err := instruction.NewUpdateProfile(s.programs.Ecom, s.accounts(s.profile), name, date, month, year)
	if err != nil {
		return solana.Signature{}, err
	}
	return s.submit(ctx, s.profile, "Profile", instruction.UpdateProfile, ix)
}

func (s *Service) GetProfile(ctx context.Context) (record.ProfileRecord, error) {
	if !s.profile.ready {
		return record.ProfileRecord{}, fmt.Errorf("%w: call SetProfileProgram first", ErrNotConfigured)
	}
	data, err := s.chain.AccountData(ctx, s.profile.pda)
	if err != nil {
		return record.ProfileRecord{}, err
	}
	rec, err := record.DecodeProfile(data)
	if err != nil {
		return record.ProfileRecord{}, err
	}
	s.log.Info().
		Str("pda", s.profile.pda.String()).
		Str("name", rec.NameString()).
		Uint32("date", rec.Date).
		Uint32("month", rec.Month).
		Uint32("year", rec.Year).
		Msg("profile read")
	return rec, nil
}
