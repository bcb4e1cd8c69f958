package instruction

import (
	solana "github.com/gagliardetto/solana-go"

	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/record"
)

// Accounts names the keys every ecom instruction touches.
type Accounts struct {
	Payer     solana.PublicKey
	PDA       solana.PublicKey
	RecordApp solana.PublicKey // address or profile program
}

func (a Accounts) metas(withSystem bool) solana.AccountMetaSlice {
	metas := solana.AccountMetaSlice{
		solana.NewAccountMeta(a.Payer, true, true),
		solana.NewAccountMeta(a.PDA, true, false),
		solana.NewAccountMeta(a.RecordApp, false, false),
	}
	if withSystem {
		metas = append(metas, solana.NewAccountMeta(solana.SystemProgramID, false, false))
	}
	return metas
}

// NewInitializeAddress asks the ecom program to create the address PDA account.
func NewInitializeAddress(ecom solana.PublicKey, accounts Accounts) *solana.GenericInstruction {
	return solana.NewInstruction(ecom, accounts.metas(true), encode(InitializeAddress, nil))
}

// NewUpdateAddress overwrites the address PDA with address.
func NewUpdateAddress(ecom solana.PublicKey, accounts Accounts, address string) (*solana.GenericInstruction, error) {
	payload, err := record.EncodeAddress(address)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(ecom, accounts.metas(false), encode(UpdateAddress, payload)), nil
}

// NewInitializeProfile asks the ecom program to create the profile PDA account.
func NewInitializeProfile(ecom solana.PublicKey, accounts Accounts) *solana.GenericInstruction {
	return solana.NewInstruction(ecom, accounts.metas(true), encode(InitializeProfile, nil))
}

// NewUpdateProfile overwrites the profile PDA.
func NewUpdateProfile(ecom solana.PublicKey, accounts Accounts, name string, date, month, year uint32) (*solana.GenericInstruction, error) {
	payload, err := record.EncodeProfile(name, date, month, year)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(ecom, accounts.metas(false), encode(UpdateProfile, payload)), nil
}
