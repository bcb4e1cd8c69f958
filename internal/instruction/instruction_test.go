package instruction

import (
	"errors"
	"strings"
	"testing"

	solana "github.com/gagliardetto/solana-go"

	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/record"
)

func testAccounts() (solana.PublicKey, Accounts) {
	ecom := solana.NewWallet().PublicKey()
	return ecom, Accounts{
		Payer:     solana.NewWallet().PublicKey(),
		PDA:       solana.NewWallet().PublicKey(),
		RecordApp: solana.NewWallet().PublicKey(),
	}
}

func TestParseTag(t *testing.T) {
	for b, want := range map[byte]Tag{0: UpdateAddress, 1: InitializeAddress, 2: InitializeProfile, 3: UpdateProfile} {
		got, err := ParseTag(b)
		if err != nil {
			t.Fatalf("ParseTag(%d) error: %v", b, err)
		}
		if got != want {
			t.Fatalf("ParseTag(%d): want %s got %s", b, want, got)
		}
	}
	if _, err := ParseTag(4); !errors.Is(err, ErrInvalidInstruction) {
		t.Fatalf("expected ErrInvalidInstruction, got %v", err)
	}
}

func TestInitializeAddressInstruction(t *testing.T) {
	ecom, accounts := testAccounts()
	ix := NewInitializeAddress(ecom, accounts)

	if !ix.ProgramID().Equals(ecom) {
		t.Fatalf("expected ecom program id")
	}
	data, _ := ix.Data()
	if len(data) != 1 || data[0] != byte(InitializeAddress) {
		t.Fatalf("unexpected data %v", data)
	}
	metas := ix.Accounts()
	if len(metas) != 4 {
		t.Fatalf("expected 4 accounts, got %d", len(metas))
	}
	if !metas[0].IsSigner || !metas[0].IsWritable || !metas[0].PublicKey.Equals(accounts.Payer) {
		t.Fatalf("payer meta wrong: %+v", metas[0])
	}
	if metas[1].IsSigner || !metas[1].IsWritable || !metas[1].PublicKey.Equals(accounts.PDA) {
		t.Fatalf("pda meta wrong: %+v", metas[1])
	}
	if metas[2].IsWritable || !metas[2].PublicKey.Equals(accounts.RecordApp) {
		t.Fatalf("record program meta wrong: %+v", metas[2])
	}
	if !metas[3].PublicKey.Equals(solana.SystemProgramID) {
		t.Fatalf("expected system program last, got %s", metas[3].PublicKey)
	}
}

func TestUpdateAddressInstruction(t *testing.T) {
	ecom, accounts := testAccounts()
	ix, err := NewUpdateAddress(ecom, accounts, "1243 via moulton parkway")
	if err != nil {
		t.Fatalf("NewUpdateAddress error: %v", err)
	}
	if len(ix.Accounts()) != 3 {
		t.Fatalf("expected 3 accounts, got %d", len(ix.Accounts()))
	}
	data, _ := ix.Data()
	tag, payload, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if tag != UpdateAddress {
		t.Fatalf("unexpected tag %s", tag)
	}
	rec, err := record.DecodeAddress(payload)
	if err != nil {
		t.Fatalf("DecodeAddress error: %v", err)
	}
	if rec.String() != "1243 via moulton parkway" {
		t.Fatalf("unexpected address %q", rec.String())
	}
}

func TestUpdateAddressTooLong(t *testing.T) {
	ecom, accounts := testAccounts()
	if _, err := NewUpdateAddress(ecom, accounts, strings.Repeat("x", 600)); !errors.Is(err, record.ErrFieldTooLong) {
		t.Fatalf("expected ErrFieldTooLong, got %v", err)
	}
}

func TestProfileInstructions(t *testing.T) {
	ecom, accounts := testAccounts()
	initIx := NewInitializeProfile(ecom, accounts)
	data, _ := initIx.Data()
	if len(data) != 1 || data[0] != byte(InitializeProfile) {
		t.Fatalf("unexpected init data %v", data)
	}

	ix, err := NewUpdateProfile(ecom, accounts, "John Smith", 1, 1, 1970)
	if err != nil {
		t.Fatalf("NewUpdateProfile error: %v", err)
	}
	data, _ = ix.Data()
	if len(data) != 1+record.ProfileSize || data[0] != byte(UpdateProfile) {
		t.Fatalf("unexpected update data length %d tag %d", len(data), data[0])
	}
	rec, err := record.DecodeProfile(data[1:])
	if err != nil {
		t.Fatalf("DecodeProfile error: %v", err)
	}
	if rec.NameString() != "John Smith" || rec.Year != 1970 {
		t.Fatalf("unexpected profile %+v", rec)
	}
}

func TestDecodeRejectsBadPayload(t *testing.T) {
	if _, _, err := Decode(nil); !errors.Is(err, ErrInvalidInstruction) {
		t.Fatalf("expected error for empty data")
	}
	if _, _, err := Decode([]byte{byte(UpdateAddress), 1, 2}); !errors.Is(err, ErrInvalidInstruction) {
		t.Fatalf("expected error for short payload")
	}
	if _, _, err := Decode([]byte{byte(InitializeAddress), 9}); !errors.Is(err, ErrInvalidInstruction) {
		t.Fatalf("expected error for trailing bytes")
	}
}

func TestTagString(t *testing.T) {
	if UpdateProfile.String() != "update_profile" {
		t.Fatalf("unexpected name %s", UpdateProfile)
	}
	if Tag(9).String() != "unknown(9)" {
		t.Fatalf("unexpected name %s", Tag(9))
	}
}
