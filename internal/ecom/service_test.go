package ecom

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	solana "github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/chain"
	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/chain/chaintest"
	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/config"
	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/instruction"
	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/journal"
	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/record"
)

var testPrograms = config.Programs{
	Ecom:    "Grcp6Yu6kMGGBW9QXhvbGmmdVKW7xozrp4h7VXFDJD88",
	Address: "6TQChuizuE3CWd7zECAqszW821uJ8Pe8c9mf6bvveVqm",
	Profile: "HHm78FyyA8jdnDPCqZnCwdpJkd1te5V35gt5azBwuwKW",
}

// ecomProgram mimics the on-chain ecom program against the fake cluster.
func ecomProgram(c *chaintest.Cluster, tx *solana.Transaction) error {
	for _, ci := range tx.Message.Instructions {
		pda := tx.Message.AccountKeys[ci.Accounts[1]]
		tag, payload, err := instruction.Decode(ci.Data)
		if err != nil {
			return err
		}
		_, exists := c.AccountData(pda)
		switch tag {
		case instruction.InitializeAddress, instruction.InitializeProfile:
			if exists {
				return errors.New("account already initialized")
			}
			size := record.AddressSize
			if tag == instruction.InitializeProfile {
				size = record.ProfileSize
			}
			c.WriteAccount(pda, make([]byte, size))
		default:
			if !exists {
				return errors.New("account not initialized")
			}
			c.WriteAccount(pda, payload)
		}
	}
	return nil
}

type fixture struct {
	cluster  *chaintest.Cluster
	service  *Service
	ledger   *journal.Ledger
	programs Programs
	logs     *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	programs, err := ParsePrograms(testPrograms)
	if err != nil {
		t.Fatalf("ParsePrograms error: %v", err)
	}
	cluster := chaintest.New()
	cluster.Deploy(programs.Ecom, true)
	cluster.Deploy(programs.Address, true)
	cluster.Deploy(programs.Profile, true)
	cluster.OnSend = ecomProgram

	var logs bytes.Buffer
	logger := zerolog.New(&logs)
	client := chain.NewClient("http://unused", "confirmed", logger, chain.WithRPC(cluster))
	ledger := journal.NewLedger(4)
	svc := New(client, solana.NewWallet().PrivateKey, programs, logger, WithJournal(ledger))
	return &fixture{cluster: cluster, service: svc, ledger: ledger, programs: programs, logs: &logs}
}

func TestAddressFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.service.SetAddressProgram(ctx); err != nil {
		t.Fatalf("SetAddressProgram error: %v", err)
	}
	want, _, _ := chain.FindPDA(AddressSeed, f.service.Payer(), f.programs.Ecom)
	if !f.service.AddressPDA().Equals(want) {
		t.Fatalf("address pda mismatch: want %s got %s", want, f.service.AddressPDA())
	}

	if _, err := f.service.InitializeAddressAccount(ctx); err != nil {
		t.Fatalf("InitializeAddressAccount error: %v", err)
	}
	const address = "1243 via moulton parkway, Laguna Niguel, CA, USA"
	if _, err := f.service.UpdateAddress(ctx, address); err != nil {
		t.Fatalf("UpdateAddress error: %v", err)
	}
	rec, err := f.service.GetAddress(ctx)
	if err != nil {
		t.Fatalf("GetAddress error: %v", err)
	}
	if rec.String() != address {
		t.Fatalf("expected %q, got %q", address, rec.String())
	}

	receipts := f.ledger.Snapshot()
	if len(receipts) != 2 {
		t.Fatalf("expected 2 receipts, got %d", len(receipts))
	}
	if receipts[0].Kind != "initialize_address" || receipts[1].Kind != "update_address" {
		t.Fatalf("unexpected receipt kinds %s, %s", receipts[0].Kind, receipts[1].Kind)
	}
	if receipts[0].PayloadLen != 0 || receipts[0].Tag != uint8(instruction.InitializeAddress) {
		t.Fatalf("unexpected initialize receipt %+v", receipts[0])
	}
	if receipts[1].PayloadLen != record.AddressSize || receipts[1].Account != want.String() || receipts[1].Status != journal.StatusConfirmed {
		t.Fatalf("unexpected update receipt %+v", receipts[1])
	}
	if !strings.Contains(f.logs.String(), "instruction confirmed") {
		t.Fatalf("expected confirmation log, got %s", f.logs.String())
	}
}

func TestProfileFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.service.CheckEcomProgram(ctx); err != nil {
		t.Fatalf("CheckEcomProgram error: %v", err)
	}
	if err := f.service.SetProfileProgram(ctx); err != nil {
		t.Fatalf("SetProfileProgram error: %v", err)
	}
	if _, err := f.service.InitializeProfileAccount(ctx); err != nil {
		t.Fatalf("InitializeProfileAccount error: %v", err)
	}
	if _, err := f.service.UpdateProfile(ctx, "John Smith", 1, 1, 1970); err != nil {
		t.Fatalf("UpdateProfile error: %v", err)
	}
	rec, err := f.service.GetProfile(ctx)
	if err != nil {
		t.Fatalf("GetProfile error: %v", err)
	}
	if rec.NameString() != "John Smith" || rec.Date != 1 || rec.Month != 1 || rec.Year != 1970 {
		t.Fatalf("unexpected profile %+v", rec)
	}
	if f.service.ProfilePDA().Equals(f.service.AddressPDA()) {
		t.Fatalf("profile pda should differ from unset address pda")
	}
}

func TestOperationsRequireSetup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.service.UpdateAddress(ctx, "x"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := f.service.GetProfile(ctx); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if len(f.cluster.Sent) != 0 {
		t.Fatalf("nothing should be sent before setup")
	}
}

func TestUpdateAddressTooLongSendsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.service.SetAddressProgram(ctx); err != nil {
		t.Fatalf("SetAddressProgram error: %v", err)
	}
	if _, err := f.service.UpdateAddress(ctx, strings.Repeat("a", record.AddressSize+1)); !errors.Is(err, record.ErrFieldTooLong) {
		t.Fatalf("expected ErrFieldTooLong, got %v", err)
	}
	if len(f.cluster.Sent) != 0 {
		t.Fatalf("expected no transaction, got %d", len(f.cluster.Sent))
	}
}

func TestInitializeTwiceFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.service.SetAddressProgram(ctx); err != nil {
		t.Fatalf("SetAddressProgram error: %v", err)
	}
	if _, err := f.service.InitializeAddressAccount(ctx); err != nil {
		t.Fatalf("first initialize error: %v", err)
	}
	if _, err := f.service.InitializeAddressAccount(ctx); !errors.Is(err, chain.ErrTransactionFailed) {
		t.Fatalf("expected ErrTransactionFailed, got %v", err)
	}
	receipts := f.ledger.Snapshot()
	if len(receipts) != 2 {
		t.Fatalf("expected both submissions journaled, got %d", len(receipts))
	}
	if receipts[0].Status != journal.StatusConfirmed || receipts[0].Error != "" {
		t.Fatalf("unexpected first receipt %+v", receipts[0])
	}
	failed := receipts[1]
	if failed.Status != journal.StatusFailed || failed.Kind != "initialize_address" || failed.Signature == "" {
		t.Fatalf("unexpected failed receipt %+v", failed)
	}
	if !strings.Contains(failed.Error, "already initialized") {
		t.Fatalf("expected program error in receipt, got %q", failed.Error)
	}
}

func TestRejectedSendIsNotJournaled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.service.SetAddressProgram(ctx); err != nil {
		t.Fatalf("SetAddressProgram error: %v", err)
	}
	f.cluster.SendErr = errors.New("preflight: insufficient funds")
	if _, err := f.service.InitializeAddressAccount(ctx); err == nil {
		t.Fatalf("expected send error")
	}
	if len(f.ledger.Snapshot()) != 0 {
		t.Fatalf("rejected sends never reached the cluster and must not be journaled")
	}
}

func TestSetupFailsForUndeployedProgram(t *testing.T) {
	f := newFixture(t)
	f.cluster.Deploy(f.programs.Address, false)
	if err := f.service.SetAddressProgram(context.Background()); !errors.Is(err, chain.ErrProgramNotExecutable) {
		t.Fatalf("expected ErrProgramNotExecutable, got %v", err)
	}

	programs := f.programs
	programs.Profile = solana.PublicKey{}
	svc := New(chain.NewClient("http://unused", "confirmed", zerolog.Nop(), chain.WithRPC(f.cluster)), solana.NewWallet().PrivateKey, programs, zerolog.Nop())
	if err := svc.SetProfileProgram(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured for empty profile id, got %v", err)
	}
}

func TestGetAddressBeforeInitialize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.service.SetAddressProgram(ctx); err != nil {
		t.Fatalf("SetAddressProgram error: %v", err)
	}
	if _, err := f.service.GetAddress(ctx); !errors.Is(err, chain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestParsePrograms(t *testing.T) {
	if _, err := ParsePrograms(config.Programs{Ecom: "not-base58!", Address: testPrograms.Address}); err == nil {
		t.Fatalf("expected error for bad ecom id")
	}
	p, err := ParsePrograms(config.Programs{Ecom: testPrograms.Ecom, Address: testPrograms.Address})
	if err != nil {
		t.Fatalf("ParsePrograms error: %v", err)
	}
	if !p.Profile.IsZero() {
		t.Fatalf("expected zero profile id")
	}
}
