package services

import (
	"testing"

	"github.com/google/uuid"

	types "github.com/athletelink/athletelink-backend/internal/domain"
	"github.com/athletelink/athletelink-backend/internal/platform/apierr"
)

func TestContractGenerateUnknownDeal(t *testing.T) {
	e := newEnv(t)
	_, err := e.contracts.Generate(e.dbc(), GenerateContractInput{
		DealID:       uuid.New(),
		TemplateKind: "social_media_promotion",
	})
	if !apierr.Is(err, apierr.KindNotFound) {
		t.Fatalf("Generate: expected not_found, got %v", err)
	}
}

func TestContractGenerateRejectsSecondActiveContract(t *testing.T) {
	e := newEnv(t)
	deal, _ := e.generateActiveContract(t, false, false)

	_, err := e.contracts.Generate(e.dbc(), GenerateContractInput{
		DealID:       deal.ID,
		TemplateKind: "social_media_promotion",
	})
	if !apierr.Is(err, apierr.KindInvalidStatus) {
		t.Fatalf("Generate (second): expected invalid_status, got %v", err)
	}
}

func TestContractGenerateUnknownTemplate(t *testing.T) {
	e := newEnv(t)
	deal := e.seedDeal(t, 10000, types.DealStatusAccepted)
	_, err := e.contracts.Generate(e.dbc(), GenerateContractInput{
		DealID:       deal.ID,
		TemplateKind: "no_such_template",
	})
	if !apierr.Is(err, apierr.KindInvalidArgument) {
		t.Fatalf("Generate: expected invalid_argument, got %v", err)
	}
}

func TestContractSendRequiresDraft(t *testing.T) {
	e := newEnv(t)
	_, view := e.generateActiveContract(t, false, false)

	_, err := e.contracts.SendForSignature(e.dbc(), view.Contract.ID)
	if !apierr.Is(err, apierr.KindInvalidStatus) {
		t.Fatalf("SendForSignature (repeat): expected invalid_status, got %v", err)
	}
}

func TestContractSignRequiresActiveContract(t *testing.T) {
	e := newEnv(t)
	deal := e.seedDeal(t, 10000, types.DealStatusAccepted)
	view, err := e.contracts.Generate(e.dbc(), GenerateContractInput{
		DealID:       deal.ID,
		TemplateKind: "social_media_promotion",
		Parties: []ContractPartyInput{
			{PartyType: types.PartyAthlete, Name: "Sam Athlete"},
			{PartyType: types.PartyBrand, Name: "Pat Brand"},
		},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// Still draft; signing is not open yet.
	_, err = e.contracts.Sign(e.dbc(), view.Contract.ID, types.PartyAthlete, "Sam Athlete", "typed")
	if !apierr.Is(err, apierr.KindInvalidStatus) {
		t.Fatalf("Sign on draft: expected invalid_status, got %v", err)
	}
}

func TestContractFullSigningBothOrders(t *testing.T) {
	orders := [][]string{
		{types.PartyAthlete, types.PartyBrand},
		{types.PartyBrand, types.PartyAthlete},
	}
	for _, order := range orders {
		e := newEnv(t)
		_, view := e.generateActiveContract(t, false, false)

		c, err := e.contracts.Sign(e.dbc(), view.Contract.ID, order[0], "sig", "typed")
		if err != nil {
			t.Fatalf("Sign %s: %v", order[0], err)
		}
		if c.Status != types.ContractStatusPartiallySigned {
			t.Fatalf("after %s sign: status %s, want partially_signed", order[0], c.Status)
		}

		c, err = e.contracts.Sign(e.dbc(), view.Contract.ID, order[1], "sig", "typed")
		if err != nil {
			t.Fatalf("Sign %s: %v", order[1], err)
		}
		if c.Status != types.ContractStatusFullySigned {
			t.Fatalf("after both sign (%v): status %s, want fully_signed", order, c.Status)
		}
		if c.SignedAt == nil {
			t.Fatalf("fully signed contract missing signed_at")
		}
	}
}

func TestContractGuardianBlocksFullySigned(t *testing.T) {
	e := newEnv(t)
	_, view := e.generateActiveContract(t, true, false)

	for _, party := range []string{types.PartyAthlete, types.PartyBrand} {
		if _, err := e.contracts.Sign(e.dbc(), view.Contract.ID, party, "sig", "typed"); err != nil {
			t.Fatalf("Sign %s: %v", party, err)
		}
	}
	got, err := e.contracts.Get(e.dbc(), view.Contract.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Contract.Status != types.ContractStatusPartiallySigned {
		t.Fatalf("without guardian: status %s, want partially_signed", got.Contract.Status)
	}

	c, err := e.contracts.Sign(e.dbc(), view.Contract.ID, types.PartyGuardian, "sig", "typed")
	if err != nil {
		t.Fatalf("Sign guardian: %v", err)
	}
	if c.Status != types.ContractStatusFullySigned {
		t.Fatalf("after guardian sign: status %s, want fully_signed", c.Status)
	}
}

func TestContractRepeatSignAlreadyProcessed(t *testing.T) {
	e := newEnv(t)
	_, view := e.generateActiveContract(t, false, false)

	if _, err := e.contracts.Sign(e.dbc(), view.Contract.ID, types.PartyAthlete, "sig", "typed"); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	_, err := e.contracts.Sign(e.dbc(), view.Contract.ID, types.PartyAthlete, "sig", "typed")
	if !apierr.Is(err, apierr.KindAlreadyProcessed) {
		t.Fatalf("Sign (repeat): expected already_processed, got %v", err)
	}

	// The failed attempt must not move the contract.
	got, err := e.contracts.Get(e.dbc(), view.Contract.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Contract.Status != types.ContractStatusPartiallySigned {
		t.Fatalf("after failed repeat sign: status %s, want partially_signed", got.Contract.Status)
	}
}

func TestContractCorePartyDeclineCancels(t *testing.T) {
	e := newEnv(t)
	_, view := e.generateActiveContract(t, false, false)

	if _, err := e.contracts.Sign(e.dbc(), view.Contract.ID, types.PartyAthlete, "sig", "typed"); err != nil {
		t.Fatalf("Sign athlete: %v", err)
	}
	c, err := e.contracts.Decline(e.dbc(), view.Contract.ID, types.PartyBrand, "terms unacceptable")
	if err != nil {
		t.Fatalf("Decline brand: %v", err)
	}
	if c.Status != types.ContractStatusCancelled {
		t.Fatalf("after brand decline: status %s, want cancelled", c.Status)
	}

	// Cancelled is terminal; nobody can sign anymore.
	_, err = e.contracts.Sign(e.dbc(), view.Contract.ID, types.PartyBrand, "sig", "typed")
	if !apierr.Is(err, apierr.KindInvalidStatus) {
		t.Fatalf("Sign after cancel: expected invalid_status, got %v", err)
	}
}

func TestContractWitnessDeclineDoesNotCancel(t *testing.T) {
	e := newEnv(t)
	_, view := e.generateActiveContract(t, false, true)

	c, err := e.contracts.Decline(e.dbc(), view.Contract.ID, types.PartyWitness, "unavailable")
	if err != nil {
		t.Fatalf("Decline witness: %v", err)
	}
	if c.Status == types.ContractStatusCancelled {
		t.Fatalf("witness decline cancelled the contract")
	}

	// Core parties can keep signing, but the contract can never fully sign
	// while the witness slot is declined.
	for _, party := range []string{types.PartyAthlete, types.PartyBrand} {
		if _, err := e.contracts.Sign(e.dbc(), view.Contract.ID, party, "sig", "typed"); err != nil {
			t.Fatalf("Sign %s: %v", party, err)
		}
	}
	got, err := e.contracts.Get(e.dbc(), view.Contract.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Contract.Status != types.ContractStatusPartiallySigned {
		t.Fatalf("with declined witness: status %s, want partially_signed", got.Contract.Status)
	}
}

func TestContractVoid(t *testing.T) {
	e := newEnv(t)
	_, view := e.generateActiveContract(t, false, false)

	c, err := e.contracts.Void(e.dbc(), view.Contract.ID, "issued in error")
	if err != nil {
		t.Fatalf("Void: %v", err)
	}
	if c.Status != types.ContractStatusVoided || c.VoidedAt == nil || c.VoidReason != "issued in error" {
		t.Fatalf("Void: unexpected contract %+v", c)
	}

	_, err = e.contracts.Void(e.dbc(), view.Contract.ID, "again")
	if !apierr.Is(err, apierr.KindAlreadyProcessed) {
		t.Fatalf("Void (repeat): expected already_processed, got %v", err)
	}
}
