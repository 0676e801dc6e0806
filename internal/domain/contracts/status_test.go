package contracts

import "testing"

func sig(party, status string) *ContractSignature {
	return &ContractSignature{PartyType: party, SignatureStatus: status}
}

func TestDeriveStatusNoSignatures(t *testing.T) {
	got := DeriveStatus([]*ContractSignature{
		sig(PartyAthlete, SignatureStatusPending),
		sig(PartyBrand, SignatureStatusPending),
	}, false, false)
	if got != ContractStatusPendingSignature {
		t.Fatalf("DeriveStatus: want=%q got=%q", ContractStatusPendingSignature, got)
	}
}

func TestDeriveStatusCoreOnlyFullySignedEitherOrder(t *testing.T) {
	// athlete first
	got := DeriveStatus([]*ContractSignature{
		sig(PartyAthlete, SignatureStatusSigned),
		sig(PartyBrand, SignatureStatusPending),
	}, false, false)
	if got != ContractStatusPartiallySigned {
		t.Fatalf("after athlete: want=%q got=%q", ContractStatusPartiallySigned, got)
	}

	got = DeriveStatus([]*ContractSignature{
		sig(PartyAthlete, SignatureStatusSigned),
		sig(PartyBrand, SignatureStatusSigned),
	}, false, false)
	if got != ContractStatusFullySigned {
		t.Fatalf("both signed: want=%q got=%q", ContractStatusFullySigned, got)
	}

	// brand first reaches the same terminal state
	got = DeriveStatus([]*ContractSignature{
		sig(PartyBrand, SignatureStatusSigned),
		sig(PartyAthlete, SignatureStatusSigned),
	}, false, false)
	if got != ContractStatusFullySigned {
		t.Fatalf("reverse order: want=%q got=%q", ContractStatusFullySigned, got)
	}
}

func TestDeriveStatusGuardianRequiredBlocksFullySigned(t *testing.T) {
	sigs := []*ContractSignature{
		sig(PartyAthlete, SignatureStatusSigned),
		sig(PartyBrand, SignatureStatusSigned),
		sig(PartyGuardian, SignatureStatusPending),
	}
	got := DeriveStatus(sigs, true, false)
	if got != ContractStatusPartiallySigned {
		t.Fatalf("guardian pending: want=%q got=%q", ContractStatusPartiallySigned, got)
	}

	sigs[2].SignatureStatus = SignatureStatusSigned
	got = DeriveStatus(sigs, true, false)
	if got != ContractStatusFullySigned {
		t.Fatalf("guardian signed: want=%q got=%q", ContractStatusFullySigned, got)
	}
}

func TestDeriveStatusWitnessRequired(t *testing.T) {
	sigs := []*ContractSignature{
		sig(PartyAthlete, SignatureStatusSigned),
		sig(PartyBrand, SignatureStatusSigned),
		sig(PartyWitness, SignatureStatusPending),
	}
	if got := DeriveStatus(sigs, false, true); got != ContractStatusPartiallySigned {
		t.Fatalf("witness pending: want=%q got=%q", ContractStatusPartiallySigned, got)
	}
}

func TestDeriveStatusDeclineDoesNotCountAsSigned(t *testing.T) {
	got := DeriveStatus([]*ContractSignature{
		sig(PartyAthlete, SignatureStatusPending),
		sig(PartyBrand, SignatureStatusPending),
		sig(PartyWitness, SignatureStatusDeclined),
	}, false, true)
	if got != ContractStatusPendingSignature {
		t.Fatalf("declined witness only: want=%q got=%q", ContractStatusPendingSignature, got)
	}
}

func TestRequiredParties(t *testing.T) {
	base := RequiredParties(false, false)
	if len(base) != 2 {
		t.Fatalf("base required parties: want=2 got=%d", len(base))
	}
	all := RequiredParties(true, true)
	if len(all) != 4 {
		t.Fatalf("all required parties: want=4 got=%d", len(all))
	}
}
