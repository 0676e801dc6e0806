package contracts

// RequiredParties returns the party set whose signatures gate fully_signed.
func RequiredParties(requiresGuardian, requiresWitness bool) []string {
	required := []string{PartyAthlete, PartyBrand}
	if requiresGuardian {
		required = append(required, PartyGuardian)
	}
	if requiresWitness {
		required = append(required, PartyWitness)
	}
	return required
}

// DeriveStatus recomputes the active contract status from the full signature
// set. It is the sole source of truth for pending_signature, partially_signed
// and fully_signed; cancelled/voided are terminal transitions applied by the
// workflow, never by derivation. The derivation runs fresh against every
// signature each time rather than patching incrementally, so persisted status
// cannot drift from the signature rows.
func DeriveStatus(signatures []*ContractSignature, requiresGuardian, requiresWitness bool) string {
	signedBy := make(map[string]bool, len(signatures))
	anySigned := false
	for _, sig := range signatures {
		if sig == nil {
			continue
		}
		if sig.SignatureStatus == SignatureStatusSigned {
			signedBy[sig.PartyType] = true
			anySigned = true
		}
	}

	allRequiredSigned := true
	for _, party := range RequiredParties(requiresGuardian, requiresWitness) {
		if !signedBy[party] {
			allRequiredSigned = false
			break
		}
	}
	if allRequiredSigned {
		return ContractStatusFullySigned
	}
	if anySigned {
		return ContractStatusPartiallySigned
	}
	return ContractStatusPendingSignature
}
