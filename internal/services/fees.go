package services

// ComputeFeeSplit divides a gross amount (minor currency units) into the
// platform fee and the payee net. The fee is ceil(gross * feePercent / 100):
// ceiling so the platform never under-collects on fractional-cent splits.
// fee + net == gross holds for every input.
func ComputeFeeSplit(gross, feePercent int64) (fee, net int64) {
	if gross <= 0 || feePercent <= 0 {
		return 0, gross
	}
	if feePercent >= 100 {
		return gross, 0
	}
	fee = (gross*feePercent + 99) / 100
	return fee, gross - fee
}
