// Package settle implements the settlement calculator: a pure function from
// plan economics, completion, and principal to a payout. It holds no state so
// it can be property-tested independent of the ledger and the pool.
package settle

import (
	"github.com/termstake/termstake/internal/domain/plan"
)

// Settlement thresholds and rates.
const (
	// BonusThresholdPct is the completion cliff: at or above it the payout is
	// a linearly scaled bonus, below it a flat penalty.
	BonusThresholdPct = 50

	// EarlyExitPenaltyPct is the fixed early-exit forfeiture, applied
	// regardless of tier, goal type, or progress.
	EarlyExitPenaltyPct = 20

	bpsDenominator = 10_000
	pctDenominator = 100
)

// CompletionPercent returns floor(done*100/required) as an integer 0..100.
// Done counts above required are clamped so the result never exceeds 100.
func CompletionPercent(done, required uint64) uint64 {
	if required == 0 {
		return 0
	}
	if done > required {
		done = required
	}
	return done * pctDenominator / required
}

// Payout computes the settlement for a claim.
//
// At or above the threshold the payout is the principal plus a bonus scaled
// linearly by completion. The max bonus is computed first and then scaled,
// flooring at each step; the order matters for exact figures (a 5 STX stake
// at 66% pays 5_396_000, not 5_400_000).
//
// Below the threshold the penalty is flat: the same payout at 49% and at 0%.
func Payout(p plan.Plan, amount, completionPct uint64) uint64 {
	if completionPct > pctDenominator {
		completionPct = pctDenominator
	}
	if completionPct >= BonusThresholdPct {
		maxBonus := amount * p.BonusRateBps / bpsDenominator
		return amount + maxBonus*completionPct/pctDenominator
	}
	penaltyPct := p.PenaltyRateBps / pctDenominator
	return amount * (pctDenominator - penaltyPct) / pctDenominator
}

// EarlyExitPayout is the fixed early-exit return: 80% of the principal.
func EarlyExitPayout(amount uint64) uint64 {
	return amount * (pctDenominator - EarlyExitPenaltyPct) / pctDenominator
}
