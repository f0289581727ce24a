// Package plan holds the closed whitelist of valid stake plans: the tier
// denomination table and the tier x goal combinations with their economics.
package plan

import (
	"github.com/termstake/termstake/internal/domain/model"
)

// Plan describes the economics of one whitelisted tier x goal combination.
// Rates are basis points (10000 = 100%).
type Plan struct {
	Tier           model.Tier
	Goal           model.GoalType
	Denomination   uint64
	RequiredTerms  uint64
	LockBlocks     uint64
	BonusRateBps   uint64
	PenaltyRateBps uint64
}

// Lock durations in blocks.
const (
	WeeklyLockBlocks  = 1008
	MonthlyLockBlocks = 4320
)

// Tier denominations in microunits.
const (
	BasicDenomination     = 1_000_000
	CommittedDenomination = 5_000_000
	SeriousDenomination   = 10_000_000
)

// whitelist is the closed set of valid combinations. Any pairing outside it
// is rejected even when tier and goal are independently valid.
var whitelist = []Plan{ //nolint:gochecknoglobals // immutable plan table
	{
		Tier:           model.TierBasic,
		Goal:           model.GoalWeekly,
		Denomination:   BasicDenomination,
		RequiredTerms:  7,
		LockBlocks:     WeeklyLockBlocks,
		BonusRateBps:   1000,
		PenaltyRateBps: 3000,
	},
	{
		Tier:           model.TierCommitted,
		Goal:           model.GoalWeekly,
		Denomination:   CommittedDenomination,
		RequiredTerms:  15,
		LockBlocks:     WeeklyLockBlocks,
		BonusRateBps:   1200,
		PenaltyRateBps: 2500,
	},
	{
		Tier:           model.TierSerious,
		Goal:           model.GoalMonthly,
		Denomination:   SeriousDenomination,
		RequiredTerms:  30,
		LockBlocks:     MonthlyLockBlocks,
		BonusRateBps:   1500,
		PenaltyRateBps: 2000,
	},
}

// TierForAmount resolves an exact tier denomination. Any amount that does not
// exactly match a known denomination fails with ErrInvalidAmount.
func TierForAmount(amount uint64) (model.Tier, error) {
	switch amount {
	case BasicDenomination:
		return model.TierBasic, nil
	case CommittedDenomination:
		return model.TierCommitted, nil
	case SeriousDenomination:
		return model.TierSerious, nil
	default:
		return "", ErrInvalidAmount
	}
}

// Lookup returns the plan for a tier x goal pair, or ErrInvalidGoalType when
// the pairing is not whitelisted.
func Lookup(tier model.Tier, goal model.GoalType) (Plan, error) {
	for _, p := range whitelist {
		if p.Tier == tier && p.Goal == goal {
			return p, nil
		}
	}
	return Plan{}, ErrInvalidGoalType
}

// Resolve validates an (amount, goal) request against the whitelist in one
// step: amount first, then the pairing.
func Resolve(amount uint64, goal model.GoalType) (Plan, error) {
	tier, err := TierForAmount(amount)
	if err != nil {
		return Plan{}, err
	}
	return Lookup(tier, goal)
}

// All returns the full plan table, for the rate-table query.
func All() []Plan {
	out := make([]Plan, len(whitelist))
	copy(out, whitelist)
	return out
}
