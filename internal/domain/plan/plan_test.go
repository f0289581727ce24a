package plan_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/termstake/termstake/internal/domain/model"
	"github.com/termstake/termstake/internal/domain/plan"
)

func TestTierForAmount(t *testing.T) {
	Convey("Given the tier denomination table", t, func() {
		Convey("When resolving exact denominations", func() {
			tier, err := plan.TierForAmount(1_000_000)
			So(err, ShouldBeNil)
			So(tier, ShouldEqual, model.TierBasic)

			tier, err = plan.TierForAmount(5_000_000)
			So(err, ShouldBeNil)
			So(tier, ShouldEqual, model.TierCommitted)

			tier, err = plan.TierForAmount(10_000_000)
			So(err, ShouldBeNil)
			So(tier, ShouldEqual, model.TierSerious)
		})

		Convey("When resolving off-tier amounts", func() {
			for _, amount := range []uint64{0, 1, 999_999, 1_000_001, 2_000_000, 4_999_999, 9_999_999, 10_000_001, 100_000_000} {
				_, err := plan.TierForAmount(amount)
				So(err, ShouldEqual, plan.ErrInvalidAmount)
			}
		})
	})
}

func TestLookup(t *testing.T) {
	Convey("Given the tier x goal whitelist", t, func() {
		Convey("When looking up whitelisted combinations", func() {
			p, err := plan.Lookup(model.TierBasic, model.GoalWeekly)
			So(err, ShouldBeNil)
			So(p.RequiredTerms, ShouldEqual, 7)
			So(p.LockBlocks, ShouldEqual, 1008)
			So(p.BonusRateBps, ShouldEqual, 1000)
			So(p.PenaltyRateBps, ShouldEqual, 3000)

			p, err = plan.Lookup(model.TierCommitted, model.GoalWeekly)
			So(err, ShouldBeNil)
			So(p.RequiredTerms, ShouldEqual, 15)
			So(p.LockBlocks, ShouldEqual, 1008)
			So(p.BonusRateBps, ShouldEqual, 1200)
			So(p.PenaltyRateBps, ShouldEqual, 2500)

			p, err = plan.Lookup(model.TierSerious, model.GoalMonthly)
			So(err, ShouldBeNil)
			So(p.RequiredTerms, ShouldEqual, 30)
			So(p.LockBlocks, ShouldEqual, 4320)
			So(p.BonusRateBps, ShouldEqual, 1500)
			So(p.PenaltyRateBps, ShouldEqual, 2000)
		})

		Convey("When looking up valid parts in an off-whitelist pairing", func() {
			// Both sides valid on their own, rejected as a pair.
			_, err := plan.Lookup(model.TierBasic, model.GoalMonthly)
			So(err, ShouldEqual, plan.ErrInvalidGoalType)

			_, err = plan.Lookup(model.TierCommitted, model.GoalMonthly)
			So(err, ShouldEqual, plan.ErrInvalidGoalType)

			_, err = plan.Lookup(model.TierSerious, model.GoalWeekly)
			So(err, ShouldEqual, plan.ErrInvalidGoalType)
		})

		Convey("When looking up an unknown goal type", func() {
			_, err := plan.Lookup(model.TierBasic, model.GoalType("daily"))
			So(err, ShouldEqual, plan.ErrInvalidGoalType)
		})
	})
}

func TestResolve(t *testing.T) {
	Convey("Given the combined resolver", t, func() {
		Convey("When the amount is off-tier", func() {
			// Amount failure is reported before pairing failure.
			_, err := plan.Resolve(2_000_000, model.GoalType("daily"))
			So(err, ShouldEqual, plan.ErrInvalidAmount)
		})

		Convey("When the amount is valid but the pairing is not", func() {
			_, err := plan.Resolve(10_000_000, model.GoalWeekly)
			So(err, ShouldEqual, plan.ErrInvalidGoalType)
		})

		Convey("When both are valid", func() {
			p, err := plan.Resolve(5_000_000, model.GoalWeekly)
			So(err, ShouldBeNil)
			So(p.Tier, ShouldEqual, model.TierCommitted)
			So(p.Denomination, ShouldEqual, 5_000_000)
		})
	})
}

func TestAll(t *testing.T) {
	Convey("Given the rate-table query", t, func() {
		plans := plan.All()

		Convey("Then it returns the three whitelisted plans", func() {
			So(len(plans), ShouldEqual, 3)
		})

		Convey("Then mutating the copy does not affect the table", func() {
			plans[0].BonusRateBps = 9999
			fresh := plan.All()
			So(fresh[0].BonusRateBps, ShouldEqual, 1000)
		})
	})
}
