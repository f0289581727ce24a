package service_test

import (
	"context"
	"testing"

	service "github.com/termstake/termstake/internal/app"
	"github.com/termstake/termstake/internal/domain/governance"
	"github.com/termstake/termstake/internal/domain/model"
	"github.com/termstake/termstake/internal/domain/plan"
	"github.com/termstake/termstake/internal/domain/pool"
	. "github.com/smartystreets/goconvey/convey"
)

const startingBalance = 100_000_000

// fundPool pushes value into the bonus pool through a full governance round:
// the deployer proposes, a second admin approves, execution credits the pool.
func fundPool(t *testing.T, svc *service.Service, value uint64) {
	t.Helper()
	ctx := context.Background()
	if err := svc.AddAdmin(ctx, "deployer", "treasurer"); err != nil {
		t.Fatalf("adding admin: %v", err)
	}
	id, err := svc.ProposeAction(ctx, "deployer", model.ActionFundPool, value)
	if err != nil {
		t.Fatalf("proposing fund-pool: %v", err)
	}
	executed, err := svc.ApproveProposal(ctx, "treasurer", id)
	if err != nil {
		t.Fatalf("approving fund-pool: %v", err)
	}
	if !executed {
		t.Fatalf("fund-pool proposal did not execute")
	}
}

func TestIntegration_FullCompletionLifecycle(t *testing.T) {
	Convey("Given a funded pool and a basic weekly stake", t, func() {
		svc := newStartedService(t)
		ctx := context.Background()
		fundPool(t, svc, 10_000_000)

		id, err := svc.CreateStake(ctx, "alice", plan.BasicDenomination, model.GoalWeekly)
		So(err, ShouldBeNil)

		Convey("When all terms are marked and the lock expires", func() {
			for term := uint64(1); term <= 7; term++ {
				So(svc.MarkTermLearned(ctx, "alice", id, term), ShouldBeNil)
			}
			_, err := svc.AdvanceChain(ctx, plan.WeeklyLockBlocks)
			So(err, ShouldBeNil)

			payout, err := svc.ClaimStake(ctx, "alice", id)

			Convey("Then the claim pays principal plus the full bonus", func() {
				So(err, ShouldBeNil)
				So(payout, ShouldEqual, 1_100_000)
				So(svc.AccountBalance(ctx, "alice"), ShouldEqual, startingBalance+100_000)
			})

			Convey("And the bonus came out of the pool", func() {
				So(svc.PoolStats(ctx).Balance, ShouldEqual, 10_000_000-100_000)
			})

			Convey("And the stake is terminal with its payout recorded", func() {
				view, err := svc.Stake(ctx, id)
				So(err, ShouldBeNil)
				So(view.Status, ShouldEqual, model.StatusSettled)
				So(view.Payout, ShouldEqual, 1_100_000)
			})

			Convey("And a second claim is rejected", func() {
				_, err := svc.ClaimStake(ctx, "alice", id)
				So(err, ShouldEqual, service.ErrAlreadySettled)
			})

			Convey("And an early exit after settlement is rejected", func() {
				_, err := svc.EmergencyUnstake(ctx, "alice", id)
				So(err, ShouldEqual, service.ErrAlreadySettled)
			})
		})
	})
}

func TestIntegration_PartialAndPenaltySettlement(t *testing.T) {
	Convey("Given a funded pool", t, func() {
		svc := newStartedService(t)
		ctx := context.Background()
		fundPool(t, svc, 10_000_000)

		Convey("When a committed stake finishes 10 of 15 terms", func() {
			id, err := svc.CreateStake(ctx, "bob", plan.CommittedDenomination, model.GoalWeekly)
			So(err, ShouldBeNil)
			for term := uint64(1); term <= 10; term++ {
				So(svc.MarkTermLearned(ctx, "bob", id, term), ShouldBeNil)
			}
			_, err = svc.AdvanceChain(ctx, plan.WeeklyLockBlocks)
			So(err, ShouldBeNil)

			payout, err := svc.ClaimStake(ctx, "bob", id)

			Convey("Then the bonus scales with completion", func() {
				So(err, ShouldBeNil)
				So(payout, ShouldEqual, 5_396_000)
			})
		})

		Convey("When a basic stake finishes nothing", func() {
			id, err := svc.CreateStake(ctx, "carol", plan.BasicDenomination, model.GoalWeekly)
			So(err, ShouldBeNil)
			_, err = svc.AdvanceChain(ctx, plan.WeeklyLockBlocks)
			So(err, ShouldBeNil)

			poolBefore := svc.PoolStats(ctx).Balance
			payout, err := svc.ClaimStake(ctx, "carol", id)

			Convey("Then the flat penalty applies", func() {
				So(err, ShouldBeNil)
				So(payout, ShouldEqual, 700_000)
			})

			Convey("And the forfeited share lands in the pool", func() {
				So(svc.PoolStats(ctx).Balance, ShouldEqual, poolBefore+300_000)
			})
		})

		Convey("When claiming before the lock expires", func() {
			id, err := svc.CreateStake(ctx, "dave", plan.BasicDenomination, model.GoalWeekly)
			So(err, ShouldBeNil)
			_, err = svc.AdvanceChain(ctx, plan.WeeklyLockBlocks-1)
			So(err, ShouldBeNil)

			_, err = svc.ClaimStake(ctx, "dave", id)

			Convey("Then the claim is rejected and the stake stays active", func() {
				So(err, ShouldEqual, service.ErrStillLocked)
				view, verr := svc.Stake(ctx, id)
				So(verr, ShouldBeNil)
				So(view.Status, ShouldEqual, model.StatusActive)
			})
		})

		Convey("When someone other than the owner claims", func() {
			id, err := svc.CreateStake(ctx, "erin", plan.BasicDenomination, model.GoalWeekly)
			So(err, ShouldBeNil)
			_, err = svc.AdvanceChain(ctx, plan.WeeklyLockBlocks)
			So(err, ShouldBeNil)

			_, err = svc.ClaimStake(ctx, "mallory", id)

			Convey("Then the claim is rejected", func() {
				So(err, ShouldEqual, service.ErrNotAuthorized)
			})
		})
	})
}

func TestIntegration_EmergencyUnstake(t *testing.T) {
	Convey("Given a serious monthly stake", t, func() {
		svc := newStartedService(t)
		ctx := context.Background()
		id, err := svc.CreateStake(ctx, "frank", plan.SeriousDenomination, model.GoalMonthly)
		So(err, ShouldBeNil)

		Convey("When exiting early with the lock still running", func() {
			payout, err := svc.EmergencyUnstake(ctx, "frank", id)

			Convey("Then 80% of the principal comes back", func() {
				So(err, ShouldBeNil)
				So(payout, ShouldEqual, 8_000_000)
				So(svc.AccountBalance(ctx, "frank"), ShouldEqual, startingBalance-2_000_000)
			})

			Convey("And the forfeited 20% funds the pool", func() {
				So(svc.PoolStats(ctx).Balance, ShouldEqual, 2_000_000)
			})

			Convey("And the stake is terminal", func() {
				view, verr := svc.Stake(ctx, id)
				So(verr, ShouldBeNil)
				So(view.Status, ShouldEqual, model.StatusEarlyExited)
			})

			Convey("And further marks are rejected", func() {
				So(svc.MarkTermLearned(ctx, "frank", id, 1), ShouldEqual, service.ErrAlreadySettled)
			})
		})

		Convey("When someone other than the owner exits", func() {
			_, err := svc.EmergencyUnstake(ctx, "mallory", id)

			Convey("Then the exit is rejected", func() {
				So(err, ShouldEqual, service.ErrNotAuthorized)
			})
		})
	})
}

func TestIntegration_PoolExhaustionIsFirstComeFirstServed(t *testing.T) {
	Convey("Given a pool that covers exactly three full bonuses", t, func() {
		svc := newStartedService(t)
		ctx := context.Background()
		fundPool(t, svc, 300_000)

		ids := make([]uint64, 0, 5)
		for i := 0; i < 5; i++ {
			id, err := svc.CreateStake(ctx, "grinder", plan.BasicDenomination, model.GoalWeekly)
			So(err, ShouldBeNil)
			for term := uint64(1); term <= 7; term++ {
				So(svc.MarkTermLearned(ctx, "grinder", id, term), ShouldBeNil)
			}
			ids = append(ids, id)
		}
		_, err := svc.AdvanceChain(ctx, plan.WeeklyLockBlocks)
		So(err, ShouldBeNil)

		Convey("When all five fully-completed stakes claim in order", func() {
			payouts := make([]uint64, 0, 3)
			errs := make([]error, 0, 2)
			for _, id := range ids {
				payout, err := svc.ClaimStake(ctx, "grinder", id)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				payouts = append(payouts, payout)
			}

			Convey("Then exactly the first three succeed", func() {
				So(len(payouts), ShouldEqual, 3)
				So(len(errs), ShouldEqual, 2)
				for _, err := range errs {
					So(err, ShouldEqual, pool.ErrInsufficientBalance)
				}
				So(svc.PoolStats(ctx).Balance, ShouldEqual, 0)
			})

			Convey("And the rejected stakes stay active and can retry once refunded", func() {
				view, verr := svc.Stake(ctx, ids[3])
				So(verr, ShouldBeNil)
				So(view.Status, ShouldEqual, model.StatusActive)

				// Governance tops the pool back up; the held-back claim goes
				// through unchanged.
				pid, perr := svc.ProposeAction(ctx, "deployer", model.ActionFundPool, 200_000)
				So(perr, ShouldBeNil)
				executed, aerr := svc.ApproveProposal(ctx, "treasurer", pid)
				So(aerr, ShouldBeNil)
				So(executed, ShouldBeTrue)

				payout, cerr := svc.ClaimStake(ctx, "grinder", ids[3])
				So(cerr, ShouldBeNil)
				So(payout, ShouldEqual, 1_100_000)
			})
		})
	})
}

func TestIntegration_Governance(t *testing.T) {
	Convey("Given a service with two admins", t, func() {
		svc := newStartedService(t)
		ctx := context.Background()
		So(svc.AddAdmin(ctx, "deployer", "second"), ShouldBeNil)

		Convey("When a non-admin tries to govern", func() {
			So(svc.AddAdmin(ctx, "mallory", "accomplice"), ShouldEqual, governance.ErrNotAdmin)
			_, err := svc.ProposeAction(ctx, "mallory", model.ActionFundPool, 1)
			So(err, ShouldEqual, governance.ErrNotAdmin)
		})

		Convey("When adjusting the bonus rate within the cap", func() {
			id, err := svc.ProposeAction(ctx, "deployer", model.ActionAdjustRate, 1500)
			So(err, ShouldBeNil)
			executed, err := svc.ApproveProposal(ctx, "second", id)

			Convey("Then the governed rate changes", func() {
				So(err, ShouldBeNil)
				So(executed, ShouldBeTrue)
				So(svc.BonusRateBps(), ShouldEqual, 1500)
			})
		})

		Convey("When adjusting the bonus rate above the cap", func() {
			id, err := svc.ProposeAction(ctx, "deployer", model.ActionAdjustRate, 2500)
			So(err, ShouldBeNil)
			_, err = svc.ApproveProposal(ctx, "second", id)

			Convey("Then execution fails and the approval is not recorded", func() {
				So(err, ShouldEqual, governance.ErrRateAboveCap)
				So(svc.BonusRateBps(), ShouldEqual, 1000)
				view, verr := svc.Proposal(ctx, id)
				So(verr, ShouldBeNil)
				So(view.Executed, ShouldBeFalse)
				So(view.ApprovalCount, ShouldEqual, 1)
			})
		})

		Convey("When a proposal outlives the approval window", func() {
			id, err := svc.ProposeAction(ctx, "deployer", model.ActionFundPool, 1_000)
			So(err, ShouldBeNil)
			_, err = svc.AdvanceChain(ctx, governance.ProposalExpiryBlocks+1)
			So(err, ShouldBeNil)

			_, err = svc.ApproveProposal(ctx, "second", id)

			Convey("Then the approval is rejected", func() {
				So(err, ShouldEqual, governance.ErrProposalExpired)
			})
		})

		Convey("When withdrawing from a funded pool", func() {
			fid, err := svc.ProposeAction(ctx, "deployer", model.ActionFundPool, 5_000_000)
			So(err, ShouldBeNil)
			executed, err := svc.ApproveProposal(ctx, "second", fid)
			So(err, ShouldBeNil)
			So(executed, ShouldBeTrue)

			before := svc.AccountBalance(ctx, "deployer")
			wid, err := svc.ProposeAction(ctx, "deployer", model.ActionEmergencyWithdraw, 2_000_000)
			So(err, ShouldBeNil)
			executed, err = svc.ApproveProposal(ctx, "second", wid)

			Convey("Then the proposer receives the funds", func() {
				So(err, ShouldBeNil)
				So(executed, ShouldBeTrue)
				So(svc.AccountBalance(ctx, "deployer"), ShouldEqual, before+2_000_000)
				So(svc.PoolStats(ctx).Balance, ShouldEqual, 3_000_000)
			})
		})

		Convey("When withdrawing more than the pool holds", func() {
			wid, err := svc.ProposeAction(ctx, "deployer", model.ActionEmergencyWithdraw, 1_000_000)
			So(err, ShouldBeNil)
			_, err = svc.ApproveProposal(ctx, "second", wid)

			Convey("Then execution fails and the proposal stays open", func() {
				So(err, ShouldEqual, pool.ErrInsufficientBalance)
				view, verr := svc.Proposal(ctx, wid)
				So(verr, ShouldBeNil)
				So(view.Executed, ShouldBeFalse)
			})
		})
	})
}
