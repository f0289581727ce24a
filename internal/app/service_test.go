package service_test

import (
	"context"
	"testing"
	"time"

	service "github.com/termstake/termstake/internal/app"
	"github.com/termstake/termstake/internal/domain/account"
	"github.com/termstake/termstake/internal/domain/model"
	"github.com/termstake/termstake/internal/domain/plan"
	"github.com/termstake/termstake/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// newStartedService starts a ledger with test-friendly defaults and
// registers shutdown on the test.
func newStartedService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	svc := service.New(opts...)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("starting service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithQueueSize(512),
			service.WithStartingBalance(50_000_000),
			service.WithDictionarySize(100),
			service.WithInitialAdmin("alice"),
		)

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()
		ctx := context.Background()

		Convey("When it has not been started", func() {
			Convey("Then mutations are refused", func() {
				_, err := svc.CreateStake(ctx, "alice", plan.BasicDenomination, model.GoalWeekly)
				So(err, ShouldEqual, service.ErrNotStarted)
			})

			Convey("And stats report it as stopped", func() {
				stats := svc.GetStats(ctx)
				So(stats["started"], ShouldEqual, false)
			})
		})

		Convey("When starting the service", func() {
			err := svc.Start(ctx)
			defer svc.Stop()

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
				stats := svc.GetStats(ctx)
				So(stats["started"], ShouldEqual, true)
			})

			Convey("And starting again is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})
	})
}

func TestService_CreateStake(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newStartedService(t)
		ctx := context.Background()

		Convey("When creating a stake with a whitelisted amount and goal", func() {
			id, err := svc.CreateStake(ctx, "alice", plan.BasicDenomination, model.GoalWeekly)

			Convey("Then a stake id is assigned and the principal is locked", func() {
				So(err, ShouldBeNil)
				So(id, ShouldEqual, 1)
				So(svc.AccountBalance(ctx, "alice"), ShouldEqual, uint64(100_000_000-plan.BasicDenomination))
			})

			Convey("And the stake is readable", func() {
				view, err := svc.Stake(ctx, id)
				So(err, ShouldBeNil)
				So(view.Owner, ShouldEqual, "alice")
				So(view.Tier, ShouldEqual, model.TierBasic)
				So(view.Status, ShouldEqual, model.StatusActive)
				So(view.UnlockHeight, ShouldEqual, plan.WeeklyLockBlocks)
			})
		})

		Convey("When the amount is off the denomination table", func() {
			_, err := svc.CreateStake(ctx, "alice", 123_456, model.GoalWeekly)

			Convey("Then the stake is rejected", func() {
				So(err, ShouldEqual, plan.ErrInvalidAmount)
			})
		})

		Convey("When the tier and goal pairing is off the whitelist", func() {
			_, err := svc.CreateStake(ctx, "alice", plan.SeriousDenomination, model.GoalWeekly)

			Convey("Then the stake is rejected", func() {
				So(err, ShouldEqual, plan.ErrInvalidGoalType)
			})
		})

		Convey("When the account cannot cover the amount", func() {
			svc := newStartedService(t, service.WithStartingBalance(1_000))
			_, err := svc.CreateStake(ctx, "poor", plan.BasicDenomination, model.GoalWeekly)

			Convey("Then the stake is rejected and nothing is locked", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, account.ErrInsufficientFunds.Error())
				So(svc.AccountBalance(ctx, "poor"), ShouldEqual, 1_000)
			})
		})

		Convey("When two stakes are created", func() {
			id1, err1 := svc.CreateStake(ctx, "alice", plan.BasicDenomination, model.GoalWeekly)
			id2, err2 := svc.CreateStake(ctx, "bob", plan.CommittedDenomination, model.GoalWeekly)

			Convey("Then stake ids are strictly increasing", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(id2, ShouldEqual, id1+1)
			})

			Convey("And stakes are listed per owner", func() {
				views, err := svc.StakesByOwner(ctx, "alice")
				So(err, ShouldBeNil)
				So(len(views), ShouldEqual, 1)
				So(views[0].ID, ShouldEqual, id1)
			})
		})
	})
}

func TestService_MarkTermLearned(t *testing.T) {
	Convey("Given a started service with one active stake", t, func() {
		svc := newStartedService(t, service.WithDictionarySize(50))
		ctx := context.Background()
		id, err := svc.CreateStake(ctx, "alice", plan.BasicDenomination, model.GoalWeekly)
		So(err, ShouldBeNil)

		Convey("When the owner marks a known term", func() {
			err := svc.MarkTermLearned(ctx, "alice", id, 7)

			Convey("Then the mark is recorded", func() {
				So(err, ShouldBeNil)
				progress, err := svc.Progress(ctx, id)
				So(err, ShouldBeNil)
				So(progress.TermsLearned, ShouldResemble, []uint64{7})
			})

			Convey("And marking the same term again is rejected", func() {
				So(svc.MarkTermLearned(ctx, "alice", id, 7), ShouldEqual, service.ErrAlreadyMarked)
			})
		})

		Convey("When someone other than the owner marks", func() {
			err := svc.MarkTermLearned(ctx, "mallory", id, 7)

			Convey("Then the mark is rejected", func() {
				So(err, ShouldEqual, service.ErrNotAuthorized)
			})
		})

		Convey("When the term id is outside the dictionary", func() {
			err := svc.MarkTermLearned(ctx, "alice", id, 51)

			Convey("Then the mark is rejected", func() {
				So(err, ShouldEqual, service.ErrTermNotFound)
			})
		})

		Convey("When the stake does not exist", func() {
			err := svc.MarkTermLearned(ctx, "alice", 999, 7)

			Convey("Then the mark is rejected", func() {
				So(err, ShouldEqual, service.ErrStakeNotFound)
			})
		})

		Convey("When marks land in arbitrary order", func() {
			So(svc.MarkTermLearned(ctx, "alice", id, 12), ShouldBeNil)
			So(svc.MarkTermLearned(ctx, "alice", id, 3), ShouldBeNil)
			So(svc.MarkTermLearned(ctx, "alice", id, 48), ShouldBeNil)

			Convey("Then progress reports them numerically sorted", func() {
				progress, err := svc.Progress(ctx, id)
				So(err, ShouldBeNil)
				So(progress.TermsLearned, ShouldResemble, []uint64{3, 12, 48})
			})
		})
	})
}

func TestService_Progress(t *testing.T) {
	Convey("Given a stake with partial progress", t, func() {
		svc := newStartedService(t)
		ctx := context.Background()
		id, err := svc.CreateStake(ctx, "alice", plan.BasicDenomination, model.GoalWeekly)
		So(err, ShouldBeNil)
		for term := uint64(1); term <= 4; term++ {
			So(svc.MarkTermLearned(ctx, "alice", id, term), ShouldBeNil)
		}

		Convey("When the lock has not expired", func() {
			progress, err := svc.Progress(ctx, id)

			Convey("Then it reports completion and remaining blocks", func() {
				So(err, ShouldBeNil)
				So(progress.CompletionPct, ShouldEqual, 57)
				So(progress.Claimable, ShouldBeFalse)
				So(progress.BlocksUntilClaim, ShouldEqual, plan.WeeklyLockBlocks)
			})
		})

		Convey("When the chain advances past the unlock height", func() {
			_, err := svc.AdvanceChain(ctx, plan.WeeklyLockBlocks)
			So(err, ShouldBeNil)
			progress, err := svc.Progress(ctx, id)

			Convey("Then the stake is claimable", func() {
				So(err, ShouldBeNil)
				So(progress.Claimable, ShouldBeTrue)
				So(progress.BlocksUntilClaim, ShouldEqual, 0)
			})
		})
	})
}

func TestService_Leaderboard(t *testing.T) {
	Convey("Given marks from several learners", t, func() {
		svc := newStartedService(t)
		ctx := context.Background()

		aliceStake, err := svc.CreateStake(ctx, "alice", plan.BasicDenomination, model.GoalWeekly)
		So(err, ShouldBeNil)
		bobStake, err := svc.CreateStake(ctx, "bob", plan.CommittedDenomination, model.GoalWeekly)
		So(err, ShouldBeNil)

		for term := uint64(1); term <= 5; term++ {
			So(svc.MarkTermLearned(ctx, "bob", bobStake, term), ShouldBeNil)
		}
		for term := uint64(1); term <= 2; term++ {
			So(svc.MarkTermLearned(ctx, "alice", aliceStake, term), ShouldBeNil)
		}

		Convey("When reading the leaderboard", func() {
			entries, err := svc.TopN(ctx, 10)

			Convey("Then learners rank by terms learned", func() {
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 2)
				So(entries[0].Principal, ShouldEqual, "bob")
				So(entries[0].TermsLearned, ShouldEqual, 5)
				So(entries[1].Principal, ShouldEqual, "alice")
			})
		})

		Convey("When reading a single learner's rank", func() {
			entry, err := svc.Rank(ctx, "alice")

			Convey("Then it reports their position", func() {
				So(err, ShouldBeNil)
				So(entry.Rank, ShouldEqual, 2)
			})
		})
	})
}

func TestService_Queries(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newStartedService(t)
		ctx := context.Background()

		Convey("Then the plan whitelist is exposed", func() {
			plans := svc.Plans(ctx)
			So(len(plans), ShouldEqual, 3)
		})

		Convey("And the governed bonus rate has its default", func() {
			So(svc.BonusRateBps(), ShouldEqual, 1000)
		})

		Convey("And unknown stakes are reported as missing", func() {
			_, err := svc.Stake(ctx, 42)
			So(err, ShouldEqual, service.ErrStakeNotFound)
			_, err = svc.Progress(ctx, 42)
			So(err, ShouldEqual, service.ErrStakeNotFound)
		})

		Convey("And the pool starts empty", func() {
			stats := svc.PoolStats(ctx)
			So(stats.Balance, ShouldEqual, 0)
		})

		Convey("And the chain starts at height zero", func() {
			So(svc.Height(), ShouldEqual, 0)
		})
	})
}
