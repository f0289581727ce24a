package repository_test

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/termstake/termstake/internal/adapters/repository"
)

func TestLeaderboardOrdering(t *testing.T) {
	Convey("Given learners with different term counts", t, func() {
		store := repository.NewInMemoryStore()
		ctx := context.Background()

		mark := func(principal string, times int) {
			for i := 0; i < times; i++ {
				store.RecordTermLearned(ctx, principal)
			}
		}
		mark("wallet_1", 7)
		mark("wallet_2", 15)
		mark("wallet_3", 7)
		mark("wallet_4", 2)

		Convey("When reading the top entries", func() {
			top, err := store.TopN(ctx, 10)

			Convey("Then ordering is terms desc with principal asc tie-break", func() {
				So(err, ShouldBeNil)
				So(len(top), ShouldEqual, 4)
				So(top[0].Principal, ShouldEqual, "wallet_2")
				So(top[0].Rank, ShouldEqual, 1)
				So(top[1].Principal, ShouldEqual, "wallet_1") // ties broken by name
				So(top[2].Principal, ShouldEqual, "wallet_3")
				So(top[3].Principal, ShouldEqual, "wallet_4")
			})
		})

		Convey("When asking for fewer entries than exist", func() {
			top, err := store.TopN(ctx, 2)

			Convey("Then the list is truncated", func() {
				So(err, ShouldBeNil)
				So(len(top), ShouldEqual, 2)
			})
		})

		Convey("When asking with an invalid limit", func() {
			_, err := store.TopN(ctx, 0)

			Convey("Then it fails", func() {
				So(err, ShouldEqual, repository.ErrInvalidLimit)
			})
		})
	})
}

func TestLeaderboardRank(t *testing.T) {
	Convey("Given a populated leaderboard", t, func() {
		store := repository.NewInMemoryStore()
		ctx := context.Background()

		store.RecordTermLearned(ctx, "wallet_1")
		store.RecordTermLearned(ctx, "wallet_1")
		store.RecordTermLearned(ctx, "wallet_2")

		Convey("When ranking a known principal", func() {
			entry, err := store.Rank(ctx, "wallet_1")

			Convey("Then its rank and count are returned", func() {
				So(err, ShouldBeNil)
				So(entry.Rank, ShouldEqual, 1)
				So(entry.TermsLearned, ShouldEqual, 2)
			})
		})

		Convey("When ranking an unknown principal", func() {
			_, err := store.Rank(ctx, "wallet_9")

			Convey("Then it is not found", func() {
				So(err, ShouldEqual, repository.ErrNotFound)
			})
		})

		Convey("When counts change after a read", func() {
			store.RecordTermLearned(ctx, "wallet_2")
			store.RecordTermLearned(ctx, "wallet_2")
			entry, err := store.Rank(ctx, "wallet_2")

			Convey("Then the index reflects the new ordering", func() {
				So(err, ShouldBeNil)
				So(entry.Rank, ShouldEqual, 1)
				So(entry.TermsLearned, ShouldEqual, 3)
			})
		})

		Convey("Then Count tracks distinct principals", func() {
			So(store.Count(ctx), ShouldEqual, 2)
		})
	})
}
