package config_test

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"
	"github.com/termstake/termstake/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.CommandQueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.BlockIntervalMS, convey.ShouldEqual, 0)
			convey.So(cfg.StartingBalance, convey.ShouldEqual, uint64(100_000_000))
			convey.So(cfg.DictionarySize, convey.ShouldEqual, uint64(1_000))
			convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 100)
		})
	})
}
