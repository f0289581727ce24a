// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Layer file and environment sources on top via Load.
// - External errors are wrapped via this package's sentinel kinds.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// CommandQueueSize bounds the sequencer's command queue.
	CommandQueueSize int `koanf:"command_queue_size"`

	// BlockIntervalMS auto-advances the block clock every interval.
	// Zero disables auto-advance; height then moves only via the chain API.
	BlockIntervalMS int `koanf:"block_interval_ms"`

	// StartingBalance is the microunit balance granted to a principal on
	// first sight (devnet faucet semantics).
	StartingBalance uint64 `koanf:"starting_balance"`

	// DictionarySize seeds the term dictionary with ids 1..N.
	DictionarySize uint64 `koanf:"dictionary_size"`

	// MaxLeaderboardLimit caps GET /v1/leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// InitialAdmin is the principal seeded into the governance admin set.
	InitialAdmin string `koanf:"initial_admin"`
}

// Default configuration values.
const (
	defaultAddr                = ":9080"
	defaultCommandQueueSize    = 10_000
	defaultStartingBalance     = 100_000_000 // 100 coins per fresh principal
	defaultDictionarySize      = 1_000
	defaultMaxLeaderboardLimit = 100
	defaultInitialAdmin        = "deployer"
)

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                defaultAddr,
		CommandQueueSize:    defaultCommandQueueSize,
		BlockIntervalMS:     0,
		StartingBalance:     defaultStartingBalance,
		DictionarySize:      defaultDictionarySize,
		MaxLeaderboardLimit: defaultMaxLeaderboardLimit,
		InitialAdmin:        defaultInitialAdmin,
	}
}
