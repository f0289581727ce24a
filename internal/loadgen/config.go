// Package loadgen drives a running ledger through full stake lifecycles
// over its HTTP API: funding the pool through governance, opening stakes,
// marking terms, advancing the chain, and settling every position.
package loadgen

import "time"

// Config holds configuration for a load run.
type Config struct {
	BaseURL     string        // Base URL of the service
	NumLearners int           // Number of learner principals to simulate
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	PoolFunding uint64        // Microunits pushed into the pool before claiming
	TopN        int           // Leaderboard entries to fetch for verification
	Verbose     bool          // Enable verbose logging
}

// Stats holds load run statistics.
type Stats struct {
	LearnersGenerated int
	StakesCreated     int
	TermsMarked       int
	ClaimsSettled     int
	ClaimsRejected    int
	EarlyExits        int
	Failures          int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
