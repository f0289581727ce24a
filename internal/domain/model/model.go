// Package model contains domain models passed between layers.
package model

// Tier identifies a stake denomination class.
type Tier string

// Known tiers.
const (
	TierBasic     Tier = "basic"
	TierCommitted Tier = "committed"
	TierSerious   Tier = "serious"
)

// GoalType is the lock-duration class of a stake.
type GoalType string

// Known goal types.
const (
	GoalWeekly  GoalType = "weekly"
	GoalMonthly GoalType = "monthly"
)

// StakeStatus tracks the stake lifecycle. Active is the only non-terminal
// state; Settled and EarlyExited are terminal and mutually exclusive.
type StakeStatus string

// Stake lifecycle states.
const (
	StatusActive      StakeStatus = "active"
	StatusSettled     StakeStatus = "settled"
	StatusEarlyExited StakeStatus = "early_exited"
)

// ActionKind is a whitelisted governance action.
type ActionKind string

// Whitelisted governance actions.
const (
	ActionFundPool          ActionKind = "fund-pool"
	ActionAdjustRate        ActionKind = "adjust-rate"
	ActionEmergencyWithdraw ActionKind = "emergency-withdraw"
)

// Valid reports whether k is on the action whitelist.
func (k ActionKind) Valid() bool {
	switch k {
	case ActionFundPool, ActionAdjustRate, ActionEmergencyWithdraw:
		return true
	default:
		return false
	}
}

// Stake is a single locked position. Amounts are microunits
// (1_000_000 = 1 coin); durations are block counts.
type Stake struct {
	ID            uint64
	Owner         string
	Amount        uint64
	Tier          Tier
	Goal          GoalType
	CreatedHeight uint64
	LockBlocks    uint64
	RequiredTerms uint64
	Status        StakeStatus
	// Payout is the settled amount once the stake is terminal; zero while Active.
	Payout uint64
}

// UnlockHeight is the first height at which the stake may be claimed.
func (s *Stake) UnlockHeight() uint64 {
	return s.CreatedHeight + s.LockBlocks
}

// Terminal reports whether the stake has left Active.
func (s *Stake) Terminal() bool {
	return s.Status != StatusActive
}

// Proposal is a governance proposal. The proposer's approval is implicit and
// recorded at creation time.
type Proposal struct {
	ID            uint64
	Action        ActionKind
	Value         uint64
	Proposer      string
	CreatedHeight uint64
	Executed      bool
}

// StakeView is the read shape for stake queries.
type StakeView struct {
	ID            uint64      `json:"id"`
	Owner         string      `json:"owner"`
	Amount        uint64      `json:"amount"`
	Tier          Tier        `json:"tier"`
	Goal          GoalType    `json:"goal"`
	CreatedHeight uint64      `json:"created_height"`
	UnlockHeight  uint64      `json:"unlock_height"`
	RequiredTerms uint64      `json:"required_terms"`
	Status        StakeStatus `json:"status"`
	Payout        uint64      `json:"payout"`
}

// ProgressView is the read shape for per-stake progress queries.
type ProgressView struct {
	StakeID          uint64   `json:"stake_id"`
	TermsLearned     []uint64 `json:"terms_learned"`
	RequiredTerms    uint64   `json:"required_terms"`
	CompletionPct    uint64   `json:"completion_pct"`
	UnlockHeight     uint64   `json:"unlock_height"`
	Claimable        bool     `json:"claimable"`
	BlocksUntilClaim uint64   `json:"blocks_until_claim"`
}

// PoolStats is the read shape for bonus pool queries.
type PoolStats struct {
	Balance       uint64 `json:"balance"`
	TotalCredited uint64 `json:"total_credited"`
	TotalDebited  uint64 `json:"total_debited"`
}

// ProposalView is the read shape for per-proposal queries.
type ProposalView struct {
	ID            uint64     `json:"id"`
	Action        ActionKind `json:"action"`
	Value         uint64     `json:"value"`
	Proposer      string     `json:"proposer"`
	Approvers     []string   `json:"approvers"`
	ApprovalCount int        `json:"approval_count"`
	CreatedHeight uint64     `json:"created_height"`
	ExpiresHeight uint64     `json:"expires_height"`
	Executed      bool       `json:"executed"`
}
