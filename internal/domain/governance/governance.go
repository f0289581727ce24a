// Package governance implements the multi-signature proposal machine that
// controls pool-wide parameters. A proposal is Open until it collects the
// approval threshold, at which point it executes inside the same call; there
// is no separate execute step and no ready state.
package governance

import (
	"context"
	"sync"

	"github.com/termstake/termstake/internal/domain/markset"
	"github.com/termstake/termstake/internal/domain/model"
	"github.com/termstake/termstake/pkg/metrics"
)

// Governance parameters.
const (
	// ApprovalThreshold is the number of distinct admin approvals that
	// triggers execution. Fixed regardless of admin-set size.
	ApprovalThreshold = 2

	// ProposalExpiryBlocks bounds the approval window, inclusive: an approval
	// exactly ProposalExpiryBlocks after creation still succeeds.
	ProposalExpiryBlocks = 144

	// MaxBonusRateBps caps the governed bonus rate at 20%.
	MaxBonusRateBps = 2000

	defaultBonusRateBps = 1000
)

// Executor applies pool effects when a proposal reaches the threshold. The
// whole approving call fails if the executor does, leaving the proposal
// unchanged.
type Executor interface {
	// FundPool credits the bonus pool.
	FundPool(value uint64) error

	// EmergencyWithdraw debits the pool to an admin-controlled destination.
	EmergencyWithdraw(value uint64, destination string) error
}

// Registry owns the admin set, the proposal table, and the governed
// bonus-rate parameter.
type Registry struct {
	mu           sync.RWMutex
	admins       map[string]struct{}
	proposals    map[uint64]*model.Proposal
	approvals    markset.Set
	nextID       uint64
	bonusRateBps uint64
}

// NewRegistry creates a registry seeded with a single admin.
func NewRegistry(initialAdmin string) *Registry {
	r := &Registry{
		admins:       map[string]struct{}{initialAdmin: {}},
		proposals:    make(map[uint64]*model.Proposal),
		approvals:    markset.New(),
		bonusRateBps: defaultBonusRateBps,
	}
	metrics.UpdateAdminCount(1)
	return r
}

// IsAdmin reports whether principal is in the admin set.
func (r *Registry) IsAdmin(principal string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.admins[principal]
	return ok
}

// AddAdmin appends a new admin identity. Only an existing admin may call it;
// re-adding an existing admin is a no-op.
func (r *Registry) AddAdmin(caller, principal string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.admins[caller]; !ok {
		return ErrNotAdmin
	}
	r.admins[principal] = struct{}{}
	metrics.UpdateAdminCount(len(r.admins))
	return nil
}

// Propose creates a proposal with the caller's approval already recorded and
// returns the new proposal id.
func (r *Registry) Propose(ctx context.Context, caller string, action model.ActionKind, value, height uint64) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.admins[caller]; !ok {
		return 0, ErrNotAdmin
	}
	if !action.Valid() {
		return 0, ErrInvalidActionType
	}

	r.nextID++
	p := &model.Proposal{
		ID:            r.nextID,
		Action:        action,
		Value:         value,
		Proposer:      caller,
		CreatedHeight: height,
	}
	r.proposals[p.ID] = p
	r.approvals.MarkOnce(ctx, p.ID, caller)

	metrics.RecordProposalCreated()
	return p.ID, nil
}

// Approve records the caller's approval. When the distinct-approver count
// reaches the threshold the proposal executes immediately and atomically
// within this call; an execution failure aborts the approval entirely.
// Returns true when the proposal executed.
func (r *Registry) Approve(ctx context.Context, caller string, id, height uint64, exec Executor) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.admins[caller]; !ok {
		return false, ErrNotAdmin
	}
	p, ok := r.proposals[id]
	if !ok {
		return false, ErrProposalNotFound
	}
	if p.Executed {
		return false, ErrAlreadyExecuted
	}
	if height > p.CreatedHeight && height-p.CreatedHeight > ProposalExpiryBlocks {
		return false, ErrProposalExpired
	}
	if r.approvals.Has(ctx, id, caller) {
		return false, ErrAlreadyApproved
	}

	if r.approvals.CountIn(ctx, id)+1 >= ApprovalThreshold {
		// Execute before recording: a rejected execution must leave the
		// proposal exactly as it was.
		if err := r.execute(p, exec); err != nil {
			return false, err
		}
		r.approvals.MarkOnce(ctx, id, caller)
		p.Executed = true
		metrics.RecordProposalExecuted(string(p.Action))
		return true, nil
	}

	r.approvals.MarkOnce(ctx, id, caller)
	return false, nil
}

// execute applies the proposal's effect. Caller holds the write lock.
func (r *Registry) execute(p *model.Proposal, exec Executor) error {
	switch p.Action {
	case model.ActionFundPool:
		return exec.FundPool(p.Value)
	case model.ActionAdjustRate:
		// The cap is enforced here, at execution, not at proposal time.
		if p.Value > MaxBonusRateBps {
			return ErrRateAboveCap
		}
		r.bonusRateBps = p.Value
		return nil
	case model.ActionEmergencyWithdraw:
		return exec.EmergencyWithdraw(p.Value, p.Proposer)
	default:
		return ErrInvalidActionType
	}
}

// BonusRateBps returns the governed bonus-rate parameter.
func (r *Registry) BonusRateBps() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.bonusRateBps
}

// AdminCount returns the size of the admin set.
func (r *Registry) AdminCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.admins)
}

// Get returns the read view of a proposal.
func (r *Registry) Get(ctx context.Context, id uint64) (model.ProposalView, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.proposals[id]
	if !ok {
		return model.ProposalView{}, ErrProposalNotFound
	}
	approvers := r.approvals.MembersOf(ctx, id)
	return model.ProposalView{
		ID:            p.ID,
		Action:        p.Action,
		Value:         p.Value,
		Proposer:      p.Proposer,
		Approvers:     approvers,
		ApprovalCount: len(approvers),
		CreatedHeight: p.CreatedHeight,
		ExpiresHeight: p.CreatedHeight + ProposalExpiryBlocks,
		Executed:      p.Executed,
	}, nil
}
