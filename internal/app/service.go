// Package service provides the core ledger service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/termstake/termstake/internal/adapters/chain"
	repository "github.com/termstake/termstake/internal/adapters/repository"
	"github.com/termstake/termstake/internal/adapters/sequencer"
	"github.com/termstake/termstake/internal/domain/account"
	"github.com/termstake/termstake/internal/domain/governance"
	"github.com/termstake/termstake/internal/domain/markset"
	"github.com/termstake/termstake/internal/domain/model"
	"github.com/termstake/termstake/internal/domain/plan"
	"github.com/termstake/termstake/internal/domain/pool"
	"github.com/termstake/termstake/internal/domain/settle"
	"github.com/termstake/termstake/internal/domain/terms"
	"github.com/termstake/termstake/pkg/logger"
	"github.com/termstake/termstake/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize      = 10_000
	defaultStartingFunds  = 100_000_000
	defaultDictionarySize = 1_000
	defaultInitialAdmin   = "deployer"
)

// Settlement outcome labels for metrics.
const (
	outcomeBonus     = "bonus"
	outcomePenalty   = "penalty"
	outcomeEarlyExit = "early_exit"
)

// Service is the stake ledger. Every mutating operation is applied through
// the sequencer, one at a time, in arrival order; reads go straight to the
// underlying state.
type Service struct {
	// Core components
	clock    *chain.Clock
	seq      *sequencer.Sequencer
	pool     *pool.Pool
	accounts *account.Book
	gov      *governance.Registry
	progress markset.Set
	board    repository.Store
	dict     terms.Checker

	// Stake table. Only apply* methods, which run one at a time on the
	// sequencer, take the write lock; read queries take the read lock and
	// never wait on the command queue.
	mu          sync.RWMutex
	stakes      map[uint64]*model.Stake
	byOwner     map[string][]uint64
	nextStakeID uint64

	// Configuration
	queueSize       int
	blockInterval   time.Duration
	startingBalance uint64
	dictionarySize  uint64
	initialAdmin    string

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithQueueSize bounds the sequencer command queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithBlockInterval enables the auto-advance block ticker. Zero disables it
// and the chain only moves via AdvanceChain.
func WithBlockInterval(interval time.Duration) Option {
	return func(s *Service) {
		s.blockInterval = interval
	}
}

// WithStartingBalance sets the balance auto-provisioned for new principals.
func WithStartingBalance(amount uint64) Option {
	return func(s *Service) {
		if amount > 0 {
			s.startingBalance = amount
		}
	}
}

// WithDictionarySize sets the number of known term ids (1..N).
func WithDictionarySize(size uint64) Option {
	return func(s *Service) {
		if size > 0 {
			s.dictionarySize = size
		}
	}
}

// WithInitialAdmin sets the principal seeded into the admin set.
func WithInitialAdmin(principal string) Option {
	return func(s *Service) {
		if principal != "" {
			s.initialAdmin = principal
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		stakes:          make(map[uint64]*model.Stake),
		byOwner:         make(map[string][]uint64),
		queueSize:       defaultQueueSize,
		startingBalance: defaultStartingFunds,
		dictionarySize:  defaultDictionarySize,
		initialAdmin:    defaultInitialAdmin,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("ledger")
	}

	s.logger.Info(ctx, "starting stake ledger...")

	s.clock = chain.NewClock(chain.WithInterval(s.blockInterval))
	s.pool = pool.New()
	s.accounts = account.NewBook(account.WithStartingBalance(s.startingBalance))
	s.gov = governance.NewRegistry(s.initialAdmin)
	s.progress = markset.New()
	s.board = repository.NewInMemoryStore()
	s.dict = terms.NewStaticDictionary(s.dictionarySize)
	s.seq = sequencer.New(
		sequencer.WithQueueSize(s.queueSize),
		sequencer.WithLogger(s.logger.Named("sequencer")),
	)

	s.seq.Start(ctx)
	s.clock.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "stake ledger started",
		logger.Int("queueSize", s.queueSize),
		logger.Uint64("dictionarySize", s.dictionarySize),
		logger.Uint64("startingBalance", s.startingBalance),
		logger.String("initialAdmin", s.initialAdmin),
	)

	return nil
}

// Stop gracefully shuts down the service, draining in-flight commands.
func (s *Service) Stop() {
	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping stake ledger...")

	s.clock.Stop()
	if err := s.seq.Stop(); err != nil {
		s.logger.Warn(ctx, "sequencer shutdown", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "stake ledger stopped")
}

// submit routes a mutation through the sequencer.
func (s *Service) submit(ctx context.Context, cmd sequencer.Command) (any, error) {
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.seq.Submit(ctx, cmd)
}

// CreateStake locks amount from the caller's account under the plan the
// amount and goal resolve to, and returns the new stake id.
func (s *Service) CreateStake(ctx context.Context, caller string, amount uint64, goal model.GoalType) (uint64, error) {
	v, err := s.submit(ctx, func() (any, error) {
		return s.applyCreateStake(ctx, caller, amount, goal)
	})
	if err != nil {
		return 0, err
	}
	return v.(uint64), nil
}

func (s *Service) applyCreateStake(ctx context.Context, caller string, amount uint64, goal model.GoalType) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := plan.Resolve(amount, goal)
	if err != nil {
		return 0, err
	}
	if err := s.accounts.Debit(caller, amount); err != nil {
		return 0, fmt.Errorf("locking stake principal: %w", err)
	}

	s.nextStakeID++
	st := &model.Stake{
		ID:            s.nextStakeID,
		Owner:         caller,
		Amount:        amount,
		Tier:          p.Tier,
		Goal:          p.Goal,
		CreatedHeight: s.clock.Height(),
		LockBlocks:    p.LockBlocks,
		RequiredTerms: p.RequiredTerms,
		Status:        model.StatusActive,
	}
	s.stakes[st.ID] = st
	s.byOwner[caller] = append(s.byOwner[caller], st.ID)

	metrics.RecordStakeCreated()
	metrics.UpdateActiveStakes(s.countActive())
	s.logger.Info(ctx, "stake created",
		logger.Uint64("stakeID", st.ID),
		logger.String("owner", caller),
		logger.Uint64("amount", amount),
		logger.String("tier", string(p.Tier)),
		logger.String("goal", string(p.Goal)),
	)
	return st.ID, nil
}

// MarkTermLearned records one learned term against an active stake.
func (s *Service) MarkTermLearned(ctx context.Context, caller string, stakeID, termID uint64) error {
	_, err := s.submit(ctx, func() (any, error) {
		return nil, s.applyMarkTerm(ctx, caller, stakeID, termID)
	})
	return err
}

func (s *Service) applyMarkTerm(ctx context.Context, caller string, stakeID, termID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.stakes[stakeID]
	if !ok {
		return ErrStakeNotFound
	}
	if st.Owner != caller {
		return ErrNotAuthorized
	}
	if st.Terminal() {
		return ErrAlreadySettled
	}
	if !s.dict.Known(termID) {
		return ErrTermNotFound
	}
	if !s.progress.MarkOnce(ctx, stakeID, formatTermID(termID)) {
		return ErrAlreadyMarked
	}

	s.board.RecordTermLearned(ctx, caller)
	metrics.RecordTermMarked()
	s.logger.Debug(ctx, "term marked",
		logger.Uint64("stakeID", stakeID),
		logger.Uint64("termID", termID),
	)
	return nil
}

// ClaimStake settles an active stake after its lock expires and pays the
// completion-dependent amount to the owner. Any bonus above the principal is
// taken from the pool; a claim the pool cannot cover fails whole and the
// stake stays active.
func (s *Service) ClaimStake(ctx context.Context, caller string, stakeID uint64) (uint64, error) {
	v, err := s.submit(ctx, func() (any, error) {
		return s.applyClaim(ctx, caller, stakeID)
	})
	if err != nil {
		return 0, err
	}
	return v.(uint64), nil
}

func (s *Service) applyClaim(ctx context.Context, caller string, stakeID uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.stakes[stakeID]
	if !ok {
		return 0, ErrStakeNotFound
	}
	if st.Owner != caller {
		return 0, ErrNotAuthorized
	}
	if st.Terminal() {
		return 0, ErrAlreadySettled
	}
	if s.clock.Height() < st.UnlockHeight() {
		return 0, ErrStillLocked
	}

	p, err := plan.Lookup(st.Tier, st.Goal)
	if err != nil {
		return 0, err
	}
	done := uint64(s.progress.CountIn(ctx, stakeID))
	pct := settle.CompletionPercent(done, st.RequiredTerms)
	payout := settle.Payout(p, st.Amount, pct)

	// Settle the difference against the pool before touching the stake:
	// an uncovered bonus leaves everything untouched.
	switch {
	case payout > st.Amount:
		if err := s.pool.Debit(payout - st.Amount); err != nil {
			s.logger.Warn(ctx, "claim rejected, pool cannot cover bonus",
				logger.Uint64("stakeID", stakeID),
				logger.Uint64("bonus", payout-st.Amount),
			)
			return 0, err
		}
	case payout < st.Amount:
		s.pool.Credit(st.Amount - payout)
	}

	s.accounts.Credit(caller, payout)
	st.Status = model.StatusSettled
	st.Payout = payout

	outcome := outcomeBonus
	if pct < settle.BonusThresholdPct {
		outcome = outcomePenalty
	}
	metrics.RecordSettlement(outcome, payout)
	metrics.UpdateActiveStakes(s.countActive())
	s.logger.Info(ctx, "stake claimed",
		logger.Uint64("stakeID", stakeID),
		logger.Uint64("completionPct", pct),
		logger.Uint64("payout", payout),
		logger.String("outcome", outcome),
	)
	return payout, nil
}

// EmergencyUnstake exits an active stake before the lock expires, paying a
// fixed 80% of the principal. The forfeited 20% goes to the pool.
func (s *Service) EmergencyUnstake(ctx context.Context, caller string, stakeID uint64) (uint64, error) {
	v, err := s.submit(ctx, func() (any, error) {
		return s.applyUnstake(ctx, caller, stakeID)
	})
	if err != nil {
		return 0, err
	}
	return v.(uint64), nil
}

func (s *Service) applyUnstake(ctx context.Context, caller string, stakeID uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.stakes[stakeID]
	if !ok {
		return 0, ErrStakeNotFound
	}
	if st.Owner != caller {
		return 0, ErrNotAuthorized
	}
	if st.Terminal() {
		return 0, ErrAlreadySettled
	}

	payout := settle.EarlyExitPayout(st.Amount)
	s.pool.Credit(st.Amount - payout)
	s.accounts.Credit(caller, payout)
	st.Status = model.StatusEarlyExited
	st.Payout = payout

	metrics.RecordSettlement(outcomeEarlyExit, payout)
	metrics.UpdateActiveStakes(s.countActive())
	s.logger.Info(ctx, "stake exited early",
		logger.Uint64("stakeID", stakeID),
		logger.Uint64("payout", payout),
	)
	return payout, nil
}

// AddAdmin appends a principal to the governance admin set.
func (s *Service) AddAdmin(ctx context.Context, caller, principal string) error {
	_, err := s.submit(ctx, func() (any, error) {
		return nil, s.gov.AddAdmin(caller, principal)
	})
	return err
}

// ProposeAction opens a governance proposal and returns its id.
// The caller's approval is recorded implicitly.
func (s *Service) ProposeAction(ctx context.Context, caller string, action model.ActionKind, value uint64) (uint64, error) {
	v, err := s.submit(ctx, func() (any, error) {
		return s.gov.Propose(ctx, caller, action, value, s.clock.Height())
	})
	if err != nil {
		return 0, err
	}
	return v.(uint64), nil
}

// ApproveProposal records the caller's approval; when the approval threshold
// is reached the proposal executes within the same call. Returns true when
// this approval executed the proposal.
func (s *Service) ApproveProposal(ctx context.Context, caller string, proposalID uint64) (bool, error) {
	v, err := s.submit(ctx, func() (any, error) {
		return s.gov.Approve(ctx, caller, proposalID, s.clock.Height(), s.executor())
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// AdvanceChain mines n empty blocks and returns the new height.
func (s *Service) AdvanceChain(ctx context.Context, n uint64) (uint64, error) {
	v, err := s.submit(ctx, func() (any, error) {
		return s.clock.Advance(n), nil
	})
	if err != nil {
		return 0, err
	}
	return v.(uint64), nil
}

// govExecutor applies executed proposals to the pool and the account book.
type govExecutor struct {
	pool     *pool.Pool
	accounts *account.Book
}

func (e *govExecutor) FundPool(value uint64) error {
	e.pool.Credit(value)
	return nil
}

func (e *govExecutor) EmergencyWithdraw(value uint64, destination string) error {
	if err := e.pool.Debit(value); err != nil {
		return err
	}
	e.accounts.Credit(destination, value)
	return nil
}

func (s *Service) executor() governance.Executor {
	return &govExecutor{pool: s.pool, accounts: s.accounts}
}

// Stake returns the read view of a single stake.
func (s *Service) Stake(_ context.Context, stakeID uint64) (model.StakeView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.stakes[stakeID]
	if !ok {
		return model.StakeView{}, ErrStakeNotFound
	}
	return s.stakeView(st), nil
}

// StakesByOwner returns the read views of all stakes owned by a principal,
// in creation order.
func (s *Service) StakesByOwner(_ context.Context, owner string) ([]model.StakeView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byOwner[owner]
	out := make([]model.StakeView, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.stakeView(s.stakes[id]))
	}
	return out, nil
}

// Progress returns the per-stake progress and claimability view.
func (s *Service) Progress(ctx context.Context, stakeID uint64) (model.ProgressView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.stakes[stakeID]
	if !ok {
		return model.ProgressView{}, ErrStakeNotFound
	}

	learned := parseTermIDs(s.progress.MembersOf(ctx, stakeID))
	height := s.clock.Height()
	unlock := st.UnlockHeight()
	remaining := uint64(0)
	if height < unlock {
		remaining = unlock - height
	}
	return model.ProgressView{
		StakeID:          st.ID,
		TermsLearned:     learned,
		RequiredTerms:    st.RequiredTerms,
		CompletionPct:    settle.CompletionPercent(uint64(len(learned)), st.RequiredTerms),
		UnlockHeight:     unlock,
		Claimable:        st.Status == model.StatusActive && remaining == 0,
		BlocksUntilClaim: remaining,
	}, nil
}

// PoolStats returns the bonus pool balance and lifetime totals.
func (s *Service) PoolStats(_ context.Context) model.PoolStats {
	return s.pool.Stats()
}

// Proposal returns the read view of a governance proposal.
func (s *Service) Proposal(ctx context.Context, proposalID uint64) (model.ProposalView, error) {
	return s.gov.Get(ctx, proposalID)
}

// Plans returns the stake plan whitelist.
func (s *Service) Plans(_ context.Context) []plan.Plan {
	return plan.All()
}

// BonusRateBps returns the governed pool-wide bonus rate.
func (s *Service) BonusRateBps() uint64 {
	return s.gov.BonusRateBps()
}

// AccountBalance returns the spendable balance of a principal, provisioning
// it on first sight.
func (s *Service) AccountBalance(_ context.Context, principal string) uint64 {
	return s.accounts.Balance(principal)
}

// Height returns the current block height.
func (s *Service) Height() uint64 {
	return s.clock.Height()
}

// TopN returns the top n leaderboard entries.
func (s *Service) TopN(ctx context.Context, n int) ([]repository.Entry, error) {
	return s.board.TopN(ctx, n)
}

// Rank returns the leaderboard entry for a principal.
func (s *Service) Rank(ctx context.Context, principal string) (repository.Entry, error) {
	return s.board.Rank(ctx, principal)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]interface{} {
	if !s.started {
		return map[string]interface{}{"started": false}
	}

	s.mu.RLock()
	totalStakes := len(s.stakes)
	activeStakes := s.countActive()
	s.mu.RUnlock()

	ps := s.pool.Stats()
	return map[string]interface{}{
		"started":      true,
		"height":       s.clock.Height(),
		"totalStakes":  totalStakes,
		"activeStakes": activeStakes,
		"poolBalance":  ps.Balance,
		"adminCount":   s.gov.AdminCount(),
		"bonusRateBps": s.gov.BonusRateBps(),
		"accountCount": s.accounts.Count(),
		"learnerCount": s.board.Count(ctx),
	}
}

// stakeView copies a stake into its read shape. Runs on the sequencer.
func (s *Service) stakeView(st *model.Stake) model.StakeView {
	return model.StakeView{
		ID:            st.ID,
		Owner:         st.Owner,
		Amount:        st.Amount,
		Tier:          st.Tier,
		Goal:          st.Goal,
		CreatedHeight: st.CreatedHeight,
		UnlockHeight:  st.UnlockHeight(),
		RequiredTerms: st.RequiredTerms,
		Status:        st.Status,
		Payout:        st.Payout,
	}
}

func (s *Service) countActive() int {
	n := 0
	for _, st := range s.stakes {
		if st.Status == model.StatusActive {
			n++
		}
	}
	return n
}

func formatTermID(termID uint64) string {
	return strconv.FormatUint(termID, 10)
}

// parseTermIDs converts marked members back to numerically sorted term ids.
func parseTermIDs(members []string) []uint64 {
	out := make([]uint64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
