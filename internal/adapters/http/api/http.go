// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/termstake/termstake/internal/adapters/repository"
	"github.com/termstake/termstake/internal/adapters/sequencer"
	service "github.com/termstake/termstake/internal/app"
	"github.com/termstake/termstake/internal/domain/account"
	"github.com/termstake/termstake/internal/domain/governance"
	"github.com/termstake/termstake/internal/domain/plan"
	"github.com/termstake/termstake/internal/domain/pool"
)

// Dependencies bundles everything the HTTP handlers need from the ledger.
// Using an interface bundle keeps the handler layer loosely coupled to
// implementations in other packages.
type Dependencies interface {
	StakeDependencies
	GovernanceDependencies
	PoolDependencies
	AccountDependencies
	ChainDependencies
	LeaderboardDependencies
	RateDependencies
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = repository.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	stakesHandler      *StakesHandler
	governanceHandler  *GovernanceHandler
	poolHandler        *PoolHandler
	accountsHandler    *AccountsHandler
	chainHandler       *ChainHandler
	leaderboardHandler *LeaderboardHandler
	ratesHandler       *RatesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLeaderboardLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		stakesHandler:      NewStakesHandler(deps),
		governanceHandler:  NewGovernanceHandler(deps),
		poolHandler:        NewPoolHandler(deps),
		accountsHandler:    NewAccountsHandler(deps),
		chainHandler:       NewChainHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLeaderboardLimit),
		ratesHandler:       NewRatesHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/v1/stakes", MetricsMiddleware(s.stakesHandler.HandleStakes, "stakes"))
	mux.HandleFunc("/v1/stakes/", MetricsMiddleware(s.stakesHandler.HandleStake, "stake"))
	mux.HandleFunc("/v1/governance/admins", MetricsMiddleware(s.governanceHandler.HandleAdmins, "admins"))
	mux.HandleFunc("/v1/governance/proposals", MetricsMiddleware(s.governanceHandler.HandleProposals, "proposals"))
	mux.HandleFunc("/v1/governance/proposals/", MetricsMiddleware(s.governanceHandler.HandleProposal, "proposal"))
	mux.HandleFunc("/v1/pool", MetricsMiddleware(s.poolHandler.HandleGetPool, "pool"))
	mux.HandleFunc("/v1/accounts/", MetricsMiddleware(s.accountsHandler.HandleGetAccount, "accounts"))
	mux.HandleFunc("/v1/chain", MetricsMiddleware(s.chainHandler.HandleGetChain, "chain"))
	mux.HandleFunc("/v1/chain/advance", MetricsMiddleware(s.chainHandler.HandleAdvance, "chain_advance"))
	mux.HandleFunc("/v1/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/v1/leaderboard/", MetricsMiddleware(s.leaderboardHandler.HandleGetRank, "rank"))
	mux.HandleFunc("/v1/rates", MetricsMiddleware(s.ratesHandler.HandleGetRates, "rates"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError maps ledger errors onto HTTP statuses and machine codes.
func writeDomainError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

// classify picks the HTTP status and machine-readable code for an error.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrNotAuthorized), errors.Is(err, governance.ErrNotAdmin):
		return http.StatusForbidden, "not_authorized"
	case errors.Is(err, plan.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid_amount"
	case errors.Is(err, plan.ErrInvalidGoalType):
		return http.StatusBadRequest, "invalid_goal_type"
	case errors.Is(err, governance.ErrInvalidActionType):
		return http.StatusBadRequest, "invalid_action"
	case errors.Is(err, governance.ErrRateAboveCap):
		return http.StatusBadRequest, "rate_above_cap"
	case errors.Is(err, repository.ErrInvalidLimit):
		return http.StatusBadRequest, "invalid_limit"
	case errors.Is(err, service.ErrStakeNotFound),
		errors.Is(err, service.ErrTermNotFound),
		errors.Is(err, governance.ErrProposalNotFound),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrAlreadySettled):
		return http.StatusConflict, "already_settled"
	case errors.Is(err, service.ErrAlreadyMarked):
		return http.StatusConflict, "already_marked"
	case errors.Is(err, service.ErrStillLocked):
		return http.StatusConflict, "time_lock_active"
	case errors.Is(err, governance.ErrProposalExpired):
		return http.StatusConflict, "proposal_expired"
	case errors.Is(err, governance.ErrAlreadyApproved):
		return http.StatusConflict, "already_approved"
	case errors.Is(err, governance.ErrAlreadyExecuted):
		return http.StatusConflict, "already_executed"
	case errors.Is(err, pool.ErrInsufficientBalance):
		return http.StatusConflict, "insufficient_pool"
	case errors.Is(err, account.ErrInsufficientFunds):
		return http.StatusConflict, "insufficient_funds"
	case errors.Is(err, sequencer.ErrBackpressure):
		return http.StatusServiceUnavailable, "backpressure"
	case errors.Is(err, sequencer.ErrStopped), errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
