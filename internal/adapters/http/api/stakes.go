// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/termstake/termstake/internal/domain/model"
)

// StakeDependencies defines the interface for stake lifecycle operations.
type StakeDependencies interface {
	CreateStake(ctx context.Context, caller string, amount uint64, goal model.GoalType) (uint64, error)
	MarkTermLearned(ctx context.Context, caller string, stakeID, termID uint64) error
	ClaimStake(ctx context.Context, caller string, stakeID uint64) (uint64, error)
	EmergencyUnstake(ctx context.Context, caller string, stakeID uint64) (uint64, error)
	Stake(ctx context.Context, stakeID uint64) (model.StakeView, error)
	StakesByOwner(ctx context.Context, owner string) ([]model.StakeView, error)
	Progress(ctx context.Context, stakeID uint64) (model.ProgressView, error)
}

// StakesHandler handles stake requests.
type StakesHandler struct {
	deps StakeDependencies
}

// NewStakesHandler creates a new stakes handler.
func NewStakesHandler(deps StakeDependencies) *StakesHandler {
	return &StakesHandler{deps: deps}
}

// createStakeRequest mirrors the POST /v1/stakes schema.
type createStakeRequest struct {
	Principal string `json:"principal"`
	Amount    uint64 `json:"amount"`
	GoalType  string `json:"goal_type"`
}

func (r createStakeRequest) validate() error {
	switch {
	case strings.TrimSpace(r.Principal) == "":
		return errors.New("missing principal")
	case r.Amount == 0:
		return errors.New("missing amount")
	case strings.TrimSpace(r.GoalType) == "":
		return errors.New("missing goal_type")
	}
	return nil
}

type createStakeResponse struct {
	StakeID uint64 `json:"stake_id"`
}

// markTermRequest mirrors the POST /v1/stakes/{id}/terms schema.
type markTermRequest struct {
	Principal string `json:"principal"`
	TermID    uint64 `json:"term_id"`
}

// settleRequest mirrors the claim and unstake schemas.
type settleRequest struct {
	Principal string `json:"principal"`
}

type settleResponse struct {
	StakeID uint64 `json:"stake_id"`
	Payout  uint64 `json:"payout"`
}

type markTermResponse struct {
	Status string `json:"status"`
}

// HandleStakes handles POST /v1/stakes and GET /v1/stakes?owner= requests.
func (h *StakesHandler) HandleStakes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleCreate(w, r)
	case http.MethodGet:
		h.handleList(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *StakesHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_stake"
	var req createStakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	id, err := h.deps.CreateStake(r.Context(), req.Principal, req.Amount, model.GoalType(req.GoalType))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createStakeResponse{StakeID: id})
}

func (h *StakesHandler) handleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_stakes"
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	views, err := h.deps.StakesByOwner(r.Context(), owner)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// HandleStake handles requests addressed to a single stake:
// GET /v1/stakes/{id}, GET /v1/stakes/{id}/progress, and the POST
// subresources terms, claim, and unstake.
func (h *StakesHandler) HandleStake(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/stakes/")
	idStr, sub, _ := strings.Cut(rest, "/")
	stakeID, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || stakeID == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	switch {
	case sub == "" && r.Method == http.MethodGet:
		h.handleGet(w, r, stakeID)
	case sub == "progress" && r.Method == http.MethodGet:
		h.handleProgress(w, r, stakeID)
	case sub == "terms" && r.Method == http.MethodPost:
		h.handleMarkTerm(w, r, stakeID)
	case sub == "claim" && r.Method == http.MethodPost:
		h.handleClaim(w, r, stakeID)
	case sub == "unstake" && r.Method == http.MethodPost:
		h.handleUnstake(w, r, stakeID)
	default:
		http.NotFound(w, r)
	}
}

func (h *StakesHandler) handleGet(w http.ResponseWriter, r *http.Request, stakeID uint64) {
	view, err := h.deps.Stake(r.Context(), stakeID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *StakesHandler) handleProgress(w http.ResponseWriter, r *http.Request, stakeID uint64) {
	view, err := h.deps.Progress(r.Context(), stakeID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *StakesHandler) handleMarkTerm(w http.ResponseWriter, r *http.Request, stakeID uint64) {
	const op = "api.mark_term"
	var req markTermRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Principal == "" || req.TermID == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if err := h.deps.MarkTermLearned(r.Context(), req.Principal, stakeID, req.TermID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, markTermResponse{Status: "marked"})
}

func (h *StakesHandler) handleClaim(w http.ResponseWriter, r *http.Request, stakeID uint64) {
	const op = "api.claim_stake"
	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Principal == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	payout, err := h.deps.ClaimStake(r.Context(), req.Principal, stakeID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settleResponse{StakeID: stakeID, Payout: payout})
}

func (h *StakesHandler) handleUnstake(w http.ResponseWriter, r *http.Request, stakeID uint64) {
	const op = "api.unstake"
	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Principal == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	payout, err := h.deps.EmergencyUnstake(r.Context(), req.Principal, stakeID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settleResponse{StakeID: stakeID, Payout: payout})
}
