// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/termstake/termstake/internal/domain/model"
)

// GovernanceDependencies defines the interface for governance operations.
type GovernanceDependencies interface {
	AddAdmin(ctx context.Context, caller, principal string) error
	ProposeAction(ctx context.Context, caller string, action model.ActionKind, value uint64) (uint64, error)
	ApproveProposal(ctx context.Context, caller string, proposalID uint64) (bool, error)
	Proposal(ctx context.Context, proposalID uint64) (model.ProposalView, error)
}

// GovernanceHandler handles governance requests.
type GovernanceHandler struct {
	deps GovernanceDependencies
}

// NewGovernanceHandler creates a new governance handler.
func NewGovernanceHandler(deps GovernanceDependencies) *GovernanceHandler {
	return &GovernanceHandler{deps: deps}
}

// addAdminRequest mirrors the POST /v1/governance/admins schema.
type addAdminRequest struct {
	Principal string `json:"principal"`
	NewAdmin  string `json:"new_admin"`
}

// proposeRequest mirrors the POST /v1/governance/proposals schema.
type proposeRequest struct {
	Principal string `json:"principal"`
	Action    string `json:"action"`
	Value     uint64 `json:"value"`
}

type proposeResponse struct {
	ProposalID uint64 `json:"proposal_id"`
}

// approveRequest mirrors the POST /v1/governance/proposals/{id}/approve schema.
type approveRequest struct {
	Principal string `json:"principal"`
}

type approveResponse struct {
	ProposalID uint64 `json:"proposal_id"`
	Executed   bool   `json:"executed"`
}

type addAdminResponse struct {
	Status string `json:"status"`
}

// HandleAdmins handles POST /v1/governance/admins requests.
func (h *GovernanceHandler) HandleAdmins(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_admin"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req addAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Principal == "" || req.NewAdmin == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if err := h.deps.AddAdmin(r.Context(), req.Principal, req.NewAdmin); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, addAdminResponse{Status: "added"})
}

// HandleProposals handles POST /v1/governance/proposals requests.
func (h *GovernanceHandler) HandleProposals(w http.ResponseWriter, r *http.Request) {
	const op = "api.propose"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req proposeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Principal == "" || req.Action == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	id, err := h.deps.ProposeAction(r.Context(), req.Principal, model.ActionKind(req.Action), req.Value)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, proposeResponse{ProposalID: id})
}

// HandleProposal handles GET /v1/governance/proposals/{id} and
// POST /v1/governance/proposals/{id}/approve requests.
func (h *GovernanceHandler) HandleProposal(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/governance/proposals/")
	idStr, sub, _ := strings.Cut(rest, "/")
	proposalID, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || proposalID == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	switch {
	case sub == "" && r.Method == http.MethodGet:
		h.handleGet(w, r, proposalID)
	case sub == "approve" && r.Method == http.MethodPost:
		h.handleApprove(w, r, proposalID)
	default:
		http.NotFound(w, r)
	}
}

func (h *GovernanceHandler) handleGet(w http.ResponseWriter, r *http.Request, proposalID uint64) {
	view, err := h.deps.Proposal(r.Context(), proposalID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *GovernanceHandler) handleApprove(w http.ResponseWriter, r *http.Request, proposalID uint64) {
	const op = "api.approve"
	var req approveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Principal == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	executed, err := h.deps.ApproveProposal(r.Context(), req.Principal, proposalID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, approveResponse{ProposalID: proposalID, Executed: executed})
}
