// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
)

// ChainDependencies defines the interface for block clock operations.
type ChainDependencies interface {
	Height() uint64
	AdvanceChain(ctx context.Context, n uint64) (uint64, error)
}

// ChainHandler handles block clock requests.
type ChainHandler struct {
	deps ChainDependencies
}

// NewChainHandler creates a new chain handler.
func NewChainHandler(deps ChainDependencies) *ChainHandler {
	return &ChainHandler{deps: deps}
}

type heightResponse struct {
	Height uint64 `json:"height"`
}

// advanceRequest mirrors the POST /v1/chain/advance schema.
type advanceRequest struct {
	Blocks uint64 `json:"blocks"`
}

// HandleGetChain handles GET /v1/chain requests.
func (h *ChainHandler) HandleGetChain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, heightResponse{Height: h.deps.Height()})
}

// HandleAdvance handles POST /v1/chain/advance requests.
func (h *ChainHandler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	const op = "api.advance_chain"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req advanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Blocks == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	height, err := h.deps.AdvanceChain(r.Context(), req.Blocks)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, heightResponse{Height: height})
}
