// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/termstake/termstake/internal/domain/model"
)

// PoolDependencies defines the interface for bonus pool queries.
type PoolDependencies interface {
	PoolStats(ctx context.Context) model.PoolStats
}

// PoolHandler handles bonus pool requests.
type PoolHandler struct {
	deps PoolDependencies
}

// NewPoolHandler creates a new pool handler.
func NewPoolHandler(deps PoolDependencies) *PoolHandler {
	return &PoolHandler{deps: deps}
}

// HandleGetPool handles GET /v1/pool requests.
func (h *PoolHandler) HandleGetPool(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.PoolStats(r.Context()))
}
