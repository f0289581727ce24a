// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/termstake/termstake/internal/domain/plan"
)

// RateDependencies defines the interface for rate table queries.
type RateDependencies interface {
	Plans(ctx context.Context) []plan.Plan
	BonusRateBps() uint64
}

// RatesHandler handles rate table requests.
type RatesHandler struct {
	deps RateDependencies
}

// NewRatesHandler creates a new rates handler.
func NewRatesHandler(deps RateDependencies) *RatesHandler {
	return &RatesHandler{deps: deps}
}

// rateEntry is the wire shape of one whitelisted plan.
type rateEntry struct {
	Tier           string `json:"tier"`
	Goal           string `json:"goal"`
	Denomination   uint64 `json:"denomination"`
	RequiredTerms  uint64 `json:"required_terms"`
	LockBlocks     uint64 `json:"lock_blocks"`
	BonusRateBps   uint64 `json:"bonus_rate_bps"`
	PenaltyRateBps uint64 `json:"penalty_rate_bps"`
}

type ratesResponse struct {
	GovernedBonusRateBps uint64      `json:"governed_bonus_rate_bps"`
	Plans                []rateEntry `json:"plans"`
}

// HandleGetRates handles GET /v1/rates requests.
func (h *RatesHandler) HandleGetRates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	plans := h.deps.Plans(r.Context())
	entries := make([]rateEntry, len(plans))
	for i, p := range plans {
		entries[i] = rateEntry{
			Tier:           string(p.Tier),
			Goal:           string(p.Goal),
			Denomination:   p.Denomination,
			RequiredTerms:  p.RequiredTerms,
			LockBlocks:     p.LockBlocks,
			BonusRateBps:   p.BonusRateBps,
			PenaltyRateBps: p.PenaltyRateBps,
		}
	}
	writeJSON(w, http.StatusOK, ratesResponse{
		GovernedBonusRateBps: h.deps.BonusRateBps(),
		Plans:                entries,
	})
}
