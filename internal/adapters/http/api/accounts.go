// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"
)

// AccountDependencies defines the interface for account queries.
type AccountDependencies interface {
	AccountBalance(ctx context.Context, principal string) uint64
}

// AccountsHandler handles account balance requests.
type AccountsHandler struct {
	deps AccountDependencies
}

// NewAccountsHandler creates a new accounts handler.
func NewAccountsHandler(deps AccountDependencies) *AccountsHandler {
	return &AccountsHandler{deps: deps}
}

type accountResponse struct {
	Principal string `json:"principal"`
	Balance   uint64 `json:"balance"`
}

// HandleGetAccount handles GET /v1/accounts/{principal} requests.
func (h *AccountsHandler) HandleGetAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	principal := strings.TrimPrefix(r.URL.Path, "/v1/accounts/")
	if principal == "" || strings.Contains(principal, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, accountResponse{
		Principal: principal,
		Balance:   h.deps.AccountBalance(r.Context(), principal),
	})
}
