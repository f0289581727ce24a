package loadgen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// client wraps http.Client with the ledger's wire shapes.
type client struct {
	http    *http.Client
	baseURL string
}

func newClient(baseURL string, timeout time.Duration) *client {
	return &client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// apiError is the ledger's error envelope.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *client) post(path string, body, out any) (int, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("marshaling request: %w", err)
	}
	resp, err := c.http.Post(c.baseURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("posting %s: %w", path, err)
	}
	return c.finish(resp, out)
}

func (c *client) get(path string, out any) (int, error) {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return 0, fmt.Errorf("getting %s: %w", path, err)
	}
	return c.finish(resp, out)
}

func (c *client) finish(resp *http.Response, out any) (int, error) {
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var e apiError
		if json.Unmarshal(raw, &e) == nil && e.Code != "" {
			return resp.StatusCode, fmt.Errorf("%s: %s", e.Code, e.Message)
		}
		return resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decoding response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func (c *client) createStake(principal string, amount uint64, goal string) (uint64, error) {
	var resp struct {
		StakeID uint64 `json:"stake_id"`
	}
	_, err := c.post("/v1/stakes", map[string]any{
		"principal": principal,
		"amount":    amount,
		"goal_type": goal,
	}, &resp)
	return resp.StakeID, err
}

func (c *client) markTerm(principal string, stakeID, termID uint64) error {
	_, err := c.post(fmt.Sprintf("/v1/stakes/%d/terms", stakeID), map[string]any{
		"principal": principal,
		"term_id":   termID,
	}, nil)
	return err
}

func (c *client) claim(principal string, stakeID uint64) (uint64, int, error) {
	var resp struct {
		Payout uint64 `json:"payout"`
	}
	status, err := c.post(fmt.Sprintf("/v1/stakes/%d/claim", stakeID), map[string]any{
		"principal": principal,
	}, &resp)
	return resp.Payout, status, err
}

func (c *client) unstake(principal string, stakeID uint64) (uint64, error) {
	var resp struct {
		Payout uint64 `json:"payout"`
	}
	_, err := c.post(fmt.Sprintf("/v1/stakes/%d/unstake", stakeID), map[string]any{
		"principal": principal,
	}, &resp)
	return resp.Payout, err
}

func (c *client) advanceChain(blocks uint64) (uint64, error) {
	var resp struct {
		Height uint64 `json:"height"`
	}
	_, err := c.post("/v1/chain/advance", map[string]any{"blocks": blocks}, &resp)
	return resp.Height, err
}

func (c *client) addAdmin(caller, newAdmin string) error {
	_, err := c.post("/v1/governance/admins", map[string]any{
		"principal": caller,
		"new_admin": newAdmin,
	}, nil)
	return err
}

func (c *client) propose(caller, action string, value uint64) (uint64, error) {
	var resp struct {
		ProposalID uint64 `json:"proposal_id"`
	}
	_, err := c.post("/v1/governance/proposals", map[string]any{
		"principal": caller,
		"action":    action,
		"value":     value,
	}, &resp)
	return resp.ProposalID, err
}

func (c *client) approve(caller string, proposalID uint64) (bool, error) {
	var resp struct {
		Executed bool `json:"executed"`
	}
	_, err := c.post(fmt.Sprintf("/v1/governance/proposals/%d/approve", proposalID), map[string]any{
		"principal": caller,
	}, &resp)
	return resp.Executed, err
}

// leaderboardEntry mirrors the leaderboard wire shape.
type leaderboardEntry struct {
	Rank         int    `json:"rank"`
	Principal    string `json:"principal"`
	TermsLearned uint64 `json:"terms_learned"`
}

func (c *client) leaderboard(limit int) ([]leaderboardEntry, error) {
	var entries []leaderboardEntry
	_, err := c.get(fmt.Sprintf("/v1/leaderboard?limit=%d", limit), &entries)
	return entries, err
}

func (c *client) poolBalance() (uint64, error) {
	var resp struct {
		Balance uint64 `json:"balance"`
	}
	_, err := c.get("/v1/pool", &resp)
	return resp.Balance, err
}
