package account

import "errors"

// Sentinel kinds for account errors.
var (
	ErrInsufficientFunds = errors.New("insufficient spendable balance")
)
