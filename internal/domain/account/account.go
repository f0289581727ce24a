// Package account keeps spendable balances per principal in microunits.
//
// Unknown principals are provisioned with a configurable starting balance on
// first touch, mirroring a devnet's pre-funded wallets.
package account

import (
	"sync"
)

// Default starting balance for a fresh principal: 100 coins.
const defaultStartingBalance = 100_000_000

// Option applies a configuration option to the Book.
type Option func(*Book)

// WithStartingBalance sets the balance granted to a principal on first sight.
func WithStartingBalance(amount uint64) Option {
	return func(b *Book) {
		b.startingBalance = amount
	}
}

// Book holds the balances of every principal the service has seen.
type Book struct {
	mu              sync.RWMutex
	balances        map[string]uint64
	startingBalance uint64
}

// NewBook creates a balance book with configuration options.
func NewBook(opts ...Option) *Book {
	b := &Book{
		balances:        make(map[string]uint64),
		startingBalance: defaultStartingBalance,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// provision must be called with the write lock held.
func (b *Book) provision(principal string) {
	if _, ok := b.balances[principal]; !ok {
		b.balances[principal] = b.startingBalance
	}
}

// Balance returns the spendable balance of a principal, provisioning it
// first if it has never been seen.
func (b *Book) Balance(principal string) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.provision(principal)
	return b.balances[principal]
}

// Debit removes amount from the principal's balance, or fails with
// ErrInsufficientFunds without any partial transfer.
func (b *Book) Debit(principal string, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.provision(principal)
	if b.balances[principal] < amount {
		return ErrInsufficientFunds
	}
	b.balances[principal] -= amount
	return nil
}

// Credit adds amount to the principal's balance.
func (b *Book) Credit(principal string, amount uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.provision(principal)
	b.balances[principal] += amount
}

// Count returns the number of provisioned principals.
func (b *Book) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.balances)
}
