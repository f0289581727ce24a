// Package pool implements the shared bonus pool: a single balance credited by
// penalties and governance funding and debited by successful settlements.
package pool

import (
	"sync"

	"github.com/termstake/termstake/internal/domain/model"
	"github.com/termstake/termstake/pkg/metrics"
)

// Pool is the process-wide bonus pool. The balance never goes negative: a
// debit that cannot be covered fails whole, with no partial payment.
type Pool struct {
	mu            sync.RWMutex
	balance       uint64
	totalCredited uint64
	totalDebited  uint64
}

// New creates an empty pool.
func New() *Pool {
	return &Pool{}
}

// Credit unconditionally increases the balance.
func (p *Pool) Credit(amount uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.balance += amount
	p.totalCredited += amount

	metrics.RecordPoolCredit(amount)
	metrics.UpdatePoolBalance(p.balance)
}

// Debit decreases the balance, or fails with ErrInsufficientBalance when the
// pool cannot cover the full amount.
func (p *Pool) Debit(amount uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.balance < amount {
		metrics.RecordPoolShortfall()
		return ErrInsufficientBalance
	}
	p.balance -= amount
	p.totalDebited += amount

	metrics.RecordPoolDebit(amount)
	metrics.UpdatePoolBalance(p.balance)
	return nil
}

// Balance returns the current balance.
func (p *Pool) Balance() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.balance
}

// Stats returns the balance plus lifetime credit/debit totals.
func (p *Pool) Stats() model.PoolStats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return model.PoolStats{
		Balance:       p.balance,
		TotalCredited: p.totalCredited,
		TotalDebited:  p.totalDebited,
	}
}
