// Package chain provides the logical block clock. All durations in the
// system are height deltas; nothing is measured in wall-clock time.
package chain

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/termstake/termstake/pkg/metrics"
)

// HeightSource reads the current block height.
type HeightSource interface {
	Height() uint64
}

// Clock is an advancing block-height counter. Height moves via Advance (the
// devnet "mine empty blocks" operation) and, optionally, a background ticker.
type Clock struct {
	height   atomic.Uint64
	interval time.Duration

	mu      sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
}

// Option applies a configuration option to the Clock.
type Option func(*Clock)

// WithInterval enables auto-advance: the height increments once per interval
// while the clock is running. Zero or negative disables it.
func WithInterval(interval time.Duration) Option {
	return func(c *Clock) {
		if interval > 0 {
			c.interval = interval
		}
	}
}

// WithStartHeight sets the initial height.
func WithStartHeight(height uint64) Option {
	return func(c *Clock) {
		c.height.Store(height)
	}
}

// NewClock creates a block clock with configuration options.
func NewClock(opts ...Option) *Clock {
	c := &Clock{}
	for _, opt := range opts {
		opt(c)
	}
	metrics.UpdateChainHeight(c.height.Load())
	return c
}

// Height returns the current block height.
func (c *Clock) Height() uint64 {
	return c.height.Load()
}

// Advance moves the height forward by n blocks and returns the new height.
func (c *Clock) Advance(n uint64) uint64 {
	h := c.height.Add(n)
	metrics.UpdateChainHeight(h)
	return h
}

// Start launches the auto-advance ticker if an interval is configured.
// It is a no-op otherwise.
func (c *Clock) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started || c.interval <= 0 {
		return
	}
	c.started = true
	c.stopCh = make(chan struct{})
	c.doneCh = make(chan struct{})

	go func() {
		defer close(c.doneCh)
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-c.stopCh:
				return
			case <-ticker.C:
				c.Advance(1)
			}
		}
	}()
}

// Stop halts the auto-advance ticker and waits for it to exit.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return
	}
	close(c.stopCh)
	<-c.doneCh
	c.started = false
}
