// Package sequencer orders all mutating operations into a single global
// sequence. Commands are applied one at a time, in arrival order, by one
// apply goroutine; callers block until their command's effects are fully
// committed or fully rejected. This is what makes pool exhaustion resolve
// strictly first-come-first-served.
package sequencer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/termstake/termstake/pkg/logger"
	"github.com/termstake/termstake/pkg/metrics"
)

// Default sequencer configuration constants.
const (
	defaultQueueSize     = 10_000
	drainShutdownTimeout = 30 * time.Second
)

// Command is a unit of work applied on the sequencer goroutine. It either
// fully commits or fully fails; there is no partial-commit path.
type Command func() (any, error)

type result struct {
	value any
	err   error
}

type submission struct {
	cmd        Command
	reply      chan result
	enqueuedAt time.Time
}

// Sequencer is the single-writer command loop.
type Sequencer struct {
	queue chan submission

	mu      sync.Mutex
	started bool
	closed  bool
	doneCh  chan struct{}

	log logger.Logger
}

// Option applies a configuration option to the Sequencer.
type Option func(*Sequencer, *int)

// WithQueueSize bounds the command queue.
func WithQueueSize(size int) Option {
	return func(_ *Sequencer, queueSize *int) {
		if size > 0 {
			*queueSize = size
		}
	}
}

// WithLogger sets the sequencer's logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Sequencer, _ *int) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates a sequencer with configuration options.
func New(opts ...Option) *Sequencer {
	s := &Sequencer{
		doneCh: make(chan struct{}),
		log:    logger.Get().Named("sequencer"),
	}
	queueSize := defaultQueueSize
	for _, opt := range opts {
		opt(s, &queueSize)
	}
	s.queue = make(chan submission, queueSize)

	metrics.UpdateCommandQueueDepth(0)
	return s
}

// Start launches the apply loop.
func (s *Sequencer) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true

	go s.run(ctx)
}

func (s *Sequencer) run(ctx context.Context) {
	defer close(s.doneCh)

	for sub := range s.queue {
		metrics.UpdateCommandQueueDepth(len(s.queue))

		value, err := sub.cmd()
		sub.reply <- result{value: value, err: err}

		metrics.RecordCommandLatency(float64(time.Since(sub.enqueuedAt).Milliseconds()))

		select {
		case <-ctx.Done():
			// Keep draining so queued callers are not left hanging; new
			// submissions are refused once Stop closes the queue.
			s.log.Debug(ctx, "context canceled; draining remaining commands")
		default:
		}
	}
}

// Submit enqueues a command and blocks until it has been applied.
// Returns ErrBackpressure when the queue is full and ErrStopped when the
// sequencer is shut down.
func (s *Sequencer) Submit(ctx context.Context, cmd Command) (any, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrStopped
	}
	sub := submission{
		cmd:        cmd,
		reply:      make(chan result, 1),
		enqueuedAt: time.Now(),
	}
	select {
	case s.queue <- sub:
		s.mu.Unlock()
	default:
		s.mu.Unlock()
		metrics.RecordCommandRejection()
		return nil, ErrBackpressure
	}

	metrics.UpdateCommandQueueDepth(len(s.queue))

	select {
	case res := <-sub.reply:
		return res.value, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("awaiting command result: %w", ctx.Err())
	}
}

// Stop closes the queue and waits for queued commands to drain.
func (s *Sequencer) Stop() error {
	s.mu.Lock()
	if !s.started || s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	select {
	case <-s.doneCh:
		return nil
	case <-time.After(drainShutdownTimeout):
		return ErrDrainTimeout
	}
}
