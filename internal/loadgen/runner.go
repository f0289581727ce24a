package loadgen

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Governance identities used to fund the pool before settlement.
const (
	deployerPrincipal  = "deployer"
	treasurerPrincipal = "loadgen-treasurer"
)

// Run drives the full scenario against a live service and reports stats.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	c := newClient(cfg.BaseURL, cfg.Timeout)

	log.Printf("funding pool with %d microunits through governance...", cfg.PoolFunding)
	if err := fundPool(c, cfg.PoolFunding); err != nil {
		return nil, fmt.Errorf("funding pool: %w", err)
	}

	log.Printf("generating %d learner scenarios...", cfg.NumLearners)
	learners := generateLearners(cfg.NumLearners)
	stats.LearnersGenerated = len(learners)

	log.Printf("opening stakes with %d workers...", cfg.Workers)
	if err := forEachLearner(ctx, cfg.Workers, learners, func(l *learner) error {
		id, err := c.createStake(l.principal, l.plan.amount, l.plan.goal)
		if err != nil {
			return err
		}
		l.stakeID = id
		return nil
	}, &stats.StakesCreated, &stats.Failures); err != nil {
		return stats, err
	}

	log.Printf("marking terms...")
	var marked int64
	if err := forEachLearner(ctx, cfg.Workers, learners, func(l *learner) error {
		for term := uint64(1); term <= l.termsToMark; term++ {
			if err := c.markTerm(l.principal, l.stakeID, term); err != nil {
				return err
			}
			atomic.AddInt64(&marked, 1)
		}
		return nil
	}, nil, &stats.Failures); err != nil {
		return stats, err
	}
	stats.TermsMarked = int(atomic.LoadInt64(&marked))

	// Quitters bail out before the lock expires.
	log.Printf("running early exits...")
	var exits int64
	for _, l := range learners {
		if l.kind != kindQuitter || l.stakeID == 0 {
			continue
		}
		if _, err := c.unstake(l.principal, l.stakeID); err != nil {
			stats.Failures++
			continue
		}
		atomic.AddInt64(&exits, 1)
	}
	stats.EarlyExits = int(atomic.LoadInt64(&exits))

	blocks := maxLockBlocks(learners)
	log.Printf("advancing chain by %d blocks...", blocks)
	if _, err := c.advanceChain(blocks); err != nil {
		return stats, fmt.Errorf("advancing chain: %w", err)
	}

	log.Printf("claiming settled stakes...")
	var settled, rejected int64
	if err := forEachLearner(ctx, cfg.Workers, learners, func(l *learner) error {
		if l.kind == kindQuitter || l.stakeID == 0 {
			return nil
		}
		_, status, err := c.claim(l.principal, l.stakeID)
		if err != nil {
			if status == http.StatusConflict {
				// Pool exhaustion: the stake stays active.
				atomic.AddInt64(&rejected, 1)
				return nil
			}
			return err
		}
		atomic.AddInt64(&settled, 1)
		return nil
	}, nil, &stats.Failures); err != nil {
		return stats, err
	}
	stats.ClaimsSettled = int(atomic.LoadInt64(&settled))
	stats.ClaimsRejected = int(atomic.LoadInt64(&rejected))

	if err := verifyLeaderboard(c, cfg.TopN, cfg.Verbose); err != nil {
		return stats, err
	}

	balance, err := c.poolBalance()
	if err != nil {
		return stats, fmt.Errorf("reading pool: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	log.Printf("run complete in %s: %d stakes, %d terms, %d settled, %d held back, %d early exits, pool=%d",
		stats.Duration.Round(time.Millisecond), stats.StakesCreated, stats.TermsMarked,
		stats.ClaimsSettled, stats.ClaimsRejected, stats.EarlyExits, balance)
	return stats, nil
}

// fundPool runs one two-admin governance round crediting the pool.
func fundPool(c *client, value uint64) error {
	if value == 0 {
		return nil
	}
	if err := c.addAdmin(deployerPrincipal, treasurerPrincipal); err != nil {
		return err
	}
	id, err := c.propose(deployerPrincipal, "fund-pool", value)
	if err != nil {
		return err
	}
	executed, err := c.approve(treasurerPrincipal, id)
	if err != nil {
		return err
	}
	if !executed {
		return fmt.Errorf("fund-pool proposal %d did not execute", id)
	}
	return nil
}

// forEachLearner fans learners out over a worker pool. The first hard error
// cancels the run; nil counters are skipped.
func forEachLearner(ctx context.Context, workers int, learners []*learner, fn func(*learner) error, okCount, failCount *int) error {
	if workers < 1 {
		workers = 1
	}

	work := make(chan *learner, workers*2)
	var wg sync.WaitGroup
	var ok, failed int64
	var firstErr error
	var errOnce sync.Once

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for l := range work {
				select {
				case <-runCtx.Done():
					return
				default:
				}
				if err := fn(l); err != nil {
					atomic.AddInt64(&failed, 1)
					errOnce.Do(func() {
						firstErr = err
						cancel()
					})
					continue
				}
				atomic.AddInt64(&ok, 1)
			}
		}()
	}

	for _, l := range learners {
		select {
		case <-runCtx.Done():
		case work <- l:
		}
	}
	close(work)
	wg.Wait()

	if okCount != nil {
		*okCount += int(atomic.LoadInt64(&ok))
	}
	if failCount != nil {
		*failCount += int(atomic.LoadInt64(&failed))
	}
	return firstErr
}

// verifyLeaderboard checks the ranking the service reports is ordered.
func verifyLeaderboard(c *client, topN int, verbose bool) error {
	if topN < 1 {
		return nil
	}
	entries, err := c.leaderboard(topN)
	if err != nil {
		return fmt.Errorf("reading leaderboard: %w", err)
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].TermsLearned > entries[i-1].TermsLearned {
			return fmt.Errorf("leaderboard out of order at rank %d", entries[i].Rank)
		}
		if entries[i].Rank != entries[i-1].Rank+1 {
			return fmt.Errorf("leaderboard ranks not consecutive at %d", entries[i].Rank)
		}
	}
	if verbose {
		for _, e := range entries {
			log.Printf("  #%d %s terms=%d", e.Rank, e.Principal, e.TermsLearned)
		}
	}
	log.Printf("leaderboard verified: %d entries ordered", len(entries))
	return nil
}
