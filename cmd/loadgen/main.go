package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/termstake/termstake/internal/loadgen"
)

// Default configuration constants.
const (
	defaultLearners   = 200
	defaultTopN       = 20
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
	defaultFunding    = 500_000_000
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:9080", "Base URL of the service")
		learners = flag.Int("learners", defaultLearners, "Number of learner principals to simulate")
		workers  = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		funding  = flag.Uint64("fund", defaultFunding, "Microunits pushed into the bonus pool before claiming")
		topN     = flag.Int("top", defaultTopN, "Leaderboard entries to fetch for verification")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &loadgen.Config{
		BaseURL:     *baseURL,
		NumLearners: *learners,
		Workers:     *workers,
		Timeout:     *timeout,
		PoolFunding: *funding,
		TopN:        *topN,
		Verbose:     *verbose,
	}

	if _, err := loadgen.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("load run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
