package loadgen

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

// stakePlan mirrors the service's whitelist so the generator can pick
// plausible amounts and term targets without asking the API first.
type stakePlan struct {
	amount        uint64
	goal          string
	requiredTerms uint64
	lockBlocks    uint64
}

var plans = []stakePlan{ //nolint:gochecknoglobals // immutable scenario table
	{amount: 1_000_000, goal: "weekly", requiredTerms: 7, lockBlocks: 1008},
	{amount: 5_000_000, goal: "weekly", requiredTerms: 15, lockBlocks: 1008},
	{amount: 10_000_000, goal: "monthly", requiredTerms: 30, lockBlocks: 4320},
}

// learnerKind drives what a learner does with its stake.
type learnerKind int

const (
	kindFinisher learnerKind = iota // marks everything, claims the bonus
	kindSlacker                     // marks under half, eats the penalty
	kindPartial                     // marks just past half
	kindQuitter                     // exits early without waiting
)

const kindCount = 4

// learner is one simulated principal with a stake scenario.
type learner struct {
	principal   string
	plan        stakePlan
	kind        learnerKind
	termsToMark uint64
	stakeID     uint64
}

// randomInt returns a uniform int in [0, n) using crypto/rand.
func randomInt(n int64) int64 {
	v, _ := rand.Int(rand.Reader, big.NewInt(n))
	return v.Int64()
}

// generateLearners builds one scenario per learner with unique principals.
func generateLearners(n int) []*learner {
	out := make([]*learner, n)
	for i := 0; i < n; i++ {
		p := plans[randomInt(int64(len(plans)))]
		kind := learnerKind(randomInt(kindCount))

		var toMark uint64
		switch kind {
		case kindFinisher:
			toMark = p.requiredTerms
		case kindSlacker:
			toMark = uint64(randomInt(int64(p.requiredTerms / 2)))
		case kindPartial:
			toMark = p.requiredTerms/2 + 1
		case kindQuitter:
			toMark = uint64(randomInt(int64(p.requiredTerms)))
		}

		out[i] = &learner{
			principal:   "learner-" + uuid.New().String(),
			plan:        p,
			kind:        kind,
			termsToMark: toMark,
		}
	}
	return out
}

// maxLockBlocks returns the longest lock among the generated scenarios.
func maxLockBlocks(learners []*learner) uint64 {
	var m uint64
	for _, l := range learners {
		if l.plan.lockBlocks > m {
			m = l.plan.lockBlocks
		}
	}
	return m
}
