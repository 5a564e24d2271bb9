package services

import (
	"context"
	"hash/fnv"
	"log"
	"math/rand"
	"time"
)

// Pair is an unordered pairing of two distinct users.
type Pair struct {
	UserA string `json:"userA"`
	UserB string `json:"userB"`
}

// CycleStats summarises one generation pass. UnderTarget counting users who
// ended below the minimum is a reported statistic, never a failure.
type CycleStats struct {
	CycleID         string         `json:"cycleId"`
	EligibleUsers   int            `json:"eligibleUsers"`
	Pairs           int            `json:"pairs"`
	Committed       int            `json:"committed"`
	UnderTarget     int            `json:"underTarget"`
	CapacityWarning bool           `json:"capacityWarning"`
	DegreeByUser    map[string]int `json:"degreeByUser,omitempty"`
	GeneratedAt     string         `json:"generatedAt"`
}

// RecentPairFilter reports whether two users were paired within the
// configured avoidance window. Implementations must be read-only.
type RecentPairFilter interface {
	RecentlyPaired(ctx context.Context, a, b string) bool
}

// PairingService builds the per-cycle pairing assignment.
type PairingService struct {
	TargetMin int
	TargetMax int
	Recent    RecentPairFilter
}

// pairKey normalises an unordered pair to a single map key.
func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

// seedForCycle derives the shuffle seed from the cycle id, so re-running a
// cycle (or a second concurrent run of it) regenerates the same assignment
// and the conditional commit becomes a pure no-op merge.
func seedForCycle(cycleID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(cycleID))
	return int64(h.Sum64())
}

// GeneratePairs edge-covers the eligible pool so that each user's match
// count lands in [TargetMin, TargetMax] whenever the pool size allows it.
// Self-pairs, duplicate pairs and recently-paired pairs are rejected. Pools
// of size 0 or 1 produce an empty assignment without error.
func (ps *PairingService) GeneratePairs(ctx context.Context, cycleID string, eligible []string) ([]Pair, CycleStats) {
	stats := CycleStats{
		CycleID:       cycleID,
		EligibleUsers: len(eligible),
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if len(eligible) < 2 {
		stats.CapacityWarning = len(eligible) == 1
		return nil, stats
	}

	// A user cannot have more partners than exist.
	targetMin, targetMax := ps.TargetMin, ps.TargetMax
	if cap := len(eligible) - 1; targetMin > cap {
		targetMin = cap
	}
	if cap := len(eligible) - 1; targetMax > cap {
		targetMax = cap
	}
	if len(eligible) < ps.TargetMin+1 {
		stats.CapacityWarning = true
		log.Printf("⚠️ Pool of %d cannot honor target of %d matches per user for cycle %s", len(eligible), ps.TargetMin, cycleID)
	}

	rng := rand.New(rand.NewSource(seedForCycle(cycleID)))
	order := append([]string(nil), eligible...)

	degree := make(map[string]int, len(order))
	seen := make(map[string]struct{})
	var pairs []Pair

	tryLink := func(a, b string) bool {
		if a == b {
			return false
		}
		if degree[a] >= targetMax || degree[b] >= targetMax {
			return false
		}
		key := pairKey(a, b)
		if _, dup := seen[key]; dup {
			return false
		}
		if ps.Recent != nil && ps.Recent.RecentlyPaired(ctx, a, b) {
			return false
		}
		seen[key] = struct{}{}
		degree[a]++
		degree[b]++
		pairs = append(pairs, Pair{UserA: a, UserB: b})
		return true
	}

	// Round-based construction: shuffle, then greedily link each unlinked
	// user to the nearest valid partner further along the order. Each round
	// raises most degrees by one; the extra rounds absorb skipped edges.
	// Bounded by O(poolSize × targetMax) attempted links.
	maxRounds := targetMax + 2
	for round := 0; round < maxRounds; round++ {
		if minDegree(degree, order) >= targetMin {
			break
		}
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		linked := make(map[string]bool, len(order))
		progress := false
		for i := 0; i < len(order); i++ {
			a := order[i]
			if linked[a] || degree[a] >= targetMax {
				continue
			}
			for j := i + 1; j < len(order); j++ {
				b := order[j]
				if linked[b] {
					continue
				}
				if tryLink(a, b) {
					linked[a], linked[b] = true, true
					progress = true
					break
				}
			}
		}
		if !progress {
			break
		}
	}

	// Repair pass: users still under the minimum take any partner with
	// headroom. Whoever remains under afterwards is reported, not failed.
	for _, a := range order {
		for _, b := range order {
			if degree[a] >= targetMin {
				break
			}
			tryLink(a, b)
		}
	}

	for _, u := range order {
		if degree[u] < targetMin {
			stats.UnderTarget++
			stats.CapacityWarning = true
		}
	}
	stats.Pairs = len(pairs)
	stats.DegreeByUser = degree

	log.Printf("✅ Generated %d pairs for cycle %s (%d users, %d under target)", len(pairs), cycleID, len(order), stats.UnderTarget)
	return pairs, stats
}

func minDegree(degree map[string]int, users []string) int {
	min := -1
	for _, u := range users {
		if min == -1 || degree[u] < min {
			min = degree[u]
		}
	}
	return min
}
