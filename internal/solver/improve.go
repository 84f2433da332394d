package solver

import (
	"context"
	"math/rand"
	"time"
)

// StopReason explains why local search ended.
type StopReason string

const (
	StopLocalOptimum StopReason = "local_optimum"
	StopTimeBudget   StopReason = "time_budget"
	StopIterationCap StopReason = "iteration_limit"
	StopCanceled     StopReason = "canceled"
	StopNotAttempted StopReason = "not_attempted"
)

const checkClockEvery = 128

// SearchStats summarizes the improvement phase.
type SearchStats struct {
	InitialCost int64
	FinalCost   int64
	Passes      int
	Evaluations int
	Relocates   int
	Swaps       int
	Reversals   int
	StopReason  StopReason
}

// Accepted returns the number of improving moves applied.
func (s SearchStats) Accepted() int { return s.Relocates + s.Swaps + s.Reversals }

// improver runs first-improvement local search over a feasible plan.
// Moves are evaluated on copies and only committed when every touched route
// stays feasible and the total cost strictly decreases.
type improver struct {
	m        *Model
	routes   [][]int
	costs    []int64
	deadline time.Time
	limit    int
	rng      *rand.Rand
	ctx      context.Context
	stats    SearchStats
	stop     StopReason
}

func newImprover(ctx context.Context, m *Model, routes [][]int, opts Options) *improver {
	imp := &improver{
		m:      m,
		routes: make([][]int, len(routes)),
		costs:  make([]int64, len(routes)),
		limit:  opts.IterationLimit,
		ctx:    ctx,
	}
	for v, r := range routes {
		imp.routes[v] = append([]int(nil), r...)
		imp.costs[v] = m.routeCost(r)
		imp.stats.InitialCost += imp.costs[v]
	}
	if opts.TimeBudget > 0 {
		imp.deadline = time.Now().Add(opts.TimeBudget)
	}
	if opts.Seed != 0 {
		imp.rng = rand.New(rand.NewSource(opts.Seed))
	}
	return imp
}

func (imp *improver) total() int64 {
	var t int64
	for _, c := range imp.costs {
		t += c
	}
	return t
}

// halted checks the budget boundaries. The clock is sampled every few
// evaluations to keep the inner loops cheap.
func (imp *improver) halted() bool {
	if imp.stop != "" {
		return true
	}
	if imp.limit > 0 && imp.stats.Accepted() >= imp.limit {
		imp.stop = StopIterationCap
		return true
	}
	if imp.stats.Evaluations%checkClockEvery != 0 {
		return false
	}
	if err := imp.ctx.Err(); err != nil {
		imp.stop = StopCanceled
		return true
	}
	if !imp.deadline.IsZero() && time.Now().After(imp.deadline) {
		imp.stop = StopTimeBudget
		return true
	}
	return false
}

func (imp *improver) order(n int) []int {
	if imp.rng != nil {
		return imp.rng.Perm(n)
	}
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// run improves until a local optimum or a budget boundary is reached.
func (imp *improver) run() SearchStats {
	for {
		imp.stats.Passes++
		improved := imp.relocatePass() || imp.swapPass() || imp.reversePass()
		if imp.stop != "" {
			break
		}
		if !improved {
			imp.stop = StopLocalOptimum
			break
		}
	}
	imp.stats.StopReason = imp.stop
	imp.stats.FinalCost = imp.total()
	return imp.stats
}

// commit atomically replaces the touched routes.
func (imp *improver) commit(a int, ra []int, ca int64, b int, rb []int, cb int64) {
	imp.routes[a], imp.costs[a] = ra, ca
	if b != a {
		imp.routes[b], imp.costs[b] = rb, cb
	}
}

// relocatePass moves one stop to another position, in the same or another route.
func (imp *improver) relocatePass() bool {
	m := imp.m
	vs := imp.order(len(imp.routes))
	for _, a := range vs {
		for i := 0; i < len(imp.routes[a]); i++ {
			src := imp.routes[a]
			s := src[i]
			without := removeAt(src, i)
			withoutCost := m.routeCost(without)

			for _, b := range vs {
				dst := imp.routes[b]
				if b == a {
					dst = without
				}
				for pos := 0; pos <= len(dst); pos++ {
					if b == a && pos == i {
						continue
					}
					imp.stats.Evaluations++
					if imp.halted() {
						return false
					}

					cand := insertAt(dst, pos, s)
					candCost := m.routeCost(cand)

					var before, after int64
					if b == a {
						before, after = imp.costs[a], candCost
					} else {
						before = imp.costs[a] + imp.costs[b]
						after = withoutCost + candCost
					}
					if after >= before {
						continue
					}
					if !m.feasible(b, cand) {
						continue
					}
					if b != a && !m.feasible(a, without) {
						continue
					}

					if b == a {
						imp.commit(a, cand, candCost, a, nil, 0)
					} else {
						imp.commit(a, without, withoutCost, b, cand, candCost)
					}
					imp.stats.Relocates++
					return true
				}
			}
		}
	}
	return false
}

// swapPass exchanges two stops between different routes.
func (imp *improver) swapPass() bool {
	m := imp.m
	vs := imp.order(len(imp.routes))
	for x, a := range vs {
		for _, b := range vs[x+1:] {
			for i := range imp.routes[a] {
				for j := range imp.routes[b] {
					imp.stats.Evaluations++
					if imp.halted() {
						return false
					}

					ra := append([]int(nil), imp.routes[a]...)
					rb := append([]int(nil), imp.routes[b]...)
					ra[i], rb[j] = rb[j], ra[i]

					ca, cb := m.routeCost(ra), m.routeCost(rb)
					if ca+cb >= imp.costs[a]+imp.costs[b] {
						continue
					}
					if !m.feasible(a, ra) || !m.feasible(b, rb) {
						continue
					}

					imp.commit(a, ra, ca, b, rb, cb)
					imp.stats.Swaps++
					return true
				}
			}
		}
	}
	return false
}

// reversePass applies 2-opt: reverse the segment [i, k] of one route.
func (imp *improver) reversePass() bool {
	m := imp.m
	for _, a := range imp.order(len(imp.routes)) {
		r := imp.routes[a]
		for i := 0; i < len(r)-1; i++ {
			for k := i + 1; k < len(r); k++ {
				imp.stats.Evaluations++
				if imp.halted() {
					return false
				}

				cand := reverseSegment(r, i, k)
				c := m.routeCost(cand)
				if c >= imp.costs[a] {
					continue
				}
				if !m.feasible(a, cand) {
					continue
				}

				imp.commit(a, cand, c, a, nil, 0)
				imp.stats.Reversals++
				return true
			}
		}
	}
	return false
}

func removeAt(route []int, i int) []int {
	out := make([]int, 0, len(route)-1)
	out = append(out, route[:i]...)
	return append(out, route[i+1:]...)
}

func reverseSegment(route []int, i, k int) []int {
	out := append([]int(nil), route...)
	for a, b := i, k; a < b; a, b = a+1, b-1 {
		out[a], out[b] = out[b], out[a]
	}
	return out
}
