package solver

import "math"

// construction is the outcome of the first-solution phase.
type construction struct {
	routes     [][]int
	unassigned []int
}

func (c construction) complete() bool { return len(c.unassigned) == 0 }

// construct builds the seed solution with a path-cheapest-arc strategy.
//
// Each step extends, among every vehicle route (unused vehicles sit at the depot),
// the route whose tail has the cheapest feasible arc to an unvisited location.
// Ties go to the lowest location index, then the lowest vehicle index.
// Stops no tail can take are then offered to cheapest feasible insertion.
func (m *Model) construct() construction {
	routes := make([][]int, m.vehicles)
	tails := make([]cursor, m.vehicles)
	for v := range tails {
		tails[v] = m.start()
	}

	visited := make([]bool, m.n)
	visited[m.depot] = true
	remaining := m.n - 1

	for remaining > 0 {
		bestV, bestNode := -1, -1
		var bestCost int64 = math.MaxInt64
		var bestTail cursor

		for v := 0; v < m.vehicles; v++ {
			from := tails[v].node
			for j := 0; j < m.n; j++ {
				if visited[j] {
					continue
				}
				c := m.ArcCost(from, j)
				if c > bestCost || (c == bestCost && j >= bestNode) {
					continue
				}
				next, ok := m.advance(v, tails[v], j)
				if !ok {
					continue
				}
				if _, ok := m.advance(v, next, m.depot); !ok {
					continue
				}
				bestV, bestNode, bestCost, bestTail = v, j, c, next
			}
		}

		if bestV < 0 {
			break
		}

		routes[bestV] = append(routes[bestV], bestNode)
		tails[bestV] = bestTail
		visited[bestNode] = true
		remaining--
	}

	var unassigned []int
	for j := 0; j < m.n; j++ {
		if !visited[j] {
			unassigned = append(unassigned, j)
		}
	}

	unassigned = m.repair(routes, unassigned)
	return construction{routes: routes, unassigned: unassigned}
}

// repair inserts each leftover stop at its cheapest feasible position over all
// routes and returns the stops that still could not be placed.
func (m *Model) repair(routes [][]int, pending []int) []int {
	var left []int
	for _, s := range pending {
		bestV, bestPos := -1, -1
		var bestDelta int64 = math.MaxInt64

		for v := range routes {
			route := routes[v]
			base := m.routeCost(route)
			for pos := 0; pos <= len(route); pos++ {
				cand := insertAt(route, pos, s)
				delta := m.routeCost(cand) - base
				if delta >= bestDelta {
					continue
				}
				if !m.feasible(v, cand) {
					continue
				}
				bestV, bestPos, bestDelta = v, pos, delta
			}
		}

		if bestV < 0 {
			left = append(left, s)
			continue
		}
		routes[bestV] = insertAt(routes[bestV], bestPos, s)
	}
	return left
}

// insertAt returns a copy of route with s inserted before position pos.
func insertAt(route []int, pos int, s int) []int {
	out := make([]int, 0, len(route)+1)
	out = append(out, route[:pos]...)
	out = append(out, s)
	return append(out, route[pos:]...)
}
