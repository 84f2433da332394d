package solver

// cursor is the state of both dimensions after arriving at node.
type cursor struct {
	node       int
	time       int64
	load       float64
	breakTaken bool
}

// start places a vehicle at the depot when the depot window opens.
func (m *Model) start() cursor {
	return cursor{node: m.depot, time: m.earliest[m.depot]}
}

// advance propagates the time and capacity dimensions along the arc cur.node -> next.
//
// Arrival is clamped up to the window opening (the vehicle waits), and the arc
// is rejected when arrival exceeds the window closing, the horizon, or when the
// cumulative load leaves [0, capacity].
func (m *Model) advance(v int, cur cursor, next int) (cursor, bool) {
	if next == cur.node {
		return cur, false
	}

	depart := cur.time + m.service[cur.node]
	travel := m.travel(cur.node, next)
	taken := cur.breakTaken

	if m.breaks != nil && !taken && depart+travel > m.breaks[v].Start {
		b := m.breaks[v]
		breakStart := depart
		if breakStart < b.Start {
			breakStart = b.Start
		}
		if breakStart > b.End {
			return cur, false
		}
		depart = breakStart + b.duration()
		taken = true
	}

	arrive := depart + travel
	if arrive < m.earliest[next] {
		if m.maxWait > 0 && m.earliest[next]-arrive > m.maxWait {
			return cur, false
		}
		arrive = m.earliest[next]
	}
	if arrive > m.latest[next] || arrive > m.horizon {
		return cur, false
	}

	load := cur.load
	if next != m.depot {
		load += m.demand[next]
		if load < 0 || load > m.capacity[v] {
			return cur, false
		}
	}

	return cursor{node: next, time: arrive, load: load, breakTaken: taken}, true
}

// feasible reports whether vehicle v can serve stops in order and return to the depot.
func (m *Model) feasible(v int, stops []int) bool {
	if len(stops) == 0 {
		return true
	}
	cur := m.start()
	for _, s := range stops {
		var ok bool
		if cur, ok = m.advance(v, cur, s); !ok {
			return false
		}
	}
	_, ok := m.advance(v, cur, m.depot)
	return ok
}

// schedule returns the minimum feasible arrival time at every visit of the
// route depot -> stops... -> depot, and the final load.
func (m *Model) schedule(v int, stops []int) ([]int64, float64, bool) {
	arrivals := make([]int64, 0, len(stops)+2)
	cur := m.start()
	arrivals = append(arrivals, cur.time)
	for _, s := range stops {
		var ok bool
		if cur, ok = m.advance(v, cur, s); !ok {
			return nil, 0, false
		}
		arrivals = append(arrivals, cur.time)
	}
	end, ok := m.advance(v, cur, m.depot)
	if !ok {
		return nil, 0, false
	}
	arrivals = append(arrivals, end.time)
	return arrivals, cur.load, true
}

// routeCost is the objective value of depot -> stops... -> depot.
// An unused vehicle costs nothing.
func (m *Model) routeCost(stops []int) int64 {
	if len(stops) == 0 {
		return 0
	}
	total := m.ArcCost(m.depot, stops[0])
	for i := 1; i < len(stops); i++ {
		total += m.ArcCost(stops[i-1], stops[i])
	}
	return total + m.ArcCost(stops[len(stops)-1], m.depot)
}
