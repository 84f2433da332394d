package ports

// Diagnostics receives solver and planner events.
// Implementations must be safe for concurrent use by independent solves.
type Diagnostics interface {
	Record(event string, fields map[string]any)
}
