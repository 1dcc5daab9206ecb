package orchestrator

import "sync/atomic"

// Report aggregates one orchestrator run. Every considered item lands in
// exactly one of updated/expired/sold/errors or is implied unchanged.
type Report struct {
	Total   int64 `json:"total"`
	Updated int64 `json:"updated"`
	Expired int64 `json:"expired"`
	Sold    int64 `json:"sold"`
	Errors  int64 `json:"errors"`
}

// Unchanged returns the implied count of items with no state change
func (r *Report) Unchanged() int64 {
	return r.Total - r.Updated - r.Expired - r.Sold - r.Errors
}

// counters accumulates run outcomes. Atomic because multiple item
// completions may land concurrently.
type counters struct {
	total   atomic.Int64
	updated atomic.Int64
	expired atomic.Int64
	sold    atomic.Int64
	errors  atomic.Int64
}

// snapshot freezes the counters into a Report
func (c *counters) snapshot() *Report {
	return &Report{
		Total:   c.total.Load(),
		Updated: c.updated.Load(),
		Expired: c.expired.Load(),
		Sold:    c.sold.Load(),
		Errors:  c.errors.Load(),
	}
}
