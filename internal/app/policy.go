package app

import (
	"sync/atomic"
	"time"

	"github.com/bft-labs/shiplog/pkg/ais"
)

// DefaultIntervals maps navigational status to sampling delay. Statuses that
// are absent never schedule a sample.
var DefaultIntervals = map[ais.NavStatus]time.Duration{
	ais.UnderWayUsingEngine:       10 * time.Second,
	ais.AtAnchor:                  120 * time.Second,
	ais.Moored:                    120 * time.Second,
	ais.RestrictedManoeuvrability: 30 * time.Second,
	ais.Undefined:                 60 * time.Second,
}

// IntervalPolicy maps a navigational status to the delay before its sample
// is committed. The table can be replaced while sessions use the policy.
type IntervalPolicy struct {
	table atomic.Pointer[map[ais.NavStatus]time.Duration]
}

// NewIntervalPolicy returns a policy using table, or DefaultIntervals when
// table is nil.
func NewIntervalPolicy(table map[ais.NavStatus]time.Duration) *IntervalPolicy {
	p := &IntervalPolicy{}
	p.Replace(table)
	return p
}

// Delay returns the delay for status. It reports false when the status has
// no entry, meaning no sample is scheduled.
func (p *IntervalPolicy) Delay(status ais.NavStatus) (time.Duration, bool) {
	d, ok := (*p.table.Load())[status]
	if !ok || d <= 0 {
		return 0, false
	}
	return d, true
}

// Replace swaps in a new table. A nil table restores DefaultIntervals.
func (p *IntervalPolicy) Replace(table map[ais.NavStatus]time.Duration) {
	if table == nil {
		table = DefaultIntervals
	}
	cp := make(map[ais.NavStatus]time.Duration, len(table))
	for k, v := range table {
		cp[k] = v
	}
	p.table.Store(&cp)
}

// Table returns a copy of the current table.
func (p *IntervalPolicy) Table() map[ais.NavStatus]time.Duration {
	cur := *p.table.Load()
	cp := make(map[ais.NavStatus]time.Duration, len(cur))
	for k, v := range cur {
		cp[k] = v
	}
	return cp
}
