package diagnostics

import (
	"sync"
	"time"
)

// DefaultCapacity is the number of reports a Collector keeps by default.
const DefaultCapacity = 100

// Collector keeps the most recent reports in memory, oldest dropped first.
// Safe for concurrent use.
type Collector struct {
	mu      sync.Mutex
	reports []Report
	limit   int
	total   uint64
	now     func() time.Time
}

// NewCollector creates a collector holding at most capacity reports.
// A non-positive capacity uses DefaultCapacity.
func NewCollector(capacity int) *Collector {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Collector{
		reports: make([]Report, 0, capacity),
		limit:   capacity,
		now:     time.Now,
	}
}

// Report implements Sink.
func (c *Collector) Report(code, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.total++
	if len(c.reports) == c.limit {
		copy(c.reports, c.reports[1:])
		c.reports = c.reports[:c.limit-1]
	}
	c.reports = append(c.reports, Report{Code: code, Message: message, At: c.now().UTC()})
}

// Reports returns a copy of the retained reports, oldest first.
func (c *Collector) Reports() []Report {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Report, len(c.reports))
	copy(out, c.reports)
	return out
}

// Total returns how many reports were received since the last Reset,
// including those no longer retained.
func (c *Collector) Total() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Reset clears the retained reports and the total.
func (c *Collector) Reset() {
	c.mu.Lock()
	c.reports = c.reports[:0]
	c.total = 0
	c.mu.Unlock()
}
