package dataset

import (
	"sync/atomic"
	"time"

	"github.com/dennisdiepolder/monti/kpiquery/internal/textnorm"
	"github.com/dennisdiepolder/monti/kpiquery/internal/types"
)

// Agent is a distinct agent name with its folded form for matching
type Agent struct {
	Name string
	Key  string
}

// Table is the read-only set of records answered against
type Table struct {
	records  []types.Record
	agents   []Agent
	loadedAt time.Time
}

// NewTable builds a table and indexes its distinct agent names in
// first-appearance order
func NewTable(records []types.Record) *Table {
	seen := make(map[string]bool)
	agents := make([]Agent, 0)
	for _, rec := range records {
		if rec.AgentName == "" || seen[rec.AgentName] {
			continue
		}
		seen[rec.AgentName] = true
		agents = append(agents, Agent{Name: rec.AgentName, Key: textnorm.Fold(rec.AgentName)})
	}

	return &Table{
		records:  records,
		agents:   agents,
		loadedAt: time.Now(),
	}
}

// Records returns all rows. Callers must not modify them.
func (t *Table) Records() []types.Record { return t.records }

// Len returns the number of rows
func (t *Table) Len() int { return len(t.records) }

// Agents returns the distinct agent names
func (t *Table) Agents() []Agent { return t.agents }

// LoadedAt returns when the table was built
func (t *Table) LoadedAt() time.Time { return t.loadedAt }

// Holder publishes the current table to concurrent readers. Reloads swap
// the whole table; a published table is never modified.
type Holder struct {
	current atomic.Pointer[Table]
}

// NewHolder creates a holder serving the given table
func NewHolder(t *Table) *Holder {
	h := &Holder{}
	h.current.Store(t)
	return h
}

// Current returns the table in service
func (h *Holder) Current() *Table {
	return h.current.Load()
}

// Swap replaces the table in service and returns the previous one
func (h *Holder) Swap(t *Table) *Table {
	return h.current.Swap(t)
}
