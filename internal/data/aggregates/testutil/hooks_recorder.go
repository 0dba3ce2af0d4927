package testutil

import (
	"sync"
	"time"

	"github.com/yungbote/production-portal-backend/internal/data/aggregates"
)

// HooksRecorder keeps every hook call so tests can assert on them afterwards.
type HooksRecorder struct {
	mu sync.Mutex

	Operations  []OperationEvent
	Conflicts   []string
	Retries     []string
	HistoryRows map[string]int
}

type OperationEvent struct {
	Name     string
	Status   string
	Duration time.Duration
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveOperation(name, status string, dur time.Duration) {
	h.record(func() { h.Operations = append(h.Operations, OperationEvent{name, status, dur}) })
}

func (h *HooksRecorder) IncConflict(name string) {
	h.record(func() { h.Conflicts = append(h.Conflicts, name) })
}

func (h *HooksRecorder) IncRetry(name string) {
	h.record(func() { h.Retries = append(h.Retries, name) })
}

// ObserveHistoryRows sums rows per operation.
func (h *HooksRecorder) ObserveHistoryRows(op string, rows int) {
	h.record(func() {
		if h.HistoryRows == nil {
			h.HistoryRows = map[string]int{}
		}
		h.HistoryRows[op] += rows
	})
}

func (h *HooksRecorder) record(fn func()) {
	h.mu.Lock()
	fn()
	h.mu.Unlock()
}
