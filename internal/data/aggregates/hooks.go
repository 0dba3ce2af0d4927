package aggregates

import (
	"strings"
	"time"

	"github.com/yungbote/production-portal-backend/internal/observability"
)

// Hooks receives write-path signals. Every aggregate op reports exactly one
// ObserveOperation; conflict and retry counters fire only for those outcomes.
type Hooks interface {
	ObserveOperation(op, status string, dur time.Duration)
	IncConflict(op string)
	IncRetry(op string)
	// ObserveHistoryRows reports the audit rows a committed write produced.
	ObserveHistoryRows(op string, rows int)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetry(string)                                {}
func (noopHooks) ObserveHistoryRows(string, int)                 {}

// metricsHooks forwards to the Prometheus surface.
type metricsHooks struct {
	m *observability.Metrics
}

func NewObservabilityHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return noopHooks{}
	}
	return metricsHooks{m: metrics}
}

func (h metricsHooks) ObserveOperation(op, status string, dur time.Duration) {
	h.m.ObserveAggregateOperation(strings.TrimSpace(op), strings.TrimSpace(status), dur)
}

func (h metricsHooks) IncConflict(op string) { h.m.IncAggregateConflict(strings.TrimSpace(op)) }

func (h metricsHooks) IncRetry(op string) { h.m.IncAggregateRetry(strings.TrimSpace(op)) }

func (h metricsHooks) ObserveHistoryRows(op string, rows int) {
	h.m.ObserveHistoryRows(strings.TrimSpace(op), rows)
}
