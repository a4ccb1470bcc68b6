package journal

import (
	"github.com/tradeops/trade-governor/internal/conditions"
	"github.com/tradeops/trade-governor/internal/governance"
)

// DecisionEntry is one governance evaluation as journaled.
type DecisionEntry struct {
	Decision   governance.Decision
	Signals    conditions.SignalVector
	LiveScope  string
	PaperScope string
}

// LifecycleEntry is one proposal transition as journaled.
type LifecycleEntry struct {
	Event      string // "approved" or "rejected"
	ProposalID string
	Actor      string
	Detail     string // notes or rejection reason
}

// Recorder persists governance history for later audit queries. Journaling is
// best-effort: callers log write failures and carry on, never failing the
// governed action.
type Recorder interface {
	RecordDecision(e DecisionEntry) error
	RecordLifecycle(e LifecycleEntry) error
	Close() error
}

// Noop is a Recorder that discards everything. Used when journaling is
// disabled in config.
type Noop struct{}

// RecordDecision discards the entry.
func (Noop) RecordDecision(DecisionEntry) error { return nil }

// RecordLifecycle discards the entry.
func (Noop) RecordLifecycle(LifecycleEntry) error { return nil }

// Close is a no-op.
func (Noop) Close() error { return nil }
