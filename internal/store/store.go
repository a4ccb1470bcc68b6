package store

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tradeops/trade-governor/internal/scope"
)

// ScopeSummary is one externally-written daily record for a scope. Streams are
// append-only and ordered by date; only the most recent handful matters to
// condition analysis.
type ScopeSummary struct {
	Date                 string  `json:"date"`
	MaxDrawdown          float64 `json:"max_drawdown"` // percent, signed
	TradesSkipped        int     `json:"trades_skipped"`
	RealizedPnL          float64 `json:"realized_pnl"`
	DataIssues           int     `json:"data_issues"`
	ReconciliationIssues int     `json:"reconciliation_issues"`
}

// Fill is one trade-ledger entry, written externally.
type Fill struct {
	Symbol    string    `json:"symbol"`
	Quantity  float64   `json:"quantity"`
	Price     float64   `json:"price"`
	Side      string    `json:"side"`
	Timestamp time.Time `json:"timestamp"`
	PnL       float64   `json:"pnl"`
}

// ModelState is the per-scope ML training snapshot, written externally.
type ModelState struct {
	CurrentModelVersion       string     `json:"current_model_version"`
	LastTrainingTime          *time.Time `json:"last_training_time,omitempty"`
	CurrentDatasetFingerprint string     `json:"current_dataset_fingerprint"`
	PromotedModelVersion      string     `json:"promoted_model_version,omitempty"`
}

// ReconciliationState is the per-scope reconciliation snapshot, written
// externally.
type ReconciliationState struct {
	Status             string     `json:"status"`
	LastReconciliation *time.Time `json:"last_reconciliation_time,omitempty"`
	Issues             []string   `json:"issues"`
}

// Store reads per-scope state under a persist root. All readers degrade to
// empty/absent on missing or unreadable files: governance must keep producing
// decisions on partial telemetry, and early-life deployments have no history
// at all.
type Store struct {
	root     string
	registry *scope.Registry
}

// New creates a Store rooted at root, resolving scope names through reg.
func New(root string, reg *scope.Registry) *Store {
	return &Store{root: root, registry: reg}
}

func (s *Store) scopePath(name, file string) (string, bool) {
	sc, ok := s.registry.Resolve(name)
	if !ok {
		return "", false
	}
	return filepath.Join(s.root, "scopes", sc.Dir(), file), true
}

// Summaries returns up to n of the most recent daily summaries for the named
// scope, oldest first. Malformed lines are skipped individually; a missing or
// unopenable stream yields an empty slice.
func (s *Store) Summaries(name string, n int) []ScopeSummary {
	path, ok := s.scopePath(name, "summaries.jsonl")
	if !ok {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var all []ScopeSummary
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var rec ScopeSummary
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			// Partial-file corruption must not abort the whole read.
			continue
		}
		all = append(all, rec)
	}
	if n > 0 && len(all) > n {
		all = all[len(all)-n:]
	}
	return all
}

// Trades returns up to limit of the most recent ledger fills for the named
// scope, oldest first.
func (s *Store) Trades(name string, limit int) []Fill {
	path, ok := s.scopePath(name, "trades.jsonl")
	if !ok {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var all []Fill
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var fill Fill
		if err := json.Unmarshal([]byte(line), &fill); err != nil {
			continue
		}
		all = append(all, fill)
	}
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all
}

// ModelState returns the scope's ML state, or false when absent or unreadable.
func (s *Store) ModelState(name string) (*ModelState, bool) {
	path, ok := s.scopePath(name, "ml_state.json")
	if !ok {
		return nil, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var st ModelState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, false
	}
	return &st, true
}

// ReconciliationState returns the scope's reconciliation state, or false when
// absent or unreadable.
func (s *Store) ReconciliationState(name string) (*ReconciliationState, bool) {
	path, ok := s.scopePath(name, "reconciliation.json")
	if !ok {
		return nil, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var st ReconciliationState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, false
	}
	return &st, true
}

// IsHealthy reports whether reconciliation for the scope is in a good state.
// Absent state counts as healthy; only FAILED, ERROR, and STALE do not.
func (s *Store) IsHealthy(name string) bool {
	st, ok := s.ReconciliationState(name)
	if !ok {
		return true
	}
	switch strings.ToUpper(strings.TrimSpace(st.Status)) {
	case "FAILED", "ERROR", "STALE":
		return false
	}
	return true
}
