package journal

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder journals governance history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the journal database and runs
// migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so audit readers do not block the governor's writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS decisions (
			id             TEXT PRIMARY KEY,
			decided_at     INTEGER NOT NULL,
			mode           TEXT NOT NULL,
			reason         TEXT NOT NULL,
			next_run_hours INTEGER NOT NULL,
			volatility     TEXT,
			drawdown_pct   REAL,
			missed_signals TEXT,
			performance    TEXT,
			data_quality   TEXT,
			live_scope     TEXT,
			paper_scope    TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS lifecycle_events (
			id          TEXT PRIMARY KEY,
			occurred_at INTEGER NOT NULL,
			event       TEXT NOT NULL,
			proposal_id TEXT NOT NULL,
			actor       TEXT,
			detail      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_decided_at ON decisions(decided_at)`,
		`CREATE INDEX IF NOT EXISTS idx_lifecycle_proposal ON lifecycle_events(proposal_id)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// RecordDecision appends one governance evaluation.
func (r *SQLiteRecorder) RecordDecision(e DecisionEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.db.Exec(
		`INSERT INTO decisions (id, decided_at, mode, reason, next_run_hours,
			volatility, drawdown_pct, missed_signals, performance, data_quality,
			live_scope, paper_scope)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		time.Now().UTC().Unix(),
		string(e.Decision.Mode),
		e.Decision.Reason,
		e.Decision.NextRunHours,
		string(e.Signals.Volatility),
		e.Signals.DrawdownPct,
		string(e.Signals.MissedSignals),
		string(e.Signals.Performance),
		string(e.Signals.DataQuality),
		e.LiveScope,
		e.PaperScope,
	)
	if err != nil {
		return fmt.Errorf("record decision: %w", err)
	}
	return nil
}

// RecordLifecycle appends one proposal transition.
func (r *SQLiteRecorder) RecordLifecycle(e LifecycleEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.db.Exec(
		`INSERT INTO lifecycle_events (id, occurred_at, event, proposal_id, actor, detail)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		time.Now().UTC().Unix(),
		e.Event,
		e.ProposalID,
		e.Actor,
		e.Detail,
	)
	if err != nil {
		return fmt.Errorf("record lifecycle event: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
