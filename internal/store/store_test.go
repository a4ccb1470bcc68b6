package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tradeops/trade-governor/internal/scope"
)

const liveDir = "live-binance-trend-crypto"

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	root := t.TempDir()
	reg := scope.NewRegistry(
		[]scope.Scope{{Env: "live", Venue: "binance", Family: "trend", Market: "crypto"}},
		map[string]string{"live-crypto": liveDir},
	)
	return New(root, reg), root
}

func writeScopeFile(t *testing.T, root, file, content string) {
	t.Helper()
	dir := filepath.Join(root, "scopes", liveDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, file), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSummariesMissingStream(t *testing.T) {
	s, _ := testStore(t)
	if got := s.Summaries("live-crypto", 7); len(got) != 0 {
		t.Fatalf("expected empty summaries for missing stream, got %d", len(got))
	}
}

func TestSummariesUnknownScope(t *testing.T) {
	s, _ := testStore(t)
	if got := s.Summaries("no-such-scope", 7); got != nil {
		t.Fatalf("expected nil for unknown scope, got %v", got)
	}
}

func TestSummariesTailWindow(t *testing.T) {
	s, root := testStore(t)
	writeScopeFile(t, root, "summaries.jsonl",
		`{"date":"2026-08-18","max_drawdown":-1,"trades_skipped":0,"realized_pnl":10,"data_issues":0,"reconciliation_issues":0}
{"date":"2026-08-19","max_drawdown":-2,"trades_skipped":1,"realized_pnl":20,"data_issues":0,"reconciliation_issues":0}
{"date":"2026-08-20","max_drawdown":-3,"trades_skipped":2,"realized_pnl":30,"data_issues":1,"reconciliation_issues":0}
`)
	got := s.Summaries("live-crypto", 2)
	if len(got) != 2 {
		t.Fatalf("expected last 2 summaries, got %d", len(got))
	}
	if got[0].Date != "2026-08-19" || got[1].Date != "2026-08-20" {
		t.Fatalf("expected oldest-first tail window, got %s, %s", got[0].Date, got[1].Date)
	}
}

func TestSummariesSkipsMalformedLines(t *testing.T) {
	s, root := testStore(t)
	writeScopeFile(t, root, "summaries.jsonl",
		`{"date":"2026-08-19","max_drawdown":-2}
not json at all
{"date":"2026-08-20","max_drawdown":-3}
`)
	got := s.Summaries("live-crypto", 7)
	if len(got) != 2 {
		t.Fatalf("expected 2 parsable summaries, got %d", len(got))
	}
}

func TestTradesLimit(t *testing.T) {
	s, root := testStore(t)
	writeScopeFile(t, root, "trades.jsonl",
		`{"symbol":"BTCUSDT","quantity":0.1,"price":50000,"side":"BUY","timestamp":"2026-08-19T10:00:00Z","pnl":0}
{"symbol":"BTCUSDT","quantity":0.1,"price":51000,"side":"SELL","timestamp":"2026-08-20T10:00:00Z","pnl":100}
`)
	got := s.Trades("live-crypto", 1)
	if len(got) != 1 {
		t.Fatalf("expected 1 fill, got %d", len(got))
	}
	if got[0].Side != "SELL" || got[0].PnL != 100 {
		t.Fatalf("expected most recent fill, got %+v", got[0])
	}
}

func TestModelStateAbsent(t *testing.T) {
	s, _ := testStore(t)
	if _, ok := s.ModelState("live-crypto"); ok {
		t.Fatal("expected absent model state")
	}
}

func TestModelStatePresent(t *testing.T) {
	s, root := testStore(t)
	writeScopeFile(t, root, "ml_state.json",
		`{"current_model_version":"v12","current_dataset_fingerprint":"abc123"}`)
	st, ok := s.ModelState("live-crypto")
	if !ok {
		t.Fatal("expected model state to load")
	}
	if st.CurrentModelVersion != "v12" {
		t.Fatalf("unexpected model version: %s", st.CurrentModelVersion)
	}
}

func TestIsHealthyAbsent(t *testing.T) {
	s, _ := testStore(t)
	if !s.IsHealthy("live-crypto") {
		t.Fatal("absent reconciliation state must count as healthy")
	}
}

func TestIsHealthyStatuses(t *testing.T) {
	cases := []struct {
		status  string
		healthy bool
	}{
		{"OK", true},
		{"PENDING", true},
		{"FAILED", false},
		{"error", false},
		{"STALE", false},
	}
	for _, tc := range cases {
		s, root := testStore(t)
		writeScopeFile(t, root, "reconciliation.json",
			`{"status":"`+tc.status+`","issues":[]}`)
		if got := s.IsHealthy("live-crypto"); got != tc.healthy {
			t.Fatalf("status %q: expected healthy=%t, got %t", tc.status, tc.healthy, got)
		}
	}
}
