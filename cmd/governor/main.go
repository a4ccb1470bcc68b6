package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/tradeops/trade-governor/internal/conditions"
	"github.com/tradeops/trade-governor/internal/config"
	"github.com/tradeops/trade-governor/internal/governance"
	"github.com/tradeops/trade-governor/internal/journal"
	"github.com/tradeops/trade-governor/internal/notify"
	"github.com/tradeops/trade-governor/internal/store"
)

// publishedDecision is what the external proposal generator reads to learn
// the current mode and re-run interval.
type publishedDecision struct {
	Mode         governance.Mode `json:"mode"`
	Reason       string          `json:"reason"`
	NextRunHours int             `json:"next_run_hours"`
	DecidedAt    time.Time       `json:"decided_at"`
	AuditID      string          `json:"audit_id"`
}

type governor struct {
	cfg      config.Config
	analyzer *conditions.Analyzer
	recorder journal.Recorder
	notifier *notify.Notifier
	lastMode governance.Mode
}

// evaluate runs one analyze → determine pass, journals the decision, and
// publishes it for the proposal generator.
func (g *governor) evaluate(ctx context.Context) {
	signals := g.analyzer.Analyze(g.cfg.Scopes.Live, g.cfg.Scopes.Paper)
	decision := governance.Determine(signals)

	log.Printf(
		"decision: mode=%s next_run=%dh (volatility=%s drawdown=%.1f missed=%s performance=%s data=%s)",
		decision.Mode, decision.NextRunHours,
		signals.Volatility, signals.DrawdownPct, signals.MissedSignals, signals.Performance, signals.DataQuality,
	)

	if err := g.recorder.RecordDecision(journal.DecisionEntry{
		Decision:   decision,
		Signals:    signals,
		LiveScope:  g.cfg.Scopes.Live,
		PaperScope: g.cfg.Scopes.Paper,
	}); err != nil {
		log.Printf("warning: journal decision: %v", err)
	}

	if err := publish(g.cfg.PersistRoot, decision); err != nil {
		log.Printf("warning: publish decision: %v", err)
	}

	if g.notifier.Enabled() {
		if decision.Mode == governance.ModeEmergency {
			if err := g.notifier.NotifyEmergency(ctx, decision.Reason); err != nil {
				log.Printf("warning: emergency alert: %v", err)
			}
		} else if g.lastMode != "" && decision.Mode != g.lastMode {
			if err := g.notifier.NotifyModeChange(ctx, string(g.lastMode), string(decision.Mode), decision.Reason, decision.NextRunHours); err != nil {
				log.Printf("warning: mode change alert: %v", err)
			}
		}
	}
	g.lastMode = decision.Mode
}

// publish atomically replaces governance/next_run.json under the persist
// root. Written to a temp file first so readers never see a torn record.
func publish(root string, d governance.Decision) error {
	dir := filepath.Join(root, "governance")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	out := publishedDecision{
		Mode:         d.Mode,
		Reason:       d.Reason,
		NextRunHours: d.NextRunHours,
		DecidedAt:    time.Now().UTC(),
		AuditID:      uuid.NewString(),
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	tmp := filepath.Join(dir, "next_run.json.tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(dir, "next_run.json"))
}

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	once := flag.Bool("once", false, "run a single evaluation and exit")
	flag.Parse()

	cfg, err := config.LoadFile(*cfgPath)
	if err != nil {
		log.Printf("warning: config file: %v, using defaults", err)
		cfg = config.Default()
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	var recorder journal.Recorder = journal.Noop{}
	if cfg.Journal.Enabled {
		path := cfg.JournalPath()
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			log.Fatalf("journal dir: %v", err)
		}
		r, err := journal.NewSQLiteRecorder(path)
		if err != nil {
			log.Fatalf("open journal: %v", err)
		}
		defer r.Close()
		recorder = r
	}

	var notifier *notify.Notifier
	if cfg.Telegram.Enabled {
		notifier = notify.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	} else {
		notifier = notify.NewNotifier("", "")
	}

	g := &governor{
		cfg:      cfg,
		analyzer: conditions.NewAnalyzer(store.New(cfg.PersistRoot, cfg.Registry())),
		recorder: recorder,
		notifier: notifier,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Printf(
		"trade-governor starting (root=%s live=%s paper=%s schedule=%q journal=%t)",
		cfg.PersistRoot, cfg.Scopes.Live, cfg.Scopes.Paper, cfg.Evaluate.Schedule, cfg.Journal.Enabled,
	)

	if *once {
		g.evaluate(ctx)
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Evaluate.Schedule, func() { g.evaluate(ctx) }); err != nil {
		log.Fatalf("register evaluation schedule: %v", err)
	}
	// Evaluate immediately on startup; the schedule covers subsequent runs.
	g.evaluate(ctx)
	c.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Println("shutting down")
	<-c.Stop().Done()
}
