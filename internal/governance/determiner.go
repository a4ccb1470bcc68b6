package governance

import (
	"fmt"
	"strings"

	"github.com/tradeops/trade-governor/internal/conditions"
)

// Mode is the operating mode controlling how frequently the proposal
// generator is re-run.
type Mode string

const (
	ModeNormal    Mode = "NORMAL"
	ModeVolatile  Mode = "VOLATILE"
	ModeReactive  Mode = "REACTIVE"
	ModeEmergency Mode = "EMERGENCY"
)

// Decision is the outcome of one mode determination.
type Decision struct {
	Mode         Mode   `json:"mode"`
	Reason       string `json:"reason"`
	NextRunHours int    `json:"next_run_hours"`
}

// clause is one triggering condition inside a rule group. It reports whether
// it matches and, when it does, a reason fragment naming every signal value
// the condition used.
type clause func(v conditions.SignalVector) (bool, string)

type rule struct {
	mode     Mode
	interval int // hours until the next proposal-generation run
	clauses  []clause
}

// rules is the full mode table in strict priority order. Determine walks it
// top-down and returns on the first group with any matching clause, so
// overlapping conditions are never additive.
var rules = []rule{
	{
		mode:     ModeEmergency,
		interval: 24,
		clauses: []clause{
			func(v conditions.SignalVector) (bool, string) {
				return v.Volatility == conditions.VolatilityExtreme,
					fmt.Sprintf("volatility=%s", v.Volatility)
			},
			func(v conditions.SignalVector) (bool, string) {
				return v.DrawdownPct > 15,
					fmt.Sprintf("drawdown_pct=%.1f exceeds 15", v.DrawdownPct)
			},
			func(v conditions.SignalVector) (bool, string) {
				return v.Performance == conditions.PerfCritical,
					fmt.Sprintf("performance=%s", v.Performance)
			},
			// A skipped-signal spike alone escalates only when data quality is
			// not already known-bad: a data outage and a trading spike look
			// alike, and the outage must not masquerade as an emergency.
			func(v conditions.SignalVector) (bool, string) {
				return v.MissedSignals == conditions.MissedSpiking && v.DataQuality != conditions.DataCritical,
					fmt.Sprintf("missed_signals=%s with data_quality=%s", v.MissedSignals, v.DataQuality)
			},
		},
	},
	{
		mode:     ModeReactive,
		interval: 48,
		clauses: []clause{
			func(v conditions.SignalVector) (bool, string) {
				return v.Volatility == conditions.VolatilityHigh,
					fmt.Sprintf("volatility=%s", v.Volatility)
			},
			func(v conditions.SignalVector) (bool, string) {
				return v.DrawdownPct > 5 && v.DrawdownPct <= 15,
					fmt.Sprintf("drawdown_pct=%.1f in (5,15]", v.DrawdownPct)
			},
			func(v conditions.SignalVector) (bool, string) {
				return v.MissedSignals == conditions.MissedIncreasing,
					fmt.Sprintf("missed_signals=%s", v.MissedSignals)
			},
			func(v conditions.SignalVector) (bool, string) {
				return v.Performance == conditions.PerfDegrading,
					fmt.Sprintf("performance=%s", v.Performance)
			},
		},
	},
	{
		mode:     ModeVolatile,
		interval: 72,
		clauses: []clause{
			func(v conditions.SignalVector) (bool, string) {
				return v.Volatility == conditions.VolatilityMedium,
					fmt.Sprintf("volatility=%s", v.Volatility)
			},
			func(v conditions.SignalVector) (bool, string) {
				return v.MissedSignals == conditions.MissedIncreasing && v.DataQuality == conditions.DataGood,
					fmt.Sprintf("missed_signals=%s with data_quality=%s", v.MissedSignals, v.DataQuality)
			},
		},
	},
}

const normalIntervalHours = 168

// Determine maps a signal vector to a governance decision. It is a pure,
// total function: every vector matches exactly one rule group, with NORMAL as
// the catch-all when nothing elevated matches (including the all-UNKNOWN
// vector of a fresh deployment).
func Determine(v conditions.SignalVector) Decision {
	for _, r := range rules {
		var reasons []string
		for _, c := range r.clauses {
			if ok, reason := c(v); ok {
				reasons = append(reasons, reason)
			}
		}
		if len(reasons) > 0 {
			return Decision{
				Mode:         r.mode,
				Reason:       strings.Join(reasons, "; "),
				NextRunHours: r.interval,
			}
		}
	}
	return Decision{
		Mode: ModeNormal,
		Reason: fmt.Sprintf(
			"no elevated conditions (volatility=%s, drawdown_pct=%.1f, missed_signals=%s, performance=%s, data_quality=%s)",
			v.Volatility, v.DrawdownPct, v.MissedSignals, v.Performance, v.DataQuality,
		),
		NextRunHours: normalIntervalHours,
	}
}
