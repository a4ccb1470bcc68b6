package conditions

import (
	"math"

	"github.com/tradeops/trade-governor/internal/store"
)

// Volatility buckets average absolute drawdown over the recent live window.
type Volatility string

const (
	VolatilityLow     Volatility = "LOW"
	VolatilityMedium  Volatility = "MEDIUM"
	VolatilityHigh    Volatility = "HIGH"
	VolatilityExtreme Volatility = "EXTREME"
	VolatilityUnknown Volatility = "UNKNOWN"
)

// MissedTrend describes how skipped trade signals are moving on the paper
// scope.
type MissedTrend string

const (
	MissedStable     MissedTrend = "STABLE"
	MissedIncreasing MissedTrend = "INCREASING"
	MissedSpiking    MissedTrend = "SPIKING"
	MissedUnknown    MissedTrend = "UNKNOWN"
)

// PerfTrend describes how realized PnL is moving on the paper scope.
type PerfTrend string

const (
	PerfImproving PerfTrend = "IMPROVING"
	PerfStable    PerfTrend = "STABLE"
	PerfDegrading PerfTrend = "DEGRADING"
	PerfCritical  PerfTrend = "CRITICAL"
	PerfUnknown   PerfTrend = "UNKNOWN"
)

// DataQuality buckets data and reconciliation issue counts on the live scope.
type DataQuality string

const (
	DataGood     DataQuality = "GOOD"
	DataDegraded DataQuality = "DEGRADED"
	DataCritical DataQuality = "CRITICAL"
	DataUnknown  DataQuality = "UNKNOWN"
)

// SignalVector is the ephemeral reduction of recent scope summaries that the
// mode determiner consumes. Recomputed on every analysis; never persisted.
type SignalVector struct {
	Volatility    Volatility
	DrawdownPct   float64
	MissedSignals MissedTrend
	Performance   PerfTrend
	DataQuality   DataQuality
}

// Analyzer reduces recent scope summaries to a SignalVector. It is stateless
// and side-effect free; missing or short history degrades individual signals
// to UNKNOWN instead of failing, since early-life deployments have no data.
type Analyzer struct {
	store *store.Store
}

// NewAnalyzer creates an Analyzer over the given store.
func NewAnalyzer(s *store.Store) *Analyzer {
	return &Analyzer{store: s}
}

// Analyze computes the signal vector for one live/paper scope pairing.
// Drawdown, volatility, and data quality come from the live scope's last 3
// summaries; missed-signal and performance trends compare the paper scope's
// most recent 3 summaries against the 3 before them.
func (a *Analyzer) Analyze(liveScope, paperScope string) SignalVector {
	live := a.store.Summaries(liveScope, 3)
	paper := a.store.Summaries(paperScope, 6)

	v := SignalVector{
		Volatility:    VolatilityUnknown,
		MissedSignals: MissedUnknown,
		Performance:   PerfUnknown,
		DataQuality:   DataUnknown,
	}

	if len(live) > 0 {
		v.Volatility = bucketVolatility(avgAbsDrawdown(live))
		v.DrawdownPct = maxAbsDrawdown(live)
		v.DataQuality = bucketDataQuality(sumIssues(live))
	}

	if len(paper) >= 2 {
		recent, older := splitWindows(paper)
		v.MissedSignals = missedTrend(recent, older)
		v.Performance = perfTrend(recent, older)
	}

	return v
}

// splitWindows separates summaries (oldest first) into the most recent 3 and
// the up-to-3 immediately before them.
func splitWindows(all []store.ScopeSummary) (recent, older []store.ScopeSummary) {
	cut := len(all) - 3
	if cut < 0 {
		cut = 0
	}
	return all[cut:], all[:cut]
}

func avgAbsDrawdown(recs []store.ScopeSummary) float64 {
	var sum float64
	for _, r := range recs {
		sum += math.Abs(r.MaxDrawdown)
	}
	return sum / float64(len(recs))
}

func maxAbsDrawdown(recs []store.ScopeSummary) float64 {
	var peak float64
	for _, r := range recs {
		if abs := math.Abs(r.MaxDrawdown); abs > peak {
			peak = abs
		}
	}
	return peak
}

func sumIssues(recs []store.ScopeSummary) int {
	var total int
	for _, r := range recs {
		total += r.DataIssues + r.ReconciliationIssues
	}
	return total
}

// bucketVolatility maps average absolute drawdown to a band. Boundaries are
// strictly-greater so ties fall into the lower, safer band.
func bucketVolatility(avg float64) Volatility {
	switch {
	case avg > 10:
		return VolatilityExtreme
	case avg > 5:
		return VolatilityHigh
	case avg > 2:
		return VolatilityMedium
	default:
		return VolatilityLow
	}
}

func bucketDataQuality(issues int) DataQuality {
	switch {
	case issues > 5:
		return DataCritical
	case issues > 2:
		return DataDegraded
	default:
		return DataGood
	}
}

func missedTrend(recent, older []store.ScopeSummary) MissedTrend {
	recentMean := meanSkipped(recent)
	if recentMean == 0 {
		// No recent skips means no spike, whatever the older window says.
		return MissedStable
	}
	olderMean := meanSkipped(older)
	change := 0.0
	if olderMean > 0 {
		change = (recentMean - olderMean) / olderMean * 100
	}
	switch {
	case change > 50:
		return MissedSpiking
	case change > 20:
		return MissedIncreasing
	default:
		return MissedStable
	}
}

func perfTrend(recent, older []store.ScopeSummary) PerfTrend {
	recentMean := meanPnL(recent)
	if recentMean < -500 {
		// Absolute-loss floor, independent of trend direction.
		return PerfCritical
	}
	olderMean := meanPnL(older)
	switch {
	case recentMean < olderMean*0.7:
		return PerfDegrading
	case recentMean > olderMean*1.2:
		return PerfImproving
	default:
		return PerfStable
	}
}

func meanSkipped(recs []store.ScopeSummary) float64 {
	if len(recs) == 0 {
		return 0
	}
	var sum float64
	for _, r := range recs {
		sum += float64(r.TradesSkipped)
	}
	return sum / float64(len(recs))
}

func meanPnL(recs []store.ScopeSummary) float64 {
	if len(recs) == 0 {
		return 0
	}
	var sum float64
	for _, r := range recs {
		sum += r.RealizedPnL
	}
	return sum / float64(len(recs))
}
