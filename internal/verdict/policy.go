// Package verdict judges aggregated benchmark counters against thresholds.
//
// Every metric has a ceiling on its mean over the trial set. Breaching a
// ceiling is either hard (the scenario is broken) or soft (a known limitation
// of the transport). Overruns and underruns are soft on the kernel network
// stack and hard on DPDK; everything else is always hard.
package verdict

import (
	"github.com/signalnine/streamcheck/internal/scenario"
	"github.com/signalnine/streamcheck/internal/stats"
)

// Severity is how a threshold breach is reported.
type Severity string

const (
	Hard Severity = "hard"
	Soft Severity = "soft"
)

// Group is the signal path a metric belongs to.
type Group string

const (
	GroupRX     Group = "rx"
	GroupTX     Group = "tx"
	GroupTiming Group = "timing"
)

// GroupOf maps a metric to its signal path.
func GroupOf(m stats.Metric) Group {
	switch m {
	case stats.DroppedSamps, stats.Overruns, stats.RxTimeouts, stats.RxSeqErrs:
		return GroupRX
	case stats.Underruns, stats.TxTimeouts, stats.TxSeqErrs:
		return GroupTX
	default:
		return GroupTiming
	}
}

// SeverityOf returns how a breach of m is treated on transport t.
func SeverityOf(m stats.Metric, t scenario.Transport) Severity {
	switch m {
	case stats.Overruns, stats.Underruns:
		if t.Accelerated() {
			return Hard
		}
		return Soft
	default:
		return Hard
	}
}

// DefaultThreshold is the ceiling on every metric's mean unless overridden.
const DefaultThreshold = 50

// Thresholds maps metrics to the largest acceptable mean. Missing metrics use
// DefaultThreshold.
type Thresholds map[stats.Metric]int

func DefaultThresholds() Thresholds {
	t := make(Thresholds, len(stats.Metrics))
	for _, m := range stats.Metrics {
		t[m] = DefaultThreshold
	}
	return t
}

// Limit returns the threshold for m.
func (t Thresholds) Limit(m stats.Metric) int {
	if v, ok := t[m]; ok {
		return v
	}
	return DefaultThreshold
}

// With returns a copy of t with overrides applied.
func (t Thresholds) With(overrides map[stats.Metric]int) Thresholds {
	out := make(Thresholds, len(t)+len(overrides))
	for m, v := range t {
		out[m] = v
	}
	for m, v := range overrides {
		out[m] = v
	}
	return out
}

var labels = map[stats.Metric]string{
	stats.DroppedSamps: "dropped samples",
	stats.Overruns:     "overruns",
	stats.RxTimeouts:   "rx timeouts",
	stats.RxSeqErrs:    "rx sequence errors",
	stats.Underruns:    "underruns",
	stats.TxTimeouts:   "tx timeouts",
	stats.TxSeqErrs:    "tx sequence errors",
	stats.LateCmds:     "late commands",
}

// Label is the human-readable name of a metric.
func Label(m stats.Metric) string {
	if l, ok := labels[m]; ok {
		return l
	}
	return string(m)
}
