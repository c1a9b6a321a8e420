// Package stats reduces per-trial benchmark counters to per-metric averages.
package stats

import (
	"errors"
	"fmt"
)

// Metric names one benchmark error counter.
type Metric string

const (
	DroppedSamps Metric = "dropped_samps"
	Overruns     Metric = "overruns"
	RxTimeouts   Metric = "rx_timeouts"
	RxSeqErrs    Metric = "rx_seq_errs"
	Underruns    Metric = "underruns"
	TxTimeouts   Metric = "tx_timeouts"
	TxSeqErrs    Metric = "tx_seq_errs"
	LateCmds     Metric = "late_cmds"
)

// Metrics lists every counter in report order.
var Metrics = []Metric{
	DroppedSamps, Overruns, RxTimeouts, RxSeqErrs,
	Underruns, TxTimeouts, TxSeqErrs,
	LateCmds,
}

// ParseMetric validates a metric name.
func ParseMetric(s string) (Metric, error) {
	for _, m := range Metrics {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// ErrInsufficientData is returned when aggregating zero trials.
var ErrInsufficientData = errors.New("no trial results to aggregate")

// TrialResult holds the counters one benchmark execution reported.
type TrialResult struct {
	DroppedSamps uint64 `json:"dropped_samps"`
	Overruns     uint64 `json:"overruns"`
	RxTimeouts   uint64 `json:"rx_timeouts"`
	RxSeqErrs    uint64 `json:"rx_seq_errs"`
	Underruns    uint64 `json:"underruns"`
	TxTimeouts   uint64 `json:"tx_timeouts"`
	TxSeqErrs    uint64 `json:"tx_seq_errs"`
	LateCmds     uint64 `json:"late_cmds"`
}

// Get returns the counter for m.
func (r TrialResult) Get(m Metric) uint64 {
	switch m {
	case DroppedSamps:
		return r.DroppedSamps
	case Overruns:
		return r.Overruns
	case RxTimeouts:
		return r.RxTimeouts
	case RxSeqErrs:
		return r.RxSeqErrs
	case Underruns:
		return r.Underruns
	case TxTimeouts:
		return r.TxTimeouts
	case TxSeqErrs:
		return r.TxSeqErrs
	case LateCmds:
		return r.LateCmds
	}
	return 0
}

// Set assigns the counter for m. Unknown metrics are ignored.
func (r *TrialResult) Set(m Metric, v uint64) {
	switch m {
	case DroppedSamps:
		r.DroppedSamps = v
	case Overruns:
		r.Overruns = v
	case RxTimeouts:
		r.RxTimeouts = v
	case RxSeqErrs:
		r.RxSeqErrs = v
	case Underruns:
		r.Underruns = v
	case TxTimeouts:
		r.TxTimeouts = v
	case TxSeqErrs:
		r.TxSeqErrs = v
	case LateCmds:
		r.LateCmds = v
	}
}

// Summary is the spread of one metric across trials.
type Summary struct {
	Mean float64 `json:"mean"`
	Min  uint64  `json:"min"`
	Max  uint64  `json:"max"`
}

// Stats is the aggregate of all trials of one scenario.
type Stats struct {
	Trials  int                `json:"trials"`
	Metrics map[Metric]Summary `json:"metrics"`
}

// Mean returns the average of m, or 0 if it was not aggregated.
func (s *Stats) Mean(m Metric) float64 {
	if s == nil {
		return 0
	}
	return s.Metrics[m].Mean
}

// Aggregate computes the unweighted mean of every metric. A single bad trial
// pulls the mean up; nothing is discarded.
func Aggregate(results []TrialResult) (*Stats, error) {
	if len(results) == 0 {
		return nil, ErrInsufficientData
	}
	out := &Stats{
		Trials:  len(results),
		Metrics: make(map[Metric]Summary, len(Metrics)),
	}
	n := float64(len(results))
	for _, m := range Metrics {
		var sum float64
		lo, hi := results[0].Get(m), results[0].Get(m)
		for _, r := range results {
			v := r.Get(m)
			sum += float64(v)
			lo = min(lo, v)
			hi = max(hi, v)
		}
		out.Metrics[m] = Summary{Mean: sum / n, Min: lo, Max: hi}
	}
	return out, nil
}
