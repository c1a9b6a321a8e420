// Package metrics exports scenario results in the Prometheus text format so a
// node exporter's textfile collector can pick them up after each run.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/signalnine/streamcheck/internal/result"
	"github.com/signalnine/streamcheck/internal/stats"
	"github.com/signalnine/streamcheck/internal/verdict"
)

var outcomes = []verdict.Outcome{verdict.Pass, verdict.SoftFail, verdict.Fail, verdict.Error}

// Registry builds a registry holding gauges for the given records.
func Registry(recs []*result.ScenarioRecord) (*prometheus.Registry, error) {
	scenarioOutcome := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "streamcheck",
		Name:      "scenario_outcome",
		Help:      "1 for the outcome the scenario ended with, 0 for the others.",
	}, []string{"test_id", "model", "transport", "outcome"})
	metricMean := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "streamcheck",
		Name:      "metric_mean",
		Help:      "Mean of a benchmark error counter across the scenario's trials.",
	}, []string{"test_id", "model", "transport", "metric"})
	metricThreshold := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "streamcheck",
		Name:      "metric_threshold",
		Help:      "Threshold the metric mean was judged against.",
	}, []string{"test_id", "model", "transport", "metric"})
	trials := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "streamcheck",
		Name:      "scenario_trials",
		Help:      "Number of trials aggregated for the scenario.",
	}, []string{"test_id", "model", "transport"})
	blocking := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "streamcheck",
		Name:      "blocking_scenarios",
		Help:      "Scenarios that failed or errored, known issues excluded.",
	})

	reg := prometheus.NewRegistry()
	for _, c := range []prometheus.Collector{scenarioOutcome, metricMean, metricThreshold, trials, blocking} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering collector: %w", err)
		}
	}

	for _, rec := range recs {
		transport := string(rec.Transport)
		for _, o := range outcomes {
			v := 0.0
			if rec.Outcome == o {
				v = 1
			}
			scenarioOutcome.WithLabelValues(rec.TestID, rec.Model, transport, string(o)).Set(v)
		}
		if rec.Blocking() {
			blocking.Inc()
		}
		if rec.Stats == nil {
			continue
		}
		trials.WithLabelValues(rec.TestID, rec.Model, transport).Set(float64(rec.Stats.Trials))
		if rec.Verdict == nil {
			for _, m := range stats.Metrics {
				metricMean.WithLabelValues(rec.TestID, rec.Model, transport, string(m)).Set(rec.Stats.Mean(m))
			}
			continue
		}
		for _, c := range rec.Verdict.Checks {
			metricMean.WithLabelValues(rec.TestID, rec.Model, transport, string(c.Metric)).Set(c.Actual)
			metricThreshold.WithLabelValues(rec.TestID, rec.Model, transport, string(c.Metric)).Set(float64(c.Threshold))
		}
	}
	return reg, nil
}

// WriteTextfile writes the records' gauges to path. The file is replaced
// atomically so a collector never reads a partial export.
func WriteTextfile(path string, recs []*result.ScenarioRecord) error {
	reg, err := Registry(recs)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
