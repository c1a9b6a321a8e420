package verdict_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalnine/streamcheck/internal/scenario"
	"github.com/signalnine/streamcheck/internal/stats"
	"github.com/signalnine/streamcheck/internal/verdict"
)

func statsOf(t *testing.T, r stats.TrialResult) *stats.Stats {
	t.Helper()
	s, err := stats.Aggregate([]stats.TrialResult{r})
	require.NoError(t, err)
	return s
}

func metricsOf(v *verdict.Verdict) []stats.Metric {
	var out []stats.Metric
	for _, c := range v.Checks {
		out = append(out, c.Metric)
	}
	return out
}

var (
	rxOnly = verdict.Directions{RX: true}
	txOnly = verdict.Directions{TX: true}
	trx    = verdict.Directions{RX: true, TX: true}
)

func TestSeverityOf(t *testing.T) {
	tests := []struct {
		metric    stats.Metric
		transport scenario.Transport
		want      verdict.Severity
	}{
		{stats.Overruns, scenario.TransportKernel, verdict.Soft},
		{stats.Overruns, scenario.TransportDPDK, verdict.Hard},
		{stats.Underruns, scenario.TransportKernel, verdict.Soft},
		{stats.Underruns, scenario.TransportDPDK, verdict.Hard},
		{stats.DroppedSamps, scenario.TransportKernel, verdict.Hard},
		{stats.RxSeqErrs, scenario.TransportKernel, verdict.Hard},
		{stats.TxTimeouts, scenario.TransportKernel, verdict.Hard},
		{stats.LateCmds, scenario.TransportDPDK, verdict.Hard},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, verdict.SeverityOf(tt.metric, tt.transport), "%s on %s", tt.metric, tt.transport)
	}
}

func TestEvaluateRXOnlySkipsTX(t *testing.T) {
	s := statsOf(t, stats.TrialResult{Underruns: 1000, TxTimeouts: 1000, TxSeqErrs: 1000})
	v := verdict.Evaluate(s, rxOnly, scenario.TransportDPDK, verdict.DefaultThresholds())
	assert.Equal(t, verdict.Pass, v.Outcome)
	assert.Equal(t, []stats.Metric{stats.DroppedSamps, stats.Overruns, stats.RxTimeouts, stats.RxSeqErrs, stats.LateCmds}, metricsOf(v))
	_, hasTX := v.Groups[verdict.GroupTX]
	assert.False(t, hasTX)
}

func TestEvaluateTXOnlySkipsRX(t *testing.T) {
	s := statsOf(t, stats.TrialResult{DroppedSamps: 1000, Overruns: 1000})
	v := verdict.Evaluate(s, txOnly, scenario.TransportKernel, verdict.DefaultThresholds())
	assert.Equal(t, verdict.Pass, v.Outcome)
	assert.Equal(t, []stats.Metric{stats.Underruns, stats.TxTimeouts, stats.TxSeqErrs, stats.LateCmds}, metricsOf(v))
}

func TestEvaluateNoChannels(t *testing.T) {
	s := statsOf(t, stats.TrialResult{LateCmds: 1000})
	v := verdict.Evaluate(s, verdict.Directions{}, scenario.TransportKernel, verdict.DefaultThresholds())
	assert.Empty(t, v.Checks)
	assert.Equal(t, verdict.Pass, v.Outcome)
}

func TestEvaluateOutcomes(t *testing.T) {
	tests := []struct {
		name      string
		result    stats.TrialResult
		dirs      verdict.Directions
		transport scenario.Transport
		want      verdict.Outcome
	}{
		{"clean", stats.TrialResult{}, trx, scenario.TransportKernel, verdict.Pass},
		{"at threshold passes", stats.TrialResult{DroppedSamps: 50}, rxOnly, scenario.TransportKernel, verdict.Pass},
		{"dropped samples", stats.TrialResult{DroppedSamps: 51}, rxOnly, scenario.TransportKernel, verdict.Fail},
		{"rx timeouts", stats.TrialResult{RxTimeouts: 51}, rxOnly, scenario.TransportDPDK, verdict.Fail},
		{"rx seq errs", stats.TrialResult{RxSeqErrs: 60}, rxOnly, scenario.TransportKernel, verdict.Fail},
		{"late cmds", stats.TrialResult{LateCmds: 51}, txOnly, scenario.TransportKernel, verdict.Fail},
		{"overruns kernel", stats.TrialResult{Overruns: 51}, rxOnly, scenario.TransportKernel, verdict.SoftFail},
		{"overruns dpdk", stats.TrialResult{Overruns: 51}, rxOnly, scenario.TransportDPDK, verdict.Fail},
		{"underruns kernel", stats.TrialResult{Underruns: 51}, txOnly, scenario.TransportKernel, verdict.SoftFail},
		{"underruns dpdk", stats.TrialResult{Underruns: 51}, txOnly, scenario.TransportDPDK, verdict.Fail},
		{"tx seq errs", stats.TrialResult{TxSeqErrs: 51}, txOnly, scenario.TransportKernel, verdict.Fail},
		{"hard wins over soft", stats.TrialResult{Overruns: 99, TxTimeouts: 99}, trx, scenario.TransportKernel, verdict.Fail},
		{"two soft", stats.TrialResult{Overruns: 99, Underruns: 99}, trx, scenario.TransportKernel, verdict.SoftFail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := verdict.Evaluate(statsOf(t, tt.result), tt.dirs, tt.transport, verdict.DefaultThresholds())
			assert.Equal(t, tt.want, v.Outcome)
		})
	}
}

// Hard fail with RX configured iff a hard RX metric or late_cmds breaches, or
// overruns breach on DPDK.
func TestEvaluateRXHardFailProperty(t *testing.T) {
	values := []uint64{0, 50, 51}
	for _, transport := range []scenario.Transport{scenario.TransportKernel, scenario.TransportDPDK} {
		for _, d := range values {
			for _, o := range values {
				for _, to := range values {
					for _, seq := range values {
						for _, late := range values {
							r := stats.TrialResult{DroppedSamps: d, Overruns: o, RxTimeouts: to, RxSeqErrs: seq, LateCmds: late}
							v := verdict.Evaluate(statsOf(t, r), rxOnly, transport, verdict.DefaultThresholds())
							hard := d > 50 || to > 50 || seq > 50 || late > 50 || (o > 50 && transport.Accelerated())
							assert.Equal(t, hard, v.Outcome == verdict.Fail, "%+v on %s", r, transport)
							if !hard && o > 50 {
								assert.Equal(t, verdict.SoftFail, v.Outcome)
							}
						}
					}
				}
			}
		}
	}
}

func TestEvaluateGroups(t *testing.T) {
	s := statsOf(t, stats.TrialResult{Overruns: 80, TxSeqErrs: 80})
	v := verdict.Evaluate(s, trx, scenario.TransportKernel, verdict.DefaultThresholds())
	assert.Equal(t, verdict.SoftFail, v.Groups[verdict.GroupRX])
	assert.Equal(t, verdict.Fail, v.Groups[verdict.GroupTX])
	assert.Equal(t, verdict.Pass, v.Groups[verdict.GroupTiming])
	assert.Equal(t, verdict.Fail, v.Outcome)
	assert.Len(t, v.Breaches(), 2)
}

func TestThresholdOverrides(t *testing.T) {
	th := verdict.DefaultThresholds().With(map[stats.Metric]int{stats.DroppedSamps: 0})
	assert.Equal(t, 0, th.Limit(stats.DroppedSamps))
	assert.Equal(t, 50, th.Limit(stats.Overruns))
	assert.Equal(t, 50, verdict.DefaultThresholds().Limit(stats.DroppedSamps))
	assert.Equal(t, verdict.DefaultThreshold, verdict.Thresholds(nil).Limit(stats.LateCmds))

	s := statsOf(t, stats.TrialResult{DroppedSamps: 1})
	v := verdict.Evaluate(s, rxOnly, scenario.TransportKernel, th)
	assert.Equal(t, verdict.Fail, v.Outcome)
}

func TestRender(t *testing.T) {
	results := make([]stats.TrialResult, 10)
	results[0] = stats.TrialResult{Overruns: 700}
	s, err := stats.Aggregate(results)
	require.NoError(t, err)
	v := verdict.Evaluate(s, rxOnly, scenario.TransportKernel, verdict.DefaultThresholds())

	var buf bytes.Buffer
	require.NoError(t, v.Render(&buf))
	out := buf.String()
	assert.Contains(t, out, "iterations: 10")
	assert.Contains(t, out, "dropped samples")
	assert.Contains(t, out, "Expected overruns: <= 50")
	assert.Contains(t, out, "Actual overruns:      70")
	assert.Contains(t, out, "known limitation")
	assert.NotContains(t, out, "underruns")
}

func TestWorse(t *testing.T) {
	assert.Equal(t, verdict.Fail, verdict.Worse(verdict.SoftFail, verdict.Fail))
	assert.Equal(t, verdict.SoftFail, verdict.Worse(verdict.SoftFail, verdict.Pass))
	assert.Equal(t, verdict.Error, verdict.Worse(verdict.Fail, verdict.Error))
	assert.Equal(t, verdict.Pass, verdict.Worse("", verdict.Pass))
}
