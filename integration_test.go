//go:build integration

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalnine/streamcheck/cmd"
	"github.com/signalnine/streamcheck/internal/result"
	"github.com/signalnine/streamcheck/internal/verdict"
)

// fakeBenchmark prints a benchmark_rate style summary whose counters come from
// the environment, and records its arguments.
const fakeBenchmark = `#!/bin/sh
echo "$@" >> "$FAKE_ARGS_LOG"
echo "Benchmark rate summary:"
echo "  Num received samples:     1000000"
echo "  Num dropped samples:      ${FAKE_DROPPED:-0}"
echo "  Num overruns detected:    ${FAKE_OVERRUNS:-0}"
echo "  Num transmitted samples:  1000000"
echo "  Num sequence errors (Tx): 0"
echo "  Num sequence errors (Rx): 0"
echo "  Num underruns detected:   0"
echo "  Num late commands:        0"
echo "  Num timeouts (Tx):        0"
echo "  Num timeouts (Rx):        0"
`

func setupRun(t *testing.T, env string) (cfgPath, resultsDir, argsLog string) {
	t.Helper()
	dir := t.TempDir()
	bench := filepath.Join(dir, "benchmark_rate")
	require.NoError(t, os.WriteFile(bench, []byte(fakeBenchmark), 0o755))

	argsLog = filepath.Join(dir, "args.log")
	envFile := filepath.Join(dir, "bench.env")
	require.NoError(t, os.WriteFile(envFile, []byte(fmt.Sprintf("FAKE_ARGS_LOG=%s\n%s", argsLog, env)), 0o644))

	resultsDir = filepath.Join(dir, "results")
	cfg := fmt.Sprintf(`benchmark:
  path: %s
  env_file: %s
device:
  model: n320
  addr: 192.168.10.2
  second_addr: 192.168.20.2
tier: smoke
transports: [kernel]
results:
  dir: %s
  metrics_textfile: %s
`, bench, envFile, resultsDir, filepath.Join(dir, "streamcheck.prom"))
	cfgPath = filepath.Join(dir, "streamcheck.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	return cfgPath, resultsDir, argsLog
}

func execute(args ...string) error {
	root := cmd.NewRootCmd()
	root.SetArgs(args)
	return root.Execute()
}

func TestRunKernelOverrunsAreSoft(t *testing.T) {
	cfgPath, resultsDir, argsLog := setupRun(t, "FAKE_OVERRUNS=90\n")

	require.NoError(t, execute("run", "--config", cfgPath, "--iterations", "2"))

	recs, err := result.Collect(filepath.Join(resultsDir, "latest"))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	for _, rec := range recs {
		assert.Equal(t, verdict.SoftFail, rec.Outcome, rec.TestID)
		assert.Equal(t, 2, rec.Stats.Trials)
	}

	args, err := os.ReadFile(argsLog)
	require.NoError(t, err)
	assert.Contains(t, string(args), "--priority=high")
	assert.Contains(t, string(args), "--args=master_clock_rate=250000000,addr=192.168.10.2")

	prom, err := os.ReadFile(filepath.Join(filepath.Dir(cfgPath), "streamcheck.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(prom), "streamcheck_blocking_scenarios 0")
}

func TestRunDroppedSamplesFailRun(t *testing.T) {
	cfgPath, resultsDir, _ := setupRun(t, "FAKE_DROPPED=100\n")

	assert.Error(t, execute("run", "--config", cfgPath, "--iterations", "1"))

	recs, err := result.Collect(filepath.Join(resultsDir, "latest"))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	for _, rec := range recs {
		assert.Equal(t, verdict.Fail, rec.Outcome, rec.TestID)
	}

	require.NoError(t, execute("report", "--config", cfgPath, "--format", "json"))
}

func TestDryRunWritesNothing(t *testing.T) {
	cfgPath, resultsDir, argsLog := setupRun(t, "")
	require.NoError(t, execute("run", "--config", cfgPath, "--dry-run"))

	_, err := os.Stat(resultsDir)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(argsLog)
	assert.True(t, os.IsNotExist(err))
}
