package runner

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/signalnine/streamcheck/internal/stats"
)

// ErrNoSummary means the benchmark output has no summary block, which
// happens when it crashed or was killed before finishing.
var ErrNoSummary = errors.New("benchmark output has no rate summary")

const summaryHeader = "Benchmark rate summary:"

var summaryFields = map[string]stats.Metric{
	"Num dropped samples":      stats.DroppedSamps,
	"Num overruns detected":    stats.Overruns,
	"Num timeouts (Rx)":        stats.RxTimeouts,
	"Num sequence errors (Rx)": stats.RxSeqErrs,
	"Num underruns detected":   stats.Underruns,
	"Num timeouts (Tx)":        stats.TxTimeouts,
	"Num sequence errors (Tx)": stats.TxSeqErrs,
	"Num late commands":        stats.LateCmds,
}

// ParseSummary extracts the error counters from benchmark_rate output.
// Counters absent from the summary are zero.
func ParseSummary(output []byte) (stats.TrialResult, error) {
	var r stats.TrialResult
	inSummary := false
	sc := bufio.NewScanner(bytes.NewReader(output))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == summaryHeader {
			inSummary = true
			continue
		}
		if !inSummary {
			continue
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		m, known := summaryFields[strings.TrimSpace(key)]
		if !known {
			continue
		}
		n, err := strconv.ParseUint(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return stats.TrialResult{}, fmt.Errorf("parsing %q: %w", line, err)
		}
		r.Set(m, n)
	}
	if err := sc.Err(); err != nil {
		return stats.TrialResult{}, fmt.Errorf("reading benchmark output: %w", err)
	}
	if !inSummary {
		return stats.TrialResult{}, ErrNoSummary
	}
	return r, nil
}
