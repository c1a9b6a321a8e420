package runner

import (
	"context"
	"fmt"

	"github.com/signalnine/streamcheck/internal/ctxlog"
	"github.com/signalnine/streamcheck/internal/invocation"
	"github.com/signalnine/streamcheck/internal/stats"
)

// InvocationError is returned when a trial could not launch or did not end
// with a usable summary. It fails the whole scenario.
type InvocationError struct {
	Trial      int
	Iterations int
	ExitCode   int
	Output     string
	Err        error
}

func (e *InvocationError) Error() string {
	if e.ExitCode != 0 {
		return fmt.Sprintf("trial %d/%d: benchmark exited with code %d: %v", e.Trial, e.Iterations, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("trial %d/%d: %v", e.Trial, e.Iterations, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

const outputTailBytes = 2048

func tail(b []byte) string {
	if len(b) > outputTailBytes {
		b = b[len(b)-outputTailBytes:]
	}
	return string(b)
}

// Run executes the benchmark iterations times, one trial after another, and
// returns one result per trial. The first failing trial stops the run; no
// partial results are returned.
func Run(ctx context.Context, ex Executor, inv *invocation.Invocation, iterations int) ([]stats.TrialResult, error) {
	if iterations < 1 {
		return nil, fmt.Errorf("iterations must be positive, got %d", iterations)
	}
	log := ctxlog.FromContext(ctx)
	args := inv.Args()
	results := make([]stats.TrialResult, 0, iterations)
	for trial := 1; trial <= iterations; trial++ {
		if err := ctx.Err(); err != nil {
			return nil, &InvocationError{Trial: trial, Iterations: iterations, Err: err}
		}
		log.Debug("starting trial", "trial", trial, "iterations", iterations, "options", inv.String())
		exec, err := ex.Execute(ctx, args)
		if err != nil {
			return nil, &InvocationError{Trial: trial, Iterations: iterations, Err: err}
		}
		if exec.ExitCode != 0 {
			return nil, &InvocationError{
				Trial:      trial,
				Iterations: iterations,
				ExitCode:   exec.ExitCode,
				Output:     tail(exec.Output),
				Err:        fmt.Errorf("abnormal termination"),
			}
		}
		r, err := ParseSummary(exec.Output)
		if err != nil {
			return nil, &InvocationError{Trial: trial, Iterations: iterations, Output: tail(exec.Output), Err: err}
		}
		log.Debug("trial done", "trial", trial, "duration", exec.Duration, "dropped_samps", r.DroppedSamps,
			"overruns", r.Overruns, "underruns", r.Underruns, "late_cmds", r.LateCmds)
		results = append(results, r)
	}
	return results, nil
}
