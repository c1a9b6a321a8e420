package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/signalnine/streamcheck/internal/ctxlog"
	"github.com/signalnine/streamcheck/internal/invocation"
	"github.com/signalnine/streamcheck/internal/result"
	"github.com/signalnine/streamcheck/internal/scenario"
	"github.com/signalnine/streamcheck/internal/stats"
	"github.com/signalnine/streamcheck/internal/verdict"
)

type ScenarioOpts struct {
	Scenario   scenario.Scenario
	Tier       scenario.Tier
	Params     scenario.TrialParams
	Env        invocation.Env
	Executor   Executor
	Thresholds verdict.Thresholds
	RunDir     string
}

const summaryFile = "summary.txt"

// RunScenario builds the invocation, runs every trial, aggregates and judges
// the result, and stores it under the scenario's directory. Invocation and
// configuration problems are recorded as an error outcome on the returned
// record; the returned error is reserved for failures to store the record.
func RunScenario(ctx context.Context, opts *ScenarioOpts) (*result.ScenarioRecord, error) {
	s := opts.Scenario
	testID := scenario.TestID(opts.Env.Model, opts.Env.Transport, s, opts.Tier)
	dir := result.ScenarioDir(opts.RunDir, opts.Env.Model, string(opts.Env.Transport), testID)
	log := ctxlog.FromContext(ctx).With("test_id", testID)

	rec := &result.ScenarioRecord{
		TestID:    testID,
		Model:     opts.Env.Model,
		Variant:   opts.Env.Variant,
		Transport: opts.Env.Transport,
		Tier:      opts.Tier,
		Scenario:  s,
		Params:    opts.Params,
		StartedAt: time.Now().UTC(),
	}

	fail := func(err error) (*result.ScenarioRecord, error) {
		log.Error("scenario aborted", "error", err)
		rec.Outcome = verdict.Error
		rec.Error = err.Error()
		rec.DurationS = int(time.Since(rec.StartedAt).Seconds())
		if werr := result.WriteRecord(dir, rec); werr != nil {
			return rec, werr
		}
		return rec, nil
	}

	inv, err := invocation.Build(s, opts.Params, opts.Env)
	if err != nil {
		return fail(fmt.Errorf("building invocation: %w", err))
	}
	rec.Invocation = inv
	log.Info("running scenario", "iterations", opts.Params.Iterations, "duration_s", opts.Params.DurationS)

	trials, err := Run(ctx, WithTrialLogs(opts.Executor, dir), inv, opts.Params.Iterations)
	if err != nil {
		return fail(err)
	}
	agg, err := stats.Aggregate(trials)
	if err != nil {
		return fail(err)
	}
	rec.Stats = agg

	th := opts.Thresholds
	if th == nil {
		th = verdict.DefaultThresholds()
	}
	rec.Verdict = verdict.Evaluate(agg, verdict.DirectionsOf(s), opts.Env.Transport, th)
	rec.Outcome = rec.Verdict.Outcome
	rec.DurationS = int(time.Since(rec.StartedAt).Seconds())

	switch {
	case rec.Expected():
		log.Warn("scenario failed with a known issue", "outcome", rec.Outcome, "known_issue", s.KnownIssue)
	case rec.Outcome != verdict.Pass:
		log.Warn("scenario over threshold", "outcome", rec.Outcome, "breaches", len(rec.Verdict.Breaches()))
	default:
		log.Info("scenario passed")
	}

	if err := result.WriteRecord(dir, rec); err != nil {
		return rec, err
	}
	if err := writeSummary(dir, rec); err != nil {
		log.Warn("writing summary", "error", err)
	}
	return rec, nil
}

func writeSummary(dir string, rec *result.ScenarioRecord) error {
	f, err := os.Create(filepath.Join(dir, summaryFile))
	if err != nil {
		return err
	}
	defer f.Close()
	fmt.Fprintf(f, "%s\n", rec.TestID)
	fmt.Fprintf(f, "Options: %s\n", rec.Invocation)
	if err := rec.Verdict.Render(f); err != nil {
		return err
	}
	return f.Close()
}
