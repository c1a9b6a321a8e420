package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/signalnine/streamcheck/internal/config"
	"github.com/signalnine/streamcheck/internal/ctxlog"
	"github.com/signalnine/streamcheck/internal/result"
	"github.com/signalnine/streamcheck/internal/verdict"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [run-dir]",
		Short: "Re-judge stored results against the current thresholds",
		Long:  "Walk a run directory and re-evaluate each scenario's stored averages against the thresholds in the current config, updating meta.json with the new verdict.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := ctxlog.FromContext(cmd.Context())
			runDir, err := resolveRunDir(args)
			if err != nil {
				return err
			}
			thresholds := verdict.DefaultThresholds()
			if cfg, err := config.Load(cfgFile); err == nil {
				thresholds = thresholds.With(cfg.ThresholdOverrides())
			} else {
				log.Warn("using default thresholds", "error", err)
			}

			paths, err := result.RecordPaths(runDir)
			if err != nil {
				return fmt.Errorf("walking run dir: %w", err)
			}
			if len(paths) == 0 {
				return fmt.Errorf("no meta.json files found in %s", runDir)
			}

			var records []*result.ScenarioRecord
			for _, path := range paths {
				rec, err := result.ReadRecord(path)
				if err != nil {
					log.Warn("skipping record", "path", path, "error", err)
					continue
				}
				evaluated, changed := revalidate(rec, thresholds)
				if evaluated {
					if err := result.WriteRecord(filepath.Dir(path), rec); err != nil {
						return err
					}
				}
				if changed {
					fmt.Printf("%s: now %s\n", rec.TestID, rec.Outcome)
				}
				records = append(records, rec)
			}
			fmt.Printf("Validated %d scenarios.\n", len(records))
			return blockingError(records)
		},
	}
}

// revalidate re-evaluates rec in place. evaluated is false for records
// without stats, which are left as they are; changed reports a new outcome.
func revalidate(rec *result.ScenarioRecord, th verdict.Thresholds) (evaluated, changed bool) {
	if rec.Stats == nil {
		return false, false
	}
	prev := rec.Outcome
	rec.Verdict = verdict.Evaluate(rec.Stats, verdict.DirectionsOf(rec.Scenario), rec.Transport, th)
	rec.Outcome = rec.Verdict.Outcome
	return true, rec.Outcome != prev
}
