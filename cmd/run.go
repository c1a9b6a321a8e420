package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/signalnine/streamcheck/internal/config"
	"github.com/signalnine/streamcheck/internal/ctxlog"
	"github.com/signalnine/streamcheck/internal/docker"
	"github.com/signalnine/streamcheck/internal/invocation"
	"github.com/signalnine/streamcheck/internal/metrics"
	"github.com/signalnine/streamcheck/internal/probe"
	"github.com/signalnine/streamcheck/internal/report"
	"github.com/signalnine/streamcheck/internal/result"
	"github.com/signalnine/streamcheck/internal/runner"
	"github.com/signalnine/streamcheck/internal/scenario"
	"github.com/signalnine/streamcheck/internal/verdict"
)

var (
	runSel     selection
	flagDryRun bool
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the streaming scenarios for the configured device",
		RunE:  runStreamcheck,
	}
	runSel.register(cmd)
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "print the benchmark invocations without running them")
	return cmd
}

func runStreamcheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := ctxlog.FromContext(ctx)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := runSel.apply(cfg); err != nil {
		return err
	}
	plan, err := buildPlan(cfg, runSel.scenario, runSel.iterations)
	if err != nil {
		return err
	}
	if len(plan) == 0 {
		fmt.Println("No scenarios selected.")
		return nil
	}

	if flagDryRun {
		return printPlan(cfg, plan)
	}

	if cfg.Probe.Enabled && !scenario.IsUSB(cfg.Device.Model) {
		timeout := time.Duration(cfg.Probe.TimeoutS) * time.Second
		log.Info("probing device", "addr", cfg.Device.Addr, "port", cfg.Probe.Port)
		if err := probe.WaitReachable(ctx, cfg.Device.Addr, cfg.Probe.Port, timeout); err != nil {
			return fmt.Errorf("device not reachable: %w", err)
		}
	}

	benchEnv := map[string]string{}
	if cfg.Benchmark.EnvFile != "" {
		benchEnv, err = config.ParseEnvFile(cfg.Benchmark.EnvFile)
		if err != nil {
			return fmt.Errorf("reading benchmark env file: %w", err)
		}
	}

	runDir, err := result.CreateRunDir(cfg.Results.Dir)
	if err != nil {
		return err
	}
	fmt.Printf("Run directory: %s\n", runDir)

	thresholds := verdict.DefaultThresholds().With(cfg.ThresholdOverrides())
	var records []*result.ScenarioRecord
	jobs := make([]runner.Job, 0, len(plan))
	for i, item := range plan {
		jobs = append(jobs, func() error {
			fmt.Printf("\n[%d/%d] %s over %s (%d x %ds)\n", i+1, len(plan), item.Scenario.Name,
				item.Transport, item.Params.Iterations, item.Params.DurationS)
			rec, err := runner.RunScenario(ctx, &runner.ScenarioOpts{
				Scenario:   item.Scenario,
				Tier:       item.Tier,
				Params:     item.Params,
				Env:        deviceEnv(cfg, item.Transport),
				Executor:   newExecutor(cfg, item.Transport, benchEnv),
				Thresholds: thresholds,
				RunDir:     runDir,
			})
			if rec != nil {
				records = append(records, rec)
				report.WriteScenario(os.Stdout, rec)
			}
			if err != nil {
				return fmt.Errorf("%s: %w", item.Scenario.Name, err)
			}
			return nil
		})
	}
	for _, err := range runner.RunSequential(ctx, jobs) {
		fmt.Printf("  ERROR: %v\n", err)
	}

	if cfg.Results.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(cfg.Results.MetricsTextfile, records); err != nil {
			log.Warn("exporting metrics", "error", err)
		}
	}

	fmt.Println("\n--- Results ---")
	if err := report.Write(records, "table", os.Stdout); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run interrupted: %w", err)
	}
	return blockingError(records)
}

// blockingError fails the run when any scenario hard-failed or errored
// outside its known issues.
func blockingError(records []*result.ScenarioRecord) error {
	n := 0
	for _, rec := range records {
		if rec.Blocking() {
			n++
		}
	}
	if n > 0 {
		return fmt.Errorf("%d of %d scenarios failed", n, len(records))
	}
	return nil
}

// newExecutor picks how the benchmark is launched. Containers get the USB bus
// for USB devices and hugepages for DPDK.
func newExecutor(cfg *config.Config, t scenario.Transport, env map[string]string) runner.Executor {
	if cfg.Benchmark.Executor != config.ExecutorContainer {
		return &runner.LocalExecutor{Path: cfg.Benchmark.Path, Env: env}
	}
	var mounts []docker.Mount
	if scenario.IsUSB(cfg.Device.Model) {
		mounts = append(mounts, docker.Mount{Source: "/dev/bus/usb", Target: "/dev/bus/usb"})
	}
	if t.Accelerated() {
		mounts = append(mounts, docker.Mount{Source: "/dev/hugepages", Target: "/dev/hugepages"})
	}
	return &runner.ContainerExecutor{
		Image:  cfg.Benchmark.Image,
		Path:   cfg.Benchmark.Path,
		Env:    env,
		Mounts: mounts,
	}
}

func printPlan(cfg *config.Config, plan []planItem) error {
	for _, item := range plan {
		env := deviceEnv(cfg, item.Transport)
		id := scenario.TestID(env.Model, item.Transport, item.Scenario, item.Tier)
		inv, err := invocation.Build(item.Scenario, item.Params, env)
		if err != nil {
			fmt.Printf("%s\n  ERROR: %v\n", id, err)
			continue
		}
		fmt.Printf("%s (%d iterations)\n  %s %s\n", id, item.Params.Iterations, cfg.Benchmark.Path, strings.Join(inv.Args(), " "))
	}
	return nil
}
