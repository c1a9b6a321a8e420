package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signalnine/streamcheck/internal/config"
	"github.com/signalnine/streamcheck/internal/invocation"
	"github.com/signalnine/streamcheck/internal/scenario"
)

var listSel selection

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the scenarios selected for the configured device and tier",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if err := listSel.apply(cfg); err != nil {
				return err
			}
			plan, err := buildPlan(cfg, listSel.scenario, listSel.iterations)
			if err != nil {
				return err
			}
			fmt.Printf("Device: %s %s (tier %s)\n", cfg.Device.Model, cfg.Device.Variant, cfg.Tier)
			for _, item := range plan {
				env := deviceEnv(cfg, item.Transport)
				id := scenario.TestID(env.Model, item.Transport, item.Scenario, item.Tier)
				fmt.Printf("  - %s", id)
				if item.Scenario.KnownIssue != "" {
					fmt.Printf(" [known issue: %s]", item.Scenario.KnownIssue)
				}
				fmt.Println()
				inv, err := invocation.Build(item.Scenario, item.Params, env)
				if err != nil {
					fmt.Printf("      ERROR: %v\n", err)
					continue
				}
				fmt.Printf("      %s\n", inv)
			}
			return nil
		},
	}
	listSel.register(cmd)
	return cmd
}
