package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/signalnine/streamcheck/internal/config"
	"github.com/signalnine/streamcheck/internal/invocation"
	"github.com/signalnine/streamcheck/internal/scenario"
)

// selection holds the flags shared by run and list.
type selection struct {
	tier       string
	model      string
	variant    string
	transport  string
	scenario   string
	iterations int
}

func (s *selection) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.tier, "tier", "", "test tier (smoke, full, stress); overrides config")
	cmd.Flags().StringVar(&s.model, "model", "", "device model; overrides config")
	cmd.Flags().StringVar(&s.variant, "variant", "", "FPGA image variant for x410/x440; overrides config")
	cmd.Flags().StringVar(&s.transport, "transport", "", "transport (kernel, dpdk, all); overrides config")
	cmd.Flags().StringVar(&s.scenario, "scenario", "", "only scenarios whose name contains this string")
	cmd.Flags().IntVar(&s.iterations, "iterations", 0, "override trial iterations")
}

// apply folds flag overrides into cfg.
func (s *selection) apply(cfg *config.Config) error {
	if s.tier != "" {
		if _, err := scenario.ParseTier(s.tier); err != nil {
			return err
		}
		cfg.Tier = s.tier
	}
	if s.model != "" {
		cfg.Device.Model = s.model
	}
	if s.variant != "" {
		cfg.Device.Variant = s.variant
	}
	switch strings.ToLower(s.transport) {
	case "":
	case "all":
		cfg.Transports = nil
	default:
		if _, err := scenario.ParseTransport(s.transport); err != nil {
			return err
		}
		cfg.Transports = []string{s.transport}
	}
	if s.iterations < 0 {
		return fmt.Errorf("--iterations must not be negative")
	}
	return nil
}

// planItem is one scenario to execute under one transport.
type planItem struct {
	Scenario  scenario.Scenario
	Transport scenario.Transport
	Tier      scenario.Tier
	Params    scenario.TrialParams
}

// buildPlan expands the configured device into the ordered list of scenario
// executions: transports in order, each with the tier's scenarios.
func buildPlan(cfg *config.Config, nameFilter string, iterations int) ([]planItem, error) {
	tier, err := scenario.ParseTier(cfg.Tier)
	if err != nil {
		return nil, err
	}
	all, err := scenario.ScenariosFor(cfg.Device.Model, cfg.Device.Variant)
	if err != nil {
		return nil, err
	}
	params, err := scenario.ParamsFor(tier, cfg.Device.Model)
	if err != nil {
		return nil, err
	}
	if iterations > 0 {
		params.Iterations = iterations
	}
	selected := filterScenarios(scenario.Select(all, tier), nameFilter)

	transports := cfg.TransportList()
	if len(transports) == 0 {
		return nil, fmt.Errorf("no supported transport selected for %s", cfg.Device.Model)
	}
	var plan []planItem
	for _, t := range transports {
		for _, s := range selected {
			plan = append(plan, planItem{Scenario: s, Transport: t, Tier: tier, Params: params})
		}
	}
	return plan, nil
}

func filterScenarios(scenarios []scenario.Scenario, substr string) []scenario.Scenario {
	if substr == "" {
		return scenarios
	}
	var out []scenario.Scenario
	for _, s := range scenarios {
		if strings.Contains(strings.ToLower(s.Name), strings.ToLower(substr)) {
			out = append(out, s)
		}
	}
	return out
}

func deviceEnv(cfg *config.Config, t scenario.Transport) invocation.Env {
	return invocation.Env{
		Model:         strings.ToLower(cfg.Device.Model),
		Variant:       cfg.Device.Variant,
		Addr:          cfg.Device.Addr,
		SecondAddr:    cfg.Device.SecondAddr,
		Name:          cfg.Device.Name,
		MgmtAddr:      cfg.Device.MgmtAddr,
		Transport:     t,
		NumRecvFrames: cfg.Device.NumRecvFrames,
		NumSendFrames: cfg.Device.NumSendFrames,
	}
}
