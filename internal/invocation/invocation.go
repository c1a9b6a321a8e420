// Package invocation turns a scenario and the device environment into the
// option list passed to the benchmark executable.
package invocation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/signalnine/streamcheck/internal/scenario"
)

// Option is one key=value benchmark option.
type Option struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Invocation is an ordered set of benchmark options.
type Invocation struct {
	Options []Option `json:"options"`
}

// Set assigns key, keeping its original position if already present.
func (inv *Invocation) Set(key, value string) {
	for i := range inv.Options {
		if inv.Options[i].Key == key {
			inv.Options[i].Value = value
			return
		}
	}
	inv.Options = append(inv.Options, Option{Key: key, Value: value})
}

func (inv *Invocation) Get(key string) (string, bool) {
	for _, o := range inv.Options {
		if o.Key == key {
			return o.Value, true
		}
	}
	return "", false
}

func (inv *Invocation) Keys() []string {
	keys := make([]string, len(inv.Options))
	for i, o := range inv.Options {
		keys[i] = o.Key
	}
	return keys
}

// Args renders the options as command-line flags.
func (inv *Invocation) Args() []string {
	args := make([]string, len(inv.Options))
	for i, o := range inv.Options {
		args[i] = "--" + o.Key + "=" + o.Value
	}
	return args
}

// String renders the options comma-joined, as they appear in logs and reports.
func (inv *Invocation) String() string {
	parts := make([]string, len(inv.Options))
	for i, o := range inv.Options {
		parts[i] = o.Key + "=" + o.Value
	}
	return strings.Join(parts, ",")
}

// Env is the device addressing and host options a run was started with.
type Env struct {
	Model         string
	Variant       string
	Addr          string
	SecondAddr    string
	Name          string
	MgmtAddr      string
	Transport     scenario.Transport
	NumRecvFrames int
	NumSendFrames int
}

// usesName lists models addressed by serial/name over USB instead of an IP.
var usesName = map[string]bool{
	"b210": true,
}

// pinsMasterClock lists models whose master clock must match the sample rate.
var pinsMasterClock = map[string]bool{
	"n310": true,
	"n320": true,
	"e320": true,
	"b210": true,
	"x440": true,
}

// skipsMPMReboot lists models that reboot MPM on init for RF calibration,
// which streaming tests do not need.
var skipsMPMReboot = map[string]bool{
	"x440": true,
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func model(env Env) string {
	return strings.ToLower(strings.TrimSpace(env.Model))
}

// DeviceArgs builds the comma-joined device address string for a scenario.
func DeviceArgs(s scenario.Scenario, env Env) string {
	m := model(env)
	var args []string
	if pinsMasterClock[m] {
		args = append(args, "master_clock_rate="+formatFloat(s.Rate))
	}
	if skipsMPMReboot[m] {
		args = append(args, "skip_mpm_reboot=1")
	}
	if usesName[m] {
		args = append(args, "name="+env.Name)
	} else {
		args = append(args, "addr="+env.Addr)
	}
	if s.DualSFP {
		args = append(args, "second_addr="+env.SecondAddr)
	}
	if env.Transport.Accelerated() {
		args = append(args, "use_dpdk=1")
		if env.MgmtAddr != "" {
			args = append(args, "mgmt_addr="+env.MgmtAddr)
		}
	}
	if env.NumRecvFrames > 0 {
		args = append(args, "num_recv_frames="+strconv.Itoa(env.NumRecvFrames))
	}
	if env.NumSendFrames > 0 {
		args = append(args, "num_send_frames="+strconv.Itoa(env.NumSendFrames))
	}
	return strings.Join(args, ",")
}

func checkEnv(s scenario.Scenario, env Env) error {
	m := model(env)
	if usesName[m] {
		if env.Transport.Accelerated() {
			return fmt.Errorf("%s does not support the dpdk transport", m)
		}
		return nil
	}
	if env.Addr == "" {
		return fmt.Errorf("%s: device addr is required", m)
	}
	if s.DualSFP && env.SecondAddr == "" {
		return fmt.Errorf("scenario %q needs second_addr for the second interface", s.Name)
	}
	return nil
}

// Build derives the benchmark options for one scenario execution.
func Build(s scenario.Scenario, p scenario.TrialParams, env Env) (*Invocation, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if p.Iterations < 1 || p.DurationS < 1 {
		return nil, fmt.Errorf("invalid trial params %+v", p)
	}
	if err := checkEnv(s, env); err != nil {
		return nil, err
	}

	inv := &Invocation{}
	inv.Set("args", DeviceArgs(s, env))
	inv.Set("duration", strconv.Itoa(p.DurationS))
	inv.Set("priority", "high")
	if s.HasRX() {
		inv.Set("rx_rate", formatFloat(s.RxRate))
		inv.Set("rx_channels", scenario.FormatChannels(s.RxChannels))
	}
	if s.HasTX() {
		inv.Set("tx_rate", formatFloat(s.TxRate))
		inv.Set("tx_channels", scenario.FormatChannels(s.TxChannels))
	}
	if s.TxSampleAlign > 0 {
		inv.Set("tx_sample_align", strconv.Itoa(s.TxSampleAlign))
	}
	PolicyFor(env.Model, env.Variant).apply(inv)
	return inv, nil
}
