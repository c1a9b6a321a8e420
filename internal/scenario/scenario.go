// Package scenario holds the per-device capability matrix and the tier
// selection that turns it into the scenarios for one run.
package scenario

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Scenario is one device configuration to benchmark. Scenarios are built once
// from the capability tables and never mutated.
type Scenario struct {
	Name          string  `json:"name"`
	DualSFP       bool    `json:"dual_sfp"`
	Rate          float64 `json:"rate"`
	RxRate        float64 `json:"rx_rate,omitempty"`
	RxChannels    []int   `json:"rx_channels,omitempty"`
	TxRate        float64 `json:"tx_rate,omitempty"`
	TxChannels    []int   `json:"tx_channels,omitempty"`
	TxSampleAlign int     `json:"tx_sample_align,omitempty"`
	ExcludedTiers TierSet `json:"excluded_tiers,omitempty"`
	// KnownIssue marks a scenario that is expected to fail on current
	// hardware images.
	KnownIssue string `json:"known_issue,omitempty"`
}

func (s Scenario) HasRX() bool { return len(s.RxChannels) > 0 }
func (s Scenario) HasTX() bool { return len(s.TxChannels) > 0 }

// Validate rejects scenarios that would stream nothing.
func (s Scenario) Validate() error {
	if !s.HasRX() && !s.HasTX() {
		return fmt.Errorf("scenario %q: no rx or tx channels", s.Name)
	}
	if s.HasRX() && s.RxRate <= 0 {
		return fmt.Errorf("scenario %q: rx channels without rx rate", s.Name)
	}
	if s.HasTX() && s.TxRate <= 0 {
		return fmt.Errorf("scenario %q: tx channels without tx rate", s.Name)
	}
	return nil
}

func (s Scenario) clone() Scenario {
	c := s
	c.RxChannels = append([]int(nil), s.RxChannels...)
	c.TxChannels = append([]int(nil), s.TxChannels...)
	c.ExcludedTiers = append(TierSet(nil), s.ExcludedTiers...)
	return c
}

// FormatChannels renders a channel set the way the benchmark expects: "0,1,2".
func FormatChannels(chans []int) string {
	parts := make([]string, len(chans))
	for i, c := range chans {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, ",")
}

// Transport is the host networking path used to stream samples.
type Transport string

const (
	TransportKernel Transport = "kernel"
	TransportDPDK   Transport = "dpdk"
)

// Accelerated reports whether the transport bypasses the kernel network stack.
func (t Transport) Accelerated() bool { return t == TransportDPDK }

// Label is the transport's form inside test IDs.
func (t Transport) Label() string {
	if t == TransportDPDK {
		return "DPDK"
	}
	return "KERNEL"
}

func ParseTransport(s string) (Transport, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "kernel", "no-dpdk", "udp":
		return TransportKernel, nil
	case "dpdk":
		return TransportDPDK, nil
	default:
		return "", fmt.Errorf("unknown transport %q (want kernel or dpdk)", s)
	}
}

// IsUSB reports whether the model is attached over USB rather than Ethernet.
func IsUSB(model string) bool {
	return usbModels[normalizeModel(model)]
}

// TransportsFor lists the transports a model can stream over. USB devices
// only have the kernel path.
func TransportsFor(model string) []Transport {
	if IsUSB(model) {
		return []Transport{TransportKernel}
	}
	return []Transport{TransportDPDK, TransportKernel}
}

// TestID names one scenario execution, e.g. "n310-DPDK-1x10GbE-2xRX@153.6e6-fast".
func TestID(model string, t Transport, s Scenario, tier Tier) string {
	return fmt.Sprintf("%s-%s-%s-%s", normalizeModel(model), t.Label(), s.Name, ParamsID(tier))
}

// ConfigurationError is returned when no capability matrix exists for the
// requested model and image variant.
type ConfigurationError struct {
	Model   string
	Variant string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if e.Variant != "" {
		return fmt.Sprintf("no capability matrix for %s (%s): %s", e.Model, e.Variant, e.Reason)
	}
	return fmt.Sprintf("no capability matrix for %s: %s", e.Model, e.Reason)
}

// IsConfigurationError reports whether err wraps a *ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

func normalizeModel(model string) string {
	return strings.ToLower(strings.TrimSpace(model))
}

func normalizeVariant(variant string) string {
	return strings.ToUpper(strings.TrimSpace(variant))
}
