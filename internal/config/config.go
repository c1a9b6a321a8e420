package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/signalnine/streamcheck/internal/probe"
	"github.com/signalnine/streamcheck/internal/scenario"
	"github.com/signalnine/streamcheck/internal/stats"
)

type Config struct {
	Benchmark  Benchmark      `yaml:"benchmark"`
	Device     Device         `yaml:"device"`
	Tier       string         `yaml:"tier"`
	Transports []string       `yaml:"transports"`
	Thresholds map[string]int `yaml:"thresholds"`
	Results    Results        `yaml:"results"`
	Probe      Probe          `yaml:"probe"`
}

// Benchmark says how to launch benchmark_rate.
type Benchmark struct {
	Path     string `yaml:"path"`
	Executor string `yaml:"executor"`
	Image    string `yaml:"image"`
	EnvFile  string `yaml:"env_file"`
}

type Device struct {
	Model         string `yaml:"model"`
	Variant       string `yaml:"variant"`
	Addr          string `yaml:"addr"`
	SecondAddr    string `yaml:"second_addr"`
	Name          string `yaml:"name"`
	MgmtAddr      string `yaml:"mgmt_addr"`
	NumRecvFrames int    `yaml:"num_recv_frames"`
	NumSendFrames int    `yaml:"num_send_frames"`
}

type Results struct {
	Dir             string `yaml:"dir"`
	MetricsTextfile string `yaml:"metrics_textfile"`
}

// Probe configures the reachability check run before streaming.
type Probe struct {
	Enabled  bool `yaml:"enabled"`
	Port     int  `yaml:"port"`
	TimeoutS int  `yaml:"timeout_s"`
}

const (
	ExecutorLocal     = "local"
	ExecutorContainer = "container"

	defaultBenchmarkPath = "/usr/local/lib/uhd/examples/benchmark_rate"
	defaultResultsDir    = "results"
	defaultProbeTimeoutS = 10
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Device.Model == "" {
		return fmt.Errorf("device.model is required")
	}
	if cfg.Benchmark.Path == "" {
		cfg.Benchmark.Path = defaultBenchmarkPath
	}
	switch cfg.Benchmark.Executor {
	case "":
		cfg.Benchmark.Executor = ExecutorLocal
	case ExecutorLocal:
	case ExecutorContainer:
		if cfg.Benchmark.Image == "" {
			return fmt.Errorf("benchmark.image is required for the container executor")
		}
	default:
		return fmt.Errorf("unknown benchmark.executor %q", cfg.Benchmark.Executor)
	}
	if cfg.Tier == "" {
		cfg.Tier = string(scenario.TierSmoke)
	}
	if _, err := scenario.ParseTier(cfg.Tier); err != nil {
		return err
	}
	for _, t := range cfg.Transports {
		if _, err := scenario.ParseTransport(t); err != nil {
			return err
		}
	}
	for name, v := range cfg.Thresholds {
		if _, err := stats.ParseMetric(name); err != nil {
			return fmt.Errorf("thresholds: %w", err)
		}
		if v < 0 {
			return fmt.Errorf("thresholds: %s must not be negative", name)
		}
	}
	if cfg.Device.NumRecvFrames < 0 || cfg.Device.NumSendFrames < 0 {
		return fmt.Errorf("device frame counts must not be negative")
	}
	if cfg.Results.Dir == "" {
		cfg.Results.Dir = defaultResultsDir
	}
	if cfg.Probe.Port == 0 {
		cfg.Probe.Port = probe.MPMPort
	}
	if cfg.Probe.TimeoutS == 0 {
		cfg.Probe.TimeoutS = defaultProbeTimeoutS
	}
	return nil
}

// TransportList resolves the configured transports, defaulting to every
// transport the model supports.
func (c *Config) TransportList() []scenario.Transport {
	supported := scenario.TransportsFor(c.Device.Model)
	if len(c.Transports) == 0 {
		return supported
	}
	var out []scenario.Transport
	for _, s := range c.Transports {
		t, err := scenario.ParseTransport(s)
		if err != nil {
			continue
		}
		for _, sup := range supported {
			if sup == t {
				out = append(out, t)
			}
		}
	}
	return out
}

// ThresholdOverrides converts the configured overrides to metric keys.
func (c *Config) ThresholdOverrides() map[stats.Metric]int {
	out := make(map[stats.Metric]int, len(c.Thresholds))
	for name, v := range c.Thresholds {
		if m, err := stats.ParseMetric(strings.TrimSpace(name)); err == nil {
			out[m] = v
		}
	}
	return out
}
