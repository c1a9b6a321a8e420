package verdict

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/signalnine/streamcheck/internal/scenario"
	"github.com/signalnine/streamcheck/internal/stats"
)

// Outcome is the result of a metric group or a whole scenario.
type Outcome string

const (
	Pass     Outcome = "pass"
	SoftFail Outcome = "soft_fail"
	Fail     Outcome = "fail"
	// Error marks a scenario whose trials could not run. It never comes out
	// of Evaluate.
	Error Outcome = "error"
)

func rank(o Outcome) int {
	switch o {
	case "":
		return -1
	case Pass:
		return 0
	case SoftFail:
		return 1
	case Fail:
		return 2
	default:
		return 3
	}
}

// Worse returns the more severe of two outcomes.
func Worse(a, b Outcome) Outcome {
	if rank(b) > rank(a) {
		return b
	}
	return a
}

// Directions says which signal paths a scenario configures.
type Directions struct {
	RX bool `json:"rx"`
	TX bool `json:"tx"`
}

// DirectionsOf reads the configured paths from a scenario.
func DirectionsOf(s scenario.Scenario) Directions {
	return Directions{RX: s.HasRX(), TX: s.HasTX()}
}

// Check is one evaluated metric.
type Check struct {
	Metric    stats.Metric `json:"metric"`
	Group     Group        `json:"group"`
	Severity  Severity     `json:"severity"`
	Threshold int          `json:"threshold"`
	Actual    float64      `json:"actual"`
	Breached  bool         `json:"breached"`
}

// Outcome is pass when under threshold, otherwise fail or soft_fail by severity.
func (c Check) Outcome() Outcome {
	if !c.Breached {
		return Pass
	}
	if c.Severity == Soft {
		return SoftFail
	}
	return Fail
}

// Explain renders the expected-vs-actual message for a breached check.
func (c Check) Explain() string {
	l := Label(c.Metric)
	return fmt.Sprintf("Number of %s exceeded threshold.\nExpected %s: <= %d\nActual %s:      %g",
		l, l, c.Threshold, l, c.Actual)
}

// Verdict is the evaluation of one scenario's aggregate.
type Verdict struct {
	Outcome    Outcome            `json:"outcome"`
	Groups     map[Group]Outcome  `json:"groups"`
	Checks     []Check            `json:"checks"`
	Transport  scenario.Transport `json:"transport"`
	Iterations int                `json:"iterations"`
}

// Evaluate applies thresholds and the transport severity policy to s. Metrics
// of a path with no configured channels are skipped; late commands are
// checked whenever any path is configured.
func Evaluate(s *stats.Stats, dirs Directions, t scenario.Transport, th Thresholds) *Verdict {
	v := &Verdict{
		Outcome:   Pass,
		Groups:    map[Group]Outcome{},
		Transport: t,
	}
	if s != nil {
		v.Iterations = s.Trials
	}
	for _, m := range stats.Metrics {
		g := GroupOf(m)
		switch {
		case g == GroupRX && !dirs.RX:
			continue
		case g == GroupTX && !dirs.TX:
			continue
		case g == GroupTiming && !dirs.RX && !dirs.TX:
			continue
		}
		c := Check{
			Metric:    m,
			Group:     g,
			Severity:  SeverityOf(m, t),
			Threshold: th.Limit(m),
			Actual:    s.Mean(m),
		}
		c.Breached = c.Actual > float64(c.Threshold)
		v.Checks = append(v.Checks, c)

		o := c.Outcome()
		v.Groups[g] = Worse(v.Groups[g], o)
		v.Outcome = Worse(v.Outcome, o)
	}
	return v
}

// Breaches returns the checks over threshold.
func (v *Verdict) Breaches() []Check {
	var out []Check
	for _, c := range v.Checks {
		if c.Breached {
			out = append(out, c)
		}
	}
	return out
}

// Render writes the iteration count and every evaluated metric's threshold
// and measured mean, followed by an explanation for each breach.
func (v *Verdict) Render(w io.Writer) error {
	fmt.Fprintf(w, "Outcome: %s (transport: %s, iterations: %d)\n", v.Outcome, v.Transport, v.Iterations)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METRIC\tEXPECTED\tACTUAL\tSEVERITY\tRESULT")
	for _, c := range v.Checks {
		fmt.Fprintf(tw, "%s\t<= %d\t%.2f\t%s\t%s\n", Label(c.Metric), c.Threshold, c.Actual, c.Severity, c.Outcome())
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, c := range v.Breaches() {
		fmt.Fprintf(w, "\n%s\n", c.Explain())
		if c.Severity == Soft {
			fmt.Fprintf(w, "(known limitation on the %s transport)\n", v.Transport)
		}
	}
	return nil
}
