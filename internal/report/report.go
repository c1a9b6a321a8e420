package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/signalnine/streamcheck/internal/result"
	"github.com/signalnine/streamcheck/internal/stats"
	"github.com/signalnine/streamcheck/internal/verdict"
)

// ScenarioRow is one line of the report.
type ScenarioRow struct {
	TestID     string          `json:"test_id"`
	Transport  string          `json:"transport"`
	Outcome    verdict.Outcome `json:"outcome"`
	KnownIssue bool            `json:"known_issue,omitempty"`
	Dropped    float64         `json:"dropped_samps"`
	Overruns   float64         `json:"overruns"`
	Underruns  float64         `json:"underruns"`
	LateCmds   float64         `json:"late_cmds"`
	Breaches   []string        `json:"breaches,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// TransportSummary counts scenario outcomes for one transport.
type TransportSummary struct {
	Transport string `json:"transport"`
	Scenarios int    `json:"scenarios"`
	Passed    int    `json:"passed"`
	SoftFail  int    `json:"soft_fail"`
	Failed    int    `json:"failed"`
	Expected  int    `json:"expected_failures"`
	Errors    int    `json:"errors"`
}

type Report struct {
	Scenarios  []ScenarioRow      `json:"scenarios"`
	Transports []TransportSummary `json:"transports"`
}

// Generate reads stored scenario records and produces a summary report.
func Generate(runDir, format string, w io.Writer) error {
	recs, err := result.Collect(runDir)
	if err != nil {
		return err
	}
	return Write(recs, format, w)
}

// Write renders records as "table" (the default), "markdown" or "json".
func Write(recs []*result.ScenarioRecord, format string, w io.Writer) error {
	rep := Build(recs)
	switch format {
	case "markdown":
		return writeMarkdown(rep, w)
	case "json":
		return writeJSON(rep, w)
	default:
		return writeTable(rep, w)
	}
}

func Build(recs []*result.ScenarioRecord) *Report {
	rep := &Report{Scenarios: []ScenarioRow{}, Transports: []TransportSummary{}}
	byTransport := map[string]*TransportSummary{}
	for _, rec := range recs {
		row := ScenarioRow{
			TestID:     rec.TestID,
			Transport:  string(rec.Transport),
			Outcome:    rec.Outcome,
			KnownIssue: rec.Scenario.KnownIssue != "",
			Error:      rec.Error,
		}
		if rec.Stats != nil {
			row.Dropped = rec.Stats.Mean(stats.DroppedSamps)
			row.Overruns = rec.Stats.Mean(stats.Overruns)
			row.Underruns = rec.Stats.Mean(stats.Underruns)
			row.LateCmds = rec.Stats.Mean(stats.LateCmds)
		}
		if rec.Verdict != nil {
			for _, c := range rec.Verdict.Breaches() {
				row.Breaches = append(row.Breaches, fmt.Sprintf("%s=%.2f>%d", c.Metric, c.Actual, c.Threshold))
			}
		}
		rep.Scenarios = append(rep.Scenarios, row)

		ts, ok := byTransport[row.Transport]
		if !ok {
			ts = &TransportSummary{Transport: row.Transport}
			byTransport[row.Transport] = ts
		}
		ts.Scenarios++
		switch {
		case rec.Expected():
			ts.Expected++
		case rec.Outcome == verdict.Pass:
			ts.Passed++
		case rec.Outcome == verdict.SoftFail:
			ts.SoftFail++
		case rec.Outcome == verdict.Fail:
			ts.Failed++
		default:
			ts.Errors++
		}
	}
	for _, ts := range byTransport {
		rep.Transports = append(rep.Transports, *ts)
	}
	sort.Slice(rep.Transports, func(i, j int) bool {
		return rep.Transports[i].Transport < rep.Transports[j].Transport
	})
	return rep
}

func outcomeCell(r ScenarioRow) string {
	if r.KnownIssue && r.Outcome == verdict.Fail {
		return "fail (known issue)"
	}
	return string(r.Outcome)
}

func detailCell(r ScenarioRow) string {
	if r.Error != "" {
		return r.Error
	}
	return strings.Join(r.Breaches, " ")
}

func writeTable(rep *Report, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TEST\tOUTCOME\tDROPPED\tOVERRUNS\tUNDERRUNS\tLATE\tDETAIL")
	fmt.Fprintln(tw, strings.Repeat("-", 100))
	for _, r := range rep.Scenarios {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%.2f\t%.2f\t%s\n",
			r.TestID, outcomeCell(r), r.Dropped, r.Overruns, r.Underruns, r.LateCmds, detailCell(r))
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "TRANSPORT\tSCENARIOS\tPASS\tSOFT FAIL\tFAIL\tEXPECTED\tERROR")
	for _, t := range rep.Transports {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\n",
			t.Transport, t.Scenarios, t.Passed, t.SoftFail, t.Failed, t.Expected, t.Errors)
	}
	return tw.Flush()
}

func writeMarkdown(rep *Report, w io.Writer) error {
	fmt.Fprintln(w, "| Test | Outcome | Dropped | Overruns | Underruns | Late | Detail |")
	fmt.Fprintln(w, "|---|---|---|---|---|---|---|")
	for _, r := range rep.Scenarios {
		fmt.Fprintf(w, "| %s | %s | %.2f | %.2f | %.2f | %.2f | %s |\n",
			r.TestID, outcomeCell(r), r.Dropped, r.Overruns, r.Underruns, r.LateCmds, detailCell(r))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Transport | Scenarios | Pass | Soft fail | Fail | Expected | Error |")
	fmt.Fprintln(w, "|---|---|---|---|---|---|---|")
	for _, t := range rep.Transports {
		fmt.Fprintf(w, "| %s | %d | %d | %d | %d | %d | %d |\n",
			t.Transport, t.Scenarios, t.Passed, t.SoftFail, t.Failed, t.Expected, t.Errors)
	}
	return nil
}

func writeJSON(rep *Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// WriteScenario prints the full verdict of one scenario: options, iteration
// count and every checked metric.
func WriteScenario(w io.Writer, rec *result.ScenarioRecord) error {
	fmt.Fprintf(w, "== %s\n", rec.TestID)
	if rec.Invocation != nil {
		fmt.Fprintf(w, "Options: %s\n", rec.Invocation)
	}
	if rec.Scenario.KnownIssue != "" {
		fmt.Fprintf(w, "Known issue: %s\n", rec.Scenario.KnownIssue)
	}
	if rec.Verdict == nil {
		_, err := fmt.Fprintf(w, "Outcome: %s: %s\n", rec.Outcome, rec.Error)
		return err
	}
	return rec.Verdict.Render(w)
}
