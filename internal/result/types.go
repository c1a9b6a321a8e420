package result

import (
	"time"

	"github.com/signalnine/streamcheck/internal/invocation"
	"github.com/signalnine/streamcheck/internal/scenario"
	"github.com/signalnine/streamcheck/internal/stats"
	"github.com/signalnine/streamcheck/internal/verdict"
)

// ScenarioRecord is everything stored about one scenario execution.
type ScenarioRecord struct {
	TestID     string                 `json:"test_id"`
	Model      string                 `json:"model"`
	Variant    string                 `json:"variant,omitempty"`
	Transport  scenario.Transport     `json:"transport"`
	Tier       scenario.Tier          `json:"tier"`
	Scenario   scenario.Scenario      `json:"scenario"`
	Params     scenario.TrialParams   `json:"params"`
	Invocation *invocation.Invocation `json:"invocation,omitempty"`
	Stats      *stats.Stats           `json:"stats,omitempty"`
	Verdict    *verdict.Verdict       `json:"verdict,omitempty"`
	Outcome    verdict.Outcome        `json:"outcome"`
	Error      string                 `json:"error,omitempty"`
	StartedAt  time.Time              `json:"started_at"`
	DurationS  int                    `json:"duration_s"`
}

// Expected reports a failure or error on a scenario with a known issue.
func (r *ScenarioRecord) Expected() bool {
	if r.Scenario.KnownIssue == "" {
		return false
	}
	return r.Outcome == verdict.Fail || r.Outcome == verdict.Error
}

// Blocking reports whether the record should fail the run: errors and hard
// failures that are not known issues. Soft failures never block.
func (r *ScenarioRecord) Blocking() bool {
	switch r.Outcome {
	case verdict.Error, verdict.Fail:
		return !r.Expected()
	default:
		return false
	}
}
