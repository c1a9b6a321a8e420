package scenario

import (
	"fmt"
	"strings"
)

// Tier is a test-length profile.
type Tier string

const (
	TierSmoke  Tier = "smoke"
	TierFull   Tier = "full"
	TierStress Tier = "stress"
)

// Valid returns true if the tier is a known value.
func (t Tier) Valid() bool {
	switch t {
	case TierSmoke, TierFull, TierStress:
		return true
	default:
		return false
	}
}

// ParseTier accepts any casing of a tier name.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown tier %q (want smoke, full or stress)", s)
	}
	return t, nil
}

// TierSet is a small set of tiers. The zero value is empty.
type TierSet []Tier

func Tiers(ts ...Tier) TierSet {
	return TierSet(ts)
}

func (s TierSet) Contains(t Tier) bool {
	for _, x := range s {
		if x == t {
			return true
		}
	}
	return false
}

// TrialParams controls how often and how long the benchmark runs per scenario.
type TrialParams struct {
	Iterations int `json:"iterations"`
	DurationS  int `json:"duration_s"`
}

const (
	fastIterations   = 10
	fastDurationS    = 30
	stressIterations = 2
	stressDurationS  = 600
)

// fastDurationOverrides lists models whose smoke/full trials run longer than the
// default so their buffers reach steady state.
var fastDurationOverrides = map[string]int{
	"x310": 60,
}

// ParamsFor resolves trial parameters for a tier. Smoke and full share the fast
// schedule; stress runs few, long trials.
func ParamsFor(tier Tier, model string) (TrialParams, error) {
	switch tier {
	case TierSmoke, TierFull:
		d := fastDurationS
		if o, ok := fastDurationOverrides[normalizeModel(model)]; ok {
			d = o
		}
		return TrialParams{Iterations: fastIterations, DurationS: d}, nil
	case TierStress:
		return TrialParams{Iterations: stressIterations, DurationS: stressDurationS}, nil
	default:
		return TrialParams{}, fmt.Errorf("unknown tier %q", tier)
	}
}

// ParamsID is the short label used in test IDs: "fast" or "stress".
func ParamsID(tier Tier) string {
	if tier == TierStress {
		return "stress"
	}
	return "fast"
}

// Select returns the scenarios not excluded for tier, in source order.
func Select(scenarios []Scenario, tier Tier) []Scenario {
	selected := make([]Scenario, 0, len(scenarios))
	for _, s := range scenarios {
		if s.ExcludedTiers.Contains(tier) {
			continue
		}
		selected = append(selected, s)
	}
	return selected
}
