package scenario_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalnine/streamcheck/internal/scenario"
)

func TestScenariosForKnownModels(t *testing.T) {
	tests := []struct {
		model   string
		variant string
		want    int
	}{
		{"n310", "", 19},
		{"N310", "", 19},
		{"n320", "", 6},
		{"b210", "", 6},
		{"e320", "", 6},
		{"x310", "", 9},
		{"x310_twinrx", "", 3},
		{"x410", "CG_400", 6},
		{"x410", "uc_200", 3},
		{"x440", "CG_400", 5},
		{"x440", "CG_1600", 3},
		{"e320", "ignored", 6},
	}
	for _, tt := range tests {
		t.Run(tt.model+"/"+tt.variant, func(t *testing.T) {
			got, err := scenario.ScenariosFor(tt.model, tt.variant)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
			for _, s := range got {
				assert.NoError(t, s.Validate())
			}
		})
	}
}

func TestScenariosForUnknown(t *testing.T) {
	tests := []struct {
		name    string
		model   string
		variant string
	}{
		{"unknown model", "n210", ""},
		{"missing variant", "x410", ""},
		{"unknown variant", "x440", "UC_200"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scenario.ScenariosFor(tt.model, tt.variant)
			require.Error(t, err)
			assert.True(t, scenario.IsConfigurationError(err), "got %T", err)
		})
	}
}

func TestScenariosForReturnsCopy(t *testing.T) {
	first, err := scenario.ScenariosFor("n320", "")
	require.NoError(t, err)
	first[0].RxChannels[0] = 7
	first[0].Name = "mutated"

	second, err := scenario.ScenariosFor("n320", "")
	require.NoError(t, err)
	assert.Equal(t, "1x10GbE-1xRX@250e6", second[0].Name)
	assert.Equal(t, []int{0}, second[0].RxChannels)
}

func TestValidate(t *testing.T) {
	assert.Error(t, scenario.Scenario{Name: "empty"}.Validate())
	assert.Error(t, scenario.Scenario{Name: "no-rate", RxChannels: []int{0}}.Validate())
	assert.NoError(t, scenario.Scenario{Name: "ok", TxChannels: []int{0}, TxRate: 1e6}.Validate())
}

func TestKnownIssueMarked(t *testing.T) {
	got, err := scenario.ScenariosFor("x410", "CG_400")
	require.NoError(t, err)
	var marked []string
	for _, s := range got {
		if s.KnownIssue != "" {
			marked = append(marked, s.Name)
		}
	}
	assert.Equal(t, []string{"2x100GbE-4xTRX@491.52e6"}, marked)
}

func TestTransportsFor(t *testing.T) {
	assert.Equal(t, []scenario.Transport{scenario.TransportKernel}, scenario.TransportsFor("B210"))
	assert.Equal(t, []scenario.Transport{scenario.TransportDPDK, scenario.TransportKernel}, scenario.TransportsFor("x410"))
}

func TestTestID(t *testing.T) {
	s := scenario.Scenario{Name: "1x10GbE-2xRX@153.6e6"}
	assert.Equal(t, "n310-DPDK-1x10GbE-2xRX@153.6e6-fast", scenario.TestID("N310", scenario.TransportDPDK, s, scenario.TierSmoke))
	assert.Equal(t, "n310-KERNEL-1x10GbE-2xRX@153.6e6-stress", scenario.TestID("n310", scenario.TransportKernel, s, scenario.TierStress))
}

func TestModelsAndVariants(t *testing.T) {
	assert.Equal(t, []string{"b210", "e320", "n310", "n320", "x310", "x310_twinrx", "x410", "x440"}, scenario.Models())
	assert.Equal(t, []string{"CG_400", "UC_200"}, scenario.Variants("x410"))
	assert.Nil(t, scenario.Variants("n310"))
}

func TestFormatChannels(t *testing.T) {
	assert.Equal(t, "0,1,2,3", scenario.FormatChannels([]int{0, 1, 2, 3}))
	assert.Equal(t, "", scenario.FormatChannels(nil))
}

func names(ss []scenario.Scenario) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = s.Name
	}
	return out
}

func TestSelect(t *testing.T) {
	all, err := scenario.ScenariosFor("n320", "")
	require.NoError(t, err)

	tests := []struct {
		tier scenario.Tier
		want []string
	}{
		{scenario.TierSmoke, []string{"1x10GbE-1xTRX@250e6", "2x10GbE-2xTRX@250e6"}},
		{scenario.TierStress, []string{"1x10GbE-1xTRX@250e6", "2x10GbE-2xTRX@250e6"}},
		{scenario.TierFull, names(all)},
	}
	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			got := names(scenario.Select(all, tt.tier))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Select(%s) mismatch (-want +got):\n%s", tt.tier, diff)
			}
		})
	}
}

func TestSelectDeterministic(t *testing.T) {
	all, err := scenario.ScenariosFor("n310", "")
	require.NoError(t, err)
	for _, tier := range []scenario.Tier{scenario.TierSmoke, scenario.TierFull, scenario.TierStress} {
		a := scenario.Select(all, tier)
		b := scenario.Select(all, tier)
		if diff := cmp.Diff(a, b); diff != "" {
			t.Errorf("Select(%s) not deterministic:\n%s", tier, diff)
		}
	}
}

func TestSelectExclusionSemantics(t *testing.T) {
	in := []scenario.Scenario{
		{Name: "a"},
		{Name: "b", ExcludedTiers: scenario.Tiers(scenario.TierStress)},
		{Name: "c", ExcludedTiers: scenario.Tiers(scenario.TierSmoke, scenario.TierFull, scenario.TierStress)},
	}
	assert.Equal(t, []string{"a", "b"}, names(scenario.Select(in, scenario.TierSmoke)))
	assert.Equal(t, []string{"a"}, names(scenario.Select(in, scenario.TierStress)))
	assert.Empty(t, scenario.Select(nil, scenario.TierFull))
}

func TestParamsFor(t *testing.T) {
	tests := []struct {
		tier  scenario.Tier
		model string
		want  scenario.TrialParams
	}{
		{scenario.TierSmoke, "n310", scenario.TrialParams{Iterations: 10, DurationS: 30}},
		{scenario.TierFull, "n310", scenario.TrialParams{Iterations: 10, DurationS: 30}},
		{scenario.TierSmoke, "X310", scenario.TrialParams{Iterations: 10, DurationS: 60}},
		{scenario.TierStress, "x310", scenario.TrialParams{Iterations: 2, DurationS: 600}},
		{scenario.TierStress, "b210", scenario.TrialParams{Iterations: 2, DurationS: 600}},
	}
	for _, tt := range tests {
		got, err := scenario.ParamsFor(tt.tier, tt.model)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "ParamsFor(%s, %s)", tt.tier, tt.model)
	}
	_, err := scenario.ParamsFor("weekly", "n310")
	assert.Error(t, err)
}

func TestParamsForEveryModel(t *testing.T) {
	for _, m := range scenario.Models() {
		for _, tier := range []scenario.Tier{scenario.TierSmoke, scenario.TierFull} {
			p, err := scenario.ParamsFor(tier, m)
			require.NoError(t, err)
			assert.Equal(t, 10, p.Iterations, m)
		}
		p, err := scenario.ParamsFor(scenario.TierStress, m)
		require.NoError(t, err)
		assert.Equal(t, scenario.TrialParams{Iterations: 2, DurationS: 600}, p, m)
	}
}

func TestParseTierAndTransport(t *testing.T) {
	tier, err := scenario.ParseTier(" Stress ")
	require.NoError(t, err)
	assert.Equal(t, scenario.TierStress, tier)
	_, err = scenario.ParseTier("nightly")
	assert.Error(t, err)

	tr, err := scenario.ParseTransport("DPDK")
	require.NoError(t, err)
	assert.True(t, tr.Accelerated())
	tr, err = scenario.ParseTransport("kernel")
	require.NoError(t, err)
	assert.False(t, tr.Accelerated())
	_, err = scenario.ParseTransport("rdma")
	assert.Error(t, err)
}

func TestIsUSB(t *testing.T) {
	assert.True(t, scenario.IsUSB("b210"))
	assert.True(t, scenario.IsUSB(" B210 "))
	assert.False(t, scenario.IsUSB("x410"))
}

func TestN310DualFourChannelNamesMatchRate(t *testing.T) {
	all, err := scenario.ScenariosFor("n310", "")
	require.NoError(t, err)
	byName := map[string]scenario.Scenario{}
	for _, s := range all {
		byName[s.Name] = s
	}
	for _, name := range []string{"2x10GbE-4xRX@125e6", "2x10GbE-4xTX@125e6", "2x10GbE-4xTRX@125e6"} {
		s, ok := byName[name]
		require.True(t, ok, name)
		assert.Equal(t, 125e6, s.Rate, name)
	}
	_, ok := byName["2x10GbE-4xTRX@62.5e6"]
	assert.False(t, ok)
}
