package scenario

import (
	"fmt"
	"sort"
	"strings"
)

var (
	// fullOnly scenarios run only in the full tier.
	fullOnly = Tiers(TierSmoke, TierStress)
	// everyTier scenarios run in all tiers.
	everyTier TierSet
)

func ch(c ...int) []int { return c }

// row mirrors the column layout of the capability tables below.
func row(name string, dual bool, rate, rxRate float64, rx []int, txRate float64, tx []int, align int, excl TierSet) Scenario {
	return Scenario{
		Name:          name,
		DualSFP:       dual,
		Rate:          rate,
		RxRate:        rxRate,
		RxChannels:    rx,
		TxRate:        txRate,
		TxChannels:    tx,
		TxSampleAlign: align,
		ExcludedTiers: excl,
	}
}

type matrixKey struct {
	model   string
	variant string
}

// usbModels stream over USB and are addressed by name instead of addr.
var usbModels = map[string]bool{
	"b210": true,
}

// imageVariants lists models whose matrix depends on the loaded FPGA image.
var imageVariants = map[string][]string{
	"x410": {"CG_400", "UC_200"},
	"x440": {"CG_400", "CG_1600"},
}

var matrices = map[matrixKey][]Scenario{
	{model: "n310"}: {
		row("1x10GbE-1xRX@153.6e6", false, 153.6e6, 153.6e6, ch(0), 0, nil, 0, fullOnly),
		row("1x10GbE-2xRX@153.6e6", false, 153.6e6, 153.6e6, ch(0, 1), 0, nil, 0, fullOnly),
		row("1x10GbE-1xTX@153.6e6", false, 153.6e6, 0, nil, 153.6e6, ch(0), 0, fullOnly),
		row("1x10GbE-2xTX@153.6e6", false, 153.6e6, 0, nil, 153.6e6, ch(0, 1), 0, fullOnly),
		row("1x10GbE-1xTRX@153.6e6", false, 153.6e6, 153.6e6, ch(0), 153.6e6, ch(0), 0, fullOnly),
		row("1x10GbE-2xTRX@153.6e6", false, 153.6e6, 153.6e6, ch(0, 1), 153.6e6, ch(0, 1), 0, everyTier),
		row("1x10GbE-2xTRX@125e6", false, 125e6, 125e6, ch(0, 1), 125e6, ch(0, 1), 0, fullOnly),
		row("1x10GbE-4xRX@62.5e6", false, 62.5e6, 62.5e6, ch(0, 1, 2, 3), 0, nil, 0, fullOnly),
		row("1x10GbE-4xTX@62.5e6", false, 62.5e6, 0, nil, 62.5e6, ch(0, 1, 2, 3), 0, fullOnly),
		row("1x10GbE-4xTRX@62.5e6", false, 62.5e6, 62.5e6, ch(0, 1, 2, 3), 62.5e6, ch(0, 1, 2, 3), 0, everyTier),
		row("2x10GbE-2xRX@153.6e6", true, 153.6e6, 153.6e6, ch(0, 1), 0, nil, 0, fullOnly),
		row("2x10GbE-2xTX@153.6e6", true, 153.6e6, 0, nil, 153.6e6, ch(0, 1), 0, fullOnly),
		row("2x10GbE-2xTRX@153.6e6", true, 153.6e6, 153.6e6, ch(0, 1), 153.6e6, ch(0, 1), 0, fullOnly),
		row("2x10GbE-4xRX@153.6e6", true, 153.6e6, 153.6e6, ch(0, 1, 2, 3), 0, nil, 0, fullOnly),
		row("2x10GbE-4xTX@153.6e6", true, 153.6e6, 0, nil, 153.6e6, ch(0, 1, 2, 3), 0, fullOnly),
		row("2x10GbE-4xTRX@153.6e6", true, 153.6e6, 153.6e6, ch(0, 1, 2, 3), 153.6e6, ch(0, 1, 2, 3), 0, fullOnly),
		row("2x10GbE-4xRX@125e6", true, 125e6, 125e6, ch(0, 1, 2, 3), 0, nil, 0, fullOnly),
		row("2x10GbE-4xTX@125e6", true, 125e6, 0, nil, 125e6, ch(0, 1, 2, 3), 0, fullOnly),
		row("2x10GbE-4xTRX@125e6", true, 125e6, 125e6, ch(0, 1, 2, 3), 125e6, ch(0, 1, 2, 3), 0, everyTier),
	},
	{model: "n320"}: {
		row("1x10GbE-1xRX@250e6", false, 250e6, 250e6, ch(0), 0, nil, 0, fullOnly),
		row("1x10GbE-1xTX@250e6", false, 250e6, 0, nil, 250e6, ch(0), 0, fullOnly),
		row("1x10GbE-1xTRX@250e6", false, 250e6, 250e6, ch(0), 250e6, ch(0), 0, everyTier),
		row("2x10GbE-2xRX@250e6", true, 250e6, 250e6, ch(0, 1), 0, nil, 0, fullOnly),
		row("2x10GbE-2xTX@250e6", true, 250e6, 0, nil, 250e6, ch(0, 1), 0, fullOnly),
		row("2x10GbE-2xTRX@250e6", true, 250e6, 250e6, ch(0, 1), 250e6, ch(0, 1), 0, everyTier),
	},
	{model: "b210"}: {
		row("1xRX@61.44e6", false, 61.44e6, 61.44e6, ch(0), 0, nil, 0, fullOnly),
		row("2xRX@30.72e6", false, 30.72e6, 30.72e6, ch(0, 1), 0, nil, 0, fullOnly),
		row("1xTX@61.44e6", false, 61.44e6, 0, nil, 61.44e6, ch(0), 0, fullOnly),
		row("2xTX@30.72e6", false, 30.72e6, 0, nil, 30.72e6, ch(0, 1), 0, fullOnly),
		row("1xTRX@30.72e6", false, 30.72e6, 30.72e6, ch(0), 30.72e6, ch(0), 0, everyTier),
		row("2xTRX@15.36e6", false, 15.36e6, 15.36e6, ch(0, 1), 15.36e6, ch(0, 1), 0, fullOnly),
	},
	{model: "e320"}: {
		row("1xRX@61.44e6", false, 61.44e6, 61.44e6, ch(0), 0, nil, 0, fullOnly),
		row("2xRX@61.44e6", false, 61.44e6, 61.44e6, ch(0, 1), 0, nil, 0, fullOnly),
		row("1xTX@61.44e6", false, 61.44e6, 0, nil, 61.44e6, ch(0), 0, fullOnly),
		row("2xTX@61.44e6", false, 61.44e6, 0, nil, 61.44e6, ch(0, 1), 0, fullOnly),
		row("1xTRX@61.44e6", false, 61.44e6, 61.44e6, ch(0), 61.44e6, ch(0), 0, everyTier),
		row("2xTRX@61.44e6", false, 61.44e6, 61.44e6, ch(0, 1), 61.44e6, ch(0, 1), 0, fullOnly),
	},
	{model: "x310"}: {
		row("1x10GbE-1xRX@200e6", false, 200e6, 200e6, ch(0), 0, nil, 0, fullOnly),
		row("1x10GbE-2xRX@100e6", false, 100e6, 100e6, ch(0, 1), 0, nil, 0, fullOnly),
		row("1x10GbE-1xTX@200e6", false, 200e6, 0, nil, 200e6, ch(0), 0, fullOnly),
		row("1x10GbE-2xTX@100e6", false, 100e6, 0, nil, 100e6, ch(0, 1), 0, fullOnly),
		row("1x10GbE-1xTRX@200e6", false, 200e6, 200e6, ch(0), 200e6, ch(0), 0, fullOnly),
		row("1x10GbE-2xTRX@100e6", false, 100e6, 100e6, ch(0, 1), 100e6, ch(0, 1), 0, everyTier),
		row("2x10GbE-2xRX@200e6", true, 200e6, 200e6, ch(0, 1), 0, nil, 0, fullOnly),
		row("2x10GbE-2xTX@200e6", true, 200e6, 0, nil, 200e6, ch(0, 1), 0, fullOnly),
		row("2x10GbE-2xTRX@200e6", true, 200e6, 200e6, ch(0, 1), 200e6, ch(0, 1), 0, everyTier),
	},
	{model: "x310_twinrx"}: {
		row("1x10GbE-3xRX@100e6", false, 100e6, 100e6, ch(0, 1, 2), 0, nil, 0, fullOnly),
		row("1x10GbE-4xRX@50e6", false, 50e6, 50e6, ch(0, 1, 2, 3), 0, nil, 0, fullOnly),
		row("2x10GbE-4xRX@100e6", true, 100e6, 100e6, ch(0, 1, 2, 3), 0, nil, 0, everyTier),
	},
	{model: "x410", variant: "CG_400"}: {
		row("1x100GbE-2xTRX@491.52e6", false, 491.52e6, 491.52e6, ch(0, 1), 491.52e6, ch(0, 1), 64, everyTier),
		row("1x100GbE-2xTX@491.52e6", false, 491.52e6, 0, nil, 491.52e6, ch(0, 1), 64, fullOnly),
		row("1x100GbE-2xRX@491.52e6", false, 491.52e6, 491.52e6, ch(0, 1), 0, nil, 64, fullOnly),
		knownIssue(
			row("2x100GbE-4xTRX@491.52e6", true, 491.52e6, 491.52e6, ch(0, 1, 2, 3), 491.52e6, ch(0, 1, 2, 3), 64, everyTier),
			"4-channel TRX at full rate over two 100GbE links drops samples on CG_400",
		),
		row("2x100GbE-4xTX@491.52e6", true, 491.52e6, 0, nil, 491.52e6, ch(0, 1, 2, 3), 64, fullOnly),
		row("2x100GbE-4xRX@491.52e6", true, 491.52e6, 491.52e6, ch(0, 1, 2, 3), 0, nil, 64, fullOnly),
	},
	{model: "x410", variant: "UC_200"}: {
		row("1x100GbE-3xTRX@250e6", false, 250e6, 250e6, ch(0, 1, 2), 250e6, ch(0, 1, 2), 64, everyTier),
		row("1x100GbE-4xTX@250e6", false, 250e6, 0, nil, 250e6, ch(0, 1, 2, 3), 64, everyTier),
		row("1x100GbE-4xRX@250e6", false, 250e6, 250e6, ch(0, 1, 2, 3), 0, nil, 64, everyTier),
	},
	{model: "x440", variant: "CG_400"}: {
		row("2x100GbE-6xRX@500e6", true, 500e6, 500e6, ch(0, 1, 2, 3, 4, 5), 0, nil, 0, everyTier),
		row("2x100GbE-6xTX@500e6", true, 500e6, 0, nil, 500e6, ch(0, 1, 2, 3, 4, 5), 0, everyTier),
		row("2x100GbE-6xTX@450e6", true, 450e6, 0, nil, 450e6, ch(0, 1, 2, 3, 4, 5), 0, everyTier),
		row("2x100GbE-4xTRX@500e6", true, 500e6, 500e6, ch(0, 1, 2, 3), 500e6, ch(0, 1, 2, 3), 0, everyTier),
		row("2x100GbE-8xTRX@250e6", true, 250e6, 250e6, ch(0, 1, 2, 3, 4, 5, 6, 7), 250e6, ch(0, 1, 2, 3, 4, 5, 6, 7), 0, everyTier),
	},
	{model: "x440", variant: "CG_1600"}: {
		row("2x100GbE-2xRX@1000e6", true, 1000e6, 1000e6, ch(0, 1), 0, nil, 0, everyTier),
		row("2x100GbE-2xTX@1000e6", true, 1000e6, 0, nil, 1000e6, ch(0, 1), 0, everyTier),
		row("2x100GbE-2xTRX@1000e6", true, 1000e6, 1000e6, ch(0, 1), 1000e6, ch(0, 1), 0, everyTier),
	},
}

func knownIssue(s Scenario, note string) Scenario {
	s.KnownIssue = note
	return s
}

// ScenariosFor returns the ordered capability matrix for a device model. The
// variant selects the FPGA image for models that have more than one and is
// ignored otherwise.
func ScenariosFor(model, variant string) ([]Scenario, error) {
	key := matrixKey{model: normalizeModel(model)}
	if vs, ok := imageVariants[key.model]; ok {
		key.variant = normalizeVariant(variant)
		if key.variant == "" {
			return nil, &ConfigurationError{
				Model:  model,
				Reason: fmt.Sprintf("image variant required (one of %s)", strings.Join(vs, ", ")),
			}
		}
	}
	rows, ok := matrices[key]
	if !ok {
		reason := "unknown model"
		if key.variant != "" {
			reason = "unknown image variant"
		}
		return nil, &ConfigurationError{Model: model, Variant: variant, Reason: reason}
	}
	out := make([]Scenario, len(rows))
	for i, s := range rows {
		out[i] = s.clone()
	}
	return out, nil
}

// Models lists every model with a capability matrix, sorted.
func Models() []string {
	seen := map[string]bool{}
	var models []string
	for k := range matrices {
		if !seen[k.model] {
			seen[k.model] = true
			models = append(models, k.model)
		}
	}
	sort.Strings(models)
	return models
}

// Variants lists the image variants of a model, or nil for single-image models.
func Variants(model string) []string {
	return append([]string(nil), imageVariants[normalizeModel(model)]...)
}
