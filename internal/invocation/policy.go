package invocation

import (
	"strings"
)

// StreamPolicy holds streamer settings forced on particular hardware images.
type StreamPolicy struct {
	MultiStreamer bool
	// Startup delays in seconds. They give the I/O path time to settle
	// before streaming starts.
	TxDelayS float64
	RxDelayS float64
}

type policyKey struct {
	model   string
	variant string
}

// streamPolicies is keyed by model and FPGA image. A key with an empty
// variant applies to every image of that model without its own entry; the
// matrix always names an image for x410/x440, so those entries only serve
// Build callers that pass an image the table does not list.
var streamPolicies = map[policyKey]StreamPolicy{
	{"x410", ""}:        {MultiStreamer: true},
	{"x410", "UC_200"}:  {MultiStreamer: true, TxDelayS: 1.5, RxDelayS: 0.5},
	{"x410", "CG_400"}:  {MultiStreamer: true, TxDelayS: 2, RxDelayS: 2},
	{"x440", ""}:        {MultiStreamer: true},
	{"x440", "CG_400"}:  {MultiStreamer: true, TxDelayS: 2, RxDelayS: 2},
	{"x440", "CG_1600"}: {MultiStreamer: true, TxDelayS: 2, RxDelayS: 2},
}

// PolicyFor returns the stream policy for a model and image. Models without
// an entry get the zero policy.
func PolicyFor(model, variant string) StreamPolicy {
	m := strings.ToLower(strings.TrimSpace(model))
	v := strings.ToUpper(strings.TrimSpace(variant))
	if p, ok := streamPolicies[policyKey{m, v}]; ok {
		return p
	}
	return streamPolicies[policyKey{m, ""}]
}

func (p StreamPolicy) apply(inv *Invocation) {
	if !p.MultiStreamer {
		return
	}
	inv.Set("multi_streamer", "1")
	if p.TxDelayS > 0 {
		inv.Set("tx_delay", formatFloat(p.TxDelayS))
	}
	if p.RxDelayS > 0 {
		inv.Set("rx_delay", formatFloat(p.RxDelayS))
	}
}
