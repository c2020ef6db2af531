package blockbuilder_test

import (
	"strings"
	"testing"

	"blockweight.dev/parachain/blockbuilder"
	"blockweight.dev/parachain/control"
	"blockweight.dev/parachain/digest"
	"blockweight.dev/parachain/host"
	"blockweight.dev/parachain/modestore"
	"blockweight.dev/parachain/weight"
)

func newPipelineFixture(numberOfCores uint16, targetBlockRate uint32) (*blockbuilder.Runtime, *control.Controller) {
	d := digest.New()
	d.Append(digest.Item{Kind: digest.KindCoreInfo, CoreInfo: &digest.CoreInfo{NumberOfCores: numberOfCores}})
	d.Append(digest.Item{Kind: digest.KindBundleInfo, BundleInfo: &digest.BundleInfo{Index: 0}})
	rt := blockbuilder.NewRuntime(d, targetBlockRate, nil)
	wi := blockbuilder.StaticWeightInfo{
		MaxWeight:     weight.Weight{RefTime: 1000, ProofSize: 1000},
		FullCore:      weight.Weight{RefTime: 200, ProofSize: 200},
		StaysFraction: weight.Weight{RefTime: 50, ProofSize: 50},
	}
	ctrl := control.New(control.Config{}, modestore.New(), wi)
	return rt, ctrl
}

func TestPipeline_NoExtrinsics(t *testing.T) {
	rt, ctrl := newPipelineFixture(1, 4)
	trace := blockbuilder.Pipeline(rt, ctrl, nil, nil)
	if trace.UsedFullCore {
		t.Fatal("expected no full-core usage for an empty block")
	}
	if len(trace.Outcomes) != 0 {
		t.Fatalf("got %d outcomes, want 0", len(trace.Outcomes))
	}
}

func TestPipeline_AppliesInherentsBeforeExtrinsics(t *testing.T) {
	rt, ctrl := newPipelineFixture(1, 4)

	inherents := []blockbuilder.Extrinsic{
		{Info: host.DispatchInfo{Class: host.Mandatory}, ActualWeight: weight.Weight{RefTime: 10}},
	}
	extrinsics := []blockbuilder.Extrinsic{
		{Info: host.DispatchInfo{Class: host.Normal, TotalWeight: weight.Weight{RefTime: weight.MaxRefTimePerCore / 8}},
			ActualWeight: weight.Weight{RefTime: weight.MaxRefTimePerCore / 8}},
	}

	trace := blockbuilder.Pipeline(rt, ctrl, inherents, extrinsics)
	if len(trace.Outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2 (1 inherent + 1 extrinsic)", len(trace.Outcomes))
	}
	if trace.Outcomes[0].Index != 0 || trace.Outcomes[1].Index != 1 {
		t.Fatalf("outcomes out of order: %+v", trace.Outcomes)
	}
	if trace.Outcomes[1].Rejected {
		t.Fatalf("in-budget extrinsic unexpectedly rejected: %v", trace.Outcomes[1].Err)
	}
}

func TestPipeline_OverBudgetExtrinsicEventuallyUsesFullCore(t *testing.T) {
	rt, ctrl := newPipelineFixture(1, 4)

	extrinsics := []blockbuilder.Extrinsic{
		{
			Info:         host.DispatchInfo{Class: host.Normal, TotalWeight: weight.Full},
			ActualWeight: weight.Full,
		},
	}
	trace := blockbuilder.Pipeline(rt, ctrl, nil, extrinsics)
	if !trace.UsedFullCore {
		t.Fatalf("got trace %+v, want UsedFullCore=true", trace)
	}
	if !strings.Contains(trace.FinalMode, "ref_time") {
		t.Fatalf("unexpected FinalMode format: %q", trace.FinalMode)
	}
}
