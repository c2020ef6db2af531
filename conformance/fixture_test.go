package conformance_test

import (
	"path/filepath"
	"testing"

	"blockweight.dev/parachain/conformance"
)

// Scenario 6: announced-over-budget, first block in its core, within the
// consideration window -> PotentialFullCore, then FullCore once observed
// consumption exceeds the recorded target.
func TestReplay_PromotedOverrunResolvesToFullCore(t *testing.T) {
	f := conformance.Fixture{
		Name:            "promoted-overrun-resolves-full-core",
		NumberOfCores:   1,
		HaveBundleInfo:  true,
		BundleIndex:     0,
		TargetBlockRate: 4,
		Extrinsics: []conformance.FixtureExtrinsic{
			{
				Class:                 "Normal",
				TotalWeightRefTime:    2_000_000_000_000, // 2s, well over the 0.5s/4-block fraction
				ActualWeightRefTime:   2_000_000_000_000,
			},
		},
		ExpectedUsedFullCore: true,
	}
	ok, trace := conformance.Check(f)
	if !ok {
		t.Fatalf("mismatch: trace=%+v", trace)
	}
}

// Scenario 7: announced-over-budget, NOT the first block in its core ->
// rejected outright, never reaches full core.
func TestReplay_NotFirstInCoreOverrunRejectsAndStaysFractional(t *testing.T) {
	f := conformance.Fixture{
		Name:            "not-first-in-core-overrun-rejects",
		NumberOfCores:   1,
		HaveBundleInfo:  true,
		BundleIndex:     1,
		TargetBlockRate: 4,
		Extrinsics: []conformance.FixtureExtrinsic{
			{Class: "Normal", TotalWeightRefTime: 2_000_000_000_000},
		},
		ExpectedUsedFullCore: false,
	}
	ok, trace := conformance.Check(f)
	if !ok {
		t.Fatalf("mismatch: trace=%+v", trace)
	}
	if len(trace.Outcomes) != 1 || !trace.Outcomes[0].Rejected {
		t.Fatalf("expected the single extrinsic to be rejected, got %+v", trace.Outcomes)
	}
}

// Scenario 8: consumption already exceeds target before any inherent runs
// -> pre_inherent forces FullCore, one UseFullCore deposited.
func TestReplay_InherentOverrunForcesFullCore(t *testing.T) {
	f := conformance.Fixture{
		Name:                 "inherent-overrun-forces-full-core",
		NumberOfCores:        1,
		HaveBundleInfo:       true,
		BundleIndex:          0,
		TargetBlockRate:      4,
		PreConsumedRefTime:   2_000_000_000_000,
		ExpectedUsedFullCore: true,
	}
	ok, trace := conformance.Check(f)
	if !ok {
		t.Fatalf("mismatch: trace=%+v", trace)
	}
	if trace.PreInherentModeAfter != "ref_time=2000000000000 proof_size=5242880" {
		t.Fatalf("got PreInherentModeAfter=%q, want Full weight already reflected after pre_inherent", trace.PreInherentModeAfter)
	}
}

func TestStore_PutGetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.db")
	s, err := conformance.OpenStore(path)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	f := conformance.Fixture{Name: "round-trip", NumberOfCores: 2, TargetBlockRate: 1}
	if err := s.Put(f); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := s.Get("round-trip")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.NumberOfCores != 2 || got.TargetBlockRate != 1 {
		t.Fatalf("got %+v, want round-tripped fixture", got)
	}

	if _, ok, _ := s.Get("missing"); ok {
		t.Fatal("expected no fixture under an unused name")
	}

	all, err := s.All()
	if err != nil || len(all) != 1 {
		t.Fatalf("All: got %d fixtures, err=%v, want 1", len(all), err)
	}
}
