// Package conformance replays block-weight controller scenarios from a
// golden fixture set and checks the resulting trace against a recorded
// expectation, the same way the consensus fixture vectors in the node's
// conformance suite replay transactions against recorded outcomes.
package conformance

import (
	"blockweight.dev/parachain/blockbuilder"
	"blockweight.dev/parachain/control"
	"blockweight.dev/parachain/digest"
	"blockweight.dev/parachain/host"
	"blockweight.dev/parachain/modestore"
	"blockweight.dev/parachain/weight"
)

// FixtureExtrinsic is the JSON-serializable shape of one extrinsic within a
// Fixture.
type FixtureExtrinsic struct {
	Class                 string `json:"class"`
	TotalWeightRefTime    uint64 `json:"total_weight_ref_time"`
	TotalWeightProofSize  uint64 `json:"total_weight_proof_size"`
	Length                uint32 `json:"length"`
	IsInherent            bool   `json:"is_inherent"`
	ActualWeightRefTime   uint64 `json:"actual_weight_ref_time"`
	ActualWeightProofSize uint64 `json:"actual_weight_proof_size"`
}

// Fixture is a complete, self-contained conformance vector: the digest
// context a block starts with, the extrinsics it applies, and the trace a
// correct controller must produce.
type Fixture struct {
	Name             string `json:"name"`
	NumberOfCores    uint16 `json:"number_of_cores"`
	HaveBundleInfo   bool   `json:"have_bundle_info"`
	BundleIndex      uint32 `json:"bundle_index"`
	TargetBlockRate  uint32 `json:"target_block_rate"`
	OnlyOperational  bool   `json:"only_operational"`

	// PreConsumed seeds the block's consumed weight before pre_inherent runs,
	// modeling weight spent by on_initialize hooks outside this pipeline —
	// the only way an inherent-overrun scenario (consumption exceeding
	// target before any inherent applies) can arise.
	PreConsumedRefTime   uint64 `json:"pre_consumed_ref_time"`
	PreConsumedProofSize uint64 `json:"pre_consumed_proof_size"`

	Inherents  []FixtureExtrinsic `json:"inherents"`
	Extrinsics []FixtureExtrinsic `json:"extrinsics"`

	ExpectedFinalMode    string `json:"expected_final_mode"`
	ExpectedUsedFullCore bool   `json:"expected_used_full_core"`
}

func classOf(s string) host.DispatchClass {
	switch s {
	case "Operational":
		return host.Operational
	case "Mandatory":
		return host.Mandatory
	default:
		return host.Normal
	}
}

func toExtrinsic(fe FixtureExtrinsic) blockbuilder.Extrinsic {
	return blockbuilder.Extrinsic{
		Info: host.DispatchInfo{
			Class:       classOf(fe.Class),
			TotalWeight: weight.Weight{RefTime: fe.TotalWeightRefTime, ProofSize: fe.TotalWeightProofSize},
		},
		Length:     fe.Length,
		IsInherent: fe.IsInherent,
		ActualWeight: weight.Weight{
			RefTime:   fe.ActualWeightRefTime,
			ProofSize: fe.ActualWeightProofSize,
		},
	}
}

// Replay builds a fresh Runtime and Controller from f and drives them
// through f's inherents and extrinsics, returning the resulting trace.
func Replay(f Fixture) blockbuilder.Trace {
	d := digest.New()
	d.Append(digest.Item{Kind: digest.KindCoreInfo, CoreInfo: &digest.CoreInfo{NumberOfCores: f.NumberOfCores}})
	if f.HaveBundleInfo {
		d.Append(digest.Item{Kind: digest.KindBundleInfo, BundleInfo: &digest.BundleInfo{Index: f.BundleIndex}})
	}

	rt := blockbuilder.NewRuntime(d, f.TargetBlockRate, nil)
	if f.PreConsumedRefTime != 0 || f.PreConsumedProofSize != 0 {
		rt.RegisterExtraWeight(weight.Weight{RefTime: f.PreConsumedRefTime, ProofSize: f.PreConsumedProofSize}, host.Mandatory)
	}
	wi := blockbuilder.StaticWeightInfo{
		MaxWeight: weight.Full,
		FullCore:  weight.Weight{RefTime: weight.RefTimePerSecond / 10},
	}
	ctrl := control.New(control.Config{OnlyOperational: f.OnlyOperational}, modestore.New(), wi)

	inherents := make([]blockbuilder.Extrinsic, 0, len(f.Inherents))
	for _, fe := range f.Inherents {
		inherents = append(inherents, toExtrinsic(fe))
	}
	extrinsics := make([]blockbuilder.Extrinsic, 0, len(f.Extrinsics))
	for _, fe := range f.Extrinsics {
		extrinsics = append(extrinsics, toExtrinsic(fe))
	}

	return blockbuilder.Pipeline(rt, ctrl, inherents, extrinsics)
}

// Check replays f and reports whether the trace matches its recorded
// expectation. An empty ExpectedFinalMode means the fixture records no final
// mode, and only UsedFullCore is compared.
func Check(f Fixture) (ok bool, trace blockbuilder.Trace) {
	trace = Replay(f)
	ok = (f.ExpectedFinalMode == "" || trace.FinalMode == f.ExpectedFinalMode) &&
		trace.UsedFullCore == f.ExpectedUsedFullCore
	return ok, trace
}
