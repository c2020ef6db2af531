// Package blockbuilder provides the minimal block-builder runtime-API shape
// (inherents -> extrinsics -> finalization) that drives the mode controller's
// hooks in the order spec.md §2 and §5 require, plus an in-process
// host.Runtime reference implementation used by the CLI and the conformance
// harness.
//
// Grounded in substrate/primitives/block-builder/src/lib.rs's ApplyExtrinsic
// / InherentExtrinsics / CheckInherents / finalize_block runtime-API surface,
// reduced to the shape this controller actually drives.
package blockbuilder

import (
	"fmt"

	"blockweight.dev/parachain/control"
	"blockweight.dev/parachain/digest"
	"blockweight.dev/parachain/host"
	"blockweight.dev/parachain/weight"
)

// Extrinsic is the minimal shape of something the pipeline can apply: its
// dispatch info, its encoded length, whether it is an inherent, and the
// actual weight it consumes once dispatched (the "observed" weight used by
// PostDispatch).
type Extrinsic struct {
	Info       host.DispatchInfo
	Length     uint32
	IsInherent bool
	// ActualWeight is what the extrinsic really costs once applied; it may
	// differ from Info.TotalWeight (the pre-dispatch worst case).
	ActualWeight weight.Weight
}

// Runtime is the in-process reference implementation of host.Runtime, backed
// by plain fields rather than any storage layer.
type Runtime struct {
	digestLog          *digest.Digest
	extrinsicIndex     uint32
	haveExtrinsicIndex bool
	inherentsApplied   bool
	consumed           weight.Weight
	classLimits        map[host.DispatchClass]host.ClassLimits
	targetBlockRate    uint32
}

// NewRuntime constructs a Runtime seeded with the given digest log and target
// block rate. classLimits may be nil (no class has an explicit MaxTotal).
func NewRuntime(d *digest.Digest, targetBlockRate uint32, classLimits map[host.DispatchClass]host.ClassLimits) *Runtime {
	if d == nil {
		d = digest.New()
	}
	if classLimits == nil {
		classLimits = map[host.DispatchClass]host.ClassLimits{}
	}
	return &Runtime{digestLog: d, classLimits: classLimits, targetBlockRate: targetBlockRate}
}

func (r *Runtime) Digest() digest.Log { return r.digestLog }

func (r *Runtime) ExtrinsicIndex() (uint32, bool) { return r.extrinsicIndex, r.haveExtrinsicIndex }

func (r *Runtime) InherentsApplied() bool { return r.inherentsApplied }

func (r *Runtime) ConsumedWeight() weight.Weight { return r.consumed }

func (r *Runtime) RegisterExtraWeight(w weight.Weight, _ host.DispatchClass) {
	r.consumed = r.consumed.Add(w)
}

func (r *Runtime) ClassLimits(class host.DispatchClass) host.ClassLimits {
	return r.classLimits[class]
}

func (r *Runtime) TargetBlockRate() uint32 { return r.targetBlockRate }

// StaticWeightInfo is a fixed host.WeightInfo, suitable for tests and the CLI
// where the refund constants are known ahead of time.
type StaticWeightInfo struct {
	MaxWeight     weight.Weight
	FullCore      weight.Weight
	StaysFraction weight.Weight
}

func (w StaticWeightInfo) TxExtensionMaxWeight() weight.Weight      { return w.MaxWeight }
func (w StaticWeightInfo) FullCoreWeight() weight.Weight            { return w.FullCore }
func (w StaticWeightInfo) StaysFractionOfCoreWeight() weight.Weight { return w.StaysFraction }

// ExtrinsicOutcome records what happened to one extrinsic in Trace.
type ExtrinsicOutcome struct {
	Index    int
	Rejected bool
	Err      error
	Refund   weight.Weight
	ModeAfter string
}

// Trace is the full per-block record the Pipeline produces: useful for
// debugging and for conformance fixtures, not part of the core invariants.
type Trace struct {
	PreInherentModeAfter string
	Outcomes             []ExtrinsicOutcome
	FinalMode            string
	UsedFullCore         bool
}

// Pipeline runs the full pre-inherent -> (inherents) -> (extrinsics) ->
// finalize sequence against a Controller and Runtime, in the strict order
// spec.md §2 and §5 require: no two hooks for different extrinsics ever
// interleave.
func Pipeline(rt *Runtime, ctrl *control.Controller, inherents, extrinsics []Extrinsic) Trace {
	ctrl.PreInherent(rt)
	modeAfterPreInherent, _ := modeString(ctrl, rt)
	trace := Trace{PreInherentModeAfter: modeAfterPreInherent}

	idx := 0
	apply := func(ex Extrinsic) ExtrinsicOutcome {
		rt.extrinsicIndex = uint32(idx)
		rt.haveExtrinsicIndex = true
		outcome := ExtrinsicOutcome{Index: idx}

		if err := ctrl.PreValidate(rt, ex.Info, ex.Length); err != nil {
			outcome.Rejected = true
			outcome.Err = err
			idx++
			return outcome
		}

		rt.consumed = rt.consumed.Add(ex.ActualWeight)
		refund := ctrl.PostDispatch(rt, ex.Info, ex.ActualWeight)
		outcome.Refund = refund
		modeAfter, _ := modeString(ctrl, rt)
		outcome.ModeAfter = modeAfter
		idx++
		return outcome
	}

	for _, in := range inherents {
		in.IsInherent = true
		trace.Outcomes = append(trace.Outcomes, apply(in))
	}
	rt.inherentsApplied = true
	for _, ex := range extrinsics {
		trace.Outcomes = append(trace.Outcomes, apply(ex))
	}

	finalMode, _ := modeString(ctrl, rt)
	trace.FinalMode = finalMode
	// UsedFullCore reflects the UseFullCore digest, the protocol's own
	// signal that MS actually transitioned into FullCore — not merely that
	// MaxWeight's ceiling equals Full, which also holds for any
	// first-in-core block before anything has happened.
	trace.UsedFullCore = digest.HasUseFullCore(rt.digestLog)
	return trace
}

func modeString(ctrl *control.Controller, rt *Runtime) (string, bool) {
	w := ctrl.MaxWeight(rt)
	return fmt.Sprintf("ref_time=%d proof_size=%d", w.RefTime, w.ProofSize), w == weight.Full
}
