// Package host declares the boundary contracts the mode controller requires
// from the surrounding runtime (spec §6). Consumers implement Runtime and
// WeightInfo against their own storage and weight database; the controller
// never depends on a concrete runtime.
package host

import (
	"blockweight.dev/parachain/digest"
	"blockweight.dev/parachain/weight"
)

// DispatchClass is the coarse category of an extrinsic.
type DispatchClass int

const (
	Normal DispatchClass = iota
	Operational
	Mandatory
)

func (c DispatchClass) String() string {
	switch c {
	case Normal:
		return "Normal"
	case Operational:
		return "Operational"
	case Mandatory:
		return "Mandatory"
	default:
		return "Unknown"
	}
}

// DispatchInfo announces an extrinsic's class and its pre-dispatch worst-case
// weight.
type DispatchInfo struct {
	Class       DispatchClass
	TotalWeight weight.Weight
}

// ClassLimits carries the class-level weight ceilings from BlockWeights.
type ClassLimits struct {
	// MaxTotal is nil when the class has no explicit ceiling configured.
	MaxTotal  *weight.Weight
	BaseBlock weight.Weight
}

// WeightInfo supplies the refund constants used by PostDispatch: the
// extension's own declared worst-case weight, and the cheaper weights of the
// two branches it can resolve to.
type WeightInfo interface {
	// TxExtensionMaxWeight is the declared worst-case weight of the
	// extension itself (W_max).
	TxExtensionMaxWeight() weight.Weight
	// FullCoreWeight is the weight charged when the extension resolves to
	// FullCore (W_full).
	FullCoreWeight() weight.Weight
	// StaysFractionOfCoreWeight is the weight charged when the extension
	// stays in FractionOfCore (W_frac).
	StaysFractionOfCoreWeight() weight.Weight
}

// Runtime is the full set of capabilities the controller requires from the
// host at hook-invocation time.
type Runtime interface {
	// Digest returns the ordered log of digest items for the block being
	// produced.
	Digest() digest.Log
	// ExtrinsicIndex returns the current extrinsic index; ok is false before
	// any extrinsic has been applied.
	ExtrinsicIndex() (idx uint32, ok bool)
	// InherentsApplied reports whether the inherent phase has completed.
	InherentsApplied() bool
	// ConsumedWeight returns the running total of weight consumed so far in
	// the block.
	ConsumedWeight() weight.Weight
	// RegisterExtraWeight force-accounts w against class, independent of any
	// extrinsic's own declared weight.
	RegisterExtraWeight(w weight.Weight, class DispatchClass)
	// ClassLimits returns the configured BlockWeights limits for class.
	ClassLimits(class DispatchClass) ClassLimits
	// TargetBlockRate returns the desired number of blocks per relay-slot
	// period (TargetBlockRate::get()).
	TargetBlockRate() uint32
}
