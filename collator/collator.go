// Package collator provides a thin collation-assembly boundary: it wires a
// control.Controller and a blockbuilder.Pipeline run into the minimal
// CollationResult message a relay-chain validator needs, without touching
// the network announce path or the cross-chain message envelope (both out of
// scope per spec.md §1 Non-goals).
//
// Grounded in cumulus/client/collator/src/service.rs's CollatorService:
// fetch_collation_info / build_multi_block_collation, reduced to the single
// piece of information that subsystem derives which the block-weight
// controller actually influences — whether this block claimed the whole
// core.
package collator

import (
	"blockweight.dev/parachain/blockbuilder"
	"blockweight.dev/parachain/control"
	"blockweight.dev/parachain/digest"
)

// CollationResult is the minimal message this boundary produces: enough for
// a validator-facing announce path to decide whether to expect further
// blocks on this core.
type CollationResult struct {
	UsedFullCore bool
	BundleIndex  uint32
	Trace        blockbuilder.Trace
}

// BuildCollation runs rt/ctrl through the given inherents and extrinsics and
// reports whether the resulting block claimed the full core. A parachain
// node's announce path (out of scope here) uses UsedFullCore to decide
// whether to expect the relay chain to schedule another block on the same
// core.
func BuildCollation(rt *blockbuilder.Runtime, ctrl *control.Controller, inherents, extrinsics []blockbuilder.Extrinsic) CollationResult {
	trace := blockbuilder.Pipeline(rt, ctrl, inherents, extrinsics)

	bundleIndex := uint32(0)
	if bi, ok := digest.FindBundleInfo(rt.Digest()); ok {
		bundleIndex = bi.Index
	}

	return CollationResult{
		UsedFullCore: trace.UsedFullCore,
		BundleIndex:  bundleIndex,
		Trace:        trace,
	}
}
