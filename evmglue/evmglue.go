// Package evmglue adapts an embedded EVM interpreter's gas accounting into
// the ref_time/proof_size vocabulary the block-weight controller uses.
//
// Grounded in substrate/frame/revive/src/vm/evm.rs: the EVM interpreter
// itself is out of scope (spec.md §1), but a parachain that embeds one still
// needs to register what it spent against the host's weight ledger so the
// mode controller sees accurate consumption.
package evmglue

import "blockweight.dev/parachain/weight"

// GasSchedule converts EVM gas units into ref_time at a fixed rate. The rate
// is a deployment choice, not a consensus constant this package invents one
// value for; callers supply it explicitly.
type GasSchedule struct {
	// RefTimePerGas is the ref_time cost of one unit of EVM gas.
	RefTimePerGas uint64
	// ProofSizePerByte is the proof_size cost of one byte of returned/touched
	// state the interpreter reports.
	ProofSizePerByte uint64
}

// Trace is the minimal shape of an EVM execution result this package needs:
// gas actually used and the size of state the execution touched (storage
// reads/writes, code loaded), which contributes to proof_size.
type Trace struct {
	GasUsed      uint64
	TouchedBytes uint64
	Reverted     bool
}

// Charge converts an EVM execution Trace into a Weight under sched.
// A reverted execution still charges the gas it consumed before reverting:
// EVM gas accounting has already deducted it from the caller regardless of
// outcome.
func Charge(sched GasSchedule, tr Trace) weight.Weight {
	return weight.Weight{
		RefTime:   satMul(tr.GasUsed, sched.RefTimePerGas),
		ProofSize: satMul(tr.TouchedBytes, sched.ProofSizePerByte),
	}
}

func satMul(a, b uint64) uint64 {
	if a == 0 || b == 0 {
		return 0
	}
	p := a * b
	if p/a != b {
		return ^uint64(0)
	}
	return p
}
