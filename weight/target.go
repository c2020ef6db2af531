package weight

import "blockweight.dev/parachain/digest"

// TargetBlockWeight computes the fractional per-block weight budget from the
// current block's digest and the desired number of blocks per relay-slot
// period. Absence of CoreInfo, a zero core count, or a zero target-block
// count are all treated as "cannot compute a fraction", conservatively
// returning Full rather than risking a division error or an under-sized
// budget from missing information.
//
// This is a pure function of (digest, targetBlocks): equal inputs always
// produce equal outputs (P4).
func TargetBlockWeight(log digest.Log, targetBlocks uint32) Weight {
	core, ok := digest.FindCoreInfo(log)
	if !ok {
		return Full
	}
	n := uint64(core.NumberOfCores)
	if n == 0 || targetBlocks == 0 {
		return Full
	}

	totalRefTime := satMul(n, MaxRefTimePerCore)
	if totalRefTime > maxBlockRefTimeCeiling {
		totalRefTime = maxBlockRefTimeCeiling
	}
	refTimePerBlock := satDiv(totalRefTime, uint64(targetBlocks))
	if refTimePerBlock > MaxRefTimePerCore {
		refTimePerBlock = MaxRefTimePerCore
	}

	totalPov := satMul(n, MaxPovSize)
	povPerBlock := satDiv(totalPov, uint64(targetBlocks))
	if povPerBlock > MaxPovSize {
		povPerBlock = MaxPovSize
	}

	return Weight{RefTime: refTimePerBlock, ProofSize: povPerBlock}
}
