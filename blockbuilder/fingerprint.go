package blockbuilder

import (
	"encoding/binary"

	"blockweight.dev/parachain/digest"
	"golang.org/x/crypto/sha3"
)

// DigestFingerprint hashes a digest log's items into a single 32-byte
// identifier, letting conformance fixtures and debug output key on a
// block's digest contents without serializing the whole log.
func DigestFingerprint(log digest.Log) [32]byte {
	h := sha3.New256()
	if log == nil {
		var zero [32]byte
		_, _ = h.Write(nil)
		copy(zero[:], h.Sum(nil))
		return zero
	}
	var buf [8]byte
	for _, it := range log.Items() {
		_, _ = h.Write([]byte{byte(it.Kind)})
		switch it.Kind {
		case digest.KindCoreInfo:
			if it.CoreInfo != nil {
				binary.BigEndian.PutUint16(buf[:2], it.CoreInfo.NumberOfCores)
				_, _ = h.Write(buf[:2])
				_, _ = h.Write([]byte{it.CoreInfo.Selector, it.CoreInfo.ClaimQueueOffset})
			}
		case digest.KindBundleInfo:
			if it.BundleInfo != nil {
				binary.BigEndian.PutUint32(buf[:4], it.BundleInfo.Index)
				_, _ = h.Write(buf[:4])
			}
		}
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
