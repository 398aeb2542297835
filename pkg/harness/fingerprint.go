package harness

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/n64emu/rspvu/pkg/vu"
)

// FingerprintLen is the byte length of a state fingerprint.
const FingerprintLen = 8

// Fingerprint hashes the full coprocessor context plus the scratchpad
// into a compact value. Two runs agree iff every observable bit agrees,
// which is exactly what cross-implementation vector checks need.
func Fingerprint(c *vu.Cop2, dmem []byte) [FingerprintLen]byte {
	h := fnv.New64a()
	h.Write(c.Snapshot())
	if len(dmem) >= vu.DmemSize {
		h.Write(dmem[:vu.DmemSize])
	}
	var fp [FingerprintLen]byte
	binary.BigEndian.PutUint64(fp[:], h.Sum64())
	return fp
}
