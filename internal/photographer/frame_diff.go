package photographer

import "hash/crc32"

// frameDiffer speeds up the mandatory byte-for-byte comparison (spec.md
// §4.5 step 6) with a CRC32 pre-check: a CRC mismatch proves the frames
// differ without touching every byte, while a CRC match still falls
// through to ImageBuffer.EqualSamples for the exact comparison the spec
// requires. Grounded on the teacher's frame_diff.go, generalized from "CRC
// match means identical" to "CRC match means probably identical, verify."
type frameDiffer struct {
	hasLastHash bool
	lastHash    uint32
}

func newFrameDiffer() *frameDiffer {
	return &frameDiffer{}
}

// likelyChanged reports whether pix's CRC32 differs from the last frame
// checked, updating the stored hash as a side effect.
func (d *frameDiffer) likelyChanged(pix []byte) bool {
	h := crc32.ChecksumIEEE(pix)
	changed := !d.hasLastHash || h != d.lastHash
	d.hasLastHash = true
	d.lastHash = h
	return changed
}
