package plframe

import "sync"

// MaxGoldCode is the largest scrambling sequence index n.
const MaxGoldCode = 1<<18 - 2

// Rotations indexed by the scrambling sequence value R: multiply by j^R.
var rotations = [4]complex64{1, 1i, -1, -1i}

type goldKey struct {
	n, length int
}

var (
	goldMu    sync.Mutex
	goldCache = map[goldKey][]uint8{}
)

// goldSequence returns the first length values of complex scrambling
// sequence n. Sequences are cached and must not be modified.
func goldSequence(n, length int) []uint8 {
	key := goldKey{n, length}
	goldMu.Lock()
	defer goldMu.Unlock()
	if seq, ok := goldCache[key]; ok {
		return seq
	}

	x, y := uint32(1), uint32(0x3FFFF)
	for i := 0; i < n; i++ {
		fb := (x ^ x>>7) & 1
		x = x>>1 | fb<<17
	}
	seq := make([]uint8, length)
	for i := range seq {
		fbx := (x ^ x>>7) & 1
		fby := (y ^ y>>5 ^ y>>7 ^ y>>10) & 1
		zx := (x>>4 ^ x>>6 ^ x>>15) & 1
		zy := (y>>5 ^ y>>6 ^ y>>8 ^ y>>9 ^ y>>10 ^ y>>11 ^ y>>12 ^ y>>13 ^ y>>14 ^ y>>15) & 1
		seq[i] = uint8((x^y)&1 | (zx^zy)<<1)
		x = x>>1 | fbx<<17
		y = y>>1 | fby<<17
	}
	goldCache[key] = seq
	return seq
}
