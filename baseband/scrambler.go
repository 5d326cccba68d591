package baseband

import "sync"

const maxFrameBits = 64800

// prbs is the 1 + x^14 + x^15 sequence, restarted at every BBFRAME from
// 100101010000000.
var prbs = sync.OnceValue(func() []uint8 {
	seq := make([]uint8, maxFrameBits)
	reg := uint16(0b100101010000000) // bit 14 holds stage 1, bit 0 stage 15
	for i := range seq {
		out := uint8(reg>>1^reg) & 1
		seq[i] = out
		reg = reg>>1 | uint16(out)<<14
	}
	return seq
})

// Scramble XORs bits with the BB scrambling sequence. It is its own inverse.
func Scramble(bits []uint8) {
	seq := prbs()
	for i := range bits {
		bits[i] ^= seq[i]
	}
}
