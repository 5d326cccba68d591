// Package interleave implements the DVB-S2 bit interleaver placed between
// the LDPC encoder and the 8PSK mapper.
package interleave

import "github.com/iottrends-tech/dvb-s2-SDR/modcod"

// Interleaver is a block interleaver: bits are written column by column and
// read row by row. QPSK uses the identity.
type Interleaver struct {
	n    int
	cols int
	rows int
	// perm[i] is the FEC frame position of the i-th interleaved bit.
	perm []int
}

func New(p modcod.Profile) *Interleaver {
	n := p.FECFrameBits()
	it := &Interleaver{n: n, cols: 1, rows: n}
	if p.Modulation != modcod.PSK8 {
		return it
	}
	it.cols = 3
	it.rows = n / 3
	// Rate 3/5 writes the columns in reverse order.
	order := []int{0, 1, 2}
	if p.Rate == modcod.Rate3_5 {
		order = []int{2, 1, 0}
	}
	it.perm = make([]int, n)
	for r := 0; r < it.rows; r++ {
		for c := 0; c < it.cols; c++ {
			it.perm[r*it.cols+c] = order[c]*it.rows + r
		}
	}
	return it
}

func (it *Interleaver) Identity() bool { return it.perm == nil }

// Interleave writes the interleaved FEC frame src into dst.
func Interleave[T any](it *Interleaver, dst, src []T) {
	if it.perm == nil {
		copy(dst[:it.n], src[:it.n])
		return
	}
	for i, j := range it.perm {
		dst[i] = src[j]
	}
}

// Deinterleave is the inverse of Interleave. It works on hard bits and on
// soft values alike.
func Deinterleave[T any](it *Interleaver, dst, src []T) {
	if it.perm == nil {
		copy(dst[:it.n], src[:it.n])
		return
	}
	for i, j := range it.perm {
		dst[j] = src[i]
	}
}
