// Package bch implements the outer BCH code of DVB-S2: a systematic,
// shortened binary BCH code correcting up to t bit errors per FECFRAME.
//
// Bits are carried one per byte (0 or 1). The first message bit is the
// highest degree coefficient, parity follows the message, most significant
// parity bit first.
package bch

import (
	"errors"
	"fmt"
	"sync"

	"github.com/iottrends-tech/dvb-s2-SDR/modcod"
)

var ErrUncorrectable = errors.New("bch: uncorrectable frame")

type Code struct {
	N, K, T int
	f       *field
	deg     int
	words   int
	gen     []uint64 // generator polynomial minus its leading term
	topMask uint64
}

type codeKey struct {
	frame   modcod.FrameSize
	n, k, t int
}

var (
	codesMu sync.Mutex
	codes   = map[codeKey]*Code{}
)

// ForProfile returns the BCH code of a modcod profile.
func ForProfile(p modcod.Profile) (*Code, error) {
	return New(p.Frame, p.Kbch(), p.Nbch(), p.BCHErrors())
}

// New returns the (n, k) code correcting t errors for the frame size. Codes
// are immutable and shared.
func New(frame modcod.FrameSize, k, n, t int) (*Code, error) {
	key := codeKey{frame, n, k, t}
	codesMu.Lock()
	defer codesMu.Unlock()
	if c, ok := codes[key]; ok {
		return c, nil
	}

	var polys []uint32
	var m int
	switch frame {
	case modcod.Normal:
		polys, m = normalPolys, 16
	case modcod.Short:
		polys, m = shortPolys, 14
	default:
		return nil, modcod.Invalid("frame_size", int(frame), "no BCH tables")
	}
	if t < 1 || t > len(polys) {
		return nil, modcod.Invalid("bch_t", t, fmt.Sprintf("must be in [1, %d]", len(polys)))
	}
	if n-k != m*t {
		return nil, modcod.Invalid("bch_n", n, fmt.Sprintf("n-k=%d, want %d", n-k, m*t))
	}
	if n > 1<<m-1 || k <= 0 {
		return nil, modcod.Invalid("bch_n", n, "outside the code length")
	}

	g := []uint8{1}
	for _, p := range polys[:t] {
		g = polyMul(g, p, m)
	}
	deg := len(g) - 1

	c := &Code{
		N:     n,
		K:     k,
		T:     t,
		f:     getField(m, polys[0]),
		deg:   deg,
		words: (deg + 63) / 64,
	}
	c.gen = make([]uint64, c.words)
	for i := 0; i < deg; i++ {
		if g[i] != 0 {
			c.gen[i/64] |= 1 << (i % 64)
		}
	}
	if r := deg % 64; r != 0 {
		c.topMask = 1<<r - 1
	} else {
		c.topMask = ^uint64(0)
	}
	codes[key] = c
	return c, nil
}

// polyMul multiplies a (coefficients low to high) by the degree m
// polynomial p over GF(2).
func polyMul(a []uint8, p uint32, m int) []uint8 {
	out := make([]uint8, len(a)+m)
	for i := 0; i <= m; i++ {
		if p>>i&1 == 0 {
			continue
		}
		for j, v := range a {
			out[i+j] ^= v
		}
	}
	return out
}

// Generator returns the generator polynomial coefficients, low to high.
func (c *Code) Generator() []uint8 {
	g := make([]uint8, c.deg+1)
	for i := 0; i < c.deg; i++ {
		g[i] = uint8(c.gen[i/64] >> (i % 64) & 1)
	}
	g[c.deg] = 1
	return g
}

// Encode writes msg followed by its parity into dst.
func (c *Code) Encode(dst, msg []uint8) error {
	if len(msg) != c.K {
		return fmt.Errorf("bch: message has %d bits, want %d", len(msg), c.K)
	}
	if len(dst) < c.N {
		return fmt.Errorf("bch: output has room for %d bits, want %d", len(dst), c.N)
	}

	reg := make([]uint64, c.words)
	top := c.deg - 1
	for _, b := range msg {
		fb := uint64(b&1) ^ reg[top/64]>>(top%64)&1
		for i := c.words - 1; i > 0; i-- {
			reg[i] = reg[i]<<1 | reg[i-1]>>63
		}
		reg[0] <<= 1
		reg[c.words-1] &= c.topMask
		if fb != 0 {
			for i := range reg {
				reg[i] ^= c.gen[i]
			}
		}
	}

	copy(dst, msg)
	for i := 0; i < c.deg; i++ {
		bit := c.deg - 1 - i
		dst[c.K+i] = uint8(reg[bit/64] >> (bit % 64) & 1)
	}
	return nil
}

// Decode corrects cw in place and returns the number of bits flipped. When
// the frame holds more errors than the code can correct cw is left untouched
// and ErrUncorrectable is returned.
func (c *Code) Decode(cw []uint8) (int, error) {
	if len(cw) != c.N {
		return 0, fmt.Errorf("bch: codeword has %d bits, want %d", len(cw), c.N)
	}
	f := c.f
	syn := make([]uint32, 2*c.T+1)
	for b, v := range cw {
		if v&1 == 0 {
			continue
		}
		p := c.N - 1 - b
		for j := 1; j < 2*c.T; j += 2 {
			syn[j] ^= f.pow(j * p)
		}
	}
	clean := true
	for j := 1; j < 2*c.T; j += 2 {
		if syn[j] != 0 {
			clean = false
			break
		}
	}
	if clean {
		return 0, nil
	}
	for j := 2; j <= 2*c.T; j += 2 {
		syn[j] = f.mul(syn[j/2], syn[j/2])
	}

	lambda, l := c.berlekampMassey(syn)
	if l > c.T {
		return 0, ErrUncorrectable
	}
	roots := c.chien(lambda[:l+1])
	if len(roots) != l {
		return 0, ErrUncorrectable
	}
	for _, p := range roots {
		cw[c.N-1-p] ^= 1
	}
	return l, nil
}

// berlekampMassey returns the error locator polynomial and its degree.
func (c *Code) berlekampMassey(syn []uint32) ([]uint32, int) {
	f := c.f
	size := 2*c.T + 2
	lambda := make([]uint32, size)
	prev := make([]uint32, size)
	tmp := make([]uint32, size)
	lambda[0], prev[0] = 1, 1
	l, shift := 0, 1
	last := uint32(1)

	for r := 0; r < 2*c.T; r++ {
		d := syn[r+1]
		for i := 1; i <= l; i++ {
			d ^= f.mul(lambda[i], syn[r+1-i])
		}
		if d == 0 {
			shift++
			continue
		}
		coef := f.div(d, last)
		if 2*l <= r {
			copy(tmp, lambda)
			for i := 0; i+shift < size; i++ {
				if prev[i] != 0 {
					lambda[i+shift] ^= f.mul(coef, prev[i])
				}
			}
			l = r + 1 - l
			prev, tmp = tmp, prev
			last = d
			shift = 1
		} else {
			for i := 0; i+shift < size; i++ {
				if prev[i] != 0 {
					lambda[i+shift] ^= f.mul(coef, prev[i])
				}
			}
			shift++
		}
	}
	return lambda, l
}

// chien returns the error positions (as powers of x) inside the shortened
// code.
func (c *Code) chien(lambda []uint32) []int {
	f := c.f
	terms := make([]uint32, len(lambda))
	copy(terms, lambda)
	step := make([]uint32, len(lambda))
	for i := range step {
		step[i] = f.pow(f.order - i%f.order)
	}
	var roots []int
	for p := 0; p < c.N; p++ {
		var v uint32
		for _, t := range terms {
			v ^= t
		}
		if v == 0 {
			roots = append(roots, p)
			if len(roots) == len(lambda)-1 {
				break
			}
		}
		for i := 1; i < len(terms); i++ {
			terms[i] = f.mul(terms[i], step[i])
		}
	}
	return roots
}
