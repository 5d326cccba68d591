// Package constellation maps bits to QPSK/8PSK symbols and computes
// max-log LLRs for received symbols.
package constellation

import (
	"math"

	"github.com/iottrends-tech/dvb-s2-SDR/modcod"
)

// MaxLLR bounds demapper output.
const MaxLLR = 32

var (
	qpskPoints [4]complex64
	psk8Points [8]complex64
)

func init() {
	s := float32(math.Sqrt2 / 2)
	qpskPoints = [4]complex64{complex(s, s), complex(s, -s), complex(-s, s), complex(-s, -s)}
	// Index is b0<<2 | b1<<1 | b2.
	phases := [8]float64{1, 0, 4, 5, 2, 7, 3, 6}
	for i, ph := range phases {
		a := ph * math.Pi / 4
		psk8Points[i] = complex(float32(math.Cos(a)), float32(math.Sin(a)))
	}
}

type Constellation struct {
	Modulation modcod.Modulation
	Bits       int
	Points     []complex64
}

func New(m modcod.Modulation) *Constellation {
	c := &Constellation{Modulation: m, Bits: m.BitsPerSymbol()}
	if m == modcod.PSK8 {
		c.Points = psk8Points[:]
	} else {
		c.Points = qpskPoints[:]
	}
	return c
}

// Map converts groups of Bits bits, first bit most significant, into
// symbols. len(bits) must be len(dst)*Bits.
func (c *Constellation) Map(dst []complex64, bits []uint8) {
	for i := range dst {
		idx := 0
		for j := 0; j < c.Bits; j++ {
			idx = idx<<1 | int(bits[i*c.Bits+j]&1)
		}
		dst[i] = c.Points[idx]
	}
}

// Nearest returns the index and position of the closest point.
func (c *Constellation) Nearest(y complex64) (int, complex64) {
	best, bestD := 0, float32(math.MaxFloat32)
	for i, s := range c.Points {
		d := sqDist(y, s)
		if d < bestD {
			best, bestD = i, d
		}
	}
	return best, c.Points[best]
}

func sqDist(a, b complex64) float32 {
	dr, di := real(a)-real(b), imag(a)-imag(b)
	return dr*dr + di*di
}

// Demap writes Bits LLRs per symbol into dst. noiseVar is the complex noise
// variance E|n|^2 of unit energy symbols. Positive LLRs favour bit 0.
func (c *Constellation) Demap(dst []float32, symbols []complex64, noiseVar float32) {
	if noiseVar <= 0 || math.IsNaN(float64(noiseVar)) {
		noiseVar = 1e-4
	}
	inv := 1 / noiseVar
	var dist [8]float32
	for i, y := range symbols {
		for k, s := range c.Points {
			dist[k] = sqDist(y, s)
		}
		for j := 0; j < c.Bits; j++ {
			shift := c.Bits - 1 - j
			min0, min1 := float32(math.MaxFloat32), float32(math.MaxFloat32)
			for k := range c.Points {
				if k>>shift&1 == 0 {
					min0 = min(min0, dist[k])
				} else {
					min1 = min(min1, dist[k])
				}
			}
			llr := (min1 - min0) * inv
			if llr > MaxLLR {
				llr = MaxLLR
			} else if llr < -MaxLLR {
				llr = -MaxLLR
			}
			dst[i*c.Bits+j] = llr
		}
	}
}

// HardDecision writes the bits of the nearest point for each symbol.
func (c *Constellation) HardDecision(dst []uint8, symbols []complex64) {
	for i, y := range symbols {
		idx, _ := c.Nearest(y)
		for j := 0; j < c.Bits; j++ {
			dst[i*c.Bits+j] = uint8(idx>>(c.Bits-1-j)) & 1
		}
	}
}
