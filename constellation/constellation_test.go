package constellation

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/iottrends-tech/dvb-s2-SDR/modcod"
)

func TestPSK8Table(t *testing.T) {
	// EN 302 307 figure 10.
	want := map[int]float64{
		0b000: math.Pi / 4, 0b001: 0, 0b010: math.Pi, 0b011: 5 * math.Pi / 4,
		0b100: math.Pi / 2, 0b101: 7 * math.Pi / 4, 0b110: 3 * math.Pi / 4, 0b111: 3 * math.Pi / 2,
	}
	c := New(modcod.PSK8)
	for idx, ph := range want {
		got := complex128(c.Points[idx])
		exp := cmplx.Rect(1, ph)
		if cmplx.Abs(got-exp) > 1e-6 {
			t.Errorf("point %03b = %v, want %v", idx, got, exp)
		}
	}
}

func TestMapHardDecisionRoundTrip(t *testing.T) {
	for _, m := range []modcod.Modulation{modcod.QPSK, modcod.PSK8} {
		c := New(m)
		nsym := 64
		bits := make([]uint8, nsym*c.Bits)
		for i := range bits {
			bits[i] = uint8((i*5 + i/3) & 1)
		}
		syms := make([]complex64, nsym)
		c.Map(syms, bits)
		for _, s := range syms {
			if math.Abs(cmplx.Abs(complex128(s))-1) > 1e-6 {
				t.Fatalf("%s: symbol %v is not unit energy", m, s)
			}
		}
		got := make([]uint8, len(bits))
		c.HardDecision(got, syms)
		for i := range bits {
			if got[i] != bits[i] {
				t.Fatalf("%s: bit %d = %d, want %d", m, i, got[i], bits[i])
			}
		}
	}
}

func TestDemapSigns(t *testing.T) {
	for _, m := range []modcod.Modulation{modcod.QPSK, modcod.PSK8} {
		c := New(m)
		for idx, p := range c.Points {
			// Nudge towards the origin so no LLR saturates at zero distance.
			y := p * complex(float32(0.9), 0)
			llr := make([]float32, c.Bits)
			c.Demap(llr, []complex64{y}, 0.5)
			for j := 0; j < c.Bits; j++ {
				bit := idx >> (c.Bits - 1 - j) & 1
				if (bit == 0) != (llr[j] > 0) {
					t.Errorf("%s point %d bit %d: llr %v", m, idx, j, llr[j])
				}
			}
		}
	}
}

func TestDemapQPSKValue(t *testing.T) {
	c := New(modcod.QPSK)
	llr := make([]float32, 2)
	y := complex64(complex(0.3, -0.1))
	c.Demap(llr, []complex64{y}, 0.5)
	// Max-log QPSK LLRs are 2*sqrt(2)*y/N0 per axis.
	want := []float64{2 * math.Sqrt2 * 0.3 / 0.5, 2 * math.Sqrt2 * -0.1 / 0.5}
	for i := range want {
		if math.Abs(float64(llr[i])-want[i]) > 1e-4 {
			t.Errorf("llr[%d] = %v, want %v", i, llr[i], want[i])
		}
	}
}

func TestDemapClamps(t *testing.T) {
	c := New(modcod.PSK8)
	llr := make([]float32, 3)
	c.Demap(llr, []complex64{complex(5, 0)}, 1e-6)
	for i, v := range llr {
		if v > MaxLLR || v < -MaxLLR {
			t.Errorf("llr[%d] = %v exceeds clamp", i, v)
		}
	}
}
