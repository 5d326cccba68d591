package ldpc

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/iottrends-tech/dvb-s2-SDR/modcod"
)

func encodeRandom(t *testing.T, c *Code, rng *rand.Rand) []uint8 {
	t.Helper()
	info := make([]uint8, c.K)
	for i := range info {
		info[i] = uint8(rng.IntN(2))
	}
	cw := make([]uint8, c.N)
	if err := c.Encode(cw, info); err != nil {
		t.Fatal(err)
	}
	return cw
}

func newCode(t *testing.T, name string, frame modcod.FrameSize) *Code {
	t.Helper()
	p, err := modcod.Parse(name, frame, true)
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewCode(p)
	if err != nil {
		t.Fatalf("%s %s: %v", name, frame, err)
	}
	return c
}

func shortCode(t *testing.T, name string) *Code {
	t.Helper()
	return newCode(t, name, modcod.Short)
}

func TestEncodeSatisfiesChecks(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for _, frame := range []modcod.FrameSize{modcod.Short, modcod.Normal} {
		for _, name := range []string{"QPSK1/2", "QPSK2/3", "QPSK3/4", "QPSK5/6"} {
			c := newCode(t, name, frame)
			if want := map[modcod.FrameSize]int{modcod.Short: 16200, modcod.Normal: 64800}[frame]; c.N != want {
				t.Fatalf("%s %s: N = %d, want %d", name, frame, c.N, want)
			}
			cw := encodeRandom(t, c, rng)
			if !c.Check(cw) {
				t.Errorf("%s %s: encoded codeword fails parity checks", name, frame)
			}
			cw[17] ^= 1
			if c.Check(cw) {
				t.Errorf("%s %s: corrupted codeword passes parity checks", name, frame)
			}
		}
	}
}

func TestNormalCheckDegrees(t *testing.T) {
	tests := []struct {
		name   string
		k      int
		degree int32
	}{
		{"QPSK1/2", 32400, 7},
		{"QPSK2/3", 43200, 10},
		{"QPSK3/4", 48600, 14},
		{"QPSK5/6", 54000, 22},
	}
	for _, tt := range tests {
		c := newCode(t, tt.name, modcod.Normal)
		if c.K != tt.k {
			t.Errorf("%s: K = %d, want %d", tt.name, c.K, tt.k)
		}
		// Check 0 has no previous parity bit.
		if d := c.checkStart[1] - c.checkStart[0]; d != tt.degree-1 {
			t.Errorf("%s: check 0 has degree %d, want %d", tt.name, d, tt.degree-1)
		}
		for i := 1; i < c.M; i++ {
			if d := c.checkStart[i+1] - c.checkStart[i]; d != tt.degree {
				t.Errorf("%s: check %d has degree %d, want %d", tt.name, i, d, tt.degree)
				break
			}
		}
	}
}

func TestDecodeCleanCodeword(t *testing.T) {
	c := shortCode(t, "QPSK3/4")
	cw := encodeRandom(t, c, rand.New(rand.NewPCG(3, 4)))
	llr := make([]float32, c.N)
	for i, b := range cw {
		llr[i] = 8 * (1 - 2*float32(b))
	}
	res := NewDecoder(c, 0).Decode(llr)
	if !res.Converged || res.Iterations != 0 {
		t.Fatalf("clean codeword: converged=%v iterations=%d", res.Converged, res.Iterations)
	}
}

func TestDecodeFlippedBits(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	for _, name := range []string{"QPSK1/2", "QPSK2/3", "QPSK3/4", "QPSK5/6"} {
		c := shortCode(t, name)
		cw := encodeRandom(t, c, rng)
		llr := make([]float32, c.N)
		for i, b := range cw {
			llr[i] = 4 * (1 - 2*float32(b))
		}
		for i := 0; i < 40; i++ {
			j := (i*397 + 11) % c.N
			llr[j] = -llr[j]
		}
		res := NewDecoder(c, 50).Decode(llr)
		if !res.Converged {
			t.Errorf("%s: did not converge after %d iterations", name, res.Iterations)
			continue
		}
		for i := range cw {
			if res.Bits[i] != cw[i] {
				t.Errorf("%s: bit %d wrong after decoding", name, i)
				break
			}
		}
	}
}

func TestDecodeAWGN(t *testing.T) {
	tests := []struct {
		name  string
		sigma float64
	}{
		{"QPSK1/2", 0.61},
		{"QPSK2/3", 0.52},
		{"QPSK3/4", 0.48},
		{"QPSK5/6", 0.43},
	}
	rng := rand.New(rand.NewPCG(7, 8))
	for _, tt := range tests {
		c := shortCode(t, tt.name)
		dec := NewDecoder(c, 50)
		for frame := 0; frame < 3; frame++ {
			cw := encodeRandom(t, c, rng)
			llr := make([]float32, c.N)
			raw := 0
			for i, b := range cw {
				y := 1 - 2*float64(b) + tt.sigma*rng.NormFloat64()
				if (y < 0) != (b == 1) {
					raw++
				}
				llr[i] = float32(2 * y / (tt.sigma * tt.sigma))
			}
			res := dec.Decode(llr)
			if !res.Converged {
				t.Errorf("%s frame %d: no convergence with %d raw errors", tt.name, frame, raw)
				continue
			}
			for i := 0; i < c.K; i++ {
				if res.Bits[i] != cw[i] {
					t.Errorf("%s frame %d: info bit %d wrong", tt.name, frame, i)
					break
				}
			}
		}
	}
}

func TestDecodeGivesUpOnNoise(t *testing.T) {
	c := shortCode(t, "QPSK5/6")
	rng := rand.New(rand.NewPCG(9, 10))
	llr := make([]float32, c.N)
	for i := range llr {
		llr[i] = float32(rng.NormFloat64())
	}
	res := NewDecoder(c, 5).Decode(llr)
	if res.Converged {
		t.Fatal("random LLRs converged")
	}
	if res.Iterations != 5 || len(res.Bits) != c.N {
		t.Errorf("iterations=%d bits=%d", res.Iterations, len(res.Bits))
	}
}

func TestClampHandlesExtremeInput(t *testing.T) {
	c := shortCode(t, "QPSK1/2")
	cw := encodeRandom(t, c, rand.New(rand.NewPCG(11, 12)))
	llr := make([]float32, c.N)
	for i, b := range cw {
		llr[i] = float32(math.Inf(1))
		if b == 1 {
			llr[i] = float32(math.Inf(-1))
		}
	}
	llr[0] = float32(math.NaN())
	res := NewDecoder(c, 10).Decode(llr)
	if !res.Converged {
		t.Fatal("saturated LLRs did not converge")
	}
}

func TestDecodeNormalFrame(t *testing.T) {
	rng := rand.New(rand.NewPCG(13, 14))
	for _, name := range []string{"QPSK1/2", "QPSK5/6"} {
		c := newCode(t, name, modcod.Normal)
		cw := encodeRandom(t, c, rng)
		llr := make([]float32, c.N)
		for i, b := range cw {
			llr[i] = 4 * (1 - 2*float32(b))
		}
		for i := 0; i < 100; i++ {
			j := (i*1423 + 7) % c.N
			llr[j] = -llr[j]
		}
		res := NewDecoder(c, 50).Decode(llr)
		if !res.Converged {
			t.Errorf("%s: did not converge after %d iterations", name, res.Iterations)
			continue
		}
		for i := range cw {
			if res.Bits[i] != cw[i] {
				t.Errorf("%s: bit %d wrong after decoding", name, i)
				break
			}
		}
	}
}

func TestUnsupportedRates(t *testing.T) {
	for _, frame := range []modcod.FrameSize{modcod.Short, modcod.Normal} {
		p, _ := modcod.Parse("QPSK1/4", frame, false)
		if Supported(p) {
			t.Errorf("%s QPSK1/4 reported as supported", frame)
		}
		if _, err := NewCode(p); !errors.Is(err, modcod.ErrUnsupported) {
			t.Errorf("%s QPSK1/4: err = %v, want ErrUnsupported", frame, err)
		}
	}
}
