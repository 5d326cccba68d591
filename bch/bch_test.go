package bch

import (
	"errors"
	"testing"

	"github.com/iottrends-tech/dvb-s2-SDR/modcod"
)

func testMessage(k int) []uint8 {
	msg := make([]uint8, k)
	for i := range msg {
		b := uint8((i*31+7)>>3) & 1
		if i%5 == 0 {
			b ^= 1
		}
		msg[i] = b
	}
	return msg
}

func flip(cw []uint8, n int) []uint8 {
	out := append([]uint8(nil), cw...)
	for i := 0; i < n; i++ {
		out[(i*577+13)%len(cw)] ^= 1
	}
	return out
}

func TestGeneratorRoots(t *testing.T) {
	for _, frame := range []modcod.FrameSize{modcod.Normal, modcod.Short} {
		p, err := modcod.Parse("QPSK1/2", frame, false)
		if err != nil {
			t.Fatal(err)
		}
		c, err := ForProfile(p)
		if err != nil {
			t.Fatal(err)
		}
		g := c.Generator()
		if len(g)-1 != c.N-c.K {
			t.Fatalf("%s: generator degree %d, want %d", frame, len(g)-1, c.N-c.K)
		}
		for i := 1; i <= c.T; i++ {
			root := c.f.pow(2*i - 1)
			var acc, x uint32 = 0, 1
			for _, coef := range g {
				if coef != 0 {
					acc ^= x
				}
				x = c.f.mul(x, root)
			}
			if acc != 0 {
				t.Errorf("%s: alpha^%d is not a root of g(x)", frame, 2*i-1)
			}
		}
	}
}

func TestDecodeCorrectsUpToT(t *testing.T) {
	tests := []struct {
		modcod string
		frame  modcod.FrameSize
	}{
		{"QPSK1/2", modcod.Short},
		{"QPSK2/3", modcod.Short},
		{"8PSK5/6", modcod.Short},
		{"QPSK2/3", modcod.Normal},
		{"QPSK9/10", modcod.Normal},
	}
	for _, tt := range tests {
		p, err := modcod.Parse(tt.modcod, tt.frame, false)
		if err != nil {
			t.Fatal(err)
		}
		c, err := ForProfile(p)
		if err != nil {
			t.Fatalf("%s: %v", p, err)
		}
		msg := testMessage(c.K)
		cw := make([]uint8, c.N)
		if err := c.Encode(cw, msg); err != nil {
			t.Fatal(err)
		}

		clean := append([]uint8(nil), cw...)
		if n, err := c.Decode(clean); err != nil || n != 0 {
			t.Errorf("%s: clean codeword decode = %d, %v", p, n, err)
		}

		for _, nerr := range []int{1, c.T / 2, c.T} {
			rx := flip(cw, nerr)
			n, err := c.Decode(rx)
			if err != nil {
				t.Errorf("%s: %d errors: %v", p, nerr, err)
				continue
			}
			if n != nerr {
				t.Errorf("%s: corrected %d bits, want %d", p, n, nerr)
			}
			for i := range cw {
				if rx[i] != cw[i] {
					t.Errorf("%s: %d errors: bit %d still wrong", p, nerr, i)
					break
				}
			}
		}
	}
}

func TestDecodeBeyondT(t *testing.T) {
	p, _ := modcod.Parse("QPSK1/2", modcod.Short, true)
	c, err := ForProfile(p)
	if err != nil {
		t.Fatal(err)
	}
	cw := make([]uint8, c.N)
	if err := c.Encode(cw, testMessage(c.K)); err != nil {
		t.Fatal(err)
	}
	for _, nerr := range []int{c.T + 1, 20} {
		rx := flip(cw, nerr)
		before := append([]uint8(nil), rx...)
		if _, err := c.Decode(rx); !errors.Is(err, ErrUncorrectable) {
			t.Errorf("%d errors: err = %v, want ErrUncorrectable", nerr, err)
		}
		for i := range rx {
			if rx[i] != before[i] {
				t.Fatalf("%d errors: input modified at bit %d", nerr, i)
			}
		}
	}
}

func TestEncodeLength(t *testing.T) {
	p, _ := modcod.Parse("QPSK3/4", modcod.Short, false)
	c, _ := ForProfile(p)
	if err := c.Encode(make([]uint8, c.N), make([]uint8, c.K-1)); err == nil {
		t.Error("short message accepted")
	}
	if _, err := c.Decode(make([]uint8, c.N+1)); err == nil {
		t.Error("long codeword accepted")
	}
}

func TestNewRejectsBadGeometry(t *testing.T) {
	if _, err := New(modcod.Short, 7000, 7200, 12); !modcod.IsConfigError(err) {
		t.Errorf("err = %v, want ConfigError", err)
	}
	if _, err := New(modcod.Short, 7032, 7200, 13); !modcod.IsConfigError(err) {
		t.Errorf("err = %v, want ConfigError", err)
	}
}
