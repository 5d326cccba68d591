package interleave

import (
	"testing"

	"github.com/iottrends-tech/dvb-s2-SDR/modcod"
)

func TestRoundTrip(t *testing.T) {
	for _, name := range []string{"QPSK1/2", "8PSK3/5", "8PSK2/3", "8PSK5/6"} {
		p, err := modcod.Parse(name, modcod.Short, true)
		if err != nil {
			t.Fatal(err)
		}
		it := New(p)
		n := p.FECFrameBits()
		src := make([]float32, n)
		for i := range src {
			src[i] = float32(i)
		}
		mid := make([]float32, n)
		out := make([]float32, n)
		Interleave(it, mid, src)
		Deinterleave(it, out, mid)
		for i := range out {
			if out[i] != src[i] {
				t.Fatalf("%s: position %d = %v", name, i, out[i])
			}
		}
		if it.Identity() != (p.Modulation == modcod.QPSK) {
			t.Errorf("%s: Identity() = %v", name, it.Identity())
		}
	}
}

func TestColumnOrder(t *testing.T) {
	p, _ := modcod.Parse("8PSK2/3", modcod.Short, false)
	it := New(p)
	rows := p.FECFrameBits() / 3
	src := make([]int, p.FECFrameBits())
	for i := range src {
		src[i] = i
	}
	dst := make([]int, len(src))
	Interleave(it, dst, src)
	// Symbol k carries bits k, rows+k and 2*rows+k.
	for k, want := range [][3]int{{0, rows, 2 * rows}, {1, rows + 1, 2*rows + 1}} {
		got := [3]int{dst[3*k], dst[3*k+1], dst[3*k+2]}
		if got != want {
			t.Errorf("symbol %d bits = %v, want %v", k, got, want)
		}
	}

	p35, _ := modcod.Parse("8PSK3/5", modcod.Short, false)
	Interleave(New(p35), dst, src)
	if got := [3]int{dst[0], dst[1], dst[2]}; got != [3]int{2 * rows, rows, 0} {
		t.Errorf("3/5 first symbol bits = %v", got)
	}
}
