package bch

import "sync"

// field is GF(2^m) in log/antilog form.
type field struct {
	m     int
	order int // 2^m - 1
	exp   []uint32
	log   []int
}

var (
	fieldMu sync.Mutex
	fields  = map[int]*field{}
)

// getField builds GF(2^m) from the primitive polynomial prim once and
// shares it between codes.
func getField(m int, prim uint32) *field {
	fieldMu.Lock()
	defer fieldMu.Unlock()
	if f, ok := fields[m]; ok {
		return f
	}
	n := 1<<m - 1
	f := &field{
		m:     m,
		order: n,
		exp:   make([]uint32, 2*n),
		log:   make([]int, n+1),
	}
	x := uint32(1)
	for i := 0; i < n; i++ {
		f.exp[i] = x
		f.log[x] = i
		x <<= 1
		if x>>m != 0 {
			x ^= prim
		}
	}
	copy(f.exp[n:], f.exp[:n])
	fields[m] = f
	return f
}

func (f *field) mul(a, b uint32) uint32 {
	if a == 0 || b == 0 {
		return 0
	}
	return f.exp[f.log[a]+f.log[b]]
}

func (f *field) div(a, b uint32) uint32 {
	if a == 0 {
		return 0
	}
	return f.exp[f.log[a]+f.order-f.log[b]]
}

// pow returns alpha^e for any non negative e.
func (f *field) pow(e int) uint32 {
	return f.exp[e%f.order]
}
