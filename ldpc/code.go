// Package ldpc implements the inner LDPC code of DVB-S2: an IRA code built
// from the standard's parity accumulator address tables, with a normalized
// min-sum decoder.
package ldpc

import (
	"fmt"
	"sync"

	"github.com/iottrends-tech/dvb-s2-SDR/modcod"
)

const groupSize = 360

// Code is the parity check structure of one (frame, rate) pair. It is
// immutable and shared by every encoder and decoder of the process.
type Code struct {
	N, K, M int
	q       int
	// Edges in check major order: the edges of check c are
	// edgeVar[checkStart[c]:checkStart[c+1]], info bits first.
	checkStart []int32
	edgeVar    []int32
}

type codeKey struct {
	frame modcod.FrameSize
	rate  modcod.CodeRate
}

var (
	codesMu sync.Mutex
	codes   = map[codeKey]*Code{}
)

func table(p modcod.Profile) ([][]int, bool) {
	tables := shortTables
	if p.Frame == modcod.Normal {
		tables = normalTables
	}
	t, ok := tables[p.Rate]
	return t, ok
}

// Supported reports whether parity tables are available for the profile.
func Supported(p modcod.Profile) bool {
	_, ok := table(p)
	return ok
}

// NewCode returns the code of a profile, building it on first use.
func NewCode(p modcod.Profile) (*Code, error) {
	t, ok := table(p)
	if !ok {
		return nil, modcod.Unsupported("modcod", p.Name(), fmt.Sprintf("no LDPC table for %s frames", p.Frame))
	}
	key := codeKey{p.Frame, p.Rate}
	codesMu.Lock()
	defer codesMu.Unlock()
	if c, ok := codes[key]; ok {
		return c, nil
	}
	c, err := build(p.FECFrameBits(), p.Nbch(), t)
	if err != nil {
		return nil, err
	}
	codes[key] = c
	return c, nil
}

func build(n, k int, table [][]int) (*Code, error) {
	m := n - k
	if k%groupSize != 0 || m%groupSize != 0 || len(table) != k/groupSize {
		return nil, modcod.Invalid("ldpc_table", len(table), fmt.Sprintf("does not describe a (%d, %d) code", n, k))
	}
	c := &Code{N: n, K: k, M: m, q: m / groupSize}

	degree := make([]int32, m)
	for _, row := range table {
		for _, x := range row {
			if x < 0 || x >= m {
				return nil, modcod.Invalid("ldpc_table", x, "address out of range")
			}
			for j := 0; j < groupSize; j++ {
				degree[(x+j*c.q)%m]++
			}
		}
	}
	// Staircase: check c also sees parity bits c and c-1.
	for i := range degree {
		degree[i]++
		if i > 0 {
			degree[i]++
		}
	}

	c.checkStart = make([]int32, m+1)
	for i, d := range degree {
		c.checkStart[i+1] = c.checkStart[i] + d
	}
	c.edgeVar = make([]int32, c.checkStart[m])
	fill := make([]int32, m)
	copy(fill, c.checkStart[:m])
	for g, row := range table {
		for j := 0; j < groupSize; j++ {
			bit := int32(g*groupSize + j)
			for _, x := range row {
				chk := (x + j*c.q) % m
				c.edgeVar[fill[chk]] = bit
				fill[chk]++
			}
		}
	}
	for i := 0; i < m; i++ {
		c.edgeVar[fill[i]] = int32(k + i)
		fill[i]++
		if i > 0 {
			c.edgeVar[fill[i]] = int32(k + i - 1)
			fill[i]++
		}
	}
	return c, nil
}

// Edges is the number of ones in the parity check matrix.
func (c *Code) Edges() int { return len(c.edgeVar) }

// Encode writes info followed by the N-K parity bits into dst.
func (c *Code) Encode(dst, info []uint8) error {
	if len(info) != c.K {
		return fmt.Errorf("ldpc: message has %d bits, want %d", len(info), c.K)
	}
	if len(dst) < c.N {
		return fmt.Errorf("ldpc: output has room for %d bits, want %d", len(dst), c.N)
	}
	copy(dst, info)
	parity := dst[c.K:c.N]
	for chk := 0; chk < c.M; chk++ {
		var p uint8
		for _, v := range c.edgeVar[c.checkStart[chk]:c.checkStart[chk+1]] {
			if int(v) < c.K {
				p ^= info[v] & 1
			}
		}
		parity[chk] = p
	}
	for i := 1; i < c.M; i++ {
		parity[i] ^= parity[i-1]
	}
	return nil
}

// Check reports whether bits satisfy every parity check.
func (c *Code) Check(bits []uint8) bool {
	if len(bits) != c.N {
		return false
	}
	for chk := 0; chk < c.M; chk++ {
		var p uint8
		for _, v := range c.edgeVar[c.checkStart[chk]:c.checkStart[chk+1]] {
			p ^= bits[v] & 1
		}
		if p != 0 {
			return false
		}
	}
	return true
}
