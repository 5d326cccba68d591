package ldpc

import "math"

const (
	// LLRClamp bounds channel and variable to check messages.
	LLRClamp = 32

	// DefaultAlpha normalizes the min-sum check node update.
	DefaultAlpha = 0.75

	DefaultMaxIterations = 50
)

type Result struct {
	Bits       []uint8 // hard decisions for the whole codeword
	Iterations int
	Converged  bool
}

// Decoder runs flooding normalized min-sum decoding. It owns its message
// arena and must not be shared between goroutines.
type Decoder struct {
	code          *Code
	MaxIterations int
	Alpha         float32

	r       []float32 // check to variable, per edge
	q       []float32 // variable to check, per edge
	channel []float32
	total   []float32
	bits    []uint8
}

func NewDecoder(code *Code, maxIterations int) *Decoder {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &Decoder{
		code:          code,
		MaxIterations: maxIterations,
		Alpha:         DefaultAlpha,
		r:             make([]float32, code.Edges()),
		q:             make([]float32, code.Edges()),
		channel:       make([]float32, code.N),
		total:         make([]float32, code.N),
		bits:          make([]uint8, code.N),
	}
}

func clamp(v float32) float32 {
	if v > LLRClamp {
		return LLRClamp
	}
	if v < -LLRClamp {
		return -LLRClamp
	}
	return v
}

// Decode decodes one codeword of channel LLRs (positive favours 0). The
// returned Bits alias the decoder's buffer and are valid until the next call.
// When the iteration budget runs out the best hard decision is returned with
// Converged false.
func (d *Decoder) Decode(llr []float32) Result {
	c := d.code
	if len(llr) != c.N {
		return Result{Bits: d.bits[:0]}
	}
	for i, v := range llr {
		if math.IsNaN(float64(v)) {
			v = 0
		}
		d.channel[i] = clamp(v)
	}
	copy(d.total, d.channel)
	clear(d.r)

	for it := 0; ; it++ {
		for i, v := range d.total {
			if v < 0 {
				d.bits[i] = 1
			} else {
				d.bits[i] = 0
			}
		}
		if c.Check(d.bits) {
			return Result{Bits: d.bits, Iterations: it, Converged: true}
		}
		if it == d.MaxIterations {
			return Result{Bits: d.bits, Iterations: it}
		}

		for chk := 0; chk < c.M; chk++ {
			lo, hi := c.checkStart[chk], c.checkStart[chk+1]
			min1, min2 := float32(math.MaxFloat32), float32(math.MaxFloat32)
			minAt := int32(-1)
			var negatives int
			for e := lo; e < hi; e++ {
				v := clamp(d.total[c.edgeVar[e]] - d.r[e])
				d.q[e] = v
				mag := v
				if v < 0 {
					negatives++
					mag = -v
				}
				if mag < min1 {
					min2 = min1
					min1 = mag
					minAt = e
				} else if mag < min2 {
					min2 = mag
				}
			}
			for e := lo; e < hi; e++ {
				mag := min1
				if e == minAt {
					mag = min2
				}
				neg := negatives
				if d.q[e] < 0 {
					neg--
				}
				if neg&1 == 1 {
					mag = -mag
				}
				d.r[e] = d.Alpha * mag
			}
		}

		copy(d.total, d.channel)
		for e, v := range c.edgeVar {
			d.total[v] += d.r[e]
		}
	}
}
