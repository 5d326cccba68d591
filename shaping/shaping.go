// Package shaping provides the root raised cosine pulse shaping
// interpolator used by the transmitter and the matched filter used by the
// receiver.
package shaping

import (
	"fmt"
	"math"

	"github.com/iottrends-tech/dvb-s2-SDR/modcod"
	"github.com/racerxdl/segdsp/dsp"
)

type Params struct {
	SamplesPerSymbol int
	Rolloff          float64
	Span             int // filter length in symbols
}

func (p Params) Validate() error {
	if p.SamplesPerSymbol < 2 || p.SamplesPerSymbol > 32 {
		return modcod.Invalid("samples_per_symbol", p.SamplesPerSymbol, "must be in [2, 32]")
	}
	if p.Rolloff < 0.05 || p.Rolloff > 0.35 || math.IsNaN(p.Rolloff) {
		return modcod.Invalid("rolloff", p.Rolloff, "must be in [0.05, 0.35]")
	}
	if p.Span < 4 || p.Span > 64 {
		return modcod.Invalid("rrc_span", p.Span, "must be in [4, 64] symbols")
	}
	return nil
}

// NumTaps is span*sps+1, odd so the filter has an integer group delay.
func (p Params) NumTaps() int {
	return p.Span*p.SamplesPerSymbol + 1
}

// Delay is the group delay of one filter in samples.
func (p Params) Delay() int {
	return p.Span * p.SamplesPerSymbol / 2
}

// Taps returns the RRC kernel scaled to unit energy, so a shaping filter
// followed by a matched filter has unit gain at the symbol instants.
func Taps(p Params) ([]float32, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	taps := dsp.MakeRRC(1, float64(p.SamplesPerSymbol), 1, p.Rolloff, p.NumTaps())
	var energy float64
	for _, v := range taps {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, modcod.Invalid("rolloff", p.Rolloff, "filter design produced non finite taps")
		}
		energy += float64(v) * float64(v)
	}
	if energy == 0 {
		return nil, modcod.Invalid("rolloff", p.Rolloff, "filter design produced a zero kernel")
	}
	scale := float32(1 / math.Sqrt(energy))
	for i := range taps {
		taps[i] *= scale
	}
	return taps, nil
}

// Interpolator upsamples symbols by zero stuffing and RRC filtering. Its
// state starts at zero and carries across calls, so a stream split into
// arbitrary pieces produces the same samples as one call.
type Interpolator struct {
	params Params
	// phases[j][k] is tap k*sps+j.
	phases [][]float32
	state  []complex64 // newest symbol first
}

func NewInterpolator(p Params) (*Interpolator, error) {
	taps, err := Taps(p)
	if err != nil {
		return nil, err
	}
	sps := p.SamplesPerSymbol
	stateLen := (len(taps)-1)/sps + 1
	it := &Interpolator{
		params: p,
		phases: make([][]float32, sps),
		state:  make([]complex64, stateLen),
	}
	for j := 0; j < sps; j++ {
		for k := 0; k < stateLen; k++ {
			if idx := k*sps + j; idx < len(taps) {
				it.phases[j] = append(it.phases[j], taps[idx])
			}
		}
	}
	return it, nil
}

func (it *Interpolator) Params() Params { return it.params }

// Process returns exactly len(symbols)*sps samples.
func (it *Interpolator) Process(symbols []complex64) []complex64 {
	sps := it.params.SamplesPerSymbol
	out := make([]complex64, len(symbols)*sps)
	for n, sym := range symbols {
		copy(it.state[1:], it.state[:len(it.state)-1])
		it.state[0] = sym
		for j, taps := range it.phases {
			var re, im float32
			for k, h := range taps {
				s := it.state[k]
				re += real(s) * h
				im += imag(s) * h
			}
			out[n*sps+j] = complex(re, im)
		}
	}
	return out
}

// Flush returns the span*sps samples still held in the filter and clears
// its state.
func (it *Interpolator) Flush() []complex64 {
	out := it.Process(make([]complex64, it.params.Span))
	clear(it.state)
	return out
}

func (it *Interpolator) Reset() {
	clear(it.state)
}

// MatchedFilter applies the same RRC kernel at the receiver.
type MatchedFilter struct {
	params Params
	taps   []float32
	fir    *dsp.FirFilter
}

func NewMatchedFilter(p Params) (*MatchedFilter, error) {
	taps, err := Taps(p)
	if err != nil {
		return nil, err
	}
	return &MatchedFilter{params: p, taps: taps, fir: dsp.MakeFirFilter(taps)}, nil
}

// Work filters one block. Filter history carries across calls.
func (m *MatchedFilter) Work(samples []complex64) []complex64 {
	if len(samples) == 0 {
		return nil
	}
	return m.fir.Work(samples)
}

// Delay is the group delay of the filter in samples.
func (m *MatchedFilter) Delay() int {
	return m.params.Delay()
}

// Reset drops the filter history.
func (m *MatchedFilter) Reset() {
	m.fir = dsp.MakeFirFilter(m.taps)
}

func (m *MatchedFilter) String() string {
	return fmt.Sprintf("RRC(sps=%d, rolloff=%.2f, taps=%d)", m.params.SamplesPerSymbol, m.params.Rolloff, len(m.taps))
}
