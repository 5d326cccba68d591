package demod

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// SNRCalc is a blind M2M4 estimator with exponential smoothing, based on
// SatDump's snr_estimator.cpp, which in turn follows:
//
// D. R. Pauluzzi and N. C. Beaulieu, "A comparison of SNR
// estimation techniques for the AWGN channel," IEEE
// Trans. Communications, Vol. 48, No. 10, pp. 1681-1691, 2000.
type SNRCalc struct {
	Y1     float64
	Y2     float64
	Alpha  float64
	Beta   float64
	Signal float64
	Noise  float64
}

func NewSNRCalc() *SNRCalc {
	alpha := 0.001
	return &SNRCalc{Alpha: alpha, Beta: 1.0 - alpha}
}

// Update folds symbols into the moment estimates and returns the SNR in dB,
// floored at 0.
func (s *SNRCalc) Update(symbols []complex64) float64 {
	for _, samp := range symbols {
		p := float64(real(samp))*float64(real(samp)) + float64(imag(samp))*float64(imag(samp))
		s.Y1 = s.Alpha*p + s.Beta*s.Y1
		s.Y2 = s.Alpha*p*p + s.Beta*s.Y2
	}
	if math.IsNaN(s.Y1) {
		s.Y1 = 0
	}
	if math.IsNaN(s.Y2) {
		s.Y2 = 0
	}

	// The radicand is kept apart since it is square rooted twice.
	radicand := max(0, 2.0*s.Y1*s.Y1-s.Y2)
	s.Signal = math.Sqrt(radicand)
	s.Noise = s.Y1 - s.Signal
	if s.Noise <= 0 || s.Signal == 0 {
		return 0
	}
	return max(0, 10.0*math.Log10(s.Signal/s.Noise))
}

// evmNoise returns the mean squared error between received and reference
// symbols. With unit energy references this is the complex noise variance.
func evmNoise(got, ref []complex64) float64 {
	if len(got) == 0 {
		return 0
	}
	errs := make([]float64, len(got))
	for i := range got {
		d := got[i] - ref[i]
		errs[i] = float64(real(d))*float64(real(d)) + float64(imag(d))*float64(imag(d))
	}
	return stat.Mean(errs, nil)
}

// EsN0 converts a noise variance into Es/N0 in dB for unit energy symbols.
func EsN0(noiseVar float64) float64 {
	if noiseVar <= 0 {
		return math.Inf(1)
	}
	return -10 * math.Log10(noiseVar)
}
