package demod

import (
	"math"
	"time"

	"github.com/racerxdl/segdsp/tools"
	"gonum.org/v1/gonum/dsp/fourier"
)

// SpectrumBins is the number of points kept for the spectrum plot.
const SpectrumBins = 256

// spectrum computes a power spectrum in dB, DC centred and averaged down to
// SpectrumBins points.
func spectrum(samples []complex64) []float64 {
	if len(samples) < SpectrumBins {
		return nil
	}
	input := make([]complex128, len(samples))
	for i, s := range samples {
		input[i] = complex128(s)
	}
	fft := fourier.NewCmplxFFT(len(input))
	coeff := fft.Coefficients(nil, input)

	per := len(coeff) / SpectrumBins
	out := make([]float64, SpectrumBins)
	for b := range out {
		var acc float64
		for i := b * per; i < (b+1)*per; i++ {
			acc += float64(tools.ComplexAbsSquared(complex64(coeff[fft.ShiftIdx(i)])))
		}
		out[b] = 10 * math.Log10(acc/float64(per)+1e-20)
	}
	return out
}

func (d *Demodulator) doFFT(samples []complex64) {
	out := spectrum(samples)

	d.FFTMutex.Lock()
	d.CurrentFFT = out
	d.FFTMutex.Unlock()

	time.Sleep(d.fftInterval)
	d.FFTMutex.Lock()
	d.FFTWorking = false
	d.FFTMutex.Unlock()
}

// Spectrum returns the latest power spectrum.
func (d *Demodulator) Spectrum() []float64 {
	d.FFTMutex.RLock()
	defer d.FFTMutex.RUnlock()
	return d.CurrentFFT
}
