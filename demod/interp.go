package demod

import "math"

// cubic evaluates x at fractional index t with a four point Lagrange
// interpolator over x[i-1..i+2]. Callers keep t within [1, len(x)-3].
func cubic(x []complex64, t float64) complex64 {
	i := int(math.Floor(t))
	mu := float32(t - float64(i))
	c0 := -mu * (mu - 1) * (mu - 2) / 6
	c1 := (mu + 1) * (mu - 1) * (mu - 2) / 2
	c2 := -(mu + 1) * mu * (mu - 2) / 2
	c3 := (mu + 1) * mu * (mu - 1) / 6
	return x[i-1]*complex(c0, 0) + x[i]*complex(c1, 0) + x[i+1]*complex(c2, 0) + x[i+2]*complex(c3, 0)
}

func abs2(v complex64) float64 {
	return float64(real(v))*float64(real(v)) + float64(imag(v))*float64(imag(v))
}

func conj(v complex64) complex64 {
	return complex(real(v), -imag(v))
}

func expj(phase float64) complex64 {
	s, c := math.Sincos(phase)
	return complex(float32(c), float32(s))
}

func angle(v complex128) float64 {
	return math.Atan2(imag(v), real(v))
}

func wrap(phase float64) float64 {
	return math.Remainder(phase, 2*math.Pi)
}
