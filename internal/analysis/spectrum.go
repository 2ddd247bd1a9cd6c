package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// PowerSpectrum returns |X_k|^2/n for k = 0..n/2 of the real signal data.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	fft := fourier.NewFFT(len(data))
	coeffs := fft.Coefficients(nil, data)

	power := make([]float64, len(coeffs))
	n := float64(len(data))
	for i, c := range coeffs {
		a := cmplx.Abs(c)
		power[i] = a * a / n
	}
	return power
}

// DominantFrequency returns the frequency, in cycles per unit time, of the
// strongest non-DC component of data sampled every dt. It returns 0 for
// signals shorter than two samples.
func DominantFrequency(data []float64, dt float64) float64 {
	if len(data) < 2 || dt <= 0 {
		return 0
	}
	power := PowerSpectrum(data)
	peak := floats.MaxIdx(power[1:]) + 1
	return fourier.NewFFT(len(data)).Freq(peak) / dt
}
