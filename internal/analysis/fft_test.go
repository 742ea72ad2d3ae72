package analysis

import (
	"math"
	"testing"
)

func TestFFTSingleTone(t *testing.T) {
	n := 64
	data := make([]float64, n)
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * 4 * float64(i) / float64(n))
	}

	ps := PowerSpectrum(data)

	maxIdx := 0
	for i := 1; i < len(ps); i++ {
		if ps[i] > ps[maxIdx] {
			maxIdx = i
		}
	}
	if maxIdx != 4 {
		t.Errorf("peak at bin %d, expected 4", maxIdx)
	}
}

func TestPowerSpectrumPadsOddLengths(t *testing.T) {
	data := make([]float64, 100)
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * float64(i) / 25)
	}

	ps := PowerSpectrum(data)
	if len(ps) != 64 {
		t.Errorf("spectrum length = %d, expected 64 (padded to 128)", len(ps))
	}
}

func TestDominantPeriod(t *testing.T) {
	// 100s period sampled at 1s over 1024 samples
	dt := 1.0
	data := make([]float64, 1024)
	for i := range data {
		data[i] = 50 + 10*math.Cos(2*math.Pi*float64(i)*dt/100)
	}

	period := DominantPeriod(data, dt)
	if math.Abs(period-100) > 10 {
		t.Errorf("period = %f, expected near 100", period)
	}
}

func TestDominantPeriodConstantSignal(t *testing.T) {
	data := make([]float64, 128)
	for i := range data {
		data[i] = 7.5
	}
	if p := DominantPeriod(data, 1.0); p != 0 {
		t.Errorf("period = %f, expected 0 for constant signal", p)
	}
}

func TestDominantPeriodShortSeries(t *testing.T) {
	if p := DominantPeriod([]float64{1, 2}, 1.0); p != 0 {
		t.Errorf("period = %f, expected 0 for short series", p)
	}
}
