// Package ta holds rolling-window statistics over closing prices.
//
// Series functions return a slice aligned with the input where index i is
// the value of the window ending at i. A window of size n needs n finite
// values, otherwise the point is NaN.
package ta

import "math"

func window(vals []float64, end, n int) ([]float64, bool) {
	if n <= 0 || end+1 < n {
		return nil, false
	}
	w := vals[end+1-n : end+1]
	for _, v := range w {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
	}
	return w, true
}

// mean is taken relative to the first element so a flat window is exact.
func mean(w []float64) float64 {
	base := w[0]
	s := 0.0
	for _, v := range w {
		s += v - base
	}
	return base + s/float64(len(w))
}

func SMASeries(vals []float64, n int) []float64 {
	out := make([]float64, len(vals))
	for i := range vals {
		w, ok := window(vals, i, n)
		if !ok {
			out[i] = math.NaN()
			continue
		}
		out[i] = mean(w)
	}
	return out
}

func SMA(vals []float64, n int) float64 {
	return last(SMASeries(vals, n))
}

// StdDevSeries is the sample standard deviation (n-1 denominator).
func StdDevSeries(vals []float64, n int) []float64 {
	out := make([]float64, len(vals))
	for i := range vals {
		w, ok := window(vals, i, n)
		if !ok || n < 2 {
			out[i] = math.NaN()
			continue
		}
		m := mean(w)
		s := 0.0
		for _, v := range w {
			d := v - m
			s += d * d
		}
		out[i] = math.Sqrt(s / float64(n-1))
	}
	return out
}

func StdDev(vals []float64, n int) float64 {
	return last(StdDevSeries(vals, n))
}

// RSISeries averages gains and losses with a simple rolling mean. A window
// without losses saturates at 100.
func RSISeries(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		switch {
		case math.IsNaN(d):
			gains[i], losses[i] = math.NaN(), math.NaN()
		case d > 0:
			gains[i] = d
		case d < 0:
			losses[i] = -d
		}
	}
	for i := range closes {
		out[i] = math.NaN()
		if i < period {
			continue
		}
		g, okG := window(gains, i, period)
		l, okL := window(losses, i, period)
		if !okG || !okL {
			continue
		}
		avgGain, avgLoss := sum(g)/float64(period), sum(l)/float64(period)
		if avgLoss == 0 {
			out[i] = 100
			continue
		}
		rs := avgGain / avgLoss
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

func RSI(closes []float64, period int) float64 {
	return last(RSISeries(closes, period))
}

// Bollinger returns the bands of the last window.
func Bollinger(closes []float64, n int, k float64) (mid, up, low float64) {
	mid = SMA(closes, n)
	sd := StdDev(closes, n)
	up = mid + k*sd
	low = mid - k*sd
	return
}

func sum(w []float64) float64 {
	s := 0.0
	for _, v := range w {
		s += v
	}
	return s
}

func last(series []float64) float64 {
	if len(series) == 0 {
		return math.NaN()
	}
	return series[len(series)-1]
}
