package s2_scores

import "math"

// returnsFromCloses converts a close series into simple period returns.
// Periods with a non-positive previous close are skipped.
func returnsFromCloses(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev <= 0 {
			continue
		}
		out = append(out, closes[i]/prev-1)
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	if m := sum / float64(len(xs)); finite(m) {
		return m
	}
	// 합계 오버플로 → 단위 스케일로 재계산
	k := maxAbs(xs)
	if k == 0 || !finite(k) {
		return 0
	}
	return k * mean(unitScaled(xs, k))
}

// stdDev is the sample standard deviation (n-1).
// Deviations are taken on the unit-scaled series so squares cannot overflow.
func stdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	k := maxAbs(xs)
	if k == 0 {
		return 0
	}
	ys := unitScaled(xs, k)
	m := mean(ys)
	ss := 0.0
	for _, y := range ys {
		d := y - m
		ss += d * d
	}
	return k * math.Sqrt(ss/float64(len(ys)-1))
}

// maxAbs returns the largest |x| of xs
func maxAbs(xs []float64) float64 {
	k := 0.0
	for _, x := range xs {
		if a := math.Abs(x); a > k {
			k = a
		}
	}
	return k
}

// unitScaled returns xs / k, so every value lies in [-1, 1] when k = maxAbs(xs)
func unitScaled(xs []float64, k float64) []float64 {
	out := make([]float64, len(xs))
	if k == 0 || !finite(k) {
		copy(out, xs)
		return out
	}
	for i, x := range xs {
		out[i] = x / k
	}
	return out
}

// autocorr is the Pearson correlation of xs[:-lag] with xs[lag:].
// A constant series has no defined correlation and yields 0.
func autocorr(xs []float64, lag int) float64 {
	if lag <= 0 || len(xs) <= lag+1 {
		return 0
	}
	// 상관계수는 스케일 불변: 극단값 제곱 오버플로 방지
	ys := unitScaled(xs, maxAbs(xs))
	a := ys[:len(ys)-lag]
	b := ys[lag:]
	ma, mb := mean(a), mean(b)

	var cov, va, vb float64
	for i := range a {
		da := a[i] - ma
		db := b[i] - mb
		cov += da * db
		va += da * da
		vb += db * db
	}
	if va == 0 || vb == 0 {
		return 0
	}
	r := cov / math.Sqrt(va*vb)
	if !finite(r) {
		return 0
	}
	return clamp(r, -1, 1)
}

func squares(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = x * x
	}
	return out
}

// cagr returns the compound annual growth rate between first and last over years.
// ok is false when first is non-positive or years < 1.
func cagr(first, last float64, years int) (float64, bool) {
	if first <= 0 || last < 0 || years < 1 {
		return 0, false
	}
	return math.Pow(last/first, 1/float64(years)) - 1, true
}

// pctChange returns (b - a) / |a|
func pctChange(a, b float64) (float64, bool) {
	if a == 0 {
		return 0, false
	}
	return (b - a) / math.Abs(a), true
}
