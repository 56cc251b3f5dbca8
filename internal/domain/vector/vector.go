// Package vector holds the small amount of float32 math the matcher needs.
package vector

import "math"

// Cosine returns the cosine similarity of a and b, or 0 when either is empty,
// zero-length, or the dimensions differ.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Normalize returns a unit-length copy of v. A zero vector is returned unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		copy(out, v)
		return out
	}
	n := math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) / n)
	}
	return out
}

// Blend returns the L2-normalised weighted sum wa*a + wb*b.
// Both inputs must have the same dimension; otherwise a is returned normalised.
func Blend(a []float32, wa float64, b []float32, wb float64) []float32 {
	if len(a) != len(b) {
		return Normalize(a)
	}
	out := make([]float32, len(a))
	for i := range a {
		out[i] = float32(wa*float64(a[i]) + wb*float64(b[i]))
	}
	return Normalize(out)
}

// SimilarityFromDistance converts a cosine distance into a similarity in [0,1].
func SimilarityFromDistance(d float64) float64 {
	return Clamp01(1 - d)
}

// Clamp01 bounds x to [0,1].
func Clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return 0
	case x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}
