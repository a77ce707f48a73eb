package similarity

import (
	"gonum.org/v1/gonum/floats"
)

// Cosine returns the cosine similarity of a and b over their common prefix.
// The longer vector is truncated to the length of the shorter one, so CF and
// content vectors of slightly different widths can still be compared.
// Empty input or a zero norm yields exactly 0.
func Cosine(a, b []float64) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0.0
	}

	a, b = a[:n], b[:n]

	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0.0
	}

	return floats.Dot(a, b) / (normA * normB)
}

// Norm returns the Euclidean norm of v, 0 for nil or empty input.
func Norm(v []float64) float64 {
	if len(v) == 0 {
		return 0.0
	}
	return floats.Norm(v, 2)
}
