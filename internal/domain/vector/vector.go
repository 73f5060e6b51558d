// Package vector holds embedding records and similarity math.
package vector

import "math"

// Record is one stored embedding of a subject's knowledge-base document.
type Record struct {
	SubjectID int64
	Content   string
	Vector    []float32
}

// Match is a scored record returned by similarity retrieval.
type Match struct {
	SubjectID int64   `json:"user_id"`
	Content   string  `json:"content"`
	Score     float64 `json:"similarity"`
}

// Cosine returns dot(a,b)/(|a|*|b|), or 0 when either vector has zero magnitude.
// Vectors of different length are compared over their common prefix.
func Cosine(a, b []float32) float64 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := range n {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
	}
	for _, x := range a {
		na += float64(x) * float64(x)
	}
	for _, y := range b {
		nb += float64(y) * float64(y)
	}
	if na == 0 || nb == 0 {
		return 0
	}
	s := dot / (math.Sqrt(na) * math.Sqrt(nb))
	// Floating error can push identical vectors just past 1.
	return math.Max(-1, math.Min(1, s))
}

// Round3 rounds to three decimal places, half away from zero.
func Round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
