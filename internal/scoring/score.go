package scoring

import (
	"math"
	"strconv"
)

const (
	// MatchPrecision is the number of decimals kept in face-match scores.
	MatchPrecision = 4
	// LivenessPrecision is the number of decimals kept in liveness scores.
	LivenessPrecision = 3
	// SharpnessDivisor maps Laplacian variance onto [0,1] for the fallback heuristic.
	SharpnessDivisor = 200.0
)

// Round rounds the exact binary value of v to the given number of decimals.
// Exact ties go to the even digit, and a result of zero is never negative.
func Round(v float64, decimals int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', decimals, 64), 64)
	if err != nil || rounded == 0 {
		return 0
	}
	return rounded
}

// Clamp01 bounds v to [0,1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

// MatchScore turns a raw similarity into the face-match response value.
func MatchScore(similarity float64) float64 {
	if math.IsNaN(similarity) {
		return 0
	}
	return Round(similarity, MatchPrecision)
}

// LivenessScore turns a raw model output into the liveness response value.
func LivenessScore(raw float64) float64 {
	return Round(Clamp01(raw), LivenessPrecision)
}

// SharpnessScore is the fallback liveness score derived from Laplacian variance.
// It is monotonic non-decreasing in variance.
func SharpnessScore(variance float64) float64 {
	return Round(Clamp01(variance/SharpnessDivisor), LivenessPrecision)
}

// Mean averages a model output tensor. An empty tensor averages to 0.
func Mean(values []float32) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	return sum / float64(len(values))
}
