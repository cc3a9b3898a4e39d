package reembed

import "math"

// NormalizeVector scales an embedding to unit length so that dot
// products against it are cosine similarities. Always returns a new
// slice; a zero vector stays zero since it has no direction.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var sum float64
	for _, val := range v {
		sum += float64(val) * float64(val)
	}

	result := make([]float32, len(v))
	if sum == 0 {
		return result
	}

	inv := float32(1 / math.Sqrt(sum))
	for i, val := range v {
		result[i] = val * inv
	}
	return result
}
