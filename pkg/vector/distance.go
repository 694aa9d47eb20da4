// Package vector provides the similarity math and the on-disk encoding used
// for embedding vectors.
package vector

import (
	"fmt"

	"github.com/viant/vec/search"

	"github.com/jhavlik/jobdesk/pkg/types"
)

// CosineSimilarity returns the cosine similarity between a and b. Vectors of
// different dimensionality are an error. A zero-magnitude vector on either
// side yields 0 rather than NaN.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", types.ErrDimensionMismatch, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, nil
	}
	va := search.Float32s(a)
	ma := va.Magnitude()
	mb := search.Float32s(b).Magnitude()
	if ma == 0 || mb == 0 {
		return 0, nil
	}
	return 1 - float64(va.CosineDistanceWithMagnitude(b, ma, mb)), nil
}

// CosineSimilarityWithMagnitude is CosineSimilarity for callers that have
// already computed the magnitudes, saving two norm passes per comparison
// during a scan.
func CosineSimilarityWithMagnitude(a, b []float32, ma, mb float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", types.ErrDimensionMismatch, len(a), len(b))
	}
	if ma == 0 || mb == 0 {
		return 0, nil
	}
	return 1 - float64(search.Float32s(a).CosineDistanceWithMagnitude(b, ma, mb)), nil
}

// Magnitude returns the Euclidean norm of v.
func Magnitude(v []float32) float32 {
	if len(v) == 0 {
		return 0
	}
	return search.Float32s(v).Magnitude()
}
