package vector

import (
	"errors"
	"math"
	"testing"

	"github.com/jhavlik/jobdesk/pkg/types"
)

func TestCosineSimilarityIdentical(t *testing.T) {
	v := []float32{0.5, -1.25, 3.0, 0.75}

	sim, err := CosineSimilarity(v, v)
	if err != nil {
		t.Fatalf("CosineSimilarity failed: %v", err)
	}
	if math.Abs(sim-1.0) > 1e-5 {
		t.Errorf("similarity = %v, want 1.0", sim)
	}
}

func TestCosineSimilarityOrthogonal(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{0, 1, 0}

	sim, err := CosineSimilarity(a, b)
	if err != nil {
		t.Fatalf("CosineSimilarity failed: %v", err)
	}
	if math.Abs(sim) > 1e-5 {
		t.Errorf("similarity = %v, want 0.0", sim)
	}
}

func TestCosineSimilarityOpposite(t *testing.T) {
	a := []float32{2, -3, 1}
	b := []float32{-2, 3, -1}

	sim, err := CosineSimilarity(a, b)
	if err != nil {
		t.Fatalf("CosineSimilarity failed: %v", err)
	}
	if math.Abs(sim+1.0) > 1e-5 {
		t.Errorf("similarity = %v, want -1.0", sim)
	}
}

func TestCosineSimilarityDimensionMismatch(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{1, 2}

	_, err := CosineSimilarity(a, b)
	if err == nil {
		t.Fatal("Expected error for mismatched dimensions")
	}
	if !errors.Is(err, types.ErrDimensionMismatch) {
		t.Errorf("error = %v, want ErrDimensionMismatch", err)
	}
}

func TestCosineSimilarityZeroVector(t *testing.T) {
	a := []float32{0, 0, 0}
	b := []float32{1, 2, 3}

	sim, err := CosineSimilarity(a, b)
	if err != nil {
		t.Fatalf("CosineSimilarity failed: %v", err)
	}
	if sim != 0 {
		t.Errorf("similarity = %v, want 0 for zero-magnitude vector", sim)
	}

	// Both sides zero.
	sim, err = CosineSimilarity(a, a)
	if err != nil {
		t.Fatalf("CosineSimilarity failed: %v", err)
	}
	if sim != 0 {
		t.Errorf("similarity = %v, want 0", sim)
	}
}

func TestCosineSimilarityWithMagnitude(t *testing.T) {
	a := []float32{1, 2, 3, 4}
	b := []float32{4, 3, 2, 1}

	want, err := CosineSimilarity(a, b)
	if err != nil {
		t.Fatal(err)
	}

	got, err := CosineSimilarityWithMagnitude(a, b, Magnitude(a), Magnitude(b))
	if err != nil {
		t.Fatalf("CosineSimilarityWithMagnitude failed: %v", err)
	}
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("similarity = %v, want %v", got, want)
	}
}

func TestMagnitude(t *testing.T) {
	if m := Magnitude([]float32{3, 4}); math.Abs(float64(m)-5.0) > 1e-5 {
		t.Errorf("Magnitude = %v, want 5.0", m)
	}
	if m := Magnitude(nil); m != 0 {
		t.Errorf("Magnitude(nil) = %v, want 0", m)
	}
}
