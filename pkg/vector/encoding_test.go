package vector

import (
	"errors"
	"testing"

	"github.com/jhavlik/jobdesk/pkg/types"
)

func TestEncodeDecodeEmbeddings(t *testing.T) {
	vecs := [][]float32{
		{1.5, -2.25, 0.0},
		{0.125, 3.75, -1.0},
	}

	blob, err := EncodeEmbeddings(vecs, 3)
	if err != nil {
		t.Fatalf("EncodeEmbeddings failed: %v", err)
	}

	decoded, dim, err := DecodeEmbeddings(blob)
	if err != nil {
		t.Fatalf("DecodeEmbeddings failed: %v", err)
	}
	if dim != 3 {
		t.Errorf("dim = %d, want 3", dim)
	}
	if len(decoded) != len(vecs) {
		t.Fatalf("decoded %d vectors, want %d", len(decoded), len(vecs))
	}
	for i := range vecs {
		for j := range vecs[i] {
			if decoded[i][j] != vecs[i][j] {
				t.Errorf("vector %d[%d] = %v, want %v", i, j, decoded[i][j], vecs[i][j])
			}
		}
	}
}

func TestEncodeDecodeEmpty(t *testing.T) {
	blob, err := EncodeEmbeddings(nil, 0)
	if err != nil {
		t.Fatalf("EncodeEmbeddings failed: %v", err)
	}

	decoded, dim, err := DecodeEmbeddings(blob)
	if err != nil {
		t.Fatalf("DecodeEmbeddings failed: %v", err)
	}
	if dim != 0 || len(decoded) != 0 {
		t.Errorf("decoded %d vectors of dim %d, want none", len(decoded), dim)
	}
}

func TestEncodeEmbeddingsDimensionMismatch(t *testing.T) {
	vecs := [][]float32{
		{1, 2, 3},
		{1, 2},
	}

	_, err := EncodeEmbeddings(vecs, 3)
	if err == nil {
		t.Fatal("Expected error for ragged vectors")
	}
	if !errors.Is(err, types.ErrDimensionMismatch) {
		t.Errorf("error = %v, want ErrDimensionMismatch", err)
	}
}

func TestDecodeEmbeddingsMalformed(t *testing.T) {
	cases := []struct {
		name string
		blob []byte
	}{
		{"too short", []byte("JDV")},
		{"bad magic", append([]byte("XXXX"), make([]byte, 8)...)},
		{"truncated body", func() []byte {
			blob, _ := EncodeEmbeddings([][]float32{{1, 2, 3}}, 3)
			return blob[:len(blob)-4]
		}()},
	}

	for _, tc := range cases {
		_, _, err := DecodeEmbeddings(tc.blob)
		if err == nil {
			t.Errorf("%s: expected decode error", tc.name)
			continue
		}
		if !errors.Is(err, types.ErrDecodeFailed) {
			t.Errorf("%s: error = %v, want ErrDecodeFailed", tc.name, err)
		}
	}
}
