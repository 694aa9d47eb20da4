package vector

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/jhavlik/jobdesk/pkg/types"
)

// Binary layout of the persisted embeddings blob: a 4-byte magic, the vector
// dimensionality and vector count as little-endian uint32, then the vectors
// packed as IEEE 754 float32 values in insertion order.
const (
	blobMagic   = "JDV1"
	headerBytes = 12
)

// EncodeEmbeddings serializes vectors of the given dimensionality into the
// blob format. Every vector must have exactly dim elements.
func EncodeEmbeddings(vecs [][]float32, dim int) ([]byte, error) {
	b := make([]byte, headerBytes, headerBytes+len(vecs)*dim*4)
	copy(b, blobMagic)
	binary.LittleEndian.PutUint32(b[4:], uint32(dim))
	binary.LittleEndian.PutUint32(b[8:], uint32(len(vecs)))
	var buf [4]byte
	for i, vec := range vecs {
		if len(vec) != dim {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, want %d", types.ErrDimensionMismatch, i, len(vec), dim)
		}
		for _, v := range vec {
			binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
			b = append(b, buf[:]...)
		}
	}
	return b, nil
}

// DecodeEmbeddings parses a blob produced by EncodeEmbeddings and returns the
// vectors and their dimensionality. Malformed input is reported as
// types.ErrDecodeFailed.
func DecodeEmbeddings(b []byte) ([][]float32, int, error) {
	if len(b) < headerBytes {
		return nil, 0, fmt.Errorf("%w: embedding blob too short (%d bytes)", types.ErrDecodeFailed, len(b))
	}
	if string(b[:4]) != blobMagic {
		return nil, 0, fmt.Errorf("%w: embedding blob has bad magic %q", types.ErrDecodeFailed, b[:4])
	}
	dim := int(binary.LittleEndian.Uint32(b[4:]))
	count := int(binary.LittleEndian.Uint32(b[8:]))
	want := headerBytes + count*dim*4
	if len(b) != want {
		return nil, 0, fmt.Errorf("%w: embedding blob is %d bytes, want %d for %d vectors of %d dimensions",
			types.ErrDecodeFailed, len(b), want, count, dim)
	}
	vecs := make([][]float32, count)
	off := headerBytes
	for i := range vecs {
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
			off += 4
		}
		vecs[i] = vec
	}
	return vecs, dim, nil
}
