package index

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectors_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	vectors := [][]float32{{1, -2.5, 0}, {0.25, 0.5, 0.75}}

	require.NoError(t, writeVectors(&buf, "build", 3, vectors))

	h, got, err := readVectors(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, vectorHeader{BuildID: "build", Dimensions: 3, Count: 2}, h)
	assert.Equal(t, vectors, got)
}

func TestVectors_EmptySet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeVectors(&buf, "b", 4, nil))

	h, got, err := readVectors(&buf, int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, 0, h.Count)
	assert.Empty(t, got)
}

func TestVectors_WrongDimensions(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, writeVectors(&buf, "b", 2, [][]float32{{1, 2, 3}}))
}

func TestVectors_BadMagic(t *testing.T) {
	_, _, err := readVectors(bytes.NewReader([]byte("NOPE0000000000000000")), 20)
	assert.ErrorIs(t, err, errBadVectorFile)
}

func TestVectors_Truncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeVectors(&buf, "b", 2, [][]float32{{1, 2}, {3, 4}}))
	data := buf.Bytes()[:buf.Len()-3]

	_, _, err := readVectors(bytes.NewReader(data), int64(len(data)))
	assert.ErrorIs(t, err, errBadVectorFile)
}

// hugeHeader declares count x dims vectors and carries no payload.
func hugeHeader(count, dims uint32) []byte {
	var buf bytes.Buffer
	buf.Write(vectorMagic[:])
	for _, v := range []any{vectorFormatVersion, dims, count, uint16(1)} {
		_ = binary.Write(&buf, binary.LittleEndian, v)
	}
	buf.WriteByte('b')
	return buf.Bytes()
}

func TestVectors_HeaderMustMatchSize(t *testing.T) {
	var valid bytes.Buffer
	require.NoError(t, writeVectors(&valid, "b", 2, [][]float32{{1, 2}, {3, 4}}))

	tests := []struct {
		name string
		data []byte
		size int64
	}{
		{"oversized header", hugeHeader(1<<30, 1<<30), int64(len(hugeHeader(1, 1)))},
		{"count without payload", hugeHeader(3, 2), int64(len(hugeHeader(1, 1)))},
		{"trailing bytes", append(valid.Bytes(), 0, 0, 0, 0), int64(valid.Len() + 4)},
		{"zero dimensions with payload", append(hugeHeader(1, 0), 1, 2, 3, 4), int64(len(hugeHeader(1, 0)) + 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got, err := readVectors(bytes.NewReader(tt.data), tt.size)
			assert.ErrorIs(t, err, errBadVectorFile)
			assert.Nil(t, got)
		})
	}
}
