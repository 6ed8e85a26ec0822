package index

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// vectorMagic identifies a vector blob.
var vectorMagic = [4]byte{'D', 'M', 'V', 'X'}

const vectorFormatVersion uint32 = 1

// errBadVectorFile means the blob header is not recognised.
var errBadVectorFile = errors.New("unrecognised vector file")

type vectorHeader struct {
	BuildID    string
	Dimensions int
	Count      int
}

// writeVectors encodes the header followed by count*dimensions float32 values.
func writeVectors(w io.Writer, buildID string, dimensions int, vectors [][]float32) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.Write(vectorMagic[:]); err != nil {
		return err
	}
	id := []byte(buildID)
	if len(id) > math.MaxUint16 {
		return fmt.Errorf("build id too long")
	}
	for _, v := range []any{
		vectorFormatVersion,
		uint32(dimensions),
		uint32(len(vectors)),
		uint16(len(id)),
	} {
		if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	if _, err := bw.Write(id); err != nil {
		return err
	}

	buf := make([]byte, 4)
	for i, vec := range vectors {
		if len(vec) != dimensions {
			return fmt.Errorf("vector %d has %d dimensions, want %d", i, len(vec), dimensions)
		}
		for _, f := range vec {
			binary.LittleEndian.PutUint32(buf, math.Float32bits(f))
			if _, err := bw.Write(buf); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// readVectorHeader decodes only the header.
func readVectorHeader(r io.Reader) (vectorHeader, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return vectorHeader{}, errBadVectorFile
	}
	if magic != vectorMagic {
		return vectorHeader{}, errBadVectorFile
	}

	var version, dims, count uint32
	var idLen uint16
	for _, v := range []any{&version, &dims, &count, &idLen} {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return vectorHeader{}, errBadVectorFile
		}
	}
	if version != vectorFormatVersion {
		return vectorHeader{}, fmt.Errorf("%w: version %d", errBadVectorFile, version)
	}

	id := make([]byte, idLen)
	if _, err := io.ReadFull(r, id); err != nil {
		return vectorHeader{}, errBadVectorFile
	}
	return vectorHeader{BuildID: string(id), Dimensions: int(dims), Count: int(count)}, nil
}

// vectorHeaderSize is the fixed part of the header before the build id.
const vectorHeaderSize = 4 + 4 + 4 + 4 + 2

// readVectors decodes the header and every vector from a blob of size
// bytes. The header must describe exactly the payload that follows it.
func readVectors(r io.Reader, size int64) (vectorHeader, [][]float32, error) {
	br := bufio.NewReader(r)
	h, err := readVectorHeader(br)
	if err != nil {
		return h, nil, err
	}
	if err := h.fits(size); err != nil {
		return h, nil, err
	}

	vectors := make([][]float32, h.Count)
	buf := make([]byte, 4*h.Dimensions)
	for i := range vectors {
		if _, err := io.ReadFull(br, buf); err != nil {
			return h, nil, fmt.Errorf("%w: truncated at vector %d", errBadVectorFile, i)
		}
		vec := make([]float32, h.Dimensions)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[j*4:]))
		}
		vectors[i] = vec
	}
	return h, vectors, nil
}

// fits checks count*dimensions against the bytes left after the header.
func (h vectorHeader) fits(size int64) error {
	payload := size - int64(vectorHeaderSize+len(h.BuildID))
	row := 4 * int64(h.Dimensions)
	switch {
	case payload < 0:
		return fmt.Errorf("%w: shorter than its header", errBadVectorFile)
	case row == 0 && payload != 0, row > 0 && int64(h.Count) != payload/row, row > 0 && payload%row != 0:
		return fmt.Errorf("%w: header declares %d x %d vectors for %d payload bytes",
			errBadVectorFile, h.Count, h.Dimensions, payload)
	}
	return nil
}
