package store

import (
	"encoding/binary"
	"math"
)

// EncodeVector serializes a float32 vector to a fixed-width
// little-endian byte slice, 4 bytes per element.
func EncodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// DecodeVector deserializes a little-endian byte slice back into a
// float32 vector. Trailing bytes that do not form a full element are
// ignored.
func DecodeVector(buf []byte) []float32 {
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return v
}
