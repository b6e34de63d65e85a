package ops

import (
	"encoding/binary"
	"math"
)

// packFloat32s little-endian encodes a uniform struct's fields as
// consecutive 4-byte words with no padding of its own; callers pad with
// zeros to the declared struct size.
func packFloat32s(values ...float32) []byte {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func packUint32s(values ...uint32) []byte {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	return buf
}
