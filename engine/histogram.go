package engine

import (
	"encoding/binary"
	"fmt"
)

// histogramBins is the per-channel bin count the accumulation shader
// writes (ops.histogramBufferSize is 3 channels of this many 32-bit
// atomics, channel-major).
const histogramBins = 256

// Histogram is the host-side view of ComputeHistogram's readback buffer:
// 256 bins per channel, each the count of pixels whose channel value
// falls in that 8-bit bucket.
type Histogram struct {
	R, G, B [histogramBins]uint32
}

func parseHistogram(data []byte) (Histogram, error) {
	const wantLen = 3 * histogramBins * 4
	if len(data) != wantLen {
		return Histogram{}, fmt.Errorf("engine: histogram buffer is %d bytes, want %d", len(data), wantLen)
	}
	var h Histogram
	for i := 0; i < histogramBins; i++ {
		h.R[i] = binary.LittleEndian.Uint32(data[i*4:])
		h.G[i] = binary.LittleEndian.Uint32(data[(histogramBins+i)*4:])
		h.B[i] = binary.LittleEndian.Uint32(data[(2*histogramBins+i)*4:])
	}
	return h, nil
}

// Sum returns the total pixel count represented by one channel's bins,
// the quantity property 8 requires to equal the final image's
// pixel count.
func (h Histogram) Sum(channel int) uint64 {
	var bins *[histogramBins]uint32
	switch channel {
	case 0:
		bins = &h.R
	case 1:
		bins = &h.G
	case 2:
		bins = &h.B
	default:
		return 0
	}
	var sum uint64
	for _, v := range bins {
		sum += uint64(v)
	}
	return sum
}
