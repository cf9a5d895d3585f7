//go:build !nogpu

package device

import "encoding/binary"

// hostPixelBytes is the host-side pixel stride (packed RGB).
// devicePixelBytes is the device-side stride: one u32 word per pixel so
// shader invocations never share a storage word.
const (
	hostPixelBytes   = 3
	devicePixelBytes = 4
)

// packPixelsForGPU widens host RGB pixels into little-endian u32 words
// (R low byte, high byte zero) for upload to a storage buffer.
func packPixelsForGPU(rgb []byte, pixelCount int) []byte {
	out := make([]byte, pixelCount*devicePixelBytes)
	for i := 0; i < pixelCount; i++ {
		srcIdx := i * hostPixelBytes
		r := uint32(rgb[srcIdx+0])
		g := uint32(rgb[srcIdx+1])
		b := uint32(rgb[srcIdx+2])
		binary.LittleEndian.PutUint32(out[i*devicePixelBytes:], r|(g<<8)|(b<<16))
	}
	return out
}

// unpackPixelsFromGPU narrows read-back u32 words into host RGB bytes.
func unpackPixelsFromGPU(packed []byte, rgb []byte, pixelCount int) {
	for i := 0; i < pixelCount; i++ {
		val := binary.LittleEndian.Uint32(packed[i*devicePixelBytes:])
		dstIdx := i * hostPixelBytes
		rgb[dstIdx+0] = uint8(val & 0xFF)         //nolint:gosec // masked to 8 bits
		rgb[dstIdx+1] = uint8((val >> 8) & 0xFF)  //nolint:gosec // masked to 8 bits
		rgb[dstIdx+2] = uint8((val >> 16) & 0xFF) //nolint:gosec // masked to 8 bits
	}
}

// paramsBytes serializes the Params uniform: width, height, two pad words.
// 16 bytes keeps the uniform at the minimum binding size.
func paramsBytes(width, height uint32) []byte {
	out := make([]byte, 16)
	binary.LittleEndian.PutUint32(out[0:], width)
	binary.LittleEndian.PutUint32(out[4:], height)
	return out
}

// workgroupCounts returns the dispatch grid size: ceiling division of the
// image dimensions by the workgroup shape.
func workgroupCounts(width, height int) (x, y uint32) {
	x = uint32((width + workgroupWidth - 1) / workgroupWidth)    //nolint:gosec // dimensions fit uint32
	y = uint32((height + workgroupHeight - 1) / workgroupHeight) //nolint:gosec // dimensions fit uint32
	return x, y
}
