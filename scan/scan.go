// Package scan locates newline positions in large byte buffers using wide
// block kernels with 64-bit structural masks.
//
// Three interchangeable kernels exist: a 64-byte-block kernel used on CPUs
// reporting AVX-512BW, a 32-byte-lane kernel used on CPUs reporting AVX2, and
// a scalar byte loop. All three produce bit-identical output for the same
// input; the widest supported kernel is selected once per process.
package scan

import (
	"encoding/binary"
	"math/bits"

	"github.com/klauspost/cpuid/v2"
)

// SWAR constants for byte-parallel newline detection inside a uint64 word.
const (
	newlineBroadcast = 0x0A0A0A0A0A0A0A0A
	swarLow7         = 0x7F7F7F7F7F7F7F7F
	swarHigh         = 0x8080808080808080
	// maskCompress gathers the eight per-byte high bits of a zero-detect word
	// into the low 8 bits: bit i of the result corresponds to byte i.
	maskCompress = 0x0002040810204081
)

type kernel uint8

const (
	kernelScalar kernel = iota
	kernelWide32
	kernelWide64
)

// active is the process-wide kernel choice. Set once at init, immutable after.
var active = detectKernel()

func detectKernel() kernel {
	if cpuid.CPU.Supports(cpuid.AVX512F, cpuid.AVX512BW) {
		return kernelWide64
	}
	if cpuid.CPU.Supports(cpuid.AVX2) {
		return kernelWide32
	}
	return kernelScalar
}

// Capability returns a human-readable description of the selected kernel.
func Capability() string {
	switch active {
	case kernelWide64:
		return "AVX-512 class (64-byte blocks)"
	case kernelWide32:
		return "AVX2 class (32-byte lanes)"
	default:
		return "Scalar (no wide blocks)"
	}
}

// newlineMask8 returns an 8-bit mask with bit i set when byte i of w is '\n'.
func newlineMask8(w uint64) uint64 {
	v := w ^ newlineBroadcast
	// The high bit of a byte of z is set exactly when that byte of v is zero;
	// no carry crosses a byte boundary, so a neighbouring byte is never flagged.
	z := ^(((v & swarLow7) + swarLow7) | v) & swarHigh
	return (z * maskCompress) >> 56
}

// blockMask64 builds the 64-bit newline mask for one 64-byte block.
// Bit i corresponds to data[off+i].
func blockMask64(data []byte, off int) uint64 {
	_ = data[off+63]
	var m uint64
	m |= newlineMask8(binary.LittleEndian.Uint64(data[off:]))
	m |= newlineMask8(binary.LittleEndian.Uint64(data[off+8:])) << 8
	m |= newlineMask8(binary.LittleEndian.Uint64(data[off+16:])) << 16
	m |= newlineMask8(binary.LittleEndian.Uint64(data[off+24:])) << 24
	m |= newlineMask8(binary.LittleEndian.Uint64(data[off+32:])) << 32
	m |= newlineMask8(binary.LittleEndian.Uint64(data[off+40:])) << 40
	m |= newlineMask8(binary.LittleEndian.Uint64(data[off+48:])) << 48
	m |= newlineMask8(binary.LittleEndian.Uint64(data[off+56:])) << 56
	return m
}

// laneMask32 builds the 32-bit newline mask for one 32-byte lane.
func laneMask32(data []byte, off int) uint64 {
	_ = data[off+31]
	var m uint64
	m |= newlineMask8(binary.LittleEndian.Uint64(data[off:]))
	m |= newlineMask8(binary.LittleEndian.Uint64(data[off+8:])) << 8
	m |= newlineMask8(binary.LittleEndian.Uint64(data[off+16:])) << 16
	m |= newlineMask8(binary.LittleEndian.Uint64(data[off+24:])) << 24
	return m
}

// extractPositions appends line-start offsets for every set bit in mask.
// A set bit at position p means a newline at base+p; the line start base+p+1
// is appended only while it stays inside the buffer.
func extractPositions(mask, base, totalLen uint64, dst []uint64) []uint64 {
	for m := mask; m != 0; m &= m - 1 {
		pos := uint64(bits.TrailingZeros64(m))
		next := base + pos + 1
		if next < totalLen {
			dst = append(dst, next)
		}
	}
	return dst
}

// Region appends to dst the absolute offset of every byte immediately
// following a '\n' inside data, provided that offset is strictly less than
// totalLen. globalBase is data's absolute offset within the full buffer.
// No starting sentinel is appended; the caller seeds one.
func Region(data []byte, globalBase, totalLen uint64, dst []uint64) []uint64 {
	switch active {
	case kernelWide64:
		return regionWide64(data, globalBase, totalLen, dst)
	case kernelWide32:
		return regionWide32(data, globalBase, totalLen, dst)
	default:
		return regionScalar(data, globalBase, totalLen, dst)
	}
}

func regionWide64(data []byte, globalBase, totalLen uint64, dst []uint64) []uint64 {
	length := len(data)
	offset := 0

	unrolledEnd := 0
	if length >= 256 {
		unrolledEnd = length - 255
	}
	for offset < unrolledEnd {
		m0 := blockMask64(data, offset)
		m1 := blockMask64(data, offset+64)
		m2 := blockMask64(data, offset+128)
		m3 := blockMask64(data, offset+192)
		dst = extractPositions(m0, globalBase+uint64(offset), totalLen, dst)
		dst = extractPositions(m1, globalBase+uint64(offset)+64, totalLen, dst)
		dst = extractPositions(m2, globalBase+uint64(offset)+128, totalLen, dst)
		dst = extractPositions(m3, globalBase+uint64(offset)+192, totalLen, dst)
		offset += 256
	}

	singleEnd := 0
	if length >= 64 {
		singleEnd = length - 63
	}
	for offset < singleEnd {
		m := blockMask64(data, offset)
		dst = extractPositions(m, globalBase+uint64(offset), totalLen, dst)
		offset += 64
	}

	return regionScalarTail(data, offset, globalBase, totalLen, dst)
}

func regionWide32(data []byte, globalBase, totalLen uint64, dst []uint64) []uint64 {
	length := len(data)
	offset := 0

	unrolledEnd := 0
	if length >= 256 {
		unrolledEnd = length - 255
	}
	for offset < unrolledEnd {
		m0 := laneMask32(data, offset) | laneMask32(data, offset+32)<<32
		m1 := laneMask32(data, offset+64) | laneMask32(data, offset+96)<<32
		m2 := laneMask32(data, offset+128) | laneMask32(data, offset+160)<<32
		m3 := laneMask32(data, offset+192) | laneMask32(data, offset+224)<<32
		dst = extractPositions(m0, globalBase+uint64(offset), totalLen, dst)
		dst = extractPositions(m1, globalBase+uint64(offset)+64, totalLen, dst)
		dst = extractPositions(m2, globalBase+uint64(offset)+128, totalLen, dst)
		dst = extractPositions(m3, globalBase+uint64(offset)+192, totalLen, dst)
		offset += 256
	}

	singleEnd := 0
	if length >= 64 {
		singleEnd = length - 63
	}
	for offset < singleEnd {
		m := laneMask32(data, offset) | laneMask32(data, offset+32)<<32
		dst = extractPositions(m, globalBase+uint64(offset), totalLen, dst)
		offset += 64
	}

	laneEnd := 0
	if length >= 32 {
		laneEnd = length - 31
	}
	for offset < laneEnd {
		m := laneMask32(data, offset)
		dst = extractPositions(m, globalBase+uint64(offset), totalLen, dst)
		offset += 32
	}

	return regionScalarTail(data, offset, globalBase, totalLen, dst)
}

func regionScalar(data []byte, globalBase, totalLen uint64, dst []uint64) []uint64 {
	return regionScalarTail(data, 0, globalBase, totalLen, dst)
}

func regionScalarTail(data []byte, offset int, globalBase, totalLen uint64, dst []uint64) []uint64 {
	for ; offset < len(data); offset++ {
		if data[offset] == '\n' {
			next := globalBase + uint64(offset) + 1
			if next < totalLen {
				dst = append(dst, next)
			}
		}
	}
	return dst
}
