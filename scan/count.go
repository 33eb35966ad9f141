package scan

import "math/bits"

// Count returns the number of '\n' bytes in data. It consumes the same block
// masks as Region but uses popcount instead of bit iteration.
func Count(data []byte) uint64 {
	switch active {
	case kernelWide64:
		return countWide64(data)
	case kernelWide32:
		return countWide32(data)
	default:
		return countScalar(data, 0)
	}
}

func countWide64(data []byte) uint64 {
	length := len(data)
	offset := 0
	var count uint64

	unrolledEnd := 0
	if length >= 256 {
		unrolledEnd = length - 255
	}
	for offset < unrolledEnd {
		count += uint64(bits.OnesCount64(blockMask64(data, offset)))
		count += uint64(bits.OnesCount64(blockMask64(data, offset+64)))
		count += uint64(bits.OnesCount64(blockMask64(data, offset+128)))
		count += uint64(bits.OnesCount64(blockMask64(data, offset+192)))
		offset += 256
	}

	singleEnd := 0
	if length >= 64 {
		singleEnd = length - 63
	}
	for offset < singleEnd {
		count += uint64(bits.OnesCount64(blockMask64(data, offset)))
		offset += 64
	}

	return count + countScalar(data, offset)
}

func countWide32(data []byte) uint64 {
	length := len(data)
	offset := 0
	var count uint64

	unrolledEnd := 0
	if length >= 256 {
		unrolledEnd = length - 255
	}
	for offset < unrolledEnd {
		count += uint64(bits.OnesCount64(laneMask32(data, offset) | laneMask32(data, offset+32)<<32))
		count += uint64(bits.OnesCount64(laneMask32(data, offset+64) | laneMask32(data, offset+96)<<32))
		count += uint64(bits.OnesCount64(laneMask32(data, offset+128) | laneMask32(data, offset+160)<<32))
		count += uint64(bits.OnesCount64(laneMask32(data, offset+192) | laneMask32(data, offset+224)<<32))
		offset += 256
	}

	laneEnd := 0
	if length >= 32 {
		laneEnd = length - 31
	}
	for offset < laneEnd {
		count += uint64(bits.OnesCount64(laneMask32(data, offset)))
		offset += 32
	}

	return count + countScalar(data, offset)
}

func countScalar(data []byte, offset int) uint64 {
	var count uint64
	for ; offset < len(data); offset++ {
		if data[offset] == '\n' {
			count++
		}
	}
	return count
}
