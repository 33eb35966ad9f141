// Package logparser splits fixed-shape plain-text log lines
// (<ISO-8601-Z> <LEVEL> <component> <message…>) into the columnar batch
// model. Timestamp digits are decoded with SWAR arithmetic rather than
// per-byte parsing.
package logparser

import (
	"bytes"
	"encoding/binary"

	"github.com/Lunyn-HFT/pandora/data"
)

// swarParse4 decodes four ASCII digits at b[off:]: load as a little-endian
// word, subtract the ASCII-zero broadcast, then a mixed-radix dot product
// over the digit lanes.
func swarParse4(b []byte, off int) uint32 {
	chunk := binary.LittleEndian.Uint32(b[off:])
	digits := chunk - 0x30303030
	d0 := digits & 0xFF
	d1 := (digits >> 8) & 0xFF
	d2 := (digits >> 16) & 0xFF
	d3 := (digits >> 24) & 0xFF
	return d0*1000 + d1*100 + d2*10 + d3
}

func swarParse2(b []byte, off int) uint32 {
	chunk := uint32(binary.LittleEndian.Uint16(b[off:]))
	digits := chunk - 0x3030
	d0 := digits & 0xFF
	d1 := (digits >> 8) & 0xFF
	return d0*10 + d1
}

// monthDays is the cumulative day count before each month, non-leap year.
var monthDays = [12]uint32{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

func isLeapYear(y int64) bool {
	return (y%4 == 0 && y%100 != 0) || y%400 == 0
}

// parseTimestampFast decodes "YYYY-MM-DDTHH:MM:SSZ" into seconds since
// epoch. Separator bytes are not validated. Inputs shorter than 20 bytes and
// dates before 1970 yield 0. The Z suffix is assumed, not checked.
func parseTimestampFast(b []byte) uint64 {
	if len(b) < 20 {
		return 0
	}
	_ = b[18]

	year := int64(swarParse4(b, 0))
	month := swarParse2(b, 5)
	day := swarParse2(b, 8)
	hour := int64(swarParse2(b, 11))
	min := int64(swarParse2(b, 14))
	sec := int64(swarParse2(b, 17))

	days := (year - 1970) * 365
	if year > 1970 {
		days += (year - 1969) / 4
		days -= (year - 1901) / 100
		days += (year - 1601) / 400
	}
	if month >= 1 && month <= 12 {
		days += int64(monthDays[month-1])
		if month > 2 && isLeapYear(year) {
			days++
		}
	}
	days += int64(day) - 1

	totalSecs := days*86400 + hour*3600 + min*60 + sec
	if totalSecs < 0 {
		return 0
	}
	return uint64(totalSecs)
}

// findFirstThreeSpaces locates the first three space bytes of line; missing
// positions are -1. bytes.IndexByte is vectorized on amd64.
func findFirstThreeSpaces(line []byte) [3]int {
	result := [3]int{-1, -1, -1}
	start := 0
	for slot := range result {
		pos := bytes.IndexByte(line[start:], ' ')
		if pos < 0 {
			break
		}
		result[slot] = start + pos
		start += pos + 1
	}
	return result
}

// ParseLine splits one line into record index of batch. The first three
// spaces are the significant separators; missing separators degrade so that
// everything past the last one found becomes the message, and the fields
// whose separator is missing are left empty (level Unknown).
func ParseLine(line []byte, index int, batch *data.Batch, baseOffset uint64) {
	spaces := findFirstThreeSpaces(line)
	space1 := spaces[0]

	if space1 < 0 {
		batch.Timestamps[index] = 0
		batch.Levels[index] = data.Unknown
		batch.ComponentOffsets[index] = baseOffset
		batch.ComponentLens[index] = 0
		batch.MessageOffsets[index] = baseOffset
		batch.MessageLens[index] = uint32(len(line))
		return
	}

	batch.Timestamps[index] = parseTimestampFast(line[:space1])

	afterTS := space1 + 1
	space2 := spaces[1]

	if space2 < 0 {
		batch.Levels[index] = data.Unknown
		batch.ComponentOffsets[index] = baseOffset + uint64(afterTS)
		batch.ComponentLens[index] = 0
		batch.MessageOffsets[index] = baseOffset + uint64(afterTS)
		batch.MessageLens[index] = uint32(len(line) - afterTS)
		return
	}

	batch.Levels[index] = data.LevelFromBytes(line[afterTS:space2])

	afterLevel := space2 + 1
	space3 := spaces[2]

	if space3 < 0 {
		batch.ComponentOffsets[index] = baseOffset + uint64(afterLevel)
		batch.ComponentLens[index] = 0
		batch.MessageOffsets[index] = baseOffset + uint64(afterLevel)
		batch.MessageLens[index] = uint32(len(line) - afterLevel)
		return
	}

	batch.ComponentOffsets[index] = baseOffset + uint64(afterLevel)
	batch.ComponentLens[index] = uint32(space3 - afterLevel)

	afterComponent := space3 + 1
	msgLen := 0
	if afterComponent < len(line) {
		msgLen = len(line) - afterComponent
	}
	batch.MessageOffsets[index] = baseOffset + uint64(afterComponent)
	batch.MessageLens[index] = uint32(msgLen)
}

// ParseLinesRange parses lines [startIdx, endIdx) of buf, delimited by
// lineStarts, into batch by index.
func ParseLinesRange(buf []byte, lineStarts []uint64, startIdx, endIdx int, batch *data.Batch) {
	numLines := len(lineStarts)
	for i := startIdx; i < endIdx; i++ {
		lineStart := int(lineStarts[i])
		lineEnd := len(buf)
		if i+1 < numLines {
			next := int(lineStarts[i+1])
			if next > 0 && next <= len(buf) && buf[next-1] == '\n' {
				lineEnd = next - 1
			} else {
				lineEnd = next
			}
		}

		if lineStart >= len(buf) || lineStart >= lineEnd {
			continue
		}
		ParseLine(buf[lineStart:lineEnd], i, batch, uint64(lineStart))
	}
}
