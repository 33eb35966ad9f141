// Package data holds the columnar record model for the fixed plain-text log
// shape, plus the aggregated statistics reported after a parse run.
package data

import "unsafe"

// Level is a parsed log severity.
type Level uint8

const (
	Debug Level = iota
	Info
	Warn
	Error
	Fatal
	Unknown Level = 255
)

// LevelFromBytes decodes a level token by (first byte, length) dispatch.
// Anything unrecognized maps to Unknown; no error is produced.
func LevelFromBytes(b []byte) Level {
	if len(b) == 0 {
		return Unknown
	}
	switch {
	case b[0] == 'D' && len(b) == 5:
		return Debug
	case b[0] == 'I' && len(b) == 4:
		return Info
	case b[0] == 'W' && len(b) == 4:
		return Warn
	case b[0] == 'E' && len(b) == 5:
		return Error
	case b[0] == 'F' && len(b) == 5:
		return Fatal
	default:
		return Unknown
	}
}

func (l Level) String() string {
	switch l {
	case Debug:
		return "Debug"
	case Info:
		return "Info"
	case Warn:
		return "Warn"
	case Error:
		return "Error"
	case Fatal:
		return "Fatal"
	default:
		return "Unknown"
	}
}

// Batch is a columnar batch of plain-text records. Component and message are
// stored as offset/length pairs into the backing buffer; the fixed-width
// timestamp and level columns are what make this layout faster than the
// general field table for the fixed shape.
//
// Data is a back-reference to the input buffer, not a copy. The buffer must
// stay alive (and unmodified) for as long as the batch is queried.
type Batch struct {
	Timestamps []uint64
	Levels     []Level

	ComponentOffsets []uint64
	ComponentLens    []uint32

	MessageOffsets []uint64
	MessageLens    []uint32

	Data []byte

	Len int
}

// NewBatch allocates a batch with capacity slots, all pre-zeroed so parsers
// can write by index without appending.
func NewBatch(capacity int, buf []byte) *Batch {
	return &Batch{
		Timestamps:       make([]uint64, capacity),
		Levels:           make([]Level, capacity),
		ComponentOffsets: make([]uint64, capacity),
		ComponentLens:    make([]uint32, capacity),
		MessageOffsets:   make([]uint64, capacity),
		MessageLens:      make([]uint32, capacity),
		Data:             buf,
		Len:              capacity,
	}
}

// bytesToString converts a byte slice to a string without copying. Safe while
// the backing buffer is immutable, which holds for both the memory map and the
// owned streaming segments.
func bytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// Component returns record i's component as a zero-copy view into the buffer.
func (b *Batch) Component(i int) string {
	off := b.ComponentOffsets[i]
	return bytesToString(b.Data[off : off+uint64(b.ComponentLens[i])])
}

// Message returns record i's message as a zero-copy view into the buffer.
func (b *Batch) Message(i int) string {
	off := b.MessageOffsets[i]
	return bytesToString(b.Data[off : off+uint64(b.MessageLens[i])])
}
