// Package structured holds the columnar record model for semi-structured
// logs (json, logfmt, csv) plus the zero-copy per-format parsers. Every field
// is a (key offset, key len, value offset, value len) reference into the
// original byte buffer; nothing is copied or decoded.
package structured

import "unsafe"

// FieldRef points at one key/value pair inside the backing buffer.
type FieldRef struct {
	KeyOffset uint64
	KeyLen    uint32
	ValOffset uint64
	ValLen    uint32
}

// NoField is the sentinel for an absent well-known index.
const NoField = ^uint32(0)

// WellKnown holds per-record absolute indices into Batch.Fields identifying
// the timestamp, level, message, and component fields, or NoField when absent.
// When a key repeats, the last occurrence wins.
type WellKnown struct {
	Timestamp uint32
	Level     uint32
	Message   uint32
	Component uint32
}

func defaultWellKnown() WellKnown {
	return WellKnown{Timestamp: NoField, Level: NoField, Message: NoField, Component: NoField}
}

// Batch is an append-only columnar batch of structured records.
//
// FieldStarts is CSR-style: record i owns Fields[FieldStarts[i]:FieldStarts[i+1]].
// Data is a back-reference to the input buffer, not a copy; the buffer must
// outlive the batch.
type Batch struct {
	Fields      []FieldRef
	FieldStarts []uint32
	WellKnown   []WellKnown
	LineOffsets []uint64
	LineLens    []uint32

	Data []byte

	Len int
}

// NewBatch allocates a batch sized for recordCap records and fieldCap fields,
// with FieldStarts seeded to 0.
func NewBatch(recordCap, fieldCap int, buf []byte) *Batch {
	starts := make([]uint32, 1, recordCap+1)
	starts[0] = 0
	return &Batch{
		Fields:      make([]FieldRef, 0, fieldCap),
		FieldStarts: starts,
		WellKnown:   make([]WellKnown, 0, recordCap),
		LineOffsets: make([]uint64, 0, recordCap),
		LineLens:    make([]uint32, 0, recordCap),
		Data:        buf,
	}
}

// BeginRecord opens a new record slot with all well-known indices absent.
func (b *Batch) BeginRecord(lineOffset uint64, lineLen uint32) {
	b.LineOffsets = append(b.LineOffsets, lineOffset)
	b.LineLens = append(b.LineLens, lineLen)
	b.WellKnown = append(b.WellKnown, defaultWellKnown())
	b.Len++
}

// PushField appends a field to the current record.
func (b *Batch) PushField(f FieldRef) {
	b.Fields = append(b.Fields, f)
}

// EndRecord closes the current record.
func (b *Batch) EndRecord() {
	b.FieldStarts = append(b.FieldStarts, uint32(len(b.Fields)))
}

// SetWellKnownTimestamp marks a field of the current record as the timestamp.
func (b *Batch) SetWellKnownTimestamp(fieldIdx uint32) {
	if n := len(b.WellKnown); n > 0 {
		b.WellKnown[n-1].Timestamp = fieldIdx
	}
}

// SetWellKnownLevel marks a field of the current record as the level.
func (b *Batch) SetWellKnownLevel(fieldIdx uint32) {
	if n := len(b.WellKnown); n > 0 {
		b.WellKnown[n-1].Level = fieldIdx
	}
}

// SetWellKnownMessage marks a field of the current record as the message.
func (b *Batch) SetWellKnownMessage(fieldIdx uint32) {
	if n := len(b.WellKnown); n > 0 {
		b.WellKnown[n-1].Message = fieldIdx
	}
}

// SetWellKnownComponent marks a field of the current record as the component.
func (b *Batch) SetWellKnownComponent(fieldIdx uint32) {
	if n := len(b.WellKnown); n > 0 {
		b.WellKnown[n-1].Component = fieldIdx
	}
}

// FieldCount returns the number of fields in record i.
func (b *Batch) FieldCount(i int) int {
	return int(b.FieldStarts[i+1] - b.FieldStarts[i])
}

// RecordFields returns record i's field slice.
func (b *Batch) RecordFields(i int) []FieldRef {
	return b.Fields[b.FieldStarts[i]:b.FieldStarts[i+1]]
}

func bytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// FieldKey returns the field's key as a zero-copy view into the buffer.
func (b *Batch) FieldKey(f FieldRef) string {
	return bytesToString(b.Data[f.KeyOffset : f.KeyOffset+uint64(f.KeyLen)])
}

// FieldValue returns the field's value as a zero-copy view into the buffer.
func (b *Batch) FieldValue(f FieldRef) string {
	return bytesToString(b.Data[f.ValOffset : f.ValOffset+uint64(f.ValLen)])
}

// RawLine returns record i's raw input line.
func (b *Batch) RawLine(i int) string {
	off := b.LineOffsets[i]
	return bytesToString(b.Data[off : off+uint64(b.LineLens[i])])
}

func (b *Batch) wellKnownValue(i int, idx uint32) (string, bool) {
	if idx == NoField {
		return "", false
	}
	return b.FieldValue(b.Fields[idx]), true
}

// TimestampValue returns record i's timestamp field value, if present.
func (b *Batch) TimestampValue(i int) (string, bool) {
	return b.wellKnownValue(i, b.WellKnown[i].Timestamp)
}

// LevelValue returns record i's level field value, if present.
func (b *Batch) LevelValue(i int) (string, bool) {
	return b.wellKnownValue(i, b.WellKnown[i].Level)
}

// MessageValue returns record i's message field value, if present.
func (b *Batch) MessageValue(i int) (string, bool) {
	return b.wellKnownValue(i, b.WellKnown[i].Message)
}

// ComponentValue returns record i's component field value, if present.
func (b *Batch) ComponentValue(i int) (string, bool) {
	return b.wellKnownValue(i, b.WellKnown[i].Component)
}
