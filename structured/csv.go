package structured

import "bytes"

// CSVHeader holds the parsed header row: per-column key ranges into the
// buffer plus their well-known classification. Rows map to columns
// positionally, so the classification is done once here.
type CSVHeader struct {
	Columns []FieldRef // only KeyOffset/KeyLen are meaningful
	Kinds   []Kind
}

// ParseCSVHeader parses the first line of buf as a header row. Columns are
// trimmed of spaces and tabs and of a single pair of surrounding quotes.
// Returns nil when the first line is empty.
func ParseCSVHeader(buf []byte) *CSVHeader {
	lineEnd := bytes.IndexByte(buf, '\n')
	if lineEnd < 0 {
		lineEnd = len(buf)
	}
	headerLine := buf[:lineEnd]
	if n := len(headerLine); n > 0 && headerLine[n-1] == '\r' {
		headerLine = headerLine[:n-1]
	}
	if len(headerLine) == 0 {
		return nil
	}

	header := &CSVHeader{}
	pos := 0
	for {
		end := bytes.IndexByte(headerLine[pos:], ',')
		fieldEnd := len(headerLine)
		if end >= 0 {
			fieldEnd = pos + end
		}

		start, stop := trimCSVField(headerLine, pos, fieldEnd)
		header.Columns = append(header.Columns, FieldRef{
			KeyOffset: uint64(start),
			KeyLen:    uint32(stop - start),
		})
		header.Kinds = append(header.Kinds, ClassifyKey(headerLine[start:stop]))

		if end < 0 {
			break
		}
		pos = fieldEnd + 1
	}
	return header
}

// NumColumns returns the header width.
func (h *CSVHeader) NumColumns() int {
	return len(h.Columns)
}

// trimCSVField trims spaces and tabs, then one pair of surrounding quotes,
// returning the trimmed [start, stop) range.
func trimCSVField(line []byte, start, stop int) (int, int) {
	for start < stop && (line[start] == ' ' || line[start] == '\t') {
		start++
	}
	for stop > start && (line[stop-1] == ' ' || line[stop-1] == '\t') {
		stop--
	}
	if stop-start >= 2 && line[start] == '"' && line[stop-1] == '"' {
		start++
		stop--
	}
	return start, stop
}

// CSVHeaderEnd returns the offset just past the header line's newline, or
// len(buf) when there is no newline.
func CSVHeaderEnd(buf []byte) int {
	if pos := bytes.IndexByte(buf, '\n'); pos >= 0 {
		return pos + 1
	}
	return len(buf)
}

// ParseCSVLine maps line's fields positionally onto header columns and
// appends one record to batch. Extra row fields are ignored; missing fields
// are simply absent. Quoted field ranges exclude the enclosing quotes;
// doubled quotes inside are left in place.
func ParseCSVLine(line []byte, baseOffset uint64, header *CSVHeader, batch *Batch) {
	if len(line) == 0 {
		return
	}

	batch.BeginRecord(baseOffset, uint32(len(line)))

	colIdx := 0
	i := 0
	length := len(line)

	for i < length && colIdx < header.NumColumns() {
		valStart, valEnd := parseCSVField(line, &i)

		col := header.Columns[colIdx]
		fieldIdx := uint32(len(batch.Fields))
		batch.PushField(FieldRef{
			KeyOffset: col.KeyOffset,
			KeyLen:    col.KeyLen,
			ValOffset: baseOffset + uint64(valStart),
			ValLen:    uint32(valEnd - valStart),
		})

		switch header.Kinds[colIdx] {
		case KindTimestamp:
			batch.SetWellKnownTimestamp(fieldIdx)
		case KindLevel:
			batch.SetWellKnownLevel(fieldIdx)
		case KindMessage:
			batch.SetWellKnownMessage(fieldIdx)
		case KindComponent:
			batch.SetWellKnownComponent(fieldIdx)
		}

		colIdx++
		if i < length && line[i] == ',' {
			i++
		}
	}

	batch.EndRecord()
}

// parseCSVField advances *i past one field and returns its range. A field is
// quoted when it begins with '"'; inside, "" is a literal quote the parser
// skips past. Unquoted fields end at ',', '\n', or '\r'.
func parseCSVField(line []byte, i *int) (int, int) {
	length := len(line)
	if *i >= length {
		return *i, *i
	}

	if line[*i] == '"' {
		*i++
		start := *i
		for *i < length {
			if line[*i] == '"' {
				if *i+1 < length && line[*i+1] == '"' {
					*i += 2
				} else {
					end := *i
					*i++ // skip closing quote
					return start, end
				}
			} else {
				*i++
			}
		}
		return start, *i
	}

	start := *i
	for *i < length && line[*i] != ',' && line[*i] != '\n' && line[*i] != '\r' {
		*i++
	}
	return start, *i
}

// ParseCSVLines parses lines [startIdx, endIdx) of buf into batch using the
// positional header mapping.
func ParseCSVLines(buf []byte, lineStarts []uint64, startIdx, endIdx int, header *CSVHeader, batch *Batch) {
	numLines := len(lineStarts)

	for i := startIdx; i < endIdx; i++ {
		lineStart := int(lineStarts[i])
		var lineEnd int
		if i+1 < numLines {
			lineEnd = trimLineEnd(buf, int(lineStarts[i+1]))
		} else {
			lineEnd = len(buf)
			if lineEnd > 0 && buf[lineEnd-1] == '\n' {
				lineEnd--
			}
			if lineEnd > 0 && buf[lineEnd-1] == '\r' {
				lineEnd--
			}
		}
		if lineStart >= len(buf) || lineStart >= lineEnd {
			continue
		}
		ParseCSVLine(buf[lineStart:lineEnd], uint64(lineStart), header, batch)
	}
}
