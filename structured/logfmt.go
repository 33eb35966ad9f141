package structured

// ParseLogfmtLine extracts space-separated key=value tokens from line into
// batch. A token without '=' is kept as a key with an empty value. Quoted
// values follow the JSON escape rule: a backslash skips the next byte, and
// the recorded range excludes the quotes.
func ParseLogfmtLine(line []byte, baseOffset uint64, batch *Batch) {
	length := len(line)
	if length == 0 {
		return
	}

	batch.BeginRecord(baseOffset, uint32(length))

	i := 0
	for {
		for i < length && line[i] == ' ' {
			i++
		}
		if i >= length {
			break
		}

		keyStart := i
		for i < length && line[i] != '=' && line[i] != ' ' {
			i++
		}
		keyEnd := i

		if i >= length || line[i] != '=' {
			// Lone key: synthesize an empty value.
			if keyEnd > keyStart {
				fieldIdx := uint32(len(batch.Fields))
				batch.PushField(FieldRef{
					KeyOffset: baseOffset + uint64(keyStart),
					KeyLen:    uint32(keyEnd - keyStart),
					ValOffset: baseOffset + uint64(keyEnd),
					ValLen:    0,
				})
				classifyAndSet(line[keyStart:keyEnd], fieldIdx, batch)
			}
			continue
		}

		i++ // consume '='

		var valStart, valEnd int
		if i < length && line[i] == '"' {
			i++
			valStart = i
			for i < length && line[i] != '"' {
				if line[i] == '\\' {
					i++
				}
				i++
			}
			valEnd = i
			if valEnd > length {
				valEnd = length
			}
			if i < length {
				i++ // skip closing quote
			}
		} else {
			valStart = i
			for i < length && line[i] != ' ' {
				i++
			}
			valEnd = i
		}

		fieldIdx := uint32(len(batch.Fields))
		batch.PushField(FieldRef{
			KeyOffset: baseOffset + uint64(keyStart),
			KeyLen:    uint32(keyEnd - keyStart),
			ValOffset: baseOffset + uint64(valStart),
			ValLen:    uint32(valEnd - valStart),
		})
		classifyAndSet(line[keyStart:keyEnd], fieldIdx, batch)
	}

	batch.EndRecord()
}

// ParseLogfmtLines parses lines [startIdx, endIdx) of buf into batch,
// skipping lines that are entirely spaces and tabs.
func ParseLogfmtLines(buf []byte, lineStarts []uint64, startIdx, endIdx int, batch *Batch) {
	numLines := len(lineStarts)

	for i := startIdx; i < endIdx; i++ {
		lineStart := int(lineStarts[i])
		lineEnd := len(buf)
		if i+1 < numLines {
			lineEnd = trimLineEnd(buf, int(lineStarts[i+1]))
		}
		if lineStart >= len(buf) || lineStart >= lineEnd {
			continue
		}

		line := buf[lineStart:lineEnd]
		if allBlank(line) {
			continue
		}
		ParseLogfmtLine(line, uint64(lineStart), batch)
	}
}

func allBlank(line []byte) bool {
	for _, b := range line {
		if b != ' ' && b != '\t' {
			return false
		}
	}
	return true
}
