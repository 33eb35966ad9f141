package pipeline

import (
	"bytes"
	"io"
	"os"

	"github.com/Lunyn-HFT/pandora/config"
	"github.com/Lunyn-HFT/pandora/data"
)

// readFull reads until buf is full or the reader is drained.
func readFull(r io.Reader, buf []byte) (int, error) {
	filled := 0
	for filled < len(buf) {
		n, err := r.Read(buf[filled:])
		filled += n
		if err == io.EOF {
			return filled, nil
		}
		if err != nil {
			return filled, err
		}
		if n == 0 {
			break
		}
	}
	return filled, nil
}

// parsePlainOwned runs the fused scan+parse over one complete streaming
// segment. The segment is an owned buffer; the batch keeps it alive through
// its Data reference.
func parsePlainOwned(buf []byte) (*data.Batch, float64, float64) {
	return parsePlainChunk(buf, 0, len(buf))
}

// ParsePlainStreamed parses a plain-text file with fixed-size reads. A
// leftover buffer carries the bytes after the last complete line across
// reads; at EOF the remaining leftover is parsed as a final region with no
// trailing newline required. Every segment's batch is retained alongside its
// owning buffer.
func ParsePlainStreamed(file *os.File, fileSize int64, workers int) (*PlainResult, error) {
	_ = workers // streaming trades parallelism for memory boundedness
	if fileSize == 0 {
		return &PlainResult{}, nil
	}

	fadviseSequential(file, fileSize)

	segmentSize := config.ChunkBytes()
	readBuf := make([]byte, segmentSize)
	var leftover []byte

	result := &PlainResult{}

	for {
		bytesRead, err := readFull(file, readBuf)
		if err != nil {
			return nil, err
		}
		atEOF := bytesRead < segmentSize

		var workBuf []byte
		if len(leftover) == 0 {
			if bytesRead == 0 {
				break
			}
			workBuf = append(make([]byte, 0, bytesRead), readBuf[:bytesRead]...)
		} else {
			workBuf = append(leftover, readBuf[:bytesRead]...)
			leftover = nil
		}
		if len(workBuf) == 0 {
			break
		}

		completeEnd := len(workBuf)
		if !atEOF {
			pos := bytes.LastIndexByte(workBuf, '\n')
			if pos < 0 {
				leftover = workBuf
				continue
			}
			completeEnd = pos + 1
		}

		if completeEnd < len(workBuf) {
			leftover = append([]byte(nil), workBuf[completeEnd:]...)
		}
		workBuf = workBuf[:completeEnd]

		if len(workBuf) == 0 {
			if atEOF {
				break
			}
			continue
		}

		batch, scanMS, parseMS := parsePlainOwned(workBuf)
		result.TotalLines += batch.Len
		result.ScanTimeMS += scanMS
		result.ParseTimeMS += parseMS
		result.Batches = append(result.Batches, batch)

		if atEOF {
			break
		}
	}

	return result, nil
}
