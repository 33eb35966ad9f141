// Package generator writes synthetic log files in the four supported
// formats, sized by target byte count. Output is deterministic: a fixed-seed
// LCG drives the level, component, and message choices, and the timestamp is
// a clock rolling one second per line.
package generator

import (
	"bufio"
	"fmt"
	"io"

	"github.com/Lunyn-HFT/pandora/format"
)

var levels = [5]string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}
var levelsLower = [5]string{"debug", "info", "warn", "error", "fatal"}

var components = [10]string{
	"api-server",
	"auth-service",
	"database-pool",
	"cache-service",
	"payment-processor",
	"user-service",
	"notification-engine",
	"search-indexer",
	"load-balancer",
	"rate-limiter",
}

// messages[level] holds (headline, detail) pairs matching that severity.
var messages = [5][5][2]string{
	{
		{"hit_ratio=0.85", "evictions=1024"},
		{"cache_size=4096", "memory_mb=256"},
		{"query_plan=sequential", "index_used=false"},
		{"gc_pause_ms=12", "heap_mb=512"},
		{"pool_size=50", "active=23"},
	},
	{
		{"request_id=abc123", "latency_ms=42 user_id=1001 status=200"},
		{"request_id=def456", "latency_ms=15 user_id=2002 status=200"},
		{"request_id=ghi789", "latency_ms=128 user_id=3003 status=201"},
		{"session_created", "user_id=4004 ip=10.0.0.1"},
		{"batch_processed", "items=500 duration_ms=340"},
	},
	{
		{"auth_failed", "user=john ip=192.168.1.1"},
		{"rate_limited", "client=api_key_42 requests=1001 limit=1000"},
		{"slow_query", "duration_ms=2500 table=orders"},
		{"connection_pool_low", "available=2 max=50"},
		{"certificate_expiring", "days_left=14 domain=api.example.com"},
	},
	{
		{"connection_timeout", "retries=3 queue_size=512"},
		{"disk_full", "partition=/data usage=99.2%"},
		{"replication_lag", "lag_seconds=45 primary=db-01"},
		{"oom_kill", "process=worker-7 memory_mb=8192"},
		{"ssl_handshake_failed", "peer=upstream-3 error=cert_expired"},
	},
	{
		{"insufficient_funds", "amount=999.99 account=user123"},
		{"data_corruption", "table=transactions checksum_mismatch=true"},
		{"split_brain", "nodes=3 quorum=false"},
		{"config_invalid", "key=max_connections value=-1"},
		{"panic", "thread=main message=index_out_of_bounds"},
	},
}

const lcgSeed = 0xDEADBEEFCAFEBABE

type clock struct {
	hour, minute, second uint32
}

func (c *clock) tick() {
	c.second++
	if c.second >= 60 {
		c.second = 0
		c.minute++
		if c.minute >= 60 {
			c.minute = 0
			c.hour++
			if c.hour >= 24 {
				c.hour = 0
			}
		}
	}
}

// pick returns the level, component, and message indices for one line and
// the advanced LCG state. Levels follow a weighted distribution: 20% debug,
// 50% info, 15% warn, 10% error, 5% fatal.
func pick(state uint64) (uint64, int, int, int) {
	state = state*6364136223846793005 + 1
	rng := state >> 32

	var levelIdx int
	switch r := rng % 100; {
	case r <= 19:
		levelIdx = 0
	case r <= 69:
		levelIdx = 1
	case r <= 84:
		levelIdx = 2
	case r <= 94:
		levelIdx = 3
	default:
		levelIdx = 4
	}

	compIdx := int((rng >> 8) % uint64(len(components)))
	msgIdx := int((rng >> 16) % uint64(len(messages[levelIdx])))
	return state, levelIdx, compIdx, msgIdx
}

// Result summarizes a generation run.
type Result struct {
	Lines        uint64
	BytesWritten uint64
}

// WritePlain writes fixed-shape plain-text log lines until roughly
// targetBytes have been produced.
func WritePlain(w io.Writer, targetBytes uint64) (Result, error) {
	bw := bufio.NewWriterSize(w, 8*1024*1024)
	var res Result
	state := uint64(lcgSeed)
	var clk clock

	for res.BytesWritten < targetBytes {
		var levelIdx, compIdx, msgIdx int
		state, levelIdx, compIdx, msgIdx = pick(state)
		msg := messages[levelIdx][msgIdx]

		n, err := fmt.Fprintf(bw, "2025-02-12T%02d:%02d:%02dZ %s %s %s %s\n",
			clk.hour, clk.minute, clk.second,
			levels[levelIdx], components[compIdx], msg[0], msg[1])
		if err != nil {
			return res, fmt.Errorf("write failed: %w", err)
		}
		res.BytesWritten += uint64(n)
		res.Lines++
		clk.tick()
	}

	if err := bw.Flush(); err != nil {
		return res, fmt.Errorf("flush failed: %w", err)
	}
	return res, nil
}

// WriteStructured writes synthetic structured logs in the given format until
// roughly targetBytes have been produced. The CSV variant emits its header
// row first.
func WriteStructured(w io.Writer, targetBytes uint64, f format.Format) (Result, error) {
	if f == format.PlainText {
		return WritePlain(w, targetBytes)
	}

	bw := bufio.NewWriterSize(w, 8*1024*1024)
	var res Result
	state := uint64(lcgSeed)
	var clk clock

	if f == format.CSV {
		n, err := fmt.Fprintln(bw, "timestamp,level,component,message")
		if err != nil {
			return res, fmt.Errorf("write failed: %w", err)
		}
		res.BytesWritten += uint64(n)
	}

	for res.BytesWritten < targetBytes {
		var levelIdx, compIdx, msgIdx int
		state, levelIdx, compIdx, msgIdx = pick(state)
		msg := messages[levelIdx][msgIdx]

		var n int
		var err error
		ts := fmt.Sprintf("2025-02-12T%02d:%02d:%02dZ", clk.hour, clk.minute, clk.second)
		switch f {
		case format.JSON:
			n, err = fmt.Fprintf(bw, `{"ts":"%s","level":"%s","component":"%s","msg":"%s %s"}`+"\n",
				ts, levelsLower[levelIdx], components[compIdx], msg[0], msg[1])
		case format.Logfmt:
			n, err = fmt.Fprintf(bw, "ts=%s level=%s component=%s msg=\"%s %s\"\n",
				ts, levelsLower[levelIdx], components[compIdx], msg[0], msg[1])
		case format.CSV:
			n, err = fmt.Fprintf(bw, "%s,%s,%s,\"%s %s\"\n",
				ts, levels[levelIdx], components[compIdx], msg[0], msg[1])
		}
		if err != nil {
			return res, fmt.Errorf("write failed: %w", err)
		}
		res.BytesWritten += uint64(n)
		res.Lines++
		clk.tick()
	}

	if err := bw.Flush(); err != nil {
		return res, fmt.Errorf("flush failed: %w", err)
	}
	return res, nil
}
