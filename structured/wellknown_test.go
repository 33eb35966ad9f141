package structured

import (
	"strings"
	"testing"
)

func TestClassifyKey(t *testing.T) {
	cases := []struct {
		key  string
		want Kind
	}{
		{"timestamp", KindTimestamp},
		{"time", KindTimestamp},
		{"ts", KindTimestamp},
		{"@timestamp", KindTimestamp},
		{"datetime", KindTimestamp},
		{"date", KindTimestamp},
		{"t", KindTimestamp},
		{"created_at", KindTimestamp},
		{"logged_at", KindTimestamp},
		{"event_time", KindTimestamp},
		{"level", KindLevel},
		{"severity", KindLevel},
		{"lvl", KindLevel},
		{"log_level", KindLevel},
		{"loglevel", KindLevel},
		{"log.level", KindLevel},
		{"priority", KindLevel},
		{"sev", KindLevel},
		{"message", KindMessage},
		{"msg", KindMessage},
		{"text", KindMessage},
		{"body", KindMessage},
		{"log", KindMessage},
		{"description", KindMessage},
		{"content", KindMessage},
		{"component", KindComponent},
		{"source", KindComponent},
		{"logger", KindComponent},
		{"module", KindComponent},
		{"service", KindComponent},
		{"caller", KindComponent},
		{"name", KindComponent},
		{"logger_name", KindComponent},
		{"subsystem", KindComponent},
		{"tag", KindComponent},
		{"foobar", KindOther},
		{"", KindOther},
		{"x", KindOther},
		{"times", KindOther},
	}
	for _, c := range cases {
		if got := ClassifyKey([]byte(c.key)); got != c.want {
			t.Errorf("ClassifyKey(%q) = %v, want %v", c.key, got, c.want)
		}
	}
}

func TestClassifyKeyCaseInsensitive(t *testing.T) {
	cases := []struct {
		key  string
		want Kind
	}{
		{"LEVEL", KindLevel},
		{"Timestamp", KindTimestamp},
		{"MSG", KindMessage},
		{"Component", KindComponent},
		{"Log.Level", KindLevel},
	}
	for _, c := range cases {
		if got := ClassifyKey([]byte(c.key)); got != c.want {
			t.Errorf("ClassifyKey(%q) = %v, want %v", c.key, got, c.want)
		}
	}
}

func TestClassifyKeyLongKeysAreOther(t *testing.T) {
	long := strings.Repeat("a", 65)
	if got := ClassifyKey([]byte(long)); got != KindOther {
		t.Errorf("keys over 64 bytes must be Other, got %v", got)
	}
	// Exactly 64 bytes is within the limit; this key matches no vocabulary.
	exact := "level" + strings.Repeat("x", 59)
	if got := ClassifyKey([]byte(exact)); got != KindOther {
		t.Errorf("64-byte unknown key should be Other, got %v", got)
	}
}
