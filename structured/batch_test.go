package structured

import "testing"

func TestBatchBasic(t *testing.T) {
	buf := []byte(`{"level":"info","msg":"hello"}`)
	b := NewBatch(1, 4, buf)

	b.BeginRecord(0, uint32(len(buf)))
	b.PushField(FieldRef{KeyOffset: 2, KeyLen: 5, ValOffset: 10, ValLen: 4})
	b.PushField(FieldRef{KeyOffset: 17, KeyLen: 3, ValOffset: 23, ValLen: 5})
	b.SetWellKnownLevel(0)
	b.SetWellKnownMessage(1)
	b.EndRecord()

	if b.Len != 1 {
		t.Fatalf("expected 1 record, got %d", b.Len)
	}
	if b.FieldCount(0) != 2 {
		t.Fatalf("expected 2 fields, got %d", b.FieldCount(0))
	}

	if v, ok := b.LevelValue(0); !ok || v != "info" {
		t.Errorf("level = %q, %v", v, ok)
	}
	if v, ok := b.MessageValue(0); !ok || v != "hello" {
		t.Errorf("message = %q, %v", v, ok)
	}
	if _, ok := b.TimestampValue(0); ok {
		t.Error("timestamp should be absent")
	}
}

func TestBatchFieldStartsInvariant(t *testing.T) {
	buf := []byte("k=v\nk2=v2 k3=v3\n")
	b := NewBatch(4, 8, buf)

	if len(b.FieldStarts) != 1 || b.FieldStarts[0] != 0 {
		t.Fatal("FieldStarts must be seeded with 0")
	}

	b.BeginRecord(0, 3)
	b.PushField(FieldRef{KeyOffset: 0, KeyLen: 1, ValOffset: 2, ValLen: 1})
	b.EndRecord()

	b.BeginRecord(4, 11)
	b.PushField(FieldRef{KeyOffset: 4, KeyLen: 2, ValOffset: 7, ValLen: 2})
	b.PushField(FieldRef{KeyOffset: 10, KeyLen: 2, ValOffset: 13, ValLen: 2})
	b.EndRecord()

	if len(b.FieldStarts) != b.Len+1 {
		t.Fatalf("FieldStarts length %d, want %d", len(b.FieldStarts), b.Len+1)
	}
	for i := 1; i < len(b.FieldStarts); i++ {
		if b.FieldStarts[i] < b.FieldStarts[i-1] {
			t.Fatal("FieldStarts must be non-decreasing")
		}
	}
	if int(b.FieldStarts[b.Len]) != len(b.Fields) {
		t.Fatal("final FieldStarts entry must equal total field count")
	}
}

func TestBatchDuplicateWellKnownLastWins(t *testing.T) {
	buf := []byte("level=a level=b")
	b := NewBatch(1, 2, buf)

	ParseLogfmtLine(buf, 0, b)

	if b.Len != 1 || b.FieldCount(0) != 2 {
		t.Fatalf("records=%d fields=%d", b.Len, b.FieldCount(0))
	}
	if v, _ := b.LevelValue(0); v != "b" {
		t.Errorf("duplicate key should resolve to last seen, got %q", v)
	}
}

func TestBatchRawLine(t *testing.T) {
	buf := []byte("first\nsecond\n")
	b := NewBatch(2, 0, buf)
	b.BeginRecord(0, 5)
	b.EndRecord()
	b.BeginRecord(6, 6)
	b.EndRecord()

	if got := b.RawLine(0); got != "first" {
		t.Errorf("raw line 0 = %q", got)
	}
	if got := b.RawLine(1); got != "second" {
		t.Errorf("raw line 1 = %q", got)
	}
}
