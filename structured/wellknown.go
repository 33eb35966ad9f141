package structured

// Kind classifies a key as one of the well-known log fields.
type Kind uint8

const (
	KindTimestamp Kind = iota
	KindLevel
	KindMessage
	KindComponent
	KindOther
)

// Canonical key vocabularies. First match in listed order wins when a key
// appears in more than one list.
var (
	timestampNames = [][]byte{
		[]byte("timestamp"), []byte("time"), []byte("ts"), []byte("@timestamp"),
		[]byte("datetime"), []byte("date"), []byte("t"), []byte("created_at"),
		[]byte("logged_at"), []byte("event_time"),
	}
	levelNames = [][]byte{
		[]byte("level"), []byte("severity"), []byte("lvl"), []byte("log_level"),
		[]byte("loglevel"), []byte("log.level"), []byte("priority"), []byte("sev"),
	}
	messageNames = [][]byte{
		[]byte("message"), []byte("msg"), []byte("text"), []byte("body"),
		[]byte("log"), []byte("description"), []byte("content"),
	}
	componentNames = [][]byte{
		[]byte("component"), []byte("source"), []byte("logger"), []byte("module"),
		[]byte("service"), []byte("caller"), []byte("name"), []byte("logger_name"),
		[]byte("subsystem"), []byte("tag"),
	}
)

func matchAny(key []byte, names [][]byte) bool {
	for _, name := range names {
		if len(key) != len(name) {
			continue
		}
		match := true
		for i := range key {
			if key[i] != name[i] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// ClassifyKey maps up to 64 bytes of key material to a well-known kind,
// case-insensitively. Longer keys are always KindOther. The first byte
// narrows the candidate lists before the exact compares.
func ClassifyKey(key []byte) Kind {
	if len(key) == 0 || len(key) > 64 {
		return KindOther
	}

	var buf [64]byte
	for i, b := range key {
		if b >= 'A' && b <= 'Z' {
			b += 'a' - 'A'
		}
		buf[i] = b
	}
	lower := buf[:len(key)]

	switch lower[0] {
	case 't', '@', 'd', 'c', 'e', 'l':
		// fall through to the full scan; these first bytes span several lists
	case 'm':
		if matchAny(lower, messageNames) {
			return KindMessage
		}
		if matchAny(lower, componentNames) {
			return KindComponent
		}
		return KindOther
	case 's':
		if matchAny(lower, levelNames) {
			return KindLevel
		}
		if matchAny(lower, componentNames) {
			return KindComponent
		}
		return KindOther
	case 'p':
		if matchAny(lower, levelNames) {
			return KindLevel
		}
		return KindOther
	case 'b', 'n':
		if matchAny(lower, messageNames) {
			return KindMessage
		}
		if matchAny(lower, componentNames) {
			return KindComponent
		}
		return KindOther
	default:
		return KindOther
	}

	if matchAny(lower, timestampNames) {
		return KindTimestamp
	}
	if matchAny(lower, levelNames) {
		return KindLevel
	}
	if matchAny(lower, messageNames) {
		return KindMessage
	}
	if matchAny(lower, componentNames) {
		return KindComponent
	}
	return KindOther
}

// classifyAndSet classifies key and records fieldIdx on the batch's current
// record when it is one of the well-known kinds.
func classifyAndSet(key []byte, fieldIdx uint32, b *Batch) {
	switch ClassifyKey(key) {
	case KindTimestamp:
		b.SetWellKnownTimestamp(fieldIdx)
	case KindLevel:
		b.SetWellKnownLevel(fieldIdx)
	case KindMessage:
		b.SetWellKnownMessage(fieldIdx)
	case KindComponent:
		b.SetWellKnownComponent(fieldIdx)
	}
}
