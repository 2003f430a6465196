package agent

// historyBuffer is a fixed-capacity ring buffer of conversation entries.
// Appending to a full buffer evicts the oldest entry; insertion order is
// preserved. Not safe for concurrent use on its own — the Agent guards it
// with its mutex.
type historyBuffer struct {
	entries []Entry
	head    int // index of the oldest entry
	size    int
}

func newHistoryBuffer(capacity int) *historyBuffer {
	return &historyBuffer{entries: make([]Entry, capacity)}
}

// Append adds an entry, evicting the oldest one when the buffer is full.
func (b *historyBuffer) Append(e Entry) {
	if b.size < len(b.entries) {
		b.entries[(b.head+b.size)%len(b.entries)] = e
		b.size++
		return
	}
	// Full: overwrite the oldest slot and advance the head.
	b.entries[b.head] = e
	b.head = (b.head + 1) % len(b.entries)
}

// Last returns the n most recent entries in insertion order. n larger than
// the current size returns everything.
func (b *historyBuffer) Last(n int) []Entry {
	if n > b.size {
		n = b.size
	}
	if n <= 0 {
		return nil
	}
	out := make([]Entry, n)
	start := b.head + b.size - n
	for i := 0; i < n; i++ {
		out[i] = b.entries[(start+i)%len(b.entries)]
	}
	return out
}

// All returns every retained entry in insertion order.
func (b *historyBuffer) All() []Entry {
	return b.Last(b.size)
}

func (b *historyBuffer) Len() int {
	return b.size
}

// Clear discards all entries immediately.
func (b *historyBuffer) Clear() {
	b.head = 0
	b.size = 0
}
