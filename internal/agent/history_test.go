package agent

import (
	"fmt"
	"testing"
)

func entryWithQuery(q string) Entry {
	return Entry{ID: q, Query: q}
}

func TestHistoryBufferEvictsOldest(t *testing.T) {
	b := newHistoryBuffer(10)

	for i := 1; i <= 15; i++ {
		b.Append(entryWithQuery(fmt.Sprintf("q%d", i)))
	}

	if b.Len() != 10 {
		t.Fatalf("Len() = %d, want 10", b.Len())
	}

	all := b.All()
	if len(all) != 10 {
		t.Fatalf("All() returned %d entries, want 10", len(all))
	}
	for i, e := range all {
		want := fmt.Sprintf("q%d", i+6)
		if e.Query != want {
			t.Errorf("All()[%d].Query = %q, want %q", i, e.Query, want)
		}
	}
}

func TestHistoryBufferLast(t *testing.T) {
	b := newHistoryBuffer(5)
	for i := 1; i <= 3; i++ {
		b.Append(entryWithQuery(fmt.Sprintf("q%d", i)))
	}

	last := b.Last(2)
	if len(last) != 2 || last[0].Query != "q2" || last[1].Query != "q3" {
		t.Errorf("Last(2) = %v", last)
	}

	// Asking for more than retained returns everything.
	if got := b.Last(10); len(got) != 3 {
		t.Errorf("Last(10) returned %d entries, want 3", len(got))
	}

	if got := b.Last(0); got != nil {
		t.Errorf("Last(0) = %v, want nil", got)
	}
}

func TestHistoryBufferClear(t *testing.T) {
	b := newHistoryBuffer(4)
	b.Append(entryWithQuery("q1"))
	b.Append(entryWithQuery("q2"))

	b.Clear()

	if b.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", b.Len())
	}
	if got := b.All(); len(got) != 0 {
		t.Errorf("All() after Clear = %v, want empty", got)
	}

	// The buffer is reusable after clearing.
	b.Append(entryWithQuery("q3"))
	if all := b.All(); len(all) != 1 || all[0].Query != "q3" {
		t.Errorf("All() after reuse = %v", all)
	}
}
