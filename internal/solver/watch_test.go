package solver

import "testing"

func TestWatchListsBinary(t *testing.T) {
	w := NewWatchLists(8)
	a := PositiveLiteral(0)
	b := NegativeLiteral(1)

	w.AddBinaryClause(a, b)

	if got := w.Binary(a.Opposite()); len(got) != 1 || got[0] != b {
		t.Fatalf("Binary(%v) = %v, want [%v]", a.Opposite(), got, b)
	}
	if got := w.Binary(b.Opposite()); len(got) != 1 || got[0] != a {
		t.Fatalf("Binary(%v) = %v, want [%v]", b.Opposite(), got, a)
	}

	w.RemoveBinaryClause(a, b)
	if got := w.Binary(a.Opposite()); len(got) != 0 {
		t.Errorf("Binary(%v) after removal = %v, want empty", a.Opposite(), got)
	}
	if got := w.Binary(b.Opposite()); len(got) != 0 {
		t.Errorf("Binary(%v) after removal = %v, want empty", b.Opposite(), got)
	}
}

func TestWatchListsLong(t *testing.T) {
	w := NewWatchLists(8)
	watchLit := PositiveLiteral(0)

	w.AddLong(watchLit, ClauseRef(42), NegativeLiteral(2))
	w.AddLong(watchLit, ClauseRef(43), NegativeLiteral(3))

	if got := w.Long(watchLit); len(got) != 2 {
		t.Fatalf("Long(%v) = %v, want 2 entries", watchLit, got)
	}

	w.RemoveLong(watchLit, ClauseRef(42))
	got := w.Long(watchLit)
	if len(got) != 1 || got[0].ref != ClauseRef(43) {
		t.Fatalf("Long(%v) after removal = %v, want [{ref:43}]", watchLit, got)
	}
}

func TestWatchListsRelocateClauseRef(t *testing.T) {
	w := NewWatchLists(4)
	lit := PositiveLiteral(0)
	w.AddLong(lit, ClauseRef(5), BadLiteral)

	w.RelocateClauseRef(ClauseRef(5), ClauseRef(9))

	got := w.Long(lit)
	if len(got) != 1 || got[0].ref != ClauseRef(9) {
		t.Fatalf("Long(%v) after relocate = %v, want ref 9", lit, got)
	}
}
