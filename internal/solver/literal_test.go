package solver

import "testing"

func TestLiteralEncoding(t *testing.T) {
	for v := 0; v < 5; v++ {
		pos := PositiveLiteral(v)
		neg := NegativeLiteral(v)

		if got := pos.Var(); got != v {
			t.Errorf("PositiveLiteral(%d).Var() = %d, want %d", v, got, v)
		}
		if got := neg.Var(); got != v {
			t.Errorf("NegativeLiteral(%d).Var() = %d, want %d", v, got, v)
		}
		if !pos.IsPositive() {
			t.Errorf("PositiveLiteral(%d).IsPositive() = false, want true", v)
		}
		if neg.IsPositive() {
			t.Errorf("NegativeLiteral(%d).IsPositive() = true, want false", v)
		}
		if got := pos.Opposite(); got != neg {
			t.Errorf("PositiveLiteral(%d).Opposite() = %v, want %v", v, got, neg)
		}
		if got := neg.Opposite(); got != pos {
			t.Errorf("NegativeLiteral(%d).Opposite() = %v, want %v", v, got, pos)
		}
	}
}

func TestExternalToInternal(t *testing.T) {
	m := NewExternalToInternal()

	v1, ok := m.Lookup(1)
	if ok {
		t.Fatalf("Lookup(1) = %d, true before any Create", v1)
	}

	m.Create(1, 0)
	m.Create(2, 1)

	v, ok := m.Lookup(1)
	if !ok || v != 0 {
		t.Errorf("Lookup(1) = %d, %v, want 0, true", v, ok)
	}

	m.RequireInverse()
	if got := m.ToExternal(0); got != 1 {
		t.Errorf("ToExternal(0) = %d, want 1", got)
	}
	if got := m.ToExternal(1); got != 2 {
		t.Errorf("ToExternal(1) = %d, want 2", got)
	}

	m.Create(3, 2)
	if got := m.ToExternal(2); got != 3 {
		t.Errorf("ToExternal(2) after post-RequireInverse Create = %d, want 3", got)
	}
}
