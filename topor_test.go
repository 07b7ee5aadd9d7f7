package topor

import "testing"

func TestSolveSatisfiableChain(t *testing.T) {
	s := New(0)
	mustAdd(t, s, 1)
	mustAdd(t, s, -1, 2)
	mustAdd(t, s, -2, 3)

	if got := s.Solve(nil, 0, 0); got != StatusSAT {
		t.Fatalf("Solve() = %v, want StatusSAT", got)
	}
	if s.GetLitValue(1) != LitSatisfied {
		t.Errorf("GetLitValue(1) = %v, want LitSatisfied", s.GetLitValue(1))
	}
	if s.GetLitValue(3) != LitSatisfied {
		t.Errorf("GetLitValue(3) = %v, want LitSatisfied", s.GetLitValue(3))
	}
}

func TestSolveUnsatisfiable(t *testing.T) {
	s := New(0)
	mustAdd(t, s, 1, 2)
	mustAdd(t, s, -1, 2)
	mustAdd(t, s, 1, -2)
	mustAdd(t, s, -1, -2)

	if got := s.Solve(nil, 0, 0); got != StatusUNSAT {
		t.Fatalf("Solve() = %v, want StatusUNSAT", got)
	}
}

func TestParamRoundTripThroughPublicAPI(t *testing.T) {
	s := New(0)
	if err := s.SetParam("/decision/var_decay_init", 0.75); err != nil {
		t.Fatalf("SetParam: %v", err)
	}
	got, err := s.GetParam("/decision/var_decay_init")
	if err != nil {
		t.Fatalf("GetParam: %v", err)
	}
	if got != 0.75 {
		t.Errorf("GetParam(var_decay_init) = %v, want 0.75", got)
	}
}

func mustAdd(t *testing.T, s *Solver, extLits ...int) {
	t.Helper()
	if err := s.AddClause(extLits...); err != nil {
		t.Fatalf("AddClause(%v): %v", extLits, err)
	}
}
