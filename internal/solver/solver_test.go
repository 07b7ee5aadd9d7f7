package solver

import "testing"

func TestSolverChainPropagatesToSAT(t *testing.T) {
	s := New(0)
	mustAddClause(t, s, 1)
	mustAddClause(t, s, -1, 2)
	mustAddClause(t, s, -2, 3)

	if got := s.Solve(nil, 0, 0); got != StatusSAT {
		t.Fatalf("Solve() = %v, want StatusSAT", got)
	}

	// Whatever path the heuristic took to get there, the implication
	// chain must hold in the final model.
	if s.GetLitValue(1) == LitSatisfied && s.GetLitValue(2) != LitSatisfied {
		t.Errorf("1 satisfied but 2 is %v, want also satisfied", s.GetLitValue(2))
	}
	if s.GetLitValue(2) == LitSatisfied && s.GetLitValue(3) != LitSatisfied {
		t.Errorf("2 satisfied but 3 is %v, want also satisfied", s.GetLitValue(3))
	}
	if s.GetLitValue(1) != LitSatisfied {
		t.Errorf("GetLitValue(1) = %v, want SATISFIED (forced by the unit clause)", s.GetLitValue(1))
	}
}

func TestSolverAddClauseUnitContradiction(t *testing.T) {
	s := New(0)
	mustAddClause(t, s, 1)
	mustAddClause(t, s, -1)

	if s.Status() != StatusContradictory {
		t.Fatalf("Status() = %v, want StatusContradictory", s.Status())
	}
	if got := s.Solve(nil, 0, 0); got != StatusContradictory {
		t.Errorf("Solve() after contradiction = %v, want StatusContradictory", got)
	}
}

func TestSolverAddEmptyClauseContradiction(t *testing.T) {
	s := New(0)
	if err := s.AddClause(nil); err != nil {
		t.Fatalf("AddClause(nil): %v", err)
	}
	if s.Status() != StatusContradictory {
		t.Fatalf("Status() = %v, want StatusContradictory", s.Status())
	}
}

// fullBinaryInstance wires the exhaustive set of all four binary clauses
// over two variables: (a∨b)(¬a∨b)(a∨¬b)(¬a∨¬b). No assignment of a,b can
// satisfy all four, and — since the clause set is symmetric under
// swapping or negating either variable — whichever literal the decision
// heuristic picks first immediately yields a conflict.
func fullBinaryInstance(t *testing.T) *Solver {
	s := New(0)
	mustAddClause(t, s, 1, 2)
	mustAddClause(t, s, -1, 2)
	mustAddClause(t, s, 1, -2)
	mustAddClause(t, s, -1, -2)
	return s
}

func TestSolverUnsatBySearch(t *testing.T) {
	s := fullBinaryInstance(t)
	if got := s.Solve(nil, 0, 0); got != StatusUNSAT {
		t.Fatalf("Solve() = %v, want StatusUNSAT", got)
	}
}

func TestSolverConflictBudgetExhausted(t *testing.T) {
	s := fullBinaryInstance(t)
	if got := s.Solve(nil, 0, 1); got != StatusConflictOut {
		t.Fatalf("Solve() with conflict budget 1 = %v, want StatusConflictOut", got)
	}
}

func TestSolverAssumptionCore(t *testing.T) {
	s := New(0)
	mustAddClause(t, s, -1, 2) // 1 -> 2

	// Assumption 1 forces 2 true by propagation before assumption -2 is
	// ever opened as its own decision level: the conflict is detected
	// while assigning -2, against a value 2 already holds because of 1.
	// Neither assumption alone is unsatisfiable against the clause (1
	// alone just forces 2 true; -2 alone forces nothing) so both must
	// appear in the core for it to be sound.
	got := s.Solve([]int{1, -2}, 0, 0)
	if got != StatusUNSAT {
		t.Fatalf("Solve(assumptions) = %v, want StatusUNSAT", got)
	}
	if !s.IsAssumptionRequired(0) {
		t.Errorf("assumption 1 (index 0) should be required")
	}
	if !s.IsAssumptionRequired(1) {
		t.Errorf("assumption -2 (index 1) should be required")
	}
}

// TestSolverAssumptionDerivedConflictRetries covers the case where
// assigning an assumption literal itself propagates straight into a
// falsified clause (as opposed to the assumption literal already being
// false on the trail before it's ever assigned, which
// TestSolverAssumptionCore covers). Assumption 2 alone, once propagated,
// satisfies both halves of (2->3) and (2->-3): a genuine BCP conflict,
// not a pre-existing falsity, discovered mid-assignment-loop. The
// solver must run full conflict analysis and backtracking on it (which
// here derives the unit clause (-2) and reduces the problem to
// UNSAT) rather than treating the raw clause conflict as the answer.
// Assumption 1 is unrelated to either clause, so the resulting core must
// still point only at assumption 2.
func TestSolverAssumptionDerivedConflictRetries(t *testing.T) {
	s := New(0)
	mustAddClause(t, s, -2, 3)
	mustAddClause(t, s, -2, -3)

	got := s.Solve([]int{1, 2}, 0, 0)
	if got != StatusUNSAT {
		t.Fatalf("Solve(assumptions) = %v, want StatusUNSAT", got)
	}
	if s.IsAssumptionRequired(0) {
		t.Errorf("assumption 1 (index 0) is unrelated to the conflict and should not be required")
	}
	if !s.IsAssumptionRequired(1) {
		t.Errorf("assumption 2 (index 1) should be required")
	}
}

func mustAddClause(t *testing.T, s *Solver, extLits ...int) {
	t.Helper()
	if err := s.AddClause(extLits); err != nil {
		t.Fatalf("AddClause(%v): %v", extLits, err)
	}
}
