package solver

import "testing"

func TestTrailAssignAndBacktrack(t *testing.T) {
	tr := NewTrail()
	for i := 0; i < 4; i++ {
		tr.AddVar()
	}

	lvl1 := tr.OpenLevel()
	if tr.Assign(PositiveLiteral(0), lvl1, int8(parentNone), NoClauseRef, BadLiteral) != AssignOK {
		t.Fatalf("assigning var 0 at level %d failed", lvl1)
	}

	lvl2 := tr.OpenLevel()
	if tr.Assign(NegativeLiteral(1), lvl2, int8(parentNone), NoClauseRef, BadLiteral) != AssignOK {
		t.Fatalf("assigning var 1 at level %d failed", lvl2)
	}
	if tr.Assign(PositiveLiteral(2), lvl2, int8(parentBinary), NoClauseRef, NegativeLiteral(1)) != AssignOK {
		t.Fatalf("assigning var 2 at level %d failed", lvl2)
	}

	if tr.NumAssigned() != 3 {
		t.Fatalf("NumAssigned() = %d, want 3", tr.NumAssigned())
	}

	if got := tr.LitValue(PositiveLiteral(0)); got != True {
		t.Errorf("var 0 should be true, got %v", got)
	}
	if got := tr.LitValue(PositiveLiteral(1)); got != False {
		t.Errorf("var 1 should be false (assigned negative), got %v", got)
	}

	var reinserted []int
	tr.BacktrackTo(lvl1, func(v int) { reinserted = append(reinserted, v) })

	if tr.DecisionLevel() != lvl1 {
		t.Fatalf("DecisionLevel() = %d, want %d", tr.DecisionLevel(), lvl1)
	}
	if tr.NumAssigned() != 1 {
		t.Fatalf("NumAssigned() after backtrack = %d, want 1", tr.NumAssigned())
	}
	if len(reinserted) != 2 {
		t.Fatalf("expected 2 variables reinserted, got %d: %v", len(reinserted), reinserted)
	}
	if tr.IsAssigned(1) || tr.IsAssigned(2) {
		t.Errorf("vars 1 and 2 should be unassigned after backtrack")
	}
	if !tr.IsAssigned(0) {
		t.Errorf("var 0 should remain assigned after backtrack to its own level")
	}
}

func TestTrailAssignContradiction(t *testing.T) {
	tr := NewTrail()
	tr.AddVar()
	lvl := tr.OpenLevel()

	if tr.Assign(PositiveLiteral(0), lvl, int8(parentNone), NoClauseRef, BadLiteral) != AssignOK {
		t.Fatalf("first assign should succeed")
	}
	if got := tr.Assign(NegativeLiteral(0), lvl, int8(parentNone), NoClauseRef, BadLiteral); got != AssignContradiction {
		t.Errorf("assigning the opposite literal should report AssignContradiction, got %v", got)
	}
	if got := tr.Assign(PositiveLiteral(0), lvl, int8(parentNone), NoClauseRef, BadLiteral); got != AssignAlreadyTrue {
		t.Errorf("re-assigning the same literal should report AssignAlreadyTrue, got %v", got)
	}
}

func TestTrailUnassignMidList(t *testing.T) {
	tr := NewTrail()
	for i := 0; i < 3; i++ {
		tr.AddVar()
	}

	lvl := tr.OpenLevel()
	tr.Assign(PositiveLiteral(0), lvl, int8(parentNone), NoClauseRef, BadLiteral)
	tr.Assign(PositiveLiteral(1), lvl, int8(parentNone), NoClauseRef, BadLiteral)
	tr.Assign(PositiveLiteral(2), lvl, int8(parentNone), NoClauseRef, BadLiteral)

	tr.Unassign(1)

	if tr.IsAssigned(1) {
		t.Errorf("var 1 should be unassigned")
	}
	if !tr.IsAssigned(0) || !tr.IsAssigned(2) {
		t.Errorf("vars 0 and 2 should remain assigned after splicing out the middle var")
	}

	order := []int{}
	for v := int(tr.Head()); v != -1; v = int(tr.NextOf(v)) {
		order = append(order, v)
	}
	if len(order) != 2 || order[0] != 0 || order[1] != 2 {
		t.Errorf("trail order after mid-list unassign = %v, want [0 2]", order)
	}
}
