package solver

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// buildAnalyzerFixture wires a 4-variable trail reaching the conflict:
//
//	level 1: x0 decided true
//	level 2: x1 decided true
//	         x2 forced true by (¬x1 ∨ x2)
//	         x3 forced true by (¬x2 ∨ x3)
//	conflict: (¬x3 ∨ ¬x0) falsified
//
// The watch lists mirror the same three binary clauses so minimizeBinary
// has real data to consult.
func buildAnalyzerFixture(assumptions bool) (*Trail, *Analyzer, ConflictInfo) {
	tr := NewTrail()
	for i := 0; i < 4; i++ {
		tr.AddVar()
	}
	w := NewWatchLists(8)
	st := NewClauseStore(false)
	heur := NewHeuristic(0.8, 0.95, 0, true)
	for i := 0; i < 4; i++ {
		heur.AddVar(true)
	}
	stats := &Stats{}
	a := NewAnalyzer(tr, st, w, heur, stats, nil)
	for i := 0; i < 4; i++ {
		a.AddVar()
	}

	w.AddBinaryClause(NegativeLiteral(1), PositiveLiteral(2))
	w.AddBinaryClause(NegativeLiteral(2), PositiveLiteral(3))
	w.AddBinaryClause(NegativeLiteral(3), NegativeLiteral(0))

	lvl1 := tr.OpenLevel()
	if assumptions {
		tr.MarkAssumption(0, PositiveLiteral(0))
	}
	tr.Assign(PositiveLiteral(0), lvl1, int8(parentNone), NoClauseRef, BadLiteral)

	lvl2 := tr.OpenLevel()
	if assumptions {
		tr.MarkAssumption(1, PositiveLiteral(1))
	}
	tr.Assign(PositiveLiteral(1), lvl2, int8(parentNone), NoClauseRef, BadLiteral)
	tr.Assign(PositiveLiteral(2), lvl2, int8(parentBinary), NoClauseRef, NegativeLiteral(1))
	tr.Assign(PositiveLiteral(3), lvl2, int8(parentBinary), NoClauseRef, NegativeLiteral(2))

	conflict := ConflictInfo{IsBinary: true, BinA: NegativeLiteral(3), BinB: NegativeLiteral(0), Level: lvl2}
	return tr, a, conflict
}

func TestAnalyzeFirstUIP(t *testing.T) {
	_, a, conflict := buildAnalyzerFixture(false)

	res := a.Analyze(conflict, nil)

	want := []Literal{NegativeLiteral(3), NegativeLiteral(0)}
	if diff := cmp.Diff(want, res.Learnt); diff != "" {
		t.Errorf("Learnt mismatch (-want +got):\n%s", diff)
	}
	if res.LBD != 2 {
		t.Errorf("LBD = %d, want 2", res.LBD)
	}
	if res.BacktrackLevel != 1 {
		t.Errorf("BacktrackLevel = %d, want 1", res.BacktrackLevel)
	}
}

func TestAnalyzeFinalCore(t *testing.T) {
	_, a, conflict := buildAnalyzerFixture(true)

	core := a.AnalyzeFinal(conflict)

	want := []Literal{PositiveLiteral(1), PositiveLiteral(0)}
	if diff := cmp.Diff(want, core); diff != "" {
		t.Errorf("core mismatch (-want +got):\n%s", diff)
	}
}

// TestAnalyzeFinalCoreAssumptionRejectedBeforeAssignment reproduces the
// shape AssumptionHandler.Assign produces when a later assumption literal
// is already false from propagation carried over by an earlier one: that
// literal never reaches the trail (no IsDecision, no reason chain of its
// own), only MarkAssumption. The core must still include it, since its
// negation being forced true is only half of the contradiction.
func TestAnalyzeFinalCoreAssumptionRejectedBeforeAssignment(t *testing.T) {
	tr := NewTrail()
	for i := 0; i < 2; i++ {
		tr.AddVar()
	}
	w := NewWatchLists(4)
	st := NewClauseStore(false)
	heur := NewHeuristic(0.8, 0.95, 0, true)
	for i := 0; i < 2; i++ {
		heur.AddVar(true)
	}
	stats := &Stats{}
	a := NewAnalyzer(tr, st, w, heur, stats, nil)
	for i := 0; i < 2; i++ {
		a.AddVar()
	}

	// (¬a ∨ b): assuming a forces b true.
	w.AddBinaryClause(NegativeLiteral(0), PositiveLiteral(1))

	lvl := tr.OpenLevel()
	tr.MarkAssumption(0, PositiveLiteral(0))
	tr.Assign(PositiveLiteral(0), lvl, int8(parentNone), NoClauseRef, BadLiteral)
	tr.Assign(PositiveLiteral(1), lvl, int8(parentBinary), NoClauseRef, NegativeLiteral(0))

	// Assumption ¬b is rejected before ever reaching the trail: only
	// MarkAssumption runs, mirroring AssumptionHandler.Assign's fast path.
	tr.MarkAssumption(1, NegativeLiteral(1))
	conflict := ConflictInfo{IsAssumption: true, AssumeLit: NegativeLiteral(1), Level: lvl}

	core := a.AnalyzeFinal(conflict)

	want := []Literal{NegativeLiteral(1), PositiveLiteral(0)}
	if diff := cmp.Diff(want, core); diff != "" {
		t.Errorf("core mismatch (-want +got):\n%s", diff)
	}
}
