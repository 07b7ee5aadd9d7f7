package solver

import "testing"

// newTestPropagator wires a minimal trail/watches/store triple for nVars
// variables and returns the Propagator over them.
func newTestPropagator(nVars int) (*Trail, *WatchLists, *ClauseStore, *Propagator) {
	tr := NewTrail()
	for i := 0; i < nVars; i++ {
		tr.AddVar()
	}
	w := NewWatchLists(2 * nVars)
	st := NewClauseStore(false)
	st.Reserve(nVars)
	stats := &Stats{}
	lc := NewLevelScoreCache()
	for i := 0; i < nVars; i++ {
		lc.OpenLevel()
	}
	return tr, w, st, NewPropagator(tr, w, st, stats, lc, PickSmallestLBD)
}

func TestPropagateBinaryChain(t *testing.T) {
	// (¬0 ∨ 1) ∧ (¬1 ∨ 2): deciding 0 should force 1 then 2.
	tr, w, _, prop := newTestPropagator(3)
	w.AddBinaryClause(NegativeLiteral(0), PositiveLiteral(1))
	w.AddBinaryClause(NegativeLiteral(1), PositiveLiteral(2))

	lvl := tr.OpenLevel()
	tr.Assign(PositiveLiteral(0), lvl, int8(parentNone), NoClauseRef, BadLiteral)
	prop.Enqueue(0)

	if confl := prop.Propagate(); confl != nil {
		t.Fatalf("unexpected conflict: %+v", confl)
	}
	if !tr.IsAssigned(1) || tr.LitValue(PositiveLiteral(1)) != True {
		t.Errorf("var 1 should have been forced true")
	}
	if !tr.IsAssigned(2) || tr.LitValue(PositiveLiteral(2)) != True {
		t.Errorf("var 2 should have been forced true")
	}
}

func TestPropagateBinaryConflict(t *testing.T) {
	// (¬0 ∨ 1): deciding 0 then separately forcing ¬1 should conflict.
	tr, w, _, prop := newTestPropagator(2)
	w.AddBinaryClause(NegativeLiteral(0), PositiveLiteral(1))

	lvl := tr.OpenLevel()
	tr.Assign(PositiveLiteral(0), lvl, int8(parentNone), NoClauseRef, BadLiteral)
	tr.Assign(NegativeLiteral(1), lvl, int8(parentNone), NoClauseRef, BadLiteral)
	prop.Enqueue(0)
	prop.Enqueue(1)

	confl := prop.Propagate()
	if confl == nil {
		t.Fatalf("expected a conflict")
	}
	if !confl[0].IsBinary {
		t.Errorf("expected a binary conflict, got %+v", confl[0])
	}
}

// TestRepairDelayedImplicationsCascades builds a trail where a
// chronological backtrack has left a two-hop implication chain
// (0 -> 1 -> 2) stale at decision level 3, with an unrelated decision 3
// correctly sitting at level 2. A single RepairDelayedImplications pass
// must correct both 1 and 2 down to 0's level (1), in that order, since
// 2's correct level depends on 1's already having been fixed; it must
// also invalidate the level-3 score cache entry it vacates, and find no
// new conflict from re-propagating the corrected literals.
func TestRepairDelayedImplicationsCascades(t *testing.T) {
	tr := NewTrail()
	for i := 0; i < 4; i++ {
		tr.AddVar()
	}
	w := NewWatchLists(8)
	st := NewClauseStore(false)
	st.Reserve(4)
	stats := &Stats{}
	lc := NewLevelScoreCache()
	for i := 0; i < 3; i++ {
		lc.OpenLevel()
	}
	prop := NewPropagator(tr, w, st, stats, lc, PickSmallestLBD)

	w.AddBinaryClause(NegativeLiteral(0), PositiveLiteral(1))
	w.AddBinaryClause(NegativeLiteral(1), PositiveLiteral(2))

	lvl1 := tr.OpenLevel() // 1
	tr.Assign(PositiveLiteral(0), lvl1, int8(parentNone), NoClauseRef, BadLiteral)
	lvl2 := tr.OpenLevel() // 2
	tr.Assign(PositiveLiteral(3), lvl2, int8(parentNone), NoClauseRef, BadLiteral)
	lvl3 := tr.OpenLevel() // 3
	tr.Assign(PositiveLiteral(1), lvl3, int8(parentBinary), NoClauseRef, NegativeLiteral(0))
	tr.Assign(PositiveLiteral(2), lvl3, int8(parentBinary), NoClauseRef, NegativeLiteral(1))
	lc.Update(lvl3, 1, 5.0)

	confls := prop.RepairDelayedImplications(func(v int) {})

	if confls != nil {
		t.Fatalf("unexpected conflict from repair: %+v", confls)
	}
	if got := tr.Level(0); got != 1 {
		t.Errorf("Level(0) = %d, want 1 (unchanged decision)", got)
	}
	if got := tr.Level(1); got != 1 {
		t.Errorf("Level(1) = %d, want 1 (corrected down from 3)", got)
	}
	if got := tr.Level(2); got != 1 {
		t.Errorf("Level(2) = %d, want 1 (corrected down from 3, cascaded from 1's fix)", got)
	}
	if got := tr.Level(3); got != 2 {
		t.Errorf("Level(3) = %d, want 2 (unrelated decision left untouched)", got)
	}
	if v := lc.BestVar(lvl3); v != -1 {
		t.Errorf("BestVar(%d) = %d, want -1 after repair invalidated it", lvl3, v)
	}
	if s := lc.BestScore(lvl3); s != -1 {
		t.Errorf("BestScore(%d) = %v, want -1 after repair invalidated it", lvl3, s)
	}
}

func TestPropagateLongClauseUnit(t *testing.T) {
	// (¬0 ∨ ¬1 ∨ 2): deciding 0 and 1 should force 2.
	tr, w, st, prop := newTestPropagator(3)
	ref, err := st.AddLong([]Literal{NegativeLiteral(0), NegativeLiteral(1), PositiveLiteral(2)}, false, 0)
	if err != nil {
		t.Fatalf("AddLong: %v", err)
	}
	w.AddLong(PositiveLiteral(0), ref, NegativeLiteral(1))
	w.AddLong(PositiveLiteral(1), ref, NegativeLiteral(0))

	lvl := tr.OpenLevel()
	tr.Assign(PositiveLiteral(0), lvl, int8(parentNone), NoClauseRef, BadLiteral)
	prop.Enqueue(0)
	if confl := prop.Propagate(); confl != nil {
		t.Fatalf("unexpected conflict after first decision: %+v", confl)
	}

	tr.Assign(PositiveLiteral(1), lvl, int8(parentNone), NoClauseRef, BadLiteral)
	prop.Enqueue(1)
	if confl := prop.Propagate(); confl != nil {
		t.Fatalf("unexpected conflict after second decision: %+v", confl)
	}

	if !tr.IsAssigned(2) || tr.LitValue(PositiveLiteral(2)) != True {
		t.Errorf("var 2 should have been forced true by the long clause")
	}
}
