package solver

// ClauseStore owns every long clause (initial + learnt), routing reads and
// writes through whichever clauseBackend was selected at construction time
// (spec §9: "distinct storage backends behind a uniform Clause accessor
// interface"). It also runs tautology/duplicate-literal detection while a
// new clause is being assembled, using a per-variable monotone generation
// counter so no per-call clearing is required (spec §4.1).
type ClauseStore struct {
	backend     clauseBackend
	compressed  bool
	constraints []ClauseRef
	learnts     []ClauseRef

	// dedup/tautology detection state for the clause currently being built.
	// occurrence[v] == 0 means v has not been seen in the current build;
	// otherwise it encodes (generation<<1 | sign) of v's last occurrence,
	// so the sign of a variable's last occurrence is recoverable without a
	// separate clear pass between clauses.
	occurrence []int64
	generation int64
}

// NewClauseStore returns a clause store backed by the bit-compressed
// layout if compressed is true, or the standard word-packed layout
// otherwise.
func NewClauseStore(compressed bool) *ClauseStore {
	cs := &ClauseStore{compressed: compressed}
	if compressed {
		cs.backend = newPackedBackend()
	} else {
		cs.backend = newStandardBackend()
	}
	return cs
}

// Reserve grows the dedup tracking table to cover variable id nVars-1.
func (cs *ClauseStore) Reserve(nVars int) {
	for len(cs.occurrence) < nVars {
		cs.occurrence = append(cs.occurrence, 0)
	}
}

// BeginClause starts a fresh tautology/duplicate detection pass.
func (cs *ClauseStore) BeginClause() {
	cs.generation++
}

// sign returns a small odd/even tag for l's polarity, folded into the
// generation counter recorded in occurrence[v].
func clauseSign(l Literal) int64 {
	if l.IsPositive() {
		return 0
	}
	return 1
}

// Observe records literal l as occurring in the clause currently being
// built and reports whether it is a tautology-causing duplicate (opposite
// polarity already seen) or a plain duplicate (same polarity already
// seen, so the literal can be dropped).
func (cs *ClauseStore) Observe(l Literal) (isTautology, isDuplicate bool) {
	v := l.Var()
	want := cs.generation<<1 | clauseSign(l)
	prev := cs.occurrence[v]
	prevGen := prev >> 1
	if prevGen != cs.generation {
		cs.occurrence[v] = want
		return false, false
	}
	if prev == want {
		return false, true
	}
	return true, false
}

// AddLong stores a new long clause (size >= 2) and returns its ref. The
// caller is responsible for having already dropped tautologies/duplicates
// and root-falsified literals from lits.
func (cs *ClauseStore) AddLong(lits []Literal, learnt bool, glue uint32) (ClauseRef, error) {
	ref, err := cs.backend.Add(lits, learnt, glue)
	if err != nil {
		return 0, err
	}
	if learnt {
		cs.learnts = append(cs.learnts, ref)
	} else {
		cs.constraints = append(cs.constraints, ref)
	}
	return ref, nil
}

func (cs *ClauseStore) Size(ref ClauseRef) int          { return cs.backend.Size(ref) }
func (cs *ClauseStore) Lit(ref ClauseRef, i int) Literal { return cs.backend.Lit(ref, i) }
func (cs *ClauseStore) SetLit(ref ClauseRef, i int, l Literal) { cs.backend.SetLit(ref, i, l) }
func (cs *ClauseStore) SwapLits(ref ClauseRef, i, j int) { cs.backend.SwapLits(ref, i, j) }
func (cs *ClauseStore) Truncate(ref ClauseRef, n int)    { cs.backend.Truncate(ref, n) }
func (cs *ClauseStore) IsLearnt(ref ClauseRef) bool      { return cs.backend.IsLearnt(ref) }
func (cs *ClauseStore) Glue(ref ClauseRef) uint32        { return cs.backend.Glue(ref) }
func (cs *ClauseStore) SetGlue(ref ClauseRef, g uint32)  { cs.backend.SetGlue(ref, g) }
func (cs *ClauseStore) Activity(ref ClauseRef) float32   { return cs.backend.Activity(ref) }
func (cs *ClauseStore) SetActivity(ref ClauseRef, a float32) { cs.backend.SetActivity(ref, a) }
func (cs *ClauseStore) Protected(ref ClauseRef) bool     { return cs.backend.Protected(ref) }
func (cs *ClauseStore) SetProtected(ref ClauseRef, p bool) { cs.backend.SetProtected(ref, p) }
func (cs *ClauseStore) Deleted(ref ClauseRef) bool       { return cs.backend.Deleted(ref) }

// Literals materializes the clause's literals into dst (reusing its
// storage if large enough) for callers that need a plain slice, such as
// conflict analysis's explanation step.
func (cs *ClauseStore) Literals(ref ClauseRef, dst []Literal) []Literal {
	n := cs.backend.Size(ref)
	if cap(dst) < n {
		dst = make([]Literal, n)
	}
	dst = dst[:n]
	for i := 0; i < n; i++ {
		dst[i] = cs.backend.Lit(ref, i)
	}
	return dst
}

// Delete marks ref as deleted. It does not touch watch lists; callers
// (delete_simplify.go) must unwatch before or after per their own
// bookkeeping.
func (cs *ClauseStore) Delete(ref ClauseRef) {
	cs.backend.MarkDeleted(ref)
}

// CompactionNeeded reports whether wasted storage exceeds the given
// fraction of live storage (spec §4.8: "wasted/live words exceeds a
// threshold").
func (cs *ClauseStore) CompactionNeeded(threshold float64) bool {
	live := cs.backend.LiveUnits()
	if live == 0 {
		return false
	}
	return float64(cs.backend.WastedUnits()) > threshold*float64(live)
}

// Compact relocates all live clauses to the front of the backend's
// storage. relocate is invoked for every surviving clause so the caller
// can rewrite watch-list clause indices; Compact then rewrites its own
// constraints/learnts slices using the same mapping.
func (cs *ClauseStore) Compact(relocate func(old, new ClauseRef)) {
	remap := map[ClauseRef]ClauseRef{}
	cs.backend.Compact(func(old, new ClauseRef) {
		remap[old] = new
		relocate(old, new)
	})
	rewrite := func(refs []ClauseRef) []ClauseRef {
		out := refs[:0]
		for _, r := range refs {
			if nr, ok := remap[r]; ok {
				out = append(out, nr)
			}
		}
		return out
	}
	cs.constraints = rewrite(cs.constraints)
	cs.learnts = rewrite(cs.learnts)
}

// Constraints returns the refs of all live initial clauses.
func (cs *ClauseStore) Constraints() []ClauseRef { return cs.constraints }

// Learnts returns the refs of all live learnt clauses.
func (cs *ClauseStore) Learnts() []ClauseRef { return cs.learnts }

// RemoveLearntAt deletes the learnt clause at index i of cs.learnts
// in-place (swap-with-last), marking it deleted in the backend.
func (cs *ClauseStore) RemoveLearntAt(i int) {
	ref := cs.learnts[i]
	cs.backend.MarkDeleted(ref)
	last := len(cs.learnts) - 1
	cs.learnts[i] = cs.learnts[last]
	cs.learnts = cs.learnts[:last]
}

// SetLearnts replaces the live learnt-clause list wholesale (used by
// DeletionPolicy.Run after it has filtered out the deleted clauses).
func (cs *ClauseStore) SetLearnts(refs []ClauseRef) { cs.learnts = refs }

// SetConstraints replaces the live initial-clause list wholesale (used by
// Simplify after it has filtered out satisfied clauses).
func (cs *ClauseStore) SetConstraints(refs []ClauseRef) { cs.constraints = refs }
