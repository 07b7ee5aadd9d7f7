package solver

// AnalysisResult is everything conflict analysis hands back to the main
// CDCL loop (spec §4.5).
type AnalysisResult struct {
	Learnt             []Literal // Learnt[0] is the asserting (UIP) literal.
	LBD                int
	BacktrackLevel      int
	SecondHighestLevel int // highest level among Learnt[1:] (same value as BacktrackLevel, 0 if size 1); fed to Maple bumping.
	Flipped            []Literal // optional supplementary clause, see recordFlipped.
}

// Analyzer derives a learnt clause from a conflict via the classic
// first-UIP resolution walk (spec §4.5), optionally continuing past the
// first UIP (ALL-UIP lifting), minimizing the result (recursive and
// binary self-subsuming minimization), and opportunistically strengthening
// antecedent clauses in place (on-the-fly subsumption).
type Analyzer struct {
	trail   *Trail
	store   *ClauseStore
	watches *WatchLists
	heur    *Heuristic
	stats   *Stats
	params  *Params

	seen      ResetSet
	onStack   ResetSet // used by recursive minimization to detect cycles/limit depth
	scratch   []Literal
	reasonBuf []Literal
}

// NewAnalyzer returns an Analyzer over the given subsystems.
func NewAnalyzer(trail *Trail, store *ClauseStore, watches *WatchLists, heur *Heuristic, stats *Stats, params *Params) *Analyzer {
	return &Analyzer{trail: trail, store: store, watches: watches, heur: heur, stats: stats, params: params}
}

// AddVar grows the analyzer's seen-set domains for one new variable.
func (a *Analyzer) AddVar() {
	a.seen.Expand()
	a.onStack.Expand()
}

func (a *Analyzer) trueLit(v int) Literal {
	if a.trail.Value(v) == False {
		return NegativeLiteral(v)
	}
	return PositiveLiteral(v)
}

// conflictLiterals returns the two or more literals of a falsified clause,
// or, for an assumption conflict, a single literal: the negation of the
// rejected assumption.
func (a *Analyzer) conflictLiterals(c ConflictInfo) []Literal {
	if c.IsAssumption {
		a.scratch = append(a.scratch[:0], c.AssumeLit.Opposite())
		return a.scratch
	}
	if c.IsBinary {
		a.scratch = append(a.scratch[:0], c.BinA, c.BinB)
		return a.scratch
	}
	a.scratch = a.store.Literals(c.Ref, a.scratch)
	return a.scratch
}

// reasonLiterals returns the literals of the clause that forced v's
// current assignment: v's own (true) literal plus the literals that were
// false when it propagated. v must not be a decision variable.
func (a *Analyzer) reasonLiterals(v int) []Literal {
	switch a.trail.ParentKind(v) {
	case int8(parentBinary):
		a.reasonBuf = append(a.reasonBuf[:0], a.trueLit(v), a.trail.ParentLit(v))
		return a.reasonBuf
	case int8(parentLong):
		a.reasonBuf = a.store.Literals(a.trail.ParentClause(v), a.reasonBuf)
		return a.reasonBuf
	default:
		return nil
	}
}

// Analyze walks the implication graph from conflict back to its first
// unique implication point, bumping VSIDS scores for every variable
// resolved through, and returns the resulting learnt clause.
func (a *Analyzer) Analyze(conflict ConflictInfo, rescaleHook func(float64)) AnalysisResult {
	dl := conflict.Level
	a.seen.Clear()

	learnt := []Literal{BadLiteral}
	counter := 0
	p := BadLiteral
	cur := int(a.trail.Tail())
	clauseLits := a.conflictLiterals(conflict)

	uipsFound := 0
	allUIP := a.params != nil && a.params.AllUIP
	initialGap := 0
	if a.params != nil {
		initialGap = a.params.AllUIPInitialGap
	}

	for {
		a.resolveStep(clauseLits, p, dl, &counter, &learnt, rescaleHook)

		for !a.seen.Contains(cur) {
			cur = int(a.trail.PrevOf(cur))
		}
		p = a.trueLit(cur)
		a.seen.Remove(cur)
		counter--
		next := int(a.trail.PrevOf(cur))

		if counter == 0 {
			uipsFound++
			if !allUIP || uipsFound > initialGap || a.trail.IsDecision(cur) {
				break
			}
			// ALL-UIP lifting: keep resolving through this UIP too,
			// treating it like any other resolved variable so the walk
			// continues toward an even more recent implication point
			// (spec §4.5 step 7).
			counter = 1
			a.seen.Add(cur)
		}
		clauseLits = a.reasonLiterals(p.Var())
		a.tryOnTheFlySubsumption(p, clauseLits)
		cur = next
	}

	learnt[0] = p.Opposite()
	learnt = a.minimizeRecursive(learnt)
	learnt = a.minimizeBinary(learnt)

	lbd, backLvl, secondHighest := a.finish(learnt)
	if a.params != nil && a.params.MapleBump {
		for _, l := range learnt {
			a.heur.BumpScoreMaple(l.Var(), secondHighest, dl, rescaleHook)
		}
	}

	res := AnalysisResult{Learnt: learnt, LBD: lbd, BacktrackLevel: backLvl, SecondHighestLevel: secondHighest}
	res.Flipped = a.recordFlipped(lbd, dl)
	return res
}

// resolveStep folds one clause's literals into the running learnt set:
// variables at the conflict's decision level increment counter (they will
// be resolved away later); lower-level variables go straight into learnt.
func (a *Analyzer) resolveStep(clauseLits []Literal, p Literal, dl int, counter *int, learnt *[]Literal, rescaleHook func(float64)) {
	for _, q := range clauseLits {
		if q == p {
			continue
		}
		v := q.Var()
		if a.seen.Contains(v) {
			continue
		}
		lvl := a.trail.Level(v)
		if lvl == 0 {
			continue
		}
		a.seen.Add(v)
		a.heur.BumpScore(v, rescaleHook)
		if lvl >= dl {
			*counter++
		} else {
			*learnt = append(*learnt, q)
		}
	}
}

// tryOnTheFlySubsumption strengthens the antecedent clause just resolved
// with by dropping p from it in place, when every other literal of that
// clause is already accounted for in the running seen set (spec §4.5
// "on-the-fly subsumption"). Only applied to long clauses and only when p
// sits outside the two watched slots, so no watch-list bookkeeping is
// required (see DESIGN.md).
func (a *Analyzer) tryOnTheFlySubsumption(p Literal, clauseLits []Literal) {
	if a.params == nil || !a.params.OnTheFlySubsumption {
		return
	}
	// Re-derive ref only for long clauses: binary antecedents have no
	// backing clause to shrink.
	v := p.Var()
	if a.trail.ParentKind(v) != int8(parentLong) {
		return
	}
	ref := a.trail.ParentClause(v)
	size := a.store.Size(ref)
	if size <= 2 {
		return
	}
	pIdx := -1
	for i := 0; i < size; i++ {
		l := a.store.Lit(ref, i)
		if l == p {
			pIdx = i
			continue
		}
		if l.Var() != p.Var() && !a.seen.Contains(l.Var()) && a.trail.Level(l.Var()) != 0 {
			return
		}
	}
	if pIdx < 2 {
		return
	}
	a.store.SwapLits(ref, pIdx, size-1)
	a.store.Truncate(ref, size-1)
}

// minimizeRecursive drops any literal of learnt[1:] whose falsifying
// reason is entirely explained by literals already in the learnt clause
// (Minisat-style recursive self-subsuming minimization, spec §4.5 step 5).
func (a *Analyzer) minimizeRecursive(learnt []Literal) []Literal {
	if a.params != nil && !a.params.MinimizeRecursive {
		return learnt
	}
	out := learnt[:1]
	for _, l := range learnt[1:] {
		if a.isRedundant(l) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// isRedundant reports whether l can be dropped from the learnt clause: l
// is redundant if every literal of its reason clause is itself either
// already in the learnt clause (seen) or root-level-falsified, checked
// transitively with a small explicit stack to bound recursion depth.
func (a *Analyzer) isRedundant(l Literal) bool {
	v := l.Var()
	if a.trail.ParentKind(v) == int8(parentNone) {
		return false
	}
	stack := []int{v}
	a.onStack.Clear()
	a.onStack.Add(v)

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if a.trail.ParentKind(cur) == int8(parentNone) {
			return false
		}
		for _, q := range a.reasonLiteralsCopy(cur) {
			qv := q.Var()
			if qv == cur || a.seen.Contains(qv) {
				continue
			}
			if a.trail.Level(qv) == 0 {
				continue
			}
			if a.trail.ParentKind(qv) == int8(parentNone) {
				return false
			}
			if a.onStack.Contains(qv) {
				continue
			}
			a.onStack.Add(qv)
			stack = append(stack, qv)
		}
	}
	return true
}

// reasonLiteralsCopy is reasonLiterals but safe to call while a.reasonBuf
// is already in use by an outer caller (isRedundant recurses through
// several reasons at once via its explicit stack).
func (a *Analyzer) reasonLiteralsCopy(v int) []Literal {
	lits := a.reasonLiterals(v)
	cp := make([]Literal, len(lits))
	copy(cp, lits)
	return cp
}

// minimizeBinary drops any literal x from learnt[1:] when the binary
// clause (learnt[0] OR ¬x) exists — equivalently, ¬x appears in
// ¬learnt[0]'s binary watch list — since resolving on x with that clause
// removes x and leaves only the asserting literal in its place (spec §4.5 step 6, "binary self-subsuming minimization").
func (a *Analyzer) minimizeBinary(learnt []Literal) []Literal {
	if a.params != nil && !a.params.MinimizeBinary {
		return learnt
	}
	if len(learnt) < 2 {
		return learnt
	}
	uip := learnt[0]
	partners := a.watches.Binary(uip.Opposite())
	if len(partners) == 0 {
		return learnt
	}
	marked := map[Literal]bool{}
	for _, p := range partners {
		marked[p.Opposite()] = true
	}
	out := learnt[:1]
	for _, l := range learnt[1:] {
		if marked[l] {
			continue
		}
		out = append(out, l)
	}
	return out
}

// finish computes the learnt clause's LBD (number of distinct decision
// levels among its literals) and the non-chronological backtrack level
// (the highest level among learnt[1:], or 0 if the clause is unit).
func (a *Analyzer) finish(learnt []Literal) (lbd int, backLvl int, secondHighest int) {
	levels := map[int]bool{}
	for _, l := range learnt {
		levels[a.trail.Level(l.Var())] = true
	}
	lbd = len(levels)

	for _, l := range learnt[1:] {
		if lvl := a.trail.Level(l.Var()); lvl > backLvl {
			backLvl = lvl
		}
	}
	secondHighest = backLvl
	return lbd, backLvl, secondHighest
}

// recordFlipped builds a supplementary clause recording "not the current
// decision path" when a very low-LBD conflict suggests the last decision
// was a clear misstep worth pruning immediately alongside the primary
// learnt clause (spec §4.5 step 9, "flipped clause recording"). It
// returns nil when disabled or the glue is above the configured
// threshold.
func (a *Analyzer) recordFlipped(lbd, conflictLevel int) []Literal {
	if a.params == nil || !a.params.FlippedClause {
		return nil
	}
	if uint32(lbd) > a.params.FlippedMaxGlue {
		return nil
	}
	v := int(a.trail.lastVarPerLevel[conflictLevel])
	if v < 0 || !a.trail.IsDecision(v) {
		return nil
	}
	return []Literal{a.trueLit(v).Opposite()}
}

// AnalyzeFinal computes the unsat core: the subset of assumption literals
// that together explain conflict, in external-independent internal-literal
// form (spec §4.9, §8 scenario 3). It mirrors Analyze's backward walk but
// never stops at a first UIP — it walks the entire implication graph back
// to the trail's decisions, recording every assumption decision it
// touches along the way.
func (a *Analyzer) AnalyzeFinal(conflict ConflictInfo) []Literal {
	a.seen.Clear()
	var core []Literal

	// An assumption conflict's own literal never reaches the trail (it was
	// rejected before assignment), so it can't be picked up by the walk
	// below; it is part of the minimal explanation in its own right and
	// must be seeded into the core directly.
	if conflict.IsAssumption {
		core = append(core, conflict.AssumeLit)
	}

	for _, q := range a.conflictLiterals(conflict) {
		if a.trail.Level(q.Var()) > 0 {
			a.seen.Add(q.Var())
		}
	}

	for v := int(a.trail.Tail()); v != -1; v = int(a.trail.PrevOf(v)) {
		if !a.seen.Contains(v) {
			continue
		}
		if a.trail.IsDecision(v) {
			if a.trail.IsAssumption(v) {
				core = append(core, a.trueLit(v))
			}
			continue
		}
		for _, r := range a.reasonLiteralsCopy(v) {
			if r.Var() != v && a.trail.Level(r.Var()) > 0 {
				a.seen.Add(r.Var())
			}
		}
	}
	return core
}
