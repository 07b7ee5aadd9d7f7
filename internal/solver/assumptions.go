package solver

// AssumptionHandler drives the per-Solve assumption-assignment loop and
// the reuse-trail optimization that lets back-to-back incremental queries
// skip re-deciding and re-propagating whatever assumption prefix they
// share (spec §4.9, §8 scenario 6).
type AssumptionHandler struct {
	trail      *Trail
	prop       *Propagator
	heur       *Heuristic
	levelCache *LevelScoreCache
	stats      *Stats
}

// NewAssumptionHandler returns a handler over the given subsystems.
func NewAssumptionHandler(trail *Trail, prop *Propagator, heur *Heuristic, levelCache *LevelScoreCache, stats *Stats) *AssumptionHandler {
	return &AssumptionHandler{trail: trail, prop: prop, heur: heur, levelCache: levelCache, stats: stats}
}

// commonPrefixLen returns how many leading literals cur and prev share.
func commonPrefixLen(cur, prev []Literal) int {
	n := len(cur)
	if len(prev) < n {
		n = len(prev)
	}
	i := 0
	for i < n && cur[i] == prev[i] {
		i++
	}
	return i
}

// Assign backtracks to the decision level at which cur and prev diverge
// (reusing every lower level's trail and propagation work), then delegates
// to Resume to open one new decision level per remaining assumption
// literal. It returns the decision level assumptions now occupy (0 if
// there were none) and, if an assumption conflicted (either because it was
// already false on the reused trail, or because propagating it produced a
// clause conflict), the ConflictInfo describing why.
func (ah *AssumptionHandler) Assign(cur, prev []Literal) (assumptionLevel int, conflict *ConflictInfo) {
	reuse := commonPrefixLen(cur, prev)
	if ah.trail.DecisionLevel() > reuse {
		dropped := ah.trail.DecisionLevel() - reuse
		ah.trail.BacktrackTo(reuse, func(v int) {
			ah.heur.Reinsert(v, ah.trail.Polarity(v))
		})
		for ; dropped > 0; dropped-- {
			ah.levelCache.CloseLevel()
		}
		ah.prop.Reset()
	}
	for i := reuse; i < len(prev); i++ {
		ah.trail.clearAssumptionFlag(prev[i].Var())
	}
	ah.stats.AssumptionReuseLevels += int64(reuse)

	return ah.Resume(cur, reuse)
}

// Resume assigns cur's assumption literals starting at index from,
// propagating after each. It is both Assign's inner loop and the re-entry
// point the Solver uses to restart the assumption-assignment loop after a
// derived BCP conflict has been analyzed, learned from, and backtracked
// past (spec §4.10 step 3, "restart the assumption-assignment loop"): the
// caller always passes from=0 for this case, since a backtrack driven by
// conflict analysis can unassign earlier assumption literals too, not just
// the one whose propagation conflicted. Literals still true on the trail
// (because their level survived the backtrack) cost nothing to revisit:
// they take the already-true branch below and mark themselves assumptions
// again without opening a new decision level.
func (ah *AssumptionHandler) Resume(cur []Literal, from int) (assumptionLevel int, conflict *ConflictInfo) {
	for i := from; i < len(cur); i++ {
		lit := cur[i]
		v := lit.Var()

		if val := ah.trail.LitValue(lit); val != Unknown {
			if val == False {
				ah.trail.MarkAssumption(v, lit)
				return ah.trail.DecisionLevel(), &ConflictInfo{IsAssumption: true, AssumeLit: lit, Level: ah.trail.DecisionLevel()}
			}
			// Already true from propagation carried over by an earlier
			// assumption: no new level needed for it.
			ah.trail.MarkAssumption(v, lit)
			continue
		}

		lvl := ah.trail.OpenLevel()
		ah.levelCache.OpenLevel()
		ah.trail.MarkAssumption(v, lit)
		res := ah.trail.Assign(lit, lvl, int8(parentNone), NoClauseRef, BadLiteral)
		if res != AssignOK {
			return lvl, &ConflictInfo{IsAssumption: true, AssumeLit: lit, Level: lvl}
		}
		ah.levelCache.Update(lvl, v, ah.heur.ScoreOf(v))
		ah.prop.Enqueue(v)

		if confls := ah.prop.Propagate(); confls != nil {
			return lvl, &confls[0]
		}
	}
	return ah.trail.DecisionLevel(), nil
}
