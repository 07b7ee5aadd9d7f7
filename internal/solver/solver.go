package solver

import (
	"fmt"
	"io"
	"time"
)

// LitValue is the result of querying a literal's value after SAT (spec §6
// `get_lit_value`).
type LitValue int8

const (
	LitDontCare LitValue = iota
	LitUnassigned
	LitSatisfied
	LitUnsatisfied
)

func (v LitValue) String() string {
	switch v {
	case LitSatisfied:
		return "SATISFIED"
	case LitUnsatisfied:
		return "UNSATISFIED"
	case LitUnassigned:
		return "UNASSIGNED"
	default:
		return "DONT_CARE"
	}
}

// Solver is the single-threaded CDCL core described by spec §§3-4, 8-9:
// packed clause storage, watched-literal BCP with delayed-implication
// repair, 1-UIP conflict analysis, chronological/non-chronological
// backtracking, restarts, VSIDS, clause deletion/simplification/
// compaction, and the assumption front-end. It owns every subsystem and
// is the only thing that sequences them.
type Solver struct {
	status    Status
	statusMsg string

	params Params
	varMap *ExternalToInternal

	trail      *Trail
	watches    *WatchLists
	store      *ClauseStore
	heur       *Heuristic
	prop       *Propagator
	analyzer   *Analyzer
	restart    *RestartController
	backtrackPolicy BacktrackPolicy
	levelCache *LevelScoreCache
	deletion   *DeletionPolicy
	assumptions *AssumptionHandler

	stats Stats
	cb    Callbacks

	interrupted bool
	logWriter   io.Writer

	lastAssumptionsExt []int
	lastAssumptionsInt []Literal
	lastCore           []Literal

	conflictsSinceDeletion  int64
	conflictsSinceSimplify  int64
	levelZeroSizeAtSimplify int
}

// New returns a fresh Solver sized for varHint variables, configured with
// the default mode's parameters.
func New(varHint int) *Solver {
	return NewWithParams(DefaultParamsForMode(ModeDefault), varHint)
}

// NewWithParams returns a fresh Solver using p, sized for varHint variables.
func NewWithParams(p Params, varHint int) *Solver {
	s := &Solver{
		params:    p,
		varMap:    NewExternalToInternal(),
		trail:     NewTrail(),
		watches:   NewWatchLists(0),
		store:     NewClauseStore(p.Compressed),
		heur:      NewHeuristic(p.VarDecayInit, p.VarDecayMax, p.VarDecayUpdateConfRate, p.PhaseSaving),
		levelCache: NewLevelScoreCache(),
		logWriter: io.Discard,
	}
	s.stats = Stats{}
	s.prop = NewPropagator(s.trail, s.watches, s.store, &s.stats, s.levelCache, p.ConflictPickRule)
	s.analyzer = NewAnalyzer(s.trail, s.store, s.watches, s.heur, &s.stats, &s.params)
	s.assumptions = NewAssumptionHandler(s.trail, s.prop, s.heur, s.levelCache, &s.stats)
	s.deletion = NewDeletionPolicy(&s.params)
	s.backtrackPolicy = BacktrackPolicy{
		ChronoEnabled:      p.ChronoEnabled,
		ChronoIfHigher:     p.ChronoIfHigher,
		ChronoMinConflicts: p.ChronoMinConflicts,
		CustomSelector:     p.CustomBacktrack,
	}
	s.restart = newRestartControllerFromParams(&p)
	s.heur.everyNthFlip = int(p.EveryNthFlip)

	for i := 0; i < varHint; i++ {
		s.addVariable()
	}
	return s
}

func newRestartControllerFromParams(p *Params) *RestartController {
	switch p.RestartStrategy {
	case RestartLuby:
		return NewLubyRestartController(p.RestartLubyBase, p.RestartLocal)
	case RestartLBDAverage:
		return NewLBDAverageRestartController(p.LBDWindowDecay, p.LBDGlobalDecay, p.LBDWindowMul, p.LBDTrailBlockMul)
	default:
		return NewArithmeticRestartController(p.RestartArithInit, p.RestartArithInc, p.RestartLocal)
	}
}

// SetLogWriter redirects progress/stats output (defaults to io.Discard so
// library use never spams a caller's stdout, per SPEC_FULL's ambient
// logging stack).
func (s *Solver) SetLogWriter(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	s.logWriter = w
}

// Status returns the solver's current sticky status.
func (s *Solver) Status() Status { return s.status }

// IsError reports whether the current status is a permanent error.
func (s *Solver) IsError() bool { return s.status.IsPermanent() }

// GetStatusExplanation returns a free-form diagnostic string (spec §7).
func (s *Solver) GetStatusExplanation() string {
	if s.statusMsg == "" {
		return s.status.String()
	}
	return fmt.Sprintf("%s: %s", s.status, s.statusMsg)
}

func (s *Solver) fail(status Status, msg string) {
	s.status = status
	s.statusMsg = msg
}

func (s *Solver) rescaleHook(factor float64) {
	s.levelCache.RescaleAll(factor)
}

// addVariable grows every subsystem by one fresh internal variable.
func (s *Solver) addVariable() int {
	v := s.trail.AddVar()
	s.heur.AddVar(true)
	s.analyzer.AddVar()
	s.watches.Grow(2 * (v + 1))
	s.store.Reserve(v + 1)
	return v
}

// CreateInternalLit maps an external DIMACS-style literal onto its
// internal Literal, creating the variable lazily if this is the first
// time extLit's variable has been seen (spec §6 `create_internal_lit`).
func (s *Solver) CreateInternalLit(extLit int) Literal {
	extVar := extLit
	neg := false
	if extVar < 0 {
		extVar = -extVar
		neg = true
	}
	v, ok := s.varMap.Lookup(extVar)
	if !ok {
		v = s.addVariable()
		s.varMap.Create(extVar, v)
	}
	if neg {
		return NegativeLiteral(v)
	}
	return PositiveLiteral(v)
}

// AddClause adds a permanent clause in external literals (spec §6
// `add_clause`). Tautologies are dropped, duplicate literals collapsed,
// and literals already falsified at level 0 are pruned. Must be called at
// decision level 0; calling it mid-search is a programmer error distinct
// from any solver Status (it never changes Status).
func (s *Solver) AddClause(extLits []int) error {
	if s.status.IsPermanent() {
		return nil
	}
	if s.trail.DecisionLevel() != 0 {
		return fmt.Errorf("solver: AddClause called at decision level %d, must be 0", s.trail.DecisionLevel())
	}

	s.store.BeginClause()
	lits := make([]Literal, 0, len(extLits))
	for _, e := range extLits {
		if e == 0 {
			continue
		}
		l := s.CreateInternalLit(e)
		switch s.trail.LitValue(l) {
		case True:
			return nil // already satisfied at level 0: whole clause is redundant
		case False:
			continue // root-falsified literal: drop it
		}
		isTaut, isDup := s.store.Observe(l)
		if isTaut {
			return nil
		}
		if isDup {
			continue
		}
		lits = append(lits, l)
	}

	switch len(lits) {
	case 0:
		s.status = StatusContradictory
	case 1:
		res := s.trail.Assign(lits[0], 0, int8(parentNone), NoClauseRef, BadLiteral)
		switch res {
		case AssignContradiction:
			s.status = StatusContradictory
		case AssignOK:
			s.prop.Enqueue(lits[0].Var())
			if confl := s.prop.Propagate(); confl != nil {
				s.status = StatusContradictory
			}
			s.reportUnit(lits[0])
		}
	case 2:
		s.watches.AddBinaryClause(lits[0], lits[1])
	default:
		ref, err := s.store.AddLong(lits, false, 0)
		if err != nil {
			s.fail(StatusIndexTooNarrow, err.Error())
			return nil
		}
		s.watches.AddLong(lits[0].Opposite(), ref, lits[1])
		s.watches.AddLong(lits[1].Opposite(), ref, lits[0])
	}
	return nil
}

func (s *Solver) reportUnit(lit Literal) {
	if s.cb.ReportUnit == nil {
		return
	}
	s.varMap.RequireInverse()
	ext := s.varMap.ToExternal(lit.Var())
	if !lit.IsPositive() {
		ext = -ext
	}
	s.cb.ReportUnit(s.cb.ThreadID, ext)
}

// drainParallelUnits polls GetNextUnit (once per restart, per spec §5) and
// assigns whatever units an outer parallel driver produced elsewhere.
func (s *Solver) drainParallelUnits(reinit bool) *ConflictInfo {
	if s.cb.GetNextUnit == nil {
		return nil
	}
	for {
		ext, ok := s.cb.GetNextUnit(s.cb.ThreadID, reinit)
		reinit = false
		if !ok {
			return nil
		}
		lit := s.CreateInternalLit(ext)
		res := s.trail.Assign(lit, 0, int8(parentNone), NoClauseRef, BadLiteral)
		if res == AssignContradiction {
			return &ConflictInfo{IsAssumption: true, AssumeLit: lit, Level: 0}
		}
		if res == AssignOK {
			s.prop.Enqueue(lit.Var())
			if confls := s.prop.Propagate(); confls != nil {
				return &confls[0]
			}
		}
	}
}

// Solve runs the CDCL loop under the given assumptions (external
// literals), honoring timeoutSeconds (<=0 disables it) and conflictBudget
// (<=0 disables it), and returns the resulting Status (spec §6 `solve`).
func (s *Solver) Solve(assumpExt []int, timeoutSeconds float64, conflictBudget int64) Status {
	if s.status.IsPermanent() {
		return s.status
	}
	if s.status == StatusContradictory {
		return s.status
	}

	var deadline time.Time
	if timeoutSeconds > 0 {
		deadline = time.Now().Add(time.Duration(timeoutSeconds * float64(time.Second)))
	}

	assumptions := make([]Literal, 0, len(assumpExt))
	for _, e := range assumpExt {
		assumptions = append(assumptions, s.CreateInternalLit(e))
	}

	assumptionLevel, conflict := s.assumptions.Assign(assumptions, s.lastAssumptionsInt)
	s.lastAssumptionsExt = assumpExt
	s.lastAssumptionsInt = assumptions

	for conflict != nil {
		if conflict.IsAssumption {
			s.lastCore = s.analyzer.AnalyzeFinal(*conflict)
			s.status = StatusUNSAT
			return s.status
		}

		// A derived BCP conflict surfaced while propagating an assumption
		// literal, not the assumption literal itself being already false:
		// spec §4.10 step 3 requires running full conflict analysis and
		// backtracking before deciding whether the assumption prefix is
		// genuinely unsatisfiable, then restarting the assumption loop
		// (original_source/Topi.cc's recursive AssignAssumptions), rather
		// than declaring UNSAT off the raw conflict. The floor passed here
		// is 0 rather than the in-progress assumptionLevel: it only needs
		// to catch the case where the base clause database is
		// unsatisfiable on its own, and letting the retry naturally
		// rediscover an unsatisfiable assumption prefix (via the
		// IsAssumption fast path above) avoids having to track exactly
		// which assumption level the conflict's backtrack target would
		// need to clear.
		//
		// The restart always re-enters at index 0, not wherever this
		// conflict was found: the backtrack analysis just performed can
		// unassign earlier assumption literals too, so Resume must
		// re-check the whole prefix. Literals that survived the backtrack
		// are still true on the trail and cost nothing to revisit (Resume
		// marks them again without opening a new level); one that didn't
		// survive is caught by the IsAssumption fast path on this same
		// loop, not silently skipped.
		s.stats.Conflicts++
		_, _, _, ok := s.resolveConflict(*conflict, 0)
		if !ok {
			return s.status
		}
		assumptionLevel, conflict = s.assumptions.Resume(assumptions, 0)
	}

	if confl := s.drainParallelUnits(true); confl != nil {
		s.lastCore = s.analyzer.AnalyzeFinal(*confl)
		s.status = StatusUNSAT
		return s.status
	}

	var conflictsThisSolve int64
	for {
		if s.interrupted || (s.cb.StopNow != nil && s.cb.StopNow()) {
			s.status = StatusUserInterrupt
			return s.status
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			s.status = StatusTimeoutLocal
			return s.status
		}

		confls := s.prop.Propagate()
		if confls == nil {
			if s.trail.DecisionLevel() == 0 {
				s.maybeMaintain()
			}
			if s.trail.NumAssigned() == s.trail.NumVars() {
				s.status = StatusSAT
				return s.status
			}

			lit, ok := s.heur.Select(func(v int) bool { return s.trail.IsAssigned(v) })
			if !ok {
				s.status = StatusSAT
				return s.status
			}
			lvl := s.trail.OpenLevel()
			s.levelCache.OpenLevel()
			s.restart.NotifyLevelOpened()
			s.trail.Assign(lit, lvl, int8(parentNone), NoClauseRef, BadLiteral)
			s.levelCache.Update(lvl, lit.Var(), s.heur.ScoreOf(lit.Var()))
			s.prop.Enqueue(lit.Var())
			s.stats.Decisions++
			continue
		}

		s.stats.Conflicts++
		conflict := confls[0]

		_, _, lbd, ok := s.resolveConflict(conflict, assumptionLevel)
		if !ok {
			return s.status
		}

		if s.restart.OnConflict(lbd, s.trail.NumAssigned()) {
			s.doBacktrack(assumptionLevel)
			s.restart.Reset()
			s.stats.Restarts++
			if confl := s.drainParallelUnits(false); confl != nil {
				s.lastCore = s.analyzer.AnalyzeFinal(*confl)
				s.status = StatusUNSAT
				return s.status
			}
		}

		conflictsThisSolve++
		if conflictBudget > 0 && conflictsThisSolve >= conflictBudget {
			s.status = StatusConflictOut
			return s.status
		}

		s.conflictsSinceDeletion++
		if s.deletion.ShouldRun(s.conflictsSinceDeletion) {
			s.runDeletion()
			s.conflictsSinceDeletion = 0
			s.deletion.Advance()
		}
	}
}

// resolveConflict runs analysis, backtracking, and learning for a single
// discovered conflict, declaring StatusUNSAT directly (ok=false) when
// analysis proves the conflict can't be resolved without backtracking at
// or below assumptionLevel. On a chronological backtrack it also drives
// RepairDelayedImplications to a fixed point, recursively resolving any
// conflict that re-propagation uncovers (spec §4.6, §9: "pending
// contradictions are re-evaluated after repair").
func (s *Solver) resolveConflict(conflict ConflictInfo, assumptionLevel int) (target int, chronological bool, lbd int, ok bool) {
	if s.trail.DecisionLevel() <= assumptionLevel {
		s.lastCore = s.analyzer.AnalyzeFinal(conflict)
		s.status = StatusUNSAT
		return 0, false, 0, false
	}

	result := s.analyzer.Analyze(conflict, s.rescaleHook)
	s.heur.AfterConflict()
	s.heur.DecayScores(s.rescaleHook)

	target, chronological = s.backtrackPolicy.Target(s.trail.DecisionLevel(), result.BacktrackLevel, assumptionLevel, s.stats.Conflicts, s.levelCache)
	s.doBacktrack(target)

	if target < assumptionLevel {
		s.lastCore = s.analyzer.AnalyzeFinal(conflict)
		s.status = StatusUNSAT
		return 0, false, 0, false
	}

	s.assignLearnt(result, target)
	s.emitLearnt(result.Learnt, false)
	if len(result.Flipped) > 0 {
		s.emitLearnt(result.Flipped, false)
	}

	if chronological {
		if !s.repairLoop(assumptionLevel) {
			return 0, false, 0, false
		}
	}
	return target, chronological, result.LBD, true
}

// repairLoop drives RepairDelayedImplications to a fixed point: each call
// both corrects stale levels and re-propagates the corrected literals, and
// any conflict that surfaces is itself resolved (and, if chronological,
// may trigger another repair round) before the loop checks for more. It
// returns false if one of those conflicts proved unsatisfiable at or below
// assumptionLevel (StatusUNSAT is already set in that case).
func (s *Solver) repairLoop(assumptionLevel int) bool {
	for {
		confls := s.prop.RepairDelayedImplications(func(v int) {
			s.heur.Reinsert(v, s.trail.Polarity(v))
		})
		if confls == nil {
			return true
		}
		s.stats.Conflicts++
		_, chronological, _, ok := s.resolveConflict(confls[0], assumptionLevel)
		if !ok {
			return false
		}
		if !chronological {
			return true
		}
	}
}

// doBacktrack rolls the trail back to target, reinserting unassigned
// variables into VSIDS with their saved phase, closing the level-score
// cache's entries for every level dropped, and clearing BCP's queue.
func (s *Solver) doBacktrack(target int) {
	oldDL := s.trail.DecisionLevel()
	if target >= oldDL {
		return
	}
	s.trail.BacktrackTo(target, func(v int) {
		s.heur.Reinsert(v, s.trail.Polarity(v))
	})
	for ; oldDL > target; oldDL-- {
		s.levelCache.CloseLevel()
	}
	s.prop.Reset()
}

// learnClause materializes a freshly analyzed clause into the store (size
// >= 3), the watch lists (size == 2), or nothing (size == 1, a pure unit)
// and returns the justification Assign needs to record for its asserting
// literal.
func (s *Solver) learnClause(lits []Literal, lbd int) (kind int8, ref ClauseRef, partner Literal) {
	switch len(lits) {
	case 1:
		return int8(parentNone), NoClauseRef, BadLiteral
	case 2:
		s.watches.AddBinaryClause(lits[0], lits[1])
		return int8(parentBinary), NoClauseRef, lits[1]
	default:
		newRef, err := s.store.AddLong(lits, true, uint32(lbd))
		if err != nil {
			s.fail(StatusIndexTooNarrow, err.Error())
			return int8(parentNone), NoClauseRef, BadLiteral
		}
		s.watches.AddLong(lits[0].Opposite(), newRef, lits[1])
		s.watches.AddLong(lits[1].Opposite(), newRef, lits[0])
		s.stats.LearntClauses++
		return int8(parentLong), newRef, BadLiteral
	}
}

func (s *Solver) assignLearnt(res AnalysisResult, target int) {
	kind, ref, partner := s.learnClause(res.Learnt, res.LBD)
	lit := res.Learnt[0]
	s.trail.Assign(lit, target, kind, ref, partner)
	s.prop.Enqueue(lit.Var())
	s.levelCache.Update(target, lit.Var(), s.heur.ScoreOf(lit.Var()))
	if target == 0 {
		s.reportUnit(lit)
	}
}

// clauseInUse reports whether ref currently justifies a trail assignment,
// scanning the (typically short) assigned prefix; deletion must never
// remove a clause still acting as someone's antecedent (spec §4.9).
func (s *Solver) clauseInUse(ref ClauseRef) bool {
	for v := int(s.trail.Head()); v != -1; v = int(s.trail.NextOf(v)) {
		if s.trail.ParentKind(v) == int8(parentLong) && s.trail.ParentClause(v) == ref {
			return true
		}
	}
	return false
}

func (s *Solver) runDeletion() {
	s.deletion.Run(s.store, s.watches, s.clauseInUse, func(ref ClauseRef) {
		s.emitDeletedClause(ref)
	}, &s.stats)
}

// maybeMaintain runs simplify/compaction at decision level 0 (spec §4.9).
func (s *Solver) maybeMaintain() {
	if s.trail.NumAssigned() > s.levelZeroSizeAtSimplify {
		Simplify(s.trail, s.store, s.watches, func(ref ClauseRef) {
			s.emitDeletedClause(ref)
		}, &s.stats)
		s.levelZeroSizeAtSimplify = s.trail.NumAssigned()
	}
	MaybeCompact(s.store, s.watches, s.params.CompactionThreshold, &s.stats)
}

// translateToExternal maps internal literals to external ones, creating
// the inverse table on first use.
func (s *Solver) translateToExternal(lits []Literal) []int {
	s.varMap.RequireInverse()
	ext := make([]int, len(lits))
	for i, l := range lits {
		e := s.varMap.ToExternal(l.Var())
		if !l.IsPositive() {
			e = -e
		}
		ext[i] = e
	}
	return ext
}

func (s *Solver) emitLearnt(lits []Literal, deleted bool) {
	if s.cb.NewLearntClause == nil {
		return
	}
	s.cb.NewLearntClause(s.translateToExternal(lits), deleted)
}

func (s *Solver) emitDeletedClause(ref ClauseRef) {
	if s.cb.NewLearntClause == nil {
		return
	}
	lits := s.store.Literals(ref, nil)
	s.emitLearnt(lits, true)
}

// GetLitValue reports extLit's current value (spec §6 `get_lit_value`).
func (s *Solver) GetLitValue(extLit int) LitValue {
	extVar := extLit
	if extVar < 0 {
		extVar = -extVar
	}
	v, ok := s.varMap.Lookup(extVar)
	if !ok {
		return LitDontCare
	}
	if !s.trail.IsAssigned(v) {
		return LitUnassigned
	}
	lit := s.CreateInternalLit(extLit)
	if s.trail.LitValue(lit) == True {
		return LitSatisfied
	}
	return LitUnsatisfied
}

// IsAssumptionRequired reports whether the i-th assumption literal of the
// most recent Solve call participates in the unsat core. Valid only
// immediately after an UNSAT result (spec §6 `is_assumption_required`).
func (s *Solver) IsAssumptionRequired(i int) bool {
	if i < 0 || i >= len(s.lastAssumptionsInt) {
		return false
	}
	lit := s.lastAssumptionsInt[i]
	for _, c := range s.lastCore {
		if c == lit {
			return true
		}
	}
	return false
}

// BoostScore multiplies variable v's (external id) VSIDS activity by mult
// (spec §6 `boost_score`).
func (s *Solver) BoostScore(extVar int, mult float64) {
	v, ok := s.varMap.Lookup(extVar)
	if !ok {
		return
	}
	s.heur.Boost(v, mult)
}

// FixPolarity forces extLit's polarity for its next decision (spec §6
// `fix_polarity`).
func (s *Solver) FixPolarity(extLit int, once bool) {
	lit := s.CreateInternalLit(extLit)
	s.heur.FixPolarity(lit.Var(), lit, once)
}

// ClearUserPolarity removes any fixed polarity on extVar (spec §6
// `clear_user_polarity`).
func (s *Solver) ClearUserPolarity(extVar int) {
	v, ok := s.varMap.Lookup(extVar)
	if !ok {
		return
	}
	s.heur.ClearUserPolarity(v)
}

// Backtrack rolls the trail back to level directly, outside of conflict
// analysis (spec §6 `backtrack`); a no-op if already at or below level.
func (s *Solver) Backtrack(level int) {
	if level < 0 {
		level = 0
	}
	s.doBacktrack(level)
}

// InterruptNow requests the running or next Solve call stop at its next
// poll, surfacing as StatusUserInterrupt (spec §5 cancellation).
func (s *Solver) InterruptNow() { s.interrupted = true }

// ClearInterrupt resets the interrupt flag so a later Solve can proceed.
func (s *Solver) ClearInterrupt() { s.interrupted = false }

// SetCallbacks installs the full callback bundle (spec §6 callback setters).
func (s *Solver) SetCallbacks(cb Callbacks) { s.cb = cb }

// SetStopNow installs just the stop-now callback.
func (s *Solver) SetStopNow(f StopNowFunc) { s.cb.StopNow = f }

// SetNewLearntClauseCallback installs just the proof-emission callback.
func (s *Solver) SetNewLearntClauseCallback(f NewLearntClauseFunc) { s.cb.NewLearntClause = f }

// SetParallelData wires this solver instance into an outer parallel
// portfolio (spec §5, §6 `set_parallel_data`).
func (s *Solver) SetParallelData(threadID int, report ReportUnitClauseFunc, getNext GetNextUnitClauseFunc) {
	s.cb.ThreadID = threadID
	s.cb.ReportUnit = report
	s.cb.GetNextUnit = getNext
}

// SetParam applies one dotted-name parameter (spec §6 `set_param`). An
// out-of-range value or unknown name latches StatusParamError
// permanently, per spec §7. Conflict analysis (ALL-UIP, Maple bumping,
// minimization, on-the-fly subsumption, flipped clauses) and the compaction
// threshold read the live parameters; every other parameter is copied into
// its subsystem by NewWithParams, so setting it later changes what GetParam
// reports but not how the search runs.
func (s *Solver) SetParam(name string, value float64) error {
	if err := s.params.SetParam(name, value); err != nil {
		s.fail(StatusParamError, err.Error())
		return err
	}
	return nil
}

// GetParam returns the current value of a registered parameter.
func (s *Solver) GetParam(name string) (float64, error) {
	return s.params.GetParam(name)
}

// Stats returns a snapshot of the solver's running counters.
func (s *Solver) Stats() Stats { return s.stats }

// NumVars returns the number of internal variables created so far.
func (s *Solver) NumVars() int { return s.trail.NumVars() }
