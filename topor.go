// Package topor is an incremental CDCL SAT solver (spec §1-2): a direct
// port of the single-threaded core of the Topor/intel_sat_solver engine,
// exposing watched-literal BCP, 1-UIP conflict analysis with optional
// ALL-UIP lifting, chronological/non-chronological backtracking, VSIDS
// with phase saving, LBD-average and numeric restart schedules, clause
// deletion/simplification/compaction, and assumption-based incremental
// solving with unsat-core extraction and a reuse-trail optimization.
//
// This package is the thin public surface over internal/solver.Solver; it
// owns no algorithmic state of its own.
package topor

import (
	"io"

	"github.com/satkit/topor/internal/drat"
	"github.com/satkit/topor/internal/solver"
)

// Status mirrors internal/solver.Status (spec §7); re-exported so callers
// never import the internal package directly.
type Status = solver.Status

const (
	StatusUnknown                 = solver.StatusUnknown
	StatusSAT                     = solver.StatusSAT
	StatusUNSAT                   = solver.StatusUNSAT
	StatusTimeoutLocal             = solver.StatusTimeoutLocal
	StatusConflictOut              = solver.StatusConflictOut
	StatusMemOut                   = solver.StatusMemOut
	StatusUserInterrupt             = solver.StatusUserInterrupt
	StatusTimeoutGlobal             = solver.StatusTimeoutGlobal
	StatusIndexTooNarrow            = solver.StatusIndexTooNarrow
	StatusParamError                = solver.StatusParamError
	StatusAssumptionRequiredError   = solver.StatusAssumptionRequiredError
	StatusDRATFileProblem           = solver.StatusDRATFileProblem
	StatusExoticError                = solver.StatusExoticError
	StatusContradictory              = solver.StatusContradictory
)

// LitValue mirrors internal/solver.LitValue (spec §6 `get_lit_value`).
type LitValue = solver.LitValue

const (
	LitDontCare   = solver.LitDontCare
	LitUnassigned = solver.LitUnassigned
	LitSatisfied  = solver.LitSatisfied
	LitUnsatisfied = solver.LitUnsatisfied
)

// Mode selects one of the nine preconfigured parameter profiles (spec §6).
type Mode = solver.Mode

const (
	ModeDefault            = solver.ModeDefault
	ModeSAT                = solver.ModeSAT
	ModeUNSAT              = solver.ModeUNSAT
	ModeIncrementalShort   = solver.ModeIncrementalShort
	ModeIncrementalNormal  = solver.ModeIncrementalNormal
	ModeLowMemory          = solver.ModeLowMemory
	ModeDeterministic      = solver.ModeDeterministic
	ModeAggressiveRestarts = solver.ModeAggressiveRestarts
	ModeNoChrono           = solver.ModeNoChrono
)

// StopNowFunc, NewLearntClauseFunc, ReportUnitClauseFunc and
// GetNextUnitClauseFunc mirror internal/solver's callback types (spec §5-6).
type (
	StopNowFunc           = solver.StopNowFunc
	NewLearntClauseFunc   = solver.NewLearntClauseFunc
	ReportUnitClauseFunc  = solver.ReportUnitClauseFunc
	GetNextUnitClauseFunc = solver.GetNextUnitClauseFunc
)

// Solver is an incremental CDCL SAT solver instance (spec §6 `Solver`).
type Solver struct {
	core *solver.Solver
	drat *drat.Writer
}

// New returns a Solver sized for varHint variables, using ModeDefault's
// parameter profile (spec §6 `new`).
func New(varHint int) *Solver {
	return &Solver{core: solver.New(varHint)}
}

// NewWithMode returns a Solver configured with mode's preconfigured
// parameter profile.
func NewWithMode(varHint int, mode Mode) *Solver {
	return &Solver{core: solver.NewWithParams(solver.DefaultParamsForMode(mode), varHint)}
}

// CreateInternalLit maps an external DIMACS-style literal onto its
// internal representation, creating its variable on first use (spec §6
// `create_internal_lit`). Most callers never need this directly; AddClause
// and Solve call it for every literal they're given.
func (s *Solver) CreateInternalLit(extLit int) int {
	return int(s.core.CreateInternalLit(extLit))
}

// AddClause adds a permanent clause given as external (DIMACS-style,
// 1-based signed) literals, optionally 0-terminated (spec §6 `add_clause`).
func (s *Solver) AddClause(extLits ...int) error {
	if n := len(extLits); n > 0 && extLits[n-1] == 0 {
		extLits = extLits[:n-1]
	}
	return s.core.AddClause(extLits)
}

// Solve runs the CDCL search under the given assumptions (spec §6
// `solve`). timeoutSeconds <= 0 disables the local timeout;
// conflictBudget <= 0 disables the conflict budget.
func (s *Solver) Solve(assumptions []int, timeoutSeconds float64, conflictBudget int64) Status {
	return s.core.Solve(assumptions, timeoutSeconds, conflictBudget)
}

// GetLitValue reports extLit's value after a SAT result (spec §6
// `get_lit_value`).
func (s *Solver) GetLitValue(extLit int) LitValue {
	return s.core.GetLitValue(extLit)
}

// IsAssumptionRequired reports whether the i-th literal passed to the most
// recent Solve call participates in the unsat core. Valid only
// immediately after that call returned UNSAT (spec §6
// `is_assumption_required`).
func (s *Solver) IsAssumptionRequired(i int) bool {
	return s.core.IsAssumptionRequired(i)
}

// BoostScore multiplies variable v's VSIDS activity by mult (spec §6
// `boost_score`).
func (s *Solver) BoostScore(v int, mult float64) {
	s.core.BoostScore(v, mult)
}

// FixPolarity forces extLit's polarity for its next decision(s) (spec §6
// `fix_polarity`). If once is true the fix applies only the next time the
// variable is decided.
func (s *Solver) FixPolarity(extLit int, once bool) {
	s.core.FixPolarity(extLit, once)
}

// ClearUserPolarity removes any fixed polarity on variable v (spec §6
// `clear_user_polarity`).
func (s *Solver) ClearUserPolarity(v int) {
	s.core.ClearUserPolarity(v)
}

// Backtrack rolls the trail back to level directly (spec §6 `backtrack`).
func (s *Solver) Backtrack(level int) {
	s.core.Backtrack(level)
}

// SetParam applies one dotted-name parameter (spec §6 `set_param`).
func (s *Solver) SetParam(name string, value float64) error {
	return s.core.SetParam(name, value)
}

// GetParam returns the current value of a registered parameter.
func (s *Solver) GetParam(name string) (float64, error) {
	return s.core.GetParam(name)
}

// Status returns the solver's current sticky status.
func (s *Solver) Status() Status { return s.core.Status() }

// IsError reports whether the current status is a permanent error (spec §7).
func (s *Solver) IsError() bool { return s.core.IsError() }

// GetStatusExplanation returns a free-form diagnostic string (spec §7
// `get_status_explanation`).
func (s *Solver) GetStatusExplanation() string { return s.core.GetStatusExplanation() }

// Stats returns a snapshot of the solver's running counters.
func (s *Solver) Stats() solver.Stats { return s.core.Stats() }

// SetCbStopNow installs the stop-now poll callback (spec §6
// `set_cb_stop_now`).
func (s *Solver) SetCbStopNow(f StopNowFunc) { s.core.SetStopNow(f) }

// SetCbNewLearntCls installs the new-learnt/deleted-clause callback (spec
// §6 `set_cb_new_learnt_cls`).
func (s *Solver) SetCbNewLearntCls(f NewLearntClauseFunc) { s.core.SetNewLearntClauseCallback(f) }

// InterruptNow requests the running or next Solve call stop at its next
// poll (spec §6 `interrupt_now`).
func (s *Solver) InterruptNow() { s.core.InterruptNow() }

// ClearInterrupt resets a previous InterruptNow so a later Solve can proceed.
func (s *Solver) ClearInterrupt() { s.core.ClearInterrupt() }

// SetParallelData wires this Solver into an outer parallel portfolio
// (spec §6 `set_parallel_data`).
func (s *Solver) SetParallelData(threadID int, report ReportUnitClauseFunc, getNext GetNextUnitClauseFunc) {
	s.core.SetParallelData(threadID, report, getNext)
}

// DumpDRAT installs a DRAT proof writer over w as the new-learnt-clause
// callback (spec §6 `dump_drat`). binary selects binary vs text DRAT;
// sortLits sorts each clause's literals by ascending |lit| before writing.
// Any previously installed new-learnt-clause callback is replaced.
func (s *Solver) DumpDRAT(w io.Writer, binary bool, sortLits bool) {
	s.drat = drat.New(w, binary, sortLits)
	s.core.SetNewLearntClauseCallback(s.drat.Callback())
}

// FlushDRAT flushes any buffered DRAT output and reports the first write
// error encountered, if any. It is a no-op if DumpDRAT was never called.
func (s *Solver) FlushDRAT() error {
	if s.drat == nil {
		return nil
	}
	return s.drat.Flush()
}

// NumVars returns the number of internal variables created so far.
func (s *Solver) NumVars() int { return s.core.NumVars() }
