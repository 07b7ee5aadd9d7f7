package solver

// StopNowFunc is polled at the top of every CDCL loop iteration (spec §5);
// simplification, deletion and compaction each run to completion without
// polling it. Returning
// true maps to StatusUserInterrupt, which is recoverable: a later Solve
// call may resume the query.
type StopNowFunc func() bool

// NewLearntClauseFunc is invoked, in external literals, whenever the core
// derives (or is handed) a new clause, and is the core's only proof-
// related surface (spec §1 non-goals: "no proof generation beyond
// emitting learnt/deleted clauses via a callback"). deleted is true when
// the callback reports a clause being removed rather than learnt, which a
// DRAT writer needs to emit a "d " deletion line.
type NewLearntClauseFunc func(extLits []int, deleted bool)

// ReportUnitClauseFunc notifies an outer parallel driver that the core
// derived (or was given) a new level-0 unit (spec §5).
type ReportUnitClauseFunc func(threadID int, extLit int)

// GetNextUnitClauseFunc is polled after every restart to drain units an
// outer parallel driver produced elsewhere; reinit is true the first time
// it is called for a given Solve so the driver can replay its own backlog
// (spec §5). Returning ok=false means no more units are pending right now.
type GetNextUnitClauseFunc func(threadID int, reinit bool) (extLit int, ok bool)

// Callbacks bundles every hook a host may install.
type Callbacks struct {
	StopNow        StopNowFunc
	NewLearntClause NewLearntClauseFunc

	ThreadID       int
	ReportUnit     ReportUnitClauseFunc
	GetNextUnit    GetNextUnitClauseFunc
}
