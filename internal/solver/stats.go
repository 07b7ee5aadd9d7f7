package solver

// Stats is a read-only snapshot of search counters (original_source
// TopiStatistics.hpp; mirrored here from yass.Solver's own Total*
// counters and gophersat's solver.Stats).
type Stats struct {
	Conflicts             int64
	Restarts              int64
	Decisions             int64
	Propagations          int64
	LearntClauses         int64
	DeletedClauses        int64
	Simplifications       int64
	Compactions           int64
	AssumptionReuseLevels int64 // trail levels saved by reuse-trail (spec §8 scenario 6)
}
