package solver

// RestartStrategy selects which restart policy ShouldRestart evaluates.
type RestartStrategy int8

const (
	RestartArithmetic RestartStrategy = iota
	RestartLuby
	RestartLBDAverage
)

// RestartController decides when the solver should unassign every
// non-level-0 literal and resume search with updated heuristics (spec
// §4.7). The Solver builds one controller from Params at construction and
// keeps it for every query; there is no separate configuration per query
// phase (initial / short-incremental / normal-incremental). The controller
// itself only tracks runtime counters.
type RestartController struct {
	strategy RestartStrategy

	// Numeric (arithmetic or Luby).
	conflictThreshold int64
	conflictsSince    int64
	arithmeticInc     int64
	lubyIndex         int64
	localRestarts     bool
	levelOpenedAt     int64 // conflict count when the current top decision level opened

	// LBD-average with blocking.
	lbdWindow    EMA
	lbdGlobal    EMA
	lbdWindowMul float64

	trailWindow   EMA
	trailBlockMul float64
}

// luby returns the i-th term (0-indexed) of the Luby sequence
// 1,1,2,1,1,2,4,1,1,2,1,1,2,4,8,... used to schedule restarts.
func luby(i int64) int64 {
	size, seq := int64(1), int64(0)
	for size < i+1 {
		seq++
		size = 2*size + 1
	}
	for size-1 != i {
		size = (size - 1) / 2
		seq--
		i = i % size
	}
	return int64(1) << uint(seq)
}

// NewArithmeticRestartController returns a controller that restarts every
// `init` conflicts, growing the threshold by `inc` after each restart.
func NewArithmeticRestartController(init, inc int64, local bool) *RestartController {
	return &RestartController{
		strategy:          RestartArithmetic,
		conflictThreshold: init,
		arithmeticInc:     inc,
		localRestarts:     local,
	}
}

// NewLubyRestartController returns a controller whose threshold follows
// base * luby(k) for a growing k.
func NewLubyRestartController(base int64, local bool) *RestartController {
	return &RestartController{
		strategy:          RestartLuby,
		conflictThreshold: base,
		arithmeticInc:     base,
		lubyIndex:         1,
		localRestarts:     local,
	}
}

// NewLBDAverageRestartController returns a controller that restarts when
// the recent-window LBD mean exceeds windowMul times the global mean,
// blocked while the trail is growing at least trailBlockMul times the
// recent-window trail-size-at-conflict mean.
func NewLBDAverageRestartController(windowDecay, globalDecay, windowMul, trailBlockMul float64) *RestartController {
	return &RestartController{
		strategy:      RestartLBDAverage,
		lbdWindow:     NewEMA(windowDecay),
		lbdGlobal:     NewEMA(globalDecay),
		lbdWindowMul:  windowMul,
		trailWindow:   NewEMA(windowDecay),
		trailBlockMul: trailBlockMul,
	}
}

// OnConflict records one conflict's LBD and the trail size at the time of
// the conflict, and returns whether a restart should fire now.
func (rc *RestartController) OnConflict(lbd int, trailSize int) bool {
	rc.conflictsSince++

	switch rc.strategy {
	case RestartArithmetic, RestartLuby:
		return rc.conflictsSince >= rc.conflictThreshold
	case RestartLBDAverage:
		rc.lbdWindow.Add(float64(lbd))
		rc.lbdGlobal.Add(float64(lbd))
		rc.trailWindow.Add(float64(trailSize))

		if float64(trailSize) > rc.trailBlockMul*rc.trailWindow.Val() {
			return false // blocked: solver is making local progress
		}
		return rc.lbdWindow.Val()*rc.lbdWindowMul > rc.lbdGlobal.Val()
	default:
		return false
	}
}

// NotifyLevelOpened lets the controller track local-restart bookkeeping
// (restart relative to when the current top decision level was opened,
// rather than to the last restart, when localRestarts is set).
func (rc *RestartController) NotifyLevelOpened() {
	if rc.localRestarts {
		rc.conflictsSince = 0
	}
}

// Reset is called after a restart fires: it clears the conflict counter
// and advances the numeric schedule.
func (rc *RestartController) Reset() {
	rc.conflictsSince = 0
	switch rc.strategy {
	case RestartArithmetic:
		rc.conflictThreshold += rc.arithmeticInc
	case RestartLuby:
		rc.lubyIndex++
		rc.conflictThreshold = rc.arithmeticInc * luby(rc.lubyIndex)
	}
}
