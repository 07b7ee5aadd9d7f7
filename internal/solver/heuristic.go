package solver

import (
	"github.com/rhartert/yagh"
)

// Heuristic is the VSIDS decision heuristic: a binary min-heap over
// variables (spec §4.7) keyed by the negation of their activity score so
// popping yields the highest-scoring unassigned variable, plus
// phase-saving and user-fixed polarities (spec §4.8's decide()).
//
// The heap is allowed to hold variables that have since been assigned by
// propagation (spec §3 invariant 6 "plus transient states during
// re-insertion"): Select lazily skips them rather than eagerly removing
// them on every implication, exactly as yagh-backed VSIDS heaps in this
// corpus (rhartert/yass's VarOrder) already do.
type Heuristic struct {
	order *yagh.IntMap[float64]

	scores   []float64
	scoreInc float64

	// decay itself drifts from an initial value toward scoreDecayMax at a
	// fixed rate, per spec §4.8 ("var_decay_update_conf_rate").
	scoreDecay            float64
	scoreDecayMax         float64
	decayUpdateConfRate   int64
	conflictsSinceUpdate  int64

	phases      []LBool
	phaseSaving bool

	// User-fixed polarities: fixedPolarity[v] is Unknown if unfixed, else the
	// forced polarity; fixedOnce[v] clears the fix after one Select call.
	fixedPolarity []LBool
	fixedOnce     []bool

	everyNthFlip int // 0 disables; otherwise flip phase every Nth decision
	decideCount  int64
}

// NewHeuristic returns an empty VSIDS heap.
func NewHeuristic(initialDecay, maxDecay float64, decayUpdateConfRate int64, phaseSaving bool) *Heuristic {
	return &Heuristic{
		order:               yagh.New[float64](0),
		scoreInc:            1,
		scoreDecay:          initialDecay,
		scoreDecayMax:       maxDecay,
		decayUpdateConfRate: decayUpdateConfRate,
		phaseSaving:         phaseSaving,
	}
}

// AddVar registers a new variable with zero activity and the given
// initial phase.
func (h *Heuristic) AddVar(initPhase bool) {
	v := len(h.scores)
	h.scores = append(h.scores, 0)
	h.phases = append(h.phases, Lift(initPhase))
	h.fixedPolarity = append(h.fixedPolarity, Unknown)
	h.fixedOnce = append(h.fixedOnce, false)
	h.order.GrowBy(1)
	h.order.Put(v, 0)
}

// Reinsert puts v back into the pool of selectable variables, recording
// its last-assigned value for phase saving (spec §4.3 unassign()).
func (h *Heuristic) Reinsert(v int, lastValue LBool) {
	if h.phaseSaving && lastValue != Unknown {
		h.phases[v] = lastValue
	}
	h.order.Put(v, -h.scores[v])
}

// BumpScore increases v's activity by the current increment, rescaling
// every score (and the caller's per-level cache, via rescaleHook) if the
// increment would overflow.
func (h *Heuristic) BumpScore(v int, rescaleHook func(factor float64)) {
	h.scores[v] += h.scoreInc
	if h.order.Contains(v) {
		h.order.Put(v, -h.scores[v])
	}
	if h.scores[v] > 1e100 {
		h.rescale(rescaleHook)
	}
}

// BumpScoreMaple applies a MapleLCMDist-style weighting in addition to
// the usual bump: variables whose resolution step occurred close to the
// conflict (low "level of second highest" gap) are weighted more heavily
// (spec §4.5 step 8, original_source TopiVarScores.hpp).
func (h *Heuristic) BumpScoreMaple(v int, secondHighestLevel, conflictLevel int, rescaleHook func(float64)) {
	gap := conflictLevel - secondHighestLevel
	weight := 1.0
	if gap > 0 {
		weight = 1.0 + 1.0/float64(gap)
	}
	h.scores[v] += h.scoreInc * weight
	if h.order.Contains(v) {
		h.order.Put(v, -h.scores[v])
	}
	if h.scores[v] > 1e100 {
		h.rescale(rescaleHook)
	}
}

func (h *Heuristic) rescale(rescaleHook func(float64)) {
	const factor = 1e-100
	h.scoreInc *= factor
	for v := range h.scores {
		h.scores[v] *= factor
		if h.order.Contains(v) {
			h.order.Put(v, -h.scores[v])
		}
	}
	if rescaleHook != nil {
		rescaleHook(factor)
	}
}

// DecayScores bumps the shared increment, which is equivalent to decaying
// every score without touching them individually.
func (h *Heuristic) DecayScores(rescaleHook func(float64)) {
	h.scoreInc /= h.scoreDecay
	if h.scoreInc > 1e100 {
		h.rescale(rescaleHook)
	}
}

// AfterConflict drifts the decay rate toward its configured maximum every
// decayUpdateConfRate conflicts (spec §4.8).
func (h *Heuristic) AfterConflict() {
	h.conflictsSinceUpdate++
	if h.decayUpdateConfRate <= 0 || h.conflictsSinceUpdate < h.decayUpdateConfRate {
		return
	}
	h.conflictsSinceUpdate = 0
	if h.scoreDecay < h.scoreDecayMax {
		h.scoreDecay += 0.01
		if h.scoreDecay > h.scoreDecayMax {
			h.scoreDecay = h.scoreDecayMax
		}
	}
}

// ScoreOf returns v's current raw activity score.
func (h *Heuristic) ScoreOf(v int) float64 { return h.scores[v] }

// Boost multiplies v's activity by mult directly (spec §6 `boost_score`,
// distinct from the per-conflict additive BumpScore).
func (h *Heuristic) Boost(v int, mult float64) {
	h.scores[v] *= mult
	if h.order.Contains(v) {
		h.order.Put(v, -h.scores[v])
	}
}

// FixPolarity forces v's next Select to return lit's polarity. If once is
// true the fix is cleared after being used; otherwise it is sticky until
// ClearUserPolarity is called.
func (h *Heuristic) FixPolarity(v int, lit Literal, once bool) {
	h.fixedPolarity[v] = Lift(lit.IsPositive())
	h.fixedOnce[v] = once
}

// ClearUserPolarity removes any fixed polarity for v.
func (h *Heuristic) ClearUserPolarity(v int) {
	h.fixedPolarity[v] = Unknown
	h.fixedOnce[v] = false
}

// isAssignedFn lets Select skip variables the trail already committed.
type isAssignedFn func(v int) bool

// Select pops the heap until it finds an unassigned variable and returns
// the literal to decide on, honoring fixed polarity, phase saving, and an
// every-Nth-decision flip override.
func (h *Heuristic) Select(assigned isAssignedFn) (Literal, bool) {
	for {
		next, ok := h.order.Pop()
		if !ok {
			return BadLiteral, false
		}
		v := next.Elem
		if assigned(v) {
			continue
		}

		h.decideCount++
		if h.everyNthFlip > 0 && h.decideCount%int64(h.everyNthFlip) == 0 {
			if h.phases[v] == False {
				return PositiveLiteral(v), true
			}
			return NegativeLiteral(v), true
		}

		if h.fixedPolarity[v] != Unknown {
			lb := h.fixedPolarity[v]
			if h.fixedOnce[v] {
				h.fixedPolarity[v] = Unknown
				h.fixedOnce[v] = false
			}
			if lb == True {
				return PositiveLiteral(v), true
			}
			return NegativeLiteral(v), true
		}

		switch h.phases[v] {
		case False:
			return NegativeLiteral(v), true
		default:
			return PositiveLiteral(v), true
		}
	}
}
