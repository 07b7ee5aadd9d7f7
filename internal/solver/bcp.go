package solver

// ConflictInfo describes one falsified clause discovered during a single
// propagation round. Binary conflicts carry their two literals directly
// since binary clauses are never materialized in the clause store (spec
// §3: "binary clauses live only in the watch lists").
type ConflictInfo struct {
	IsBinary bool
	BinA     Literal
	BinB     Literal
	Ref      ClauseRef
	Level    int

	// IsAssumption marks a conflict that isn't a falsified clause at all
	// but an assumption literal that was already false on the trail when
	// the assumption loop tried to assert it (spec §4.9): AssumeLit is
	// that literal.
	IsAssumption bool
	AssumeLit    Literal
}

// Propagator runs watched-literal Boolean constraint propagation over a
// Trail/WatchLists/ClauseStore triple (spec §4.2, §4.4). It keeps its own
// FIFO of newly assigned variables rather than walking the trail's linked
// list directly: the trail's splice order exists to support chronological
// backtracking and delayed-implication repair, not to dictate propagation
// order, and a dedicated queue lets BCP continue to use simple
// append/pop semantics even while repair is reordering the trail
// underneath it (see DESIGN.md).
type Propagator struct {
	trail      *Trail
	watches    *WatchLists
	store      *ClauseStore
	queue      *Queue[int32]
	stats      *Stats
	levelCache *LevelScoreCache

	pickRule ConflictPickRule
}

// NewPropagator returns a Propagator wired to the given subsystems.
func NewPropagator(trail *Trail, watches *WatchLists, store *ClauseStore, stats *Stats, levelCache *LevelScoreCache, pickRule ConflictPickRule) *Propagator {
	return &Propagator{
		trail:      trail,
		watches:    watches,
		store:      store,
		queue:      NewQueue[int32](64),
		stats:      stats,
		levelCache: levelCache,
		pickRule:   pickRule,
	}
}

// Enqueue schedules variable v's newly assigned literal for propagation.
func (p *Propagator) Enqueue(v int) { p.queue.Push(int32(v)) }

// Reset drops any pending propagation work (called after a conflict is
// handled and the trail has been rolled back).
func (p *Propagator) Reset() { p.queue.Clear() }

// Propagate drains the propagation queue, returning the set of conflicting
// clauses discovered (possibly more than one: spec §4.4 "stashing") or nil
// if the queue emptied without conflict. Once any conflict is found while
// processing a given literal's watch lists, Propagate finishes that
// literal's lists (to collect every simultaneous contradiction) and then
// stops without looking at further queue entries.
func (p *Propagator) Propagate() []ConflictInfo {
	var conflicts []ConflictInfo

	for !p.queue.IsEmpty() {
		v := int(p.queue.Pop())
		val := p.trail.Value(v)
		trueLit := PositiveLiteral(v)
		if val == False {
			trueLit = NegativeLiteral(v)
		}
		lvl := p.trail.Level(v)

		conflicts = append(conflicts, p.propagateBinary(trueLit, lvl)...)
		conflicts = append(conflicts, p.propagateLong(trueLit, lvl)...)

		if len(conflicts) > 0 {
			p.stats.Propagations++
			return p.stash(conflicts)
		}
		p.stats.Propagations++
	}
	return nil
}

// propagateBinary wakes every binary clause watching trueLit, i.e. every
// clause whose other literal just became falsified.
func (p *Propagator) propagateBinary(trueLit Literal, lvl int) []ConflictInfo {
	falseLit := trueLit.Opposite()
	var out []ConflictInfo
	for _, partner := range p.watches.Binary(trueLit) {
		val := p.trail.LitValue(partner)
		if val == True {
			continue
		}
		if val == False {
			out = append(out, ConflictInfo{IsBinary: true, BinA: falseLit, BinB: partner, Level: lvl})
			continue
		}
		res := p.trail.Assign(partner, lvl, int8(parentBinary), NoClauseRef, falseLit)
		if res == AssignOK {
			p.Enqueue(partner.Var())
		} else if res == AssignContradiction {
			out = append(out, ConflictInfo{IsBinary: true, BinA: falseLit, BinB: partner, Level: lvl})
		}
	}
	return out
}

// propagateLong wakes every long clause watching trueLit (i.e. whose
// other watched literal just became falsified), relocating the watch to a
// fresh literal when possible and compacting the list in place (classic
// MiniSat-style swap-remove scan).
func (p *Propagator) propagateLong(trueLit Literal, lvl int) []ConflictInfo {
	falseLit := trueLit.Opposite()
	var out []ConflictInfo
	list := p.watches.Long(trueLit)
	kept := list[:0]

	for i := 0; i < len(list); i++ {
		rec := list[i]
		if p.store.Deleted(rec.ref) {
			continue
		}
		if p.trail.LitValue(rec.blocker) == True {
			kept = append(kept, rec)
			continue
		}

		size := p.store.Size(rec.ref)
		// Ensure literal 1 is the one that just became false; watched
		// literals always live at indices 0 and 1 (spec §4.1).
		if p.store.Lit(rec.ref, 0) == falseLit {
			p.store.SwapLits(rec.ref, 0, 1)
		}
		other := p.store.Lit(rec.ref, 0)
		if other != rec.blocker && p.trail.LitValue(other) == True {
			list[i].blocker = other
			kept = append(kept, list[i])
			continue
		}

		foundNew := false
		for k := 2; k < size; k++ {
			cand := p.store.Lit(rec.ref, k)
			if p.trail.LitValue(cand) != False {
				p.store.SetLit(rec.ref, 1, cand)
				p.store.SetLit(rec.ref, k, falseLit)
				p.watches.AddLong(cand.Opposite(), rec.ref, other)
				foundNew = true
				break
			}
		}
		if foundNew {
			continue
		}

		kept = append(kept, longWatch{ref: rec.ref, blocker: other})
		val := p.trail.LitValue(other)
		if val == True {
			continue
		}
		if val == False {
			out = append(out, ConflictInfo{Ref: rec.ref, Level: lvl})
			continue
		}
		res := p.trail.Assign(other, lvl, int8(parentLong), rec.ref, BadLiteral)
		if res == AssignOK {
			p.Enqueue(other.Var())
		} else if res == AssignContradiction {
			out = append(out, ConflictInfo{Ref: rec.ref, Level: lvl})
		}
	}
	p.watches.SetLong(trueLit, kept)
	return out
}

// stash applies the configured ConflictPickRule to reduce a batch of
// simultaneous conflicts to the single one conflict analysis will consume,
// discarding the rest (spec §4.4 "Stashing": "collect same-level
// contradictions into a vector and pick one; the rest are simply
// discarded, since the chosen one's analysis will re-derive or subsume
// whatever information they held").
func (p *Propagator) stash(conflicts []ConflictInfo) []ConflictInfo {
	if len(conflicts) <= 1 {
		return conflicts
	}
	best := 0
	for i := 1; i < len(conflicts); i++ {
		if p.betterConflict(conflicts[i], conflicts[best]) {
			best = i
		}
	}
	return conflicts[best : best+1]
}

func (p *Propagator) betterConflict(a, b ConflictInfo) bool {
	switch p.pickRule {
	case PickFirst:
		return false
	case PickLast:
		return true
	case PickSmallest:
		return p.conflictSize(a) < p.conflictSize(b)
	case PickSmallestLBD:
		return p.conflictLBD(a) < p.conflictLBD(b)
	default:
		return false
	}
}

func (p *Propagator) conflictSize(c ConflictInfo) int {
	if c.IsBinary {
		return 2
	}
	return p.store.Size(c.Ref)
}

func (p *Propagator) conflictLBD(c ConflictInfo) int {
	if c.IsBinary {
		return 2
	}
	return int(p.store.Glue(c.Ref))
}

// RepairDelayedImplications fixes variables whose recorded decision level
// no longer matches the level their justifying clause would actually
// force after a chronological backtrack jumped above the non-chronological
// target (spec §4.6, §9: "the repair loop is on the critical path").
// Chronological backtracking can leave an assigned variable's level
// higher than necessary: once the trail settles, a variable's antecedent
// clause may now be unit at an earlier level than the one recorded, and
// the variable must be re-spliced there so later chronological
// backtracks collapse levels correctly.
//
// repair walks the trail head-to-tail (the order in which variables were
// originally implied, which is always a valid topological order of the
// implication graph): by the time a variable V is visited, every variable
// V's antecedent could name has already been corrected to its own true
// level, so justificationLevel(V) reads up-to-date information and a
// single pass fully cascades a correction through every later consequence
// it caused, exactly as spec §4.6's "recursively apply the same treatment
// to any consequence" describes. Each corrected variable is re-enqueued
// and re-propagated (spec: "re-propagates it"), and RepairDelayedImplications
// returns whatever new conflicts that re-propagation uncovers (nil if
// none), mirroring spec §9's "pending contradictions are re-evaluated
// after repair".
func (p *Propagator) RepairDelayedImplications(onReinsert func(v int)) []ConflictInfo {
	var scratch []Literal
	for v := int(p.trail.Head()); v != -1; {
		next := int(p.trail.NextOf(v))

		if p.trail.ParentKind(v) != int8(parentNone) {
			newLevel := p.justificationLevel(v, &scratch)
			curLevel := p.trail.Level(v)
			if newLevel < curLevel {
				lit := PositiveLiteral(v)
				if p.trail.Value(v) == False {
					lit = NegativeLiteral(v)
				}
				kind := p.trail.ParentKind(v)
				ref := p.trail.ParentClause(v)
				partner := p.trail.ParentLit(v)

				p.levelCache.Invalidate(curLevel)
				p.trail.Unassign(v)
				p.trail.Assign(lit, newLevel, kind, ref, partner)
				if onReinsert != nil {
					onReinsert(v)
				}
				p.Enqueue(v)
			}
		}

		v = next
	}
	return p.Propagate()
}

// justificationLevel returns the decision level that var v's antecedent
// clause would force it to, i.e. the maximum level among the antecedent's
// other (falsified) literals, or v's current level if it has no
// antecedent literals to check.
func (p *Propagator) justificationLevel(v int, scratch *[]Literal) int {
	switch p.trail.ParentKind(v) {
	case int8(parentBinary):
		return p.trail.Level(p.trail.ParentLit(v).Var())
	case int8(parentLong):
		ref := p.trail.ParentClause(v)
		*scratch = p.store.Literals(ref, *scratch)
		max := 0
		for _, l := range *scratch {
			if l.Var() == v {
				continue
			}
			if lvl := p.trail.Level(l.Var()); lvl > max {
				max = lvl
			}
		}
		return max
	default:
		return p.trail.Level(v)
	}
}
