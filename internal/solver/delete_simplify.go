package solver

import "sort"

// DeletionPolicy decides when and how many learnt clauses to reclaim
// (spec §4.8). Like the restart trigger, its own countdown grows either
// arithmetically or multiplicatively between runs.
type DeletionPolicy struct {
	fraction       float64
	neverDeleteGlue uint32

	trigger     int64
	triggerInc  int64
	multiplier  bool
	sinceLast   int64
}

// NewDeletionPolicy returns a policy using the given Params.
func NewDeletionPolicy(p *Params) *DeletionPolicy {
	return &DeletionPolicy{
		fraction:        p.DeletionFraction,
		neverDeleteGlue: p.GlueNeverDelete,
		trigger:         p.DeletionTriggerInit,
		triggerInc:      p.DeletionTriggerInc,
		multiplier:      p.DeletionMultiplicative,
	}
}

// ShouldRun reports whether enough conflicts have passed since the last
// deletion run to trigger another one.
func (d *DeletionPolicy) ShouldRun(conflictsSinceLast int64) bool {
	return conflictsSinceLast >= d.trigger
}

// Advance grows the trigger countdown for next time (spec §4.8: "either
// arithmetic or multiplicative growth between runs, like the restart
// trigger").
func (d *DeletionPolicy) Advance() {
	if d.multiplier {
		d.trigger = d.trigger + d.trigger/2
	} else {
		d.trigger += d.triggerInc
	}
}

// deletable reports whether ref is even a candidate for removal: it must
// not be protected, and its glue must exceed neverDeleteGlue (spec §4.8:
// "glue <= 2 clauses are permanently exempt").
func (d *DeletionPolicy) deletable(store *ClauseStore, ref ClauseRef) bool {
	if store.Protected(ref) {
		return false
	}
	return store.Glue(ref) > d.neverDeleteGlue
}

// Run sorts the store's learnt clauses worst-first (by descending glue,
// then ascending activity) and removes the configured fraction of the
// deletable suffix, unwatching each one first. usedInAntecedent reports
// whether ref currently justifies a trail assignment (those clauses are
// never removed, regardless of glue, to keep the trail consistent).
func (d *DeletionPolicy) Run(store *ClauseStore, watches *WatchLists, usedInAntecedent func(ClauseRef) bool, onDelete func(ClauseRef), stats *Stats) {
	learnts := append([]ClauseRef(nil), store.Learnts()...)
	var candidates []ClauseRef
	for _, ref := range learnts {
		if d.deletable(store, ref) && !usedInAntecedent(ref) {
			candidates = append(candidates, ref)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		gi, gj := store.Glue(candidates[i]), store.Glue(candidates[j])
		if gi != gj {
			return gi > gj
		}
		return store.Activity(candidates[i]) < store.Activity(candidates[j])
	})

	n := int(float64(len(candidates)) * d.fraction)
	toDelete := map[ClauseRef]bool{}
	for i := 0; i < n && i < len(candidates); i++ {
		toDelete[candidates[i]] = true
	}
	if len(toDelete) == 0 {
		return
	}

	kept := learnts[:0]
	for _, ref := range learnts {
		if !toDelete[ref] {
			kept = append(kept, ref)
			continue
		}
		if onDelete != nil {
			onDelete(ref)
		}
		unwatchLong(store, watches, ref)
		store.Delete(ref)
		stats.DeletedClauses++
	}
	store.SetLearnts(kept)
}

// unwatchLong removes ref's two watch entries (its literals at index 0
// and 1) before the clause is marked deleted.
func unwatchLong(store *ClauseStore, watches *WatchLists, ref ClauseRef) {
	if store.Size(ref) < 2 {
		return
	}
	a := store.Lit(ref, 0)
	b := store.Lit(ref, 1)
	watches.RemoveLong(a.Opposite(), ref)
	watches.RemoveLong(b.Opposite(), ref)
}

// Simplify drops every initial clause satisfied at decision level 0 and
// strikes root-falsified literals from the rest (spec §4.8's periodic
// simplification pass, run only when DecisionLevel()==0). It returns the
// number of clauses removed.
func Simplify(trail *Trail, store *ClauseStore, watches *WatchLists, onDelete func(ClauseRef), stats *Stats) int {
	removed := 0
	constraints := store.Constraints()
	kept := constraints[:0]
	for _, ref := range constraints {
		size := store.Size(ref)
		satisfied := false
		write := 0
		for i := 0; i < size; i++ {
			l := store.Lit(ref, i)
			switch trail.LitValue(l) {
			case True:
				satisfied = true
			case False:
				continue // drop this literal
			default:
				store.SetLit(ref, write, l)
				write++
			}
		}
		if satisfied {
			if onDelete != nil {
				onDelete(ref)
			}
			unwatchLong(store, watches, ref)
			store.Delete(ref)
			removed++
			continue
		}
		if write != size {
			store.Truncate(ref, write)
		}
		kept = append(kept, ref)
	}
	store.SetConstraints(kept)
	stats.Simplifications++
	return removed
}

// MaybeCompact runs ClauseStore.Compact when wasted storage exceeds
// threshold, fixing up every watch-list reference through relocate (spec
// §4.8's compaction pass).
func MaybeCompact(store *ClauseStore, watches *WatchLists, threshold float64, stats *Stats) bool {
	if !store.CompactionNeeded(threshold) {
		return false
	}
	store.Compact(func(old, new ClauseRef) {
		watches.RelocateClauseRef(old, new)
	})
	stats.Compactions++
	return true
}
