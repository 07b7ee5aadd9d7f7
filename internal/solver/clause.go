package solver

import "math"

// ClauseRef identifies a long clause (size >= 3) inside a clauseBackend. It
// is a narrow integer rather than a pointer because it must fit inside a
// watch record and inside a variable's parent slot (spec §3, §9): no
// pointer into the backend's buffer would survive a reallocation. The
// backend interprets the bits of a ClauseRef however suits its own layout;
// callers never do arithmetic on it directly.
//
// Binary clauses (size 2) are never given a ClauseRef: they live only as
// mutual watch entries (see watch.go).
type ClauseRef uint32

// NoClauseRef is the zero value, meaning "no long clause" (e.g. a decision
// variable's parent, or a trail entry implied by a binary clause instead).
const NoClauseRef ClauseRef = 0

// clauseSizeBits/clauseGlueBits size the standard-layout header word. A
// clause's size is capped at 2^clauseSizeBits-1 literals (Add rejects a
// longer clause with ErrIndexTooNarrow) and its glue at 2^clauseGlueBits-1
// (a larger glue saturates rather than overflows, which only degrades
// LBD-based heuristics, never correctness).
const (
	clauseSizeBits = 20
	clauseGlueBits = 10

	clauseSizeMask = (1 << clauseSizeBits) - 1
	clauseGlueMask = (1 << clauseGlueBits) - 1

	headerLearntShift = 31
	headerDeletedShift = 30
	headerGlueShift    = clauseSizeBits
)

// clauseBackend is the uniform accessor interface behind which the
// standard (word-packed) and bit-compressed clause stores both live,
// selected once at Solver construction (spec §9: "keep algorithmic code
// identical"). ref values from one backend are meaningless to the other;
// ClauseStore never mixes them.
type clauseBackend interface {
	// Add allocates a new clause with the given literals (copied in) and
	// returns its ref. lits must have length >= 2.
	Add(lits []Literal, isLearnt bool, glue uint32) (ClauseRef, error)

	Size(ref ClauseRef) int
	Lit(ref ClauseRef, i int) Literal
	SetLit(ref ClauseRef, i int, l Literal)
	SwapLits(ref ClauseRef, i, j int)
	Truncate(ref ClauseRef, newSize int) // used by Simplify to shrink in place

	IsLearnt(ref ClauseRef) bool
	Glue(ref ClauseRef) uint32
	SetGlue(ref ClauseRef, g uint32)
	Activity(ref ClauseRef) float32
	SetActivity(ref ClauseRef, a float32)
	Protected(ref ClauseRef) bool
	SetProtected(ref ClauseRef, p bool)

	Deleted(ref ClauseRef) bool
	MarkDeleted(ref ClauseRef)

	WastedUnits() int64
	LiveUnits() int64

	// Compact relocates every live clause to the front of the backend's
	// storage, invoking relocate(oldRef, newRef) for each one so callers
	// (the watch lists) can rewrite their references.
	Compact(relocate func(old, new ClauseRef))
}

// --- standard (word-packed) backend -----------------------------------

// standardBackend stores clauses contiguously in a single growable []uint32
// buffer: one header word, one extra word for learnt clauses (activity as
// float32 bits, with the top bit reserved as the "skip deletion once"
// flag), then `size` literal words. This is the layout spec §3 calls
// "standard layout".
type standardBackend struct {
	buf     []uint32
	wasted  int64
	live    int64
}

func newStandardBackend() *standardBackend {
	return &standardBackend{buf: make([]uint32, 0, 1024)}
}

func (b *standardBackend) headerWords(isLearnt bool) int {
	if isLearnt {
		return 2
	}
	return 1
}

func (b *standardBackend) Add(lits []Literal, isLearnt bool, glue uint32) (ClauseRef, error) {
	size := len(lits)
	if size > clauseSizeMask {
		return 0, ErrIndexTooNarrow
	}
	if glue > clauseGlueMask {
		glue = clauseGlueMask
	}
	ref := ClauseRef(len(b.buf))
	if uint64(ref)+uint64(b.headerWords(isLearnt))+uint64(size) > math.MaxUint32 {
		return 0, ErrIndexTooNarrow
	}

	header := uint32(glue)<<headerGlueShift | uint32(size)
	if isLearnt {
		header |= 1 << headerLearntShift
	}
	b.buf = append(b.buf, header)
	if isLearnt {
		b.buf = append(b.buf, 0) // skip-bit(1) + activity bits(31), both zero initially
	}
	for _, l := range lits {
		b.buf = append(b.buf, uint32(l))
	}
	b.live += int64(b.headerWords(isLearnt) + size)
	return ref, nil
}

func (b *standardBackend) header(ref ClauseRef) uint32 { return b.buf[ref] }

func (b *standardBackend) IsLearnt(ref ClauseRef) bool {
	return b.header(ref)&(1<<headerLearntShift) != 0
}

func (b *standardBackend) Deleted(ref ClauseRef) bool {
	return b.header(ref)&(1<<headerDeletedShift) != 0
}

func (b *standardBackend) MarkDeleted(ref ClauseRef) {
	b.buf[ref] |= 1 << headerDeletedShift
	b.wasted += int64(b.headerWords(b.IsLearnt(ref)) + b.Size(ref))
}

func (b *standardBackend) Size(ref ClauseRef) int {
	return int(b.header(ref) & clauseSizeMask)
}

func (b *standardBackend) Glue(ref ClauseRef) uint32 {
	return (b.header(ref) >> headerGlueShift) & clauseGlueMask
}

func (b *standardBackend) SetGlue(ref ClauseRef, g uint32) {
	if g > clauseGlueMask {
		g = clauseGlueMask
	}
	h := b.buf[ref]
	h &^= clauseGlueMask << headerGlueShift
	h |= g << headerGlueShift
	b.buf[ref] = h
}

func (b *standardBackend) litBase(ref ClauseRef) int {
	return int(ref) + b.headerWords(b.IsLearnt(ref))
}

func (b *standardBackend) Lit(ref ClauseRef, i int) Literal {
	return Literal(b.buf[b.litBase(ref)+i])
}

func (b *standardBackend) SetLit(ref ClauseRef, i int, l Literal) {
	b.buf[b.litBase(ref)+i] = uint32(l)
}

func (b *standardBackend) SwapLits(ref ClauseRef, i, j int) {
	base := b.litBase(ref)
	b.buf[base+i], b.buf[base+j] = b.buf[base+j], b.buf[base+i]
}

func (b *standardBackend) Truncate(ref ClauseRef, newSize int) {
	h := b.buf[ref]
	h &^= clauseSizeMask
	h |= uint32(newSize)
	b.buf[ref] = h
}

func (b *standardBackend) extraWord(ref ClauseRef) uint32 {
	return b.buf[int(ref)+1]
}

func (b *standardBackend) Activity(ref ClauseRef) float32 {
	if !b.IsLearnt(ref) {
		return 0
	}
	bits := b.extraWord(ref) &^ (1 << 31)
	return math.Float32frombits(bits << 1 >> 1)
}

func (b *standardBackend) SetActivity(ref ClauseRef, a float32) {
	if !b.IsLearnt(ref) {
		return
	}
	skip := b.buf[int(ref)+1] & (1 << 31)
	bits := math.Float32bits(a) &^ (1 << 31)
	b.buf[int(ref)+1] = skip | bits
}

func (b *standardBackend) Protected(ref ClauseRef) bool {
	if !b.IsLearnt(ref) {
		return false
	}
	return b.extraWord(ref)&(1<<31) != 0
}

func (b *standardBackend) SetProtected(ref ClauseRef, p bool) {
	if !b.IsLearnt(ref) {
		return
	}
	if p {
		b.buf[int(ref)+1] |= 1 << 31
	} else {
		b.buf[int(ref)+1] &^= 1 << 31
	}
}

func (b *standardBackend) WastedUnits() int64 { return b.wasted }
func (b *standardBackend) LiveUnits() int64   { return b.live }

func (b *standardBackend) Compact(relocate func(old, new ClauseRef)) {
	newBuf := make([]uint32, 0, len(b.buf))
	var i int
	for i < len(b.buf) {
		ref := ClauseRef(i)
		learnt := b.IsLearnt(ref)
		words := b.headerWords(learnt) + b.Size(ref)
		if !b.Deleted(ref) {
			newRef := ClauseRef(len(newBuf))
			newBuf = append(newBuf, b.buf[i:i+words]...)
			relocate(ref, newRef)
		}
		i += words
	}
	b.buf = newBuf
	b.wasted = 0
	b.live = int64(len(newBuf))
}
