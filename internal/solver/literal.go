// Package solver implements the CDCL solving core: packed clause storage,
// watched-literal propagation, conflict analysis, backtracking, restarts,
// VSIDS, clause deletion/simplification/compaction, and the assumption
// front-end. CNF ingestion, proof-file formatting and CLI concerns live
// outside this package.
package solver

import "fmt"

// Literal represents a propositional literal as a non-negative integer
// whose least significant bit carries the sign (0 = positive, 1 = negative)
// and whose upper bits carry the variable index. The solver's variables
// start at index 0, so Literal(0) is the positive literal of variable 0 and
// the sentinel "bad literal" is the distinct negative constant BadLiteral.
type Literal int32

// BadLiteral is the sentinel value used where no literal applies (e.g. an
// empty cached blocker, or the synthetic "conflict" literal fed to conflict
// analysis for the contradicting clause itself).
const BadLiteral Literal = -1

// PositiveLiteral returns the positive literal of variable v.
func PositiveLiteral(v int) Literal {
	return Literal(v * 2)
}

// NegativeLiteral returns the negative literal of variable v.
func NegativeLiteral(v int) Literal {
	return Literal(v*2 + 1)
}

// Var returns the ID of the literal's variable.
func (l Literal) Var() int {
	return int(l) / 2
}

// IsPositive returns true iff the literal represents the variable's value
// rather than its negation.
func (l Literal) IsPositive() bool {
	return l&1 == 0
}

// Opposite returns the negation of l.
func (l Literal) Opposite() Literal {
	return l ^ 1
}

func (l Literal) String() string {
	if l == BadLiteral {
		return "<bad>"
	}
	if l.IsPositive() {
		return fmt.Sprintf("%d", l.Var())
	}
	return fmt.Sprintf("!%d", l.Var())
}

// ExternalToInternal maps signed DIMACS-style external literals (1-based,
// negative for negation) onto internal Literal values, creating variables
// lazily as new external literals are seen. It is the "dense table" of
// spec §3; ToExternal is only populated when a hook (proof callback,
// parallel unit import, or debug model checking) demands external literals
// back, to avoid paying for an inverse map that nobody reads.
type ExternalToInternal struct {
	toInternal map[int]int // external var id (always > 0) -> internal var id
	toExternal []int       // internal var id -> external var id; lazily built
	needInverse bool
}

// NewExternalToInternal returns an empty literal mapper.
func NewExternalToInternal() *ExternalToInternal {
	return &ExternalToInternal{toInternal: map[int]int{}}
}

// RequireInverse marks that ToExternal must be kept up to date from now on.
func (m *ExternalToInternal) RequireInverse() {
	if m.needInverse {
		return
	}
	m.needInverse = true
	m.toExternal = make([]int, len(m.toInternal))
	for ext, in := range m.toInternal {
		m.growInverse(in)
		m.toExternal[in] = ext
	}
}

func (m *ExternalToInternal) growInverse(internalVar int) {
	for len(m.toExternal) <= internalVar {
		m.toExternal = append(m.toExternal, 0)
	}
}

// Lookup returns the internal variable id for external id extVar, and
// whether it was already known.
func (m *ExternalToInternal) Lookup(extVar int) (int, bool) {
	v, ok := m.toInternal[extVar]
	return v, ok
}

// Create registers a fresh mapping from extVar to internalVar.
func (m *ExternalToInternal) Create(extVar, internalVar int) {
	m.toInternal[extVar] = internalVar
	if m.needInverse {
		m.growInverse(internalVar)
		m.toExternal[internalVar] = extVar
	}
}

// ToExternal returns the external variable id for an internal one. Valid
// only after RequireInverse has been called at least once.
func (m *ExternalToInternal) ToExternal(internalVar int) int {
	if internalVar < len(m.toExternal) {
		return m.toExternal[internalVar]
	}
	return 0
}
