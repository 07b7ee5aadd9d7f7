// Package ingest adapts DIMACS CNF files onto a topor solver. It is the
// only part of this module that imports github.com/rhartert/dimacs; the
// core solver package never parses text.
package ingest

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rhartert/dimacs"
)

// Solver is the subset of *topor.Solver the loader needs.
type Solver interface {
	AddClause(extLits ...int) error
}

func reader(filename string) (io.ReadCloser, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	rc := io.ReadCloser(file)
	if strings.HasSuffix(filename, ".gz") {
		rc, err = gzip.NewReader(rc)
		if err != nil {
			file.Close()
			return nil, err
		}
	}
	return rc, nil
}

// LoadFile parses the DIMACS CNF file at filename (transparently
// gzip-decompressing if it ends in ".gz") and adds every clause to s.
func LoadFile(filename string, s Solver) (nVars, nClauses int, err error) {
	r, err := reader(filename)
	if err != nil {
		return 0, 0, fmt.Errorf("ingest: opening %q: %w", filename, err)
	}
	defer r.Close()
	return Load(r, s)
}

// Load parses DIMACS CNF from r and adds every clause to s.
func Load(r io.Reader, s Solver) (nVars, nClauses int, err error) {
	b := &builder{solver: s}
	if err := dimacs.ReadBuilder(r, b); err != nil {
		return 0, 0, fmt.Errorf("ingest: %w", err)
	}
	return b.nVars, b.nClauses, nil
}

// builder implements dimacs.Builder, translating directly into AddClause
// calls rather than buffering the whole formula first.
type builder struct {
	solver  Solver
	nVars   int
	nClauses int
}

func (b *builder) Problem(problem string, nVars int, nClauses int) error {
	if problem != "cnf" {
		return fmt.Errorf("unsupported problem type %q", problem)
	}
	b.nVars = nVars
	b.nClauses = nClauses
	return nil
}

func (b *builder) Clause(tmpClause []int) error {
	return b.solver.AddClause(tmpClause...)
}

func (b *builder) Comment(_ string) error {
	return nil
}
