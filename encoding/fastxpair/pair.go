// Package fastxpair zips the R1 and R2 streams of a paired-end run into
// a stream of read pairs.
//
// The two streams are consumed in lock step: every call to
// Iterator.Next pulls exactly one element from each side, whether or
// not the first side produced an error. Nothing is buffered beyond the
// current element of each side, and no attempt is made to resynchronize
// the streams after a mismatch.
package fastxpair

import (
	"errors"
	"fmt"
	"io"

	gerrors "github.com/grailbio/base/errors"
	"github.com/grailbio/fastxdedup/encoding/fastx"
)

var (
	// ErrR1Short is returned when the R1 stream ends before the R2 stream.
	ErrR1Short = errors.New("reached the end of r1 before r2")
	// ErrR2Short is returned when the R2 stream ends before the R1 stream.
	ErrR2Short = errors.New("reached the end of r2 before r1")
)

// Pair is a read pair whose mates share an identifier. Pairs are only
// constructed by Iterator.
type Pair struct {
	r1, r2 fastx.Record
}

// ID returns the identifier shared by both mates.
func (p *Pair) ID() string { return p.r1.ID() }

// R1 returns the first mate.
func (p *Pair) R1() fastx.Record { return p.r1 }

// R2 returns the second mate.
func (p *Pair) R2() fastx.Record { return p.r2 }

// Check runs the self-check of both mates. The error message names the
// mate that failed.
func (p *Pair) Check() error {
	if err := p.r1.Check(); err != nil {
		return fmt.Errorf("r1: %v", err)
	}
	if err := p.r2.Check(); err != nil {
		return fmt.Errorf("r2: %v", err)
	}
	return nil
}

// newPair validates that r1 and r2 share an identifier.
func newPair(r1, r2 fastx.Record) (*Pair, error) {
	if r1.ID() != r2.ID() {
		return nil, gerrors.E(gerrors.Invalid,
			fmt.Sprintf("read pair had different read IDs: (%s, %s)", r1.ID(), r2.ID()))
	}
	return &Pair{r1: r1, r2: r2}, nil
}

// Iterator produces read pairs from two record iterators. It is a
// single forward pass and is not threadsafe.
type Iterator struct {
	r1, r2 fastx.Iterator
	done   bool
}

// NewIterator creates an Iterator over the R1 and R2 streams.
func NewIterator(r1, r2 fastx.Iterator) *Iterator {
	return &Iterator{r1: r1, r2: r2}
}

// Next returns the next read pair. It returns io.EOF when both streams
// end together. Otherwise the result of one step is:
//
//   - ErrR2Short if only R2 ended, ErrR1Short if only R1 ended. These
//     take precedence over read errors on the other side, and end the
//     iteration: later calls return io.EOF.
//   - the R1 read error, verbatim, if R1 failed; else the R2 read error.
//   - an errors.Invalid error naming both identifiers if they differ.
//
// Read errors and identifier mismatches do not end the iteration; the
// caller decides whether to keep pulling.
func (it *Iterator) Next() (*Pair, error) {
	if it.done {
		return nil, io.EOF
	}
	r1, err1 := it.r1.Next()
	r2, err2 := it.r2.Next()
	end1, end2 := err1 == io.EOF, err2 == io.EOF
	switch {
	case end1 && end2:
		it.done = true
		return nil, io.EOF
	case end2:
		it.done = true
		return nil, ErrR2Short
	case end1:
		it.done = true
		return nil, ErrR1Short
	case err1 != nil:
		return nil, err1
	case err2 != nil:
		return nil, err2
	}
	return newPair(r1, r2)
}
