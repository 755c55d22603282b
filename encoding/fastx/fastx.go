// Package fastx abstracts over FASTA and FASTQ records. Code that only
// needs a record's identifier and sequence, such as deduplication, is
// written against Record and Iterator and never against a concrete
// format.
package fastx

import (
	"bufio"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/fastxdedup/encoding/fasta"
	"github.com/grailbio/fastxdedup/encoding/fastq"
)

// Record is the capability every sequence record provides.
type Record interface {
	// ID returns the record identifier. It is nonempty for records that
	// pass Check.
	ID() string
	// Seq returns the record bases. It may be empty.
	Seq() []byte
	// Check reports whether the record violates the structural rules
	// of its format.
	Check() error
}

var (
	_ Record = (*fasta.Record)(nil)
	_ Record = (*fastq.Read)(nil)
)

// Iterator yields records one at a time. Next returns io.EOF once the
// underlying stream is exhausted; any other error is a read failure.
type Iterator interface {
	Next() (Record, error)
}

// Writer persists records in a specific format.
type Writer interface {
	Write(Record) error
}

// Type is a sequence file format.
type Type int

const (
	// Invalid is neither FASTA nor FASTQ.
	Invalid Type = iota
	// FASTA files start with '>'.
	FASTA
	// FASTQ files start with '@'.
	FASTQ
)

func (t Type) String() string {
	switch t {
	case FASTA:
		return "fasta"
	case FASTQ:
		return "fastq"
	default:
		return "invalid"
	}
}

// Sniff determines the format of the data in r from its first byte
// without consuming it. Empty input is Invalid.
func Sniff(r *bufio.Reader) (Type, error) {
	b, err := r.Peek(1)
	if err == io.EOF {
		return Invalid, nil
	}
	if err != nil {
		return Invalid, err
	}
	switch b[0] {
	case '>':
		return FASTA, nil
	case '@':
		return FASTQ, nil
	}
	return Invalid, nil
}

// NewIterator returns an iterator over the records of the given format
// read from r.
func NewIterator(typ Type, r io.Reader) (Iterator, error) {
	switch typ {
	case FASTA:
		return &fastaIterator{s: fasta.NewScanner(r)}, nil
	case FASTQ:
		return &fastqIterator{s: fastq.NewScanner(r, fastq.All)}, nil
	}
	return nil, errors.E(errors.NotSupported, "no iterator for format", typ.String())
}

// NewWriter returns a writer that writes records of the given format to
// w. Records passed to it must be of the same format.
func NewWriter(typ Type, w io.Writer) (Writer, error) {
	switch typ {
	case FASTA:
		return &fastaWriter{w: fasta.NewWriter(w)}, nil
	case FASTQ:
		return &fastqWriter{w: fastq.NewWriter(w)}, nil
	}
	return nil, errors.E(errors.NotSupported, "no writer for format", typ.String())
}

type fastaIterator struct {
	s *fasta.Scanner
}

func (it *fastaIterator) Next() (Record, error) {
	r := new(fasta.Record)
	if !it.s.Scan(r) {
		if err := it.s.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	return r, nil
}

type fastqIterator struct {
	s *fastq.Scanner
}

func (it *fastqIterator) Next() (Record, error) {
	r := new(fastq.Read)
	if !it.s.Scan(r) {
		if err := it.s.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	return r, nil
}

type fastaWriter struct {
	w *fasta.Writer
}

func (w *fastaWriter) Write(r Record) error {
	rec, ok := r.(*fasta.Record)
	if !ok {
		// Other formats carry at least an ID and a sequence.
		rec = fasta.NewRecord(r.ID(), "", r.Seq())
	}
	return w.w.Write(rec)
}

type fastqWriter struct {
	w *fastq.Writer
}

func (w *fastqWriter) Write(r Record) error {
	read, ok := r.(*fastq.Read)
	if !ok {
		return errors.E(errors.Invalid, "cannot write non-FASTQ record", r.ID(), "as FASTQ")
	}
	return w.w.Write(read)
}
