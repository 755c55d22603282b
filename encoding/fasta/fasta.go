// Package fasta contains code for streaming FASTA records.
// FASTA files consist of a number of named sequences that may be
// interrupted by newlines.  For example:
//
// >read1 sample=A
// ACGTAC
// GAGGAC
// GCG
// >read2
// ACGT
//
// Note: the record ID is the stretch of characters excluding spaces
// immediately after '>'. Any text after the first space is kept as the
// record description. For example, '>chr1 A viral sequence' has ID 'chr1'
// and description 'A viral sequence'.
package fasta

import (
	"bufio"
	"bytes"
	"errors"
	"io"

	pkgerrors "github.com/pkg/errors"
)

const (
	maxLineLen = 1024 * 1024 * 300 // 300 MB
)

// ErrInvalid is returned when sequence data appears before the first
// header line.
var ErrInvalid = errors.New("invalid FASTA file")

// Record is a single named FASTA sequence.
type Record struct {
	id, desc string
	seq      []byte
}

// NewRecord creates a record with the given fields.
func NewRecord(id, desc string, seq []byte) *Record {
	return &Record{id: id, desc: desc, seq: seq}
}

// ID returns the record identifier, without the leading ">".
func (r *Record) ID() string { return r.id }

// Desc returns the header text that follows the identifier.
func (r *Record) Desc() string { return r.desc }

// Seq returns the sequence with line breaks removed.
func (r *Record) Seq() []byte { return r.seq }

// Check validates the record: the ID must be nonempty and the sequence
// must be ASCII.
func (r *Record) Check() error {
	if r.id == "" {
		return errors.New("expecting id for FASTA record")
	}
	for _, c := range r.seq {
		if c >= 0x80 {
			return errors.New("non-ascii character found in sequence")
		}
	}
	return nil
}

func splitHeader(line []byte) (id, desc string) {
	i := bytes.IndexAny(line, " \t")
	if i < 0 {
		return string(line), ""
	}
	return string(line[:i]), string(bytes.TrimLeft(line[i+1:], " \t"))
}

// Scanner reads FASTA records one at a time, holding no more than one
// record in memory. Scanners are not threadsafe.
type Scanner struct {
	b *bufio.Scanner
	// header is the header line of the next record, already consumed
	// from b.
	header  []byte
	pending bool
	err     error
}

// NewScanner creates a Scanner that reads FASTA data from r.
func NewScanner(r io.Reader) *Scanner {
	b := bufio.NewScanner(r)
	b.Buffer(nil, maxLineLen)
	return &Scanner{b: b}
}

// Scan reads the next record into rec. It returns false at the end of
// the input or on error; once Scan returns false it never returns true
// again. Err distinguishes the two cases.
func (s *Scanner) Scan(rec *Record) bool {
	if s.err != nil {
		return false
	}
	if !s.pending {
		if !s.nextHeader() {
			return false
		}
	}
	rec.id, rec.desc = splitHeader(s.header[1:])
	s.pending = false
	var seq []byte
	for s.b.Scan() {
		line := bytes.TrimRight(s.b.Bytes(), "\r")
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			s.header = append(s.header[:0], line...)
			s.pending = true
			break
		}
		seq = append(seq, line...)
	}
	if !s.pending {
		if err := s.b.Err(); err != nil {
			s.err = pkgerrors.Wrap(err, "couldn't read FASTA data")
			return false
		}
	}
	rec.seq = seq
	return true
}

// nextHeader advances to the first header line of the input.
func (s *Scanner) nextHeader() bool {
	for s.b.Scan() {
		line := bytes.TrimRight(s.b.Bytes(), "\r")
		if len(line) == 0 {
			continue
		}
		if line[0] != '>' {
			s.err = ErrInvalid
			return false
		}
		s.header = append(s.header[:0], line...)
		return true
	}
	if err := s.b.Err(); err != nil {
		s.err = pkgerrors.Wrap(err, "couldn't read FASTA data")
	} else {
		s.err = io.EOF
	}
	return false
}

// Err returns the first non-EOF error encountered by Scan.
func (s *Scanner) Err() error {
	if s.err == io.EOF {
		return nil
	}
	return s.err
}
