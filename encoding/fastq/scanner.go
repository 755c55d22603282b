package fastq

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

const maxLineLen = 16 << 20

var (
	// ErrShort is returned when a truncated FASTQ file is encountered.
	ErrShort = errors.New("short FASTQ file")
	// ErrInvalid is returned when an invalid FASTQ file is encountered.
	ErrInvalid = errors.New("invalid FASTQ file")
)

// A Read is a FASTQ read, comprising an ID, an optional description,
// a sequence, line 3 ("unknown"), and a quality string.
//
// The ID is the first whitespace-delimited token of the header line
// after the leading "@"; the rest of the header, if any, is kept in
// Desc so that it can be written back unchanged.
type Read struct {
	id, desc string
	seq      []byte
	unk      string
	qual     []byte
}

// NewRead creates a read with the given fields. Line 3 is set to "+".
func NewRead(id, desc string, seq, qual []byte) *Read {
	return &Read{id: id, desc: desc, seq: seq, unk: "+", qual: qual}
}

// ID returns the read identifier, without the leading "@".
func (r *Read) ID() string { return r.id }

// Desc returns the header text that follows the identifier.
func (r *Read) Desc() string { return r.desc }

// Seq returns the read bases.
func (r *Read) Seq() []byte { return r.seq }

// Qual returns the base qualities.
func (r *Read) Qual() []byte { return r.qual }

// Check validates the read: the ID must be nonempty, the sequence and
// qualities must be ASCII and of equal length.
func (r *Read) Check() error {
	if r.id == "" {
		return errors.New("expecting id for FASTQ record")
	}
	if !isASCII(r.seq) {
		return errors.New("non-ascii character found in sequence")
	}
	if !isASCII(r.qual) {
		return errors.New("non-ascii character found in qualities")
	}
	if len(r.seq) != len(r.qual) {
		return errors.New("unequal length of sequence and qualities")
	}
	return nil
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return false
		}
	}
	return true
}

// splitHeader splits a header line (without its marker) into the
// identifier and the description.
func splitHeader(line []byte) (id, desc string) {
	i := bytes.IndexAny(line, " \t")
	if i < 0 {
		return string(line), ""
	}
	return string(line[:i]), string(bytes.TrimLeft(line[i+1:], " \t"))
}

var errEOF = errors.New("eof")

// Scanner provides a convenient interface for reading FASTQ read
// data. The Scan method returns the next read, returning a boolean
// indicating whether the read succeeded. Scanners are not
// threadsafe.
//
// Scanner performs some validation: it requires ID lines to begin
// with "@" and that line 3 begins with "+", but does not perform
// further validation (e.g., seq/qual being of equal length); see
// Read.Check for that.
type Scanner struct {
	b      *bufio.Scanner
	err    error
	fields Field
}

// Field enumerates FASTQ fields. It is used to specify fields to read in
// NewScanner.
type Field uint

const (
	// ID causes the Read ID and description to be filled
	ID Field = 1 << iota
	// Seq causes the Read sequence to be filled
	Seq
	// Unk causes line 3 to be filled
	Unk
	// Qual causes the Read qualities to be filled
	Qual
	// All equals ID|Seq|Unk|Qual.
	All = ID | Seq | Unk | Qual
)

// NewScanner constructs a new Scanner that reads raw FASTQ data from the
// provided reader. Fields is a bitset of the fields to read. A typical value
// would be All or ID|Seq|Qual.
func NewScanner(r io.Reader, fields Field) *Scanner {
	b := bufio.NewScanner(r)
	b.Buffer(nil, maxLineLen)
	return &Scanner{b: b, fields: fields}
}

// Scan the next read into the provided read. Scan returns a boolean
// indicating whether the scan succeeded. Once Scan returns false, it
// never returns true again. Upon completion, the user should check
// the Err method to determine whether scanning stopped because of an
// error or because the end of the stream was reached.
//
// The byte slices of a scanned read are owned by the read; they are
// not overwritten by subsequent scans.
func (f *Scanner) Scan(read *Read) bool {
	if f.err != nil {
		return false
	}
	if !f.b.Scan() {
		if f.err = f.b.Err(); f.err == nil {
			f.err = errEOF
		}
		return false
	}
	id := f.b.Bytes()
	if len(id) == 0 || id[0] != '@' {
		f.err = ErrInvalid
		return false
	}
	if f.fields&ID != 0 {
		read.id, read.desc = splitHeader(id[1:])
	}
	if !f.scan() {
		return false
	}
	if f.fields&Seq != 0 {
		read.seq = append([]byte(nil), f.b.Bytes()...)
	}
	if !f.scan() {
		return false
	}
	unk := f.b.Bytes()
	if len(unk) == 0 || unk[0] != '+' {
		f.err = ErrInvalid
		return false
	}
	if f.fields&Unk != 0 {
		read.unk = string(unk)
	}
	if !f.scan() {
		return false
	}
	if f.fields&Qual != 0 {
		read.qual = append([]byte(nil), f.b.Bytes()...)
	}
	return true
}

func (f *Scanner) scan() bool {
	ok := f.b.Scan()
	if !ok {
		if f.err = f.b.Err(); f.err == nil {
			f.err = ErrShort
		}
	}
	return ok
}

// Err returns the scanning error, if any.
func (f *Scanner) Err() error {
	if f.err == errEOF {
		return nil
	}
	return f.err
}
