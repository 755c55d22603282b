package fastx

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/golang/snappy"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/klauspost/compress/gzip"
)

const bufSize = 1 << 20

// Compression is a stream compression scheme, chosen by file suffix.
type Compression int

const (
	// None is uncompressed.
	None Compression = iota
	// Gzip is selected by the ".gz" suffix.
	Gzip
	// Snappy is the snappy framing format, selected by ".sz".
	Snappy
)

// CompressionFromPath guesses the compression of path from its suffix.
func CompressionFromPath(path string) Compression {
	switch {
	case strings.HasSuffix(path, ".gz"):
		return Gzip
	case strings.HasSuffix(path, ".sz"):
		return Snappy
	}
	return None
}

// Source is an open FASTA or FASTQ input. Its format was determined
// from the first byte of the (decompressed) data before any record was
// read.
type Source struct {
	Iterator
	// Type is the detected format. It is never Invalid.
	Type Type

	path string
	f    file.File
	gz   *gzip.Reader
}

// Open opens path, sniffs its format and returns a record source. Open
// fails with errors.NotSupported if the data is neither FASTA nor
// FASTQ.
func Open(ctx context.Context, path string) (*Source, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	s := &Source{path: path, f: f}
	var r io.Reader = f.Reader(ctx)
	switch CompressionFromPath(path) {
	case Gzip:
		if s.gz, err = gzip.NewReader(r); err != nil {
			f.Close(ctx)
			return nil, errors.E(err, "open gzip stream", path)
		}
		r = s.gz
	case Snappy:
		r = snappy.NewReader(r)
	}
	br := bufio.NewReaderSize(r, bufSize)
	if s.Type, err = Sniff(br); err != nil {
		s.Close(ctx)
		return nil, errors.E(err, "read", path)
	}
	if s.Type == Invalid {
		s.Close(ctx)
		return nil, errors.E(errors.NotSupported,
			fmt.Sprintf("%s: input file is not a valid FASTA or FASTQ file", path))
	}
	if s.Iterator, err = NewIterator(s.Type, br); err != nil {
		s.Close(ctx)
		return nil, err
	}
	return s, nil
}

// DetectType reports the format of the file at path without reading
// any records.
func DetectType(ctx context.Context, path string) (Type, error) {
	s, err := Open(ctx, path)
	if err != nil {
		if errors.Is(errors.NotSupported, err) {
			return Invalid, nil
		}
		return Invalid, err
	}
	return s.Type, s.Close(ctx)
}

// Path returns the path the source was opened from.
func (s *Source) Path() string { return s.path }

// Close releases the underlying file.
func (s *Source) Close(ctx context.Context) error {
	var once errors.Once
	if s.gz != nil {
		once.Set(s.gz.Close())
	}
	once.Set(s.f.Close(ctx))
	return once.Err()
}

// Sink writes records of one format to a file, compressing the output
// according to the file suffix.
type Sink struct {
	Writer
	// Type is the format written.
	Type Type

	path string
	f    file.File
	buf  *bufio.Writer
	zw   io.WriteCloser
}

// Create creates path and returns a sink that writes records of the
// given format to it.
func Create(ctx context.Context, path string, typ Type) (*Sink, error) {
	if typ != FASTA && typ != FASTQ {
		return nil, errors.E(errors.NotSupported, "cannot create", path, "with format", typ.String())
	}
	f, err := file.Create(ctx, path)
	if err != nil {
		return nil, err
	}
	s := &Sink{Type: typ, path: path, f: f}
	var w io.Writer = f.Writer(ctx)
	switch CompressionFromPath(path) {
	case Gzip:
		s.zw = gzip.NewWriter(w)
		w = s.zw
	case Snappy:
		s.zw = snappy.NewBufferedWriter(w)
		w = s.zw
	}
	s.buf = bufio.NewWriterSize(w, bufSize)
	if s.Writer, err = NewWriter(typ, s.buf); err != nil {
		f.Close(ctx)
		return nil, err
	}
	return s, nil
}

// Path returns the path the sink writes to.
func (s *Sink) Path() string { return s.path }

// Close flushes buffered records and closes the file. Records written
// before a failed Close may be lost.
func (s *Sink) Close(ctx context.Context) error {
	var once errors.Once
	once.Set(s.buf.Flush())
	if s.zw != nil {
		once.Set(s.zw.Close())
	}
	once.Set(s.f.Close(ctx))
	if err := once.Err(); err != nil {
		return errors.E(err, "close", s.path)
	}
	return nil
}
