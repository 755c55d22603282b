// Package table writes rows of string fields as CSV or TSV.
package table

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
)

// Writer is a row sink. Rows may be buffered until Flush.
type Writer interface {
	// Write appends one row.
	Write(fields ...string) error
	// Flush writes buffered rows to the underlying writer.
	Flush() error
}

// Format is a row encoding.
type Format int

const (
	// CSV is comma-separated values, quoted as needed (RFC 4180).
	CSV Format = iota
	// TSV is tab-separated values, unquoted.
	TSV
)

// FormatFromPath returns TSV for paths ending in ".tsv" and CSV
// otherwise.
func FormatFromPath(path string) Format {
	if strings.HasSuffix(path, ".tsv") {
		return TSV
	}
	return CSV
}

// NewWriter creates a Writer that encodes rows in the given format.
func NewWriter(w io.Writer, format Format) Writer {
	if format == TSV {
		return &tsvWriter{w: tsv.NewWriter(w)}
	}
	return &csvWriter{w: csv.NewWriter(w)}
}

type csvWriter struct {
	w *csv.Writer
}

func (c *csvWriter) Write(fields ...string) error {
	return c.w.Write(fields)
}

func (c *csvWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

type tsvWriter struct {
	w *tsv.Writer
}

func (t *tsvWriter) Write(fields ...string) error {
	for _, f := range fields {
		t.w.WriteString(f)
	}
	return t.w.EndLine()
}

func (t *tsvWriter) Flush() error {
	return t.w.Flush()
}

type discard struct{}

func (discard) Write(...string) error { return nil }
func (discard) Flush() error          { return nil }

// Discard is a Writer that drops every row.
var Discard Writer = discard{}

// File is a Writer backed by a file.
type File struct {
	Writer
	path string
	f    file.File
}

// Create creates path and returns a row writer for it. The format is
// chosen by FormatFromPath.
func Create(ctx context.Context, path string) (*File, error) {
	f, err := file.Create(ctx, path)
	if err != nil {
		return nil, err
	}
	return &File{
		Writer: NewWriter(f.Writer(ctx), FormatFromPath(path)),
		path:   path,
		f:      f,
	}, nil
}

// Close flushes buffered rows and closes the file.
func (f *File) Close(ctx context.Context) error {
	var once errors.Once
	once.Set(f.Flush())
	once.Set(f.f.Close(ctx))
	if err := once.Err(); err != nil {
		return errors.E(err, "close", f.path)
	}
	return nil
}
