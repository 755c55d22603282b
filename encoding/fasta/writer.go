package fasta

import (
	"io"

	"github.com/pkg/errors"
)

// Writer writes FASTA records, one sequence line per record.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter creates a Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write writes r. Once a write fails, every subsequent write returns
// the same error.
func (w *Writer) Write(r *Record) error {
	w.writeString(">")
	w.writeString(r.id)
	if r.desc != "" {
		w.writeString(" ")
		w.writeString(r.desc)
	}
	w.writeString("\n")
	if w.err == nil {
		_, w.err = w.w.Write(r.seq)
	}
	w.writeString("\n")
	if w.err != nil {
		return errors.Wrapf(w.err, "write FASTA record %s", r.id)
	}
	return nil
}

func (w *Writer) writeString(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}
