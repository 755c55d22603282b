package fastq

import (
	"io"

	"github.com/pkg/errors"
)

var newline = []byte{'\n'}

// Writer is a FASTQ file writer.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter constructs a new FASTQ writer
// that writes reads to the underlying writer w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write writes the read r in FASTQ format.
// An error is returned if the write failed. Once a write fails, every
// subsequent write returns the same error.
func (w *Writer) Write(r *Read) error {
	w.writeString("@")
	w.writeString(r.id)
	if r.desc != "" {
		w.writeString(" ")
		w.writeString(r.desc)
	}
	w.write(newline)
	w.writeln(r.seq)
	unk := r.unk
	if unk == "" {
		unk = "+"
	}
	w.writeString(unk)
	w.write(newline)
	w.writeln(r.qual)
	if w.err != nil {
		return errors.Wrapf(w.err, "write FASTQ read %s", r.id)
	}
	return nil
}

func (w *Writer) writeln(line []byte) {
	w.write(line)
	w.write(newline)
}

func (w *Writer) writeString(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}

func (w *Writer) write(b []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(b)
}
