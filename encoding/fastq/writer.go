package fastq

import (
	"io"

	"github.com/grailbio/jnomics/reads"
)

var (
	newline   = []byte{'\n'}
	idPrefix  = []byte{'@'}
	separator = []byte{'+'}
	space     = []byte{' '}
)

// Writer is a FASTQ file writer.
type Writer struct {
	w       io.Writer
	err     error
	scratch reads.SequencingRead
}

// NewWriter constructs a new FASTQ writer
// that writes reads to the underlying writer w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write writes the read r in FASTQ format, in the orientation it was
// sequenced: reads flagged ReverseComplemented are reverse complemented
// first.  The CommentKey property, if any, follows the name on the ID line.
// An error is returned if the write failed.
func (w *Writer) Write(r *reads.SequencingRead) error {
	if r.IsReverseComplemented() {
		w.scratch.Set(r)
		if err := w.scratch.ReverseComplement(); err != nil {
			return err
		}
		r = &w.scratch
	}
	w.write(idPrefix)
	w.writeString(r.Name)
	if co, ok := r.Properties.Get(CommentKey); ok {
		w.write(space)
		w.writeString(co.Value)
	}
	w.write(newline)
	w.writeln(r.RawBytes())
	w.writeln(separator)
	w.writeln(r.Phred)
	return w.err
}

// Err returns the first error encountered by the writer.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) writeln(line []byte) {
	w.write(line)
	w.write(newline)
}

func (w *Writer) write(data []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(data)
}

func (w *Writer) writeString(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}

// WriteTemplate writes the primary reads of t.  Reads flagged LastSegment go
// to r2 if it is non-nil; every other read goes to r1.  Secondary alignments
// are skipped.
func WriteTemplate(t *reads.QueryTemplate, r1, r2 *Writer) error {
	for _, r := range t.Reads() {
		if r.IsSecondaryAlignment() {
			continue
		}
		w := r1
		if r2 != nil && r.IsLast() {
			w = r2
		}
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}
