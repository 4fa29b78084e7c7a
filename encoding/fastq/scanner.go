package fastq

import (
	"bufio"
	"bytes"
	"io"

	"github.com/grailbio/jnomics/reads"
	"github.com/pkg/errors"
)

var (
	// ErrShort is returned when a truncated FASTQ file is encountered.
	ErrShort = errors.New("short FASTQ file")
	// ErrInvalid is returned when an invalid FASTQ file is encountered.
	ErrInvalid = errors.New("invalid FASTQ file")
	// ErrDiscordant is returned when two underlying FASTQ files are discordant.
	ErrDiscordant = errors.New("discordant FASTQ pairs")
)

// CommentKey is the property that holds the text after the read name on the
// ID line, e.g. "1:N:0:ATCACG".
const CommentKey = "CO"

// maxLineLen bounds the length of a FASTQ line.
const maxLineLen = 16 << 20

var errEOF = errors.New("eof")

// Scanner reads FASTQ records into reads.SequencingRead.  Scanners are not
// threadsafe.
//
// Scanner performs some validation: it requires ID lines to begin with "@",
// line 3 to begin with "+", and the sequence and quality lines to have the
// same length.  It does not validate the bases.
type Scanner struct {
	b    *bufio.Scanner
	err  error
	line int
}

// NewScanner constructs a new Scanner that reads raw FASTQ data from r.
func NewScanner(r io.Reader) *Scanner {
	b := bufio.NewScanner(r)
	b.Buffer(make([]byte, 0, 64<<10), maxLineLen)
	return &Scanner{b: b}
}

// Scan clears read and fills it with the next record.  The read name is the
// ID up to the first whitespace, without a trailing "/1" or "/2"; the rest of
// the ID line is stored in the CommentKey property.  The read is flagged
// Unmapped.
//
// Scan returns a boolean indicating whether the scan succeeded.  Once Scan
// returns false, it never returns true again.  Upon completion, the user
// should check the Err method to determine whether scanning stopped because
// of an error or because the end of the stream was reached.
func (f *Scanner) Scan(read *reads.SequencingRead) bool {
	if f.err != nil {
		return false
	}
	if !f.b.Scan() {
		if f.err = f.b.Err(); f.err == nil {
			f.err = errEOF
		}
		return false
	}
	f.line++
	id := f.b.Bytes()
	if len(id) == 0 || id[0] != '@' {
		f.err = errors.Wrapf(ErrInvalid, "line %d: ID line must start with '@'", f.line)
		return false
	}
	read.Clear()
	read.Flags = reads.Unmapped
	name, comment := splitID(id[1:])
	read.Name = string(name)
	if len(comment) > 0 {
		read.Properties.Put(CommentKey, string(comment))
	}
	if !f.scan() {
		return false
	}
	read.SetRawBytes(f.b.Bytes())
	if !f.scan() {
		return false
	}
	if unk := f.b.Bytes(); len(unk) == 0 || unk[0] != '+' {
		f.err = errors.Wrapf(ErrInvalid, "line %d: separator line must start with '+'", f.line)
		return false
	}
	if !f.scan() {
		return false
	}
	qual := f.b.Bytes()
	if len(qual) != read.Len() {
		f.err = errors.Wrapf(ErrInvalid, "line %d: read %s has %d bases and %d qualities",
			f.line, read.Name, read.Len(), len(qual))
		return false
	}
	read.Phred = append(read.Phred[:0], qual...)
	return true
}

func (f *Scanner) scan() bool {
	ok := f.b.Scan()
	if !ok {
		if f.err = f.b.Err(); f.err == nil {
			f.err = errors.Wrapf(ErrShort, "line %d", f.line)
		}
		return false
	}
	f.line++
	return true
}

// Err returns the scanning error, if any.
func (f *Scanner) Err() error {
	if f.err == errEOF {
		return nil
	}
	return f.err
}

// splitID splits an ID line (without the '@') into the name and the comment.
func splitID(id []byte) (name, comment []byte) {
	name = id
	if i := bytes.IndexAny(id, " \t"); i >= 0 {
		name, comment = id[:i], bytes.TrimLeft(id[i+1:], " \t")
	}
	if n := len(name); n > 2 && name[n-2] == '/' && (name[n-1] == '1' || name[n-1] == '2') {
		name = name[:n-2]
	}
	return name, comment
}
