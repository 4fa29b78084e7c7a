package fastq

import (
	"io"
	"math/rand"

	"github.com/grailbio/jnomics/reads"
	"github.com/pkg/errors"
)

// TemplateOpts controls a TemplateScanner.
type TemplateOpts struct {
	// Sampled enables downsampling: each template is kept with probability
	// Rate, drawn from a generator seeded with Seed.
	Sampled bool
	Rate    float64
	Seed    int64
}

// TemplateScanner reads query templates from one FASTQ stream (single-end)
// or from a pair of R1/R2 streams.  Every template is read into the same
// reads.QueryTemplate, whose reads are recycled between records.
type TemplateScanner struct {
	r1, r2 *Scanner
	random *rand.Rand
	rate   float64
	tmpl   reads.QueryTemplate
	err    error
	done   bool
}

// NewTemplateScanner creates a scanner of single-read templates.
func NewTemplateScanner(r io.Reader, opts TemplateOpts) *TemplateScanner {
	return newTemplateScanner(NewScanner(r), nil, opts)
}

// NewPairTemplateScanner creates a scanner of read pairs.  The R1 read of a
// pair is flagged FirstSegment and the R2 read LastSegment.
func NewPairTemplateScanner(r1, r2 io.Reader, opts TemplateOpts) *TemplateScanner {
	return newTemplateScanner(NewScanner(r1), NewScanner(r2), opts)
}

func newTemplateScanner(r1, r2 *Scanner, opts TemplateOpts) *TemplateScanner {
	s := &TemplateScanner{r1: r1, r2: r2}
	if opts.Sampled {
		s.random = rand.New(rand.NewSource(opts.Seed))
		s.rate = opts.Rate
	}
	return s
}

// Scan reads the next template.  It returns false at the end of the input or
// on error; Err distinguishes the two.
func (s *TemplateScanner) Scan() bool {
	for !s.done {
		if !s.scanOne() {
			s.done = true
			return false
		}
		if s.random != nil && !(s.random.Float64() < s.rate) {
			continue
		}
		return true
	}
	return false
}

func (s *TemplateScanner) scanOne() bool {
	s.tmpl.Clear()
	r1 := s.tmpl.AddEmptyRead()
	ok1 := s.r1.Scan(r1)
	if s.r2 == nil {
		if !ok1 {
			s.err = s.r1.Err()
			return false
		}
		s.tmpl.SetName(r1.Name)
		return true
	}
	r2 := s.tmpl.AddEmptyRead()
	ok2 := s.r2.Scan(r2)
	if !ok1 || !ok2 {
		switch {
		case s.r1.Err() != nil:
			s.err = errors.Wrap(s.r1.Err(), "error reading R1 input")
		case s.r2.Err() != nil:
			s.err = errors.Wrap(s.r2.Err(), "error reading R2 input")
		case ok1:
			s.err = errors.Wrap(ErrDiscordant, "more reads in R1 input than in R2 input")
		case ok2:
			s.err = errors.Wrap(ErrDiscordant, "more reads in R2 input than in R1 input")
		}
		return false
	}
	if r1.Name != r2.Name {
		s.err = errors.Wrapf(ErrDiscordant, "read names differ: %s, %s", r1.Name, r2.Name)
		return false
	}
	r1.Flags |= reads.MultipleFragments | reads.FirstSegment | reads.NextUnmapped
	r2.Flags |= reads.MultipleFragments | reads.LastSegment | reads.NextUnmapped
	s.tmpl.SetName(r1.Name)
	return true
}

// Template returns the template read by the last call to Scan.  It is valid
// until the next call to Scan.
func (s *TemplateScanner) Template() *reads.QueryTemplate {
	return &s.tmpl
}

// Err returns the scanning error, if any.  It should be checked after Scan
// returns false.
func (s *TemplateScanner) Err() error {
	return s.err
}
