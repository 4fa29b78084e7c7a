package fastq

import (
	"io"

	"github.com/pkg/errors"
)

// Downsample writes read pairs from r1In and r2In to r1Out and r2Out. Read pairs will be randomly
// selected for inclusion in the output at the given sampling rate.
func Downsample(rate float64, r1In, r2In io.Reader, r1Out, r2Out io.Writer) error {
	if rate < 0.0 || rate > 1.0 {
		return errors.New("rate must be between 0 and 1 (inclusive)")
	}
	s := NewPairTemplateScanner(r1In, r2In, TemplateOpts{Sampled: true, Rate: rate})
	w1, w2 := NewWriter(r1Out), NewWriter(r2Out)
	for s.Scan() {
		if err := WriteTemplate(s.Template(), w1, w2); err != nil {
			return err
		}
	}
	return s.Err()
}
