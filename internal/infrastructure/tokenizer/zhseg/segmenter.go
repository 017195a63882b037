// Package zhseg wraps gse for Chinese word segmentation. The ranker
// requires token boundaries to be stable across calls; gse's Viterbi
// path over a fixed dictionary guarantees that for identical input.
package zhseg

import (
	"fmt"

	"github.com/go-ego/gse"
)

type Segmenter struct {
	seg gse.Segmenter
}

// New loads the embedded default dictionary. The instance is reused
// for the process lifetime; loading is the expensive part.
func New() (*Segmenter, error) {
	s := &Segmenter{}
	if err := s.seg.LoadDict(); err != nil {
		return nil, fmt.Errorf("load segmentation dictionary: %w", err)
	}
	return s, nil
}

func (s *Segmenter) Cut(text string) []string {
	return s.seg.Cut(text, true)
}
