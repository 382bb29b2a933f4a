package mock

import "github.com/fwojciec/corpus"

var _ corpus.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of corpus.Extractor.
type Extractor struct {
	ExtractFn func(sourceKind, rawHTML string) (string, error)
}

func (e *Extractor) Extract(sourceKind, rawHTML string) (string, error) {
	return e.ExtractFn(sourceKind, rawHTML)
}

var _ corpus.TextExtractor = (*TextExtractor)(nil)

// TextExtractor is a mock implementation of corpus.TextExtractor.
type TextExtractor struct {
	ExtractTextFn func(rawHTML string) (string, error)
}

func (e *TextExtractor) ExtractText(rawHTML string) (string, error) {
	return e.ExtractTextFn(rawHTML)
}
