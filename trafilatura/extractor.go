// Package trafilatura adapts go-trafilatura to corpus.TextExtractor.
package trafilatura

import (
	"strings"

	"github.com/fwojciec/corpus"
	"github.com/markusmobius/go-trafilatura"
)

// Ensure Extractor implements corpus.TextExtractor at compile time.
var _ corpus.TextExtractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractText returns the normalized text of the main content.
func (e *Extractor) ExtractText(rawHTML string) (string, error) {
	if rawHTML == "" {
		return "", corpus.Errorf(corpus.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return "", corpus.Errorf(corpus.EINVALID, "trafilatura: %v", err)
	}

	return corpus.NormalizeText(result.ContentText), nil
}
