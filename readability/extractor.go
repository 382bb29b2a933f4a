// Package readability adapts go-readability to corpus.TextExtractor for
// sources without a stable content selector.
package readability

import (
	"strings"

	"github.com/fwojciec/corpus"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements corpus.TextExtractor at compile time.
var _ corpus.TextExtractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractText returns the normalized text of the main article.
func (e *Extractor) ExtractText(rawHTML string) (string, error) {
	if rawHTML == "" {
		return "", corpus.Errorf(corpus.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return "", corpus.Errorf(corpus.EINVALID, "readability: %v", err)
	}

	return corpus.NormalizeText(article.TextContent), nil
}
