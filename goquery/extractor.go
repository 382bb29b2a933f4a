// Package goquery implements selector-driven text extraction on top of
// github.com/PuerkitoBio/goquery.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/corpus"
	"golang.org/x/net/html"
)

// Ensure Extractor implements corpus.TextExtractor at compile time.
var _ corpus.TextExtractor = (*Extractor)(nil)

// Extractor removes boilerplate elements and returns the text of the first
// element matching its content selector.
type Extractor struct {
	content string
	remove  []string
}

// NewExtractor creates an Extractor. content selects the main container;
// every element matching one of remove is dropped before the text is read.
func NewExtractor(content string, remove []string) *Extractor {
	return &Extractor{content: content, remove: remove}
}

// NewExtractorFromConfig creates an Extractor from a source's configuration.
func NewExtractorFromConfig(cfg corpus.SourceConfig) (*Extractor, error) {
	if cfg.Content == "" {
		return nil, corpus.Errorf(corpus.EINVALID, "content selector required")
	}
	return NewExtractor(cfg.Content, cfg.Remove), nil
}

// ExtractText returns the normalized text of the content container, or an
// empty string if the page has none.
func (e *Extractor) ExtractText(rawHTML string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", corpus.Errorf(corpus.EINVALID, "failed to parse HTML: %v", err)
	}

	for _, sel := range e.remove {
		doc.Find(sel).Remove()
	}

	content := doc.Find(e.content).First()
	if content.Length() == 0 {
		return "", nil
	}
	return corpus.NormalizeText(Text(content)), nil
}

// Text joins the stripped text nodes under sel with single spaces, so that
// words in adjacent elements never run together.
func Text(sel *goquery.Selection) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if s := strings.TrimSpace(n.Data); s != "" {
				parts = append(parts, s)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(parts, " ")
}
