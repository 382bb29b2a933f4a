package corpus

// DefaultMinWords is the smallest extracted text, in whitespace-separated
// words, that is accepted as a document.
const DefaultMinWords = 100

// TextExtractor turns raw markup of one page layout into normalized plain text.
type TextExtractor interface {
	// ExtractText removes boilerplate and returns the main content as
	// single-space separated text. It returns an empty string when the
	// designated content container is absent.
	ExtractText(rawHTML string) (string, error)
}

// Extractor turns raw markup into plain text, choosing the extraction rules
// by source kind.
type Extractor interface {
	// Extract returns EUNKNOWNSOURCE if no rules exist for sourceKind.
	Extract(sourceKind, rawHTML string) (string, error)
}
