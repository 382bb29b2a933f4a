package corpus

import "strings"

// ItemSeparator separates the source kind from the title in an item identifier.
const ItemSeparator = "::"

// Item is one logical document identified by its source kind and title.
// An Item is the unit of deduplication and freshness tracking.
type Item struct {
	Source string
	Title  string
}

// ParseItem parses an identifier of the form "source::title".
// Only the first separator splits; the title may contain further "::".
// Returns EMALFORMED if the separator is missing or either part is empty.
func ParseItem(id string) (Item, error) {
	id = strings.TrimSpace(id)
	source, title, ok := strings.Cut(id, ItemSeparator)
	if !ok {
		return Item{}, Errorf(EMALFORMED, "item %q lacks %q separator", id, ItemSeparator)
	}
	if source == "" || title == "" {
		return Item{}, Errorf(EMALFORMED, "item %q has an empty source or title", id)
	}
	return Item{Source: source, Title: title}, nil
}

// String returns the "source::title" identifier.
func (i Item) String() string {
	return i.Source + ItemSeparator + i.Title
}

// WordCount returns the number of whitespace-separated tokens in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// NormalizeText collapses all runs of whitespace into single spaces and
// trims the result.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
