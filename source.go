package corpus

import (
	"sort"
	"strings"
)

// TitlePlaceholder marks where the title goes in a URL template.
const TitlePlaceholder = "{title}"

// titleEscaper escapes only what would end the path or break parsing.
// Slashes, parentheses and non-ASCII text stay as written so the URL
// matches the one the site itself links to.
var titleEscaper = strings.NewReplacer(
	"%", "%25",
	"?", "%3F",
	"#", "%23",
	" ", "%20",
)

// Source is one source kind: a URL-construction rule plus the extraction
// rules for its pages.
type Source struct {
	Kind string

	// URLTemplate contains TitlePlaceholder exactly where the title belongs,
	// e.g. "https://en.wikipedia.org/wiki/{title}".
	URLTemplate string

	// SpaceReplacement, if set, replaces every space in the title
	// (Wikipedia uses "_").
	SpaceReplacement string

	Extractor TextExtractor
}

// Validate returns an error if the source cannot resolve or extract items.
func (s *Source) Validate() error {
	if s.Kind == "" {
		return Errorf(EINVALID, "source kind required")
	}
	if !strings.Contains(s.URLTemplate, TitlePlaceholder) {
		return Errorf(EINVALID, "source %q: url template must contain %s", s.Kind, TitlePlaceholder)
	}
	if s.Extractor == nil {
		return Errorf(EINVALID, "source %q: extractor required", s.Kind)
	}
	return nil
}

// URL builds the canonical URL for title. It is a pure string transform.
func (s *Source) URL(title string) string {
	if s.SpaceReplacement != "" {
		title = strings.ReplaceAll(title, " ", s.SpaceReplacement)
	}
	return strings.ReplaceAll(s.URLTemplate, TitlePlaceholder, titleEscaper.Replace(title))
}

// Resolver maps items to canonical URLs.
type Resolver interface {
	// Resolve returns EUNKNOWNSOURCE if the item's source kind has no rule.
	Resolve(item Item) (string, error)
}

var (
	_ Resolver  = (*Registry)(nil)
	_ Extractor = (*Registry)(nil)
)

// Registry maps source kinds to their URL and extraction rules.
// Adding a source kind means registering one Source; nothing else changes.
type Registry struct {
	sources map[string]*Source
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]*Source)}
}

// Register adds a source, replacing any source of the same kind.
func (r *Registry) Register(src *Source) error {
	if err := src.Validate(); err != nil {
		return err
	}
	r.sources[src.Kind] = src
	return nil
}

// Resolve returns the canonical URL of item.
func (r *Registry) Resolve(item Item) (string, error) {
	src, ok := r.sources[item.Source]
	if !ok {
		return "", Errorf(EUNKNOWNSOURCE, "unknown source %q", item.Source)
	}
	return src.URL(item.Title), nil
}

// ResolveID parses a "source::title" identifier and resolves it.
func (r *Registry) ResolveID(id string) (string, error) {
	item, err := ParseItem(id)
	if err != nil {
		return "", err
	}
	return r.Resolve(item)
}

// Extract dispatches to the extractor registered for sourceKind.
func (r *Registry) Extract(sourceKind, rawHTML string) (string, error) {
	src, ok := r.sources[sourceKind]
	if !ok {
		return "", Errorf(EUNKNOWNSOURCE, "unknown source %q", sourceKind)
	}
	return src.Extractor.ExtractText(rawHTML)
}

// Kinds returns the registered source kinds in sorted order.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.sources))
	for k := range r.sources {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
