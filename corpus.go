// Package corpus maintains a deduplicated text corpus built from a fixed list
// of named web documents. Items are resolved to canonical URLs, fetched,
// stripped down to their body text and stored exactly once per URL. Later
// runs refresh the corpus incrementally: cheap HEAD probes decide whether a
// document must be downloaded again, and a content fingerprint decides
// whether a downloaded document actually changed.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, mongo/, goquery/).
package corpus
