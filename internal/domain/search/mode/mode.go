package mode

import "strings"

// Mode is the field strategy a search dispatches to.
type Mode string

// Search mode constants.
const (
	Title  Mode = "title"
	ISBN   Mode = "isbn"
	Author Mode = "author"
	// All searches title, ISBN and author names together.
	All Mode = "all"
)

// aliasName is the legacy catalog API value for title search.
const aliasName = "name"

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Title || m == ISBN || m == Author || m == All
}

// Parse maps a caller-supplied type to a Mode. Matching is case-insensitive,
// "name" is accepted for title, and anything unrecognized falls back to All.
func Parse(s string) Mode {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == aliasName {
		return Title
	}
	m := Mode(v)
	if !m.IsValid() {
		return All
	}
	return m
}
