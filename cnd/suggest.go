package cnd

import "github.com/sahilm/fuzzy"

// canonicalPropertyTypes lists the preferred spelling of every property
// type keyword, used for suggestions when an unknown keyword is seen.
//
//nolint:gochecknoglobals
var canonicalPropertyTypes = []string{
	"STRING", "BINARY", "LONG", "DOUBLE", "BOOLEAN",
	"DATE", "NAME", "PATH", "REFERENCE", "UNDEFINED",
}

// suggestPropertyType returns the closest known property type keyword to
// the given misspelling, or "" when nothing is close enough to help.
func suggestPropertyType(text string) string {
	matches := fuzzy.Find(text, canonicalPropertyTypes)
	if len(matches) == 0 {
		return ""
	}

	return matches[0].Str
}
