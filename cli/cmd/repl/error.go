package repl

import (
	"errors"
	"strings"

	"github.com/ardnew/cnd/cnd"
)

// ErrOutOfBounds is returned by history lookups with an invalid index.
var ErrOutOfBounds = errors.New("index out of range")

// incomplete reports whether err indicates that source is a syntactically
// valid prefix of a declaration rather than a malformed one. This is the
// case when the grammar ran out of tokens: the error class is grammar and
// its position lies at or beyond the end of the source.
func incomplete(source string, err error) bool {
	if !errors.Is(err, cnd.ErrGrammar) {
		return false
	}

	var perr *cnd.Error
	if !errors.As(err, &perr) {
		return false
	}

	pos := perr.Position()

	lines := strings.Split(source, "\n")
	last := len(lines)

	if pos.Line > last {
		return true
	}

	return pos.Line == last && pos.Column > len(lines[last-1])
}
