package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "ns", "clear", "reset", "quit"}

// keywords are the spelling variants recognized in definition bodies:
// property types, member attributes, node type options, and on-parent-version
// actions. Only the all-caps and all-lowercase variants are offered; the
// mixed-case spellings are accepted by the compiler but rarely typed.
var keywords = []string{
	"STRING", "BINARY", "LONG", "DOUBLE", "BOOLEAN", "DATE",
	"NAME", "PATH", "REFERENCE", "UNDEFINED",
	"string", "binary", "long", "double", "boolean", "date",
	"name", "path", "reference", "undefined",
	"autocreated", "mandatory", "protected", "multiple", "primary",
	"orderable", "mixin",
	"COPY", "VERSION", "INITIALIZE", "COMPUTE", "IGNORE", "ABORT",
}

// isWordBoundary reports whether the rune delimits words for completion.
// Colons and underscores are word characters because prefixed names contain
// them.
func isWordBoundary(r rune) bool {
	switch r {
	case ' ', '\t',
		'<', '>', '=',
		'[', ']', '(', ')',
		'-', '+', ',', '*', '!', '\'':
		return true
	}

	return false
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input. An empty word is returned when the cursor sits on
// a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	word = input[start:end]

	return word, start, end
}

// candidates returns the completion vocabulary for the current session:
// grammar keywords, declared namespace prefixes (with a trailing colon so
// accepting one leaves the cursor ready for the local name), and the names
// of node types compiled so far.
func (m model) candidatesForSession() []string {
	names := make([]string, 0, len(keywords))
	names = append(names, keywords...)

	for _, prefix := range m.session.ns.Prefixes() {
		if prefix == "" {
			continue
		}

		names = append(names, prefix+":")
	}

	for i := range m.session.types {
		name, err := m.session.ns.Format(m.session.types[i].Name)
		if err == nil {
			names = append(names, name)
		}
	}

	return names
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor. Matches are ranked best-first. An empty word produces no matches
// so the hint text stays visible.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	wordStart, wordEnd int,
) {
	input := m.input.Value()
	cursor := m.input.Position()

	word, ws, we := wordBounds(input, cursor)
	wordStart, wordEnd = ws, we

	if word == "" {
		return nil, wordStart, wordEnd
	}

	var candidates []string

	if m.mode == modeCtrl {
		candidates = ctrlCommands
	} else {
		candidates = m.candidatesForSession()
	}

	if len(candidates) == 0 {
		return nil, wordStart, wordEnd
	}

	matches = fuzzy.Find(word, candidates)

	return matches, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to
// fit within the given terminal width. The selected candidate (when tabbing)
// uses the selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		selected := tabActive && i == suggIdx
		rendered := renderCandidate(match, selected)
		candidateWidth := lipgloss.Width(rendered)

		entryWidth := candidateWidth
		if i > 0 {
			entryWidth += sepWidth
		}

		if used+entryWidth+ellipsisWidth > width && i > 0 {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth

		if i == len(matches)-1 {
			break
		}
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	baseStyle := suggestionStyle
	highlightStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("4")).
		Bold(true)

	if selected {
		baseStyle = selectedStyle
		highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4")).
			Bold(true)
	}

	matchSet := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matchSet[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		ch := string(r)
		if matchSet[i] {
			b.WriteString(highlightStyle.Render(ch))
		} else {
			b.WriteString(baseStyle.Render(ch))
		}
	}

	return b.String()
}
