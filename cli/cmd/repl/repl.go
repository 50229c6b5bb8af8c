// Package repl provides an interactive session for entering compact node
// type definitions one line at a time.
//
// Input accumulates in a buffer until it forms a complete declaration, at
// which point it is compiled against the session's namespace table and the
// resulting definitions are printed. Namespace declarations persist for the
// remainder of the session.
package repl

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/cnd/cnd"
	"github.com/ardnew/cnd/log"
)

const (
	defPrompt  = "cnd> "
	contPrompt = "...> "
	ctrlPrompt = "   : "
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help     Print this cruft
  list     List node types compiled this session
  ns       List declared namespace mappings
  clear    Clear screen
  reset    Discard session state and start over
  quit     Exit REPL

Usage:
  Type node type definitions; input buffers until a declaration is complete
  Namespace declarations (<prefix='uri'>) persist for the session
  Completions appear automatically as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Esc to toggle between definition and command modes
  Use Up/Down arrows for history navigation
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeDef inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// Command is the kong command that starts the interactive session.
type Command struct {
	Cache  string `default:"${cache}" help:"Directory for session history" hidden:""`
	Source string `help:"Preload node type definitions from file before starting" optional:"" short:"f"`
}

// Run starts the REPL.
func (c *Command) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	session := newSession()

	if c.Source != "" {
		err = session.load(ctx, c.Source)
		if err != nil {
			return err
		}
	}

	history := NewHistory(filepath.Join(c.Cache, baseHistory))
	if err := history.Load(); err != nil {
		fmt.Printf("Warning: could not load history: %v\n", err)
	}

	log.TraceContext(ctx, "repl start",
		slog.String("cache_dir", c.Cache),
		slog.Int("history_entries", history.Len()),
		slog.Int("preloaded_types", len(session.types)))

	m := newModel(ctx, session, history)

	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

// session holds the state accumulated across submitted declarations.
type session struct {
	ns    *cnd.Namespaces
	types []cnd.NodeTypeDefinition
}

func newSession() *session {
	return &session{ns: cnd.NewNamespaces()}
}

// load compiles the given file into the session before the REPL starts.
func (s *session) load(ctx context.Context, path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return s.compile(ctx, string(source), path)
}

// compile parses source against the session namespaces and, on success,
// merges the result into the session.
func (s *session) compile(ctx context.Context, source, systemID string) error {
	result, err := cnd.ParseString(ctx, source,
		cnd.WithSystemID(systemID),
		cnd.WithNamespaces(s.ns),
	)
	if err != nil {
		return err
	}

	s.ns = result.Namespaces
	s.types = append(s.types, result.NodeTypes...)

	return nil
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	session      *session
	buffer       []string // pending lines of an incomplete declaration
	history      *History
	historyIdx   int
	matches      fuzzy.Matches
	wordStart    int
	wordEnd      int
	suggIdx      int
	tabActive    bool
	preTabText   string
	preTabCursor int
	width        int
	quitting     bool
	mode         inputMode
	defText      string
	defCursor    int
	ctrlText     string
	ctrlCursor   int
}

const defaultWidth = 80

func newModel(ctx context.Context, session *session, history *History) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(defPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		session:    session,
		history:    history,
		historyIdx: history.Len(),
		width:      defaultWidth,
		mode:       modeDef,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(defPrompt) - 2

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	input := m.input.Value()

	switch {
	case m.historyIdx < m.history.Len():
		hint := fmt.Sprintf("%d/%d", m.historyIdx+1, m.history.Len())
		b.WriteString(hintStyle.Render(hint))
		b.WriteString("\n")

	case strings.TrimSpace(input) == "" && len(m.buffer) > 0:
		b.WriteString(hintStyle.Render(
			fmt.Sprintf("%d buffered line(s); finish the declaration or Ctrl+C to discard",
				len(m.buffer))))
		b.WriteString("\n")

	case strings.TrimSpace(input) == "":
		var hint string
		if m.mode == modeDef {
			hint = "Type a node type definition or press Esc for commands"
		} else {
			hint = "Type: help, list, ns, clear, reset, quit (press Esc to return)"
		}

		b.WriteString(hintStyle.Render(hint))
		b.WriteString("\n")

	case len(m.matches) > 0:
		bar := renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width)
		b.WriteString(bar)
		b.WriteString("\n")

	default:
		b.WriteString("\n")
	}

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" && len(m.buffer) == 0 {
			m.quitting = true

			return m, tea.Quit
		}

		// Discard pending input and any buffered declaration lines.
		m.input.SetValue("")
		m.buffer = nil
		m.input.Prompt = promptStyle.Render(defPrompt)
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}
		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycleTab(1)

	case tea.KeyShiftTab:
		return m.cycleTab(-1)

	case tea.KeyUp:
		return m.historyPrev()

	case tea.KeyDown:
		return m.historyNext()

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		return m.toggleMode()

	case tea.KeyRunes:
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycleTab advances the candidate selection by step (+1 forward, -1 back).
func (m model) cycleTab(step int) (model, tea.Cmd) {
	if len(m.matches) == 0 {
		return m, nil
	}

	if len(m.matches) == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m, nil
	}

	if m.tabActive {
		m.suggIdx += step
		if m.suggIdx >= len(m.matches) {
			m.suggIdx = 0
		} else if m.suggIdx < 0 {
			m.suggIdx = len(m.matches) - 1
		}
	} else {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		if step > 0 {
			m.suggIdx = 0
		} else {
			m.suggIdx = len(m.matches) - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m, nil
}

// replaceCurrentWord replaces the current word boundaries in the input with
// the given replacement text and repositions the cursor.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	newInput := input[:m.wordStart] + replacement + input[m.wordEnd:]
	newCursor := m.wordStart + len(replacement)

	m.input.SetValue(newInput)
	m.input.SetCursor(newCursor)

	m.wordEnd = newCursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
// When autoConfirm is true, a sole candidate equal to the typed word is
// confirmed immediately. autoConfirm should be false for deletions and
// cursor navigation so the user can edit freely.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	candidate := m.matches[0].Str
	word := m.input.Value()[m.wordStart:m.wordEnd]

	if word == candidate {
		replaceCurrentWord(m, candidate)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" && len(m.buffer) == 0 {
		return m, nil
	}

	m.defText = ""
	m.defCursor = 0
	m.ctrlText = ""
	m.ctrlCursor = 0
	m.input.SetValue("")

	if m.mode == modeCtrl {
		_, _ = m.history.WriteWithMode(input, modeCtrl)
		m.historyIdx = m.history.Len()

		return m.executeCommand(input)
	}

	if input != "" {
		_, _ = m.history.WriteWithMode(input, modeDef)
		m.historyIdx = m.history.Len()
	}

	echoCmd := tea.Println(formatEcho(m.prompt(), input))

	m.buffer = append(m.buffer, input)
	source := strings.Join(m.buffer, "\n")

	err := m.session.compile(m.ctxFunc(), source, "repl")
	if err != nil {
		if incomplete(source, err) {
			// More input is needed to complete the declaration.
			m.input.Prompt = promptStyle.Render(contPrompt)

			return m, echoCmd
		}

		m.buffer = nil
		m.input.Prompt = promptStyle.Render(defPrompt)

		return m, tea.Sequence(
			echoCmd,
			tea.Println(errorStyle.Render(err.Error())),
		)
	}

	compiled := len(m.buffer)
	m.buffer = nil
	m.input.Prompt = promptStyle.Render(defPrompt)

	log.TraceContext(m.ctxFunc(), "repl compile",
		slog.Int("lines", compiled),
		slog.Int("session_types", len(m.session.types)))

	return m, tea.Sequence(echoCmd, tea.Println(m.compiledView(source)))
}

// compiledView summarizes what the most recent submission added.
func (m model) compiledView(source string) string {
	result, err := cnd.ParseString(m.ctxFunc(), source,
		cnd.WithNamespaces(m.session.ns))
	if err != nil {
		// The session already compiled this source; a failure here means
		// the summary cannot be rebuilt, not that the input was bad.
		return resultStyle.Render("ok")
	}

	if len(result.NodeTypes) == 0 {
		return resultStyle.Render("ok")
	}

	var b strings.Builder

	for i := range result.NodeTypes {
		def := &result.NodeTypes[i]

		if i > 0 {
			b.WriteString("\n")
		}

		b.WriteString(resultStyle.Render(fmt.Sprintf(
			"compiled %s (%d properties, %d child nodes)",
			def.Name, len(def.Properties), len(def.ChildNodes))))
	}

	return b.String()
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	echoCmd := tea.Println(formatEcho(ctrlPromptStyle.Render(ctrlPrompt), input))

	switch parts[0] {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echoCmd, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echoCmd, tea.Println(helpMessage()))

	case "l", "list":
		return m, tea.Sequence(echoCmd, tea.Println(m.listNodeTypes()))

	case "n", "ns":
		return m, tea.Sequence(echoCmd, tea.Println(m.listNamespaces()))

	case "c", "clear":
		return m, tea.ClearScreen

	case "r", "reset":
		m.session = newSession()
		m.buffer = nil

		return m, tea.Sequence(
			echoCmd,
			tea.Println(resultStyle.Render("session reset")),
		)

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + parts[0] + " (try 'help')"),
		)
	}
}

func (m model) listNodeTypes() string {
	if len(m.session.types) == 0 {
		return hintStyle.Render("  no node types compiled yet")
	}

	var b strings.Builder

	for i := range m.session.types {
		def := &m.session.types[i]

		var flags []string

		if def.Orderable {
			flags = append(flags, "orderable")
		}

		if def.Mixin {
			flags = append(flags, "mixin")
		}

		preview := fmt.Sprintf("%d properties, %d child nodes",
			len(def.Properties), len(def.ChildNodes))
		if len(flags) > 0 {
			preview += " [" + strings.Join(flags, ",") + "]"
		}

		b.WriteString(fmt.Sprintf("  %s %s\n",
			def.Name, hintStyle.Render(preview)))
	}

	return b.String()
}

func (m model) listNamespaces() string {
	var b strings.Builder

	for _, prefix := range m.session.ns.Prefixes() {
		uri, _ := m.session.ns.URI(prefix)

		label := prefix
		if label == "" {
			label = "(default)"
		}

		b.WriteString(fmt.Sprintf("  %s %s\n",
			label, hintStyle.Render(uri)))
	}

	return b.String()
}

// prompt returns the rendered prompt for the current input state.
func (m model) prompt() string {
	if len(m.buffer) > 0 {
		return promptStyle.Render(contPrompt)
	}

	return promptStyle.Render(defPrompt)
}

// formatEcho formats the echo line printed above results.
func formatEcho(prompt, input string) string {
	return prompt + inputStyle.Render(input)
}

func (m model) historyPrev() (model, tea.Cmd) {
	if m.historyIdx > 0 {
		m.historyIdx--

		if entry, err := m.history.GetEntry(m.historyIdx); err == nil {
			if m.mode != entry.Mode {
				m = m.switchToMode(entry.Mode)
			}

			m.input.SetValue(entry.Line)
			m.input.SetCursor(len(entry.Line))
			refreshMatches(&m, false)
		}
	}

	return m, nil
}

func (m model) historyNext() (model, tea.Cmd) {
	if m.historyIdx < m.history.Len()-1 {
		m.historyIdx++

		if entry, err := m.history.GetEntry(m.historyIdx); err == nil {
			if m.mode != entry.Mode {
				m = m.switchToMode(entry.Mode)
			}

			m.input.SetValue(entry.Line)
			m.input.SetCursor(len(entry.Line))
			refreshMatches(&m, false)
		}
	} else {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m, nil
}

// toggleMode switches between definition and command modes, preserving each
// mode's input state.
func (m model) toggleMode() (model, tea.Cmd) {
	if m.mode == modeDef {
		return m.switchToMode(modeCtrl), nil
	}

	return m.switchToMode(modeDef), nil
}

func (m model) switchToMode(mode inputMode) model {
	if m.mode == modeDef {
		m.defText = m.input.Value()
		m.defCursor = m.input.Position()
	} else {
		m.ctrlText = m.input.Value()
		m.ctrlCursor = m.input.Position()
	}

	m.mode = mode
	if mode == modeDef {
		m.input.Prompt = m.prompt()
		m.input.SetValue(m.defText)
		m.input.SetCursor(m.defCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	refreshMatches(&m, false)

	return m
}
