package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/thenexthub/Codira-sub015/lang"
	"github.com/thenexthub/Codira-sub015/log"
)

// Loader reads the settings sources and returns a scope over them.
type Loader func(ctx context.Context) (*lang.Scope, error)

// Config configures a REPL session.
type Config struct {
	Load        Loader
	Sources     []string // settings files; the last one is opened by "edit"
	HistoryPath string   // empty keeps history in memory
	Logger      log.Logger
}

// reloadMsg carries the scope read by "edit" or "reload".
type reloadMsg struct{ scope *lang.Scope }

// editCancelledMsg is sent when the user declined to fix invalid settings.
type editCancelledMsg struct{}

// loadErrorMsg is sent when reloading fails.
type loadErrorMsg struct{ err error }

const (
	evalPrompt = "➜ "
	listPrompt = "≡ "
	ctrlPrompt = " :"
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help              Print this cruft
  macros [filter]   List assigned macros and their kinds
  dump [name]       Print the assignment chain of every macro, or one
  bind param=v,...  Bind a condition parameter
  unbind param      Remove a binding made with bind
  list              Toggle between string and list evaluation
  stats             Print evaluation counters
  edit              Edit the last settings file in $EDITOR and reload
  reload            Reload every settings file
  clear             Clear screen
  quit              Exit REPL

Usage:
  Type a macro name to evaluate it as its declared kind
  Type any other text to evaluate it as an expression, e.g. $(NAME:upper)
  Prefix a line with ? to evaluate a condition, e.g. ? $(A) == YES
  Completions appear automatically after "$(" and ":"
  Press Tab / Shift-Tab to cycle through candidates
  Press Esc to toggle between eval and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Use Alt+Up/Alt+Down to navigate command history
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
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
	warnStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Underline(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Underline(true)
)

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	load         Loader
	sources      []string
	base         *lang.Scope         // scope as loaded
	scope        *lang.Scope         // base with session bindings applied
	bindings     map[string][]string // session bindings by parameter name
	logger       log.Logger
	history      *History
	historyIdx   int
	matches      fuzzy.Matches // current fuzzy match results
	candidates   []string      // backing candidate list
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	quitting     bool
	listMode     bool
	mode         inputMode
	evalText     string
	evalCursor   int
	ctrlText     string
	ctrlCursor   int
}

// Run loads the settings and starts an interactive session.
func Run(ctx context.Context, cfg Config) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if cfg.Load == nil {
		return ErrNoLoader
	}

	cfg.Logger.TraceContext(
		ctx,
		"repl start",
		slog.Any("sources", cfg.Sources),
		slog.String("history", cfg.HistoryPath),
	)

	scope, err := cfg.Load(ctx)
	if err != nil {
		return err
	}

	history := NewHistory(cfg.HistoryPath)
	if err := history.Load(); err != nil {
		cfg.Logger.WarnContext(ctx, "could not load history",
			slog.String("path", cfg.HistoryPath),
			slog.Any("error", err),
		)
	}

	cfg.Logger.TraceContext(
		ctx,
		"repl history loaded",
		slog.Int("entry_count", history.Len()),
	)

	p := tea.NewProgram(newModel(ctx, cfg, scope, history), tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	cfg Config,
	scope *lang.Scope,
	history *History,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		load:       cfg.Load,
		sources:    cfg.Sources,
		base:       scope,
		scope:      scope,
		bindings:   make(map[string][]string),
		logger:     cfg.Logger,
		history:    history,
		historyIdx: history.Len(),
		width:      defaultWidth,
		mode:       modeEval,
	}
}

// namespace returns the namespace of the current scope.
func (m model) namespace() *lang.Namespace {
	if m.scope == nil {
		return nil
	}

	return m.scope.Namespace()
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
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil

	case reloadMsg:
		m.base = msg.scope
		m.scope = applyBindings(m.base, m.bindings)
		m.logger.TraceContext(
			m.ctxFunc(),
			"repl reload complete",
			slog.Int("macro_count", m.scope.Table().Len()),
		)

		return m, tea.Println(resultStyle.Render(
			fmt.Sprintf("✔ settings reloaded (%d macros)", m.scope.Table().Len()),
		))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("🗴 edit declined; keeping previous settings"))

	case loadErrorMsg:
		return m, tea.Println(errorStyle.Render("🗴 error: " + msg.err.Error()))
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
	op := detectOperator(input, m.input.Position())

	switch {
	case m.historyIdx < m.history.Len():
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())
		b.WriteString(hintStyle.Render(hint))

	case strings.TrimSpace(input) == "":
		hint := "Type a macro name or expression, or press Esc for commands"
		if m.mode == modeCtrl {
			hint = "Type: help, macros, dump, bind, edit, quit (press Esc to return)"
		}

		b.WriteString(hintStyle.Render(hint))

	case m.mode == modeEval && op.ok && len(m.matches) == 0:
		b.WriteString(renderOperatorHint(op))

	case len(m.matches) > 0:
		b.WriteString(renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width))
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
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
		return m.cycleCandidate(1)

	case tea.KeyShiftTab:
		return m.cycleCandidate(-1)

	case tea.KeyUp:
		if msg.Alt {
			m, _ = m.switchToMode(modeCtrl)

			return m.historyStep(m.history.Previous(m.historyIdx, modeCtrl))
		}

		return m.historyStep(m.historyIdx - 1)

	case tea.KeyDown:
		if msg.Alt {
			m, _ = m.switchToMode(modeCtrl)

			return m.historyStep(m.history.Next(m.historyIdx, modeCtrl))
		}

		return m.historyStep(m.historyIdx + 1)

	case tea.KeyShiftUp:
		return m.historyStep(m.history.Previous(m.historyIdx, m.mode))

	case tea.KeyShiftDown:
		return m.historyStep(m.history.Next(m.historyIdx, m.mode))

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		if m.mode == modeEval {
			return m.switchToMode(modeCtrl)
		}

		return m.switchToMode(modeEval)

	case tea.KeyRunes, tea.KeySpace:
		if m.tabActive && msg.Type == tea.KeySpace {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// Any other key (backspace, delete, arrows) edits without auto-confirm.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycleCandidate moves the tab selection by step, wrapping around. A sole
// candidate is completed and confirmed immediately.
func (m model) cycleCandidate(step int) (model, tea.Cmd) {
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

	switch {
	case m.tabActive:
		m.suggIdx = (m.suggIdx + step + len(m.matches)) % len(m.matches)
	case step < 0:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()
		m.suggIdx = len(m.matches) - 1
	default:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()
		m.suggIdx = 0
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
// When autoConfirm is true it also confirms the completion when exactly one
// candidate remains and the typed word already equals it.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	candidate := m.matches[0].Str
	if m.input.Value()[m.wordStart:m.wordEnd] == candidate {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

// historyStep shows history entry i, switching to its mode. Stepping past
// the newest entry clears the input.
func (m model) historyStep(i int) (model, tea.Cmd) {
	switch {
	case i < 0:
		return m, nil

	case i >= m.history.Len():
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)

		return m, nil
	}

	entry, err := m.history.Entry(i)
	if err != nil {
		return m, nil
	}

	if m.mode != entry.Mode {
		m, _ = m.switchToMode(entry.Mode)
	}

	m.historyIdx = i
	m.input.SetValue(entry.Line)
	m.input.SetCursor(len(entry.Line))
	refreshMatches(&m, false)

	return m, nil
}

// switchToMode switches to the specified mode, preserving the input of
// each mode.
func (m model) switchToMode(mode inputMode) (model, tea.Cmd) {
	if m.mode == modeEval {
		m.evalText = m.input.Value()
		m.evalCursor = m.input.Position()
	} else {
		m.ctrlText = m.input.Value()
		m.ctrlCursor = m.input.Position()
	}

	m.mode = mode
	if mode == modeEval {
		m.input.Prompt = m.evalPromptView()
		m.input.SetValue(m.evalText)
		m.input.SetCursor(m.evalCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	refreshMatches(&m, false)

	return m, nil
}

func (m model) evalPromptView() string {
	if m.listMode {
		return promptStyle.Render(listPrompt)
	}

	return promptStyle.Render(evalPrompt)
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.evalText, m.evalCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m.input.SetValue("")
	refreshMatches(&m, false)

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not write history", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		m.logger.TraceContext(m.ctxFunc(), "repl command", slog.String("input", input))

		return m.executeCommand(input)
	}

	m.logger.TraceContext(m.ctxFunc(), "repl eval", slog.String("input", input))

	echo := tea.Println(m.evalPromptView() + inputStyle.Render(input))

	out, diags, err := m.evaluate(input)
	if err != nil {
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	cmds := []tea.Cmd{echo}
	for _, d := range diags {
		cmds = append(cmds, tea.Println(warnStyle.Render(d.String())))
	}

	return m, tea.Sequence(append(cmds, tea.Println(resultStyle.Render(out)))...)
}

// evaluate evaluates one line of eval-mode input. A line starting with '?'
// is a condition, a bare macro name evaluates the macro as its kind, and
// anything else is an expression (a list expression in list mode).
func (m model) evaluate(input string) (string, []lang.Diagnostic, error) {
	if source, ok := strings.CutPrefix(input, "?"); ok {
		cond, err := lang.CompileCondition(strings.TrimSpace(source))
		if err != nil {
			return "", nil, err
		}

		out, err := cond.EvaluateString(m.scope)

		return out, nil, err
	}

	if mac := m.namespace().Lookup(input); mac != nil {
		return formatResult(m.scope.Evaluate(mac, nil)), nil, nil
	}

	var diags []lang.Diagnostic

	collect := func(d lang.Diagnostic) { diags = append(diags, d) }

	if m.listMode {
		items := m.scope.EvaluateListExpression(lang.ParseStringList(input, collect), nil)

		return formatResult(items), diags, nil
	}

	return m.scope.EvaluateExpression(lang.ParseString(input, collect), nil), diags, nil
}

// formatResult renders an evaluated value: booleans as YES or NO, lists
// one quoted item per line.
func formatResult(value any) string {
	switch v := value.(type) {
	case bool:
		return lang.FormatBool(v)
	case []string:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = lang.Quote(item)
		}

		return strings.Join(items, "\n")
	default:
		return fmt.Sprint(v)
	}
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	echo := tea.Println(ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input))

	cmd, args := parts[0], parts[1:]

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl exec command",
		slog.String("command", cmd),
		slog.Any("args", args),
	)

	var (
		out string
		err error
	)

	switch cmd {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echo, m.edit())

	case "r", "reload":
		return m, tea.Sequence(echo, m.reload())

	case "h", "help":
		out = helpMessage()

	case "m", "macros":
		out = m.listMacros(strings.Join(args, " "))

	case "d", "dump":
		out, err = m.dump(args)

	case "b", "bind":
		out, err = m.bind(args)

	case "u", "unbind":
		out, err = m.unbind(args)

	case "l", "list":
		m.listMode = !m.listMode
		out = "string evaluation"
		if m.listMode {
			out = "list evaluation"
		}

	case "s", "stats":
		out = formatStats(lang.Stats())

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + cmd + " (try 'help')"),
		)
	}

	if err != nil {
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	return m, tea.Sequence(echo, tea.Println(out))
}

// listMacros lists every assigned macro with its kind, ranked by fuzzy
// match when a filter is given.
func (m model) listMacros(filter string) string {
	var macros []*lang.Macro
	for mac := range m.scope.Table().Macros() {
		macros = append(macros, mac)
	}

	if filter != "" {
		names := make([]string, len(macros))
		for i, mac := range macros {
			names[i] = mac.Name()
		}

		var ranked []*lang.Macro
		for _, match := range fuzzy.Find(filter, names) {
			ranked = append(ranked, macros[match.Index])
		}

		macros = ranked
	}

	if len(macros) == 0 {
		return hintStyle.Render("  (no macros)")
	}

	var b strings.Builder

	for _, mac := range macros {
		fmt.Fprintf(&b, "  %s %s\n", mac.Name(), hintStyle.Render(mac.Kind().String()))
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func (m model) dump(names []string) (string, error) {
	if len(names) == 0 {
		return strings.TrimSuffix(m.scope.Table().Dump(), "\n"), nil
	}

	var b strings.Builder

	for _, name := range names {
		mac := m.namespace().Lookup(name)
		if mac == nil {
			return "", fmt.Errorf("undefined macro %q", name)
		}

		b.WriteString(m.scope.Table().DumpMacro(mac))
	}

	return strings.TrimSuffix(b.String(), "\n"), nil
}

// bind parses "param=v1,v2" arguments into session bindings. With no
// arguments it lists the current bindings.
func (m *model) bind(args []string) (string, error) {
	if len(args) == 0 {
		return m.formatBindings(), nil
	}

	for _, arg := range args {
		name, list, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return "", fmt.Errorf("invalid binding %q (want param=value[,value...])", arg)
		}

		var values []string
		for v := range strings.SplitSeq(list, ",") {
			values = append(values, strings.TrimSpace(v))
		}

		m.bindings[strings.TrimSpace(name)] = values
	}

	m.scope = applyBindings(m.base, m.bindings)

	return m.formatBindings(), nil
}

func (m *model) unbind(args []string) (string, error) {
	for _, name := range args {
		if _, ok := m.bindings[name]; !ok {
			return "", fmt.Errorf("parameter %q is not bound in this session", name)
		}

		delete(m.bindings, name)
	}

	m.scope = applyBindings(m.base, m.bindings)

	return m.formatBindings(), nil
}

func (m model) formatBindings() string {
	if len(m.bindings) == 0 {
		return hintStyle.Render("  (no session bindings)")
	}

	var b strings.Builder

	for _, name := range slices.Sorted(maps.Keys(m.bindings)) {
		fmt.Fprintf(&b, "  %s=%s\n", name, strings.Join(m.bindings[name], ","))
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// applyBindings returns base with every binding applied, in name order.
func applyBindings(base *lang.Scope, bindings map[string][]string) *lang.Scope {
	scope := base

	for _, name := range slices.Sorted(maps.Keys(bindings)) {
		p := base.Namespace().DeclareParameter(name)
		scope = scope.SubscopeValues(p, bindings[name]...)
	}

	return scope
}

func formatStats(s lang.Statistics) string {
	return fmt.Sprintf(
		"  parsed strings    %d\n  parsed lists      %d\n  evaluations       %d\n"+
			"  computed          %d\n  expressions       %d",
		s.ParsedStrings, s.ParsedLists, s.Evaluations,
		s.EvaluationsComputed, s.ExprEvaluations,
	)
}

// edit opens the last settings source in the user's editor and reloads.
func (m model) edit() tea.Cmd {
	if len(m.sources) == 0 {
		return func() tea.Msg { return loadErrorMsg{err: ErrNoSource} }
	}

	cmd := &editCommand{
		path:    m.sources[len(m.sources)-1],
		ctxFunc: m.ctxFunc,
		load:    m.load,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editCancelledMsg{}
		case err != nil:
			return loadErrorMsg{err: err}
		}

		return reloadMsg{scope: cmd.newScope}
	})
}

// reload reads every settings source again.
func (m model) reload() tea.Cmd {
	load, ctxFunc := m.load, m.ctxFunc

	return func() tea.Msg {
		scope, err := load(ctxFunc())
		if err != nil {
			return loadErrorMsg{err: err}
		}

		return reloadMsg{scope: scope}
	}
}
