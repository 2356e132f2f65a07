package editor

import (
	"time"

	"github.com/mprompt/promptline/internal/complete"
	"github.com/mprompt/promptline/internal/config"
	"github.com/mprompt/promptline/internal/duplicates"
	"github.com/mprompt/promptline/internal/match"
	"github.com/mprompt/promptline/internal/program"
	"github.com/mprompt/promptline/internal/style"
	"github.com/mprompt/promptline/internal/token"
	"github.com/mprompt/promptline/internal/validate"
	"github.com/sirupsen/logrus"
)

// Editor owns the Buffer plus every piece of state derived from it: the
// matcher compiled for the currently-detected program, the styler, and an
// optional duplicates-mode state machine. Subcomponents never hold a
// back-reference to Editor; duplicates.Mode is handed a narrow bufferOps
// view instead, per the teacher's habit of injecting small capabilities
// rather than cyclic object graphs.
type Editor struct {
	buf    *Buffer
	cfg    config.Config
	theme  config.Theme
	logger logrus.FieldLogger

	granularity *int
	noColor     bool

	matcher         *match.Matcher
	lastProgramName string
	results         []match.MatchResult

	duplicatesMode *duplicates.Mode
	lightsOff      style.LightsOff
}

// New constructs an Editor for an initial command line, wiring the
// supplied configuration and theme. logger is attached for warnings raised
// while compiling flag patterns and while running the editor's commands;
// it is never used for the styled output itself.
func New(text string, cfg config.Config, theme config.Theme, granularity *int, noColor bool, logger logrus.FieldLogger) *Editor {
	e := &Editor{
		buf:         NewBuffer(text),
		cfg:         cfg,
		theme:       theme,
		logger:      logger,
		granularity: granularity,
		noColor:     noColor,
	}
	e.refreshMatcher()
	return e
}

// Buffer exposes the underlying buffer for callers (the REPL, tests) that
// need direct text/cursor access.
func (e *Editor) Buffer() *Buffer { return e.buf }

// Text is a convenience accessor for the buffer's current contents.
func (e *Editor) Text() string { return e.buf.Text() }

func (e *Editor) warnf(format string, args ...any) {
	if e.logger != nil {
		e.logger.Warnf(format, args...)
	}
}

// currentExecutable returns token 0's value, the raw basename the matcher
// and program detector key off of, or "" for an empty buffer.
func (e *Editor) currentExecutable() string {
	tokens := e.buf.Tokens()
	if len(tokens) == 0 {
		return ""
	}
	return tokens[0].Value
}

// refreshMatcher compiles a matcher for the current token 0 on every call,
// but only replaces the stored matcher when the detected program's
// canonical name has changed, so the table in use stays fixed per
// (configuration, detected program).
func (e *Editor) refreshMatcher() {
	executable := e.currentExecutable()
	m := match.New(executable, e.cfg, e.cfg, e.warnf)

	programName := ""
	if pm := m.ProgramMatch(); pm != nil {
		programName = pm.CanonicalName
	}

	if e.matcher == nil || programName != e.lastProgramName {
		e.matcher = m
		e.lastProgramName = programName
	}
}

// Refresh re-tokenizes the buffer, swaps in a new matcher if the program
// changed, and recomputes match results. It must be called after every
// buffer mutation before styling or completion is requested again.
func (e *Editor) Refresh() {
	e.refreshMatcher()
	e.results = e.matcher.MatchTokens(e.buf.Tokens())
}

// MatchResults returns the match results computed by the last Refresh.
func (e *Editor) MatchResults() []match.MatchResult {
	if e.results == nil {
		e.Refresh()
	}
	return e.results
}

// ProgramMatch exposes the detected program for the current buffer.
func (e *Editor) ProgramMatch() *program.Match {
	return e.matcher.ProgramMatch()
}

// FindDuplicates implements duplicates.BufferOps.
func (e *Editor) FindDuplicates(results []match.MatchResult) map[string][]int {
	return match.FindDuplicates(results)
}

// Tokens implements duplicates.BufferOps.
func (e *Editor) Tokens() []token.Token { return e.buf.Tokens() }

// SetText implements duplicates.BufferOps: rewrites the buffer and
// recomputes derived state.
func (e *Editor) SetText(text string) {
	e.buf.SetText(text)
	e.Refresh()
}

// SetCursorPosition implements duplicates.BufferOps.
func (e *Editor) SetCursorPosition(pos int) {
	e.buf.SetCursorPosition(pos)
}

// StyledSpans renders the buffer through the color engine, layering
// lights-off and duplicates overlays as configured.
func (e *Editor) StyledSpans() []style.Span {
	results := e.MatchResults()

	lx := &style.Lexer{
		Colors:    newThemeColors(e.cfg, e.theme),
		LightsOff: e.lightsOff,
	}
	if e.duplicatesMode != nil {
		lx.Duplicates = &style.DuplicatesOverlay{
			Highlighted: e.duplicatesMode.HighlightedIndices(),
			Selected:    e.duplicatesMode.SelectedIndices(),
			Current:     e.duplicatesMode.CurrentIndex(),
		}
	}

	if e.noColor {
		return []style.Span{{Text: e.buf.Text()}}
	}
	return lx.Style(e.buf.Text(), results)
}

// ToggleLightsOff applies the toggle-same-clears / toggle-different-
// switches law from spec.md §4.6. When the resulting category names a
// category map, it is expanded to its constituent categories to the
// depth configured by --granularity before being used to dim non-matching
// tokens.
func (e *Editor) ToggleLightsOff(category string) {
	e.lightsOff.Toggle(category)
	if e.lightsOff.Enabled && e.lightsOff.Category != "" {
		e.lightsOff.Categories = match.ExpandCategoryMap(e.cfg, e.lightsOff.Category, e.granularity)
	}
}

// InDuplicatesMode reports whether duplicates mode is currently active.
func (e *Editor) InDuplicatesMode() bool {
	return e.duplicatesMode != nil
}

// EnterDuplicatesMode computes the current duplicate groups and switches
// into duplicates mode. A no-op if there are no duplicates to show.
func (e *Editor) EnterDuplicatesMode() bool {
	dups := match.FindDuplicates(e.MatchResults())
	if len(dups) == 0 {
		return false
	}
	e.duplicatesMode = duplicates.New(dups)
	return true
}

// ExitDuplicatesMode leaves duplicates mode, discarding its state.
func (e *Editor) ExitDuplicatesMode() {
	e.duplicatesMode = nil
}

// DuplicatesMode exposes the active duplicates state machine, or nil.
func (e *Editor) DuplicatesMode() *duplicates.Mode {
	return e.duplicatesMode
}

// CompletionRequest resolves what should be completed at the buffer's
// current cursor position.
func (e *Editor) CompletionRequest() complete.Request {
	return complete.Resolve(e.buf.Text(), e.buf.CursorPosition(), e.defaultValidator(), e.validatorForResult, e.matcher)
}

// defaultValidator returns the configured global default validator, a
// FileValidator if none is configured.
func (e *Editor) defaultValidator() validate.Validator {
	if e.cfg.Global.DefaultValidator != nil {
		return buildValidator(e.cfg.Global.DefaultValidator)
	}
	return &validate.FileValidator{}
}

// validatorForResult resolves a matched token's declared validator, if its
// originating flag rule carries one; else program-level default; else nil
// so the caller falls back to the global default. The originating rule is
// recovered from match.Flag.Source rather than by re-matching on category
// name, since two flag rules are allowed to share a category (category is a
// display/grouping label, not a unique key) and would otherwise collide.
func (e *Editor) validatorForResult(r match.MatchResult) validate.Validator {
	if r.Flag == nil {
		return nil
	}
	if cf, ok := r.Flag.Source.(*config.Flag); ok && cf.Validator != nil {
		return buildValidator(cf.Validator)
	}
	if prog := e.cfg.GetProgram(e.currentExecutable()); prog != nil {
		if prog.Config != nil && prog.Config.DefaultValidator != nil {
			return buildValidator(prog.Config.DefaultValidator)
		}
	}
	return nil
}

// buildValidator is the tagged-variant dispatch spec.md §9's design notes
// call for: construction driven by the descriptor's Type field.
func buildValidator(v *config.ValidatorConfig) validate.Validator {
	switch v.Type {
	case "file":
		return &validate.FileValidator{
			Extensions:       v.Extensions,
			Multiple:         v.Multiple,
			Separator:        v.Separator,
			Sort:             v.Sort,
			Include:          v.Include,
			Exclude:          v.Exclude,
			StartupDirectory: v.StartupDirectory,
			Change:           v.Change,
		}
	case "directory":
		return validate.NewDirectoryValidator(validate.FileValidator{
			Multiple:         v.Multiple,
			Separator:        v.Separator,
			Sort:             v.Sort,
			Include:          v.Include,
			Exclude:          v.Exclude,
			StartupDirectory: v.StartupDirectory,
			Change:           v.Change,
		})
	case "choice":
		return &validate.ChoiceValidator{Options: v.Options}
	case "multiple_choice":
		return validate.NewMultipleChoiceValidator(v.Options, v.Delimiter, v.Minimum, v.Maximum)
	case "warnings":
		return &validate.WarningsValidator{Prefix: v.Prefix}
	case "custom":
		cv := &validate.CustomValidator{Command: v.Command}
		if v.TimeoutSeconds > 0 {
			cv.Timeout = time.Duration(v.TimeoutSeconds * float64(time.Second))
		}
		return cv
	default:
		return &validate.FileValidator{}
	}
}
