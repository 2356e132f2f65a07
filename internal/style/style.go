// Package style composes tokenizer, matcher, and color output into
// byte-exact styled spans suitable for terminal rendering.
package style

import (
	"sort"
	"strings"

	"github.com/mprompt/promptline/internal/color"
	"github.com/mprompt/promptline/internal/match"
	"github.com/mprompt/promptline/internal/token"
)

// Span is one contiguous run of text carrying a single resolved style.
type Span struct {
	Style color.Style
	Text  string
}

// CategoryColors supplies the raw name/index capture-group color mapping
// configured for a category, and the theme-level default fallback.
type CategoryColors interface {
	GroupColorSpecs(category string) map[string]string
	ThemeDefault() color.Style
	CategoryDefault(category string) color.Style
}

const (
	lightsOffDimCategory  = "ui:lights-off-dim"
	duplicateCategory     = "ui:duplicate"
	duplicateSelected     = "ui:duplicate-selected"
	duplicateCurrent      = "ui:duplicate-current"
	duplicateDim          = "ui:duplicate-dim"
)

// LightsOff holds the overlay state toggled by the lights-off command: once
// enabled with a category, every token outside the tracked category is
// dimmed. With an empty category no token is dimmed; the Lexer has no
// cursor position, so it does not highlight the cursor token. Categories,
// when non-empty, is the category expanded through a category map (see match.ExpandCategoryMap
// and the --granularity flag); a token matches if its category equals
// Category or any entry of Categories.
type LightsOff struct {
	Enabled    bool
	Category   string
	Categories []string
}

// Toggle applies the toggle-same-clears / toggle-different-switches law:
// toggling the currently active category turns lights-off back off;
// toggling any other value (including empty) switches to it. Categories is left to the caller (Editor expands it via
// the configured granularity after calling Toggle).
func (l *LightsOff) Toggle(category string) {
	if l.Enabled && strings.EqualFold(l.Category, category) {
		l.Enabled = false
		l.Category = ""
		l.Categories = nil
		return
	}
	l.Enabled = true
	l.Category = category
	l.Categories = nil
}

// Matches reports whether category is the tracked category or within its
// expanded category-map set.
func (l LightsOff) Matches(category string) bool {
	if len(l.Categories) == 0 {
		return strings.EqualFold(category, l.Category)
	}
	for _, c := range l.Categories {
		if strings.EqualFold(category, c) {
			return true
		}
	}
	return false
}

// DuplicatesOverlay marks which token indices belong to duplicate groups,
// which are selected, and which one is the "current" (cursor-tracked)
// duplicate.
type DuplicatesOverlay struct {
	Highlighted map[int]bool
	Selected    map[int]bool
	Current     int // -1 when none
}

// Lexer renders a full token stream into styled spans.
type Lexer struct {
	Colors    CategoryColors
	LightsOff LightsOff
	Duplicates *DuplicatesOverlay
}

// Style renders every token plus inter-token whitespace, using text and the
// already-computed match results for that text's tokenization.
func (lx *Lexer) Style(text string, results []match.MatchResult) []Span {
	var spans []Span
	lastEnd := 0

	for i, result := range results {
		t := result.Token

		if t.Start > lastEnd {
			spans = append(spans, Span{Text: text[lastEnd:t.Start]})
		}

		category := lx.effectiveCategory(result.Category, i)
		spans = append(spans, lx.styleToken(t, result, category, i)...)

		lastEnd = t.End
	}

	if lastEnd < len(text) {
		spans = append(spans, Span{Text: text[lastEnd:]})
	}

	return spans
}

func (lx *Lexer) effectiveCategory(category string, index int) string {
	if lx.Duplicates != nil {
		if index == lx.Duplicates.Current {
			return duplicateCurrent
		}
		if lx.Duplicates.Selected[index] {
			return duplicateSelected
		}
		if lx.Duplicates.Highlighted[index] {
			return duplicateCategory
		}
	}

	if lx.LightsOff.Enabled && lx.LightsOff.Category != "" {
		if !lx.LightsOff.Matches(category) {
			return lightsOffDimCategory
		}
	}

	return category
}

func (lx *Lexer) styleToken(t token.Token, result match.MatchResult, category string, index int) []Span {
	base := lx.resolveCategoryStyle(category)

	// Group offsets index t.Value; when quoting or escapes make Raw differ,
	// emit Raw whole so the spans still reproduce the source text.
	if len(result.Groups) == 0 || t.Raw != t.Value {
		return []Span{{Style: base, Text: t.Raw}}
	}

	var groupColors map[string]string
	themeDefault := color.Style{}
	if lx.Colors != nil {
		groupColors = lx.Colors.GroupColorSpecs(category)
		themeDefault = lx.Colors.ThemeDefault()
	}

	sorted := append([]match.CaptureGroup(nil), result.Groups...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var spans []Span
	lastPos := 0
	for i, g := range sorted {
		if g.Start > lastPos {
			spans = append(spans, Span{Style: base, Text: t.Value[lastPos:g.Start]})
		}
		groupStyle := color.Resolve(groupColors, g.Name, i, base, themeDefault)
		spans = append(spans, Span{Style: groupStyle, Text: g.Value})
		lastPos = g.End
	}
	if lastPos < len(t.Value) {
		spans = append(spans, Span{Style: base, Text: t.Value[lastPos:]})
	}

	return spans
}

func (lx *Lexer) resolveCategoryStyle(category string) color.Style {
	if lx.Colors == nil {
		return color.Style{}
	}
	return lx.Colors.CategoryDefault(category)
}
