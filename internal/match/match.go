// Package match implements stream matching: assigning each token a
// category and a set of capture groups by running a program's compiled
// flag patterns against it, in declaration order.
package match

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mprompt/promptline/internal/program"
	"github.com/mprompt/promptline/internal/token"
)

// Flag is the subset of a configured flag rule the matcher needs: the
// category it assigns, the ordered list of anchored regex patterns that
// trigger it, the optional positional capture-group names declared
// alongside them, and an opaque handle back to the rule that produced it
// (a *config.Flag, read by callers that know the concrete type; kept as
// `any` here to avoid an import cycle with package config).
type Flag struct {
	Category      string
	Regexps       []string
	CaptureGroups []string
	Source        any
}

// FlagSource supplies the ordered flag rules for a canonical program name
// (empty string for the program-agnostic default set).
type FlagSource interface {
	FlagsForProgram(programName string) []Flag
}

// CaptureGroup is one capture group from a token's regex match, with
// offsets relative to the token's value (not the source line).
type CaptureGroup struct {
	Value      string
	Start      int
	End        int
	GroupIndex int
	Name       string
}

// MatchResult is the outcome of matching one token.
type MatchResult struct {
	Token    token.Token
	Category string
	Flag     *Flag
	Groups   []CaptureGroup
	Matched  bool
}

// IsDefault reports whether the token fell through to the catch-all
// "Default" category.
func (r MatchResult) IsDefault() bool {
	return strings.EqualFold(r.Category, "Default")
}

type compiledPattern struct {
	re   *regexp.Regexp
	flag *Flag
}

// Matcher holds the compiled pattern table for one detected program.
type Matcher struct {
	programMatch *program.Match
	patterns     map[string][]compiledPattern
	order        []string
	warnf        func(format string, args ...any)
}

// New builds a Matcher for the given token stream's executable (if any),
// compiling the flag source's patterns for that program's canonical name.
// warnf, if non-nil, receives a message for every pattern that fails to
// compile; the pattern is then skipped rather than aborting the match.
func New(executable string, progSrc program.ProgramSource, src FlagSource, warnf func(string, ...any)) *Matcher {
	m := &Matcher{patterns: map[string][]compiledPattern{}, warnf: warnf}

	if executable != "" {
		pm := program.Detect(executable, progSrc)
		m.programMatch = &pm
	}

	programName := ""
	if m.programMatch != nil {
		programName = m.programMatch.CanonicalName
	}

	var flags []Flag
	if src != nil {
		flags = src.FlagsForProgram(programName)
	}

	for i := range flags {
		flag := &flags[i]
		category := strings.ToLower(flag.Category)
		if _, ok := m.patterns[category]; !ok {
			m.order = append(m.order, category)
		}
		for _, patternStr := range flag.Regexps {
			re, err := regexp.Compile("^(?:" + patternStr + ")$")
			if err != nil {
				if m.warnf != nil {
					m.warnf("invalid regex pattern %q: %v", patternStr, err)
				}
				continue
			}
			m.patterns[category] = append(m.patterns[category], compiledPattern{re: re, flag: flag})
		}
	}

	return m
}

// ProgramMatch exposes the detected program, if one was run.
func (m *Matcher) ProgramMatch() *program.Match {
	return m.programMatch
}

// MatchToken matches a single token against every compiled pattern, in
// category declaration order, returning the first hit. An unmatched token
// falls through to category "Default" with a single whole-value group.
func (m *Matcher) MatchToken(t token.Token) MatchResult {
	for _, category := range m.order {
		for _, cp := range m.patterns[category] {
			loc := cp.re.FindStringSubmatchIndex(t.Value)
			if loc == nil {
				continue
			}
			return MatchResult{
				Token:    t,
				Category: cp.flag.Category,
				Flag:     cp.flag,
				Groups:   extractGroups(cp.re, loc, t, cp.flag.CaptureGroups),
				Matched:  true,
			}
		}
	}

	return MatchResult{
		Token:    t,
		Category: "Default",
		Flag:     nil,
		Groups: []CaptureGroup{
			{Value: t.Value, Start: 0, End: len(t.Value), GroupIndex: 0, Name: "0"},
		},
		Matched: false,
	}
}

// groupName resolves a capture group's name per spec rule 3: the regex's
// own named group if present, else the positionally-corresponding entry in
// the flag rule's declared capture_groups, else the positional index
// rendered as a decimal string.
func groupName(regexpName string, positionalIndex int, captureGroups []string) string {
	if regexpName != "" {
		return regexpName
	}
	if idx := positionalIndex - 1; idx >= 0 && idx < len(captureGroups) && captureGroups[idx] != "" {
		return captureGroups[idx]
	}
	return strconv.Itoa(positionalIndex)
}

func extractGroups(re *regexp.Regexp, loc []int, t token.Token, captureGroups []string) []CaptureGroup {
	names := re.SubexpNames()
	var groups []CaptureGroup

	for i := 1; i*2+1 < len(loc); i++ {
		start, end := loc[i*2], loc[i*2+1]
		if start < 0 {
			continue
		}
		regexpName := ""
		if i < len(names) {
			regexpName = names[i]
		}
		groups = append(groups, CaptureGroup{
			Value:      t.Value[start:end],
			Start:      start,
			End:        end,
			GroupIndex: i,
			Name:       groupName(regexpName, i, captureGroups),
		})
	}

	if len(groups) == 0 {
		groups = append(groups, CaptureGroup{Value: t.Value, Start: 0, End: len(t.Value), GroupIndex: 0, Name: "0"})
	}

	return groups
}

// MatchTokens matches an entire token stream. Token 0 is always forced to
// category "Executable" regardless of whether a launcher precedes the
// actual program, since the first word on the command line is always what
// the shell executes.
func (m *Matcher) MatchTokens(tokens []token.Token) []MatchResult {
	results := make([]MatchResult, len(tokens))

	for i, t := range tokens {
		if i == 0 {
			results[i] = MatchResult{
				Token:    t,
				Category: "Executable",
				Flag:     nil,
				Groups: []CaptureGroup{
					{Value: t.Value, Start: 0, End: len(t.Value), GroupIndex: 0, Name: "0"},
				},
				Matched: true,
			}
			continue
		}
		results[i] = m.MatchToken(t)
	}

	return results
}

// CategoryForToken is a convenience wrapper returning just the category.
func (m *Matcher) CategoryForToken(t token.Token) string {
	return m.MatchToken(t).Category
}

// FindDuplicates groups result indices by category, keeping only
// categories with more than one occurrence. Only results that both
// matched and carry a concrete flag rule participate — unmatched
// "Default" tokens and the synthetic "Executable" entry never count as
// duplicates even if several share a category name.
func FindDuplicates(results []MatchResult) map[string][]int {
	byCategory := map[string][]int{}

	for i, r := range results {
		if !r.Matched || r.Flag == nil {
			continue
		}
		byCategory[r.Category] = append(byCategory[r.Category], i)
	}

	out := map[string][]int{}
	for cat, indices := range byCategory {
		if len(indices) > 1 {
			out[cat] = indices
		}
	}
	return out
}

// GetEquivalentIndices returns every index sharing currentIndex's category.
// The catch-all "Default" category never groups distinct unrelated tokens
// together, so it short-circuits to just the current index.
func GetEquivalentIndices(results []MatchResult, currentIndex int) []int {
	if currentIndex < 0 || currentIndex >= len(results) {
		return nil
	}

	current := results[currentIndex]
	if current.IsDefault() {
		return []int{currentIndex}
	}

	var out []int
	for i, r := range results {
		if r.Category == current.Category {
			out = append(out, i)
		}
	}
	return out
}

// CategorySource supplies category-map definitions for expansion.
type CategorySource interface {
	CategoryMapCategories(name string) ([]string, bool)
}

// ExpandCategoryMap recursively expands a category or category-map name
// into its constituent plain category names. level bounds recursion depth:
// nil means fully expand, 0 returns the name unexpanded.
func ExpandCategoryMap(src CategorySource, category string, level *int) []string {
	categories, ok := src.CategoryMapCategories(strings.ToLower(category))
	if !ok {
		return []string{category}
	}
	if level != nil && *level == 0 {
		return []string{category}
	}

	var result []string
	for _, cat := range categories {
		var nextLevel *int
		if level != nil {
			n := *level - 1
			nextLevel = &n
		}
		result = append(result, ExpandCategoryMap(src, cat, nextLevel)...)
	}
	return result
}

// DescribeFlag is a debugging helper used by --debug dumps.
func DescribeFlag(f *Flag) string {
	if f == nil {
		return "<none>"
	}
	return fmt.Sprintf("%s%v", f.Category, f.Regexps)
}
