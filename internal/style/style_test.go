package style

import (
	"testing"

	"github.com/mprompt/promptline/internal/color"
	"github.com/mprompt/promptline/internal/match"
	"github.com/mprompt/promptline/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeColors struct{}

func (fakeColors) GroupColorSpecs(string) map[string]string { return nil }
func (fakeColors) ThemeDefault() color.Style                 { return color.Parse("white") }
func (fakeColors) CategoryDefault(cat string) color.Style {
	if cat == "Include" {
		return color.Parse("cyan")
	}
	return color.Parse("white")
}

func buildResults(tokens []token.Token) []match.MatchResult {
	results := make([]match.MatchResult, len(tokens))
	for i, t := range tokens {
		cat := "Default"
		if i == 0 {
			cat = "Executable"
		}
		results[i] = match.MatchResult{
			Token:    t,
			Category: cat,
			Matched:  i == 0,
			Groups:   []match.CaptureGroup{{Value: t.Value, Start: 0, End: len(t.Value), GroupIndex: 0, Name: "0"}},
		}
	}
	return results
}

func TestStylePreservesWhitespaceRuns(t *testing.T) {
	text := "gcc  -O2"
	tokens := token.Tokenize(text)
	results := buildResults(tokens)
	lx := &Lexer{Colors: fakeColors{}}

	spans := lx.Style(text, results)

	var rebuilt string
	for _, s := range spans {
		rebuilt += s.Text
	}
	assert.Equal(t, text, rebuilt)
}

func TestStyleGroupsSortedByStart(t *testing.T) {
	tok := token.Token{Value: "-Ifoo", Raw: "-Ifoo", Start: 0, End: 5}
	result := match.MatchResult{
		Token:    tok,
		Category: "Include",
		Matched:  true,
		Groups: []match.CaptureGroup{
			{Value: "foo", Start: 2, End: 5, GroupIndex: 1},
		},
	}
	lx := &Lexer{Colors: fakeColors{}}
	spans := lx.Style("-Ifoo", []match.MatchResult{result})

	require.Len(t, spans, 2)
	assert.Equal(t, "-I", spans[0].Text)
	assert.Equal(t, "foo", spans[1].Text)
}

func TestLightsOffDimsNonMatchingCategory(t *testing.T) {
	text := "gcc -O2"
	tokens := token.Tokenize(text)
	results := buildResults(tokens)
	results[1].Category = "Optimization"
	results[1].Matched = true

	lx := &Lexer{Colors: fakeColors{}, LightsOff: LightsOff{Enabled: true, Category: "Include"}}
	cat := lx.effectiveCategory(results[1].Category, 1)
	assert.Equal(t, lightsOffDimCategory, cat)
}

func TestLightsOffToggleLaws(t *testing.T) {
	var l LightsOff
	l.Toggle("Include")
	assert.True(t, l.Enabled)
	assert.Equal(t, "Include", l.Category)

	l.Toggle("Include")
	assert.False(t, l.Enabled)

	l.Toggle("Include")
	l.Toggle("Optimization")
	assert.True(t, l.Enabled)
	assert.Equal(t, "Optimization", l.Category)
}

func TestDuplicatesOverlayMarksCurrentAndSelected(t *testing.T) {
	text := "gcc -Wall -Wall"
	tokens := token.Tokenize(text)
	results := buildResults(tokens)

	overlay := &DuplicatesOverlay{
		Highlighted: map[int]bool{1: true, 2: true},
		Selected:    map[int]bool{2: true},
		Current:     1,
	}
	lx := &Lexer{Colors: fakeColors{}, Duplicates: overlay}

	assert.Equal(t, duplicateCurrent, lx.effectiveCategory(results[1].Category, 1))
	assert.Equal(t, duplicateSelected, lx.effectiveCategory(results[2].Category, 2))
}
