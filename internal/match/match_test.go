package match

import (
	"testing"

	"github.com/mprompt/promptline/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFlagSource struct {
	flags []Flag
}

func (f fakeFlagSource) FlagsForProgram(string) []Flag { return f.flags }

func TestMatchTokenHitsFirstDeclaredCategory(t *testing.T) {
	src := fakeFlagSource{flags: []Flag{
		{Category: "Optimization", Regexps: []string{`-O[0-3s]`}},
		{Category: "Include", Regexps: []string{`-I(?P<path>.+)`}},
	}}
	m := New("gcc", nil, src, nil)

	r := m.MatchToken(token.Token{Value: "-O2"})
	assert.Equal(t, "Optimization", r.Category)
	assert.True(t, r.Matched)
	require.NotNil(t, r.Flag)
}

func TestMatchTokenNamedGroupExtraction(t *testing.T) {
	src := fakeFlagSource{flags: []Flag{
		{Category: "Include", Regexps: []string{`-I(?P<path>.+)`}},
	}}
	m := New("gcc", nil, src, nil)

	r := m.MatchToken(token.Token{Value: "-I/tmp/foo"})
	require.Len(t, r.Groups, 1)
	assert.Equal(t, "path", r.Groups[0].Name)
	assert.Equal(t, "/tmp/foo", r.Groups[0].Value)
}

func TestMatchTokenFallsThroughToDefault(t *testing.T) {
	m := New("gcc", nil, fakeFlagSource{}, nil)
	r := m.MatchToken(token.Token{Value: "main.c"})
	assert.Equal(t, "Default", r.Category)
	assert.False(t, r.Matched)
	assert.Nil(t, r.Flag)
	require.Len(t, r.Groups, 1)
	assert.Equal(t, "main.c", r.Groups[0].Value)
	assert.Equal(t, "0", r.Groups[0].Name)
}

func TestMatchTokenUnnamedGroupFallsBackToPositionalIndex(t *testing.T) {
	src := fakeFlagSource{flags: []Flag{
		{Category: "Include", Regexps: []string{`-I(.+)`}},
	}}
	m := New("gcc", nil, src, nil)

	r := m.MatchToken(token.Token{Value: "-I/tmp/foo"})
	require.Len(t, r.Groups, 1)
	assert.Equal(t, "1", r.Groups[0].Name)
}

func TestMatchTokenUnnamedGroupUsesDeclaredCaptureGroupName(t *testing.T) {
	src := fakeFlagSource{flags: []Flag{
		{Category: "Include", Regexps: []string{`-I(.+)`}, CaptureGroups: []string{"path"}},
	}}
	m := New("gcc", nil, src, nil)

	r := m.MatchToken(token.Token{Value: "-I/tmp/foo"})
	require.Len(t, r.Groups, 1)
	assert.Equal(t, "path", r.Groups[0].Name)
}

func TestMatchTokensExecutableSyntheticGroupIsNamedZero(t *testing.T) {
	m := New("gcc", nil, fakeFlagSource{}, nil)
	tokens := token.Tokenize("gcc main.c")
	results := m.MatchTokens(tokens)
	require.Len(t, results[0].Groups, 1)
	assert.Equal(t, "0", results[0].Groups[0].Name)
}

func TestMatchTokensForcesExecutableCategory(t *testing.T) {
	src := fakeFlagSource{flags: []Flag{{Category: "Executable", Regexps: []string{"gcc"}}}}
	m := New("gcc", nil, src, nil)

	tokens := token.Tokenize("gcc -O2 main.c")
	results := m.MatchTokens(tokens)
	require.Len(t, results, 3)
	assert.Equal(t, "Executable", results[0].Category)
	assert.True(t, results[0].Matched)
}

func TestMatchInvalidRegexSkippedWithWarning(t *testing.T) {
	var warned []string
	src := fakeFlagSource{flags: []Flag{
		{Category: "Broken", Regexps: []string{"("}},
		{Category: "Include", Regexps: []string{`-I(.+)`}},
	}}
	m := New("gcc", nil, src, func(format string, args ...any) {
		warned = append(warned, format)
	})

	assert.NotEmpty(t, warned)
	r := m.MatchToken(token.Token{Value: "-I/x"})
	assert.Equal(t, "Include", r.Category)
}

func TestFindDuplicatesOnlyCountsMatchedFlagged(t *testing.T) {
	results := []MatchResult{
		{Category: "Executable", Matched: true, Flag: nil},
		{Category: "Include", Matched: true, Flag: &Flag{Category: "Include"}},
		{Category: "Include", Matched: true, Flag: &Flag{Category: "Include"}},
		{Category: "Default", Matched: false, Flag: nil},
		{Category: "Default", Matched: false, Flag: nil},
	}
	dups := FindDuplicates(results)
	assert.Equal(t, []int{1, 2}, dups["Include"])
	_, hasDefault := dups["Default"]
	assert.False(t, hasDefault)
	_, hasExecutable := dups["Executable"]
	assert.False(t, hasExecutable)
}

func TestGetEquivalentIndicesGroupsSameCategory(t *testing.T) {
	results := []MatchResult{
		{Category: "Executable"},
		{Category: "Include"},
		{Category: "Include"},
		{Category: "Optimization"},
	}
	assert.Equal(t, []int{1, 2}, GetEquivalentIndices(results, 1))
}

func TestGetEquivalentIndicesDefaultShortCircuits(t *testing.T) {
	results := []MatchResult{
		{Category: "Default"},
		{Category: "Default"},
	}
	assert.Equal(t, []int{0}, GetEquivalentIndices(results, 0))
}

func TestGetEquivalentIndicesOutOfRange(t *testing.T) {
	assert.Nil(t, GetEquivalentIndices(nil, 0))
	assert.Nil(t, GetEquivalentIndices([]MatchResult{{}}, 5))
}

type fakeCategorySource struct {
	maps map[string][]string
}

func (f fakeCategorySource) CategoryMapCategories(name string) ([]string, bool) {
	cats, ok := f.maps[name]
	return cats, ok
}

func TestExpandCategoryMapFullyExpands(t *testing.T) {
	src := fakeCategorySource{maps: map[string][]string{
		"compiler_flags": {"optimization", "include"},
	}}
	got := ExpandCategoryMap(src, "compiler_flags", nil)
	assert.Equal(t, []string{"optimization", "include"}, got)
}

func TestExpandCategoryMapLevelZeroNoExpansion(t *testing.T) {
	src := fakeCategorySource{maps: map[string][]string{
		"compiler_flags": {"optimization", "include"},
	}}
	zero := 0
	got := ExpandCategoryMap(src, "compiler_flags", &zero)
	assert.Equal(t, []string{"compiler_flags"}, got)
}

func TestExpandCategoryMapRecursesNested(t *testing.T) {
	src := fakeCategorySource{maps: map[string][]string{
		"all":      {"compiler_flags", "linker_flags"},
		"compiler_flags": {"optimization"},
	}}
	got := ExpandCategoryMap(src, "all", nil)
	assert.Equal(t, []string{"optimization", "linker_flags"}, got)
}

func TestExpandCategoryMapPlainCategoryPassesThrough(t *testing.T) {
	src := fakeCategorySource{maps: map[string][]string{}}
	got := ExpandCategoryMap(src, "optimization", nil)
	assert.Equal(t, []string{"optimization"}, got)
}
