package editor

import (
	"testing"

	"github.com/mprompt/promptline/internal/config"
	"github.com/mprompt/promptline/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		Flags: []config.Flag{
			{Category: "Includes", Regexps: []string{`-I(.*)`}},
			{Category: "Warning", Regexps: []string{`-W[a-zA-Z-]*`}},
		},
		CategoryMaps: map[string]config.CategoryMap{
			"diagnostics": {Name: "diagnostics", Categories: []string{"Warning"}},
		},
		Categories:  map[string]config.Category{},
		Themes:      map[string]config.Theme{},
		ProgramDefs: map[string]config.Program{},
	}
}

func newTestEditor(t *testing.T, line string) *Editor {
	cfg := testConfig()
	theme := cfg.GetTheme("")
	return New(line, cfg, theme, nil, true, nil)
}

func TestEditorRefreshRecomputesMatches(t *testing.T) {
	e := newTestEditor(t, "gcc -I/a -I/b -O2")
	results := e.MatchResults()
	require.Len(t, results, 4)
	assert.Equal(t, "Executable", results[0].Category)
	assert.Equal(t, "Includes", results[1].Category)
	assert.Equal(t, "Includes", results[2].Category)
	assert.Equal(t, "Default", results[3].Category)
}

func TestEditorDuplicatesKeepFirst(t *testing.T) {
	e := newTestEditor(t, "gcc -I/a -I/b -I/c")

	require.True(t, e.EnterDuplicatesMode())
	require.True(t, e.InDuplicatesMode())

	mode := e.DuplicatesMode()
	require.Len(t, mode.Groups(), 1)
	assert.Equal(t, []int{1, 2, 3}, mode.Groups()[0].Indices)

	mode.KeepFirst(e)
	assert.Equal(t, "gcc -I/a", e.Text())
}

func TestEditorDuplicatesNoneFound(t *testing.T) {
	e := newTestEditor(t, "gcc -I/a main.c")
	assert.False(t, e.EnterDuplicatesMode())
	assert.False(t, e.InDuplicatesMode())
}

func TestEditorLightsOffExpandsCategoryMap(t *testing.T) {
	e := newTestEditor(t, "gcc -Wall -I/a")
	e.ToggleLightsOff("diagnostics")

	assert.True(t, e.lightsOff.Enabled)
	assert.Contains(t, e.lightsOff.Categories, "Warning")
}

func TestEditorLightsOffToggleIsIdentity(t *testing.T) {
	e := newTestEditor(t, "gcc -Wall")
	e.ToggleLightsOff("Warning")
	assert.True(t, e.lightsOff.Enabled)
	e.ToggleLightsOff("Warning")
	assert.False(t, e.lightsOff.Enabled)
}

func TestEditorValidatorForResultDistinguishesSharedCategory(t *testing.T) {
	cfg := config.Config{
		Flags: []config.Flag{
			{Category: "Mode", Regexps: []string{`--opt=(.+)`}, Validator: &config.ValidatorConfig{Type: "choice", Options: []string{"fast"}}},
			{Category: "Mode", Regexps: []string{`--alt=(.+)`}, Validator: &config.ValidatorConfig{Type: "choice", Options: []string{"slow"}}},
		},
		CategoryMaps: map[string]config.CategoryMap{},
		Categories:   map[string]config.Category{},
		Themes:       map[string]config.Theme{},
		ProgramDefs:  map[string]config.Program{},
	}
	theme := cfg.GetTheme("")
	e := New("cmd --opt=x --alt=y", cfg, theme, nil, true, nil)

	results := e.MatchResults()
	require.Len(t, results, 3)

	first := e.validatorForResult(results[1])
	second := e.validatorForResult(results[2])

	require.IsType(t, &validate.ChoiceValidator{}, first)
	require.IsType(t, &validate.ChoiceValidator{}, second)
	assert.Equal(t, []string{"fast"}, first.(*validate.ChoiceValidator).Options)
	assert.Equal(t, []string{"slow"}, second.(*validate.ChoiceValidator).Options)
}

func TestEditorStyledSpansPartitionBuffer(t *testing.T) {
	e := newTestEditor(t, "gcc  -I/a main.c")
	e.noColor = false

	var rebuilt string
	for _, span := range e.StyledSpans() {
		rebuilt += span.Text
	}
	assert.Equal(t, e.Text(), rebuilt)
}
