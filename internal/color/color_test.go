package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSimpleFG(t *testing.T) {
	s := Parse("red")
	require := assert.New(t)
	require.NotNil(s.FG)
	require.Equal("red", *s.FG)
	require.False(s.Combine)
}

func TestParseAttributesAndBackground(t *testing.T) {
	s := Parse("bold red on white")
	assert.NotNil(t, s.Bold)
	assert.True(t, *s.Bold)
	assert.Equal(t, "red", *s.FG)
	assert.Equal(t, "white", *s.BG)
}

func TestParseCombinePrefix(t *testing.T) {
	s := Parse("+dim")
	assert.True(t, s.Combine)
	assert.NotNil(t, s.Dim)
}

func TestParseBrightColor(t *testing.T) {
	s := Parse("bright red")
	assert.Equal(t, "bright red", *s.FG)
}

func TestCombineLawBaseEmpty(t *testing.T) {
	base := Parse("red bold")
	got := Combine(base, Style{})
	assert.Equal(t, base.FG, got.FG)
	assert.Equal(t, base.Bold, got.Bold)
}

func TestCombineLawBaseBase(t *testing.T) {
	base := Parse("red bold")
	got := Combine(base, base)
	assert.Equal(t, *base.FG, *got.FG)
	assert.Equal(t, *base.Bold, *got.Bold)
}

func TestCombineOverlayWins(t *testing.T) {
	base := Parse("red")
	overlay := Parse("blue")
	got := Combine(base, overlay)
	assert.Equal(t, "blue", *got.FG)
}

func TestToANSIBasicForeground(t *testing.T) {
	s := Parse("red")
	assert.Equal(t, "\033[0;31m", s.ToANSI())
}

func TestToANSIBrightForeground(t *testing.T) {
	s := Parse("bright red")
	assert.Equal(t, "\033[0;91m", s.ToANSI())
}

func TestToANSIBackground(t *testing.T) {
	s := Parse("on blue")
	assert.Equal(t, "\033[0;44m", s.ToANSI())
}

func TestToANSICombineOmitsReset(t *testing.T) {
	s := Parse("+bold")
	assert.Equal(t, "\033[1m", s.ToANSI())
}

func TestToANSIEmptyStyle(t *testing.T) {
	assert.Equal(t, "", Style{}.ToANSI())
}

func TestResolveByName(t *testing.T) {
	groups := map[string]string{"flag": "green"}
	got := Resolve(groups, "flag", 0, Style{}, Style{})
	assert.Equal(t, "green", *got.FG)
}

func TestResolveByPositionalIndex(t *testing.T) {
	groups := map[string]string{"1": "yellow"}
	got := Resolve(groups, "unnamed", 1, Style{}, Style{})
	assert.Equal(t, "yellow", *got.FG)
}

func TestResolveFallsBackToThemeDefault(t *testing.T) {
	themeDefault := Parse("cyan")
	got := Resolve(nil, "x", 0, Style{}, themeDefault)
	assert.Equal(t, "cyan", *got.FG)
}
