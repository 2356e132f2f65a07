package complete

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/mprompt/promptline/internal/match"
	"github.com/mprompt/promptline/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFlagSource struct{ flags []match.Flag }

func (f fakeFlagSource) FlagsForProgram(string) []match.Flag { return f.flags }

func TestResolveEmptyTextUsesDefaultValidator(t *testing.T) {
	def := &validate.ChoiceValidator{Options: []string{"a"}}
	req := Resolve("", 0, def, nil, nil)
	assert.Equal(t, def, req.Validator)
	assert.Equal(t, "", req.Partial)
}

func TestResolveCursorInFirstTokenRoutesToExecutable(t *testing.T) {
	req := Resolve("gc", 2, nil, nil, nil)
	assert.True(t, req.IsExecutable)
	assert.Equal(t, "gc", req.Partial)
	assert.Equal(t, 0, req.StartOffset)
}

func TestResolveCursorInWhitespaceUsesDefault(t *testing.T) {
	def := &validate.ChoiceValidator{}
	req := Resolve("gcc  ", 4, def, nil, nil)
	assert.Equal(t, def, req.Validator)
	assert.Equal(t, "", req.Partial)
}

func TestResolveCursorInFlagValueUsesLastGroup(t *testing.T) {
	src := fakeFlagSource{flags: []match.Flag{
		{Category: "Include", Regexps: []string{`(-I)(.+)`}},
	}}
	m := match.New("gcc", nil, src, nil)

	text := "gcc -I/tmp/foo"
	cursor := len("gcc -I/tmp")

	req := Resolve(text, cursor, nil, func(r match.MatchResult) validate.Validator {
		if r.Category == "Include" {
			return &validate.FileValidator{}
		}
		return nil
	}, m)

	require.NotNil(t, req.Validator)
	assert.Equal(t, "/tmp", req.Partial)
}

func TestRunValidatorBuildsItems(t *testing.T) {
	v := &validate.ChoiceValidator{Options: []string{"alpha", "beta"}}
	items := RunValidator(v, "a", 0, validate.Context{})
	require.Len(t, items, 1)
	assert.Equal(t, "alpha", items[0].Text)
}

func TestRunValidatorNilValidatorReturnsNothing(t *testing.T) {
	assert.Nil(t, RunValidator(nil, "x", 0, validate.Context{}))
}

func TestExecutablesFindsExecutableFilesOnPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bit semantics differ on windows")
	}
	dir := t.TempDir()
	exePath := filepath.Join(dir, "mytool")
	require.NoError(t, os.WriteFile(exePath, []byte("#!/bin/sh\n"), 0o755))
	nonExePath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(nonExePath, []byte("x"), 0o644))

	t.Setenv("PATH", dir)

	items := Executables("my")
	require.Len(t, items, 1)
	assert.Equal(t, "mytool", items[0].Text)
}

func TestExecutablesEmptyPartialMatchesAll(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bit semantics differ on windows")
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), []byte(""), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b"), []byte(""), 0o755))
	t.Setenv("PATH", dir)

	items := Executables("")
	assert.Len(t, items, 2)
}
