// Package program implements the two-tier program-detection step: built-in
// rules first, then user-declared patterns, plus peeling off an optional
// launcher wrapper (compiler caches, distributors, time/env/nice shims).
package program

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mprompt/promptline/internal/token"
)

// Source is the tier-two hit source for a ProgramMatch.
type Source int

const (
	Builtin Source = iota
	Config
	Unknown
)

func (s Source) String() string {
	return sourceToDescription[s]
}

func init() {
	for s := Builtin; s <= Unknown; s++ {
		if sourceToDescription[s] == "" {
			panic("program: missing description for Source")
		}
	}
}

var sourceToDescription = map[Source]string{
	Builtin: "builtin",
	Config:  "config",
	Unknown: "unknown",
}

// LauncherInfo describes a detected wrapping launcher.
type LauncherInfo struct {
	Name         string
	TokenIndex   int
	ArgsEndIndex int
}

// Match is the result of program detection.
type Match struct {
	CanonicalName string
	MatchedName   string
	Source        Source
	TokenIndex    int
	Launcher      *LauncherInfo
}

// ProgramDef is a user-declared program entry, supplied by the configuration
// layer through the ProgramSource interface below. Aliases may be a literal
// basename, "glob:<pattern>", or "regexp:<pattern>" (anchored, case
// insensitive).
type ProgramDef struct {
	Name    string
	Aliases []string
}

// LauncherDef is a user-declared launcher entry.
type LauncherDef struct {
	Name     string
	Aliases  []string
	ArgFlags []string
}

// ProgramSource supplies config-declared program patterns, consulted after
// the built-in table misses. Declaration order matters: first hit wins.
type ProgramSource interface {
	Programs() []ProgramDef
}

// LauncherSource supplies config-declared launchers.
type LauncherSource interface {
	Launchers() []LauncherDef
}

type matchKind int

const (
	exact matchKind = iota
	prefix
	suffix
)

type builtinRule struct {
	kind    matchKind
	pattern string
}

type builtinProgram struct {
	name  string
	rules []builtinRule
}

// builtinPrograms is a process-wide immutable table, declaration order
// matters for tie-breaking (first hit wins).
var builtinPrograms = []builtinProgram{
	{"gcc", []builtinRule{
		{suffix, "-gcc"}, {suffix, "-g++"},
		{exact, "gcc"}, {exact, "g++"}, {exact, "cc"}, {exact, "c++"},
		{prefix, "gcc-"}, {prefix, "g++-"},
	}},
	{"clang", []builtinRule{
		{suffix, "-clang"}, {suffix, "-clang++"},
		{exact, "clang"}, {exact, "clang++"},
		{prefix, "clang-"}, {prefix, "clang++-"},
	}},
	{"rustc", []builtinRule{{exact, "rustc"}}},
	{"cargo", []builtinRule{{exact, "cargo"}}},
	{"go", []builtinRule{{exact, "go"}}},
	{"python", []builtinRule{
		{exact, "python"}, {exact, "python3"}, {prefix, "python3."}, {exact, "python2"},
	}},
	{"make", []builtinRule{{exact, "make"}, {exact, "gmake"}, {exact, "bmake"}}},
	{"cmake", []builtinRule{{exact, "cmake"}}},
	{"ninja", []builtinRule{{exact, "ninja"}}},
	{"ld", []builtinRule{
		{suffix, "-ld"}, {exact, "ld"}, {exact, "ld.lld"}, {exact, "ld.gold"}, {exact, "ld.bfd"},
	}},
	{"ar", []builtinRule{{suffix, "-ar"}, {exact, "ar"}, {exact, "llvm-ar"}}},
	{"as", []builtinRule{{suffix, "-as"}, {exact, "as"}}},
}

type builtinLauncher struct {
	name     string
	argFlags []string
}

// builtinLaunchers is a process-wide immutable table.
var builtinLaunchers = []builtinLauncher{
	{"ccache", nil},
	{"distcc", nil},
	{"sccache", nil},
	{"icecc", nil},
	{"colorgcc", nil},
	{"scan-build", []string{"-o", "--use-analyzer", "-enable-checker", "-disable-checker"}},
	{"bear", []string{"-o", "--output", "-a", "--append"}},
	{"time", []string{"-f", "-o", "--format", "--output"}},
	{"env", nil},
	{"nice", []string{"-n", "--adjustment"}},
	{"ionice", []string{"-c", "-n", "-p"}},
}

func matchBuiltinProgram(basename string) (string, bool) {
	lower := strings.ToLower(basename)
	for _, p := range builtinPrograms {
		for _, r := range p.rules {
			pattern := strings.ToLower(r.pattern)
			switch r.kind {
			case exact:
				if lower == pattern {
					return p.name, true
				}
			case prefix:
				if strings.HasPrefix(lower, pattern) {
					return p.name, true
				}
			case suffix:
				if strings.HasSuffix(lower, pattern) {
					return p.name, true
				}
			}
		}
	}
	return "", false
}

func matchConfigProgram(basename string, src ProgramSource) (string, bool) {
	if src == nil {
		return "", false
	}
	lower := strings.ToLower(basename)
	for _, p := range src.Programs() {
		if strings.ToLower(p.Name) == lower {
			return p.Name, true
		}
		for _, alias := range p.Aliases {
			if matchAlias(alias, basename, lower) {
				return p.Name, true
			}
		}
	}
	return "", false
}

func matchAlias(alias, basename, lowerBasename string) bool {
	switch {
	case strings.HasPrefix(alias, "glob:"):
		pattern := strings.ToLower(alias[len("glob:"):])
		ok, err := filepath.Match(pattern, lowerBasename)
		return err == nil && ok
	case strings.HasPrefix(alias, "regexp:"):
		pattern := "(?i)^(?:" + alias[len("regexp:"):] + ")"
		re, err := regexp.Compile(pattern)
		return err == nil && re.MatchString(basename)
	default:
		return strings.ToLower(alias) == lowerBasename
	}
}

// Detect runs the two-tier program resolution for a single basename. It
// never fails: an unrecognized basename comes back with Source Unknown.
func Detect(executable string, src ProgramSource) Match {
	basename := filepath.Base(executable)

	if name, ok := matchBuiltinProgram(basename); ok {
		return Match{CanonicalName: name, MatchedName: basename, Source: Builtin}
	}
	if name, ok := matchConfigProgram(basename, src); ok {
		return Match{CanonicalName: name, MatchedName: basename, Source: Config}
	}
	return Match{CanonicalName: basename, MatchedName: basename, Source: Unknown}
}

func isLauncher(basename string, src LauncherSource) (LauncherDef, bool) {
	lower := strings.ToLower(basename)
	for _, l := range builtinLaunchers {
		if lower == strings.ToLower(l.name) {
			return LauncherDef{Name: l.name, ArgFlags: l.argFlags}, true
		}
	}
	if src != nil {
		for _, l := range src.Launchers() {
			if lower == strings.ToLower(l.Name) {
				return l, true
			}
			for _, alias := range l.Aliases {
				if lower == strings.ToLower(alias) {
					return l, true
				}
			}
		}
	}
	return LauncherDef{}, false
}

func flagTakesArg(value string, argFlags []string) bool {
	for _, flag := range argFlags {
		if value == flag || strings.HasPrefix(value, flag+"=") {
			return true
		}
	}
	return false
}

// Find scans tokens left to right, peeling off at most one launcher, then
// running Detect on the first non-flag token after it. Returns nil for an
// empty token list.
func Find(tokens []token.Token, progSrc ProgramSource, launchSrc LauncherSource) *Match {
	if len(tokens) == 0 {
		return nil
	}

	i := 0
	var launcherInfo *LauncherInfo

	for i < len(tokens) {
		basename := filepath.Base(tokens[i].Value)

		if launcher, ok := isLauncher(basename, launchSrc); ok && launcherInfo == nil {
			start := i
			i++
			for i < len(tokens) {
				arg := tokens[i].Value
				if !strings.HasPrefix(arg, "-") {
					break
				}
				if flagTakesArg(arg, launcher.ArgFlags) && !strings.Contains(arg, "=") {
					i += 2
				} else {
					i++
				}
			}
			launcherInfo = &LauncherInfo{Name: launcher.Name, TokenIndex: start, ArgsEndIndex: i}
			continue
		}

		match := Detect(tokens[i].Value, progSrc)
		match.TokenIndex = i
		match.Launcher = launcherInfo
		return &match
	}

	return nil
}

// Parts is the four-way range decomposition of a token stream driven by a
// detected program (and optional launcher).
type Parts struct {
	Launcher         []token.Token
	LauncherParams   []token.Token
	Program          []token.Token
	ProgramParams    []token.Token
}

// Decompose derives the launcher/launcher-params/program/program-params
// ranges directly from the detected match.
func Decompose(tokens []token.Token, match *Match) Parts {
	if match == nil {
		return Parts{}
	}

	var parts Parts
	if match.Launcher != nil {
		li := match.Launcher.TokenIndex
		ai := match.Launcher.ArgsEndIndex
		parts.Launcher = tokens[li : li+1]
		parts.LauncherParams = tokens[li+1 : ai]
	}
	parts.Program = tokens[match.TokenIndex : match.TokenIndex+1]
	parts.ProgramParams = tokens[match.TokenIndex+1:]
	return parts
}

func joinValues(tokens []token.Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Value
	}
	return strings.Join(parts, " ")
}

// LauncherText is the space-joined value of the launcher range.
func (p Parts) LauncherText() string { return joinValues(p.Launcher) }

// LauncherParamsText is the space-joined value of the launcher-params range.
func (p Parts) LauncherParamsText() string { return joinValues(p.LauncherParams) }

// ProgramText is the space-joined value of the program range.
func (p Parts) ProgramText() string { return joinValues(p.Program) }

// ProgramParamsText is the space-joined value of the program-params range.
func (p Parts) ProgramParamsText() string { return joinValues(p.ProgramParams) }

// Names lists every known program name, built-in plus config-declared, for
// use by completion.
func Names(src ProgramSource) []string {
	seen := map[string]bool{}
	var names []string
	for _, p := range builtinPrograms {
		if !seen[p.name] {
			seen[p.name] = true
			names = append(names, p.name)
		}
	}
	if src != nil {
		for _, p := range src.Programs() {
			if !seen[p.Name] {
				seen[p.Name] = true
				names = append(names, p.Name)
			}
			for _, alias := range p.Aliases {
				if strings.HasPrefix(alias, "glob:") || strings.HasPrefix(alias, "regexp:") {
					continue
				}
				if !seen[alias] {
					seen[alias] = true
					names = append(names, alias)
				}
			}
		}
	}
	return names
}
