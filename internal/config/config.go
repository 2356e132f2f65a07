// Package config loads and represents the YAML configuration: categories,
// category maps, themes, flags, programs, keybindings, and aliases, with
// support for a drop-in directory of fragment files deep-merged on top of
// the main config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/mprompt/promptline/internal/match"
	"github.com/mprompt/promptline/internal/program"
	"gopkg.in/yaml.v3"
)

// Pos identifies a location a config error was raised from: the file it
// came from (main config or a specific drop-in fragment).
type Pos struct {
	File string
}

// Error is a config-loading or config-validation failure, carrying the
// file it originated from.
type Error struct {
	Pos     Pos
	Message string
}

func (e Error) Error() string {
	if e.Pos.File == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Pos.File, e.Message)
}

// FlagHelp documents a single flag for help/usage output.
type FlagHelp struct {
	Flag        string `yaml:"flag"`
	Description string `yaml:"description"`
	Help        string `yaml:"help"`
}

// ValidatorConfig is the raw validator configuration for a flag or the
// global/program default. Type selects which concrete validator it
// describes; the rest are the union of every validator's settings.
type ValidatorConfig struct {
	Type      string   `yaml:"type"`
	Extensions []string `yaml:"extensions"`
	Multiple  bool     `yaml:"multiple"`
	Separator string   `yaml:"separator"`
	Sort      string   `yaml:"sort"`
	Include   []string `yaml:"include"`
	Exclude   []string `yaml:"exclude"`
	StartupDirectory string `yaml:"startup_directory"`
	Change    bool     `yaml:"change"`
	Options   []string `yaml:"options"`
	Delimiter string   `yaml:"delimiter"`
	Minimum   int      `yaml:"minimum"`
	Maximum   int      `yaml:"maximum"`
	Prefix    string   `yaml:"prefix"`
	Command   string   `yaml:"command"`
	TimeoutSeconds float64 `yaml:"timeout"`
}

// Flag is a single flag rule: the category it assigns, its anchored
// regex patterns, optional names for unnamed capture groups, its
// validator, and its help entries.
type Flag struct {
	Category      string            `yaml:"category"`
	Regexps       []string          `yaml:"regexps"`
	CaptureGroups []string          `yaml:"capture_groups"`
	Validator     *ValidatorConfig  `yaml:"validator"`
	Help          []FlagHelp        `yaml:"help"`
}

// ToMatchFlag projects the subset the matcher package needs. Source carries
// a handle back to this rule so callers that need more than the matcher's
// own fields (the validator descriptor, in particular) can recover it
// without re-deriving it by a lossy category-name lookup.
func (f Flag) ToMatchFlag() match.Flag {
	return match.Flag{
		Category:      f.Category,
		Regexps:       f.Regexps,
		CaptureGroups: f.CaptureGroups,
		Source:        &f,
	}
}

// rawColors is the on-disk shape of Category.colors: either a dict of
// group-name to color, or (for backward compatibility) a plain list
// applied to groups in positional order.
type rawColors map[string]string

func (c *rawColors) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		var m map[string]string
		if err := node.Decode(&m); err != nil {
			return err
		}
		*c = m
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		m := make(map[string]string, len(list))
		for i, color := range list {
			m[fmt.Sprintf("%d", i)] = color
		}
		*c = m
		return nil
	default:
		*c = nil
		return nil
	}
}

// Category names the capture-group colors used when rendering tokens that
// matched a flag in this category.
type Category struct {
	Name   string    `yaml:"-"`
	Colors rawColors `yaml:"colors"`
}

// CategoryMap groups several categories (or other category maps) under one
// expandable name.
type CategoryMap struct {
	Name       string   `yaml:"-"`
	Categories []string `yaml:"categories"`
}

func (cm *CategoryMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		cm.Categories = list
		return nil
	}
	type plain CategoryMap
	return node.Decode((*plain)(cm))
}

// Theme maps category names to color specs, plus a fallback default.
type Theme struct {
	Name       string            `yaml:"-"`
	Default    string            `yaml:"default"`
	Categories map[string]string `yaml:"categories"`
}

// ProgramConfig is program-specific settings beyond its flags.
type ProgramConfig struct {
	DefaultValidator *ValidatorConfig `yaml:"default_validator"`
}

// Program is one declared program: its match aliases, its flags, and any
// program-specific settings.
type Program struct {
	Name    string   `yaml:"-"`
	Aliases []string `yaml:"aliases"`
	Flags   []Flag   `yaml:"flags"`
	Config  *ProgramConfig `yaml:"config"`
}

// GlobalConfig holds top-level toggles.
type GlobalConfig struct {
	Color            bool             `yaml:"color"`
	DefaultValidator *ValidatorConfig `yaml:"default_validator"`

	// ExecutableIsToken0 preserves the observed (and possibly accidental)
	// behavior spec.md §9 Open Question (a) describes: token 0 is always
	// "Executable", even when a launcher precedes the actual program. It
	// is surfaced here for forward configurability; this version's
	// matcher always behaves as if it were true.
	ExecutableIsToken0 bool `yaml:"executable_is_token_0"`
}

// rawConfig mirrors the on-disk YAML shape before lower-casing map keys
// and stamping Name fields.
type rawConfig struct {
	Config       GlobalConfig                 `yaml:"config"`
	Categories   map[string]Category          `yaml:"categories"`
	CategoryMaps map[string]CategoryMap       `yaml:"category_maps"`
	Themes       map[string]Theme             `yaml:"themes"`
	Flags        []Flag                       `yaml:"flags"`
	ProgramDefs  map[string]Program           `yaml:"programs"`
	Keybindings  map[string]map[string]string `yaml:"keybindings"`
	Aliases      map[string]string            `yaml:"aliases"`
}

// Config is the fully parsed, case-normalized configuration.
type Config struct {
	Global       GlobalConfig
	Categories   map[string]Category
	CategoryMaps map[string]CategoryMap
	Themes       map[string]Theme
	Flags        []Flag
	ProgramDefs  map[string]Program
	Keybindings  map[string]map[string]string
	Aliases      map[string]string
}

func normalize(raw rawConfig) Config {
	cfg := Config{
		Global:       raw.Config,
		Categories:   map[string]Category{},
		CategoryMaps: map[string]CategoryMap{},
		Themes:       map[string]Theme{},
		Flags:        raw.Flags,
		ProgramDefs:  map[string]Program{},
		Keybindings:  raw.Keybindings,
		Aliases:      raw.Aliases,
	}

	for name, cat := range raw.Categories {
		cat.Name = name
		cfg.Categories[strings.ToLower(name)] = cat
	}
	for name, cm := range raw.CategoryMaps {
		cm.Name = name
		cfg.CategoryMaps[strings.ToLower(name)] = cm
	}
	for name, theme := range raw.Themes {
		theme.Name = name
		cfg.Themes[strings.ToLower(name)] = theme
	}
	for name, prog := range raw.ProgramDefs {
		prog.Name = name
		cfg.ProgramDefs[strings.ToLower(name)] = prog
	}

	return cfg
}

// Programs implements program.ProgramSource.
func (c Config) Programs() []program.ProgramDef {
	names := make([]string, 0, len(c.ProgramDefs))
	for name := range c.ProgramDefs {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]program.ProgramDef, 0, len(names))
	for _, name := range names {
		p := c.ProgramDefs[name]
		defs = append(defs, program.ProgramDef{Name: p.Name, Aliases: p.Aliases})
	}
	return defs
}

// Launchers implements program.LauncherSource. The config schema has no
// dedicated launcher section (launchers are always built-in), so this is
// always empty; it exists so Config satisfies the interface uniformly.
func (c Config) Launchers() []program.LauncherDef {
	return nil
}

// CategoryMapCategories implements match.CategorySource.
func (c Config) CategoryMapCategories(name string) ([]string, bool) {
	cm, ok := c.CategoryMaps[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return cm.Categories, true
}

// FlagsForProgram implements match.FlagSource: global flags first, then
// the named program's own flags.
func (c Config) FlagsForProgram(executable string) []match.Flag {
	flags := make([]match.Flag, 0, len(c.Flags))
	for _, f := range c.Flags {
		flags = append(flags, f.ToMatchFlag())
	}

	prog := c.GetProgram(executable)
	if prog != nil {
		for _, f := range prog.Flags {
			flags = append(flags, f.ToMatchFlag())
		}
	}

	return flags
}

// GetProgram finds the declared Program matching an executable's basename,
// by exact name then by alias (literal, glob:, or regexp:).
func (c Config) GetProgram(executable string) *Program {
	exeName := filepath.Base(executable)
	lower := strings.ToLower(exeName)

	names := make([]string, 0, len(c.ProgramDefs))
	for name := range c.ProgramDefs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p := c.ProgramDefs[name]
		if strings.ToLower(p.Name) == lower {
			return &p
		}
		for _, alias := range p.Aliases {
			if matchesAlias(alias, exeName, lower) {
				return &p
			}
		}
	}
	return nil
}

func matchRegexp(pattern, exeName string) bool {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	loc := re.FindStringIndex(exeName)
	return loc != nil && loc[0] == 0
}

func matchesAlias(alias, exeName, lowerExeName string) bool {
	switch {
	case strings.HasPrefix(alias, "glob:"):
		ok, err := filepath.Match(strings.ToLower(alias[len("glob:"):]), lowerExeName)
		return err == nil && ok
	case strings.HasPrefix(alias, "regexp:"):
		return matchRegexp(alias[len("regexp:"):], exeName)
	default:
		return strings.ToLower(alias) == lowerExeName
	}
}

// GetTheme returns the named theme, falling back to a theme literally
// named "default", falling back to a minimal built-in default.
func (c Config) GetTheme(name string) Theme {
	if name != "" {
		if t, ok := c.Themes[strings.ToLower(name)]; ok {
			return t
		}
	}
	if t, ok := c.Themes["default"]; ok {
		return t
	}
	return Theme{Name: "default", Default: "white", Categories: map[string]string{}}
}

// GroupColorSpecs returns the raw group-name (or positional index string) to
// color-spec mapping configured for a category's capture groups, for use by
// color.Resolve's name-first lookup.
func (c Config) GroupColorSpecs(category string) map[string]string {
	cat, ok := c.Categories[strings.ToLower(category)]
	if !ok {
		return nil
	}
	return cat.Colors
}

func readFile(path string) (map[string]any, Error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, Error{}
		}
		return nil, Error{Pos: Pos{File: path}, Message: err.Error()}
	}

	var out map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, Error{Pos: Pos{File: path}, Message: "invalid yaml: " + err.Error()}
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, Error{}
}

// deepMerge combines base and override, with override winning: nested
// maps recurse, lists concatenate (base first), and everything else is a
// plain overwrite.
func deepMerge(base, override map[string]any) map[string]any {
	result := make(map[string]any, len(base))
	for k, v := range base {
		result[k] = v
	}

	for key, value := range override {
		existing, exists := result[key]
		if !exists {
			result[key] = value
			continue
		}

		existingMap, existingIsMap := existing.(map[string]any)
		valueMap, valueIsMap := value.(map[string]any)
		if existingIsMap && valueIsMap {
			result[key] = deepMerge(existingMap, valueMap)
			continue
		}

		existingList, existingIsList := existing.([]any)
		valueList, valueIsList := value.([]any)
		if existingIsList && valueIsList {
			merged := make([]any, 0, len(existingList)+len(valueList))
			merged = append(merged, existingList...)
			merged = append(merged, valueList...)
			result[key] = merged
			continue
		}

		result[key] = value
	}

	return result
}

func loadDropinDirectory(dir string) (map[string]any, Error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return map[string]any{}, Error{}
	}

	var yamlFiles, ymlFiles []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch {
		case strings.HasSuffix(e.Name(), ".yaml"):
			yamlFiles = append(yamlFiles, e.Name())
		case strings.HasSuffix(e.Name(), ".yml"):
			ymlFiles = append(ymlFiles, e.Name())
		}
	}
	sort.Strings(yamlFiles)
	sort.Strings(ymlFiles)

	result := map[string]any{}
	for _, name := range append(yamlFiles, ymlFiles...) {
		data, loadErr := readFile(filepath.Join(dir, name))
		if loadErr != (Error{}) {
			return nil, loadErr
		}
		result = deepMerge(result, data)
	}

	return result, Error{}
}

// Load reads the main config file and deep-merges every fragment in the
// drop-in directory on top of it, in filename order (*.yaml then *.yml),
// then decodes the merged document into a Config.
func Load(configPath, dropinDir string) (Config, error) {
	mainData, err := readFile(configPath)
	if err != (Error{}) {
		return Config{}, err
	}

	dropinData, err := loadDropinDirectory(dropinDir)
	if err != (Error{}) {
		return Config{}, err
	}

	merged := deepMerge(mainData, dropinData)

	encoded, marshalErr := yaml.Marshal(merged)
	if marshalErr != nil {
		return Config{}, Error{Message: "re-encoding merged config: " + marshalErr.Error()}
	}

	var raw rawConfig
	if err := yaml.Unmarshal(encoded, &raw); err != nil {
		return Config{}, Error{Pos: Pos{File: configPath}, Message: "decoding merged config: " + err.Error()}
	}

	return normalize(raw), nil
}

// DefaultConfigPath is ~/.config/prompt/config.yaml.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "prompt", "config.yaml")
}

// DefaultDropinDir is ~/.config/prompt/conf.d.
func DefaultDropinDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "prompt", "conf.d")
}
