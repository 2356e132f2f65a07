// Package validate implements the completion/validation contract shared by
// every flag value type: files, directories, fixed choices, multiple
// choices with ordering constraints, compiler warnings, and external
// commands.
package validate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Result is the outcome of a completion or validation request.
type Result struct {
	Completions   []string
	Valid         bool
	Message       string
	SelectedIndex int
}

// Context carries the ambient state a validator may need: the working
// directory for relative paths, plus arbitrary named strings forwarded as
// PROMPT_<KEY> environment variables to custom validators.
type Context struct {
	CWD    string
	Extra  map[string]string
}

// Validator is the shared completion/validation contract. CycleNext and
// CyclePrev have default implementations (cycleNextDefault,
// cyclePrevDefault) that the concrete validators call; WarningsValidator
// and MultipleChoiceValidator use their own logic instead, and
// ChoiceValidator rotates through its full option list when the current
// value is one of its options.
type Validator interface {
	Completions(currentValue string, ctx Context) Result
	Validate(value string, ctx Context) Result
	CycleNext(currentValue string, ctx Context) string
	CyclePrev(currentValue string, ctx Context) string
}

// Toggler is implemented by validators that support toggling a single
// option on or off (warnings, multiple-choice).
type Toggler interface {
	Toggle(value, option string) string
}

func cycleNextDefault(v Validator, currentValue string, ctx Context) string {
	result := v.Completions(currentValue, ctx)
	if len(result.Completions) == 0 {
		return currentValue
	}
	idx := indexOf(result.Completions, currentValue)
	if idx < 0 {
		return result.Completions[0]
	}
	return result.Completions[(idx+1)%len(result.Completions)]
}

func cyclePrevDefault(v Validator, currentValue string, ctx Context) string {
	result := v.Completions(currentValue, ctx)
	if len(result.Completions) == 0 {
		return currentValue
	}
	idx := indexOf(result.Completions, currentValue)
	if idx < 0 {
		return result.Completions[len(result.Completions)-1]
	}
	return result.Completions[(idx-1+len(result.Completions))%len(result.Completions)]
}

func indexOf(values []string, target string) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return -1
}

// FileValidator completes and validates filesystem paths.
type FileValidator struct {
	Extensions       []string
	Multiple         bool
	Separator        string
	Sort             string
	Include, Exclude []string
	StartupDirectory string
	Change           bool
}

func (f *FileValidator) separator() string {
	if f.Separator == "" {
		return ","
	}
	return f.Separator
}

func (f *FileValidator) Completions(currentValue string, ctx Context) Result {
	cwd := ctx.CWD
	if cwd == "" {
		cwd, _ = os.Getwd()
	}

	prefix := ""
	searchValue := currentValue
	if f.Multiple && strings.Contains(currentValue, f.separator()) {
		idx := strings.LastIndex(currentValue, f.separator())
		prefix = currentValue[:idx+len(f.separator())]
		searchValue = currentValue[idx+len(f.separator()):]
	}

	var searchDir, pattern string
	if strings.Contains(searchValue, string(filepath.Separator)) || strings.Contains(searchValue, "/") {
		searchDir = filepath.Dir(searchValue)
		pattern = filepath.Base(searchValue)
		if !filepath.IsAbs(searchDir) {
			searchDir = filepath.Join(cwd, searchDir)
		}
	} else {
		searchDir = cwd
		pattern = searchValue
	}

	entries, err := os.ReadDir(searchDir)
	var completions []string
	if err == nil {
		for _, entry := range entries {
			name := entry.Name()

			if strings.HasPrefix(name, ".") && !strings.HasPrefix(pattern, ".") {
				continue
			}
			if pattern != "" && !strings.HasPrefix(strings.ToLower(name), strings.ToLower(pattern)) {
				continue
			}
			if f.extensionFiltered(name, entry.IsDir()) {
				continue
			}
			if !f.matchesFilters(name) {
				continue
			}

			completion := name
			if entry.IsDir() {
				completion = name + string(filepath.Separator)
			}

			if strings.Contains(searchValue, string(filepath.Separator)) || strings.Contains(searchValue, "/") {
				if dirPrefix := filepath.Dir(searchValue); dirPrefix != "." {
					completion = filepath.Join(dirPrefix, completion)
					if entry.IsDir() {
						completion += string(filepath.Separator)
					}
				}
			}

			completions = append(completions, prefix+completion)
		}
	}

	completions = f.sortCompletions(completions, searchDir)
	return Result{Completions: completions, Valid: true}
}

func (f *FileValidator) extensionFiltered(name string, isDir bool) bool {
	if len(f.Extensions) == 0 || isDir {
		return false
	}
	ext := filepath.Ext(name)
	for _, e := range f.Extensions {
		if ext == e || strings.ToLower(ext) == strings.ToLower(e) {
			return false
		}
	}
	return true
}

func (f *FileValidator) matchesFilters(name string) bool {
	for _, pattern := range f.Exclude {
		if ok, _ := filepath.Match(pattern, name); ok {
			return false
		}
	}
	if len(f.Include) > 0 {
		for _, pattern := range f.Include {
			if ok, _ := filepath.Match(pattern, name); ok {
				return true
			}
		}
		return false
	}
	return true
}

func (f *FileValidator) sortCompletions(completions []string, searchDir string) []string {
	switch f.Sort {
	case "date":
		sort.Slice(completions, func(i, j int) bool {
			return mtime(searchDir, completions[i]) > mtime(searchDir, completions[j])
		})
	case "size":
		sort.Slice(completions, func(i, j int) bool {
			return fsize(searchDir, completions[i]) > fsize(searchDir, completions[j])
		})
	default:
		sort.Slice(completions, func(i, j int) bool {
			return strings.ToLower(completions[i]) < strings.ToLower(completions[j])
		})
	}
	return completions
}

func mtime(dir, name string) float64 {
	info, err := os.Stat(filepath.Join(dir, filepath.Base(strings.TrimRight(name, string(filepath.Separator)))))
	if err != nil {
		return 0
	}
	return float64(info.ModTime().UnixNano()) / 1e9
}

func fsize(dir, name string) int64 {
	info, err := os.Stat(filepath.Join(dir, filepath.Base(strings.TrimRight(name, string(filepath.Separator)))))
	if err != nil {
		return 0
	}
	return info.Size()
}

func (f *FileValidator) Validate(value string, ctx Context) Result {
	cwd := ctx.CWD
	if cwd == "" {
		cwd, _ = os.Getwd()
	}

	values := []string{value}
	if f.Multiple {
		values = strings.Split(value, f.separator())
	}

	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}

		path := v
		if !filepath.IsAbs(path) {
			path = filepath.Join(cwd, path)
		}

		info, err := os.Stat(path)
		if err != nil {
			return Result{Valid: false, Message: fmt.Sprintf("File not found: %s", v)}
		}

		if len(f.Extensions) > 0 && !info.IsDir() {
			ext := filepath.Ext(path)
			found := false
			for _, e := range f.Extensions {
				if ext == e || strings.ToLower(ext) == strings.ToLower(e) {
					found = true
					break
				}
			}
			if !found {
				return Result{Valid: false, Message: fmt.Sprintf("Invalid extension: %s (expected: %s)", ext, strings.Join(f.Extensions, ", "))}
			}
		}
	}

	return Result{Valid: true}
}

func (f *FileValidator) CycleNext(currentValue string, ctx Context) string {
	return cycleNextDefault(f, currentValue, ctx)
}
func (f *FileValidator) CyclePrev(currentValue string, ctx Context) string {
	return cyclePrevDefault(f, currentValue, ctx)
}

// DirectoryValidator is a FileValidator that never sees extensions and
// filters completions down to directory entries only.
type DirectoryValidator struct {
	FileValidator
}

func NewDirectoryValidator(f FileValidator) *DirectoryValidator {
	f.Extensions = nil
	return &DirectoryValidator{FileValidator: f}
}

func (d *DirectoryValidator) Completions(currentValue string, ctx Context) Result {
	result := d.FileValidator.Completions(currentValue, ctx)
	var dirsOnly []string
	for _, c := range result.Completions {
		if strings.HasSuffix(c, string(filepath.Separator)) {
			dirsOnly = append(dirsOnly, c)
		}
	}
	return Result{Completions: dirsOnly, Valid: true}
}

func (d *DirectoryValidator) Validate(value string, ctx Context) Result {
	cwd := ctx.CWD
	if cwd == "" {
		cwd, _ = os.Getwd()
	}

	path := value
	if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return Result{Valid: false, Message: fmt.Sprintf("Directory not found: %s", value)}
	}
	if !info.IsDir() {
		return Result{Valid: false, Message: fmt.Sprintf("Not a directory: %s", value)}
	}
	return Result{Valid: true}
}

func (d *DirectoryValidator) CycleNext(currentValue string, ctx Context) string {
	return cycleNextDefault(d, currentValue, ctx)
}
func (d *DirectoryValidator) CyclePrev(currentValue string, ctx Context) string {
	return cyclePrevDefault(d, currentValue, ctx)
}

// ChoiceValidator restricts a value to a fixed set of options.
type ChoiceValidator struct {
	Options []string
}

func (c *ChoiceValidator) Completions(currentValue string, _ Context) Result {
	if currentValue == "" {
		return Result{Completions: append([]string(nil), c.Options...), Valid: true}
	}
	var completions []string
	lower := strings.ToLower(currentValue)
	for _, opt := range c.Options {
		if strings.HasPrefix(strings.ToLower(opt), lower) {
			completions = append(completions, opt)
		}
	}
	return Result{Completions: completions, Valid: true}
}

func (c *ChoiceValidator) Validate(value string, _ Context) Result {
	for _, opt := range c.Options {
		if opt == value || strings.EqualFold(opt, value) {
			return Result{Valid: true}
		}
	}
	return Result{Valid: false, Message: fmt.Sprintf("Invalid choice: %s (expected: %s)", value, strings.Join(c.Options, ", "))}
}

func (c *ChoiceValidator) CycleNext(currentValue string, ctx Context) string {
	if idx := indexOf(c.Options, currentValue); idx >= 0 {
		return c.Options[(idx+1)%len(c.Options)]
	}
	return cycleNextDefault(c, currentValue, ctx)
}
func (c *ChoiceValidator) CyclePrev(currentValue string, ctx Context) string {
	if idx := indexOf(c.Options, currentValue); idx >= 0 {
		return c.Options[(idx-1+len(c.Options))%len(c.Options)]
	}
	return cyclePrevDefault(c, currentValue, ctx)
}

// MultipleChoiceValidator allows a delimited set of options with optional
// $prefix / suffix$ / $both$ ordering constraints.
type MultipleChoiceValidator struct {
	Delimiter string
	Minimum   int
	Maximum   int

	cleanOptions []string
	mustBeFirst  map[string]bool
	mustBeLast   map[string]bool
	mustBeOnly   map[string]bool
}

// NewMultipleChoiceValidator parses the raw option list's constraint
// markers ($prefix, suffix$, $both$) once up front.
func NewMultipleChoiceValidator(options []string, delimiter string, minimum, maximum int) *MultipleChoiceValidator {
	v := &MultipleChoiceValidator{
		Delimiter:   delimiter,
		Minimum:     minimum,
		Maximum:     maximum,
		mustBeFirst: map[string]bool{},
		mustBeLast:  map[string]bool{},
		mustBeOnly:  map[string]bool{},
	}
	if v.Delimiter == "" {
		v.Delimiter = ","
	}
	if v.Maximum == 0 {
		v.Maximum = 999
	}

	for _, opt := range options {
		clean := opt
		isFirst := strings.HasPrefix(opt, "$")
		isLast := strings.HasSuffix(opt, "$")
		if isFirst {
			clean = clean[1:]
		}
		if isLast {
			clean = clean[:len(clean)-1]
		}
		v.cleanOptions = append(v.cleanOptions, clean)

		switch {
		case isFirst && isLast:
			v.mustBeOnly[clean] = true
		case isFirst:
			v.mustBeFirst[clean] = true
		case isLast:
			v.mustBeLast[clean] = true
		}
	}

	return v
}

func (m *MultipleChoiceValidator) splitParts(value string) []string {
	if value == "" {
		return nil
	}
	raw := strings.Split(value, m.Delimiter)
	parts := make([]string, len(raw))
	for i, p := range raw {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func (m *MultipleChoiceValidator) Completions(currentValue string, _ Context) Result {
	currentParts := m.splitParts(currentValue)
	hasSelections := len(currentParts) > 0 && currentParts[0] != ""

	selected := map[string]bool{}
	for _, p := range currentParts {
		selected[p] = true
	}

	var available []string
	for _, opt := range m.cleanOptions {
		if selected[opt] {
			continue
		}
		if hasSelections {
			if m.mustBeFirst[opt] || m.mustBeOnly[opt] {
				continue
			}
			if len(currentParts) > 0 && m.mustBeLast[currentParts[len(currentParts)-1]] {
				continue
			}
		}
		if len(currentParts) >= m.Maximum {
			continue
		}
		available = append(available, opt)
	}

	return Result{Completions: available, Valid: true}
}

func (m *MultipleChoiceValidator) Validate(value string, _ Context) Result {
	if value == "" {
		if m.Minimum > 0 {
			return Result{Valid: false, Message: fmt.Sprintf("At least %d selection(s) required", m.Minimum)}
		}
		return Result{Valid: true}
	}

	parts := m.splitParts(value)

	if len(parts) < m.Minimum {
		return Result{Valid: false, Message: fmt.Sprintf("At least %d selection(s) required", m.Minimum)}
	}
	if len(parts) > m.Maximum {
		return Result{Valid: false, Message: fmt.Sprintf("At most %d selection(s) allowed", m.Maximum)}
	}

	for _, part := range parts {
		if !contains(m.cleanOptions, part) {
			return Result{Valid: false, Message: fmt.Sprintf("Invalid option: %s", part)}
		}
	}

	for i, part := range parts {
		if m.mustBeOnly[part] && len(parts) > 1 {
			return Result{Valid: false, Message: fmt.Sprintf("'%s' must be the only selection", part)}
		}
		if m.mustBeFirst[part] && i > 0 {
			return Result{Valid: false, Message: fmt.Sprintf("'%s' must be first", part)}
		}
		if m.mustBeLast[part] && i < len(parts)-1 {
			return Result{Valid: false, Message: fmt.Sprintf("'%s' must be last", part)}
		}
	}

	return Result{Valid: true}
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func (m *MultipleChoiceValidator) CycleNext(currentValue string, ctx Context) string {
	result := m.Completions(currentValue, ctx)
	if len(result.Completions) == 0 {
		return currentValue
	}
	if currentValue != "" {
		return currentValue + m.Delimiter + result.Completions[0]
	}
	return result.Completions[0]
}

func (m *MultipleChoiceValidator) CyclePrev(currentValue string, ctx Context) string {
	return m.CycleNext(currentValue, ctx)
}

// Toggle adds or removes option from the delimited selection.
func (m *MultipleChoiceValidator) Toggle(value, option string) string {
	if value == "" {
		return option
	}
	parts := m.splitParts(value)
	idx := indexOf(parts, option)
	if idx >= 0 {
		parts = append(parts[:idx], parts[idx+1:]...)
	} else {
		parts = append(parts, option)
	}
	return strings.Join(parts, m.Delimiter)
}

// WarningsValidator implements the no-<name>/<name> compiler-warning
// toggle convention.
type WarningsValidator struct {
	Prefix string
}

func (w *WarningsValidator) prefix() string {
	if w.Prefix == "" {
		return "no-"
	}
	return w.Prefix
}

func (w *WarningsValidator) Completions(currentValue string, _ Context) Result {
	return Result{Completions: []string{w.Toggle(currentValue, "")}, Valid: true}
}

func (w *WarningsValidator) Validate(value string, _ Context) Result {
	if value == "" {
		return Result{Valid: false, Message: "Warning name required"}
	}
	return Result{Valid: true}
}

// Toggle flips the disable prefix on or off. The option argument is unused
// (warnings toggle their own value, not an external selection) but kept to
// satisfy the Toggler interface uniformly.
func (w *WarningsValidator) Toggle(warning, _ string) string {
	if strings.HasPrefix(warning, w.prefix()) {
		return warning[len(w.prefix()):]
	}
	return w.prefix() + warning
}

// IsDisabled reports whether warning carries the disable prefix.
func (w *WarningsValidator) IsDisabled(warning string) bool {
	return strings.HasPrefix(warning, w.prefix())
}

// BaseName strips the disable prefix if present.
func (w *WarningsValidator) BaseName(warning string) string {
	if w.IsDisabled(warning) {
		return warning[len(w.prefix()):]
	}
	return warning
}

func (w *WarningsValidator) CycleNext(currentValue string, _ Context) string {
	return w.Toggle(currentValue, "")
}
func (w *WarningsValidator) CyclePrev(currentValue string, _ Context) string {
	return w.Toggle(currentValue, "")
}

// CustomValidator delegates completion and validation to an external
// process, communicating via argv and PROMPT_* environment variables.
type CustomValidator struct {
	Command string
	Timeout time.Duration

	// Runner is swappable for tests; defaults to running Command as a real
	// subprocess.
	Runner func(ctx context.Context, command, value, cwd string, env []string) (stdout, stderr string, err error)
}

func (c *CustomValidator) timeout() time.Duration {
	if c.Timeout == 0 {
		return 5 * time.Second
	}
	return c.Timeout
}

func (c *CustomValidator) run(value string, ctx Context) (string, string, error) {
	cwd := ctx.CWD
	if cwd == "" {
		cwd, _ = os.Getwd()
	}

	env := os.Environ()
	env = append(env, "PROMPT_VALUE="+value, "PROMPT_CWD="+cwd)
	for k, v := range ctx.Extra {
		env = append(env, "PROMPT_"+strings.ToUpper(k)+"="+v)
	}

	runCtx, cancel := context.WithTimeout(context.Background(), c.timeout())
	defer cancel()

	if c.Runner != nil {
		return c.Runner(runCtx, c.Command, value, cwd, env)
	}
	return runCommand(runCtx, c.Command, value, cwd, env)
}

func runCommand(ctx context.Context, command, value, cwd string, env []string) (string, string, error) {
	cmd := exec.CommandContext(ctx, command, value, cwd)
	cmd.Dir = cwd
	cmd.Env = env

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func (c *CustomValidator) Completions(currentValue string, ctx Context) Result {
	if c.Command == "" {
		return Result{Valid: true}
	}

	stdout, stderr, err := c.run(currentValue, ctx)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Result{Valid: false, Message: fmt.Sprintf("Command timed out after %s", c.timeout())}
		}
		var pathErr *exec.Error
		if errors.As(err, &pathErr) {
			return Result{Valid: false, Message: fmt.Sprintf("Command not found: %s", c.Command)}
		}
		msg := strings.TrimSpace(stderr)
		if msg == "" {
			msg = "Command failed"
		}
		return Result{Valid: false, Message: msg}
	}

	var completions []string
	for _, line := range strings.Split(stdout, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			completions = append(completions, trimmed)
		}
	}

	return Result{Completions: completions, Valid: true}
}

func (c *CustomValidator) Validate(value string, ctx Context) Result {
	result := c.Completions(value, ctx)
	if len(result.Completions) > 0 && !contains(result.Completions, value) {
		return Result{Valid: false, Message: fmt.Sprintf("Invalid value: %s", value)}
	}
	return Result{Valid: true}
}

func (c *CustomValidator) CycleNext(currentValue string, ctx Context) string {
	return cycleNextDefault(c, currentValue, ctx)
}
func (c *CustomValidator) CyclePrev(currentValue string, ctx Context) string {
	return cyclePrevDefault(c, currentValue, ctx)
}
