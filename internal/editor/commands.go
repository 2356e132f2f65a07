package editor

import (
	"fmt"
	"strings"
)

// CommandFunc is the handler invoked once a command name resolves; arg is
// whatever trailing text followed the command word (e.g. a category name
// after "lights-off"), empty if none was given.
type CommandFunc func(e *Editor, arg string) error

// CommandRegistry resolves abbreviated command names to handlers the way
// the original editor/commands.py's CommandRegistry does: every hyphen-
// separated word of the typed input must be a non-empty prefix of the
// corresponding word in exactly one registered name. "next-g" resolves to
// "next-group" the same way "mo-w-l" would resolve to "move-word-left".
// Ambiguous input is a hard error rather than a silent first match.
type CommandRegistry struct {
	names    []string
	handlers map[string]CommandFunc
}

// NewCommandRegistry returns an empty registry.
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{handlers: map[string]CommandFunc{}}
}

// Register adds a command under its full, canonical hyphenated name.
func (r *CommandRegistry) Register(name string, fn CommandFunc) {
	r.names = append(r.names, name)
	r.handlers[name] = fn
}

// Resolve maps a (possibly abbreviated) command name to the single
// registered name it matches.
func (r *CommandRegistry) Resolve(input string) (string, error) {
	if _, ok := r.handlers[input]; ok {
		return input, nil
	}

	inputWords := strings.Split(input, "-")
	var candidates []string
	for _, name := range r.names {
		if wordsMatch(inputWords, strings.Split(name, "-")) {
			candidates = append(candidates, name)
		}
	}

	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("unknown command: %s", input)
	case 1:
		return candidates[0], nil
	default:
		return "", fmt.Errorf("ambiguous command %q: matches %s", input, strings.Join(candidates, ", "))
	}
}

func wordsMatch(input, full []string) bool {
	if len(input) != len(full) {
		return false
	}
	for i := range input {
		if input[i] == "" || !strings.HasPrefix(full[i], input[i]) {
			return false
		}
	}
	return true
}

// Dispatch splits input into a command word and trailing argument text,
// resolves the command word (abbreviations allowed), and invokes it.
func (r *CommandRegistry) Dispatch(e *Editor, input string) error {
	name, arg, _ := strings.Cut(strings.TrimSpace(input), " ")
	if name == "" {
		return nil
	}
	resolved, err := r.Resolve(name)
	if err != nil {
		return err
	}
	return r.handlers[resolved](e, strings.TrimSpace(arg))
}

// DefaultCommands builds the registry the REPL dispatches into: cursor
// movement, lights-off, and duplicates-mode commands, mirroring the
// original editor/commands.py command set minus the parts explicitly out
// of scope (clipboard, external-editor invocation).
func DefaultCommands() *CommandRegistry {
	r := NewCommandRegistry()

	r.Register("move-char-left", func(e *Editor, _ string) error { e.buf.MoveCharLeft(); return nil })
	r.Register("move-char-right", func(e *Editor, _ string) error { e.buf.MoveCharRight(); return nil })
	r.Register("move-word-left", func(e *Editor, _ string) error { e.buf.MoveWordLeft(); return nil })
	r.Register("move-word-right", func(e *Editor, _ string) error { e.buf.MoveWordRight(); return nil })
	r.Register("move-line-start", func(e *Editor, _ string) error { e.buf.MoveLineStart(); return nil })
	r.Register("move-line-end", func(e *Editor, _ string) error { e.buf.MoveLineEnd(); return nil })

	r.Register("lights-off", func(e *Editor, arg string) error { e.ToggleLightsOff(arg); return nil })

	r.Register("duplicates", func(e *Editor, _ string) error {
		if e.InDuplicatesMode() {
			e.ExitDuplicatesMode()
			return nil
		}
		if !e.EnterDuplicatesMode() {
			return fmt.Errorf("no duplicate flags found")
		}
		return nil
	})

	requireDuplicates := func(fn func(*Editor)) CommandFunc {
		return func(e *Editor, _ string) error {
			if !e.InDuplicatesMode() {
				return fmt.Errorf("not in duplicates mode")
			}
			fn(e)
			return nil
		}
	}

	r.Register("next", requireDuplicates(func(e *Editor) { e.duplicatesMode.Next(e) }))
	r.Register("prev", requireDuplicates(func(e *Editor) { e.duplicatesMode.Prev(e) }))
	r.Register("next-group", requireDuplicates(func(e *Editor) { e.duplicatesMode.NextGroup(e) }))
	r.Register("prev-group", requireDuplicates(func(e *Editor) { e.duplicatesMode.PrevGroup(e) }))
	r.Register("select", requireDuplicates(func(e *Editor) { e.duplicatesMode.Select() }))
	r.Register("deselect", requireDuplicates(func(e *Editor) { e.duplicatesMode.Deselect() }))
	r.Register("select-all", requireDuplicates(func(e *Editor) { e.duplicatesMode.SelectAll() }))
	r.Register("deselect-all", requireDuplicates(func(e *Editor) { e.duplicatesMode.DeselectAll() }))
	r.Register("keep-current", requireDuplicates(func(e *Editor) { e.duplicatesMode.KeepCurrent(e) }))
	r.Register("keep-first", requireDuplicates(func(e *Editor) { e.duplicatesMode.KeepFirst(e) }))
	r.Register("delete-current", requireDuplicates(func(e *Editor) { e.duplicatesMode.DeleteCurrent(e) }))

	return r
}
