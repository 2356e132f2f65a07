package editor

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Render turns the editor's current styled spans into an ANSI string
// suitable for a single line of terminal output.
func Render(e *Editor) string {
	var b strings.Builder
	for _, span := range e.StyledSpans() {
		if ansi := span.Style.ToANSI(); ansi != "" {
			b.WriteString(ansi)
			b.WriteString(span.Text)
			b.WriteString("\033[0m")
			continue
		}
		b.WriteString(span.Text)
	}
	return b.String()
}

// REPL drives an Editor from a line-oriented command stream. It is
// intentionally not a full-screen terminal UI: spec.md §1 treats the
// terminal rendering loop as an external collaborator, and §5 assumes no
// particular terminal size. A real interactive front-end (full-screen
// redraw, key chords, clipboard) lives outside this core and would drive
// the same Editor and CommandRegistry this type wraps.
type REPL struct {
	Editor   *Editor
	Commands *CommandRegistry
	Out      io.Writer
	ErrOut   io.Writer
}

// NewREPL builds a REPL with the default command set.
func NewREPL(e *Editor, out, errOut io.Writer) *REPL {
	return &REPL{Editor: e, Commands: DefaultCommands(), Out: out, ErrOut: errOut}
}

// Run reads one command per line from in until EOF or a quit command,
// rendering the buffer after every successful command. It returns the
// final buffer text for the caller to optionally print.
func (r *REPL) Run(in io.Reader) (string, error) {
	fmt.Fprintln(r.Out, Render(r.Editor))

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" || line == "done" {
			break
		}

		if err := r.Commands.Dispatch(r.Editor, line); err != nil {
			fmt.Fprintln(r.ErrOut, err)
			continue
		}
		fmt.Fprintln(r.Out, Render(r.Editor))
	}

	if err := scanner.Err(); err != nil {
		return r.Editor.Text(), err
	}
	return r.Editor.Text(), nil
}
