// Package complete computes completion context from cursor position and
// routes it to the right validator: PATH executables for the first token,
// a flag's declared validator for later tokens, and the default validator
// for whitespace or past-end-of-line.
package complete

import (
	"os"
	"strings"

	"github.com/mprompt/promptline/internal/match"
	"github.com/mprompt/promptline/internal/token"
	"github.com/mprompt/promptline/internal/validate"
)

// Item is one completion candidate. StartOffset is the byte offset in the
// line where the partial text being replaced begins; the replaced text
// runs from there to the cursor.
type Item struct {
	Text        string
	Display     string
	StartOffset int
}

// Request is the resolved completion context: which validator to run,
// what partial text to complete, and where that partial begins.
type Request struct {
	Validator   validate.Validator
	Partial     string
	StartOffset int
	IsExecutable bool
}

// Resolve computes the completion request for a cursor position within a
// raw line of text.
func Resolve(text string, cursorPos int, defaultValidator validate.Validator, validatorForResult func(match.MatchResult) validate.Validator, m *match.Matcher) Request {
	tokens := token.Tokenize(text)

	if len(tokens) == 0 {
		return Request{Validator: defaultValidator, Partial: "", StartOffset: cursorPos}
	}

	current, index := findTokenAtCursor(tokens, cursorPos)

	if current == nil {
		partial := ""
		lastEnd := tokens[len(tokens)-1].End
		if cursorPos > lastEnd {
			partial = strings.TrimSpace(text[lastEnd:cursorPos])
		}
		return Request{Validator: defaultValidator, Partial: partial, StartOffset: cursorPos - len(partial)}
	}

	if index == 0 {
		return Request{IsExecutable: true, Partial: current.Value[:cursorPos-current.Start], StartOffset: current.Start}
	}

	result := m.MatchToken(*current)
	validator := defaultValidator
	if validatorForResult != nil {
		if v := validatorForResult(result); v != nil {
			validator = v
		}
	}

	partial, start := completionContext(*current, result, cursorPos)
	return Request{Validator: validator, Partial: partial, StartOffset: start}
}

func findTokenAtCursor(tokens []token.Token, cursorPos int) (*token.Token, int) {
	for i, t := range tokens {
		if t.Start <= cursorPos && cursorPos <= t.End {
			return &tokens[i], i
		}
		if t.End < cursorPos && i+1 < len(tokens) && tokens[i+1].Start > cursorPos {
			return nil, -1
		}
	}
	return nil, -1
}

func completionContext(t token.Token, result match.MatchResult, cursorPos int) (string, int) {
	if len(result.Groups) > 1 {
		last := result.Groups[len(result.Groups)-1]
		valueStart := t.Start + last.Start
		valueEnd := t.Start + last.End

		if valueStart <= cursorPos && cursorPos <= valueEnd {
			partial := t.Value[last.Start : cursorPos-t.Start]
			return partial, valueStart
		}
	}

	partial := t.Value[:cursorPos-t.Start]
	return partial, t.Start
}

// RunValidator executes validator.Completions(partial, ctx) and turns the
// resulting strings into Items whose StartOffset reflects replacing just
// the partial text.
func RunValidator(validator validate.Validator, partial string, startOffset int, ctx validate.Context) []Item {
	if validator == nil {
		return nil
	}

	result := validator.Completions(partial, ctx)
	items := make([]Item, len(result.Completions))
	for i, c := range result.Completions {
		items[i] = Item{Text: c, Display: c, StartOffset: startOffset}
	}
	return items
}

// Executables completes PATH executable basenames, case-insensitively,
// deduplicated and preserving PATH directory order.
func Executables(partial string) []Item {
	pathEnv := os.Getenv("PATH")
	var items []Item
	seen := map[string]bool{}
	lowerPartial := strings.ToLower(partial)

	for _, dir := range strings.Split(pathEnv, string(os.PathListSeparator)) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			if seen[name] {
				continue
			}
			if partial != "" && !strings.HasPrefix(strings.ToLower(name), lowerPartial) {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if !isExecutable(info.Mode()) {
				continue
			}
			seen[name] = true
			items = append(items, Item{Text: name, Display: name})
		}
	}

	return items
}

func isExecutable(mode os.FileMode) bool {
	return mode&0o111 != 0
}
