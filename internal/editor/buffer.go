// Package editor composes every other internal package into the thing an
// interactive session actually drives: a mutable command-line Buffer, an
// Editor that keeps matcher/styler/duplicates state in sync with it, and a
// small abbreviation-matching command registry the REPL dispatches into.
package editor

import "github.com/mprompt/promptline/internal/token"

// Buffer is the narrow capability spec.md §1 calls out as the core's only
// contract with the surrounding editor: text, cursor_position, and a
// handful of edit primitives. It owns no matcher or styling state.
type Buffer struct {
	text   string
	cursor int
}

// NewBuffer builds a Buffer with the cursor placed at the end of text, the
// same starting position the original editor gives a pre-populated line.
func NewBuffer(text string) *Buffer {
	return &Buffer{text: text, cursor: len(text)}
}

// Text returns the current buffer contents.
func (b *Buffer) Text() string { return b.text }

// CursorPosition returns the cursor's byte offset into Text().
func (b *Buffer) CursorPosition() int { return b.cursor }

// SetText replaces the buffer contents, clamping the cursor if it now
// falls past the end.
func (b *Buffer) SetText(text string) {
	b.text = text
	if b.cursor > len(text) {
		b.cursor = len(text)
	}
}

// SetCursorPosition moves the cursor, clamped to the buffer's bounds.
func (b *Buffer) SetCursorPosition(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(b.text) {
		pos = len(b.text)
	}
	b.cursor = pos
}

// Tokens tokenizes the buffer fresh; tokens are never cached across
// mutations, per the ephemeral-lifecycle rule in spec.md §3.
func (b *Buffer) Tokens() []token.Token {
	return token.Tokenize(b.text)
}

// Insert splices s into the buffer at the cursor and advances the cursor
// past it.
func (b *Buffer) Insert(s string) {
	b.text = b.text[:b.cursor] + s + b.text[b.cursor:]
	b.cursor += len(s)
}

// DeleteBackward removes the n bytes immediately before the cursor.
func (b *Buffer) DeleteBackward(n int) {
	start := b.cursor - n
	if start < 0 {
		start = 0
	}
	b.text = b.text[:start] + b.text[b.cursor:]
	b.cursor = start
}

// MoveCharLeft moves the cursor back one byte.
func (b *Buffer) MoveCharLeft() {
	if b.cursor > 0 {
		b.cursor--
	}
}

// MoveCharRight moves the cursor forward one byte.
func (b *Buffer) MoveCharRight() {
	if b.cursor < len(b.text) {
		b.cursor++
	}
}

// MoveWordLeft moves the cursor to the start of the token it is inside or
// the start of the previous token if it is already at a token start.
func (b *Buffer) MoveWordLeft() {
	tokens := b.Tokens()
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].Start < b.cursor {
			b.cursor = tokens[i].Start
			return
		}
	}
	b.cursor = 0
}

// MoveWordRight moves the cursor to the start of the next token, or the
// end of the buffer if there is none.
func (b *Buffer) MoveWordRight() {
	tokens := b.Tokens()
	for _, t := range tokens {
		if t.Start > b.cursor {
			b.cursor = t.Start
			return
		}
	}
	b.cursor = len(b.text)
}

// MoveLineStart moves the cursor to offset 0.
func (b *Buffer) MoveLineStart() { b.cursor = 0 }

// MoveLineEnd moves the cursor to the end of the buffer.
func (b *Buffer) MoveLineEnd() { b.cursor = len(b.text) }
