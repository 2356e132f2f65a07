package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferSetTextClampsCursor(t *testing.T) {
	b := NewBuffer("gcc -O2 main.c")
	b.SetCursorPosition(14)
	b.SetText("gcc")
	assert.Equal(t, 3, b.CursorPosition())
}

func TestBufferMoveWordLeftRight(t *testing.T) {
	b := NewBuffer("gcc -I/a -I/b")
	b.SetCursorPosition(len(b.Text()))

	b.MoveWordLeft()
	assert.Equal(t, 9, b.CursorPosition())

	b.MoveWordLeft()
	assert.Equal(t, 4, b.CursorPosition())

	b.MoveWordRight()
	assert.Equal(t, 9, b.CursorPosition())

	b.MoveWordRight()
	assert.Equal(t, len(b.Text()), b.CursorPosition())
}

func TestBufferInsertAndDeleteBackward(t *testing.T) {
	b := NewBuffer("gcc main.c")
	b.SetCursorPosition(3)
	b.Insert(" -O2")
	assert.Equal(t, "gcc -O2 main.c", b.Text())
	assert.Equal(t, 7, b.CursorPosition())

	b.DeleteBackward(4)
	assert.Equal(t, "gcc main.c", b.Text())
	assert.Equal(t, 3, b.CursorPosition())
}

func TestBufferMoveLineStartEnd(t *testing.T) {
	b := NewBuffer("gcc -O2")
	b.SetCursorPosition(3)
	b.MoveLineEnd()
	assert.Equal(t, len(b.Text()), b.CursorPosition())
	b.MoveLineStart()
	assert.Equal(t, 0, b.CursorPosition())
}
