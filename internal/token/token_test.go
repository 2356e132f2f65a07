package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeSimpleCompile(t *testing.T) {
	tokens := Tokenize("gcc -I/tmp/foo -o test main.c")
	require.Len(t, tokens, 5)
	values := []string{"gcc", "-I/tmp/foo", "-o", "test", "main.c"}
	for i, v := range values {
		assert.Equal(t, v, tokens[i].Value)
	}
}

func TestTokenizeEmbeddedQuote(t *testing.T) {
	tokens := Tokenize(`gcc -DNAME="hello world" main.c`)
	require.Len(t, tokens, 3)
	assert.Equal(t, "gcc", tokens[0].Value)
	assert.Equal(t, `-DNAME=hello world`, tokens[1].Value)
	assert.Equal(t, Double, tokens[1].QuoteType)
	assert.Contains(t, tokens[1].Raw, `"`)
	assert.Equal(t, "main.c", tokens[2].Value)
}

func TestTokenizeFullyQuoted(t *testing.T) {
	tokens := Tokenize(`echo 'a b' "c\"d"`)
	require.Len(t, tokens, 3)
	assert.Equal(t, "a b", tokens[1].Value)
	assert.Equal(t, Single, tokens[1].QuoteType)
	assert.Equal(t, `c"d`, tokens[2].Value)
	assert.Equal(t, Double, tokens[2].QuoteType)
}

func TestTokenizeUnterminatedQuoteConsumesToEnd(t *testing.T) {
	tokens := Tokenize(`gcc "unterminated`)
	require.Len(t, tokens, 2)
	assert.Equal(t, "unterminated", tokens[1].Value)
}

func TestPositionFidelity(t *testing.T) {
	src := `gcc -I/tmp/foo -o test main.c`
	for _, tok := range Tokenize(src) {
		assert.Equal(t, tok.Raw, src[tok.Start:tok.End])
	}
}

func TestDetokenizeRoundTripNoCollapsedWhitespace(t *testing.T) {
	src := `gcc -I/tmp/foo -o test main.c`
	assert.Equal(t, src, Detokenize(Tokenize(src)))
}

func TestNeedsQuoting(t *testing.T) {
	assert.True(t, NeedsQuoting(""))
	assert.True(t, NeedsQuoting("hello world"))
	assert.False(t, NeedsQuoting("hello"))
	assert.True(t, NeedsQuoting("a$b"))
}

func TestRebuildMinimalQuoting(t *testing.T) {
	tokens := []Token{{Value: "gcc"}, {Value: "hello world"}, {Value: `has"both'`}}
	got := Rebuild(tokens)
	assert.Equal(t, `gcc "hello world" "has\"both'"`, got)
}

func TestQuoteTypeStringer(t *testing.T) {
	assert.Equal(t, "None", None.String())
	assert.Equal(t, "Single", Single.String())
	assert.Equal(t, "Double", Double.String())
}
