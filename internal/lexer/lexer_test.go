package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecmafront/internal/token"
)

func tokenize(t *testing.T, source string) []token.Token {
	t.Helper()
	l := New(source)
	var toks []token.Token
	for {
		tok, err := l.NextToken()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Kind == token.EndOfFile {
			break
		}
	}
	return toks
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeSimpleDecl(t *testing.T) {
	toks := tokenize(t, `let x = 1 + 2`)
	assert.Equal(t, []token.Kind{
		token.Let, token.Ident, token.Assign,
		token.Number, token.Plus, token.Number, token.EndOfFile,
	}, kinds(toks))
}

func TestTokenizeKeywords(t *testing.T) {
	toks := tokenize(t, `if else while function return break continue var const class new true false null undefined`)
	assert.Equal(t, []token.Kind{
		token.If, token.Else, token.While, token.Function,
		token.Return, token.Break, token.Continue,
		token.Var, token.Const, token.Class, token.New,
		token.True, token.False, token.Null, token.Undefined,
		token.EndOfFile,
	}, kinds(toks))
}

// "this" is not a reserved word in this grammar: the parser models it as
// an ordinary identifier reference rather than a dedicated node, so the
// lexer reports it as a plain Ident.
func TestTokenizeThisIsPlainIdent(t *testing.T) {
	toks := tokenize(t, `this`)
	assert.Equal(t, []token.Kind{token.Ident, token.EndOfFile}, kinds(toks))
	assert.Equal(t, "this", toks[0].Text)
}

func TestTokenizeOperatorsLongestFirst(t *testing.T) {
	toks := tokenize(t, `>>>= >>> **= && &&= ?? ??= === !== == !=`)
	assert.Equal(t, []token.Kind{
		token.UShrEq, token.UShr, token.StarStarEq,
		token.AmpAmp, token.AmpAmpEq, token.QuestionQuestion, token.QuestionQuestionEq,
		token.StrictEq, token.StrictNotEq, token.Eq, token.NotEq,
		token.EndOfFile,
	}, kinds(toks))
}

func TestTokenizeDelimiters(t *testing.T) {
	toks := tokenize(t, `( ) { } [ ] , . ; : ...`)
	assert.Equal(t, []token.Kind{
		token.LParen, token.RParen, token.LBrace, token.RBrace,
		token.LBracket, token.RBracket, token.Comma, token.Dot,
		token.Semi, token.Colon, token.Spread,
		token.EndOfFile,
	}, kinds(toks))
}

func TestTokenizeString(t *testing.T) {
	toks := tokenize(t, `"hello" 'line1\nline2'`)
	require.Len(t, toks, 3)
	assert.Equal(t, token.String, toks[0].Kind)
	assert.Equal(t, `"hello"`, toks[0].Text)
	assert.Equal(t, token.String, toks[1].Kind)
}

func TestTokenizeUnterminatedStringIsError(t *testing.T) {
	l := New(`"abc`)
	_, err := l.NextToken()
	require.Error(t, err)
}

func TestTokenizeInvalidEscape(t *testing.T) {
	l := New(`"a\qb"`)
	_, err := l.NextToken()
	require.Error(t, err)
}

func TestTokenizeNumbers(t *testing.T) {
	cases := []string{"123", "3.14", "0", "42", "0x1F", "0o17", "0b101", "1e10", "1.5e-3", "10n"}
	for _, src := range cases {
		toks := tokenize(t, src)
		require.Len(t, toks, 2, "source %q", src)
		assert.Equal(t, token.Number, toks[0].Kind, "source %q", src)
		assert.Equal(t, src, toks[0].Text, "source %q", src)
	}
}

func TestTokenizeLegacyOctalRejected(t *testing.T) {
	l := New("012")
	_, err := l.NextToken()
	require.Error(t, err)
}

func TestTokenizeBinaryRejectsNonBinaryDigit(t *testing.T) {
	l := New("0b2")
	_, err := l.NextToken()
	require.Error(t, err)
}

func TestTokenizeBigIntRejectsDecimalPoint(t *testing.T) {
	l := New("1.5n")
	_, err := l.NextToken()
	require.Error(t, err)
}

func TestTokenizeLineNumbersIncrementOnNewlineOnly(t *testing.T) {
	toks := tokenize(t, "a\nb\nc")
	require.Len(t, toks, 4)
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 2, toks[1].Line)
	assert.Equal(t, 3, toks[2].Line)
}

func TestTokenizeComment(t *testing.T) {
	toks := tokenize(t, "x // this is a comment\ny")
	assert.Equal(t, []token.Kind{token.Ident, token.Ident, token.EndOfFile}, kinds(toks))
}

func TestTokenizeBlockComment(t *testing.T) {
	toks := tokenize(t, "x /* comment\nspanning lines */ y")
	assert.Equal(t, []token.Kind{token.Ident, token.Ident, token.EndOfFile}, kinds(toks))
	assert.Equal(t, 2, toks[1].Line)
}

func TestTokenizeUnterminatedBlockCommentIsError(t *testing.T) {
	l := New("x /* never closed")
	_, err := l.NextToken()
	require.NoError(t, err) // consumes 'x' first
	_, err = l.NextToken()
	require.Error(t, err)
}

func TestDivisionByDefault(t *testing.T) {
	l := New(`a / b`)
	tok1, err := l.NextToken()
	require.NoError(t, err)
	assert.Equal(t, token.Ident, tok1.Kind)
	tok2, err := l.NextToken()
	require.NoError(t, err)
	assert.Equal(t, token.Slash, tok2.Kind)
}

func TestRegexWhenEnabled(t *testing.T) {
	l := New(`/ab+c/gi`)
	l.SetRegexEnabled(true)
	tok, err := l.NextToken()
	require.NoError(t, err)
	assert.Equal(t, token.Regex, tok.Kind)
	assert.Equal(t, `/ab+c/gi`, tok.Text)
}

func TestRegexRejectsLineTerminatorInBody(t *testing.T) {
	l := New("/abc\n/")
	l.SetRegexEnabled(true)
	_, err := l.NextToken()
	require.Error(t, err)
}

func TestCloneDoesNotAffectOriginal(t *testing.T) {
	l := New(`abc def`)
	clone := l.Clone()
	_, err := clone.NextToken()
	require.NoError(t, err)

	tok, err := l.NextToken()
	require.NoError(t, err)
	assert.Equal(t, "abc", tok.Text, "advancing the clone must not move the original cursor")
}

func TestTemplateLiteralNoInterpolation(t *testing.T) {
	l := New("`hello world`")
	tok, err := l.NextToken()
	require.NoError(t, err)
	assert.Equal(t, token.TemplateLiteralFragment, tok.Kind)
	assert.Equal(t, "`hello world`", tok.Text)
}

func TestTemplateLiteralWithInterpolation(t *testing.T) {
	l := New("`a${b}c`")
	head, err := l.NextToken()
	require.NoError(t, err)
	assert.Equal(t, token.TemplateLiteralFragment, head.Kind)
	assert.Equal(t, "`a${", head.Text)

	l.EnterTemplateInterpolation()
	ident, err := l.NextToken()
	require.NoError(t, err)
	assert.Equal(t, token.Ident, ident.Kind)
	assert.Equal(t, "b", ident.Text)

	tail, err := l.NextToken()
	require.NoError(t, err)
	assert.Equal(t, token.TemplateLiteralFragment, tail.Kind)
	assert.Equal(t, "}c`", tail.Text)
}

func TestTemplateLiteralNestedTemplate(t *testing.T) {
	l := New("`a${ `b${c}` }d`")
	head, err := l.NextToken()
	require.NoError(t, err)
	assert.Equal(t, "`a${", head.Text)
	l.EnterTemplateInterpolation()

	inner, err := l.NextToken()
	require.NoError(t, err)
	assert.Equal(t, "`b${", inner.Text)
	l.EnterTemplateInterpolation()

	ident, err := l.NextToken()
	require.NoError(t, err)
	assert.Equal(t, token.Ident, ident.Kind)

	innerTail, err := l.NextToken()
	require.NoError(t, err)
	assert.Equal(t, "}`", innerTail.Text)

	outerTail, err := l.NextToken()
	require.NoError(t, err)
	assert.Equal(t, "}d`", outerTail.Text)
}

func TestTemplateLiteralObjectLiteralInsideInterpolationDoesNotClosePrematurely(t *testing.T) {
	l := New("`${ {a: 1} }`")
	head, err := l.NextToken()
	require.NoError(t, err)
	assert.Equal(t, "`${", head.Text)
	l.EnterTemplateInterpolation()

	lbrace, err := l.NextToken()
	require.NoError(t, err)
	assert.Equal(t, token.LBrace, lbrace.Kind)

	_, err = l.NextToken() // a
	require.NoError(t, err)
	_, err = l.NextToken() // :
	require.NoError(t, err)
	_, err = l.NextToken() // 1
	require.NoError(t, err)

	rbrace, err := l.NextToken()
	require.NoError(t, err)
	assert.Equal(t, token.RBrace, rbrace.Kind)

	tail, err := l.NextToken()
	require.NoError(t, err)
	assert.Equal(t, token.TemplateLiteralFragment, tail.Kind)
	assert.Equal(t, "}`", tail.Text)
}
