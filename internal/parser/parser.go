// Package parser implements syntax analysis: a recursive-descent parser
// over the lexer's pull-based token stream, with snapshot-and-retry
// backtracking at the handful of points the grammar is genuinely
// ambiguous without unbounded lookahead (arrow functions, for vs.
// for-in/of, destructuring vs. parenthesized/object-literal expressions).
package parser

import (
	"ecmafront/internal/ast"
	"ecmafront/internal/lexer"
	"ecmafront/internal/perr"
	"ecmafront/internal/span"
	"ecmafront/internal/token"
)

// ============================================================
// Binding power (precedence) levels, lowest to highest
// ============================================================

const (
	bpNone        = 0
	bpComma       = 5
	bpAssign      = 10
	bpConditional = 20
	bpNullish     = 30
	bpOr          = 40
	bpAnd         = 50
	bpBitOr       = 60
	bpBitXor      = 70
	bpBitAnd      = 80
	bpEquality    = 90
	bpRelational  = 100
	bpShift       = 110
	bpAdditive    = 120
	bpMultiply    = 130
	bpExponent    = 140
)

// infixBP returns the left binding power of kind as a binary operator, or
// bpNone if kind is not a binary operator.
func infixBP(kind token.Kind) int {
	switch kind {
	case token.QuestionQuestion:
		return bpNullish
	case token.PipePipe:
		return bpOr
	case token.AmpAmp:
		return bpAnd
	case token.Pipe:
		return bpBitOr
	case token.Caret:
		return bpBitXor
	case token.Amp:
		return bpBitAnd
	case token.Eq, token.NotEq, token.StrictEq, token.StrictNotEq:
		return bpEquality
	case token.Lt, token.LtEq, token.Gt, token.GtEq, token.InstanceOf, token.In:
		return bpRelational
	case token.Shl, token.Shr, token.UShr:
		return bpShift
	case token.Plus, token.Minus:
		return bpAdditive
	case token.Star, token.Slash, token.Percent:
		return bpMultiply
	case token.StarStar:
		return bpExponent
	default:
		return bpNone
	}
}

// isAssignOp reports whether kind is one of the assignment operators,
// including compound forms.
func isAssignOp(kind token.Kind) bool {
	switch kind {
	case token.Assign, token.PlusEq, token.MinusEq, token.StarEq, token.SlashEq,
		token.PercentEq, token.StarStarEq, token.ShlEq, token.ShrEq, token.UShrEq,
		token.AmpEq, token.PipeEq, token.CaretEq, token.AmpAmpEq, token.PipePipeEq,
		token.QuestionQuestionEq:
		return true
	default:
		return false
	}
}

// ============================================================
// Parser
// ============================================================

// Parser is a pull-based recursive-descent parser. It holds exactly one
// token of lookahead (cur); preLex is the lexer's state immediately before
// cur was read, kept so the parser can re-lex a '/'/'/=' token as a regex
// literal when the grammar position calls for one, without the lexer ever
// needing to know parser-level context beyond the regex-enabled flag.
type Parser struct {
	lex    *lexer.Lexer
	preLex *lexer.Lexer

	cur    token.Token
	curErr error

	last    token.Token
	hasLast bool
}

// New creates a parser over source.
func New(source string) *Parser {
	l := lexer.New(source)
	p := &Parser{lex: l, preLex: l.Clone()}
	p.cur, p.curErr = l.NextToken()
	return p
}

// ParseSourceFile parses an entire program: a flat sequence of top-level
// statements. Parsing stops at the first error; per the error-handling
// design there is no recovery or partial result.
func (p *Parser) ParseSourceFile() (*ast.SourceFile, error) {
	start := p.cur.Span.Start
	var body []ast.Stmt
	for !p.at(token.EndOfFile) {
		if p.curErr != nil {
			return nil, p.curErr
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	return &ast.SourceFile{
		NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: p.cur.Span.End}},
		Body:     body,
	}, nil
}

// ---- cursor management ----

// clone returns an independent copy of the parser's state for speculative
// lookahead; the original is untouched until commit.
func (p *Parser) clone() *Parser {
	return &Parser{
		lex:     p.lex.Clone(),
		preLex:  p.preLex.Clone(),
		cur:     p.cur,
		curErr:  p.curErr,
		last:    p.last,
		hasLast: p.hasLast,
	}
}

// commit replaces p's state with other's, adopting a speculative parse.
func (p *Parser) commit(other *Parser) {
	*p = *other
}

// at reports whether the current token (with no pending error) has kind k.
func (p *Parser) at(k token.Kind) bool {
	return p.curErr == nil && p.cur.Kind == k
}

// atAny reports whether the current token's kind is one of ks.
func (p *Parser) atAny(ks ...token.Kind) bool {
	if p.curErr != nil {
		return false
	}
	for _, k := range ks {
		if p.cur.Kind == k {
			return true
		}
	}
	return false
}

// advance consumes and returns the current token, then pulls the next one
// from the lexer. Calling advance when curErr is non-nil is a parser bug;
// callers must check curErr (directly or via at/atAny) first.
func (p *Parser) advance() token.Token {
	tok := p.cur
	p.last = tok
	p.hasLast = true
	p.preLex = p.lex.Clone()
	p.cur, p.curErr = p.lex.NextToken()
	return tok
}

// advanceIntoTemplateInterpolation consumes the current template-literal
// fragment token (one ending in "${") and pulls the next token with the
// lexer's template-interpolation mode already entered, so that any '{'/'}'
// the next token read starts is depth-tracked from the very first
// character of the interpolated expression.
func (p *Parser) advanceIntoTemplateInterpolation() token.Token {
	tok := p.cur
	p.last = tok
	p.hasLast = true
	p.lex.EnterTemplateInterpolation()
	p.preLex = p.lex.Clone()
	p.cur, p.curErr = p.lex.NextToken()
	return tok
}

// expect consumes the current token if it has kind k, else returns an
// UnexpectedToken error without advancing.
func (p *Parser) expect(k token.Kind) (token.Token, error) {
	if p.curErr != nil {
		return token.Token{}, p.curErr
	}
	if p.cur.Kind != k {
		return token.Token{}, perr.NewUnexpectedToken(p.cur.Line, k, p.cur.Kind)
	}
	return p.advance(), nil
}

// expectSemi implements automatic semicolon insertion: an explicit ';' is
// consumed, a '}' or end-of-file ends the statement implicitly, a current
// token on a later source line than the last accepted token also ends the
// statement implicitly, and anything else is a MissingSemi error. Grounded
// exactly on the original prototype's expect_semi.
func (p *Parser) expectSemi() error {
	if p.curErr != nil {
		return p.curErr
	}
	if p.cur.Kind == token.Semi {
		p.advance()
		return nil
	}
	if p.cur.Kind == token.RBrace || p.cur.Kind == token.EndOfFile {
		return nil
	}
	if p.hasLast && p.cur.Line > p.last.Line {
		return nil
	}
	return perr.NewMissingSemi(p.cur.Line, p.cur.Kind)
}

// enableRegexAndRelex re-lexes the current token as a regex literal: used
// the moment the parser discovers it is at the start of a primary
// expression and the current token is '/' or '/=', which the lexer (with
// regex mode off by default) mis-tokenized as division/division-assign.
func (p *Parser) enableRegexAndRelex() {
	if p.curErr == nil && p.cur.Kind != token.Slash && p.cur.Kind != token.SlashEq {
		return
	}
	l := p.preLex.Clone()
	l.SetRegexEnabled(true)
	p.cur, p.curErr = l.NextToken()
	// regexEnabled is a one-shot override for this single re-lex: every
	// other '/' in the program is division unless the parser calls this
	// method again at a later primary-expression position.
	l.SetRegexEnabled(false)
	p.lex = l
}

func spanBetween(a, b span.Span) span.Span {
	return span.Span{Start: a.Start, End: b.End}
}
