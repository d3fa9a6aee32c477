package parser

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"ecmafront/internal/ast"
	"ecmafront/internal/perr"
	"ecmafront/internal/span"
	"ecmafront/internal/token"
)

// parsePrimary parses the innermost expression forms: literals,
// identifiers (with inline arrow-function lookahead), parenthesized
// expressions (with arrow-function backtracking), array/object/class/
// function literals, and template literals.
func (p *Parser) parsePrimary() (ast.Expr, error) {
	if p.curErr != nil {
		return nil, p.curErr
	}

	switch p.cur.Kind {
	case token.Number:
		tok := p.advance()
		return &ast.NumberLiteralExpr{
			ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: tok.Span}},
			Raw:      tok.Text,
			IsBigInt: len(tok.Text) > 0 && tok.Text[len(tok.Text)-1] == 'n',
		}, nil

	case token.String:
		tok := p.advance()
		return &ast.StringLiteralExpr{
			ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: tok.Span}},
			Value:    decodeStringLiteral(tok.Text),
			Raw:      tok.Text,
		}, nil

	case token.True, token.False:
		tok := p.advance()
		return &ast.BooleanLiteralExpr{
			ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: tok.Span}},
			Value:    tok.Kind == token.True,
		}, nil

	case token.Null:
		tok := p.advance()
		return &ast.NullLiteralExpr{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: tok.Span}}}, nil

	case token.Undefined:
		tok := p.advance()
		return &ast.UndefinedLiteralExpr{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: tok.Span}}}, nil

	case token.Super:
		tok := p.advance()
		return &ast.SuperExpr{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: tok.Span}}}, nil

	case token.Slash, token.SlashEq:
		p.enableRegexAndRelex()
		if p.curErr != nil {
			return nil, p.curErr
		}
		if p.cur.Kind != token.Regex {
			return nil, perr.NewUnexpectedToken(p.cur.Line, token.Regex, p.cur.Kind)
		}
		return p.parseRegexToken()

	case token.Regex:
		return p.parseRegexToken()

	case token.TemplateLiteralFragment:
		return p.parseTemplateLiteral()

	case token.LParen:
		return p.parseParenOrArrow()

	case token.LBracket:
		return p.parseArrayLiteral()

	case token.LBrace:
		return p.parseObjectLiteral()

	case token.Function:
		return p.parseFunctionExpr(false)

	case token.Async:
		return p.parseAsyncPrimary()

	case token.Class:
		return p.parseClassExpr()

	case token.Ident, token.Yield:
		return p.parseIdentOrArrow()
	}

	if p.cur.Kind.IsKeyword() {
		return p.parseIdentOrArrow()
	}

	return nil, perr.NewUnexpectedToken(p.cur.Line, token.Ident, p.cur.Kind)
}

func (p *Parser) parseRegexToken() (ast.Expr, error) {
	tok := p.advance()
	pattern, flags := splitRegex(tok.Text)
	return &ast.RegexLiteralExpr{
		ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: tok.Span}},
		Pattern:  pattern,
		Flags:    flags,
	}, nil
}

func splitRegex(text string) (pattern, flags string) {
	// text is `/body/flags`; body may itself contain escaped '/'.
	depth := 0
	for i := 1; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case '/':
			if depth == 0 {
				return text[1:i], text[i+1:]
			}
		}
	}
	return text[1:], ""
}

// parseIdentOrArrow parses a bare identifier (or reserved-word-as-name),
// detecting the single-param arrow-function shorthand `x => ...` via a
// one-token speculative lookahead.
func (p *Parser) parseIdentOrArrow() (ast.Expr, error) {
	name := p.cur.Text
	start := p.cur.Span
	snap := p.clone()
	snap.advance()
	if snap.curErr == nil && snap.cur.Kind == token.FatArrow {
		param := &ast.VarPattern{PatternBase: ast.PatternBase{NodeBase: ast.NodeBase{Span: start}}, Name: name}
		snap.advance() // consume '=>'
		fn, err := snap.parseArrowBody([]ast.Pattern{param}, start, false)
		if err != nil {
			return nil, err
		}
		p.commit(snap)
		return fn, nil
	}
	p.advance()
	return &ast.IdentExpr{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: start}}, Name: name}, nil
}

// parseAsyncPrimary disambiguates `async` as a plain identifier, an async
// function expression, or an async arrow function.
func (p *Parser) parseAsyncPrimary() (ast.Expr, error) {
	start := p.cur.Span
	snap := p.clone()
	snap.advance() // consume 'async'

	if snap.curErr == nil && snap.cur.Kind == token.Function && !(snap.hasLast && snap.cur.Line > snap.last.Line) {
		snap.advance()
		fn, err := snap.parseFunctionExprTail(start, true)
		if err == nil {
			p.commit(snap)
			return fn, nil
		}
	} else if snap.curErr == nil && !(snap.hasLast && snap.cur.Line > snap.last.Line) {
		arrowSnap := snap.clone()
		if arrow, err := arrowSnap.tryParseArrowAfterAsync(start); err == nil {
			p.commit(arrowSnap)
			return arrow, nil
		}
	}

	p.advance()
	return &ast.IdentExpr{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: start}}, Name: "async"}, nil
}

func (p *Parser) tryParseArrowAfterAsync(start span.Span) (ast.Expr, error) {
	var params []ast.Pattern
	if p.at(token.Ident) {
		name := p.cur.Text
		nameSpan := p.cur.Span
		p.advance()
		params = []ast.Pattern{&ast.VarPattern{PatternBase: ast.PatternBase{NodeBase: ast.NodeBase{Span: nameSpan}}, Name: name}}
	} else {
		var err error
		params, err = p.parseParamList()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.FatArrow); err != nil {
		return nil, err
	}
	return p.parseArrowBody(params, start, true)
}

// parseParenOrArrow resolves the classic "(x)" vs "(x) => x" ambiguity by
// attempting both parses against independent clones and keeping whichever
// succeeds, preferring the arrow-function reading when both do — the same
// strategy the original prototype parser used for this exact ambiguity.
func (p *Parser) parseParenOrArrow() (ast.Expr, error) {
	parenSnap := p.clone()
	arrowSnap := p.clone()

	parenExpr, parenErr := parenSnap.parseParenExpr()
	arrowExpr, arrowErr := arrowSnap.parseArrowFromParams()

	switch {
	case arrowErr == nil:
		p.commit(arrowSnap)
		return arrowExpr, nil
	case parenErr == nil:
		p.commit(parenSnap)
		return parenExpr, nil
	default:
		return nil, parenErr
	}
}

func (p *Parser) parseParenExpr() (ast.Expr, error) {
	p.advance() // consume '('
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *Parser) parseArrowFromParams() (ast.Expr, error) {
	start := p.cur.Span
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.FatArrow); err != nil {
		return nil, err
	}
	return p.parseArrowBody(params, start, false)
}

// parseArrowBody parses the `{ ... }` block or bare-expression body of an
// arrow function and assembles the ArrowFunctionExpr.
func (p *Parser) parseArrowBody(params []ast.Pattern, start span.Span, isAsync bool) (ast.Expr, error) {
	fn := &ast.Function{Params: params, IsArrow: true, IsAsync: isAsync}
	if p.at(token.LBrace) {
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		fn.Body = body
		fn.Span = spanBetween(start, body.Span)
	} else {
		body, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		fn.ArrowExprBody = body
		fn.Span = spanBetween(start, body.GetSpan())
	}
	return &ast.ArrowFunctionExpr{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: fn.Span}}, Fn: fn}, nil
}

// ---- array / object literals ----

func (p *Parser) parseArrayLiteral() (ast.Expr, error) {
	start := p.cur.Span
	p.advance() // consume '['
	var members []ast.ArrayLiteralMember
	for !p.at(token.RBracket) {
		if p.curErr != nil {
			return nil, p.curErr
		}
		if p.at(token.Comma) {
			members = append(members, ast.ArrayLiteralMember{Span: p.cur.Span, Kind: ast.ArrayMemberElision})
			p.advance()
			continue
		}
		memberStart := p.cur.Span
		if p.at(token.Spread) {
			p.advance()
			e, err := p.parseAssignExprNoComma()
			if err != nil {
				return nil, err
			}
			members = append(members, ast.ArrayLiteralMember{
				Span: spanBetween(memberStart, e.GetSpan()), Kind: ast.ArrayMemberSpread, Expr: e,
			})
		} else {
			e, err := p.parseAssignExprNoComma()
			if err != nil {
				return nil, err
			}
			members = append(members, ast.ArrayLiteralMember{
				Span: e.GetSpan(), Kind: ast.ArrayMemberExpr, Expr: e,
			})
		}
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	closeTok, err := p.expect(token.RBracket)
	if err != nil {
		return nil, err
	}
	return &ast.ArrayLiteralExpr{
		ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: spanBetween(start, closeTok.Span)}},
		Members:  members,
	}, nil
}

func (p *Parser) parseObjectLiteral() (ast.Expr, error) {
	start := p.cur.Span
	p.advance() // consume '{'
	var entries []ast.ObjectLiteralEntry
	for !p.at(token.RBrace) {
		if p.curErr != nil {
			return nil, p.curErr
		}
		entry, err := p.parseObjectEntry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	closeTok, err := p.expect(token.RBrace)
	if err != nil {
		return nil, err
	}
	return &ast.ObjectLiteralExpr{
		ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: spanBetween(start, closeTok.Span)}},
		Entries:  entries,
	}, nil
}

func (p *Parser) parseObjectEntry() (ast.ObjectLiteralEntry, error) {
	start := p.cur.Span
	entryLine := p.cur.Line

	if p.at(token.Spread) {
		p.advance()
		v, err := p.parseAssignExprNoComma()
		if err != nil {
			return ast.ObjectLiteralEntry{}, err
		}
		return ast.ObjectLiteralEntry{Span: spanBetween(start, v.GetSpan()), Kind: ast.ObjectEntrySpread, Value: v}, nil
	}

	isAsync, isGenerator, isGetter, isSetter := p.peekMethodModifiers()

	key, computed, err := p.parsePropertyKey()
	if err != nil {
		return ast.ObjectLiteralEntry{}, err
	}

	switch {
	case p.at(token.LParen) || isAsync || isGenerator || isGetter || isSetter:
		fn, err := p.parseMethodTail(isAsync, isGenerator)
		if err != nil {
			return ast.ObjectLiteralEntry{}, err
		}
		if isGetter && len(fn.Params) != 0 {
			return ast.ObjectLiteralEntry{}, perr.NewGetterWithParams(entryLine)
		}
		return ast.ObjectLiteralEntry{
			Span: spanBetween(start, fn.Span), Kind: ast.ObjectEntryMethod,
			Key: key, Computed: computed, Method: fn,
		}, nil

	case p.at(token.Colon):
		p.advance()
		v, err := p.parseAssignExprNoComma()
		if err != nil {
			return ast.ObjectLiteralEntry{}, err
		}
		return ast.ObjectLiteralEntry{
			Span: spanBetween(start, v.GetSpan()), Kind: ast.ObjectEntryProp,
			Key: key, Computed: computed, Value: v,
		}, nil

	case p.at(token.Assign):
		// Shorthand-with-default, valid only when later converted to a
		// destructuring pattern via ast.ExprToPattern.
		p.advance()
		def, err := p.parseAssignExprNoComma()
		if err != nil {
			return ast.ObjectLiteralEntry{}, err
		}
		return ast.ObjectLiteralEntry{
			Span: spanBetween(start, def.GetSpan()), Kind: ast.ObjectEntryShorthandDefault,
			Key: key, Value: def,
		}, nil

	default:
		return ast.ObjectLiteralEntry{Span: start, Kind: ast.ObjectEntryIdent, Key: key, Value: key}, nil
	}
}

// peekMethodModifiers speculatively checks whether the current position is
// `async`/`*`/`get`/`set` preceding a property key, without committing to
// consuming them unless the shape actually matches a method.
func (p *Parser) peekMethodModifiers() (isAsync, isGenerator, isGetter, isSetter bool) {
	if p.at(token.Star) {
		p.advance()
		isGenerator = true
		return
	}
	if p.at(token.Async) {
		snap := p.clone()
		snap.advance()
		if snap.curErr == nil && snap.cur.Kind.CanStartObjectPropertyName() && snap.cur.Kind != token.Colon {
			p.commit(snap)
			isAsync = true
			if p.at(token.Star) {
				p.advance()
				isGenerator = true
			}
			return
		}
	}
	if p.at(token.Ident) && (p.cur.Text == "get" || p.cur.Text == "set") {
		isGetterCandidate := p.cur.Text == "get"
		snap := p.clone()
		snap.advance()
		if snap.curErr == nil && snap.cur.Kind.CanStartObjectPropertyName() {
			p.commit(snap)
			if isGetterCandidate {
				isGetter = true
			} else {
				isSetter = true
			}
		}
	}
	return
}

func (p *Parser) parsePropertyKey() (ast.Expr, bool, error) {
	if p.curErr != nil {
		return nil, false, p.curErr
	}
	if p.at(token.LBracket) {
		p.advance()
		e, err := p.parseAssignExpr()
		if err != nil {
			return nil, false, err
		}
		if _, err := p.expect(token.RBracket); err != nil {
			return nil, false, err
		}
		return e, true, nil
	}
	switch p.cur.Kind {
	case token.String:
		tok := p.advance()
		return &ast.StringLiteralExpr{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: tok.Span}}, Value: decodeStringLiteral(tok.Text), Raw: tok.Text}, false, nil
	case token.Number:
		tok := p.advance()
		return &ast.NumberLiteralExpr{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: tok.Span}}, Raw: tok.Text}, false, nil
	}
	if !p.cur.Kind.CanStartObjectPropertyName() {
		return nil, false, perr.NewUnexpectedToken(p.cur.Line, token.Ident, p.cur.Kind)
	}
	tok := p.advance()
	return &ast.IdentExpr{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: tok.Span}}, Name: tok.Text}, false, nil
}

// ---- template literals ----

func (p *Parser) parseTemplateLiteral() (ast.Expr, error) {
	start := p.cur.Span
	var parts []ast.TemplatePart
	for {
		if p.curErr != nil {
			return nil, p.curErr
		}
		if p.cur.Kind != token.TemplateLiteralFragment {
			return nil, perr.NewUnexpectedToken(p.cur.Line, token.TemplateLiteralFragment, p.cur.Kind)
		}
		tok := p.cur
		cooked, endsInterp := decodeTemplateFragment(tok.Text)
		parts = append(parts, ast.TemplatePart{Span: tok.Span, Cooked: cooked})
		if !endsInterp {
			end := tok.Span
			p.advance()
			return &ast.TemplateLiteralExpr{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: spanBetween(start, end)}}, Parts: parts}, nil
		}
		// Enter interpolation mode before pulling the lookahead token for
		// the expression: the lexer must already know it is inside a
		// template interpolation by the time it reads the first token
		// after "${", or a nested '{'/'}' in the expression (e.g. an
		// object literal) won't be depth-tracked correctly.
		p.advanceIntoTemplateInterpolation()
		exprNode, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		parts = append(parts, ast.TemplatePart{Span: exprNode.GetSpan(), Expr: exprNode})
		// The lexer itself consumes the interpolation-closing '}' once
		// templateDepths' top entry reaches zero, and resumes scanning as
		// template text — so cur is already the next TemplateLiteralFragment
		// (e.g. "}c`"), never an RBrace. Loop back to the top to consume it.
	}
}

// ---- string / template decoding ----

func decodeStringLiteral(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	return decodeEscapes(raw[1 : len(raw)-1])
}

// decodeTemplateFragment strips the leading backtick/`}` and trailing
// backtick/`${` delimiters from a template fragment token's raw text and
// reports whether the fragment ends by opening an interpolation.
func decodeTemplateFragment(raw string) (cooked string, endsInterp bool) {
	body := raw
	if len(body) > 0 && (body[0] == '`' || body[0] == '}') {
		body = body[1:]
	}
	if len(body) > 0 && body[len(body)-1] == '`' {
		return decodeEscapes(body[:len(body)-1]), false
	}
	if len(body) >= 2 && body[len(body)-2] == '$' && body[len(body)-1] == '{' {
		return decodeEscapes(body[:len(body)-2]), true
	}
	return decodeEscapes(body), false
}

func decodeEscapes(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			out = append(out, s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			out = append(out, '\n')
		case 't':
			out = append(out, '\t')
		case 'r':
			out = append(out, '\r')
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case 'v':
			out = append(out, '\v')
		case '0':
			out = append(out, 0)
		case 'x':
			if i+2 < len(s) {
				if v, err := strconv.ParseUint(s[i+1:i+3], 16, 32); err == nil {
					out = utf8.AppendRune(out, rune(v))
					i += 2
					continue
				}
			}
			out = append(out, s[i])
		case 'u':
			if i+1 < len(s) && s[i+1] == '{' {
				if closeIdx := strings.IndexByte(s[i+2:], '}'); closeIdx >= 0 {
					if v, err := strconv.ParseUint(s[i+2:i+2+closeIdx], 16, 32); err == nil {
						out = utf8.AppendRune(out, rune(v))
						i = i + 2 + closeIdx
						continue
					}
				}
				out = append(out, s[i])
			} else if i+4 < len(s) {
				if v, err := strconv.ParseUint(s[i+1:i+5], 16, 32); err == nil {
					out = utf8.AppendRune(out, rune(v))
					i += 4
					continue
				}
				out = append(out, s[i])
			} else {
				out = append(out, s[i])
			}
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}
