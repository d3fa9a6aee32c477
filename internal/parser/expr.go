package parser

import (
	"ecmafront/internal/ast"
	"ecmafront/internal/perr"
	"ecmafront/internal/span"
	"ecmafront/internal/token"
)

// parseExpression parses a full expression, including the comma operator.
func (p *Parser) parseExpression() (ast.Expr, error) {
	first, err := p.parseAssignExpr()
	if err != nil {
		return nil, err
	}
	if !p.at(token.Comma) {
		return first, nil
	}
	exprs := []ast.Expr{first}
	for p.at(token.Comma) {
		p.advance()
		next, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, next)
	}
	return &ast.SequenceExpr{
		ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: spanBetween(exprs[0].GetSpan(), exprs[len(exprs)-1].GetSpan())}},
		Exprs:    exprs,
	}, nil
}

// parseAssignExprNoComma is parseAssignExpr; named separately at call sites
// (array/object/call-argument positions) where the comma operator must not
// be swallowed into a single element.
func (p *Parser) parseAssignExprNoComma() (ast.Expr, error) {
	return p.parseAssignExpr()
}

// parseAssignExpr handles assignment (right-associative) and the
// conditional/yield/arrow forms that only make sense at this level.
func (p *Parser) parseAssignExpr() (ast.Expr, error) {
	if p.at(token.Yield) {
		return p.parseYieldExpr()
	}

	left, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	if p.curErr == nil && isAssignOp(p.cur.Kind) {
		if !isAssignableTarget(left) {
			return nil, perr.NewParseMessage(p.cur.Line, "invalid assignment target")
		}
		switch left.(type) {
		case *ast.ArrayLiteralExpr, *ast.ObjectLiteralExpr:
			if p.cur.Kind == token.Assign {
				if _, err := ast.ExprToPattern(left); err != nil {
					return nil, perr.NewParseMessage(p.cur.Line, "invalid assignment target")
				}
			}
		}
		op := p.cur.Kind
		p.advance()
		value, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		return &ast.AssignExpr{
			ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: spanBetween(left.GetSpan(), value.GetSpan())}},
			Op:       op,
			Target:   left,
			Value:    value,
		}, nil
	}
	return left, nil
}

// isAssignableTarget reports whether e has a shape that can appear on the
// left of an assignment: a reference (identifier or member access) or an
// array/object literal destined for later conversion to a destructuring
// pattern via ast.ExprToPattern. Everything else (literals, calls, unary
// and binary expressions, ...) is rejected here rather than left to fail
// confusingly once evaluated.
func isAssignableTarget(e ast.Expr) bool {
	switch e.(type) {
	case *ast.IdentExpr, *ast.PropExpr, *ast.IndexExpr, *ast.ArrayLiteralExpr, *ast.ObjectLiteralExpr:
		return true
	default:
		return false
	}
}

func (p *Parser) parseYieldExpr() (ast.Expr, error) {
	start := p.cur.Span
	p.advance() // consume 'yield'
	delegate := false
	if p.at(token.Star) {
		p.advance()
		delegate = true
	}
	var arg ast.Expr
	if p.canStartExpression() {
		var err error
		arg, err = p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
	}
	end := start
	if arg != nil {
		end = arg.GetSpan()
	}
	return &ast.YieldExpr{
		ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: spanBetween(start, end)}},
		Argument: arg,
		Delegate: delegate,
	}, nil
}

// canStartExpression reports whether the current token can begin an
// expression, used to detect a bare `yield;`/`return;` with no operand.
func (p *Parser) canStartExpression() bool {
	if p.curErr != nil {
		return false
	}
	switch p.cur.Kind {
	case token.Semi, token.RBrace, token.RParen, token.RBracket, token.Comma, token.EndOfFile, token.Colon:
		return false
	}
	if p.hasLast && p.cur.Line > p.last.Line {
		// A bare yield/return at end of line followed by a new statement on
		// the next line is treated as having no operand, matching ASI.
		return false
	}
	return true
}

func (p *Parser) parseConditional() (ast.Expr, error) {
	test, err := p.parseBinary(bpNullish)
	if err != nil {
		return nil, err
	}
	if !p.at(token.Question) {
		return test, nil
	}
	p.advance()
	consequent, err := p.parseAssignExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Colon); err != nil {
		return nil, err
	}
	alternate, err := p.parseAssignExpr()
	if err != nil {
		return nil, err
	}
	return &ast.ConditionalExpr{
		ExprBase:   ast.ExprBase{NodeBase: ast.NodeBase{Span: spanBetween(test.GetSpan(), alternate.GetSpan())}},
		Test:       test,
		Consequent: consequent,
		Alternate:  alternate,
	}, nil
}

// parseBinary implements precedence climbing for the binary operator
// ladder (nullish through exponent). minBP is the lowest binding power the
// caller will accept; operators below it end the loop.
func (p *Parser) parseBinary(minBP int) (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		if p.curErr != nil {
			return left, nil
		}
		op := p.cur.Kind
		bp := infixBP(op)
		if bp == bpNone || bp < minBP {
			return left, nil
		}
		p.advance()
		// '**' is right-associative; everything else here is left-associative.
		nextMin := bp + 1
		if op == token.StarStar {
			nextMin = bp
		}
		right, err := p.parseBinary(nextMin)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{
			ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: spanBetween(left.GetSpan(), right.GetSpan())}},
			Op:       op,
			Left:     left,
			Right:    right,
		}
	}
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.curErr != nil {
		return nil, p.curErr
	}
	start := p.cur.Span
	switch p.cur.Kind {
	case token.Bang, token.Tilde, token.Plus, token.Minus, token.TypeOf, token.Void, token.Delete:
		op := unaryOpFor(p.cur.Kind)
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{
			ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: spanBetween(start, operand.GetSpan())}},
			Op:       op,
			Operand:  operand,
		}, nil
	case token.Await:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.AwaitExpr{
			ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: spanBetween(start, operand.GetSpan())}},
			Operand:  operand,
		}, nil
	case token.PlusPlus, token.MinusMinus:
		increment := p.cur.Kind == token.PlusPlus
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UpdateExpr{
			ExprBase:  ast.ExprBase{NodeBase: ast.NodeBase{Span: spanBetween(start, operand.GetSpan())}},
			Increment: increment,
			Prefix:    true,
			Operand:   operand,
		}, nil
	default:
		return p.parsePostfix()
	}
}

func unaryOpFor(k token.Kind) ast.UnaryOp {
	switch k {
	case token.Bang:
		return ast.UnaryNot
	case token.Tilde:
		return ast.UnaryBitNot
	case token.Plus:
		return ast.UnaryPlus
	case token.Minus:
		return ast.UnaryMinus
	case token.TypeOf:
		return ast.UnaryTypeOf
	case token.Void:
		return ast.UnaryVoid
	case token.Delete:
		return ast.UnaryDelete
	default:
		return ast.UnaryNot
	}
}

// parsePostfix parses a left-hand-side expression followed by an optional
// postfix ++ / --, which per the grammar may not be separated from its
// operand by a line break (ASI again).
func (p *Parser) parsePostfix() (ast.Expr, error) {
	operand, err := p.parseLeftHandSide()
	if err != nil {
		return nil, err
	}
	if p.curErr == nil && (p.cur.Kind == token.PlusPlus || p.cur.Kind == token.MinusMinus) {
		if p.hasLast && p.cur.Line > p.last.Line {
			return operand, nil
		}
		increment := p.cur.Kind == token.PlusPlus
		end := p.cur.Span
		p.advance()
		return &ast.UpdateExpr{
			ExprBase:  ast.ExprBase{NodeBase: ast.NodeBase{Span: spanBetween(operand.GetSpan(), end)}},
			Increment: increment,
			Prefix:    false,
			Operand:   operand,
		}, nil
	}
	return operand, nil
}

// parseLeftHandSide parses new/call/member chains: `new X()`, `f(a).b[c]`,
// `a?.b?.(c)`, and so on.
func (p *Parser) parseLeftHandSide() (ast.Expr, error) {
	var expr ast.Expr
	var err error
	if p.at(token.New) {
		expr, err = p.parseNewExpr()
	} else {
		expr, err = p.parsePrimary()
	}
	if err != nil {
		return nil, err
	}
	return p.parseCallTail(expr)
}

func (p *Parser) parseNewExpr() (ast.Expr, error) {
	start := p.cur.Span
	p.advance() // consume 'new'
	if p.at(token.Dot) {
		// `new.target` — not modeled as a distinct node; treated as a property
		// access on a synthetic `new` identifier, matching the lexical shape.
		p.advance()
		prop, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		return &ast.PropExpr{
			ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: spanBetween(start, prop.Span)}},
			Object:   &ast.IdentExpr{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: start}}, Name: "new"},
			Property: prop.Text,
		}, nil
	}
	var callee ast.Expr
	var err error
	if p.at(token.New) {
		callee, err = p.parseNewExpr()
	} else {
		callee, err = p.parsePrimary()
	}
	if err != nil {
		return nil, err
	}
	callee, err = p.parseMemberTailOnly(callee)
	if err != nil {
		return nil, err
	}
	args, end, err := p.tryParseArguments()
	if err != nil {
		return nil, err
	}
	if end.End == 0 && end.Start == 0 {
		end = callee.GetSpan()
	}
	return &ast.NewExpr{
		ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: spanBetween(start, end)}},
		Callee:   callee,
		Args:     args,
	}, nil
}

// tryParseArguments parses a call argument list if the current token is
// '(', returning a nil list and a zero span (no error) if there is none —
// `new Foo` with no argument list is valid ECMAScript.
func (p *Parser) tryParseArguments() ([]ast.Expr, span.Span, error) {
	if !p.at(token.LParen) {
		return nil, span.Span{}, nil
	}
	args, end, err := p.parseArgumentList()
	return args, end, err
}

func (p *Parser) parseArgumentList() ([]ast.Expr, span.Span, error) {
	p.advance() // consume '('
	var args []ast.Expr
	for !p.at(token.RParen) {
		if p.curErr != nil {
			return nil, span.Span{}, p.curErr
		}
		if p.at(token.Spread) {
			start := p.cur.Span
			p.advance()
			argExpr, err := p.parseAssignExprNoComma()
			if err != nil {
				return nil, span.Span{}, err
			}
			args = append(args, &ast.SpreadExpr{
				ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: spanBetween(start, argExpr.GetSpan())}},
				Argument: argExpr,
			})
		} else {
			argExpr, err := p.parseAssignExprNoComma()
			if err != nil {
				return nil, span.Span{}, err
			}
			args = append(args, argExpr)
		}
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	closeTok, err := p.expect(token.RParen)
	if err != nil {
		return nil, span.Span{}, err
	}
	return args, closeTok.Span, nil
}

// parseMemberTailOnly parses only '.' / '[' chains (no calls), used while
// resolving `new Callee.member(args)` — the call belongs to the outermost
// `new`, not to the member chain.
func (p *Parser) parseMemberTailOnly(expr ast.Expr) (ast.Expr, error) {
	for {
		switch {
		case p.at(token.Dot):
			p.advance()
			nameTok, err := p.expectPropertyName()
			if err != nil {
				return nil, err
			}
			expr = &ast.PropExpr{
				ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: spanBetween(expr.GetSpan(), nameTok.Span)}},
				Object:   expr,
				Property: nameTok.Text,
			}
		case p.at(token.LBracket):
			p.advance()
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			closeTok, err := p.expect(token.RBracket)
			if err != nil {
				return nil, err
			}
			expr = &ast.IndexExpr{
				ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: spanBetween(expr.GetSpan(), closeTok.Span)}},
				Object:   expr,
				Index:    index,
			}
		default:
			return expr, nil
		}
	}
}

// parseCallTail parses the full postfix chain: member access, computed
// member access, calls, and optional-chaining variants of each.
func (p *Parser) parseCallTail(expr ast.Expr) (ast.Expr, error) {
	for {
		switch {
		case p.at(token.Dot):
			p.advance()
			nameTok, err := p.expectPropertyName()
			if err != nil {
				return nil, err
			}
			expr = &ast.PropExpr{
				ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: spanBetween(expr.GetSpan(), nameTok.Span)}},
				Object:   expr,
				Property: nameTok.Text,
			}
		case p.at(token.QuestionDot):
			p.advance()
			if p.at(token.LParen) {
				args, end, err := p.parseArgumentList()
				if err != nil {
					return nil, err
				}
				expr = &ast.CallExpr{
					ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: spanBetween(expr.GetSpan(), end)}},
					Callee:   expr, Args: args, Optional: true,
				}
				continue
			}
			if p.at(token.LBracket) {
				p.advance()
				index, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				closeTok, err := p.expect(token.RBracket)
				if err != nil {
					return nil, err
				}
				expr = &ast.IndexExpr{
					ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: spanBetween(expr.GetSpan(), closeTok.Span)}},
					Object:   expr, Index: index, Optional: true,
				}
				continue
			}
			nameTok, err := p.expectPropertyName()
			if err != nil {
				return nil, err
			}
			expr = &ast.PropExpr{
				ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: spanBetween(expr.GetSpan(), nameTok.Span)}},
				Object:   expr, Property: nameTok.Text, Optional: true,
			}
		case p.at(token.LBracket):
			p.advance()
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			closeTok, err := p.expect(token.RBracket)
			if err != nil {
				return nil, err
			}
			expr = &ast.IndexExpr{
				ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: spanBetween(expr.GetSpan(), closeTok.Span)}},
				Object:   expr,
				Index:    index,
			}
		case p.at(token.LParen):
			args, end, err := p.parseArgumentList()
			if err != nil {
				return nil, err
			}
			expr = &ast.CallExpr{
				ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: spanBetween(expr.GetSpan(), end)}},
				Callee:   expr,
				Args:     args,
			}
		case p.at(token.TemplateLiteralFragment) && len(p.cur.Text) > 0 && p.cur.Text[0] == '`':
			// Tagged templates reuse the call node shape: the template
			// literal becomes the sole argument. Only a fragment that opens a
			// template (starts with '`') can be a tag's argument; one that
			// starts with '}' continues an enclosing template literal.
			tpl, err := p.parseTemplateLiteral()
			if err != nil {
				return nil, err
			}
			expr = &ast.CallExpr{
				ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: spanBetween(expr.GetSpan(), tpl.GetSpan())}},
				Callee:   expr,
				Args:     []ast.Expr{tpl},
			}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) expectPropertyName() (token.Token, error) {
	if p.curErr != nil {
		return token.Token{}, p.curErr
	}
	if !p.cur.Kind.CanStartObjectPropertyName() {
		return token.Token{}, perr.NewUnexpectedToken(p.cur.Line, token.Ident, p.cur.Kind)
	}
	return p.advance(), nil
}
