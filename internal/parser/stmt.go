package parser

import (
	"ecmafront/internal/ast"
	"ecmafront/internal/perr"
	"ecmafront/internal/span"
	"ecmafront/internal/token"
)

// parseStatement dispatches on the current token to the statement-grammar
// production it starts, falling back to a labeled statement (one token of
// lookahead past an identifier) or a bare expression statement.
func (p *Parser) parseStatement() (ast.Stmt, error) {
	if p.curErr != nil {
		return nil, p.curErr
	}

	switch p.cur.Kind {
	case token.LBrace:
		return p.parseBlock()
	case token.Var, token.Let, token.Const:
		return p.parseVarDeclStmt()
	case token.If:
		return p.parseIfStmt()
	case token.While:
		return p.parseWhileStmt()
	case token.Do:
		return p.parseDoWhileStmt()
	case token.For:
		return p.parseForStmt()
	case token.Switch:
		return p.parseSwitchStmt()
	case token.Try:
		return p.parseTryStmt()
	case token.Throw:
		return p.parseThrowStmt()
	case token.Break:
		return p.parseBreakStmt()
	case token.Continue:
		return p.parseContinueStmt()
	case token.Return:
		return p.parseReturnStmt()
	case token.Function:
		return p.parseFunctionDecl()
	case token.Class:
		return p.parseClassDecl()
	case token.Debugger:
		return p.parseDebuggerStmt()
	case token.With:
		return p.parseWithStmt()
	case token.Semi:
		return p.parseEmptyStmt()
	case token.Async:
		snap := p.clone()
		snap.advance()
		if snap.curErr == nil && snap.cur.Kind == token.Function && !(snap.hasLast && snap.cur.Line > snap.last.Line) {
			return p.parseAsyncFunctionDecl()
		}
	}

	if p.at(token.Ident) {
		snap := p.clone()
		snap.advance()
		if snap.curErr == nil && snap.cur.Kind == token.Colon {
			return p.parseLabeledStmt()
		}
	}

	return p.parseExprStmt()
}

// parseBlock parses a brace-delimited statement list.
func (p *Parser) parseBlock() (*ast.BlockStmt, error) {
	start := p.cur.Span
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	var body []ast.Stmt
	for !p.at(token.RBrace) {
		if p.curErr != nil {
			return nil, p.curErr
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	closeTok, err := p.expect(token.RBrace)
	if err != nil {
		return nil, err
	}
	return &ast.BlockStmt{StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: spanBetween(start, closeTok.Span)}}, Body: body}, nil
}

func (p *Parser) varKindFor(k token.Kind) ast.VarKind {
	switch k {
	case token.Let:
		return ast.VarKindLet
	case token.Const:
		return ast.VarKindConst
	default:
		return ast.VarKindVar
	}
}

// parseVarDeclarators parses one or more comma-separated
// `binding (= initializer)?` declarators; 'var'/'let'/'const' has already
// been consumed.
func (p *Parser) parseVarDeclarators() ([]ast.VarDeclarator, error) {
	var decls []ast.VarDeclarator
	for {
		start := p.cur.Span
		id, err := p.parseBindingTarget()
		if err != nil {
			return nil, err
		}
		var init ast.Expr
		end := id.GetSpan()
		if p.at(token.Assign) {
			p.advance()
			init, err = p.parseAssignExprNoComma()
			if err != nil {
				return nil, err
			}
			end = init.GetSpan()
		}
		decls = append(decls, ast.VarDeclarator{Span: spanBetween(start, end), ID: id, Init: init})
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	return decls, nil
}

func (p *Parser) parseVarDeclStmt() (ast.Stmt, error) {
	start := p.cur.Span
	kind := p.varKindFor(p.cur.Kind)
	p.advance()
	decls, err := p.parseVarDeclarators()
	if err != nil {
		return nil, err
	}
	if err := p.expectSemi(); err != nil {
		return nil, err
	}
	return &ast.VarDeclStmt{
		StmtBase:    ast.StmtBase{NodeBase: ast.NodeBase{Span: spanBetween(start, decls[len(decls)-1].Span)}},
		Kind:        kind,
		Declarators: decls,
	}, nil
}

// ---- if / while / do-while ----

func (p *Parser) parseIfStmt() (ast.Stmt, error) {
	start := p.cur.Span
	p.advance() // 'if'
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	test, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	consequent, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	var alternate ast.Stmt
	end := consequent.GetSpan()
	if p.at(token.Else) {
		p.advance()
		alternate, err = p.parseStatement()
		if err != nil {
			return nil, err
		}
		end = alternate.GetSpan()
	}
	return &ast.IfStmt{
		StmtBase:   ast.StmtBase{NodeBase: ast.NodeBase{Span: spanBetween(start, end)}},
		Test:       test,
		Consequent: consequent,
		Alternate:  alternate,
	}, nil
}

func (p *Parser) parseWhileStmt() (ast.Stmt, error) {
	start := p.cur.Span
	p.advance() // 'while'
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	test, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{
		StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: spanBetween(start, body.GetSpan())}},
		Test:     test,
		Body:     body,
	}, nil
}

func (p *Parser) parseDoWhileStmt() (ast.Stmt, error) {
	start := p.cur.Span
	p.advance() // 'do'
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.While); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	test, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	closeTok, err := p.expect(token.RParen)
	if err != nil {
		return nil, err
	}
	// The trailing ';' after `do ... while (test)` is always optional,
	// regardless of line position — a looser rule than ordinary ASI.
	end := closeTok.Span
	if p.at(token.Semi) {
		tok := p.advance()
		end = tok.Span
	}
	return &ast.DoWhileStmt{
		StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: spanBetween(start, end)}},
		Body:     body,
		Test:     test,
	}, nil
}

// ---- for / for-in / for-of ----

func (p *Parser) parseForStmt() (ast.Stmt, error) {
	start := p.cur.Span
	forInOfSnap := p.clone()
	if stmt, err := forInOfSnap.tryParseForInOf(start); err == nil {
		p.commit(forInOfSnap)
		return stmt, nil
	}
	return p.parseClassicForStmt(start)
}

// tryParseForInOf speculatively parses `for (left in/of right) body`; run
// against a clone so a failed attempt (it's actually a classic C-style for)
// leaves the caller's parser state untouched.
func (p *Parser) tryParseForInOf(start span.Span) (ast.Stmt, error) {
	p.advance() // 'for'
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}

	var left ast.Node
	if p.atAny(token.Var, token.Let, token.Const) {
		kindStart := p.cur.Span
		kind := p.varKindFor(p.cur.Kind)
		p.advance()
		target, err := p.parseBindingTarget()
		if err != nil {
			return nil, err
		}
		left = &ast.VarDeclStmt{
			StmtBase:    ast.StmtBase{NodeBase: ast.NodeBase{Span: spanBetween(kindStart, target.GetSpan())}},
			Kind:        kind,
			Declarators: []ast.VarDeclarator{{Span: target.GetSpan(), ID: target}},
		}
	} else {
		// A left-hand-side expression, not a full assignment expression, so
		// that the `in` of `for (x in obj)` is not read as a binary operator.
		expr, err := p.parseLeftHandSide()
		if err != nil {
			return nil, err
		}
		pat, err := ast.ExprToPattern(expr)
		if err != nil {
			return nil, err
		}
		left = pat
	}

	isOf := false
	switch {
	case p.at(token.In):
		p.advance()
	case p.at(token.Of):
		isOf = true
		p.advance()
	default:
		return nil, perr.NewUnexpectedToken(p.cur.Line, token.In, p.cur.Kind)
	}

	right, err := p.parseAssignExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.ForInOrOfStmt{
		StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: spanBetween(start, body.GetSpan())}},
		Left:     left,
		Right:    right,
		Body:     body,
		Of:       isOf,
	}, nil
}

func (p *Parser) parseClassicForStmt(start span.Span) (ast.Stmt, error) {
	p.advance() // 'for'
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}

	var init ast.Node
	switch {
	case p.at(token.Semi):
		// No initializer: filled with a synthesized zero-width numeric
		// literal so ForStmt.Init is never nil.
		pos := p.cur.Span.Start
		init = &ast.NumberLiteralExpr{
			ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: span.Span{Start: pos, End: pos}}},
			Raw:      "0",
		}
	case p.atAny(token.Var, token.Let, token.Const):
		kindStart := p.cur.Span
		kind := p.varKindFor(p.cur.Kind)
		p.advance()
		decls, err := p.parseVarDeclarators()
		if err != nil {
			return nil, err
		}
		init = &ast.VarDeclStmt{
			StmtBase:    ast.StmtBase{NodeBase: ast.NodeBase{Span: spanBetween(kindStart, decls[len(decls)-1].Span)}},
			Kind:        kind,
			Declarators: decls,
		}
	default:
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		init = expr
	}
	if _, err := p.expect(token.Semi); err != nil {
		return nil, err
	}

	var test ast.Expr
	if !p.at(token.Semi) {
		var err error
		test, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.Semi); err != nil {
		return nil, err
	}

	var update ast.Expr
	if !p.at(token.RParen) {
		var err error
		update, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.ForStmt{
		StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: spanBetween(start, body.GetSpan())}},
		Init:     init,
		Test:     test,
		Update:   update,
		Body:     body,
	}, nil
}

// ---- switch ----

func (p *Parser) parseSwitchStmt() (ast.Stmt, error) {
	start := p.cur.Span
	p.advance() // 'switch'
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	discriminant, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}

	var cases []ast.SwitchCase
	for !p.at(token.RBrace) {
		if p.curErr != nil {
			return nil, p.curErr
		}
		caseStart := p.cur.Span
		var test ast.Expr
		switch {
		case p.at(token.Case):
			p.advance()
			test, err = p.parseExpression()
			if err != nil {
				return nil, err
			}
		case p.at(token.Default):
			p.advance()
		default:
			return nil, perr.NewUnexpectedToken(p.cur.Line, token.Case, p.cur.Kind)
		}
		if _, err := p.expect(token.Colon); err != nil {
			return nil, err
		}
		var body []ast.Stmt
		for !p.atAny(token.Case, token.Default, token.RBrace) {
			if p.curErr != nil {
				return nil, p.curErr
			}
			stmt, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			body = append(body, stmt)
		}
		end := caseStart
		if len(body) > 0 {
			end = body[len(body)-1].GetSpan()
		}
		cases = append(cases, ast.SwitchCase{Span: spanBetween(caseStart, end), Test: test, Body: body})
	}
	closeTok, err := p.expect(token.RBrace)
	if err != nil {
		return nil, err
	}
	return &ast.SwitchStmt{
		StmtBase:     ast.StmtBase{NodeBase: ast.NodeBase{Span: spanBetween(start, closeTok.Span)}},
		Discriminant: discriminant,
		Cases:        cases,
	}, nil
}

// ---- try ----

func (p *Parser) parseTryStmt() (ast.Stmt, error) {
	start := p.cur.Span
	p.advance() // 'try'
	block, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	var handler *ast.CatchClause
	if p.at(token.Catch) {
		catchStart := p.cur.Span
		p.advance()
		var param ast.Pattern
		if p.at(token.LParen) {
			p.advance()
			param, err = p.parseBindingTarget()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RParen); err != nil {
				return nil, err
			}
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		handler = &ast.CatchClause{Span: spanBetween(catchStart, body.Span), Param: param, Body: body}
	}

	var finalizer *ast.BlockStmt
	if p.at(token.Finally) {
		p.advance()
		finalizer, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}

	if handler == nil && finalizer == nil {
		return nil, perr.NewParseMessage(p.cur.Line, "try statement requires a catch or finally clause")
	}

	end := block.Span
	switch {
	case finalizer != nil:
		end = finalizer.Span
	case handler != nil:
		end = handler.Body.Span
	}
	return &ast.TryStmt{
		StmtBase:  ast.StmtBase{NodeBase: ast.NodeBase{Span: spanBetween(start, end)}},
		Block:     block,
		Handler:   handler,
		Finalizer: finalizer,
	}, nil
}

// ---- jump / misc statements ----

func (p *Parser) parseThrowStmt() (ast.Stmt, error) {
	start := p.cur.Span
	p.advance() // 'throw'
	arg, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectSemi(); err != nil {
		return nil, err
	}
	return &ast.ThrowStmt{
		StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: spanBetween(start, arg.GetSpan())}},
		Argument: arg,
	}, nil
}

func (p *Parser) parseReturnStmt() (ast.Stmt, error) {
	start := p.cur.Span
	p.advance() // 'return'
	var arg ast.Expr
	end := start
	if p.canStartExpression() {
		var err error
		arg, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
		end = arg.GetSpan()
	}
	if err := p.expectSemi(); err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{
		StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: spanBetween(start, end)}},
		Argument: arg,
	}, nil
}

func (p *Parser) parseBreakStmt() (ast.Stmt, error) {
	start := p.cur.Span
	p.advance() // 'break'
	label, end := p.parseOptionalLabel(start)
	if err := p.expectSemi(); err != nil {
		return nil, err
	}
	return &ast.BreakStmt{StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: spanBetween(start, end)}}, Label: label}, nil
}

func (p *Parser) parseContinueStmt() (ast.Stmt, error) {
	start := p.cur.Span
	p.advance() // 'continue'
	label, end := p.parseOptionalLabel(start)
	if err := p.expectSemi(); err != nil {
		return nil, err
	}
	return &ast.ContinueStmt{StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: spanBetween(start, end)}}, Label: label}, nil
}

// parseOptionalLabel parses the label identifier following break/continue,
// which per ASI must appear on the same source line as the keyword.
func (p *Parser) parseOptionalLabel(kwSpan span.Span) (*string, span.Span) {
	if p.at(token.Ident) && p.hasLast && p.cur.Line == p.last.Line {
		name := p.cur.Text
		tok := p.advance()
		return &name, tok.Span
	}
	return nil, kwSpan
}

func (p *Parser) parseDebuggerStmt() (ast.Stmt, error) {
	tok := p.advance()
	if err := p.expectSemi(); err != nil {
		return nil, err
	}
	return &ast.DebuggerStmt{StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: tok.Span}}}, nil
}

func (p *Parser) parseEmptyStmt() (ast.Stmt, error) {
	tok := p.advance()
	return &ast.EmptyStmt{StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: tok.Span}}}, nil
}

func (p *Parser) parseWithStmt() (ast.Stmt, error) {
	start := p.cur.Span
	p.advance() // 'with'
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	obj, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.WithStmt{
		StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: spanBetween(start, body.GetSpan())}},
		Object:   obj,
		Body:     body,
	}, nil
}

func (p *Parser) parseLabeledStmt() (ast.Stmt, error) {
	start := p.cur.Span
	label := p.cur.Text
	p.advance() // label identifier
	p.advance() // ':'
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.LabeledStmt{
		StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: spanBetween(start, body.GetSpan())}},
		Label:    label,
		Body:     body,
	}, nil
}

func (p *Parser) parseAsyncFunctionDecl() (ast.Stmt, error) {
	start := p.cur.Span
	p.advance() // 'async'
	p.advance() // 'function'
	fn, err := p.parseFunctionTail(start, true)
	if err != nil {
		return nil, err
	}
	if fn.Name == nil {
		return nil, perr.NewUnexpectedToken(p.cur.Line, token.Ident, p.cur.Kind)
	}
	return &ast.FunctionDeclStmt{StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: fn.Span}}, Fn: fn}, nil
}

func (p *Parser) parseExprStmt() (ast.Stmt, error) {
	start := p.cur.Span
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectSemi(); err != nil {
		return nil, err
	}
	return &ast.ExprStmt{
		StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: spanBetween(start, expr.GetSpan())}},
		Expr:     expr,
	}, nil
}
