package parser

import (
	"ecmafront/internal/ast"
	"ecmafront/internal/perr"
	"ecmafront/internal/span"
	"ecmafront/internal/token"
)

// parseFunctionExpr parses a `function` expression; isAsync is true when
// the caller has already consumed a leading `async` keyword.
func (p *Parser) parseFunctionExpr(isAsync bool) (ast.Expr, error) {
	start := p.cur.Span
	p.advance() // consume 'function'
	return p.parseFunctionExprTail(start, isAsync)
}

// parseFunctionExprTail parses the remainder of a function expression
// (generator star, optional name, params, body) given that 'function' (and
// any leading 'async') has already been consumed and start marks the
// expression's beginning.
func (p *Parser) parseFunctionExprTail(start span.Span, isAsync bool) (ast.Expr, error) {
	fn, err := p.parseFunctionTail(start, isAsync)
	if err != nil {
		return nil, err
	}
	return &ast.FunctionExpr{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: fn.Span}}, Fn: fn}, nil
}

// parseFunctionDecl parses a named `function name(params) { ... }`
// declaration; 'function' has not yet been consumed.
func (p *Parser) parseFunctionDecl() (ast.Stmt, error) {
	start := p.cur.Span
	p.advance() // consume 'function'
	fn, err := p.parseFunctionTail(start, false)
	if err != nil {
		return nil, err
	}
	if fn.Name == nil {
		return nil, perr.NewUnexpectedToken(p.cur.Line, token.Ident, p.cur.Kind)
	}
	return &ast.FunctionDeclStmt{StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: fn.Span}}, Fn: fn}, nil
}

// parseFunctionTail parses the generator star, optional name, parameter
// list, and body shared by function expressions and declarations.
func (p *Parser) parseFunctionTail(start span.Span, isAsync bool) (*ast.Function, error) {
	isGenerator := false
	if p.at(token.Star) {
		p.advance()
		isGenerator = true
	}
	var name *string
	if p.at(token.Ident) {
		n := p.cur.Text
		p.advance()
		name = &n
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Function{
		Span:        spanBetween(start, body.Span),
		Name:        name,
		Params:      params,
		Body:        body,
		IsAsync:     isAsync,
		IsGenerator: isGenerator,
	}, nil
}

// parseMethodTail parses a method's parameter list and body; the key and
// any async/generator/get/set modifiers have already been consumed by the
// caller (object-literal and class-body parsing share this).
func (p *Parser) parseMethodTail(isAsync, isGenerator bool) (*ast.Function, error) {
	start := p.cur.Span
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Function{
		Span:        spanBetween(start, body.Span),
		Params:      params,
		Body:        body,
		IsAsync:     isAsync,
		IsGenerator: isGenerator,
	}, nil
}

// ---- classes ----

func (p *Parser) parseClassExpr() (ast.Expr, error) {
	start := p.cur.Span
	p.advance() // consume 'class'
	cls, err := p.parseClassTail(start)
	if err != nil {
		return nil, err
	}
	return &ast.ClassExpr{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: cls.Span}}, Cls: cls}, nil
}

// parseClassDecl parses a named `class Name extends Super { ... }`
// declaration; 'class' has not yet been consumed.
func (p *Parser) parseClassDecl() (ast.Stmt, error) {
	start := p.cur.Span
	p.advance() // consume 'class'
	cls, err := p.parseClassTail(start)
	if err != nil {
		return nil, err
	}
	if cls.Name == nil {
		return nil, perr.NewUnexpectedToken(p.cur.Line, token.Ident, p.cur.Kind)
	}
	return &ast.ClassDeclStmt{StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: cls.Span}}, Cls: cls}, nil
}

func (p *Parser) parseClassTail(start span.Span) (*ast.Class, error) {
	var name *string
	if p.at(token.Ident) {
		n := p.cur.Text
		p.advance()
		name = &n
	}
	var super ast.Expr
	if p.at(token.Extends) {
		p.advance()
		var err error
		super, err = p.parseLeftHandSide()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	var members []ast.ClassMember
	for !p.at(token.RBrace) {
		if p.curErr != nil {
			return nil, p.curErr
		}
		if p.at(token.Semi) {
			p.advance()
			continue
		}
		member, err := p.parseClassMember()
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	closeTok, err := p.expect(token.RBrace)
	if err != nil {
		return nil, err
	}
	return &ast.Class{
		Span:       spanBetween(start, closeTok.Span),
		Name:       name,
		SuperClass: super,
		Members:    members,
	}, nil
}

func (p *Parser) parseClassMember() (ast.ClassMember, error) {
	start := p.cur.Span
	entryLine := p.cur.Line
	static := p.peekStaticModifier()

	isAsync, isGenerator, isGetter, isSetter := p.peekMethodModifiers()

	key, computed, err := p.parsePropertyKey()
	if err != nil {
		return ast.ClassMember{}, err
	}

	if p.at(token.LParen) || isAsync || isGenerator || isGetter || isSetter {
		fn, err := p.parseMethodTail(isAsync, isGenerator)
		if err != nil {
			return ast.ClassMember{}, err
		}
		if isGetter && len(fn.Params) != 0 {
			return ast.ClassMember{}, perr.NewGetterWithParams(entryLine)
		}
		kind := ast.ClassMethod
		switch {
		case isGetter:
			kind = ast.ClassGetter
		case isSetter:
			kind = ast.ClassSetter
		}
		return ast.ClassMember{
			Span: spanBetween(start, fn.Span), Kind: kind,
			Key: key, Computed: computed, Static: static, Value: fn,
		}, nil
	}

	var init ast.Expr
	end := key.GetSpan()
	if p.at(token.Assign) {
		p.advance()
		init, err = p.parseAssignExprNoComma()
		if err != nil {
			return ast.ClassMember{}, err
		}
		end = init.GetSpan()
	}
	if err := p.expectSemi(); err != nil {
		return ast.ClassMember{}, err
	}
	return ast.ClassMember{
		Span: spanBetween(start, end), Kind: ast.ClassField,
		Key: key, Computed: computed, Static: static, FieldInit: init,
	}, nil
}

// peekStaticModifier speculatively checks whether the current `static`
// token is the static-member modifier rather than a property named
// "static" (`static() {}`, `static = 1`).
func (p *Parser) peekStaticModifier() bool {
	if !p.at(token.Static) {
		return false
	}
	snap := p.clone()
	snap.advance()
	if snap.curErr == nil && snap.cur.Kind.CanStartObjectPropertyName() && snap.cur.Kind != token.Assign {
		p.commit(snap)
		return true
	}
	return false
}
