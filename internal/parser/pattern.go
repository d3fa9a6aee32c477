package parser

import (
	"ecmafront/internal/ast"
	"ecmafront/internal/perr"
	"ecmafront/internal/token"
)

// parseParamList parses a parenthesized, comma-separated parameter list,
// including rest parameters and defaulted parameters.
func (p *Parser) parseParamList() ([]ast.Pattern, error) {
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	var params []ast.Pattern
	for !p.at(token.RParen) {
		if p.curErr != nil {
			return nil, p.curErr
		}
		if p.at(token.Spread) {
			start := p.cur.Span
			p.advance()
			arg, err := p.parseBindingTarget()
			if err != nil {
				return nil, err
			}
			params = append(params, &ast.RestPattern{
				PatternBase: ast.PatternBase{NodeBase: ast.NodeBase{Span: spanBetween(start, arg.GetSpan())}},
				Argument:    arg,
			})
		} else {
			elem, err := p.parseBindingElement()
			if err != nil {
				return nil, err
			}
			params = append(params, elem)
		}
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return params, nil
}

// parseBindingElement parses a single binding target, followed by an
// optional `= default` initializer.
func (p *Parser) parseBindingElement() (ast.Pattern, error) {
	target, err := p.parseBindingTarget()
	if err != nil {
		return nil, err
	}
	if !p.at(token.Assign) {
		return target, nil
	}
	p.advance()
	def, err := p.parseAssignExprNoComma()
	if err != nil {
		return nil, err
	}
	return &ast.AssignmentPattern{
		PatternBase: ast.PatternBase{NodeBase: ast.NodeBase{Span: spanBetween(target.GetSpan(), def.GetSpan())}},
		Target:      target,
		Default:     def,
	}, nil
}

// parseBindingTarget parses a binding form with no trailing default: a
// plain identifier, an array pattern, or an object pattern.
func (p *Parser) parseBindingTarget() (ast.Pattern, error) {
	if p.curErr != nil {
		return nil, p.curErr
	}
	switch p.cur.Kind {
	case token.LBracket:
		return p.parseArrayPattern()
	case token.LBrace:
		return p.parseObjectPattern()
	}
	if p.cur.Kind != token.Ident && !p.cur.Kind.IsKeyword() {
		return nil, perr.NewUnexpectedToken(p.cur.Line, token.Ident, p.cur.Kind)
	}
	tok := p.advance()
	return &ast.VarPattern{PatternBase: ast.PatternBase{NodeBase: ast.NodeBase{Span: tok.Span}}, Name: tok.Text}, nil
}

func (p *Parser) parseArrayPattern() (ast.Pattern, error) {
	start := p.cur.Span
	p.advance() // consume '['
	var elements []ast.Pattern
	for !p.at(token.RBracket) {
		if p.curErr != nil {
			return nil, p.curErr
		}
		if p.at(token.Comma) {
			elements = append(elements, &ast.ElisionPattern{PatternBase: ast.PatternBase{NodeBase: ast.NodeBase{Span: p.cur.Span}}})
			p.advance()
			continue
		}
		if p.at(token.Spread) {
			restStart := p.cur.Span
			p.advance()
			arg, err := p.parseBindingTarget()
			if err != nil {
				return nil, err
			}
			elements = append(elements, &ast.RestPattern{
				PatternBase: ast.PatternBase{NodeBase: ast.NodeBase{Span: spanBetween(restStart, arg.GetSpan())}},
				Argument:    arg,
			})
		} else {
			elem, err := p.parseBindingElement()
			if err != nil {
				return nil, err
			}
			elements = append(elements, elem)
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
	return &ast.ArrayPattern{
		PatternBase: ast.PatternBase{NodeBase: ast.NodeBase{Span: spanBetween(start, closeTok.Span)}},
		Elements:    elements,
	}, nil
}

func (p *Parser) parseObjectPattern() (ast.Pattern, error) {
	start := p.cur.Span
	p.advance() // consume '{'
	var props []ast.ObjectPatternProperty
	var rest *ast.RestPattern
	for !p.at(token.RBrace) {
		if p.curErr != nil {
			return nil, p.curErr
		}
		if p.at(token.Spread) {
			restStart := p.cur.Span
			p.advance()
			arg, err := p.parseBindingTarget()
			if err != nil {
				return nil, err
			}
			rest = &ast.RestPattern{
				PatternBase: ast.PatternBase{NodeBase: ast.NodeBase{Span: spanBetween(restStart, arg.GetSpan())}},
				Argument:    arg,
			}
			break
		}
		propStart := p.cur.Span
		key, computed, err := p.parsePropertyKey()
		if err != nil {
			return nil, err
		}
		if p.at(token.Colon) {
			p.advance()
			valTarget, err := p.parseBindingElement()
			if err != nil {
				return nil, err
			}
			props = append(props, ast.ObjectPatternProperty{
				Span: spanBetween(propStart, valTarget.GetSpan()), Key: key, Computed: computed, Value: valTarget,
			})
		} else {
			ident, ok := key.(*ast.IdentExpr)
			if !ok {
				return nil, perr.NewUnexpectedToken(p.cur.Line, token.Colon, p.cur.Kind)
			}
			var value ast.Pattern = &ast.VarPattern{PatternBase: ast.PatternBase{NodeBase: ast.NodeBase{Span: ident.Span}}, Name: ident.Name}
			end := ident.Span
			if p.at(token.Assign) {
				p.advance()
				def, err := p.parseAssignExprNoComma()
				if err != nil {
					return nil, err
				}
				value = &ast.AssignmentPattern{
					PatternBase: ast.PatternBase{NodeBase: ast.NodeBase{Span: spanBetween(ident.Span, def.GetSpan())}},
					Target:      value,
					Default:     def,
				}
				end = def.GetSpan()
			}
			props = append(props, ast.ObjectPatternProperty{
				Span: spanBetween(propStart, end), Key: key, Value: value, Shorthand: true,
			})
		}
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
	return &ast.ObjectPattern{
		PatternBase: ast.PatternBase{NodeBase: ast.NodeBase{Span: spanBetween(start, closeTok.Span)}},
		Properties:  props,
		Rest:        rest,
	}, nil
}
