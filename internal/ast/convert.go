package ast

import (
	"fmt"

	"ecmafront/internal/token"
)

// ExprToPattern converts an already-parsed expression into a binding or
// assignment-target pattern. The parser applies this once it discovers,
// after the fact, that an expression it parsed under the object/array
// literal grammar is actually being used as a destructuring target —
// `({a, b} = obj)` and `[x, y] = pair` both parse their left side as an
// ordinary expression first. ExprToPattern is total over the set of
// expression shapes the grammar allows there; anything else is a genuine
// syntax error and is reported as such rather than panicking.
func ExprToPattern(e Expr) (Pattern, error) {
	switch n := e.(type) {
	case *IdentExpr:
		return &VarPattern{PatternBase: PatternBase{NodeBase{n.Span}}, Name: n.Name}, nil

	case *ArrayLiteralExpr:
		elements := make([]Pattern, len(n.Members))
		for i, mem := range n.Members {
			switch mem.Kind {
			case ArrayMemberElision:
				elements[i] = &ElisionPattern{PatternBase{NodeBase{mem.Span}}}
			case ArrayMemberSpread:
				inner, err := ExprToPattern(mem.Expr)
				if err != nil {
					return nil, err
				}
				elements[i] = &RestPattern{PatternBase: PatternBase{NodeBase{mem.Span}}, Argument: inner}
			case ArrayMemberExpr:
				p, err := exprMemberToPattern(mem.Expr)
				if err != nil {
					return nil, err
				}
				elements[i] = p
			}
		}
		return &ArrayPattern{PatternBase: PatternBase{NodeBase{n.Span}}, Elements: elements}, nil

	case *ObjectLiteralExpr:
		var props []ObjectPatternProperty
		var rest *RestPattern
		for _, entry := range n.Entries {
			switch entry.Kind {
			case ObjectEntrySpread:
				inner, err := ExprToPattern(entry.Value)
				if err != nil {
					return nil, err
				}
				rest = &RestPattern{PatternBase: PatternBase{NodeBase{entry.Span}}, Argument: inner}
			case ObjectEntryIdent, ObjectEntryShorthandDefault:
				ident, ok := entry.Key.(*IdentExpr)
				if !ok {
					return nil, fmt.Errorf("invalid destructuring target: shorthand property key is not an identifier")
				}
				var valuePattern Pattern = &VarPattern{PatternBase: PatternBase{NodeBase{entry.Span}}, Name: ident.Name}
				if entry.Kind == ObjectEntryShorthandDefault {
					valuePattern = &AssignmentPattern{
						PatternBase: PatternBase{NodeBase{entry.Span}},
						Target:      valuePattern,
						Default:     entry.Value,
					}
				}
				props = append(props, ObjectPatternProperty{
					Span: entry.Span, Key: entry.Key, Computed: entry.Computed,
					Value: valuePattern, Shorthand: true,
				})
			case ObjectEntryProp:
				p, err := exprMemberToPattern(entry.Value)
				if err != nil {
					return nil, err
				}
				props = append(props, ObjectPatternProperty{
					Span: entry.Span, Key: entry.Key, Computed: entry.Computed,
					Value: p, Shorthand: false,
				})
			case ObjectEntryMethod:
				return nil, fmt.Errorf("invalid destructuring target: object pattern cannot contain a method")
			}
		}
		return &ObjectPattern{PatternBase: PatternBase{NodeBase{n.Span}}, Properties: props, Rest: rest}, nil

	case *AssignExpr:
		p, err := exprMemberToPattern(n)
		if err != nil {
			return nil, err
		}
		return p, nil

	case *PropExpr, *IndexExpr:
		return &ExprPattern{PatternBase: PatternBase{NodeBase{e.GetSpan()}}, Target: e}, nil

	default:
		return nil, fmt.Errorf("invalid destructuring target: expression is not assignable")
	}
}

// exprMemberToPattern handles one array-element or object-property value
// position, where a plain `target = default` assignment expression means a
// destructuring default rather than an assignment.
func exprMemberToPattern(e Expr) (Pattern, error) {
	if assign, ok := e.(*AssignExpr); ok {
		if assign.Op != token.Assign {
			return nil, fmt.Errorf("invalid destructuring default: only '=' is allowed, found %s", assign.Op)
		}
		target, err := ExprToPattern(assign.Target)
		if err != nil {
			return nil, err
		}
		return &AssignmentPattern{
			PatternBase: PatternBase{NodeBase{assign.Span}},
			Target:      target,
			Default:     assign.Value,
		}, nil
	}
	return ExprToPattern(e)
}
