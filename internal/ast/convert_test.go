package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExprToPatternIdent(t *testing.T) {
	p, err := ExprToPattern(&IdentExpr{Name: "x"})
	require.NoError(t, err)
	v, ok := p.(*VarPattern)
	require.True(t, ok)
	assert.Equal(t, "x", v.Name)
}

func TestExprToPatternArrayWithElisionAndRest(t *testing.T) {
	arr := &ArrayLiteralExpr{Members: []ArrayLiteralMember{
		{Kind: ArrayMemberExpr, Expr: &IdentExpr{Name: "a"}},
		{Kind: ArrayMemberElision},
		{Kind: ArrayMemberSpread, Expr: &IdentExpr{Name: "rest"}},
	}}
	p, err := ExprToPattern(arr)
	require.NoError(t, err)
	ap, ok := p.(*ArrayPattern)
	require.True(t, ok)
	require.Len(t, ap.Elements, 3)
	assert.IsType(t, &VarPattern{}, ap.Elements[0])
	assert.IsType(t, &ElisionPattern{}, ap.Elements[1])
	rest, ok := ap.Elements[2].(*RestPattern)
	require.True(t, ok)
	assert.Equal(t, "rest", rest.Argument.(*VarPattern).Name)
}

func TestExprToPatternObjectShorthandAndRest(t *testing.T) {
	obj := &ObjectLiteralExpr{Entries: []ObjectLiteralEntry{
		{Kind: ObjectEntryIdent, Key: &IdentExpr{Name: "a"}},
		{Kind: ObjectEntryProp, Key: &IdentExpr{Name: "b"}, Value: &IdentExpr{Name: "c"}},
		{Kind: ObjectEntrySpread, Value: &IdentExpr{Name: "rest"}},
	}}
	p, err := ExprToPattern(obj)
	require.NoError(t, err)
	op, ok := p.(*ObjectPattern)
	require.True(t, ok)
	require.Len(t, op.Properties, 2)
	assert.True(t, op.Properties[0].Shorthand)
	assert.False(t, op.Properties[1].Shorthand)
	require.NotNil(t, op.Rest)
	assert.Equal(t, "rest", op.Rest.Argument.(*VarPattern).Name)
}

func TestExprToPatternRejectsNonAssignable(t *testing.T) {
	_, err := ExprToPattern(&NumberLiteralExpr{Raw: "1"})
	require.Error(t, err)
}

func TestExprToPatternMemberExpressionTarget(t *testing.T) {
	prop := &PropExpr{Object: &IdentExpr{Name: "obj"}, Property: "field"}
	p, err := ExprToPattern(prop)
	require.NoError(t, err)
	ep, ok := p.(*ExprPattern)
	require.True(t, ok)
	assert.Same(t, prop, ep.Target)
}
