package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecmafront/internal/ast"
	"ecmafront/internal/token"
)

func parseOK(t *testing.T, source string) *ast.SourceFile {
	t.Helper()
	file, err := New(source).ParseSourceFile()
	require.NoError(t, err)
	return file
}

func parseErr(t *testing.T, source string) error {
	t.Helper()
	_, err := New(source).ParseSourceFile()
	require.Error(t, err)
	return err
}

func TestParseVarDecl(t *testing.T) {
	file := parseOK(t, `var x = 42;`)
	require.Len(t, file.Body, 1)
	decl, ok := file.Body[0].(*ast.VarDeclStmt)
	require.True(t, ok)
	assert.Equal(t, ast.VarKindVar, decl.Kind)
	require.Len(t, decl.Declarators, 1)
	id, ok := decl.Declarators[0].ID.(*ast.VarPattern)
	require.True(t, ok)
	assert.Equal(t, "x", id.Name)
	num, ok := decl.Declarators[0].Init.(*ast.NumberLiteralExpr)
	require.True(t, ok)
	assert.Equal(t, "42", num.Raw)
}

func TestParseConstDeclMultipleDeclarators(t *testing.T) {
	file := parseOK(t, `const a = 1, b = 2;`)
	decl := file.Body[0].(*ast.VarDeclStmt)
	assert.Equal(t, ast.VarKindConst, decl.Kind)
	require.Len(t, decl.Declarators, 2)
}

func TestParseASINoSemicolon(t *testing.T) {
	file := parseOK(t, "let x = 1\nlet y = 2")
	require.Len(t, file.Body, 2)
	_, ok := file.Body[0].(*ast.VarDeclStmt)
	require.True(t, ok)
	_, ok = file.Body[1].(*ast.VarDeclStmt)
	require.True(t, ok)
}

func TestParseBinaryPrecedence(t *testing.T) {
	file := parseOK(t, `1 + 2 * 3;`)
	stmt := file.Body[0].(*ast.ExprStmt)
	bin := stmt.Expr.(*ast.BinaryExpr)
	assert.Equal(t, token.Plus, bin.Op)
	right, ok := bin.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.Star, right.Op)
}

func TestParseExponentIsRightAssociative(t *testing.T) {
	file := parseOK(t, `var r = 2 ** 3 ** 2;`)
	decl := file.Body[0].(*ast.VarDeclStmt)
	bin := decl.Declarators[0].Init.(*ast.BinaryExpr)
	assert.Equal(t, token.StarStar, bin.Op)
	left, ok := bin.Left.(*ast.NumberLiteralExpr)
	require.True(t, ok)
	assert.Equal(t, "2", left.Raw)
	_, ok = bin.Right.(*ast.BinaryExpr)
	require.True(t, ok)
}

func TestParseIfElseIf(t *testing.T) {
	source := `
if (x > 0) {
  f(x);
} else if (x === 0) {
  g();
} else {
  h();
}`
	file := parseOK(t, source)
	ifStmt, ok := file.Body[0].(*ast.IfStmt)
	require.True(t, ok)
	require.NotNil(t, ifStmt.Test)
	elseIf, ok := ifStmt.Alternate.(*ast.IfStmt)
	require.True(t, ok)
	require.NotNil(t, elseIf.Alternate)
}

func TestParseWhileAndDoWhile(t *testing.T) {
	file := parseOK(t, `while (i < 10) { i = i + 1; } do { i--; } while (i > 0)`)
	require.Len(t, file.Body, 2)
	_, ok := file.Body[0].(*ast.WhileStmt)
	require.True(t, ok)
	_, ok = file.Body[1].(*ast.DoWhileStmt)
	require.True(t, ok)
}

func TestParseClassicForEmptyInitIsSynthesized(t *testing.T) {
	file := parseOK(t, `for (;;) { break; }`)
	forStmt := file.Body[0].(*ast.ForStmt)
	require.NotNil(t, forStmt.Init)
	num, ok := forStmt.Init.(*ast.NumberLiteralExpr)
	require.True(t, ok)
	assert.Equal(t, 0, num.Span.Len())
}

func TestParseForOf(t *testing.T) {
	file := parseOK(t, `for (const x of xs) { f(x); }`)
	stmt, ok := file.Body[0].(*ast.ForInOrOfStmt)
	require.True(t, ok)
	assert.True(t, stmt.Of)
	decl, ok := stmt.Left.(*ast.VarDeclStmt)
	require.True(t, ok)
	assert.Equal(t, ast.VarKindConst, decl.Kind)
}

func TestParseForInWithExistingBinding(t *testing.T) {
	file := parseOK(t, `for (key in obj) { use(key); }`)
	stmt, ok := file.Body[0].(*ast.ForInOrOfStmt)
	require.True(t, ok)
	assert.False(t, stmt.Of)
	_, ok = stmt.Left.(*ast.VarPattern)
	require.True(t, ok)
}

func TestParseFunctionDecl(t *testing.T) {
	file := parseOK(t, `function add(a, b) { return a + b; }`)
	fn, ok := file.Body[0].(*ast.FunctionDeclStmt)
	require.True(t, ok)
	require.NotNil(t, fn.Fn.Name)
	assert.Equal(t, "add", *fn.Fn.Name)
	assert.Len(t, fn.Fn.Params, 2)
}

func TestParseArrowFunctionSingleParam(t *testing.T) {
	file := parseOK(t, `const f = x => x + 1;`)
	decl := file.Body[0].(*ast.VarDeclStmt)
	arrow, ok := decl.Declarators[0].Init.(*ast.ArrowFunctionExpr)
	require.True(t, ok)
	assert.Len(t, arrow.Fn.Params, 1)
	require.NotNil(t, arrow.Fn.ArrowExprBody)
	assert.Nil(t, arrow.Fn.Body)
}

func TestParseArrowFunctionParenParams(t *testing.T) {
	file := parseOK(t, `const f = (a, b) => { return a + b; };`)
	decl := file.Body[0].(*ast.VarDeclStmt)
	arrow, ok := decl.Declarators[0].Init.(*ast.ArrowFunctionExpr)
	require.True(t, ok)
	assert.Len(t, arrow.Fn.Params, 2)
	require.NotNil(t, arrow.Fn.Body)
}

func TestParseParenthesizedExpressionIsNotArrow(t *testing.T) {
	file := parseOK(t, `const x = (a + b);`)
	decl := file.Body[0].(*ast.VarDeclStmt)
	_, ok := decl.Declarators[0].Init.(*ast.BinaryExpr)
	require.True(t, ok)
}

func TestParseClassDecl(t *testing.T) {
	source := `
class Point {
  constructor(x, y) {
    this.x = x;
    this.y = y;
  }
  move(dx, dy) {
    this.x = this.x + dx;
  }
  get length() {
    return 0;
  }
  static origin() {
    return new Point(0, 0);
  }
}`
	file := parseOK(t, source)
	cls, ok := file.Body[0].(*ast.ClassDeclStmt)
	require.True(t, ok)
	require.NotNil(t, cls.Cls.Name)
	assert.Equal(t, "Point", *cls.Cls.Name)
	require.Len(t, cls.Cls.Members, 4)
	assert.Equal(t, ast.ClassGetter, cls.Cls.Members[2].Kind)
	assert.True(t, cls.Cls.Members[3].Static)
}

func TestParseClassExtends(t *testing.T) {
	file := parseOK(t, `class Sub extends Base {}`)
	cls := file.Body[0].(*ast.ClassDeclStmt)
	require.NotNil(t, cls.Cls.SuperClass)
	ident, ok := cls.Cls.SuperClass.(*ast.IdentExpr)
	require.True(t, ok)
	assert.Equal(t, "Base", ident.Name)
}

func TestParseCallArgsWithSpread(t *testing.T) {
	file := parseOK(t, `print(1, ...rest, 3);`)
	stmt := file.Body[0].(*ast.ExprStmt)
	call := stmt.Expr.(*ast.CallExpr)
	require.Len(t, call.Args, 3)
	spread, ok := call.Args[1].(*ast.SpreadExpr)
	require.True(t, ok)
	ident := spread.Argument.(*ast.IdentExpr)
	assert.Equal(t, "rest", ident.Name)
}

func TestParseMemberAndOptionalChaining(t *testing.T) {
	file := parseOK(t, `obj?.method(1)?.prop;`)
	stmt := file.Body[0].(*ast.ExprStmt)
	prop, ok := stmt.Expr.(*ast.PropExpr)
	require.True(t, ok)
	assert.True(t, prop.Optional)
	call, ok := prop.Object.(*ast.CallExpr)
	require.True(t, ok)
	// `obj?.method(1)` is an ordinary call of an optional member access:
	// the `?.` is recorded on the PropExpr, not on the call.
	assert.False(t, call.Optional)
	method, ok := call.Callee.(*ast.PropExpr)
	require.True(t, ok)
	assert.True(t, method.Optional)
}

func TestParseNewWithMemberCallee(t *testing.T) {
	file := parseOK(t, `var p = new ns.Point(1, 2);`)
	decl := file.Body[0].(*ast.VarDeclStmt)
	newExpr, ok := decl.Declarators[0].Init.(*ast.NewExpr)
	require.True(t, ok)
	prop, ok := newExpr.Callee.(*ast.PropExpr)
	require.True(t, ok)
	assert.Equal(t, "Point", prop.Property)
	assert.Len(t, newExpr.Args, 2)
}

func TestParseNewWithoutArguments(t *testing.T) {
	file := parseOK(t, `var p = new Date;`)
	decl := file.Body[0].(*ast.VarDeclStmt)
	newExpr, ok := decl.Declarators[0].Init.(*ast.NewExpr)
	require.True(t, ok)
	assert.Empty(t, newExpr.Args)
}

func TestParseAssignment(t *testing.T) {
	file := parseOK(t, `x = 42;`)
	stmt := file.Body[0].(*ast.ExprStmt)
	assign, ok := stmt.Expr.(*ast.AssignExpr)
	require.True(t, ok)
	ident, ok := assign.Target.(*ast.IdentExpr)
	require.True(t, ok)
	assert.Equal(t, "x", ident.Name)
}

func TestParseArrayDestructuringAssignment(t *testing.T) {
	file := parseOK(t, `[a, , ...rest] = xs;`)
	stmt := file.Body[0].(*ast.ExprStmt)
	assign := stmt.Expr.(*ast.AssignExpr)
	_, ok := assign.Target.(*ast.ArrayLiteralExpr)
	require.True(t, ok)
	pattern, err := ast.ExprToPattern(assign.Target)
	require.NoError(t, err)
	arrPat, ok := pattern.(*ast.ArrayPattern)
	require.True(t, ok)
	require.Len(t, arrPat.Elements, 3)
	_, ok = arrPat.Elements[1].(*ast.ElisionPattern)
	assert.True(t, ok)
	_, ok = arrPat.Elements[2].(*ast.RestPattern)
	assert.True(t, ok)
}

func TestParseObjectDestructuringWithDefault(t *testing.T) {
	file := parseOK(t, `const { a, b: renamed, c = 1 } = obj;`)
	decl := file.Body[0].(*ast.VarDeclStmt)
	objPat, ok := decl.Declarators[0].ID.(*ast.ObjectPattern)
	require.True(t, ok)
	require.Len(t, objPat.Properties, 3)
	assert.True(t, objPat.Properties[0].Shorthand)
	assert.False(t, objPat.Properties[1].Shorthand)
	_, isAssignPattern := objPat.Properties[2].Value.(*ast.AssignmentPattern)
	assert.True(t, isAssignPattern)
}

func TestParseTemplateLiteralWithInterpolation(t *testing.T) {
	file := parseOK(t, "const s = `a${x}b${y}c`;")
	decl := file.Body[0].(*ast.VarDeclStmt)
	tpl, ok := decl.Declarators[0].Init.(*ast.TemplateLiteralExpr)
	require.True(t, ok)
	require.Len(t, tpl.Parts, 5)
	assert.Equal(t, "a", tpl.Parts[0].Cooked)
	require.NotNil(t, tpl.Parts[1].Expr)
	assert.Equal(t, "c", tpl.Parts[4].Cooked)
}

func TestParseTemplateLiteralWithObjectLiteralInInterpolation(t *testing.T) {
	file := parseOK(t, "const s = `${ {a: 1} }`;")
	decl := file.Body[0].(*ast.VarDeclStmt)
	tpl, ok := decl.Declarators[0].Init.(*ast.TemplateLiteralExpr)
	require.True(t, ok)
	require.Len(t, tpl.Parts, 3)
	obj, ok := tpl.Parts[1].Expr.(*ast.ObjectLiteralExpr)
	require.True(t, ok)
	require.Len(t, obj.Entries, 1)
}

func TestParseStringLiteralDecodesUnicodeEscapes(t *testing.T) {
	file := parseOK(t, `const s = "A\x42\u{1F600}";`)
	decl := file.Body[0].(*ast.VarDeclStmt)
	str, ok := decl.Declarators[0].Init.(*ast.StringLiteralExpr)
	require.True(t, ok)
	assert.Equal(t, "AB\U0001F600", str.Value)
}

func TestParseTaggedTemplate(t *testing.T) {
	file := parseOK(t, "tag`hello ${name}`;")
	stmt := file.Body[0].(*ast.ExprStmt)
	call, ok := stmt.Expr.(*ast.CallExpr)
	require.True(t, ok)
	require.Len(t, call.Args, 1)
	_, ok = call.Args[0].(*ast.TemplateLiteralExpr)
	assert.True(t, ok)
}

func TestParseTryCatchFinally(t *testing.T) {
	file := parseOK(t, `try { risky(); } catch (e) { handle(e); } finally { cleanup(); }`)
	tryStmt, ok := file.Body[0].(*ast.TryStmt)
	require.True(t, ok)
	require.NotNil(t, tryStmt.Handler)
	require.NotNil(t, tryStmt.Finalizer)
	param, ok := tryStmt.Handler.Param.(*ast.VarPattern)
	require.True(t, ok)
	assert.Equal(t, "e", param.Name)
}

func TestParseTryRequiresCatchOrFinally(t *testing.T) {
	parseErr(t, `try { risky(); }`)
}

func TestParseSwitchStmt(t *testing.T) {
	source := `
switch (x) {
  case 1:
    f();
    break;
  case 2:
  default:
    g();
}`
	file := parseOK(t, source)
	sw, ok := file.Body[0].(*ast.SwitchStmt)
	require.True(t, ok)
	require.Len(t, sw.Cases, 3)
	require.NotNil(t, sw.Cases[0].Test)
	assert.Nil(t, sw.Cases[2].Test)
}

func TestParseRegexVsDivision(t *testing.T) {
	file := parseOK(t, `var a = 10 / 2; var b = /abc/g;`)
	first := file.Body[0].(*ast.VarDeclStmt)
	_, ok := first.Declarators[0].Init.(*ast.BinaryExpr)
	require.True(t, ok)

	second := file.Body[1].(*ast.VarDeclStmt)
	regex, ok := second.Declarators[0].Init.(*ast.RegexLiteralExpr)
	require.True(t, ok)
	assert.Equal(t, "abc", regex.Pattern)
	assert.Equal(t, "g", regex.Flags)
}

func TestParseYieldInGenerator(t *testing.T) {
	file := parseOK(t, `function* gen() { yield 1; yield* other(); }`)
	fn := file.Body[0].(*ast.FunctionDeclStmt)
	assert.True(t, fn.Fn.IsGenerator)
	block := fn.Fn.Body
	require.Len(t, block.Body, 2)
	expr1 := block.Body[0].(*ast.ExprStmt).Expr.(*ast.YieldExpr)
	assert.False(t, expr1.Delegate)
	expr2 := block.Body[1].(*ast.ExprStmt).Expr.(*ast.YieldExpr)
	assert.True(t, expr2.Delegate)
}

func TestParseAsyncAwait(t *testing.T) {
	file := parseOK(t, `async function f() { return await g(); }`)
	fn := file.Body[0].(*ast.FunctionDeclStmt)
	assert.True(t, fn.Fn.IsAsync)
	ret := fn.Fn.Body.Body[0].(*ast.ReturnStmt)
	_, ok := ret.Argument.(*ast.AwaitExpr)
	assert.True(t, ok)
}

func TestParseLabeledStatementAndBreak(t *testing.T) {
	file := parseOK(t, `outer: while (true) { break outer; }`)
	labeled, ok := file.Body[0].(*ast.LabeledStmt)
	require.True(t, ok)
	assert.Equal(t, "outer", labeled.Label)
	while := labeled.Body.(*ast.WhileStmt)
	brk := while.Body.(*ast.BlockStmt).Body[0].(*ast.BreakStmt)
	require.NotNil(t, brk.Label)
	assert.Equal(t, "outer", *brk.Label)
}

func TestParseMissingSemiIsError(t *testing.T) {
	parseErr(t, "let x = 1 let y = 2")
}

func TestParseUnterminatedBlockIsError(t *testing.T) {
	parseErr(t, `function f() { return 1;`)
}

func TestParseInvalidDestructuringTargetIsError(t *testing.T) {
	parseErr(t, `1 = 2;`)
}
