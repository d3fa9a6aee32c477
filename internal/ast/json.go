package ast

import "ecmafront/internal/span"

// NodeToMap converts an AST node into a map suitable for JSON serialization.
// Every node becomes a tagged union with a "kind" field, used by
// `ecmafront parse --json`.
func NodeToMap(node Node) map[string]interface{} {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	case *SourceFile:
		return m("SourceFile", n.Span, "body", stmtSlice(n.Body))

	// ---- Expressions ----
	case *IdentExpr:
		return m("IdentExpr", n.Span, "name", n.Name)
	case *StringLiteralExpr:
		return m("StringLiteralExpr", n.Span, "value", n.Value, "raw", n.Raw)
	case *NumberLiteralExpr:
		return m("NumberLiteralExpr", n.Span, "raw", n.Raw, "isBigInt", n.IsBigInt)
	case *RegexLiteralExpr:
		return m("RegexLiteralExpr", n.Span, "pattern", n.Pattern, "flags", n.Flags)
	case *BooleanLiteralExpr:
		return m("BooleanLiteralExpr", n.Span, "value", n.Value)
	case *NullLiteralExpr:
		return m("NullLiteralExpr", n.Span)
	case *UndefinedLiteralExpr:
		return m("UndefinedLiteralExpr", n.Span)
	case *SuperExpr:
		return m("SuperExpr", n.Span)
	case *ObjectLiteralExpr:
		entries := make([]interface{}, len(n.Entries))
		for i, e := range n.Entries {
			entries[i] = objectEntryToMap(e)
		}
		return m("ObjectLiteralExpr", n.Span, "entries", entries)
	case *ArrayLiteralExpr:
		members := make([]interface{}, len(n.Members))
		for i, e := range n.Members {
			members[i] = arrayMemberToMap(e)
		}
		return m("ArrayLiteralExpr", n.Span, "members", members)
	case *FunctionExpr:
		return m("FunctionExpr", n.Span, "fn", functionToMap(n.Fn))
	case *ClassExpr:
		return m("ClassExpr", n.Span, "class", classToMap(n.Cls))
	case *TemplateLiteralExpr:
		parts := make([]interface{}, len(n.Parts))
		for i, p := range n.Parts {
			parts[i] = map[string]interface{}{
				"span":   spanToMap(p.Span),
				"cooked": p.Cooked,
				"isRaw":  p.IsRaw,
				"expr":   NodeToMap(p.Expr),
			}
		}
		return m("TemplateLiteralExpr", n.Span, "parts", parts)
	case *ArrowFunctionExpr:
		return m("ArrowFunctionExpr", n.Span, "fn", functionToMap(n.Fn))
	case *CallExpr:
		return m("CallExpr", n.Span,
			"callee", NodeToMap(n.Callee),
			"args", exprSlice(n.Args),
			"optional", n.Optional)
	case *NewExpr:
		return m("NewExpr", n.Span,
			"callee", NodeToMap(n.Callee),
			"args", exprSlice(n.Args))
	case *PropExpr:
		return m("PropExpr", n.Span,
			"object", NodeToMap(n.Object),
			"property", n.Property,
			"optional", n.Optional)
	case *IndexExpr:
		return m("IndexExpr", n.Span,
			"object", NodeToMap(n.Object),
			"index", NodeToMap(n.Index),
			"optional", n.Optional)
	case *BinaryExpr:
		return m("BinaryExpr", n.Span,
			"op", n.Op.String(),
			"left", NodeToMap(n.Left),
			"right", NodeToMap(n.Right))
	case *AssignExpr:
		return m("AssignExpr", n.Span,
			"op", n.Op.String(),
			"target", NodeToMap(n.Target),
			"value", NodeToMap(n.Value))
	case *ConditionalExpr:
		return m("ConditionalExpr", n.Span,
			"test", NodeToMap(n.Test),
			"consequent", NodeToMap(n.Consequent),
			"alternate", NodeToMap(n.Alternate))
	case *SequenceExpr:
		return m("SequenceExpr", n.Span, "exprs", exprSlice(n.Exprs))
	case *UnaryExpr:
		return m("UnaryExpr", n.Span, "op", unaryOpStr(n.Op), "operand", NodeToMap(n.Operand))
	case *AwaitExpr:
		return m("AwaitExpr", n.Span, "operand", NodeToMap(n.Operand))
	case *UpdateExpr:
		return m("UpdateExpr", n.Span,
			"increment", n.Increment,
			"prefix", n.Prefix,
			"operand", NodeToMap(n.Operand))
	case *YieldExpr:
		result := m("YieldExpr", n.Span, "delegate", n.Delegate)
		if n.Argument != nil {
			result["argument"] = NodeToMap(n.Argument)
		}
		return result
	case *SpreadExpr:
		return m("SpreadExpr", n.Span, "argument", NodeToMap(n.Argument))

	// ---- Patterns ----
	case *VarPattern:
		return m("VarPattern", n.Span, "name", n.Name)
	case *ElisionPattern:
		return m("ElisionPattern", n.Span)
	case *RestPattern:
		return m("RestPattern", n.Span, "argument", NodeToMap(n.Argument))
	case *AssignmentPattern:
		return m("AssignmentPattern", n.Span,
			"target", NodeToMap(n.Target),
			"default", NodeToMap(n.Default))
	case *ArrayPattern:
		elems := make([]interface{}, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = NodeToMap(e)
		}
		return m("ArrayPattern", n.Span, "elements", elems)
	case *ObjectPattern:
		props := make([]interface{}, len(n.Properties))
		for i, p := range n.Properties {
			props[i] = map[string]interface{}{
				"span":      spanToMap(p.Span),
				"key":       NodeToMap(p.Key),
				"computed":  p.Computed,
				"value":     NodeToMap(p.Value),
				"shorthand": p.Shorthand,
			}
		}
		result := m("ObjectPattern", n.Span, "properties", props)
		if n.Rest != nil {
			result["rest"] = NodeToMap(n.Rest)
		}
		return result
	case *ExprPattern:
		return m("ExprPattern", n.Span, "target", NodeToMap(n.Target))

	// ---- Statements ----
	case *ExprStmt:
		return m("ExprStmt", n.Span, "expr", NodeToMap(n.Expr))
	case *BlockStmt:
		return m("BlockStmt", n.Span, "body", stmtSlice(n.Body))
	case *ReturnStmt:
		result := m("ReturnStmt", n.Span)
		if n.Argument != nil {
			result["argument"] = NodeToMap(n.Argument)
		}
		return result
	case *IfStmt:
		result := m("IfStmt", n.Span,
			"test", NodeToMap(n.Test),
			"consequent", NodeToMap(n.Consequent))
		if n.Alternate != nil {
			result["alternate"] = NodeToMap(n.Alternate)
		}
		return result
	case *WhileStmt:
		return m("WhileStmt", n.Span, "test", NodeToMap(n.Test), "body", NodeToMap(n.Body))
	case *DoWhileStmt:
		return m("DoWhileStmt", n.Span, "body", NodeToMap(n.Body), "test", NodeToMap(n.Test))
	case *ForStmt:
		result := m("ForStmt", n.Span, "init", NodeToMap(n.Init), "body", NodeToMap(n.Body))
		if n.Test != nil {
			result["test"] = NodeToMap(n.Test)
		}
		if n.Update != nil {
			result["update"] = NodeToMap(n.Update)
		}
		return result
	case *ForInOrOfStmt:
		return m("ForInOrOfStmt", n.Span,
			"left", NodeToMap(n.Left),
			"right", NodeToMap(n.Right),
			"body", NodeToMap(n.Body),
			"of", n.Of)
	case *SwitchStmt:
		cases := make([]interface{}, len(n.Cases))
		for i, c := range n.Cases {
			cases[i] = map[string]interface{}{
				"span": spanToMap(c.Span),
				"test": NodeToMap(c.Test),
				"body": stmtSlice(c.Body),
			}
		}
		return m("SwitchStmt", n.Span, "discriminant", NodeToMap(n.Discriminant), "cases", cases)
	case *TryStmt:
		result := m("TryStmt", n.Span, "block", NodeToMap(n.Block))
		if n.Handler != nil {
			result["handler"] = map[string]interface{}{
				"span":  spanToMap(n.Handler.Span),
				"param": NodeToMap(n.Handler.Param),
				"body":  NodeToMap(n.Handler.Body),
			}
		}
		if n.Finalizer != nil {
			result["finalizer"] = NodeToMap(n.Finalizer)
		}
		return result
	case *ThrowStmt:
		return m("ThrowStmt", n.Span, "argument", NodeToMap(n.Argument))
	case *BreakStmt:
		result := m("BreakStmt", n.Span)
		if n.Label != nil {
			result["label"] = *n.Label
		}
		return result
	case *ContinueStmt:
		result := m("ContinueStmt", n.Span)
		if n.Label != nil {
			result["label"] = *n.Label
		}
		return result
	case *DebuggerStmt:
		return m("DebuggerStmt", n.Span)
	case *EmptyStmt:
		return m("EmptyStmt", n.Span)
	case *WithStmt:
		return m("WithStmt", n.Span, "object", NodeToMap(n.Object), "body", NodeToMap(n.Body))
	case *LabeledStmt:
		return m("LabeledStmt", n.Span, "label", n.Label, "body", NodeToMap(n.Body))
	case *VarDeclStmt:
		decls := make([]interface{}, len(n.Declarators))
		for i, d := range n.Declarators {
			decl := map[string]interface{}{
				"span": spanToMap(d.Span),
				"id":   NodeToMap(d.ID),
			}
			if d.Init != nil {
				decl["init"] = NodeToMap(d.Init)
			}
			decls[i] = decl
		}
		return m("VarDeclStmt", n.Span, "kind", varKindStr(n.Kind), "declarators", decls)
	case *FunctionDeclStmt:
		return m("FunctionDeclStmt", n.Span, "fn", functionToMap(n.Fn))
	case *ClassDeclStmt:
		return m("ClassDeclStmt", n.Span, "class", classToMap(n.Cls))

	default:
		return map[string]interface{}{"kind": "Unknown"}
	}
}

// ---- helpers ----

// m builds a map with kind, span, and extra key-value pairs.
func m(kind string, s span.Span, kvs ...interface{}) map[string]interface{} {
	result := map[string]interface{}{
		"kind": kind,
		"span": spanToMap(s),
	}
	for i := 0; i+1 < len(kvs); i += 2 {
		key := kvs[i].(string)
		result[key] = kvs[i+1]
	}
	return result
}

func spanToMap(s span.Span) map[string]interface{} {
	return map[string]interface{}{"start": s.Start, "end": s.End}
}

func stmtSlice(stmts []Stmt) []interface{} {
	result := make([]interface{}, len(stmts))
	for i, s := range stmts {
		result[i] = NodeToMap(s)
	}
	return result
}

func exprSlice(exprs []Expr) []interface{} {
	result := make([]interface{}, len(exprs))
	for i, e := range exprs {
		result[i] = NodeToMap(e)
	}
	return result
}

func functionToMap(fn *Function) map[string]interface{} {
	if fn == nil {
		return nil
	}
	params := make([]interface{}, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = NodeToMap(p)
	}
	result := map[string]interface{}{
		"span":        spanToMap(fn.Span),
		"params":      params,
		"isAsync":     fn.IsAsync,
		"isGenerator": fn.IsGenerator,
		"isArrow":     fn.IsArrow,
	}
	if fn.Name != nil {
		result["name"] = *fn.Name
	}
	if fn.Body != nil {
		result["body"] = NodeToMap(fn.Body)
	}
	if fn.ArrowExprBody != nil {
		result["arrowExprBody"] = NodeToMap(fn.ArrowExprBody)
	}
	return result
}

func classToMap(cls *Class) map[string]interface{} {
	if cls == nil {
		return nil
	}
	members := make([]interface{}, len(cls.Members))
	for i, mem := range cls.Members {
		member := map[string]interface{}{
			"span":     spanToMap(mem.Span),
			"kind":     classMemberKindStr(mem.Kind),
			"key":      NodeToMap(mem.Key),
			"computed": mem.Computed,
			"static":   mem.Static,
		}
		if mem.Value != nil {
			member["value"] = functionToMap(mem.Value)
		}
		if mem.FieldInit != nil {
			member["fieldInit"] = NodeToMap(mem.FieldInit)
		}
		members[i] = member
	}
	result := map[string]interface{}{
		"span":    spanToMap(cls.Span),
		"members": members,
	}
	if cls.Name != nil {
		result["name"] = *cls.Name
	}
	if cls.SuperClass != nil {
		result["superClass"] = NodeToMap(cls.SuperClass)
	}
	return result
}

func objectEntryToMap(e ObjectLiteralEntry) map[string]interface{} {
	result := map[string]interface{}{
		"span":     spanToMap(e.Span),
		"kind":     objectEntryKindStr(e.Kind),
		"computed": e.Computed,
	}
	if e.Key != nil {
		result["key"] = NodeToMap(e.Key)
	}
	if e.Value != nil {
		result["value"] = NodeToMap(e.Value)
	}
	if e.Method != nil {
		result["method"] = functionToMap(e.Method)
	}
	return result
}

func arrayMemberToMap(e ArrayLiteralMember) map[string]interface{} {
	result := map[string]interface{}{
		"span": spanToMap(e.Span),
		"kind": arrayMemberKindStr(e.Kind),
	}
	if e.Expr != nil {
		result["expr"] = NodeToMap(e.Expr)
	}
	return result
}

func unaryOpStr(op UnaryOp) string {
	switch op {
	case UnaryNot:
		return "!"
	case UnaryPlus:
		return "+"
	case UnaryMinus:
		return "-"
	case UnaryBitNot:
		return "~"
	case UnaryDelete:
		return "delete"
	case UnaryTypeOf:
		return "typeof"
	case UnaryVoid:
		return "void"
	default:
		return "?"
	}
}

func varKindStr(k VarKind) string {
	switch k {
	case VarKindVar:
		return "var"
	case VarKindLet:
		return "let"
	case VarKindConst:
		return "const"
	default:
		return "?"
	}
}

func classMemberKindStr(k ClassMemberKind) string {
	switch k {
	case ClassMethod:
		return "method"
	case ClassGetter:
		return "getter"
	case ClassSetter:
		return "setter"
	case ClassField:
		return "field"
	default:
		return "?"
	}
}

func objectEntryKindStr(k ObjectEntryKind) string {
	switch k {
	case ObjectEntryIdent:
		return "ident"
	case ObjectEntryProp:
		return "prop"
	case ObjectEntrySpread:
		return "spread"
	case ObjectEntryMethod:
		return "method"
	case ObjectEntryShorthandDefault:
		return "shorthandDefault"
	default:
		return "?"
	}
}

func arrayMemberKindStr(k ArrayMemberKind) string {
	switch k {
	case ArrayMemberElision:
		return "elision"
	case ArrayMemberExpr:
		return "expr"
	case ArrayMemberSpread:
		return "spread"
	default:
		return "?"
	}
}
