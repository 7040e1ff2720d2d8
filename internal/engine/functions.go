package engine

// callFunction invokes a user-defined function: named arguments bind to
// matching parameters first, then remaining positional arguments fill
// whatever parameters are still unbound in declaration order, and any
// parameter left over takes its Default expression (evaluated in the
// function's new frame, after the earlier parameters are bound) or Null. Extra positional arguments beyond the
// parameter list land in $args, matching PowerShell's actual binding
// order for mixed named/positional calls (Open Question: resolved this
// way since the corpus has no mixed-binding example to follow exactly).
func (e *Evaluator) callFunction(decl *FunctionDecl, positional []Val, named map[string]Val) Val {
	if err := e.enter(decl.Span); err != nil {
		return e.recordError(err)
	}
	defer e.leave()

	e.scopes.push()
	defer e.scopes.pop()

	bound := make(map[string]bool, len(decl.Params))
	for _, p := range decl.Params {
		if v, ok := named[p.Name]; ok {
			e.scopes.top().set(p.Name, v)
			bound[p.Name] = true
		}
	}
	pi := 0
	for _, p := range decl.Params {
		if bound[p.Name] {
			continue
		}
		if pi < len(positional) {
			e.scopes.top().set(p.Name, positional[pi])
			pi++
			bound[p.Name] = true
			continue
		}
		if p.Default != nil {
			e.scopes.top().set(p.Name, e.evalExpr(p.Default))
		} else if p.Switch {
			e.scopes.top().set(p.Name, BoolVal(false))
		} else {
			e.scopes.top().set(p.Name, NullVal())
		}
	}
	var leftover []Val
	if pi < len(positional) {
		leftover = positional[pi:]
	}
	e.scopes.top().set("args", ArrayVal(leftover))

	var last Val = NullVal()
	for _, s := range decl.Body.Stmts {
		if es, ok := s.(*ExpressionStmt); ok {
			last = e.evalExpr(es.X)
			continue
		}
		sig := e.evalStmt(s)
		if sig.kind == ctrlReturn {
			return sig.value
		}
	}
	return last
}

// callScriptBlock invokes a ScriptBlock value (e.g. stored in a variable
// and called via &$sb), binding positional args against its own
// parameter list the same way callFunction does for named functions.
func (e *Evaluator) callScriptBlock(sb *ScriptBlock, positional []Val) Val {
	decl := &FunctionDecl{Name: "", Params: sb.Params, Body: sb.Body}
	return e.callFunction(decl, positional, nil)
}
