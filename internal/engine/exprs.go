package engine

import "strings"

// evalExpr evaluates x to a Val, recording the result against the AST
// node so render.go can later decide whether to substitute the computed
// literal or fall back to the original source span verbatim.
func (e *Evaluator) evalExpr(x Expr) Val {
	v := e.evalExprInner(x)
	if v.IsError() && v.Err != nil {
		e.noteError(v.Err)
	}
	if e.nodeVals != nil {
		e.nodeVals[x] = v
	}
	return v
}

func (e *Evaluator) evalExprInner(x Expr) Val {
	if err := e.tick(x.SpanOf()); err != nil {
		return e.recordError(err)
	}
	switch n := x.(type) {
	case *Literal:
		return n.Value
	case *StringLit:
		return StringVal(n.Value)
	case *StringExpandable:
		return e.evalStringExpandable(n)
	case *VarRef:
		return e.evalVarRef(n)
	case *BinaryExpr:
		l := e.evalExpr(n.Left)
		r := e.evalExpr(n.Right)
		switch n.Op {
		case "-match", "-imatch", "-cmatch":
			return e.evalMatchSettingGroups(n.Span, n.Op, l, r, false)
		case "-notmatch", "-inotmatch", "-cnotmatch":
			return e.evalMatchSettingGroups(n.Span, strings.Replace(n.Op, "notmatch", "match", 1), l, r, true)
		}
		return BinaryOp(n.Span, n.Op, l, r)
	case *UnaryExpr:
		if n.Op == "++" || n.Op == "--" {
			return e.evalIncDec(n)
		}
		v := e.evalExpr(n.X)
		return UnaryOp(n.Span, n.Op, v)
	case *ArrayLiteral:
		var items []Val
		for _, el := range n.Elems {
			items = append(items, e.evalExpr(el))
		}
		return ArrayVal(Flatten(items))
	case *HashLiteral:
		h := NewHashTable()
		for _, entry := range n.Entries {
			h.Set(entry.Key, e.evalExpr(entry.Value))
		}
		return HashTableVal(h)
	case *RangeExpr:
		l := e.evalExpr(n.Start)
		r := e.evalExpr(n.End)
		return BinaryOp(n.Span, "..", l, r)
	case *IndexExpr:
		return e.evalIndex(n)
	case *MemberExpr:
		return e.evalMember(n)
	case *InvokeExpr:
		return e.evalInvoke(n)
	case *TypeLiteral:
		return TypeVal(n.Name)
	case *CastExpr:
		v := e.evalExpr(n.X)
		return CastTo(n.Span, n.Type, v)
	case *SubExpr:
		return e.evalSubExpr(n.Body)
	case *ArraySubExpr:
		return e.evalArraySubExpr(n.Body)
	case *ScriptBlockLit:
		return ScriptBlockVal(&ScriptBlock{Params: n.Params, Body: n.Body, ScopeID: e.scopes.depth()})
	case *CommandExpr:
		return e.evalCommand(n)
	case *PipelineExpr:
		return e.evalPipelineExpr(n)
	default:
		return UnknownVal()
	}
}

func (e *Evaluator) evalIncDec(n *UnaryExpr) Val {
	cur := e.evalExpr(n.X)
	op := "+"
	if n.Op == "--" {
		op = "-"
	}
	next := BinaryOp(n.Span, op, cur, IntVal(1))
	e.assignTo(n.X, next)
	if n.Postfix {
		return cur
	}
	return next
}

func (e *Evaluator) evalStringExpandable(n *StringExpandable) Val {
	var b strings.Builder
	for _, part := range n.Parts {
		switch {
		case part.Var != nil:
			b.WriteString(e.evalVarRef(part.Var).String())
		case part.Sub != nil:
			b.WriteString(e.evalExpr(part.Sub).String())
		default:
			b.WriteString(part.Literal)
		}
	}
	return StringVal(b.String())
}

// evalMatchSettingGroups runs -match/-notmatch and, on a successful match,
// overwrites $matches with the capture groups the way a real -match
// operator or switch -regex clause does.
func (e *Evaluator) evalMatchSettingGroups(span Span, op string, l, r Val, negated bool) Val {
	if l.IsError() {
		return l
	}
	if r.IsError() {
		return r
	}
	if l.IsUnknown() || r.IsUnknown() {
		return UnknownVal()
	}
	v, ht := matchOpCaptures(span, op, l, r, negated)
	if ht != nil {
		e.scopes.global().set("matches", HashTableVal(ht))
	}
	return v
}

func (e *Evaluator) evalVarRef(n *VarRef) Val {
	if n.Scope == "env" {
		if v, ok := e.opts.Environment[n.Name]; ok {
			return StringVal(v)
		}
		return NullVal()
	}
	if v, ok := e.scopes.resolveGet(n.Scope, n.Name); ok {
		return v
	}
	// an unseeded automatic variable (e.g. $PSScriptRoot, $PID,
	// $PSVersionTable) has a real host-dependent value this evaluator
	// never computes; treating it as Unknown keeps it from being folded
	// into a literal $null, which would assert a value it doesn't have.
	// An ordinary undeclared user variable auto-vivifies to $null, same
	// as a real PowerShell session.
	if isAutomaticVariable(n.Name) {
		return UnknownVal()
	}
	return NullVal()
}

func (e *Evaluator) evalIndex(n *IndexExpr) Val {
	container := e.evalExpr(n.X)
	idx := e.evalExpr(n.Index)
	if container.IsUnknown() || idx.IsUnknown() {
		return UnknownVal()
	}
	switch container.Kind {
	case valArray:
		i := intOf(idx)
		if i < 0 {
			i += int64(len(container.Arr))
		}
		if i < 0 || int(i) >= len(container.Arr) {
			return ErrorVal(newValError(ErrIndexOutOfBounds, n.Span, "index %d out of range (length %d)", i, len(container.Arr)))
		}
		return container.Arr[int(i)]
	case valString:
		r := []rune(container.S)
		i := intOf(idx)
		if i < 0 {
			i += int64(len(r))
		}
		if i < 0 || int(i) >= len(r) {
			return ErrorVal(newValError(ErrIndexOutOfBounds, n.Span, "index %d out of range", i))
		}
		return StringVal(string(r[i]))
	case valHashTable:
		v, ok := container.HT.Get(idx.String())
		if !ok {
			return NullVal()
		}
		return v
	case valRange:
		items := container.RG.Realize()
		i := intOf(idx)
		if i < 0 || int(i) >= len(items) {
			return ErrorVal(newValError(ErrIndexOutOfBounds, n.Span, "index %d out of range", i))
		}
		return items[i]
	default:
		return ErrorVal(newValError(ErrTypeMismatch, n.Span, "cannot index into %s", container.TypeName()))
	}
}

func (e *Evaluator) evalMember(n *MemberExpr) Val {
	if tl, ok := n.X.(*TypeLiteral); ok {
		return evalStaticMember(n.Span, tl.Name, n.Name)
	}
	x := e.evalExpr(n.X)
	if x.IsUnknown() {
		return UnknownVal()
	}
	switch x.Kind {
	case valHashTable:
		if v, ok := x.HT.Get(n.Name); ok {
			return v
		}
		return NullVal()
	case valArray:
		if strings.EqualFold(n.Name, "Count") || strings.EqualFold(n.Name, "Length") {
			return IntVal(int64(len(x.Arr)))
		}
		return UnknownVal()
	case valString:
		if strings.EqualFold(n.Name, "Length") {
			return IntVal(int64(len([]rune(x.S))))
		}
		return UnknownVal()
	default:
		return UnknownVal()
	}
}

func (e *Evaluator) evalInvoke(n *InvokeExpr) Val {
	member, ok := n.X.(*MemberExpr)
	if !ok {
		return UnknownVal()
	}
	args := make([]Val, len(n.Args))
	for i, a := range n.Args {
		args[i] = e.evalExpr(a)
	}
	for _, a := range args {
		if a.IsUnknown() {
			return UnknownVal()
		}
	}
	if tl, ok := member.X.(*TypeLiteral); ok {
		if v, handled := callStaticMethod(n.Span, tl.Name, member.Name, args); handled {
			return v
		}
		return UnknownVal()
	}
	recv := e.evalExpr(member.X)
	if recv.IsUnknown() {
		return UnknownVal()
	}
	if v, handled := callInstanceMethod(n.Span, recv, member.Name, args); handled {
		return v
	}
	return UnknownVal()
}

func (e *Evaluator) evalSubExpr(prog *Program) Val {
	e.scopes.push()
	defer e.scopes.pop()
	var last Val = NullVal()
	for _, s := range prog.Stmts {
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

func (e *Evaluator) evalArraySubExpr(prog *Program) Val {
	e.scopes.push()
	defer e.scopes.pop()
	var items []Val
	for _, s := range prog.Stmts {
		if es, ok := s.(*ExpressionStmt); ok {
			items = append(items, e.evalExpr(es.X))
			continue
		}
		e.evalStmt(s)
	}
	return ArrayVal(Flatten(items))
}
