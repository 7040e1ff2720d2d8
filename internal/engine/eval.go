package engine

// ctrlKind tags a non-local control transfer (break/continue/return)
// bubbling up out of evalStmt/evalBlock. It is a plain value, not a Go
// panic/recover — the evaluator is a tight interpreter loop and every
// statement form must look at it explicitly, the same way the teacher's
// own pipeline stages return plain values rather than throwing.
type ctrlKind int

const (
	ctrlNone ctrlKind = iota
	ctrlBreak
	ctrlContinue
	ctrlReturn
)

type ctrlSignal struct {
	kind  ctrlKind
	value Val
}

// Evaluator holds all state for one Eval(Program) run: the scope stack,
// accumulated non-terminating errors, the captured Output() stream, and
// the resource budget counters from spec.md §5.
type Evaluator struct {
	opts       Options
	scopes     *scopeStack
	errs       []*ValError
	output     []Val
	lastOk     bool
	steps      int
	depth      int
	hostWrites []string
	nodeVals   map[Expr]Val
	noted      map[*ValError]bool
}

func newEvaluator(opts Options) *Evaluator {
	e := &Evaluator{opts: opts, scopes: newScopeStack(), lastOk: true, nodeVals: map[Expr]Val{}, noted: map[*ValError]bool{}}
	e.seedAutomaticVariables()
	for k, v := range opts.Variables {
		e.scopes.script.set(k, v)
	}
	return e
}

func (e *Evaluator) seedAutomaticVariables() {
	g := e.scopes.global()
	g.set("true", BoolVal(true))
	g.set("false", BoolVal(false))
	g.set("null", NullVal())
	g.set("?", BoolVal(true))
	g.set("_", NullVal())
	g.set("psitem", NullVal())
	g.set("args", ArrayVal(nil))
	g.set("error", ArrayVal(nil))
	g.set("matches", HashTableVal(NewHashTable()))
	g.set("lastexitcode", NullVal())
	g.set("ofs", StringVal(" "))
}

// ScriptResult is the outcome of evaluating one Program: everything
// written to the Output() stream, every accumulated ValError, and Success,
// which is false once any ValError was recorded (even if a later statement
// set $? back to true). The deobfuscated text comes from Render, not here.
type ScriptResult struct {
	Output     []Val
	HostWrites []string
	Errors     []*ValError
	Success    bool
	Steps      int
}

// Eval runs prog to completion. A ParseError never reaches here — it
// aborts parsing before an Evaluator exists. Everything else (ValErrors)
// is accumulated and reflected in the result, never panics out.
func (e *Evaluator) Eval(prog *Program) *ScriptResult {
	for _, s := range prog.Stmts {
		before := len(e.errs)
		sig := e.evalStmt(s)
		if len(e.errs) == before {
			// a top-level statement that raised no ValError sets $? back to true
			e.scopes.global().set("?", BoolVal(true))
		}
		if sig.kind != ctrlNone {
			// a bare top-level return (or a step-budget stop) ends the script.
			break
		}
	}
	return &ScriptResult{Output: e.output, HostWrites: e.hostWrites, Errors: e.errs, Success: e.lastOk, Steps: e.steps}
}

func (e *Evaluator) recordError(err *ValError) Val {
	e.noteError(err)
	return NullVal()
}

// noteError folds err into the accumulated error list and $? / $Error
// automatic variables without otherwise changing control flow, letting
// callers keep propagating the Val (often itself an error Val) that
// triggered it.
func (e *Evaluator) noteError(err *ValError) {
	if e.noted[err] {
		return
	}
	e.noted[err] = true
	e.errs = append(e.errs, err)
	e.lastOk = false
	e.scopes.global().set("?", BoolVal(false))
	errArr, _ := e.scopes.global().get("error")
	items := append([]Val{StringVal(err.Error())}, errArr.Arr...)
	e.scopes.global().set("error", ArrayVal(items))
}

func (e *Evaluator) tick(span Span) *ValError {
	e.steps++
	if e.opts.MaxSteps > 0 && e.steps > e.opts.MaxSteps {
		return newValError(ErrRecursionLimit, span, "step budget exceeded (%d)", e.opts.MaxSteps)
	}
	return nil
}

func (e *Evaluator) enter(span Span) *ValError {
	e.depth++
	max := e.opts.MaxDepth
	if max <= 0 {
		max = 512
	}
	if e.depth > max {
		e.depth--
		return newValError(ErrRecursionLimit, span, "recursion depth exceeded (%d)", max)
	}
	return nil
}

func (e *Evaluator) leave() { e.depth-- }

func (e *Evaluator) evalStmts(stmts []Stmt) ctrlSignal {
	for _, s := range stmts {
		sig := e.evalStmt(s)
		if sig.kind != ctrlNone {
			return sig
		}
	}
	return ctrlSignal{}
}

func (e *Evaluator) evalBlockNewFrame(b *Block) ctrlSignal {
	e.scopes.push()
	defer e.scopes.pop()
	return e.evalStmts(b.Stmts)
}

func (e *Evaluator) evalStmt(s Stmt) ctrlSignal {
	if budgetErr := e.tick(s.SpanOf()); budgetErr != nil {
		e.recordError(budgetErr)
		return ctrlSignal{kind: ctrlReturn}
	}
	switch n := s.(type) {
	case *ExpressionStmt:
		switch cmd := n.X.(type) {
		case *CommandExpr:
			e.output = append(e.output, e.runCommand(cmd, nil)...)
		case *PipelineExpr:
			e.output = append(e.output, e.runPipelineItems(cmd)...)
		default:
			v := e.evalExpr(n.X)
			e.maybeAutoOutput(n.X, v)
		}
		return ctrlSignal{}
	case *Assignment:
		e.evalAssignment(n)
		return ctrlSignal{}
	case *If:
		for _, br := range n.Branches {
			if Booleanize(e.evalExpr(br.Cond)) {
				return e.evalBlockNewFrame(br.Body)
			}
		}
		if n.Else != nil {
			return e.evalBlockNewFrame(n.Else)
		}
		return ctrlSignal{}
	case *While:
		for Booleanize(e.evalExpr(n.Cond)) {
			if err := e.tick(n.Span); err != nil {
				e.recordError(err)
				break
			}
			sig := e.evalBlockNewFrame(n.Body)
			if sig.kind == ctrlBreak {
				break
			}
			if sig.kind == ctrlReturn {
				return sig
			}
		}
		return ctrlSignal{}
	case *DoWhile:
		for {
			sig := e.evalBlockNewFrame(n.Body)
			if sig.kind == ctrlBreak {
				break
			}
			if sig.kind == ctrlReturn {
				return sig
			}
			if !Booleanize(e.evalExpr(n.Cond)) {
				break
			}
		}
		return ctrlSignal{}
	case *DoUntil:
		for {
			sig := e.evalBlockNewFrame(n.Body)
			if sig.kind == ctrlBreak {
				break
			}
			if sig.kind == ctrlReturn {
				return sig
			}
			if Booleanize(e.evalExpr(n.Cond)) {
				break
			}
		}
		return ctrlSignal{}
	case *For:
		e.scopes.push()
		defer e.scopes.pop()
		if n.Init != nil {
			e.evalStmt(n.Init)
		}
		for n.Cond == nil || Booleanize(e.evalExpr(n.Cond)) {
			if err := e.tick(n.Span); err != nil {
				e.recordError(err)
				break
			}
			sig := e.evalStmts(n.Body.Stmts)
			if sig.kind == ctrlBreak {
				break
			}
			if sig.kind == ctrlReturn {
				return sig
			}
			if n.Post != nil {
				e.evalStmt(n.Post)
			}
		}
		return ctrlSignal{}
	case *ForEach:
		items := e.realizeIterable(e.evalExpr(n.Iterable))
		for _, it := range items {
			e.scopes.push()
			e.scopes.top().set(n.Var, it)
			sig := e.evalStmts(n.Body.Stmts)
			e.scopes.pop()
			if sig.kind == ctrlBreak {
				break
			}
			if sig.kind == ctrlReturn {
				return sig
			}
		}
		return ctrlSignal{}
	case *Switch:
		return e.evalSwitch(n)
	case *FunctionDecl:
		e.scopes.defineFunc(n)
		return ctrlSignal{}
	case *Break:
		return ctrlSignal{kind: ctrlBreak}
	case *Continue:
		return ctrlSignal{kind: ctrlContinue}
	case *Return:
		var v Val
		if n.Value != nil {
			v = e.evalExpr(n.Value)
		} else {
			v = NullVal()
		}
		return ctrlSignal{kind: ctrlReturn, value: v}
	case *Block:
		return e.evalBlockNewFrame(n)
	default:
		return ctrlSignal{}
	}
}

// maybeAutoOutput implements PowerShell's "bare expression writes to the
// output stream" rule: assignments and void-context commands don't, but a
// bare pipeline/expression statement's result does.
func (e *Evaluator) maybeAutoOutput(x Expr, v Val) {
	if v.Kind == valNull && isVoidExpr(x) {
		return
	}
	e.output = append(e.output, v)
}

func isVoidExpr(x Expr) bool {
	switch x.(type) {
	case *AssignExpr:
		return true
	}
	return false
}

func (e *Evaluator) evalSwitch(n *Switch) ctrlSignal {
	scrut := e.evalExpr(n.Scrutinee)
	items := []Val{scrut}
	if scrut.Kind == valArray {
		items = scrut.Arr
	}
	matched := false
	for _, it := range items {
		for _, cl := range n.Clauses {
			if e.switchClauseMatches(cl, it) {
				matched = true
				sig := e.evalBlockNewFrame(cl.Body)
				if sig.kind == ctrlReturn {
					return sig
				}
				if sig.kind == ctrlBreak {
					break
				}
			}
		}
	}
	if !matched && n.Default != nil {
		return e.evalBlockNewFrame(n.Default)
	}
	return ctrlSignal{}
}

func (e *Evaluator) switchClauseMatches(cl SwitchClause, it Val) bool {
	pat := e.evalExpr(cl.Pattern)
	switch {
	case cl.Regex:
		v, ht := matchOpCaptures(cl.Pattern.SpanOf(), "-match", it, pat, false)
		if ht != nil {
			e.scopes.global().set("matches", HashTableVal(ht))
		}
		return Booleanize(v)
	case cl.Wildcard:
		return wildcardMatch("-like", it.String(), pat.String())
	default:
		return compareEq("-eq", it, pat)
	}
}

func (e *Evaluator) realizeIterable(v Val) []Val {
	switch v.Kind {
	case valArray:
		return v.Arr
	case valRange:
		return v.RG.Realize()
	case valHashTable:
		var out []Val
		for _, k := range v.HT.Keys() {
			val, _ := v.HT.Get(k)
			entry := NewHashTable()
			entry.Set("Key", StringVal(k))
			entry.Set("Value", val)
			out = append(out, HashTableVal(entry))
		}
		return out
	case valNull:
		return nil
	default:
		return []Val{v}
	}
}

func (e *Evaluator) evalAssignment(n *Assignment) {
	var rhs Val
	if n.Op == "=" {
		rhs = e.evalExpr(n.RHS)
	} else {
		cur := e.evalExpr(n.Target)
		delta := e.evalExpr(n.RHS)
		op := map[string]string{"+=": "+", "-=": "-", "*=": "*", "/=": "/", "%=": "%"}[n.Op]
		rhs = BinaryOp(n.Span, op, cur, delta)
		if rhs.IsError() && rhs.Err != nil {
			e.noteError(rhs.Err)
		}
	}
	if rhs.IsError() {
		// an error RHS never binds: the assignment target stays whatever
		// it was before (unbound, if it was never set), matching a real
		// PowerShell session where a failed expression leaves $var alone.
		return
	}
	e.assignTo(n.Target, rhs)
}

func (e *Evaluator) assignTo(target Expr, v Val) {
	switch t := target.(type) {
	case *VarRef:
		if t.Scope == "env" {
			return // $env: writes are an external-world effect outside spec.md scope
		}
		e.scopes.resolveSet(t.Scope, t.Name, v)
	case *IndexExpr:
		container := e.evalExpr(t.X)
		idx := e.evalExpr(t.Index)
		e.assignIndexed(t.X, container, idx, v)
	default:
		// unsupported assignment target (e.g. member expr on a foreign
		// object): nothing to mutate safely, so this is a no-op.
	}
}

func (e *Evaluator) assignIndexed(targetExpr Expr, container, idx, v Val) {
	switch container.Kind {
	case valArray:
		i := intOf(idx)
		if i >= 0 && int(i) < len(container.Arr) {
			container.Arr[int(i)] = v
			e.assignTo(targetExpr, container)
		}
	case valHashTable:
		container.HT.Set(idx.String(), v)
	}
}
