package engine

// runCommand executes one CommandExpr against upstream pipeline input,
// dispatching to a user-defined function, then a builtin cmdlet, falling
// back to Unknown (render.go then re-emits the command's original source
// verbatim — spec.md §7's containment rule).
func (e *Evaluator) runCommand(cmd *CommandExpr, input []Val) []Val {
	if decl, ok := e.scopes.resolveFunc(cmd.Name); ok {
		args, full := e.evalCmdArgs(cmd)
		if !full {
			return []Val{UnknownVal()}
		}
		named := map[string]Val{}
		for k, v := range args.named {
			named[k] = v
		}
		for k := range args.switches {
			named[k] = BoolVal(true)
		}
		return []Val{e.callFunction(decl, args.positional, named)}
	}
	if canon, ok := canonicalCmdletName(cmd.Name); ok {
		fn := cmdletTable[canon]
		return fn(e, cmd, input)
	}
	return []Val{UnknownVal()}
}

// collapseItems turns a stage's item list into the scalar-or-array Val
// PowerShell expression position expects: zero items is $null, one item
// is itself, more than one is an array.
func collapseItems(items []Val) Val {
	switch len(items) {
	case 0:
		return NullVal()
	case 1:
		return items[0]
	default:
		return ArrayVal(items)
	}
}

func (e *Evaluator) evalCommand(n *CommandExpr) Val {
	return collapseItems(e.runCommand(n, nil))
}

func (e *Evaluator) runPipelineItems(n *PipelineExpr) []Val {
	var items []Val
	for i, stage := range n.Stages {
		cmd, ok := stage.(*CommandExpr)
		if !ok {
			// a non-command stage (e.g. a literal at the head of a pipeline)
			// seeds the pipeline; an array splats element-by-element the
			// way a real PowerShell pipeline enumerates it.
			v := e.evalExpr(stage)
			if v.Kind == valArray {
				items = v.Arr
			} else {
				items = []Val{v}
			}
			continue
		}
		if i == 0 {
			items = e.runCommand(cmd, nil)
		} else {
			items = e.runCommand(cmd, items)
		}
	}
	return items
}

func (e *Evaluator) evalPipelineExpr(n *PipelineExpr) Val {
	return collapseItems(e.runPipelineItems(n))
}
