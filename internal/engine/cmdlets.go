package engine

import "strings"

// cmdletFunc implements one safe builtin cmdlet. input is the upstream
// pipeline's accumulated items (nil for a cmdlet used standalone); the
// return value is what this stage contributes downstream / to Output().
type cmdletFunc func(e *Evaluator, cmd *CommandExpr, input []Val) []Val

var cmdletTable map[string]cmdletFunc
var cmdletAliases = map[string]string{
	"?": "where-object",
	"%": "foreach-object",
	"gv": "get-variable",
	"select": "select-object",
	"sort": "sort-object",
	"measure": "measure-object",
	"echo": "write-output",
}

func init() {
	cmdletTable = map[string]cmdletFunc{
		"write-output":    cmdWriteOutput,
		"write-host":      cmdWriteHost,
		"where-object":    cmdWhereObject,
		"foreach-object":  cmdForEachObject,
		"get-variable":    cmdGetVariable,
		"select-object":   cmdSelectObject,
		"measure-object":  cmdMeasureObject,
		"sort-object":     cmdSortObject,
		"param":           cmdParamNoop,
	}
}

func canonicalCmdletName(name string) (string, bool) {
	name = strings.ToLower(name)
	if alias, ok := cmdletAliases[name]; ok {
		name = alias
	}
	_, ok := cmdletTable[name]
	return name, ok
}

func isBuiltinCmdlet(name string) bool {
	_, ok := canonicalCmdletName(name)
	return ok
}

// cmdArgs is the evaluated argument surface a cmdlet implementation reads.
type cmdArgs struct {
	positional []Val
	named      map[string]Val
	switches   map[string]bool
	block      *ScriptBlockLit
}

func (e *Evaluator) evalCmdArgs(cmd *CommandExpr) (cmdArgs, bool) {
	a := cmdArgs{named: map[string]Val{}, switches: map[string]bool{}, block: cmd.Block}
	for _, p := range cmd.Positional {
		v := e.evalExpr(p)
		if v.IsUnknown() {
			return a, false
		}
		a.positional = append(a.positional, v)
	}
	for _, n := range cmd.Named {
		if n.Switch {
			a.switches[n.Name] = true
			continue
		}
		v := e.evalExpr(n.Value)
		if v.IsUnknown() {
			return a, false
		}
		a.named[n.Name] = v
	}
	return a, true
}

func cmdParamNoop(e *Evaluator, cmd *CommandExpr, input []Val) []Val { return nil }

func cmdWriteOutput(e *Evaluator, cmd *CommandExpr, input []Val) []Val {
	args, ok := e.evalCmdArgs(cmd)
	if !ok {
		return nil
	}
	out := append([]Val{}, input...)
	out = append(out, args.positional...)
	return out
}

func cmdWriteHost(e *Evaluator, cmd *CommandExpr, input []Val) []Val {
	args, ok := e.evalCmdArgs(cmd)
	if !ok {
		return nil
	}
	// Write-Host bypasses the output stream in real PowerShell; captured
	// here as its own channel so render/report can distinguish it.
	for _, v := range args.positional {
		e.hostWrites = append(e.hostWrites, v.String())
	}
	return nil
}

func (e *Evaluator) runBlockWithItem(sb *ScriptBlockLit, item Val) Val {
	e.scopes.push()
	defer e.scopes.pop()
	e.scopes.top().set("_", item)
	e.scopes.top().set("psitem", item)
	var last Val = item
	for _, s := range sb.Body.Stmts {
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

func cmdWhereObject(e *Evaluator, cmd *CommandExpr, input []Val) []Val {
	if cmd.Block == nil {
		return input
	}
	var out []Val
	for _, it := range input {
		if Booleanize(e.runBlockWithItem(cmd.Block, it)) {
			out = append(out, it)
		}
	}
	return out
}

func cmdForEachObject(e *Evaluator, cmd *CommandExpr, input []Val) []Val {
	if cmd.Block == nil {
		return input
	}
	var out []Val
	for _, it := range input {
		out = append(out, e.runBlockWithItem(cmd.Block, it))
	}
	return out
}

func cmdGetVariable(e *Evaluator, cmd *CommandExpr, input []Val) []Val {
	args, ok := e.evalCmdArgs(cmd)
	if !ok || len(args.positional) == 0 {
		if v, ok := args.named["name"]; ok {
			args.positional = []Val{v}
		} else {
			return nil
		}
	}
	name := args.positional[0].String()
	if v, found := e.scopes.resolveGet("", name); found {
		return []Val{v}
	}
	return []Val{NullVal()}
}

func cmdSelectObject(e *Evaluator, cmd *CommandExpr, input []Val) []Val {
	args, ok := e.evalCmdArgs(cmd)
	if !ok {
		return input
	}
	if n, ok := args.named["first"]; ok {
		limit := int(intOf(n))
		if limit < len(input) {
			return input[:limit]
		}
		return input
	}
	if n, ok := args.named["last"]; ok {
		limit := int(intOf(n))
		if limit < len(input) {
			return input[len(input)-limit:]
		}
		return input
	}
	if args.switches["unique"] {
		var out []Val
		seen := map[string]bool{}
		for _, it := range input {
			k := it.String()
			if !seen[k] {
				seen[k] = true
				out = append(out, it)
			}
		}
		return out
	}
	return input
}

func cmdMeasureObject(e *Evaluator, cmd *CommandExpr, input []Val) []Val {
	var sum float64
	count := 0
	for _, it := range input {
		count++
		if n, err := ToNumber(cmd.Span, it); err == nil {
			sum += asFloat(n)
		}
	}
	h := NewHashTable()
	h.Set("Count", IntVal(int64(count)))
	h.Set("Sum", DoubleVal(sum))
	if count > 0 {
		h.Set("Average", DoubleVal(sum/float64(count)))
	}
	return []Val{HashTableVal(h)}
}

func cmdSortObject(e *Evaluator, cmd *CommandExpr, input []Val) []Val {
	args, _ := e.evalCmdArgs(cmd)
	out := append([]Val{}, input...)
	descending := args.switches["descending"]
	// simple insertion sort: inputs here are always small (script-level
	// literals), so O(n^2) keeps this dependency-free and deterministic.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0; j-- {
			cmp := compareOrder("-lt", out[j-1], out[j])
			if descending {
				cmp = -cmp
			}
			if cmp <= 0 {
				break
			}
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
