package engine

import (
	"strconv"
	"strings"
)

// Render turns prog back into PowerShell source text, substituting the
// literal form of every expression the evaluator safely reduced
// (tracked in e.nodeVals) and falling back to the original source span,
// verbatim, for anything opaque: unresolved commands, Unknown-poisoned
// expressions, and constructs the renderer doesn't specifically handle.
// Re-rendering that output through Render again is idempotent, since
// every substituted literal re-parses to the same Val it replaced.
func Render(e *Evaluator, prog *Program, src string) string {
	r := &renderer{e: e, src: src, profile: e.opts.Profile}
	var b strings.Builder
	r.renderStmts(&b, prog.Stmts, 0)
	out := b.String()
	if r.profile.CollapseWhitespace {
		out = collapseBlankLines(out)
	}
	return strings.TrimRight(out, "\n") + "\n"
}

type renderer struct {
	e       *Evaluator
	src     string
	profile RenderProfile
}

func indentStr(depth int) string { return strings.Repeat("    ", depth) }

func (r *renderer) renderStmts(b *strings.Builder, stmts []Stmt, depth int) {
	for _, s := range stmts {
		b.WriteString(indentStr(depth))
		r.renderStmt(b, s, depth)
		b.WriteString("\n")
	}
}

func (r *renderer) verbatim(span Span) string {
	return strings.TrimSpace(span.Text(r.src))
}

func (r *renderer) renderStmt(b *strings.Builder, s Stmt, depth int) {
	switch n := s.(type) {
	case *ExpressionStmt:
		b.WriteString(r.renderExpr(n.X))
	case *Assignment:
		b.WriteString(r.renderExpr(n.Target))
		b.WriteString(" ")
		b.WriteString(n.Op)
		b.WriteString(" ")
		b.WriteString(r.renderExpr(n.RHS))
	case *If:
		for i, br := range n.Branches {
			if i == 0 {
				b.WriteString("if (")
			} else {
				b.WriteString(indentStr(depth))
				b.WriteString("elseif (")
			}
			b.WriteString(r.renderExpr(br.Cond))
			b.WriteString(") {\n")
			r.renderStmts(b, br.Body.Stmts, depth+1)
			b.WriteString(indentStr(depth))
			b.WriteString("}")
			if i < len(n.Branches)-1 || n.Else != nil {
				b.WriteString("\n")
			}
		}
		if n.Else != nil {
			b.WriteString(indentStr(depth))
			b.WriteString("else {\n")
			r.renderStmts(b, n.Else.Stmts, depth+1)
			b.WriteString(indentStr(depth))
			b.WriteString("}")
		}
	case *While:
		b.WriteString("while (")
		b.WriteString(r.renderExpr(n.Cond))
		b.WriteString(") {\n")
		r.renderStmts(b, n.Body.Stmts, depth+1)
		b.WriteString(indentStr(depth))
		b.WriteString("}")
	case *DoWhile:
		b.WriteString("do {\n")
		r.renderStmts(b, n.Body.Stmts, depth+1)
		b.WriteString(indentStr(depth))
		b.WriteString("} while (")
		b.WriteString(r.renderExpr(n.Cond))
		b.WriteString(")")
	case *DoUntil:
		b.WriteString("do {\n")
		r.renderStmts(b, n.Body.Stmts, depth+1)
		b.WriteString(indentStr(depth))
		b.WriteString("} until (")
		b.WriteString(r.renderExpr(n.Cond))
		b.WriteString(")")
	case *For:
		b.WriteString("for (")
		if n.Init != nil {
			b.WriteString(r.renderStmtInline(n.Init))
		}
		b.WriteString("; ")
		if n.Cond != nil {
			b.WriteString(r.renderExpr(n.Cond))
		}
		b.WriteString("; ")
		if n.Post != nil {
			b.WriteString(r.renderStmtInline(n.Post))
		}
		b.WriteString(") {\n")
		r.renderStmts(b, n.Body.Stmts, depth+1)
		b.WriteString(indentStr(depth))
		b.WriteString("}")
	case *ForEach:
		b.WriteString("foreach ($")
		b.WriteString(n.Var)
		b.WriteString(" in ")
		b.WriteString(r.renderExpr(n.Iterable))
		b.WriteString(") {\n")
		r.renderStmts(b, n.Body.Stmts, depth+1)
		b.WriteString(indentStr(depth))
		b.WriteString("}")
	case *Switch:
		b.WriteString("switch (")
		b.WriteString(r.renderExpr(n.Scrutinee))
		b.WriteString(") {\n")
		for _, cl := range n.Clauses {
			b.WriteString(indentStr(depth + 1))
			b.WriteString(r.renderExpr(cl.Pattern))
			b.WriteString(" {\n")
			r.renderStmts(b, cl.Body.Stmts, depth+2)
			b.WriteString(indentStr(depth + 1))
			b.WriteString("}\n")
		}
		if n.Default != nil {
			b.WriteString(indentStr(depth + 1))
			b.WriteString("default {\n")
			r.renderStmts(b, n.Default.Stmts, depth+2)
			b.WriteString(indentStr(depth + 1))
			b.WriteString("}\n")
		}
		b.WriteString(indentStr(depth))
		b.WriteString("}")
	case *FunctionDecl:
		b.WriteString(r.functionSignature(n))
		b.WriteString(" {\n")
		r.renderStmts(b, n.Body.Stmts, depth+1)
		b.WriteString(indentStr(depth))
		b.WriteString("}")
	case *Break:
		b.WriteString("break")
	case *Continue:
		b.WriteString("continue")
	case *Return:
		b.WriteString("return")
		if n.Value != nil {
			b.WriteString(" ")
			b.WriteString(r.renderExpr(n.Value))
		}
	case *Block:
		b.WriteString("{\n")
		r.renderStmts(b, n.Stmts, depth+1)
		b.WriteString(indentStr(depth))
		b.WriteString("}")
	default:
		b.WriteString(r.verbatim(s.SpanOf()))
	}
}

func (r *renderer) functionSignature(n *FunctionDecl) string {
	var parts []string
	for _, p := range n.Params {
		s := "$" + p.Name
		if p.Type != "" {
			s = "[" + p.Type + "]" + s
		}
		if p.Default != nil {
			s += " = " + r.renderExpr(p.Default)
		}
		parts = append(parts, s)
	}
	return "function " + n.Name + "(" + strings.Join(parts, ", ") + ")"
}

func (r *renderer) renderStmtInline(s Stmt) string {
	var b strings.Builder
	r.renderStmt(&b, s, 0)
	return b.String()
}

func (r *renderer) renderExpr(x Expr) string {
	v, known := r.e.nodeVals[x]
	if known && !v.IsUnknown() && !v.IsError() {
		if lit, ok := r.tryLiteralForm(x, v); ok {
			return lit
		}
	}
	return r.verbatim(x.SpanOf())
}

// tryLiteralForm renders v as PowerShell source, honoring the render
// profile's inlining thresholds. Some node kinds (variable reads, member
// access on foreign objects) are always better left as their original
// spelling even when a value is known, since substituting e.g. $x with
// its value would change the script's semantics, not just its syntax.
func (r *renderer) tryLiteralForm(x Expr, v Val) (string, bool) {
	switch n := x.(type) {
	case *VarRef, *MemberExpr, *IndexExpr, *InvokeExpr:
		return "", false
	case *CommandExpr:
		if !n.Builtin {
			return "", false
		}
	}
	return r.formatLiteral(v), true
}

func (r *renderer) formatLiteral(v Val) string {
	switch v.Kind {
	case valNull:
		return "$null"
	case valBool:
		if v.B {
			return "$true"
		}
		return "$false"
	case valInt:
		return strconv.FormatInt(v.I, 10)
	case valDouble:
		return formatDoubleRoundTrip(v.F)
	case valString:
		return quotePSString(v.S)
	case valArray:
		return r.formatArray(v.Arr)
	case valHashTable:
		return r.formatHashTable(v.HT)
	case valRange:
		return r.formatRange(v.RG)
	case valType:
		return "[" + v.Typ + "]"
	default:
		return ""
	}
}

func (r *renderer) formatArray(items []Val) string {
	if len(items) > r.profile.InlineArrayMax {
		var parts []string
		for _, it := range items {
			parts = append(parts, "    "+r.formatLiteral(it))
		}
		return "@(\n" + strings.Join(parts, ",\n") + "\n)"
	}
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = r.formatLiteral(it)
	}
	return "@(" + strings.Join(parts, ", ") + ")"
}

func (r *renderer) formatHashTable(h *HashTable) string {
	if h == nil || h.Len() == 0 {
		return "@{}"
	}
	var parts []string
	for _, k := range h.Keys() {
		v, _ := h.Get(k)
		parts = append(parts, quoteKey(k)+" = "+r.formatLiteral(v))
	}
	return "@{" + strings.Join(parts, "; ") + "}"
}

func (r *renderer) formatRange(rg Range) string {
	size := rg.End - rg.Start + 1
	if size < 0 {
		size = -size
	}
	if int(size) > r.profile.InlineRangeMax {
		return strconv.FormatInt(rg.Start, 10) + ".." + strconv.FormatInt(rg.End, 10)
	}
	return r.formatArray(rg.Realize())
}

func quoteKey(k string) string {
	for _, c := range k {
		if !(c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return quotePSString(k)
		}
	}
	return k
}

// quotePSString renders s as a single-quoted verbatim literal when
// possible (doubling embedded quotes), matching PowerShell's own
// preference for '...' over "..." when no interpolation is needed.
func quotePSString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	blank := false
	for _, l := range lines {
		isBlank := strings.TrimSpace(l) == ""
		if isBlank && blank {
			continue
		}
		blank = isBlank
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}
