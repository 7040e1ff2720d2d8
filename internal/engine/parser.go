package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser is a hand-written recursive-descent parser with precedence
// climbing for binary expressions, built directly over Lexer's token
// stream. PowerShell's grammar has no context-free library in the example
// corpus to lean on (aretext's combinators target a text buffer, not a
// language grammar), so statement vs expression mode — the thing that
// makes "-eq" a comparison operator in one position and a named parameter
// in another — is resolved here by hand, the way the teacher's own
// regex-based passes resolve PowerShell constructs positionally.
type Parser struct {
	toks []Token
	pos  int
	src  string
}

func NewParser(src string) *Parser {
	return &Parser{toks: NewLexer(src).Lex(), src: src}
}

// ParseProgram parses the full token stream into a Program, or returns a
// *ParseError. Parsing never panics; malformed input always yields an
// error with a useful span instead.
func (p *Parser) ParseProgram() (prog *Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(*ParseError); ok {
				err = pe
				return
			}
			panic(r)
		}
	}()
	start := p.cur().Span
	stmts := p.parseStmtsUntil(TkEOF)
	p.expect(TkEOF)
	return &Program{Stmts: stmts, Span: mergeSpan(start, p.prevSpan())}, nil
}

func (p *Parser) fail(span Span, format string, args ...any) {
	panic(&ParseError{Span: span, Message: fmt.Sprintf(format, args...)})
}

func (p *Parser) cur() Token  { return p.toks[p.pos] }
func (p *Parser) prevSpan() Span {
	if p.pos == 0 {
		return p.toks[0].Span
	}
	return p.toks[p.pos-1].Span
}

func (p *Parser) at(k TokenKind) bool { return p.cur().Kind == k }

func (p *Parser) atKeyword(word string) bool {
	t := p.cur()
	return t.Kind == TkIdent && strings.EqualFold(t.Text, word)
}

func (p *Parser) advance() Token {
	t := p.toks[p.pos]
	if t.Kind != TkEOF {
		p.pos++
	}
	return t
}

func (p *Parser) expect(k TokenKind) Token {
	if p.cur().Kind != k {
		p.fail(p.cur().Span, "expected token %d, got %q", k, p.cur().Text)
	}
	return p.advance()
}

func (p *Parser) expectKeyword(word string) Token {
	if !p.atKeyword(word) {
		p.fail(p.cur().Span, "expected keyword %q, got %q", word, p.cur().Text)
	}
	return p.advance()
}

// skipTerminators consumes newlines and semicolons (statement separators).
func (p *Parser) skipTerminators() {
	for p.at(TkNewline) || p.at(TkSemicolon) {
		p.advance()
	}
}

func (p *Parser) atStmtEnd() bool {
	return p.at(TkEOF) || p.at(TkRBrace)
}

// --- Statements ----------------------------------------------------------

func (p *Parser) parseStmtsUntil(end TokenKind) []Stmt {
	var out []Stmt
	p.skipTerminators()
	for !p.at(end) && !p.at(TkEOF) {
		out = append(out, p.parseStmt())
		p.skipTerminators()
	}
	return out
}

func (p *Parser) parseBlock() *Block {
	start := p.expect(TkLBrace).Span
	stmts := p.parseStmtsUntil(TkRBrace)
	end := p.expect(TkRBrace).Span
	return &Block{baseNode: baseNode{mergeSpan(start, end)}, Stmts: stmts}
}

func (p *Parser) parseStmt() Stmt {
	switch {
	case p.atKeyword("if"):
		return p.parseIf()
	case p.atKeyword("for"):
		return p.parseFor()
	case p.atKeyword("while"):
		return p.parseWhile()
	case p.atKeyword("do"):
		return p.parseDoLoop()
	case p.atKeyword("foreach"):
		return p.parseForEach()
	case p.atKeyword("switch"):
		return p.parseSwitch()
	case p.atKeyword("function"):
		return p.parseFunctionDecl()
	case p.atKeyword("break"):
		span := p.advance().Span
		return &Break{baseNode{span}}
	case p.atKeyword("continue"):
		span := p.advance().Span
		return &Continue{baseNode{span}}
	case p.atKeyword("return"):
		start := p.advance().Span
		if p.at(TkNewline) || p.at(TkSemicolon) || p.atStmtEnd() {
			return &Return{baseNode{start}, nil}
		}
		v := p.parsePipeline()
		return &Return{baseNode{mergeSpan(start, v.SpanOf())}, v}
	default:
		return p.parseSimpleStmt()
	}
}

func (p *Parser) parseSimpleStmt() Stmt {
	start := p.cur().Span
	lhs := p.parsePipeline()
	if p.at(TkOp) && isAssignOp(p.cur().Text) {
		op := p.advance().Text
		rhs := p.parsePipeline()
		return &Assignment{baseNode{mergeSpan(start, rhs.SpanOf())}, lhs, op, rhs}
	}
	return &ExpressionStmt{baseNode{mergeSpan(start, lhs.SpanOf())}, lhs}
}

func isAssignOp(s string) bool {
	switch s {
	case "=", "+=", "-=", "*=", "/=", "%=":
		return true
	}
	return false
}

func (p *Parser) parseParenCond() Expr {
	p.expect(TkLParen)
	e := p.parsePipeline()
	p.expect(TkRParen)
	return e
}

func (p *Parser) parseIf() Stmt {
	start := p.expectKeyword("if").Span
	cond := p.parseParenCond()
	body := p.parseBlock()
	branches := []IfBranch{{Cond: cond, Body: body}}
	p.skipTerminators()
	var elseBlock *Block
	for p.atKeyword("elseif") {
		p.advance()
		c := p.parseParenCond()
		b := p.parseBlock()
		branches = append(branches, IfBranch{Cond: c, Body: b})
		p.skipTerminators()
	}
	if p.atKeyword("else") {
		p.advance()
		elseBlock = p.parseBlock()
	}
	return &If{baseNode{mergeSpan(start, p.prevSpan())}, branches, elseBlock}
}

func (p *Parser) parseFor() Stmt {
	start := p.expectKeyword("for").Span
	p.expect(TkLParen)
	var init Stmt
	if !p.at(TkSemicolon) {
		init = p.parseSimpleStmt()
	}
	p.expect(TkSemicolon)
	var cond Expr
	if !p.at(TkSemicolon) {
		cond = p.parsePipeline()
	}
	p.expect(TkSemicolon)
	var post Stmt
	if !p.at(TkRParen) {
		post = p.parseSimpleStmt()
	}
	p.expect(TkRParen)
	body := p.parseBlock()
	return &For{baseNode{mergeSpan(start, body.Span)}, init, cond, post, body}
}

func (p *Parser) parseWhile() Stmt {
	start := p.expectKeyword("while").Span
	cond := p.parseParenCond()
	body := p.parseBlock()
	return &While{baseNode{mergeSpan(start, body.Span)}, cond, body}
}

func (p *Parser) parseDoLoop() Stmt {
	start := p.expectKeyword("do").Span
	body := p.parseBlock()
	p.skipTerminators()
	switch {
	case p.atKeyword("while"):
		p.advance()
		cond := p.parseParenCond()
		return &DoWhile{baseNode{mergeSpan(start, p.prevSpan())}, body, cond}
	case p.atKeyword("until"):
		p.advance()
		cond := p.parseParenCond()
		return &DoUntil{baseNode{mergeSpan(start, p.prevSpan())}, body, cond}
	default:
		p.fail(p.cur().Span, "expected 'while' or 'until' after do-block")
		return nil
	}
}

func (p *Parser) parseForEach() Stmt {
	start := p.expectKeyword("foreach").Span
	p.expect(TkLParen)
	varTok := p.expect(TkVariable)
	p.expectKeyword("in")
	iter := p.parsePipeline()
	p.expect(TkRParen)
	body := p.parseBlock()
	name := strings.TrimPrefix(varTok.Text, "$")
	return &ForEach{baseNode{mergeSpan(start, body.Span)}, strings.ToLower(name), iter, body}
}

func (p *Parser) parseSwitch() Stmt {
	start := p.expectKeyword("switch").Span
	wildcard, regex := false, false
	for p.at(TkDashWord) {
		switch strings.ToLower(p.cur().Text) {
		case "-wildcard":
			wildcard = true
			p.advance()
		case "-regex":
			regex = true
			p.advance()
		case "-casesensitive", "-exact":
			p.advance()
		default:
			p.fail(p.cur().Span, "unsupported switch option %q", p.cur().Text)
		}
	}
	scrutinee := p.parseParenCond()
	p.expect(TkLBrace)
	p.skipTerminators()
	var clauses []SwitchClause
	var def *Block
	for !p.at(TkRBrace) && !p.at(TkEOF) {
		if p.atKeyword("default") {
			p.advance()
			def = p.parseBlock()
		} else {
			pat := p.parseUnary()
			body := p.parseBlock()
			clauses = append(clauses, SwitchClause{Pattern: pat, Body: body, Wildcard: wildcard, Regex: regex})
		}
		p.skipTerminators()
	}
	end := p.expect(TkRBrace).Span
	return &Switch{baseNode{mergeSpan(start, end)}, scrutinee, clauses, def}
}

func (p *Parser) parseParamList() []Param {
	p.expect(TkLParen)
	var params []Param
	for !p.at(TkRParen) {
		typ := ""
		isSwitch := false
		if p.at(TkLBracket) {
			p.advance()
			typ = p.parseTypeName()
			p.expect(TkRBracket)
			if strings.EqualFold(typ, "switch") {
				isSwitch = true
			}
		}
		nameTok := p.expect(TkVariable)
		var def Expr
		if p.at(TkOp) && p.cur().Text == "=" {
			p.advance()
			def = p.parseTernaryOrBinary(0)
		}
		params = append(params, Param{
			Name:    strings.ToLower(strings.TrimPrefix(nameTok.Text, "$")),
			Type:    typ,
			Default: def,
			Switch:  isSwitch,
		})
		if p.at(TkComma) {
			p.advance()
		}
	}
	p.expect(TkRParen)
	return params
}

func (p *Parser) parseFunctionDecl() Stmt {
	start := p.expectKeyword("function").Span
	name := p.expect(TkIdent).Text
	var params []Param
	if p.at(TkLParen) {
		params = p.parseParamList()
	}
	body := p.parseBlock()
	if len(params) == 0 {
		params = extractParamBlock(body)
	}
	return &FunctionDecl{baseNode{mergeSpan(start, body.Span)}, strings.ToLower(name), params, body}
}

// extractParamBlock pulls a leading "param(...)" statement out of a
// function body into its parameter list, the common PowerShell idiom
// when parameters aren't declared on the function signature line.
func extractParamBlock(body *Block) []Param {
	if len(body.Stmts) == 0 {
		return nil
	}
	cmd, ok := body.Stmts[0].(*ExpressionStmt)
	if !ok {
		return nil
	}
	inv, ok := cmd.X.(*CommandExpr)
	if !ok || !strings.EqualFold(inv.Name, "param") {
		return nil
	}
	body.Stmts = body.Stmts[1:]
	var params []Param
	for _, a := range inv.Positional {
		if vr, ok := a.(*VarRef); ok {
			params = append(params, Param{Name: vr.Name})
		}
	}
	return params
}

// --- Pipelines & expressions ---------------------------------------------

func (p *Parser) parsePipeline() Expr {
	start := p.cur().Span
	first := p.parseExprOrCommand()
	if !p.at(TkPipe) {
		return first
	}
	stages := []Expr{first}
	for p.at(TkPipe) {
		p.advance()
		stages = append(stages, p.parseExprOrCommand())
	}
	return &PipelineExpr{baseNode{mergeSpan(start, p.prevSpan())}, stages}
}

// parseExprOrCommand chooses command-mode (bareword invocation with
// space-separated arguments) vs expression-mode based on what begins the
// stage: a bareword identifier that isn't a keyword starts a command.
func (p *Parser) parseExprOrCommand() Expr {
	if p.at(TkIdent) && !isStmtKeyword(p.cur().Text) {
		return p.parseCommand()
	}
	if p.at(TkAmp) {
		p.advance()
		return p.parseCommand()
	}
	return p.parseExprList()
}

// parseExprList parses PowerShell's unary/binary comma operator: a bare
// "1, 2, 3" builds an array rather than three separate statements. A
// single expression with no trailing comma is returned unwrapped.
func (p *Parser) parseExprList() Expr {
	first := p.parseTernaryOrBinary(0)
	if !p.at(TkComma) {
		return first
	}
	elems := []Expr{first}
	for p.at(TkComma) {
		p.advance()
		elems = append(elems, p.parseTernaryOrBinary(0))
	}
	return &ArrayLiteral{baseNode{mergeSpan(first.SpanOf(), p.prevSpan())}, elems}
}

func isStmtKeyword(s string) bool {
	switch strings.ToLower(s) {
	case "if", "elseif", "else", "for", "while", "do", "until", "foreach", "in",
		"switch", "default", "function", "break", "continue", "return":
		return true
	}
	return false
}

func (p *Parser) parseCommand() Expr {
	start := p.cur().Span
	nameTok := p.advance()
	name := strings.ToLower(nameTok.Text)
	cmd := &CommandExpr{baseNode: baseNode{start}, Name: name, Raw: nameTok.Text, Builtin: isBuiltinCmdlet(name)}
	for {
		switch {
		case p.at(TkDashWord):
			dash := p.advance()
			pname := strings.ToLower(strings.TrimPrefix(dash.Text, "-"))
			if p.commandArgFollows() {
				v := p.parseCommandArg()
				cmd.Named = append(cmd.Named, NamedArg{Name: pname, Value: v})
			} else {
				cmd.Named = append(cmd.Named, NamedArg{Name: pname, Switch: true})
			}
		case p.at(TkLBrace):
			cmd.Block = p.parseScriptBlockLit()
		case p.commandArgFollows():
			cmd.Positional = append(cmd.Positional, p.parseCommandArg())
		default:
			cmd.Span = mergeSpan(start, p.prevSpan())
			return cmd
		}
	}
}

// commandArgFollows reports whether the current token can begin another
// command argument (vs ending the command at a pipe/semicolon/newline/
// closing delimiter).
func (p *Parser) commandArgFollows() bool {
	switch p.cur().Kind {
	case TkPipe, TkSemicolon, TkNewline, TkEOF, TkRParen, TkRBrace, TkRBracket, TkComma:
		return false
	case TkOp:
		// a bare assignment/comparison operator token ends the command;
		// real operators only apply in expression mode.
		return false
	default:
		return true
	}
}

func (p *Parser) parseCommandArg() Expr {
	return p.parseUnary()
}

func (p *Parser) parseScriptBlockLit() *ScriptBlockLit {
	start := p.cur().Span
	p.expect(TkLBrace)
	var params []Param
	if p.atKeyword("param") {
		p.advance()
		params = p.parseParamList()
		p.skipTerminators()
	}
	stmts := p.parseStmtsUntil(TkRBrace)
	end := p.expect(TkRBrace).Span
	body := &Block{baseNode{mergeSpan(start, end)}, stmts}
	return &ScriptBlockLit{baseNode{mergeSpan(start, end)}, params, body}
}

// parseTernaryOrBinary is the expression-mode entry point: precedence
// climbing over the operator table in operators.go, bottoming out at
// parseUnary.
func (p *Parser) parseTernaryOrBinary(minPrec int) Expr {
	left := p.parseUnary()
	for {
		opText, prec, ok := p.peekBinaryOp()
		if !ok || prec < minPrec {
			return left
		}
		p.advance()
		right := p.parseTernaryOrBinary(prec + 1)
		left = &BinaryExpr{baseNode{mergeSpan(left.SpanOf(), right.SpanOf())}, opText, left, right}
	}
}

func (p *Parser) peekBinaryOp() (string, int, bool) {
	t := p.cur()
	switch t.Kind {
	case TkOp:
		switch t.Text {
		case "+", "-", "*", "/", "%":
			return t.Text, precedenceOf(t.Text), true
		case "..":
			return "..", precedenceOf(".."), true
		}
		return "", 0, false
	case TkDashWord:
		op := normalizeOperatorName(t.Text)
		if prec := precedenceOf(op); prec >= 0 {
			return op, prec, true
		}
		return "", 0, false
	default:
		return "", 0, false
	}
}

func (p *Parser) parseUnary() Expr {
	if p.at(TkOp) && (p.cur().Text == "-" || p.cur().Text == "+" || p.cur().Text == "!") {
		op := p.advance().Text
		x := p.parseUnary()
		return &UnaryExpr{baseNode{mergeSpan(p.prevSpan(), x.SpanOf())}, op, x, false}
	}
	if p.at(TkDashWord) && strings.EqualFold(p.cur().Text, "-not") {
		p.advance()
		x := p.parseUnary()
		return &UnaryExpr{baseNode{x.SpanOf()}, "-not", x, false}
	}
	if p.at(TkDashWord) && strings.EqualFold(p.cur().Text, "-bnot") {
		p.advance()
		x := p.parseUnary()
		return &UnaryExpr{baseNode{x.SpanOf()}, "-bnot", x, false}
	}
	if p.at(TkOp) && (p.cur().Text == "++" || p.cur().Text == "--") {
		op := p.advance().Text
		x := p.parseUnary()
		return &UnaryExpr{baseNode{x.SpanOf()}, op, x, false}
	}
	if p.at(TkLBracket) && p.looksLikeCast() {
		start := p.advance().Span
		typ := p.parseTypeName()
		p.expect(TkRBracket)
		x := p.parseUnary()
		return &CastExpr{baseNode{mergeSpan(start, x.SpanOf())}, typ, x}
	}
	return p.parsePostfix()
}

// looksLikeCast distinguishes "[int]$x" (cast) from "[int]" used as a
// bare type literal / static member access target, by checking whether a
// RBracket-terminated identifier/dotted-name sequence is immediately
// followed by something that can start a unary expression.
func (p *Parser) looksLikeCast() bool {
	save := p.pos
	defer func() { p.pos = save }()
	p.advance() // [
	if !p.at(TkIdent) {
		return false
	}
	for {
		p.advance()
		if p.at(TkDot) {
			p.advance()
			continue
		}
		break
	}
	if !p.at(TkRBracket) {
		return false
	}
	p.advance()
	switch p.cur().Kind {
	case TkVariable, TkNumber, TkStringSingle, TkStringDouble, TkLParen, TkDollarParen, TkAtParen:
		return true
	}
	return false
}

func (p *Parser) parseTypeName() string {
	var parts []string
	parts = append(parts, p.expect(TkIdent).Text)
	for p.at(TkDot) {
		p.advance()
		parts = append(parts, p.expect(TkIdent).Text)
	}
	return strings.ToLower(strings.Join(parts, "."))
}

func (p *Parser) parsePostfix() Expr {
	x := p.parsePrimary()
	for {
		switch {
		case p.at(TkLBracket):
			start := p.advance().Span
			idx := p.parseTernaryOrBinary(0)
			end := p.expect(TkRBracket).Span
			x = &IndexExpr{baseNode{mergeSpan(start, end)}, x, idx}
		case p.at(TkDot) && p.nextIsIdentOrLParenAfterDot():
			p.advance()
			nameTok := p.expect(TkIdent)
			member := &MemberExpr{baseNode{mergeSpan(x.SpanOf(), nameTok.Span)}, x, nameTok.Text}
			if p.at(TkLParen) {
				args := p.parseArgList()
				x = &InvokeExpr{baseNode{mergeSpan(x.SpanOf(), p.prevSpan())}, member, args}
			} else {
				x = member
			}
		case p.at(TkColonColon):
			p.advance()
			nameTok := p.expect(TkIdent)
			member := &MemberExpr{baseNode{mergeSpan(x.SpanOf(), nameTok.Span)}, x, nameTok.Text}
			if p.at(TkLParen) {
				args := p.parseArgList()
				x = &InvokeExpr{baseNode{mergeSpan(x.SpanOf(), p.prevSpan())}, member, args}
			} else {
				x = member
			}
		case p.at(TkOp) && (p.cur().Text == "++" || p.cur().Text == "--"):
			opTok := p.advance()
			x = &UnaryExpr{baseNode{mergeSpan(x.SpanOf(), opTok.Span)}, opTok.Text, x, true}
		default:
			return x
		}
	}
}

func (p *Parser) nextIsIdentOrLParenAfterDot() bool {
	return p.toks[p.pos+1].Kind == TkIdent
}

func (p *Parser) parseArgList() []Expr {
	p.expect(TkLParen)
	var args []Expr
	for !p.at(TkRParen) {
		args = append(args, p.parseTernaryOrBinary(0))
		if p.at(TkComma) {
			p.advance()
		}
	}
	p.expect(TkRParen)
	return args
}

func (p *Parser) parsePrimary() Expr {
	t := p.cur()
	switch t.Kind {
	case TkNumber:
		p.advance()
		return &Literal{baseNode{t.Span}, parseNumberLiteral(t.Text)}
	case TkStringSingle:
		p.advance()
		return &StringLit{baseNode{t.Span}, unquoteSingle(t.Text)}
	case TkStringDouble:
		p.advance()
		return parseExpandableString(t)
	case TkHereStringSingle:
		p.advance()
		return &StringLit{baseNode{t.Span}, unquoteHereSingle(t.Text)}
	case TkHereStringDouble:
		p.advance()
		return parseHereStringExpandable(t)
	case TkVariable:
		p.advance()
		return parseVarRefToken(t)
	case TkLParen:
		p.advance()
		inner := p.parsePipeline()
		p.expect(TkRParen)
		return inner
	case TkDollarParen:
		start := p.advance().Span
		stmts := p.parseStmtsUntil(TkRParen)
		end := p.expect(TkRParen).Span
		return &SubExpr{baseNode{mergeSpan(start, end)}, &Program{Stmts: stmts, Span: mergeSpan(start, end)}}
	case TkAtParen:
		start := p.advance().Span
		stmts := p.parseStmtsUntil(TkRParen)
		end := p.expect(TkRParen).Span
		return &ArraySubExpr{baseNode{mergeSpan(start, end)}, &Program{Stmts: stmts, Span: mergeSpan(start, end)}}
	case TkAtBrace:
		return p.parseHashLiteral()
	case TkLBrace:
		return p.parseScriptBlockLit()
	case TkLBracket:
		start := p.advance().Span
		typ := p.parseTypeName()
		end := p.expect(TkRBracket).Span
		return &TypeLiteral{baseNode{mergeSpan(start, end)}, typ, "[" + typ + "]"}
	case TkIdent:
		p.advance()
		return &CommandExpr{baseNode: baseNode{t.Span}, Name: strings.ToLower(t.Text), Raw: t.Text, Builtin: isBuiltinCmdlet(strings.ToLower(t.Text))}
	default:
		p.fail(t.Span, "unexpected token %q", t.Text)
		return nil
	}
}

func (p *Parser) parseHashLiteral() Expr {
	start := p.expect(TkAtBrace).Span
	p.skipTerminators()
	var entries []HashEntry
	for !p.at(TkRBrace) {
		var key string
		switch p.cur().Kind {
		case TkIdent:
			key = p.advance().Text
		case TkStringSingle:
			key = unquoteSingle(p.advance().Text)
		case TkStringDouble:
			key = unquoteDoubleLiteral(p.advance().Text)
		default:
			p.fail(p.cur().Span, "expected hashtable key, got %q", p.cur().Text)
		}
		p.expect(TkOp) // "="
		val := p.parseTernaryOrBinary(0)
		entries = append(entries, HashEntry{Key: key, Value: val})
		for p.at(TkSemicolon) || p.at(TkNewline) {
			p.advance()
		}
	}
	end := p.expect(TkRBrace).Span
	return &HashLiteral{baseNode{mergeSpan(start, end)}, entries}
}

func parseNumberLiteral(text string) Val {
	lower := strings.ToLower(text)
	mult := int64(1)
	for _, suf := range []string{"kb", "mb", "gb", "tb", "pb"} {
		if strings.HasSuffix(lower, suf) {
			lower = strings.TrimSuffix(lower, suf)
			switch suf {
			case "kb":
				mult = 1024
			case "mb":
				mult = 1024 * 1024
			case "gb":
				mult = 1024 * 1024 * 1024
			case "tb":
				mult = 1024 * 1024 * 1024 * 1024
			case "pb":
				mult = 1024 * 1024 * 1024 * 1024 * 1024
			}
			break
		}
	}
	trimmed := strings.TrimRight(lower, "ldfu")
	if trimmed == "" {
		trimmed = lower
	}
	if strings.HasPrefix(trimmed, "0x") {
		n, err := strconv.ParseInt(trimmed[2:], 16, 64)
		if err == nil {
			return IntVal(n * mult)
		}
	}
	if strings.ContainsAny(trimmed, ".eE") {
		f, err := strconv.ParseFloat(trimmed, 64)
		if err == nil {
			return DoubleVal(f * float64(mult))
		}
	}
	n, err := strconv.ParseInt(trimmed, 10, 64)
	if err == nil {
		return IntVal(n * mult)
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err == nil {
		return DoubleVal(f * float64(mult))
	}
	return IntVal(0)
}

func unquoteSingle(raw string) string {
	inner := raw
	if len(inner) >= 2 {
		inner = inner[1 : len(inner)-1]
	}
	return strings.ReplaceAll(inner, "''", "'")
}

func unquoteHereSingle(raw string) string {
	lines := strings.Split(raw, "\n")
	if len(lines) <= 2 {
		return ""
	}
	body := lines[1 : len(lines)-1]
	return strings.TrimRight(strings.Join(body, "\n"), "\r")
}

var backtickEscapes = map[byte]byte{
	'n': '\n', 't': '\t', 'r': '\r', '0': 0, 'a': 7, 'b': 8, 'f': 12, 'v': 11,
}

func unescapeDoubleBody(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '`' && i+1 < len(s) {
			next := s[i+1]
			if esc, ok := backtickEscapes[next]; ok {
				b.WriteByte(esc)
			} else {
				b.WriteByte(next)
			}
			i++
			continue
		}
		if s[i] == '"' && i+1 < len(s) && s[i+1] == '"' {
			b.WriteByte('"')
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func unquoteDoubleLiteral(raw string) string {
	inner := raw
	if len(inner) >= 2 {
		inner = inner[1 : len(inner)-1]
	}
	return unescapeDoubleBody(inner)
}

// parseExpandableString splits a double-quoted token into literal/variable/
// subexpression parts for string interpolation (spec.md §4 string rules).
func parseExpandableString(t Token) Expr {
	raw := t.Text
	inner := raw
	if len(inner) >= 2 {
		inner = inner[1 : len(inner)-1]
	}
	parts := splitInterpolation(inner)
	return &StringExpandable{baseNode{t.Span}, inner, parts}
}

func parseHereStringExpandable(t Token) Expr {
	lines := strings.Split(t.Text, "\n")
	body := ""
	if len(lines) > 2 {
		body = strings.TrimRight(strings.Join(lines[1:len(lines)-1], "\n"), "\r")
	}
	parts := splitInterpolation(body)
	return &StringExpandable{baseNode{t.Span}, body, parts}
}

// splitInterpolation scans an expandable-string body for $var and $(...)
// interpolation sites, unescaping backtick sequences in literal runs.
func splitInterpolation(s string) []StringPart {
	var parts []StringPart
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, StringPart{Literal: unescapeDoubleBody(lit.String())})
			lit.Reset()
		}
	}
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == '`' && i+1 < len(s):
			lit.WriteByte(c)
			lit.WriteByte(s[i+1])
			i += 2
		case c == '$' && i+1 < len(s) && s[i+1] == '(':
			flush()
			depth := 1
			j := i + 2
			for j < len(s) && depth > 0 {
				if s[j] == '(' {
					depth++
				} else if s[j] == ')' {
					depth--
				}
				j++
			}
			inner := s[i+2 : j-1]
			if sub, err := NewParser(inner).ParseProgram(); err == nil && len(sub.Stmts) > 0 {
				if es, ok := sub.Stmts[len(sub.Stmts)-1].(*ExpressionStmt); ok {
					parts = append(parts, StringPart{Sub: es.X})
				}
			}
			i = j
		case c == '$' && i+1 < len(s) && isVarStartByte(s[i+1]):
			flush()
			j := i + 1
			if s[j] == '{' {
				j++
				for j < len(s) && s[j] != '}' {
					j++
				}
				if j < len(s) {
					j++
				}
			} else {
				for j < len(s) && (isIdentPart(rune(s[j])) && s[j] != '-' || s[j] == ':') {
					j++
				}
			}
			varText := s[i:j]
			vr := parseVarRefToken(Token{Kind: TkVariable, Text: varText})
			parts = append(parts, StringPart{Var: vr.(*VarRef)})
			i = j
		default:
			lit.WriteByte(c)
			i++
		}
	}
	flush()
	return parts
}

func isVarStartByte(c byte) bool {
	return c == '{' || c == '_' || c == '?' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func parseVarRefToken(t Token) Expr {
	raw := t.Text
	body := strings.TrimPrefix(raw, "$")
	if strings.HasPrefix(body, "{") {
		body = strings.TrimSuffix(strings.TrimPrefix(body, "{"), "}")
	}
	scope := ""
	name := body
	if idx := strings.Index(body, ":"); idx >= 0 {
		s := strings.ToLower(body[:idx])
		switch s {
		case "global", "script", "local", "private", "env":
			scope = s
			name = body[idx+1:]
		}
	}
	lowerName := strings.ToLower(name)
	if scope != "env" {
		name = lowerName
	}
	return &VarRef{baseNode{t.Span}, scope, name, raw}
}
