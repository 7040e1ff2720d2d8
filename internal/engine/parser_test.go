package engine

import (
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *Program {
	t.Helper()
	prog, err := NewParser(src).ParseProgram()
	require.NoError(t, err)
	require.NotNil(t, prog)
	return prog
}

func TestParseAssignmentAndLiteral(t *testing.T) {
	prog := mustParse(t, `$x = 5`)
	require.Len(t, prog.Stmts, 1)
	a, ok := prog.Stmts[0].(*Assignment)
	require.True(t, ok)
	require.Equal(t, "=", a.Op)
	v, ok := a.Target.(*VarRef)
	require.True(t, ok)
	require.Equal(t, "x", v.Name)
}

func TestParseIfElseif(t *testing.T) {
	prog := mustParse(t, `
if ($x -eq 1) {
    $y = 1
} elseif ($x -eq 2) {
    $y = 2
} else {
    $y = 3
}`)
	require.Len(t, prog.Stmts, 1)
	ifStmt, ok := prog.Stmts[0].(*If)
	require.True(t, ok)
	require.Len(t, ifStmt.Branches, 2)
	require.NotNil(t, ifStmt.Else)
}

func TestParseForeach(t *testing.T) {
	prog := mustParse(t, `foreach ($i in 1..3) { $s += $i }`)
	fe, ok := prog.Stmts[0].(*ForEach)
	require.True(t, ok)
	require.Equal(t, "i", fe.Var)
	_, ok = fe.Iterable.(*RangeExpr)
	require.True(t, ok)
}

func TestParseFunctionDecl(t *testing.T) {
	prog := mustParse(t, `
function Add-Numbers($a, $b) {
    return $a + $b
}`)
	fn, ok := prog.Stmts[0].(*FunctionDecl)
	require.True(t, ok)
	require.Equal(t, "add-numbers", fn.Name)
	require.Len(t, fn.Params, 2)
}

func TestParsePipeline(t *testing.T) {
	prog := mustParse(t, `1,2,3 | Where-Object { $_ -gt 1 } | ForEach-Object { $_ * 2 }`)
	require.Len(t, prog.Stmts, 1)
	_, isExprStmt := prog.Stmts[0].(*ExpressionStmt)
	require.True(t, isExprStmt)
}

func TestParseHashAndArrayLiterals(t *testing.T) {
	prog := mustParse(t, `$h = @{ Name = "Bob"; Age = 30 }`)
	a := prog.Stmts[0].(*Assignment)
	h, ok := a.RHS.(*HashLiteral)
	require.True(t, ok)
	require.Len(t, h.Entries, 2)

	prog2 := mustParse(t, `$arr = @(1, 2, 3)`)
	a2 := prog2.Stmts[0].(*Assignment)
	_, ok = a2.RHS.(*ArraySubExpr)
	require.True(t, ok)
}

func TestParseCastAndTypeLiteral(t *testing.T) {
	prog := mustParse(t, `$n = [int]"42"`)
	a := prog.Stmts[0].(*Assignment)
	c, ok := a.RHS.(*CastExpr)
	require.True(t, ok)
	require.Equal(t, "int", c.Type)
}

func TestParseSwitchStatement(t *testing.T) {
	prog := mustParse(t, `
switch ($x) {
    1 { $y = "one" }
    2 { $y = "two" }
    default { $y = "other" }
}`)
	sw, ok := prog.Stmts[0].(*Switch)
	require.True(t, ok)
	require.Len(t, sw.Clauses, 2)
	require.NotNil(t, sw.Default)
}

func TestParseErrorOnUnbalancedBrace(t *testing.T) {
	_, err := NewParser(`if ($x) {`).ParseProgram()
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}

func TestParseCommandWithNamedArgs(t *testing.T) {
	prog := mustParse(t, `Get-Variable -Name "x" -ErrorAction Stop`)
	cmd, ok := prog.Stmts[0].(*ExpressionStmt).X.(*CommandExpr)
	require.True(t, ok)
	require.Equal(t, "get-variable", cmd.Name)
	require.True(t, len(cmd.Named) >= 1)
}

// Parsing the same source twice must produce structurally identical ASTs
// (parsing has no hidden mutable state that could make two runs diverge).
func TestParseIsDeterministic(t *testing.T) {
	src := `
function Greet($name, $times = 1) {
    for ($i = 0; $i -lt $times; $i++) {
        "Hello, $name!" | Write-Output
    }
}
$values = 1,2,3,4
foreach ($v in $values) {
    if ($v -gt 2) { Greet -name "world" }
}
`
	a := mustParse(t, src)
	b := mustParse(t, src)
	require.Empty(t, cmp.Diff(a, b, cmp.Exporter(func(reflect.Type) bool { return true })))
}
