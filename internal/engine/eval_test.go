package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func evalSrc(t *testing.T, src string) *ScriptResult {
	t.Helper()
	prog, err := NewParser(src).ParseProgram()
	require.NoError(t, err)
	sess := NewSession()
	ev := sess.NewEvaluator()
	return ev.Eval(prog)
}

func TestEvalBareExpressionWritesOutput(t *testing.T) {
	r := evalSrc(t, `1 + 2`)
	require.Len(t, r.Output, 1)
	require.Equal(t, int64(3), r.Output[0].I)
}

func TestEvalAssignmentDoesNotAutoOutput(t *testing.T) {
	r := evalSrc(t, `$x = 5`)
	require.Empty(t, r.Output)
}

func TestEvalIfElse(t *testing.T) {
	r := evalSrc(t, `
$x = 10
if ($x -gt 5) {
    "big"
} else {
    "small"
}`)
	require.Len(t, r.Output, 1)
	require.Equal(t, "big", r.Output[0].S)
}

func TestEvalWhileLoop(t *testing.T) {
	r := evalSrc(t, `
$i = 0
$sum = 0
while ($i -lt 5) {
    $sum += $i
    $i++
}
$sum`)
	require.Equal(t, int64(10), r.Output[len(r.Output)-1].I)
}

func TestEvalForLoop(t *testing.T) {
	r := evalSrc(t, `
$sum = 0
for ($i = 0; $i -lt 5; $i++) {
    $sum += $i
}
$sum`)
	require.Equal(t, int64(10), r.Output[len(r.Output)-1].I)
}

func TestEvalForeachOverRange(t *testing.T) {
	r := evalSrc(t, `
$total = 0
foreach ($n in 1..4) {
    $total += $n
}
$total`)
	require.Equal(t, int64(10), r.Output[len(r.Output)-1].I)
}

func TestEvalBreakAndContinue(t *testing.T) {
	r := evalSrc(t, `
$out = @()
foreach ($n in 1..5) {
    if ($n -eq 3) { continue }
    if ($n -eq 5) { break }
    $out += $n
}
$out`)
	last := r.Output[len(r.Output)-1]
	require.Equal(t, valArray, last.Kind)
	var got []int64
	for _, v := range last.Arr {
		got = append(got, v.I)
	}
	require.Equal(t, []int64{1, 2, 4}, got)
}

func TestEvalFunctionCallPositionalAndNamed(t *testing.T) {
	r := evalSrc(t, `
function Add($a, $b) {
    return $a + $b
}
Add -b 3 4`)
	require.Equal(t, int64(7), r.Output[len(r.Output)-1].I)
}

func TestEvalFunctionDefaultParam(t *testing.T) {
	r := evalSrc(t, `
function Greet($name = "World") {
    return "Hello, $name"
}
Greet`)
	require.Equal(t, "Hello, World", r.Output[len(r.Output)-1].S)
}

func TestEvalRecursiveFunction(t *testing.T) {
	r := evalSrc(t, `
function Fact($n) {
    if ($n -le 1) { return 1 }
    return $n * (Fact ($n - 1))
}
Fact 5`)
	require.Equal(t, int64(120), r.Output[len(r.Output)-1].I)
}

func TestEvalRecursionDepthBudget(t *testing.T) {
	prog, err := NewParser(`
function Loop($n) {
    return 1 + (Loop ($n + 1))
}
Loop 0`).ParseProgram()
	require.NoError(t, err)
	sess := NewSession(WithMaxDepth(10))
	ev := sess.NewEvaluator()
	r := ev.Eval(prog)
	require.NotEmpty(t, r.Errors)
	require.Equal(t, ErrRecursionLimit, r.Errors[0].Kind)
	require.False(t, r.Success)
}

func TestEvalPipelineWhereAndForeach(t *testing.T) {
	r := evalSrc(t, `1,2,3,4,5 | Where-Object { $_ -gt 2 } | ForEach-Object { $_ * 10 }`)
	// each pipeline item becomes its own Output record, not one combined array.
	require.Len(t, r.Output, 3)
	var got []int64
	for _, v := range r.Output {
		got = append(got, v.I)
	}
	require.Equal(t, []int64{30, 40, 50}, got)
}

func TestEvalWriteOutputCmdlet(t *testing.T) {
	r := evalSrc(t, `Write-Output "hi" "there"`)
	require.Len(t, r.Output, 2)
	require.Equal(t, "hi", r.Output[0].S)
	require.Equal(t, "there", r.Output[1].S)
}

func TestEvalWriteHostGoesToHostWritesNotOutput(t *testing.T) {
	r := evalSrc(t, `Write-Host "visible"`)
	require.Empty(t, r.Output)
	require.Equal(t, []string{"visible"}, r.HostWrites)
}

func TestEvalUnknownCommandStaysUnknown(t *testing.T) {
	r := evalSrc(t, `Get-ChildItem -Path "C:\"`)
	require.Len(t, r.Output, 1)
	require.True(t, r.Output[0].IsUnknown())
}

func TestEvalSwitchStatement(t *testing.T) {
	r := evalSrc(t, `
$x = 2
switch ($x) {
    1 { "one" }
    2 { "two" }
    default { "other" }
}`)
	require.Equal(t, "two", r.Output[len(r.Output)-1].S)
}

func TestEvalHashTableIndexAndMember(t *testing.T) {
	r := evalSrc(t, `
$h = @{ Name = "Bob"; Age = 30 }
$h.Name`)
	require.Equal(t, "Bob", r.Output[len(r.Output)-1].S)
}

func TestEvalArrayIndexOutOfBounds(t *testing.T) {
	r := evalSrc(t, `
$arr = @(1,2,3)
$arr[10]`)
	require.NotEmpty(t, r.Errors)
	require.Equal(t, ErrIndexOutOfBounds, r.Errors[0].Kind)
	require.False(t, r.Success)
}

func TestEvalStringInterpolation(t *testing.T) {
	r := evalSrc(t, `
$name = "World"
"Hello, $name!"`)
	require.Equal(t, "Hello, World!", r.Output[len(r.Output)-1].S)
}

func TestEvalScopingFunctionDoesNotLeakLocals(t *testing.T) {
	r := evalSrc(t, `
function Inner() {
    $local = 99
}
Inner
$local`)
	// $local was never set in the outer scope; an unresolved read yields
	// $null, not the function's own local value.
	require.Equal(t, valNull, r.Output[len(r.Output)-1].Kind)
}

func TestEvalScriptScopeWritesVisibleEverywhere(t *testing.T) {
	r := evalSrc(t, `
function Bump() {
    $script:counter += 1
}
$script:counter = 0
Bump
Bump
$script:counter`)
	require.Equal(t, int64(2), r.Output[len(r.Output)-1].I)
}

func TestEvalDivideByZeroRecordsErrorAndContinues(t *testing.T) {
	r := evalSrc(t, `
1 / 0
"still ran"`)
	require.NotEmpty(t, r.Errors)
	require.False(t, r.Success)
	require.Equal(t, "still ran", r.Output[len(r.Output)-1].S)
}

func TestEvalStepBudget(t *testing.T) {
	prog, err := NewParser(`
$i = 0
while ($true) {
    $i++
}`).ParseProgram()
	require.NoError(t, err)
	sess := NewSession(WithMaxSteps(50))
	ev := sess.NewEvaluator()
	r := ev.Eval(prog)
	require.NotEmpty(t, r.Errors)
	require.Equal(t, ErrRecursionLimit, r.Errors[len(r.Errors)-1].Kind)
}

func TestEvalEnvironmentVariableRead(t *testing.T) {
	prog, err := NewParser(`$env:MY_VAR`).ParseProgram()
	require.NoError(t, err)
	sess := NewSession(WithEnvironment(map[string]string{"MY_VAR": "hello"}))
	ev := sess.NewEvaluator()
	r := ev.Eval(prog)
	require.Equal(t, "hello", r.Output[0].S)
}

func TestEvalEnvironmentVariableWriteIsNoop(t *testing.T) {
	prog, err := NewParser(`$env:MY_VAR = "ignored"`).ParseProgram()
	require.NoError(t, err)
	sess := NewSession(WithEnvironment(map[string]string{"MY_VAR": "original"}))
	ev := sess.NewEvaluator()
	r := ev.Eval(prog)
	require.Empty(t, r.Errors)
	require.Empty(t, r.Output)
}

func TestEvalSeedVariablesFromOptions(t *testing.T) {
	prog, err := NewParser(`$seeded`).ParseProgram()
	require.NoError(t, err)
	sess := NewSession(WithVariables(map[string]Val{"seeded": StringVal("preset")}))
	ev := sess.NewEvaluator()
	r := ev.Eval(prog)
	require.Equal(t, "preset", r.Output[0].S)
}

func TestEvalMatchSetsMatchesVariable(t *testing.T) {
	r := evalSrc(t, `
if ("abc123" -match "(?<num>\d+)") {
    $matches.num
}`)
	require.Equal(t, "123", r.Output[0].S)
}

func TestEvalNotMatchIsTrueWhenPatternAbsent(t *testing.T) {
	r := evalSrc(t, `"abc" -notmatch "xyz"`)
	require.True(t, r.Output[0].B)
}

func TestEvalInvalidCastScenarioFromSpec(t *testing.T) {
	r := evalSrc(t, `$var = 1 + "Hello, World!"
$var`)
	require.False(t, r.Success)
	require.Len(t, r.Errors, 1)
	require.Equal(t, ErrInvalidCast, r.Errors[0].Kind)
	// $var was never bound, so reading it back auto-vivifies to $null.
	require.Len(t, r.Output, 1)
	require.True(t, r.Output[0].IsNull())
}
