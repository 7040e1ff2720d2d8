package engine

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// ScriptFeatures holds the result of static analysis on a PowerShell script,
// focused on which constructs the evaluator can safely reduce to literals
// and which ones will necessarily survive rendering as opaque, verbatim
// source: dynamic invocation, inline .NET/C#, and anything that talks to
// the outside world rather than computing a value.
type ScriptFeatures struct {
	HasDynamicInvoke  bool // Invoke-Expression, IEX, [scriptblock]::Create
	HasAddType        bool // Add-Type (inline C#/VB)
	HasDotNetRefl     bool // [System.Something], .NET reflection
	HasWMI            bool // Get-WmiObject, Get-CimInstance
	HasModulePatterns bool // Import-Module, Export-ModuleMember, .psm1
	HasClosures       bool // ForEach-Object { }, Where-Object { }
	HasCrypto         bool // SHA, AES, RSA, HMAC, crypto APIs
	HasBackgroundJobs bool // Start-Job, Start-ThreadJob, runspaces
	HasFileIO         bool // Get-Content, Set-Content, [IO.File]
	HasRemoting       bool // Invoke-Command, Enter-PSSession, -ComputerName
	HasErrorHandling  bool // try/catch/finally, trap, $ErrorActionPreference
	HasEnums          bool
	HasClasses        bool
	HasHereStrings    bool
	HasBracedVars     bool // ${varname} syntax

	LineCount     int
	FunctionCount int
	ClassCount    int
	StringCount   int
	OpacityScore  int // 0-100: how much of the script is expected to stay verbatim
	Warnings      []string
	Suggestions   []string
}

var (
	reFuncHeader  = regexp.MustCompile(`(?i)\bfunction\s+([A-Za-z_][A-Za-z0-9_-]*)\s*\(`)
	reFuncNoParam = regexp.MustCompile(`(?i)\bfunction\s+([A-Za-z_][A-Za-z0-9_-]*)\s*{`)
	reClass       = regexp.MustCompile(`(?im)^\s*class\s+\w+`)
	reEnum        = regexp.MustCompile(`(?im)^\s*enum\s+\w+`)
	reDQ          = regexp.MustCompile("\"(?:[^\"\r\n`]|`[^\r\n])*\"")
	reSQ          = regexp.MustCompile("'(?:[^'\r\n]|'')*'")
	reDotNet      = regexp.MustCompile(`\[System\.\w+|\[(?:IO|Net|Text|Security|Collections|Reflection)\.\w+`)
	reBracedVar   = regexp.MustCompile(`\$\{[^}]+\}`)
)

// AnalyzeScript performs static analysis on a PowerShell script and reports
// which constructs are expected to render opaque (verbatim) rather than
// reduce to a literal value, plus a 0-100 opacity estimate.
func AnalyzeScript(ps string) *ScriptFeatures {
	f := &ScriptFeatures{}
	f.LineCount = strings.Count(ps, "\n") + 1
	lower := strings.ToLower(ps)

	f.ClassCount = len(reClass.FindAllString(ps, -1))
	f.HasClasses = f.ClassCount > 0
	f.HasEnums = reEnum.MatchString(ps)
	f.FunctionCount = len(reFuncHeader.FindAllString(ps, -1)) + len(reFuncNoParam.FindAllString(ps, -1))
	f.StringCount = len(reDQ.FindAllString(ps, -1)) + len(reSQ.FindAllString(ps, -1))
	f.HasHereStrings = strings.Contains(ps, "@'") || strings.Contains(ps, "@\"")
	f.HasBracedVars = reBracedVar.MatchString(ps)

	f.HasDynamicInvoke = strings.Contains(lower, "invoke-expression") ||
		regexp.MustCompile(`(?i)\bIEX\b`).MatchString(ps) ||
		strings.Contains(lower, "scriptblock]::create")
	f.HasAddType = strings.Contains(lower, "add-type")
	f.HasDotNetRefl = reDotNet.MatchString(ps)
	f.HasWMI = strings.Contains(lower, "get-wmiobject") ||
		strings.Contains(lower, "get-ciminstance") ||
		strings.Contains(lower, "invoke-cimmethod")
	f.HasModulePatterns = strings.Contains(lower, "import-module") ||
		strings.Contains(lower, "export-modulemember") ||
		strings.Contains(lower, ".psm1")
	f.HasClosures = strings.Contains(lower, "foreach-object") || strings.Contains(lower, "where-object")
	f.HasCrypto = strings.Contains(lower, "sha256") || strings.Contains(lower, "aes") ||
		strings.Contains(lower, "hmac") || strings.Contains(lower, "cryptography")
	f.HasBackgroundJobs = strings.Contains(lower, "start-job") ||
		strings.Contains(lower, "start-threadjob") ||
		strings.Contains(lower, "runspacefactory") ||
		strings.Contains(lower, "runspacepool")
	f.HasFileIO = strings.Contains(lower, "get-content") || strings.Contains(lower, "set-content") ||
		strings.Contains(lower, "[io.file]") || strings.Contains(lower, "out-file")
	f.HasRemoting = strings.Contains(lower, "invoke-command") && strings.Contains(lower, "-computername")
	f.HasErrorHandling = (strings.Contains(lower, "try") && strings.Contains(lower, "catch")) ||
		strings.Contains(lower, "trap {") || strings.Contains(lower, "$erroractionpreference")

	f.computeOpacity()
	return f
}

// computeOpacity scores how much of the script is expected to survive
// rendering as opaque source rather than reduce to a literal, and collects
// human-readable reasons for the score.
func (f *ScriptFeatures) computeOpacity() {
	score := 0
	add := func(n int, warn string) {
		score += n
		f.Warnings = append(f.Warnings, warn)
	}
	if f.HasDynamicInvoke {
		add(25, "Invoke-Expression / IEX target is not a known cmdlet — its argument renders verbatim")
	}
	if f.HasAddType {
		add(20, "Add-Type embeds foreign (C#/VB) source — left untouched")
	}
	if f.HasDotNetRefl {
		add(10, ".NET type references are opaque outside the built-in static-member whitelist")
	}
	if f.HasWMI {
		add(15, "WMI/CIM cmdlets are not evaluated — their calls render verbatim")
	}
	if f.HasBackgroundJobs {
		add(15, "Background jobs/runspaces run foreign script blocks — left opaque")
	}
	if f.HasRemoting {
		add(15, "PS Remoting targets a remote session — left opaque")
	}
	if f.HasModulePatterns {
		add(10, "Imported module commands are unknown to the evaluator — left opaque")
	}
	if f.HasWMI || f.HasFileIO {
		f.Suggestions = append(f.Suggestions, "Commands that touch the filesystem or WMI never execute; only their literal arguments are reduced")
	}
	if f.HasClasses {
		f.Suggestions = append(f.Suggestions, fmt.Sprintf("Script defines %d class(es) — class bodies are not evaluated", f.ClassCount))
	}
	if score > 100 {
		score = 100
	}
	f.OpacityScore = score
}

// PrintAnalysis prints the script analysis to stderr.
func PrintAnalysis(f *ScriptFeatures, quiet bool) {
	if quiet {
		return
	}
	fmt.Fprintf(os.Stderr, "\n%s== Script Analysis ==%s\n", Cyan, Reset)
	fmt.Fprintf(os.Stderr, "Lines: %-6d Functions: %-4d Classes: %-4d Strings: %-4d\n",
		f.LineCount, f.FunctionCount, f.ClassCount, f.StringCount)
	fmt.Fprintf(os.Stderr, "%sOpacity estimate: %d/100%s (share of source expected to stay verbatim)\n",
		Green, f.OpacityScore, Reset)
	if len(f.Warnings) > 0 {
		fmt.Fprintf(os.Stderr, "%sWarnings:%s\n", Yellow, Reset)
		for _, w := range f.Warnings {
			fmt.Fprintf(os.Stderr, "  - %s\n", w)
		}
	}
	for _, s := range f.Suggestions {
		fmt.Fprintf(os.Stderr, "  note: %s\n", s)
	}
	fmt.Fprintln(os.Stderr)
}
