package engine

import "strings"

// automaticVariables are PowerShell automatic/preference variables that the
// evaluator computes or seeds itself rather than treating as ordinary
// user-assignable storage. Reference:
// https://learn.microsoft.com/en-us/powershell/module/microsoft.powershell.core/about/about_automatic_variables
var automaticVariables = map[string]bool{
	"$": true,
	"$args": true, "$input": true, "$null": true, "$true": true, "$false": true,
	"$error": true, "$foreach": true, "$?": true, "$^": true, "$_": true,
	"$host": true, "$pid": true, "$pwd": true, "$pshome": true, "$psversiontable": true,
	"$psboundparameters": true, "$myinvocation": true, "$pscmdlet": true,
	"$psscriptroot": true, "$pscommandpath": true,
	"$lastexitcode": true, "$ofs": true,
	"$stacktrace": true, "$sender": true, "$eventargs": true, "$event": true,
	"$nestedpromptlevel": true, "$matches": true, "$consolefilename": true,
	"$shellid": true, "$executioncontext": true,
	"$this": true, "$isglobal": true, "$isscript": true,
	"$using": true, "$variable": true, "$workflow": true,
	"$psitem":                     true,
	"$psdebugcontext":             true,
	"$psculture":                  true,
	"$psuiculture":                true,
	"$psedition":                  true,
	"$iswindows":                  true,
	"$islinux":                    true,
	"$ismacos":                    true,
	"$iscoreclr":                  true,
	"$profile":                    true,
	"$home":                       true,
	"$env":                        true,
	"$switch":                     true,
	"$psdefaultparametervalues":   true,
	"$outputencoding":             true,
	"$erroractionpreference":      true,
	"$warningpreference":          true,
	"$verbosepreference":          true,
	"$debugpreference":            true,
	"$progresspreference":         true,
	"$confirmpreference":          true,
	"$whatifpreference":           true,
	"$informationpreference":      true,
}

func init() {
	m := make(map[string]bool)
	for k := range automaticVariables {
		m[strings.ToLower(k)] = true
	}
	automaticVariables = m
}

// isAutomaticVariable reports whether name (with or without a leading $,
// and possibly scope-prefixed, e.g. "$script:null") names a variable the
// session seeds or computes itself rather than ordinary user storage.
func isAutomaticVariable(name string) bool {
	if name == "" {
		return true
	}
	if !strings.HasPrefix(name, "$") {
		name = "$" + name
	}
	lower := strings.ToLower(name)
	if automaticVariables[lower] {
		return true
	}
	if strings.Contains(lower, ":") {
		parts := strings.SplitN(lower, ":", 2)
		scope := strings.TrimPrefix(parts[0], "$")
		if scope == "env" {
			return true
		}
		baseName := "$" + parts[1]
		if automaticVariables[baseName] {
			return true
		}
	}
	return false
}
