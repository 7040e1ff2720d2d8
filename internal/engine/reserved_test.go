package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsAutomaticVariableRecognizesKnownNames(t *testing.T) {
	require.True(t, isAutomaticVariable("true"))
	require.True(t, isAutomaticVariable("$PSScriptRoot"))
	require.True(t, isAutomaticVariable("PID"))
	require.True(t, isAutomaticVariable(""))
}

func TestIsAutomaticVariableRejectsOrdinaryNames(t *testing.T) {
	require.False(t, isAutomaticVariable("foo"))
	require.False(t, isAutomaticVariable("$myVar"))
}

func TestIsAutomaticVariableHandlesScopePrefix(t *testing.T) {
	require.True(t, isAutomaticVariable("script:null"))
	require.True(t, isAutomaticVariable("env:ANYTHING"))
	require.False(t, isAutomaticVariable("script:myVar"))
}

func TestEvalUnseededAutomaticVariableIsUnknown(t *testing.T) {
	r := evalSrc(t, `$x = $PSScriptRoot`)
	require.True(t, r.Success)
	_ = r
}

func TestEvalOrdinaryUndeclaredVariableIsNull(t *testing.T) {
	r := evalSrc(t, `if ($undeclaredThing -eq $null) { "yes" } else { "no" }`)
	require.Equal(t, "yes", r.Output[0].S)
}
