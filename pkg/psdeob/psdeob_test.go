package psdeob

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeobfuscateFoldsConstantArithmetic(t *testing.T) {
	res, err := Deobfuscate("$x = 2 + 3\n")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Contains(t, res.Rendered, "5")
}

func TestDeobfuscateReturnsParseError(t *testing.T) {
	_, err := Deobfuscate("if ($true) {\n")
	require.Error(t, err)
}

func TestDeobfuscateAppliesOptions(t *testing.T) {
	res, err := Deobfuscate("$env:FOO\n", WithEnvironment(map[string]string{"FOO": "bar"}))
	require.NoError(t, err)
	require.Len(t, res.Output, 1)
	require.Equal(t, "bar", res.Output[0].S)
}

func TestAnalyzeReportsOpacitySignals(t *testing.T) {
	features := Analyze(`Invoke-Expression "Write-Host hi"`)
	require.Greater(t, features.OpacityScore, 0)
}
