package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func baseOpts(t *testing.T) (CLIOptions, string, string) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.ps1")
	out := filepath.Join(dir, "out.ps1")
	opts := DefaultCLIOptions()
	opts.UseStdout = false
	opts.Quiet = true
	opts.InputFile = in
	opts.OutputFile = out
	return opts, in, out
}

func TestRunWritesRenderedOutputFile(t *testing.T) {
	opts, in, out := baseOpts(t)
	require.NoError(t, os.WriteFile(in, []byte("$x = 1 + 2\n"), 0o644))

	err := Run(opts)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Contains(t, string(data), "3")
}

func TestRunMissingInputFileErrors(t *testing.T) {
	opts, _, _ := baseOpts(t)
	opts.InputFile = filepath.Join(t.TempDir(), "nope.ps1")

	err := Run(opts)
	require.Error(t, err)
	require.Contains(t, err.Error(), "file not found")
}

func TestRunInputIsDirectoryErrors(t *testing.T) {
	opts, in, _ := baseOpts(t)
	require.NoError(t, os.Remove(in))
	require.NoError(t, os.Mkdir(in, 0o755))

	err := Run(opts)
	require.Error(t, err)
	require.Contains(t, err.Error(), "directory")
}

func TestRunEmptyInputFileErrors(t *testing.T) {
	opts, in, _ := baseOpts(t)
	require.NoError(t, os.WriteFile(in, []byte{}, 0o644))

	err := Run(opts)
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty")
}

func TestRunNonUTF8InputErrors(t *testing.T) {
	opts, in, _ := baseOpts(t)
	require.NoError(t, os.WriteFile(in, []byte{0xff, 0xfe, 0x00, 0x80}, 0o644))

	err := Run(opts)
	require.Error(t, err)
	require.Contains(t, err.Error(), "UTF-8")
}

func TestRunMissingInputAndOutputFlagsErrors(t *testing.T) {
	opts := DefaultCLIOptions()
	opts.UseStdout = false
	opts.Quiet = true

	err := Run(opts)
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing -i or -stdin")
}

func TestRunMissingOutputFlagErrors(t *testing.T) {
	opts := DefaultCLIOptions()
	opts.UseStdout = false
	opts.Quiet = true
	dir := t.TempDir()
	in := filepath.Join(dir, "in.ps1")
	require.NoError(t, os.WriteFile(in, []byte("1+1\n"), 0o644))
	opts.InputFile = in

	err := Run(opts)
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing -o or -stdout")
}

func TestRunParseErrorIsReturned(t *testing.T) {
	opts, in, _ := baseOpts(t)
	require.NoError(t, os.WriteFile(in, []byte("if ($true) {\n"), 0o644))

	err := Run(opts)
	require.Error(t, err)
}

func TestRunCreatesOutputDirectoryIfMissing(t *testing.T) {
	opts, in, _ := baseOpts(t)
	require.NoError(t, os.WriteFile(in, []byte("$x = 5\n"), 0o644))
	opts.OutputFile = filepath.Join(t.TempDir(), "nested", "sub", "out.ps1")

	err := Run(opts)
	require.NoError(t, err)
	_, statErr := os.Stat(opts.OutputFile)
	require.NoError(t, statErr)
}

func TestRunWithAnalyzeAndReportFlagsSucceeds(t *testing.T) {
	opts, in, _ := baseOpts(t)
	require.NoError(t, os.WriteFile(in, []byte("Invoke-Expression 'Write-Host hi'\n"), 0o644))
	opts.Analyze = true
	opts.Report = true

	err := Run(opts)
	require.NoError(t, err)
}

func TestParseCultureFallsBackOnInvalidTag(t *testing.T) {
	tag := parseCulture("not-a-real-culture-tag-!!")
	require.Equal(t, "en-US", tag.String())
}

func TestInputLabelAndOutputLabel(t *testing.T) {
	opts := CLIOptions{UseStdin: true}
	require.Equal(t, "<stdin>", inputLabel(opts))

	opts2 := CLIOptions{InputFile: "foo.ps1"}
	require.Equal(t, "foo.ps1", inputLabel(opts2))

	opts3 := CLIOptions{UseStdout: true}
	require.Equal(t, "<stdout>", outputLabel(opts3))

	opts4 := CLIOptions{OutputFile: "bar.ps1"}
	require.Equal(t, "bar.ps1", outputLabel(opts4))
}
