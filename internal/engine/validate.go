package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/shlex"
)

// runValidate executes the original script under a real PowerShell and
// compares its stdout against the Output stream our evaluator captured for
// the same source, as a second opinion on whether the evaluation actually
// matches the script's real behavior.
func runValidate(opts CLIOptions, src string, result *ScriptResult) error {
	if opts.UseStdin || opts.InputFile == "" {
		return fmt.Errorf("-validate requires -i (file input)")
	}
	pwsh, err := findPowerShell()
	if err != nil {
		return err
	}
	args, err := buildValidateArgs(opts.ValidateArgs)
	if err != nil {
		return wrapErr(err, "parsing -validate-args")
	}
	timeout := time.Duration(opts.ValidateTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ignoreStderr := strings.EqualFold(strings.TrimSpace(opts.ValidateStderr), "ignore")

	realOut, realErr, realCode, err := runScript(pwsh, opts.InputFile, args, timeout)
	if err != nil {
		return fmt.Errorf("running under %s: %w", pwsh, err)
	}

	ourOut := []byte(joinOutputLines(result.Output))
	ok := bytes.Equal(bytes.TrimRight(realOut, "\n"), bytes.TrimRight(ourOut, "\n"))
	if !opts.Quiet {
		if ok {
			fmt.Fprintf(os.Stderr, "%sValidate:%s PASS (pwsh exit %d, stdout matches)\n", Green, Reset, realCode)
		} else {
			fmt.Fprintf(os.Stderr, "%sValidate:%s FAIL\n", Red, Reset)
			fmt.Fprintf(os.Stderr, "  pwsh stdout (%d bytes) differs from evaluator output (%d bytes)\n", len(realOut), len(ourOut))
			if !ignoreStderr && len(realErr) > 0 {
				fmt.Fprintf(os.Stderr, "  pwsh stderr: %s\n", strings.TrimSpace(string(realErr)))
			}
		}
	}
	if !ok {
		return fmt.Errorf("validate failed: evaluator output does not match pwsh stdout")
	}
	return nil
}

func joinOutputLines(items []Val) string {
	lines := make([]string, len(items))
	for i, v := range items {
		lines[i] = v.String()
	}
	return strings.Join(lines, "\n")
}

func findPowerShell() (string, error) {
	for _, name := range []string{"pwsh", "powershell"} {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("PowerShell not found (pwsh or powershell)")
}

func buildValidateArgs(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	return shlex.Split(s)
}

func runScript(pwsh, scriptPath string, scriptArgs []string, timeout time.Duration) (stdout, stderr []byte, exitCode int, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	absPath, pathErr := filepath.Abs(scriptPath)
	if pathErr != nil {
		absPath = scriptPath
	}
	escaped := strings.ReplaceAll(absPath, "'", "''")
	wrapper := fmt.Sprintf(
		"[Console]::OutputEncoding=[Text.Encoding]::UTF8\n$OutputEncoding=[Text.Encoding]::UTF8\n& '%s' @args",
		escaped,
	)
	tmp, tmpErr := os.CreateTemp("", "psdeob-validate-*.ps1")
	if tmpErr != nil {
		return nil, nil, -1, tmpErr
	}
	defer os.Remove(tmp.Name())
	tmp.WriteString(wrapper)
	tmp.Close()

	args := []string{"-NoProfile", "-ExecutionPolicy", "Bypass", "-File", tmp.Name()}
	args = append(args, scriptArgs...)
	cmd := exec.CommandContext(ctx, pwsh, args...)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	runErr := cmd.Run()
	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			return outBuf.Bytes(), errBuf.Bytes(), exitErr.ExitCode(), nil
		}
		return nil, nil, -1, runErr
	}
	return outBuf.Bytes(), errBuf.Bytes(), 0, nil
}
