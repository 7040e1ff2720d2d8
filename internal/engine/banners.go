package engine

import (
	"fmt"
	"runtime"
	"strings"
)

const (
	version = "1.0.0"
	author  = "BenzoXdev"
)

// bannerColor is the colored banner for CLI output.
var bannerColor = Cyan + "psdeob" + Reset + " | v." + version + " | " + Gray + "https://github.com/BenzoXdev/psdeob" + Reset

// PrintBanner prints the banner (for interactive mode).
func PrintBanner() {
	fmt.Print(bannerColor)
}

// Version returns the version string.
func Version() string {
	return version
}

// VersionFull returns version with Go and platform info.
func VersionFull() string {
	return fmt.Sprintf("psdeob v%s (%s/%s, %s)", version, runtime.GOOS, runtime.GOARCH, runtime.Version())
}

// ErrorHint returns a helpful hint for common errors.
func ErrorHint(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "file not found"):
		return "Check the path with -i. Use absolute paths or run from the project directory."
	case strings.Contains(msg, "not valid UTF-8"):
		return "Re-save the file as UTF-8 (with or without BOM) in your editor."
	case strings.Contains(msg, "missing -i") || strings.Contains(msg, "missing -stdin"):
		return "Specify input: psdeob -i script.ps1"
	case strings.Contains(msg, "parse error"):
		return "The script could not be parsed; check for unterminated strings or here-strings."
	case strings.Contains(msg, "file is empty"):
		return "The input file has no content. Check the path and file."
	case strings.Contains(msg, "validate failed"):
		return "The evaluator's captured output diverged from pwsh's actual output for this script."
	case strings.Contains(msg, "too large"):
		return "The input file exceeds the safety limit."
	case strings.Contains(msg, "recursion limit"):
		return "Increase -max-depth if the script is legitimately deeply recursive."
	}
	return ""
}
