package engine

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

// maxInputSize is a safety limit to prevent memory exhaustion (100 MB).
const maxInputSize = 100 * 1024 * 1024

// utf8BOM is the UTF-8 Byte Order Mark (EF BB BF).
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// stripBOM removes the UTF-8 BOM from the beginning of data if present.
// The BOM must not be fed to the lexer — it would corrupt the first token.
func stripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, utf8BOM)
}

func readAllInput(opts CLIOptions) ([]byte, error) {
	if opts.UseStdin {
		data, err := io.ReadAll(io.LimitReader(bufio.NewReader(os.Stdin), maxInputSize+1))
		if err != nil {
			return nil, fmt.Errorf("stdin: %w", err)
		}
		if len(data) > maxInputSize {
			return nil, fmt.Errorf("input too large (>%d bytes, safety limit)", maxInputSize)
		}
		return stripBOM(data), nil
	}
	fi, err := os.Stat(opts.InputFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", opts.InputFile)
		}
		return nil, fmt.Errorf("reading input: %w", err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("input is a directory, not a file: %s", opts.InputFile)
	}
	if fi.Size() > maxInputSize {
		return nil, fmt.Errorf("file too large (%d bytes, max %d)", fi.Size(), maxInputSize)
	}
	data, err := os.ReadFile(opts.InputFile)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return stripBOM(data), nil
}

// validateUTF8 checks that data is valid UTF-8 (PowerShell source is text).
func validateUTF8(data []byte) error {
	if len(data) == 0 {
		return errors.New("file is empty")
	}
	if !utf8.Valid(data) {
		return errors.New("file is not valid UTF-8 — save it as UTF-8 (with or without BOM)")
	}
	return nil
}

func requireInOut(opts CLIOptions) error {
	if !opts.UseStdin && opts.InputFile == "" {
		return errors.New("missing -i or -stdin (use -i <inputFile> or pipe script to stdin)")
	}
	if !opts.UseStdout && opts.OutputFile == "" {
		return errors.New("missing -o or -stdout")
	}
	return nil
}
