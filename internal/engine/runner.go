package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/text/language"
)

// Run is the single entry point cmd/psdeob calls: read input, parse,
// evaluate, render, and dispatch the optional -analyze/-report/-validate
// side channels, in that order.
func Run(opts CLIOptions) error {
	if !opts.Quiet {
		fmt.Println(bannerColor)
	}
	if err := requireInOut(opts); err != nil {
		return err
	}

	data, err := readAllInput(opts)
	if err != nil {
		return fmt.Errorf("input: %w", err)
	}
	if err := validateUTF8(data); err != nil {
		return err
	}
	src := string(data)

	if opts.Analyze {
		features := AnalyzeScript(src)
		PrintAnalysis(features, opts.Quiet)
	}

	start := time.Now()
	prog, perr := NewParser(src).ParseProgram()
	if perr != nil {
		return perr
	}

	sess := NewSession(
		WithCulture(parseCulture(opts.Culture)),
		WithDotEnv(opts.DotEnvPath),
		WithMaxDepth(opts.MaxDepth),
		WithMaxSteps(opts.MaxSteps),
		WithRenderProfile(RenderProfileForLevel(opts.RenderLvl)),
		WithEnvironmentFromProcess(),
	)
	ev := sess.NewEvaluator()
	result := ev.Eval(prog)
	rendered := Render(ev, prog, src)
	duration := time.Since(start)

	if err := writeOutput(opts, rendered); err != nil {
		return err
	}

	if opts.Report {
		features := AnalyzeScript(src)
		m := ComputeMetricsWithInput(rendered, len(data))
		r := Report{
			InputPath:    inputLabel(opts),
			OutputPath:   outputLabel(opts),
			RenderLevel:  opts.RenderLvl,
			StepCount:    result.Steps,
			OutputItems:  len(result.Output),
			ErrorCount:   len(result.Errors),
			Success:      result.Success,
			OpacityScore: features.OpacityScore,
			InputSize:    len(data),
			OutputSize:   len(rendered),
			Warnings:     reportWarningsFromErrors(result.Errors),
			Duration:     duration,
		}
		PrintReport(r, m)
	}

	if opts.Validate {
		return runValidate(opts, src, result)
	}
	return nil
}

func parseCulture(tag string) language.Tag {
	t, err := language.Parse(tag)
	if err != nil {
		return language.AmericanEnglish
	}
	return t
}

func inputLabel(opts CLIOptions) string {
	if opts.UseStdin || opts.InputFile == "" {
		return "<stdin>"
	}
	return opts.InputFile
}

func outputLabel(opts CLIOptions) string {
	if opts.UseStdout {
		return "<stdout>"
	}
	return opts.OutputFile
}

func writeOutput(opts CLIOptions, rendered string) error {
	if opts.UseStdout {
		_, err := os.Stdout.WriteString(rendered)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(opts.OutputFile), 0755); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(opts.OutputFile, []byte(rendered), 0600); err != nil {
		return err
	}
	if !opts.Quiet {
		fmt.Fprintf(os.Stderr, "%sWrote:%s %s\n", Green, Reset, opts.OutputFile)
	}
	return nil
}
