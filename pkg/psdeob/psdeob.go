// Package psdeob is the public, embeddable API over internal/engine: parse
// a PowerShell script, evaluate what can be safely reduced, and render the
// deobfuscated source back out. cmd/psdeob is a thin CLI wrapper around the
// same two calls.
package psdeob

import "github.com/benzoXdev/psdeob/internal/engine"

// Option configures a Deobfuscate run; see the With* constructors below.
type Option = func(*engine.Options)

var (
	WithCulture               = engine.WithCulture
	WithVariables             = engine.WithVariables
	WithEnvironment           = engine.WithEnvironment
	WithEnvironmentFromProcess = engine.WithEnvironmentFromProcess
	WithDotEnv                = engine.WithDotEnv
	WithMaxDepth              = engine.WithMaxDepth
	WithMaxSteps              = engine.WithMaxSteps
	WithRenderProfile         = engine.WithRenderProfile
)

// Result mirrors engine.ScriptResult plus the rendered source text.
type Result struct {
	Rendered string
	Output   []engine.Val
	Errors   []*engine.ValError
	Success  bool
	Steps    int
}

// Deobfuscate parses, evaluates, and renders source in one call.
func Deobfuscate(source string, opts ...Option) (*Result, error) {
	prog, err := engine.NewParser(source).ParseProgram()
	if err != nil {
		return nil, err
	}
	sess := engine.NewSession(opts...)
	ev := sess.NewEvaluator()
	sr := ev.Eval(prog)
	return &Result{
		Rendered: engine.Render(ev, prog, source),
		Output:   sr.Output,
		Errors:   sr.Errors,
		Success:  sr.Success,
		Steps:    sr.Steps,
	}, nil
}

// Analyze exposes static opacity analysis without evaluating the script.
func Analyze(source string) *engine.ScriptFeatures {
	return engine.AnalyzeScript(source)
}
