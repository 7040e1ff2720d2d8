package engine

import (
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

// Options configures a Session. The zero value is a usable, minimal
// session: no seed variables, no environment overlay, depth limit 512,
// no step budget (spec.md §5).
type Options struct {
	Culture        language.Tag
	Variables      map[string]Val
	Environment    map[string]string
	DotEnvPath     string // optional path to a .env file to overlay onto Environment
	MaxDepth       int    // 0 means default (512)
	MaxSteps       int    // 0 means unbounded
	Profile        RenderProfile
}

// Session is the long-lived host for one script-evaluation lifetime: it
// owns the culture, the seeded environment, and the options that a Run
// constructs a fresh scopeStack/Evaluator from. A Session is re-usable
// across multiple ParseProgram + Eval calls; nothing here is evaluation
// state, which lives in Evaluator instead.
type Session struct {
	opts Options
}

// NewSession builds a Session applying functional options in order.
func NewSession(opts ...func(*Options)) *Session {
	o := Options{
		Culture:     language.AmericanEnglish,
		Variables:   map[string]Val{},
		Environment: map[string]string{},
		MaxDepth:    512,
		Profile:     DefaultRenderProfile(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = 512
	}
	if o.DotEnvPath != "" {
		if env, err := godotenv.Read(o.DotEnvPath); err == nil {
			for k, v := range env {
				o.Environment[k] = v
			}
		}
	}
	return &Session{opts: o}
}

// WithCulture sets the culture used for case-folding and formatting.
func WithCulture(tag language.Tag) func(*Options) {
	return func(o *Options) { o.Culture = tag }
}

// WithVariables seeds the script-scope frame with initial variable
// bindings, the way a caller supplies -Variable arguments to a host.
func WithVariables(vars map[string]Val) func(*Options) {
	return func(o *Options) {
		for k, v := range vars {
			o.Variables[k] = v
		}
	}
}

// WithEnvironment overlays $env:* entries; a nil map adds nothing. Use
// WithEnvironmentFromProcess to copy the process environment.
func WithEnvironment(env map[string]string) func(*Options) {
	return func(o *Options) {
		for k, v := range env {
			o.Environment[k] = v
		}
	}
}

// WithEnvironmentFromProcess seeds $env:* from the actual process
// environment, useful for validate.go's pwsh-comparison mode where the
// evaluator and the real shell must see the same environment.
func WithEnvironmentFromProcess() func(*Options) {
	return func(o *Options) {
		for _, kv := range os.Environ() {
			for i := 0; i < len(kv); i++ {
				if kv[i] == '=' {
					o.Environment[kv[:i]] = kv[i+1:]
					break
				}
			}
		}
	}
}

// WithDotEnv overlays the given .env file's entries onto the session
// environment.
func WithDotEnv(path string) func(*Options) {
	return func(o *Options) { o.DotEnvPath = path }
}

// WithMaxDepth overrides the recursion depth budget (spec.md §5).
func WithMaxDepth(n int) func(*Options) {
	return func(o *Options) { o.MaxDepth = n }
}

// WithMaxSteps sets an optional step-count budget; 0 means unbounded.
func WithMaxSteps(n int) func(*Options) {
	return func(o *Options) { o.MaxSteps = n }
}

// WithRenderProfile selects the render-verbosity profile (levels.go).
func WithRenderProfile(p RenderProfile) func(*Options) {
	return func(o *Options) { o.Profile = p }
}

// NewEvaluator builds an Evaluator seeded from this Session's options.
func (s *Session) NewEvaluator() *Evaluator {
	return newEvaluator(s.opts)
}
