package engine

import (
	"flag"
	"fmt"
	"os"
)

// CLIOptions is the parsed command line for cmd/psdeob.
type CLIOptions struct {
	InputFile       string
	OutputFile      string
	UseStdin        bool
	UseStdout       bool
	Quiet           bool
	Analyze         bool
	Report          bool
	Validate        bool
	ValidateArgs    string
	ValidateTimeout int
	ValidateStderr  string
	ConfigPath      string
	DotEnvPath      string
	Culture         string
	RenderLvl       int
	MaxDepth        int
	MaxSteps        int
}

// DefaultCLIOptions returns the baseline CLIOptions before any config file
// or flag overrides it, so LoadConfig's result can seed flag.*Var defaults
// and still let an explicit flag win over the config file.
func DefaultCLIOptions() CLIOptions {
	return CLIOptions{
		UseStdout:       true,
		ValidateTimeout: 30,
		Culture:         "en-US",
		RenderLvl:       3,
		MaxDepth:        512,
	}
}

// ParseFlags parses os.Args into CLIOptions, starting from defaults (the
// caller typically seeds these from LoadConfig so the YAML config acts as
// a lower-precedence layer under explicit flags). The bool return is true
// when the process should exit immediately (help/version already printed).
func ParseFlags(defaults CLIOptions) (CLIOptions, bool) {
	opts := defaults
	flag.StringVar(&opts.InputFile, "i", defaults.InputFile, "PowerShell script input file (or use -stdin).")
	flag.StringVar(&opts.OutputFile, "o", defaults.OutputFile, "Deobfuscated output file (or use -stdout).")
	flag.BoolVar(&opts.UseStdin, "stdin", defaults.UseStdin, "Read script from STDIN.")
	flag.BoolVar(&opts.UseStdout, "stdout", defaults.UseStdout, "Write result to STDOUT.")
	flag.BoolVar(&opts.Quiet, "q", defaults.Quiet, "Quiet mode (no banner).")
	flag.BoolVar(&opts.Analyze, "analyze", defaults.Analyze, "Print a feature/opacity analysis before rendering.")
	flag.BoolVar(&opts.Report, "report", defaults.Report, "Emit an evaluation report (errors, step count, safety ratio).")
	flag.BoolVar(&opts.Validate, "validate", defaults.Validate, "Run the script under pwsh and compare its stdout to our captured Output stream.")
	flag.StringVar(&opts.ValidateArgs, "validate-args", defaults.ValidateArgs, "Arguments to pass to the script under -validate.")
	flag.IntVar(&opts.ValidateTimeout, "validate-timeout", defaults.ValidateTimeout, "Timeout in seconds for -validate's pwsh run.")
	flag.StringVar(&opts.ValidateStderr, "validate-stderr", defaults.ValidateStderr, "Set to \"ignore\" to skip comparing stderr under -validate.")
	flag.StringVar(&opts.ConfigPath, "config", defaults.ConfigPath, "Path to a YAML config file (default: XDG config dir).")
	flag.StringVar(&opts.DotEnvPath, "dotenv", defaults.DotEnvPath, "Optional .env file to seed $env: entries from.")
	flag.StringVar(&opts.Culture, "culture", defaults.Culture, "BCP-47 culture tag for string comparisons and -f formatting.")
	flag.IntVar(&opts.RenderLvl, "render-level", defaults.RenderLvl, "Render verbosity 1 (fully expanded) .. 5 (most compact).")
	flag.IntVar(&opts.MaxDepth, "max-depth", defaults.MaxDepth, "Recursion depth budget.")
	flag.IntVar(&opts.MaxSteps, "max-steps", defaults.MaxSteps, "Evaluation step budget (0 = unbounded).")
	var showHelp, showVersion bool
	flag.BoolVar(&showHelp, "h", false, "Show help.")
	flag.BoolVar(&showHelp, "help", false, "Show help.")
	flag.BoolVar(&showVersion, "version", false, "Show version and exit.")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  psdeob -i obfuscated.ps1 [-o clean.ps1] [options]\n")
		fmt.Fprintf(os.Stderr, "  psdeob -stdin -analyze -report < obfuscated.ps1\n\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nUnsafe commands and unresolvable expressions render verbatim rather than guessed.\n")
	}
	flag.Parse()
	if showVersion {
		fmt.Fprintln(os.Stderr, VersionFull())
		return CLIOptions{}, true
	}
	if showHelp {
		flag.Usage()
		return CLIOptions{}, true
	}
	return opts, false
}
