package engine

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML shape under the XDG config dir
// (psdeob/config.yaml), letting a host pin culture/budgets/render level
// without passing flags on every invocation.
type FileConfig struct {
	Culture    string `yaml:"culture"`
	RenderLvl  int    `yaml:"render_level"`
	MaxDepth   int    `yaml:"max_depth"`
	MaxSteps   int    `yaml:"max_steps"`
	DotEnvPath string `yaml:"dotenv_path"`
}

// defaultConfigPath resolves psdeob/config.yaml under the user's XDG
// config home, creating no directories (xdg.ConfigFile only computes the
// path).
func defaultConfigPath() (string, error) {
	return xdg.ConfigFile(filepath.Join("psdeob", "config.yaml"))
}

// LoadConfig reads a FileConfig from path, or from the default XDG
// location when path is empty. A missing file is not an error — it
// returns the zero-value FileConfig.
func LoadConfig(path string) (FileConfig, error) {
	var cfg FileConfig
	if path == "" {
		p, err := defaultConfigPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyTo overlays every non-zero FileConfig field onto opts; it does not
// know which flags were set explicitly. Flags win only when ApplyTo runs
// before ParseFlags; main applies a file named by -config after
// ParseFlags, so its non-zero fields override the flag values.
func (c FileConfig) ApplyTo(opts *CLIOptions) {
	if c.Culture != "" {
		opts.Culture = c.Culture
	}
	if c.RenderLvl != 0 {
		opts.RenderLvl = c.RenderLvl
	}
	if c.MaxDepth != 0 {
		opts.MaxDepth = c.MaxDepth
	}
	if c.MaxSteps != 0 {
		opts.MaxSteps = c.MaxSteps
	}
	if c.DotEnvPath != "" {
		opts.DotEnvPath = c.DotEnvPath
	}
}
