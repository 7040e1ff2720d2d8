package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileReturnsZeroValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.yaml")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, FileConfig{}, cfg)
}

func TestLoadConfigValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "culture: en-US\nrender_level: 4\nmax_depth: 50\nmax_steps: 1000\ndotenv_path: .env\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "en-US", cfg.Culture)
	require.Equal(t, 4, cfg.RenderLvl)
	require.Equal(t, 50, cfg.MaxDepth)
	require.Equal(t, 1000, cfg.MaxSteps)
	require.Equal(t, ".env", cfg.DotEnvPath)
}

func TestLoadConfigMalformedYAMLErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("culture: [this is not: valid"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestFileConfigApplyToOnlyOverlaysNonZeroFields(t *testing.T) {
	opts := DefaultCLIOptions()
	opts.Culture = "fr-FR"
	opts.RenderLvl = 2

	cfg := FileConfig{MaxDepth: 99}
	cfg.ApplyTo(&opts)

	require.Equal(t, "fr-FR", opts.Culture) // untouched: cfg.Culture was empty
	require.Equal(t, 2, opts.RenderLvl)     // untouched: cfg.RenderLvl was zero
	require.Equal(t, 99, opts.MaxDepth)     // overlaid
}

func TestFileConfigApplyToOverlaysAllSetFields(t *testing.T) {
	opts := DefaultCLIOptions()
	cfg := FileConfig{
		Culture:    "ja-JP",
		RenderLvl:  5,
		MaxDepth:   10,
		MaxSteps:   20,
		DotEnvPath: "/tmp/.env",
	}
	cfg.ApplyTo(&opts)

	require.Equal(t, "ja-JP", opts.Culture)
	require.Equal(t, 5, opts.RenderLvl)
	require.Equal(t, 10, opts.MaxDepth)
	require.Equal(t, 20, opts.MaxSteps)
	require.Equal(t, "/tmp/.env", opts.DotEnvPath)
}
