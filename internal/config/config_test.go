package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "mark", cfg.Binder.TagKey)
	assert.False(t, cfg.Binder.Strict)
	assert.Equal(t, "table", cfg.Output.Format)
	assert.Equal(t, "auto", cfg.Output.Color)
	assert.Equal(t, "warn", cfg.Log.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[binder]
strict = true

[output]
format = "json"

[sources]
definitions = ["defs/*.yaml"]
packages = ["./store"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Binder.Strict)
	assert.Equal(t, "mark", cfg.Binder.TagKey)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "auto", cfg.Output.Color)
	assert.Equal(t, []string{filepath.Join(filepath.Dir(path), "defs/*.yaml")}, cfg.Sources.Definitions)
	assert.Equal(t, []string{"./store"}, cfg.Sources.Packages)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(writeConfig(t, "[output]\nformat = \"xml\"\ncolor = \"sometimes\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output.format")
	assert.Contains(t, err.Error(), "output.color")

	_, err = Load(writeConfig(t, "[binder]\nstrict = true\nstrikt = false\n"))
	require.ErrorContains(t, err, "binder.strikt")

	_, err = Load(writeConfig(t, "[binder\n"))
	require.ErrorContains(t, err, "failed to parse TOML")

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.yaml", "b.yaml", "c.toml"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	got, err := Expand([]string{filepath.Join(dir, "*.yaml"), filepath.Join(dir, "none.yaml")})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yaml"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "none.yaml"),
	}, got)

	_, err = Expand([]string{"["})
	require.Error(t, err)
}
