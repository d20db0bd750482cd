package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/ablfmt/formatter"
)

func TestManagerDefaultsAndPrefix(t *testing.T) {
	m := New(map[string]any{
		"AblFormatter.ifFormattingThenLocation": "New",
		"tabSize":                               2.0,
	})

	assert.Equal(t, "New", m.Get(IfThenLocation))
	assert.Equal(t, "New", m.Get("AblFormatter."+IfThenLocation))
	assert.Equal(t, true, m.Get(BlockFormatting))
	assert.Nil(t, m.Get("unknown"))
	assert.Equal(t, 2, m.TabSize())
	assert.Equal(t, formatter.CasingPreserve, m.Casing())
}

func TestManagerTabSizeFallback(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int
	}{
		{"int", 3, 3},
		{"float", 8.0, 8},
		{"string", "6", 6},
		{"fraction", 2.5, DefaultTabSize},
		{"zero", 0, DefaultTabSize},
		{"garbage", "x", DefaultTabSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(map[string]any{KeyTabSize: tt.value}).TabSize())
		})
	}
}

func TestManagerCasing(t *testing.T) {
	assert.Equal(t, formatter.CasingUpper, New(map[string]any{KeyCasing: "upper"}).Casing())
	assert.Equal(t, formatter.CasingUpper, New(map[string]any{KeyCasing: "", KeyLegacyUpper: true}).Casing())
	assert.Equal(t, formatter.CasingLower, New(map[string]any{KeyCasing: "lower", KeyLegacyUpper: true}).Casing())
}

func TestWithOverridesDoesNotPersist(t *testing.T) {
	base := New(nil)
	over := base.WithOverrides(map[string]any{"AblFormatter." + IfThenLocation: "New"})

	assert.Equal(t, "New", over.Get(IfThenLocation))
	assert.Equal(t, "Same", base.Get(IfThenLocation))

	again := over.(*Manager).WithOverrides(map[string]any{IfDoLocation: "New"})
	assert.Equal(t, "New", again.Get(IfThenLocation))
	assert.Equal(t, "New", again.Get(IfDoLocation))
	assert.Equal(t, "Same", over.Get(IfDoLocation))

	settings := again.(*Manager).Settings()
	assert.Equal(t, "New", settings[IfDoLocation])
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".ablfmt.yaml")
	content := "eol: crlf\njobs: 2\nsettings:\n  tabSize: 2\n  ifFormattingThenLocation: New\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	nested := filepath.Join(dir, "src", "app")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	assert.Equal(t, path, Discover(nested))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "crlf", cfg.EOL)
	assert.Equal(t, 2, cfg.Jobs)
	assert.Equal(t, DefaultFile().Include, cfg.Include)

	m := cfg.Manager()
	assert.Equal(t, 2, m.TabSize())
	assert.Equal(t, "New", m.Get(IfThenLocation))
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrConfigNotFound)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("settings: [unclosed"), 0o644))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "parsing config file")
}

func TestEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("ABLFMT_CASING=lower\nABLFMT_TAB_SIZE=3\n"), 0o644))

	t.Setenv(EnvCasing, "")
	t.Setenv(EnvTabSize, "")
	os.Unsetenv(EnvCasing)
	os.Unsetenv(EnvTabSize)
	require.NoError(t, LoadDotEnv(envFile, filepath.Join(dir, "absent.env")))

	cfg := DefaultFile()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "lower", cfg.Settings[KeyCasing])
	assert.Equal(t, 3, cfg.Manager().TabSize())

	t.Setenv(EnvTabSize, "zero")
	assert.Error(t, DefaultFile().ApplyEnv())
}
