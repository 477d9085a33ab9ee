package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func missingConfig(t *testing.T) string {
	return filepath.Join(t.TempDir(), "none.yml")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "portfolio version dev (commit: none)\n", out)
}

func TestContentCheck(t *testing.T) {
	out, err := run(t, "content", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "content ok:")

	out, err = run(t, "content", "check", "--json")
	require.NoError(t, err)
	var counts map[string]int
	require.NoError(t, json.Unmarshal([]byte(out), &counts))
	assert.Positive(t, counts["work"])
	assert.Positive(t, counts["languages"])
}

func TestThemeResolve(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--preference", "light"}, "light\n"},
		{[]string{"--preference", "dark"}, "dark\n"},
		{[]string{"--preference", "system"}, "light\n"},
		{[]string{"--preference", "system", "--prefers-dark"}, "dark\n"},
		{nil, "dark\n"},
	}
	for _, tt := range tests {
		out, err := run(t, append([]string{"theme", "resolve"}, tt.args...)...)
		require.NoError(t, err)
		assert.Equal(t, tt.want, out, "args %v", tt.args)
	}

	_, err := run(t, "theme", "resolve", "--preference", "sepia")
	assert.Error(t, err)
}

func TestThemeScriptUsesConfiguredDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.yml")
	require.NoError(t, os.WriteFile(path, []byte("theme:\n  default: light\n"), 0o644))

	out, err := run(t, "--config", path, "theme", "script")
	require.NoError(t, err)
	assert.Contains(t, out, ":'light';")

	out, err = run(t, "--config", missingConfig(t), "theme", "script")
	require.NoError(t, err)
	assert.Contains(t, out, ":'dark';")
}

func TestServeRejectsInvalidConfig(t *testing.T) {
	_, err := run(t, "--config", missingConfig(t), "serve", "--port", "http")
	assert.ErrorContains(t, err, "invalid port")

	path := filepath.Join(t.TempDir(), "portfolio.yml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: loud\n"), 0o644))
	_, err = run(t, "--config", path, "serve")
	assert.ErrorContains(t, err, "log level")
}
