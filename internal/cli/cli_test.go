package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/ablfmt/db"
	"github.com/oxhq/ablfmt/models"
	"github.com/oxhq/ablfmt/worker"
)

type fixture struct {
	dir    string
	config string
}

func newFixture(t *testing.T, files map[string]string) *fixture {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	config := filepath.Join(dir, ".ablfmt.yaml")
	require.NoError(t, os.WriteFile(config, []byte("jobs: 2\n"), 0o644))
	return &fixture{dir: dir, config: config}
}

func (f *fixture) path(name string) string { return filepath.Join(f.dir, name) }

func (f *fixture) read(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(f.path(name))
	require.NoError(t, err)
	return string(data)
}

// execute runs the root command and returns what it wrote to stdout.
func (f *fixture) execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(BuildInfo{Version: "test"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--config", f.config, "--color", "never"))
	err := cmd.Execute()
	return out.String(), err
}

func TestFormatStdin(t *testing.T) {
	f := newFixture(t, nil)
	out, err := f.execute(t, "x  =  a+b.\ndisplay   x.\n", "format", "-")
	require.NoError(t, err)
	assert.Equal(t, "x = a + b.\ndisplay x.\n", out)
}

func TestFormatWrite(t *testing.T) {
	f := newFixture(t, map[string]string{
		"a.p":       "x  =  1.\n",
		"src/b.p":   "y = 2.\n",
		"notes.txt": "x  =  1.\n",
	})

	out, err := f.execute(t, "", "format", "--write", f.dir)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, "x = 1.\n", f.read(t, "a.p"))
	assert.Equal(t, "y = 2.\n", f.read(t, "src/b.p"))
	assert.Equal(t, "x  =  1.\n", f.read(t, "notes.txt"))
}

func TestFormatCheck(t *testing.T) {
	f := newFixture(t, map[string]string{
		"a.p": "x  =  1.\n",
		"b.p": "y = 2.\n",
	})

	out, err := f.execute(t, "", "format", "--check", f.dir)
	assert.ErrorIs(t, err, ErrUnformatted)
	assert.Equal(t, f.path("a.p")+"\n", out)
	assert.Equal(t, "x  =  1.\n", f.read(t, "a.p"), "check never writes")

	_, err = f.execute(t, "", "format", "--check", f.path("b.p"))
	assert.NoError(t, err)
}

func TestFormatDiff(t *testing.T) {
	f := newFixture(t, map[string]string{"a.p": "x  =  1.\n"})

	out, err := f.execute(t, "", "format", "--diff", f.path("a.p"))
	require.NoError(t, err)
	assert.Contains(t, out, "-x  =  1.\n")
	assert.Contains(t, out, "+x = 1.\n")
}

func TestFormatInvalidFlags(t *testing.T) {
	f := newFixture(t, map[string]string{"a.p": "x = 1.\n"})

	tests := []struct {
		name string
		args []string
	}{
		{"write and check", []string{"format", "--write", "--check", f.dir}},
		{"unknown eol", []string{"format", "--eol", "nl", f.dir}},
		{"bad pattern", []string{"format", "--include", "[a.p", f.dir}},
		{"missing path", []string{"format", f.path("missing.p")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.execute(t, "", tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestFormatEOL(t *testing.T) {
	f := newFixture(t, nil)
	out, err := f.execute(t, "do:\nx = 1.\nend.", "format", "--eol", "crlf", "-")
	require.NoError(t, err)
	assert.Equal(t, "do:\n    x = 1.\nend.", strings.ReplaceAll(out, "\r\n", "\n"))
}

func TestFormatHistory(t *testing.T) {
	f := newFixture(t, map[string]string{
		"a.p": "x  =  1.\n",
		"b.p": "y = 2.\n",
	})
	dsn := filepath.Join(t.TempDir(), "history.db")

	_, err := f.execute(t, "", "format", "--write", "--history", dsn, f.dir)
	require.NoError(t, err)
	_, err = f.execute(t, "", "format", "--write", "--history", dsn, f.dir)
	require.NoError(t, err)

	store, err := db.Open(dsn, false)
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 4)

	statuses := map[string][]string{}
	for i := len(runs) - 1; i >= 0; i-- {
		statuses[filepath.Base(runs[i].Path)] = append(statuses[filepath.Base(runs[i].Path)], runs[i].Status)
	}
	assert.ElementsMatch(t, []string{models.StatusFormatted, models.StatusSkipped}, statuses["a.p"])
	assert.ElementsMatch(t, []string{models.StatusUnchanged, models.StatusSkipped}, statuses["b.p"])

	out, err := f.execute(t, "", "history", "--history", dsn, "--limit", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "STATUS")
	assert.Equal(t, 2, strings.Count(out, "skipped"))
}

func TestHistoryRequiresDatabase(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.execute(t, "", "history")
	assert.ErrorContains(t, err, "no history database")
}

func TestCheck(t *testing.T) {
	f := newFixture(t, map[string]string{
		"a.p": "x  =  1.\n",
		"b.p": "do:\nif a then x = 1. else x = 2.\nend.\n",
	})

	out, err := f.execute(t, "", "check", f.dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ "+f.path("a.p"))
	assert.Contains(t, out, "✓ "+f.path("b.p"))
	assert.Contains(t, out, "2 files, 2 stable, 0 unstable")
}

func TestParse(t *testing.T) {
	f := newFixture(t, map[string]string{"a.p": "x = 1.\nthen ) (.\n"})

	out, err := f.execute(t, "", "parse", f.path("a.p"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "(source_code"))
	assert.Contains(t, out, "\nerror 1:")

	out, err = f.execute(t, "x = 1.", "parse", "--json", "-")
	require.NoError(t, err)
	var resp worker.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, worker.TypeParseResult, resp.Type)
	require.NotNil(t, resp.Tree)
	assert.Equal(t, "source_code", resp.Tree.RootNode.Type)
	assert.False(t, resp.Tree.HasErrors)
	assert.Empty(t, resp.ErrorRanges)
}

func TestWorkerCommand(t *testing.T) {
	f := newFixture(t, nil)
	in := `{"type":"format","id":1,"text":"x  =  1."}` + "\n" + `{"type":"shutdown"}` + "\n"

	out, err := f.execute(t, in, "worker")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	var ready, result worker.Response
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &ready))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &result))
	assert.Equal(t, worker.TypeReady, ready.Type)
	assert.Equal(t, worker.TypeFormatResult, result.Type)
	assert.Equal(t, "x = 1.", result.FormattedText)
}

func TestStylesDiff(t *testing.T) {
	st := newStyles(false)
	diff := "--- a\n+++ b\n@@ -1 +1 @@\n-x\n+y\n"
	assert.Equal(t, diff, st.diff(diff))
	assert.Equal(t, "  a\n  b\n", indent("a\nb\n", "  "))
}

func TestColorEnabled(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, colorEnabled("always", &buf))
	assert.False(t, colorEnabled("never", &buf))
	assert.False(t, colorEnabled("auto", &buf))
}
