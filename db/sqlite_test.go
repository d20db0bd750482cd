package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/ablfmt/models"
)

func TestConnect(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name          string
		dsn           string
		expectedError bool
		errorContains string
	}{
		{
			name: "memory database",
			dsn:  ":memory:",
		},
		{
			name: "file database",
			dsn:  filepath.Join(dir, "history.db"),
		},
		{
			name: "nested directories",
			dsn:  filepath.Join(dir, "a", "b", "history.db"),
		},
		{
			name:          "unreachable libsql URL",
			dsn:           "http://127.0.0.1:1/db",
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := Connect(tt.dsn, false)
			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, db)
				return
			}
			require.NoError(t, err)
			sqlDB, err := db.DB()
			require.NoError(t, err)
			defer sqlDB.Close()

			require.NoError(t, sqlDB.Ping())
			assert.True(t, db.Migrator().HasTable("runs"))
		})
	}
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		dsn      string
		expected bool
	}{
		{"http://example.com", true},
		{"https://example.com", true},
		{"libsql://test.turso.io", true},
		{"/path/to/history.db", false},
		{"history.db", false},
		{":memory:", false},
		{"", false},
		{"http:/", false},
		{"libsq", false},
	}
	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			assert.Equal(t, tt.expected, isURL(tt.dsn))
		})
	}
}

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreRecordAndRecent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, path := range []string{"a.p", "b.p", "c.p"} {
		run := &models.Run{
			Path:      path,
			Status:    models.StatusUnchanged,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, store.Record(ctx, run))
		assert.Regexp(t, `^run_[0-9a-f]{16}$`, run.ID)
	}

	runs, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c.p", runs[0].Path)
	assert.Equal(t, "b.p", runs[1].Path)

	all, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStoreRecordKeepsID(t *testing.T) {
	store := openStore(t)
	run := &models.Run{ID: "run_fixed", Path: "a.p", Status: models.StatusSkipped}
	require.NoError(t, store.Record(context.Background(), run))
	assert.Equal(t, "run_fixed", run.ID)

	err := store.Record(context.Background(), &models.Run{ID: "run_fixed", Status: models.StatusSkipped})
	assert.Error(t, err)
}

func TestStoreFormatted(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	_, settings, err := SettingsJSON(map[string]any{"tabSize": 2})
	require.NoError(t, err)
	out := Digest([]byte("x = 1.\n"))

	require.NoError(t, store.Record(ctx, &models.Run{
		Path:           "a.p",
		BaseDigest:     Digest([]byte("x=1.\n")),
		AfterDigest:    out,
		SettingsDigest: settings,
		Status:         models.StatusFormatted,
	}))
	require.NoError(t, store.Record(ctx, &models.Run{
		Path:           "b.p",
		AfterDigest:    Digest([]byte("broken")),
		SettingsDigest: settings,
		Status:         models.StatusFailed,
	}))

	tests := []struct {
		name     string
		digest   string
		settings string
		expected bool
	}{
		{"recorded output", out, settings, true},
		{"other settings", out, Digest([]byte("{}")), false},
		{"unknown content", Digest([]byte("y = 2.\n")), settings, false},
		{"failed run", Digest([]byte("broken")), settings, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := store.Formatted(ctx, tt.digest, tt.settings)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
		})
	}
}

func TestSettingsJSONStable(t *testing.T) {
	a, da, err := SettingsJSON(map[string]any{"b": 1, "a": "x"})
	require.NoError(t, err)
	b, db, err := SettingsJSON(map[string]any{"a": "x", "b": 1})
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
	assert.Equal(t, da, db)
	assert.Len(t, da, 64)
}
