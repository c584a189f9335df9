package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/3-lines-studio/sassbuild/internal/depgraph"
)

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sassbuild.yaml")
	require.NoError(t, os.WriteFile(path, []byte("outputStyle: compressed\nprecision: 8\nincludePaths:\n  - vendor\n"), 0644))

	root := newRootCmd()
	render, _, err := root.Find([]string{"render"})
	require.NoError(t, err)
	require.NoError(t, render.ParseFlags([]string{"--config", path, "--style", "expanded", "--source-map-embed"}))

	got, err := loadConfig(render)
	require.NoError(t, err)

	want := map[string]any{
		"outputStyle":    "expanded",
		"precision":      uint64(8),
		"includePaths":   []any{"vendor"},
		"sourceMap":      true,
		"sourceMapEmbed": true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("loadConfig() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigWithoutFile(t *testing.T) {
	root := newRootCmd()
	build, _, err := root.Find([]string{"build"})
	require.NoError(t, err)
	require.NoError(t, build.ParseFlags(nil))

	got, err := loadConfig(build)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestAbsFrom(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"/proj", "styles", "/proj/styles"},
		{"/proj", "/abs/dist/", "/abs/dist"},
		{"/proj", "../out", "/out"},
	}
	for _, tt := range tests {
		if got := absFrom(tt.base, tt.path); got != tt.want {
			t.Errorf("absFrom(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
		}
	}
}

func TestParseCacheSizeFlag(t *testing.T) {
	root := newRootCmd()
	deps, _, err := root.Find([]string{"deps"})
	require.NoError(t, err)
	require.NoError(t, deps.ParseFlags(nil))

	size, err := deps.Flags().GetInt("parse-cache-size")
	require.NoError(t, err)
	require.Equal(t, depgraph.DefaultParseCacheSize, size)

	require.NoError(t, deps.ParseFlags([]string{"--parse-cache-size", "4", "--work-dir", t.TempDir()}))
	a, err := setup(deps)
	require.NoError(t, err)
	require.NotNil(t, a.plugin)
}
