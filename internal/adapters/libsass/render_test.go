package libsass

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/3-lines-studio/sassbuild"
	"github.com/3-lines-studio/sassbuild/internal/adapters/fs"
)

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, data := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	}
	return root
}

func TestRenderWithLibSass(t *testing.T) {
	root := writeProject(t, map[string]string{
		"main.scss":             "@import \"assets/sub/file\";\n@import \"assets/sub/file\";\n.main { color: red; }\n",
		"assets/sub/_file.scss": ".x { background: url(../img/x.png); }\n",
		"assets/img/x.png":      "png",
	})

	for _, style := range []string{"nested", "expanded", "compressed"} {
		t.Run(style, func(t *testing.T) {
			osfs := fs.NewOSFileSystem()
			p := sassbuild.New(New(osfs), map[string]any{"outputStyle": style},
				sassbuild.WithFileSystem(osfs),
				sassbuild.WithWorkDir(root),
			)

			result, err := p.Render(context.Background(), "main.scss", "styles.css")
			require.NoError(t, err)
			require.Nil(t, result.Error)
			require.Len(t, result.Binaries, 1)

			css := string(result.Binaries[0].Data)
			if n := strings.Count(css, ".x"); n != 1 {
				t.Errorf("partial rules appear %d times, want 1:\n%s", n, css)
			}
			if strings.Contains(css, "sassbuild:") || strings.Contains(css, "region") {
				t.Errorf("region markers survived:\n%s", css)
			}
			if !strings.Contains(css, "url(assets/img/x.png)") {
				t.Errorf("reference not rebased:\n%s", css)
			}
			if !strings.Contains(css, ".main") {
				t.Errorf("entry rules missing:\n%s", css)
			}

			last := result.Dependencies[len(result.Dependencies)-1]
			require.Equal(t, sassbuild.Dependency{Path: filepath.Join(root, "assets", "img", "x.png"), Status: sassbuild.StatusResolved}, last)
		})
	}
}

func TestRenderWithLibSassMissingImport(t *testing.T) {
	root := writeProject(t, map[string]string{
		"main.scss": "@import \"ghost\";\n.main { color: red; }\n",
	})
	osfs := fs.NewOSFileSystem()
	p := sassbuild.New(New(osfs), nil, sassbuild.WithFileSystem(osfs), sassbuild.WithWorkDir(root))

	result, err := p.Render(context.Background(), "main.scss", "")

	var cerr *sassbuild.CompileError
	require.ErrorAs(t, err, &cerr)
	require.NotNil(t, result.Error)
	entry := filepath.Join(root, "main.scss")
	if result.Error.File != entry {
		t.Errorf("Error.File = %q, want %q", result.Error.File, entry)
	}
	if result.Error.Message == "" {
		t.Error("empty error message")
	}
	require.Empty(t, result.Binaries)
	require.Contains(t, result.Dependencies, sassbuild.Dependency{Path: entry, Status: sassbuild.StatusResolved})
	require.Contains(t, result.Dependencies, sassbuild.Dependency{Path: filepath.Join(root, "ghost.scss"), Status: sassbuild.StatusMissing})
}
