package sasstest

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/3-lines-studio/sassbuild/internal/adapters/fs"
	"github.com/3-lines-studio/sassbuild/internal/compiler"
	"github.com/3-lines-studio/sassbuild/internal/core"
)

func hookFrom(files map[string]string) compiler.ImportHook {
	return func(specifier, prev string) (compiler.Import, error) {
		path := "/proj/" + specifier
		data, ok := files[path]
		if !ok {
			return compiler.Import{}, errors.New("not found: " + specifier)
		}
		return compiler.Import{Path: path, Contents: data}, nil
	}
}

func TestCompileExpandsImports(t *testing.T) {
	mem := fs.NewMemFileSystem(map[string]string{
		"/proj/main.scss": `@import "a";` + "\n" + `@import "theme.css";` + "\n.main{}\n",
	})
	c := New(mem)

	out, err := c.Compile(context.Background(), compiler.Request{
		Entry:    "/proj/main.scss",
		OutFile:  "index.css",
		Importer: hookFrom(map[string]string{"/proj/a": `@import 'b';.a{}`, "/proj/b": ".b{}"}),
	})
	require.NoError(t, err)
	require.Equal(t, ".b{}.a{}\n@import \"theme.css\";\n.main{}\n", string(out.CSS))
	require.Empty(t, out.Map)
	require.Equal(t, 1, c.Calls())
}

func TestCompileErrors(t *testing.T) {
	mem := fs.NewMemFileSystem(map[string]string{
		"/proj/main.scss":    `@import "broken";`,
		"/proj/missing.scss": `@import "ghost";`,
	})
	c := New(mem)
	hook := hookFrom(map[string]string{"/proj/broken": `@error "bad value";`})

	tests := []struct {
		name  string
		entry string
		want  core.CompileError
	}{
		{"error directive", "/proj/main.scss", core.CompileError{File: "/proj/broken", Message: "bad value"}},
		{"failed import", "/proj/missing.scss", core.CompileError{File: "/proj/missing.scss", Message: "not found: ghost"}},
		{"unreadable entry", "/proj/nope.scss", core.CompileError{File: "/proj/nope.scss", Message: "File to read not found or unreadable: /proj/nope.scss"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Compile(context.Background(), compiler.Request{Entry: tt.entry, Importer: hook})
			var cerr *core.CompileError
			require.ErrorAs(t, err, &cerr)
			require.Equal(t, tt.want, *cerr)
		})
	}
}

func TestCompileSourceMap(t *testing.T) {
	mem := fs.NewMemFileSystem(map[string]string{"/proj/main.scss": ".a{}"})
	c := New(mem)

	out, err := c.Compile(context.Background(), compiler.Request{
		Entry:   "/proj/main.scss",
		OutFile: "dist/app.css",
		Options: compiler.Options{SourceMap: true, SourceMapRoot: "/src"},
	})
	require.NoError(t, err)
	if !strings.HasSuffix(string(out.CSS), "/*# sourceMappingURL=app.css.map */") {
		t.Errorf("CSS = %q, want a sourceMappingURL comment", out.CSS)
	}

	var m map[string]any
	require.NoError(t, json.Unmarshal(out.Map, &m))
	require.Equal(t, "app.css", m["file"])
	require.Equal(t, "/src", m["sourceRoot"])

	embedded, err := c.Compile(context.Background(), compiler.Request{
		Entry:   "/proj/main.scss",
		OutFile: "dist/app.css",
		Options: compiler.Options{SourceMap: true, SourceMapEmbed: true},
	})
	require.NoError(t, err)
	require.Contains(t, string(embedded.CSS), "sourceMappingURL=data:application/json;base64,")
}

func TestCompileCanceled(t *testing.T) {
	c := New(fs.NewMemFileSystem(nil))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Compile(ctx, compiler.Request{Entry: "/proj/main.scss"})
	require.ErrorIs(t, err, context.Canceled)
}
