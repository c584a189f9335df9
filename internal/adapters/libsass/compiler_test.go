package libsass

import (
	"errors"
	"strings"
	"testing"

	"github.com/bep/golibsass/libsass/libsasserrors"

	"github.com/3-lines-studio/sassbuild/internal/compiler"
	"github.com/3-lines-studio/sassbuild/internal/core"
)

func TestImportResolver(t *testing.T) {
	var gotPrev []string
	hook := func(spec, prev string) (compiler.Import, error) {
		gotPrev = append(gotPrev, prev)
		switch spec {
		case "seen":
			return compiler.Import{Path: "/proj/_seen.scss"}, nil
		case "missing":
			return compiler.Import{}, core.ErrImportNotFound
		}
		return compiler.Import{Path: "/proj/" + spec + ".scss", Contents: ".a{}"}, nil
	}
	resolve := importResolver(hook, "/proj/main.scss")

	path, body, ok := resolve("a", "stdin")
	if !ok || path != "/proj/a.scss" || body != ".a{}" {
		t.Errorf("resolve(a) = %q, %q, %v", path, body, ok)
	}

	for i, want := range []string{"/proj/_seen.scss#included-1", "/proj/_seen.scss#included-2"} {
		path, body, ok = resolve("seen", "/proj/a.scss")
		if !ok || path != want || strings.TrimSpace(body) != "" || body == "" {
			t.Errorf("repeat %d: resolve(seen) = %q, %q, %v, want %q with a blank body", i, path, body, ok, want)
		}
	}

	if _, _, ok := resolve("missing", "/proj/a.scss"); ok {
		t.Error("missing import reported as resolved")
	}

	want := []string{"/proj/main.scss", "/proj/a.scss", "/proj/a.scss", "/proj/a.scss"}
	for i, p := range want {
		if gotPrev[i] != p {
			t.Errorf("prev[%d] = %q, want %q", i, gotPrev[i], p)
		}
	}
}

func TestCompileError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantFile string
	}{
		{"entry data context", libsasserrors.Error{File: "stdin", Line: 2, Column: 3, Message: "Invalid CSS"}, "/proj/main.scss"},
		{"imported file", libsasserrors.Error{File: "/proj/_b.scss", Line: 1, Column: 1, Message: "Undefined variable"}, "/proj/_b.scss"},
		{"other error", errors.New("boom"), "/proj/main.scss"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := compileError(tt.err, "/proj/main.scss")
			var cerr *core.CompileError
			if !errors.As(err, &cerr) {
				t.Fatalf("error %v is not a *core.CompileError", err)
			}
			if cerr.File != tt.wantFile {
				t.Errorf("File = %q, want %q", cerr.File, tt.wantFile)
			}
			if cerr.Message == "" {
				t.Error("empty message")
			}
		})
	}
}

func TestOptions(t *testing.T) {
	req := compiler.Request{
		Entry:   "/proj/main.scss",
		OutFile: "dist/main.css",
		Options: compiler.Options{OutputStyle: "compressed", Precision: 8, SourceMap: true, SourceMapRoot: "/src"},
	}
	opts := options(req)
	if opts.Precision != 8 || opts.SourceMapOptions.Filename != "dist/main.css.map" || opts.SourceMapOptions.Root != "/src" {
		t.Errorf("options = %+v", opts)
	}
	if opts.ImportResolver != nil {
		t.Error("import resolver set without an importer")
	}
}
