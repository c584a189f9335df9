package csstoken

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWalkIsLossless(t *testing.T) {
	inputs := []string{
		"",
		"a { color: red; }",
		".a { background: url(img/x.png) no-repeat; }\n",
		".a { background: url( 'img/x.png' ); }",
		".a { background: URL(\"img/x.png\"); }",
		"/*! region sassbuild: a.scss */\n.a{b:c}\n/*! endregion sassbuild: a.scss */\n",
		"@import url(foo.css) screen;",
		".a { content: \"unterminated",
		"@font-face { src: url(a.woff2) format('woff2'), url(a.woff) format('woff'); }",
	}
	for _, in := range inputs {
		var buf bytes.Buffer
		if err := Walk([]byte(in), func(tok Token) error {
			buf.Write(tok.Raw)
			return nil
		}); err != nil {
			t.Fatalf("Walk(%q) error: %v", in, err)
		}
		if buf.String() != in {
			t.Errorf("Walk(%q) rebuilt %q", in, buf.String())
		}
	}
}

func TestWalkURLTokens(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		ref     string
		rebuilt string
	}{
		{"unquoted", "url(img/x.png)", "img/x.png", "url(../img/x.png)"},
		{"single quoted", "url('img/x.png')", "img/x.png", "url('../img/x.png')"},
		{"double quoted", `url("img/x.png")`, "img/x.png", `url("../img/x.png")`},
		{"padded", "url(  img/x.png  )", "img/x.png", "url(../img/x.png)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var urls []Token
			_ = Walk([]byte(".a{b:"+tt.input+"}"), func(tok Token) error {
				if tok.Kind == URL {
					urls = append(urls, tok)
				}
				return nil
			})
			if len(urls) != 1 {
				t.Fatalf("got %d url tokens, want 1", len(urls))
			}
			if urls[0].Ref != tt.ref {
				t.Errorf("Ref = %q, want %q", urls[0].Ref, tt.ref)
			}
			if got := string(urls[0].WithRef("../" + tt.ref)); got != tt.rebuilt {
				t.Errorf("WithRef = %q, want %q", got, tt.rebuilt)
			}
		})
	}
}

func TestWalkComments(t *testing.T) {
	var comments []string
	_ = Walk([]byte("/* one */.a{}/*! two */"), func(tok Token) error {
		if tok.Kind == Comment {
			comments = append(comments, string(tok.Raw))
		}
		return nil
	})
	if diff := cmp.Diff([]string{"/* one */", "/*! two */"}, comments); diff != "" {
		t.Errorf("comments mismatch (-want +got):\n%s", diff)
	}
}

func TestReferences(t *testing.T) {
	src := `@import "reset.css";
@import url(print.css) print;
.a { background: url(img/a.png); }
.b { background: url("img/b.svg#icon"), url('//cdn.example.com/c.png'); }
.c { content: "not/a/ref.png"; }
`
	want := []string{"reset.css", "print.css", "img/a.png", "img/b.svg#icon", "//cdn.example.com/c.png"}
	if diff := cmp.Diff(want, References([]byte(src))); diff != "" {
		t.Errorf("References mismatch (-want +got):\n%s", diff)
	}
}

func TestImports(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []ImportTarget
	}{
		{
			name:  "single",
			input: `@import "variables";`,
			want:  []ImportTarget{{Target: "variables"}},
		},
		{
			name:  "list",
			input: `@import 'a', "b/c";`,
			want:  []ImportTarget{{Target: "a"}, {Target: "b/c"}},
		},
		{
			name:  "url form",
			input: `@import url(theme.css);`,
			want:  []ImportTarget{{Target: "theme.css", URL: true}},
		},
		{
			name:  "line comment",
			input: "// @import \"ignored\";\n@import \"kept\";",
			want:  []ImportTarget{{Target: "kept"}},
		},
		{
			name:  "block comment",
			input: "/* @import \"ignored\"; */\n@import \"kept\";",
			want:  []ImportTarget{{Target: "kept"}},
		},
		{
			name:  "strings outside import",
			input: `.a { content: "x"; } @import "y";`,
			want:  []ImportTarget{{Target: "y"}},
		},
		{
			name:  "none",
			input: `.a { color: red; }`,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Imports([]byte(tt.input))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Imports mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStripLineComments(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"a // b\nc", "a     \nc"},
		{`"http://x" // y`, `"http://x"     `},
		{"url(//cdn/x.png) // z", "url(//cdn/x.png)     "},
		{"/* // */ q", "/* // */ q"},
	}
	for _, tt := range tests {
		if got := string(StripLineComments([]byte(tt.input))); got != tt.want {
			t.Errorf("StripLineComments(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
