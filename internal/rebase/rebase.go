// Package rebase relocates relative url() references found inside region
// markers so they stay valid from the output's directory, then strips the
// markers.
package rebase

import (
	"bytes"
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/3-lines-studio/sassbuild/internal/core"
	"github.com/3-lines-studio/sassbuild/internal/csstoken"
)

var ErrClosed = errors.New("rebase: write after close")

type Options struct {
	Markers core.MarkerFormat
	// WorkDir is the absolute directory marker paths are relative to.
	WorkDir string
	// Output is the artifact path, relative to WorkDir or absolute.
	Output string
	Logger *slog.Logger
}

type Stats struct {
	Regions   int
	Rewritten int
	Unpaired  int
}

type region struct {
	path string
	dir  string
}

// Rebase rewrites src in one pass. Text outside any region is copied as is.
func Rebase(src []byte, opts Options) ([]byte, Stats) {
	var stats Stats
	if !opts.Markers.Contains(src) {
		out := make([]byte, len(src))
		copy(out, src)
		return out, stats
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	output := opts.Output
	if !filepath.IsAbs(output) {
		output = filepath.Join(opts.WorkDir, filepath.FromSlash(output))
	}
	outputDir := filepath.Dir(output)

	var out bytes.Buffer
	out.Grow(len(src))

	var stack []region
	offsets := make(map[string]string)
	skipNewline := false

	_ = csstoken.Walk(src, func(t csstoken.Token) error {
		if t.Kind == csstoken.Comment {
			if m, ok := opts.Markers.Parse(t.Raw); ok {
				trimIndent(&out)
				skipNewline = true
				switch m.Kind {
				case core.MarkerStart:
					stats.Regions++
					stack = append(stack, region{
						path: m.Path,
						dir:  filepath.Dir(filepath.Join(opts.WorkDir, filepath.FromSlash(m.Path))),
					})
				case core.MarkerEnd:
					var ok bool
					stack, ok = closeRegion(stack, m.Path)
					if !ok {
						stats.Unpaired++
						logger.Warn("unpaired region end marker", "path", m.Path)
					}
				}
				return nil
			}
		}

		raw := t.Raw
		if skipNewline {
			skipNewline = false
			raw = trimNewline(raw)
		}

		if t.Kind == csstoken.URL && len(stack) > 0 && core.IsRelativeReference(t.Ref) {
			top := stack[len(stack)-1]
			offset, ok := offsets[top.dir]
			if !ok {
				var err error
				offset, err = core.RebaseOffset(top.dir, outputDir)
				if err != nil {
					logger.Warn("cannot compute rebase offset", "origin", top.path, "error", err)
					offset = "."
				}
				offsets[top.dir] = offset
			}
			if offset != "." {
				out.Write(t.WithRef(core.JoinReference(offset, t.Ref)))
				stats.Rewritten++
				return nil
			}
		}

		out.Write(raw)
		return nil
	})

	if len(stack) > 0 {
		stats.Unpaired += len(stack)
		logger.Warn("unterminated regions", "count", len(stack), "innermost", stack[len(stack)-1].path)
	}
	return out.Bytes(), stats
}

// closeRegion pops up to and including the innermost region for path.
func closeRegion(stack []region, path string) ([]region, bool) {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].path == path {
			return stack[:i], true
		}
	}
	return stack, false
}

// trimIndent drops spaces and tabs written since the last line break.
func trimIndent(b *bytes.Buffer) {
	data := b.Bytes()
	n := len(data)
	for n > 0 && (data[n-1] == ' ' || data[n-1] == '\t') {
		n--
	}
	b.Truncate(n)
}

func trimNewline(raw []byte) []byte {
	switch {
	case bytes.HasPrefix(raw, []byte("\r\n")):
		return raw[2:]
	case bytes.HasPrefix(raw, []byte("\n")):
		return raw[1:]
	}
	return raw
}
