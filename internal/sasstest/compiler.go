// Package sasstest provides an in-memory stylesheet compiler for tests. It
// expands @import statements through the request's import hook and copies
// everything else through, which is enough to drive the render pipeline
// without a native compiler.
package sasstest

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/3-lines-studio/sassbuild/internal/adapters/fs"
	"github.com/3-lines-studio/sassbuild/internal/compiler"
	"github.com/3-lines-studio/sassbuild/internal/core"
)

const maxDepth = 64

var (
	importPattern = regexp.MustCompile(`@import\s+(?:"([^"]+)"|'([^']+)')\s*;`)
	errorPattern  = regexp.MustCompile(`@error\s+"([^"]*)"\s*;`)
)

type Compiler struct {
	FS fs.FileSystem

	calls atomic.Int64
}

func New(fsys fs.FileSystem) *Compiler {
	return &Compiler{FS: fsys}
}

func (c *Compiler) Calls() int {
	return int(c.calls.Load())
}

func (c *Compiler) Compile(ctx context.Context, req compiler.Request) (compiler.Output, error) {
	c.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return compiler.Output{}, err
	}

	data, err := c.FS.ReadFile(req.Entry)
	if err != nil {
		return compiler.Output{}, &core.CompileError{
			File:    req.Entry,
			Message: "File to read not found or unreadable: " + req.Entry,
		}
	}

	css, err := expand(string(data), req.Entry, req.Importer, 0)
	if err != nil {
		return compiler.Output{}, err
	}

	out := compiler.Output{CSS: []byte(css)}
	if req.Options.SourceMap {
		out.Map = sourceMap(req)
		if req.Options.SourceMapEmbed {
			out.CSS = append(out.CSS, "\n/*# sourceMappingURL=data:application/json;base64,"...)
			out.CSS = append(out.CSS, base64.StdEncoding.EncodeToString(out.Map)...)
			out.CSS = append(out.CSS, " */"...)
		} else {
			out.CSS = append(out.CSS, fmt.Sprintf("\n/*# sourceMappingURL=%s */", filepath.Base(core.SourceMapName(req.OutFile)))...)
		}
	}
	return out, nil
}

func expand(src, prev string, hook compiler.ImportHook, depth int) (string, error) {
	if depth > maxDepth {
		return "", &core.CompileError{File: prev, Message: "too many nested imports"}
	}
	if m := errorPattern.FindStringSubmatch(src); m != nil {
		return "", &core.CompileError{File: prev, Message: m[1]}
	}

	var out strings.Builder
	last := 0
	for _, loc := range importPattern.FindAllStringSubmatchIndex(src, -1) {
		out.WriteString(src[last:loc[0]])
		last = loc[1]

		spec := submatch(src, loc, 1)
		if spec == "" {
			spec = submatch(src, loc, 2)
		}
		if strings.HasSuffix(spec, ".css") || strings.Contains(spec, "://") {
			out.WriteString(src[loc[0]:loc[1]])
			continue
		}
		if hook == nil {
			return "", &core.CompileError{File: prev, Message: "no importer for " + spec}
		}

		imp, err := hook(spec, prev)
		if err != nil {
			return "", &core.CompileError{File: prev, Message: err.Error()}
		}
		body, err := expand(imp.Contents, imp.Path, hook, depth+1)
		if err != nil {
			return "", err
		}
		out.WriteString(body)
	}
	out.WriteString(src[last:])
	return out.String(), nil
}

func submatch(s string, loc []int, i int) string {
	if loc[2*i] < 0 {
		return ""
	}
	return s[loc[2*i]:loc[2*i+1]]
}

func sourceMap(req compiler.Request) []byte {
	m := map[string]any{
		"version":  3,
		"file":     filepath.Base(req.OutFile),
		"sources":  []string{filepath.ToSlash(req.Entry)},
		"mappings": "",
		"names":    []string{},
	}
	if req.Options.SourceMapRoot != "" {
		m["sourceRoot"] = req.Options.SourceMapRoot
	}
	data, _ := json.Marshal(m)
	return data
}
