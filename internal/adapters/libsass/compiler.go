// Package libsass drives the LibSass C library through golibsass. It needs
// cgo; everything else in the module only sees compiler.Compiler.
package libsass

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	golibsass "github.com/bep/golibsass/libsass"
	"github.com/bep/golibsass/libsass/libsasserrors"

	"github.com/3-lines-studio/sassbuild/internal/adapters/fs"
	"github.com/3-lines-studio/sassbuild/internal/compiler"
	"github.com/3-lines-studio/sassbuild/internal/core"
)

// stdinPath is what LibSass reports as the importing file for imports made
// directly from a data context.
const stdinPath = "stdin"

type Compiler struct {
	fs fs.FileSystem
}

func New(fsys fs.FileSystem) *Compiler {
	return &Compiler{fs: fsys}
}

func (c *Compiler) Compile(ctx context.Context, req compiler.Request) (compiler.Output, error) {
	if err := ctx.Err(); err != nil {
		return compiler.Output{}, err
	}

	src, err := c.fs.ReadFile(req.Entry)
	if err != nil {
		return compiler.Output{}, &core.CompileError{
			File:    req.Entry,
			Message: fmt.Sprintf("File to read not found or unreadable: %s", req.Entry),
		}
	}

	t, err := golibsass.New(options(req))
	if err != nil {
		return compiler.Output{}, fmt.Errorf("failed to create libsass transpiler: %w", err)
	}

	res, err := t.Execute(string(src))
	if err != nil {
		return compiler.Output{}, compileError(err, req.Entry)
	}

	out := compiler.Output{CSS: []byte(res.CSS)}
	if res.SourceMapContent != "" {
		out.Map = []byte(res.SourceMapContent)
	}
	return out, nil
}

func options(req compiler.Request) golibsass.Options {
	o := req.Options
	opts := golibsass.Options{
		OutputStyle:  golibsass.ParseOutputStyle(o.OutputStyle),
		Precision:    o.Precision,
		IncludePaths: o.IncludePaths,
		SassSyntax:   o.IndentedSyntax,
	}
	if req.Importer != nil {
		opts.ImportResolver = importResolver(req.Importer, req.Entry)
	}
	if o.SourceMap {
		opts.SourceMapOptions = golibsass.SourceMapOptions{
			Filename:       core.SourceMapName(req.OutFile),
			Root:           o.SourceMapRoot,
			InputPath:      req.Entry,
			OutputPath:     req.OutFile,
			Contents:       o.SourceMapContents,
			EnableEmbedded: o.SourceMapEmbed,
		}
	}
	return opts
}

// importResolver bridges LibSass imports to hook. It is built per compile.
func importResolver(hook compiler.ImportHook, entry string) func(url, prev string) (string, string, bool) {
	var blanks int
	return func(url, prev string) (string, string, bool) {
		if prev == "" || prev == stdinPath {
			prev = entry
		}
		imp, err := hook(url, prev)
		if err != nil {
			// LibSass then tries its own lookup and reports the failure.
			return "", "", false
		}
		if imp.Contents == "" {
			// LibSass loads the path itself for an empty body and reuses the
			// sheet it cached for a path it has seen, so blanks get a path of
			// their own.
			blanks++
			return fmt.Sprintf("%s#included-%d", imp.Path, blanks), "\n", true
		}
		return imp.Path, imp.Contents, true
	}
}

func compileError(err error, entry string) error {
	var serr libsasserrors.Error
	if !errors.As(err, &serr) {
		return &core.CompileError{File: entry, Message: err.Error()}
	}
	file := serr.File
	if file == "" || file == stdinPath {
		file = entry
	}
	msg := serr.Message
	if serr.Line > 0 {
		msg = fmt.Sprintf("%s\n        on line %d:%d of %s", serr.Message, serr.Line, serr.Column, filepath.ToSlash(file))
	}
	return &core.CompileError{File: file, Message: msg}
}
