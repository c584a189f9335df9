// Package compiler describes the stylesheet compiler the render pipeline
// drives. Implementations live in adapters; the pipeline never parses the
// stylesheet language itself.
package compiler

import "context"

// Import is what an import hook hands back to the compiler: the path the
// content was read from and the content itself. Empty Contents means the file
// was already included in this render.
type Import struct {
	Path     string
	Contents string
}

// ImportHook resolves specifier as written in the file at prev.
type ImportHook func(specifier, prev string) (Import, error)

type Options struct {
	OutputStyle       string   `mapstructure:"outputStyle"`
	Precision         int      `mapstructure:"precision"`
	IncludePaths      []string `mapstructure:"includePaths"`
	IndentedSyntax    bool     `mapstructure:"indentedSyntax"`
	SourceMap         bool     `mapstructure:"sourceMap"`
	SourceMapEmbed    bool     `mapstructure:"sourceMapEmbed"`
	SourceMapContents bool     `mapstructure:"sourceMapContents"`
	SourceMapRoot     string   `mapstructure:"sourceMapRoot"`
}

type Request struct {
	Entry    string
	OutFile  string
	Importer ImportHook
	Options  Options
}

type Output struct {
	CSS []byte
	Map []byte
}

// Compiler turns an entry stylesheet into CSS. Failures should be reported
// as *core.CompileError so the originating file survives.
type Compiler interface {
	Compile(ctx context.Context, req Request) (Output, error)
}

type Func func(ctx context.Context, req Request) (Output, error)

func (f Func) Compile(ctx context.Context, req Request) (Output, error) {
	return f(ctx, req)
}
