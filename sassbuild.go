package sassbuild

import (
	"context"
	"log/slog"
	"maps"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/3-lines-studio/sassbuild/internal/adapters/fs"
	"github.com/3-lines-studio/sassbuild/internal/compiler"
	"github.com/3-lines-studio/sassbuild/internal/config"
	"github.com/3-lines-studio/sassbuild/internal/core"
	"github.com/3-lines-studio/sassbuild/internal/ctxlog"
	"github.com/3-lines-studio/sassbuild/internal/depgraph"
	"github.com/3-lines-studio/sassbuild/internal/importer"
	"github.com/3-lines-studio/sassbuild/internal/metrics"
)

type Result = core.Result

type Binary = core.Binary

type Dependency = core.Dependency

type Status = core.Status

type ResultError = core.ResultError

type CompileError = core.CompileError

type ScanError = core.ScanError

type ResolveError = core.ResolveError

type Compiler = compiler.Compiler

type CompilerFunc = compiler.Func

type CompileRequest = compiler.Request

type CompileOutput = compiler.Output

type CompilerOptions = compiler.Options

type Import = compiler.Import

type ImportHook = compiler.ImportHook

type Source = depgraph.Source

type EntryFile = depgraph.EntryFile

type Compiled = depgraph.Compiled

type FileSystem = fs.FileSystem

const (
	StatusResolved = core.StatusResolved
	StatusMissing  = core.StatusMissing

	DefaultOutputName = core.DefaultOutputName
)

var ErrImportNotFound = core.ErrImportNotFound

type Option func(*Plugin)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Plugin) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithFileSystem(fsys FileSystem) Option {
	return func(p *Plugin) {
		if fsys != nil {
			p.fs = fsys
		}
	}
}

// WithWorkDir sets the directory region marker paths, relative entries and
// compiled references are resolved against. It defaults to the process
// working directory.
func WithWorkDir(dir string) Option {
	return func(p *Plugin) {
		p.workDir = dir
	}
}

// WithMetrics registers the render collectors on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(p *Plugin) {
		p.registerer = reg
	}
}

func WithMarkerSentinel(sentinel string) Option {
	return func(p *Plugin) {
		p.markers = core.NewMarkerFormat(sentinel)
	}
}

func WithParseCacheSize(size int) Option {
	return func(p *Plugin) {
		p.parseCacheSize = size
	}
}

// Plugin renders entry stylesheets with a Compiler and reports the files each
// render depended on. A Plugin is safe for concurrent renders; every render
// gets its own import cache.
type Plugin struct {
	compiler       Compiler
	config         map[string]any
	options        compiler.Options
	fs             FileSystem
	workDir        string
	logger         *slog.Logger
	registerer     prometheus.Registerer
	metrics        *metrics.Metrics
	markers        core.MarkerFormat
	parseCacheSize int

	resolver *importer.Resolver
	deps     *depgraph.Builder
	initErr  error
}

// DefaultConfig returns the configuration caller values are merged over.
func DefaultConfig() map[string]any {
	return config.Defaults()
}

// New builds a Plugin. cfg is merged over DefaultConfig, caller values
// winning on key collisions. Configuration problems are reported by the
// first Render or Dependencies call.
func New(c Compiler, cfg map[string]any, opts ...Option) *Plugin {
	p := &Plugin{
		compiler: c,
		fs:       fs.NewOSFileSystem(),
		logger:   slog.Default(),
		markers:  core.NewMarkerFormat(""),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.metrics = metrics.New(p.registerer)

	if err := p.init(cfg); err != nil {
		p.initErr = err
	}
	return p
}

func (p *Plugin) init(cfg map[string]any) error {
	if p.workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return &core.ScanError{Path: ".", Err: err}
		}
		p.workDir = wd
	}
	abs, err := filepath.Abs(p.workDir)
	if err != nil {
		return &core.ScanError{Path: p.workDir, Err: err}
	}
	p.workDir = abs

	merged, err := config.Merge(config.Defaults(), cfg)
	if err != nil {
		return err
	}
	p.config = merged
	p.logger.Debug("configuration merged", "keys", config.Keys(merged))

	options, unused, err := config.Decode(merged)
	if err != nil {
		return err
	}
	for _, key := range unused {
		p.logger.Warn("ignoring unknown configuration key", "key", key)
	}
	p.options = options

	p.resolver = importer.NewResolver(p.fs, p.workDir, options.IncludePaths)
	p.deps, err = depgraph.New(depgraph.Config{
		FileSystem:     p.fs,
		Resolver:       p.resolver,
		ParseCacheSize: p.parseCacheSize,
	})
	return err
}

// Config returns a copy of the merged configuration.
func (p *Plugin) Config() map[string]any {
	return maps.Clone(p.config)
}

func (p *Plugin) Options() CompilerOptions {
	return p.options
}

func (p *Plugin) WorkDir() string {
	return p.workDir
}

// Dependencies scans src on its own, outside of any render. An EntryFile
// follows imports from disk; Compiled collects the references in compiled
// output.
func (p *Plugin) Dependencies(ctx context.Context, src Source) ([]Dependency, error) {
	if p.initErr != nil {
		return nil, p.initErr
	}
	ctx = ctxlog.WithLogger(ctx, p.logger)
	return p.deps.Dependencies(ctx, src)
}
