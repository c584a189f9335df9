package sassbuild

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/3-lines-studio/sassbuild/internal/compiler"
	"github.com/3-lines-studio/sassbuild/internal/core"
	"github.com/3-lines-studio/sassbuild/internal/ctxlog"
	"github.com/3-lines-studio/sassbuild/internal/depgraph"
	"github.com/3-lines-studio/sassbuild/internal/importer"
	"github.com/3-lines-studio/sassbuild/internal/metrics"
	"github.com/3-lines-studio/sassbuild/internal/rebase"
)

// Render compiles file into output (DefaultOutputName when empty).
//
// The returned Result lists source dependencies first, then the references
// found in the rebased output. When compilation fails the Result carries the
// failing file and message, has no binaries, and the error is a
// *CompileError. A failed dependency scan returns a *ScanError.
func (p *Plugin) Render(ctx context.Context, file, output string) (*Result, error) {
	if p.initErr != nil {
		return nil, p.initErr
	}
	start := time.Now()
	output = core.OutputName(output)

	entry := file
	if entry != "" && !filepath.IsAbs(entry) {
		entry = filepath.Join(p.workDir, entry)
	}

	logger := p.logger.With("entry", entry, "output", output)
	ctx = ctxlog.WithLogger(ctx, logger)
	result := core.NewResult()

	cache := importer.NewCache(p.resolver, p.fs, p.markers, logger)

	var (
		sourceDeps []core.Dependency
		compiled   compiler.Output
		compileErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		deps, err := p.deps.Dependencies(gctx, depgraph.EntryFile(entry))
		sourceDeps = deps
		return err
	})
	g.Go(func() error {
		// Compile failures are part of the result, not a reason to stop the scan.
		compiled, compileErr = p.compiler.Compile(gctx, compiler.Request{
			Entry:    entry,
			OutFile:  output,
			Importer: cache.Hook(),
			Options:  p.options,
		})
		return nil
	})
	scanErr := g.Wait()

	result.Dependencies = append(result.Dependencies, sourceDeps...)
	p.metrics.ObserveDependencies(metrics.PhaseSource, sourceDeps)
	p.metrics.DuplicateImports.Add(float64(cache.Duplicates()))

	var cerr *core.CompileError
	if compileErr != nil && !errors.Is(compileErr, context.Canceled) {
		cerr = asCompileError(compileErr, entry)
		result.Error = &core.ResultError{File: cerr.File, Message: cerr.Message}
	}

	if scanErr != nil {
		p.metrics.ObserveRender(start, "scan")
		logger.Error("dependency scan failed", "error", scanErr)
		return result, asScanError(scanErr, entry)
	}

	if compileErr != nil {
		if cerr == nil {
			cerr = asCompileError(compileErr, entry)
			result.Error = &core.ResultError{File: cerr.File, Message: cerr.Message}
		}
		p.metrics.ObserveRender(start, "compile")
		logger.Warn("compile failed", "file", cerr.File, "message", cerr.Message)
		return result, cerr
	}

	stream := rebase.NewStream(rebase.Options{
		Markers: p.markers,
		WorkDir: p.workDir,
		Output:  output,
		Logger:  logger,
	})
	if _, err := io.Copy(stream, bytes.NewReader(compiled.CSS)); err != nil {
		p.metrics.ObserveRender(start, "rebase")
		return result, fmt.Errorf("failed to rebase %s: %w", output, err)
	}
	if err := stream.Close(); err != nil {
		p.metrics.ObserveRender(start, "rebase")
		return result, fmt.Errorf("failed to rebase %s: %w", output, err)
	}
	binary := stream.Bytes()
	stats := stream.Stats()
	p.metrics.RebasedReferences.Add(float64(stats.Rewritten))

	outputDeps, err := p.deps.Dependencies(ctx, depgraph.Compiled(binary))
	if err != nil {
		p.metrics.ObserveRender(start, "scan")
		logger.Error("output dependency scan failed", "error", err)
		return result, asScanError(err, p.workDir)
	}
	result.Dependencies = append(result.Dependencies, outputDeps...)
	p.metrics.ObserveDependencies(metrics.PhaseCompiled, outputDeps)

	result.Binaries = append(result.Binaries, core.Binary{Name: output, Data: binary})
	if len(compiled.Map) > 0 && !p.options.SourceMapEmbed {
		result.Binaries = append(result.Binaries, core.Binary{Name: core.SourceMapName(output), Data: compiled.Map})
	}

	p.metrics.ObserveRender(start, "")
	resolved, missing := core.CountByStatus(result.Dependencies)
	logger.Debug("render complete",
		"binaries", len(result.Binaries),
		"resolved", resolved,
		"missing", missing,
		"regions", stats.Regions,
		"rebased", stats.Rewritten,
		"duration", time.Since(start),
	)
	return result, nil
}

func asCompileError(err error, entry string) *core.CompileError {
	var cerr *core.CompileError
	if errors.As(err, &cerr) {
		return cerr
	}
	return &core.CompileError{File: entry, Message: err.Error()}
}

func asScanError(err error, path string) *core.ScanError {
	var serr *core.ScanError
	if errors.As(err, &serr) {
		return serr
	}
	return &core.ScanError{Path: path, Err: err}
}
